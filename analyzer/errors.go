package analyzer

import "net/http"

// ErrorKind classifies every failure the analyze endpoint can report.
type ErrorKind string

const (
	KindMethodNotAllowed       ErrorKind = "MethodNotAllowed"
	KindMissingFile            ErrorKind = "MissingFile"
	KindInvalidFileType        ErrorKind = "InvalidFileType"
	KindModelInvocationFailure ErrorKind = "ModelInvocationFailure"
	KindMalformedJSON          ErrorKind = "MalformedJSON"
	KindSchemaViolation        ErrorKind = "SchemaViolation"
	KindUnknownFailure         ErrorKind = "UnknownFailure"
)

// Status returns the HTTP status code a kind is reported with
func (k ErrorKind) Status() int {
	switch k {
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindMissingFile, KindInvalidFileType:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the user-facing text the dashboard shows for a kind
func (k ErrorKind) Message() string {
	switch k {
	case KindMethodNotAllowed:
		return "Method not allowed"
	case KindMissingFile:
		return "No file uploaded."
	case KindInvalidFileType:
		return "Invalid file type. Only MP3 files are accepted."
	case KindMalformedJSON:
		return "No se pudo parsear la respuesta de Gemini."
	case KindSchemaViolation:
		return "La respuesta de Gemini no cumple con el esquema esperado."
	default:
		return "Ocurrió un error durante el análisis."
	}
}
