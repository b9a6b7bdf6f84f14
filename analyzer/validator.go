package analyzer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Issue is one schema violation found in a model reply.
type Issue struct {
	Path     string `json:"path"`
	Code     string `json:"code"`
	Expected string `json:"expected,omitempty"`
	Received string `json:"received,omitempty"`
	Message  string `json:"message"`
}

const (
	IssueInvalidType = "invalid_type"
	IssueRequired    = "required"
	IssueInvalidEnum = "invalid_enum_value"
)

// Verdict is the outcome of validating a model reply. Exactly one of the three
// shapes is populated:
//   - Kind == "" : Value holds the conformant result
//   - KindMalformedJSON : RawText holds the reply as received
//   - KindSchemaViolation : Issues lists every violation and Raw holds the parsed JSON
type Verdict struct {
	Kind    ErrorKind
	Value   *AnalysisResult
	RawText string
	Raw     any
	Issues  []Issue
}

func (v Verdict) OK() bool {
	return v.Kind == "" && v.Value != nil
}

type valueKind string

const (
	kindString  valueKind = "string"
	kindBoolean valueKind = "boolean"
	kindObject  valueKind = "object"
	kindArray   valueKind = "array"
)

type field struct {
	name     string
	kind     valueKind
	optional bool
	enum     []string
	// members of an object, or of each object inside an array
	members []field
}

var analysisSchema = []field{
	{name: "transcription", kind: kindString},
	{name: "sentimentAnalysis", kind: kindObject, members: []field{
		{name: "overallSentiment", kind: kindString, enum: sentimentNames()},
		{name: "specificEmotions", kind: kindArray, optional: true, members: []field{
			{name: "emotion", kind: kindString},
			{name: "evidence", kind: kindString},
		}},
	}},
	{name: "puntosDoterSolved", kind: kindBoolean},
	{name: "reasonForCall", kind: kindString},
	{name: "keyInteractions", kind: kindArray, optional: true, members: []field{
		{name: "question", kind: kindString},
		{name: "response", kind: kindString},
	}},
}

func sentimentNames() []string {
	names := make([]string, len(sentiments))
	for i, s := range sentiments {
		names[i] = string(s)
	}
	return names
}

// Validate turns raw model text into a Verdict. It never repairs the payload and
// never returns a partially populated result.
func Validate(text string) Verdict {
	rawText := strings.TrimSpace(text)
	cleaned := StripCodeFence(rawText)

	if !gjson.Valid(cleaned) {
		return Verdict{Kind: KindMalformedJSON, RawText: rawText}
	}

	var raw any
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return Verdict{Kind: KindMalformedJSON, RawText: rawText}
	}

	doc := gjson.Parse(cleaned)
	var issues []Issue
	if !doc.IsObject() {
		issues = append(issues, typeIssue("", kindObject, doc))
	} else {
		checkMembers(doc, "", analysisSchema, &issues)
	}
	if len(issues) > 0 {
		return Verdict{Kind: KindSchemaViolation, RawText: rawText, Raw: raw, Issues: issues}
	}

	return Verdict{Value: decodeResult(doc), RawText: rawText}
}

// decodeResult reads the result from the same members checkMembers looked at, so
// keys that differ only in case and repeated keys cannot smuggle in unchecked values.
func decodeResult(doc gjson.Result) *AnalysisResult {
	sentiment := doc.Get("sentimentAnalysis")
	result := &AnalysisResult{
		Transcription: doc.Get("transcription").Str,
		SentimentAnalysis: SentimentAnalysis{
			OverallSentiment: Sentiment(sentiment.Get("overallSentiment").Str),
		},
		PuntosDoterSolved: doc.Get("puntosDoterSolved").Bool(),
		ReasonForCall:     doc.Get("reasonForCall").Str,
	}

	if v := sentiment.Get("specificEmotions"); v.Exists() {
		emotions := []EmotionEvidence{}
		for _, el := range v.Array() {
			emotions = append(emotions, EmotionEvidence{
				Emotion:  el.Get("emotion").Str,
				Evidence: el.Get("evidence").Str,
			})
		}
		result.SentimentAnalysis.SpecificEmotions = &emotions
	}

	if v := doc.Get("keyInteractions"); v.Exists() {
		interactions := []KeyInteraction{}
		for _, el := range v.Array() {
			interactions = append(interactions, KeyInteraction{
				Question: el.Get("question").Str,
				Response: el.Get("response").Str,
			})
		}
		result.KeyInteractions = &interactions
	}
	return result
}

func checkMembers(obj gjson.Result, path string, fields []field, issues *[]Issue) {
	for _, f := range fields {
		p := joinPath(path, f.name)
		v := obj.Get(f.name)
		if !v.Exists() {
			if !f.optional {
				*issues = append(*issues, Issue{
					Path:     p,
					Code:     IssueRequired,
					Expected: string(f.kind),
					Received: "undefined",
					Message:  "Required",
				})
			}
			continue
		}
		checkValue(v, p, f, issues)
	}
}

func checkValue(v gjson.Result, path string, f field, issues *[]Issue) {
	if kindOf(v) != string(f.kind) {
		*issues = append(*issues, typeIssue(path, f.kind, v))
		return
	}

	switch f.kind {
	case kindString:
		if len(f.enum) > 0 && !contains(f.enum, v.Str) {
			*issues = append(*issues, Issue{
				Path:     path,
				Code:     IssueInvalidEnum,
				Expected: strings.Join(f.enum, " | "),
				Received: v.Str,
				Message:  fmt.Sprintf("Invalid enum value. Expected %s, received '%s'", quoteAll(f.enum), v.Str),
			})
		}
	case kindObject:
		checkMembers(v, path, f.members, issues)
	case kindArray:
		for i, el := range v.Array() {
			p := joinPath(path, strconv.Itoa(i))
			if !el.IsObject() {
				*issues = append(*issues, typeIssue(p, kindObject, el))
				continue
			}
			checkMembers(el, p, f.members, issues)
		}
	}
}

func typeIssue(path string, expected valueKind, got gjson.Result) Issue {
	received := kindOf(got)
	return Issue{
		Path:     path,
		Code:     IssueInvalidType,
		Expected: string(expected),
		Received: received,
		Message:  fmt.Sprintf("Expected %s, received %s", expected, received),
	}
}

func kindOf(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return "null"
	case gjson.True, gjson.False:
		return string(kindBoolean)
	case gjson.Number:
		return "number"
	case gjson.String:
		return string(kindString)
	}
	if v.IsArray() {
		return string(kindArray)
	}
	return string(kindObject)
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, " | ")
}
