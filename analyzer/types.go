package analyzer

// Sentiment is the overall tone of a call as judged by the model.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
)

var sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}

// EmotionEvidence pairs a detected emotion with the words that show it
type EmotionEvidence struct {
	Emotion  string `json:"emotion"`
	Evidence string `json:"evidence"`
}

type SentimentAnalysis struct {
	OverallSentiment Sentiment          `json:"overallSentiment" jsonschema:"enum=Positive,enum=Negative,enum=Neutral"`
	SpecificEmotions *[]EmotionEvidence `json:"specificEmotions,omitempty"`
}

type KeyInteraction struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

// AnalysisResult is the validated analysis of a single call recording.
// Optional lists are pointers so an empty list from the model survives a round trip
// while an absent one stays absent.
type AnalysisResult struct {
	Transcription     string            `json:"transcription"`
	SentimentAnalysis SentimentAnalysis `json:"sentimentAnalysis"`
	PuntosDoterSolved bool              `json:"puntosDoterSolved"`
	ReasonForCall     string            `json:"reasonForCall"`
	KeyInteractions   *[]KeyInteraction `json:"keyInteractions,omitempty"`
}

// Emotions returns the detected emotions, or nil when the model sent none
func (r *AnalysisResult) Emotions() []EmotionEvidence {
	if r.SentimentAnalysis.SpecificEmotions == nil {
		return nil
	}
	return *r.SentimentAnalysis.SpecificEmotions
}

// Interactions returns the key question/response pairs, or nil when the model sent none
func (r *AnalysisResult) Interactions() []KeyInteraction {
	if r.KeyInteractions == nil {
		return nil
	}
	return *r.KeyInteractions
}
