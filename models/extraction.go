package models

// Intent is the classified purpose of a user utterance.
type Intent string

const (
	IntentBook    Intent = "book"
	IntentHelp    Intent = "help"
	IntentCancel  Intent = "cancel"
	IntentRestart Intent = "restart"
	IntentUnknown Intent = "unknown"
	IntentOther   Intent = "other"
)

// SentimentScores are multi-dimensional emotion scores in [1,10].
type SentimentScores struct {
	Interest float64 `json:"interest"`
	Anger    float64 `json:"anger"`
	Disgust  float64 `json:"disgust"`
	Boredom  float64 `json:"boredom"`
	Neutral  float64 `json:"neutral"`
}

// NeutralSentiment is the fallback when sentiment analysis yields nothing.
func NeutralSentiment() SentimentScores {
	return SentimentScores{Interest: 5.0, Anger: 1.0, Disgust: 1.0, Boredom: 3.0, Neutral: 7.0}
}

// TypoFlag marks a suspected typo in the utterance with a suggested reading.
type TypoFlag struct {
	Detected   bool   `json:"detected"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ExtractionResult is produced fresh per turn and never persisted beyond it.
// Fields holds per-field candidate values; absent key means no candidate.
type ExtractionResult struct {
	Fields           map[FieldName]string `json:"fields"`
	Sentiment        SentimentScores      `json:"sentiment"`
	Intent           Intent               `json:"intent"`
	Typo             TypoFlag             `json:"typo"`
	Confirmed        bool                 `json:"confirmed"` // confirmation-detection family
	RawInput         string               `json:"rawInput"`
	ValidationErrors []string             `json:"validationErrors,omitempty"`
	ExtractionErrors []string             `json:"extractionErrors,omitempty"`
}

// NewExtractionResult returns an empty result for the given utterance.
func NewExtractionResult(raw string) *ExtractionResult {
	return &ExtractionResult{
		Fields:    make(map[FieldName]string),
		Sentiment: NeutralSentiment(),
		Intent:    IntentUnknown,
		RawInput:  raw,
	}
}
