package conversation

import (
	"strings"
	"time"

	"yawlit/config"
	"yawlit/models"
)

// ConfirmationMode selects which path may trigger booking creation.
type ConfirmationMode string

const (
	// ModeImmediate creates the booking inline when a confirmation keyword
	// arrives in free text while in the confirmation state.
	ModeImmediate ConfirmationMode = "IMMEDIATE"
	// ModeExplicit requires a separate confirmation action; free-text
	// confirmation leaves the state unchanged.
	ModeExplicit ConfirmationMode = "EXPLICIT"
)

// AttemptCapPolicy decides what happens when confirmation attempts hit the cap.
type AttemptCapPolicy string

const (
	PolicyRemain      AttemptCapPolicy = "remain"
	PolicyAutoProceed AttemptCapPolicy = "auto_proceed"
)

// Settings is the immutable engine configuration, built once at startup and
// injected by reference into each component. Nothing mutates it at runtime.
type Settings struct {
	Mode                    ConfirmationMode
	AngerThreshold          float64
	ConfirmationKeywords    []string
	EditKeywords            []string
	CancelKeywords          []string
	MaxConfirmationAttempts int
	AttemptCapPolicy        AttemptCapPolicy
	RetroactiveScanLimit    int
	ExtractionTimeout       time.Duration

	// RequiredFieldPerState drives the standard progression: a non-terminal
	// collection state advances once its field is present. Entry has no
	// required field and always advances.
	RequiredFieldPerState map[models.ConversationState]models.FieldName
}

// DefaultSettings mirrors the shipped configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		Mode:           ModeImmediate,
		AngerThreshold: 8.0,
		ConfirmationKeywords: []string{
			"yes", "confirm", "ok", "okay", "book", "proceed", "finalize", "haan", "haa",
		},
		EditKeywords:            []string{"edit", "change", "update", "correct", "modify"},
		CancelKeywords:          []string{"cancel", "no", "abort"},
		MaxConfirmationAttempts: 3,
		AttemptCapPolicy:        PolicyAutoProceed,
		RetroactiveScanLimit:    4,
		ExtractionTimeout:       5 * time.Second,
		RequiredFieldPerState: map[models.ConversationState]models.FieldName{
			models.StateNameCollection:    models.FieldFirstName,
			models.StateVehicleCollection: models.FieldVehicleBrand,
			models.StateDateCollection:    models.FieldAppointmentDate,
		},
	}
}

// SettingsFromConfig builds the immutable settings value from loaded config.
func SettingsFromConfig(cfg config.Config) Settings {
	s := DefaultSettings()
	if mode := strings.ToUpper(cfg.ConfirmationMode); mode == string(ModeExplicit) {
		s.Mode = ModeExplicit
	}
	if cfg.AngerThreshold > 0 {
		s.AngerThreshold = cfg.AngerThreshold
	}
	if len(cfg.ConfirmationKeywords) > 0 {
		s.ConfirmationKeywords = cfg.ConfirmationKeywords
	}
	if cfg.MaxConfirmationAttempts > 0 {
		s.MaxConfirmationAttempts = cfg.MaxConfirmationAttempts
	}
	if cfg.AttemptCapPolicy == string(PolicyRemain) {
		s.AttemptCapPolicy = PolicyRemain
	}
	if cfg.RetroactiveScanLimit > 0 {
		s.RetroactiveScanLimit = cfg.RetroactiveScanLimit
	}
	if cfg.ExtractionTimeoutMS > 0 {
		s.ExtractionTimeout = time.Duration(cfg.ExtractionTimeoutMS) * time.Millisecond
	}
	return s
}

// IsConfirmation reports whether the utterance counts as a confirmation: every
// token, lowercased and stripped of punctuation, must be a confirmation
// keyword. Substring matching is deliberately avoided so that "ok thanks"
// never completes a booking.
func (s Settings) IsConfirmation(raw string) bool {
	tokens := tokenize(raw)
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if !containsFold(s.ConfirmationKeywords, tok) {
			return false
		}
	}
	return true
}

// HasEditKeyword reports whether the utterance asks for a field correction.
func (s Settings) HasEditKeyword(raw string) bool {
	return anyTokenIn(raw, s.EditKeywords)
}

// HasCancelKeyword reports whether the utterance asks to abandon the booking.
func (s Settings) HasCancelKeyword(raw string) bool {
	return anyTokenIn(raw, s.CancelKeywords)
}

func tokenize(raw string) []string {
	return strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
}

func containsFold(set []string, tok string) bool {
	for _, kw := range set {
		if strings.EqualFold(kw, tok) {
			return true
		}
	}
	return false
}

func anyTokenIn(raw string, set []string) bool {
	for _, tok := range tokenize(raw) {
		if containsFold(set, tok) {
			return true
		}
	}
	return false
}
