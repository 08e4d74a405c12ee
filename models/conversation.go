package models

import "time"

// ConversationState is the unified state machine for the booking chat flow.
type ConversationState string

const (
	StateEntry             ConversationState = "entry"
	StateNameCollection    ConversationState = "name_collection"
	StateVehicleCollection ConversationState = "vehicle_collection"
	StateDateCollection    ConversationState = "date_collection"
	StateConfirmation      ConversationState = "confirmation"
	StateCompleted         ConversationState = "completed"
	StateCancelled         ConversationState = "cancelled"
	StateError             ConversationState = "error"
	StateHelp              ConversationState = "help"
)

// Terminal reports whether the state accepts no further collection progress.
func (s ConversationState) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// Turn is a single utterance in the conversation history.
type Turn struct {
	Role string    `json:"role"` // "user" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// ConversationMetadata carries per-conversation bookkeeping that survives turns.
type ConversationMetadata struct {
	ConfirmationAttempts int      `json:"confirmationAttempts"`
	BookingID            string   `json:"bookingId,omitempty"`
	RetroactiveEnabled   bool     `json:"retroactiveEnabled"`
	ExtractionErrorLog   []string `json:"extractionErrorLog,omitempty"`
}

// ConversationContext is the per-conversation working record. It is created on
// the first turn for a new id and mutated once per turn by the orchestrator;
// it is never destroyed, only reset after a booking is persisted or on an
// explicit cancel action.
type ConversationContext struct {
	ID        string               `json:"id"`
	State     ConversationState    `json:"state"`
	History   []Turn               `json:"history"`
	Metadata  ConversationMetadata `json:"metadata"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// ConfirmationAction is an explicit out-of-band action on the confirmation
// card, delivered outside free-text input.
type ConfirmationAction string

const (
	ActionConfirm ConfirmationAction = "confirm"
	ActionEdit    ConfirmationAction = "edit"
	ActionCancel  ConfirmationAction = "cancel"
)
