package conversation

import (
	"context"

	"yawlit/models"
)

// TaskKind names the field family requested from the semantic extractor.
type TaskKind string

const (
	TaskName         TaskKind = "name"
	TaskPhone        TaskKind = "phone"
	TaskVehicle      TaskKind = "vehicle"
	TaskDate         TaskKind = "date"
	TaskIntent       TaskKind = "intent"
	TaskSentiment    TaskKind = "sentiment"
	TaskTypo         TaskKind = "typo"
	TaskConfirmation TaskKind = "confirmation"
)

// Task is the descriptor handed to the semantic extractor.
type Task struct {
	Kind TaskKind
}

// Prediction is the structured output of the semantic extractor: a flat map of
// field keys to string values. Missing keys mean no candidate.
type Prediction map[string]string

// Extractor is the external semantic-extraction capability. It is treated as
// opaque, possibly slow and possibly wrong; calls must be bounded by the
// caller's context deadline.
type Extractor interface {
	Infer(ctx context.Context, task Task, input string, history []models.Turn) (Prediction, error)
}

// ArtifactStore persists finalized service requests. The store is not assumed
// to deduplicate; exactly-once creation is enforced by the workflow's
// booking-id guard.
type ArtifactStore interface {
	Put(ctx context.Context, req *models.ServiceRequest) error
}

// Composer turns a processed turn into user-facing text. Formatting is an
// external concern; the engine only supplies the inputs.
type Composer interface {
	Compose(raw string, res *models.ExtractionResult, next models.ConversationState,
		fields map[models.FieldName]string, completeness float64, bookingID string) string
}
