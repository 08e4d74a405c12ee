package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"yawlit/models"
	"yawlit/utils"
)

// ConfirmationWorkflow owns the final step of a conversation: turning a
// complete scratchpad into a persisted service request, exactly once.
// Free-text confirmation (immediate mode) and the explicit confirmation
// action both funnel into the same finalize path.
type ConfirmationWorkflow struct {
	settings Settings
	store    ArtifactStore
}

func NewConfirmationWorkflow(settings Settings, store ArtifactStore) *ConfirmationWorkflow {
	return &ConfirmationWorkflow{settings: settings, store: store}
}

// Finalize runs the booking creation sequence:
//
//	validate pad -> build record -> persist -> record booking id -> clear pad
//
// The booking-id guard in conversation metadata makes the sequence
// exactly-once: a conversation that already carries a booking id returns it
// unchanged instead of creating a second record. On a failed persist nothing
// is recorded and the scratchpad survives, so the user can retry.
func (w *ConfirmationWorkflow) Finalize(ctx context.Context, conv *models.ConversationContext, pad *Scratchpad, method string) (string, error) {
	if conv.Metadata.BookingID != "" {
		return conv.Metadata.BookingID, nil
	}
	if missing := pad.MissingRequired(); len(missing) > 0 {
		return "", NewValidationError(fmt.Sprintf("cannot finalize, missing fields: %v", missing))
	}

	req := &models.ServiceRequest{
		ID:                 newServiceRequestID(),
		ConversationID:     conv.ID,
		Fields:             pad.Snapshot(),
		Status:             "confirmed",
		CreatedAt:          time.Now().UTC(),
		ConfirmationMethod: method,
	}

	if err := w.store.Put(ctx, req); err != nil {
		utils.GetLogger().Error("service request persist failed",
			zap.String("conversationId", conv.ID), zap.Error(err))
		return "", NewPersistenceError(err)
	}

	conv.Metadata.BookingID = req.ID
	conv.State = models.StateCompleted
	// Retroactive fill stays off until a restart; it must not repopulate
	// the cleared pad from pre-booking history.
	conv.Metadata.RetroactiveEnabled = false
	pad.Reset()

	utils.GetLogger().Info("service request created",
		zap.String("conversationId", conv.ID),
		zap.String("serviceRequestId", req.ID),
		zap.String("method", method))
	return req.ID, nil
}

// HandleAction applies an explicit confirmation-card action. Actions are
// honored in both modes; in explicit mode they are the only path to a
// booking.
func (w *ConfirmationWorkflow) HandleAction(ctx context.Context, conv *models.ConversationContext, pad *Scratchpad, action models.ConfirmationAction) (string, error) {
	switch action {
	case models.ActionConfirm:
		if conv.State != models.StateConfirmation && conv.Metadata.BookingID == "" {
			return "", NewValidationError("no booking awaiting confirmation")
		}
		return w.Finalize(ctx, conv, pad, "action")

	case models.ActionEdit:
		// Reopen collection without losing anything already captured.
		if conv.State == models.StateConfirmation {
			conv.Metadata.ConfirmationAttempts = 0
		}
		return "", nil

	case models.ActionCancel:
		if conv.Metadata.BookingID != "" {
			return "", NewValidationError("booking already created")
		}
		conv.State = models.StateCancelled
		pad.Reset()
		return "", nil
	}
	return "", NewValidationError(fmt.Sprintf("unknown confirmation action %q", action))
}

// RegisterAttempt bumps the attempt counter for a confirmation-state turn
// that neither confirmed nor corrected a field, and reports whether the cap
// policy forces the booking through.
func (w *ConfirmationWorkflow) RegisterAttempt(conv *models.ConversationContext) bool {
	conv.Metadata.ConfirmationAttempts++
	if conv.Metadata.ConfirmationAttempts < w.settings.MaxConfirmationAttempts {
		return false
	}
	return w.settings.AttemptCapPolicy == PolicyAutoProceed
}

// newServiceRequestID builds the SR-XXXXXXXX short id from a fresh uuid.
func newServiceRequestID() string {
	u := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "SR-" + u[:8]
}
