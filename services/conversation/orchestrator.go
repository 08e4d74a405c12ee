package conversation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"yawlit/models"
	"yawlit/utils"
)

// TurnResult is what one processed turn hands back to the transport layer.
type TurnResult struct {
	ConversationID string                      `json:"conversationId"`
	Reply          string                      `json:"reply"`
	State          models.ConversationState    `json:"state"`
	Fields         map[models.FieldName]string `json:"fields"`
	Completeness   float64                     `json:"completeness"`
	Intent         models.Intent               `json:"intent,omitempty"`
	Sentiment      *models.SentimentScores     `json:"sentiment,omitempty"`
	BookingID      string                      `json:"bookingId,omitempty"`
}

// Orchestrator drives the per-turn pipeline: extraction, scratchpad update,
// retroactive fill, state transition, confirmation handling, response
// composition, and snapshot persistence. It is the only component that
// mutates conversation state.
type Orchestrator struct {
	settings Settings
	manager  *Manager
	extract  *ExtractionCoordinator
	states   *StateCoordinator
	workflow *ConfirmationWorkflow
	retro    *RetroactiveFiller
	composer Composer
}

func NewOrchestrator(settings Settings, manager *Manager, extract *ExtractionCoordinator,
	workflow *ConfirmationWorkflow, composer Composer) *Orchestrator {
	return &Orchestrator{
		settings: settings,
		manager:  manager,
		extract:  extract,
		states:   NewStateCoordinator(settings),
		workflow: workflow,
		retro:    NewRetroactiveFiller(settings),
		composer: composer,
	}
}

// ProcessTurn handles one user utterance end to end. Turns for the same
// conversation are serialized by the manager's per-conversation lock; the
// snapshot is persisted before the reply is returned, so a crash between
// turns never loses an applied turn.
func (o *Orchestrator) ProcessTurn(ctx context.Context, convID, input string) (*TurnResult, error) {
	conv, pad, release, err := o.manager.Acquire(ctx, convID)
	if err != nil {
		return nil, err
	}
	defer release()

	conv.History = append(conv.History, models.Turn{Role: "user", Text: input, At: time.Now().UTC()})
	ordinal := userTurnCount(conv.History)

	res := o.extract.Extract(ctx, input, conv.History, conv.State)
	updated := o.applyFields(conv, pad, res, ordinal)

	if conv.Metadata.RetroactiveEnabled {
		o.retro.Fill(pad, conv.History)
	}

	prev := conv.State
	next := o.states.Next(conv.State, pad, res)

	// Finalize clears the pad; keep the snapshot for the completion reply.
	fieldsBefore := pad.Snapshot()
	bookingID := conv.Metadata.BookingID
	switch {
	case prev == models.StateConfirmation && next == models.StateCompleted:
		bookingID, err = o.workflow.Finalize(ctx, conv, pad, "chat")
		if err != nil {
			// Persist failed or pad raced incomplete; stay in confirmation
			// with the scratchpad intact so the user can retry.
			next = models.StateConfirmation
			res.ExtractionErrors = append(res.ExtractionErrors, err.Error())
		}

	case prev == models.StateConfirmation && next == models.StateConfirmation:
		switch {
		case res.Confirmed:
			// Explicit mode acknowledges but waits for the action.
		case updated > 0 || o.settings.HasEditKeyword(input):
			// A correction restarts the attempt budget.
			conv.Metadata.ConfirmationAttempts = 0
		case o.settings.HasCancelKeyword(input):
			// A refusal is an answer, not a stall. It also restarts the
			// budget, so the attempt cap can never book over a declining
			// user.
			conv.Metadata.ConfirmationAttempts = 0
		default:
			// The cap may force the booking through, but only in immediate
			// mode; explicit mode re-prompts and keeps waiting for the
			// confirmation action.
			if o.workflow.RegisterAttempt(conv) && o.settings.Mode == ModeImmediate {
				bookingID, err = o.workflow.Finalize(ctx, conv, pad, "chat")
				if err == nil {
					next = models.StateCompleted
				} else {
					res.ExtractionErrors = append(res.ExtractionErrors, err.Error())
				}
			}
		}
	}

	o.applyTransition(conv, pad, prev, next)

	replyFields := pad.Snapshot()
	if conv.State == models.StateCompleted {
		replyFields = fieldsBefore
	}
	reply := o.composer.Compose(input, res, conv.State, replyFields, pad.Completeness(), bookingID)
	conv.History = append(conv.History, models.Turn{Role: "assistant", Text: reply, At: time.Now().UTC()})
	conv.Metadata.ExtractionErrorLog = append(conv.Metadata.ExtractionErrorLog, res.ExtractionErrors...)

	if err := o.manager.Persist(ctx, conv, pad); err != nil {
		utils.GetLogger().Error("context snapshot persist failed",
			zap.String("conversationId", convID), zap.Error(err))
	}

	return &TurnResult{
		ConversationID: convID,
		Reply:          reply,
		State:          conv.State,
		Fields:         pad.Snapshot(),
		Completeness:   pad.Completeness(),
		Intent:         res.Intent,
		Sentiment:      &res.Sentiment,
		BookingID:      bookingID,
	}, nil
}

// HandleAction applies an explicit confirmation-card action outside the
// free-text pipeline.
func (o *Orchestrator) HandleAction(ctx context.Context, convID string, action models.ConfirmationAction) (*TurnResult, error) {
	conv, pad, release, err := o.manager.Acquire(ctx, convID)
	if err != nil {
		return nil, err
	}
	defer release()

	// A confirm action clears the pad on success; keep the snapshot for the
	// completion reply.
	fieldsBefore := pad.Snapshot()
	bookingID, err := o.workflow.HandleAction(ctx, conv, pad, action)
	if err != nil {
		return nil, err
	}
	if action == models.ActionEdit && conv.State == models.StateConfirmation {
		conv.State = o.states.firstIncomplete(pad)
		if conv.State == models.StateConfirmation {
			// Everything is still filled; hold for a corrected value.
			conv.State = models.StateDateCollection
		}
	}

	replyFields := pad.Snapshot()
	if conv.State == models.StateCompleted {
		replyFields = fieldsBefore
	}
	reply := o.composer.Compose("", models.NewExtractionResult(""), conv.State,
		replyFields, pad.Completeness(), bookingID)
	conv.History = append(conv.History, models.Turn{Role: "assistant", Text: reply, At: time.Now().UTC()})

	if err := o.manager.Persist(ctx, conv, pad); err != nil {
		utils.GetLogger().Error("context snapshot persist failed",
			zap.String("conversationId", convID), zap.Error(err))
	}

	return &TurnResult{
		ConversationID: convID,
		Reply:          reply,
		State:          conv.State,
		Fields:         pad.Snapshot(),
		Completeness:   pad.Completeness(),
		BookingID:      bookingID,
	}, nil
}

// applyFields moves extraction candidates into the scratchpad and returns how
// many fields actually changed. An utterance carrying an edit keyword applies
// with manual-correction provenance so the correction beats same-turn
// extraction ordering.
func (o *Orchestrator) applyFields(conv *models.ConversationContext, pad *Scratchpad, res *models.ExtractionResult, ordinal int) int {
	prov := models.ProvenanceExtracted
	if o.settings.HasEditKeyword(res.RawInput) {
		prov = models.ProvenanceManual
	}
	updated := 0
	for f, v := range res.Fields {
		if err := pad.Update(f, v, prov, ordinal); err != nil {
			// Protected or stale values are skipped silently; the pipeline
			// already validated, so anything else is worth logging.
			if err != ErrFieldProtected && err != ErrStaleTurn {
				utils.GetLogger().Debug("scratchpad update rejected",
					zap.String("conversationId", conv.ID),
					zap.String("field", string(f)), zap.Error(err))
			}
			continue
		}
		updated++
	}
	return updated
}

// applyTransition commits the state change and its side effects. A free-text
// cancel keeps the collected data (only the explicit cancel action clears
// it); a restart to entry wipes the pad and the per-booking metadata so a
// fresh booking can begin.
func (o *Orchestrator) applyTransition(conv *models.ConversationContext, pad *Scratchpad, prev, next models.ConversationState) {
	if next == models.StateEntry && prev != models.StateEntry {
		pad.Reset()
		conv.Metadata.ConfirmationAttempts = 0
		conv.Metadata.BookingID = ""
		conv.Metadata.RetroactiveEnabled = true
	}
	if next != models.StateConfirmation && prev == models.StateConfirmation {
		conv.Metadata.ConfirmationAttempts = 0
	}
	conv.State = next
}

func userTurnCount(history []models.Turn) int {
	n := 0
	for _, t := range history {
		if t.Role == "user" {
			n++
		}
	}
	return n
}
