package conversation

import (
	"yawlit/models"
)

// StateCoordinator computes state transitions. It is a pure function of its
// inputs: no I/O, no clock, no mutation of the scratchpad. Every
// (state, result) pair maps to exactly one next state.
type StateCoordinator struct {
	settings Settings
}

func NewStateCoordinator(settings Settings) *StateCoordinator {
	return &StateCoordinator{settings: settings}
}

// Next returns the state the conversation moves to after this turn.
//
// Priority order, highest first:
//  1. anger override — anger at or above threshold routes to error
//  2. restart intent — back to entry from anywhere
//  3. cancel intent — abandons from confirmation onward
//  4. help intent — detour to help, resumable
//  5. confirmation gate — complete pad and a confirming utterance
//  6. standard progression — advance once the state's field is present
func (sc *StateCoordinator) Next(current models.ConversationState, pad *Scratchpad, res *models.ExtractionResult) models.ConversationState {
	// Anger never reopens a finished conversation.
	if res.Sentiment.Anger >= sc.settings.AngerThreshold &&
		!current.Terminal() && current != models.StateError {
		return models.StateError
	}

	switch res.Intent {
	case models.IntentRestart:
		return models.StateEntry
	case models.IntentCancel:
		if current == models.StateConfirmation || current == models.StateCompleted {
			return models.StateCancelled
		}
	case models.IntentHelp:
		if !current.Terminal() {
			return models.StateHelp
		}
	}

	switch current {
	case models.StateEntry:
		return sc.firstIncomplete(pad)

	case models.StateNameCollection, models.StateVehicleCollection, models.StateDateCollection:
		required := sc.settings.RequiredFieldPerState[current]
		if pad.Has(required) {
			return sc.firstIncomplete(pad)
		}
		return current

	case models.StateConfirmation:
		if !pad.Complete() {
			// A correction invalidated a required field; resume collection.
			return sc.firstIncomplete(pad)
		}
		if res.Confirmed && sc.settings.Mode == ModeImmediate {
			return models.StateCompleted
		}
		return models.StateConfirmation

	case models.StateHelp:
		// Any non-help turn resumes collection where data left off.
		return sc.firstIncomplete(pad)

	case models.StateError:
		// A calm turn recovers back into the flow.
		if res.Sentiment.Anger < sc.settings.AngerThreshold {
			return sc.firstIncomplete(pad)
		}
		return models.StateError

	case models.StateCompleted, models.StateCancelled:
		return current
	}

	return models.StateEntry
}

// firstIncomplete picks the earliest collection state whose group is still
// missing data, or confirmation when everything required is present. This
// makes progress monotone in the scratchpad, not in the visited states, so
// data supplied out of order skips the states it satisfies.
func (sc *StateCoordinator) firstIncomplete(pad *Scratchpad) models.ConversationState {
	switch {
	case !pad.Has(models.FieldFirstName):
		return models.StateNameCollection
	case !pad.Has(models.FieldLastName) || !pad.Has(models.FieldPhone):
		return models.StateNameCollection
	case !pad.Has(models.FieldVehicleBrand) || !pad.Has(models.FieldVehicleModel) || !pad.Has(models.FieldVehiclePlate):
		return models.StateVehicleCollection
	case !pad.Has(models.FieldAppointmentDate):
		return models.StateDateCollection
	}
	return models.StateConfirmation
}
