package conversation

import (
	"testing"

	"yawlit/models"
)

func completePad(t *testing.T) *Scratchpad {
	t.Helper()
	pad := NewScratchpad()
	fields := map[models.FieldName]string{
		models.FieldFirstName:       "Ravi",
		models.FieldLastName:        "Sharma",
		models.FieldPhone:           "9876543210",
		models.FieldVehicleBrand:    "Honda",
		models.FieldVehicleModel:    "City",
		models.FieldVehiclePlate:    "MH12AB1234",
		models.FieldAppointmentDate: "2026-09-01",
	}
	for f, v := range fields {
		if err := pad.Update(f, v, models.ProvenanceExtracted, 1); err != nil {
			t.Fatalf("seed %s: %v", f, err)
		}
	}
	return pad
}

func neutralResult() *models.ExtractionResult {
	return models.NewExtractionResult("")
}

func TestStateStandardProgression(t *testing.T) {
	sc := NewStateCoordinator(DefaultSettings())
	pad := NewScratchpad()

	// Nothing collected: entry leads to name collection and stays there.
	if got := sc.Next(models.StateEntry, pad, neutralResult()); got != models.StateNameCollection {
		t.Fatalf("entry -> %s, want name_collection", got)
	}
	if got := sc.Next(models.StateNameCollection, pad, neutralResult()); got != models.StateNameCollection {
		t.Fatalf("name_collection without name -> %s", got)
	}

	// Name group complete: advance to vehicle collection.
	seed := map[models.FieldName]string{
		models.FieldFirstName: "Ravi",
		models.FieldLastName:  "Sharma",
		models.FieldPhone:     "9876543210",
	}
	for f, v := range seed {
		if err := pad.Update(f, v, models.ProvenanceExtracted, 1); err != nil {
			t.Fatalf("seed %s: %v", f, err)
		}
	}
	if got := sc.Next(models.StateNameCollection, pad, neutralResult()); got != models.StateVehicleCollection {
		t.Fatalf("name_collection with name -> %s, want vehicle_collection", got)
	}
}

func TestStateSkipsSatisfiedStates(t *testing.T) {
	// Data supplied out of order skips the states it already satisfies.
	sc := NewStateCoordinator(DefaultSettings())
	pad := completePad(t)

	if got := sc.Next(models.StateEntry, pad, neutralResult()); got != models.StateConfirmation {
		t.Fatalf("entry with full pad -> %s, want confirmation", got)
	}
}

func TestStateAngerOverride(t *testing.T) {
	sc := NewStateCoordinator(DefaultSettings())
	pad := completePad(t)

	res := neutralResult()
	res.Sentiment.Anger = 8.0

	for _, state := range []models.ConversationState{
		models.StateEntry, models.StateNameCollection, models.StateVehicleCollection,
		models.StateDateCollection, models.StateConfirmation, models.StateHelp,
	} {
		if got := sc.Next(state, pad, res); got != models.StateError {
			t.Errorf("anger from %s -> %s, want error", state, got)
		}
	}

	// Terminal states are never reopened by anger.
	for _, state := range []models.ConversationState{models.StateCompleted, models.StateCancelled} {
		if got := sc.Next(state, pad, res); got != state {
			t.Errorf("anger from terminal %s -> %s", state, got)
		}
	}

	// Just below threshold stays in the flow.
	res.Sentiment.Anger = 7.5
	if got := sc.Next(models.StateDateCollection, pad, res); got == models.StateError {
		t.Error("anger below threshold routed to error")
	}
}

func TestStateErrorRecovery(t *testing.T) {
	sc := NewStateCoordinator(DefaultSettings())
	pad := NewScratchpad()

	if got := sc.Next(models.StateError, pad, neutralResult()); got != models.StateNameCollection {
		t.Fatalf("calm turn from error -> %s, want name_collection", got)
	}

	res := neutralResult()
	res.Sentiment.Anger = 9.0
	if got := sc.Next(models.StateError, pad, res); got != models.StateError {
		t.Fatalf("angry turn from error -> %s, want error", got)
	}
}

func TestStateIntentOverrides(t *testing.T) {
	sc := NewStateCoordinator(DefaultSettings())
	pad := completePad(t)

	restart := neutralResult()
	restart.Intent = models.IntentRestart
	if got := sc.Next(models.StateCompleted, pad, restart); got != models.StateEntry {
		t.Errorf("restart from completed -> %s, want entry", got)
	}

	cancel := neutralResult()
	cancel.Intent = models.IntentCancel
	if got := sc.Next(models.StateConfirmation, pad, cancel); got != models.StateCancelled {
		t.Errorf("cancel from confirmation -> %s, want cancelled", got)
	}
	// Cancel before confirmation does not abandon; the user may mean a field.
	if got := sc.Next(models.StateNameCollection, NewScratchpad(), cancel); got == models.StateCancelled {
		t.Error("cancel intent abandoned a collection-phase conversation")
	}

	help := neutralResult()
	help.Intent = models.IntentHelp
	if got := sc.Next(models.StateDateCollection, pad, help); got != models.StateHelp {
		t.Errorf("help from date_collection -> %s, want help", got)
	}
	if got := sc.Next(models.StateHelp, pad, neutralResult()); got != models.StateConfirmation {
		t.Errorf("resume from help with full pad -> %s, want confirmation", got)
	}
}

func TestStateConfirmationGate(t *testing.T) {
	sc := NewStateCoordinator(DefaultSettings())
	pad := completePad(t)

	confirmed := neutralResult()
	confirmed.Confirmed = true
	if got := sc.Next(models.StateConfirmation, pad, confirmed); got != models.StateCompleted {
		t.Fatalf("confirmed turn -> %s, want completed", got)
	}

	// Unconfirmed input holds the state.
	if got := sc.Next(models.StateConfirmation, pad, neutralResult()); got != models.StateConfirmation {
		t.Fatalf("unconfirmed turn -> %s, want confirmation", got)
	}

	// An incomplete pad can never complete, confirmed or not.
	partial := NewScratchpad()
	if got := sc.Next(models.StateConfirmation, partial, confirmed); got == models.StateCompleted {
		t.Fatal("incomplete pad completed a booking")
	}

	// Explicit mode ignores free-text confirmation.
	explicit := DefaultSettings()
	explicit.Mode = ModeExplicit
	scExplicit := NewStateCoordinator(explicit)
	if got := scExplicit.Next(models.StateConfirmation, pad, confirmed); got != models.StateConfirmation {
		t.Fatalf("explicit mode free-text confirm -> %s, want confirmation", got)
	}
}

func TestIsConfirmationTokenRule(t *testing.T) {
	s := DefaultSettings()
	tests := []struct {
		input string
		want  bool
	}{
		{"yes", true},
		{"Yes, confirm", true},
		{"ok", true},
		{"haan", true},
		{"ok thanks", false}, // gratitude, not confirmation
		{"yes but change the date", false},
		{"thanks", false},
		{"", false},
		{"book", true},
	}
	for _, tt := range tests {
		if got := s.IsConfirmation(tt.input); got != tt.want {
			t.Errorf("IsConfirmation(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
