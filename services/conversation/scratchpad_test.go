package conversation

import (
	"testing"

	"yawlit/models"
)

func TestScratchpadUpdateAndCompleteness(t *testing.T) {
	pad := NewScratchpad()

	if pad.Complete() {
		t.Fatal("empty scratchpad reported complete")
	}
	if got := pad.Completeness(); got != 0 {
		t.Fatalf("empty completeness = %v, want 0", got)
	}

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
			t.Fatalf("Update(%s, %q) failed: %v", f, v, err)
		}
	}

	if !pad.Complete() {
		t.Errorf("scratchpad with all required fields not complete, missing %v", pad.MissingRequired())
	}
	if got := pad.Value(models.FieldPhone); got != "9876543210" {
		t.Errorf("phone = %q, want 9876543210", got)
	}
}

func TestScratchpadRejectsUnknownField(t *testing.T) {
	pad := NewScratchpad()
	if err := pad.Update("favorite_color", "blue", models.ProvenanceExtracted, 1); err != ErrUnknownField {
		t.Fatalf("unknown field error = %v, want ErrUnknownField", err)
	}
}

func TestScratchpadProtectionInvariant(t *testing.T) {
	pad := NewScratchpad()
	if err := pad.Update(models.FieldFirstName, "Ravi", models.ProvenanceExtracted, 1); err != nil {
		t.Fatalf("initial update failed: %v", err)
	}

	// Invalid candidates must never displace a stored valid value.
	for _, bad := range []string{"", "unknown", "shukriya", "Honda", "123"} {
		err := pad.Update(models.FieldFirstName, bad, models.ProvenanceExtracted, 2)
		if err != ErrFieldProtected {
			t.Errorf("Update with %q: err = %v, want ErrFieldProtected", bad, err)
		}
		if got := pad.Value(models.FieldFirstName); got != "Ravi" {
			t.Fatalf("stored value changed to %q after invalid candidate %q", got, bad)
		}
	}
}

func TestScratchpadTurnOrdering(t *testing.T) {
	pad := NewScratchpad()
	if err := pad.Update(models.FieldPhone, "9876543210", models.ProvenanceExtracted, 3); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// Same or older turn loses.
	if err := pad.Update(models.FieldPhone, "9123456789", models.ProvenanceExtracted, 3); err != ErrStaleTurn {
		t.Errorf("same-turn update err = %v, want ErrStaleTurn", err)
	}
	if err := pad.Update(models.FieldPhone, "9123456789", models.ProvenanceRetroactive, 1); err != ErrStaleTurn {
		t.Errorf("older-turn update err = %v, want ErrStaleTurn", err)
	}
	if got := pad.Value(models.FieldPhone); got != "9876543210" {
		t.Fatalf("phone = %q after stale updates", got)
	}

	// Newer turn wins.
	if err := pad.Update(models.FieldPhone, "9123456789", models.ProvenanceExtracted, 4); err != nil {
		t.Fatalf("newer update failed: %v", err)
	}
	if got := pad.Value(models.FieldPhone); got != "9123456789" {
		t.Fatalf("phone = %q, want newer value", got)
	}

	// A manual correction beats turn ordering.
	if err := pad.Update(models.FieldPhone, "9000000000", models.ProvenanceManual, 4); err != nil {
		t.Fatalf("manual correction failed: %v", err)
	}
	if got := pad.Value(models.FieldPhone); got != "9000000000" {
		t.Fatalf("phone = %q after manual correction", got)
	}
}

func TestScratchpadRestoreRoundTrip(t *testing.T) {
	pad := NewScratchpad()
	if err := pad.Update(models.FieldFirstName, "Asha", models.ProvenanceExtracted, 2); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	restored := NewScratchpad()
	restored.Restore(pad.Fields())

	got, ok := restored.Get(models.FieldFirstName)
	if !ok {
		t.Fatal("restored pad lost first_name")
	}
	if got.Value != "Asha" || got.Turn != 2 || got.Provenance != models.ProvenanceExtracted {
		t.Errorf("restored field = %+v", got)
	}
}

func TestScratchpadReset(t *testing.T) {
	pad := NewScratchpad()
	if err := pad.Update(models.FieldFirstName, "Asha", models.ProvenanceExtracted, 1); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	pad.markScanned(models.FieldPhone)

	pad.Reset()
	if len(pad.Snapshot()) != 0 {
		t.Error("fields survived reset")
	}
	if pad.alreadyScanned(models.FieldPhone) {
		t.Error("scan markers survived reset")
	}
}
