package conversation

import (
	"time"

	"yawlit/models"
)

// Scratchpad is the mutable per-conversation working record of booking
// fields. It is the single source of truth for collected data and is owned
// exclusively by one ConversationContext; callers must hold the conversation
// lock while mutating it.
type Scratchpad struct {
	fields map[models.FieldName]*models.ScratchpadField
	// scanned tracks fields already swept during retroactive fill so the
	// same history is not rescanned turn after turn. Cleared on Reset.
	scanned map[models.FieldName]bool
}

// NewScratchpad returns an empty scratchpad.
func NewScratchpad() *Scratchpad {
	return &Scratchpad{
		fields:  make(map[models.FieldName]*models.ScratchpadField),
		scanned: make(map[models.FieldName]bool),
	}
}

// Update stores a candidate value for a field.
//
// Protection invariant: a required field already holding a schema-valid value
// is never overwritten with an empty, placeholder, or invalid candidate.
// Turn-ordered resolution: a candidate carrying an older-or-equal turn than
// the stored entry is skipped, newer data always wins.
func (s *Scratchpad) Update(f models.FieldName, value string, prov models.Provenance, turn int) error {
	if !models.KnownField(f) {
		return ErrUnknownField
	}

	existing, has := s.fields[f]

	if err := validateField(f, value); err != nil {
		if has && validateField(f, existing.Value) == nil {
			return ErrFieldProtected
		}
		return ErrValueRejected
	}

	if has && turn <= existing.Turn && existing.Value != "" {
		// Manual corrections bypass turn ordering: an explicit edit in the
		// same turn as an extraction must win.
		if prov != models.ProvenanceManual {
			return ErrStaleTurn
		}
	}

	s.fields[f] = &models.ScratchpadField{
		Name:       f,
		Value:      value,
		Provenance: prov,
		Turn:       turn,
		UpdatedAt:  time.Now(),
		Required:   f.IsRequired(),
	}
	return nil
}

// Get returns the stored field entry, if any.
func (s *Scratchpad) Get(f models.FieldName) (models.ScratchpadField, bool) {
	fld, ok := s.fields[f]
	if !ok {
		return models.ScratchpadField{}, false
	}
	return *fld, true
}

// Value returns the stored value for a field, or "" when absent.
func (s *Scratchpad) Value(f models.FieldName) string {
	if fld, ok := s.fields[f]; ok {
		return fld.Value
	}
	return ""
}

// Has reports whether the field holds a schema-valid value.
func (s *Scratchpad) Has(f models.FieldName) bool {
	fld, ok := s.fields[f]
	return ok && validateField(f, fld.Value) == nil
}

// Completeness is the fraction of required fields currently populated with
// valid values, in [0,1].
func (s *Scratchpad) Completeness() float64 {
	filled := 0
	for _, f := range models.RequiredFields {
		if s.Has(f) {
			filled++
		}
	}
	return float64(filled) / float64(len(models.RequiredFields))
}

// Complete reports whether every required field is populated.
func (s *Scratchpad) Complete() bool {
	return s.Completeness() == 1.0
}

// MissingRequired lists required fields still empty, in schema order.
func (s *Scratchpad) MissingRequired() []models.FieldName {
	var missing []models.FieldName
	for _, f := range models.RequiredFields {
		if !s.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Snapshot returns a copy of all populated field values, for artifact
// creation and response composition.
func (s *Scratchpad) Snapshot() map[models.FieldName]string {
	out := make(map[models.FieldName]string, len(s.fields))
	for name, fld := range s.fields {
		if fld.Value != "" {
			out[name] = fld.Value
		}
	}
	return out
}

// Fields returns a copy of the full entries, used for context snapshots.
func (s *Scratchpad) Fields() map[models.FieldName]models.ScratchpadField {
	out := make(map[models.FieldName]models.ScratchpadField, len(s.fields))
	for name, fld := range s.fields {
		out[name] = *fld
	}
	return out
}

// Restore replaces the scratchpad contents from a stored snapshot.
func (s *Scratchpad) Restore(fields map[models.FieldName]models.ScratchpadField) {
	s.fields = make(map[models.FieldName]*models.ScratchpadField, len(fields))
	for name, fld := range fields {
		f := fld
		s.fields[name] = &f
	}
}

// markScanned records that retroactive fill already swept this field.
func (s *Scratchpad) markScanned(f models.FieldName) { s.scanned[f] = true }

func (s *Scratchpad) alreadyScanned(f models.FieldName) bool { return s.scanned[f] }

// Reset clears all fields and scan markers. Permitted only immediately after
// a service request has been durably persisted or on an explicit cancel
// action; the workflow enforces that policy.
func (s *Scratchpad) Reset() {
	s.fields = make(map[models.FieldName]*models.ScratchpadField)
	s.scanned = make(map[models.FieldName]bool)
}
