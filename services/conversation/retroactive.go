package conversation

import (
	"time"

	"yawlit/models"
)

// RetroactiveFiller re-reads recent history for fields the live pipeline
// missed, e.g. a phone number mentioned three turns before it was asked for.
// Only deterministic pattern extraction runs here; history is never sent back
// through the semantic extractor.
type RetroactiveFiller struct {
	settings Settings
	now      func() time.Time
}

func NewRetroactiveFiller(settings Settings) *RetroactiveFiller {
	return &RetroactiveFiller{settings: settings, now: time.Now}
}

// Fill scans past user turns, newest first, bounded by the configured scan
// limit, and offers candidates for still-missing required fields. Each field
// is swept at most once per conversation; stored values are never touched.
func (r *RetroactiveFiller) Fill(pad *Scratchpad, history []models.Turn) {
	missing := pad.MissingRequired()
	if len(missing) == 0 {
		return
	}

	var targets []models.FieldName
	for _, f := range missing {
		if !pad.alreadyScanned(f) {
			targets = append(targets, f)
		}
	}
	if len(targets) == 0 {
		return
	}

	// Collect user turns with their ordinal, newest first, excluding the
	// current turn (the live pipeline already handled it).
	type userTurn struct {
		ordinal int
		text    string
	}
	var users []userTurn
	ord := 0
	for _, t := range history {
		if t.Role == "user" {
			ord++
			users = append(users, userTurn{ordinal: ord, text: t.Text})
		}
	}
	if len(users) < 2 {
		return
	}
	users = users[:len(users)-1]

	scanned := 0
	for i := len(users) - 1; i >= 0 && scanned < r.settings.RetroactiveScanLimit; i-- {
		r.scanTurn(pad, targets, users[i].text, users[i].ordinal)
		scanned++
	}

	for _, f := range targets {
		pad.markScanned(f)
	}
}

func (r *RetroactiveFiller) scanTurn(pad *Scratchpad, targets []models.FieldName, text string, ordinal int) {
	for _, f := range targets {
		if pad.Has(f) {
			continue
		}
		var candidate string
		switch f {
		case models.FieldFirstName:
			candidate, _ = fallbackName(text)
		case models.FieldLastName:
			_, candidate = fallbackName(text)
		case models.FieldPhone:
			candidate = fallbackPhone(text)
		case models.FieldVehicleBrand:
			candidate, _, _ = fallbackVehicle(text)
		case models.FieldVehicleModel:
			_, candidate, _ = fallbackVehicle(text)
		case models.FieldVehiclePlate:
			_, _, candidate = fallbackVehicle(text)
		case models.FieldAppointmentDate:
			if hasDateKeyword(text) {
				candidate = fallbackDate(text, r.now())
			}
		}
		if candidate == "" {
			continue
		}
		// Rejections are expected here; old turns hold plenty of non-values.
		_ = pad.Update(f, candidate, models.ProvenanceRetroactive, ordinal)
	}
}
