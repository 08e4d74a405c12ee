package models

import "time"

// FieldName is the fixed key set for scratchpad fields. Unknown keys are
// rejected at update time rather than discovered via reflection.
type FieldName string

const (
	FieldFirstName       FieldName = "first_name"
	FieldLastName        FieldName = "last_name"
	FieldPhone           FieldName = "phone"
	FieldVehicleBrand    FieldName = "vehicle_brand"
	FieldVehicleModel    FieldName = "vehicle_model"
	FieldVehiclePlate    FieldName = "vehicle_plate"
	FieldAppointmentDate FieldName = "appointment_date"
	FieldServiceType     FieldName = "service_type"
	FieldTimeSlot        FieldName = "time_slot"
	FieldNotes           FieldName = "notes"
)

// Provenance records how a scratchpad value was obtained.
type Provenance string

const (
	ProvenanceExtracted   Provenance = "extracted"
	ProvenanceRetroactive Provenance = "retroactive"
	ProvenanceManual      Provenance = "manual_correction"
)

// ScratchpadField is a single captured booking field with its metadata.
type ScratchpadField struct {
	Name       FieldName  `json:"name"`
	Value      string     `json:"value"`
	Provenance Provenance `json:"provenance"`
	Turn       int        `json:"turn"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	Required   bool       `json:"required"`
}

// RequiredFields is the fixed set a booking cannot be created without.
var RequiredFields = []FieldName{
	FieldFirstName,
	FieldLastName,
	FieldPhone,
	FieldVehicleBrand,
	FieldVehicleModel,
	FieldVehiclePlate,
	FieldAppointmentDate,
}

// AllFields lists every recognized scratchpad key, required first.
var AllFields = []FieldName{
	FieldFirstName,
	FieldLastName,
	FieldPhone,
	FieldVehicleBrand,
	FieldVehicleModel,
	FieldVehiclePlate,
	FieldAppointmentDate,
	FieldServiceType,
	FieldTimeSlot,
	FieldNotes,
}

// IsRequired reports whether the field must be present for booking creation.
func (f FieldName) IsRequired() bool {
	for _, r := range RequiredFields {
		if r == f {
			return true
		}
	}
	return false
}

// KnownField reports whether the key belongs to the fixed schema.
func KnownField(f FieldName) bool {
	for _, k := range AllFields {
		if k == f {
			return true
		}
	}
	return false
}
