package response

import (
	"fmt"
	"strings"

	"yawlit/models"
)

// ScriptedComposer renders user-facing replies from the turn outcome. Wording
// lives here and nowhere else; the engine never formats text itself.
type ScriptedComposer struct{}

func NewScriptedComposer() *ScriptedComposer {
	return &ScriptedComposer{}
}

func (c *ScriptedComposer) Compose(raw string, res *models.ExtractionResult, next models.ConversationState,
	fields map[models.FieldName]string, completeness float64, bookingID string) string {

	var sb strings.Builder

	if res.Typo.Detected && res.Typo.Suggestion != "" {
		fmt.Fprintf(&sb, "Did you mean %q? ", res.Typo.Suggestion)
	}

	switch next {
	case models.StateEntry:
		sb.WriteString("Hi! I can help you book a vehicle service appointment. May I have your name?")

	case models.StateNameCollection:
		sb.WriteString(askNamePart(fields))

	case models.StateVehicleCollection:
		sb.WriteString(askVehiclePart(fields))

	case models.StateDateCollection:
		sb.WriteString("Which date works for your appointment? You can say a date like 2026-09-01, or just \"tomorrow\".")

	case models.StateConfirmation:
		sb.WriteString(summary(fields))
		sb.WriteString(" Shall I confirm the booking?")

	case models.StateCompleted:
		if bookingID != "" {
			fmt.Fprintf(&sb, "All set! Your service request %s is confirmed. We will see you on %s.",
				bookingID, fields[models.FieldAppointmentDate])
		} else {
			sb.WriteString("Your booking is confirmed.")
		}

	case models.StateCancelled:
		sb.WriteString("No problem, I have cancelled this booking. Come back any time.")

	case models.StateError:
		sb.WriteString("I am sorry about the trouble. Let me connect you with a support agent who can take it from here.")

	case models.StateHelp:
		sb.WriteString("I book vehicle service appointments. Tell me your name, phone number, vehicle details and a date, and I will set it up. What would you like to do?")

	default:
		sb.WriteString("Could you tell me a bit more?")
	}

	return sb.String()
}

func askNamePart(fields map[models.FieldName]string) string {
	switch {
	case fields[models.FieldFirstName] == "":
		return "May I have your name, please?"
	case fields[models.FieldLastName] == "":
		return fmt.Sprintf("Thanks %s! And your last name?", fields[models.FieldFirstName])
	default:
		return fmt.Sprintf("Thanks %s! What phone number can we reach you on?", fields[models.FieldFirstName])
	}
}

func askVehiclePart(fields map[models.FieldName]string) string {
	switch {
	case fields[models.FieldVehicleBrand] == "":
		return "Which vehicle should we service? Brand and model, please."
	case fields[models.FieldVehicleModel] == "":
		return fmt.Sprintf("A %s, got it. Which model?", fields[models.FieldVehicleBrand])
	default:
		return "And the registration plate number?"
	}
}

func summary(fields map[models.FieldName]string) string {
	return fmt.Sprintf(
		"Here is what I have: %s %s, phone %s, %s %s (%s), on %s.",
		fields[models.FieldFirstName], fields[models.FieldLastName],
		fields[models.FieldPhone],
		fields[models.FieldVehicleBrand], fields[models.FieldVehicleModel],
		fields[models.FieldVehiclePlate],
		fields[models.FieldAppointmentDate],
	)
}
