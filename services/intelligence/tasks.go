package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"yawlit/models"
	"yawlit/services/conversation"
)

// Per-family prompts. Each asks for a flat JSON object and nothing else; the
// parser below tolerates the usual model decorations anyway.
var taskPrompts = map[conversation.TaskKind]string{
	conversation.TaskName: `Extract the customer's name from the message.
Respond with JSON: {"first_name": "...", "last_name": "..."}.
Use "unknown" when a part is not stated. Greetings, thanks, and vehicle
brands are never names.`,

	conversation.TaskPhone: `Extract the customer's 10-digit Indian mobile
number from the message. Respond with JSON: {"phone": "..."}.
Use "unknown" if no number is stated. Digits only, no country code.`,

	conversation.TaskVehicle: `Extract the vehicle details from the message.
Respond with JSON: {"vehicle_brand": "...", "vehicle_model": "...",
"vehicle_plate": "..."}. Use "unknown" for anything not stated. The plate is
an Indian registration like MH12AB1234.`,

	conversation.TaskDate: `Extract the requested appointment date from the
message. Respond with JSON: {"appointment_date": "YYYY-MM-DD"}.
Use "unknown" if no date is stated. Never invent a date.`,

	conversation.TaskIntent: `Classify the intent of the message as one of:
book, help, cancel, restart, other.
Respond with JSON: {"intent": "..."}.`,

	conversation.TaskSentiment: `Score the message on five emotions, each
from 1 to 10. Respond with JSON:
{"interest": n, "anger": n, "disgust": n, "boredom": n, "neutral": n}.`,

	conversation.TaskTypo: `Check the message for an obvious typo that changes
its meaning. Respond with JSON: {"detected": "true|false", "suggestion": "..."}.`,

	conversation.TaskConfirmation: `The customer was shown a booking summary
and asked to confirm. Does this message confirm the booking? Pure thanks or
acknowledgement is NOT a confirmation.
Respond with JSON: {"confirmed": "true|false"}.`,
}

// promptFor assembles the full prompt: instruction, a short history window
// for context, then the message under analysis.
func promptFor(kind conversation.TaskKind, input string, history []models.Turn) (string, error) {
	instruction, ok := taskPrompts[kind]
	if !ok {
		return "", fmt.Errorf("no prompt for task %q", kind)
	}

	var sb strings.Builder
	sb.WriteString(instruction)
	sb.WriteString("\n\n")

	if window := historyWindow(history, 6); len(window) > 0 {
		sb.WriteString("Recent conversation:\n")
		for _, t := range window {
			sb.WriteString(t.Role)
			sb.WriteString(": ")
			sb.WriteString(t.Text)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Message: ")
	sb.WriteString(input)
	return sb.String(), nil
}

// historyWindow returns the last n turns, excluding the current user turn
// which is passed separately as the message.
func historyWindow(history []models.Turn, n int) []models.Turn {
	if len(history) > 0 && history[len(history)-1].Role == "user" {
		history = history[:len(history)-1]
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	return history
}

// parsePrediction reads a flat JSON object out of model output. Code fences,
// leading prose, and numeric values are all tolerated; nested values are
// dropped.
func parsePrediction(text string) (conversation.Prediction, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("unparseable model output: %w", err)
	}

	pred := make(conversation.Prediction, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			pred[k] = val
		case float64:
			pred[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case bool:
			pred[k] = strconv.FormatBool(val)
		}
	}
	return pred, nil
}
