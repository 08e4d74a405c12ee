package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"yawlit/models"
)

// stubExtractor routes Infer through a function, per-test.
type stubExtractor struct {
	fn func(task Task, input string) (Prediction, error)
}

func (s *stubExtractor) Infer(_ context.Context, task Task, input string, _ []models.Turn) (Prediction, error) {
	return s.fn(task, input)
}

func errExtractor() *stubExtractor {
	return &stubExtractor{fn: func(Task, string) (Prediction, error) {
		return nil, errors.New("model unavailable")
	}}
}

func fixedTime() time.Time {
	return time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
}

func newTestCoordinator(ex Extractor) *ExtractionCoordinator {
	c := NewExtractionCoordinator(ex, DefaultSettings())
	c.now = fixedTime
	return c
}

func TestExtractUsesPrimaryPredictions(t *testing.T) {
	ex := &stubExtractor{fn: func(task Task, _ string) (Prediction, error) {
		switch task.Kind {
		case TaskName:
			return Prediction{"first_name": "Ravi", "last_name": "Sharma"}, nil
		case TaskPhone:
			return Prediction{"phone": "+91 98765 43210"}, nil
		case TaskIntent:
			return Prediction{"intent": "book"}, nil
		}
		return Prediction{}, nil
	}}
	c := newTestCoordinator(ex)

	res := c.Extract(context.Background(), "hi, I want a service", nil, models.StateEntry)
	if got := res.Fields[models.FieldFirstName]; got != "Ravi" {
		t.Errorf("first_name = %q", got)
	}
	if got := res.Fields[models.FieldPhone]; got != "9876543210" {
		t.Errorf("phone = %q, want country code stripped", got)
	}
	if res.Intent != models.IntentBook {
		t.Errorf("intent = %s", res.Intent)
	}
}

func TestExtractFallsBackOnExtractorFailure(t *testing.T) {
	c := newTestCoordinator(errExtractor())

	res := c.Extract(context.Background(),
		"my name is Priya, call 9876543210, Honda City plate MH12AB1234", nil,
		models.StateNameCollection)

	if got := res.Fields[models.FieldFirstName]; got != "Priya" {
		t.Errorf("fallback first_name = %q", got)
	}
	if got := res.Fields[models.FieldPhone]; got != "9876543210" {
		t.Errorf("fallback phone = %q", got)
	}
	if got := res.Fields[models.FieldVehicleBrand]; got != "Honda" {
		t.Errorf("fallback brand = %q", got)
	}
	if got := res.Fields[models.FieldVehicleModel]; got != "City" {
		t.Errorf("fallback model = %q", got)
	}
	if got := res.Fields[models.FieldVehiclePlate]; got != "MH12AB1234" {
		t.Errorf("fallback plate = %q", got)
	}
	if len(res.ExtractionErrors) == 0 {
		t.Error("extractor failures not recorded")
	}
	// A failing extractor still yields a usable result with neutral sentiment.
	if res.Sentiment != models.NeutralSentiment() {
		t.Errorf("sentiment = %+v, want neutral", res.Sentiment)
	}
}

func TestExtractRejectsGreetingAsName(t *testing.T) {
	ex := &stubExtractor{fn: func(task Task, _ string) (Prediction, error) {
		if task.Kind == TaskName {
			return Prediction{"first_name": "Shukriya"}, nil
		}
		return Prediction{}, nil
	}}
	c := newTestCoordinator(ex)

	res := c.Extract(context.Background(), "shukriya!", nil, models.StateNameCollection)
	if got, ok := res.Fields[models.FieldFirstName]; ok {
		t.Errorf("greeting accepted as name: %q", got)
	}
	if len(res.ValidationErrors) == 0 {
		t.Error("rejected candidate not recorded in validation errors")
	}
}

func TestExtractRejectsBrandAsName(t *testing.T) {
	ex := &stubExtractor{fn: func(task Task, _ string) (Prediction, error) {
		if task.Kind == TaskName {
			return Prediction{"first_name": "Honda"}, nil
		}
		return Prediction{}, nil
	}}
	c := newTestCoordinator(ex)

	res := c.Extract(context.Background(), "it's a Honda", nil, models.StateNameCollection)
	if got, ok := res.Fields[models.FieldFirstName]; ok {
		t.Errorf("vehicle brand accepted as name: %q", got)
	}
}

func TestExtractDateKeywordGate(t *testing.T) {
	c := newTestCoordinator(errExtractor())

	// Digits without any scheduling keyword are not a date.
	res := c.Extract(context.Background(), "my pin is 2026-09-01", nil, models.StateDateCollection)
	if got, ok := res.Fields[models.FieldAppointmentDate]; ok {
		t.Errorf("date extracted without keyword: %q", got)
	}

	res = c.Extract(context.Background(), "book the appointment on 2026-09-01", nil, models.StateDateCollection)
	if got := res.Fields[models.FieldAppointmentDate]; got != "2026-09-01" {
		t.Errorf("date = %q, want 2026-09-01", got)
	}

	res = c.Extract(context.Background(), "tomorrow works for the appointment", nil, models.StateDateCollection)
	if got := res.Fields[models.FieldAppointmentDate]; got != "2026-08-26" {
		t.Errorf("relative date = %q, want 2026-08-26", got)
	}
}

func TestExtractIntentNormalization(t *testing.T) {
	tests := []struct {
		raw  string
		want models.Intent
	}{
		{"book", models.IntentBook},
		{`"book"`, models.IntentBook},
		{"book (the user wants a service)", models.IntentBook},
		{"Book an appointment", models.IntentBook},
		{"Cancel.", models.IntentCancel},
		{"book-service", models.IntentUnknown},
		{"gibberish", models.IntentUnknown},
		{"", models.IntentUnknown},
	}
	for _, tt := range tests {
		if got := normalizeIntent(tt.raw); got != tt.want {
			t.Errorf("normalizeIntent(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestExtractSentimentClampAndRound(t *testing.T) {
	ex := &stubExtractor{fn: func(task Task, _ string) (Prediction, error) {
		if task.Kind == TaskSentiment {
			return Prediction{
				"interest": "11", "anger": "0.2", "disgust": "3.26",
				"boredom": "not-a-number", "neutral": "7/10",
			}, nil
		}
		return Prediction{}, nil
	}}
	c := newTestCoordinator(ex)

	res := c.Extract(context.Background(), "whatever", nil, models.StateEntry)
	if res.Sentiment.Interest != 10.0 {
		t.Errorf("interest = %v, want clamped to 10", res.Sentiment.Interest)
	}
	if res.Sentiment.Anger != 1.0 {
		t.Errorf("anger = %v, want clamped to 1", res.Sentiment.Anger)
	}
	if res.Sentiment.Disgust != 3.5 {
		t.Errorf("disgust = %v, want rounded to 3.5", res.Sentiment.Disgust)
	}
	if res.Sentiment.Boredom != 3.0 {
		t.Errorf("boredom = %v, want neutral default 3", res.Sentiment.Boredom)
	}
	if res.Sentiment.Neutral != 7.0 {
		t.Errorf("neutral = %v, want first number of messy value", res.Sentiment.Neutral)
	}
}

func TestDetectConfirmationOnlyInConfirmationState(t *testing.T) {
	c := newTestCoordinator(errExtractor())

	res := c.Extract(context.Background(), "yes", nil, models.StateNameCollection)
	if res.Confirmed {
		t.Error("confirmation detected outside the confirmation state")
	}

	res = c.Extract(context.Background(), "yes", nil, models.StateConfirmation)
	if !res.Confirmed {
		t.Error("keyword confirmation missed in confirmation state")
	}

	res = c.Extract(context.Background(), "ok thanks", nil, models.StateConfirmation)
	if res.Confirmed {
		t.Error("gratitude counted as confirmation")
	}
}

func TestDetectConfirmationSemanticWidening(t *testing.T) {
	ex := &stubExtractor{fn: func(task Task, _ string) (Prediction, error) {
		if task.Kind == TaskConfirmation {
			return Prediction{"confirmed": "true"}, nil
		}
		return nil, errors.New("unused")
	}}
	c := newTestCoordinator(ex)

	// Mixed phrasing with a confirmation keyword and no gratitude may widen.
	res := c.Extract(context.Background(), "yes please book it", nil, models.StateConfirmation)
	if !res.Confirmed {
		t.Error("mixed confirmation phrase not recognized")
	}

	// Gratitude blocks widening even when the model says confirmed.
	res = c.Extract(context.Background(), "ok thanks", nil, models.StateConfirmation)
	if res.Confirmed {
		t.Error("semantic widening overrode the gratitude guard")
	}
}
