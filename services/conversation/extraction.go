package conversation

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"yawlit/models"
	"yawlit/utils"
)

// ExtractionCoordinator runs the two-tier, per-family extraction pipeline.
// Each field family is attempted against the semantic extractor under a
// deadline; on timeout, error, or an unusable prediction the family falls
// back to deterministic pattern extraction. Families are isolated: one
// failing never aborts the others, and a turn always yields a usable result.
type ExtractionCoordinator struct {
	extractor Extractor
	settings  Settings
	now       func() time.Time
}

// NewExtractionCoordinator wires the coordinator. A nil extractor is allowed;
// every family then runs on fallbacks alone.
func NewExtractionCoordinator(extractor Extractor, settings Settings) *ExtractionCoordinator {
	return &ExtractionCoordinator{extractor: extractor, settings: settings, now: time.Now}
}

// Extract processes one user utterance and returns a fully-populated result.
// The state steers which families run: confirmation detection only runs in
// the confirmation state, and date extraction is gated on a scheduling
// keyword so stray digits are never read as dates.
func (c *ExtractionCoordinator) Extract(ctx context.Context, input string, history []models.Turn, state models.ConversationState) *models.ExtractionResult {
	res := models.NewExtractionResult(input)

	c.extractName(ctx, input, history, res)
	c.extractPhone(ctx, input, history, res)
	c.extractVehicle(ctx, input, history, res)
	c.extractDate(ctx, input, history, res)
	c.extractIntent(ctx, input, history, res)
	c.extractSentiment(ctx, input, history, res)
	c.extractTypo(ctx, input, history, res)

	if state == models.StateConfirmation {
		c.detectConfirmation(ctx, input, history, res)
	}
	return res
}

// infer calls the semantic extractor for one family under the configured
// deadline. Each family gets its own timeout budget.
func (c *ExtractionCoordinator) infer(ctx context.Context, kind TaskKind, input string, history []models.Turn) (Prediction, error) {
	if c.extractor == nil {
		return nil, fmt.Errorf("no semantic extractor configured")
	}
	tctx, cancel := context.WithTimeout(ctx, c.settings.ExtractionTimeout)
	defer cancel()
	return c.extractor.Infer(tctx, Task{Kind: kind}, input, history)
}

func (c *ExtractionCoordinator) recordFailure(res *models.ExtractionResult, kind TaskKind, err error) {
	res.ExtractionErrors = append(res.ExtractionErrors, fmt.Sprintf("%s: %v", kind, err))
	utils.GetLogger().Debug("semantic extraction failed, using fallback",
		zap.String("family", string(kind)), zap.Error(err))
}

func (c *ExtractionCoordinator) setCandidate(res *models.ExtractionResult, f models.FieldName, v string) {
	v = strings.TrimSpace(v)
	if placeholderValue(v) {
		return
	}
	if err := validateField(f, v); err != nil {
		res.ValidationErrors = append(res.ValidationErrors, err.Error())
		return
	}
	res.Fields[f] = v
}

func (c *ExtractionCoordinator) extractName(ctx context.Context, input string, history []models.Turn, res *models.ExtractionResult) {
	pred, err := c.infer(ctx, TaskName, input, history)
	if err == nil {
		c.setCandidate(res, models.FieldFirstName, pred["first_name"])
		c.setCandidate(res, models.FieldLastName, pred["last_name"])
	} else {
		c.recordFailure(res, TaskName, err)
	}
	if _, ok := res.Fields[models.FieldFirstName]; !ok {
		first, last := fallbackName(input)
		c.setCandidate(res, models.FieldFirstName, first)
		c.setCandidate(res, models.FieldLastName, last)
	}
}

func (c *ExtractionCoordinator) extractPhone(ctx context.Context, input string, history []models.Turn, res *models.ExtractionResult) {
	pred, err := c.infer(ctx, TaskPhone, input, history)
	if err == nil {
		c.setCandidate(res, models.FieldPhone, sanitizePhone(pred["phone"]))
	} else {
		c.recordFailure(res, TaskPhone, err)
	}
	if _, ok := res.Fields[models.FieldPhone]; !ok {
		c.setCandidate(res, models.FieldPhone, fallbackPhone(input))
	}
}

func (c *ExtractionCoordinator) extractVehicle(ctx context.Context, input string, history []models.Turn, res *models.ExtractionResult) {
	pred, err := c.infer(ctx, TaskVehicle, input, history)
	if err == nil {
		c.setCandidate(res, models.FieldVehicleBrand, pred["vehicle_brand"])
		c.setCandidate(res, models.FieldVehicleModel, pred["vehicle_model"])
		c.setCandidate(res, models.FieldVehiclePlate, strings.ToUpper(pred["vehicle_plate"]))
	} else {
		c.recordFailure(res, TaskVehicle, err)
	}
	brand, model, plate := fallbackVehicle(input)
	if _, ok := res.Fields[models.FieldVehicleBrand]; !ok {
		c.setCandidate(res, models.FieldVehicleBrand, brand)
	}
	if _, ok := res.Fields[models.FieldVehicleModel]; !ok {
		c.setCandidate(res, models.FieldVehicleModel, model)
	}
	if _, ok := res.Fields[models.FieldVehiclePlate]; !ok {
		c.setCandidate(res, models.FieldVehiclePlate, plate)
	}
}

func (c *ExtractionCoordinator) extractDate(ctx context.Context, input string, history []models.Turn, res *models.ExtractionResult) {
	if !hasDateKeyword(input) {
		return
	}
	pred, err := c.infer(ctx, TaskDate, input, history)
	if err == nil {
		c.setCandidate(res, models.FieldAppointmentDate, normalizeDate(pred["appointment_date"]))
	} else {
		c.recordFailure(res, TaskDate, err)
	}
	if _, ok := res.Fields[models.FieldAppointmentDate]; !ok {
		c.setCandidate(res, models.FieldAppointmentDate, fallbackDate(input, c.now()))
	}
}

func (c *ExtractionCoordinator) extractIntent(ctx context.Context, input string, history []models.Turn, res *models.ExtractionResult) {
	pred, err := c.infer(ctx, TaskIntent, input, history)
	if err == nil {
		res.Intent = normalizeIntent(pred["intent"])
	} else {
		c.recordFailure(res, TaskIntent, err)
	}
	if res.Intent == models.IntentUnknown {
		res.Intent = fallbackIntent(input)
	}
}

func (c *ExtractionCoordinator) extractSentiment(ctx context.Context, input string, history []models.Turn, res *models.ExtractionResult) {
	pred, err := c.infer(ctx, TaskSentiment, input, history)
	if err != nil {
		c.recordFailure(res, TaskSentiment, err)
		res.Sentiment = models.NeutralSentiment()
		return
	}
	res.Sentiment = models.SentimentScores{
		Interest: sentimentScore(pred["interest"], 5.0),
		Anger:    sentimentScore(pred["anger"], 1.0),
		Disgust:  sentimentScore(pred["disgust"], 1.0),
		Boredom:  sentimentScore(pred["boredom"], 3.0),
		Neutral:  sentimentScore(pred["neutral"], 7.0),
	}
}

func (c *ExtractionCoordinator) extractTypo(ctx context.Context, input string, history []models.Turn, res *models.ExtractionResult) {
	pred, err := c.infer(ctx, TaskTypo, input, history)
	if err != nil {
		// No deterministic typo detection exists; the family simply stays off.
		c.recordFailure(res, TaskTypo, err)
		return
	}
	if strings.EqualFold(pred["detected"], "true") || strings.EqualFold(pred["detected"], "yes") {
		res.Typo = models.TypoFlag{Detected: true, Suggestion: strings.TrimSpace(pred["suggestion"])}
	}
}

// detectConfirmation decides whether the utterance confirms the booking.
// The keyword rule is authoritative; the semantic family may only widen it
// for mixed phrasings ("yes please book it") and never past an utterance
// that expresses gratitude, so "ok thanks" stays a courtesy, not a booking.
func (c *ExtractionCoordinator) detectConfirmation(ctx context.Context, input string, history []models.Turn, res *models.ExtractionResult) {
	if c.settings.IsConfirmation(input) {
		res.Confirmed = true
		return
	}
	if containsGratitude(input) || !anyTokenIn(input, c.settings.ConfirmationKeywords) {
		return
	}
	pred, err := c.infer(ctx, TaskConfirmation, input, history)
	if err != nil {
		c.recordFailure(res, TaskConfirmation, err)
		return
	}
	if strings.EqualFold(pred["confirmed"], "true") || strings.EqualFold(pred["confirmed"], "yes") {
		res.Confirmed = true
	}
}

var gratitudeWords = []string{"thanks", "thank", "thankyou", "thx", "shukriya", "dhanyavaad"}

var numberScan = regexp.MustCompile(`\d+(?:\.\d+)?`)

func containsGratitude(input string) bool {
	return anyTokenIn(input, gratitudeWords)
}

// sanitizePhone strips separators and a leading country prefix.
func sanitizePhone(v string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, v)
	if len(digits) == 12 && strings.HasPrefix(digits, "91") {
		digits = digits[2:]
	}
	if len(digits) == 11 && strings.HasPrefix(digits, "0") {
		digits = digits[1:]
	}
	return digits
}

// normalizeDate reshapes a predicted date into YYYY-MM-DD when parseable.
func normalizeDate(v string) string {
	if v == "" {
		return ""
	}
	t, err := parseDateValue(v)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// sentimentScore parses one dimension, clamps it to [1,10] and rounds to the
// nearest 0.5. Messy values ("anger: 7/10") yield their first number;
// anything without one falls back to the neutral default.
func sentimentScore(v string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		m := numberScan.FindString(v)
		if m == "" {
			return fallback
		}
		if f, err = strconv.ParseFloat(m, 64); err != nil {
			return fallback
		}
	}
	if f < 1.0 {
		f = 1.0
	}
	if f > 10.0 {
		f = 10.0
	}
	return math.Round(f*2) / 2
}
