package conversation

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"yawlit/models"
)

var (
	phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	platePattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{1,2}[A-Z]{1,2}[0-9]{1,4}$`)
	namePattern  = regexp.MustCompile(`^[A-Za-z][A-Za-z.'-]*$`)
)

// greetingStopwords rejects greetings and courtesy phrases as customer names.
// Covers hindi/urdu and english so "Shukriya" or "Haan" never become a name.
var greetingStopwords = map[string]struct{}{
	// Hindi/Urdu greetings.
	"haan": {}, "haji": {}, "han": {}, "haa": {}, "ji": {}, "haanji": {},
	"nomoshkar": {}, "namaste": {},
	// English greetings.
	"hello": {}, "hi": {}, "hey": {}, "yes": {}, "yeah": {}, "yep": {},
	"ok": {}, "okay": {}, "sure": {}, "fine": {},
	// Casual responses.
	"okey": {}, "yo": {}, "yup": {}, "yaar": {}, "dost": {}, "sirji": {},
	// Courtesy and thanking phrases.
	"shukriya": {}, "thank": {}, "thanks": {}, "thankyou": {}, "thx": {},
	"dhanyavaad": {}, "achha": {}, "acha": {}, "great": {}, "perfect": {},
	"done": {}, "good": {}, "nice": {}, "wonderful": {}, "excellent": {},
	"super": {}, "awesome": {},
	// Common endings.
	"bye": {}, "goodbye": {}, "tata": {}, "cheerio": {}, "later": {},
}

// vehicleBrands is the known brand list, used both by the fallback extractor
// and to reject brand words extracted as customer names.
var vehicleBrands = []string{
	"Honda", "Toyota", "Tata", "Maruti", "Mahindra", "Ford", "Hyundai",
	"Kia", "Skoda", "Volkswagen", "Renault", "Nissan", "MG",
}

// placeholderValue reports values the extractor uses to mean "nothing found".
func placeholderValue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "unknown", "none", "n/a", "null":
		return true
	}
	return false
}

func isStopword(v string) bool {
	_, ok := greetingStopwords[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

func isVehicleBrand(v string) bool {
	return canonicalBrand(v) != ""
}

// canonicalBrand returns the brand in its canonical casing, or "".
func canonicalBrand(v string) string {
	t := strings.TrimSpace(v)
	if t == "" {
		return ""
	}
	for _, b := range vehicleBrands {
		if strings.EqualFold(b, t) {
			return b
		}
	}
	return ""
}

// validateField applies per-field schema validation. A nil return means the
// value may enter the scratchpad; otherwise the reason explains the rejection.
func validateField(f models.FieldName, v string) error {
	v = strings.TrimSpace(v)
	if placeholderValue(v) {
		return fmt.Errorf("%s: empty or placeholder value", f)
	}

	switch f {
	case models.FieldFirstName, models.FieldLastName:
		if isStopword(v) {
			return fmt.Errorf("%s: %q is a greeting or courtesy phrase, not a name", f, v)
		}
		if isVehicleBrand(v) {
			return fmt.Errorf("%s: %q is a vehicle brand, not a name", f, v)
		}
		if !namePattern.MatchString(v) {
			return fmt.Errorf("%s: %q is not a plausible name", f, v)
		}
	case models.FieldPhone:
		if !phonePattern.MatchString(v) {
			return fmt.Errorf("%s: %q does not match a 10-digit mobile number", f, v)
		}
	case models.FieldVehiclePlate:
		if !platePattern.MatchString(strings.ToUpper(v)) {
			return fmt.Errorf("%s: %q does not match a registration plate", f, v)
		}
	case models.FieldAppointmentDate:
		if _, err := parseDateValue(v); err != nil {
			return fmt.Errorf("%s: %q is not a parseable date", f, v)
		}
	}
	return nil
}

// parseDateValue accepts YYYY-MM-DD (with - or / separators) and DD-MM-YYYY.
func parseDateValue(v string) (time.Time, error) {
	v = strings.ReplaceAll(strings.TrimSpace(v), "/", "-")
	if t, err := time.Parse("2006-01-02", v); err == nil {
		return t, nil
	}
	if t, err := time.Parse("02-01-2006", v); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", v)
}
