package conversation

import (
	"regexp"
	"strings"
	"time"

	"yawlit/models"
)

// Deterministic pattern extraction. These run when the semantic extractor
// times out, errors, or returns nothing usable for a field family. They are
// conservative: no match means no candidate, never a guess.

var (
	phoneScan = regexp.MustCompile(`[6-9]\d{9}`)
	plateScan = regexp.MustCompile(`\b[A-Z]{2}[0-9]{1,2}[A-Z]{1,2}[0-9]{1,4}\b`)

	nameIntro = regexp.MustCompile(`(?i)\b(?:my name is|i am|i'm|this is|naam)\s+([A-Za-z][A-Za-z.'-]*)(?:\s+([A-Za-z][A-Za-z.'-]*))?`)

	isoDateScan   = regexp.MustCompile(`\b\d{4}[-/]\d{1,2}[-/]\d{1,2}\b`)
	dayDateScan   = regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{4}\b`)
	modelWordScan = regexp.MustCompile(`(?i)^[a-z0-9][a-z0-9-]*$`)
)

// dateKeywords gate date extraction: without one of these in the utterance the
// date family is skipped entirely, so loose digits are never read as a date.
var dateKeywords = []string{
	"date", "appointment", "schedule", "book", "slot", "tomorrow", "today",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
	"kal", "aaj", "jan", "feb", "mar", "apr", "may", "jun", "jul", "aug",
	"sep", "oct", "nov", "dec",
}

// fallbackName pulls a name from "my name is X" style introductions. Stopword
// and brand words are rejected here as well so the fallback never proposes a
// greeting as a name.
func fallbackName(input string) (first, last string) {
	m := nameIntro.FindStringSubmatch(input)
	if m == nil {
		return "", ""
	}
	first = titleWord(m[1])
	if isStopword(first) || isVehicleBrand(first) {
		return "", ""
	}
	if len(m) > 2 && m[2] != "" {
		last = titleWord(m[2])
		if isStopword(last) || isVehicleBrand(last) {
			last = ""
		}
	}
	return first, last
}

// fallbackPhone finds the first 10-digit mobile number in the utterance.
func fallbackPhone(input string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		if r == ' ' {
			return r
		}
		return -1
	}, input)
	// Join digit runs split by spaces ("98765 43210") before scanning.
	joined := strings.ReplaceAll(digits, " ", "")
	if m := phoneScan.FindString(joined); m != "" {
		return m
	}
	return phoneScan.FindString(input)
}

// fallbackVehicle recognizes a known brand and, when the next word looks like
// a model designation, a model. The plate is matched independently.
func fallbackVehicle(input string) (brand, model, plate string) {
	plate = plateScan.FindString(strings.ToUpper(input))

	words := strings.Fields(input)
	for i, w := range words {
		if !isVehicleBrand(w) {
			continue
		}
		brand = canonicalBrand(w)
		if i+1 < len(words) {
			next := strings.Trim(words[i+1], ".,!?")
			if modelWordScan.MatchString(next) && !isStopword(next) && !isVehicleBrand(next) {
				model = titleWord(next)
			}
		}
		break
	}
	return brand, model, plate
}

// titleWord uppercases the first letter and lowercases the rest.
func titleWord(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// hasDateKeyword reports whether the utterance mentions scheduling at all.
func hasDateKeyword(input string) bool {
	low := strings.ToLower(input)
	for _, kw := range dateKeywords {
		if strings.Contains(low, kw) {
			return true
		}
	}
	return false
}

// fallbackDate resolves relative words and literal dates to YYYY-MM-DD. The
// now parameter keeps the resolution testable.
func fallbackDate(input string, now time.Time) string {
	low := strings.ToLower(input)
	switch {
	case strings.Contains(low, "tomorrow") || strings.Contains(low, "kal"):
		return now.AddDate(0, 0, 1).Format("2006-01-02")
	case strings.Contains(low, "today") || strings.Contains(low, "aaj"):
		return now.Format("2006-01-02")
	}
	if m := isoDateScan.FindString(input); m != "" {
		if t, err := parseDateValue(m); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if m := dayDateScan.FindString(input); m != "" {
		if t, err := parseDateValue(m); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// fallbackIntent maps keyword cues to an intent. Unknown when nothing matches.
func fallbackIntent(input string) models.Intent {
	low := strings.ToLower(input)
	switch {
	case strings.Contains(low, "cancel") || strings.Contains(low, "abort"):
		return models.IntentCancel
	case strings.Contains(low, "restart") || strings.Contains(low, "start over") ||
		strings.Contains(low, "start again"):
		return models.IntentRestart
	case strings.Contains(low, "help") || strings.Contains(low, "how does") ||
		strings.Contains(low, "what can you"):
		return models.IntentHelp
	case strings.Contains(low, "book") || strings.Contains(low, "service") ||
		strings.Contains(low, "appointment") || strings.Contains(low, "repair"):
		return models.IntentBook
	}
	return models.IntentUnknown
}

// normalizeIntent sanitizes raw extractor intent output into a known intent.
// Quotes, parentheses and trailing commentary are stripped, only the first
// token is kept, and hyphens become underscores.
func normalizeIntent(raw string) models.Intent {
	v := strings.TrimSpace(raw)
	v = strings.Trim(v, `"'`)
	if i := strings.IndexAny(v, "(["); i >= 0 {
		v = v[:i]
	}
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return models.IntentUnknown
	}
	v = strings.ToLower(strings.Trim(fields[0], `"',.:;`))
	v = strings.ReplaceAll(v, "-", "_")

	switch models.Intent(v) {
	case models.IntentBook, models.IntentHelp, models.IntentCancel,
		models.IntentRestart, models.IntentOther:
		return models.Intent(v)
	}
	return models.IntentUnknown
}
