package domain

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minNameLen = 1
	maxNameLen = 100

	minPollution = 0
	maxPollution = 1000
)

// placeholderNames are junk tokens the upstream emits instead of real data.
var placeholderNames = map[string]struct{}{
	"test":      {},
	"sample":    {},
	"dummy":     {},
	"fake":      {},
	"n/a":       {},
	"null":      {},
	"undefined": {},
}

// adminSuffixes mark administrative divisions that get mislabeled as cities.
var adminSuffixes = []string{"region", "province", "state", "county", "district"}

// suspiciousWords are geographic-feature terms. A bare single-token name
// containing one of these is almost certainly not a city; a compound name
// like "Port City" is kept.
var suspiciousWords = []string{
	"ocean", "sea", "river", "lake", "mountain", "desert", "forest",
	"airport", "station", "port", "base", "facility", "region", "area",
	"zone", "sector", "district",
}

// RejectionError reports which field of a raw record failed classification
// and the first rule it tripped.
type RejectionError struct {
	Field string
	Rule  string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("reject %s: %s", e.Field, e.Rule)
}

// nameRule is one named rejection predicate over a trimmed candidate name.
// Rules are evaluated in order; the first match attributes the rejection.
type nameRule struct {
	name    string
	matches func(s string) bool
}

var nameRejectionRules = []nameRule{
	{"all-digits", allDigits},
	{"no-letters", noLetters},
	{"whitespace-only", whitespaceOnly},
	{"placeholder", isPlaceholder},
	{"punctuation-only", punctuationOnly},
	{"admin-suffix", hasAdminSuffix},
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func noLetters(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func whitespaceOnly(s string) bool {
	return strings.TrimSpace(s) == ""
}

func isPlaceholder(s string) bool {
	_, ok := placeholderNames[strings.ToLower(s)]
	return ok
}

func punctuationOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return s != ""
}

func hasAdminSuffix(s string) bool {
	lower := strings.ToLower(s)
	for _, suffix := range adminSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// rejectName returns the name of the first rejection rule a trimmed
// candidate name trips, or "" if the name is a plausible city name.
func rejectName(name string) string {
	n := utf8.RuneCountInString(name)
	if n < minNameLen || n > maxNameLen {
		return "length"
	}

	for _, rule := range nameRejectionRules {
		if rule.matches(name) {
			return rule.name
		}
	}

	letters, digits := 0, 0
	for _, r := range name {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	if letters == 0 || letters < digits {
		return "digit-heavy"
	}

	// Single bare token containing a geographic-feature word.
	if !strings.ContainsAny(name, " \t") {
		lower := strings.ToLower(name)
		for _, w := range suspiciousWords {
			if strings.Contains(lower, w) {
				return "suspicious-word"
			}
		}
	}

	return ""
}

// ValidCityName reports whether a candidate passes every name predicate.
func ValidCityName(name string) bool {
	return rejectName(strings.TrimSpace(name)) == ""
}

// CountryValid reports whether a country string is plausible. Two-letter
// uppercase values must be ISO 3166-1 alpha-2 codes; anything else must
// clear the shared rejection rules and contain at least one letter.
//
// Country validity is advisory: Classify does not gate on it, matching the
// upstream contract where only name and pollution are mandatory.
func CountryValid(country string) bool {
	c := strings.TrimSpace(country)
	n := utf8.RuneCountInString(c)
	if n < 2 || n > maxNameLen {
		return false
	}

	for _, rule := range nameRejectionRules {
		if rule.matches(c) {
			return false
		}
	}

	if len(c) == 2 && isUpperASCII(c[0]) && isUpperASCII(c[1]) {
		return IsISOCountryCode(c)
	}
	return !noLetters(c)
}

func isUpperASCII(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// parsePollution coerces a raw pollution value (JSON number or numeric
// string) to a float64 and checks it is finite and within [0,1000].
func parsePollution(raw any) (float64, bool) {
	var v float64
	switch p := raw.(type) {
	case float64:
		v = p
	case int:
		v = float64(p)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v < minPollution || v > maxPollution {
		return 0, false
	}
	return v, true
}

// Classify validates a raw record and normalizes it into a City.
// Name and pollution are mandatory gatekeepers; country is carried through
// trimmed but not validated here (see CountryValid).
func Classify(raw RawRecord) (City, error) {
	name, ok := raw.Name.(string)
	if !ok {
		return City{}, &RejectionError{Field: "name", Rule: "not-a-string"}
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return City{}, &RejectionError{Field: "name", Rule: "missing"}
	}
	if rule := rejectName(name); rule != "" {
		return City{}, &RejectionError{Field: "name", Rule: rule}
	}

	if raw.Pollution == nil {
		return City{}, &RejectionError{Field: "pollution", Rule: "missing"}
	}
	pollution, ok := parsePollution(raw.Pollution)
	if !ok {
		return City{}, &RejectionError{Field: "pollution", Rule: "out-of-range"}
	}

	country := ""
	if c, ok := raw.Country.(string); ok {
		country = strings.TrimSpace(c)
	}

	return City{Name: name, Country: country, Pollution: pollution}, nil
}

// FilterValid classifies a batch of raw records, preserving the relative
// order of survivors. Rejections are logged per record at debug level and
// summarized once at the end.
func FilterValid(raws []RawRecord, logger *slog.Logger) []City {
	cities := make([]City, 0, len(raws))
	rejected := 0

	for _, raw := range raws {
		city, err := Classify(raw)
		if err != nil {
			rejected++
			logger.Debug("record rejected", "name", raw.Name, "error", err)
			continue
		}
		if city.Country != "" && !CountryValid(city.Country) {
			logger.Debug("city has implausible country", "name", city.Name, "country", city.Country)
		}
		cities = append(cities, city)
	}

	logger.Info("classification complete",
		"total", len(raws),
		"accepted", len(cities),
		"rejected", rejected,
	)
	return cities
}
