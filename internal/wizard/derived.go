package wizard

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var dobLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ComputeAge derives the age from a date of birth by converting the elapsed
// milliseconds into a date after the Unix epoch and taking its year minus
// 1970. This is not a calendar age and can differ by one around birthdays;
// callers rely on exactly this arithmetic. Unparseable input yields "".
func ComputeAge(dob string, now time.Time) string {
	dob = strings.TrimSpace(dob)
	if dob == "" {
		return ""
	}
	var born time.Time
	var err error
	for _, layout := range dobLayouts {
		born, err = time.Parse(layout, dob)
		if err == nil {
			break
		}
	}
	if err != nil {
		return ""
	}
	diff := now.UnixMilli() - born.UnixMilli()
	years := time.UnixMilli(diff).UTC().Year() - 1970
	if years < 0 {
		years = -years
	}
	return strconv.Itoa(years)
}

// fieldLabel turns a camelCase key into a display label: "ref1Name" becomes
// "Ref1 Name".
func fieldLabel(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parseNumber converts a form value the way a browser's Number() does:
// surrounding whitespace is ignored, an empty string is zero, hex, octal and
// binary literals are accepted, and anything else that is not a plain
// decimal is NaN.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil || strings.ContainsRune(s, '_') {
				return math.NaN()
			}
			return float64(n)
		}
	}
	lower := strings.ToLower(s)
	if strings.ContainsRune(s, '_') || strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.HasPrefix(lower, "0x") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

func isInteger(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)
}
