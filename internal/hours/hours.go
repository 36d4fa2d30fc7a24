// Package hours parses the duration and clock strings found in timekeeping rows.
//
// Parse failures never surface as errors: callers get ok=false and treat the
// value as absent.
package hours

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const minutesPerDay = 24 * 60

var (
	sixty     = decimal.NewFromInt(60)
	secsPerHr = decimal.NewFromInt(3600)

	clockPattern = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
)

// ParseDuration converts "H:M:S" into decimal hours (H + M/60 + S/3600).
// All three components must be present and numeric.
func ParseDuration(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return decimal.Zero, false
	}

	var n [3]int64
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || v < 0 {
			return decimal.Zero, false
		}
		n[i] = v
	}

	h := decimal.NewFromInt(n[0]).
		Add(decimal.NewFromInt(n[1]).Div(sixty)).
		Add(decimal.NewFromInt(n[2]).Div(secsPerHr))
	return h, true
}

// ValidDuration reports whether s is an absent (blank) or well-formed duration
func ValidDuration(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	_, ok := ParseDuration(s)
	return ok
}

// ParseClock converts an "H:MM" clock time into minutes after midnight.
// Hours must be below 24 and minutes below 60.
func ParseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !clockPattern.MatchString(s) {
		return 0, false
	}
	h, m, _ := strings.Cut(s, ":")
	hh, _ := strconv.Atoi(h)
	mm, _ := strconv.Atoi(m)
	if hh >= 24 || mm >= 60 {
		return 0, false
	}
	return hh*60 + mm, true
}

// Span returns the minutes elapsed from start to end.
// An end earlier than start is an overnight shift and wraps past midnight.
func Span(start, end string) (int, bool) {
	s, ok := ParseClock(start)
	if !ok {
		return 0, false
	}
	e, ok := ParseClock(end)
	if !ok {
		return 0, false
	}
	diff := e - s
	if diff < 0 {
		diff += minutesPerDay
	}
	return diff, true
}

// FormatMinutes renders minutes as decimal hours with two places
func FormatMinutes(minutes int) string {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).StringFixed(2)
}
