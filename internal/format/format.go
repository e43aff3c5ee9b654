// Package format holds the display formatters and input shape checks used by
// the wizard forms and the payload assembler.
package format

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var ErrEmpty = errors.New("empty amount")

// FormatCurrency keeps the digits of s (ignoring any fractional part) and
// groups them with commas: "20000000" -> "20,000,000".
func FormatCurrency(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	digits := onlyDigits(s)
	if digits == "" {
		return ""
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return digits
	}
	return humanize.Comma(n)
}

// ParseCurrency converts a display-formatted amount back to an integer. It
// accepts the naira sign, commas and surrounding spaces.
func ParseCurrency(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₦")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmpty
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return n, nil
}

// Naira renders an amount for display, e.g. "₦20,000,000".
func Naira(n int64) string {
	return "₦" + humanize.Comma(n)
}

// NairaString formats a stored currency string for display; unparsable input
// is returned unchanged.
func NairaString(s string) string {
	n, err := ParseCurrency(s)
	if err != nil {
		return s
	}
	return Naira(n)
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func IsEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

// NormalizePhone strips spacing and punctuation, keeping a leading "+".
// It returns "" when s contains anything other than digits and separators.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return ""
		}
	}
	return b.String()
}

// IsPhone accepts 7 to 15 digits with an optional leading "+".
func IsPhone(s string) bool {
	n := strings.TrimPrefix(NormalizePhone(s), "+")
	return len(n) >= 7 && len(n) <= 15
}

const (
	displayDate = "Jan 2, 2006"
	inputDate   = "2006-01-02"
)

func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(displayDate)
}

// ParseDate parses a date input value (YYYY-MM-DD).
func ParseDate(s string) (time.Time, error) {
	return time.Parse(inputDate, strings.TrimSpace(s))
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
