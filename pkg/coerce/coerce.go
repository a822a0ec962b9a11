// Package coerce converts raw text tokens scraped from listing pages into typed
// scalars. Nothing here returns an error: malformed input degrades to an empty
// string or an absent (nil) number.
package coerce

import (
	"regexp"
	"strconv"
	"strings"
)

var digitRun = regexp.MustCompile(`\d+`)

var controlChars = strings.NewReplacer("\n", "", "\r", "", "\t", "")

// TextOrEmpty trims surrounding whitespace.
func TextOrEmpty(raw string) string {
	return strings.TrimSpace(raw)
}

// StripControlChars removes newline, carriage-return and tab characters.
// Other whitespace is left alone.
func StripControlChars(raw string) string {
	return controlChars.Replace(raw)
}

// Digits joins every run of digits found in raw, in order of appearance.
// "Rs. 12,500" yields "12500".
func Digits(raw string) string {
	return strings.Join(digitRun.FindAllString(raw, -1), "")
}

// NumberOrAbsent applies digit-run concatenation and parses the joined digits
// as one integer. It returns nil when raw holds no digits or the digits do not
// fit in an int64.
func NumberOrAbsent(raw string) *int64 {
	d := Digits(raw)
	if d == "" {
		return nil
	}
	n, err := strconv.ParseInt(d, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// PositiveOrAbsent is NumberOrAbsent restricted to values above zero. Mileage,
// year, engine capacity and phone numbers go through this.
func PositiveOrAbsent(raw string) *int64 {
	n := NumberOrAbsent(raw)
	if n == nil || *n <= 0 {
		return nil
	}
	return n
}

// NumberOrText returns the extracted number, or the original text when no
// non-zero number can be extracted.
func NumberOrText(raw string) (*int64, string) {
	if n := PositiveOrAbsent(raw); n != nil {
		return n, ""
	}
	return nil, raw
}

// Int64 returns a pointer to n.
func Int64(n int64) *int64 { return &n }
