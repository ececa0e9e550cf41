package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bissli/opendate/internal/ascii"
)

// clockNow supplies the current time for two-digit year expansion.
// Swapped in tests that pin the century window.
var clockNow = time.Now

// expandYear widens a year to four digits using a sliding window of
// [current_year-50, current_year+49]. Years >= 100, or years whose input
// carried an explicit century ("0031"), pass through unchanged.
func expandYear(year int, centurySpecified bool) int {
	if year >= 100 || centurySpecified {
		return year
	}
	current := clockNow().Year()
	year += current / 100 * 100
	switch {
	case year >= current+50:
		year -= 100
	case year < current-50:
		year += 100
	}
	return year
}

// offsetSeconds converts an hour/minute UTC offset to signed seconds,
// validating the component ranges shared by both resolvers.
func offsetSeconds(sign int, hours, minutes int) (int, error) {
	if hours > 23 || minutes > 59 {
		return 0, fmt.Errorf("parser: UTC offset %+d:%02d out of range: %w",
			sign*hours, minutes, ErrInvalidNumeric)
	}
	return sign * (hours*3600 + minutes*60), nil
}

// fracMicroseconds converts a 1-9 digit fractional-second string to
// microseconds, truncating (never rounding) past the sixth digit.
func fracMicroseconds(frac string) (int, error) {
	if len(frac) > 6 {
		frac = frac[:6]
	}
	us, err := strconv.Atoi(frac)
	if err != nil {
		return 0, fmt.Errorf("parser: bad fractional second %q: %w", frac, ErrInvalidNumeric)
	}
	for i := len(frac); i < 6; i++ {
		us *= 10
	}
	return us, nil
}

// decimal is a numeric token value as assembled by the grouping pre-pass:
// an integer part with an optional fractional part ("34", "34.578").
type decimal struct {
	text string // as grouped, fraction separated by '.'
	str  string // integer part digits
	frac string // fraction digits, "" when absent
}

func newDecimal(text string) decimal {
	d := decimal{text: text, str: text}
	if i := strings.IndexByte(text, '.'); i >= 0 {
		d.str = text[:i]
		d.frac = text[i+1:]
	}
	return d
}

// isDecimalToken reports whether token is a digit run, optionally with one
// embedded decimal point.
func isDecimalToken(token string) bool {
	dot := strings.IndexByte(token, '.')
	if dot < 0 {
		return ascii.IsAllDigits(token)
	}
	return ascii.IsAllDigits(token[:dot]) && ascii.IsAllDigits(token[dot+1:])
}

// intPart returns the integer part as an int.
func (d decimal) intPart() (int, error) {
	v, err := strconv.Atoi(d.str)
	if err != nil {
		return 0, fmt.Errorf("parser: bad numeric token %q: %w", d.text, ErrInvalidNumeric)
	}
	return v, nil
}

// hasFrac reports whether a fractional part is present and non-zero.
func (d decimal) hasFrac() bool {
	for i := 0; i < len(d.frac); i++ {
		if d.frac[i] != '0' {
			return true
		}
	}
	return false
}

// fracTimes returns the fractional part scaled by n and truncated to an
// integer: fracTimes(60) on "36.5" yields 30 (0.5 minutes as seconds).
func (d decimal) fracTimes(n int) int {
	num, den := 0, 1
	for i := 0; i < len(d.frac); i++ {
		// Cap the precision; further digits cannot change the truncated result
		// for the small n used here.
		if den > 1e9 {
			break
		}
		num = num*10 + int(d.frac[i]-'0')
		den *= 10
	}
	return n * num / den
}

// secondAndMicrosecond splits an I[.F] seconds value into whole seconds and
// truncated microseconds.
func (d decimal) secondAndMicrosecond() (int, int, error) {
	sec, err := d.intPart()
	if err != nil {
		return 0, 0, err
	}
	if d.frac == "" {
		return sec, 0, nil
	}
	us, err := fracMicroseconds(d.frac)
	if err != nil {
		return 0, 0, err
	}
	return sec, us, nil
}

// minuteAndSecond splits an I[.F] minutes value into whole minutes and
// truncated seconds.
func (d decimal) minuteAndSecond() (int, int, bool, error) {
	m, err := d.intPart()
	if err != nil {
		return 0, 0, false, err
	}
	if !d.hasFrac() {
		return m, 0, false, nil
	}
	return m, d.fracTimes(60), true, nil
}

// daysInMonth returns the day count of month in year; an unknown year is
// treated as a leap year so 29 February stays acceptable.
func daysInMonth(year, month int, yearKnown bool) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if !yearKnown || isLeap(year) {
			return 29
		}
		return 28
	default:
		return 31
	}
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
