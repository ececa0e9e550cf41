package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/bissli/opendate/internal/ascii"
)

// ISOParser is the strict ISO 8601 resolver. It accepts calendar dates
// (YYYY-MM-DD and basic-format variants), week dates (YYYY-Www-D), ordinal
// dates (YYYY-DDD), times with optional fraction and zone designator, and
// combinations of the two, and nothing else.
//
// The zero value accepts any single character between the date and time
// parts; NewISOParser pins the separator.
type ISOParser struct {
	sep byte // 0 matches any separator character
}

// NewISOParser returns a parser requiring sep between the date and time
// parts. sep must be one non-digit ASCII character; "" accepts any.
func NewISOParser(sep string) (*ISOParser, error) {
	if sep == "" {
		return &ISOParser{}, nil
	}
	if len(sep) != 1 || sep[0] >= 0x80 || ascii.IsDigit(sep[0]) {
		return nil, fmt.Errorf("parser: separator must be one non-digit ASCII character, got %q", sep)
	}
	return &ISOParser{sep: sep[0]}, nil
}

var defaultISO = &ISOParser{}

// ISOParse interprets s as an ISO 8601 datetime, accepting any separator
// between the date and time parts.
func ISOParse(s string) (Result, error) {
	return defaultISO.Parse(s)
}

// ISOParseDate interprets s as a bare ISO 8601 date.
func ISOParseDate(s string) (Result, error) {
	return defaultISO.ParseDate(s)
}

// ISOParseTime interprets s as a bare ISO 8601 time.
func ISOParseTime(s string) (Result, error) {
	return defaultISO.ParseTime(s)
}

// Parse interprets an ISO 8601 datetime: a date, optionally followed by a
// separator character and a time. Unlike the heuristic resolver the date
// is always complete in the result; omitted trailing components default
// to 1 ("2014" is 2014-01-01).
func (p *ISOParser) Parse(s string) (Result, error) {
	s = strings.TrimRight(s, " \t\r\n")
	year, month, day, pos, err := p.parseDatePart(s)
	if err != nil {
		return Result{}, err
	}

	var r Result
	if pos < len(s) {
		if p.sep != 0 && s[pos] != p.sep {
			return Result{}, fmt.Errorf("parser: unexpected %q after ISO date: %w", s[pos:], ErrMalformedISO)
		}
		t, err := parseISOTime(s[pos+1:])
		if err != nil {
			return Result{}, err
		}
		if t.hour == 24 {
			// 24:00:00 is the midnight ending the day. The date must be
			// valid before rolling, or time.Date would normalize bad
			// components instead of failing.
			if err := checkISODate(year, month, day); err != nil {
				return Result{}, err
			}
			next := time.Date(year, time.Month(month), day+1, 0, 0, 0, 0, time.UTC)
			year, month, day = next.Year(), int(next.Month()), next.Day()
			t.hour = 0
		}
		if err := t.fill(&r); err != nil {
			return Result{}, err
		}
	}

	if err := setISODate(&r, year, month, day); err != nil {
		return Result{}, err
	}
	return r, nil
}

// ParseDate interprets a bare ISO 8601 date with nothing following it.
func (p *ISOParser) ParseDate(s string) (Result, error) {
	s = strings.TrimRight(s, " \t\r\n")
	year, month, day, pos, err := p.parseDatePart(s)
	if err != nil {
		return Result{}, err
	}
	if pos < len(s) {
		return Result{}, fmt.Errorf("parser: unexpected %q after ISO date: %w", s[pos:], ErrMalformedISO)
	}
	var r Result
	if err := setISODate(&r, year, month, day); err != nil {
		return Result{}, err
	}
	return r, nil
}

// ParseTime interprets a bare ISO 8601 time with optional zone designator.
func (p *ISOParser) ParseTime(s string) (Result, error) {
	s = strings.TrimRight(s, " \t\r\n")
	t, err := parseISOTime(s)
	if err != nil {
		return Result{}, err
	}
	if t.hour == 24 {
		return Result{}, fmt.Errorf("parser: hour 24 requires a date to roll into: %w", ErrMalformedISO)
	}
	var r Result
	if err := t.fill(&r); err != nil {
		return Result{}, err
	}
	return r, nil
}

// setISODate records a calendar-validated date. ISO dates are complete:
// all three components are always set.
func checkISODate(year, month, day int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("parser: month %d out of range: %w", month, ErrMalformedISO)
	}
	if day < 1 || day > daysInMonth(year, month, true) {
		return fmt.Errorf("parser: day %d out of range for %d-%02d: %w", day, year, month, ErrMalformedISO)
	}
	return nil
}

func setISODate(r *Result, year, month, day int) error {
	if err := checkISODate(year, month, day); err != nil {
		return err
	}
	if err := r.setYear(year); err != nil {
		return err
	}
	if err := r.setMonth(month); err != nil {
		return err
	}
	return r.setDay(day)
}

// parseDatePart reads the leading ISO date from s and returns the position
// after it. The common calendar grammar is tried first, then the week and
// ordinal grammars.
func (p *ISOParser) parseDatePart(s string) (year, month, day, pos int, err error) {
	year, month, day, pos, err = parseCalendarDate(s)
	if err == nil {
		return year, month, day, pos, nil
	}
	return parseUncommonDate(s)
}

// parseCalendarDate handles YYYY, YYYY-MM, YYYY-MM-DD, and YYYYMMDD.
// Basic-format YYYYMM is rejected; ISO 8601 reserves it to avoid
// ambiguity with YYMMDD.
func parseCalendarDate(s string) (year, month, day, pos int, err error) {
	month, day = 1, 1
	year, err = isoDigits(s, 0, 4)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	pos = 4
	if pos >= len(s) {
		return year, month, day, pos, nil
	}

	hasSep := s[pos] == '-'
	if hasSep {
		pos++
	}

	month, err = isoDigits(s, pos, 2)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	pos += 2

	if pos >= len(s) {
		if !hasSep {
			return 0, 0, 0, 0, fmt.Errorf("parser: YYYYMM is not a valid ISO date: %w", ErrMalformedISO)
		}
		return year, month, 1, pos, nil
	}
	if hasSep {
		if s[pos] != '-' {
			return 0, 0, 0, 0, fmt.Errorf("parser: expected '-' at %d: %w", pos, ErrMalformedISO)
		}
		pos++
	}

	day, err = isoDigits(s, pos, 2)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return year, month, day, pos + 2, nil
}

// parseUncommonDate handles week dates (YYYY-Www[-D], YYYYWww[D]) and
// ordinal dates (YYYY-DDD, YYYYDDD).
func parseUncommonDate(s string) (year, month, day, pos int, err error) {
	year, err = isoDigits(s, 0, 4)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	hasSep := len(s) > 4 && s[4] == '-'
	pos = 4
	if hasSep {
		pos++
	}

	if pos < len(s) && s[pos] == 'W' {
		pos++
		week, err := isoDigits(s, pos, 2)
		if err != nil {
			return 0, 0, 0, 0, err
		}
		pos += 2

		weekday := 1
		if pos < len(s) && (s[pos] == '-' || ascii.IsDigit(s[pos])) {
			if (s[pos] == '-') != hasSep {
				return 0, 0, 0, 0, fmt.Errorf("parser: inconsistent dash separators in week date: %w", ErrMalformedISO)
			}
			if hasSep {
				pos++
			}
			weekday, err = isoDigits(s, pos, 1)
			if err != nil {
				return 0, 0, 0, 0, err
			}
			pos++
		}

		y, m, d, err := weekDate(year, week, weekday)
		if err != nil {
			return 0, 0, 0, 0, err
		}
		return y, m, d, pos, nil
	}

	ordinal, err := isoDigits(s, pos, 3)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	pos += 3

	limit := 365
	if isLeap(year) {
		limit = 366
	}
	if ordinal < 1 || ordinal > limit {
		return 0, 0, 0, 0, fmt.Errorf("parser: ordinal day %d out of range for %d: %w", ordinal, year, ErrMalformedISO)
	}
	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, ordinal-1)
	return t.Year(), int(t.Month()), t.Day(), pos, nil
}

// weekDate converts an ISO week date to a calendar date. Week 1 is the
// week containing January 4th; weekdays run 1=Monday to 7=Sunday.
func weekDate(year, week, weekday int) (int, int, int, error) {
	if week < 1 || week > 53 {
		return 0, 0, 0, fmt.Errorf("parser: week %d: %w", week, ErrInvalidWeekDate)
	}
	if weekday < 1 || weekday > 7 {
		return 0, 0, 0, fmt.Errorf("parser: weekday %d: %w", weekday, ErrInvalidWeekDate)
	}
	jan4 := time.Date(year, 1, 4, 0, 0, 0, 0, time.UTC)
	isoWd := (int(jan4.Weekday()) + 6) % 7 // 0=Monday
	week1 := jan4.AddDate(0, 0, -isoWd)
	t := week1.AddDate(0, 0, (week-1)*7+(weekday-1))
	return t.Year(), int(t.Month()), t.Day(), nil
}

// isoTime holds a parsed time part before it is written into a Result.
type isoTime struct {
	hour, minute, second, us int
	hasTZ                    bool
	tzOffset                 int
	tzName                   string
}

func (t isoTime) fill(r *Result) error {
	if err := r.setHour(t.hour); err != nil {
		return err
	}
	if err := r.setMinute(t.minute); err != nil {
		return err
	}
	if err := r.setSecond(t.second); err != nil {
		return err
	}
	if err := r.setMicrosecond(t.us); err != nil {
		return err
	}
	if t.hasTZ {
		if err := r.setTZOffset(t.tzOffset); err != nil {
			return err
		}
		if t.tzName != "" {
			return r.setTZName(t.tzName)
		}
	}
	return nil
}

// parseISOTime reads HH[:MM[:SS[.ffffff]]][tz], with the colons either all
// present or all absent. Hour 24 is allowed only as exactly 24:00:00; the
// caller decides whether a date exists to roll into.
func parseISOTime(s string) (isoTime, error) {
	var t isoTime
	if len(s) < 2 {
		return t, fmt.Errorf("parser: ISO time too short: %w", ErrMalformedISO)
	}

	pos := 0
	hasSep := false
	for comp := 0; pos < len(s) && comp < 5; comp++ {
		if c := s[pos]; c == '-' || c == '+' || c == 'Z' || c == 'z' {
			off, name, err := parseTZDesignator(s[pos:])
			if err != nil {
				return t, err
			}
			t.hasTZ, t.tzOffset, t.tzName = true, off, name
			pos = len(s)
			break
		}

		if comp == 1 && s[pos] == ':' {
			hasSep = true
			pos++
		} else if comp == 2 && hasSep {
			if s[pos] != ':' {
				return t, fmt.Errorf("parser: inconsistent colon separators in ISO time: %w", ErrMalformedISO)
			}
			pos++
		}

		if comp < 3 {
			v, err := isoDigits(s, pos, 2)
			if err != nil {
				return t, err
			}
			switch comp {
			case 0:
				t.hour = v
			case 1:
				t.minute = v
			case 2:
				t.second = v
			}
			pos += 2
		}

		if comp == 3 {
			if s[pos] != '.' && s[pos] != ',' {
				continue
			}
			start := pos + 1
			end := start
			for end < len(s) && ascii.IsDigit(s[end]) {
				end++
			}
			if end == start {
				return t, fmt.Errorf("parser: empty fraction in ISO time: %w", ErrMalformedISO)
			}
			us, err := fracMicroseconds(s[start:end])
			if err != nil {
				return t, err
			}
			t.us = us
			pos = end
		}
	}

	if pos < len(s) {
		return t, fmt.Errorf("parser: unused components %q in ISO time: %w", s[pos:], ErrMalformedISO)
	}

	if t.hour == 24 && (t.minute != 0 || t.second != 0 || t.us != 0) {
		return t, fmt.Errorf("parser: hour 24 is only valid at 24:00:00.000: %w", ErrMalformedISO)
	}
	return t, nil
}

// parseTZDesignator reads a trailing zone designator: "Z", "±HH",
// "±HHMM", or "±HH:MM". A zero offset is normalized to UTC by name.
func parseTZDesignator(s string) (offset int, name string, err error) {
	if s == "Z" || s == "z" {
		return 0, "UTC", nil
	}
	if len(s) != 3 && len(s) != 5 && len(s) != 6 {
		return 0, "", fmt.Errorf("parser: zone designator must be 1, 3, 5, or 6 characters: %w", ErrMalformedISO)
	}

	sign := 0
	switch s[0] {
	case '+':
		sign = 1
	case '-':
		sign = -1
	default:
		return 0, "", fmt.Errorf("parser: zone designator requires a sign: %w", ErrMalformedISO)
	}

	hours, err := isoDigits(s, 1, 2)
	if err != nil {
		return 0, "", err
	}
	minutes := 0
	if len(s) > 3 {
		mpos := 3
		if s[3] == ':' {
			if len(s) != 6 {
				return 0, "", fmt.Errorf("parser: malformed zone designator %q: %w", s, ErrMalformedISO)
			}
			mpos = 4
		}
		minutes, err = isoDigits(s, mpos, 2)
		if err != nil {
			return 0, "", err
		}
	}

	if hours == 0 && minutes == 0 {
		return 0, "UTC", nil
	}
	off, err := offsetSeconds(sign, hours, minutes)
	if err != nil {
		return 0, "", fmt.Errorf("parser: %v: %w", err, ErrMalformedISO)
	}
	return off, "", nil
}

// isoDigits reads exactly width digits at pos.
func isoDigits(s string, pos, width int) (int, error) {
	if pos+width > len(s) {
		return 0, fmt.Errorf("parser: ISO string too short: %w", ErrMalformedISO)
	}
	v := 0
	for k := pos; k < pos+width; k++ {
		c := s[k]
		if !ascii.IsDigit(c) {
			return 0, fmt.Errorf("parser: expected digit at %d, got %q: %w", k, c, ErrMalformedISO)
		}
		v = v*10 + int(c-'0')
	}
	return v, nil
}
