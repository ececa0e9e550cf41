// Package parser recovers structured date/time components from arbitrary
// strings without a caller-supplied format.
//
// Two resolvers are provided, both emitting the same Result type:
//
//   - Heuristic: Parse and Config assign meaning to free-form input
//     ("Thu Sep 25 10:36:28 2003", "10-09-2003", "3rd of May 2001") using
//     configurable dayfirst/yearfirst heuristics and an optional fuzzy
//     mode that tolerates unattributable text.
//   - Strict ISO 8601: ISOParse and ISOParser accept only the ISO 8601
//     grammar (calendar, week, and ordinal dates; times; timezone
//     designators) and never guess.
//
// A Result records only what the input actually contained; filling unset
// fields with defaults and resolving timezone names to concrete offsets
// belong to the calling layer.
//
// All functions are safe for concurrent use by multiple goroutines.
package parser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Fields is a bitmask indicating which Result fields were recognized in
// the input.
type Fields uint16

const (
	HasYear Fields = 1 << iota
	HasMonth
	HasDay
	HasHour
	HasMinute
	HasSecond
	HasMicrosecond
	HasWeekday
	HasTZOffset
	HasTZName
)

// fieldNames maps each flag to its name, in declaration order.
var fieldNames = []struct {
	flag Fields
	name string
}{
	{HasYear, "year"},
	{HasMonth, "month"},
	{HasDay, "day"},
	{HasHour, "hour"},
	{HasMinute, "minute"},
	{HasSecond, "second"},
	{HasMicrosecond, "microsecond"},
	{HasWeekday, "weekday"},
	{HasTZOffset, "tzoffset"},
	{HasTZName, "tzname"},
}

// String returns a debug representation of the bitmask, e.g. "year|month|day".
func (f Fields) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, fn := range fieldNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// Result holds the date/time components recovered from one parse call.
// Each component is meaningful only when its flag is present in Set.
type Result struct {
	Year  int // calendar year, century expansion already applied
	Month int // 1..12
	Day   int // 1..31

	Hour        int // 0..23
	Minute      int // 0..59
	Second      int // 0..59
	Microsecond int // 0..999999, fractional input truncated to 6 digits

	Weekday int // 0=Monday .. 6=Sunday; informational only

	TZOffset int    // signed seconds east of UTC
	TZName   string // literal zone name as it appeared, e.g. "UTC", "EST"

	Set Fields // which of the above were recognized
}

// HasDate reports whether at least one of year, month, or day was recognized.
func (r Result) HasDate() bool {
	return r.Set&(HasYear|HasMonth|HasDay) != 0
}

// HasTime reports whether at least one time-of-day component was recognized.
func (r Result) HasTime() bool {
	return r.Set&(HasHour|HasMinute|HasSecond|HasMicrosecond) != 0
}

// String returns a debug representation listing only the recognized fields,
// e.g. Result(year=2024 month=1 day=15 tzname="UTC").
func (r Result) String() string {
	var b strings.Builder
	b.WriteString("Result(")
	sep := ""
	put := func(flag Fields, name string, val int) {
		if r.Set&flag != 0 {
			fmt.Fprintf(&b, "%s%s=%d", sep, name, val)
			sep = " "
		}
	}
	put(HasYear, "year", r.Year)
	put(HasMonth, "month", r.Month)
	put(HasDay, "day", r.Day)
	put(HasHour, "hour", r.Hour)
	put(HasMinute, "minute", r.Minute)
	put(HasSecond, "second", r.Second)
	put(HasMicrosecond, "microsecond", r.Microsecond)
	put(HasWeekday, "weekday", r.Weekday)
	put(HasTZOffset, "tzoffset", r.TZOffset)
	if r.Set&HasTZName != 0 {
		fmt.Fprintf(&b, "%stzname=%q", sep, r.TZName)
	}
	b.WriteString(")")
	return b.String()
}

// jsonResult mirrors Result for JSON encoding; nil pointers mark unset fields.
type jsonResult struct {
	Year        *int    `json:"year,omitempty"`
	Month       *int    `json:"month,omitempty"`
	Day         *int    `json:"day,omitempty"`
	Hour        *int    `json:"hour,omitempty"`
	Minute      *int    `json:"minute,omitempty"`
	Second      *int    `json:"second,omitempty"`
	Microsecond *int    `json:"microsecond,omitempty"`
	Weekday     *int    `json:"weekday,omitempty"`
	TZOffset    *int    `json:"tzoffset,omitempty"`
	TZName      *string `json:"tzname,omitempty"`
}

// MarshalJSON encodes only the recognized fields, so unset components are
// distinguishable from zero values (hour 0, offset 0).
func (r Result) MarshalJSON() ([]byte, error) {
	var j jsonResult
	opt := func(flag Fields, val int) *int {
		if r.Set&flag == 0 {
			return nil
		}
		v := val
		return &v
	}
	j.Year = opt(HasYear, r.Year)
	j.Month = opt(HasMonth, r.Month)
	j.Day = opt(HasDay, r.Day)
	j.Hour = opt(HasHour, r.Hour)
	j.Minute = opt(HasMinute, r.Minute)
	j.Second = opt(HasSecond, r.Second)
	j.Microsecond = opt(HasMicrosecond, r.Microsecond)
	j.Weekday = opt(HasWeekday, r.Weekday)
	j.TZOffset = opt(HasTZOffset, r.TZOffset)
	if r.Set&HasTZName != 0 {
		name := r.TZName
		j.TZName = &name
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes a Result produced by MarshalJSON; absent keys leave
// their fields unset.
func (r *Result) UnmarshalJSON(data []byte) error {
	var j jsonResult
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*r = Result{}
	opt := func(flag Fields, dst *int, src *int) {
		if src != nil {
			*dst = *src
			r.Set |= flag
		}
	}
	opt(HasYear, &r.Year, j.Year)
	opt(HasMonth, &r.Month, j.Month)
	opt(HasDay, &r.Day, j.Day)
	opt(HasHour, &r.Hour, j.Hour)
	opt(HasMinute, &r.Minute, j.Minute)
	opt(HasSecond, &r.Second, j.Second)
	opt(HasMicrosecond, &r.Microsecond, j.Microsecond)
	opt(HasWeekday, &r.Weekday, j.Weekday)
	opt(HasTZOffset, &r.TZOffset, j.TZOffset)
	if j.TZName != nil {
		r.TZName = *j.TZName
		r.Set |= HasTZName
	}
	return nil
}

// fieldRanges holds the inclusive bounds enforced when a component is set.
var fieldRanges = map[Fields][2]int{
	HasMonth:       {1, 12},
	HasDay:         {1, 31},
	HasHour:        {0, 23},
	HasMinute:      {0, 59},
	HasSecond:      {0, 59},
	HasMicrosecond: {0, 999999},
	HasWeekday:     {0, 6},
}

// set records val for the component identified by flag, enforcing the
// set-at-most-once invariant and the component's numeric range.
func (r *Result) set(flag Fields, name string, val int) error {
	if r.Set&flag != 0 {
		return fmt.Errorf("parser: %s already set: %w", name, ErrInvalidNumeric)
	}
	if bounds, ok := fieldRanges[flag]; ok {
		if val < bounds[0] || val > bounds[1] {
			return fmt.Errorf("parser: %s %d out of range: %w", name, val, ErrInvalidNumeric)
		}
	}
	switch flag {
	case HasYear:
		r.Year = val
	case HasMonth:
		r.Month = val
	case HasDay:
		r.Day = val
	case HasHour:
		r.Hour = val
	case HasMinute:
		r.Minute = val
	case HasSecond:
		r.Second = val
	case HasMicrosecond:
		r.Microsecond = val
	case HasWeekday:
		r.Weekday = val
	case HasTZOffset:
		r.TZOffset = val
	}
	r.Set |= flag
	return nil
}

func (r *Result) setYear(v int) error        { return r.set(HasYear, "year", v) }
func (r *Result) setMonth(v int) error       { return r.set(HasMonth, "month", v) }
func (r *Result) setDay(v int) error         { return r.set(HasDay, "day", v) }
func (r *Result) setHour(v int) error        { return r.set(HasHour, "hour", v) }
func (r *Result) setMinute(v int) error      { return r.set(HasMinute, "minute", v) }
func (r *Result) setSecond(v int) error      { return r.set(HasSecond, "second", v) }
func (r *Result) setMicrosecond(v int) error { return r.set(HasMicrosecond, "microsecond", v) }
func (r *Result) setWeekday(v int) error     { return r.set(HasWeekday, "weekday", v) }
func (r *Result) setTZOffset(v int) error    { return r.set(HasTZOffset, "tzoffset", v) }

func (r *Result) setTZName(name string) error {
	if r.Set&HasTZName != 0 {
		return fmt.Errorf("parser: tzname already set: %w", ErrInvalidNumeric)
	}
	r.TZName = name
	r.Set |= HasTZName
	return nil
}

// clearTZ drops any recorded timezone name and offset. Used when a zone
// mention turns out to be a GMT-relative POSIX expression ("GMT+3").
func (r *Result) clearTZ() {
	r.TZName = ""
	r.TZOffset = 0
	r.Set &^= HasTZName | HasTZOffset
}
