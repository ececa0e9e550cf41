package parser

import "github.com/bissli/opendate/internal/ascii"

// Lexical tables for the heuristic resolver. All keys are lowercase; token
// lookups fold case first. English names only.

// monthTable maps month names and abbreviations to 1..12.
var monthTable = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// weekdayTable maps weekday names and abbreviations to 0=Monday..6=Sunday.
var weekdayTable = map[string]int{
	"mon": 0, "monday": 0,
	"tue": 1, "tuesday": 1,
	"wed": 2, "wednesday": 2,
	"thu": 3, "thursday": 3,
	"fri": 4, "friday": 4,
	"sat": 5, "saturday": 5,
	"sun": 6, "sunday": 6,
}

// Meridian values recorded while parsing; hours are adjusted to a 24-hour
// clock when a marker binds to an hour.
const (
	meridianAM = 0
	meridianPM = 1
)

// ampmTable maps AM/PM markers; single letters cover dotted forms
// ("a.m.") whose dots tokenize separately.
var ampmTable = map[string]int{
	"am": meridianAM, "a": meridianAM,
	"pm": meridianPM, "p": meridianPM,
}

// Positions within an H/M/S labelled time, e.g. "10h36m28s".
const (
	labelHour   = 0
	labelMinute = 1
	labelSecond = 2
)

// hmsTable maps time-unit labels to their position.
var hmsTable = map[string]int{
	"h": labelHour, "hour": labelHour, "hours": labelHour,
	"m": labelMinute, "minute": labelMinute, "minutes": labelMinute,
	"s": labelSecond, "second": labelSecond, "seconds": labelSecond,
}

// utcZones are zone literals with a known fixed zero offset. Anything else
// ("EST", "PST", "CET") is recorded by name only; mapping ambiguous
// abbreviations to offsets is the caller's policy.
var utcZones = map[string]bool{
	"utc": true,
	"gmt": true,
	"z":   true,
}

// jumpWords are tokens skippable between recognized components without
// entering fuzzy mode: separators, filler words, and ordinal suffixes.
// "m" and "t" cover the dotted meridian ("a.m.") and ISO separator forms.
var jumpWords = map[string]bool{
	" ": true, ".": true, ",": true, ";": true, "-": true, "/": true,
	"'": true,
	"at": true, "on": true, "and": true, "ad": true,
	"m": true, "t": true, "of": true,
	"st": true, "nd": true, "rd": true, "th": true,
}

// pertainWords bind a month name to a following year: "Sep of 2003".
var pertainWords = map[string]bool{
	"of": true,
}

// maxTZNameLen bounds bare zone-name candidates ("EST", "BRST").
const maxTZNameLen = 5

func lookupMonth(token string) (int, bool) {
	m, ok := monthTable[ascii.ToLower(token)]
	return m, ok
}

func lookupWeekday(token string) (int, bool) {
	w, ok := weekdayTable[ascii.ToLower(token)]
	return w, ok
}

func lookupAMPM(token string) (int, bool) {
	v, ok := ampmTable[ascii.ToLower(token)]
	return v, ok
}

func lookupHMS(token string) (int, bool) {
	v, ok := hmsTable[ascii.ToLower(token)]
	return v, ok
}

func isUTCZone(token string) bool {
	return utcZones[ascii.ToLower(token)]
}

func isJump(token string) bool {
	return jumpWords[ascii.ToLower(token)]
}

func isPertain(token string) bool {
	return pertainWords[ascii.ToLower(token)]
}

// couldBeTZName reports whether token can be recorded as a bare timezone
// name: a short all-uppercase run (or known UTC literal) appearing after a
// time, before any other zone information. ignoreOffset admits a name next
// to a numeric offset already parsed, as in "-0300 (BRST)".
func couldBeTZName(r *Result, token string, ignoreOffset bool) bool {
	blocked := HasTZName | HasTZOffset
	if ignoreOffset {
		blocked = HasTZName
	}
	if r.Set&HasHour == 0 || r.Set&blocked != 0 {
		return false
	}
	if len(token) > maxTZNameLen {
		return false
	}
	return ascii.IsAllUpper(token) || isUTCZone(token)
}
