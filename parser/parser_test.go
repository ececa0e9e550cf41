package parser

import (
	"errors"
	"os"
	"testing"
	"time"
)

// TestMain pins the reference clock so two-digit years always expand
// within [1976, 2075] regardless of when the tests run.
func TestMain(m *testing.M) {
	clockNow = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }
	os.Exit(m.Run())
}

// d builds an expected date-only Result.
func d(year, month, day int) Result {
	return Result{Year: year, Month: month, Day: day, Set: HasYear | HasMonth | HasDay}
}

// none is the empty starting point for time-only expectations.
var none Result

func (r Result) hms(h, m, s int) Result {
	r.Hour, r.Minute, r.Second = h, m, s
	r.Set |= HasHour | HasMinute | HasSecond
	return r
}

func (r Result) hm(h, m int) Result {
	r.Hour, r.Minute = h, m
	r.Set |= HasHour | HasMinute
	return r
}

func (r Result) hour(h int) Result {
	r.Hour = h
	r.Set |= HasHour
	return r
}

func (r Result) minute(m int) Result {
	r.Minute = m
	r.Set |= HasMinute
	return r
}

func (r Result) second(s int) Result {
	r.Second = s
	r.Set |= HasSecond
	return r
}

func (r Result) us(v int) Result {
	r.Microsecond = v
	r.Set |= HasMicrosecond
	return r
}

func (r Result) wd(v int) Result {
	r.Weekday = v
	r.Set |= HasWeekday
	return r
}

func (r Result) zone(name string) Result {
	r.TZName = name
	r.Set |= HasTZName
	return r
}

func (r Result) off(seconds int) Result {
	r.TZOffset = seconds
	r.Set |= HasTZOffset
	return r
}

// checkResult compares a parse outcome field by field.
func checkResult(t *testing.T, got, want Result) {
	t.Helper()
	if got != want {
		t.Errorf("result mismatch\n  got:  %v\n  want: %v", got, want)
	}
}

func TestParseDateFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want Result
	}{
		{"date command", "Thu Sep 25 10:36:28 2003", d(2003, 9, 25).hms(10, 36, 28).wd(3)},
		{"date command no time", "Thu Sep 25 2003", d(2003, 9, 25).wd(3)},
		{"iso datetime", "2003-09-25T10:49:41", d(2003, 9, 25).hms(10, 49, 41)},
		{"iso hour minute", "2003-09-25T10:49", d(2003, 9, 25).hm(10, 49)},
		{"iso hour", "2003-09-25T10", d(2003, 9, 25).hour(10)},
		{"iso date", "2003-09-25", d(2003, 9, 25)},
		{"iso basic datetime", "20030925T104941", d(2003, 9, 25).hms(10, 49, 41)},
		{"iso basic hour minute", "20030925T1049", d(2003, 9, 25).hm(10, 49)},
		{"iso basic hour", "20030925T10", d(2003, 9, 25).hour(10)},
		{"iso basic date", "20030925", d(2003, 9, 25)},
		{"logger format", "2003-09-25 10:49:41,502", d(2003, 9, 25).hms(10, 49, 41).us(502000)},
		{"twelve digit run", "199709020908", d(1997, 9, 2).hm(9, 8)},
		{"fourteen digit run", "19970902090807", d(1997, 9, 2).hms(9, 8, 7)},
		{"month first dashes", "09-25-2003", d(2003, 9, 25)},
		{"day first dashes", "25-09-2003", d(2003, 9, 25)},
		{"ambiguous dashes", "10-09-2003", d(2003, 10, 9)},
		{"ambiguous short year", "10-09-03", d(2003, 10, 9)},
		{"year first dots", "2003.09.25", d(2003, 9, 25)},
		{"month first dots", "09.25.2003", d(2003, 9, 25)},
		{"day first dots", "25.09.2003", d(2003, 9, 25)},
		{"year first slashes", "2003/09/25", d(2003, 9, 25)},
		{"month first slashes", "09/25/2003", d(2003, 9, 25)},
		{"ambiguous slashes", "10/09/03", d(2003, 10, 9)},
		{"year first spaces", "2003 09 25", d(2003, 9, 25)},
		{"month first spaces", "09 25 2003", d(2003, 9, 25)},
		{"day first spaces", "25 09 2003", d(2003, 9, 25)},
		{"day first short year spaces", "25 09 03", d(2003, 9, 25)},
		{"year day month", "03 25 Sep", d(2003, 9, 25)},
		{"day year month", "25 03 Sep", d(2025, 9, 3)},
		{"month name middle", "2003 Sep 25", d(2003, 9, 25)},
		{"month name first", "Sep 25 2003", d(2003, 9, 25)},
		{"month name last", "25 Sep 2003", d(2003, 9, 25)},
		{"month name dashes", "25-Sep-2003", d(2003, 9, 25)},
		{"month name dash first", "Sep-25-2003", d(2003, 9, 25)},
		{"month name dots", "2003.Sep.25", d(2003, 9, 25)},
		{"month name slashes", "25/Sep/2003", d(2003, 9, 25)},
		{"extra whitespace", "  July   4 ,  1976   12:01:02   am  ", d(1976, 7, 4).hms(0, 1, 2)},
		{"apostrophe year", "Wed, July 10, '96", d(1996, 7, 10).wd(2)},
		{"dotted with era", "1996.July.10 AD 12:08 PM", d(1996, 7, 10).hm(12, 8)},
		{"month day comma year", "July 4, 1976", d(1976, 7, 4)},
		{"bare numbers", "7 4 1976", d(1976, 7, 4)},
		{"day before month name", "4 jul 1976", d(1976, 7, 4)},
		{"short year dashes", "7-4-76", d(1976, 7, 4)},
		{"digit run date", "19760704", d(1976, 7, 4)},
		{"time before date", "0:01:02 on July 4, 1976", d(1976, 7, 4).hms(0, 1, 2)},
		{"trailing meridian", "July 4, 1976 12:01:02 am", d(1976, 7, 4).hms(0, 1, 2)},
		{"double space", "Mon Jan  2 04:24:27 1995", d(1995, 1, 2).hms(4, 24, 27).wd(0)},
		{"dotted short year", "04.04.95 00:22", d(1995, 4, 4).hm(0, 22)},
		{"fractional second", "Jan 1 1999 11:23:34.578", d(1999, 1, 1).hms(11, 23, 34).us(578000)},
		{"digit run pair", "950404 122212", d(1995, 4, 4).hms(12, 22, 12)},
		{"ordinal of month", "3rd of May 2001", d(2001, 5, 3)},
		{"ordinal of month two", "5th of March 2001", d(2001, 3, 5)},
		{"first of month", "1st of May 2003", d(2003, 5, 1)},
		{"ancient year", "0099-01-01T00:00:00", d(99, 1, 1).hms(0, 0, 0)},
		{"ancient year two", "0031-01-01T00:00:00", d(31, 1, 1).hms(0, 0, 0)},
		{"nanosecond truncation", "20080227T21:26:01.123456789", d(2008, 2, 27).hms(21, 26, 1).us(123456)},
		{"day month year run", "13NOV2017", d(2017, 11, 13)},
		{"pre twelve year", "0003-03-04", d(3, 3, 4)},
		{"single digit components", "2016-2-6", d(2016, 2, 6)},
		{"month year only", "January 2024", Result{Year: 2024, Month: 1, Set: HasYear | HasMonth}},
		{"year dash month", "2024-01", Result{Year: 2024, Month: 1, Set: HasYear | HasMonth}},
		{"year only", "2024", Result{Year: 2024, Set: HasYear}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			checkResult(t, got, tt.want)
		})
	}
}

func TestParseTimeFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want Result
	}{
		{"colon full", "10:36:28", none.hms(10, 36, 28)},
		{"colon short", "10:36", none.hm(10, 36)},
		{"letters fractional", "10h36m28.5s", none.hms(10, 36, 28).us(500000)},
		{"letters full", "10h36m28s", none.hms(10, 36, 28)},
		{"letters short", "10h36m", none.hm(10, 36)},
		{"hour letter", "10h", none.hour(10)},
		{"spaced letters", "10 h 36", none.hm(10, 36)},
		{"spaced fractional hour", "10 h 36.5", none.hms(10, 36, 30)},
		{"minute letter", "36 m 5", none.minute(36).second(5)},
		{"minute second letters", "36 m 5 s", none.minute(36).second(5)},
		{"minute letter padded", "36 m 05", none.minute(36).second(5)},
		{"hour letter am", "10h am", none.hour(10)},
		{"hour letter pm", "10h pm", none.hour(22)},
		{"hour am", "10am", none.hour(10)},
		{"hour pm", "10pm", none.hour(22)},
		{"colon am", "10:00 am", none.hm(10, 0)},
		{"colon pm", "10:00 pm", none.hm(22, 0)},
		{"attached am", "10:00am", none.hm(10, 0)},
		{"attached pm", "10:00pm", none.hm(22, 0)},
		{"dotted am", "10:00a.m", none.hm(10, 0)},
		{"dotted pm", "10:00p.m", none.hm(22, 0)},
		{"dotted am trailing", "10:00a.m.", none.hm(10, 0)},
		{"dotted pm trailing", "10:00p.m.", none.hm(22, 0)},
		{"single digit hour pm", "2:30 pm", none.hm(14, 30)},
		{"midnight twelve", "12:00 AM", none.hm(0, 0)},
		{"noon twelve", "12:00 PM", none.hm(12, 0)},
		{"past midnight twelve", "12:30 AM", none.hm(0, 30)},
		{"past noon twelve", "12:30 PM", none.hm(12, 30)},
		{"spaced twelve am", "12 am", none.hour(0)},
		{"zero hour", "0:01:02", none.hms(0, 1, 2)},
		{"letters then meridian", "12h 01m02s am", none.hms(0, 1, 2)},
		{"meridian capital", "12:08 PM", none.hm(12, 8)},
		{"letter run full", "01h02m03", none.hms(1, 2, 3)},
		{"letter run short", "01h02", none.hm(1, 2)},
		{"hour skip to second", "01h02s", none.hour(1).second(2)},
		{"minute run", "01m02", none.minute(1).second(2)},
		{"reversed letters", "01m02h", none.hm(2, 1)},
		{"fractional precision", "00:11:25.01", none.hms(0, 11, 25).us(10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			checkResult(t, got, tt.want)
		})
	}
}

func TestParsePartialDates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want Result
	}{
		{"weekday short", "Wed", none.wd(2)},
		{"weekday long", "Wednesday", none.wd(2)},
		{"month name only", "October", mon(10)},
		{"weekday with time", "Thu 10:36:28", none.hms(10, 36, 28).wd(3)},
		{"month with time", "Sep 10:36:28", mon(9).hms(10, 36, 28)},
		{"zero year", "31-Dec-00", d(2000, 12, 31)},
		{"mixed order with letters", "2004 10 Apr 11h30m", d(2004, 4, 10).hm(11, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			checkResult(t, got, tt.want)
		})
	}
}

// mon builds an expected month-only Result.
func mon(m int) Result {
	return Result{Month: m, Set: HasMonth}
}

func TestParseDayfirstYearfirst(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		cfg  Config
		want Result
	}{
		{"default ambiguous", "10-09-2003", Config{}, d(2003, 10, 9)},
		{"dayfirst dashes", "10-09-2003", Config{Dayfirst: true}, d(2003, 9, 10)},
		{"dayfirst dots", "10.09.2003", Config{Dayfirst: true}, d(2003, 9, 10)},
		{"dayfirst slashes", "10/09/2003", Config{Dayfirst: true}, d(2003, 9, 10)},
		{"dayfirst spaces", "10 09 2003", Config{Dayfirst: true}, d(2003, 9, 10)},
		{"yearfirst dashes", "2010-09-03", Config{Yearfirst: true}, d(2010, 9, 3)},
		{"yearfirst slashes", "2010/09/03", Config{Yearfirst: true}, d(2010, 9, 3)},
		{"digit run default", "090107", Config{}, d(2007, 9, 1)},
		{"digit run yearfirst", "090107", Config{Yearfirst: true}, d(2009, 1, 7)},
		{"digit run dayfirst", "090107", Config{Dayfirst: true}, d(2007, 1, 9)},
		{"digit run both", "090107", Config{Dayfirst: true, Yearfirst: true}, d(2009, 7, 1)},
		{"dayfirst ambiguous slashes", "05/06/2024", Config{Dayfirst: true}, d(2024, 6, 5)},
		{"default ambiguous slashes", "05/06/2024", Config{}, d(2024, 5, 6)},
		{"dayfirst explicit", "15/01/2024", Config{Dayfirst: true}, d(2024, 1, 15)},
		{"yearfirst off short year", "01/15/24", Config{}, d(2024, 1, 15)},
		{"yearfirst short year", "24/01/15", Config{Yearfirst: true}, d(2024, 1, 15)},
		{"dayfirst loses to month name", "10-Sep-2003", Config{Dayfirst: true}, d(2003, 9, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			checkResult(t, got, tt.want)
		})
	}
}

func TestParseTimezones(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want Result
	}{
		{"colon offset positive", "2003-09-25T10:49:41+03:00", d(2003, 9, 25).hms(10, 49, 41).off(3 * 3600)},
		{"colon offset negative", "2003-09-25T10:49:41-03:00", d(2003, 9, 25).hms(10, 49, 41).off(-3 * 3600)},
		{"basic offset", "20030925T104941+0300", d(2003, 9, 25).hms(10, 49, 41).off(3 * 3600)},
		{"offset after fraction", "2003-09-25T10:49:41.5-03:00", d(2003, 9, 25).hms(10, 49, 41).us(500000).off(-3 * 3600)},
		{"hour only offset", "2024-01-15T10:30:00+05", d(2024, 1, 15).hms(10, 30, 0).off(5 * 3600)},
		{"half hour offset", "2024-01-15T10:30:00+05:30", d(2024, 1, 15).hms(10, 30, 0).off(5*3600 + 30*60)},
		{"zone name est", "2024-01-15 10:30:00 EST", d(2024, 1, 15).hms(10, 30, 0).zone("EST")},
		{"zone name pst", "2024-01-15 10:30:00 PST", d(2024, 1, 15).hms(10, 30, 0).zone("PST")},
		{"zone name cet", "2024-01-15 10:30:00 CET", d(2024, 1, 15).hms(10, 30, 0).zone("CET")},
		{"zulu suffix", "1994-11-05T08:15:30Z", d(1994, 11, 5).hms(8, 15, 30).zone("UTC").off(0)},
		{"lowercase zulu", "1986-07-05T08:15:30z", d(1986, 7, 5).hms(8, 15, 30).zone("UTC").off(0)},
		{"utc zone name", "10:30:00 UTC", none.hms(10, 30, 0).zone("UTC").off(0)},
		{"zero offset becomes utc", "10:30:00+00:00", none.hms(10, 30, 0).zone("UTC").off(0)},
		{"zone between time and year", "Tue Apr 4 00:22:12 PDT 1995", d(1995, 4, 4).hms(0, 22, 12).wd(1).zone("PDT")},
		{"posix gmt reversal", "10:30:00 GMT+3", none.hms(10, 30, 0).off(-3 * 3600)},
		{"posix gmt reversal negative", "10:30:00 GMT-3", none.hms(10, 30, 0).off(3 * 3600)},
		{"named offset keeps name", "10:30:00 BRST+3", none.hms(10, 30, 0).zone("BRST").off(-3 * 3600)},
		{"parenthesized zone name", "10:49:41 -0300 (BRST)", none.hms(10, 49, 41).off(-3 * 3600).zone("BRST")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			checkResult(t, got, tt.want)
		})
	}
}

func TestParseFuzzy(t *testing.T) {
	t.Parallel()

	fuzzy := Config{Fuzzy: true}

	tests := []struct {
		name string
		in   string
		want Result
	}{
		{"leading text", "Today is 2024-01-15", d(2024, 1, 15)},
		{"non date number", "Order #12345 placed on 2024-01-15", d(2024, 1, 15)},
		{"full sentence", "Today is 25 of September of 2003, exactly at 10:49:41 with timezone -03:00.",
			d(2003, 9, 25).hms(10, 49, 41).off(-3 * 3600)},
		{"am in prose", "I have a meeting on March 1, 1974.", d(1974, 3, 1)},
		{"am mid sentence", "On June 8th, 2020, I am going to be the first man on Mars", d(2020, 6, 8)},
		{"comma separated datetime", "Jan 15, 2024, 10:30", d(2024, 1, 15).hm(10, 30)},
		{"at connective", "Jan 15, 2024 at 10:30", d(2024, 1, 15).hm(10, 30)},
		{"on connective", "10:30 on Jan 15, 2024", d(2024, 1, 15).hm(10, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fuzzy.Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			checkResult(t, got, tt.want)
		})
	}
}

func TestParseWithTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    Result
		skipped []string
	}{
		{
			name:    "leading fragment",
			in:      "Today is 2024-01-15",
			want:    d(2024, 1, 15),
			skipped: []string{"Today is "},
		},
		{
			name: "interleaved fragments",
			in:   "Today is 25 of September of 2003, exactly at 10:49:41 with timezone -03:00.",
			want: d(2003, 9, 25).hms(10, 49, 41).off(-3 * 3600),
			skipped: []string{
				"Today is ", "of ", ", exactly at ", " with timezone ", ".",
			},
		},
		{
			name:    "skipped number",
			in:      "Order #12345 placed on 2024-01-15",
			want:    d(2024, 1, 15),
			skipped: []string{"Order #12345 placed on "},
		},
	}

	cfg := Config{Fuzzy: true}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, skipped, err := cfg.ParseWithTokens(tt.in)
			if err != nil {
				t.Fatalf("ParseWithTokens(%q): %v", tt.in, err)
			}
			checkResult(t, got, tt.want)
			if len(skipped) != len(tt.skipped) {
				t.Fatalf("skipped = %q, want %q", skipped, tt.skipped)
			}
			for i := range skipped {
				if skipped[i] != tt.skipped[i] {
					t.Errorf("skipped[%d] = %q, want %q", i, skipped[i], tt.skipped[i])
				}
			}
		})
	}
}

func TestParseWithTokensRequiresFuzzy(t *testing.T) {
	t.Parallel()

	if _, _, err := (Config{}).ParseWithTokens("2024-01-15"); err == nil {
		t.Fatal("expected error without Fuzzy")
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		cfg  Config
		want error
	}{
		{"empty input", "", Config{}, ErrNoComponents},
		{"whitespace only", "   ", Config{}, ErrNoComponents},
		{"prose strict", "hello world", Config{}, ErrUnknownToken},
		{"prose fuzzy", "hello world", Config{Fuzzy: true}, ErrNoComponents},
		{"hour out of range", "25:30", Config{}, ErrInvalidNumeric},
		{"labelled compact hour", "1230h", Config{}, ErrInvalidNumeric},
		{"minute out of range", "10:99", Config{}, ErrInvalidNumeric},
		{"double year", "2003-09-2004", Config{}, ErrInvalidNumeric},
		{"double year fuzzy", "from 2003-09-2004 onward", Config{Fuzzy: true}, ErrInvalidNumeric},
		{"four date values", "1 2 3 4", Config{}, ErrInvalidNumeric},
		{"meridian without hour", "pm", Config{}, ErrInvalidNumeric},
		{"meridian after 24h clock", "13:30 pm", Config{}, ErrInvalidNumeric},
		{"unattributable number strict", "12345 2024-01-15", Config{}, ErrUnknownToken},
		{"month name garbage", "Jan-foo", Config{}, ErrInvalidNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Parse(tt.in)
			if err == nil {
				t.Fatalf("Parse(%q): expected error", tt.in)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q): err = %v, want %v", tt.in, err, tt.want)
			}
		})
	}
}

func TestParseWeekdays(t *testing.T) {
	t.Parallel()

	names := []struct {
		long, short string
		num         int
	}{
		{"Monday", "Mon", 0},
		{"Tuesday", "Tue", 1},
		{"Wednesday", "Wed", 2},
		{"Thursday", "Thu", 3},
		{"Friday", "Fri", 4},
		{"Saturday", "Sat", 5},
		{"Sunday", "Sun", 6},
	}
	want := d(2024, 1, 15)
	for _, n := range names {
		for _, in := range []string{n.long + ", January 15, 2024", n.short + ", January 15, 2024"} {
			got, err := Parse(in)
			if err != nil {
				t.Fatalf("Parse(%q): %v", in, err)
			}
			checkResult(t, got, want.wd(n.num))
		}
	}
}

func TestParseMonthNames(t *testing.T) {
	t.Parallel()

	months := []string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}
	for i, name := range months {
		in := name + " 15, 2024"
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		checkResult(t, got, d(2024, i+1, 15))
	}

	// "Sept" is the one four-letter abbreviation in common use.
	got, err := Parse("Sept 15, 2024")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	checkResult(t, got, d(2024, 9, 15))
}

func TestParseTwoDigitYearWindow(t *testing.T) {
	t.Parallel()

	// Window pivots on the pinned 2026 clock: [1976, 2075].
	tests := []struct {
		in   string
		year int
	}{
		{"Jan 1 75", 2075},
		{"Jan 1 76", 1976},
		{"Jan 1 99", 1999},
		{"Jan 1 00", 2000},
		{"Jan 1 26", 2026},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.in, err)
		}
		if got.Year != tt.year {
			t.Errorf("Parse(%q): year = %d, want %d", tt.in, got.Year, tt.year)
		}
	}
}

func TestParseKeepsExplicitCentury(t *testing.T) {
	t.Parallel()

	got, err := Parse("0076-07-04")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	checkResult(t, got, d(76, 7, 4))
}
