package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bissli/opendate/internal/ascii"
	"github.com/bissli/opendate/tokenizer"
)

// Config controls the heuristic resolver. The zero value is the default
// behavior: month-first for ambiguous numeric dates, two-digit years before
// four-digit candidates only when unambiguous, and strict token coverage.
type Config struct {
	// Dayfirst treats the first value of an ambiguous numeric date as the
	// day: "10-09-2003" becomes 10 September instead of October 9.
	Dayfirst bool

	// Yearfirst treats the first value of an ambiguous numeric date as a
	// two-digit year: "10-09-03" becomes 2010-09-03.
	Yearfirst bool

	// Fuzzy skips tokens that cannot be attributed to any component instead
	// of failing. Numeric inconsistencies still fail: a second year or a
	// fourth date value is an error, not noise.
	Fuzzy bool
}

// Parse interprets s with the default Config.
func Parse(s string) (Result, error) {
	return Config{}.Parse(s)
}

// Parse interprets s, recognizing as many date/time components as the
// input supports. At least one component must be found.
func (c Config) Parse(s string) (Result, error) {
	res, _, err := c.parse(s)
	return res, err
}

// ParseWithTokens is Parse plus the skipped fragments of the input, with
// runs of adjacent skipped tokens joined. Fuzzy must be enabled.
func (c Config) ParseWithTokens(s string) (Result, []string, error) {
	if !c.Fuzzy {
		return Result{}, nil, errors.New("parser: skipped tokens require fuzzy mode")
	}
	return c.parse(s)
}

func (c Config) parse(s string) (Result, []string, error) {
	h := heuristic{
		cfg:  c,
		toks: group(tokenizer.Tokenize(s)),
		ymd:  newYMD(),
		ampm: -1,
	}
	if err := h.run(); err != nil {
		return Result{}, nil, err
	}
	if err := h.resolveDate(); err != nil {
		return Result{}, nil, err
	}
	h.validate()
	if h.res.Set == 0 {
		return Result{}, nil, fmt.Errorf("parser: %q: %w", s, ErrNoComponents)
	}
	var skipped []string
	if c.Fuzzy {
		skipped = recombineSkipped(h.toks, h.skipped)
	}
	return h.res, skipped, nil
}

// heuristic is the state of one resolver pass.
type heuristic struct {
	cfg     Config
	toks    []string
	res     Result
	ymd     ymd
	ampm    int   // last meridian marker bound to an hour, -1 when none
	skipped []int // indexes of tokens skipped over
}

// group bridges raw tokens to resolver tokens: each whitespace separator
// normalizes to a plain space, and digits-point-digits chains carrying
// exactly one mark merge into a decimal token ("34.578", "41,502").
// Chains with repeated marks are date separators and stay split.
func group(toks []tokenizer.Token) []string {
	out := make([]string, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind == tokenizer.Separator {
			r, _ := utf8.DecodeRuneInString(t.Text)
			if unicode.IsSpace(r) {
				out = append(out, " ")
				continue
			}
		}
		if t.Kind == tokenizer.Digits {
			text, next := mergeDecimal(toks, i)
			out = append(out, text)
			i = next
			continue
		}
		out = append(out, t.Text)
	}
	return out
}

func mergeDecimal(toks []tokenizer.Token, i int) (string, int) {
	marks := 0
	for j := i; j+2 < len(toks) &&
		toks[j+1].Kind == tokenizer.Separator &&
		(toks[j+1].Text == "." || toks[j+1].Text == ",") &&
		toks[j+2].Kind == tokenizer.Digits; j += 2 {
		marks++
	}
	if marks != 1 {
		return toks[i].Text, i
	}
	// A comma is a decimal mark only after two or more integer digits;
	// "3,14" stays split while "41,502" merges.
	if toks[i+1].Text == "," && len(toks[i].Text) < 2 {
		return toks[i].Text, i
	}
	return toks[i].Text + "." + toks[i+2].Text, i + 2
}

func (h *heuristic) skip(i int) {
	h.skipped = append(h.skipped, i)
}

// run walks the grouped tokens once, binding each to a component. Branch
// order matters: numbers first, then names, then timezone material, and
// jump words last.
func (h *heuristic) run() error {
	l := h.toks
	for i := 0; i < len(l); i++ {
		tok := l[i]

		if isDecimalToken(tok) {
			ni, err := h.parseNumeric(i)
			if err != nil {
				return err
			}
			i = ni
			continue
		}

		if wd, ok := lookupWeekday(tok); ok {
			if err := h.res.setWeekday(wd); err != nil {
				return err
			}
			continue
		}

		if m, ok := lookupMonth(tok); ok {
			ni, err := h.parseMonthName(i, m)
			if err != nil {
				return err
			}
			i = ni
			continue
		}

		if mer, ok := lookupAMPM(tok); ok {
			valid, err := h.ampmValid()
			if err != nil {
				return err
			}
			if valid {
				h.res.Hour = adjustAMPM(h.res.Hour, mer)
				h.ampm = mer
			} else if h.cfg.Fuzzy {
				h.skip(i)
			}
			continue
		}

		if couldBeTZName(&h.res, tok, false) {
			if err := h.res.setTZName(tok); err != nil {
				return err
			}
			if isUTCZone(tok) {
				if err := h.res.setTZOffset(0); err != nil {
					return err
				}
			}
			// "GMT+3" is a POSIX-style expression: the named zone is a
			// base and the offset runs west, so the sign reverses.
			if i+1 < len(l) && (l[i+1] == "+" || l[i+1] == "-") {
				if l[i+1] == "+" {
					l[i+1] = "-"
				} else {
					l[i+1] = "+"
				}
				if isUTCZone(h.res.TZName) {
					h.res.clearTZ()
				} else {
					h.res.TZOffset = 0
					h.res.Set &^= HasTZOffset
				}
			}
			continue
		}

		if h.res.Set&HasHour != 0 && (tok == "+" || tok == "-") &&
			i+1 < len(l) && ascii.IsAllDigits(l[i+1]) {
			ni, err := h.parseNumberedTZ(i)
			if err != nil {
				return err
			}
			i = ni
			continue
		}

		if isJump(tok) || h.cfg.Fuzzy {
			h.skip(i)
			continue
		}

		return fmt.Errorf("parser: %q: %w", tok, ErrUnknownToken)
	}
	return nil
}

// parseMonthName binds a month name at i and the separator idioms that can
// follow it: "Jan-01[-99]" and "Sep of 2003". Returns the last index used.
func (h *heuristic) parseMonthName(i, month int) (int, error) {
	l := h.toks
	if err := h.ymd.appendValue(month, labelMonth); err != nil {
		return 0, err
	}
	if i+1 >= len(l) {
		return i, nil
	}

	if l[i+1] == "-" || l[i+1] == "/" {
		sep := l[i+1]
		if i+2 >= len(l) {
			return 0, fmt.Errorf("parser: dangling %q after month name: %w", sep, ErrInvalidNumeric)
		}
		if err := h.ymd.appendToken(l[i+2], labelNone); err != nil {
			return 0, hardenUnfit(err)
		}
		if i+3 < len(l) && l[i+3] == sep {
			if i+4 >= len(l) {
				return 0, fmt.Errorf("parser: dangling %q after month name: %w", sep, ErrInvalidNumeric)
			}
			if err := h.ymd.appendToken(l[i+4], labelNone); err != nil {
				return 0, hardenUnfit(err)
			}
			return i + 4, nil
		}
		return i + 2, nil
	}

	if i+4 < len(l) && l[i+1] == " " && l[i+3] == " " && isPertain(l[i+2]) {
		// "Sep of 2003", "Sep of 03"
		if ascii.IsAllDigits(l[i+4]) {
			v, err := strconv.Atoi(l[i+4])
			if err == nil {
				if err := h.ymd.appendValue(expandYear(v, false), labelYear); err != nil {
					return 0, err
				}
			}
		}
		return i + 4, nil
	}

	return i, nil
}

// parseNumberedTZ reads a "+HHMM", "+HH:MM", or "+H[H]" offset at sign
// index i, plus an optional trailing "(NAME)". Returns the last index used.
func (h *heuristic) parseNumberedTZ(i int) (int, error) {
	l := h.toks
	sign := -1
	if l[i] == "+" {
		sign = 1
	}
	digits := l[i+1]
	j := i

	var off int
	var err error
	switch {
	case len(digits) == 4:
		hh, _ := strconv.Atoi(digits[:2])
		mm, _ := strconv.Atoi(digits[2:])
		off, err = offsetSeconds(sign, hh, mm)
	case j+2 < len(l) && l[j+2] == ":":
		if j+3 >= len(l) || !ascii.IsAllDigits(l[j+3]) {
			return 0, fmt.Errorf("parser: malformed UTC offset after %q: %w", digits, ErrInvalidNumeric)
		}
		hh, _ := strconv.Atoi(digits)
		mm, _ := strconv.Atoi(l[j+3])
		off, err = offsetSeconds(sign, hh, mm)
		j += 2
	case len(digits) <= 2:
		hh, _ := strconv.Atoi(digits)
		off, err = offsetSeconds(sign, hh, 0)
	default:
		return 0, fmt.Errorf("parser: malformed UTC offset %q: %w", l[i]+digits, ErrInvalidNumeric)
	}
	if err != nil {
		return 0, err
	}
	if err := h.res.setTZOffset(off); err != nil {
		return 0, err
	}

	// "-0300 (BRST)"
	if j+5 < len(l) && isJump(l[j+2]) && l[j+3] == "(" && l[j+5] == ")" &&
		3 <= len(l[j+4]) && couldBeTZName(&h.res, l[j+4], true) {
		if err := h.res.setTZName(l[j+4]); err != nil {
			return 0, err
		}
		j += 4
	}
	return j + 1, nil
}

// parseNumeric interprets the numeric token at i, using up to two tokens
// of context on either side. Returns the last index used.
func (h *heuristic) parseNumeric(i int) (int, error) {
	l := h.toks
	tok := l[i]
	d := newDecimal(tok)
	n := len(tok)
	dot := strings.IndexByte(tok, '.')

	nextIsTimePart := func() bool {
		if i+1 >= len(l) {
			return false
		}
		if l[i+1] == ":" {
			return true
		}
		_, ok := lookupHMS(l[i+1])
		return ok
	}

	switch {
	case len(h.ymd.vals) == 3 && dot < 0 && (n == 2 || n == 4) &&
		h.res.Set&HasHour == 0 && !nextIsTimePart():
		// 19990101T23[59]
		v, _ := strconv.Atoi(tok[:2])
		if err := h.res.setHour(v); err != nil {
			return 0, err
		}
		if n == 4 {
			v, _ = strconv.Atoi(tok[2:])
			if err := h.res.setMinute(v); err != nil {
				return 0, err
			}
		}
		return i, nil

	case n == 6 || (n > 6 && dot == 6):
		// YYMMDD or HHMMSS[.ff]
		if len(h.ymd.vals) == 0 && dot < 0 {
			for _, part := range []string{tok[:2], tok[2:4], tok[4:]} {
				if err := h.ymd.appendToken(part, labelNone); err != nil {
					return 0, hardenUnfit(err)
				}
			}
			return i, nil
		}
		if !ascii.IsAllDigits(tok[:4]) {
			return 0, fmt.Errorf("parser: bad time %q: %w", tok, ErrInvalidNumeric)
		}
		v, _ := strconv.Atoi(tok[:2])
		if err := h.res.setHour(v); err != nil {
			return 0, err
		}
		v, _ = strconv.Atoi(tok[2:4])
		if err := h.res.setMinute(v); err != nil {
			return 0, err
		}
		return i, h.setSeconds(newDecimal(tok[4:]))

	case dot < 0 && (n == 8 || n == 12 || n == 14):
		// YYYYMMDD[HHMM[SS]]
		if err := h.ymd.appendToken(tok[:4], labelYear); err != nil {
			return 0, hardenUnfit(err)
		}
		for _, part := range []string{tok[4:6], tok[6:8]} {
			if err := h.ymd.appendToken(part, labelNone); err != nil {
				return 0, hardenUnfit(err)
			}
		}
		if n > 8 {
			v, _ := strconv.Atoi(tok[8:10])
			if err := h.res.setHour(v); err != nil {
				return 0, err
			}
			v, _ = strconv.Atoi(tok[10:12])
			if err := h.res.setMinute(v); err != nil {
				return 0, err
			}
		}
		if n > 12 {
			v, _ := strconv.Atoi(tok[12:])
			if err := h.res.setSecond(v); err != nil {
				return 0, err
			}
		}
		return i, nil
	}

	if hmsIdx, ok := h.findHMSIdx(i); ok {
		// "10h", "10 h", "12h04", "36 m 05"
		pos, newIdx := 0, i
		if hmsIdx > i {
			pos, _ = lookupHMS(l[hmsIdx])
			newIdx = hmsIdx
		} else {
			prev, _ := lookupHMS(l[hmsIdx])
			pos = prev + 1
		}
		return newIdx, h.assignHMS(d, pos)
	}

	if i+2 < len(l) && l[i+1] == ":" {
		// HH:MM[:SS[.ff]]
		v, err := d.intPart()
		if err != nil {
			return 0, err
		}
		if err := h.res.setHour(v); err != nil {
			return 0, err
		}
		if !isDecimalToken(l[i+2]) {
			return 0, fmt.Errorf("parser: bad minute %q: %w", l[i+2], ErrInvalidNumeric)
		}
		m, s, hasSec, err := newDecimal(l[i+2]).minuteAndSecond()
		if err != nil {
			return 0, err
		}
		if err := h.res.setMinute(m); err != nil {
			return 0, err
		}
		if hasSec {
			if err := h.res.setSecond(s); err != nil {
				return 0, err
			}
		}
		if i+4 < len(l) && l[i+3] == ":" {
			if !isDecimalToken(l[i+4]) {
				return 0, fmt.Errorf("parser: bad second %q: %w", l[i+4], ErrInvalidNumeric)
			}
			if err := h.setSeconds(newDecimal(l[i+4])); err != nil {
				return 0, err
			}
			return i + 4, nil
		}
		return i + 2, nil
	}

	if i+1 < len(l) && (l[i+1] == "-" || l[i+1] == "/" || l[i+1] == ".") {
		// Separated date: 01-01[-01], 01-Jan[-01]
		sep := l[i+1]
		if err := h.ymd.appendToken(tok, labelNone); err != nil {
			return 0, hardenUnfit(err)
		}
		if i+2 >= len(l) || isJump(l[i+2]) {
			return i + 1, nil
		}
		if ascii.IsAllDigits(l[i+2]) {
			if err := h.ymd.appendToken(l[i+2], labelNone); err != nil {
				return 0, hardenUnfit(err)
			}
		} else if m, ok := lookupMonth(l[i+2]); ok {
			if err := h.ymd.appendValue(m, labelMonth); err != nil {
				return 0, err
			}
		} else {
			return 0, fmt.Errorf("parser: %q is not a date component: %w", l[i+2], ErrInvalidNumeric)
		}
		if i+3 < len(l) && l[i+3] == sep {
			if i+4 >= len(l) {
				return 0, fmt.Errorf("parser: dangling %q in date: %w", sep, ErrInvalidNumeric)
			}
			if m, ok := lookupMonth(l[i+4]); ok {
				if err := h.ymd.appendValue(m, labelMonth); err != nil {
					return 0, err
				}
			} else if err := h.ymd.appendToken(l[i+4], labelNone); err != nil {
				return 0, hardenUnfit(err)
			}
			return i + 4, nil
		}
		return i + 2, nil
	}

	if i+1 >= len(l) || isJump(l[i+1]) {
		if i+2 < len(l) {
			if mer, ok := lookupAMPM(l[i+2]); ok {
				// "12 am"
				return i + 2, h.setMeridianHour(d, mer)
			}
		}
		// Bare year, month, or day.
		if err := h.ymd.appendToken(tok, labelNone); err != nil {
			return h.skipUnfit(i, err)
		}
		return i + 1, nil
	}

	if mer, ok := lookupAMPM(l[i+1]); ok {
		if v, err := d.intPart(); err == nil && 0 <= v && v < 24 {
			// "12am"
			return i + 1, h.setMeridianHour(d, mer)
		}
	}

	if !d.hasFrac() {
		if v, err := d.intPart(); err == nil && h.ymd.couldBeDay(v) {
			return i, h.ymd.appendValue(v, labelNone)
		}
	}

	if !h.cfg.Fuzzy {
		return 0, fmt.Errorf("parser: %q: %w", tok, ErrUnknownToken)
	}
	return i, nil
}

// skipUnfit converts a can't-be-a-date value into a fuzzy skip, keeping
// genuine conflicts (a second year, a fourth value) fatal either way.
func (h *heuristic) skipUnfit(i int, err error) (int, error) {
	if !errors.Is(err, errYMDUnfit) {
		return 0, err
	}
	if !h.cfg.Fuzzy {
		return 0, fmt.Errorf("parser: %q: %w", h.toks[i], ErrUnknownToken)
	}
	h.skip(i)
	return i, nil
}

// hardenUnfit upgrades an unfit value inside a structured date to a hard
// error; "2024-xx" is malformed, not noise.
func hardenUnfit(err error) error {
	if errors.Is(err, errYMDUnfit) {
		return fmt.Errorf("parser: %v: %w", err, ErrInvalidNumeric)
	}
	return err
}

// findHMSIdx locates the h/m/s label attached to the numeric token at i:
// directly or across one space after it, or directly before it, or before
// a space when i is the final token.
func (h *heuristic) findHMSIdx(i int) (int, bool) {
	l := h.toks
	if i+1 < len(l) {
		if _, ok := lookupHMS(l[i+1]); ok {
			return i + 1, true
		}
	}
	if i+2 < len(l) && l[i+1] == " " {
		if _, ok := lookupHMS(l[i+2]); ok {
			return i + 2, true
		}
	}
	if i > 0 {
		if _, ok := lookupHMS(l[i-1]); ok {
			return i - 1, true
		}
	}
	if i > 1 && i == len(l)-1 && l[i-1] == " " {
		if _, ok := lookupHMS(l[i-2]); ok {
			return i - 2, true
		}
	}
	return 0, false
}

// assignHMS records value d as the component at pos. Fractions cascade
// into the next smaller unit: "10.5h" is 10:30, "36.5m" is 36m30s.
func (h *heuristic) assignHMS(d decimal, pos int) error {
	switch pos {
	case labelHour:
		v, err := d.intPart()
		if err != nil {
			return err
		}
		if err := h.res.setHour(v); err != nil {
			return err
		}
		if d.hasFrac() {
			return h.res.setMinute(d.fracTimes(60))
		}
	case labelMinute:
		m, s, hasSec, err := d.minuteAndSecond()
		if err != nil {
			return err
		}
		if err := h.res.setMinute(m); err != nil {
			return err
		}
		if hasSec {
			return h.res.setSecond(s)
		}
	case labelSecond:
		return h.setSeconds(d)
	}
	return nil
}

// setSeconds records whole seconds plus truncated microseconds when a
// fraction is present.
func (h *heuristic) setSeconds(d decimal) error {
	sec, us, err := d.secondAndMicrosecond()
	if err != nil {
		return err
	}
	if err := h.res.setSecond(sec); err != nil {
		return err
	}
	if d.frac != "" {
		return h.res.setMicrosecond(us)
	}
	return nil
}

func (h *heuristic) setMeridianHour(d decimal, mer int) error {
	v, err := d.intPart()
	if err != nil {
		return err
	}
	return h.res.setHour(adjustAMPM(v, mer))
}

// ampmValid decides whether a standalone AM/PM marker binds to the current
// hour. Fuzzy mode demotes every failure to a skip.
func (h *heuristic) ampmValid() (bool, error) {
	if h.cfg.Fuzzy && h.ampm >= 0 {
		return false, nil
	}
	if h.res.Set&HasHour == 0 {
		if h.cfg.Fuzzy {
			return false, nil
		}
		return false, fmt.Errorf("parser: meridian marker with no hour: %w", ErrInvalidNumeric)
	}
	if h.res.Hour > 12 {
		if h.cfg.Fuzzy {
			return false, nil
		}
		return false, fmt.Errorf("parser: hour %d is not on a 12-hour clock: %w", h.res.Hour, ErrInvalidNumeric)
	}
	return true, nil
}

// adjustAMPM maps a 12-hour clock value to 24-hour given a meridian.
func adjustAMPM(hour, mer int) int {
	if hour < 12 && mer == meridianPM {
		return hour + 12
	}
	if hour == 12 && mer == meridianAM {
		return 0
	}
	return hour
}

// resolveDate assigns identities to the collected date candidates and
// applies two-digit year expansion.
func (h *heuristic) resolveDate() error {
	r, err := h.ymd.resolve(h.cfg.Dayfirst, h.cfg.Yearfirst)
	if err != nil {
		return err
	}
	if r.hasYear {
		if err := h.res.setYear(expandYear(r.year, h.ymd.centurySpecified)); err != nil {
			return err
		}
	}
	if r.hasMonth {
		if err := h.res.setMonth(r.month); err != nil {
			return err
		}
	}
	if r.hasDay {
		if err := h.res.setDay(r.day); err != nil {
			return err
		}
	}
	return nil
}

// validate applies the final timezone normalizations: "Z" and a bare zero
// offset both mean UTC, and a UTC-family name pins the offset to zero.
func (h *heuristic) validate() {
	r := &h.res
	zeroOffsetNoName := r.Set&HasTZOffset != 0 && r.TZOffset == 0 && r.Set&HasTZName == 0
	if zeroOffsetNoName || r.TZName == "Z" || r.TZName == "z" {
		r.TZName = "UTC"
		r.TZOffset = 0
		r.Set |= HasTZName | HasTZOffset
		return
	}
	if r.Set&HasTZOffset != 0 && r.TZOffset != 0 &&
		r.Set&HasTZName != 0 && isUTCZone(r.TZName) {
		r.TZOffset = 0
	}
}

// recombineSkipped joins runs of adjacent skipped tokens back into the
// fragments they formed in the input.
func recombineSkipped(tokens []string, skipped []int) []string {
	var out []string
	for n, idx := range skipped {
		if n > 0 && idx == skipped[n-1]+1 {
			out[len(out)-1] += tokens[idx]
		} else {
			out = append(out, tokens[idx])
		}
	}
	return out
}
