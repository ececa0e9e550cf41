package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/bissli/opendate/internal/ascii"
)

// errYMDUnfit marks a numeric token that cannot be any date component
// (too many digits, or a fractional value). In fuzzy mode such tokens are
// skipped rather than failing the parse.
var errYMDUnfit = errors.New("numeric token cannot be a date component")

// Slot labels for date candidates whose identity is already known when
// they are collected ('M' from a month name, 'Y' from a 4-digit run).
const (
	labelNone  byte = 0
	labelYear  byte = 'Y'
	labelMonth byte = 'M'
	labelDay   byte = 'D'
)

// ymd accumulates up to three date candidates in input order, tracking
// which positions are already known to be the year, month, or day. The
// remaining identities are assigned by resolve.
type ymd struct {
	vals             []int
	ystridx          int // position of the known year, -1 when unknown
	mstridx          int // position of the known month
	dstridx          int // position of the known day
	centurySpecified bool
}

func newYMD() ymd {
	return ymd{ystridx: -1, mstridx: -1, dstridx: -1}
}

// appendToken collects a digit-run token. Runs of more than two digits
// carry an explicit century and can only be the year.
func (y *ymd) appendToken(text string, label byte) error {
	if len(text) > 4 || !ascii.IsAllDigits(text) {
		return errYMDUnfit
	}
	if len(text) > 2 {
		if label != labelNone && label != labelYear {
			return fmt.Errorf("parser: %d-digit value cannot be %c: %w", len(text), label, ErrInvalidNumeric)
		}
		y.centurySpecified = true
		label = labelYear
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return errYMDUnfit
	}
	return y.push(v, label)
}

// appendValue collects an already-interpreted candidate, e.g. a month
// bound from its name or a century-expanded year.
func (y *ymd) appendValue(v int, label byte) error {
	if v > 100 {
		if label != labelNone && label != labelYear {
			return fmt.Errorf("parser: value %d cannot be %c: %w", v, label, ErrInvalidNumeric)
		}
		y.centurySpecified = true
		label = labelYear
	}
	return y.push(v, label)
}

func (y *ymd) push(v int, label byte) error {
	if len(y.vals) >= 3 {
		return fmt.Errorf("parser: more than three date components: %w", ErrInvalidNumeric)
	}
	y.vals = append(y.vals, v)
	idx := len(y.vals) - 1
	switch label {
	case labelYear:
		if y.ystridx >= 0 {
			return fmt.Errorf("parser: year already present: %w", ErrInvalidNumeric)
		}
		y.ystridx = idx
	case labelMonth:
		if y.mstridx >= 0 {
			return fmt.Errorf("parser: month already present: %w", ErrInvalidNumeric)
		}
		y.mstridx = idx
	case labelDay:
		if y.dstridx >= 0 {
			return fmt.Errorf("parser: day already present: %w", ErrInvalidNumeric)
		}
		y.dstridx = idx
	}
	return nil
}

// couldBeDay reports whether v fits the day slot given what is already
// known about the month and year.
func (y *ymd) couldBeDay(v int) bool {
	switch {
	case y.dstridx >= 0:
		return false
	case y.mstridx < 0:
		return 1 <= v && v <= 31
	case y.ystridx < 0:
		return 1 <= v && v <= daysInMonth(0, y.vals[y.mstridx], false)
	default:
		return 1 <= v && v <= daysInMonth(y.vals[y.ystridx], y.vals[y.mstridx], true)
	}
}

// resolved carries the outcome of identity assignment; absent slots stay
// unset rather than defaulted.
type resolved struct {
	year, month, day          int
	hasYear, hasMonth, hasDay bool
}

// resolve assigns year/month/day identities to the collected values.
// Known positions win outright; the rest follow the dayfirst/yearfirst
// heuristics, with values over 31 forced to the year and values over 12
// forced away from the month.
func (y *ymd) resolve(dayfirst, yearfirst bool) (resolved, error) {
	n := len(y.vals)

	labelled := 0
	for _, idx := range [3]int{y.ystridx, y.mstridx, y.dstridx} {
		if idx >= 0 {
			labelled++
		}
	}
	if (n == labelled && labelled > 0) || (n == 3 && labelled == 2) {
		return y.resolveFromIndexes()
	}

	var out resolved
	setY := func(v int) { out.year, out.hasYear = v, true }
	setM := func(v int) { out.month, out.hasMonth = v, true }
	setD := func(v int) { out.day, out.hasDay = v, true }

	switch n {
	case 0:
		return out, nil

	case 1:
		if y.mstridx == 0 {
			setM(y.vals[0])
		} else if y.vals[0] > 31 {
			setY(y.vals[0])
		} else {
			setD(y.vals[0])
		}

	case 2:
		if y.mstridx >= 0 {
			// One of the two came from a month name.
			setM(y.vals[y.mstridx])
			other := y.vals[1-y.mstridx]
			if other > 31 {
				setY(other)
			} else {
				setD(other)
			}
			break
		}
		v0, v1 := y.vals[0], y.vals[1]
		switch {
		case v0 > 31:
			setY(v0)
			setM(v1)
		case v1 > 31:
			setM(v0)
			setY(v1)
		case dayfirst && v1 <= 12:
			setD(v0)
			setM(v1)
		default:
			setM(v0)
			setD(v1)
		}

	case 3:
		v0, v1, v2 := y.vals[0], y.vals[1], y.vals[2]
		switch y.mstridx {
		case 0:
			if v1 > 31 {
				// Apr-2003-25
				setM(v0)
				setY(v1)
				setD(v2)
			} else {
				setM(v0)
				setD(v1)
				setY(v2)
			}
		case 1:
			if v0 > 31 || (yearfirst && v2 <= 31) {
				// 99-Jan-01
				setY(v0)
				setM(v1)
				setD(v2)
			} else {
				// 01-Jan-01: two-digit years are usually hand-written,
				// so day-first takes precedence.
				setD(v0)
				setM(v1)
				setY(v2)
			}
		case 2:
			if v1 > 31 {
				// 01-99-Jan
				setD(v0)
				setY(v1)
				setM(v2)
			} else {
				// 99-01-Jan
				setY(v0)
				setD(v1)
				setM(v2)
			}
		default:
			switch {
			case v0 > 31 || y.ystridx == 0 || (yearfirst && v1 <= 12 && v2 <= 31):
				if dayfirst && v2 <= 12 {
					setY(v0)
					setD(v1)
					setM(v2)
				} else {
					// 99-01-01
					setY(v0)
					setM(v1)
					setD(v2)
				}
			case v0 > 12 || (dayfirst && v1 <= 12):
				// 13-01-01
				setD(v0)
				setM(v1)
				setY(v2)
			default:
				// 01-13-01
				setM(v0)
				setD(v1)
				setY(v2)
			}
		}

	default:
		return out, fmt.Errorf("parser: more than three date components: %w", ErrInvalidNumeric)
	}

	return out, nil
}

// resolveFromIndexes assigns identities from the tracked positions alone,
// backing out the one missing identity when exactly two of three are known.
func (y *ymd) resolveFromIndexes() (resolved, error) {
	ystridx, mstridx, dstridx := y.ystridx, y.mstridx, y.dstridx

	if len(y.vals) == 3 {
		missing := -1
		for pos := 0; pos < 3; pos++ {
			if pos != ystridx && pos != mstridx && pos != dstridx {
				missing = pos
			}
		}
		switch {
		case ystridx < 0:
			ystridx = missing
		case mstridx < 0:
			mstridx = missing
		case dstridx < 0:
			dstridx = missing
		}
	}

	var out resolved
	if ystridx >= 0 && ystridx < len(y.vals) {
		out.year, out.hasYear = y.vals[ystridx], true
	}
	if mstridx >= 0 && mstridx < len(y.vals) {
		out.month, out.hasMonth = y.vals[mstridx], true
	}
	if dstridx >= 0 && dstridx < len(y.vals) {
		out.day, out.hasDay = y.vals[dstridx], true
	}
	return out, nil
}
