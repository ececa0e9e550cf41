// Package ascii provides byte-oriented classification and case conversion
// for the ASCII subset that date/time syntax is written in.
//
// Lexical tables store lowercase keys; inputs are folded with these helpers
// instead of the Unicode-aware strings functions, which are slower and can
// change byte lengths.
//
// All functions are safe for concurrent use.
package ascii

import "strings"

// IsDigit reports whether b is an ASCII digit.
func IsDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// IsAlpha reports whether b is an ASCII letter.
func IsAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// IsUpper reports whether b is an ASCII uppercase letter.
func IsUpper(b byte) bool {
	return b >= 'A' && b <= 'Z'
}

// Lower returns the ASCII lowercase form of b. Non-letters pass through.
func Lower(b byte) byte {
	if IsUpper(b) {
		return b + ('a' - 'A')
	}
	return b
}

// ToLower returns s with ASCII letters lowercased. Returns s unchanged
// (no allocation) when it contains no uppercase letters.
func ToLower(s string) string {
	i := 0
	for i < len(s) && !IsUpper(s[i]) {
		i++
	}
	if i == len(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:i])
	for ; i < len(s); i++ {
		b.WriteByte(Lower(s[i]))
	}
	return b.String()
}

// IsAllUpper reports whether s is non-empty and consists entirely of ASCII
// uppercase letters.
func IsAllUpper(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsUpper(s[i]) {
			return false
		}
	}
	return true
}

// IsAllDigits reports whether s is non-empty and consists entirely of ASCII
// digits.
func IsAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsDigit(s[i]) {
			return false
		}
	}
	return true
}
