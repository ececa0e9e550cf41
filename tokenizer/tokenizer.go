// Package tokenizer splits raw date/time strings into classified tokens
// with byte offsets.
//
// Tokenization is purely lexical: runs of ASCII digits and runs of letters
// become single tokens of any length, and every other rune becomes a
// one-rune Separator token. No date/time meaning is attached here; the
// parser package assigns semantics.
//
// The byte offset invariant s[t.Start:t.End] == t.Text holds for every
// token, and concatenating all token texts reconstructs the original
// string.
//
// All functions are safe for concurrent use by multiple goroutines.
package tokenizer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/bissli/opendate/internal/ascii"
)

// Kind classifies a token.
type Kind int

const (
	Digits    Kind = iota // Run of ASCII digits
	Letters               // Run of Unicode letters
	Separator             // Single non-letter, non-digit rune
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Digits:
		return "Digits"
	case Letters:
		return "Letters"
	case Separator:
		return "Separator"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token represents a unit of text with its position and classification.
type Token struct {
	Text  string // The token text
	Start int    // Byte offset in the original string (inclusive)
	End   int    // Byte offset in the original string (exclusive)
	Kind  Kind   // Classification of the token
}

// String returns a debug representation, e.g. Digits("2024")[0:4].
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)[%d:%d]", t.Kind, t.Text, t.Start, t.End)
}

// Tokenize splits s into digit runs, letter runs, and single-rune
// separators, preserving order and position. It never fails; empty input
// yields nil.
func Tokenize(s string) []Token {
	if s == "" {
		return nil
	}
	tokens := make([]Token, 0, len(s)/2+1)

	i := 0
	for i < len(s) {
		if ascii.IsDigit(s[i]) {
			start := i
			for i < len(s) && ascii.IsDigit(s[i]) {
				i++
			}
			tokens = append(tokens, Token{Text: s[start:i], Start: start, End: i, Kind: Digits})
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsLetter(r) {
			start := i
			for i < len(s) {
				nr, ns := utf8.DecodeRuneInString(s[i:])
				if !unicode.IsLetter(nr) {
					break
				}
				i += ns
			}
			tokens = append(tokens, Token{Text: s[start:i], Start: start, End: i, Kind: Letters})
			continue
		}

		tokens = append(tokens, Token{Text: s[i : i+size], Start: i, End: i + size, Kind: Separator})
		i += size
	}

	return tokens
}
