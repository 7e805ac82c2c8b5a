// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package tokenizer splits clinical text into offset-tagged tokens.
//
// Whitespace runs and punctuation characters are emitted as tokens of their
// own, so concatenating the token texts always reproduces the input. Tag
// markers of the form <CATEGORY content> are kept as single opaque tokens,
// including any markers nested inside them.
//
// All functions are safe for concurrent use.
package tokenizer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrUnbalanced is returned when the text contains a '<' or '>' that is not
// part of a balanced tag marker.
var ErrUnbalanced = errors.New("unbalanced tag marker")

// Kind classifies a token.
type Kind int

const (
	Word   Kind = iota // letters, digits and anything not listed below
	Space              // contiguous whitespace
	Punct              // a single punctuation character
	Marker             // a complete <CATEGORY ...> tag marker
	Email              // user@domain.tld
	URL                // scheme-prefixed link
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "Word"
	case Space:
		return "Space"
	case Punct:
		return "Punct"
	case Marker:
		return "Marker"
	case Email:
		return "Email"
	case URL:
		return "URL"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is a unit of text with byte offsets into the tokenized string.
// The invariant text[t.Start:t.End] == t.Text holds for every token.
type Token struct {
	Text  string
	Start int
	End   int
	Kind  Kind
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)[%d:%d]", t.Kind, t.Text, t.Start, t.End)
}

// IsSpace reports whether the token is a whitespace run.
func (t Token) IsSpace() bool { return t.Kind == Space }

// IsMarker reports whether the token is an opaque tag marker.
func (t Token) IsMarker() bool { return t.Kind == Marker }

// IsWord reports whether the token carries letters or digits.
func (t Token) IsWord() bool {
	return t.Kind == Word || t.Kind == Email || t.Kind == URL
}

const punctuation = ".,;:!?()[]{}\"'/\\-+*=&%#|~“”‘’„«»…"

// IsPunctuation reports whether r splits words.
func IsPunctuation(r rune) bool {
	return strings.ContainsRune(punctuation, r)
}

var (
	emailPrefix = regexp.MustCompile(`^[\p{L}\p{N}._%+-]+@[\p{L}\p{N}-]+(?:\.[\p{L}\p{N}-]+)*\.\p{L}{2,}`)
	urlPrefix   = regexp.MustCompile(`^(?i:https?|ftp)://[^\s<>]*[^\s<>.,;:!?)"']`)
)

// Tokenize splits text into tokens, treating tag markers as opaque units.
// A '<' without its closing '>' or a stray '>' yields ErrUnbalanced.
func Tokenize(text string) ([]Token, error) {
	return scan(text, true)
}

// SplitPlain tokenizes text that is known to carry no tag markers. Angle
// brackets are emitted as punctuation tokens.
func SplitPlain(text string) []Token {
	tokens, _ := scan(text, false)
	return tokens
}

// Join concatenates the token texts.
func Join(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// Texts returns the text of every token.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func scan(text string, markers bool) ([]Token, error) {
	if text == "" {
		return nil, nil
	}
	tokens := make([]Token, 0, len(text)/3+1)
	emit := func(start, end int, kind Kind) {
		tokens = append(tokens, Token{Text: text[start:end], Start: start, End: end, Kind: kind})
	}

	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case markers && r == '<':
			end, err := markerEnd(text, i)
			if err != nil {
				return nil, err
			}
			emit(i, end, Marker)
			i = end
		case markers && r == '>':
			return nil, fmt.Errorf("%w: '>' at offset %d", ErrUnbalanced, i)
		case unicode.IsSpace(r):
			j := i + size
			for j < len(text) {
				r2, s2 := utf8.DecodeRuneInString(text[j:])
				if !unicode.IsSpace(r2) {
					break
				}
				j += s2
			}
			emit(i, j, Space)
			i = j
		case IsPunctuation(r) || r == '<' || r == '>':
			emit(i, i+size, Punct)
			i += size
		default:
			if loc := emailPrefix.FindStringIndex(text[i:]); loc != nil {
				emit(i, i+loc[1], Email)
				i += loc[1]
				continue
			}
			if loc := urlPrefix.FindStringIndex(text[i:]); loc != nil {
				emit(i, i+loc[1], URL)
				i += loc[1]
				continue
			}
			j := i + size
			for j < len(text) {
				r2, s2 := utf8.DecodeRuneInString(text[j:])
				if unicode.IsSpace(r2) || IsPunctuation(r2) || r2 == '<' || r2 == '>' {
					break
				}
				j += s2
			}
			emit(i, j, Word)
			i = j
		}
	}
	return tokens, nil
}

// markerEnd returns the offset just past the '>' that closes the marker
// opened at start, honouring nested markers.
func markerEnd(text string, start int) (int, error) {
	depth := 0
	for j := start; j < len(text); j++ {
		switch text[j] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return j + 1, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: '<' at offset %d is never closed", ErrUnbalanced, start)
}
