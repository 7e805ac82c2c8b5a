// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package names tags person names in a document. A direct pass tags tokens
// that match the patient identity or the name dictionaries; a context pass
// then grows those tags from their neighbours until nothing changes.
package names

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"phi-scrub/internal/fuzzy"
	"phi-scrub/internal/lookup"
	"phi-scrub/internal/tags"
	"phi-scrub/internal/tokenizer"
)

// Patient is the identity of the document's subject. Empty fields are not
// matched.
type Patient struct {
	FirstNames string `json:"first_names,omitempty" yaml:"first_names,omitempty"` // space separated
	Initials   string `json:"initials,omitempty" yaml:"initials,omitempty"`
	Surname    string `json:"surname,omitempty" yaml:"surname,omitempty"`
	GivenName  string `json:"given_name,omitempty" yaml:"given_name,omitempty"`
}

// DirectTagger tags single tokens, and the patient surname window, in one
// left-to-right scan.
type DirectTagger struct {
	lists *lookup.Lists
}

// NewDirectTagger creates a direct tagger over lists.
func NewDirectTagger(lists *lookup.Lists) *DirectTagger {
	return &DirectTagger{lists: lists}
}

// Tag returns the tokens of text as spans: one plain span per untagged
// token and one tag per match.
func (d *DirectTagger) Tag(text string, patient Patient) []tags.Span {
	tokens := tokenizer.SplitPlain(text)
	firstNames := strings.Fields(patient.FirstNames)
	surname := tokenizer.Texts(tokenizer.SplitPlain(strings.TrimSpace(patient.Surname)))

	out := make([]tags.Span, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Kind != tokenizer.Word {
			out = append(out, tags.Plain(tok.Text))
			continue
		}
		span, last := d.match(tokens, i, patient, firstNames, surname)
		if span.IsTag() {
			out = append(out, span)
			i = last
			continue
		}
		out = append(out, tags.Plain(tok.Text))
	}
	return out
}

// match applies the rules in priority order and returns the tag and the
// index of the last token it consumed. A plain span means no rule fired.
func (d *DirectTagger) match(tokens []tokenizer.Token, i int, patient Patient, firstNames, surname []string) (tags.Span, int) {
	token := tokens[i].Text
	next := nextWord(tokens, i)

	// Prefix: "dr Jansen", "dr. Jansen"
	if d.lists.IsPrefix(token) && prefixGuard(token) {
		target := next
		if target == i+1 && tokens[target].Text == "." {
			target = nextWord(tokens, target)
		}
		if target >= 0 && startsUpper(tokens[target].Text) {
			return tagTokens(tags.PrefixName, tokens[i:target+1]), target
		}
	}

	// Interfix: only the particle is tagged, the surname is left for the
	// context pass.
	if next >= 0 && d.lists.IsInterfix(token) && d.isInterfixSurname(tokens[next].Text) {
		return tagTokens(tags.InterfixName, tokens[i:i+1]), i
	}

	if len(patient.FirstNames) > 1 {
		for _, name := range firstNames {
			initial, _ := utf8.DecodeRuneInString(name)
			if token == string(initial) {
				if i+1 < len(tokens) && tokens[i+1].Text == "." {
					return tagTokens(tags.InitialPatient, tokens[i:i+2]), i + 1
				}
				return tagTokens(tags.InitialPatient, tokens[i:i+1]), i
			}
			if fuzzy.MatchFold(token, name) {
				return tagTokens(tags.FirstNamePatient, tokens[i:i+1]), i
			}
		}
	}

	if patient.Initials != "" && token == patient.Initials {
		return tagTokens(tags.InitialsPatient, tokens[i:i+1]), i
	}

	if len(patient.Surname) > 1 && len(surname) > 0 && matchWindow(tokens[i:], surname) {
		last := i + len(surname) - 1
		return tagTokens(tags.SurnamePatient, tokens[i:last+1]), last
	}

	if len(patient.GivenName) > 1 && fuzzy.Match(token, patient.GivenName) {
		return tagTokens(tags.GivenNamePatient, tokens[i:i+1]), i
	}

	if d.lists.IsFirstName(token) && !d.lists.IsWhitelisted(token) {
		return tagTokens(tags.FirstNameUnknown, tokens[i:i+1]), i
	}
	if startsUpper(token) && d.lists.IsSurname(token) && !d.lists.IsWhitelisted(token) {
		return tagTokens(tags.SurnameUnknown, tokens[i:i+1]), i
	}

	return tags.Span{}, i
}

func (d *DirectTagger) isInterfixSurname(token string) bool {
	return utf8.RuneCountInString(token) > 2 && d.lists.IsInterfixSurname(token) && !d.lists.IsWhitelisted(token)
}

// matchWindow reports whether every pattern token matches the input token
// at the same position. Whitespace matches whitespace of any width.
func matchWindow(tokens []tokenizer.Token, pattern []string) bool {
	if len(tokens) < len(pattern) {
		return false
	}
	for k, p := range pattern {
		tok := tokens[k]
		if strings.TrimSpace(p) == "" {
			if !tok.IsSpace() {
				return false
			}
			continue
		}
		if !fuzzy.MatchFold(tok.Text, p) {
			return false
		}
	}
	return true
}

// prefixGuard rejects prefixes longer than two characters whose second and
// third characters are not digits 0-5 or a degree sign; those read as units
// rather than titles.
func prefixGuard(prefix string) bool {
	r := []rune(strings.ToLower(prefix))
	if len(r) <= 2 {
		return true
	}
	return strings.ContainsRune("012345°", r[1]) || strings.ContainsRune("012345°", r[2])
}

func tagTokens(category string, tokens []tokenizer.Token) tags.Span {
	return tags.Tag(category, tags.Plain(tokenizer.Join(tokens)))
}

// nextWord returns the index of the first non-whitespace token after i, or
// -1.
func nextWord(tokens []tokenizer.Token, i int) int {
	for j := i + 1; j < len(tokens); j++ {
		if !tokens[j].IsSpace() {
			return j
		}
	}
	return -1
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

// isInitial reports whether s is a single upper-case letter.
func isInitial(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size == len(s) && unicode.IsUpper(r)
}
