// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package names

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"phi-scrub/internal/lookup"
	"phi-scrub/internal/tags"
)

// DefaultMaxIterations bounds the context pass when no limit is configured.
const DefaultMaxIterations = 25

// FixedPointError is returned when the context pass keeps changing the
// document after the iteration limit.
type FixedPointError struct {
	Iterations int
}

func (e *FixedPointError) Error() string {
	return fmt.Sprintf("context tagging did not converge after %d iterations", e.Iterations)
}

// ContextTagger grows name tags based on the tags next to them.
type ContextTagger struct {
	lists         *lookup.Lists
	maxIterations int
}

// NewContextTagger creates a context tagger. A maxIterations below one
// selects DefaultMaxIterations.
func NewContextTagger(lists *lookup.Lists, maxIterations int) *ContextTagger {
	if maxIterations < 1 {
		maxIterations = DefaultMaxIterations
	}
	return &ContextTagger{lists: lists, maxIterations: maxIterations}
}

// Tag runs passes over spans until a pass leaves the rendered document
// unchanged. Plain spans in the input must each hold a single token, as
// produced by DirectTagger.
func (c *ContextTagger) Tag(spans []tags.Span) ([]tags.Span, error) {
	_, out, err := c.run(spans)
	return out, err
}

// run is Tag that also reports the number of passes made.
func (c *ContextTagger) run(spans []tags.Span) (int, []tags.Span, error) {
	prev := tags.Render(spans)
	for iter := 1; iter <= c.maxIterations; iter++ {
		spans = c.promoteCapitals(c.pass(spans))
		cur := tags.Render(spans)
		if cur == prev {
			return iter, spans, nil
		}
		prev = cur
	}
	return c.maxIterations, nil, &FixedPointError{Iterations: c.maxIterations}
}

// pass makes one left-to-right scan. Neighbours are the nearest spans that
// are not whitespace.
func (c *ContextTagger) pass(in []tags.Span) []tags.Span {
	out := make([]tags.Span, 0, len(in))
	for i := 0; i < len(in); i++ {
		cur := in[i]
		next := nextSpan(in, i)

		// Initial or capitalised word in front of a surname, particle or
		// initial tag.
		if next >= 0 && !cur.IsTag() && (isInitial(cur.Value) || c.capitalised(cur.Value)) &&
			in[next].IsTag() && hasAny(in[next].Category, "SURNAME", "INTERFIX", "INITIAL") {
			out = append(out, tags.Tag(tags.Initial, clone(in[i:next+1])...))
			i = next
			continue
		}

		// Particle and surname after a name: the previous tag is taken back
		// out of the output and wrapped together with them.
		if next >= 0 && c.isInterfix(cur) && c.isInterfixSurname(in[next]) {
			if p := lastTag(out); p >= 0 {
				children := append(clone(out[p:]), in[i:next+1]...)
				out = append(out[:p], tags.Tag(tags.InterfixSurname, children...))
				i = next
				continue
			}
		}

		// Initial or first name followed by a known capitalised name.
		if next >= 0 && (isInitial(cur.Value) && !cur.IsTag() ||
			cur.IsTag() && hasAny(cur.Category, "FORNAME", "GIVENNAME", "PREFIX", "INITIAL")) &&
			c.knownCapitalisedName(in[next]) {
			out = append(out, tags.Tag(tags.InitialCapitalisedName, clone(in[i:next+1])...))
			i = next
			continue
		}

		// "A en B"
		if next >= 0 && !cur.IsTag() && c.lists.IsCoordinator(cur.Value) && startsUpper(in[next].Text()) {
			if p := lastTag(out); p >= 0 {
				children := append(clone(out[p:]), in[i:next+1]...)
				out = append(out[:p], tags.Tag(tags.MultiplePerson, children...))
				i = next
				continue
			}
		}

		out = append(out, cur)
	}
	return out
}

// promoteCapitals turns an all-caps word separated by a single space from a
// name tag into an unknown surname.
func (c *ContextTagger) promoteCapitals(spans []tags.Span) []tags.Span {
	for i := 0; i+2 < len(spans); i++ {
		if spans[i].IsTag() && strings.Contains(spans[i].Category, "NAME") &&
			!spans[i+1].IsTag() && spans[i+1].Value == " " &&
			!spans[i+2].IsTag() && isAllCaps(spans[i+2].Value) {
			spans[i+2] = tags.Tag(tags.SurnameUnknown, spans[i+2])
		}
	}
	return spans
}

func (c *ContextTagger) capitalised(token string) bool {
	return startsUpper(token) && !c.lists.IsWhitelisted(token)
}

func (c *ContextTagger) isInterfix(s tags.Span) bool {
	if s.IsTag() {
		return s.Category == tags.InterfixName
	}
	return c.lists.IsInterfix(s.Value)
}

func (c *ContextTagger) isInterfixSurname(s tags.Span) bool {
	text := s.Text()
	return utf8.RuneCountInString(text) > 2 && c.lists.IsInterfixSurname(text) && !c.lists.IsWhitelisted(text)
}

func (c *ContextTagger) knownCapitalisedName(s tags.Span) bool {
	if s.IsTag() || utf8.RuneCountInString(s.Value) < 4 || !c.capitalised(s.Value) {
		return false
	}
	return c.lists.IsSurname(s.Value) || c.lists.IsFirstName(s.Value) || c.lists.IsInterfixSurname(s.Value)
}

// nextSpan returns the index of the first non-blank span after i, or -1.
func nextSpan(spans []tags.Span, i int) int {
	for j := i + 1; j < len(spans); j++ {
		if !spans[j].IsBlank() {
			return j
		}
	}
	return -1
}

// lastTag returns the index in out of the last non-blank span when it is a
// tag, or -1.
func lastTag(out []tags.Span) int {
	for j := len(out) - 1; j >= 0; j-- {
		if out[j].IsBlank() {
			continue
		}
		if out[j].IsTag() {
			return j
		}
		return -1
	}
	return -1
}

func clone(spans []tags.Span) []tags.Span {
	return append([]tags.Span(nil), spans...)
}

func hasAny(category string, parts ...string) bool {
	for _, p := range parts {
		if strings.Contains(category, p) {
			return true
		}
	}
	return false
}

func isAllCaps(s string) bool {
	n := 0
	for _, r := range s {
		if !unicode.IsUpper(r) {
			return false
		}
		n++
	}
	return n >= 4
}
