// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package tags

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"phi-scrub/internal/tokenizer"
)

// ErrUnbalanced is returned for text whose angle brackets do not pair up.
var ErrUnbalanced = errors.New("unbalanced tags")

// ErrMalformed is returned for a marker whose category is not a valid name.
var ErrMalformed = errors.New("malformed tag")

// NestedTagsError reports a tag containing another tag where a flat tag
// stream is required.
type NestedTagsError struct {
	Outer string
	Inner string
}

func (e *NestedTagsError) Error() string {
	return fmt.Sprintf("text has nested tags: %s inside %s", e.Inner, e.Outer)
}

var categoryPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_-]*$`)

// Parse turns marker text into a span list. Plain text between markers is
// kept as a single plain span per run.
func Parse(text string) ([]Span, error) {
	tokens, err := tokenizer.Tokenize(text)
	if err != nil {
		if errors.Is(err, tokenizer.ErrUnbalanced) {
			return nil, fmt.Errorf("%w: %v", ErrUnbalanced, err)
		}
		return nil, err
	}

	spans := make([]Span, 0, len(tokens))
	var plain strings.Builder
	flush := func() {
		if plain.Len() > 0 {
			spans = append(spans, Plain(plain.String()))
			plain.Reset()
		}
	}
	for _, tok := range tokens {
		if !tok.IsMarker() {
			plain.WriteString(tok.Text)
			continue
		}
		flush()
		span, err := parseMarker(tok.Text)
		if err != nil {
			return nil, fmt.Errorf("at offset %d: %w", tok.Start, err)
		}
		spans = append(spans, span)
	}
	flush()
	return spans, nil
}

// parseMarker parses "<CATEGORY content>" including nested markers.
func parseMarker(marker string) (Span, error) {
	inner := marker[1 : len(marker)-1]
	category, content, _ := strings.Cut(inner, " ")
	if !categoryPattern.MatchString(category) {
		return Span{}, fmt.Errorf("%w: category %q", ErrMalformed, category)
	}
	children, err := Parse(content)
	if err != nil {
		return Span{}, err
	}
	if len(children) == 0 {
		return Tag(category), nil
	}
	return Tag(category, children...), nil
}

// HasNested reports whether marker text contains a tag inside another tag.
func HasNested(text string) (bool, error) {
	spans, err := Parse(text)
	if err != nil {
		return false, err
	}
	return FindNested(spans) != nil, nil
}

// FindNested returns a NestedTagsError for the first nested tag, or nil.
func FindNested(spans []Span) *NestedTagsError {
	for _, s := range spans {
		if !s.IsTag() {
			continue
		}
		for _, c := range s.Children {
			if c.IsTag() {
				return &NestedTagsError{Outer: s.Category, Inner: c.Category}
			}
		}
	}
	return nil
}
