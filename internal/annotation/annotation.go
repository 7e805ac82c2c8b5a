// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package annotation converts annotated text into structured annotations
// with offsets into the original, untagged document.
package annotation

import (
	"strings"
	"unicode"

	"phi-scrub/internal/tags"
)

// Annotation is one tagged span. StartChar and EndChar are byte offsets
// into the original text, and original[StartChar:EndChar] == Text unless
// the annotation is reported by Mismatched.
type Annotation struct {
	Text      string `json:"text" yaml:"text"`
	StartChar int    `json:"start_char" yaml:"start_char"`
	EndChar   int    `json:"end_char" yaml:"end_char"`
	Category  string `json:"category" yaml:"category"`
}

// Extract walks tagged once and returns one annotation per tag, in order.
// Tagged must not contain nested tags; a *tags.NestedTagsError is returned
// when it does. Leading whitespace that differs between the original and the
// tagged text is accounted for.
func Extract(tagged, original string) ([]Annotation, error) {
	spans, err := tags.Parse(tagged)
	if err != nil {
		return nil, err
	}
	return FromSpans(spans, original)
}

// FromSpans is Extract for an already parsed span list.
func FromSpans(spans []tags.Span, original string) ([]Annotation, error) {
	if nerr := tags.FindNested(spans); nerr != nil {
		return nil, nerr
	}

	base := leadingSpace(original) - leadingSpace(tags.PlainText(spans))
	offset := base
	var annotations []Annotation
	for _, s := range spans {
		text := s.Text()
		if s.IsTag() {
			annotations = append(annotations, Annotation{
				Text:      text,
				StartChar: offset,
				EndChar:   offset + len(text),
				Category:  s.Category,
			})
		}
		offset += len(text)
	}
	return annotations, nil
}

// Mismatched returns the annotations whose offsets do not select their own
// text in original.
func Mismatched(original string, annotations []Annotation) []Annotation {
	var bad []Annotation
	for _, a := range annotations {
		if a.StartChar < 0 || a.EndChar > len(original) || a.StartChar > a.EndChar ||
			original[a.StartChar:a.EndChar] != a.Text {
			bad = append(bad, a)
		}
	}
	return bad
}

func leadingSpace(s string) int {
	return len(s) - len(strings.TrimLeftFunc(s, unicode.IsSpace))
}
