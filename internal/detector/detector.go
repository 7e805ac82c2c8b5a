// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package detector holds the pattern and dictionary detectors that run after
// name tagging. Detectors only ever look at plain text runs; the content of
// existing tags is never rescanned.
package detector

import (
	"regexp"

	"phi-scrub/internal/tags"
)

// Detector adds tags of one category to a span list.
type Detector interface {
	// Name returns the detector identifier used in logs
	Name() string

	// Category returns the tag category the detector emits
	Category() string

	// Annotate returns spans with new tags for every match in a plain run
	Annotate(spans []tags.Span) []tags.Span
}

// Pattern is one regular expression of a PatternDetector.
type Pattern struct {
	Regexp *regexp.Regexp

	// Group selects the submatch to tag; 0 tags the whole match
	Group int

	// Reject, when set, drops a match given the run and the tagged range
	Reject func(text string, start, end int) bool
}

// PatternDetector tags regular expression matches. Patterns are applied in
// order, so an earlier pattern wins over a later one for the same text.
type PatternDetector struct {
	name     string
	category string
	patterns []Pattern
}

// NewPatternDetector creates a detector from patterns.
func NewPatternDetector(name, category string, patterns ...Pattern) *PatternDetector {
	return &PatternDetector{name: name, category: category, patterns: patterns}
}

func (d *PatternDetector) Name() string     { return d.name }
func (d *PatternDetector) Category() string { return d.category }

func (d *PatternDetector) Annotate(spans []tags.Span) []tags.Span {
	for _, p := range d.patterns {
		spans = eachPlain(spans, func(text string) []tags.Span {
			return d.split(text, p)
		})
	}
	return spans
}

func (d *PatternDetector) split(text string, p Pattern) []tags.Span {
	matches := p.Regexp.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []tags.Span{tags.Plain(text)}
	}

	out := make([]tags.Span, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		start, end := m[2*p.Group], m[2*p.Group+1]
		if start < last || start >= end {
			continue
		}
		if p.Reject != nil && p.Reject(text, start, end) {
			continue
		}
		out = append(out, tags.Plain(text[last:start]), tags.Tag(d.category, tags.Plain(text[start:end])))
		last = end
	}
	out = append(out, tags.Plain(text[last:]))
	return tags.Compact(out)
}

// eachPlain replaces every plain span with the spans fn returns for it.
func eachPlain(spans []tags.Span, fn func(text string) []tags.Span) []tags.Span {
	out := make([]tags.Span, 0, len(spans))
	for _, s := range spans {
		if s.IsTag() {
			out = append(out, s)
			continue
		}
		out = append(out, fn(s.Value)...)
	}
	return out
}
