// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"phi-scrub/internal/tags"
	"phi-scrub/internal/tokenizer"
	"phi-scrub/internal/trie"
)

// DictionaryDetector tags the longest dictionary phrase starting at each
// word, then continues after it.
//
// Person tags are transparent to the lookup: a phrase may run through a
// PERSOON tag ("AZ Sint-<PERSOON Jan>"), in which case the person tag is
// absorbed into the new tag. A phrase never splits a person tag and never
// consists of person tags alone.
type DictionaryDetector struct {
	name         string
	category     string
	phrases      *trie.Trie
	needsCapital bool

	// reject, when set, drops a match given the run text and its range
	reject func(text string, start, end int) bool
}

// NewDictionaryDetector creates a detector over phrases. With needsCapital
// set, a match must start with an upper-case letter.
func NewDictionaryDetector(name, category string, phrases *trie.Trie, needsCapital bool) *DictionaryDetector {
	return &DictionaryDetector{name: name, category: category, phrases: phrases, needsCapital: needsCapital}
}

func (d *DictionaryDetector) Name() string     { return d.name }
func (d *DictionaryDetector) Category() string { return d.category }

func (d *DictionaryDetector) Annotate(spans []tags.Span) []tags.Span {
	out := make([]tags.Span, 0, len(spans))
	for i := 0; i < len(spans); {
		if spans[i].IsTag() && spans[i].Category != tags.Person {
			out = append(out, spans[i])
			i++
			continue
		}
		j := i
		for j < len(spans) && (!spans[j].IsTag() || spans[j].Category == tags.Person) {
			j++
		}
		out = append(out, d.annotateRun(spans[i:j])...)
		i = j
	}
	return tags.Compact(out)
}

// segment is one span of a run with its byte range in the run text.
type segment struct {
	start, end int
	span       tags.Span
}

// annotateRun tags phrases in a run of plain spans and person tags.
func (d *DictionaryDetector) annotateRun(run []tags.Span) []tags.Span {
	var sb strings.Builder
	segments := make([]segment, 0, len(run))
	for _, s := range run {
		start := sb.Len()
		sb.WriteString(s.Text())
		segments = append(segments, segment{start: start, end: sb.Len(), span: s})
	}
	text := sb.String()

	tokens := tokenizer.SplitPlain(text)
	words := tokenizer.Texts(tokens)

	out := make([]tags.Span, 0, len(run)+2)
	last := 0
	for i := 0; i < len(tokens); i++ {
		if !tokens[i].IsWord() || d.needsCapital && !startsUpper(words[i]) {
			continue
		}
		n := 0
		for _, m := range d.phrases.FindAllPrefixes(words[i:]) {
			start, end := tokens[i].Start, tokens[i+len(m)-1].End
			if len(m) > n && fitsSegments(segments, start, end) && (d.reject == nil || !d.reject(text, start, end)) {
				n = len(m)
			}
		}
		if n == 0 {
			continue
		}
		start, end := tokens[i].Start, tokens[i+n-1].End
		out = appendRange(out, segments, text, last, start)
		out = append(out, tags.Tag(d.category, tags.Plain(text[start:end])))
		last = end
		i += n - 1
	}
	return appendRange(out, segments, text, last, len(text))
}

// fitsSegments reports whether [start, end) keeps every person tag whole
// and covers some plain text.
func fitsSegments(segments []segment, start, end int) bool {
	plain := false
	for _, s := range segments {
		if s.end <= start || s.start >= end {
			continue
		}
		if !s.span.IsTag() {
			plain = true
			continue
		}
		if s.start < start || s.end > end {
			return false
		}
	}
	return plain
}

// appendRange appends the part of the run between lo and hi. Plain spans
// are cut at the bounds; tags are never cut by a valid match and are kept.
func appendRange(out []tags.Span, segments []segment, text string, lo, hi int) []tags.Span {
	for _, s := range segments {
		if s.end <= lo || s.start >= hi {
			continue
		}
		if s.span.IsTag() {
			out = append(out, s.span)
			continue
		}
		out = append(out, tags.Plain(text[max(lo, s.start):min(hi, s.end)]))
	}
	return out
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
