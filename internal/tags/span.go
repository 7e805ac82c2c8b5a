// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package tags holds the typed span model used by every tagging pass.
//
// A document is an ordered list of spans. A span is either a run of plain
// text or a tag carrying a category and child spans. Rendering a span list
// produces marker text such as "<PATIENT Jan Jansen>"; Parse reverses it.
package tags

import (
	"strings"
)

// Final categories present in annotated output.
const (
	Patient       = "PATIENT"
	Person        = "PERSOON"
	Location      = "LOCATIE"
	Institution   = "INSTELLING"
	Date          = "DATUM"
	Age           = "LEEFTIJD"
	PatientNumber = "PATIENTNUMMER"
	PhoneNumber   = "TELEFOONNUMMER"
	URL           = "URL"
)

// Categories used while names are being tagged. They never survive into
// annotated output.
const (
	PrefixName             = "PREFIXNAME"
	InterfixName           = "INTERFIXNAME"
	InitialPatient         = "INITIALPAT"
	FirstNamePatient       = "FORNAMEPAT"
	InitialsPatient        = "INITIALENPAT"
	SurnamePatient         = "SURNAMEPAT"
	GivenNamePatient       = "GIVENNAMEPAT"
	FirstNameUnknown       = "FORNAMEUNKNOWN"
	SurnameUnknown         = "SURNAMEUNKNOWN"
	Initial                = "INITIAL"
	InterfixSurname        = "INTERFIXSURNAME"
	InitialCapitalisedName = "INITIALCAPITALISEDNAME"
	MultiplePerson         = "MULTIPLEPERSON"
)

// Span is a plain text run (Category == "") or a tag.
type Span struct {
	Category string
	Value    string
	Children []Span
}

// Plain returns a plain text span.
func Plain(text string) Span {
	return Span{Value: text}
}

// Tag returns a tag span over children.
func Tag(category string, children ...Span) Span {
	return Span{Category: category, Children: children}
}

// IsTag reports whether the span is a tag.
func (s Span) IsTag() bool { return s.Category != "" }

// IsBlank reports whether the span is plain text made only of whitespace.
func (s Span) IsBlank() bool {
	return !s.IsTag() && strings.TrimSpace(s.Value) == ""
}

// Text returns the span content with all markers removed.
func (s Span) Text() string {
	if !s.IsTag() {
		return s.Value
	}
	var sb strings.Builder
	s.writeText(&sb)
	return sb.String()
}

func (s Span) writeText(sb *strings.Builder) {
	if !s.IsTag() {
		sb.WriteString(s.Value)
		return
	}
	for _, c := range s.Children {
		c.writeText(sb)
	}
}

// Nested reports whether the tag contains another tag.
func (s Span) Nested() bool {
	for _, c := range s.Children {
		if c.IsTag() {
			return true
		}
	}
	return false
}

// Contains reports whether the category of s or of any tag below it
// satisfies match.
func (s Span) Contains(match func(category string) bool) bool {
	if !s.IsTag() {
		return false
	}
	if match(s.Category) {
		return true
	}
	for _, c := range s.Children {
		if c.Contains(match) {
			return true
		}
	}
	return false
}

// String renders the span as marker text.
func (s Span) String() string {
	var sb strings.Builder
	s.render(&sb)
	return sb.String()
}

func (s Span) render(sb *strings.Builder) {
	if !s.IsTag() {
		sb.WriteString(s.Value)
		return
	}
	sb.WriteByte('<')
	sb.WriteString(s.Category)
	if len(s.Children) > 0 {
		sb.WriteByte(' ')
		for _, c := range s.Children {
			c.render(sb)
		}
	}
	sb.WriteByte('>')
}

// Render renders a span list as marker text.
func Render(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		s.render(&sb)
	}
	return sb.String()
}

// PlainText returns the concatenated text of a span list without markers.
func PlainText(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		s.writeText(&sb)
	}
	return sb.String()
}

// Compact joins consecutive plain spans and drops empty ones.
func Compact(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if !s.IsTag() {
			if s.Value == "" {
				continue
			}
			if n := len(out); n > 0 && !out[n-1].IsTag() {
				out[n-1].Value += s.Value
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

// Count returns the number of top-level tags.
func Count(spans []Span) int {
	n := 0
	for _, s := range spans {
		if s.IsTag() {
			n++
		}
	}
	return n
}
