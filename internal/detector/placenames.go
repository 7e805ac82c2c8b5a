// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"
	"unicode/utf8"

	"phi-scrub/internal/tags"
	"phi-scrub/internal/tokenizer"
)

// PlaceNameDetector completes place and institution names that name tagging
// has split, mostly names built on a saint:
//
//	<LOCATIE Saint>-Gilles            -> <LOCATIE Saint-Gilles>
//	Sint-<PERSOON Martens>-Latem      -> <LOCATIE Sint-Martens-Latem>
//	<INSTELLING AZ Sint> <PERSOON Jan> -> <INSTELLING AZ Sint Jan>
//	<INSTELLING Altrecht> Lentis      -> <INSTELLING Altrecht Lentis>
//
// It must run after the institution and residence detectors.
type PlaceNameDetector struct {
	extend map[string]bool
}

// NewPlaceNameDetector creates a detector that extends tags of the given
// categories. Standalone "Sint-<PERSOON ...>" names are only tagged when
// LOCATIE is among them.
func NewPlaceNameDetector(categories ...string) *PlaceNameDetector {
	extend := make(map[string]bool, len(categories))
	for _, c := range categories {
		extend[c] = true
	}
	return &PlaceNameDetector{extend: extend}
}

func (d *PlaceNameDetector) Name() string     { return "place_names" }
func (d *PlaceNameDetector) Category() string { return tags.Location }

func (d *PlaceNameDetector) Annotate(spans []tags.Span) []tags.Span {
	us := toUnits(spans)
	out := make([]tags.Span, 0, len(spans))
	for i := 0; i < len(us); {
		if category, end := d.match(us, i); end > i {
			var sb strings.Builder
			for _, u := range us[i:end] {
				sb.WriteString(u.text)
			}
			out = append(out, tags.Tag(category, tags.Plain(sb.String())))
			i = end
			continue
		}
		if us[i].isTag() {
			out = append(out, us[i].span)
		} else {
			out = append(out, tags.Plain(us[i].text))
		}
		i++
	}
	return tags.Compact(out)
}

// match returns the category and end of a merged name starting at unit i,
// or end == i when there is none.
func (d *PlaceNameDetector) match(us []unit, i int) (string, int) {
	u := us[i]
	if u.isTag() {
		if !d.extend[u.span.Category] {
			return "", i
		}
		if end := extendTag(us, i); end > i+1 {
			return u.span.Category, end
		}
		return "", i
	}
	if d.extend[tags.Location] {
		if k, ok := saintAt(us, i); ok && k+1 < len(us) && us[k].text == "-" && us[k+1].isPerson() {
			return tags.Location, chain(us, k+2)
		}
	}
	return "", i
}

// extendTag returns the end of the name that starts with the tag at i.
func extendTag(us []unit, i int) int {
	u := us[i]

	if u.span.Category == tags.Institution && strings.EqualFold(u.text, "altrecht") {
		end := i + 1
		for end+1 < len(us) && us[end].isSingleSpace() && us[end+1].isCapitalised() {
			end += 2
		}
		return end
	}

	// <LOCATIE Saint>-Gilles
	if isSaint(lastWord(u.text)) {
		if j, hyphen := joiner(us, i+1); j < len(us) && (us[j].isPerson() || hyphen && us[j].isCapitalised()) {
			return chain(us, j+1)
		}
		return i + 1
	}

	// <LOCATIE Brussel> Sint-<PERSOON Jan>
	j, _ := joiner(us, i+1)
	if k, ok := saintAt(us, j); ok {
		if m, _ := joiner(us, k); m < len(us) && us[m].isPerson() {
			return chain(us, m+1)
		}
	}

	// <INSTELLING AZ> <PERSOON Sint Jan>
	if u.span.Category == tags.Institution && i+2 < len(us) && us[i+1].isSingleSpace() &&
		us[i+2].isPerson() && isSaint(firstWord(us[i+2].text)) {
		return chain(us, i+3)
	}
	return i + 1
}

// joiner skips an optional space, hyphen and space starting at i and
// reports whether a hyphen was among them.
func joiner(us []unit, i int) (int, bool) {
	if i < len(us) && us[i].isSingleSpace() {
		i++
	}
	hyphen := i < len(us) && us[i].text == "-"
	if hyphen {
		i++
	}
	if i < len(us) && us[i].isSingleSpace() {
		i++
	}
	return i, hyphen
}

// chain extends a name over "-Name" parts, as in Sint-Pieters-Leeuw.
func chain(us []unit, i int) int {
	for i+1 < len(us) && us[i].text == "-" && (us[i+1].isPerson() || us[i+1].isCapitalised()) {
		i += 2
	}
	return i
}

// saintAt reports whether a plain saint word starts at i and returns the
// index after it, including the period of "St.".
func saintAt(us []unit, i int) (int, bool) {
	if i >= len(us) || us[i].isTag() || !isSaint(us[i].text) {
		return i, false
	}
	if strings.EqualFold(us[i].text, "st") && i+1 < len(us) && us[i+1].text == "." {
		return i + 2, true
	}
	return i + 1, true
}

func isSaint(word string) bool {
	switch strings.ToLower(word) {
	case "sint", "saint", "st":
		return true
	}
	return false
}

func firstWord(text string) string {
	for _, tok := range tokenizer.SplitPlain(text) {
		if tok.IsWord() {
			return tok.Text
		}
	}
	return ""
}

func lastWord(text string) string {
	tokens := tokenizer.SplitPlain(text)
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].IsWord() {
			return tokens[i].Text
		}
	}
	return ""
}

// unit is one token of a plain run or one whole tag.
type unit struct {
	text string
	kind tokenizer.Kind
	span tags.Span
}

func toUnits(spans []tags.Span) []unit {
	us := make([]unit, 0, len(spans))
	for _, s := range spans {
		if s.IsTag() {
			us = append(us, unit{text: s.Text(), span: s})
			continue
		}
		for _, tok := range tokenizer.SplitPlain(s.Value) {
			us = append(us, unit{text: tok.Text, kind: tok.Kind})
		}
	}
	return us
}

func (u unit) isTag() bool    { return u.span.IsTag() }
func (u unit) isPerson() bool { return u.span.Category == tags.Person }

func (u unit) isSingleSpace() bool {
	return !u.isTag() && u.kind == tokenizer.Space && utf8.RuneCountInString(u.text) == 1
}

func (u unit) isCapitalised() bool {
	return !u.isTag() && u.kind == tokenizer.Word && startsUpper(u.text)
}
