// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package tags

// MergeAdjacent joins tags of the same category that are separated by
// nothing but whitespace. The whitespace is kept inside the merged tag.
// Tags of different categories are left alone.
func MergeAdjacent(spans []Span) []Span {
	out := make([]Span, 0, len(spans))
	for i := 0; i < len(spans); i++ {
		cur := spans[i]
		if !cur.IsTag() {
			out = append(out, cur)
			continue
		}
		for {
			j := i + 1
			var gap []Span
			if j < len(spans) && spans[j].IsBlank() {
				gap = spans[j : j+1]
				j++
			}
			if j >= len(spans) || spans[j].Category != cur.Category {
				break
			}
			children := make([]Span, 0, len(cur.Children)+len(gap)+len(spans[j].Children))
			children = append(children, cur.Children...)
			children = append(children, gap...)
			children = append(children, spans[j].Children...)
			cur = Tag(cur.Category, Compact(children)...)
			i = j
		}
		out = append(out, cur)
	}
	return out
}

// Flatten removes nesting: every top-level tag keeps its own category and
// the markers of inner tags are dropped, leaving their text as content.
func Flatten(spans []Span) []Span {
	out := make([]Span, len(spans))
	for i, s := range spans {
		if s.IsTag() && s.Nested() {
			s = Tag(s.Category, Plain(s.Text()))
		}
		out[i] = s
	}
	return out
}

// Consolidate flattens nested tags and merges adjacent tags of the same
// category in marker text. Running it on its own output changes nothing.
func Consolidate(text string) (string, error) {
	spans, err := Parse(text)
	if err != nil {
		return "", err
	}
	return Render(MergeAdjacent(Flatten(spans))), nil
}
