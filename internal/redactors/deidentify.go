// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package redactors replaces tagged values in annotated text with numbered
// placeholders and records which values each placeholder stands for.
package redactors

import (
	"fmt"
	"strings"

	"phi-scrub/internal/fuzzy"
	"phi-scrub/internal/tags"
)

// Categories replaced by numbered placeholders, in the order their
// mappings are reported.
var Categories = []string{
	tags.Person,
	tags.Location,
	tags.Institution,
	tags.Date,
	tags.Age,
	tags.PatientNumber,
	tags.PhoneNumber,
	tags.URL,
}

// PatientPlaceholder replaces every PATIENT tag.
const PatientPlaceholder = "<" + tags.Patient + ">"

// Mapping records the values collapsed into one placeholder, in the order
// they were first seen.
type Mapping struct {
	Placeholder string   `json:"placeholder" yaml:"placeholder"`
	Category    string   `json:"category" yaml:"category"`
	Values      []string `json:"values" yaml:"values"`
}

// Result is de-identified text plus its placeholder mappings.
type Result struct {
	Text     string    `json:"text" yaml:"text"`
	Mappings []Mapping `json:"mappings" yaml:"mappings"`
}

// Deidentify replaces each tag in annotated with a placeholder. PATIENT tags
// become "<PATIENT>". For the other categories values are clustered per
// category: the first unassigned value becomes a representative, and it and
// every unassigned value within one edit of it share the next index. The
// clustering is not transitive. Tags of categories outside Categories are
// kept as they are.
func Deidentify(annotated string) (*Result, error) {
	if annotated == "" {
		return &Result{}, nil
	}

	spans, err := tags.Parse(annotated)
	if err != nil {
		return nil, NewRedactionError(ErrorParse, "cannot parse annotated text", "deidentify", err)
	}
	spans = tags.Flatten(spans)

	index := make(map[string]map[string]int, len(Categories))
	var mappings []Mapping
	for _, category := range Categories {
		clusters := cluster(values(spans, category))
		index[category] = make(map[string]int)
		for i, members := range clusters {
			for _, v := range members {
				index[category][v] = i + 1
			}
			mappings = append(mappings, Mapping{
				Placeholder: placeholder(category, i+1),
				Category:    category,
				Values:      members,
			})
		}
	}

	var sb strings.Builder
	for _, s := range spans {
		switch {
		case !s.IsTag():
			sb.WriteString(s.Value)
		case s.Category == tags.Patient:
			sb.WriteString(PatientPlaceholder)
		default:
			n, ok := index[s.Category][s.Text()]
			if !ok {
				sb.WriteString(s.String())
				continue
			}
			sb.WriteString(placeholder(s.Category, n))
		}
	}
	return &Result{Text: sb.String(), Mappings: mappings}, nil
}

func placeholder(category string, n int) string {
	return fmt.Sprintf("<%s-%d>", category, n)
}

// values returns the distinct texts of category tags in first-seen order.
func values(spans []tags.Span, category string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range spans {
		if s.Category != category {
			continue
		}
		v := s.Text()
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// cluster groups values around successive representatives.
func cluster(values []string) [][]string {
	var clusters [][]string
	assigned := make([]bool, len(values))
	for i, rep := range values {
		if assigned[i] {
			continue
		}
		members := []string{rep}
		assigned[i] = true
		for j := i + 1; j < len(values); j++ {
			if !assigned[j] && fuzzy.Within(values[j], rep) {
				members = append(members, values[j])
				assigned[j] = true
			}
		}
		clusters = append(clusters, members)
	}
	return clusters
}
