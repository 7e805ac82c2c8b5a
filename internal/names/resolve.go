// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package names

import (
	"strings"

	"phi-scrub/internal/lookup"
	"phi-scrub/internal/tags"
)

// Resolve flattens the intermediate name tags. A tag that holds any patient
// identity match anywhere inside it becomes PATIENT, every other name tag
// becomes PERSOON. Plain runs are joined.
func Resolve(spans []tags.Span) []tags.Span {
	out := make([]tags.Span, 0, len(spans))
	for _, s := range spans {
		if !s.IsTag() {
			out = append(out, s)
			continue
		}
		category := tags.Person
		if s.Contains(isPatientCategory) {
			category = tags.Patient
		}
		out = append(out, tags.Tag(category, tags.Plain(s.Text())))
	}
	return tags.Compact(out)
}

func isPatientCategory(category string) bool {
	return strings.HasSuffix(category, "PAT")
}

// Tagger runs the direct pass, the context pass and Resolve.
type Tagger struct {
	direct  *DirectTagger
	context *ContextTagger
}

// NewTagger creates the full name tagging pipeline.
func NewTagger(lists *lookup.Lists, maxIterations int) *Tagger {
	return &Tagger{
		direct:  NewDirectTagger(lists),
		context: NewContextTagger(lists, maxIterations),
	}
}

// Tag tags names in plain text and returns flat PATIENT and PERSOON tags.
func (t *Tagger) Tag(text string, patient Patient) ([]tags.Span, error) {
	spans, err := t.context.Tag(t.direct.Tag(text, patient))
	if err != nil {
		return nil, err
	}
	return Resolve(spans), nil
}
