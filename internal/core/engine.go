// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package core runs the annotation pipeline: name tagging, the detectors and
// tag consolidation, and exposes the three output modes.
package core

import (
	"fmt"
	"strings"

	"phi-scrub/internal/annotation"
	"phi-scrub/internal/lookup"
	"phi-scrub/internal/names"
	"phi-scrub/internal/observability"
	"phi-scrub/internal/redactors"
	"phi-scrub/internal/tags"
)

// AllCategories lists the category toggles accepted by ParseCategories.
var AllCategories = []string{
	"NAMES",
	"INSTITUTIONS",
	"LOCATIONS",
	"PHONE_NUMBERS",
	"PATIENT_NUMBERS",
	"DATES",
	"AGES",
	"URLS",
}

// Options holds the per-document inputs of an annotation run.
type Options struct {
	Patient   names.Patient
	PatientID string

	// Categories enables detectors by toggle name; nil enables everything
	Categories map[string]bool

	// DocumentID is only used in logs
	DocumentID string
}

// EngineConfig holds engine settings that do not change per document.
type EngineConfig struct {
	MaxContextIterations int
}

// Engine annotates documents. It is safe for concurrent use: the lists and
// taggers are read-only after construction.
type Engine struct {
	lists    *lookup.Lists
	names    *names.Tagger
	observer *observability.StandardObserver
}

var escaper = strings.NewReplacer("<", "(", ">", ")")

// NewEngine creates an engine over lists. A nil observer disables logging.
func NewEngine(lists *lookup.Lists, cfg EngineConfig, observer *observability.StandardObserver) *Engine {
	if cfg.MaxContextIterations <= 0 {
		cfg.MaxContextIterations = names.DefaultMaxIterations
	}
	return &Engine{
		lists:    lists,
		names:    names.NewTagger(lists, cfg.MaxContextIterations),
		observer: observer,
	}
}

// Annotate returns the consolidated span list of text.
func (e *Engine) Annotate(text string, opts Options) ([]tags.Span, error) {
	if text == "" {
		return nil, nil
	}

	finishTiming := e.observer.StartTiming("engine", "annotate", opts.DocumentID)

	enabled := opts.Categories
	if enabled == nil {
		enabled = ParseCategories(nil)
	}

	text = escaper.Replace(text)
	spans := []tags.Span{tags.Plain(text)}
	if enabled["NAMES"] {
		var err error
		spans, err = e.names.Tag(text, opts.Patient)
		if err != nil {
			finishTiming(false, map[string]interface{}{"error": err.Error()})
			return nil, fmt.Errorf("failed to tag names: %w", err)
		}
	}

	for _, d := range BuildDetectors(enabled, e.lists, opts.PatientID) {
		spans = d.Annotate(spans)
		if e.observer.Level() == observability.ObservabilityDebug && e.observer.DebugObserver != nil {
			e.observer.DebugObserver.LogDetail("engine", fmt.Sprintf("%s: %d tags", d.Name(), tags.Count(spans)))
		}
	}

	spans = tags.MergeAdjacent(spans)
	if tags.FindNested(spans) != nil {
		spans = tags.Flatten(spans)
	}

	finishTiming(true, map[string]interface{}{"tag_count": tags.Count(spans)})
	return spans, nil
}

// AnnotateText returns text with every detected value wrapped in a
// "<CATEGORY value>" marker. Literal angle brackets in the input are
// replaced by parentheses first.
func (e *Engine) AnnotateText(text string, opts Options) (string, error) {
	spans, err := e.Annotate(text, opts)
	if err != nil {
		return "", err
	}
	return tags.Render(spans), nil
}

// AnnotateStructured returns the annotations of text with byte offsets into
// text. Annotations whose offsets do not select their own text are kept and
// reported as a warning.
func (e *Engine) AnnotateStructured(text string, opts Options) ([]annotation.Annotation, error) {
	spans, err := e.Annotate(text, opts)
	if err != nil {
		return nil, err
	}

	annotations, err := annotation.FromSpans(spans, text)
	if err != nil {
		return nil, err
	}
	if bad := annotation.Mismatched(text, annotations); len(bad) > 0 {
		e.observer.LogWarning("engine", "%d annotations have texts that do not match the original text", len(bad))
	}
	return annotations, nil
}

// Deidentify replaces the tags of annotated text with placeholders.
func (e *Engine) Deidentify(annotated string) (*redactors.Result, error) {
	finishTiming := e.observer.StartTiming("engine", "deidentify", "")
	result, err := redactors.Deidentify(annotated)
	if err != nil {
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		return nil, err
	}
	finishTiming(true, map[string]interface{}{"placeholders": len(result.Mappings)})
	return result, nil
}

// ParseCategories converts a slice of toggle names into an enabled-categories
// map. An empty slice or ["all"] enables every category; unknown names are
// ignored.
func ParseCategories(categories []string) map[string]bool {
	result := make(map[string]bool, len(AllCategories))
	for _, c := range AllCategories {
		result[c] = false
	}

	if len(categories) == 0 || (len(categories) == 1 && strings.EqualFold(strings.TrimSpace(categories[0]), "all")) {
		for key := range result {
			result[key] = true
		}
		return result
	}

	for _, c := range categories {
		if name := strings.ToUpper(strings.TrimSpace(c)); name != "" {
			if _, exists := result[name]; exists {
				result[name] = true
			}
		}
	}

	return result
}
