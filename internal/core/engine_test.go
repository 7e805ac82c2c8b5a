// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"phi-scrub/internal/detector"
	"phi-scrub/internal/lookup"
	"phi-scrub/internal/names"
	"phi-scrub/internal/observability"
	"phi-scrub/internal/tags"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	lists, err := lookup.Load()
	if err != nil {
		t.Fatalf("failed to load lookup lists: %v", err)
	}
	return NewEngine(lists, EngineConfig{}, nil)
}

var janJansen = Options{Patient: names.Patient{FirstNames: "Jan", Surname: "Jansen"}}

func TestParseCategories_All(t *testing.T) {
	cases := []struct {
		name  string
		input []string
	}{
		{"nil slice enables all", nil},
		{"empty slice enables all", []string{}},
		{"explicit all enables all", []string{"all"}},
		{"upper case all", []string{" ALL "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := ParseCategories(tc.input)
			if len(result) != len(AllCategories) {
				t.Fatalf("expected %d categories, got %d", len(AllCategories), len(result))
			}
			for k, v := range result {
				if !v {
					t.Errorf("expected category %q to be enabled, got false", k)
				}
			}
		})
	}
}

func TestParseCategories_Specific(t *testing.T) {
	result := ParseCategories([]string{"DATES", " urls ", "UNKNOWN"})
	if !result["DATES"] {
		t.Error("DATES should be enabled")
	}
	if !result["URLS"] {
		t.Error("URLS should be enabled after trimming and upper-casing")
	}
	if result["NAMES"] {
		t.Error("NAMES should not be enabled")
	}
	if _, ok := result["UNKNOWN"]; ok {
		t.Error("UNKNOWN should not be in result")
	}
}

func TestBuildDetectors(t *testing.T) {
	lists := lookup.New(lookup.Source{})

	got := detectorNames(BuildDetectors(ParseCategories(nil), lists, ""))
	want := "institutions,addresses,postal_codes,residences,place_names,phone_numbers,patient_numbers,dates,ages,emails,urls"
	if strings.Join(got, ",") != want {
		t.Errorf("unexpected detector order:\n got %s\nwant %s", strings.Join(got, ","), want)
	}

	withID := BuildDetectors(ParseCategories([]string{"PATIENT_NUMBERS"}), lists, "X-12345")
	if len(withID) != 2 || withID[0].Name() != "patient_id" {
		t.Errorf("expected patient id detector first, got %v", detectorNames(withID))
	}

	if n := len(BuildDetectors(ParseCategories([]string{"NAMES"}), lists, "")); n != 0 {
		t.Errorf("NAMES alone should build no detectors, got %d", n)
	}
}

func detectorNames(ds []detector.Detector) []string {
	var out []string
	for _, d := range ds {
		out = append(out, d.Name())
	}
	return out
}

func TestAnnotateText_EndToEnd(t *testing.T) {
	e := newTestEngine(t)

	got, err := e.AnnotateText("Jan Jansen werd gezien door arts Peter de Visser.", janJansen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "<PATIENT Jan Jansen> werd gezien door arts <PERSOON Peter de Visser>."
	if got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestAnnotateText_Detectors(t *testing.T) {
	e := newTestEngine(t)

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"date", "Opgenomen op 12/03/2021.", "Opgenomen op <DATUM 12/03/2021>."},
		{"institution and residence", "Verwezen naar UZ Gent te Gent.", "Verwezen naar <INSTELLING UZ Gent> te <LOCATIE Gent>."},
		{"postal code and city merge", "Woont in 9000 Gent.", "Woont in <LOCATIE 9000 Gent>."},
		{"angle brackets are escaped", "Waarde <5 mmol>.", "Waarde (5 mmol)."},
		{"age", "Een 64-jarige patiënt.", "Een <LEEFTIJD 64>-jarige patiënt."},
		{"phone", "Bel 0478 12 34 56.", "Bel <TELEFOONNUMMER 0478 12 34 56>."},
		{"email", "Mail naar info@uza.be.", "Mail naar <URL info@uza.be>."},
		{"institution through a first name", "Opgenomen in AZ Sint-Jan te Brugge.",
			"Opgenomen in <INSTELLING AZ Sint-Jan> te <LOCATIE Brugge>."},
		{"saint residence", "Hij woont in Saint-Gilles.", "Hij woont in <LOCATIE Saint-Gilles>."},
		{"saint place through a surname", "Woont in Sint-Martens-Latem.", "Woont in <LOCATIE Sint-Martens-Latem>."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.AnnotateText(tc.input, Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got  %q\nwant %q", got, tc.want)
			}
		})
	}
}

func TestAnnotateText_CategoryToggles(t *testing.T) {
	e := newTestEngine(t)
	input := "Jan Jansen op 12/03/2021 in Gent."

	got, err := e.AnnotateText(input, Options{
		Patient:    janJansen.Patient,
		Categories: ParseCategories([]string{"DATES"}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "Jan Jansen op <DATUM 12/03/2021> in Gent."; got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestAnnotateText_PatientID(t *testing.T) {
	e := newTestEngine(t)

	got, err := e.AnnotateText("Dossier AB-7781 besproken.", Options{PatientID: "ab-7781"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "Dossier <PATIENTNUMMER AB-7781> besproken."; got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestAnnotateText_Empty(t *testing.T) {
	e := newTestEngine(t)
	got, err := e.AnnotateText("", janJansen)
	if err != nil || got != "" {
		t.Errorf("expected empty output, got %q, %v", got, err)
	}

	annotations, err := e.AnnotateStructured("", janJansen)
	if err != nil || len(annotations) != 0 {
		t.Errorf("expected no annotations, got %v, %v", annotations, err)
	}
}

func TestAnnotateStructured(t *testing.T) {
	e := newTestEngine(t)
	text := "  Jan Jansen werd gezien door arts Peter de Visser."

	annotations, err := e.AnnotateStructured(text, janJansen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(annotations) != 2 {
		t.Fatalf("expected 2 annotations, got %d: %v", len(annotations), annotations)
	}
	for _, a := range annotations {
		if text[a.StartChar:a.EndChar] != a.Text {
			t.Errorf("annotation %+v does not match original text %q", a, text[a.StartChar:a.EndChar])
		}
	}
	if annotations[0].Category != tags.Patient || annotations[1].Category != tags.Person {
		t.Errorf("unexpected categories: %v", annotations)
	}
}

func TestAnnotateStructured_EscapedBrackets(t *testing.T) {
	lists, err := lookup.Load()
	if err != nil {
		t.Fatalf("failed to load lookup lists: %v", err)
	}
	var buf bytes.Buffer
	e := NewEngine(lists, EngineConfig{}, observability.NewStandardObserver(observability.ObservabilityMetrics, &buf))

	annotations, err := e.AnnotateStructured("Zie <Gent>", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(annotations) != 1 || annotations[0].Text != "Gent" {
		t.Fatalf("unexpected annotations: %v", annotations)
	}
	if buf.Len() != 0 {
		t.Errorf("did not expect a warning, got %q", buf.String())
	}
}

func TestDeidentify(t *testing.T) {
	e := newTestEngine(t)

	annotated, err := e.AnnotateText("Jan Jansen werd gezien door arts Peter de Visser.", janJansen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := e.Deidentify(annotated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "<PATIENT> werd gezien door arts <PERSOON-1>."; result.Text != want {
		t.Errorf("got  %q\nwant %q", result.Text, want)
	}
}

func TestDeidentify_Unbalanced(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Deidentify("<PERSOON Peter"); !errors.Is(err, tags.ErrUnbalanced) {
		t.Errorf("expected ErrUnbalanced, got %v", err)
	}
}

func TestEngine_ConcurrentUse(t *testing.T) {
	e := newTestEngine(t)
	done := make(chan string, 8)
	for i := 0; i < 8; i++ {
		go func() {
			out, err := e.AnnotateText("Jan Jansen werd gezien door arts Peter de Visser.", janJansen)
			if err != nil {
				out = err.Error()
			}
			done <- out
		}()
	}
	want := "<PATIENT Jan Jansen> werd gezien door arts <PERSOON Peter de Visser>."
	for i := 0; i < 8; i++ {
		if got := <-done; got != want {
			t.Errorf("got %q", got)
		}
	}
}
