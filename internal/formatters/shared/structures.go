// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package shared holds the output model used by the json, yaml and csv
// formatters.
package shared

import (
	"strings"

	"phi-scrub/internal/formatters"
	"phi-scrub/internal/redactors"
)

// Response represents the top-level response structure for JSON/YAML output
type Response struct {
	Documents []DocumentResult `json:"documents" yaml:"documents"`
	Summary   Summary          `json:"summary" yaml:"summary"`
}

// DocumentResult is one processed document
type DocumentResult struct {
	File         string              `json:"file,omitempty" yaml:"file,omitempty"`
	Annotated    string              `json:"annotated_text,omitempty" yaml:"annotated_text,omitempty"`
	Deidentified string              `json:"deidentified_text,omitempty" yaml:"deidentified_text,omitempty"`
	Annotations  []Finding           `json:"annotations" yaml:"annotations"`
	Mappings     []redactors.Mapping `json:"mappings,omitempty" yaml:"mappings,omitempty"`
	Error        string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// Finding is an annotation located in its document
type Finding struct {
	Text        string `json:"text" yaml:"text"`
	Category    string `json:"category" yaml:"category"`
	StartChar   int    `json:"start_char" yaml:"start_char"`
	EndChar     int    `json:"end_char" yaml:"end_char"`
	LineNumber  int    `json:"line_number" yaml:"line_number"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// Summary counts the documents and annotations of a response
type Summary struct {
	Documents   int            `json:"documents" yaml:"documents"`
	Failed      int            `json:"failed" yaml:"failed"`
	Annotations int            `json:"annotations" yaml:"annotations"`
	Categories  map[string]int `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// LineNumber returns the 1-based line of byte offset in text
func LineNumber(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	if offset < 0 {
		offset = 0
	}
	return strings.Count(text[:offset], "\n") + 1
}

// Findings locates the annotations of doc and attaches the placeholder that
// replaced each value when the document was de-identified.
func Findings(doc formatters.Document) []Finding {
	placeholders := placeholderIndex(doc.Deidentified)
	findings := make([]Finding, 0, len(doc.Annotations))
	for _, a := range doc.Annotations {
		findings = append(findings, Finding{
			Text:        a.Text,
			Category:    a.Category,
			StartChar:   a.StartChar,
			EndChar:     a.EndChar,
			LineNumber:  LineNumber(doc.Text, a.StartChar),
			Placeholder: placeholders[a.Category+"\x00"+a.Text],
		})
	}
	return findings
}

func placeholderIndex(result *redactors.Result) map[string]string {
	index := make(map[string]string)
	if result == nil {
		return index
	}
	for _, m := range result.Mappings {
		for _, v := range m.Values {
			index[m.Category+"\x00"+v] = m.Placeholder
		}
	}
	return index
}

// ConvertDocuments converts processed documents to the JSON/YAML model
func ConvertDocuments(docs []formatters.Document) Response {
	response := Response{
		Documents: make([]DocumentResult, 0, len(docs)),
		Summary:   Summary{Documents: len(docs), Categories: make(map[string]int)},
	}
	for _, doc := range docs {
		result := DocumentResult{File: doc.Path}
		if doc.Error != nil {
			result.Error = doc.Error.Error()
			result.Annotations = []Finding{}
			response.Summary.Failed++
			response.Documents = append(response.Documents, result)
			continue
		}

		result.Annotated = doc.Annotated
		result.Annotations = Findings(doc)
		if doc.Deidentified != nil {
			result.Deidentified = doc.Deidentified.Text
			result.Mappings = doc.Deidentified.Mappings
			// the annotated text is superseded by the placeholders
			result.Annotated = ""
		}
		for _, f := range result.Annotations {
			response.Summary.Annotations++
			response.Summary.Categories[f.Category]++
		}
		response.Documents = append(response.Documents, result)
	}
	return response
}
