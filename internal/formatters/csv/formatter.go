// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"fmt"
	"strings"

	"phi-scrub/internal/formatters"
	"phi-scrub/internal/formatters/shared"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values, one row per annotation"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(docs []formatters.Document, options formatters.FormatterOptions) (string, error) {
	headers := []string{"Filename", "Category", "Line Number", "Start", "End", "Placeholder", "Text"}
	csvRows := []string{strings.Join(headers, ",")}

	for _, doc := range docs {
		if doc.Error != nil {
			csvRows = append(csvRows, strings.Join([]string{
				f.escapeCSVField(doc.Path), "ERROR", "", "", "", "", f.escapeCSVField(doc.Error.Error()),
			}, ","))
			continue
		}
		for _, finding := range shared.Findings(doc) {
			csvRows = append(csvRows, f.createCSVRow(doc.Path, finding, options))
		}
	}

	return strings.Join(csvRows, "\n"), nil
}

// createCSVRow creates a CSV row for an annotation
func (f *Formatter) createCSVRow(filename string, finding shared.Finding, options formatters.FormatterOptions) string {
	displayText := "[REDACTED]"
	if options.ShowMatch {
		displayText = finding.Text
	}

	row := []string{
		f.escapeCSVField(filename),
		f.escapeCSVField(finding.Category),
		fmt.Sprintf("%d", finding.LineNumber),
		fmt.Sprintf("%d", finding.StartChar),
		fmt.Sprintf("%d", finding.EndChar),
		f.escapeCSVField(finding.Placeholder),
		f.escapeCSVField(displayText),
	}
	return strings.Join(row, ",")
}

// escapeCSVField properly escapes a field for CSV format and prevents CSV injection
func (f *Formatter) escapeCSVField(field string) string {
	field = f.sanitizeFormulaInjection(field)

	if strings.ContainsAny(field, ",\"\n\r") {
		escaped := strings.ReplaceAll(field, "\"", "\"\"")
		return fmt.Sprintf("\"%s\"", escaped)
	}
	return field
}

// sanitizeFormulaInjection prefixes fields that a spreadsheet would evaluate
// as a formula. Phone numbers such as +32 9 123 45 67 are affected too.
func (f *Formatter) sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	switch field[0] {
	case '=', '+', '-', '@':
		return "'" + field
	}
	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
