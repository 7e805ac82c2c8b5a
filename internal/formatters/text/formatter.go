// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"phi-scrub/internal/formatters"
	"phi-scrub/internal/formatters/shared"
	"phi-scrub/internal/tags"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable output: the processed text followed by a table of annotations"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

// Format prints, per document, the de-identified or annotated text. The
// annotation table is printed in verbose mode and whenever there is no
// output text.
func (f *Formatter) Format(docs []formatters.Document, options formatters.FormatterOptions) (string, error) {
	if options.NoColor {
		color.NoColor = true
	}

	var builder strings.Builder
	total := 0
	failed := 0
	for i, doc := range docs {
		if len(docs) > 1 {
			if i > 0 {
				builder.WriteString("\n")
			}
			f.paint(&builder, options, "white", "=== %s ===\n", f.getSmartFilename(doc.Path, docs))
		}

		if doc.Error != nil {
			failed++
			f.paint(&builder, options, "red", "Error: %v\n", doc.Error)
			continue
		}

		output := doc.Annotated
		if doc.Deidentified != nil {
			output = doc.Deidentified.Text
		}
		if output != "" {
			builder.WriteString(output)
			if !strings.HasSuffix(output, "\n") {
				builder.WriteString("\n")
			}
		}

		findings := shared.Findings(doc)
		total += len(findings)
		if len(findings) > 0 && (options.Verbose || output == "") {
			builder.WriteString("\n")
			f.appendTable(&builder, findings, options)
		}
	}

	if options.Verbose || len(docs) > 1 {
		builder.WriteString("\n")
		f.paint(&builder, options, "cyan", "%d document(s), %d annotation(s)", len(docs), total)
		if failed > 0 {
			f.paint(&builder, options, "red", ", %d failed", failed)
		}
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// appendTable adds a header and one line per annotation
func (f *Formatter) appendTable(builder *strings.Builder, findings []shared.Finding, options formatters.FormatterOptions) {
	matchWidth := f.calculateMatchColumnWidth(findings, options)
	f.paint(builder, options, "white", "%-15s %-10s %-12s %-*s %s\n", "CATEGORY", "LINE", "OFFSET", matchWidth, "MATCH", "PLACEHOLDER")
	totalWidth := 15 + 1 + 10 + 1 + 12 + 1 + matchWidth + 1 + 12
	f.paint(builder, options, "white", "%s\n", strings.Repeat("-", totalWidth))

	for _, finding := range findings {
		f.appendSummaryLine(builder, finding, matchWidth, options)
	}
}

func (f *Formatter) appendSummaryLine(builder *strings.Builder, finding shared.Finding, matchWidth int, options formatters.FormatterOptions) {
	category := fmt.Sprintf("%-15s", finding.Category)
	if !options.NoColor {
		category = f.colors[categoryColor(finding.Category)].Sprint(category)
	}

	lineStr := fmt.Sprintf("line %5d", finding.LineNumber)
	if !options.NoColor {
		lineStr = f.colors["magenta"].Sprint(lineStr)
	}

	offsetStr := fmt.Sprintf("%-12s", fmt.Sprintf("%d-%d", finding.StartChar, finding.EndChar))

	matchText := "[REDACTED]"
	if options.ShowMatch {
		matchText = strings.NewReplacer("\n", " ", "\t", " ").Replace(finding.Text)
		runes := []rune(matchText)
		if len(runes) > matchWidth {
			matchText = string(runes[:matchWidth-3]) + "..."
		}
	}
	// pad by rune count, fmt widths count bytes
	if padding := matchWidth - len([]rune(matchText)); padding > 0 {
		matchText += strings.Repeat(" ", padding)
	}

	fmt.Fprintf(builder, "%s %s %s %s %s\n", category, lineStr, offsetStr, matchText, finding.Placeholder)
}

// calculateMatchColumnWidth calculates the optimal width for the match column
func (f *Formatter) calculateMatchColumnWidth(findings []shared.Finding, options formatters.FormatterOptions) int {
	maxWidth := 10 // Minimum width for "[REDACTED]"
	if !options.ShowMatch {
		return maxWidth
	}
	for _, finding := range findings {
		if n := len([]rune(finding.Text)); n > maxWidth {
			maxWidth = n
		}
	}
	// Cap at 30 characters for readability
	if maxWidth > 30 {
		maxWidth = 30
	}
	return maxWidth
}

// getSmartFilename returns the base name unless another document shares it
func (f *Formatter) getSmartFilename(fullPath string, docs []formatters.Document) string {
	if fullPath == "" {
		return "<text>"
	}
	basename := filepath.Base(fullPath)
	for _, doc := range docs {
		if doc.Path != fullPath && filepath.Base(doc.Path) == basename {
			return filepath.Join(filepath.Base(filepath.Dir(fullPath)), basename)
		}
	}
	return basename
}

func (f *Formatter) paint(builder *strings.Builder, options formatters.FormatterOptions, colorName, format string, args ...interface{}) {
	if options.NoColor {
		fmt.Fprintf(builder, format, args...)
		return
	}
	f.colors[colorName].Fprintf(builder, format, args...)
}

func categoryColor(category string) string {
	switch category {
	case tags.Patient, tags.PatientNumber:
		return "red"
	case tags.Person:
		return "magenta"
	case tags.Location:
		return "green"
	case tags.Institution:
		return "cyan"
	case tags.Date, tags.PhoneNumber:
		return "yellow"
	case tags.Age, tags.URL:
		return "blue"
	default:
		return "white"
	}
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
