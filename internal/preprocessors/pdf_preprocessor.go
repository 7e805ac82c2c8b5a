// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"phi-scrub/internal/observability"
)

// DefaultMaxPages limits how many pages of a PDF are extracted.
const DefaultMaxPages = 200

// PDFPreprocessor extracts the text of PDF letters and reports, followed by
// the values of any form fields and the document information dictionary.
type PDFPreprocessor struct {
	observer *observability.StandardObserver
	maxPages int
}

// NewPDFPreprocessor creates a new PDF preprocessor
func NewPDFPreprocessor() *PDFPreprocessor {
	return &PDFPreprocessor{maxPages: DefaultMaxPages}
}

// SetObserver sets the observability component
func (pp *PDFPreprocessor) SetObserver(observer *observability.StandardObserver) {
	pp.observer = observer
}

// GetName returns the name of this preprocessor
func (pp *PDFPreprocessor) GetName() string {
	return "PDF Text Extractor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (pp *PDFPreprocessor) GetSupportedExtensions() []string {
	return []string{".pdf"}
}

// CanProcess checks if this preprocessor can handle the given file
func (pp *PDFPreprocessor) CanProcess(filePath string) bool {
	return hasExtension(filePath, pp.GetSupportedExtensions())
}

// Process extracts text from every page, pages separated by a blank line
func (pp *PDFPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	finishTiming := pp.observer.StartTiming("pdf_preprocessor", "process_file", filePath)

	content := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Format:        "PDF",
		ProcessorType: "pdf",
	}

	f, r, err := pdf.Open(filePath)
	if err != nil {
		err = fmt.Errorf("error opening PDF: %w", err)
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		content.Error = err
		return content, err
	}
	defer f.Close()

	pages := r.NumPage()
	if pages > pp.maxPages {
		pp.observer.LogWarning("pdf_preprocessor", "%s has %d pages; only the first %d are processed", filePath, pages, pp.maxPages)
		pages = pp.maxPages
	}

	var buf bytes.Buffer
	failed := 0
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			failed++
			continue
		}
		text, err := pageText(p)
		if err != nil {
			failed++
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(strings.TrimRight(text, "\n"))
	}
	if failed > 0 {
		pp.observer.LogWarning("pdf_preprocessor", "%s: %d of %d pages could not be read", filePath, failed, pages)
	}

	if form := formData(r); form != "" {
		buf.WriteString("\n\n")
		buf.WriteString(form)
	}

	// author and title fields of clinical PDFs often name the patient
	if info := pp.documentInfo(filePath); info != "" {
		buf.WriteString("\n\n")
		buf.WriteString(info)
	}

	content.Text = buf.String()
	content.PageCount = pages
	content.WordCount = len(strings.Fields(content.Text))
	content.CharCount = utf8.RuneCountInString(content.Text)
	content.LineCount = countLines(content.Text)
	content.Success = true

	finishTiming(true, map[string]interface{}{
		"page_count":   pages,
		"failed_pages": failed,
		"word_count":   content.WordCount,
	})
	return content, nil
}

// pageText reads a page row by row, top to bottom, falling back to the
// plain text stream when rows are unavailable.
func pageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	sorted := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sorted = append(sorted, row)
		}
	}
	// PDF y grows upwards
	sort.SliceStable(sorted, func(i, j int) bool {
		return averageY(sorted[i].Content) > averageY(sorted[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sorted {
		if text := rowText(row.Content); strings.TrimSpace(text) != "" {
			buf.WriteString(text)
			buf.WriteString("\n")
		}
	}
	return buf.String(), nil
}

func averageY(texts []pdf.Text) float64 {
	if len(texts) == 0 {
		return 0
	}
	var total float64
	for _, t := range texts {
		total += t.Y
	}
	return total / float64(len(texts))
}

// rowText joins the text runs of one row left to right, inserting a space
// where the gap to the next run exceeds a fifth of the font size.
func rowText(texts []pdf.Text) string {
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var buf bytes.Buffer
	for i, t := range sorted {
		buf.WriteString(t.S)
		if i == len(sorted)-1 {
			break
		}
		fontSize := t.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		if gap := sorted[i+1].X - (t.X + t.W); gap > fontSize*0.2 {
			buf.WriteString(" ")
		}
	}
	return buf.String()
}

// formData returns "name: value" lines for filled AcroForm fields.
func formData(r *pdf.Reader) string {
	fields := r.Trailer().Key("Root").Key("AcroForm").Key("Fields")
	if fields.Kind() != pdf.Array {
		return ""
	}
	var lines []string
	for i := 0; i < fields.Len(); i++ {
		if name, value := fieldNameValue(fields.Index(i)); name != "" && value != "" {
			lines = append(lines, name+": "+value)
		}
	}
	return strings.Join(lines, "\n")
}

func fieldNameValue(field pdf.Value) (string, string) {
	if field.Kind() != pdf.Dict {
		return "", ""
	}
	var name string
	if t := field.Key("T"); t.Kind() == pdf.String {
		name = t.Text()
	}
	for _, key := range []string{"V", "DV"} {
		v := field.Key(key)
		switch v.Kind() {
		case pdf.String:
			return name, v.Text()
		case pdf.Name:
			return name, v.Name()
		}
	}
	return name, ""
}

// documentInfo returns "Field: value" lines from the document information
// dictionary. Files pdfcpu cannot read yield no lines and a warning.
func (pp *PDFPreprocessor) documentInfo(filePath string) string {
	ctx, err := api.ReadContextFile(filePath)
	if err != nil {
		pp.observer.LogWarning("pdf_preprocessor", "%s: document information not read: %v", filePath, err)
		return ""
	}
	return infoText(ctx.XRefTable)
}

func infoText(xref *model.XRefTable) string {
	if xref == nil {
		return ""
	}
	fields := []struct{ name, value string }{
		{"Title", xref.Title},
		{"Author", xref.Author},
		{"Subject", xref.Subject},
		{"Keywords", xref.Keywords},
	}
	var lines []string
	for _, f := range fields {
		if v := strings.TrimSpace(f.value); v != "" {
			lines = append(lines, f.name+": "+v)
		}
	}
	return strings.Join(lines, "\n")
}
