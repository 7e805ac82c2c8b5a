// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phi-scrub/internal/observability"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestPlainTextPreprocessor(t *testing.T) {
	text := "  Jan Jansen werd gezien.\nOntslag op 3 mei.\n"
	path := writeFile(t, "brief.txt", []byte(text))

	ptp := NewPlainTextPreprocessor()
	require.True(t, ptp.CanProcess(path))

	content, err := ptp.Process(path)
	require.NoError(t, err)
	assert.True(t, content.Success)
	assert.Equal(t, text, content.Text, "text must be passed through unchanged")
	assert.Equal(t, "brief.txt", content.Filename)
	assert.Equal(t, 8, content.WordCount)
	assert.Equal(t, 3, content.LineCount)
}

func TestPlainTextPreprocessorCanProcess(t *testing.T) {
	ptp := NewPlainTextPreprocessor()

	assert.True(t, ptp.CanProcess("notes.TXT"))
	assert.True(t, ptp.CanProcess("export.csv"))
	assert.False(t, ptp.CanProcess("scan.pdf"))
	assert.False(t, ptp.CanProcess("photo.jpg"))

	assert.True(t, ptp.CanProcess(writeFile(t, "NOTES", []byte("Patiënt gezien op 1 mei."))))
	assert.False(t, ptp.CanProcess(writeFile(t, "blob", []byte{0x7f, 'E', 'L', 'F', 0, 0})))
	assert.False(t, ptp.CanProcess(filepath.Join(t.TempDir(), "missing")))
}

func TestPlainTextPreprocessorSizeLimit(t *testing.T) {
	path := writeFile(t, "big.txt", bytes.Repeat([]byte("a"), 64))

	ptp := NewPlainTextPreprocessor()
	ptp.SetMaxSize(32)
	content, err := ptp.Process(path)
	require.Error(t, err)
	assert.False(t, content.Success)
	assert.Contains(t, err.Error(), "file too large")
}

func TestPlainTextPreprocessorInvalidUTF8(t *testing.T) {
	path := writeFile(t, "latin1.txt", []byte("Li\xe8ge"))

	var buf bytes.Buffer
	ptp := NewPlainTextPreprocessor()
	ptp.SetObserver(observability.NewStandardObserver(observability.ObservabilityMetrics, &buf))

	content, err := ptp.Process(path)
	require.NoError(t, err)
	assert.Equal(t, "Lige", content.Text)
	assert.Contains(t, buf.String(), "WARNING: plaintext_preprocessor")
}

func TestPDFPreprocessor(t *testing.T) {
	pp := NewPDFPreprocessor()
	assert.True(t, pp.CanProcess("verslag.PDF"))
	assert.False(t, pp.CanProcess("verslag.txt"))

	content, err := pp.Process(writeFile(t, "broken.pdf", []byte("not a pdf")))
	require.Error(t, err)
	assert.False(t, content.Success)
	assert.Contains(t, err.Error(), "error opening PDF")
}

func TestRowText(t *testing.T) {
	row := []pdf.Text{
		{S: "Jansen", X: 40, W: 30, FontSize: 10},
		{S: "Jan", X: 10, W: 15, FontSize: 10},
		{S: ",", X: 70.5, W: 2, FontSize: 10},
	}
	assert.Equal(t, "Jan Jansen,", rowText(row))
}

func TestInfoText(t *testing.T) {
	assert.Equal(t, "", infoText(nil))
	assert.Equal(t, "", infoText(&model.XRefTable{Producer: "LibreOffice"}))

	xref := &model.XRefTable{
		Title:   "Ontslagbrief Jan Jansen",
		Author:  " dr. P. de Visser ",
		Creator: "Writer",
	}
	assert.Equal(t, "Title: Ontslagbrief Jan Jansen\nAuthor: dr. P. de Visser", infoText(xref))
}

func TestAverageY(t *testing.T) {
	assert.Equal(t, 0.0, averageY(nil))
	assert.Equal(t, 15.0, averageY([]pdf.Text{{Y: 10}, {Y: 20}}))
}

func TestPreprocessorManager(t *testing.T) {
	pm := NewDefaultManager(nil)

	require.NotNil(t, pm.GetPreprocessor("a.pdf"))
	assert.Equal(t, "PDF Text Extractor", pm.GetPreprocessor("a.pdf").GetName())
	assert.Equal(t, "Plain Text Preprocessor", pm.GetPreprocessor("a.txt").GetName())
	assert.Nil(t, pm.GetPreprocessor("a.docx"))
	assert.Contains(t, pm.SupportedExtensions(), ".pdf")

	text, err := pm.LoadText(writeFile(t, "a.txt", []byte("Gezien in Gent.")))
	require.NoError(t, err)
	assert.Equal(t, "Gezien in Gent.", text)

	_, err = pm.LoadText("a.docx")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not supported"))
}
