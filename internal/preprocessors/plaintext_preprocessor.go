// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"phi-scrub/internal/observability"
	"phi-scrub/internal/security"
)

// DefaultMaxTextSize is the largest text file read, in bytes.
const DefaultMaxTextSize = 100 * 1024 * 1024

// PlainTextPreprocessor reads clinical notes stored as text files. The
// content is passed through unchanged so annotation offsets refer to the
// file as stored.
type PlainTextPreprocessor struct {
	observer *observability.StandardObserver
	maxSize  int64
}

// NewPlainTextPreprocessor creates a new plain text preprocessor
func NewPlainTextPreprocessor() *PlainTextPreprocessor {
	return &PlainTextPreprocessor{maxSize: DefaultMaxTextSize}
}

// SetMaxSize changes the size limit; values <= 0 restore the default.
func (ptp *PlainTextPreprocessor) SetMaxSize(n int64) {
	if n <= 0 {
		n = DefaultMaxTextSize
	}
	ptp.maxSize = n
}

// SetObserver sets the observability component
func (ptp *PlainTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	ptp.observer = observer
}

// GetName returns the name of this preprocessor
func (ptp *PlainTextPreprocessor) GetName() string {
	return "Plain Text Preprocessor"
}

// GetSupportedExtensions returns the file extensions this preprocessor supports
func (ptp *PlainTextPreprocessor) GetSupportedExtensions() []string {
	return []string{".txt", ".text", ".md", ".markdown", ".rst", ".log", ".csv", ".tsv", ".jsonl", ".ndjson"}
}

// CanProcess checks if this preprocessor can handle the given file. Files
// without an extension are sniffed for binary content.
func (ptp *PlainTextPreprocessor) CanProcess(filePath string) bool {
	if hasExtension(filePath, ptp.GetSupportedExtensions()) {
		return true
	}
	if filepath.Ext(filePath) == "" {
		return ptp.isTextFile(filePath)
	}
	return false
}

// Process reads the file content
func (ptp *PlainTextPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	finishTiming := ptp.observer.StartTiming("plaintext_preprocessor", "process_file", filePath)
	var finishStep func(bool, string)
	if ptp.observer != nil && ptp.observer.DebugObserver != nil {
		finishStep = ptp.observer.DebugObserver.StartStep("plaintext_preprocessor", "process_file", filePath)
	}

	content, err := ptp.readTextFile(filePath)
	if err != nil {
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		if finishStep != nil {
			finishStep(false, fmt.Sprintf("Failed to read text file: %v", err))
		}
		return &ProcessedContent{
			OriginalPath:  filePath,
			Filename:      filepath.Base(filePath),
			ProcessorType: "plaintext",
			Success:       false,
			Error:         err,
		}, err
	}

	result := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          content,
		Format:        "Plain Text",
		PageCount:     1,
		WordCount:     len(strings.Fields(content)),
		CharCount:     utf8.RuneCountInString(content),
		LineCount:     countLines(content),
		ProcessorType: "plaintext",
		Success:       true,
	}

	finishTiming(true, map[string]interface{}{
		"word_count": result.WordCount,
		"line_count": result.LineCount,
	})
	if finishStep != nil {
		finishStep(true, fmt.Sprintf("Processed plain text file: %d words, %d lines", result.WordCount, result.LineCount))
	}
	return result, nil
}

// readTextFile reads a text file, refusing files over the size limit and
// dropping invalid UTF-8 sequences.
func (ptp *PlainTextPreprocessor) readTextFile(filePath string) (string, error) {
	file, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to get file info: %w", err)
	}
	if info.Size() > ptp.maxSize {
		return "", fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), ptp.maxSize)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	raw := security.NewSecureBuffer(data)
	defer raw.Clear()

	content := raw.Text()
	if !utf8.ValidString(content) {
		ptp.observer.LogWarning("plaintext_preprocessor", "%s is not valid UTF-8; invalid bytes dropped", filePath)
		content = strings.ToValidUTF8(content, "")
	}
	return content, nil
}

// isTextFile reports whether the first 512 bytes of the file look like text
func (ptp *PlainTextPreprocessor) isTextFile(filePath string) bool {
	file, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return false
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && n == 0 {
		return false
	}
	buffer = buffer[:n]

	for _, b := range buffer {
		if b == 0 {
			return false
		}
	}
	// the read may have cut a multi-byte rune in half
	for i := 0; i < utf8.UTFMax-1 && len(buffer) > 0 && !utf8.Valid(buffer); i++ {
		buffer = buffer[:len(buffer)-1]
	}
	return utf8.Valid(buffer)
}
