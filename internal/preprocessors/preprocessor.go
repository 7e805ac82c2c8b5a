// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"path/filepath"
	"strings"

	"phi-scrub/internal/observability"
)

// ProcessedContent represents content that has been processed by a preprocessor
type ProcessedContent struct {
	// Original file information
	OriginalPath string
	Filename     string

	// Extracted content
	Text string

	// Content metadata
	Format    string
	PageCount int
	WordCount int
	CharCount int
	LineCount int

	// Processing information
	ProcessorType string
	Success       bool
	Error         error
}

// Preprocessor interface defines methods for preprocessing files
type Preprocessor interface {
	// CanProcess checks if this preprocessor can handle the given file
	CanProcess(filePath string) bool

	// Process extracts content from the file
	Process(filePath string) (*ProcessedContent, error)

	// GetName returns the name of this preprocessor
	GetName() string

	// GetSupportedExtensions returns the file extensions this preprocessor supports
	GetSupportedExtensions() []string

	// SetObserver sets the observability component
	SetObserver(observer *observability.StandardObserver)
}

// PreprocessorManager manages all available preprocessors
type PreprocessorManager struct {
	preprocessors []Preprocessor
}

// NewPreprocessorManager creates a new preprocessor manager
func NewPreprocessorManager() *PreprocessorManager {
	return &PreprocessorManager{
		preprocessors: make([]Preprocessor, 0),
	}
}

// NewDefaultManager returns a manager with the PDF and plain text
// preprocessors registered and observed by observer.
func NewDefaultManager(observer *observability.StandardObserver) *PreprocessorManager {
	pm := NewPreprocessorManager()
	for _, p := range []Preprocessor{NewPDFPreprocessor(), NewPlainTextPreprocessor()} {
		p.SetObserver(observer)
		pm.RegisterPreprocessor(p)
	}
	return pm
}

// RegisterPreprocessor adds a preprocessor to the manager
func (pm *PreprocessorManager) RegisterPreprocessor(p Preprocessor) {
	pm.preprocessors = append(pm.preprocessors, p)
}

// GetPreprocessor returns the appropriate preprocessor for a file, or nil if none found
func (pm *PreprocessorManager) GetPreprocessor(filePath string) Preprocessor {
	for _, p := range pm.preprocessors {
		if p.CanProcess(filePath) {
			return p
		}
	}
	return nil
}

// ProcessFile extracts content with the first preprocessor that handles the
// file. Later preprocessors are tried when an earlier one fails.
func (pm *PreprocessorManager) ProcessFile(filePath string) (*ProcessedContent, error) {
	var lastError error
	tried := 0
	for _, p := range pm.preprocessors {
		if !p.CanProcess(filePath) {
			continue
		}
		tried++
		result, err := p.Process(filePath)
		if err == nil && result != nil && result.Success {
			return result, nil
		}
		lastError = err
	}

	if tried == 0 {
		lastError = fmt.Errorf("file type not supported for processing: %s", filePath)
	}
	return &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		ProcessorType: "failed",
		Success:       false,
		Error:         lastError,
	}, lastError
}

// LoadText returns the extracted text of a file.
func (pm *PreprocessorManager) LoadText(filePath string) (string, error) {
	content, err := pm.ProcessFile(filePath)
	if err != nil {
		return "", err
	}
	return content.Text, nil
}

// GetAvailablePreprocessors returns all registered preprocessors
func (pm *PreprocessorManager) GetAvailablePreprocessors() []Preprocessor {
	return pm.preprocessors
}

// SupportedExtensions returns the extensions of every registered preprocessor.
func (pm *PreprocessorManager) SupportedExtensions() []string {
	var exts []string
	for _, p := range pm.preprocessors {
		exts = append(exts, p.GetSupportedExtensions()...)
	}
	return exts
}

func hasExtension(filePath string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	for _, supported := range exts {
		if ext == supported {
			return true
		}
	}
	return false
}

func countLines(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}
