// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"fmt"
	"sort"
	"strings"

	"phi-scrub/internal/annotation"
	"phi-scrub/internal/redactors"
)

// FormatterOptions defines configuration options for formatters
type FormatterOptions struct {
	Verbose   bool // Whether to display detailed information
	NoColor   bool // Whether to disable colored output
	ShowMatch bool // Whether to display the actual matched text
}

// Document is the outcome of processing one input. Which of Annotated,
// Annotations and Deidentified are set depends on the processing mode.
type Document struct {
	Path         string
	Text         string // original text, used for line numbers
	Annotated    string
	Annotations  []annotation.Annotation
	Deidentified *redactors.Result
	Error        error
}

// Formatter interface defines methods that all output formatters must implement
type Formatter interface {
	// Format renders the processed documents in the formatter's output format
	Format(docs []Document, options FormatterOptions) (string, error)

	// Name returns the name of the formatter (e.g., "json", "text", "csv")
	Name() string

	// Description returns a brief description of what this formatter outputs
	Description() string

	// FileExtension returns the recommended file extension for this format (e.g., ".json", ".txt", ".csv")
	FileExtension() string
}

// Registry holds all registered formatters
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry creates a new formatter registry
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
	}
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) {
	r.formatters[formatter.Name()] = formatter
}

// Get retrieves a formatter by name
func (r *Registry) Get(name string) (Formatter, bool) {
	formatter, exists := r.formatters[name]
	return formatter, exists
}

// List returns all registered formatter names, sorted
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Export formats docs with the named formatter
func (r *Registry) Export(format string, docs []Document, options FormatterOptions) (string, error) {
	formatter, exists := r.Get(format)
	if !exists {
		return "", fmt.Errorf("unsupported format '%s'. Available formats: %s", format, strings.Join(r.List(), ", "))
	}
	return formatter.Format(docs, options)
}

// DefaultRegistry is the global formatter registry
var DefaultRegistry = NewRegistry()

// Register is a convenience function to register a formatter with the default registry
func Register(formatter Formatter) {
	DefaultRegistry.Register(formatter)
}

// Get is a convenience function to get a formatter from the default registry
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// List is a convenience function to list all formatters in the default registry
func List() []string {
	return DefaultRegistry.List()
}

// Export formats docs with a formatter from the default registry
func Export(format string, docs []Document, options FormatterOptions) (string, error) {
	return DefaultRegistry.Export(format, docs, options)
}

// Describe returns "name: description" lines for every registered formatter
func Describe() []string {
	var lines []string
	for _, name := range List() {
		f, _ := Get(name)
		lines = append(lines, fmt.Sprintf("%s: %s", name, f.Description()))
	}
	return lines
}
