// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"fmt"
	"time"
)

// RedactionErrorType defines the type of redaction error
type RedactionErrorType int

const (
	// ErrorParse indicates annotated text that could not be parsed
	ErrorParse RedactionErrorType = iota

	// ErrorFileSystem indicates a file system operation failure
	ErrorFileSystem

	// ErrorValidation indicates an audit log that failed validation
	ErrorValidation
)

// String returns the string representation of the error type
func (ret RedactionErrorType) String() string {
	switch ret {
	case ErrorParse:
		return "parse"
	case ErrorFileSystem:
		return "file_system"
	case ErrorValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// RedactionError represents an error that occurred during de-identification
type RedactionError struct {
	Type      RedactionErrorType
	Message   string
	Component string
	Timestamp time.Time
	Cause     error
}

// Error implements the error interface
func (re *RedactionError) Error() string {
	if re.Cause == nil {
		return fmt.Sprintf("[%s] %s (component: %s)", re.Type, re.Message, re.Component)
	}
	return fmt.Sprintf("[%s] %s (component: %s): %v", re.Type, re.Message, re.Component, re.Cause)
}

// Unwrap returns the underlying error for error unwrapping
func (re *RedactionError) Unwrap() error {
	return re.Cause
}

// NewRedactionError creates a new RedactionError
func NewRedactionError(errorType RedactionErrorType, message, component string, cause error) *RedactionError {
	return &RedactionError{
		Type:      errorType,
		Message:   message,
		Component: component,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}
