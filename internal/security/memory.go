// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package security

// SecureBuffer owns the raw bytes of a document between reading and
// conversion to text, and zeroes them on Clear.
//
// Limitations: Go's garbage collector may move or copy memory at any time, and
// Text returns an immutable copy that cannot be zeroed. Clear() reduces the
// window of exposure of the raw bytes but cannot guarantee that no copies
// exist elsewhere in the heap.
type SecureBuffer struct {
	data []byte
}

// NewSecureBuffer takes ownership of data; the caller must not keep using it.
func NewSecureBuffer(data []byte) *SecureBuffer {
	return &SecureBuffer{data: data}
}

// Len returns the number of bytes held
func (sb *SecureBuffer) Len() int {
	return len(sb.data)
}

// Text returns the bytes as a string
func (sb *SecureBuffer) Text() string {
	return string(sb.data)
}

// Clear overwrites the bytes with zeros and releases them. Safe to call
// more than once.
func (sb *SecureBuffer) Clear() {
	if sb.data != nil {
		clear(sb.data)
		sb.data = nil
	}
}
