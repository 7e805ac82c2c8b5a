// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package security

import (
	"testing"
)

func TestSecureBuffer_Text(t *testing.T) {
	sb := NewSecureBuffer([]byte("Jan Jansen"))
	if sb.Text() != "Jan Jansen" {
		t.Errorf("expected 'Jan Jansen', got %q", sb.Text())
	}
	if sb.Len() != 10 {
		t.Errorf("expected length 10, got %d", sb.Len())
	}
}

func TestSecureBuffer_Clear_ZeroesData(t *testing.T) {
	data := []byte("sensitive-data")
	sb := NewSecureBuffer(data)
	text := sb.Text()
	sb.Clear()

	for i, b := range data {
		if b != 0 {
			t.Fatalf("byte %d not zeroed", i)
		}
	}
	if sb.Text() != "" {
		t.Errorf("expected empty text after Clear, got %q", sb.Text())
	}
	// copies handed out before Clear are unaffected
	if text != "sensitive-data" {
		t.Errorf("expected the earlier copy to survive, got %q", text)
	}
}

func TestSecureBuffer_Clear_Idempotent(t *testing.T) {
	sb := NewSecureBuffer([]byte("data"))
	sb.Clear()
	// Calling Clear again should not panic
	sb.Clear()
}

func TestSecureBuffer_Empty(t *testing.T) {
	sb := NewSecureBuffer(nil)
	if sb.Text() != "" || sb.Len() != 0 {
		t.Error("expected an empty buffer")
	}
	sb.Clear()
}
