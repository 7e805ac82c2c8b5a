// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package trie

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindAllPrefixes(t *testing.T) {
	tr := New()
	tr.Add([]string{"Saint"})
	tr.Add([]string{"Saint", " ", "Martin"})
	tr.Add([]string{"UZ", " ", "Leuven"})

	tests := []struct {
		name   string
		tokens []string
		want   [][]string
	}{
		{"both entries match", []string{"Saint", " ", "Martin", " ", "kerk"}, [][]string{
			{"Saint"},
			{"Saint", " ", "Martin"},
		}},
		{"case and whitespace normalized", []string{"uz", "\n", "LEUVEN"}, [][]string{
			{"uz", "\n", "LEUVEN"},
		}},
		{"partial path is not a match", []string{"UZ", " ", "Gent"}, nil},
		{"no match", []string{"Gent"}, nil},
		{"empty input", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.FindAllPrefixes(tt.tokens))
		})
	}
}

func TestLongestPrefix(t *testing.T) {
	tr := New()
	tr.Add([]string{"Saint"})
	tr.Add([]string{"Saint", " ", "Martin"})

	assert.Equal(t, 3, tr.LongestPrefix([]string{"Saint", " ", "Martin", "."}))
	assert.Equal(t, 1, tr.LongestPrefix([]string{"Saint", " ", "Maarten"}))
	assert.Equal(t, 0, tr.LongestPrefix([]string{"Sint"}))
	assert.True(t, tr.Contains([]string{"saint"}))
	assert.False(t, tr.Contains([]string{"saint", " "}))
	assert.Equal(t, 2, tr.Len())
}

func TestDuplicateAdd(t *testing.T) {
	tr := New()
	tr.Add([]string{"Gent"})
	tr.Add([]string{"gent"})
	tr.Add(nil)
	assert.Equal(t, 1, tr.Len())
}

func TestCustomNormalizer(t *testing.T) {
	tr := NewWithNormalizer(strings.TrimSpace)
	tr.Add([]string{"Gent"})
	assert.True(t, tr.Contains([]string{"Gent"}))
	assert.False(t, tr.Contains([]string{"gent"}))
}
