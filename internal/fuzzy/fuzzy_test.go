// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"Jansen", "Jansen", 0},
		{"Jansen", "Janssen", 1},
		{"Jansen", "Janzen", 1},
		{"Jansen", "Jasnen", 1}, // transposition
		{"aJnsen", "Jansen", 1}, // leading transposition
		{"12 mei", "21 mei", 1},
		{"Jansen", "Jansne", 1},
		{"Janssen", "Janzen", 2},
		{"", "abc", 3},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Distance(tt.a, tt.b))
		})
	}
}

func TestWithin(t *testing.T) {
	assert.True(t, Within("Jansen", "Janssen"))
	assert.True(t, Within("Jansen", "Jasnen"))
	assert.True(t, Within("21 mei", "12 mei"))
	assert.False(t, Within("Janssen", "Janzen"))
	assert.False(t, Within("Jan", "Jansen"))
}

func TestMatchFold(t *testing.T) {
	tests := []struct {
		name          string
		token, target string
		want          bool
	}{
		{"exact ignoring case", "JAN", "jan", true},
		{"short tokens need exact match", "Jon", "Jan", false},
		{"long token one edit", "Pieterr", "Pieter", true},
		{"long token two edits", "Pietje", "Pieter", false},
		{"transposition", "Peetrs", "Peters", true},
		{"leading transposition", "aJnsen", "Jansen", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchFold(tt.token, tt.target))
		})
	}
}

func TestMatchIsCaseSensitive(t *testing.T) {
	assert.True(t, Match("Mieke", "Mieke"))
	assert.True(t, Match("Mieka", "Mieke"))
	assert.False(t, Match("mie", "Mie"))
}
