// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package fuzzy provides the approximate string matching used for names and
// for clustering tag values.
package fuzzy

import (
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

// MaxEdits is the largest edit distance still considered a match.
const MaxEdits = 1

// MinFuzzyLength is the rune length a token must exceed before anything but
// an exact match is accepted.
const MinFuzzyLength = 3

// Distance returns the Damerau-Levenshtein distance between a and b:
// insertions, deletions, substitutions and adjacent transpositions each cost
// one edit, wherever they occur in the string.
func Distance(a, b string) int {
	return matchr.DamerauLevenshtein(a, b)
}

// Within reports whether a and b differ by at most MaxEdits edits.
func Within(a, b string) bool {
	if a == b {
		return true
	}
	if d := utf8.RuneCountInString(a) - utf8.RuneCountInString(b); d > MaxEdits || d < -MaxEdits {
		return false
	}
	return Distance(a, b) <= MaxEdits
}

// Long reports whether token is long enough for fuzzy comparison.
func Long(token string) bool {
	return utf8.RuneCountInString(token) > MinFuzzyLength
}

// MatchFold reports whether token equals target ignoring case, or, for long
// tokens, is within one edit of it ignoring case.
func MatchFold(token, target string) bool {
	if strings.EqualFold(token, target) {
		return true
	}
	return Long(token) && Within(strings.ToLower(token), strings.ToLower(target))
}

// Match is MatchFold with case-sensitive comparison.
func Match(token, target string) bool {
	if token == target {
		return true
	}
	return Long(token) && Within(token, target)
}
