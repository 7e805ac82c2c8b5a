// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package trie implements a prefix tree over token sequences used for
// longest-match dictionary lookup of multi-word phrases.
package trie

import (
	"strings"
	"unicode"
)

type node struct {
	children map[string]*node
	terminal bool
}

// Trie maps token sequences to membership. It is built once with Add and is
// safe for concurrent lookups afterwards.
type Trie struct {
	root      *node
	normalize func(string) string
	size      int
}

// New creates an empty trie that compares tokens case-insensitively and
// treats every whitespace token as a single space.
func New() *Trie {
	return NewWithNormalizer(Normalize)
}

// NewWithNormalizer creates an empty trie using a custom token normalizer.
func NewWithNormalizer(normalize func(string) string) *Trie {
	return &Trie{root: &node{}, normalize: normalize}
}

// Normalize lowercases a token and collapses whitespace tokens to " ".
func Normalize(token string) string {
	if token != "" && strings.TrimFunc(token, unicode.IsSpace) == "" {
		return " "
	}
	return strings.ToLower(token)
}

// Add inserts a token sequence. Empty sequences are ignored.
func (t *Trie) Add(tokens []string) {
	if len(tokens) == 0 {
		return
	}
	cur := t.root
	for _, tok := range tokens {
		key := t.normalize(tok)
		if cur.children == nil {
			cur.children = make(map[string]*node)
		}
		next, ok := cur.children[key]
		if !ok {
			next = &node{}
			cur.children[key] = next
		}
		cur = next
	}
	if !cur.terminal {
		cur.terminal = true
		t.size++
	}
}

// Len returns the number of distinct entries.
func (t *Trie) Len() int { return t.size }

// Contains reports whether tokens is an entry.
func (t *Trie) Contains(tokens []string) bool {
	return len(tokens) > 0 && t.LongestPrefix(tokens) == len(tokens)
}

// FindAllPrefixes returns every prefix of tokens that is an entry, shortest
// first. The returned slices alias tokens.
func (t *Trie) FindAllPrefixes(tokens []string) [][]string {
	var matches [][]string
	t.walk(tokens, func(n int) {
		matches = append(matches, tokens[:n])
	})
	return matches
}

// LongestPrefix returns the length of the longest prefix of tokens that is
// an entry, or 0 when none is.
func (t *Trie) LongestPrefix(tokens []string) int {
	longest := 0
	t.walk(tokens, func(n int) { longest = n })
	return longest
}

func (t *Trie) walk(tokens []string, found func(n int)) {
	cur := t.root
	for i, tok := range tokens {
		next, ok := cur.children[t.normalize(tok)]
		if !ok {
			return
		}
		cur = next
		if cur.terminal {
			found(i + 1)
		}
	}
}
