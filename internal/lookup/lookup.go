// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package lookup holds the read-only dictionaries consulted by the taggers:
// names, name particles, a whitelist of common words, and the institution
// and residence phrase lists.
package lookup

import (
	"strings"

	"phi-scrub/internal/tokenizer"
	"phi-scrub/internal/trie"
)

// Lists is an immutable set of dictionaries. A single instance can be
// shared by any number of goroutines.
type Lists struct {
	firstNames       map[string]bool // case-sensitive
	surnames         map[string]bool // lowercase
	prefixes         map[string]bool // lowercase
	interfixes       map[string]bool // lowercase
	interfixSurnames map[string]bool // case-sensitive
	whitelist        map[string]bool // lowercase
	coordinators     map[string]bool // lowercase

	Institutions *trie.Trie
	Residences   *trie.Trie
}

// Source is the raw word and phrase lists a Lists is built from.
type Source struct {
	FirstNames       []string
	Surnames         []string
	Prefixes         []string
	Interfixes       []string
	InterfixSurnames []string
	Whitelist        []string
	Coordinators     []string
	Institutions     []string
	Residences       []string
}

// New builds dictionaries from in-memory lists.
func New(src Source) *Lists {
	return &Lists{
		firstNames:       toSet(src.FirstNames, false),
		surnames:         toSet(src.Surnames, true),
		prefixes:         toSet(src.Prefixes, true),
		interfixes:       toSet(src.Interfixes, true),
		interfixSurnames: toSet(src.InterfixSurnames, false),
		whitelist:        toSet(src.Whitelist, true),
		coordinators:     toSet(src.Coordinators, true),
		Institutions:     phraseTrie(src.Institutions),
		Residences:       phraseTrie(src.Residences),
	}
}

func toSet(words []string, fold bool) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if fold {
			w = strings.ToLower(w)
		}
		set[w] = true
	}
	return set
}

func phraseTrie(phrases []string) *trie.Trie {
	t := trie.New()
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			t.Add(tokenizer.Texts(tokenizer.SplitPlain(p)))
		}
	}
	return t
}

// IsFirstName reports whether token is a known first name, matched exactly.
func (l *Lists) IsFirstName(token string) bool { return l.firstNames[token] }

// IsSurname reports whether token is a known surname, ignoring case.
func (l *Lists) IsSurname(token string) bool { return l.surnames[strings.ToLower(token)] }

// IsPrefix reports whether token is a title such as "dr", ignoring case.
func (l *Lists) IsPrefix(token string) bool { return l.prefixes[strings.ToLower(token)] }

// IsInterfix reports whether token is a name particle such as "van".
func (l *Lists) IsInterfix(token string) bool { return l.interfixes[strings.ToLower(token)] }

// IsInterfixSurname reports whether token is a surname that follows a
// particle, matched exactly.
func (l *Lists) IsInterfixSurname(token string) bool { return l.interfixSurnames[token] }

// IsWhitelisted reports whether token is a common word that must never be
// tagged as a name, ignoring case.
func (l *Lists) IsWhitelisted(token string) bool { return l.whitelist[strings.ToLower(token)] }

// IsCoordinator reports whether token joins two person references.
func (l *Lists) IsCoordinator(token string) bool { return l.coordinators[strings.ToLower(token)] }

// Stats returns entry counts per list.
func (l *Lists) Stats() map[string]int {
	return map[string]int{
		"first_names":       len(l.firstNames),
		"surnames":          len(l.surnames),
		"prefixes":          len(l.prefixes),
		"interfixes":        len(l.interfixes),
		"interfix_surnames": len(l.interfixSurnames),
		"whitelist":         len(l.whitelist),
		"coordinators":      len(l.coordinators),
		"institutions":      l.Institutions.Len(),
		"residences":        l.Residences.Len(),
	}
}
