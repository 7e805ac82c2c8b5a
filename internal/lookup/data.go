// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package lookup

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Embedded compressed dictionary files
//
//go:embed data/*.txt.gz
var embedded embed.FS

// File names shared by the embedded data and on-disk overrides.
const (
	FirstNamesFile       = "first_names.txt"
	SurnamesFile         = "surnames.txt"
	PrefixesFile         = "prefixes.txt"
	InterfixesFile       = "interfixes.txt"
	InterfixSurnamesFile = "interfix_surnames.txt"
	WhitelistFile        = "whitelist.txt"
	CoordinatorsFile     = "coordinators.txt"
	InstitutionsFile     = "institutions.txt"
	ResidencesFile       = "residences.txt"
)

var (
	// Global instance for lazy loading
	defaultLists *Lists
	loadOnce     sync.Once
	loadError    error
)

// Load decompresses the embedded dictionaries on first use.
// Uses sync.Once so concurrent callers share one instance.
func Load() (*Lists, error) {
	loadOnce.Do(func() {
		defaultLists, loadError = load(readEmbedded)
	})
	return defaultLists, loadError
}

// LoadDir builds dictionaries from a directory. Each list is read from
// <name> or <name>.gz; lists missing from dir fall back to the embedded copy.
func LoadDir(dir string) (*Lists, error) {
	return load(func(name string) ([]string, error) {
		for _, candidate := range []string{name, name + ".gz"} {
			path := filepath.Join(dir, candidate)
			f, err := os.Open(path)
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()
			var r io.Reader = f
			if strings.HasSuffix(candidate, ".gz") {
				gz, err := gzip.NewReader(f)
				if err != nil {
					return nil, fmt.Errorf("failed to create gzip reader for %s: %w", path, err)
				}
				defer gz.Close()
				r = gz
			}
			return readLines(r)
		}
		return readEmbedded(name)
	})
}

func load(read func(name string) ([]string, error)) (*Lists, error) {
	var src Source
	targets := []struct {
		name string
		dst  *[]string
	}{
		{FirstNamesFile, &src.FirstNames},
		{SurnamesFile, &src.Surnames},
		{PrefixesFile, &src.Prefixes},
		{InterfixesFile, &src.Interfixes},
		{InterfixSurnamesFile, &src.InterfixSurnames},
		{WhitelistFile, &src.Whitelist},
		{CoordinatorsFile, &src.Coordinators},
		{InstitutionsFile, &src.Institutions},
		{ResidencesFile, &src.Residences},
	}
	for _, t := range targets {
		lines, err := read(t.name)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", t.name, err)
		}
		*t.dst = lines
	}
	return New(src), nil
}

func readEmbedded(name string) ([]string, error) {
	data, err := embedded.ReadFile("data/" + name + ".gz")
	if err != nil {
		return nil, err
	}
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer reader.Close()
	return readLines(reader)
}

// readLines returns the non-empty lines of r; lines starting with '#' are
// comments.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading list data: %w", err)
	}
	return lines, nil
}

// EmbeddedDataStats returns the compressed size of each embedded list.
func EmbeddedDataStats() map[string]int {
	stats := make(map[string]int)
	entries, _ := embedded.ReadDir("data")
	for _, e := range entries {
		if info, err := e.Info(); err == nil {
			stats[strings.TrimSuffix(e.Name(), ".gz")] = int(info.Size())
		}
	}
	return stats
}
