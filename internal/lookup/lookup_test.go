// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package lookup

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	lists, err := Load()
	require.NoError(t, err)

	again, err := Load()
	require.NoError(t, err)
	assert.Same(t, lists, again)

	assert.True(t, lists.IsFirstName("Jan"))
	assert.True(t, lists.IsFirstName("Peter"))
	assert.False(t, lists.IsFirstName("peter"), "first names are case-sensitive")
	assert.True(t, lists.IsSurname("Jansen"))
	assert.True(t, lists.IsInterfix("de"))
	assert.True(t, lists.IsInterfixSurname("Visser"))
	assert.True(t, lists.IsPrefix("Dr"))
	assert.True(t, lists.IsWhitelisted("Door"))
	assert.True(t, lists.IsCoordinator("en"))
	assert.True(t, lists.Residences.Contains([]string{"Saint", " ", "Martin"}))
	assert.True(t, lists.Institutions.Contains([]string{"UZ", " ", "Leuven"}))

	for _, word := range []string{"door", "arts", "werd"} {
		assert.False(t, lists.IsFirstName(word), word)
		assert.False(t, lists.IsSurname(word), word)
		assert.False(t, lists.IsPrefix(word), word)
	}

	stats := lists.Stats()
	assert.Greater(t, stats["first_names"], 100)
	assert.Greater(t, stats["residences"], 10)
	assert.Len(t, EmbeddedDataStats(), 9)
}

func TestNew(t *testing.T) {
	lists := New(Source{
		FirstNames:       []string{" Anna ", ""},
		Surnames:         []string{"Peeters"},
		InterfixSurnames: []string{"Berg"},
		Whitelist:        []string{"Zie"},
		Institutions:     []string{"AZ Sint-Jan"},
	})

	assert.True(t, lists.IsFirstName("Anna"))
	assert.True(t, lists.IsSurname("PEETERS"))
	assert.False(t, lists.IsInterfixSurname("berg"))
	assert.True(t, lists.IsWhitelisted("zie"))
	assert.False(t, lists.IsPrefix("dr"))
	assert.True(t, lists.Institutions.Contains([]string{"az", " ", "sint", "-", "jan"}))
	assert.Equal(t, 1, lists.Stats()["first_names"])
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FirstNamesFile), []byte("# local names\nZiggy\n\n"), 0o644))

	f, err := os.Create(filepath.Join(dir, ResidencesFile+".gz"))
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte("Knokke-Heist\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	lists, err := LoadDir(dir)
	require.NoError(t, err)

	assert.True(t, lists.IsFirstName("Ziggy"))
	assert.False(t, lists.IsFirstName("Jan"), "override replaces the embedded list")
	assert.Equal(t, 1, lists.Residences.Len())
	assert.True(t, lists.IsSurname("jansen"), "missing files fall back to embedded data")
}
