// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package tags

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRender(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Span
	}{
		{"plain only", "geen namen", []Span{Plain("geen namen")}},
		{"single tag", "<PATIENT Jan> kwam", []Span{
			Tag(Patient, Plain("Jan")),
			Plain(" kwam"),
		}},
		{"placeholder without content", "<PATIENT> en <LOCATIE-1>", []Span{
			Tag(Patient),
			Plain(" en "),
			Tag("LOCATIE-1"),
		}},
		{"nested", "<INITIAL J <SURNAMEUNKNOWN Peeters>>", []Span{
			Tag(Initial, Plain("J "), Tag(SurnameUnknown, Plain("Peeters"))),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, Render(got))
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("> Peter from Altrecht")
	assert.True(t, errors.Is(err, ErrUnbalanced))

	_, err = Parse("<3 hearts>")
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestSpanText(t *testing.T) {
	spans, err := Parse("Dr. <INTERFIXSURNAME <FORNAMEUNKNOWN Peter> <INTERFIXNAME de> Visser>.")
	require.NoError(t, err)
	assert.Equal(t, "Dr. Peter de Visser.", PlainText(spans))
	assert.Equal(t, 1, Count(spans))
	assert.True(t, spans[1].Nested())
	assert.True(t, spans[1].Contains(func(c string) bool { return c == InterfixName }))
	assert.False(t, spans[1].Contains(func(c string) bool { return strings.HasSuffix(c, "PAT") }))
}

func TestMergeAdjacent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"touching", "<PATIENT Jorge><PATIENT Ramos>", "<PATIENT JorgeRamos>"},
		{"space between", "<PATIENT Jorge> <PATIENT Ramos>", "<PATIENT Jorge Ramos>"},
		{"different categories", "<PATIENT Jorge><LOCATIE Ramos>", "<PATIENT Jorge><LOCATIE Ramos>"},
		{"chain of three", "<DATUM 1> <DATUM 2>\n<DATUM 3> x", "<DATUM 1 2\n3> x"},
		{"text between", "<PATIENT Jorge> en <PATIENT Ramos>", "<PATIENT Jorge> en <PATIENT Ramos>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Render(MergeAdjacent(spans)))
		})
	}
}

func TestHasNested(t *testing.T) {
	nested, err := HasNested("<PERSOON Peter <LOCATIE Altrecht>>")
	require.NoError(t, err)
	assert.True(t, nested)

	nested, err = HasNested("<PERSOON Peter> from <LOCATIE Altrecht>")
	require.NoError(t, err)
	assert.False(t, nested)

	_, err = HasNested("> Peter from Altrecht")
	assert.Error(t, err)
}

func TestFindNested(t *testing.T) {
	spans, err := Parse("a <INSTELLING UZ <LOCATIE Gent>> b")
	require.NoError(t, err)

	nerr := FindNested(spans)
	require.NotNil(t, nerr)
	assert.Equal(t, Institution, nerr.Outer)
	assert.Equal(t, Location, nerr.Inner)
	assert.Contains(t, nerr.Error(), "nested")
}

func TestConsolidate(t *testing.T) {
	inputs := []string{
		"<PERSOON Peter <LOCATIE Altrecht>> en <PERSOON Jan>",
		"<PATIENT Jan> <PATIENT <INITIAL J.> Jansen> kwam",
		"<DATUM 12 mei> <DATUM 2020>",
		"niets",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			once, err := Consolidate(input)
			require.NoError(t, err)

			nested, err := HasNested(once)
			require.NoError(t, err)
			assert.False(t, nested)

			twice, err := Consolidate(once)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		})
	}

	got, err := Consolidate("<PATIENT Jan> <PATIENT <INITIAL J.> Jansen> kwam")
	require.NoError(t, err)
	assert.Equal(t, "<PATIENT Jan J. Jansen> kwam", got)
}

func TestCompact(t *testing.T) {
	got := Compact([]Span{Plain("a"), Plain(""), Plain("b"), Tag(Date, Plain("1")), Plain("c")})
	assert.Equal(t, []Span{Plain("ab"), Tag(Date, Plain("1")), Plain("c")}, got)
}
