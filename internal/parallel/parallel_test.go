// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phi-scrub/internal/core"
	"phi-scrub/internal/lookup"
	"phi-scrub/internal/names"
	"phi-scrub/internal/observability"
	"phi-scrub/internal/redactors"
	"phi-scrub/internal/tags"
)

type mapLoader map[string]string

func (m mapLoader) LoadText(path string) (string, error) {
	text, ok := m[path]
	if !ok {
		return "", fmt.Errorf("no such document")
	}
	return text, nil
}

func newEngine(t *testing.T) *core.Engine {
	t.Helper()
	lists, err := lookup.Load()
	require.NoError(t, err)
	return core.NewEngine(lists, core.EngineConfig{}, nil)
}

var patient = core.Options{Patient: names.Patient{FirstNames: "Jan", Surname: "Jansen"}}

const letter = "Jan Jansen werd gezien door arts Peter de Visser."

func TestProcessDocumentsInOrder(t *testing.T) {
	var docs []Document
	for i := 0; i < 20; i++ {
		docs = append(docs, Document{ID: fmt.Sprintf("doc-%02d", i), Text: fmt.Sprintf("Opgenomen op %02d/03/2021.", i%28+1)})
	}

	pp := NewParallelProcessor(newEngine(t), nil, JobConfig{Mode: ModeAnnotate}, 4, nil)
	var mu sync.Mutex
	var calls []int
	results, stats, err := pp.ProcessDocuments(context.Background(), docs, func(completed, total int, _ string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, completed)
		assert.Equal(t, 20, total)
	})
	require.NoError(t, err)
	require.Len(t, results, 20)

	for i, r := range results {
		require.NoError(t, r.Error)
		assert.Equal(t, docs[i].ID, r.DocumentID)
		assert.Equal(t, fmt.Sprintf("Opgenomen op <DATUM %02d/03/2021>.", i%28+1), r.Annotated)
		assert.Equal(t, 1, r.TagCount)
	}
	assert.Equal(t, 20, stats.ProcessedDocuments)
	assert.Equal(t, 0, stats.FailedDocuments)
	assert.Equal(t, 20, stats.TotalTags)
	assert.Equal(t, 4, stats.WorkerCount)
	assert.Len(t, calls, 20)
}

func TestProcessDocumentsModes(t *testing.T) {
	engine := newEngine(t)
	docs := []Document{{ID: "brief", Text: letter, Options: patient}}

	results, _, err := NewParallelProcessor(engine, nil, JobConfig{Mode: ModeStructured}, 2, nil).
		ProcessDocuments(context.Background(), docs, nil)
	require.NoError(t, err)
	require.Len(t, results[0].Annotations, 2)
	assert.Equal(t, tags.Patient, results[0].Annotations[0].Category)
	assert.Empty(t, results[0].Annotated)

	audit := redactors.NewAuditLogManager("test")
	results, _, err = NewParallelProcessor(engine, nil, JobConfig{Mode: ModeDeidentify, AuditLogs: audit}, 2, nil).
		ProcessDocuments(context.Background(), docs, nil)
	require.NoError(t, err)
	require.NotNil(t, results[0].Deidentified)
	assert.Equal(t, "<PATIENT> werd gezien door arts <PERSOON-1>.", results[0].Deidentified.Text)
	require.Len(t, results[0].Annotations, 2)
	assert.Equal(t, "Peter de Visser", results[0].Annotations[1].Text)
	assert.Equal(t, 1, audit.Count())
}

func TestProcessDocumentsLoader(t *testing.T) {
	loader := mapLoader{"a.txt": letter}
	docs := []Document{
		{Path: "a.txt", Options: patient},
		{Path: "missing.txt"},
	}

	results, stats, err := NewParallelProcessor(newEngine(t), loader, JobConfig{Mode: ModeAnnotate}, 0, nil).
		ProcessDocuments(context.Background(), docs, nil)
	require.NoError(t, err)

	assert.Equal(t, "a.txt", results[0].DocumentID)
	assert.Equal(t, letter, results[0].Text)
	assert.Contains(t, results[0].Annotated, "<PATIENT Jan Jansen>")

	require.Error(t, results[1].Error)
	assert.Contains(t, results[1].Error.Error(), "failed to load missing.txt")
	assert.Equal(t, 1, stats.ProcessedDocuments)
	assert.Equal(t, 1, stats.FailedDocuments)
}

func TestProcessDocumentsDebugTrace(t *testing.T) {
	docs := []Document{
		{ID: "brief", Text: letter, Options: patient},
		{ID: "missing", Path: "missing.txt"},
	}

	var buf bytes.Buffer
	observer := observability.NewDebugObserver(&buf).StandardObserver
	_, _, err := NewParallelProcessor(newEngine(t), mapLoader{}, JobConfig{Mode: ModeAnnotate, Debug: true}, 1, observer).
		ProcessDocuments(context.Background(), docs, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "worker_pool: worker 0 (brief)")
	assert.Contains(t, buf.String(), "worker_pool: worker 0 completed")
	assert.Contains(t, buf.String(), "2 tags")
	assert.Contains(t, buf.String(), "worker_pool: worker 0 failed")
	assert.NotContains(t, buf.String(), "Peter de Visser")

	buf.Reset()
	_, _, err = NewParallelProcessor(newEngine(t), mapLoader{}, JobConfig{Mode: ModeAnnotate}, 1, observer).
		ProcessDocuments(context.Background(), docs, nil)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "worker 0")
}

func TestProcessDocumentsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := make([]Document, 10)
	for i := range docs {
		docs[i] = Document{ID: fmt.Sprint(i), Text: letter}
	}
	results, stats, err := NewParallelProcessor(newEngine(t), nil, JobConfig{}, 2, nil).
		ProcessDocuments(ctx, docs, nil)
	assert.True(t, errors.Is(err, context.Canceled))
	require.Len(t, results, 10)
	for _, r := range results {
		assert.True(t, errors.Is(r.Error, context.Canceled))
	}
	assert.Equal(t, 10, stats.FailedDocuments)
	assert.Equal(t, 0, stats.ProcessedDocuments)
}

func TestProcessDocumentsEmpty(t *testing.T) {
	results, stats, err := NewParallelProcessor(newEngine(t), nil, JobConfig{}, 3, nil).
		ProcessDocuments(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, stats.TotalDocuments)
}

func TestDefaultWorkers(t *testing.T) {
	n := DefaultWorkers()
	assert.GreaterOrEqual(t, n, 1)
	assert.LessOrEqual(t, n, MaxDefaultWorkers)
	assert.Equal(t, n, NewParallelProcessor(nil, nil, JobConfig{}, 0, nil).Workers())
}
