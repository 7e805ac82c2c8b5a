// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package parallel runs the annotation engine over many documents at once.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"phi-scrub/internal/core"
	"phi-scrub/internal/observability"
)

// MaxDefaultWorkers caps the worker count chosen from the CPU count.
const MaxDefaultWorkers = 8

// ParallelProcessor manages parallel document processing
type ParallelProcessor struct {
	workers  int
	engine   *core.Engine
	loader   TextLoader
	config   JobConfig
	observer *observability.StandardObserver
}

// ProcessingStats tracks parallel processing statistics
type ProcessingStats struct {
	TotalDocuments     int           `json:"total_documents"`
	ProcessedDocuments int           `json:"processed_documents"`
	FailedDocuments    int           `json:"failed_documents"`
	TotalTags          int           `json:"total_tags"`
	TotalDuration      time.Duration `json:"total_duration_ms"`
	WorkerCount        int           `json:"worker_count"`
	AvgDocumentTime    time.Duration `json:"avg_document_time_ms"`
}

// ProgressCallback is called when a document is completed
type ProgressCallback func(completed, total int, documentID string)

// DefaultWorkers returns the number of CPUs, capped at MaxDefaultWorkers.
func DefaultWorkers() int {
	workers := runtime.NumCPU()
	if workers > MaxDefaultWorkers {
		workers = MaxDefaultWorkers
	}
	return workers
}

// NewParallelProcessor creates a new parallel processor. workers <= 0
// selects DefaultWorkers.
func NewParallelProcessor(engine *core.Engine, loader TextLoader, config JobConfig, workers int, observer *observability.StandardObserver) *ParallelProcessor {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	return &ParallelProcessor{
		workers:  workers,
		engine:   engine,
		loader:   loader,
		config:   config,
		observer: observer,
	}
}

// Workers returns the configured worker count
func (pp *ParallelProcessor) Workers() int {
	return pp.workers
}

// ProcessDocuments processes docs in parallel and returns one result per
// document, in input order. Cancelling ctx stops submission; documents that
// were not processed carry the context error, which is also returned.
func (pp *ParallelProcessor) ProcessDocuments(ctx context.Context, docs []Document, progress ProgressCallback) ([]*Result, *ProcessingStats, error) {
	start := time.Now()
	finishTiming := pp.observer.StartTiming("parallel_processor", "process_documents", "batch")

	workers := pp.workers
	if workers > len(docs) {
		workers = max(len(docs), 1)
	}
	pool := NewWorkerPool(workers, pp.engine, pp.loader, pp.config, pp.observer)
	pool.Start(ctx)

	// Submit jobs in a separate goroutine to prevent deadlock
	go func() {
		defer pool.Close()
		for i, doc := range docs {
			if doc.ID == "" {
				doc.ID = doc.Path
			}
			if !pool.Submit(ctx, &Job{Index: i, JobID: fmt.Sprintf("job_%d", i), Document: doc}) {
				return
			}
		}
	}()

	results := make([]*Result, len(docs))
	stats := &ProcessingStats{TotalDocuments: len(docs), WorkerCount: workers}
	var busy time.Duration
	completed := 0
	for result := range pool.Results() {
		results[result.index] = result
		completed++
		busy += result.Duration

		if result.Error != nil {
			stats.FailedDocuments++
			pp.observer.LogOperation(observability.StandardObservabilityData{
				Component:  "parallel_processor",
				Operation:  "document_processing",
				DocumentID: result.DocumentID,
				Success:    false,
				Error:      result.Error.Error(),
			})
		} else {
			stats.ProcessedDocuments++
			stats.TotalTags += result.TagCount
		}

		if progress != nil {
			progress(completed, len(docs), result.DocumentID)
		}
	}

	for i, r := range results {
		if r == nil {
			id := docs[i].ID
			if id == "" {
				id = docs[i].Path
			}
			results[i] = &Result{DocumentID: id, Path: docs[i].Path, Error: ctx.Err(), index: i}
			stats.FailedDocuments++
		}
	}

	stats.TotalDuration = time.Since(start)
	stats.AvgDocumentTime = busy / time.Duration(max(completed, 1))

	finishTiming(ctx.Err() == nil, map[string]interface{}{
		"total_documents":     stats.TotalDocuments,
		"processed_documents": stats.ProcessedDocuments,
		"total_tags":          stats.TotalTags,
		"worker_count":        workers,
	})

	return results, stats, ctx.Err()
}
