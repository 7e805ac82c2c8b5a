// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"phi-scrub/internal/annotation"
	"phi-scrub/internal/core"
	"phi-scrub/internal/observability"
	"phi-scrub/internal/redactors"
	"phi-scrub/internal/tags"
)

// Output modes of a job.
const (
	ModeAnnotate   = "annotate"
	ModeStructured = "structured"
	ModeDeidentify = "deidentify"
)

// TextLoader extracts the text of a document stored at a path.
type TextLoader interface {
	LoadText(path string) (string, error)
}

// Document is one input of a batch. Text is used as is when Path is empty;
// otherwise the text is loaded from Path.
type Document struct {
	ID      string
	Path    string
	Text    string
	Options core.Options
}

// JobConfig holds configuration shared by every job of a batch
type JobConfig struct {
	Mode string

	// Debug traces every document as a step of the debug observer
	Debug bool

	// AuditLogs, when set, receives an audit log per de-identified document
	AuditLogs *redactors.AuditLogManager
}

// Job represents a document processing task
type Job struct {
	Index    int
	JobID    string
	Document Document
}

// Result represents processing results
type Result struct {
	JobID      string
	DocumentID string
	Path       string
	Text       string

	Annotated    string
	Annotations  []annotation.Annotation
	Deidentified *redactors.Result

	TagCount int
	Error    error
	Duration time.Duration

	index int
}

// WorkerPool runs jobs on a fixed number of goroutines
type WorkerPool struct {
	workers  int
	jobs     chan *Job
	results  chan *Result
	wg       sync.WaitGroup
	engine   *core.Engine
	loader   TextLoader
	config   JobConfig
	observer *observability.StandardObserver
}

// NewWorkerPool creates a worker pool over engine. loader may be nil when
// every document carries its text.
func NewWorkerPool(workers int, engine *core.Engine, loader TextLoader, config JobConfig, observer *observability.StandardObserver) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		workers:  workers,
		jobs:     make(chan *Job, workers*2),
		results:  make(chan *Result, workers*2),
		engine:   engine,
		loader:   loader,
		config:   config,
		observer: observer,
	}
}

// Start launches the workers. The results channel is closed once the job
// queue is closed and drained.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
	go func() {
		wp.wg.Wait()
		close(wp.results)
	}()
}

// Submit queues a job. It returns false when ctx is done first.
func (wp *WorkerPool) Submit(ctx context.Context, job *Job) bool {
	select {
	case wp.jobs <- job:
		return true
	case <-ctx.Done():
		return false
	}
}

// Close signals that no more jobs will be submitted
func (wp *WorkerPool) Close() {
	close(wp.jobs)
}

// Results returns the results channel
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	for job := range wp.jobs {
		wp.results <- wp.processJob(ctx, job, id)
	}
}

// processJob runs a single job. Jobs still queued when ctx is cancelled
// fail with the context error.
func (wp *WorkerPool) processJob(ctx context.Context, job *Job, workerID int) *Result {
	start := time.Now()
	doc := job.Document
	result := &Result{
		JobID:      job.JobID,
		DocumentID: doc.ID,
		Path:       doc.Path,
		index:      job.Index,
	}

	finishTiming := wp.observer.StartTiming("worker_pool", "process_job", doc.ID)
	finishStep := func(bool, string) {}
	if wp.config.Debug && wp.observer != nil && wp.observer.DebugObserver != nil {
		finishStep = wp.observer.DebugObserver.StartStep("worker_pool", fmt.Sprintf("worker %d", workerID), doc.ID)
	}

	if err := ctx.Err(); err != nil {
		result.Error = err
	} else {
		result.Error = wp.run(doc, result)
	}
	result.Duration = time.Since(start)

	details := fmt.Sprintf("%d tags", result.TagCount)
	if result.Error != nil {
		details = result.Error.Error()
	}
	finishStep(result.Error == nil, details)

	finishTiming(result.Error == nil, map[string]interface{}{
		"worker_id": workerID,
		"tag_count": result.TagCount,
		"had_error": result.Error != nil,
	})
	return result
}

func (wp *WorkerPool) run(doc Document, result *Result) error {
	text := doc.Text
	if doc.Path != "" {
		if wp.loader == nil {
			return fmt.Errorf("no loader for %s", doc.Path)
		}
		var err error
		if text, err = wp.loader.LoadText(doc.Path); err != nil {
			return fmt.Errorf("failed to load %s: %w", doc.Path, err)
		}
	}
	result.Text = text

	opts := doc.Options
	if opts.DocumentID == "" {
		opts.DocumentID = doc.ID
	}

	if wp.config.Mode == ModeStructured {
		annotations, err := wp.engine.AnnotateStructured(text, opts)
		if err != nil {
			return err
		}
		result.Annotations = annotations
		result.TagCount = len(annotations)
		return nil
	}

	spans, err := wp.engine.Annotate(text, opts)
	if err != nil {
		return err
	}
	result.Annotated = tags.Render(spans)
	result.TagCount = tags.Count(spans)
	if annotations, err := annotation.FromSpans(spans, text); err != nil {
		wp.observer.LogWarning("worker_pool", "%s: structured annotations skipped: %v", doc.ID, err)
	} else {
		result.Annotations = annotations
	}

	if wp.config.Mode == ModeDeidentify {
		deidentified, err := wp.engine.Deidentify(result.Annotated)
		if err != nil {
			return err
		}
		result.Deidentified = deidentified
		if wp.config.AuditLogs != nil {
			wp.config.AuditLogs.Record(doc.ID, text, deidentified)
		}
	}
	return nil
}
