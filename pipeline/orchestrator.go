// Package pipeline wires the Load, Parse, Structure, Chunk, and Enrich
// stages into the orchestrator: the worker pool that consumes queue jobs,
// drives a file through every stage in order, and persists the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/docpipeline/indexer/chunk"
	"github.com/docpipeline/indexer/enrich"
	"github.com/docpipeline/indexer/parse"
	"github.com/docpipeline/indexer/resilience"
	"github.com/docpipeline/indexer/structure"
)

// Queue is the job source the orchestrator's worker pool drains. Ack is
// invoked only once a job's processing has finished: after persistence
// commits, or after the job failed terminally or exhausted its retries. A
// job cut short by shutdown is left unacked for redelivery.
type Queue interface {
	Next(ctx context.Context) (job Job, ack func(), err error)
}

// VectorIndexPublisher signals a downstream vectorizer after persistence
// commits.
type VectorIndexPublisher interface {
	Publish(ctx context.Context, event VectorIndexEvent) error
}

// Store persists a file's chunks and lineage, and stores per-stage
// checkpoints. The orchestrator does not call SaveCheckpoint or
// LoadCheckpoint: a redelivered job runs every stage again from Load.
type Store interface {
	DeleteFile(ctx context.Context, fileID string) error
	SaveFile(ctx context.Context, fileID string, parents []enrich.EnrichedParentChunk, children []chunk.ChildChunk, lineage []chunk.Lineage) error
	SaveCheckpoint(ctx context.Context, fileID, stage string, data []byte) error
	LoadCheckpoint(ctx context.Context, fileID, stage string) (data []byte, ok bool, err error)
}

// Orchestrator drives a fixed worker pool pulling jobs from Queue, running
// each one through every stage end to end.
type Orchestrator struct {
	cfg        Config
	queue      Queue
	store      Store
	objects    ObjectStore
	vectorPub  VectorIndexPublisher
	parsers    *parse.Registry
	questionGenerator *enrich.HypotheticalQuestionGenerator
}

// NewOrchestrator wires the concrete adapters into an Orchestrator.
// questionGenerator may be nil, in which case the LLM enricher never runs
// regardless of configuration.
func NewOrchestrator(cfg Config, queue Queue, store Store, objects ObjectStore, vectorPub VectorIndexPublisher, questionGenerator *enrich.HypotheticalQuestionGenerator) *Orchestrator {
	return &Orchestrator{
		cfg:               cfg,
		queue:             queue,
		store:             store,
		objects:           objects,
		vectorPub:         vectorPub,
		parsers:           parse.NewRegistry(),
		questionGenerator: questionGenerator,
	}
}

// Run starts cfg.Workers goroutines, each pulling and processing one job
// end to end at a time, until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) {
	workers := o.cfg.Workers
	if workers <= 0 {
		workers = 4
	}

	done := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func(id int) {
			defer func() { done <- struct{}{} }()
			o.workerLoop(ctx, id)
		}(i)
	}
	for i := 0; i < workers; i++ {
		<-done
	}
}

func (o *Orchestrator) workerLoop(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, ack, err := o.queue.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			slog.Error("orchestrator: fetching job failed", "worker", id, "error", err)
			continue
		}

		o.processJob(ctx, job)
		if ctx.Err() != nil {
			// Shutdown interrupted the job: leave it unacked for redelivery.
			return
		}
		ack()
	}
}

// processJob runs one job to completion, retrying transient failures with
// exponential backoff (a StageTimeout is retried once, then treated as
// terminal). A terminal failure is logged with the file's id and its
// StageError details; nothing about the failure is persisted.
func (o *Orchestrator) processJob(ctx context.Context, job Job) {
	logger := slog.With("fileId", job.FileID, "type", job.Type)

	if err := job.Validate(); err != nil {
		logger.Error("orchestrator: invalid job", "error", err)
		return
	}

	if job.Type == JobDelete {
		if err := o.runDelete(ctx, job); err != nil {
			logger.Error("orchestrator: delete failed", "error", err)
		}
		return
	}

	timeouts := 0
	shouldRetry := func(err error) bool {
		var stageErr *StageError
		if errors.As(err, &stageErr) && stageErr.Kind == KindStageTimeout {
			timeouts++
			return timeouts <= 1
		}
		return shouldRetryStageError(err)
	}

	err := resilience.Retry(ctx, resilience.DefaultRetryOpts, shouldRetry, func(ctx context.Context) error {
		return o.runIndex(ctx, job)
	})
	if err != nil {
		var stageErr *StageError
		if errors.As(err, &stageErr) {
			logger.Error("orchestrator: job failed", "stage", stageErr.Stage, "kind", stageErr.Kind.String(), "error", stageErr.Err)
		} else {
			logger.Error("orchestrator: job failed", "error", err)
		}
	}
}

func shouldRetryStageError(err error) bool {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Kind.Retryable()
	}
	return true
}

func (o *Orchestrator) runDelete(ctx context.Context, job Job) error {
	return o.store.DeleteFile(ctx, job.FileID)
}

// runIndex drives one file.index job through Load, Parse, Structure,
// Chunk, and Enrich, then persists the result and signals the vector
// indexer. Idempotency: prior rows for fileId are deleted in the same
// transaction that inserts the new ones (see Store.SaveFile).
func (o *Orchestrator) runIndex(ctx context.Context, job Job) error {
	loadCtx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeoutLoad)
	loaded, err := Load(loadCtx, o.objects, job)
	cancel()
	if err != nil {
		return err
	}

	parseCtx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeoutParse)
	parseResult, err := o.runParse(parseCtx, loaded.MimeType, loaded.Data)
	cancel()
	if err != nil {
		return err
	}

	structCtx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeoutStructure)
	analysis, err := runWithTimeout(structCtx, "structure", func() *structure.Analysis {
		return structure.Analyze(parseResult)
	})
	cancel()
	if err != nil {
		return err
	}

	chunkCtx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeoutChunk)
	chunkResult, err := runWithTimeout(chunkCtx, "chunk", func() chunk.Result {
		chunker := chunk.New(chunk.Config{
			ParentTargetTokens: o.cfg.ChunkParentTargetTokens,
			ParentMaxTokens:    o.cfg.ChunkParentMaxTokens,
			ChildTargetTokens:  o.cfg.ChunkChildTargetTokens,
			ChildOverlapRatio:  o.cfg.ChunkChildOverlapRatio,
		})
		return chunker.Chunk(job.FileID, job.DocumentID, parseResult.FullText, analysis.Sections, analysis.Boundaries)
	})
	cancel()
	if err != nil {
		return err
	}

	enrichCtx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeoutEnrich)
	enricher := enrich.New(enrich.Config{
		EnableLLMEnricher:           o.cfg.EnrichLLMEnabled,
		EnableHypotheticalQuestions: o.cfg.EnrichHQEnabled,
		TopKKeywords:                o.cfg.KeywordTopK,
		MaxEntitiesPerChunk:          o.cfg.MaxEntitiesPerChunk,
	}, o.questionGenerator)
	enriched := enricher.Enrich(enrichCtx, chunkResult.Parents)
	cancel()

	if err := o.store.SaveFile(ctx, job.FileID, enriched, chunkResult.Children, chunkResult.Lineage); err != nil {
		return PersistenceFailed("persist", err)
	}

	if o.vectorPub != nil {
		event := VectorIndexEvent{FileID: job.FileID}
		for _, p := range enriched {
			event.ParentIDs = append(event.ParentIDs, p.ID)
		}
		for _, c := range chunkResult.Children {
			event.ChildIDs = append(event.ChildIDs, c.ID)
		}
		if err := o.vectorPub.Publish(ctx, event); err != nil {
			slog.Warn("orchestrator: vector index signal failed", "fileId", job.FileID, "error", err)
		}
	}

	return nil
}

func (o *Orchestrator) runParse(ctx context.Context, mimeType string, data []byte) (*parse.Result, error) {
	extractor, err := o.parsers.Get(mimeType)
	if err != nil {
		return nil, UnsupportedFormat("parse", err)
	}

	result, err := extractor.Parse(ctx, data)
	if err != nil {
		return nil, ParseFailed("parse", err)
	}
	if isWhitespaceOnly(result.FullText) {
		return nil, EmptyDocument("parse", fmt.Errorf("parsed text is whitespace-only"))
	}
	return result, nil
}

func isWhitespaceOnly(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// runWithTimeout runs f on a goroutine and returns StageTimeout if ctx
// expires first. Structure and Chunk are pure CPU work with no internal
// suspension points, so a timeout here only fires on pathological input.
func runWithTimeout[T any](ctx context.Context, stage string, f func() T) (T, error) {
	resultCh := make(chan T, 1)
	go func() { resultCh <- f() }()

	select {
	case r := <-resultCh:
		return r, nil
	case <-ctx.Done():
		var zero T
		return zero, StageTimeout(stage, ctx.Err())
	}
}
