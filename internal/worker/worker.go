package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/adforge/backend/internal/bundles"
	"github.com/adforge/backend/internal/pipeline"
	"github.com/adforge/backend/pkg/queue"
)

// GenerationProcessor processes creative-generation jobs: run the pipeline for
// the requested source URL and persist the resulting bundle.
type GenerationProcessor struct {
	repo     *bundles.Repository
	pipeline *pipeline.Pipeline
	queue    *queue.Queue
	logger   *zap.Logger
}

// NewGenerationProcessor creates a generation job processor.
func NewGenerationProcessor(repo *bundles.Repository, pl *pipeline.Pipeline, q *queue.Queue, logger *zap.Logger) *GenerationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationProcessor{repo: repo, pipeline: pl, queue: q, logger: logger}
}

// Process executes one generation job. Hard pipeline failures mark the bundle
// failed and are not retried; transient errors bubble up for retry.
func (p *GenerationProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeGenerateCreatives {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.GeneratePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	bundle, err := p.pipeline.Run(ctx, payload.BundleID, payload.SourceURL)
	if err != nil {
		if isHardFailure(err) {
			p.logger.Error("generation failed",
				zap.String("bundle_id", payload.BundleID.String()), zap.Error(err))
			if mErr := p.repo.MarkFailed(ctx, payload.BundleID, err.Error()); mErr != nil {
				p.logger.Error("mark failed", zap.Error(mErr), zap.String("bundle_id", payload.BundleID.String()))
			}
			return nil
		}
		return fmt.Errorf("pipeline: %w", err)
	}

	bundle.UserID = payload.UserID
	if err := p.repo.SaveResult(ctx, bundle); err != nil {
		return fmt.Errorf("save bundle: %w", err)
	}

	p.logger.Info("generation completed",
		zap.String("bundle_id", payload.BundleID.String()),
		zap.Int("creatives", len(bundle.Creatives)))
	return nil
}

// isHardFailure reports whether the pipeline error is terminal for the run.
func isHardFailure(err error) bool {
	return errors.Is(err, pipeline.ErrExtractionFailed) ||
		errors.Is(err, pipeline.ErrNoEligibleTypes) ||
		errors.Is(err, pipeline.ErrAllRendersFailed)
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *GenerationProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("generation worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if job.Attempt+1 >= queue.MaxRetries {
				var payload queue.GeneratePayload
				if uErr := json.Unmarshal(job.Payload, &payload); uErr == nil {
					_ = p.repo.MarkFailed(ctx, payload.BundleID, "generation failed after retries: "+err.Error())
				}
			}
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
