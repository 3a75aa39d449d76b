// Package features runs gated media actions: check the entitlement, do the
// work, record the use and refresh the count.
package features

import (
	"context"
	"fmt"
	"slices"

	"codeberg.org/mediagate/server/internal/logger"
	"codeberg.org/mediagate/server/internal/metrics"
	"codeberg.org/mediagate/server/mediagate/limits"
)

// runs jobs through a gate
type Runner struct {
	gate      Gate
	processor Processor
}

// creates a runner; a nil processor uses the simulator
func NewRunner(gate Gate, processor Processor) *Runner {
	if processor == nil {
		processor = NewSimulator(0)
	}

	return &Runner{gate: gate, processor: processor}
}

// checks, runs and records job. A ledger failure after the work completed
// keeps the output and marks the outcome unmetered.
func (r *Runner) Run(ctx context.Context, job Job, progress ProgressFunc) (*Outcome, error) {
	if err := Validate(job, r.gate.Tier()); err != nil {
		metrics.ProcessingJobs.WithLabelValues(string(job.Feature), "rejected").Inc()
		return nil, err
	}

	allowed, err := r.gate.CheckFeatureAccess(ctx, job.Feature)
	if err != nil {
		metrics.ProcessingJobs.WithLabelValues(string(job.Feature), "error").Inc()
		return nil, fmt.Errorf("failed to check access: %w", err)
	}

	if !allowed {
		metrics.ProcessingJobs.WithLabelValues(string(job.Feature), "denied").Inc()
		return nil, ErrNotEntitled
	}

	if progress == nil {
		progress = func(int) {}
	}

	output, err := r.processor.Process(ctx, job, progress)
	if err != nil {
		metrics.ProcessingJobs.WithLabelValues(string(job.Feature), "error").Inc()
		return nil, fmt.Errorf("processing failed: %w", err)
	}

	outcome := &Outcome{Output: output}

	if err := r.gate.LogFeatureUsage(ctx, job.Feature, Label(job.Feature)); err != nil {
		logger.FromContext(ctx).Error("usage not recorded for completed job",
			"feature", job.Feature,
			"file", job.FileName,
			"reconcile", true,
			"error", err,
		)
		metrics.UnmeteredUses.WithLabelValues(string(job.Feature)).Inc()
		outcome.Unmetered = true
	}

	outcome.UsageCount = r.gate.GetUsageCount(ctx, job.Feature)
	metrics.ProcessingJobs.WithLabelValues(string(job.Feature), "ok").Inc()

	return outcome, nil
}

// checks the job shape and the tier's file size ceiling
func Validate(job Job, tier limits.Tier) error {
	if job.FileName == "" {
		return fmt.Errorf("%w: file name is required", ErrInvalidJob)
	}

	if job.Size > limits.FileSizeLimitBytes(tier) {
		return fmt.Errorf("%w (%d MB)", ErrFileTooLarge, limits.FileSizeLimitMB(tier))
	}

	if formats := TargetFormats(job.Feature); formats != nil && !slices.Contains(formats, job.TargetFormat) {
		return fmt.Errorf("%w %q", ErrUnsupportedFormat, job.TargetFormat)
	}

	return nil
}

// target formats offered for feature, nil when it takes none
func TargetFormats(feature limits.FeatureKey) []string {
	switch feature {
	case limits.FeatureAudioConvert:
		return AudioFormats
	case limits.FeatureVideoConvert:
		return VideoFormats
	default:
		return nil
	}
}

// ledger label for a feature
func Label(feature limits.FeatureKey) string {
	switch feature {
	case limits.FeatureImageBackgroundRemove:
		return "background removal"
	case limits.FeatureImageIDPhoto:
		return "id photo"
	case limits.FeatureImageStamp:
		return "stamp detection"
	case limits.FeatureAudioConvert:
		return "audio conversion"
	case limits.FeatureVideoConvert:
		return "video conversion"
	default:
		return string(feature)
	}
}
