package features

import (
	"context"
	"errors"

	"codeberg.org/mediagate/server/mediagate/limits"
)

var (
	// the user's membership does not cover another use of the feature
	ErrNotEntitled = errors.New("usage limit reached, upgrade your membership to continue")

	// the upload exceeds the tier's file size ceiling
	ErrFileTooLarge = errors.New("file exceeds the size limit of your membership")

	// the requested target format is not offered for the feature
	ErrUnsupportedFormat = errors.New("unsupported target format")

	// the job is missing required fields
	ErrInvalidJob = errors.New("invalid job")
)

var (
	AudioFormats = []string{"mp3", "wav", "flac", "aac", "m4a", "ogg"}
	VideoFormats = []string{"mp4", "webm", "avi", "mkv", "mov"}
)

// one gated action request
type Job struct {
	Feature      limits.FeatureKey `json:"feature"`
	FileName     string            `json:"file_name"`
	Size         int64             `json:"size"`
	TargetFormat string            `json:"target_format,omitempty"`
}

// result file of a job
type Output struct {
	FileName string `json:"file_name"`
	Size     int64  `json:"size"`
}

// completed job with the refreshed usage count
type Outcome struct {
	Output     Output `json:"output"`
	UsageCount int    `json:"usage_count"`
	// the work completed but its usage entry could not be written
	Unmetered bool `json:"unmetered,omitempty"`
}

// receives progress in percent
type ProgressFunc func(percent int)

// entitlement operations a gated action needs
type Gate interface {
	Tier() limits.Tier
	CheckFeatureAccess(ctx context.Context, feature limits.FeatureKey) (bool, error)
	LogFeatureUsage(ctx context.Context, feature limits.FeatureKey, label string) error
	GetUsageCount(ctx context.Context, feature limits.FeatureKey) int
}

// performs the work of a job
type Processor interface {
	Process(ctx context.Context, job Job, progress ProgressFunc) (Output, error)
}
