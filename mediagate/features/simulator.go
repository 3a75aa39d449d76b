package features

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/mediagate/server/mediagate/limits"
)

// default delay between progress steps
const DefaultStep = 100 * time.Millisecond

// stand-in processor: reports progress in 10% steps and relabels the input
type Simulator struct {
	step time.Duration
}

// creates a simulator; step <= 0 uses DefaultStep
func NewSimulator(step time.Duration) *Simulator {
	if step <= 0 {
		step = DefaultStep
	}

	return &Simulator{step: step}
}

func (s *Simulator) Process(ctx context.Context, job Job, progress ProgressFunc) (Output, error) {
	timer := time.NewTimer(s.step)
	defer timer.Stop()

	for pct := 0; pct <= 100; pct += 10 {
		progress(pct)

		if pct == 100 {
			break
		}

		select {
		case <-ctx.Done():
			return Output{}, ctx.Err()
		case <-timer.C:
			timer.Reset(s.step)
		}
	}

	return Output{FileName: OutputName(job), Size: job.Size}, nil
}

// name of the produced file
func OutputName(job Job) string {
	base := filepath.Base(job.FileName)

	switch job.Feature {
	case limits.FeatureAudioConvert, limits.FeatureVideoConvert:
		return strings.TrimSuffix(base, filepath.Ext(base)) + "." + job.TargetFormat
	default:
		return "processed_" + base
	}
}
