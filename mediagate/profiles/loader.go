package profiles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/mediagate/server/internal/logger"
	"codeberg.org/mediagate/server/internal/metrics"
)

// default deadline for the profile fetch
const DefaultLoadTimeout = 5 * time.Second

// resolves a user id into a profile and active membership
type Loader struct {
	store   Store
	timeout time.Duration
}

// creates a loader; timeout <= 0 uses DefaultLoadTimeout
func NewLoader(store Store, timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}

	return &Loader{store: store, timeout: timeout}
}

// loads the profile and active membership for userID.
// Load never fails: escalated errors are logged and reported in Result.Err,
// and a failed profile fetch never prevents the membership fetch.
func (l *Loader) Load(ctx context.Context, userID string) Result {
	start := time.Now()
	defer func() {
		metrics.ProfileLoadDuration.Observe(time.Since(start).Seconds())
	}()

	log := logger.FromContext(ctx).With("user_id", userID)

	var result Result
	var escalated []error

	profile, err := l.fetchProfile(ctx, userID)

	switch {
	case err == nil:
		result.Profile = profile
		metrics.ProfileLoads.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrNotFound):
		// profile provisioning can lag session creation
		log.Warn("profile not found")
		metrics.ProfileLoads.WithLabelValues("not_found").Inc()
	case errors.Is(err, ErrLoadTimeout):
		// recovered locally: profile unknown for this attempt only
		log.Warn("profile load timed out", "timeout", l.timeout)
		metrics.ProfileLoads.WithLabelValues("timeout").Inc()
	default:
		log.Error("failed to load profile", "error", err)
		metrics.ProfileLoads.WithLabelValues("error").Inc()
		escalated = append(escalated, err)
	}

	membership, err := l.store.FindActiveMembership(ctx, userID)
	if err != nil {
		err = fmt.Errorf("failed to load membership: %w", err)
		log.Error("failed to load membership", "error", err)
		escalated = append(escalated, err)
	} else {
		result.Membership = membership
	}

	result.Err = errors.Join(escalated...)
	return result
}

func (l *Loader) fetchProfile(ctx context.Context, userID string) (*Profile, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	profile, err := l.store.FindProfile(fetchCtx, userID)
	if err == nil {
		return profile, nil
	}

	// only our own deadline counts as a timeout; a cancelled parent is a plain failure
	if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadTimeout, err)
	}

	return nil, err
}
