package app

import (
	"context"
	"time"

	"github.com/five82/prefsync/internal/api"
	"github.com/five82/prefsync/internal/preferences"
	"github.com/five82/prefsync/internal/state"
)

const (
	defaultRetryInterval = 2 * time.Second
	maxBackoff           = 30 * time.Second
)

// syncer is the slice of the controller the retry loop drives.
type syncer interface {
	SyncStatus() *state.Store[preferences.SyncStatus]
	HasToken() bool
	Sync(ctx context.Context, onSuccess func(*api.User), onFailure func(error))
}

// watchFailures retries a failed sync with exponential backoff until one
// succeeds, so a flaky network does not leave the UI stale for a whole poll
// interval. It returns when ctx is cancelled.
func watchFailures(ctx context.Context, s syncer, base time.Duration) {
	updates, cancel := s.SyncStatus().Subscribe()
	defer cancel()

	for {
		failures := s.SyncStatus().Snapshot().ConsecutiveFailures
		if failures == 0 {
			select {
			case <-ctx.Done():
				return
			case <-updates:
				continue
			}
		}

		timer := time.NewTimer(calculateBackoff(failures, base))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if s.HasToken() {
				s.Sync(ctx, nil, nil)
			}
		}
	}
}

// calculateBackoff doubles base once per failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
