package initializers

import (
	"context"
	"log/slog"
	"time"

	"github.com/mhassaaniqbal0/Shopsmart-Backend/internals/store"
)

// StartCleanup runs the janitor until ctx is cancelled. Confirmation already
// rejects expired codes on its own; the janitor only reclaims storage.
func StartCleanup(ctx context.Context, s store.Store, interval, unverifiedTTL time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cleanup(ctx, s, time.Now(), unverifiedTTL, log)
			}
		}
	}()
}

func cleanup(ctx context.Context, s store.Store, now time.Time, unverifiedTTL time.Duration, log *slog.Logger) {
	// 1. Purge expired challenges (login/signup codes and reset tokens)
	challenges, err := s.Challenges().DeleteExpired(ctx, now)
	if err != nil {
		log.ErrorContext(ctx, "janitor: purge challenges", "error", err)
	}

	// 2. Purge unverified users older than the threshold
	users, err := s.Users().DeleteUnverifiedBefore(ctx, now.Add(-unverifiedTTL))
	if err != nil {
		log.ErrorContext(ctx, "janitor: purge unverified users", "error", err)
	}

	if challenges > 0 || users > 0 {
		log.InfoContext(ctx, "janitor: cleaned", "challenges", challenges, "unverified_users", users)
	} else {
		log.DebugContext(ctx, "janitor: nothing to clean")
	}
}
