// Package retention prunes log records older than a configured age.
package retention

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/BeAPI/log-http-requests/internal/logstore"
)

// DefaultExpirationDays is the retention window when none is configured.
const DefaultExpirationDays = 1

// DefaultInterval schedules at least one sweep per day.
const DefaultInterval = 24 * time.Hour

// Sweeper deletes records whose capture time falls before the retention
// cutoff. Cleanup is idempotent and safe against an empty table.
type Sweeper struct {
	store          *logstore.Store
	logger         *log.Logger
	expirationDays int
	now            func() time.Time

	started atomic.Bool
}

// New creates a sweeper. expirationDays <= 0 selects the default window.
func New(store *logstore.Store, expirationDays int, logger *log.Logger) *Sweeper {
	if expirationDays <= 0 {
		expirationDays = DefaultExpirationDays
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Sweeper{
		store:          store,
		logger:         logger,
		expirationDays: expirationDays,
		now:            time.Now,
	}
}

// Cleanup deletes every record older than now minus the retention window.
func (s *Sweeper) Cleanup(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cutoff := s.now().AddDate(0, 0, -s.expirationDays)
	deleted, err := s.store.DeleteBefore(cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up expired records: %w", err)
	}
	if deleted > 0 {
		s.logger.Printf("httplog: removed %d expired records", deleted)
	}
	return nil
}

// Start launches the recurring sweep. Registration happens once: repeated
// calls after the first are no-ops, so lazy startup wiring cannot
// double-register. The loop stops when ctx is canceled.
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Cleanup(ctx); err != nil && ctx.Err() == nil {
					s.logger.Printf("httplog: cleanup failed: %v", err)
				}
			}
		}
	}()
}
