package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"opshub/internal/logging"
)

// FetchFunc produces the fresh entries for one domain. Keys are full cache
// keys; values are cached as JSON documents.
type FetchFunc func(ctx context.Context) (map[string]any, error)

// Refresher keeps cache domains warm with cron-scheduled fetch loops. A
// failing fetch is logged and retried on the next tick; a job never stops
// firing because of an error.
type Refresher struct {
	store  *Store
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// NewRefresher creates a refresher bound to the given store.
func NewRefresher(store *Store) *Refresher {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(log.Writer(), "REFRESH: ", log.LstdFlags))),
	)
	ctx, cancel := context.WithCancel(context.Background())

	return &Refresher{
		store:  store,
		cron:   c,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add schedules a refresh job for one domain. The fetch runs every interval
// and its result, when non-empty, is pipelined into the store with the
// domain TTL.
func (r *Refresher) Add(domain string, interval, ttl time.Duration, fetch FetchFunc) error {
	spec := fmt.Sprintf("@every %s", interval)
	_, err := r.cron.AddFunc(spec, func() {
		r.runOnce(domain, ttl, fetch)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s refresh: %w", domain, err)
	}

	logging.Info("Scheduled background %s refresh every %s", domain, interval)
	return nil
}

func (r *Refresher) runOnce(domain string, ttl time.Duration, fetch FetchFunc) {
	ctx, cancel := context.WithTimeout(r.ctx, 2*time.Minute)
	defer cancel()

	logging.Info("Background: refreshing %s cache...", domain)
	entries, err := fetch(ctx)
	if err != nil {
		logging.Error("Background %s refresh failed (will retry): %v", domain, err)
		return
	}
	if len(entries) == 0 {
		logging.Warn("Background: no fresh %s data returned from fetch function", domain)
		return
	}

	if r.store.SetBatch(ctx, entries, ttl) {
		logging.Info("Background: %s cache refreshed with %d items", domain, len(entries))
	}
}

// Start begins firing scheduled jobs.
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop cancels in-flight fetches and stops the scheduler, waiting briefly
// for running jobs to finish.
func (r *Refresher) Stop() {
	r.cancel()

	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(500 * time.Millisecond):
		logging.Warn("Refresher stop timeout - abandoning running jobs")
	}
}
