package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Sync exports src once and writes the result to every destination. Every
// destination is attempted; the returned error joins the failures.
func Sync(ctx context.Context, src Source, format Format, destinations []Destination, logger *slog.Logger) error {
	data, err := Export(ctx, src, format)
	if err != nil {
		logger.Error("sync export failed", "err", err)
		return fmt.Errorf("sync export: %w", err)
	}
	failed := deliver(ctx, data, destinations, logger)
	logger.Info("sync completed", "destinations", len(destinations), "failed", len(failed), "bytes", len(data))
	return errors.Join(failed...)
}

func deliver(ctx context.Context, data []byte, destinations []Destination, logger *slog.Logger) []error {
	var errs []error
	for _, dest := range destinations {
		if err := dest.Write(ctx, data); err != nil {
			logger.Error("sync destination write failed", "destination", dest.String(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", dest, err))
		}
	}
	return errs
}

// Scheduler syncs a source to its destinations on a fixed interval. A
// destination is only rewritten when the graph's digest differs from the
// last one it accepted, so an idle graph produces no writes and a failed
// destination is retried on the next tick.
type Scheduler struct {
	source       Source
	format       Format
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	delivered map[Destination]string // digest last written per destination

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(source Source, format Format, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		source:       source,
		format:       format,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
		delivered:    make(map[Destination]string, len(destinations)),
	}
}

// Start syncs immediately, then on every tick until ctx is canceled or Stop
// is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.tick(ctx)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop cancels the scheduler and waits for a running sync to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) tick(ctx context.Context) {
	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		s.logger.Error("sync export failed", "err", err)
		return
	}
	digest, err := Digest(snap)
	if err != nil {
		s.logger.Error("sync digest failed", "err", err)
		return
	}

	var stale []Destination
	for _, dest := range s.destinations {
		if s.delivered[dest] != digest {
			stale = append(stale, dest)
		}
	}
	if len(stale) == 0 {
		s.logger.Debug("sync skipped, graph unchanged", "digest", digest)
		return
	}

	data, err := Encode(snap, s.format)
	if err != nil {
		s.logger.Error("sync export failed", "err", err)
		return
	}
	for _, dest := range stale {
		if err := dest.Write(ctx, data); err != nil {
			s.logger.Error("sync destination write failed", "destination", dest.String(), "err", err)
			continue
		}
		s.delivered[dest] = digest
	}
	s.logger.Info("sync completed", "destinations", len(stale), "digest", digest, "bytes", len(data))
}
