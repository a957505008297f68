package worker

import (
	"context"
	"sort"
	"sync"
	"time"

	"bookstore/internal/model"

	"github.com/rs/zerolog"
)

// Expirer fails pending payments of a method created before a cutoff.
type Expirer interface {
	ExpireStale(ctx context.Context, method model.PaymentMethod, cutoff time.Time, limit int) (int, error)
}

// SweeperConfig holds configuration for the pending payment sweeper.
type SweeperConfig struct {
	// Interval between two sweeps.
	Interval time.Duration

	// TTLs is how long a payment of each method may stay pending.
	// Methods without a positive TTL never expire.
	TTLs map[model.PaymentMethod]time.Duration

	// BatchSize caps how many payments one method expires per sweep.
	BatchSize int
}

// DefaultSweeperConfig returns the default sweeper configuration.
func DefaultSweeperConfig() *SweeperConfig {
	return &SweeperConfig{
		Interval: time.Minute,
		TTLs: map[model.PaymentMethod]time.Duration{
			model.MethodEthereum:     30 * time.Minute,
			model.MethodBankTransfer: 72 * time.Hour,
		},
		BatchSize: 100,
	}
}

// Sweeper periodically fails payments that stayed pending past their TTL.
type Sweeper struct {
	expirer Expirer
	config  *SweeperConfig
	logger  zerolog.Logger
	now     func() time.Time
}

// NewSweeper creates a new pending payment sweeper.
func NewSweeper(expirer Expirer, config *SweeperConfig, logger zerolog.Logger) *Sweeper {
	if config == nil {
		config = DefaultSweeperConfig()
	}
	if config.BatchSize < 1 {
		config.BatchSize = DefaultSweeperConfig().BatchSize
	}

	return &Sweeper{
		expirer: expirer,
		config:  config,
		logger:  logger.With().Str("component", "payment-sweeper").Logger(),
		now:     time.Now,
	}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info().
		Dur("interval", s.config.Interval).
		Int("methods", len(s.config.TTLs)).
		Msg("payment sweeper started")

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("payment sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Start runs the sweeper in its own goroutine. The returned channel is closed
// once ctx is cancelled and any sweep in flight has returned.
func (s *Sweeper) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return done
}

// Sweep runs one pass over every expiring method concurrently and returns
// how many payments were failed.
func (s *Sweeper) Sweep(ctx context.Context) int {
	type sweepResult struct {
		method  model.PaymentMethod
		expired int
		err     error
	}

	now := s.now()
	resultChan := make(chan sweepResult, len(s.config.TTLs))
	var wg sync.WaitGroup

	for method, ttl := range s.config.TTLs {
		if ttl <= 0 {
			continue
		}
		wg.Add(1)
		go func(method model.PaymentMethod, cutoff time.Time) {
			defer wg.Done()

			expired, err := s.expirer.ExpireStale(ctx, method, cutoff, s.config.BatchSize)
			resultChan <- sweepResult{method: method, expired: expired, err: err}
		}(method, now.Add(-ttl))
	}

	wg.Wait()
	close(resultChan)

	results := make([]sweepResult, 0, len(s.config.TTLs))
	for result := range resultChan {
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].method < results[j].method })

	total := 0
	for _, result := range results {
		total += result.expired
		if result.err != nil {
			s.logger.Error().
				Err(result.err).
				Str("method", string(result.method)).
				Msg("failed to expire stale payments")
			continue
		}
		if result.expired > 0 {
			s.logger.Info().
				Str("method", string(result.method)).
				Int("expired", result.expired).
				Msg("stale payments expired")
		}
	}

	return total
}
