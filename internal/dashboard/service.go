package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/HeisenPear/saas-localBizz/internal/money"
)

var hundred = decimal.NewFromInt(100)

// Service assembles dashboard stats, caching the result per owner so a
// landing-page reload does not fan out six queries every time.
type Service struct {
	repo  Repository
	cache *redis.Client
	ttl   time.Duration
	log   *slog.Logger
	now   func() time.Time
}

// NewService constructs a Service. cache may be nil, which disables
// caching; a nil log falls back to the process default.
func NewService(repo Repository, cache *redis.Client, ttl time.Duration, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, cache: cache, ttl: ttl, log: log, now: time.Now}
}

func cacheKey(ownerID uuid.UUID) string {
	return "dashboard:stats:" + ownerID.String()
}

// Stats returns the owner's summary, serving from cache when fresh.
func (s *Service) Stats(ctx context.Context, ownerID uuid.UUID) (*Stats, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey(ownerID)).Bytes()
		if err == nil {
			var cached Stats
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.log.Warn("dashboard cache read failed", slog.Any("error", err))
		}
	}

	stats, err := s.compute(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, cacheKey(ownerID), raw, s.ttl).Err(); err != nil {
				s.log.Warn("dashboard cache write failed", slog.Any("error", err))
			}
		}
	}
	return stats, nil
}

// Invalidate drops the owner's cached stats. Called after writes that
// should be visible immediately.
func (s *Service) Invalidate(ctx context.Context, ownerID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(ownerID)).Err(); err != nil {
		s.log.Warn("dashboard cache invalidate failed", slog.Any("error", err))
	}
}

func (s *Service) compute(ctx context.Context, ownerID uuid.UUID) (*Stats, error) {
	var stats Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := s.repo.Revenue(ctx, ownerID)
		stats.Revenue = v
		return err
	})
	g.Go(func() error {
		v, err := s.repo.Outstanding(ctx, ownerID)
		stats.Outstanding = v
		return err
	})
	g.Go(func() error {
		v, err := s.repo.InvoiceCounts(ctx, ownerID)
		stats.InvoiceCounts = v
		return err
	})
	g.Go(func() error {
		v, err := s.repo.QuoteCounts(ctx, ownerID)
		stats.QuoteCounts = v
		return err
	})
	g.Go(func() error {
		v, err := s.repo.ClientCount(ctx, ownerID)
		stats.ClientCount = v
		return err
	})
	g.Go(func() error {
		v, err := s.repo.UpcomingBookings(ctx, ownerID, s.now())
		stats.UpcomingBookings = v
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	stats.RevenueDisplay = money.FormatEUR(stats.Revenue)
	stats.OutstandingDisplay = money.FormatEUR(stats.Outstanding)
	stats.QuoteAcceptancePct = acceptancePct(stats.QuoteCounts)
	if stats.InvoiceCounts == nil {
		stats.InvoiceCounts = map[string]int{}
	}
	if stats.QuoteCounts == nil {
		stats.QuoteCounts = map[string]int{}
	}
	return &stats, nil
}

// acceptancePct is accepted over decided (accepted + declined + expired),
// as a percentage rounded to one decimal. Undecided quotes don't count.
func acceptancePct(counts map[string]int) decimal.Decimal {
	accepted := counts["accepted"]
	decided := accepted + counts["declined"] + counts["expired"]
	if decided == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(accepted)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(decided))).
		Round(1)
}
