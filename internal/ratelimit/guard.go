package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/pagewatch-dev/pagewatch/internal/config"
	"github.com/pagewatch-dev/pagewatch/internal/metrics"
	"github.com/pagewatch-dev/pagewatch/internal/models"
)

// UsageStore is the persistence contract the guard depends on. Increment
// must be a single atomic upsert so concurrent sends for one user never
// double- or under-count; the reset operations are guarded by their
// boundary timestamp so replays are harmless.
type UsageStore interface {
	Ensure(ctx context.Context, userID uint, now time.Time) (*models.SmsUsage, error)
	ResetHourWindow(ctx context.Context, userID uint, boundary time.Time) error
	ResetDayWindow(ctx context.Context, userID uint, boundary time.Time) error
	ResetMonthWindow(ctx context.Context, userID uint, boundary time.Time) error
	Increment(ctx context.Context, userID uint, unitCost float64) error
}

// Decision is the admission verdict for one prospective SMS send.
type Decision struct {
	Allowed              bool    `json:"allowed"`
	Reason               string  `json:"reason,omitempty"`
	Constraint           string  `json:"-"`
	RemainingHourly      int     `json:"remaining_hourly"`
	RemainingDaily       int     `json:"remaining_daily"`
	EstimatedMonthlyCost float64 `json:"estimated_monthly_cost"`
}

const (
	ConstraintHourly      = "hourly"
	ConstraintDaily       = "daily"
	ConstraintMonthlyCost = "monthly_cost"
	ConstraintInternal    = "internal_error"
)

type Guard struct {
	store UsageStore
	cfg   config.SMSConfig
	now   func() time.Time
}

func NewGuard(store UsageStore, cfg config.SMSConfig) *Guard {
	return &Guard{store: store, cfg: cfg, now: time.Now}
}

// NewGuardWithClock is used by tests to pin "now".
func NewGuardWithClock(store UsageStore, cfg config.SMSConfig, now func() time.Time) *Guard {
	return &Guard{store: store, cfg: cfg, now: now}
}

// Check decides whether one more SMS may be sent for userID. Constraints
// are evaluated cheapest-exhausted-first: hourly cap, daily cap, then
// projected monthly cost. Any internal failure denies the send.
func (g *Guard) Check(ctx context.Context, userID uint) (Decision, error) {
	now := g.now()

	usage, err := g.store.Ensure(ctx, userID, now)

	if err != nil {
		return g.failClosed(), fmt.Errorf("failed to load SMS usage: %w", err)
	}

	if usage, err = g.rollover(ctx, usage, now); err != nil {
		return g.failClosed(), fmt.Errorf("failed to roll over SMS usage windows: %w", err)
	}

	if usage.HourlyCount >= g.cfg.MaxPerHour {
		return g.deny(ConstraintHourly,
			fmt.Sprintf("Hourly SMS limit reached (%d per hour)", g.cfg.MaxPerHour), usage), nil
	}

	if usage.DailyCount >= g.cfg.MaxPerDay {
		return g.deny(ConstraintDaily,
			fmt.Sprintf("Daily SMS limit reached (%d per day)", g.cfg.MaxPerDay), usage), nil
	}

	projected := usage.MonthlyCost + g.cfg.UnitCost

	if projected > g.cfg.MaxMonthlyCost {
		return g.deny(ConstraintMonthlyCost,
			fmt.Sprintf("Monthly SMS cost limit reached ($%.2f)", g.cfg.MaxMonthlyCost), usage), nil
	}

	return Decision{
		Allowed:              true,
		RemainingHourly:      g.cfg.MaxPerHour - usage.HourlyCount - 1,
		RemainingDaily:       g.cfg.MaxPerDay - usage.DailyCount - 1,
		EstimatedMonthlyCost: projected,
	}, nil
}

// RecordUsage charges one sent message to the user's counters. Called
// only after a confirmed successful external send.
func (g *Guard) RecordUsage(ctx context.Context, userID uint) error {
	if err := g.store.Increment(ctx, userID, g.cfg.UnitCost); err != nil {
		return fmt.Errorf("failed to record SMS usage: %w", err)
	}
	return nil
}

func (g *Guard) deny(constraint, reason string, usage *models.SmsUsage) Decision {
	metrics.RateLimitDenials.WithLabelValues(constraint).Inc()

	remainingHourly := g.cfg.MaxPerHour - usage.HourlyCount
	if remainingHourly < 0 {
		remainingHourly = 0
	}

	remainingDaily := g.cfg.MaxPerDay - usage.DailyCount
	if remainingDaily < 0 {
		remainingDaily = 0
	}

	return Decision{
		Allowed:              false,
		Reason:               reason,
		Constraint:           constraint,
		RemainingHourly:      remainingHourly,
		RemainingDaily:       remainingDaily,
		EstimatedMonthlyCost: usage.MonthlyCost,
	}
}

func (g *Guard) failClosed() Decision {
	metrics.RateLimitDenials.WithLabelValues(ConstraintInternal).Inc()

	return Decision{
		Allowed:    false,
		Reason:     "Rate limit check unavailable",
		Constraint: ConstraintInternal,
	}
}

// rollover zeroes any counter whose calendar window has elapsed since its
// last reset marker and persists the new boundary.
func (g *Guard) rollover(ctx context.Context, usage *models.SmsUsage, now time.Time) (*models.SmsUsage, error) {
	if hour := HourStart(now); hour.After(usage.LastResetHour) {
		if err := g.store.ResetHourWindow(ctx, usage.UserID, hour); err != nil {
			return nil, err
		}
		usage.HourlyCount = 0
		usage.LastResetHour = hour
	}

	if day := DayStart(now); day.After(usage.LastResetDay) {
		if err := g.store.ResetDayWindow(ctx, usage.UserID, day); err != nil {
			return nil, err
		}
		usage.DailyCount = 0
		usage.LastResetDay = day
	}

	if month := MonthStart(now); month.After(usage.LastResetMonth) {
		if err := g.store.ResetMonthWindow(ctx, usage.UserID, month); err != nil {
			return nil, err
		}
		usage.MonthlyCount = 0
		usage.MonthlyCost = 0
		usage.LastResetMonth = month
	}

	return usage, nil
}

// HourStart returns the top of the hour containing t.
func HourStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// DayStart returns midnight of the day containing t.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// MonthStart returns midnight of the first day of the month containing t.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
