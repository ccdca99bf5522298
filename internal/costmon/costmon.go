package costmon

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pagewatch-dev/pagewatch/internal/config"
	"github.com/pagewatch-dev/pagewatch/internal/models"
	"github.com/pagewatch-dev/pagewatch/internal/ratelimit"
)

// UsageReader is the read-only view over the sms_usages table. The cost
// monitor shares the store with the rate limiter but never writes.
type UsageReader interface {
	ListUsage(ctx context.Context) ([]models.SmsUsage, error)
}

type UserUsage struct {
	UserID       uint    `json:"user_id"`
	MessageCount int     `json:"message_count"`
	Cost         float64 `json:"cost"`
}

type ThresholdAlert struct {
	UserID     uint    `json:"user_id"`
	Cost       float64 `json:"cost"`
	Limit      float64 `json:"limit"`
	PercentUse float64 `json:"percent_used"`
	Message    string  `json:"message"`
}

// Summary is the system-wide view of the current month's SMS spend.
type Summary struct {
	TotalMessages int     `json:"total_messages"`
	TotalCost     float64 `json:"total_cost"`
	ProjectedCost float64 `json:"projected_month_end_cost"`
	ActiveSenders int     `json:"active_senders"`

	TopSpenders []UserUsage      `json:"top_spenders"`
	Alerts      []ThresholdAlert `json:"alerts"`

	GeneratedAt time.Time `json:"generated_at"`
}

const topSpenderLimit = 10

type Monitor struct {
	store     UsageReader
	cfg       config.SMSConfig
	threshold float64
	now       func() time.Time
}

func New(store UsageReader, cfg config.SMSConfig, threshold float64) *Monitor {
	return &Monitor{store: store, cfg: cfg, threshold: threshold, now: time.Now}
}

// NewWithClock pins "now" for tests.
func NewWithClock(store UsageReader, cfg config.SMSConfig, threshold float64, now func() time.Time) *Monitor {
	return &Monitor{store: store, cfg: cfg, threshold: threshold, now: now}
}

// Stats aggregates every user's current-month usage into system totals,
// threshold alerts and a linear month-end projection. Rows whose month
// window has lapsed (no send since the month boundary, so no rollover
// ran) are counted as zero for this month.
func (m *Monitor) Stats(ctx context.Context) (Summary, error) {
	rows, err := m.store.ListUsage(ctx)

	if err != nil {
		return Summary{}, fmt.Errorf("failed to load usage records: %w", err)
	}

	now := m.now()
	monthStart := ratelimit.MonthStart(now)

	summary := Summary{
		TopSpenders: []UserUsage{},
		Alerts:      []ThresholdAlert{},
		GeneratedAt: now,
	}

	for _, row := range rows {
		if row.LastResetMonth.Before(monthStart) {
			continue
		}

		summary.TotalMessages += row.MonthlyCount
		summary.TotalCost += row.MonthlyCost

		if row.MonthlyCount > 0 {
			summary.ActiveSenders++
		}

		summary.TopSpenders = append(summary.TopSpenders, UserUsage{
			UserID:       row.UserID,
			MessageCount: row.MonthlyCount,
			Cost:         row.MonthlyCost,
		})

		if alert, ok := m.thresholdAlert(row); ok {
			summary.Alerts = append(summary.Alerts, alert)
		}
	}

	sort.Slice(summary.TopSpenders, func(i, j int) bool {
		return summary.TopSpenders[i].Cost > summary.TopSpenders[j].Cost
	})

	if len(summary.TopSpenders) > topSpenderLimit {
		summary.TopSpenders = summary.TopSpenders[:topSpenderLimit]
	}

	summary.ProjectedCost = projectMonthEnd(summary.TotalCost, monthStart, now)

	return summary, nil
}

func (m *Monitor) thresholdAlert(row models.SmsUsage) (ThresholdAlert, bool) {
	if m.cfg.MaxMonthlyCost <= 0 {
		return ThresholdAlert{}, false
	}

	used := row.MonthlyCost / m.cfg.MaxMonthlyCost

	if used < m.threshold {
		return ThresholdAlert{}, false
	}

	return ThresholdAlert{
		UserID:     row.UserID,
		Cost:       row.MonthlyCost,
		Limit:      m.cfg.MaxMonthlyCost,
		PercentUse: used * 100,
		Message: fmt.Sprintf("User %d has used %.0f%% of the monthly SMS budget ($%.2f of $%.2f)",
			row.UserID, used*100, row.MonthlyCost, m.cfg.MaxMonthlyCost),
	}, true
}

// projectMonthEnd extrapolates spend linearly from the elapsed fraction
// of the month.
func projectMonthEnd(costSoFar float64, monthStart, now time.Time) float64 {
	monthEnd := monthStart.AddDate(0, 1, 0)

	total := monthEnd.Sub(monthStart)
	elapsed := now.Sub(monthStart)

	if elapsed <= 0 || total <= 0 {
		return costSoFar
	}

	return costSoFar * float64(total) / float64(elapsed)
}
