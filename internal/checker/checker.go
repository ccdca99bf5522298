package checker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pagewatch-dev/pagewatch/internal/matcher"
	"github.com/pagewatch-dev/pagewatch/internal/metrics"
	"github.com/pagewatch-dev/pagewatch/internal/models"
	"github.com/pagewatch-dev/pagewatch/internal/notifier"
	"github.com/pagewatch-dev/pagewatch/internal/types"
)

// ErrMonitorNotFound covers both a missing monitor and one owned by a
// different user, so existence never leaks across owners.
var ErrMonitorNotFound = errors.New("monitor not found")

// ErrMonitorInactive rejects checks against soft-disabled monitors
// before any network I/O happens.
var ErrMonitorInactive = errors.New("monitor is not active")

// MonitorStore loads and updates monitor rows.
type MonitorStore interface {
	// GetOwned returns ErrMonitorNotFound when the (monitorID, userID)
	// pair does not match a row.
	GetOwned(ctx context.Context, monitorID, userID uint) (*models.Monitor, error)
	UpdateStatus(ctx context.Context, monitorID uint, status string, checkedAt time.Time) error
}

// CheckLogStore appends to the check log.
type CheckLogStore interface {
	Insert(ctx context.Context, check *models.MonitorCheck) error
}

// Notifier is satisfied by *notifier.Dispatcher.
type Notifier interface {
	Dispatch(ctx context.Context, event notifier.Event, channels []types.ChannelConfig) []notifier.ChannelResult
}

// Outcome is the scheduler-facing result of one check invocation.
// Success reflects the check itself; notification failures are surfaced
// separately so callers can tell "the monitor is broken" from "the alert
// didn't go out".
type Outcome struct {
	Success        bool   `json:"success"`
	Status         string `json:"status"`
	ResponseTime   int    `json:"response_time"`
	ContentSnippet string `json:"content_snippet,omitempty"`
	Error          string `json:"error,omitempty"`

	Notified            bool                     `json:"notified"`
	NoChannels          bool                     `json:"no_channels_configured,omitempty"`
	NotificationResults []notifier.ChannelResult `json:"notification_results,omitempty"`
}

type Checker struct {
	monitors MonitorStore
	checks   CheckLogStore
	notify   Notifier
	fetcher  Fetcher
	now      func() time.Time

	// onResult, when set, observes every completed check (used for the
	// live websocket feed).
	onResult func(monitor *models.Monitor, outcome Outcome)
}

func New(monitors MonitorStore, checks CheckLogStore, notify Notifier, fetcher Fetcher) *Checker {
	return &Checker{
		monitors: monitors,
		checks:   checks,
		notify:   notify,
		fetcher:  fetcher,
		now:      time.Now,
	}
}

// WithClock pins "now" for tests.
func (c *Checker) WithClock(now func() time.Time) *Checker {
	c.now = now
	return c
}

// WithResultHook registers an observer for completed checks.
func (c *Checker) WithResultHook(hook func(monitor *models.Monitor, outcome Outcome)) *Checker {
	c.onResult = hook
	return c
}

// RunCheck executes one full check for the (monitorID, userID) pair:
// fetch, match, log, status update, transition detection and dispatch.
func (c *Checker) RunCheck(ctx context.Context, monitorID, userID uint) (Outcome, error) {
	if monitorID == 0 || userID == 0 {
		return Outcome{}, errors.New("monitor id and user id are required")
	}

	monitor, err := c.monitors.GetOwned(ctx, monitorID, userID)

	if err != nil {
		return Outcome{}, err
	}

	if !monitor.IsActive {
		return Outcome{}, ErrMonitorInactive
	}

	// Captured before the check; transition detection compares against it.
	lastStatus := monitor.LastStatus

	status, snippet, errMessage, responseTime := c.evaluate(ctx, monitor)

	metrics.ChecksTotal.WithLabelValues(status).Inc()
	metrics.CheckDuration.Observe(float64(responseTime) / 1000)

	checkedAt := c.now()

	check := models.MonitorCheck{
		MonitorID:    monitor.ID,
		Status:       status,
		ResponseTime: responseTime,
		Snippet:      snippet,
		Message:      errMessage,
		CheckedAt:    checkedAt,
	}

	if err := c.checks.Insert(ctx, &check); err != nil {
		return Outcome{}, fmt.Errorf("failed to store check result: %w", err)
	}

	if err := c.monitors.UpdateStatus(ctx, monitor.ID, status, checkedAt); err != nil {
		return Outcome{}, fmt.Errorf("failed to update monitor status: %w", err)
	}

	monitor.LastStatus = status
	monitor.LastChecked = &checkedAt

	outcome := Outcome{
		Success:        true,
		Status:         status,
		ResponseTime:   responseTime,
		ContentSnippet: snippet,
		Error:          errMessage,
	}

	if shouldNotify(lastStatus, status) {
		c.dispatch(ctx, monitor, lastStatus, status, snippet, errMessage, &outcome)
	}

	if c.onResult != nil {
		c.onResult(monitor, outcome)
	}

	return outcome, nil
}

// evaluate performs the fetch and pattern match, mapping every failure
// mode onto a check status. Fetch failures are routine outcomes here,
// never errors bubbling out.
func (c *Checker) evaluate(ctx context.Context, monitor *models.Monitor) (status, snippet, errMessage string, responseTime int) {
	start := time.Now()

	content, err := c.fetcher.Fetch(ctx, monitor.URL)
	responseTime = int(time.Since(start).Milliseconds())

	if err != nil {
		if errors.Is(err, ErrFetchTimeout) {
			return types.StatusError, "", ErrFetchTimeout.Error(), responseTime
		}
		return types.StatusError, "", err.Error(), responseTime
	}

	result, err := matcher.Evaluate(content, monitor.Pattern, monitor.PatternType)

	if err != nil {
		// Invalid regex or unknown pattern type: a configuration problem
		// the user must fix, distinct from "pattern not found".
		return types.StatusError, "", err.Error(), responseTime
	}

	if result.Matched {
		return types.StatusFound, result.Snippet, "", responseTime
	}

	return types.StatusNotFound, "", "", responseTime
}

func (c *Checker) dispatch(ctx context.Context, monitor *models.Monitor, lastStatus, status, snippet, errMessage string, outcome *Outcome) {
	channels, err := monitor.ChannelList()

	if err != nil {
		log.Printf("Monitor %d has malformed channel config: %v", monitor.ID, err)
		outcome.NoChannels = true
		return
	}

	if len(channels) == 0 {
		// Reported distinctly so operators can spot misconfigured monitors.
		log.Printf("Monitor %d changed status (%s -> %s) but has no notification channels", monitor.ID, lastStatus, status)
		outcome.NoChannels = true
		return
	}

	event := notifier.Event{
		MonitorID:    monitor.ID,
		UserID:       monitor.UserID,
		MonitorName:  monitor.Name,
		URL:          monitor.URL,
		Pattern:      monitor.Pattern,
		Type:         transitionType(status),
		Initial:      lastStatus == types.StatusPending,
		Snippet:      snippet,
		ErrorMessage: errMessage,
	}

	results := c.notify.Dispatch(ctx, event, channels)

	outcome.Notified = true
	outcome.NotificationResults = results

	for _, result := range results {
		if result.Status == types.DeliveryFailed {
			log.Printf("Monitor %d: %s notification to %s failed: %s",
				monitor.ID, result.Channel, result.Address, result.Error)
		}
	}
}

// shouldNotify implements the transition rule: the first-ever check
// always notifies; afterwards only a status change does, including
// transitions into and out of "error".
func shouldNotify(lastStatus, status string) bool {
	if lastStatus == types.StatusPending {
		return true
	}
	return lastStatus != status
}

func transitionType(status string) string {
	switch status {
	case types.StatusFound:
		return types.TransitionPatternFound
	case types.StatusNotFound:
		return types.TransitionPatternLost
	default:
		return types.TransitionError
	}
}
