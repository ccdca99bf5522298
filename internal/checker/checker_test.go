package checker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/pagewatch-dev/pagewatch/internal/models"
	"github.com/pagewatch-dev/pagewatch/internal/notifier"
	"github.com/pagewatch-dev/pagewatch/internal/types"
)

type fakeMonitorStore struct {
	monitors   map[uint]*models.Monitor
	updateErr  error
	lastUpdate struct {
		status    string
		checkedAt time.Time
	}
}

func (s *fakeMonitorStore) GetOwned(ctx context.Context, monitorID, userID uint) (*models.Monitor, error) {
	m, ok := s.monitors[monitorID]

	if !ok || m.UserID != userID {
		return nil, ErrMonitorNotFound
	}

	copied := *m
	return &copied, nil
}

func (s *fakeMonitorStore) UpdateStatus(ctx context.Context, monitorID uint, status string, checkedAt time.Time) error {
	if s.updateErr != nil {
		return s.updateErr
	}

	if m, ok := s.monitors[monitorID]; ok {
		m.LastStatus = status
		m.LastChecked = &checkedAt
	}

	s.lastUpdate.status = status
	s.lastUpdate.checkedAt = checkedAt
	return nil
}

type fakeCheckLog struct {
	checks []models.MonitorCheck
	err    error
}

func (s *fakeCheckLog) Insert(ctx context.Context, check *models.MonitorCheck) error {
	if s.err != nil {
		return s.err
	}
	s.checks = append(s.checks, *check)
	return nil
}

type fakeNotifier struct {
	events   []notifier.Event
	channels [][]types.ChannelConfig
	results  []notifier.ChannelResult
}

func (n *fakeNotifier) Dispatch(ctx context.Context, event notifier.Event, channels []types.ChannelConfig) []notifier.ChannelResult {
	n.events = append(n.events, event)
	n.channels = append(n.channels, channels)

	if n.results != nil {
		return n.results
	}

	results := make([]notifier.ChannelResult, len(channels))
	for i, ch := range channels {
		results[i] = notifier.ChannelResult{Channel: ch.Type, Address: ch.Address, Status: types.DeliverySent}
	}
	return results
}

type fakeFetcher struct {
	content string
	err     error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.content, f.err
}

func channelsJSON(t *testing.T, channels []types.ChannelConfig) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(channels)
	require.NoError(t, err)
	return datatypes.JSON(raw)
}

func testMonitor(t *testing.T) *models.Monitor {
	m := &models.Monitor{
		UserID:      3,
		Name:        "Product page",
		URL:         "https://example.com/product",
		Pattern:     "Buy Now",
		PatternType: types.PatternContains,
		Interval:    300,
		IsActive:    true,
		LastStatus:  types.StatusPending,
		Channels: channelsJSON(t, []types.ChannelConfig{
			{Type: types.ChannelEmail, Address: "a@example.com"},
		}),
	}
	m.ID = 7
	return m
}

func newTestChecker(store *fakeMonitorStore, checks *fakeCheckLog, notify *fakeNotifier, fetch *fakeFetcher) *Checker {
	return New(store, checks, notify, fetch).WithClock(func() time.Time {
		return time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)
	})
}

func TestRunCheckFirstEvaluationNotifiesInitial(t *testing.T) {
	monitor := testMonitor(t)
	store := &fakeMonitorStore{monitors: map[uint]*models.Monitor{7: monitor}}
	checks := &fakeCheckLog{}
	notify := &fakeNotifier{}
	fetch := &fakeFetcher{content: "welcome, please Buy Now today before the sale ends"}

	outcome, err := newTestChecker(store, checks, notify, fetch).RunCheck(context.Background(), 7, 3)

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, types.StatusFound, outcome.Status)
	assert.Contains(t, outcome.ContentSnippet, "Buy Now")
	assert.True(t, outcome.Notified)

	require.Len(t, notify.events, 1)
	assert.Equal(t, types.TransitionPatternFound, notify.events[0].Type)
	assert.True(t, notify.events[0].Initial)

	require.Len(t, checks.checks, 1)
	assert.Equal(t, types.StatusFound, checks.checks[0].Status)
	assert.Equal(t, types.StatusFound, store.lastUpdate.status)
}

func TestRunCheckPatternLostTransition(t *testing.T) {
	monitor := testMonitor(t)
	monitor.LastStatus = types.StatusFound
	store := &fakeMonitorStore{monitors: map[uint]*models.Monitor{7: monitor}}
	notify := &fakeNotifier{}
	fetch := &fakeFetcher{content: "sold out, check back later"}

	outcome, err := newTestChecker(store, &fakeCheckLog{}, notify, fetch).RunCheck(context.Background(), 7, 3)

	require.NoError(t, err)
	assert.Equal(t, types.StatusNotFound, outcome.Status)
	assert.True(t, outcome.Notified)

	require.Len(t, notify.events, 1)
	assert.Equal(t, types.TransitionPatternLost, notify.events[0].Type)
	assert.False(t, notify.events[0].Initial)
}

func TestRunCheckNoChangeNoNotification(t *testing.T) {
	monitor := testMonitor(t)
	monitor.LastStatus = types.StatusFound
	store := &fakeMonitorStore{monitors: map[uint]*models.Monitor{7: monitor}}
	notify := &fakeNotifier{}
	fetch := &fakeFetcher{content: "still here: Buy Now"}

	outcome, err := newTestChecker(store, &fakeCheckLog{}, notify, fetch).RunCheck(context.Background(), 7, 3)

	require.NoError(t, err)
	assert.Equal(t, types.StatusFound, outcome.Status)
	assert.False(t, outcome.Notified)
	assert.Empty(t, notify.events)
}

func TestRunCheckTimeoutBecomesErrorTransition(t *testing.T) {
	monitor := testMonitor(t)
	monitor.LastStatus = types.StatusFound
	store := &fakeMonitorStore{monitors: map[uint]*models.Monitor{7: monitor}}
	notify := &fakeNotifier{}
	fetch := &fakeFetcher{err: ErrFetchTimeout}

	outcome, err := newTestChecker(store, &fakeCheckLog{}, notify, fetch).RunCheck(context.Background(), 7, 3)

	require.NoError(t, err, "fetch failures are routine outcomes, not errors")
	assert.True(t, outcome.Success)
	assert.Equal(t, types.StatusError, outcome.Status)
	assert.Contains(t, outcome.Error, "timeout")

	require.Len(t, notify.events, 1)
	assert.Equal(t, types.TransitionError, notify.events[0].Type)
	assert.Equal(t, "Request timeout", notify.events[0].ErrorMessage)
}

func TestRunCheckErrorRecoveryNotifies(t *testing.T) {
	monitor := testMonitor(t)
	monitor.LastStatus = types.StatusError
	store := &fakeMonitorStore{monitors: map[uint]*models.Monitor{7: monitor}}
	notify := &fakeNotifier{}
	fetch := &fakeFetcher{content: "recovered, Buy Now available"}

	outcome, err := newTestChecker(store, &fakeCheckLog{}, notify, fetch).RunCheck(context.Background(), 7, 3)

	require.NoError(t, err)
	assert.Equal(t, types.StatusFound, outcome.Status)
	require.Len(t, notify.events, 1)
	assert.Equal(t, types.TransitionPatternFound, notify.events[0].Type)
}

func TestRunCheckInvalidRegexIsCheckError(t *testing.T) {
	monitor := testMonitor(t)
	monitor.PatternType = types.PatternRegex
	monitor.Pattern = "([unclosed"
	store := &fakeMonitorStore{monitors: map[uint]*models.Monitor{7: monitor}}
	checks := &fakeCheckLog{}
	fetch := &fakeFetcher{content: "some content"}

	outcome, err := newTestChecker(store, checks, &fakeNotifier{}, fetch).RunCheck(context.Background(), 7, 3)

	require.NoError(t, err)
	assert.Equal(t, types.StatusError, outcome.Status)
	assert.Contains(t, outcome.Error, "invalid regex")
	require.Len(t, checks.checks, 1)
	assert.Equal(t, types.StatusError, checks.checks[0].Status)
}

func TestRunCheckRejectsInactiveMonitorBeforeIO(t *testing.T) {
	monitor := testMonitor(t)
	monitor.IsActive = false
	store := &fakeMonitorStore{monitors: map[uint]*models.Monitor{7: monitor}}
	checks := &fakeCheckLog{}
	fetch := &fakeFetcher{content: "should never be fetched"}

	_, err := newTestChecker(store, checks, &fakeNotifier{}, fetch).RunCheck(context.Background(), 7, 3)

	require.ErrorIs(t, err, ErrMonitorInactive)
	assert.Empty(t, checks.checks, "inactive monitors must not produce check rows")
	assert.Equal(t, "", store.lastUpdate.status)
}

func TestRunCheckOwnershipDoesNotLeakExistence(t *testing.T) {
	monitor := testMonitor(t)
	store := &fakeMonitorStore{monitors: map[uint]*models.Monitor{7: monitor}}

	_, err := newTestChecker(store, &fakeCheckLog{}, &fakeNotifier{}, &fakeFetcher{}).
		RunCheck(context.Background(), 7, 99)

	require.ErrorIs(t, err, ErrMonitorNotFound)
}

func TestRunCheckMissingIDsRejected(t *testing.T) {
	store := &fakeMonitorStore{monitors: map[uint]*models.Monitor{}}

	_, err := newTestChecker(store, &fakeCheckLog{}, &fakeNotifier{}, &fakeFetcher{}).
		RunCheck(context.Background(), 0, 3)

	require.Error(t, err)
}

func TestRunCheckNoChannelsReportedDistinctly(t *testing.T) {
	monitor := testMonitor(t)
	monitor.Channels = nil
	store := &fakeMonitorStore{monitors: map[uint]*models.Monitor{7: monitor}}
	notify := &fakeNotifier{}
	fetch := &fakeFetcher{content: "please Buy Now"}

	outcome, err := newTestChecker(store, &fakeCheckLog{}, notify, fetch).RunCheck(context.Background(), 7, 3)

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.True(t, outcome.NoChannels)
	assert.False(t, outcome.Notified)
	assert.Empty(t, notify.events)
}

func TestRunCheckNotificationFailureDoesNotFailCheck(t *testing.T) {
	monitor := testMonitor(t)
	store := &fakeMonitorStore{monitors: map[uint]*models.Monitor{7: monitor}}
	notify := &fakeNotifier{results: []notifier.ChannelResult{
		{Channel: types.ChannelEmail, Address: "a@example.com", Status: types.DeliveryFailed, Error: "smtp unreachable"},
	}}
	fetch := &fakeFetcher{content: "please Buy Now"}

	outcome, err := newTestChecker(store, &fakeCheckLog{}, notify, fetch).RunCheck(context.Background(), 7, 3)

	require.NoError(t, err)
	assert.True(t, outcome.Success, "a failed notification must not fail the check")
	assert.True(t, outcome.Notified)
	require.Len(t, outcome.NotificationResults, 1)
	assert.Equal(t, types.DeliveryFailed, outcome.NotificationResults[0].Status)
}

func TestRunCheckCheckLogFailurePropagates(t *testing.T) {
	monitor := testMonitor(t)
	store := &fakeMonitorStore{monitors: map[uint]*models.Monitor{7: monitor}}
	checks := &fakeCheckLog{err: errors.New("database unavailable")}
	fetch := &fakeFetcher{content: "please Buy Now"}

	_, err := newTestChecker(store, checks, &fakeNotifier{}, fetch).RunCheck(context.Background(), 7, 3)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store check result")
}

func TestRunCheckRateLimitedSMSAmongEmails(t *testing.T) {
	monitor := testMonitor(t)
	monitor.Channels = channelsJSON(t, []types.ChannelConfig{
		{Type: types.ChannelEmail, Address: "a@example.com"},
		{Type: types.ChannelEmail, Address: "b@example.com"},
		{Type: types.ChannelSMS, Address: "+15551234567"},
	})
	store := &fakeMonitorStore{monitors: map[uint]*models.Monitor{7: monitor}}
	notify := &fakeNotifier{results: []notifier.ChannelResult{
		{Channel: types.ChannelEmail, Address: "a@example.com", Status: types.DeliverySent},
		{Channel: types.ChannelEmail, Address: "b@example.com", Status: types.DeliverySent},
		{Channel: types.ChannelSMS, Address: "+15551234567", Status: types.DeliveryFailed, Error: "Hourly SMS limit reached (10 per hour)"},
	}}
	fetch := &fakeFetcher{content: "please Buy Now"}

	outcome, err := newTestChecker(store, &fakeCheckLog{}, notify, fetch).RunCheck(context.Background(), 7, 3)

	require.NoError(t, err)
	assert.True(t, outcome.Success)
	require.Len(t, outcome.NotificationResults, 3)
	assert.Equal(t, types.DeliverySent, outcome.NotificationResults[0].Status)
	assert.Equal(t, types.DeliverySent, outcome.NotificationResults[1].Status)
	assert.Contains(t, outcome.NotificationResults[2].Error, "Hourly SMS limit")
}
