package notifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagewatch-dev/pagewatch/internal/models"
	"github.com/pagewatch-dev/pagewatch/internal/ratelimit"
	"github.com/pagewatch-dev/pagewatch/internal/types"
)

type fakeRecordStore struct {
	mu      sync.Mutex
	records []models.NotificationRecord
	fail    bool
}

func (s *fakeRecordStore) Insert(ctx context.Context, record *models.NotificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fail {
		return errors.New("insert failed")
	}

	s.records = append(s.records, *record)
	return nil
}

type fakeGuard struct {
	mu       sync.Mutex
	decision ratelimit.Decision
	recorded int
}

func (g *fakeGuard) Check(ctx context.Context, userID uint) (ratelimit.Decision, error) {
	return g.decision, nil
}

func (g *fakeGuard) RecordUsage(ctx context.Context, userID uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.recorded++
	return nil
}

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *fakeEmailSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	s.sent = append(s.sent, to)
	return nil
}

type fakeSMSSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *fakeSMSSender) Send(ctx context.Context, to, body string) (SendResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return SendResult{}, s.err
	}

	s.sent = append(s.sent, to)
	return SendResult{MessageID: "SM123"}, nil
}

func testEvent() Event {
	return Event{
		MonitorID:   7,
		UserID:      3,
		MonitorName: "Product page",
		URL:         "https://example.com/product",
		Pattern:     "Buy Now",
		Type:        types.TransitionPatternFound,
		Snippet:     "please Buy Now today",
	}
}

func newTestDispatcher(records *fakeRecordStore, guard *fakeGuard, email *fakeEmailSender, sms *fakeSMSSender) *Dispatcher {
	d := NewDispatcher(records, guard, email, sms)
	d.now = func() time.Time { return time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC) }
	return d
}

func TestDispatchPreservesChannelOrder(t *testing.T) {
	records := &fakeRecordStore{}
	guard := &fakeGuard{decision: ratelimit.Decision{Allowed: true}}
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}

	d := newTestDispatcher(records, guard, email, sms)

	channels := []types.ChannelConfig{
		{Type: types.ChannelEmail, Address: "a@example.com"},
		{Type: types.ChannelSMS, Address: "+15551234567"},
		{Type: types.ChannelEmail, Address: "b@example.com"},
	}

	results := d.Dispatch(context.Background(), testEvent(), channels)

	require.Len(t, results, 3)
	assert.Equal(t, "a@example.com", results[0].Address)
	assert.Equal(t, "+15551234567", results[1].Address)
	assert.Equal(t, "b@example.com", results[2].Address)

	for _, r := range results {
		assert.Equal(t, types.DeliverySent, r.Status)
	}

	assert.Equal(t, "SM123", results[1].ExternalID)
	assert.Equal(t, 1, guard.recorded)
}

func TestDispatchRateLimitedSMSAmongEmails(t *testing.T) {
	records := &fakeRecordStore{}
	guard := &fakeGuard{decision: ratelimit.Decision{
		Allowed: false,
		Reason:  "Hourly SMS limit reached (10 per hour)",
	}}
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}

	d := newTestDispatcher(records, guard, email, sms)

	channels := []types.ChannelConfig{
		{Type: types.ChannelEmail, Address: "a@example.com"},
		{Type: types.ChannelEmail, Address: "b@example.com"},
		{Type: types.ChannelSMS, Address: "+15551234567"},
	}

	results := d.Dispatch(context.Background(), testEvent(), channels)

	require.Len(t, results, 3)
	assert.Equal(t, types.DeliverySent, results[0].Status)
	assert.Equal(t, types.DeliverySent, results[1].Status)
	assert.Equal(t, types.DeliveryFailed, results[2].Status)
	assert.Contains(t, results[2].Error, "Hourly SMS limit")

	// The denied SMS never reached the transport and was never charged.
	assert.Empty(t, sms.sent)
	assert.Zero(t, guard.recorded)
}

func TestDispatchChannelFailureIsIsolated(t *testing.T) {
	records := &fakeRecordStore{}
	guard := &fakeGuard{decision: ratelimit.Decision{Allowed: true}}
	email := &fakeEmailSender{err: errors.New("smtp unreachable")}
	sms := &fakeSMSSender{}

	d := newTestDispatcher(records, guard, email, sms)

	channels := []types.ChannelConfig{
		{Type: types.ChannelEmail, Address: "a@example.com"},
		{Type: types.ChannelSMS, Address: "+15551234567"},
	}

	results := d.Dispatch(context.Background(), testEvent(), channels)

	require.Len(t, results, 2)
	assert.Equal(t, types.DeliveryFailed, results[0].Status)
	assert.Contains(t, results[0].Error, "smtp unreachable")
	assert.Equal(t, types.DeliverySent, results[1].Status)
}

func TestDispatchPersistsAuditRecords(t *testing.T) {
	records := &fakeRecordStore{}
	guard := &fakeGuard{decision: ratelimit.Decision{Allowed: true}}

	d := newTestDispatcher(records, guard, &fakeEmailSender{}, &fakeSMSSender{})

	channels := []types.ChannelConfig{
		{Type: types.ChannelEmail, Address: "a@example.com"},
		{Type: types.ChannelSMS, Address: "+15551234567"},
	}

	d.Dispatch(context.Background(), testEvent(), channels)

	require.Len(t, records.records, 2)

	for _, record := range records.records {
		assert.Equal(t, uint(7), record.MonitorID)
		assert.Equal(t, uint(3), record.UserID)
		assert.Equal(t, types.TransitionPatternFound, record.Type)
		assert.NotEmpty(t, record.Message)
		assert.Equal(t, types.DeliverySent, record.Status)
		require.NotNil(t, record.SentAt)
	}
}

func TestDispatchFailedSMSStillAudited(t *testing.T) {
	records := &fakeRecordStore{}
	guard := &fakeGuard{decision: ratelimit.Decision{Allowed: true}}
	sms := &fakeSMSSender{err: errors.New("provider down")}

	d := newTestDispatcher(records, guard, &fakeEmailSender{}, sms)

	results := d.Dispatch(context.Background(), testEvent(), []types.ChannelConfig{
		{Type: types.ChannelSMS, Address: "+15551234567"},
	})

	require.Len(t, results, 1)
	assert.Equal(t, types.DeliveryFailed, results[0].Status)
	assert.Zero(t, guard.recorded)

	require.Len(t, records.records, 1)
	assert.Equal(t, types.DeliveryFailed, records.records[0].Status)
	assert.Equal(t, "provider down", records.records[0].ErrorMessage)
}

func TestDispatchAuditFailureDoesNotFailChannel(t *testing.T) {
	records := &fakeRecordStore{fail: true}
	guard := &fakeGuard{decision: ratelimit.Decision{Allowed: true}}

	d := newTestDispatcher(records, guard, &fakeEmailSender{}, &fakeSMSSender{})

	results := d.Dispatch(context.Background(), testEvent(), []types.ChannelConfig{
		{Type: types.ChannelEmail, Address: "a@example.com"},
	})

	require.Len(t, results, 1)
	assert.Equal(t, types.DeliverySent, results[0].Status)
}
