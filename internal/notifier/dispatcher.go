package notifier

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pagewatch-dev/pagewatch/internal/metrics"
	"github.com/pagewatch-dev/pagewatch/internal/models"
	"github.com/pagewatch-dev/pagewatch/internal/ratelimit"
	"github.com/pagewatch-dev/pagewatch/internal/types"
)

// RecordStore persists the notification audit trail.
type RecordStore interface {
	Insert(ctx context.Context, record *models.NotificationRecord) error
}

// SMSGuard is the admission interface satisfied by *ratelimit.Guard.
type SMSGuard interface {
	Check(ctx context.Context, userID uint) (ratelimit.Decision, error)
	RecordUsage(ctx context.Context, userID uint) error
}

type Dispatcher struct {
	records RecordStore
	guard   SMSGuard
	email   EmailSender
	sms     SMSSender
	now     func() time.Time
}

func NewDispatcher(records RecordStore, guard SMSGuard, email EmailSender, sms SMSSender) *Dispatcher {
	return &Dispatcher{
		records: records,
		guard:   guard,
		email:   email,
		sms:     sms,
		now:     time.Now,
	}
}

// Dispatch fans the event out to every channel concurrently and returns
// one result per channel in input order. Channels are independent failure
// domains: one erroring never cancels or blocks the others. Callers use
// the results for logging only; there is no in-invocation retry.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event, channels []types.ChannelConfig) []ChannelResult {
	results := make([]ChannelResult, len(channels))

	var wg sync.WaitGroup

	for i, channel := range channels {
		wg.Add(1)

		go func(index int, ch types.ChannelConfig) {
			defer wg.Done()
			results[index] = d.sendToChannel(ctx, event, ch)
		}(i, channel)
	}

	wg.Wait()

	return results
}

func (d *Dispatcher) sendToChannel(ctx context.Context, event Event, channel types.ChannelConfig) ChannelResult {
	result := ChannelResult{
		Channel: channel.Type,
		Address: channel.Address,
	}

	var message string

	switch channel.Type {
	case types.ChannelEmail:
		message = formatEmailBody(event)
		err := d.email.Send(ctx, channel.Address, formatEmailSubject(event), message)

		if err != nil {
			result.Status = types.DeliveryFailed
			result.Error = err.Error()
		} else {
			result.Status = types.DeliverySent
		}

	case types.ChannelSMS:
		message = formatSMS(event)
		result = d.sendSMS(ctx, event, channel, message, result)

	default:
		result.Status = types.DeliveryFailed
		result.Error = fmt.Sprintf("unsupported channel type: %s", channel.Type)
	}

	metrics.NotificationsTotal.WithLabelValues(channel.Type, result.Status).Inc()
	d.persistRecord(ctx, event, channel, message, result)

	return result
}

func (d *Dispatcher) sendSMS(ctx context.Context, event Event, channel types.ChannelConfig, message string, result ChannelResult) ChannelResult {
	decision, err := d.guard.Check(ctx, event.UserID)

	if err != nil {
		log.Printf("SMS rate limit check failed for user %d: %v", event.UserID, err)
	}

	// A denial is a normal outcome, not an exception.
	if !decision.Allowed {
		result.Status = types.DeliveryFailed
		result.Error = decision.Reason
		return result
	}

	sendResult, err := d.sms.Send(ctx, channel.Address, message)

	if err != nil {
		result.Status = types.DeliveryFailed
		result.Error = err.Error()
		return result
	}

	result.Status = types.DeliverySent
	result.ExternalID = sendResult.MessageID

	// Charge only confirmed sends.
	if err := d.guard.RecordUsage(ctx, event.UserID); err != nil {
		log.Printf("Failed to record SMS usage for user %d: %v", event.UserID, err)
	}

	return result
}

// persistRecord writes the audit row for one attempt. A write failure is
// non-fatal to the dispatch but counted, so operators can detect gaps in
// the audit trail.
func (d *Dispatcher) persistRecord(ctx context.Context, event Event, channel types.ChannelConfig, message string, result ChannelResult) {
	sentAt := d.now()

	record := models.NotificationRecord{
		MonitorID:    event.MonitorID,
		UserID:       event.UserID,
		Type:         event.Type,
		Channel:      channel.Type,
		Address:      channel.Address,
		Message:      message,
		Status:       result.Status,
		ErrorMessage: result.Error,
		ExternalID:   result.ExternalID,
		SentAt:       &sentAt,
	}

	if err := d.records.Insert(ctx, &record); err != nil {
		metrics.AuditWriteFailures.Inc()
		log.Printf("Failed to persist notification record for monitor %d (%s): %v",
			event.MonitorID, channel.Type, err)
	}
}
