package notifier

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/pagewatch-dev/pagewatch/internal/config"
)

// SMSSender is the outbound SMS transport capability. A successful send
// returns the provider message SID used later by the delivery-status
// webhook to correlate the audit record.
type SMSSender interface {
	Send(ctx context.Context, to, body string) (SendResult, error)
}

type SendResult struct {
	MessageID string
}

// backoffDelays are the scheduled waits between attempts. With three
// total attempts only the first two are ever slept.
var backoffDelays = []time.Duration{1 * time.Second, 4 * time.Second, 16 * time.Second}

const maxSendAttempts = 3

// Provider error codes eligible for retry: upstream rate limiting and
// message queue overflow. Everything else (e.g. a permanently invalid
// destination) fails immediately.
var retryableProviderCodes = map[int]bool{
	20429: true,
	30001: true,
}

type twilioMessageResponse struct {
	Sid     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type twilioSender struct {
	client     *resty.Client
	cfg        config.SMSConfig
	production bool
	sleep      func(time.Duration)
}

// NewTwilioSender builds the production SMS transport against a
// Twilio-compatible REST API.
func NewTwilioSender(cfg config.SMSConfig, production bool) SMSSender {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetTimeout(15 * time.Second)

	return &twilioSender{
		client:     client,
		cfg:        cfg,
		production: production,
		sleep:      time.Sleep,
	}
}

// newTwilioSenderWithSleep lets tests drive retries without real delays.
func newTwilioSenderWithSleep(cfg config.SMSConfig, production bool, sleep func(time.Duration)) *twilioSender {
	sender := NewTwilioSender(cfg, production).(*twilioSender)
	sender.sleep = sleep
	return sender
}

func (s *twilioSender) Send(ctx context.Context, to, body string) (SendResult, error) {
	var lastErr error

	for attempt := 0; attempt < maxSendAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return SendResult{}, ctx.Err()
			default:
			}
			s.sleep(backoffDelays[attempt-1])
		}

		result, retryable, err := s.attempt(ctx, to, body)

		if err == nil {
			return result, nil
		}

		lastErr = err

		if !retryable {
			break
		}

		log.Printf("SMS send attempt %d/%d failed (retryable): %v", attempt+1, maxSendAttempts, err)
	}

	return SendResult{}, s.sanitize(lastErr)
}

func (s *twilioSender) attempt(ctx context.Context, to, body string) (SendResult, bool, error) {
	var parsed twilioMessageResponse

	resp, err := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"To":   to,
			"From": s.cfg.From,
			"Body": body,
		}).
		SetResult(&parsed).
		SetError(&parsed).
		Post(fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", s.cfg.AccountSID))

	if err != nil {
		// Transport-level failures are transient by assumption.
		return SendResult{}, true, fmt.Errorf("sms transport error: %w", err)
	}

	if resp.IsError() {
		retryable := resp.StatusCode() >= 500 || retryableProviderCodes[parsed.Code]
		return SendResult{}, retryable, fmt.Errorf("sms provider error %d: %s", parsed.Code, parsed.Message)
	}

	return SendResult{MessageID: parsed.Sid}, false, nil
}

// sanitize hides provider internals from end users in production while
// keeping the detailed error for development debugging.
func (s *twilioSender) sanitize(err error) error {
	if err == nil {
		return errors.New("sms send failed")
	}

	if s.production {
		return errors.New("Failed to send SMS notification")
	}

	return err
}

// devSMSSender is used when no provider credentials are configured. It
// logs the message and fabricates a SID so the rest of the pipeline,
// including webhook correlation, stays exercisable locally.
type devSMSSender struct{}

func NewDevSMSSender() SMSSender {
	return devSMSSender{}
}

func (devSMSSender) Send(ctx context.Context, to, body string) (SendResult, error) {
	sid := "SM" + uuid.NewString()
	log.Printf("[dev] SMS to %s (sid %s): %s", to, sid, body)
	return SendResult{MessageID: sid}, nil
}
