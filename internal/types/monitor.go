package types

import (
	"errors"
	"fmt"
	"strings"
)

// ChannelConfig is a single notification delivery target attached to a
// monitor, stored as part of the monitor's channels JSON.
type ChannelConfig struct {
	Type    string `json:"type"`    // "email" or "sms"
	Address string `json:"address"` // email address or E.164 phone number
}

// ValidateChannels enforces the 1-5 channel budget and per-channel shape.
func ValidateChannels(channels []ChannelConfig) error {
	if len(channels) == 0 {
		return errors.New("at least one notification channel is required")
	}

	if len(channels) > MaxChannels {
		return fmt.Errorf("at most %d notification channels are allowed", MaxChannels)
	}

	for i, ch := range channels {
		if ch.Type != ChannelEmail && ch.Type != ChannelSMS {
			return fmt.Errorf("channel %d: unsupported type %q", i, ch.Type)
		}

		if strings.TrimSpace(ch.Address) == "" {
			return fmt.Errorf("channel %d: address is required", i)
		}
	}

	return nil
}

// ValidPatternType reports whether the matcher understands the type.
func ValidPatternType(patternType string) bool {
	switch patternType {
	case PatternContains, PatternNotContains, PatternRegex:
		return true
	}
	return false
}
