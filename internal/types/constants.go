package types

const ContextUserKey = "user"

// Monitor statuses. Pending means the monitor has never been
// successfully evaluated.
const (
	StatusPending  = "pending"
	StatusFound    = "found"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// Pattern types accepted by the matcher.
const (
	PatternContains    = "contains"
	PatternNotContains = "not_contains"
	PatternRegex       = "regex"
)

// Notification transition types.
const (
	TransitionPatternFound = "pattern_found"
	TransitionPatternLost  = "pattern_lost"
	TransitionError        = "error"
)

// Notification channel types.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Notification delivery statuses.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

const (
	MinCheckInterval = 60    // seconds
	MaxCheckInterval = 86400 // seconds
	MaxChannels      = 5
	SnippetContext   = 50  // characters of context on each side of a match
	MaxSMSLength     = 160 // characters
)
