package notifier

// Event describes one notification-worthy status transition. It carries a
// snapshot of the monitor so formatting never re-reads the database.
type Event struct {
	MonitorID   uint
	UserID      uint
	MonitorName string
	URL         string
	Pattern     string

	// Type is the transition: "pattern_found", "pattern_lost" or "error".
	Type string

	// Initial marks the monitor's first-ever evaluation.
	Initial bool

	Snippet      string
	ErrorMessage string
}

// ChannelResult is the per-channel outcome of one dispatch, returned in
// the same order as the input channel list.
type ChannelResult struct {
	Channel    string `json:"channel"`
	Address    string `json:"address"`
	Status     string `json:"status"` // "sent" or "failed"
	Error      string `json:"error,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}
