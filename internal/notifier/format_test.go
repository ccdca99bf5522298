package notifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pagewatch-dev/pagewatch/internal/types"
)

func TestFormatSMSWithinBudget(t *testing.T) {
	body := formatSMS(Event{
		MonitorName: "Shop",
		Type:        types.TransitionPatternFound,
		Snippet:     "Buy Now",
	})

	assert.LessOrEqual(t, len(body), types.MaxSMSLength)
	assert.Contains(t, body, "Shop")
	assert.Contains(t, body, "Buy Now")
}

func TestFormatSMSDropsSnippetOverBudget(t *testing.T) {
	body := formatSMS(Event{
		MonitorName: "Shop",
		Type:        types.TransitionPatternFound,
		Snippet:     strings.Repeat("context ", 40),
	})

	assert.LessOrEqual(t, len(body), types.MaxSMSLength)
	assert.NotContains(t, body, "context context")
}

func TestFormatSMSTruncatesWithEllipsis(t *testing.T) {
	body := formatSMS(Event{
		MonitorName: strings.Repeat("Very Long Monitor Name ", 20),
		Type:        types.TransitionPatternLost,
	})

	assert.Equal(t, types.MaxSMSLength, len(body))
	assert.True(t, strings.HasSuffix(body, "..."))
}

func TestFormatSMSErrorIncludesMessage(t *testing.T) {
	body := formatSMS(Event{
		MonitorName:  "Shop",
		Type:         types.TransitionError,
		ErrorMessage: "Request timeout",
	})

	assert.Contains(t, body, "Request timeout")
	assert.LessOrEqual(t, len(body), types.MaxSMSLength)
}

func TestFormatEmailSubject(t *testing.T) {
	subject := formatEmailSubject(Event{
		MonitorName: "Shop",
		Type:        types.TransitionPatternFound,
		Initial:     true,
	})

	assert.Equal(t, "[First check] Pattern found: Shop", subject)
}

func TestFormatEmailBodyEscapesContent(t *testing.T) {
	body := formatEmailBody(Event{
		MonitorName: "Shop <script>",
		URL:         "https://example.com",
		Pattern:     "a & b",
		Type:        types.TransitionPatternFound,
		Snippet:     "<b>match</b>",
	})

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;b&gt;match&lt;/b&gt;")
	assert.Contains(t, body, "a &amp; b")
}
