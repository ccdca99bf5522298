package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/pagewatch-dev/pagewatch/internal/types"
)

func headline(event Event) string {
	switch event.Type {
	case types.TransitionPatternFound:
		return "Pattern found"
	case types.TransitionPatternLost:
		return "Pattern no longer found"
	case types.TransitionError:
		return "Check failed"
	default:
		return "Status changed"
	}
}

func formatEmailSubject(event Event) string {
	prefix := ""

	if event.Initial {
		prefix = "[First check] "
	}

	return fmt.Sprintf("%s%s: %s", prefix, headline(event), event.MonitorName)
}

func formatEmailBody(event Event) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("<h2>%s</h2>", html.EscapeString(headline(event))))
	b.WriteString(fmt.Sprintf("<p><strong>Monitor:</strong> %s</p>", html.EscapeString(event.MonitorName)))
	b.WriteString(fmt.Sprintf("<p><strong>URL:</strong> <a href=%q>%s</a></p>", event.URL, html.EscapeString(event.URL)))
	b.WriteString(fmt.Sprintf("<p><strong>Pattern:</strong> <code>%s</code></p>", html.EscapeString(event.Pattern)))

	if event.Initial {
		b.WriteString("<p>This is the first check for this monitor.</p>")
	}

	if event.ErrorMessage != "" {
		b.WriteString(fmt.Sprintf("<p><strong>Error:</strong> %s</p>", html.EscapeString(event.ErrorMessage)))
	}

	if event.Snippet != "" {
		b.WriteString(fmt.Sprintf("<blockquote>%s</blockquote>", html.EscapeString(event.Snippet)))
	}

	return b.String()
}

// formatSMS renders the compact SMS body. The snippet is dropped first
// when the message would exceed the 160-character budget; whatever still
// does not fit is truncated with an ellipsis.
func formatSMS(event Event) string {
	base := fmt.Sprintf("PageWatch: %s - %s", headline(event), event.MonitorName)

	if event.Type == types.TransitionError && event.ErrorMessage != "" {
		base = fmt.Sprintf("%s (%s)", base, event.ErrorMessage)
	}

	if event.Snippet != "" {
		withSnippet := fmt.Sprintf("%s: %q", base, event.Snippet)

		if len(withSnippet) <= types.MaxSMSLength {
			return withSnippet
		}
	}

	return truncateSMS(base)
}

func truncateSMS(body string) string {
	if len(body) <= types.MaxSMSLength {
		return body
	}

	return body[:types.MaxSMSLength-3] + "..."
}
