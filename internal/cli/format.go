package cli

import (
	"time"
)

// formatTimestamp renders an epoch-ms timestamp relative to now: time of
// day within the last 24 hours, "Yesterday" within 48, date otherwise.
func formatTimestamp(epochMillis int64, now time.Time) string {
	ts := time.UnixMilli(epochMillis)
	age := now.Sub(ts)

	switch {
	case age < 24*time.Hour:
		return ts.Format("3:04 PM")
	case age < 48*time.Hour:
		return "Yesterday"
	default:
		return ts.Format("Jan 2")
	}
}

// previewText shortens text for one-line display.
func previewText(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + "..."
}
