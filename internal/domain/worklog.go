package domain

import (
	"strings"
	"time"
)

// DisplayTimeLayout is the timestamp layout used in rendered logs and projections.
const DisplayTimeLayout = "2006-01-02 15:04"

// LogEntry is a single attributed comment in a ticket's work log.
type LogEntry struct {
	At      time.Time `json:"at"`
	Author  string    `json:"author"`
	Comment string    `json:"comment"`
}

// AppendLog returns log with entry added at the end. Existing entries are never modified.
func AppendLog(log []LogEntry, entry LogEntry) []LogEntry {
	out := make([]LogEntry, 0, len(log)+1)
	out = append(out, log...)
	return append(out, entry)
}

// RenderLog flattens the entries into "[<timestamp>] <author>: <comment>" lines.
func RenderLog(log []LogEntry, loc *time.Location) string {
	if len(log) == 0 {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	var b strings.Builder
	for _, entry := range log {
		b.WriteString("[")
		b.WriteString(entry.At.In(loc).Format(DisplayTimeLayout))
		b.WriteString("] ")
		b.WriteString(entry.Author)
		b.WriteString(": ")
		b.WriteString(entry.Comment)
		b.WriteString("\n")
	}
	return b.String()
}
