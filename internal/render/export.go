package render

import (
	"strings"
	"time"

	"github.com/aaronzipp/among-llms/internal/models"
)

// ExportHeader returns the lines that open a transcript
func ExportHeader(scenario, human string) []string {
	return []string{
		"[SCENARIO] " + flatten(scenario),
		"You are [" + strings.ToUpper(human) + "]",
	}
}

// ExportLine formats one message of a transcript on a single line:
//
//	#<id> <timestamp> [sender -> recipient] body {EDITED} {DELETED} {YOU}
//
// Deleted messages keep their final body so the transcript stays auditable.
func ExportLine(m *models.Message, human string) string {
	var b strings.Builder
	b.WriteString("#")
	b.WriteString(m.ID)
	b.WriteString(" ")
	b.WriteString(m.CreatedAt.UTC().Format(time.RFC3339))
	b.WriteString(" ")
	if m.Announcement {
		b.WriteString("[IMPORTANT]")
	} else {
		writeHeader(&b, m)
	}
	b.WriteString(" ")
	b.WriteString(flatten(m.Body))
	if m.Edited {
		b.WriteString(" {EDITED}")
	}
	if m.Deleted {
		b.WriteString(" {DELETED}")
	}
	if m.SentByHuman || (human != "" && m.Sender == human) {
		b.WriteString(" {YOU}")
	}
	return b.String()
}

// Export renders a full transcript
func Export(scenario, human string, msgs []*models.Message) []string {
	lines := ExportHeader(scenario, human)
	for _, m := range msgs {
		lines = append(lines, ExportLine(m, human))
	}
	return lines
}

// one message per line
func flatten(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\r\n", "\n")), " ")
}
