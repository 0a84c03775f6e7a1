package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/telekom/gt-mail-gateway/pkg/mailctl/client"
)

const maxSubjectWidth = 48

func WriteInboxTable(w io.Writer, messages []client.Message) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tFROM\tSUBJECT\tSENT\tREAD")
	for _, m := range messages {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			dash(m.ID), dash(m.From), dash(truncate(m.Subject, maxSubjectWidth)), formatSentAt(m.SentAt), yesNo(m.Read))
	}
	_ = tw.Flush()
}

// formatSentAt normalizes RFC3339 timestamps to UTC and passes anything else through.
func formatSentAt(s string) string {
	if s == "" {
		return "-"
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.UTC().Format(time.RFC3339)
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
