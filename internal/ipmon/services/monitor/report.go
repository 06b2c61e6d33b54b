package monitor

import (
	"fmt"
	"strings"

	"github.com/haukened/ipmon/internal/ipmon/domain"
)

// reportListLimit caps how many added or removed prefixes a report lists.
const reportListLimit = 10

// FormatReport renders a delta as a chat-friendly text report.
func FormatReport(d domain.Delta, date string) string {
	var b strings.Builder
	b.WriteString("📊 Google IP Ranges Report\n")
	fmt.Fprintf(&b, "📅 Date: %s\n", date)
	b.WriteString(strings.Repeat("=", 40))
	b.WriteString("\n\n")

	if !d.HasChanges() {
		b.WriteString("✅ No changes detected\n")
		fmt.Fprintf(&b, "📦 Total IP ranges: %d\n", d.CurrentCount)
		return b.String()
	}

	b.WriteString("🔔 Changes detected!\n\n")
	writeList(&b, "➕ Added", d.Added)
	writeList(&b, "➖ Removed", d.Removed)
	b.WriteString("📊 Statistics:\n")
	fmt.Fprintf(&b, "  Previous: %d ranges\n", d.PreviousCount)
	fmt.Fprintf(&b, "  Current: %d ranges\n", d.CurrentCount)
	fmt.Fprintf(&b, "  Net change: %+d\n", d.NetChange())
	return b.String()
}

func writeList(b *strings.Builder, title string, prefixes []string) {
	if len(prefixes) == 0 {
		return
	}
	fmt.Fprintf(b, "%s (%d):\n", title, len(prefixes))
	shown := prefixes
	if len(shown) > reportListLimit {
		shown = shown[:reportListLimit]
	}
	for _, p := range shown {
		fmt.Fprintf(b, "  • %s\n", p)
	}
	if extra := len(prefixes) - len(shown); extra > 0 {
		fmt.Fprintf(b, "  ... and %d more\n", extra)
	}
	b.WriteString("\n")
}
