package usecase

import (
	"fmt"
	"html"
	"strings"

	"BrainCandy/internal/domain"
)

func reviewMessage(number int, c domain.Candidate) string {
	return fmt.Sprintf("📋 <b>#%d</b>\n\n<b>%s</b>\n\n%s\n\n<i>— %s</i>\n\nReply: <b>1</b>=👍  <b>0</b>=👎",
		number,
		html.EscapeString(c.Title),
		html.EscapeString(c.Link),
		html.EscapeString(c.Source))
}

func channelMessage(c domain.Candidate) string {
	return fmt.Sprintf("<b>%s</b>\n\n%s\n\n<i>— %s</i>",
		html.EscapeString(c.Title),
		html.EscapeString(c.Link),
		html.EscapeString(c.Source))
}

func discoveryReport(result DiscoveryResult, top []domain.DiscoveredSource) string {
	var b strings.Builder
	b.WriteString("🔎 <b>Source discovery</b>\n\n")
	fmt.Fprintf(&b, "New sources: %d\nTracked sources: %d\n", result.New, result.Tracked)

	if len(result.Promoted) > 0 {
		b.WriteString("\n<b>Added to feeds</b>\n")
		for _, feed := range result.Promoted {
			fmt.Fprintf(&b, "• %s (%s)\n", html.EscapeString(feed.Name), html.EscapeString(feed.Domain))
		}
	}

	if len(top) > 0 {
		b.WriteString("\n<b>Top candidates</b>\n")
		for i, src := range top {
			fmt.Fprintf(&b, "%d. %s (%s)", i+1, html.EscapeString(src.Name), html.EscapeString(src.Domain))
			switch src.Origin {
			case domain.OriginSubstack:
				b.WriteString(" 📬 recommended")
			case domain.OriginHNMining:
				fmt.Fprintf(&b, " 🔶 %d HN hits, avg %.0fpt", src.HNCount, src.HNAvgPoints)
			}
			if src.FeedURL == "" {
				b.WriteString(" · no feed")
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
