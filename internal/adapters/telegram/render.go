package telegram

import (
	"fmt"
	"strings"

	"github.com/tiuub/RailwayHistoryTelegramBot/internal/core/domain"
)

// listingLimit caps how many journeys one /list reply shows, keeping
// the message well under Telegram's length limit.
const listingLimit = 25

func renderSummaries(summaries []domain.JourneySummary) string {
	if len(summaries) == 0 {
		return "No journeys saved yet. Paste a shared itinerary to start your history."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Your last %d journey(s):\n", min(len(summaries), listingLimit))
	for i, s := range summaries {
		if i == listingLimit {
			fmt.Fprintf(&sb, "… and %d more.\n", len(summaries)-listingLimit)
			break
		}
		fmt.Fprintf(&sb, "%s  %s → %s (%.0f km",
			s.DepartureScheduled.Format("02.01.2006 15:04"),
			s.Origin, s.Destination, s.DistanceKM)
		if s.PriceCents != nil {
			fmt.Fprintf(&sb, ", %.2f", float64(*s.PriceCents)/100)
		}
		sb.WriteString(")")
		if s.Category != nil {
			sb.WriteString(" #" + *s.Category)
		}
		if s.Purpose != nil {
			sb.WriteString(" #" + *s.Purpose)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
