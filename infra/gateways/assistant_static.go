package gateways

import (
	"context"
	"strings"

	"github.com/giovaniif/motorent/domain/bike"
	"github.com/giovaniif/motorent/domain/rental"
)

// AssistantStatic answers from a small FAQ and suggests the shop's own
// locations. It stands in when no flow server is configured.
type AssistantStatic struct {
	bikes bike.Repository
}

func NewAssistantStatic(bikes bike.Repository) *AssistantStatic {
	return &AssistantStatic{bikes: bikes}
}

type faqEntry struct {
	keywords []string
	answer   string
}

var faq = []faqEntry{
	{[]string{"cancel", "refund"}, "Upcoming rentals can be cancelled from the rental desk before pickup; the reserved units are released right away."},
	{[]string{"insurance", "coverage"}, "Full coverage insurance is an optional add-on charged per rental day."},
	{[]string{"helmet", "gps", "luggage", "option"}, optionsAnswer()},
	{[]string{"price", "cost", "pay"}, "Rentals are charged per bike per day, counting both the pickup and the return day, plus any add-ons per day."},
	{[]string{"pickup", "return", "late"}, "Pick up your bike at its location on the start date and return it by the end date. Rentals still out after the end date are closed automatically."},
}

func optionsAnswer() string {
	parts := make([]string, 0, len(rental.Options))
	for _, o := range rental.Options {
		parts = append(parts, o.Name)
	}
	return "Available add-ons: " + strings.Join(parts, ", ") + "."
}

const fallbackAnswer = "I'm not sure about that one. Please send us a message from the support page and our staff will get back to you."

func (a *AssistantStatic) Answer(ctx context.Context, query string) (string, error) {
	q := strings.ToLower(query)
	for _, entry := range faq {
		for _, kw := range entry.keywords {
			if strings.Contains(q, kw) {
				return entry.answer, nil
			}
		}
	}
	return fallbackAnswer, nil
}

func (a *AssistantStatic) SuggestLocations(ctx context.Context, userLocation string) ([]string, error) {
	locations, err := a.bikes.Locations(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(userLocation))
	var matched []string
	for _, loc := range locations {
		for _, word := range strings.Fields(needle) {
			if strings.Contains(strings.ToLower(loc), word) {
				matched = append(matched, loc)
				break
			}
		}
	}
	if len(matched) == 0 {
		return locations, nil
	}
	return matched, nil
}
