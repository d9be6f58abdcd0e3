package rental

import (
	"errors"
	"fmt"
)

var ErrUnknownOption = errors.New("unknown rental option")

// Option is an add-on charged per rental day, once per order.
type Option struct {
	Id          string  `json:"id"`
	Name        string  `json:"name"`
	PricePerDay float64 `json:"price"`
}

var Options = []Option{
	{Id: "helmet", Name: "Helmet", PricePerDay: 5},
	{Id: "insurance", Name: "Full Coverage Insurance", PricePerDay: 15},
	{Id: "gps", Name: "GPS Navigation", PricePerDay: 10},
	{Id: "luggage", Name: "Side Luggage Panniers", PricePerDay: 12},
}

func LookupOptions(ids []string) ([]Option, error) {
	selected := make([]Option, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		found := false
		for _, opt := range Options {
			if opt.Id == id {
				selected = append(selected, opt)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOption, id)
		}
	}
	return selected, nil
}
