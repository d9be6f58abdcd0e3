package selection

import (
	"context"
	"errors"
	"time"

	"github.com/giovaniif/motorent/domain/availability"
	"github.com/giovaniif/motorent/domain/bike"
	"github.com/giovaniif/motorent/domain/session"
)

// Selection remembers the dates and location a shopper is browsing with.
type Selection struct {
	store session.Store
}

func NewSelection(store session.Store) *Selection {
	return &Selection{store: store}
}

func (s *Selection) Save(ctx context.Context, sessionId string, input Input) (*session.Selection, error) {
	rng, err := availability.NewRange(input.From, input.To)
	if err != nil {
		return nil, err
	}
	location := input.Location
	if location == "" {
		location = bike.AnyLocation
	}
	sel := session.Selection{From: rng.Start, To: rng.End, Location: location}
	if err := s.store.SaveSelection(ctx, sessionId, sel); err != nil {
		return nil, err
	}
	return &sel, nil
}

func (s *Selection) Get(ctx context.Context, sessionId string) (*session.Selection, error) {
	return s.store.Selection(ctx, sessionId)
}

type Input struct {
	From     time.Time
	To       time.Time
	Location string
}

// Resolve completes a partial selection. Explicit dates win and a single
// given date stands for both ends. With no dates at all the stored selection
// is used, then today. The location falls back the same way.
func (s *Selection) Resolve(ctx context.Context, sessionId string, explicit Input, now time.Time) (session.Selection, error) {
	return Resolve(ctx, s.store, sessionId, explicit, now)
}

func Resolve(ctx context.Context, store session.Store, sessionId string, explicit Input, now time.Time) (session.Selection, error) {
	out := session.Selection{From: explicit.From, To: explicit.To, Location: explicit.Location}
	noDates := out.From.IsZero() && out.To.IsZero()
	if (noDates || out.Location == "") && sessionId != "" {
		stored, err := store.Selection(ctx, sessionId)
		switch {
		case err == nil:
			if noDates {
				out.From, out.To = stored.From, stored.To
			}
			if out.Location == "" {
				out.Location = stored.Location
			}
		case !errors.Is(err, session.ErrNotFound):
			return session.Selection{}, err
		}
	}
	switch {
	case out.From.IsZero() && out.To.IsZero():
		today := availability.Day(now)
		out.From, out.To = today, today
	case out.From.IsZero():
		out.From = out.To
	case out.To.IsZero():
		out.To = out.From
	}
	if out.Location == "" {
		out.Location = bike.AnyLocation
	}
	return out, nil
}
