package returns

import (
	"context"

	"github.com/giovaniif/motorent/domain/rental"
	"github.com/giovaniif/motorent/protocols"
	"github.com/giovaniif/motorent/use_cases/transition"
)

type Return struct {
	transition *transition.Transition
}

func NewReturn(t *transition.Transition) *Return {
	return &Return{transition: t}
}

// Complete records the bike as returned, freeing the unit for later dates.
func (r *Return) Complete(ctx context.Context, input Input) (*rental.Rental, error) {
	current, err := r.transition.Load(ctx, input.RentalId, "")
	if err != nil {
		return nil, err
	}
	return r.transition.Apply(ctx, current, rental.Completed, protocols.RentalReturned)
}

type Input struct {
	RentalId string
}
