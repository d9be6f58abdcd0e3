package cancel

import (
	"context"

	"github.com/giovaniif/motorent/domain/rental"
	"github.com/giovaniif/motorent/protocols"
	"github.com/giovaniif/motorent/use_cases/transition"
)

type Cancel struct {
	transition *transition.Transition
}

func NewCancel(t *transition.Transition) *Cancel {
	return &Cancel{transition: t}
}

// Cancel releases an upcoming rental. Renters pass their own id as OwnerId
// and may only cancel their rentals; staff leave it empty.
func (c *Cancel) Cancel(ctx context.Context, input Input) (*rental.Rental, error) {
	r, err := c.transition.Load(ctx, input.RentalId, input.OwnerId)
	if err != nil {
		return nil, err
	}
	return c.transition.Apply(ctx, r, rental.Cancelled, protocols.RentalCancelled)
}

type Input struct {
	RentalId string
	OwnerId  string
}
