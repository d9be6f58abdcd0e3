package pickup

import (
	"context"

	"github.com/giovaniif/motorent/domain/rental"
	"github.com/giovaniif/motorent/protocols"
	"github.com/giovaniif/motorent/use_cases/transition"
)

// Pickup confirms the renter collected the bike.
type Pickup struct {
	transition *transition.Transition
}

func NewPickup(t *transition.Transition) *Pickup {
	return &Pickup{transition: t}
}

func (p *Pickup) Confirm(ctx context.Context, input Input) (*rental.Rental, error) {
	r, err := p.transition.Load(ctx, input.RentalId, "")
	if err != nil {
		return nil, err
	}
	return p.transition.Apply(ctx, r, rental.Active, protocols.RentalPickedUp)
}

type Input struct {
	RentalId string
}
