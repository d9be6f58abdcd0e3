package returns

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/giovaniif/motorent/domain/rental"
	"github.com/giovaniif/motorent/infra/repositories"
	"github.com/giovaniif/motorent/protocols"
	"github.com/giovaniif/motorent/use_cases/transition"
)

type mockEvents struct {
	published []protocols.RentalEvent
}

func (m *mockEvents) Publish(ctx context.Context, events ...protocols.RentalEvent) error {
	m.published = append(m.published, events...)
	return nil
}

func newReturn(rentals ...rental.Rental) (*Return, *mockEvents) {
	repo := repositories.NewRentalRepositoryMemory(repositories.NewBikeRepositoryMemory(), rentals...)
	events := &mockEvents{}
	return NewReturn(transition.New(repo, events, slog.New(slog.NewTextHandler(io.Discard, nil)))), events
}

func TestComplete_ActiveRental(t *testing.T) {
	uc, events := newReturn(rental.Rental{Id: "r1", Status: rental.Active})

	got, err := uc.Complete(context.Background(), Input{RentalId: "r1"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.Status != rental.Completed {
		t.Fatalf("expected Completed, got %s", got.Status)
	}
	if len(events.published) != 1 || events.published[0].Type != protocols.RentalReturned {
		t.Fatalf("unexpected events: %+v", events.published)
	}
}

func TestComplete_UpcomingRentalCannotBeReturned(t *testing.T) {
	uc, _ := newReturn(rental.Rental{Id: "r1", Status: rental.Upcoming})

	if _, err := uc.Complete(context.Background(), Input{RentalId: "r1"}); !errors.Is(err, rental.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
