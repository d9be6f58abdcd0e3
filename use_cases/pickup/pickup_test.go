package pickup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

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

func TestConfirm_ChangesOnlyStatus(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	original := rental.Rental{
		Id: "r1", OrderId: "o1", BikeId: "bike1", UserId: "user1", StartDate: start, EndDate: start.AddDate(0, 0, 2),
		TotalPrice: 135, Options: []string{"helmet"}, Status: rental.Upcoming, BikeName: "Urban Sprinter Z250",
	}
	rentals := repositories.NewRentalRepositoryMemory(repositories.NewBikeRepositoryMemory(), original)
	events := &mockEvents{}
	uc := NewPickup(transition.New(rentals, events, slog.New(slog.NewTextHandler(io.Discard, nil))))

	got, err := uc.Confirm(context.Background(), Input{RentalId: "r1"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if got.Status != rental.Active {
		t.Fatalf("expected Active, got %s", got.Status)
	}
	stored, _ := rentals.FindById(context.Background(), "r1")
	want := original
	want.Status = rental.Active
	if stored.TotalPrice != want.TotalPrice || !stored.StartDate.Equal(want.StartDate) || !stored.EndDate.Equal(want.EndDate) ||
		stored.BikeId != want.BikeId || stored.UserId != want.UserId || stored.Status != want.Status {
		t.Fatalf("expected only status to change, got %+v", stored)
	}
	if len(events.published) != 1 || events.published[0].Type != protocols.RentalPickedUp {
		t.Fatalf("unexpected events: %+v", events.published)
	}

	if _, err := uc.Confirm(context.Background(), Input{RentalId: "r1"}); !errors.Is(err, rental.ErrInvalidTransition) {
		t.Fatalf("expected second pickup to fail with ErrInvalidTransition, got %v", err)
	}
}

func TestConfirm_UnknownRental(t *testing.T) {
	rentals := repositories.NewRentalRepositoryMemory(repositories.NewBikeRepositoryMemory())
	uc := NewPickup(transition.New(rentals, &mockEvents{}, slog.New(slog.NewTextHandler(io.Discard, nil))))

	if _, err := uc.Confirm(context.Background(), Input{RentalId: "nope"}); !errors.Is(err, rental.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
