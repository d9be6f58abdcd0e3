package sweep

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
)

type mockEvents struct {
	published []protocols.RentalEvent
	err       error
}

func (m *mockEvents) Publish(ctx context.Context, events ...protocols.RentalEvent) error {
	m.published = append(m.published, events...)
	return m.err
}

func day(s string) time.Time {
	d, _ := time.Parse(time.DateOnly, s)
	return d
}

func newSweep(events *mockEvents, rentals ...rental.Rental) (*Sweep, *repositories.RentalRepositoryMemory) {
	repo := repositories.NewRentalRepositoryMemory(repositories.NewBikeRepositoryMemory(), rentals...)
	s := NewSweep(repo, events, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return day("2026-05-10").Add(9 * time.Hour) }
	return s, repo
}

func TestCompleteOverdue(t *testing.T) {
	events := &mockEvents{}
	s, repo := newSweep(events,
		rental.Rental{Id: "late", BikeId: "bike1", StartDate: day("2026-05-01"), EndDate: day("2026-05-09"), Status: rental.Active},
		rental.Rental{Id: "due-today", BikeId: "bike1", StartDate: day("2026-05-05"), EndDate: day("2026-05-10"), Status: rental.Active},
		rental.Rental{Id: "not-picked-up", BikeId: "bike1", StartDate: day("2026-05-01"), EndDate: day("2026-05-02"), Status: rental.Upcoming},
	)

	completed, err := s.CompleteOverdue(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(completed) != 1 || completed[0].Id != "late" {
		t.Fatalf("expected only the late rental to complete, got %+v", completed)
	}
	if len(events.published) != 1 || events.published[0].Type != protocols.RentalReturned {
		t.Fatalf("unexpected events: %+v", events.published)
	}
	today, _ := repo.FindById(context.Background(), "due-today")
	if today.Status != rental.Active {
		t.Fatalf("expected rental ending today to stay Active, got %s", today.Status)
	}
	upcoming, _ := repo.FindById(context.Background(), "not-picked-up")
	if upcoming.Status != rental.Upcoming {
		t.Fatalf("expected Upcoming rental to be left alone, got %s", upcoming.Status)
	}
}

func TestCompleteOverdue_NothingToDo(t *testing.T) {
	events := &mockEvents{}
	s, _ := newSweep(events)

	completed, err := s.CompleteOverdue(context.Background())
	if err != nil || len(completed) != 0 {
		t.Fatalf("expected no completions, got %+v, %v", completed, err)
	}
	if len(events.published) != 0 {
		t.Fatalf("expected no events, got %+v", events.published)
	}
}

func TestCompleteOverdue_PublishFailureIsNotFatal(t *testing.T) {
	events := &mockEvents{err: errors.New("broker down")}
	s, _ := newSweep(events,
		rental.Rental{Id: "late", StartDate: day("2026-05-01"), EndDate: day("2026-05-03"), Status: rental.Active},
	)

	completed, err := s.CompleteOverdue(context.Background())
	if err != nil || len(completed) != 1 {
		t.Fatalf("expected completion despite publish failure, got %+v, %v", completed, err)
	}
}
