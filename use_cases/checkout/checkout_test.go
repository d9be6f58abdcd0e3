package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/giovaniif/motorent/domain/bike"
	"github.com/giovaniif/motorent/domain/rental"
	"github.com/giovaniif/motorent/domain/session"
	"github.com/giovaniif/motorent/infra"
	"github.com/giovaniif/motorent/infra/gateways"
	"github.com/giovaniif/motorent/infra/repositories"
	"github.com/giovaniif/motorent/protocols"
)

type mockPaymentGateway struct {
	mu        sync.Mutex
	charged   []float64
	orders    []string
	chargeErr []error
}

func (m *mockPaymentGateway) Charge(ctx context.Context, orderId string, amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.charged = append(m.charged, amount)
	m.orders = append(m.orders, orderId)
	if len(m.chargeErr) > 0 {
		err := m.chargeErr[0]
		m.chargeErr = m.chargeErr[1:]
		return err
	}
	return nil
}

type mockCheckoutGateway struct {
	reserveResult *protocols.CheckoutIdempotencyKeyResult
	reserveErr    error
	successOrder  string
	successCalls  int
	failureCalls  int
	reservedKeys  []string
}

func (m *mockCheckoutGateway) ReserveIdempotencyKey(ctx context.Context, key string) (*protocols.CheckoutIdempotencyKeyResult, error) {
	m.reservedKeys = append(m.reservedKeys, key)
	return m.reserveResult, m.reserveErr
}

func (m *mockCheckoutGateway) MarkFailure(ctx context.Context, key string) error {
	m.failureCalls++
	return nil
}

func (m *mockCheckoutGateway) MarkSuccess(ctx context.Context, key string, orderId string) error {
	m.successCalls++
	m.successOrder = orderId
	return nil
}

type mockEvents struct {
	mu        sync.Mutex
	published []protocols.RentalEvent
}

func (m *mockEvents) Publish(ctx context.Context, events ...protocols.RentalEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, events...)
	return nil
}

type mockSleeper struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (m *mockSleeper) Sleep(ctx context.Context, d time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slept = append(m.slept, d)
	return nil
}

type flakyRentals struct {
	rental.Repository
	failures int
	calls    int
}

func (f *flakyRentals) Reserve(ctx context.Context, bikeId string, rentals []rental.Rental, guard rental.Guard) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection reset")
	}
	return f.Repository.Reserve(ctx, bikeId, rentals, guard)
}

type fixture struct {
	bikes    *repositories.BikeRepositoryMemory
	rentals  rental.Repository
	sessions *gateways.SessionStoreMemory
	payment  *mockPaymentGateway
	keys     *mockCheckoutGateway
	events   *mockEvents
	sleeper  *mockSleeper
}

func date(day int) time.Time {
	return time.Date(2026, 9, day, 0, 0, 0, 0, time.UTC)
}

func newFixture(amount int32) *fixture {
	bikes := repositories.NewBikeRepositoryMemory(bike.Bike{
		Id: "bike1", Name: "Urban Sprinter Z250", PricePerDay: 45, IsAvailable: true, Amount: amount,
	})
	return &fixture{
		bikes:    bikes,
		rentals:  repositories.NewRentalRepositoryMemory(bikes),
		sessions: gateways.NewSessionStoreMemory(),
		payment:  &mockPaymentGateway{},
		keys:     &mockCheckoutGateway{},
		events:   &mockEvents{},
		sleeper:  &mockSleeper{},
	}
}

func (f *fixture) checkout() *Checkout {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCheckout(f.bikes, f.rentals, f.sessions, f.payment, f.keys, f.events, f.sleeper, logger)
}

func (f *fixture) pending(sessionId string, quantity int32, options ...string) {
	_ = f.sessions.SavePendingOrder(context.Background(), sessionId, session.PendingOrder{
		BikeId: "bike1", Start: date(1), End: date(3), Quantity: quantity, Options: options,
	})
}

func TestCheckout_ReservesChargesAndPublishes(t *testing.T) {
	f := newFixture(10)
	f.pending("sess", 2, "helmet", "insurance")

	out, err := f.checkout().Checkout(context.Background(), Input{IdempotencyKey: "k1", SessionId: "sess", UserId: "user1"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if out.TotalPrice != 330 || len(out.RentalIds) != 2 {
		t.Fatalf("unexpected output: %+v", out)
	}
	if len(f.payment.charged) != 1 || f.payment.charged[0] != 330 || f.payment.orders[0] != out.OrderId {
		t.Fatalf("expected one charge of 330 for %s, got %v %v", out.OrderId, f.payment.charged, f.payment.orders)
	}
	stored, _ := f.rentals.List(context.Background(), rental.Filter{UserId: "user1"})
	if len(stored) != 2 {
		t.Fatalf("expected 2 rental units, got %d", len(stored))
	}
	for _, r := range stored {
		if r.OrderId != out.OrderId || r.Status != rental.Upcoming || r.TotalPrice != 165 {
			t.Fatalf("unexpected unit: %+v", r)
		}
	}
	if len(f.events.published) != 2 || f.events.published[0].Type != protocols.RentalCreated {
		t.Fatalf("expected 2 created events, got %+v", f.events.published)
	}
	if len(f.keys.reservedKeys) != 1 || f.keys.reservedKeys[0] != "user1:k1" {
		t.Fatalf("expected key scoped to user1, got %v", f.keys.reservedKeys)
	}
	if f.keys.successCalls != 1 || f.keys.successOrder != out.OrderId {
		t.Fatalf("expected MarkSuccess with %s, got %d calls with %q", out.OrderId, f.keys.successCalls, f.keys.successOrder)
	}
	if _, err := f.sessions.PendingOrder(context.Background(), "sess"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected pending order cleared, got %v", err)
	}
}

func TestCheckout_KeysAreScopedPerUser(t *testing.T) {
	f := newFixture(10)
	f.pending("sess-a", 1)
	f.pending("sess-b", 1)
	uc := NewCheckout(f.bikes, f.rentals, f.sessions, f.payment, gateways.NewCheckoutGatewayMemory(), f.events, f.sleeper,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	first, err := uc.Checkout(context.Background(), Input{IdempotencyKey: "same", SessionId: "sess-a", UserId: "user1"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	second, err := uc.Checkout(context.Background(), Input{IdempotencyKey: "same", SessionId: "sess-b", UserId: "user2"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if second.Replayed || second.OrderId == first.OrderId {
		t.Fatalf("expected a separate order for the second user, got %+v and %+v", first, second)
	}

	replay, err := uc.Checkout(context.Background(), Input{IdempotencyKey: "same", SessionId: "sess-a", UserId: "user1"})
	if err != nil || !replay.Replayed || replay.OrderId != first.OrderId {
		t.Fatalf("expected replay of %s, got %+v, %v", first.OrderId, replay, err)
	}
}

func TestCheckout_ReplayReturnsStoredOrder(t *testing.T) {
	f := newFixture(10)
	f.keys.reserveResult = &protocols.CheckoutIdempotencyKeyResult{Success: true, OrderId: "order-7"}

	out, err := f.checkout().Checkout(context.Background(), Input{IdempotencyKey: "k1", SessionId: "sess"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !out.Replayed || out.OrderId != "order-7" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if len(f.payment.charged) != 0 || f.keys.successCalls+f.keys.failureCalls != 0 {
		t.Fatalf("expected nothing to run on replay")
	}
}

func TestCheckout_KeyInProgress(t *testing.T) {
	f := newFixture(10)
	f.keys.reserveErr = protocols.ErrCheckoutInProgress

	_, err := f.checkout().Checkout(context.Background(), Input{IdempotencyKey: "k1", SessionId: "sess"})
	if !errors.Is(err, protocols.ErrCheckoutInProgress) {
		t.Fatalf("expected ErrCheckoutInProgress, got %v", err)
	}
}

func TestCheckout_NoPendingOrder(t *testing.T) {
	f := newFixture(10)

	_, err := f.checkout().Checkout(context.Background(), Input{IdempotencyKey: "k1", SessionId: "empty"})
	if !errors.Is(err, ErrNoPendingOrder) {
		t.Fatalf("expected ErrNoPendingOrder, got %v", err)
	}
	if f.keys.failureCalls != 1 {
		t.Fatalf("expected MarkFailure once, got %d", f.keys.failureCalls)
	}
}

func TestCheckout_InsufficientStockIsNotRetried(t *testing.T) {
	f := newFixture(1)
	f.pending("sess", 2)

	_, err := f.checkout().Checkout(context.Background(), Input{IdempotencyKey: "k1", SessionId: "sess", UserId: "user1"})
	if !errors.Is(err, rental.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if len(f.sleeper.slept) != 0 {
		t.Fatalf("expected no retries, slept %v", f.sleeper.slept)
	}
	if len(f.payment.charged) != 0 {
		t.Fatalf("expected no charge")
	}
	if f.keys.failureCalls != 1 {
		t.Fatalf("expected MarkFailure once, got %d", f.keys.failureCalls)
	}
	if _, err := f.sessions.PendingOrder(context.Background(), "sess"); err != nil {
		t.Fatalf("expected pending order kept after failure, got %v", err)
	}
}

func TestCheckout_ChargeFailureReleasesUnits(t *testing.T) {
	f := newFixture(3)
	f.pending("sess", 3)
	f.payment.chargeErr = []error{gateways.ErrPaymentDeclined}

	_, err := f.checkout().Checkout(context.Background(), Input{IdempotencyKey: "k1", SessionId: "sess", UserId: "user1"})
	if !errors.Is(err, gateways.ErrPaymentDeclined) {
		t.Fatalf("expected ErrPaymentDeclined, got %v", err)
	}
	stored, _ := f.rentals.List(context.Background(), rental.Filter{BikeId: "bike1"})
	if len(stored) != 3 {
		t.Fatalf("expected 3 units written, got %d", len(stored))
	}
	for _, r := range stored {
		if r.Status != rental.Cancelled {
			t.Fatalf("expected unit %s cancelled, got %s", r.Id, r.Status)
		}
	}
	if len(f.events.published) != 0 {
		t.Fatalf("expected no events on failed checkout")
	}

	// released stock can be booked again
	f.pending("sess2", 3)
	f.payment.chargeErr = nil
	if _, err := f.checkout().Checkout(context.Background(), Input{IdempotencyKey: "k2", SessionId: "sess2", UserId: "user1"}); err != nil {
		t.Fatalf("expected released units to be bookable, got %v", err)
	}
}

func TestCheckout_RetriesTransientFailures(t *testing.T) {
	f := newFixture(5)
	f.rentals = &flakyRentals{Repository: f.rentals, failures: 2}
	f.pending("sess", 1)
	f.payment.chargeErr = []error{infra.NewNetworkError("payment 503")}

	_, err := f.checkout().Checkout(context.Background(), Input{IdempotencyKey: "k1", SessionId: "sess", UserId: "user1"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	want := []time.Duration{BASE_DELAY, 2 * BASE_DELAY, BASE_DELAY}
	if fmt.Sprint(f.sleeper.slept) != fmt.Sprint(want) {
		t.Fatalf("expected sleeps %v, got %v", want, f.sleeper.slept)
	}
	if len(f.payment.charged) != 2 {
		t.Fatalf("expected 2 charge attempts, got %d", len(f.payment.charged))
	}
}

func TestCheckout_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	const stock = 3
	f := newFixture(stock)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uc := NewCheckout(f.bikes, f.rentals, f.sessions, f.payment, gateways.NewCheckoutGatewayMemory(), f.events, f.sleeper, logger)

	const shoppers = 12
	for i := 0; i < shoppers; i++ {
		f.pending(fmt.Sprintf("sess%d", i), 1)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < shoppers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.Checkout(context.Background(), Input{
				IdempotencyKey: fmt.Sprintf("k%d", i), SessionId: fmt.Sprintf("sess%d", i), UserId: "user1",
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, rental.ErrInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if succeeded != stock {
		t.Fatalf("expected exactly %d checkouts to succeed, got %d", stock, succeeded)
	}
	occupying, _ := f.rentals.List(context.Background(), rental.Filter{Statuses: []rental.Status{rental.Upcoming, rental.Active}})
	if len(occupying) != stock {
		t.Fatalf("expected %d occupying units, got %d", stock, len(occupying))
	}
}
