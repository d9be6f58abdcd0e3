package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/giovaniif/motorent/domain/availability"
	"github.com/giovaniif/motorent/domain/bike"
	"github.com/giovaniif/motorent/domain/rental"
	"github.com/giovaniif/motorent/domain/support"
	"github.com/giovaniif/motorent/domain/user"
)

// Seed is the demo catalog loaded when SEED_DATA is on. Rental dates are
// relative to now so the board always shows past and upcoming rentals.
type Seed struct {
	Bikes    []bike.Bike
	Users    []user.User
	Rentals  []rental.Rental
	Messages []support.Message
}

func NewSeed(now time.Time) Seed {
	cc := func(v int32) *int32 { return &v }
	rating := func(v float64) *float64 { return &v }
	day := func(offset int) time.Time { return availability.Day(now).AddDate(0, 0, offset) }

	bikes := []bike.Bike{
		{
			Id: "bike1", Name: "Urban Sprinter Z250", Category: bike.Scooter,
			ImageUrl: "https://placehold.co/600x400.png", PricePerDay: 45,
			Description: "Navigate the city streets with ease on this agile and fuel-efficient scooter. Perfect for daily commutes and quick errands.",
			Features:    []string{"Automatic Transmission", "ABS", "LED Headlights", "USB Charger", "Under-seat Storage"},
			Location:    "Downtown Central", Rating: rating(4.5), IsAvailable: true, Amount: 10, CylinderVolume: cc(249),
		},
		{
			Id: "bike2", Name: "Adventure Pro 500X", Category: bike.Adventure,
			ImageUrl: "https://placehold.co/600x400.png", PricePerDay: 75,
			Description: "Conquer any terrain with this rugged adventure bike. Equipped for long journeys and off-road exploration.",
			Features:    []string{"Manual 6-Speed", "Switchable ABS", "Spoke Wheels", "Luggage Racks", "Windscreen"},
			Location:    "Mountain Pass Rentals", Rating: rating(4.8), IsAvailable: true, Amount: 5, CylinderVolume: cc(471),
		},
		{
			Id: "bike3", Name: "Speedster R1000", Category: bike.Sport,
			ImageUrl: "https://placehold.co/600x400.png", PricePerDay: 120,
			Description: "Experience thrilling performance with this high-powered sportbike. Precision handling and blistering acceleration.",
			Features:    []string{"Manual 6-Speed", "Quick Shifter", "Traction Control", "Full Fairing", "Performance Exhaust"},
			Location:    "Speedway Rentals Co.", Rating: rating(4.9), IsAvailable: false, Amount: 3, CylinderVolume: cc(998),
		},
		{
			Id: "bike4", Name: "Classic Rider V-Twin", Category: bike.Cruiser,
			ImageUrl: "https://placehold.co/600x400.png", PricePerDay: 90,
			Description: "Ride in style with this iconic V-twin cruiser. Timeless design combined with modern comfort for the open road.",
			Features:    []string{"Manual 5-Speed", "Chrome Accents", "Leather Saddlebags", "Comfort Seat", "Loud Pipes"},
			Location:    "Route 66 Motorbikes", Rating: rating(4.7), IsAvailable: true, Amount: 7, CylinderVolume: cc(1200),
		},
		{
			Id: "bike5", Name: "EcoVolt Commuter", Category: bike.Electric,
			ImageUrl: "https://placehold.co/600x400.png", PricePerDay: 55,
			Description: "Silent, eco-friendly, and zippy. The ideal electric scooter for sustainable urban mobility.",
			Features:    []string{"Automatic", "Regenerative Braking", "Digital Display", "Removable Battery", "Quiet Operation"},
			Location:    "GreenWheels Hub", Rating: rating(4.3), IsAvailable: true, Amount: 12,
		},
	}

	users := []user.User{
		{Id: "user1", Email: "renter@motorent.com", Name: "Alice Wonderland", Role: user.Renter, CreatedAt: day(-90)},
		{Id: "user2", Email: "admin@motorent.com", Name: "Bob The Builder", Role: user.Admin, CreatedAt: day(-365)},
		{Id: "user3", Email: "staff@motorent.com", Name: "Charlie Brown", Role: user.Staff, CreatedAt: day(-200)},
	}

	rentals := []rental.Rental{
		{
			Id: "rental1", OrderId: "order1", BikeId: "bike1", UserId: "user1",
			StartDate: day(-10), EndDate: day(-7), TotalPrice: 45 * 3, Options: []string{"helmet"},
			Status: rental.Completed, BikeName: "Urban Sprinter Z250", OrderDate: day(-12),
		},
		{
			Id: "rental2", OrderId: "order2", BikeId: "bike2", UserId: "user1",
			StartDate: day(2), EndDate: day(5), TotalPrice: 75 * 3, Options: []string{"helmet", "insurance"},
			Status: rental.Upcoming, BikeName: "Adventure Pro 500X", OrderDate: day(-1),
		},
		{
			Id: "rental3", OrderId: "order3", BikeId: "bike4", UserId: "user1",
			StartDate: day(-30), EndDate: day(-25), TotalPrice: 90 * 5, Options: []string{"helmet", "luggage"},
			Status: rental.Completed, BikeName: "Classic Rider V-Twin", OrderDate: day(-32),
		},
	}

	messages := []support.Message{
		{
			Id: "msg1", UserId: "user1", Name: "Alice Wonderland", Email: "renter@motorent.com",
			Subject: "Helmet sizes", Body: "Do you have XL helmets at Mountain Pass Rentals?",
			Status: support.New, CreatedAt: now.Add(-2 * time.Hour),
		},
		{
			Id: "msg2", Name: "Dan Rider", Email: "dan@example.com",
			Subject: "Late pickup", Body: "Can I pick up my bike after 8pm at Downtown Central?",
			Status: support.InProgress, CreatedAt: now.Add(-26 * time.Hour),
		},
		{
			Id: "msg3", Name: "Eve Moto", Email: "eve@example.com",
			Subject: "Insurance coverage", Body: "Does the full coverage insurance include theft?",
			Status: support.Replied, Reply: "Yes, theft is covered with a 200 deductible.",
			CreatedAt: now.Add(-72 * time.Hour),
		},
		{
			Id: "msg4", UserId: "user1", Name: "Alice Wonderland", Email: "renter@motorent.com",
			Subject: "Refund", Body: "My cancelled rental was refunded twice.",
			Status: support.Resolved, Reply: "Thanks, we reversed the duplicate refund.",
			CreatedAt: now.Add(-240 * time.Hour),
		},
	}

	return Seed{Bikes: bikes, Users: users, Rentals: rentals, Messages: messages}
}

// Load writes the seed through the repositories. It does nothing when the
// catalog already has bikes, so restarts against a real database are safe.
func (s Seed) Load(ctx context.Context, bikes bike.Repository, rentals rental.Repository, users user.Repository, messages support.Repository) error {
	existing, err := bikes.List(ctx, bike.Filter{})
	if err != nil {
		return fmt.Errorf("check catalog before seeding: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("catalog already populated, skipping seed", "bikes", len(existing))
		return nil
	}

	for i := range s.Bikes {
		if err := bikes.Save(ctx, &s.Bikes[i]); err != nil {
			return err
		}
	}
	for i := range s.Users {
		if err := users.Save(ctx, &s.Users[i]); err != nil {
			return err
		}
	}
	accept := func(*bike.Bike, []rental.Rental) error { return nil }
	for _, r := range s.Rentals {
		if err := rentals.Reserve(ctx, r.BikeId, []rental.Rental{r}, accept); err != nil {
			return err
		}
	}
	for i := range s.Messages {
		if err := messages.Create(ctx, &s.Messages[i]); err != nil {
			return err
		}
	}
	slog.Info("seed data loaded", "bikes", len(s.Bikes), "users", len(s.Users), "rentals", len(s.Rentals))
	return nil
}
