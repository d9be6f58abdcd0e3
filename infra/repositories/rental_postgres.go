package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/giovaniif/motorent/domain/availability"
	"github.com/giovaniif/motorent/domain/rental"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const rentalColumns = `id, order_id, bike_id, user_id, start_date, end_date, total_price, options, status, bike_name, order_date`

type rentalRow struct {
	Id         string         `db:"id"`
	OrderId    string         `db:"order_id"`
	BikeId     string         `db:"bike_id"`
	UserId     string         `db:"user_id"`
	StartDate  time.Time      `db:"start_date"`
	EndDate    time.Time      `db:"end_date"`
	TotalPrice float64        `db:"total_price"`
	Options    pq.StringArray `db:"options"`
	Status     string         `db:"status"`
	BikeName   string         `db:"bike_name"`
	OrderDate  time.Time      `db:"order_date"`
}

func (r rentalRow) toRental() rental.Rental {
	return rental.Rental{
		Id:         r.Id,
		OrderId:    r.OrderId,
		BikeId:     r.BikeId,
		UserId:     r.UserId,
		StartDate:  availability.Day(r.StartDate),
		EndDate:    availability.Day(r.EndDate),
		TotalPrice: r.TotalPrice,
		Options:    []string(r.Options),
		Status:     rental.Status(r.Status),
		BikeName:   r.BikeName,
		OrderDate:  r.OrderDate,
	}
}

func toRentals(rows []rentalRow) []rental.Rental {
	out := make([]rental.Rental, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toRental())
	}
	return out
}

// RentalRepositoryPostgres locks the bike row for the duration of a
// reservation so concurrent checkouts for the same model queue up.
type RentalRepositoryPostgres struct {
	db *sqlx.DB
}

func NewRentalRepositoryPostgres(db *sqlx.DB) *RentalRepositoryPostgres {
	return &RentalRepositoryPostgres{db: db}
}

func (r *RentalRepositoryPostgres) FindById(ctx context.Context, rentalId string) (*rental.Rental, error) {
	var row rentalRow
	err := r.db.GetContext(ctx, &row, `SELECT `+rentalColumns+` FROM rentals WHERE id = $1`, rentalId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", rental.ErrNotFound, rentalId)
		}
		return nil, fmt.Errorf("find rental %s: %w", rentalId, err)
	}
	out := row.toRental()
	return &out, nil
}

func (r *RentalRepositoryPostgres) FindByBike(ctx context.Context, bikeId string) ([]rental.Rental, error) {
	return r.List(ctx, rental.Filter{BikeId: bikeId})
}

func (r *RentalRepositoryPostgres) List(ctx context.Context, filter rental.Filter) ([]rental.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE 1=1`
	var args []any
	if filter.BikeId != "" {
		args = append(args, filter.BikeId)
		query += fmt.Sprintf(" AND bike_id = $%d", len(args))
	}
	if filter.UserId != "" {
		args = append(args, filter.UserId)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, pq.StringArray(statuses))
		query += fmt.Sprintf(" AND status = ANY($%d)", len(args))
	}
	query += " ORDER BY start_date, id"

	var rows []rentalRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list rentals: %w", err)
	}
	return toRentals(rows), nil
}

func (r *RentalRepositoryPostgres) Reserve(ctx context.Context, bikeId string, rentals []rental.Rental, guard rental.Guard) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reservation: %w", err)
	}
	defer tx.Rollback()

	locked, err := getBike(ctx, tx, `SELECT `+bikeColumns+` FROM bikes WHERE id = $1 FOR UPDATE`, bikeId)
	if err != nil {
		return err
	}

	var rows []rentalRow
	err = tx.SelectContext(ctx, &rows,
		`SELECT `+rentalColumns+` FROM rentals WHERE bike_id = $1 AND status IN ('Upcoming', 'Active')`, bikeId)
	if err != nil {
		return fmt.Errorf("load reservations for %s: %w", bikeId, err)
	}
	if err := guard(locked, toRentals(rows)); err != nil {
		return err
	}

	for _, rt := range rentals {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rentals (`+rentalColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO NOTHING`,
			rt.Id, rt.OrderId, rt.BikeId, rt.UserId, rt.StartDate, rt.EndDate, rt.TotalPrice,
			pq.StringArray(rt.Options), string(rt.Status), rt.BikeName, rt.OrderDate,
		)
		if err != nil {
			return fmt.Errorf("insert rental %s: %w", rt.Id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reservation: %w", err)
	}
	return nil
}

func (r *RentalRepositoryPostgres) UpdateStatus(ctx context.Context, rentalId string, from, to rental.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rentals SET status = $1 WHERE id = $2 AND status = $3`, string(to), rentalId, string(from))
	if err != nil {
		return fmt.Errorf("update rental %s: %w", rentalId, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	var current string
	err = r.db.GetContext(ctx, &current, `SELECT status FROM rentals WHERE id = $1`, rentalId)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", rental.ErrNotFound, rentalId)
	}
	if err != nil {
		return fmt.Errorf("update rental %s: %w", rentalId, err)
	}
	return fmt.Errorf("%w: %s is %s", rental.ErrStaleStatus, rentalId, current)
}

func (r *RentalRepositoryPostgres) CompleteOverdue(ctx context.Context, today time.Time) ([]rental.Rental, error) {
	var rows []rentalRow
	err := r.db.SelectContext(ctx, &rows, `
		UPDATE rentals SET status = 'Completed'
		WHERE status = 'Active' AND end_date < $1
		RETURNING `+rentalColumns, availability.Day(today))
	if err != nil {
		return nil, fmt.Errorf("complete overdue rentals: %w", err)
	}
	return toRentals(rows), nil
}
