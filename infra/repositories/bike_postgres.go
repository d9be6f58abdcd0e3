package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/giovaniif/motorent/domain/bike"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const bikeColumns = `id, name, category, image_url, price_per_day, description, features, location, rating, is_available, amount, cylinder_volume`

type bikeRow struct {
	Id             string         `db:"id"`
	Name           string         `db:"name"`
	Category       string         `db:"category"`
	ImageUrl       string         `db:"image_url"`
	PricePerDay    float64        `db:"price_per_day"`
	Description    string         `db:"description"`
	Features       pq.StringArray `db:"features"`
	Location       string         `db:"location"`
	Rating         *float64       `db:"rating"`
	IsAvailable    bool           `db:"is_available"`
	Amount         int32          `db:"amount"`
	CylinderVolume *int32         `db:"cylinder_volume"`
}

func (r bikeRow) toBike() *bike.Bike {
	return &bike.Bike{
		Id:             r.Id,
		Name:           r.Name,
		Category:       bike.Category(r.Category),
		ImageUrl:       r.ImageUrl,
		PricePerDay:    r.PricePerDay,
		Description:    r.Description,
		Features:       []string(r.Features),
		Location:       r.Location,
		Rating:         r.Rating,
		IsAvailable:    r.IsAvailable,
		Amount:         r.Amount,
		CylinderVolume: r.CylinderVolume,
	}
}

type BikeRepositoryPostgres struct {
	db *sqlx.DB
}

func NewBikeRepositoryPostgres(db *sqlx.DB) *BikeRepositoryPostgres {
	return &BikeRepositoryPostgres{db: db}
}

func (r *BikeRepositoryPostgres) Get(ctx context.Context, bikeId string) (*bike.Bike, error) {
	return getBike(ctx, r.db, `SELECT `+bikeColumns+` FROM bikes WHERE id = $1`, bikeId)
}

func getBike(ctx context.Context, q sqlx.QueryerContext, query, bikeId string) (*bike.Bike, error) {
	var row bikeRow
	if err := sqlx.GetContext(ctx, q, &row, query, bikeId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", bike.ErrNotFound, bikeId)
		}
		return nil, fmt.Errorf("get bike %s: %w", bikeId, err)
	}
	return row.toBike(), nil
}

// List filters by category and location in SQL; cylinder classes are applied
// in Go since electric bikes carry no volume.
func (r *BikeRepositoryPostgres) List(ctx context.Context, filter bike.Filter) ([]bike.Bike, error) {
	query := `SELECT ` + bikeColumns + ` FROM bikes WHERE 1=1`
	var args []any
	if filter.Location != "" && filter.Location != bike.AnyLocation {
		args = append(args, filter.Location)
		query += fmt.Sprintf(" AND lower(location) = lower($%d)", len(args))
	}
	if filter.Category != "" && filter.Category != "all" {
		args = append(args, string(filter.Category))
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	query += " ORDER BY id"

	var rows []bikeRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list bikes: %w", err)
	}
	out := make([]bike.Bike, 0, len(rows))
	for _, row := range rows {
		b := row.toBike()
		if filter.Matches(b) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *BikeRepositoryPostgres) Create(ctx context.Context, b *bike.Bike) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO bikes (`+bikeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING`,
		b.Id, b.Name, string(b.Category), b.ImageUrl, b.PricePerDay, b.Description,
		pq.StringArray(b.Features), b.Location, b.Rating, b.IsAvailable, b.Amount, b.CylinderVolume,
	)
	if err != nil {
		return fmt.Errorf("create bike %s: %w", b.Id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", bike.ErrAlreadyExists, b.Id)
	}
	return nil
}

func (r *BikeRepositoryPostgres) Save(ctx context.Context, b *bike.Bike) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bikes (`+bikeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			image_url = EXCLUDED.image_url,
			price_per_day = EXCLUDED.price_per_day,
			description = EXCLUDED.description,
			features = EXCLUDED.features,
			location = EXCLUDED.location,
			rating = EXCLUDED.rating,
			is_available = EXCLUDED.is_available,
			amount = EXCLUDED.amount,
			cylinder_volume = EXCLUDED.cylinder_volume`,
		b.Id, b.Name, string(b.Category), b.ImageUrl, b.PricePerDay, b.Description,
		pq.StringArray(b.Features), b.Location, b.Rating, b.IsAvailable, b.Amount, b.CylinderVolume,
	)
	if err != nil {
		return fmt.Errorf("save bike %s: %w", b.Id, err)
	}
	return nil
}

func (r *BikeRepositoryPostgres) Delete(ctx context.Context, bikeId string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bikes WHERE id = $1`, bikeId)
	if err != nil {
		return fmt.Errorf("delete bike %s: %w", bikeId, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", bike.ErrNotFound, bikeId)
	}
	return nil
}

func (r *BikeRepositoryPostgres) Locations(ctx context.Context) ([]string, error) {
	var out []string
	if err := r.db.SelectContext(ctx, &out, `SELECT DISTINCT location FROM bikes ORDER BY location`); err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return out, nil
}
