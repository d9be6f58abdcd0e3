package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS bikes (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	price_per_day NUMERIC(10,2) NOT NULL CHECK (price_per_day > 0),
	description TEXT NOT NULL,
	features TEXT[] NOT NULL DEFAULT '{}',
	location TEXT NOT NULL,
	rating DOUBLE PRECISION,
	is_available BOOLEAN NOT NULL DEFAULT TRUE,
	amount INT NOT NULL CHECK (amount >= 0),
	cylinder_volume INT
);

CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	role TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	date_of_birth TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	credential_id_number TEXT NOT NULL DEFAULT '',
	credential_id_image_url TEXT NOT NULL DEFAULT ''
);

ALTER TABLE users ADD COLUMN IF NOT EXISTS date_of_birth TEXT NOT NULL DEFAULT '';
ALTER TABLE users ADD COLUMN IF NOT EXISTS address TEXT NOT NULL DEFAULT '';
ALTER TABLE users ADD COLUMN IF NOT EXISTS credential_id_number TEXT NOT NULL DEFAULT '';
ALTER TABLE users ADD COLUMN IF NOT EXISTS credential_id_image_url TEXT NOT NULL DEFAULT '';

CREATE TABLE IF NOT EXISTS rentals (
	id TEXT PRIMARY KEY,
	order_id TEXT NOT NULL,
	bike_id TEXT NOT NULL REFERENCES bikes(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL,
	start_date DATE NOT NULL,
	end_date DATE NOT NULL CHECK (end_date >= start_date),
	total_price NUMERIC(10,2) NOT NULL,
	options TEXT[] NOT NULL DEFAULT '{}',
	status TEXT NOT NULL,
	bike_name TEXT NOT NULL,
	order_date TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_rentals_bike_status ON rentals (bike_id, status);
CREATE INDEX IF NOT EXISTS idx_rentals_user ON rentals (user_id);
`

func InitializeSchema(ctx context.Context, db *sqlx.DB) error {
	slog.Info("checking database schema")
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}
