package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/kakaka820/Titanic/pkg/data"
)

const schema = `CREATE TABLE IF NOT EXISTS passengers (
	id SERIAL PRIMARY KEY,
	passenger_id TEXT NOT NULL UNIQUE,
	home_planet TEXT,
	cryo_sleep BOOLEAN,
	cabin TEXT,
	destination TEXT,
	age REAL,
	vip BOOLEAN,
	room_service REAL DEFAULT 0,
	food_court REAL DEFAULT 0,
	shopping_mall REAL DEFAULT 0,
	spa REAL DEFAULT 0,
	vr_deck REAL DEFAULT 0,
	name TEXT,
	transported BOOLEAN,
	total_spent REAL DEFAULT 0,
	spending_flag BOOLEAN DEFAULT FALSE,
	cabin_deck TEXT,
	cabin_num TEXT,
	cabin_side TEXT,
	group_size INTEGER DEFAULT 1
)`

const passengerColumns = `passenger_id, home_planet, cryo_sleep, cabin, destination, age, vip,
	room_service, food_court, shopping_mall, spa, vr_deck, name, transported,
	total_spent, spending_flag, cabin_deck, cabin_num, cabin_side, group_size`

const insertPassenger = `INSERT INTO passengers (` + passengerColumns + `) VALUES (
	:passenger_id, :home_planet, :cryo_sleep, :cabin, :destination, :age, :vip,
	:room_service, :food_court, :shopping_mall, :spa, :vr_deck, :name, :transported,
	:total_spent, :spending_flag, :cabin_deck, :cabin_num, :cabin_side, :group_size
)`

// PostgresStore keeps passengers in a Postgres table.
type PostgresStore struct {
	db *sqlx.DB
}

// OpenPostgres connects to url and makes sure the passengers table exists.
func OpenPostgres(ctx context.Context, url string) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := NewPostgresStore(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the passengers table if it is missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create passengers table: %w", err)
	}
	return nil
}

// SeedPassengers replaces the table contents in one transaction.
func (s *PostgresStore) SeedPassengers(ctx context.Context, ps []data.Passenger) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM passengers`); err != nil {
		return fmt.Errorf("failed to clear passengers: %w", err)
	}
	stmt, err := tx.PrepareNamedContext(ctx, insertPassenger)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range ps {
		if _, err := stmt.ExecContext(ctx, &ps[i]); err != nil {
			return fmt.Errorf("failed to insert passenger %s: %w", ps[i].PassengerID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}
	return nil
}

// Passengers returns every row ordered by insertion.
func (s *PostgresStore) Passengers(ctx context.Context) ([]data.Passenger, error) {
	passengers := make([]data.Passenger, 0)
	query := `SELECT ` + passengerColumns + ` FROM passengers ORDER BY id`
	if err := s.db.SelectContext(ctx, &passengers, query); err != nil {
		return nil, fmt.Errorf("failed to query passengers: %w", err)
	}
	return passengers, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
