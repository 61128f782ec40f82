package watchlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresPersister keeps each named watchlist as one row holding the JSON
// encoded code array
type PostgresPersister struct {
	db        *sql.DB
	tableName string
	name      string
}

// NewPostgresPersister connects, makes sure the table exists and returns a
// persister for the watchlist called name
func NewPostgresPersister(ctx context.Context, connStr, tableName, name string) (*PostgresPersister, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p, err := newPostgresPersister(ctx, db, tableName, name)
	if err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func newPostgresPersister(ctx context.Context, db *sql.DB, tableName, name string) (*PostgresPersister, error) {
	if tableName == "" {
		tableName = "radar_watchlists"
	}
	if name == "" {
		name = "default"
	}
	p := &PostgresPersister{db: db, tableName: tableName, name: name}

	if err := p.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("ensure table: %w", err)
	}
	return p, nil
}

// ensureTable creates the watchlist table if it doesn't exist
func (p *PostgresPersister) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			codes JSONB NOT NULL DEFAULT '[]',
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`, p.tableName)

	_, err := p.db.ExecContext(ctx, query)
	return err
}

func (p *PostgresPersister) Load(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT codes FROM %s WHERE name = $1`, p.tableName)

	var raw []byte
	err := p.db.QueryRowContext(ctx, query, p.name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select watchlist: %w", err)
	}
	return decodeCodes(raw)
}

func (p *PostgresPersister) Save(ctx context.Context, codes []string) error {
	data, err := encodeCodes(codes)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (name, codes, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET
			codes = EXCLUDED.codes,
			updated_at = NOW()
	`, p.tableName)

	if _, err := p.db.ExecContext(ctx, query, p.name, string(data)); err != nil {
		return fmt.Errorf("upsert watchlist: %w", err)
	}
	return nil
}

// Close closes the database connection
func (p *PostgresPersister) Close() error {
	return p.db.Close()
}
