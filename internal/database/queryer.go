package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Queryer is satisfied by *pgxpool.Pool and pgx.Tx, so repositories run the same queries inside and
// outside a transaction.
type Queryer interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

type TagKind string

const (
	ClassTag TagKind = "class"
	EventTag TagKind = "event"
)

// UpsertTags returns the ids of the named tags of the given kind, creating missing ones.
func UpsertTags(ctx context.Context, q Queryer, kind TagKind, names []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(names))
	query := `INSERT INTO tag (id, kind, name) VALUES ($1, $2, $3)
			  ON CONFLICT (kind, name) DO UPDATE SET name = EXCLUDED.name
			  RETURNING id`
	for _, name := range names {
		var id uuid.UUID
		if err := q.QueryRow(ctx, query, uuid.New(), string(kind), name).Scan(&id); err != nil {
			return nil, fmt.Errorf("could not upsert tag %q: %w", name, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseIds converts the text form of an aggregated uuid array.
func ParseIds(values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", v, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
