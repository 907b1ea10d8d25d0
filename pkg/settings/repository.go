package settings

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Repository stores settings as key/value pairs.
type Repository interface {
	Load(ctx context.Context) (map[string]string, error)
	// Save upserts all given values at once.
	Save(ctx context.Context, values map[string]string) error
}

type repositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) Load(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value FROM app_setting`)
	if err != nil {
		err = fmt.Errorf("could not query settings: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			err = fmt.Errorf("error scanning setting: %w", err)
			log.Error(err)
			return nil, err
		}
		values[key] = value
	}
	return values, rows.Err()
}

func (r *repositoryImpl) Save(ctx context.Context, values map[string]string) error {
	keys := make([]string, 0, len(values))
	vals := make([]string, 0, len(values))
	for k, v := range values {
		keys = append(keys, k)
		vals = append(vals, v)
	}
	query := `INSERT INTO app_setting (key, value)
			  SELECT * FROM unnest($1::text[], $2::text[])
			  ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := r.db.Exec(ctx, query, keys, vals); err != nil {
		err = fmt.Errorf("could not save settings: %w", err)
		log.Error(err)
		return err
	}
	return nil
}
