package timetable

import (
	"context"
	"errors"
	"fmt"

	"github.com/classon/classon/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrPeriodNotFound = errors.New("period not found")

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	List(ctx context.Context) ([]Period, error)
	Get(ctx context.Context, id uuid.UUID) (Period, error)
	Store(ctx context.Context, period Period) (Period, error)
	Update(ctx context.Context, period Period) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) (int, error)
	// UpdatePositions sets the index of every listed period to its position in ids.
	UpdatePositions(ctx context.Context, ids []uuid.UUID) error
}

type repositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepo(db *pgxpool.Pool) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) getQueryer() database.Queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(&repositoryImpl{db: r.db, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *repositoryImpl) List(ctx context.Context) ([]Period, error) {
	query := `SELECT id, position, start_minute, duration_minutes FROM period ORDER BY position, start_minute`
	rows, err := r.getQueryer().Query(ctx, query)
	if err != nil {
		err = fmt.Errorf("could not query periods: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	periods := make([]Period, 0)
	for rows.Next() {
		var p Period
		if err := rows.Scan(&p.Id, &p.Index, &p.StartMinute, &p.DurationMinutes); err != nil {
			err = fmt.Errorf("error scanning period: %w", err)
			log.Error(err)
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (r *repositoryImpl) Get(ctx context.Context, id uuid.UUID) (Period, error) {
	query := `SELECT id, position, start_minute, duration_minutes FROM period WHERE id = $1`
	var p Period
	err := r.getQueryer().QueryRow(ctx, query, id).Scan(&p.Id, &p.Index, &p.StartMinute, &p.DurationMinutes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, ErrPeriodNotFound
		}
		err = fmt.Errorf("could not get period: %w", err)
		log.Error(err)
		return Period{}, err
	}
	return p, nil
}

func (r *repositoryImpl) Store(ctx context.Context, period Period) (Period, error) {
	period.Id = uuid.New()
	query := `INSERT INTO period (id, position, start_minute, duration_minutes) VALUES ($1, $2, $3, $4)`
	_, err := r.getQueryer().Exec(ctx, query, period.Id, period.Index, period.StartMinute, period.DurationMinutes)
	if err != nil {
		err = fmt.Errorf("could not store period: %w", err)
		log.Error(err)
		return Period{}, err
	}
	return period, nil
}

func (r *repositoryImpl) Update(ctx context.Context, period Period) error {
	query := `UPDATE period SET start_minute = $1, duration_minutes = $2 WHERE id = $3`
	result, err := r.getQueryer().Exec(ctx, query, period.StartMinute, period.DurationMinutes, period.Id)
	if err != nil {
		err = fmt.Errorf("could not update period: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPeriodNotFound
	}
	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.getQueryer().Exec(ctx, `DELETE FROM period WHERE id = $1`, id)
	if err != nil {
		err = fmt.Errorf("could not delete period: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPeriodNotFound
	}
	return nil
}

func (r *repositoryImpl) DeleteAll(ctx context.Context) (int, error) {
	result, err := r.getQueryer().Exec(ctx, `DELETE FROM period`)
	if err != nil {
		err = fmt.Errorf("could not delete periods: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(result.RowsAffected()), nil
}

func (r *repositoryImpl) UpdatePositions(ctx context.Context, ids []uuid.UUID) error {
	query := `UPDATE period SET position = $1 WHERE id = $2`
	for position, id := range ids {
		result, err := r.getQueryer().Exec(ctx, query, position, id)
		if err != nil {
			err = fmt.Errorf("could not update period position: %w", err)
			log.Error(err)
			return err
		}
		if result.RowsAffected() == 0 {
			return ErrPeriodNotFound
		}
	}
	return nil
}
