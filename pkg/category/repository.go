package category

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/classon/classon/internal/database"
	"github.com/classon/classon/pkg/color"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrCategoryNotFound = errors.New("category not found")
var ErrEventNotFound = errors.New("event not found")
var ErrAlarmNotFound = errors.New("alarm not found")

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	// ListCategories returns the categories ordered by position with their events.
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (Category, error)
	StoreCategory(ctx context.Context, category Category) (Category, error)
	UpdateCategory(ctx context.Context, category Category) error
	// DeleteCategory deletes the category and, one by one, its events with their alarms. It returns
	// the number of deleted events.
	DeleteCategory(ctx context.Context, id uuid.UUID) (int, error)
	UpdateCategoryPositions(ctx context.Context, ids []uuid.UUID) error
	// MaxCategoryPosition returns -1 when there are no categories.
	MaxCategoryPosition(ctx context.Context) (int, error)
	ListEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (Event, error)
	// StoreEvent inserts the event with its tags and alarms.
	StoreEvent(ctx context.Context, event Event) (Event, error)
	// UpdateEvent overwrites the event and replaces its tags and alarms.
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	UpdateEventPositions(ctx context.Context, ids []uuid.UUID) error
	// DueAlarms returns unfired alarms with from < TriggerAt <= to, oldest first.
	DueAlarms(ctx context.Context, from, to time.Time) ([]DueAlarm, error)
	MarkAlarmFired(ctx context.Context, id uuid.UUID) error
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

func (r *repositoryImpl) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := r.queryCategories(ctx, `SELECT id, name, position, color, description FROM category ORDER BY position`)
	if err != nil {
		return nil, err
	}
	events, err := r.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[uuid.UUID]int, len(categories))
	for i, c := range categories {
		index[c.Id] = i
	}
	for _, e := range events {
		if i, ok := index[e.CategoryId]; ok {
			categories[i].Events = append(categories[i].Events, e)
		}
	}
	return categories, nil
}

func (r *repositoryImpl) GetCategory(ctx context.Context, id uuid.UUID) (Category, error) {
	categories, err := r.queryCategories(ctx, `SELECT id, name, position, color, description FROM category WHERE id = $1`, id)
	if err != nil {
		return Category{}, err
	}
	if len(categories) == 0 {
		return Category{}, ErrCategoryNotFound
	}
	category := categories[0]
	category.Events, err = r.queryEvents(ctx, selectEvents+` WHERE e.category_id = $1 ORDER BY e.position`, id)
	if err != nil {
		return Category{}, err
	}
	return category, nil
}

func (r *repositoryImpl) queryCategories(ctx context.Context, query string, args ...any) ([]Category, error) {
	rows, err := r.getQueryer().Query(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("could not query categories: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var (
			c        Category
			colorHex string
		)
		if err := rows.Scan(&c.Id, &c.Name, &c.Position, &colorHex, &c.Description); err != nil {
			err = fmt.Errorf("error scanning category: %w", err)
			log.Error(err)
			return nil, err
		}
		c.Color = readColor(colorHex, c.Id)
		c.Events = []Event{}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func readColor(hex string, owner uuid.UUID) color.RGB {
	c, err := color.ParseHex(hex)
	if err != nil {
		log.Warnf("record %s has unreadable color %q: %v", owner, hex, err)
		return color.Accent
	}
	return c
}

func (r *repositoryImpl) StoreCategory(ctx context.Context, category Category) (Category, error) {
	category.Id = uuid.New()
	query := `INSERT INTO category (id, name, position, color, description) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.getQueryer().Exec(ctx, query, category.Id, category.Name, category.Position, category.Color.Hex(), category.Description)
	if err != nil {
		err = fmt.Errorf("could not store category: %w", err)
		log.Error(err)
		return Category{}, err
	}
	category.Events = []Event{}
	return category, nil
}

func (r *repositoryImpl) UpdateCategory(ctx context.Context, category Category) error {
	query := `UPDATE category SET name = $1, color = $2, description = $3 WHERE id = $4`
	result, err := r.getQueryer().Exec(ctx, query, category.Name, category.Color.Hex(), category.Description, category.Id)
	if err != nil {
		err = fmt.Errorf("could not update category: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (r *repositoryImpl) DeleteCategory(ctx context.Context, id uuid.UUID) (int, error) {
	rows, err := r.getQueryer().Query(ctx, `SELECT id FROM event WHERE category_id = $1`, id)
	if err != nil {
		err = fmt.Errorf("could not query category events: %w", err)
		log.Error(err)
		return 0, err
	}
	eventIds, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return 0, fmt.Errorf("error scanning event ids: %w", err)
	}
	for _, eventId := range eventIds {
		if err := r.DeleteEvent(ctx, eventId); err != nil {
			return 0, err
		}
	}

	result, err := r.getQueryer().Exec(ctx, `DELETE FROM category WHERE id = $1`, id)
	if err != nil {
		err = fmt.Errorf("could not delete category: %w", err)
		log.Error(err)
		return 0, err
	}
	if result.RowsAffected() == 0 {
		return 0, ErrCategoryNotFound
	}
	return len(eventIds), nil
}

func (r *repositoryImpl) UpdateCategoryPositions(ctx context.Context, ids []uuid.UUID) error {
	query := `UPDATE category SET position = $1 WHERE id = $2`
	for position, id := range ids {
		result, err := r.getQueryer().Exec(ctx, query, position, id)
		if err != nil {
			err = fmt.Errorf("could not update category position: %w", err)
			log.Error(err)
			return err
		}
		if result.RowsAffected() == 0 {
			return ErrCategoryNotFound
		}
	}
	return nil
}

func (r *repositoryImpl) MaxCategoryPosition(ctx context.Context) (int, error) {
	var position int
	err := r.getQueryer().QueryRow(ctx, `SELECT COALESCE(MAX(position), -1) FROM category`).Scan(&position)
	if err != nil {
		err = fmt.Errorf("could not find max category position: %w", err)
		log.Error(err)
		return 0, err
	}
	return position, nil
}

const selectEvents = `SELECT
    			e.id,
    			e.category_id,
    			e.position,
    			e.name,
    			e.starts_at,
    			e.all_day,
    			e.duration_minutes,
    			e.need_loop,
    			e.loop_days,
    			e.color,
    			e.description,
    			e.details,
    			e.is_reminder,
    			ARRAY(SELECT t.name FROM event_tag et JOIN tag t ON t.id = et.tag_id
    			      WHERE et.event_id = e.id ORDER BY t.name)
			  FROM event e`

func (r *repositoryImpl) ListEvents(ctx context.Context) ([]Event, error) {
	return r.queryEvents(ctx, selectEvents+` ORDER BY e.starts_at, e.position`)
}

func (r *repositoryImpl) GetEvent(ctx context.Context, id uuid.UUID) (Event, error) {
	events, err := r.queryEvents(ctx, selectEvents+` WHERE e.id = $1`, id)
	if err != nil {
		return Event{}, err
	}
	if len(events) == 0 {
		return Event{}, ErrEventNotFound
	}
	return events[0], nil
}

func (r *repositoryImpl) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := r.getQueryer().Query(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("could not query events: %w", err)
		log.Error(err)
		return nil, err
	}
	events := make([]Event, 0)
	for rows.Next() {
		var (
			e        Event
			colorHex string
		)
		if err := rows.Scan(
			&e.Id,
			&e.CategoryId,
			&e.Position,
			&e.Name,
			&e.Date,
			&e.AllDay,
			&e.DurationMinutes,
			&e.NeedLoop,
			&e.LoopDays,
			&colorHex,
			&e.Description,
			&e.Details,
			&e.IsReminder,
			&e.Tags,
		); err != nil {
			rows.Close()
			err = fmt.Errorf("error scanning event: %w", err)
			log.Error(err)
			return nil, err
		}
		e.Color = readColor(colorHex, e.Id)
		e.Alarms = []Alarm{}
		events = append(events, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return events, nil
	}

	ids := make([]uuid.UUID, 0, len(events))
	index := make(map[uuid.UUID]int, len(events))
	for i, e := range events {
		ids = append(ids, e.Id)
		index[e.Id] = i
	}
	alarms, err := r.queryAlarms(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, a := range alarms {
		i := index[a.EventId]
		events[i].Alarms = append(events[i].Alarms, a)
	}
	return events, nil
}

func (r *repositoryImpl) queryAlarms(ctx context.Context, eventIds []uuid.UUID) ([]Alarm, error) {
	query := `SELECT id, event_id, name, trigger_at, fired FROM alarm WHERE event_id = ANY($1) ORDER BY trigger_at`
	rows, err := r.getQueryer().Query(ctx, query, eventIds)
	if err != nil {
		err = fmt.Errorf("could not query alarms: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	alarms := make([]Alarm, 0)
	for rows.Next() {
		var a Alarm
		if err := rows.Scan(&a.Id, &a.EventId, &a.Name, &a.TriggerAt, &a.Fired); err != nil {
			return nil, fmt.Errorf("error scanning alarm: %w", err)
		}
		alarms = append(alarms, a)
	}
	return alarms, rows.Err()
}

func (r *repositoryImpl) StoreEvent(ctx context.Context, event Event) (Event, error) {
	event.Id = uuid.New()
	query := `INSERT INTO event (
                    id,
                    category_id,
                    position,
                    name,
                    starts_at,
                    all_day,
                    duration_minutes,
                    need_loop,
                    loop_days,
                    color,
                    description,
                    details,
                    is_reminder
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.getQueryer().Exec(ctx, query,
		event.Id,
		event.CategoryId,
		event.Position,
		event.Name,
		event.Date,
		event.AllDay,
		event.DurationMinutes,
		event.NeedLoop,
		event.LoopDays,
		event.Color.Hex(),
		event.Description,
		event.Details,
		event.IsReminder,
	)
	if err != nil {
		err = fmt.Errorf("could not store event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return r.storeEventChildren(ctx, event)
}

func (r *repositoryImpl) storeEventChildren(ctx context.Context, event Event) (Event, error) {
	tagIds, err := database.UpsertTags(ctx, r.getQueryer(), database.EventTag, event.Tags)
	if err != nil {
		log.Error(err)
		return Event{}, err
	}
	for _, tagId := range tagIds {
		if _, err := r.getQueryer().Exec(ctx, `INSERT INTO event_tag (event_id, tag_id) VALUES ($1, $2)`, event.Id, tagId); err != nil {
			err = fmt.Errorf("could not tag event: %w", err)
			log.Error(err)
			return Event{}, err
		}
	}

	alarms := make([]Alarm, 0, len(event.Alarms))
	query := `INSERT INTO alarm (id, event_id, name, trigger_at, fired) VALUES ($1, $2, $3, $4, $5)`
	for _, a := range event.Alarms {
		a.Id = uuid.New()
		a.EventId = event.Id
		if _, err := r.getQueryer().Exec(ctx, query, a.Id, a.EventId, a.Name, a.TriggerAt, a.Fired); err != nil {
			err = fmt.Errorf("could not store alarm: %w", err)
			log.Error(err)
			return Event{}, err
		}
		alarms = append(alarms, a)
	}
	event.Alarms = alarms
	return event, nil
}

func (r *repositoryImpl) deleteEventChildren(ctx context.Context, eventId uuid.UUID) error {
	if _, err := r.getQueryer().Exec(ctx, `DELETE FROM alarm WHERE event_id = $1`, eventId); err != nil {
		err = fmt.Errorf("could not delete alarms: %w", err)
		log.Error(err)
		return err
	}
	if _, err := r.getQueryer().Exec(ctx, `DELETE FROM event_tag WHERE event_id = $1`, eventId); err != nil {
		err = fmt.Errorf("could not untag event: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *repositoryImpl) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	query := `UPDATE event SET
                 name = $1,
                 starts_at = $2,
                 all_day = $3,
                 duration_minutes = $4,
                 need_loop = $5,
                 loop_days = $6,
                 color = $7,
                 description = $8,
                 details = $9,
                 is_reminder = $10
			  WHERE id = $11`
	result, err := r.getQueryer().Exec(ctx, query,
		event.Name,
		event.Date,
		event.AllDay,
		event.DurationMinutes,
		event.NeedLoop,
		event.LoopDays,
		event.Color.Hex(),
		event.Description,
		event.Details,
		event.IsReminder,
		event.Id,
	)
	if err != nil {
		err = fmt.Errorf("could not update event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	if result.RowsAffected() == 0 {
		return Event{}, ErrEventNotFound
	}
	if err := r.deleteEventChildren(ctx, event.Id); err != nil {
		return Event{}, err
	}
	return r.storeEventChildren(ctx, event)
}

func (r *repositoryImpl) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if err := r.deleteEventChildren(ctx, id); err != nil {
		return err
	}
	result, err := r.getQueryer().Exec(ctx, `DELETE FROM event WHERE id = $1`, id)
	if err != nil {
		err = fmt.Errorf("could not delete event: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *repositoryImpl) UpdateEventPositions(ctx context.Context, ids []uuid.UUID) error {
	query := `UPDATE event SET position = $1 WHERE id = $2`
	for position, id := range ids {
		result, err := r.getQueryer().Exec(ctx, query, position, id)
		if err != nil {
			err = fmt.Errorf("could not update event position: %w", err)
			log.Error(err)
			return err
		}
		if result.RowsAffected() == 0 {
			return ErrEventNotFound
		}
	}
	return nil
}

func (r *repositoryImpl) DueAlarms(ctx context.Context, from, to time.Time) ([]DueAlarm, error) {
	query := `SELECT a.id, a.event_id, a.name, a.trigger_at, a.fired, e.name
			  FROM alarm a
			  JOIN event e ON e.id = a.event_id
			  WHERE NOT a.fired AND a.trigger_at > $1 AND a.trigger_at <= $2
			  ORDER BY a.trigger_at`
	rows, err := r.getQueryer().Query(ctx, query, from, to)
	if err != nil {
		err = fmt.Errorf("could not query due alarms: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	due := make([]DueAlarm, 0)
	for rows.Next() {
		var d DueAlarm
		if err := rows.Scan(&d.Id, &d.EventId, &d.Name, &d.TriggerAt, &d.Fired, &d.EventName); err != nil {
			return nil, fmt.Errorf("error scanning due alarm: %w", err)
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

func (r *repositoryImpl) MarkAlarmFired(ctx context.Context, id uuid.UUID) error {
	result, err := r.getQueryer().Exec(ctx, `UPDATE alarm SET fired = TRUE WHERE id = $1`, id)
	if err != nil {
		err = fmt.Errorf("could not mark alarm fired: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAlarmNotFound
	}
	return nil
}
