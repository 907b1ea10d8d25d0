package weekday

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

var ErrWeekdayNotFound = errors.New("weekday not found")
var ErrClassNotFound = errors.New("class not found")

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	// ListWeekdays returns the stored days ordered by ordinal, each with its classes ordered by position.
	ListWeekdays(ctx context.Context) ([]Weekday, error)
	GetWeekday(ctx context.Context, ordinal int) (Weekday, error)
	StoreWeekday(ctx context.Context, weekday Weekday) (Weekday, error)
	SetCommonDay(ctx context.Context, id uuid.UUID, isCommonDay bool) error
	// UpdateOrdinals assigns all given ordinals at once, so days may swap ordinals.
	UpdateOrdinals(ctx context.Context, ordinals map[uuid.UUID]int) error
	GetClass(ctx context.Context, id uuid.UUID) (Class, error)
	StoreClass(ctx context.Context, class Class) (Class, error)
	UpdateClass(ctx context.Context, class Class) error
	DeleteClass(ctx context.Context, id uuid.UUID) error
	DeleteClassesOfWeekday(ctx context.Context, weekdayId uuid.UUID) (int, error)
	UpdateClassPositions(ctx context.Context, ids []uuid.UUID) error
	// RemoveTeacher clears every reference to the teacher and returns how many classes changed.
	RemoveTeacher(ctx context.Context, teacherId uuid.UUID) (int, error)
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

func (r *repositoryImpl) ListWeekdays(ctx context.Context) ([]Weekday, error) {
	return r.queryWeekdays(ctx, `SELECT id, ordinal, label, is_common_day FROM weekday ORDER BY ordinal`)
}

func (r *repositoryImpl) GetWeekday(ctx context.Context, ordinal int) (Weekday, error) {
	days, err := r.queryWeekdays(ctx, `SELECT id, ordinal, label, is_common_day FROM weekday WHERE ordinal = $1`, ordinal)
	if err != nil {
		return Weekday{}, err
	}
	if len(days) == 0 {
		return Weekday{}, ErrWeekdayNotFound
	}
	return days[0], nil
}

func (r *repositoryImpl) queryWeekdays(ctx context.Context, query string, args ...any) ([]Weekday, error) {
	rows, err := r.getQueryer().Query(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("could not query weekdays: %w", err)
		log.Error(err)
		return nil, err
	}
	days := make([]Weekday, 0, DaysInWeek)
	for rows.Next() {
		var (
			d     Weekday
			label int
		)
		if err := rows.Scan(&d.Id, &d.Ordinal, &label, &d.IsCommonDay); err != nil {
			rows.Close()
			err = fmt.Errorf("error scanning weekday: %w", err)
			log.Error(err)
			return nil, err
		}
		d.Label = time.Weekday(label)
		d.Classes = []Class{}
		days = append(days, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range days {
		classes, err := r.queryClasses(ctx, selectClasses+` WHERE c.weekday_id = $1 ORDER BY c.position`, days[i].Id)
		if err != nil {
			return nil, err
		}
		days[i].Classes = classes
	}
	return days, nil
}

const selectClasses = `SELECT
    			c.id,
    			c.weekday_id,
    			c.position,
    			c.name,
    			c.start_minute,
    			c.duration_minutes,
    			c.description,
    			c.details,
    			c.color,
    			c.teacher_id,
    			ARRAY(SELECT cst.teacher_id::text FROM class_subject_teacher cst
    			      WHERE cst.class_id = c.id ORDER BY cst.position),
    			ARRAY(SELECT t.name FROM class_tag ct JOIN tag t ON t.id = ct.tag_id
    			      WHERE ct.class_id = c.id ORDER BY t.name)
			  FROM class c`

func (r *repositoryImpl) queryClasses(ctx context.Context, query string, args ...any) ([]Class, error) {
	rows, err := r.getQueryer().Query(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("could not query classes: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	classes := make([]Class, 0)
	for rows.Next() {
		var (
			c          Class
			colorHex   string
			teacherIds []string
		)
		if err := rows.Scan(
			&c.Id,
			&c.WeekdayId,
			&c.Position,
			&c.Name,
			&c.StartMinute,
			&c.DurationMinutes,
			&c.Description,
			&c.Details,
			&colorHex,
			&c.TeacherId,
			&teacherIds,
			&c.Tags,
		); err != nil {
			err = fmt.Errorf("error scanning class: %w", err)
			log.Error(err)
			return nil, err
		}
		if c.Color, err = color.ParseHex(colorHex); err != nil {
			log.Warnf("class %s has unreadable color %q: %v", c.Id, colorHex, err)
			c.Color = color.Accent
		}
		if c.SubjectTeacherIds, err = database.ParseIds(teacherIds); err != nil {
			return nil, err
		}
		if c.Details == nil {
			c.Details = map[string]string{}
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

func (r *repositoryImpl) StoreWeekday(ctx context.Context, weekday Weekday) (Weekday, error) {
	weekday.Id = uuid.New()
	query := `INSERT INTO weekday (id, ordinal, label, is_common_day) VALUES ($1, $2, $3, $4)`
	_, err := r.getQueryer().Exec(ctx, query, weekday.Id, weekday.Ordinal, int(weekday.Label), weekday.IsCommonDay)
	if err != nil {
		err = fmt.Errorf("could not store weekday: %w", err)
		log.Error(err)
		return Weekday{}, err
	}
	weekday.Classes = []Class{}
	return weekday, nil
}

func (r *repositoryImpl) SetCommonDay(ctx context.Context, id uuid.UUID, isCommonDay bool) error {
	result, err := r.getQueryer().Exec(ctx, `UPDATE weekday SET is_common_day = $1 WHERE id = $2`, isCommonDay, id)
	if err != nil {
		err = fmt.Errorf("could not update weekday: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrWeekdayNotFound
	}
	return nil
}

func (r *repositoryImpl) UpdateOrdinals(ctx context.Context, ordinals map[uuid.UUID]int) error {
	ids := make([]string, 0, len(ordinals))
	values := make([]int32, 0, len(ordinals))
	for id, ordinal := range ordinals {
		ids = append(ids, id.String())
		values = append(values, int32(ordinal))
	}
	// weekday_ordinal_unique is deferrable, so it is checked once after the whole statement.
	query := `UPDATE weekday w SET ordinal = v.ordinal
			  FROM unnest($1::text[], $2::int[]) AS v(id, ordinal)
			  WHERE w.id = v.id::uuid`
	result, err := r.getQueryer().Exec(ctx, query, ids, values)
	if err != nil {
		err = fmt.Errorf("could not update weekday ordinals: %w", err)
		log.Error(err)
		return err
	}
	if int(result.RowsAffected()) != len(ordinals) {
		return ErrWeekdayNotFound
	}
	return nil
}

func (r *repositoryImpl) GetClass(ctx context.Context, id uuid.UUID) (Class, error) {
	classes, err := r.queryClasses(ctx, selectClasses+` WHERE c.id = $1`, id)
	if err != nil {
		return Class{}, err
	}
	if len(classes) == 0 {
		return Class{}, ErrClassNotFound
	}
	return classes[0], nil
}

func (r *repositoryImpl) StoreClass(ctx context.Context, class Class) (Class, error) {
	class.Id = uuid.New()
	if class.Details == nil {
		class.Details = map[string]string{}
	}
	query := `INSERT INTO class (
                    id,
                    weekday_id,
                    position,
                    name,
                    start_minute,
                    duration_minutes,
                    description,
                    details,
                    color,
                    teacher_id
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.getQueryer().Exec(ctx, query,
		class.Id,
		class.WeekdayId,
		class.Position,
		class.Name,
		class.StartMinute,
		class.DurationMinutes,
		class.Description,
		class.Details,
		class.Color.Hex(),
		class.TeacherId,
	)
	if err != nil {
		err = fmt.Errorf("could not store class: %w", err)
		log.Error(err)
		return Class{}, err
	}
	if err := r.storeClassLinks(ctx, class); err != nil {
		return Class{}, err
	}
	return class, nil
}

func (r *repositoryImpl) storeClassLinks(ctx context.Context, class Class) error {
	for position, teacherId := range class.SubjectTeacherIds {
		_, err := r.getQueryer().Exec(ctx,
			`INSERT INTO class_subject_teacher (class_id, teacher_id, position) VALUES ($1, $2, $3)`,
			class.Id, teacherId, position)
		if err != nil {
			err = fmt.Errorf("could not link class teacher: %w", err)
			log.Error(err)
			return err
		}
	}
	tagIds, err := database.UpsertTags(ctx, r.getQueryer(), database.ClassTag, class.Tags)
	if err != nil {
		log.Error(err)
		return err
	}
	for _, tagId := range tagIds {
		if _, err := r.getQueryer().Exec(ctx, `INSERT INTO class_tag (class_id, tag_id) VALUES ($1, $2)`, class.Id, tagId); err != nil {
			err = fmt.Errorf("could not tag class: %w", err)
			log.Error(err)
			return err
		}
	}
	return nil
}

func (r *repositoryImpl) deleteClassLinks(ctx context.Context, classId uuid.UUID) error {
	if _, err := r.getQueryer().Exec(ctx, `DELETE FROM class_subject_teacher WHERE class_id = $1`, classId); err != nil {
		err = fmt.Errorf("could not unlink class teachers: %w", err)
		log.Error(err)
		return err
	}
	if _, err := r.getQueryer().Exec(ctx, `DELETE FROM class_tag WHERE class_id = $1`, classId); err != nil {
		err = fmt.Errorf("could not untag class: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *repositoryImpl) UpdateClass(ctx context.Context, class Class) error {
	if class.Details == nil {
		class.Details = map[string]string{}
	}
	query := `UPDATE class SET
                 name = $1,
                 start_minute = $2,
                 duration_minutes = $3,
                 description = $4,
                 details = $5,
                 color = $6,
                 teacher_id = $7
			  WHERE id = $8`
	result, err := r.getQueryer().Exec(ctx, query,
		class.Name,
		class.StartMinute,
		class.DurationMinutes,
		class.Description,
		class.Details,
		class.Color.Hex(),
		class.TeacherId,
		class.Id,
	)
	if err != nil {
		err = fmt.Errorf("could not update class: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrClassNotFound
	}
	if err := r.deleteClassLinks(ctx, class.Id); err != nil {
		return err
	}
	return r.storeClassLinks(ctx, class)
}

func (r *repositoryImpl) DeleteClass(ctx context.Context, id uuid.UUID) error {
	if err := r.deleteClassLinks(ctx, id); err != nil {
		return err
	}
	result, err := r.getQueryer().Exec(ctx, `DELETE FROM class WHERE id = $1`, id)
	if err != nil {
		err = fmt.Errorf("could not delete class: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrClassNotFound
	}
	return nil
}

func (r *repositoryImpl) DeleteClassesOfWeekday(ctx context.Context, weekdayId uuid.UUID) (int, error) {
	rows, err := r.getQueryer().Query(ctx, `SELECT id FROM class WHERE weekday_id = $1`, weekdayId)
	if err != nil {
		err = fmt.Errorf("could not query classes: %w", err)
		log.Error(err)
		return 0, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return 0, fmt.Errorf("error scanning class ids: %w", err)
	}
	for _, id := range ids {
		if err := r.DeleteClass(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

func (r *repositoryImpl) UpdateClassPositions(ctx context.Context, ids []uuid.UUID) error {
	query := `UPDATE class SET position = $1 WHERE id = $2`
	for position, id := range ids {
		result, err := r.getQueryer().Exec(ctx, query, position, id)
		if err != nil {
			err = fmt.Errorf("could not update class position: %w", err)
			log.Error(err)
			return err
		}
		if result.RowsAffected() == 0 {
			return ErrClassNotFound
		}
	}
	return nil
}

func (r *repositoryImpl) RemoveTeacher(ctx context.Context, teacherId uuid.UUID) (int, error) {
	query := `WITH cleared AS (
				  UPDATE class SET teacher_id = NULL WHERE teacher_id = $1 RETURNING id
			  ), unlinked AS (
				  DELETE FROM class_subject_teacher WHERE teacher_id = $1 RETURNING class_id
			  )
			  SELECT COUNT(*) FROM (SELECT id FROM cleared UNION SELECT class_id FROM unlinked) AS changed`
	var changed int
	if err := r.getQueryer().QueryRow(ctx, query, teacherId).Scan(&changed); err != nil {
		err = fmt.Errorf("could not remove teacher from classes: %w", err)
		log.Error(err)
		return 0, err
	}
	return changed, nil
}
