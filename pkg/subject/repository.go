package subject

import (
	"context"
	"errors"
	"fmt"

	"github.com/classon/classon/internal/database"
	"github.com/classon/classon/pkg/color"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrSubjectNotFound = errors.New("subject not found")
var ErrTeacherNotFound = errors.New("teacher not found")
var ErrTeacherExists = errors.New("teacher with this name already exists")

const uniqueViolation = "23505"

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	List(ctx context.Context) ([]Subject, error)
	Get(ctx context.Context, id uuid.UUID) (Subject, error)
	// Store inserts the subject and links its teachers, which must already exist.
	Store(ctx context.Context, subject Subject) (Subject, error)
	// Update overwrites name and color and replaces the teacher links.
	Update(ctx context.Context, subject Subject) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdatePositions(ctx context.Context, ids []uuid.UUID) error
	// MaxPosition returns -1 when there are no subjects.
	MaxPosition(ctx context.Context) (int, error)
	ListTeachers(ctx context.Context) ([]Teacher, error)
	GetTeacher(ctx context.Context, id uuid.UUID) (Teacher, error)
	FindTeacherByName(ctx context.Context, name string) (Teacher, error)
	StoreTeacher(ctx context.Context, teacher Teacher) (Teacher, error)
	// DeleteTeacher removes the teacher and its subject links.
	DeleteTeacher(ctx context.Context, id uuid.UUID) error
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

const selectSubjects = `SELECT
    			s.id,
    			s.name,
    			s.position,
    			s.color,
    			t.id,
    			t.name
			  FROM subject s
			  LEFT JOIN subject_teacher st ON st.subject_id = s.id
			  LEFT JOIN teacher t ON t.id = st.teacher_id`

func (r *repositoryImpl) List(ctx context.Context) ([]Subject, error) {
	return r.querySubjects(ctx, selectSubjects+` ORDER BY s.position, s.id, st.position`)
}

func (r *repositoryImpl) Get(ctx context.Context, id uuid.UUID) (Subject, error) {
	subjects, err := r.querySubjects(ctx, selectSubjects+` WHERE s.id = $1 ORDER BY st.position`, id)
	if err != nil {
		return Subject{}, err
	}
	if len(subjects) == 0 {
		return Subject{}, ErrSubjectNotFound
	}
	return subjects[0], nil
}

func (r *repositoryImpl) querySubjects(ctx context.Context, query string, args ...any) ([]Subject, error) {
	rows, err := r.getQueryer().Query(ctx, query, args...)
	if err != nil {
		err = fmt.Errorf("could not query subjects: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	subjects := make([]Subject, 0)
	for rows.Next() {
		var (
			s           Subject
			colorHex    string
			teacherId   *uuid.UUID
			teacherName *string
		)
		if err := rows.Scan(&s.Id, &s.Name, &s.Position, &colorHex, &teacherId, &teacherName); err != nil {
			err = fmt.Errorf("error scanning subject: %w", err)
			log.Error(err)
			return nil, err
		}
		if n := len(subjects); n == 0 || subjects[n-1].Id != s.Id {
			s.Color, err = color.ParseHex(colorHex)
			if err != nil {
				log.Warnf("subject %s has unreadable color %q: %v", s.Id, colorHex, err)
				s.Color = color.Accent
			}
			subjects = append(subjects, s)
		}
		if teacherId != nil && teacherName != nil {
			last := &subjects[len(subjects)-1]
			last.Teachers = append(last.Teachers, Teacher{Id: *teacherId, Name: *teacherName})
		}
	}
	return subjects, rows.Err()
}

func (r *repositoryImpl) Store(ctx context.Context, subject Subject) (Subject, error) {
	subject.Id = uuid.New()
	query := `INSERT INTO subject (id, name, position, color) VALUES ($1, $2, $3, $4)`
	if _, err := r.getQueryer().Exec(ctx, query, subject.Id, subject.Name, subject.Position, subject.Color.Hex()); err != nil {
		err = fmt.Errorf("could not store subject: %w", err)
		log.Error(err)
		return Subject{}, err
	}
	if err := r.linkTeachers(ctx, subject.Id, subject.Teachers); err != nil {
		return Subject{}, err
	}
	return subject, nil
}

func (r *repositoryImpl) Update(ctx context.Context, subject Subject) error {
	query := `UPDATE subject SET name = $1, color = $2 WHERE id = $3`
	result, err := r.getQueryer().Exec(ctx, query, subject.Name, subject.Color.Hex(), subject.Id)
	if err != nil {
		err = fmt.Errorf("could not update subject: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSubjectNotFound
	}
	if _, err := r.getQueryer().Exec(ctx, `DELETE FROM subject_teacher WHERE subject_id = $1`, subject.Id); err != nil {
		err = fmt.Errorf("could not unlink teachers: %w", err)
		log.Error(err)
		return err
	}
	return r.linkTeachers(ctx, subject.Id, subject.Teachers)
}

func (r *repositoryImpl) linkTeachers(ctx context.Context, subjectId uuid.UUID, teachers []Teacher) error {
	query := `INSERT INTO subject_teacher (subject_id, teacher_id, position) VALUES ($1, $2, $3)`
	for position, t := range teachers {
		if _, err := r.getQueryer().Exec(ctx, query, subjectId, t.Id, position); err != nil {
			err = fmt.Errorf("could not link teacher %s: %w", t.Id, err)
			log.Error(err)
			return err
		}
	}
	return nil
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.getQueryer().Exec(ctx, `DELETE FROM subject_teacher WHERE subject_id = $1`, id); err != nil {
		err = fmt.Errorf("could not unlink teachers: %w", err)
		log.Error(err)
		return err
	}
	result, err := r.getQueryer().Exec(ctx, `DELETE FROM subject WHERE id = $1`, id)
	if err != nil {
		err = fmt.Errorf("could not delete subject: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrSubjectNotFound
	}
	return nil
}

func (r *repositoryImpl) UpdatePositions(ctx context.Context, ids []uuid.UUID) error {
	query := `UPDATE subject SET position = $1 WHERE id = $2`
	for position, id := range ids {
		result, err := r.getQueryer().Exec(ctx, query, position, id)
		if err != nil {
			err = fmt.Errorf("could not update subject position: %w", err)
			log.Error(err)
			return err
		}
		if result.RowsAffected() == 0 {
			return ErrSubjectNotFound
		}
	}
	return nil
}

func (r *repositoryImpl) MaxPosition(ctx context.Context) (int, error) {
	var position int
	err := r.getQueryer().QueryRow(ctx, `SELECT COALESCE(MAX(position), -1) FROM subject`).Scan(&position)
	if err != nil {
		err = fmt.Errorf("could not find max subject position: %w", err)
		log.Error(err)
		return 0, err
	}
	return position, nil
}

func (r *repositoryImpl) ListTeachers(ctx context.Context) ([]Teacher, error) {
	rows, err := r.getQueryer().Query(ctx, `SELECT id, name FROM teacher ORDER BY LOWER(name)`)
	if err != nil {
		err = fmt.Errorf("could not query teachers: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	teachers := make([]Teacher, 0)
	for rows.Next() {
		var t Teacher
		if err := rows.Scan(&t.Id, &t.Name); err != nil {
			return nil, fmt.Errorf("error scanning teacher: %w", err)
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

func (r *repositoryImpl) GetTeacher(ctx context.Context, id uuid.UUID) (Teacher, error) {
	var t Teacher
	err := r.getQueryer().QueryRow(ctx, `SELECT id, name FROM teacher WHERE id = $1`, id).Scan(&t.Id, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Teacher{}, ErrTeacherNotFound
		}
		return Teacher{}, fmt.Errorf("could not get teacher: %w", err)
	}
	return t, nil
}

func (r *repositoryImpl) FindTeacherByName(ctx context.Context, name string) (Teacher, error) {
	var t Teacher
	err := r.getQueryer().QueryRow(ctx, `SELECT id, name FROM teacher WHERE LOWER(name) = LOWER($1)`, name).Scan(&t.Id, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Teacher{}, ErrTeacherNotFound
		}
		return Teacher{}, fmt.Errorf("could not find teacher: %w", err)
	}
	return t, nil
}

func (r *repositoryImpl) StoreTeacher(ctx context.Context, teacher Teacher) (Teacher, error) {
	teacher.Id = uuid.New()
	if _, err := r.getQueryer().Exec(ctx, `INSERT INTO teacher (id, name) VALUES ($1, $2)`, teacher.Id, teacher.Name); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Teacher{}, ErrTeacherExists
		}
		err = fmt.Errorf("could not store teacher: %w", err)
		log.Error(err)
		return Teacher{}, err
	}
	return teacher, nil
}

func (r *repositoryImpl) DeleteTeacher(ctx context.Context, id uuid.UUID) error {
	if _, err := r.getQueryer().Exec(ctx, `DELETE FROM subject_teacher WHERE teacher_id = $1`, id); err != nil {
		err = fmt.Errorf("could not unlink teacher: %w", err)
		log.Error(err)
		return err
	}
	result, err := r.getQueryer().Exec(ctx, `DELETE FROM teacher WHERE id = $1`, id)
	if err != nil {
		err = fmt.Errorf("could not delete teacher: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTeacherNotFound
	}
	return nil
}
