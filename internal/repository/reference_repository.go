package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/grc-api/internal/models"
)

// ReferenceRepository reads the academic reference data (levels, fields,
// axes, subjects) and the staff/student profiles hanging off it. Reference
// lists change rarely, so they are cached in Redis; a cache failure only
// costs a database round trip.
type ReferenceRepository struct {
	db       *sqlx.DB
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewReferenceRepository constructs the repository. cache may be nil when
// Redis is not configured.
func NewReferenceRepository(db *sqlx.DB, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *ReferenceRepository {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	return &ReferenceRepository{db: db, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// ListClassLevels returns all class levels in teaching order.
func (r *ReferenceRepository) ListClassLevels(ctx context.Context) ([]models.ClassLevel, error) {
	var levels []models.ClassLevel
	err := cachedList(ctx, r, "ref:class_levels", &levels, func() error {
		return r.db.SelectContext(ctx, &levels,
			`SELECT id, name, sort_order FROM class_levels ORDER BY sort_order ASC`)
	})
	return levels, err
}

// ListFields returns all fields of study.
func (r *ReferenceRepository) ListFields(ctx context.Context) ([]models.Field, error) {
	var fields []models.Field
	err := cachedList(ctx, r, "ref:fields", &fields, func() error {
		return r.db.SelectContext(ctx, &fields,
			`SELECT id, code, name FROM fields ORDER BY code ASC`)
	})
	return fields, err
}

// ListAxes returns all axes, optionally restricted to a field.
func (r *ReferenceRepository) ListAxes(ctx context.Context, fieldID string) ([]models.Axis, error) {
	var axes []models.Axis
	if fieldID != "" {
		err := r.db.SelectContext(ctx, &axes,
			`SELECT id, code, name, field_id FROM axes WHERE field_id = $1 ORDER BY code ASC`, fieldID)
		return axes, err
	}
	err := cachedList(ctx, r, "ref:axes", &axes, func() error {
		return r.db.SelectContext(ctx, &axes,
			`SELECT id, code, name, field_id FROM axes ORDER BY code ASC`)
	})
	return axes, err
}

// ListSubjects returns all subjects, optionally restricted to a field.
func (r *ReferenceRepository) ListSubjects(ctx context.Context, fieldID string) ([]models.Subject, error) {
	var subjects []models.Subject
	if fieldID != "" {
		err := r.db.SelectContext(ctx, &subjects,
			`SELECT id, code, name, field_id FROM subjects WHERE field_id = $1 ORDER BY code ASC`, fieldID)
		return subjects, err
	}
	err := cachedList(ctx, r, "ref:subjects", &subjects, func() error {
		return r.db.SelectContext(ctx, &subjects,
			`SELECT id, code, name, field_id FROM subjects ORDER BY code ASC`)
	})
	return subjects, err
}

// GetSubject fetches a subject by identifier.
func (r *ReferenceRepository) GetSubject(ctx context.Context, id string) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject,
		`SELECT id, code, name, field_id FROM subjects WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// GetField fetches a field by identifier.
func (r *ReferenceRepository) GetField(ctx context.Context, id string) (*models.Field, error) {
	var field models.Field
	if err := r.db.GetContext(ctx, &field,
		`SELECT id, code, name FROM fields WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &field, nil
}

// LecturersBySubject returns the lecturers teaching a subject in their
// declared order. The first entry is the routing target for CC requests.
func (r *ReferenceRepository) LecturersBySubject(ctx context.Context, subjectID string) ([]models.Lecturer, error) {
	const query = `SELECT l.id, l.user_id, l.full_name, l.is_hod, l.field_id, l.cellule_member
	FROM lecturers l
	JOIN lecturer_subjects ls ON ls.lecturer_id = l.id
	WHERE ls.subject_id = $1
	ORDER BY ls.position ASC`
	var lecturers []models.Lecturer
	if err := r.db.SelectContext(ctx, &lecturers, query, subjectID); err != nil {
		return nil, fmt.Errorf("list subject lecturers: %w", err)
	}
	return lecturers, nil
}

// HeadOfField returns the head of department for a field, or sql.ErrNoRows.
func (r *ReferenceRepository) HeadOfField(ctx context.Context, fieldID string) (*models.Lecturer, error) {
	const query = `SELECT id, user_id, full_name, is_hod, field_id, cellule_member
	FROM lecturers WHERE is_hod = TRUE AND field_id = $1 LIMIT 1`
	var lecturer models.Lecturer
	if err := r.db.GetContext(ctx, &lecturer, query, fieldID); err != nil {
		return nil, err
	}
	return &lecturer, nil
}

// CelluleMemberIDs returns the user IDs of all IT cell members.
func (r *ReferenceRepository) CelluleMemberIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids,
		`SELECT user_id FROM lecturers WHERE cellule_member = TRUE`); err != nil {
		return nil, fmt.Errorf("list cellule members: %w", err)
	}
	return ids, nil
}

// GetLecturerByUserID fetches the lecturer profile of a user account.
func (r *ReferenceRepository) GetLecturerByUserID(ctx context.Context, userID string) (*models.Lecturer, error) {
	const query = `SELECT id, user_id, full_name, is_hod, field_id, cellule_member
	FROM lecturers WHERE user_id = $1`
	var lecturer models.Lecturer
	if err := r.db.GetContext(ctx, &lecturer, query, userID); err != nil {
		return nil, err
	}
	return &lecturer, nil
}

// SubjectIDsByLecturer returns the subjects a lecturer teaches.
func (r *ReferenceRepository) SubjectIDsByLecturer(ctx context.Context, lecturerID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids,
		`SELECT subject_id FROM lecturer_subjects WHERE lecturer_id = $1`, lecturerID); err != nil {
		return nil, fmt.Errorf("list lecturer subjects: %w", err)
	}
	return ids, nil
}

// StudentUserID maps a student profile to its user account.
func (r *ReferenceRepository) StudentUserID(ctx context.Context, studentID string) (string, error) {
	var userID string
	if err := r.db.GetContext(ctx, &userID,
		`SELECT user_id FROM students WHERE id = $1`, studentID); err != nil {
		return "", err
	}
	return userID, nil
}

// GetStudentByUserID fetches the student profile of a user account.
func (r *ReferenceRepository) GetStudentByUserID(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT id, user_id, full_name, matricule, class_level_id, field_id
	FROM students WHERE user_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// cachedList serves dest from Redis when possible, falling back to query and
// refreshing the cache on miss.
func cachedList[T any](ctx context.Context, r *ReferenceRepository, key string, dest *[]T, query func() error) error {
	if r.cache != nil {
		payload, err := r.cache.Get(ctx, key).Bytes()
		if err == nil {
			if jsonErr := json.Unmarshal(payload, dest); jsonErr == nil {
				return nil
			}
			// corrupt entry, fall through to the database
		} else if err != redis.Nil {
			r.logger.Warn("reference cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	if err := query(); err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}

	if r.cache != nil {
		payload, err := json.Marshal(*dest)
		if err == nil {
			if err := r.cache.Set(ctx, key, payload, r.cacheTTL).Err(); err != nil {
				r.logger.Warn("reference cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return nil
}
