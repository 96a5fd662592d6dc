package repository

import (
	"context"

	"github.com/brightclass/brightclass-backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles teacher and student account data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetTeacherByEmail retrieves a teacher account by email.
func (r *UserRepository) GetTeacherByEmail(ctx context.Context, email string) (*model.Teacher, error) {
	t := &model.Teacher{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM teachers WHERE email = $1`, email,
	).Scan(&t.ID, &t.Name, &t.Email, &t.PasswordHash, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTeacherByID retrieves a teacher account by id.
func (r *UserRepository) GetTeacherByID(ctx context.Context, id int) (*model.Teacher, error) {
	t := &model.Teacher{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, created_at
		 FROM teachers WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Email, &t.PasswordHash, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTeacher inserts a teacher account.
func (r *UserRepository) CreateTeacher(ctx context.Context, t *model.Teacher) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO teachers (name, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		t.Name, t.Email, t.PasswordHash,
	).Scan(&t.ID, &t.CreatedAt)
}

// GetStudentByEmail retrieves a student account by email.
func (r *UserRepository) GetStudentByEmail(ctx context.Context, email string) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, grade_level, created_at
		 FROM students WHERE email = $1`, email,
	).Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.GradeLevel, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetStudentByID retrieves a student account by id.
func (r *UserRepository) GetStudentByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, password_hash, grade_level, created_at
		 FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.GradeLevel, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateStudent inserts a student account.
func (r *UserRepository) CreateStudent(ctx context.Context, s *model.Student) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO students (name, email, password_hash, grade_level)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		s.Name, s.Email, s.PasswordHash, s.GradeLevel,
	).Scan(&s.ID, &s.CreatedAt)
}

// ListStudentsByGradeLevels retrieves every student whose grade level is in
// the given set. Drives assignment fan-out when a quiz is scheduled.
func (r *UserRepository) ListStudentsByGradeLevels(ctx context.Context, gradeLevels []string) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, password_hash, grade_level, created_at
		 FROM students
		 WHERE grade_level = ANY($1)
		 ORDER BY id`, gradeLevels)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.GradeLevel, &s.CreatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}
