package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/model"
)

// StudentRepository handles roster data access (read-only in this core).
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetByID retrieves a student by id.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, nis, nisn, name, class_name, created_at, updated_at
		 FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.NIS, &s.NISN, &s.Name, &s.ClassName, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListAll retrieves the full roster ordered by class and name. Class matching
// against an exam's target uses normalized codes, so filtering happens in the
// service layer rather than in SQL.
func (r *StudentRepository) ListAll(ctx context.Context) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, nis, nisn, name, class_name, created_at, updated_at
		 FROM students ORDER BY class_name, name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.NIS, &s.NISN, &s.Name, &s.ClassName, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}
