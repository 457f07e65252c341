package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"autodocs/internal/models"
)

type departmentRepository struct {
	DB *sql.DB
}

func NewDepartmentRepository(db *sql.DB) DepartmentRepository {
	return &departmentRepository{DB: db}
}

const departmentSelect = `
	SELECT d.id, d.name, d.code, d.faculty_id, COALESCE(un.code, '')
	FROM departments d
	LEFT JOIN faculties f ON f.id = d.faculty_id
	LEFT JOIN universities un ON un.id = f.university_id
`

func scanDepartment(row rowScanner) (*models.Department, error) {
	d := &models.Department{}
	if err := row.Scan(&d.ID, &d.Name, &d.Code, &d.FacultyID, &d.UniversityCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id int) (*models.Department, error) {
	d, err := scanDepartment(r.DB.QueryRowContext(ctx, departmentSelect+` WHERE d.id = $1`, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("department get: %w", err)
	}
	return d, err
}

func (r *departmentRepository) GetByCode(ctx context.Context, code int) (*models.Department, error) {
	d, err := scanDepartment(r.DB.QueryRowContext(ctx, departmentSelect+` WHERE d.code = $1`, code))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("department by code: %w", err)
	}
	return d, err
}

func (r *departmentRepository) List(ctx context.Context) ([]*models.Department, error) {
	rows, err := r.DB.QueryContext(ctx, departmentSelect+` ORDER BY d.code`)
	if err != nil {
		return nil, fmt.Errorf("department list: %w", err)
	}
	defer rows.Close()

	var res []*models.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("department scan: %w", err)
		}
		res = append(res, d)
	}
	return res, rows.Err()
}

func (r *departmentRepository) Create(ctx context.Context, d *models.Department) error {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO departments (name, code, faculty_id) VALUES ($1, $2, $3) RETURNING id`,
		d.Name, d.Code, d.FacultyID,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("department create: %w", mapPQError(err))
	}
	return nil
}

func (r *departmentRepository) Update(ctx context.Context, d *models.Department) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE departments SET name = $1, faculty_id = $2 WHERE code = $3`,
		d.Name, d.FacultyID, d.Code,
	)
	if err != nil {
		return fmt.Errorf("department update: %w", mapPQError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *departmentRepository) DeleteByCode(ctx context.Context, code int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM departments WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("department delete: %w", mapPQError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
