package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"autodocs/internal/models"
)

type referenceRepository struct {
	DB *sql.DB
}

func NewReferenceRepository(db *sql.DB) ReferenceRepository {
	return &referenceRepository{DB: db}
}

var referenceTables = map[models.ReferenceKind]string{
	models.RefRole:       "roles",
	models.RefDepartment: "departments",
	models.RefGender:     "genders",
	models.RefDocument:   "documents",
	models.RefStatus:     "request_statuses",
}

func tableFor(kind models.ReferenceKind) (string, error) {
	t, ok := referenceTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown reference kind %q", kind)
	}
	return t, nil
}

func (r *referenceRepository) Get(ctx context.Context, kind models.ReferenceKind, id int) (*models.Reference, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	ref := &models.Reference{Kind: kind}
	err = r.DB.QueryRowContext(ctx, `SELECT id, name FROM `+table+` WHERE id = $1`, id).Scan(&ref.ID, &ref.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reference %s get: %w", kind, err)
	}
	return ref, nil
}

func (r *referenceRepository) GetByName(ctx context.Context, kind models.ReferenceKind, name string) (*models.Reference, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	ref := &models.Reference{Kind: kind}
	err = r.DB.QueryRowContext(ctx, `SELECT id, name FROM `+table+` WHERE name = $1`, name).Scan(&ref.ID, &ref.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reference %s by name: %w", kind, err)
	}
	return ref, nil
}
