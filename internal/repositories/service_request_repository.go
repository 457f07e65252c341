package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"autodocs/internal/models"
)

type serviceRequestRepository struct {
	DB *sql.DB
}

func NewServiceRequestRepository(db *sql.DB) ServiceRequestRepository {
	return &serviceRequestRepository{DB: db}
}

const serviceRequestSelect = `
	SELECT sr.id, sr.user_id, d.name, st.name, sr.serial, sr.created_at, sr.updated_at
	FROM service_requests sr
	JOIN documents d ON d.id = sr.document_id
	JOIN request_statuses st ON st.id = sr.status_id
`

func scanServiceRequest(row rowScanner) (*models.ServiceRequest, error) {
	sr := &models.ServiceRequest{}
	var serial sql.NullString
	if err := row.Scan(&sr.ID, &sr.UserID, &sr.Document, &sr.Status, &serial, &sr.CreatedAt, &sr.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if serial.Valid {
		s := serial.String
		sr.Serial = &s
	}
	return sr, nil
}

// Create — document и status передаются именами, id ищутся в справочниках.
func (r *serviceRequestRepository) Create(ctx context.Context, sr *models.ServiceRequest) error {
	const q = `
		INSERT INTO service_requests (user_id, document_id, status_id)
		SELECT $1, d.id, st.id
		FROM documents d, request_statuses st
		WHERE d.name = $2 AND st.name = $3
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, q, sr.UserID, sr.Document, sr.Status).Scan(&sr.ID, &sr.CreatedAt, &sr.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrForeignKey
		}
		return fmt.Errorf("service request create: %w", mapPQError(err))
	}
	return nil
}

func (r *serviceRequestRepository) GetByID(ctx context.Context, id int) (*models.ServiceRequest, error) {
	sr, err := scanServiceRequest(r.DB.QueryRowContext(ctx, serviceRequestSelect+` WHERE sr.id = $1`, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("service request get: %w", err)
	}
	return sr, err
}

func (r *serviceRequestRepository) ListByUser(ctx context.Context, userID int) ([]*models.ServiceRequest, error) {
	rows, err := r.DB.QueryContext(ctx, serviceRequestSelect+` WHERE sr.user_id = $1 ORDER BY sr.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("service request list: %w", err)
	}
	defer rows.Close()

	var res []*models.ServiceRequest
	for rows.Next() {
		sr, err := scanServiceRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("service request scan: %w", err)
		}
		res = append(res, sr)
	}
	return res, rows.Err()
}

func (r *serviceRequestRepository) UpdateStatus(ctx context.Context, id int, status string, serial *string) (*models.ServiceRequest, error) {
	const q = `
		UPDATE service_requests sr
		SET status_id = st.id, serial = COALESCE($3, sr.serial), updated_at = NOW()
		FROM request_statuses st
		WHERE sr.id = $1 AND st.name = $2
		  AND sr.status_id = (SELECT id FROM request_statuses WHERE name = $4)
	`
	res, err := r.DB.ExecContext(ctx, q, id, status, serial, models.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("service request update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// либо заявки нет, либо её уже решили параллельно
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}
	return r.GetByID(ctx, id)
}

func (r *serviceRequestRepository) Count(ctx context.Context) (int, error) {
	var c int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM service_requests`).Scan(&c)
	return c, err
}

func (r *serviceRequestRepository) CountByStatus(ctx context.Context, status string) (int, error) {
	var c int
	err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM service_requests sr
		JOIN request_statuses st ON st.id = sr.status_id
		WHERE st.name = $1
	`, status).Scan(&c)
	return c, err
}
