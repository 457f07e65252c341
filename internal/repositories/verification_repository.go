package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"autodocs/internal/models"
)

type verificationRepository struct {
	DB *sql.DB
}

func NewVerificationRepository(db *sql.DB) VerificationRepository {
	return &verificationRepository{DB: db}
}

// Create — каждая отправка — новая строка.
func (r *verificationRepository) Create(ctx context.Context, ch *models.VerificationChallenge) error {
	const q = `
		INSERT INTO verification_challenges (email, method, token, created_at, consumed)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id
	`
	if err := r.DB.QueryRowContext(ctx, q, ch.Email, string(ch.Method), ch.Token, ch.CreatedAt).Scan(&ch.ID); err != nil {
		return fmt.Errorf("verification create: %w", err)
	}
	return nil
}

func (r *verificationRepository) ConsumeLatest(
	ctx context.Context,
	method models.VerificationMethod,
	email, token string,
	activate func(ch *models.VerificationChallenge) bool,
) (*models.VerificationChallenge, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("verification begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// FOR UPDATE: две параллельные попытки не погасят одну запись дважды
	const sel = `
		SELECT id, email, method, token, created_at, consumed
		FROM verification_challenges
		WHERE email = $1 AND method = $2 AND token = $3 AND consumed = FALSE
		ORDER BY created_at DESC, id DESC
		LIMIT 1
		FOR UPDATE
	`
	var (
		ch models.VerificationChallenge
		m  string
	)
	err = tx.QueryRowContext(ctx, sel, email, string(method), token).Scan(
		&ch.ID, &ch.Email, &m, &ch.Token, &ch.CreatedAt, &ch.Consumed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("verification select: %w", err)
	}
	ch.Method = models.VerificationMethod(m)

	if _, err := tx.ExecContext(ctx, `UPDATE verification_challenges SET consumed = TRUE WHERE id = $1`, ch.ID); err != nil {
		return nil, fmt.Errorf("verification consume: %w", err)
	}
	ch.Consumed = true

	if activate != nil && activate(&ch) {
		if _, err := tx.ExecContext(ctx, `UPDATE users SET is_active = TRUE, updated_at = NOW() WHERE email = $1`, ch.Email); err != nil {
			return nil, fmt.Errorf("verification activate user: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("verification commit: %w", err)
	}
	return &ch, nil
}
