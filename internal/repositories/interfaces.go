package repositories

import (
	"context"
	"time"

	"autodocs/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByStudentID(ctx context.Context, studentID int64) (*models.User, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	ExistsStudentID(ctx context.Context, studentID int64) (bool, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int) error

	// UpdateFlags — read-then-write флагов is_eligible/is_rejected в одной транзакции.
	// fn получает заблокированную строку и меняет флаги; ошибка fn откатывает транзакцию.
	UpdateFlags(ctx context.Context, studentID int64, fn func(u *models.User) error) (*models.User, error)

	ListRequests(ctx context.Context, f models.UserRequestFilter) ([]*models.User, error)
	CountByRole(ctx context.Context, roleName string) (int, error)

	// refresh helpers
	UpdateRefresh(ctx context.Context, userID int, token string, expiresAt time.Time) error
	RotateRefresh(ctx context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
}

type VerificationRepository interface {
	Create(ctx context.Context, ch *models.VerificationChallenge) error
	// ConsumeLatest берёт самую свежую непогашенную запись по email+token,
	// гасит её и, если activate вернул true, активирует аккаунт — всё в одной транзакции.
	ConsumeLatest(ctx context.Context, method models.VerificationMethod, email, token string,
		activate func(ch *models.VerificationChallenge) bool) (*models.VerificationChallenge, error)
}

type ReferenceRepository interface {
	Get(ctx context.Context, kind models.ReferenceKind, id int) (*models.Reference, error)
	GetByName(ctx context.Context, kind models.ReferenceKind, name string) (*models.Reference, error)
}

type DepartmentRepository interface {
	GetByID(ctx context.Context, id int) (*models.Department, error)
	GetByCode(ctx context.Context, code int) (*models.Department, error)
	List(ctx context.Context) ([]*models.Department, error)
	Create(ctx context.Context, d *models.Department) error
	Update(ctx context.Context, d *models.Department) error
	DeleteByCode(ctx context.Context, code int) error
}

type ServiceRequestRepository interface {
	Create(ctx context.Context, r *models.ServiceRequest) error
	GetByID(ctx context.Context, id int) (*models.ServiceRequest, error)
	ListByUser(ctx context.Context, userID int) ([]*models.ServiceRequest, error)
	// UpdateStatus переводит заявку из Pending; уже решённая заявка даёт ErrConflict.
	UpdateStatus(ctx context.Context, id int, status string, serial *string) (*models.ServiceRequest, error)
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}
