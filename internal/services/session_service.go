package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"autodocs/internal/models"
	"autodocs/internal/repositories"
)

// TokenPair — ответ /token и /token/refresh.
type TokenPair struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type SessionService interface {
	Login(ctx context.Context, email, password string) (*TokenPair, *models.User, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type sessionService struct {
	users repositories.UserRepository
	auth  AuthService
	now   func() time.Time
}

func NewSessionService(users repositories.UserRepository, auth AuthService) SessionService {
	return &sessionService{users: users, auth: auth, now: time.Now}
}

var errNoActiveAccount = &Error{Kind: ErrUnauthorized, Detail: "No active account found with the given credentials"}

// Login — только для активных (верифицированных) аккаунтов.
func (s *sessionService) Login(ctx context.Context, email, password string) (*TokenPair, *models.User, error) {
	email = normalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			log.Printf("[auth][login] user not found by email=%q", email)
			return nil, nil, errNoActiveAccount
		}
		return nil, nil, err
	}
	if strings.TrimSpace(user.PasswordHash) == "" || !s.auth.CheckPassword(user.PasswordHash, strings.TrimSpace(password)) {
		log.Printf("[auth][login] password mismatch for userID=%d", user.ID)
		return nil, nil, errNoActiveAccount
	}
	if !user.IsActive {
		log.Printf("[auth][login] inactive account userID=%d", user.ID)
		return nil, nil, errNoActiveAccount
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	if err := s.users.UpdateRefresh(ctx, user.ID, pair.Refresh, pair.RefreshExpiresAt); err != nil {
		return nil, nil, err
	}
	log.Printf("[auth][login] success userID=%d role=%q", user.ID, user.RoleName)
	return pair, user, nil
}

// Refresh ротирует refresh-токен: старый после вызова недействителен.
func (s *sessionService) Refresh(ctx context.Context, old string) (*TokenPair, error) {
	old = strings.TrimSpace(old)
	invalid := &Error{Kind: ErrUnauthorized, Detail: "Invalid refresh token"}
	if old == "" {
		return nil, invalid
	}
	user, err := s.users.GetByRefreshToken(ctx, old)
	if err != nil || user.RefreshExpiresAt == nil || user.RefreshRevoked {
		return nil, invalid
	}
	if s.now().After(*user.RefreshExpiresAt) {
		return nil, &Error{Kind: ErrUnauthorized, Detail: "Refresh token expired"}
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.RotateRefresh(ctx, old, pair.Refresh, pair.RefreshExpiresAt); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	log.Printf("[auth][refresh] rotated for userID=%d", user.ID)
	return pair, nil
}

func (s *sessionService) issue(u *models.User) (*TokenPair, error) {
	access, accessExp, err := s.auth.IssueAccessToken(u)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := s.auth.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}
