package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"autodocs/internal/metrics"
	"autodocs/internal/models"
	"autodocs/internal/repositories"
)

// VerificationSettings — диапазон OTP и окна жизни кодов/ссылок.
type VerificationSettings struct {
	OTPMin    int
	OTPMax    int
	OTPTTL    time.Duration
	LinkTTL   time.Duration
	PublicURL string
}

type VerificationService interface {
	IssueOTP(ctx context.Context, email string) (string, error)
	IssueLink(ctx context.Context, email string) (string, error)
	SendVerification(ctx context.Context, email string, method models.VerificationMethod) error
	Verify(ctx context.Context, email string, method models.VerificationMethod, token string) (*models.VerificationChallenge, error)
}

type verificationService struct {
	repo     repositories.VerificationRepository
	email    EmailService
	settings VerificationSettings
	jobs     *Dispatcher
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewVerificationService(
	repo repositories.VerificationRepository,
	email EmailService,
	settings VerificationSettings,
	jobs *Dispatcher,
	m *metrics.Metrics,
) VerificationService {
	return &verificationService{
		repo:     repo,
		email:    email,
		settings: settings,
		jobs:     jobs,
		metrics:  m,
		now:      time.Now,
	}
}

// IsExpired: now - issuedAt > window.
func IsExpired(ch *models.VerificationChallenge, window time.Duration, now time.Time) bool {
	return now.Sub(ch.CreatedAt) > window
}

// randomCode — равномерно из [min, max] включительно.
func randomCode(min, max int) (string, error) {
	if max < min {
		return "", fmt.Errorf("otp range [%d, %d] is empty", min, max)
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min)+1))
	if err != nil {
		return "", fmt.Errorf("otp rand: %w", err)
	}
	return strconv.FormatInt(n.Int64()+int64(min), 10), nil
}

func (s *verificationService) issue(ctx context.Context, email string, method models.VerificationMethod, token string) error {
	ch := &models.VerificationChallenge{
		Email:     email,
		Method:    method,
		Token:     token,
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, ch); err != nil {
		return err
	}
	log.Printf("[verify][issue] method=%s email=%q id=%d", method, email, ch.ID)
	return nil
}

func (s *verificationService) IssueOTP(ctx context.Context, email string) (string, error) {
	code, err := randomCode(s.settings.OTPMin, s.settings.OTPMax)
	if err != nil {
		return "", err
	}
	if err := s.issue(ctx, normalizeEmail(email), models.MethodOTP, code); err != nil {
		return "", err
	}
	return code, nil
}

func (s *verificationService) IssueLink(ctx context.Context, email string) (string, error) {
	token := uuid.NewString()
	if err := s.issue(ctx, normalizeEmail(email), models.MethodLink, token); err != nil {
		return "", err
	}
	return token, nil
}

// SendVerification сохраняет запись синхронно, письмо уходит в фоне.
// Ошибка доставки только логируется и попадает в метрику.
func (s *verificationService) SendVerification(ctx context.Context, email string, method models.VerificationMethod) error {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return newError(ErrValidation, "A valid email is required")
	}
	if !method.Valid() {
		return newError(ErrValidation, "Invalid method. Use 'otp' or 'link'")
	}

	var send func() error
	switch method {
	case models.MethodOTP:
		code, err := s.IssueOTP(ctx, email)
		if err != nil {
			return err
		}
		send = func() error { return s.email.SendOTPEmail(email, code) }
	case models.MethodLink:
		token, err := s.IssueLink(ctx, email)
		if err != nil {
			return err
		}
		link := VerificationLink(s.settings.PublicURL, email, token)
		send = func() error { return s.email.SendVerificationLinkEmail(email, link) }
	}

	s.jobs.Go("verification-email", func() {
		if err := send(); err != nil {
			s.metrics.VerificationEmails.WithLabelValues(string(method), "failed").Inc()
			log.Printf("[verify][send] email delivery failed: method=%s email=%q err=%v", method, email, err)
			return
		}
		s.metrics.VerificationEmails.WithLabelValues(string(method), "sent").Inc()
	})
	return nil
}

// Verify гасит самую свежую подходящую запись. Просроченная тоже гасится,
// но возвращается ErrExpired. Только ссылка активирует аккаунт.
func (s *verificationService) Verify(ctx context.Context, email string, method models.VerificationMethod, token string) (*models.VerificationChallenge, error) {
	if !method.Valid() {
		return nil, newError(ErrValidation, "Invalid method. Use 'otp' or 'link'")
	}
	email, token = normalizeEmail(email), strings.TrimSpace(token)
	if email == "" || token == "" {
		return nil, newError(ErrValidation, "email and unique_id are required")
	}

	window := s.settings.OTPTTL
	if method == models.MethodLink {
		window = s.settings.LinkTTL
	}
	now := s.now()

	var expired bool
	ch, err := s.repo.ConsumeLatest(ctx, method, email, token, func(ch *models.VerificationChallenge) bool {
		expired = IsExpired(ch, window, now)
		return !expired && method == models.MethodLink
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.metrics.Verifications.WithLabelValues(string(method), "not_found").Inc()
			if method == models.MethodOTP {
				return nil, newError(ErrNotFound, "Invalid OTP")
			}
			return nil, newError(ErrNotFound, "Invalid or already used verification link")
		}
		return nil, err
	}
	if expired {
		s.metrics.Verifications.WithLabelValues(string(method), "expired").Inc()
		if method == models.MethodOTP {
			return nil, newError(ErrExpired, "OTP expired")
		}
		return nil, newError(ErrExpired, "Verification link expired")
	}

	s.metrics.Verifications.WithLabelValues(string(method), "ok").Inc()
	log.Printf("[verify][redeem] ok: method=%s email=%q id=%d", method, email, ch.ID)
	return ch, nil
}
