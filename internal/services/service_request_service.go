package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"autodocs/internal/authz"
	"autodocs/internal/models"
	"autodocs/internal/repositories"
)

type ServiceRequestService interface {
	Submit(ctx context.Context, userID int, docType string) (*models.ServiceRequest, error)
	ListMine(ctx context.Context, userID int) ([]*models.ServiceRequest, error)
	// Review — решение админа по заявке; Accepted проставляет серийный номер.
	Review(ctx context.Context, requestID int, status string) (*models.ServiceRequest, error)
}

type serviceRequestService struct {
	repo    repositories.ServiceRequestRepository
	users   repositories.UserRepository
	serials SerialService
}

func NewServiceRequestService(
	repo repositories.ServiceRequestRepository,
	users repositories.UserRepository,
	serials SerialService,
) ServiceRequestService {
	return &serviceRequestService{repo: repo, users: users, serials: serials}
}

func (s *serviceRequestService) Submit(ctx context.Context, userID int, docType string) (*models.ServiceRequest, error) {
	docType = strings.ToLower(strings.TrimSpace(docType))
	if docType == "" {
		return nil, newError(ErrValidation, "document type is required")
	}
	if DocumentTag(docType) == InvalidTag {
		return nil, newError(ErrValidation, "Invalid document type %q", docType)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if !authz.CanRequestDocuments(u) {
		return nil, newError(ErrForbidden, "Only students and alumni can request documents")
	}
	if !u.IsEligible || u.IsRejected {
		return nil, errNotEligible
	}

	sr := &models.ServiceRequest{UserID: u.ID, Document: docType, Status: models.RequestPending}
	if err := s.repo.Create(ctx, sr); err != nil {
		return nil, mapRepoError(err)
	}
	log.Printf("[service][submit] ok: id=%d user_id=%d doc=%s", sr.ID, u.ID, docType)
	return sr, nil
}

func (s *serviceRequestService) ListMine(ctx context.Context, userID int) ([]*models.ServiceRequest, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *serviceRequestService) Review(ctx context.Context, requestID int, status string) (*models.ServiceRequest, error) {
	switch status {
	case models.RequestAccepted, models.RequestRejected:
	default:
		return nil, newError(ErrValidation, "status must be %q or %q", models.RequestAccepted, models.RequestRejected)
	}

	sr, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "Service request not found.")
		}
		return nil, err
	}
	if sr.Status != models.RequestPending {
		return decided(sr, status)
	}

	var serial *string
	if status == models.RequestAccepted {
		u, err := s.users.GetByID(ctx, sr.UserID)
		if err != nil {
			return nil, mapRepoError(err)
		}
		code, err := s.serials.ForUser(ctx, u, sr.Document)
		if err != nil {
			return nil, err
		}
		serial = &code
	}

	updated, err := s.repo.UpdateStatus(ctx, sr.ID, status, serial)
	if errors.Is(err, repositories.ErrConflict) {
		// решение приняли параллельно между чтением и записью
		cur, getErr := s.repo.GetByID(ctx, sr.ID)
		if getErr != nil {
			return nil, mapRepoError(getErr)
		}
		return decided(cur, status)
	}
	if err != nil {
		return nil, mapRepoError(err)
	}
	log.Printf("[service][review] id=%d status=%s", updated.ID, updated.Status)
	return updated, nil
}

// decided — повтор того же решения идемпотентен, противоположное даёт 409.
func decided(sr *models.ServiceRequest, status string) (*models.ServiceRequest, error) {
	if sr.Status == status {
		return sr, nil
	}
	return nil, newError(ErrStateConflict, "Service request is already %s", strings.ToLower(sr.Status))
}
