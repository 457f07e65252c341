package services

import (
	"context"
	"fmt"

	"autodocs/internal/authz"
	"autodocs/internal/models"
	"autodocs/internal/repositories"
)

type OverviewService interface {
	Summarize(ctx context.Context) (*models.ServicesOverview, error)
}

type overviewService struct {
	requests  repositories.ServiceRequestRepository
	users     repositories.UserRepository
	unitPrice int
}

// NewOverviewService: unitPrice — условная цена одной принятой заявки.
func NewOverviewService(requests repositories.ServiceRequestRepository, users repositories.UserRepository, unitPrice int) OverviewService {
	return &overviewService{requests: requests, users: users, unitPrice: unitPrice}
}

func (s *overviewService) Summarize(ctx context.Context) (*models.ServicesOverview, error) {
	total, err := s.requests.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("overview total: %w", err)
	}
	if total == 0 {
		return nil, newError(ErrNotFound, "No services found.")
	}
	pending, err := s.requests.CountByStatus(ctx, models.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("overview pending: %w", err)
	}
	accepted, err := s.requests.CountByStatus(ctx, models.RequestAccepted)
	if err != nil {
		return nil, fmt.Errorf("overview accepted: %w", err)
	}
	students, err := s.users.CountByRole(ctx, authz.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("overview students: %w", err)
	}
	alumni, err := s.users.CountByRole(ctx, authz.RoleAlumni)
	if err != nil {
		return nil, fmt.Errorf("overview alumni: %w", err)
	}

	return &models.ServicesOverview{
		Total:    total,
		Pending:  pending,
		Students: students,
		Alumni:   alumni,
		Revenue:  accepted * s.unitPrice,
	}, nil
}
