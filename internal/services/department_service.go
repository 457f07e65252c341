package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"autodocs/internal/models"
	"autodocs/internal/repositories"
)

type DepartmentService interface {
	List(ctx context.Context) ([]*models.Department, error)
	Get(ctx context.Context, code int) (*models.Department, error)
	Create(ctx context.Context, d *models.Department) error
	Update(ctx context.Context, code int, d *models.Department) (*models.Department, error)
	Delete(ctx context.Context, code int) error
}

type departmentService struct {
	repo repositories.DepartmentRepository
}

func NewDepartmentService(repo repositories.DepartmentRepository) DepartmentService {
	return &departmentService{repo: repo}
}

func departmentError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return newError(ErrNotFound, "Department not found.")
	case errors.Is(err, repositories.ErrDuplicate):
		return newError(ErrValidation, "Department with this code already exists")
	case errors.Is(err, repositories.ErrForeignKey):
		return newError(ErrInvalidReference, "Invalid faculty ID")
	}
	return err
}

func validateDepartment(d *models.Department) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return newError(ErrValidation, "name is required")
	}
	if d.Code <= 0 || d.Code > 99 {
		return newError(ErrValidation, "code must be between 1 and 99")
	}
	return nil
}

func (s *departmentService) List(ctx context.Context) ([]*models.Department, error) {
	return s.repo.List(ctx)
}

func (s *departmentService) Get(ctx context.Context, code int) (*models.Department, error) {
	d, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, departmentError(err)
	}
	return d, nil
}

func (s *departmentService) Create(ctx context.Context, d *models.Department) error {
	if err := validateDepartment(d); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return departmentError(err)
	}
	log.Printf("[department][create] id=%d code=%d", d.ID, d.Code)
	return nil
}

// Update — код в пути неизменен, меняются имя и факультет.
func (s *departmentService) Update(ctx context.Context, code int, d *models.Department) (*models.Department, error) {
	d.Code = code
	if err := validateDepartment(d); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, departmentError(err)
	}
	return s.Get(ctx, code)
}

func (s *departmentService) Delete(ctx context.Context, code int) error {
	if err := s.repo.DeleteByCode(ctx, code); err != nil {
		return departmentError(err)
	}
	log.Printf("[department][delete] code=%d", code)
	return nil
}
