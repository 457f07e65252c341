package memory

import (
	"context"
	"sort"

	"autodocs/internal/models"
	"autodocs/internal/repositories"
)

type serviceRequestStore struct {
	*Store
}

func (s *serviceRequestStore) Create(_ context.Context, sr *models.ServiceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[sr.UserID]; !ok {
		return repositories.ErrForeignKey
	}
	if s.refByName(models.RefDocument, sr.Document) == nil || s.refByName(models.RefStatus, sr.Status) == nil {
		return repositories.ErrForeignKey
	}
	now := s.now()
	sr.ID = s.next("service_request")
	sr.CreatedAt, sr.UpdatedAt = now, now
	cp := *sr
	s.requests[sr.ID] = &cp
	return nil
}

func (s *serviceRequestStore) GetByID(_ context.Context, id int) (*models.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sr, ok := s.requests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *sr
	return &cp, nil
}

func (s *serviceRequestStore) ListByUser(_ context.Context, userID int) ([]*models.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []*models.ServiceRequest
	for _, sr := range s.requests {
		if sr.UserID == userID {
			cp := *sr
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })
	return res, nil
}

func (s *serviceRequestStore) UpdateStatus(_ context.Context, id int, status string, serial *string) (*models.ServiceRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sr, ok := s.requests[id]
	if !ok || s.refByName(models.RefStatus, status) == nil {
		return nil, repositories.ErrNotFound
	}
	if sr.Status != models.RequestPending {
		return nil, repositories.ErrConflict
	}
	sr.Status = status
	if serial != nil {
		v := *serial
		sr.Serial = &v
	}
	sr.UpdatedAt = s.now()
	cp := *sr
	return &cp, nil
}

func (s *serviceRequestStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests), nil
}

func (s *serviceRequestStore) CountByStatus(_ context.Context, status string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := 0
	for _, sr := range s.requests {
		if sr.Status == status {
			c++
		}
	}
	return c, nil
}
