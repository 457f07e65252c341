package memory

import (
	"context"
	"sort"

	"autodocs/internal/models"
	"autodocs/internal/repositories"
)

type referenceStore struct {
	*Store
}

func (s *referenceStore) Get(_ context.Context, kind models.ReferenceKind, id int) (*models.Reference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kind == models.RefDepartment {
		d, ok := s.departments[id]
		if !ok {
			return nil, repositories.ErrNotFound
		}
		return &models.Reference{ID: d.ID, Kind: kind, Name: d.Name}, nil
	}
	if r := s.refByID(kind, id); r != nil {
		cp := *r
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *referenceStore) GetByName(_ context.Context, kind models.ReferenceKind, name string) (*models.Reference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.refByName(kind, name); r != nil {
		cp := *r
		return &cp, nil
	}
	return nil, repositories.ErrNotFound
}

type departmentStore struct {
	*Store
}

func (s *departmentStore) GetByID(_ context.Context, id int) (*models.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.departments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return s.departmentCopy(d), nil
}

func (s *departmentStore) GetByCode(_ context.Context, code int) (*models.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.departments {
		if d.Code == code {
			return s.departmentCopy(d), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *departmentStore) List(_ context.Context) ([]*models.Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]*models.Department, 0, len(s.departments))
	for _, d := range s.departments {
		res = append(res, s.departmentCopy(d))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Code < res[j].Code })
	return res, nil
}

func (s *departmentStore) Create(_ context.Context, d *models.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.faculties[d.FacultyID]; !ok {
		return repositories.ErrForeignKey
	}
	for _, cur := range s.departments {
		if cur.Code == d.Code {
			return repositories.ErrDuplicate
		}
	}
	d.ID = s.next("department")
	cp := *d
	s.departments[d.ID] = &cp
	return nil
}

func (s *departmentStore) Update(_ context.Context, d *models.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.faculties[d.FacultyID]; !ok {
		return repositories.ErrForeignKey
	}
	for _, cur := range s.departments {
		if cur.Code == d.Code {
			cur.Name, cur.FacultyID = d.Name, d.FacultyID
			d.ID = cur.ID
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *departmentStore) DeleteByCode(_ context.Context, code int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cur := range s.departments {
		if cur.Code == code {
			delete(s.departments, id)
			// ON DELETE SET NULL
			for _, u := range s.users {
				if u.DepartmentID != nil && *u.DepartmentID == id {
					u.DepartmentID = nil
				}
			}
			return nil
		}
	}
	return repositories.ErrNotFound
}
