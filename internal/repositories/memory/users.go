package memory

import (
	"context"
	"sort"
	"time"

	"autodocs/internal/models"
	"autodocs/internal/repositories"
)

type userStore struct {
	*Store
}

func (s *userStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicateEmail
		}
		if u.StudentID == user.StudentID {
			return repositories.ErrDuplicateStudentID
		}
	}
	if user.RoleID != nil && s.refByID(models.RefRole, *user.RoleID) == nil {
		return repositories.ErrForeignKey
	}
	if user.DepartmentID != nil {
		if _, ok := s.departments[*user.DepartmentID]; !ok {
			return repositories.ErrForeignKey
		}
	}

	now := s.now()
	user.ID = s.next("user")
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	s.users[user.ID] = &cp
	user.RoleName = s.userCopy(&cp).RoleName
	return nil
}

func (s *userStore) find(match func(u *models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return s.userCopy(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *userStore) GetByID(_ context.Context, id int) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.ID == id })
}

func (s *userStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Email == email })
}

func (s *userStore) GetByStudentID(_ context.Context, studentID int64) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.StudentID == studentID })
}

func (s *userStore) GetByRefreshToken(_ context.Context, token string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.RefreshToken != nil && *u.RefreshToken == token })
}

func (s *userStore) ExistsEmail(ctx context.Context, email string) (bool, error) {
	_, err := s.GetByEmail(ctx, email)
	return err == nil, nil
}

func (s *userStore) ExistsStudentID(ctx context.Context, studentID int64) (bool, error) {
	_, err := s.GetByStudentID(ctx, studentID)
	return err == nil, nil
}

func (s *userStore) Update(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	for id, u := range s.users {
		if id == user.ID {
			continue
		}
		if u.Email == user.Email {
			return repositories.ErrDuplicateEmail
		}
		if u.StudentID == user.StudentID {
			return repositories.ErrDuplicateStudentID
		}
	}

	next := *user
	// флаги и refresh не трогаем
	next.IsActive, next.IsEligible, next.IsRejected = cur.IsActive, cur.IsEligible, cur.IsRejected
	next.RefreshToken, next.RefreshExpiresAt, next.RefreshRevoked = cur.RefreshToken, cur.RefreshExpiresAt, cur.RefreshRevoked
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = s.now()
	s.users[user.ID] = &next
	user.UpdatedAt = next.UpdatedAt
	return nil
}

func (s *userStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.users, id)
	for rid, r := range s.requests {
		if r.UserID == id {
			delete(s.requests, rid)
		}
	}
	return nil
}

func (s *userStore) UpdateFlags(_ context.Context, studentID int64, fn func(u *models.User) error) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.StudentID != studentID {
			continue
		}
		work := s.userCopy(u)
		if err := fn(work); err != nil {
			return nil, err
		}
		u.IsEligible, u.IsRejected = work.IsEligible, work.IsRejected
		u.UpdatedAt = s.now()
		return s.userCopy(u), nil
	}
	return nil, repositories.ErrNotFound
}

func (s *userStore) ListRequests(_ context.Context, f models.UserRequestFilter) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []*models.User
	for _, u := range s.users {
		switch f.Status {
		case "pending":
			if u.IsActive || u.IsRejected {
				continue
			}
		case "verified":
			if !u.IsActive {
				continue
			}
		case "rejected":
			if !u.IsRejected {
				continue
			}
		}
		cp := s.userCopy(u)
		if len(f.RoleNames) > 0 && !contains(f.RoleNames, cp.RoleName) {
			continue
		}
		if f.StudentID != nil && u.StudentID != *f.StudentID {
			continue
		}
		res = append(res, cp)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (s *userStore) CountByRole(_ context.Context, roleName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := 0
	for _, u := range s.users {
		if s.userCopy(u).RoleName == roleName {
			c++
		}
	}
	return c, nil
}

func (s *userStore) UpdateRefresh(_ context.Context, userID int, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.RefreshToken, u.RefreshExpiresAt, u.RefreshRevoked = &token, &expiresAt, false
	return nil
}

func (s *userStore) RotateRefresh(_ context.Context, oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.RefreshToken != nil && *u.RefreshToken == oldToken {
			u.RefreshToken, u.RefreshExpiresAt, u.RefreshRevoked = &newToken, &newExpiresAt, false
			return s.userCopy(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}
