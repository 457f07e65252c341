package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"autodocs/internal/authz"
	"autodocs/internal/metrics"
	"autodocs/internal/models"
	"autodocs/internal/repositories"
)

type UserService interface {
	Register(ctx context.Context, profile models.UserProfile, password string) (*models.User, error)
	CreateAdmin(ctx context.Context, email string, studentID int64, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	GetUserByStudentID(ctx context.Context, studentID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int, profile models.UserProfile, newPassword *string) (*models.User, error)
	DeleteAccount(ctx context.Context, userID int) error
	SetEligibility(ctx context.Context, studentID int64, eligible bool) (*models.User, error)
	ListRequests(ctx context.Context, status, userType, studentID string) ([]*models.User, error)
}

type userService struct {
	repo     repositories.UserRepository
	refs     *ReferenceService
	auth     AuthService
	notifier AdminNotifier
	jobs     *Dispatcher
	metrics  *metrics.Metrics
}

func NewUserService(
	repo repositories.UserRepository,
	refs *ReferenceService,
	auth AuthService,
	notifier AdminNotifier,
	jobs *Dispatcher,
	m *metrics.Metrics,
) UserService {
	return &userService{
		repo:     repo,
		refs:     refs,
		auth:     auth,
		notifier: notifier,
		jobs:     jobs,
		metrics:  m,
	}
}

// 2020-21 или 2020-2021
var sessionPattern = regexp.MustCompile(`^\d{4}-\d{2}(\d{2})?$`)

var (
	errEmailTaken     = &Error{Kind: ErrDuplicateEmail, Detail: "Email already exists"}
	errStudentIDTaken = &Error{Kind: ErrDuplicateStudentID, Detail: "Student ID already exists"}
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Register(ctx context.Context, p models.UserProfile, password string) (*models.User, error) {
	if p.Email == nil || normalizeEmail(*p.Email) == "" {
		return nil, newError(ErrValidation, "Email is required")
	}
	if p.StudentID == nil || *p.StudentID <= 0 {
		return nil, newError(ErrValidation, "Student ID is required")
	}
	if p.Session == nil || !sessionPattern.MatchString(strings.TrimSpace(*p.Session)) {
		return nil, newError(ErrValidation, "Session must look like 2020-21")
	}
	if strings.TrimSpace(password) == "" {
		return nil, newError(ErrValidation, "Password is required")
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}
	email := normalizeEmail(*p.Email)

	if exists, err := s.repo.ExistsEmail(ctx, email); err != nil {
		return nil, err
	} else if exists {
		return nil, errEmailTaken
	}
	if exists, err := s.repo.ExistsStudentID(ctx, *p.StudentID); err != nil {
		return nil, err
	} else if exists {
		return nil, errStudentIDTaken
	}

	user := &models.User{Email: email, StudentID: *p.StudentID}
	if err := s.applyProfile(ctx, user, p); err != nil {
		return nil, err
	}
	// админов создаёт только CLI
	if user.RoleName != "" && authz.IsAdmin(user.RoleName) {
		return nil, newError(ErrInvalidReference, "Invalid role ID")
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	// новый аккаунт всегда неактивен до верификации
	user.IsActive, user.IsEligible, user.IsRejected = false, false, false
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, mapRepoError(err)
	}

	s.metrics.Registrations.Inc()
	log.Printf("[user][register] ok: id=%d email=%q student_id=%d", user.ID, user.Email, user.StudentID)

	if s.notifier != nil {
		u := *user
		s.jobs.Go("notify-registration", func() {
			if err := s.notifier.NotifyRegistration(&u); err != nil {
				log.Printf("[user][register] admin notification failed: id=%d err=%v", u.ID, err)
			}
		})
	}
	return user, nil
}

// CreateAdmin — сразу активный аккаунт с ролью Admin (команда create-admin).
func (s *userService) CreateAdmin(ctx context.Context, email string, studentID int64, password string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" || studentID <= 0 || strings.TrimSpace(password) == "" {
		return nil, newError(ErrValidation, "email, student id and password are required")
	}
	role, err := s.refs.ResolveName(ctx, models.RefRole, authz.RoleAdmin)
	if err != nil {
		return nil, err
	}
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		StudentID:    studentID,
		PasswordHash: hash,
		RoleID:       &role.ID,
		RoleName:     role.Name,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, mapRepoError(err)
	}
	log.Printf("[user][create-admin] ok: id=%d email=%q", user.ID, user.Email)
	return user, nil
}

// applyProfile копирует переданные поля и проверяет внешние ключи.
func (s *userService) applyProfile(ctx context.Context, u *models.User, p models.UserProfile) error {
	if p.Role != nil {
		ref, err := s.refs.Resolve(ctx, models.RefRole, *p.Role)
		if err != nil {
			return err
		}
		u.RoleID = &ref.ID
		u.RoleName = ref.Name
	}
	if p.Department != nil {
		ref, err := s.refs.Resolve(ctx, models.RefDepartment, *p.Department)
		if err != nil {
			return err
		}
		u.DepartmentID = &ref.ID
	}
	if p.Gender != nil {
		ref, err := s.refs.Resolve(ctx, models.RefGender, *p.Gender)
		if err != nil {
			return err
		}
		u.GenderID = &ref.ID
	}

	if p.Session != nil {
		sess := strings.TrimSpace(*p.Session)
		if !sessionPattern.MatchString(sess) {
			return newError(ErrValidation, "Session must look like 2020-21")
		}
		u.Session = sess
	}
	if p.CGPA != nil {
		if *p.CGPA < 0 || *p.CGPA > 4 {
			return newError(ErrValidation, "CGPA must be between 0 and 4")
		}
		u.CGPA = p.CGPA
	}
	setString(&u.Username, p.Username)
	setString(&u.FullName, p.FullName)
	setString(&u.NameFather, p.NameFather)
	setString(&u.NameMother, p.NameMother)
	setString(&u.MobileNumber, p.MobileNumber)
	setString(&u.BloodGroup, p.BloodGroup)
	setString(&u.PassedYear, p.PassedYear)
	if p.DateOfBirth != nil {
		u.DateOfBirth = p.DateOfBirth
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

const minPasswordLen = 6

func checkPassword(password string) error {
	if len(strings.TrimSpace(password)) < minPasswordLen {
		return newError(ErrValidation, "Password must be at least %d characters", minPasswordLen)
	}
	return nil
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrDuplicateEmail):
		return errEmailTaken
	case errors.Is(err, repositories.ErrDuplicateStudentID):
		return errStudentIDTaken
	case errors.Is(err, repositories.ErrForeignKey):
		return newError(ErrInvalidReference, "Invalid reference")
	case errors.Is(err, repositories.ErrNotFound):
		return ErrNotFound
	}
	return err
}

func (s *userService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return u, nil
}

func (s *userService) GetUserByStudentID(ctx context.Context, studentID int64) (*models.User, error) {
	u, err := s.repo.GetByStudentID(ctx, studentID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return u, nil
}

// UpdateProfile — частичное обновление владельцем. Флаги и роль владелец не меняет.
func (s *userService) UpdateProfile(ctx context.Context, userID int, p models.UserProfile, newPassword *string) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	if p.Email != nil {
		email := normalizeEmail(*p.Email)
		if email == "" {
			return nil, newError(ErrValidation, "Email cannot be empty")
		}
		if email != u.Email {
			if exists, err := s.repo.ExistsEmail(ctx, email); err != nil {
				return nil, err
			} else if exists {
				return nil, errEmailTaken
			}
			u.Email = email
		}
	}
	if p.StudentID != nil && *p.StudentID != u.StudentID {
		if *p.StudentID <= 0 {
			return nil, newError(ErrValidation, "Student ID is required")
		}
		if exists, err := s.repo.ExistsStudentID(ctx, *p.StudentID); err != nil {
			return nil, err
		} else if exists {
			return nil, errStudentIDTaken
		}
		u.StudentID = *p.StudentID
	}

	p.Role = nil
	if err := s.applyProfile(ctx, u, p); err != nil {
		return nil, err
	}

	if newPassword != nil {
		if err := checkPassword(*newPassword); err != nil {
			return nil, err
		}
		hash, err := s.auth.HashPassword(strings.TrimSpace(*newPassword))
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return nil, mapRepoError(err)
	}
	log.Printf("[user][update] ok: id=%d", u.ID)
	return u, nil
}

func (s *userService) DeleteAccount(ctx context.Context, userID int) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return mapRepoError(err)
	}
	log.Printf("[user][delete] ok: id=%d", userID)
	return nil
}

// SetEligibility — решение админа. Одобрение и отказ терминальны:
// повтор того же решения идемпотентен, противоположное — ErrStateConflict.
func (s *userService) SetEligibility(ctx context.Context, studentID int64, eligible bool) (*models.User, error) {
	u, err := s.repo.UpdateFlags(ctx, studentID, func(u *models.User) error {
		if eligible {
			if u.IsRejected {
				return newError(ErrStateConflict, "User account is already rejected")
			}
			u.IsEligible = true
			return nil
		}
		if u.IsEligible {
			return newError(ErrStateConflict, "User account is already approved")
		}
		u.IsRejected = true
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found.")
		}
		return nil, err
	}

	decision := "rejected"
	if eligible {
		decision = "approved"
	}
	s.metrics.EligibilityChanges.WithLabelValues(decision).Inc()
	log.Printf("[user][eligibility] student_id=%d decision=%s", studentID, decision)
	return u, nil
}

// ListRequests — фильтр заявок на аккаунт: status (all|pending|verified|rejected),
// type (alumni|student; по умолчанию оба), studentID.
func (s *userService) ListRequests(ctx context.Context, status, userType, studentID string) ([]*models.User, error) {
	f := models.UserRequestFilter{Status: status}
	switch status {
	case "", "all", "pending", "verified", "rejected":
	default:
		f.Status = "all"
	}

	switch userType {
	case "alumni":
		f.RoleNames = []string{authz.RoleAlumni}
	case "student":
		f.RoleNames = []string{authz.RoleStudent}
	default:
		f.RoleNames = []string{authz.RoleAlumni, authz.RoleStudent}
	}

	if studentID != "" {
		id, err := strconv.ParseInt(studentID, 10, 64)
		if err != nil {
			return nil, newError(ErrValidation, "Invalid user ID provided.")
		}
		f.StudentID = &id
	}

	users, err := s.repo.ListRequests(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list user requests: %w", err)
	}
	if len(users) == 0 {
		return nil, newError(ErrNotFound, "No user requests found.")
	}
	return users, nil
}
