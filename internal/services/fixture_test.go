package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"autodocs/internal/metrics"
	"autodocs/internal/models"
	"autodocs/internal/repositories/memory"
)

// fakeEmail запоминает отправленные письма; fail включает ошибку доставки.
type fakeEmail struct {
	mu    sync.Mutex
	codes map[string]string
	links map[string]string
	fail  bool
}

func newFakeEmail() *fakeEmail {
	return &fakeEmail{codes: map[string]string{}, links: map[string]string{}}
}

func (f *fakeEmail) SendOTPEmail(email, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp down")
	}
	f.codes[email] = code
	return nil
}

func (f *fakeEmail) SendVerificationLinkEmail(email, link string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp down")
	}
	f.links[email] = link
	return nil
}

type fixture struct {
	ctx     context.Context
	store   *memory.Store
	metrics *metrics.Metrics
	jobs    *Dispatcher
	email   *fakeEmail
	auth    AuthService
	refs    *ReferenceService

	users    UserService
	sessions SessionService
	verify   VerificationService
	serials  SerialService
	requests ServiceRequestService
	overview OverviewService
	depts    DepartmentService

	deptID int
}

const (
	roleAdmin   = 1
	roleStudent = 2
	roleAlumni  = 3
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:     context.Background(),
		store:   memory.New(),
		metrics: metrics.New(),
		jobs:    NewDispatcher(),
		email:   newFakeEmail(),
		auth:    NewAuthService("test-secret", 15*time.Minute, time.Hour),
	}
	f.refs = NewReferenceService(f.store.References())
	f.users = NewUserService(f.store.Users(), f.refs, f.auth, nil, f.jobs, f.metrics)
	f.sessions = NewSessionService(f.store.Users(), f.auth)
	f.verify = NewVerificationService(f.store.Verifications(), f.email, VerificationSettings{
		OTPMin:    100000,
		OTPMax:    999999,
		OTPTTL:    5 * time.Minute,
		LinkTTL:   15 * time.Minute,
		PublicURL: "http://localhost:8080",
	}, f.jobs, f.metrics)
	f.serials = NewSerialService(f.store.Users(), f.store.Departments(), f.metrics)
	f.requests = NewServiceRequestService(f.store.ServiceRequests(), f.store.Users(), f.serials)
	f.overview = NewOverviewService(f.store.ServiceRequests(), f.store.Users(), 100)
	f.depts = NewDepartmentService(f.store.Departments())

	uni := f.store.AddUniversity("North South University", "NSU")
	fac := f.store.AddFaculty("Engineering", uni)
	d := &models.Department{Name: "Computer Science", Code: 7, FacultyID: fac}
	require.NoError(t, f.depts.Create(f.ctx, d))
	f.deptID = d.ID
	return f
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func intPtr(v int) *int { return &v }

// profile — минимальный валидный профиль студента.
func (f *fixture) profile(studentID int64) models.UserProfile {
	return models.UserProfile{
		Email:      strPtr(gofakeit.Email()),
		StudentID:  int64Ptr(studentID),
		Session:    strPtr("2022-23"),
		FullName:   strPtr(gofakeit.Name()),
		Role:       intPtr(roleStudent),
		Department: intPtr(f.deptID),
	}
}

func (f *fixture) register(t *testing.T, studentID int64) *models.User {
	t.Helper()
	u, err := f.users.Register(f.ctx, f.profile(studentID), "s3cret-pass")
	require.NoError(t, err)
	return u
}

// eligible — зарегистрированный, подтверждённый по ссылке и одобренный аккаунт.
func (f *fixture) eligible(t *testing.T, studentID int64) *models.User {
	t.Helper()
	u := f.register(t, studentID)
	token, err := f.verify.IssueLink(f.ctx, u.Email)
	require.NoError(t, err)
	_, err = f.verify.Verify(f.ctx, u.Email, models.MethodLink, token)
	require.NoError(t, err)
	u, err = f.users.SetEligibility(f.ctx, studentID, true)
	require.NoError(t, err)
	return u
}
