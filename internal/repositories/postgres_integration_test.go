//go:build integration

package repositories_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"autodocs/internal/migrations"
	"autodocs/internal/models"
	"autodocs/internal/repositories"
)

type PostgresSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcpostgres.PostgresContainer
	db        *sql.DB

	users    repositories.UserRepository
	verify   repositories.VerificationRepository
	refs     repositories.ReferenceRepository
	depts    repositories.DepartmentRepository
	requests repositories.ServiceRequestRepository

	facultyID int
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("autodocs"),
		tcpostgres.WithUsername("autodocs"),
		tcpostgres.WithPassword("autodocs"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		s.T().Fatalf("failed to start postgres container: %v", err)
	}
	s.container = container

	dsn, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.db, err = sql.Open("postgres", dsn)
	s.Require().NoError(err)
	s.Require().NoError(s.db.PingContext(s.ctx))

	s.Require().NoError(migrations.Apply(s.ctx, s.db))
	// повторный прогон не должен падать
	s.Require().NoError(migrations.Apply(s.ctx, s.db))

	s.users = repositories.NewUserRepository(s.db)
	s.verify = repositories.NewVerificationRepository(s.db)
	s.refs = repositories.NewReferenceRepository(s.db)
	s.depts = repositories.NewDepartmentRepository(s.db)
	s.requests = repositories.NewServiceRequestRepository(s.db)

	var uniID int
	s.Require().NoError(s.db.QueryRowContext(s.ctx,
		`INSERT INTO universities (name, code) VALUES ('North South University', 'NSU') RETURNING id`).Scan(&uniID))
	s.Require().NoError(s.db.QueryRowContext(s.ctx,
		`INSERT INTO faculties (name, university_id) VALUES ('Engineering', $1) RETURNING id`, uniID).Scan(&s.facultyID))
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if err := testcontainers.TerminateContainer(s.container); err != nil {
		s.T().Logf("terminate postgres container: %v", err)
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.db.ExecContext(s.ctx, `TRUNCATE service_requests, verification_challenges, users, departments RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) roleID(name string) int {
	ref, err := s.refs.GetByName(s.ctx, models.RefRole, name)
	s.Require().NoError(err)
	return ref.ID
}

func (s *PostgresSuite) newUser(studentID int64) *models.User {
	role := s.roleID("Student")
	u := &models.User{
		Email:        gofakeit.Email(),
		PasswordHash: "$2a$10$hash",
		StudentID:    studentID,
		Session:      "2022-23",
		RoleID:       &role,
	}
	s.Require().NoError(s.users.Create(s.ctx, u))
	return u
}

func (s *PostgresSuite) TestUserUniqueness() {
	u := s.newUser(1001)

	err := s.users.Create(s.ctx, &models.User{Email: u.Email, PasswordHash: "x", StudentID: 2})
	s.ErrorIs(err, repositories.ErrDuplicateEmail)

	err = s.users.Create(s.ctx, &models.User{Email: gofakeit.Email(), PasswordHash: "x", StudentID: 1001})
	s.ErrorIs(err, repositories.ErrDuplicateStudentID)

	bad := 999
	err = s.users.Create(s.ctx, &models.User{Email: gofakeit.Email(), PasswordHash: "x", StudentID: 3, RoleID: &bad})
	s.ErrorIs(err, repositories.ErrForeignKey)
}

func (s *PostgresSuite) TestUpdateFlagsCheckConstraint() {
	s.newUser(1001)

	u, err := s.users.UpdateFlags(s.ctx, 1001, func(u *models.User) error {
		u.IsEligible = true
		return nil
	})
	s.Require().NoError(err)
	s.True(u.IsEligible)

	// eligible+rejected запрещено CHECK-ограничением
	_, err = s.users.UpdateFlags(s.ctx, 1001, func(u *models.User) error {
		u.IsRejected = true
		return nil
	})
	s.Error(err)

	got, err := s.users.GetByStudentID(s.ctx, 1001)
	s.Require().NoError(err)
	s.False(got.IsRejected)

	_, err = s.users.UpdateFlags(s.ctx, 42, func(*models.User) error { return nil })
	s.ErrorIs(err, repositories.ErrNotFound)
}

func (s *PostgresSuite) TestConsumeLatestIsSingleUseUnderConcurrency() {
	u := s.newUser(1001)
	s.Require().NoError(s.verify.Create(s.ctx, &models.VerificationChallenge{
		Email: u.Email, Method: models.MethodLink, Token: "tok", CreatedAt: time.Now(),
	}))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.verify.ConsumeLatest(s.ctx, models.MethodLink, u.Email, "tok",
				func(*models.VerificationChallenge) bool { return true })
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else if !errors.Is(err, repositories.ErrNotFound) {
				s.T().Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	s.Equal(1, successes)

	got, err := s.users.GetByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(got.IsActive)
}

func (s *PostgresSuite) TestListRequestsAndCounts() {
	s.newUser(1)
	alumni := s.roleID("Alumni")
	s.Require().NoError(s.users.Create(s.ctx, &models.User{
		Email: gofakeit.Email(), PasswordHash: "x", StudentID: 2, RoleID: &alumni, IsActive: true,
	}))

	res, err := s.users.ListRequests(s.ctx, models.UserRequestFilter{Status: "verified", RoleNames: []string{"Alumni", "Student"}})
	s.Require().NoError(err)
	s.Require().Len(res, 1)
	s.Equal(int64(2), res[0].StudentID)

	_, err = s.users.UpdateFlags(s.ctx, 1, func(u *models.User) error {
		u.IsRejected = true
		return nil
	})
	s.Require().NoError(err)
	pending, err := s.users.ListRequests(s.ctx, models.UserRequestFilter{Status: "pending"})
	s.Require().NoError(err)
	s.Empty(pending)

	n, err := s.users.CountByRole(s.ctx, "Student")
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *PostgresSuite) TestDepartmentsAndServiceRequests() {
	d := &models.Department{Name: "Computer Science", Code: 7, FacultyID: s.facultyID}
	s.Require().NoError(s.depts.Create(s.ctx, d))
	s.ErrorIs(s.depts.Create(s.ctx, &models.Department{Name: "Dup", Code: 7, FacultyID: s.facultyID}), repositories.ErrDuplicate)

	got, err := s.depts.GetByID(s.ctx, d.ID)
	s.Require().NoError(err)
	s.Equal("NSU", got.UniversityCode)

	u := s.newUser(1001)
	sr := &models.ServiceRequest{UserID: u.ID, Document: models.DocCertificate, Status: models.RequestPending}
	s.Require().NoError(s.requests.Create(s.ctx, sr))
	s.ErrorIs(s.requests.Create(s.ctx, &models.ServiceRequest{UserID: u.ID, Document: "diploma", Status: models.RequestPending}), repositories.ErrForeignKey)

	serial := "CRTNSU0701222403090805"
	updated, err := s.requests.UpdateStatus(s.ctx, sr.ID, models.RequestAccepted, &serial)
	s.Require().NoError(err)
	s.Equal(models.RequestAccepted, updated.Status)
	s.Equal(serial, *updated.Serial)

	_, err = s.requests.UpdateStatus(s.ctx, sr.ID, models.RequestRejected, nil)
	s.ErrorIs(err, repositories.ErrConflict)
	_, err = s.requests.UpdateStatus(s.ctx, 999, models.RequestRejected, nil)
	s.ErrorIs(err, repositories.ErrNotFound)

	accepted, err := s.requests.CountByStatus(s.ctx, models.RequestAccepted)
	s.Require().NoError(err)
	s.Equal(1, accepted)

	s.Require().NoError(s.users.Delete(s.ctx, u.ID))
	total, err := s.requests.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, total)
}
