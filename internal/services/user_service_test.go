package services

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autodocs/internal/models"
)

func detail(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Detail
	}
	return ""
}

func TestRegister_Example(t *testing.T) {
	f := newFixture(t)

	p := models.UserProfile{
		Email:     strPtr("a@x.edu"),
		StudentID: int64Ptr(1001),
		Session:   strPtr("2022-23"),
	}
	u, err := f.users.Register(f.ctx, p, "pass123")
	require.NoError(t, err)
	assert.Equal(t, "a@x.edu", u.Email)
	assert.Equal(t, models.AccountPending, u.State())
	assert.NotEqual(t, "pass123", u.PasswordHash)
	assert.True(t, f.auth.CheckPassword(u.PasswordHash, "pass123"))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Registrations))

	p.StudentID = int64Ptr(1002)
	_, err = f.users.Register(f.ctx, p, "pass123")
	require.ErrorIs(t, err, ErrDuplicateEmail)
	assert.True(t, IsDuplicate(err))
	assert.Equal(t, "Email already exists", detail(err))
}

func TestRegister_DuplicateStudentID(t *testing.T) {
	f := newFixture(t)
	f.register(t, 1001)

	_, err := f.users.Register(f.ctx, f.profile(1001), "pass123")
	require.ErrorIs(t, err, ErrDuplicateStudentID)
	assert.Equal(t, "Student ID already exists", detail(err))
}

func TestRegister_EmailIsNormalized(t *testing.T) {
	f := newFixture(t)
	p := f.profile(1)
	p.Email = strPtr("  Mixed@X.EDU ")
	u, err := f.users.Register(f.ctx, p, "pass123")
	require.NoError(t, err)
	assert.Equal(t, "mixed@x.edu", u.Email)

	p2 := f.profile(2)
	p2.Email = strPtr("mixed@x.edu")
	_, err = f.users.Register(f.ctx, p2, "pass123")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegister_InvalidReferences(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		mutate func(p *models.UserProfile)
		want   string
	}{
		{"role", func(p *models.UserProfile) { p.Role = intPtr(42) }, "Invalid role ID"},
		{"department", func(p *models.UserProfile) { p.Department = intPtr(42) }, "Invalid department ID"},
		{"gender", func(p *models.UserProfile) { p.Gender = intPtr(42) }, "Invalid gender ID"},
		{"admin role", func(p *models.UserProfile) { p.Role = intPtr(roleAdmin) }, "Invalid role ID"},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := f.profile(int64(100 + i))
			tc.mutate(&p)
			_, err := f.users.Register(f.ctx, p, "pass123")
			require.ErrorIs(t, err, ErrInvalidReference)
			assert.Equal(t, tc.want, detail(err))
		})
	}
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	p := f.profile(1)
	p.Session = strPtr("twenty")
	_, err := f.users.Register(f.ctx, p, "pass123")
	assert.ErrorIs(t, err, ErrValidation)

	p = f.profile(2)
	p.Email = nil
	_, err = f.users.Register(f.ctx, p, "pass123")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.users.Register(f.ctx, f.profile(3), "  ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.users.Register(f.ctx, f.profile(4), "abc12")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Password must be at least 6 characters", detail(err))
	_, err = f.users.GetUserByStudentID(f.ctx, 4)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetEligibility_Precedence(t *testing.T) {
	f := newFixture(t)
	f.register(t, 1001)
	f.register(t, 1002)

	t.Run("reject then approve conflicts", func(t *testing.T) {
		u, err := f.users.SetEligibility(f.ctx, 1001, false)
		require.NoError(t, err)
		assert.Equal(t, models.AccountRejected, u.State())

		_, err = f.users.SetEligibility(f.ctx, 1001, true)
		require.ErrorIs(t, err, ErrStateConflict)

		got, err := f.users.GetUserByStudentID(f.ctx, 1001)
		require.NoError(t, err)
		assert.True(t, got.IsRejected)
		assert.False(t, got.IsEligible)
	})

	t.Run("approve then reject conflicts", func(t *testing.T) {
		_, err := f.users.SetEligibility(f.ctx, 1002, true)
		require.NoError(t, err)
		_, err = f.users.SetEligibility(f.ctx, 1002, false)
		require.ErrorIs(t, err, ErrStateConflict)

		got, err := f.users.GetUserByStudentID(f.ctx, 1002)
		require.NoError(t, err)
		assert.Equal(t, models.AccountEligible, got.State())
	})

	t.Run("same decision is idempotent", func(t *testing.T) {
		u, err := f.users.SetEligibility(f.ctx, 1002, true)
		require.NoError(t, err)
		assert.True(t, u.IsEligible)
		assert.False(t, u.IsRejected)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := f.users.SetEligibility(f.ctx, 9999, true)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.EligibilityChanges.WithLabelValues("rejected")))
}

func TestListRequests(t *testing.T) {
	f := newFixture(t)
	f.register(t, 1)
	alumni := f.profile(2)
	alumni.Role = intPtr(roleAlumni)
	_, err := f.users.Register(f.ctx, alumni, "pass123")
	require.NoError(t, err)

	all, err := f.users.ListRequests(f.ctx, "all", "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyAlumni, err := f.users.ListRequests(f.ctx, "pending", "alumni", "")
	require.NoError(t, err)
	require.Len(t, onlyAlumni, 1)
	assert.Equal(t, int64(2), onlyAlumni[0].StudentID)

	_, err = f.users.ListRequests(f.ctx, "all", "", "abc")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "Invalid user ID provided.", detail(err))

	_, err = f.users.ListRequests(f.ctx, "verified", "", "")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "No user requests found.", detail(err))

	// отклонённый, но не подтвердивший почту аккаунт больше не pending
	_, err = f.users.SetEligibility(f.ctx, 1, false)
	require.NoError(t, err)
	pending, err := f.users.ListRequests(f.ctx, "pending", "", "")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(2), pending[0].StudentID)
	rejected, err := f.users.ListRequests(f.ctx, "rejected", "", "")
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.Equal(t, int64(1), rejected[0].StudentID)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, 1001)
	other := f.register(t, 1002)

	updated, err := f.users.UpdateProfile(f.ctx, u.ID, models.UserProfile{
		FullName: strPtr("New Name"),
		Role:     intPtr(roleAdmin),
	}, strPtr("new-password"))
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.FullName)
	assert.Equal(t, "Student", updated.RoleName)
	assert.True(t, f.auth.CheckPassword(updated.PasswordHash, "new-password"))

	_, err = f.users.UpdateProfile(f.ctx, u.ID, models.UserProfile{Email: strPtr(other.Email)}, nil)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = f.users.UpdateProfile(f.ctx, u.ID, models.UserProfile{}, strPtr("123"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDeleteAccount(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, 1001)

	require.NoError(t, f.users.DeleteAccount(f.ctx, u.ID))
	_, err := f.users.GetUserByID(f.ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.users.DeleteAccount(f.ctx, u.ID), ErrNotFound)

	// после удаления можно зарегистрироваться снова с тем же student id
	f.register(t, 1001)
}

func TestCreateAdmin(t *testing.T) {
	f := newFixture(t)
	u, err := f.users.CreateAdmin(f.ctx, "root@x.edu", 1, "adminpass")
	require.NoError(t, err)
	assert.True(t, u.IsActive)
	assert.Equal(t, "Admin", u.RoleName)
}
