package services

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autodocs/internal/models"
)

func TestIsExpired(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ch := &models.VerificationChallenge{CreatedAt: issued}

	assert.False(t, IsExpired(ch, 5*time.Minute, issued.Add(5*time.Minute)))
	assert.True(t, IsExpired(ch, 5*time.Minute, issued.Add(5*time.Minute+time.Second)))
}

func TestRandomCodeInRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := randomCode(100000, 100009)
		require.NoError(t, err)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 100009)
	}

	code, err := randomCode(7, 7)
	require.NoError(t, err)
	assert.Equal(t, "7", code)

	_, err = randomCode(10, 1)
	assert.Error(t, err)
}

func TestVerify_OTPExample(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, 1001)

	code, err := f.verify.IssueOTP(f.ctx, u.Email)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	ch, err := f.verify.Verify(f.ctx, u.Email, models.MethodOTP, code)
	require.NoError(t, err)
	assert.True(t, ch.Consumed)

	_, err = f.verify.Verify(f.ctx, u.Email, models.MethodOTP, code)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Invalid OTP", detail(err))

	// OTP не активирует аккаунт
	got, err := f.users.GetUserByID(f.ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestVerify_LinkActivates(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, 1001)

	token, err := f.verify.IssueLink(f.ctx, u.Email)
	require.NoError(t, err)

	_, err = f.verify.Verify(f.ctx, u.Email, models.MethodLink, token)
	require.NoError(t, err)

	got, err := f.users.GetUserByID(f.ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, models.AccountActive, got.State())

	_, err = f.verify.Verify(f.ctx, u.Email, models.MethodLink, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerify_ExpiredIsConsumed(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, 1001)
	svc := f.verify.(*verificationService)

	issued := time.Now()
	svc.now = func() time.Time { return issued }
	token, err := f.verify.IssueLink(f.ctx, u.Email)
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(16 * time.Minute) }
	_, err = f.verify.Verify(f.ctx, u.Email, models.MethodLink, token)
	require.ErrorIs(t, err, ErrExpired)

	challenges := f.store.Challenges()
	require.Len(t, challenges, 1)
	assert.True(t, challenges[0].Consumed)

	got, err := f.users.GetUserByID(f.ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = f.verify.Verify(f.ctx, u.Email, models.MethodLink, token)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Verifications.WithLabelValues("link", "expired")))
}

func TestVerify_WrongTokenOrMethod(t *testing.T) {
	f := newFixture(t)
	code, err := f.verify.IssueOTP(f.ctx, "a@x.edu")
	require.NoError(t, err)

	_, err = f.verify.Verify(f.ctx, "a@x.edu", models.MethodOTP, "000000")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.verify.Verify(f.ctx, "a@x.edu", models.MethodLink, code)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.verify.Verify(f.ctx, "a@x.edu", "sms", code)
	assert.ErrorIs(t, err, ErrValidation)

	// запись не погашена неудачными попытками
	_, err = f.verify.Verify(f.ctx, "a@x.edu", models.MethodOTP, code)
	assert.NoError(t, err)
}

func TestSendVerification_DeliversInBackground(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.verify.SendVerification(f.ctx, "A@X.edu", models.MethodOTP))
	require.NoError(t, f.verify.SendVerification(f.ctx, "a@x.edu", models.MethodLink))
	f.jobs.Wait()

	code := f.email.codes["a@x.edu"]
	require.NotEmpty(t, code)
	_, err := f.verify.Verify(f.ctx, "a@x.edu", models.MethodOTP, code)
	require.NoError(t, err)

	link, err := url.Parse(f.email.links["a@x.edu"])
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/email/verify", link.Path)
	assert.Equal(t, "link", link.Query().Get("method"))
	_, err = f.verify.Verify(f.ctx, link.Query().Get("email"), models.MethodLink, link.Query().Get("unique_id"))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.VerificationEmails.WithLabelValues("otp", "sent")))
}

func TestSendVerification_DeliveryFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	f.email.fail = true

	require.NoError(t, f.verify.SendVerification(f.ctx, "a@x.edu", models.MethodOTP))
	f.jobs.Wait()

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.VerificationEmails.WithLabelValues("otp", "failed")))
	// запись всё равно сохранена
	assert.Len(t, f.store.Challenges(), 1)
}

func TestSendVerification_Validation(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.verify.SendVerification(f.ctx, "not-an-email", models.MethodOTP), ErrValidation)
	assert.ErrorIs(t, f.verify.SendVerification(f.ctx, "a@x.edu", "push"), ErrValidation)
	assert.Empty(t, f.store.Challenges())
}
