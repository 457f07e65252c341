package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autodocs/internal/models"
)

func TestDocumentTag(t *testing.T) {
	assert.Equal(t, "CRT", DocumentTag("certificate"))
	assert.Equal(t, "TST", DocumentTag("testimonial"))
	assert.Equal(t, "TRT", DocumentTag("Transcript"))
	assert.Equal(t, "APR", DocumentTag("appeared"))
	assert.Equal(t, "CRT", DocumentTag("  CERTIFICATE "))
	assert.Equal(t, InvalidTag, DocumentTag("unknown"))
	assert.Equal(t, InvalidTag, DocumentTag(""))
}

func TestGenerateSerial(t *testing.T) {
	u := &models.User{StudentID: 1912345, Session: "2019-20"}
	dept := &models.Department{Code: 7, UniversityCode: "NSU"}
	now := time.Date(2024, 3, 9, 8, 41, 5, 0, time.UTC)

	got := GenerateSerial(u, dept, "certificate", now)
	assert.Equal(t, "CRTNSU07"+"45"+"19"+"2403090805", got)
	assert.True(t, strings.HasPrefix(got, "CRT"+dept.UniversityCode))

	assert.True(t, strings.HasPrefix(GenerateSerial(u, dept, "unknown", now), "INVALID"))
}

func TestGenerateSerial_ShortValues(t *testing.T) {
	u := &models.User{StudentID: 7, Session: "2022-23"}
	dept := &models.Department{Code: 12, UniversityCode: "U"}
	now := time.Date(2030, 12, 31, 23, 0, 59, 0, time.UTC)

	assert.Equal(t, "TRTU12"+"7"+"22"+"3012312359", GenerateSerial(u, dept, "transcript", now))
}

func TestSerialService_Issue(t *testing.T) {
	f := newFixture(t)
	pending := f.register(t, 2001)
	ok := f.eligible(t, 2002)

	_, _, err := f.serials.Issue(f.ctx, pending.ID, "certificate")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "You're not eligible to make this request", detail(err))

	_, _, err = f.serials.Issue(f.ctx, ok.ID, "")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "document type is required", detail(err))

	_, _, err = f.serials.Issue(f.ctx, ok.ID, "diploma")
	assert.ErrorIs(t, err, ErrValidation)

	user, serial, err := f.serials.Issue(f.ctx, ok.ID, "certificate")
	require.NoError(t, err)
	assert.Equal(t, int64(2002), user.StudentID)
	assert.True(t, strings.HasPrefix(serial, "CRTNSU07"+"02"+"22"))
}

func TestSerialService_RequiresDepartment(t *testing.T) {
	f := newFixture(t)
	p := f.profile(3001)
	p.Department = nil
	u, err := f.users.Register(f.ctx, p, "pass123")
	require.NoError(t, err)

	_, err = f.serials.ForUser(f.ctx, u, "certificate")
	assert.ErrorIs(t, err, ErrValidation)
}
