package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"autodocs/internal/services"
)

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		services.ErrValidation:         http.StatusBadRequest,
		services.ErrDuplicateEmail:     http.StatusBadRequest,
		services.ErrDuplicateStudentID: http.StatusBadRequest,
		services.ErrInvalidReference:   http.StatusBadRequest,
		services.ErrExpired:            http.StatusBadRequest,
		services.ErrNotFound:           http.StatusNotFound,
		services.ErrUnauthorized:       http.StatusUnauthorized,
		services.ErrForbidden:          http.StatusForbidden,
		services.ErrStateConflict:      http.StatusConflict,
		errors.New("db is down"):       http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
}

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	writeError(c, "test", &services.Error{Kind: services.ErrNotFound, Detail: "No services found."})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"No services found."}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	writeError(c, "test", errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq")
}
