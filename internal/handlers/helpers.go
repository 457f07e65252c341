package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"autodocs/internal/middleware"
	"autodocs/internal/services"
)

// более устойчиво к типам (int / int64 / float64 / string)
func getIntFromCtx(c *gin.Context, key string) (int, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n, true
		}
	}
	return 0, false
}

func currentUserID(c *gin.Context) (int, bool) {
	id, ok := getIntFromCtx(c, middleware.CtxUserID)
	if !ok || id <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return 0, false
	}
	return id, true
}

// statusFor — единое соответствие ошибок сервисов HTTP-кодам.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrDuplicateEmail),
		errors.Is(err, services.ErrDuplicateStudentID),
		errors.Is(err, services.ErrInvalidReference),
		errors.Is(err, services.ErrExpired):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrStateConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError отдаёт {"detail": ...}; внутренние ошибки наружу не раскрываются.
func writeError(c *gin.Context, op string, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Printf("[http][%s] internal error: %v", op, err)
		c.JSON(code, gin.H{"detail": "Internal server error"})
		return
	}
	var se *services.Error
	detail := err.Error()
	if errors.As(err, &se) {
		detail = se.Detail
	}
	c.JSON(code, gin.H{"detail": detail})
}

func badRequest(c *gin.Context, detail string) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": detail})
}
