package handlers

import (
	"errors"
	"fmt"
	"html"
	"net/http"

	"github.com/gin-gonic/gin"

	"autodocs/internal/models"
	"autodocs/internal/services"
)

type VerifyHandler struct {
	service services.VerificationService
}

func NewVerifyHandler(service services.VerificationService) *VerifyHandler {
	return &VerifyHandler{service: service}
}

type sendEmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// @Summary      Отправить код или ссылку
// @Description  method=otp — числовой код, method=link — ссылка для подтверждения
// @Tags         Verification
// @Accept       json
// @Produce      json
// @Param        method  query     string            true  "otp | link"
// @Param        body    body      sendEmailRequest  true  "Email"
// @Success      200     {object}  map[string]string
// @Failure      400     {object}  map[string]string
// @Router       /v1/email [post]
func (h *VerifyHandler) Send(c *gin.Context) {
	method := models.VerificationMethod(c.Query("method"))
	if !method.Valid() {
		badRequest(c, "Invalid method. Use 'otp' or 'link'")
		return
	}
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.service.SendVerification(c.Request.Context(), req.Email, method); err != nil {
		writeError(c, "email", err)
		return
	}
	msg := "OTP sent successfully"
	if method == models.MethodLink {
		msg = "Verification link sent successfully"
	}
	c.JSON(http.StatusOK, gin.H{"detail": msg})
}

// @Summary      Подтвердить email
// @Description  OTP: JSON-ответ. Link: HTML-страница; успешная ссылка активирует аккаунт
// @Tags         Verification
// @Produce      json
// @Produce      html
// @Param        method     query     string  true  "otp | link"
// @Param        email      query     string  true  "Email"
// @Param        unique_id  query     string  true  "OTP-код или id ссылки"
// @Success      200        {object}  map[string]string
// @Failure      400        {object}  map[string]string
// @Router       /v1/email/verify [get]
func (h *VerifyHandler) Verify(c *gin.Context) {
	method := models.VerificationMethod(c.Query("method"))
	if !method.Valid() {
		badRequest(c, "Invalid method. Use 'otp' or 'link'")
		return
	}
	email, token := c.Query("email"), c.Query("unique_id")

	_, err := h.service.Verify(c.Request.Context(), email, method, token)
	if method == models.MethodLink {
		h.linkPage(c, err)
		return
	}
	if err != nil {
		// для OTP и неверный, и просроченный код — 400
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrExpired) {
			var se *services.Error
			if errors.As(err, &se) {
				badRequest(c, se.Detail)
				return
			}
		}
		writeError(c, "email/verify", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"detail": "OTP verified successfully"})
}

const pageTemplate = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>%s</title></head>
<body style="font-family:sans-serif;text-align:center;margin-top:10%%">
<h2>%s</h2><p>%s</p>
</body></html>`

func (h *VerifyHandler) linkPage(c *gin.Context, err error) {
	code, title, text := http.StatusOK, "Email verified", "Your account is now active. You can sign in."
	if err != nil {
		code, title = http.StatusBadRequest, "Verification failed"
		var se *services.Error
		if errors.As(err, &se) {
			text = se.Detail
		} else {
			code, text = statusFor(err), "Something went wrong. Please request a new link."
		}
	}
	page := fmt.Sprintf(pageTemplate, html.EscapeString(title), html.EscapeString(title), html.EscapeString(text))
	c.Data(code, "text/html; charset=utf-8", []byte(page))
}
