package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"autodocs/internal/models"
	"autodocs/internal/services"
)

type AuthHandler struct {
	sessions services.SessionService
}

func NewAuthHandler(sessions services.SessionService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

type refreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

// @Summary      Получение токенов
// @Description  Выдаёт access/refresh пару для активного аккаунта
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Email и пароль"
// @Success      200    {object}  services.TokenPair
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	start := time.Now()

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][token] bad request: bind json failed: err=%v", err)
		badRequest(c, err.Error())
		return
	}
	log.Printf("[auth][token] attempt email=%q", strings.TrimSpace(req.Email))

	pair, user, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, "token", err)
		return
	}
	log.Printf("[auth][token] success userID=%d took=%s", user.ID, time.Since(start).Truncate(time.Millisecond))
	c.JSON(http.StatusOK, pair)
}

// @Summary      Обновление токенов
// @Description  Ротация refresh-токена: старый становится недействительным
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  services.TokenPair
// @Failure      401   {object}  map[string]string
// @Router       /token/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	pair, err := h.sessions.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		writeError(c, "token/refresh", err)
		return
	}
	c.JSON(http.StatusOK, pair)
}
