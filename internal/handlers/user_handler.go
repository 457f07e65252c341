package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"autodocs/internal/models"
	"autodocs/internal/services"
)

type UserHandler struct {
	service services.UserService
}

func NewUserHandler(service services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type registerRequest struct {
	models.UserProfile
	Password string `json:"password"`
}

type updateMeRequest struct {
	models.UserProfile
	Password *string `json:"password"`
}

// @Summary      Регистрация
// @Description  Создаёт неактивный аккаунт студента/выпускника
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Профиль и пароль"
// @Success      201   {object}  models.User
// @Failure      400   {object}  map[string]string
// @Router       /register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[user][register] bad request: bind json failed: err=%v", err)
		badRequest(c, err.Error())
		return
	}
	user, err := h.service.Register(c.Request.Context(), req.UserProfile, req.Password)
	if err != nil {
		writeError(c, "register", err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// @Summary      Мой профиль
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      401  {object}  map[string]string
// @Router       /v1/users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, "users/me", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      Обновить профиль
// @Description  Частичное обновление; флаги и роль владелец не меняет
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateMeRequest  true  "Изменяемые поля"
// @Success      200   {object}  models.User
// @Failure      400   {object}  map[string]string
// @Router       /v1/users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req.UserProfile, req.Password)
	if err != nil {
		writeError(c, "users/me", err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// @Summary      Удалить аккаунт
// @Tags         Users
// @Security     BearerAuth
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/users/me [delete]
func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		writeError(c, "users/me", err)
		return
	}
	c.Status(http.StatusNoContent)
}
