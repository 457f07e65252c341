package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"autodocs/internal/models"
	"autodocs/internal/services"
)

type AdminHandler struct {
	users       services.UserService
	requests    services.ServiceRequestService
	departments services.DepartmentService
}

func NewAdminHandler(users services.UserService, requests services.ServiceRequestService, departments services.DepartmentService) *AdminHandler {
	return &AdminHandler{users: users, requests: requests, departments: departments}
}

type departmentRequest struct {
	Name      string `json:"name" binding:"required"`
	Code      int    `json:"code"`
	FacultyID int    `json:"faculty" binding:"required"`
}

type reviewRequest struct {
	Status string `json:"status" binding:"required"`
}

// @Summary      Просмотр / одобрение / отклонение аккаунта
// @Description  Без is_eligible — просмотр; True — одобрить, False — отклонить
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        student_id   path      int     true   "Student ID"
// @Param        is_eligible  query     string  false  "True | False"
// @Success      200          {object}  map[string]interface{}
// @Failure      404          {object}  map[string]string
// @Failure      409          {object}  map[string]string
// @Router       /v1/admin/users/{student_id} [get]
func (h *AdminHandler) User(c *gin.Context) {
	studentID, err := strconv.ParseInt(c.Param("student_id"), 10, 64)
	if err != nil {
		badRequest(c, "Invalid user ID provided.")
		return
	}

	raw, set := c.GetQuery("is_eligible")
	if !set {
		user, err := h.users.GetUserByStudentID(c.Request.Context(), studentID)
		if err != nil {
			writeError(c, "admin/users", err)
			return
		}
		c.JSON(http.StatusOK, user)
		return
	}

	var eligible bool
	switch strings.ToLower(raw) {
	case "true":
		eligible = true
	case "false":
		eligible = false
	default:
		badRequest(c, "is_eligible must be True or False")
		return
	}

	user, err := h.users.SetEligibility(c.Request.Context(), studentID, eligible)
	if err != nil {
		writeError(c, "admin/users", err)
		return
	}
	msg := "User account rejected!"
	if eligible {
		msg = "User account approved"
	}
	c.JSON(http.StatusOK, gin.H{"detail": msg, "user": user})
}

// @Summary      Заявки на аккаунт
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        status   query    string  false  "all | pending | verified | rejected"
// @Param        type     query    string  false  "alumni | student"
// @Param        user_id  query    string  false  "Student ID"
// @Success      200      {array}  models.User
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /v1/admin/user-requests [get]
func (h *AdminHandler) UserRequests(c *gin.Context) {
	users, err := h.users.ListRequests(c.Request.Context(),
		c.DefaultQuery("status", "all"), c.Query("type"), c.Query("user_id"))
	if err != nil {
		writeError(c, "admin/user-requests", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// @Summary      Решение по заявке на документ
// @Description  Accepted проставляет серийный номер
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int            true  "Service request ID"
// @Param        body  body      reviewRequest  true  "Accepted | Rejected"
// @Success      200   {object}  models.ServiceRequest
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/admin/service-requests/{id}/status [put]
func (h *AdminHandler) ReviewServiceRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid service request ID")
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	sr, err := h.requests.Review(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, "admin/service-requests", err)
		return
	}
	c.JSON(http.StatusOK, sr)
}

// @Summary      Кафедры
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.Department
// @Router       /v1/admin/departments [get]
func (h *AdminHandler) ListDepartments(c *gin.Context) {
	list, err := h.departments.List(c.Request.Context())
	if err != nil {
		writeError(c, "admin/departments", err)
		return
	}
	if list == nil {
		list = []*models.Department{}
	}
	c.JSON(http.StatusOK, list)
}

func departmentCode(c *gin.Context) (int, bool) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil {
		badRequest(c, "Invalid department code")
		return 0, false
	}
	return code, true
}

// @Summary      Кафедра по коду
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      int  true  "Код кафедры"
// @Success      200   {object}  models.Department
// @Failure      404   {object}  map[string]string
// @Router       /v1/admin/departments/{code} [get]
func (h *AdminHandler) GetDepartment(c *gin.Context) {
	code, ok := departmentCode(c)
	if !ok {
		return
	}
	d, err := h.departments.Get(c.Request.Context(), code)
	if err != nil {
		writeError(c, "admin/departments", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Summary      Создать кафедру
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      departmentRequest  true  "Кафедра"
// @Success      201   {object}  models.Department
// @Failure      400   {object}  map[string]string
// @Router       /v1/admin/departments [post]
func (h *AdminHandler) CreateDepartment(c *gin.Context) {
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	d := &models.Department{Name: req.Name, Code: req.Code, FacultyID: req.FacultyID}
	if err := h.departments.Create(c.Request.Context(), d); err != nil {
		writeError(c, "admin/departments", err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// @Summary      Изменить кафедру
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      int                true  "Код кафедры"
// @Param        body  body      departmentRequest  true  "Кафедра"
// @Success      200   {object}  models.Department
// @Failure      404   {object}  map[string]string
// @Router       /v1/admin/departments/{code} [put]
func (h *AdminHandler) UpdateDepartment(c *gin.Context) {
	code, ok := departmentCode(c)
	if !ok {
		return
	}
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	d, err := h.departments.Update(c.Request.Context(), code, &models.Department{Name: req.Name, FacultyID: req.FacultyID})
	if err != nil {
		writeError(c, "admin/departments", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Summary      Удалить кафедру
// @Tags         Admin
// @Security     BearerAuth
// @Param        code  path  int  true  "Код кафедры"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/departments/{code} [delete]
func (h *AdminHandler) DeleteDepartment(c *gin.Context) {
	code, ok := departmentCode(c)
	if !ok {
		return
	}
	if err := h.departments.Delete(c.Request.Context(), code); err != nil {
		writeError(c, "admin/departments", err)
		return
	}
	c.Status(http.StatusNoContent)
}
