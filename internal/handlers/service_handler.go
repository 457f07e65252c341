package handlers

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"autodocs/internal/models"
	"autodocs/internal/pdf"
	"autodocs/internal/services"
)

type ServiceHandler struct {
	requests services.ServiceRequestService
	serials  services.SerialService
	refs     *services.ReferenceService
	slips    pdf.Generator
}

func NewServiceHandler(
	requests services.ServiceRequestService,
	serials services.SerialService,
	refs *services.ReferenceService,
	slips pdf.Generator,
) *ServiceHandler {
	return &ServiceHandler{requests: requests, serials: serials, refs: refs, slips: slips}
}

// @Summary      Приветствие
// @Tags         Services
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /v1/info [get]
func (h *ServiceHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"detail": "Welcome to Auto Docs"})
}

// @Summary      Заказать документ
// @Description  Создаёт заявку в статусе Pending
// @Tags         Services
// @Produce      json
// @Security     BearerAuth
// @Param        doc_type  query     string  true  "certificate | testimonial | transcript | appeared"
// @Success      201       {object}  models.ServiceRequest
// @Failure      400       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Router       /v1/services [get]
func (h *ServiceHandler) Request(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	sr, err := h.requests.Submit(c.Request.Context(), userID, c.Query("doc_type"))
	if err != nil {
		writeError(c, "services", err)
		return
	}
	c.JSON(http.StatusCreated, sr)
}

// @Summary      Мои заявки
// @Tags         Services
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.ServiceRequest
// @Router       /v1/users/me/requests [get]
func (h *ServiceHandler) Mine(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	list, err := h.requests.ListMine(c.Request.Context(), userID)
	if err != nil {
		writeError(c, "users/me/requests", err)
		return
	}
	if list == nil {
		list = []*models.ServiceRequest{}
	}
	c.JSON(http.StatusOK, list)
}

// @Summary      Серийный номер
// @Description  Только для одобренных аккаунтов
// @Tags         Services
// @Produce      json
// @Security     BearerAuth
// @Param        doc_type  query     string  true  "Тип документа"
// @Success      200       {object}  map[string]interface{}
// @Failure      400       {object}  map[string]string
// @Router       /v1/users/request/serial-number [get]
func (h *ServiceHandler) SerialNumber(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, serial, err := h.serials.Issue(c.Request.Context(), userID, c.Query("doc_type"))
	if err != nil {
		writeError(c, "serial-number", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"student_id": user.StudentID, "serial": serial})
}

// @Summary      Квитанция с серийным номером (PDF)
// @Tags         Services
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        doc_type  query  string  true  "Тип документа"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Router       /v1/users/request/serial-number/pdf [get]
func (h *ServiceHandler) SerialSlip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	docType := strings.ToLower(strings.TrimSpace(c.Query("doc_type")))
	user, serial, err := h.serials.Issue(c.Request.Context(), userID, docType)
	if err != nil {
		writeError(c, "serial-number/pdf", err)
		return
	}

	data := pdf.SlipData{
		StudentID:   user.StudentID,
		FullName:    user.FullName,
		Email:       user.Email,
		Session:     user.Session,
		Document:    docType,
		Serial:      serial,
		GeneratedAt: time.Now(),
	}
	if user.DepartmentID != nil {
		if dept, err := h.refs.Resolve(c.Request.Context(), models.RefDepartment, *user.DepartmentID); err == nil {
			data.Department = dept.Name
		}
	}

	var buf bytes.Buffer
	if err := h.slips.SerialSlip(&buf, data); err != nil {
		log.Printf("[serial][pdf] render failed: user_id=%d err=%v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to generate PDF"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, serial))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
