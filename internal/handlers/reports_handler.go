package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"autodocs/internal/services"
)

type ReportHandler struct {
	Service services.OverviewService
}

func NewReportHandler(service services.OverviewService) *ReportHandler {
	return &ReportHandler{Service: service}
}

// @Summary      Сводка по заявкам
// @Description  total / pending / students / alumni / revenue
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.ServicesOverview
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/services-overview [get]
func (h *ReportHandler) ServicesOverview(c *gin.Context) {
	data, err := h.Service.Summarize(c.Request.Context())
	if err != nil {
		writeError(c, "admin/services-overview", err)
		return
	}
	c.JSON(http.StatusOK, data)
}
