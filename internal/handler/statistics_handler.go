package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-hub-api/internal/service"
	"github.com/noah-isme/course-hub-api/pkg/response"
)

// StatisticsHandler exposes dashboard aggregate endpoints.
type StatisticsHandler struct {
	stats *service.StatisticsService
}

// NewStatisticsHandler constructs handler.
func NewStatisticsHandler(stats *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{stats: stats}
}

// GroupStats godoc
// @Summary Task statistics for one group
// @Tags Statistics
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/statistics [get]
func (h *StatisticsHandler) GroupStats(c *gin.Context) {
	stats, cached, err := h.stats.GroupTaskStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, map[string]interface{}{"cached": cached})
}

// Overview godoc
// @Summary Course-wide task statistics
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /statistics/overview [get]
func (h *StatisticsHandler) Overview(c *gin.Context) {
	overview, cached, err := h.stats.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, map[string]interface{}{"cached": cached})
}
