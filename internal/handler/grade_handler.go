package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-hub-api/internal/models"
	"github.com/noah-isme/course-hub-api/internal/service"
	appErrors "github.com/noah-isme/course-hub-api/pkg/errors"
	"github.com/noah-isme/course-hub-api/pkg/response"
)

// GradeHandler exposes aggregated course-grade endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Get godoc
// @Summary Get a student's aggregated grade
// @Tags Grades
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /grades/{id} [get]
func (h *GradeHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	studentID := c.Param("id")
	if claims != nil && claims.Role != models.RoleAdmin && claims.UserID != studentID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	grade, err := h.grades.Get(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// GetByEmail godoc
// @Summary Get a student's aggregated grade by email
// @Tags Grades
// @Produce json
// @Param email path string true "Student email"
// @Success 200 {object} response.Envelope
// @Router /grades/by-email/{email} [get]
func (h *GradeHandler) GetByEmail(c *gin.Context) {
	grade, err := h.grades.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// List godoc
// @Summary List all aggregated grades
// @Tags Grades
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	grades, err := h.grades.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// Recalculate godoc
// @Summary Rebuild a student's grade from submission data
// @Tags Grades
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /grades/{id}/recalculate [post]
func (h *GradeHandler) Recalculate(c *gin.Context) {
	grade, err := h.grades.Recalculate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// UpdateExtraPoints godoc
// @Summary Set a student's bonus points
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.UpdateExtraPointsRequest true "Extra points payload"
// @Success 200 {object} response.Envelope
// @Router /grades/extra-points [put]
func (h *GradeHandler) UpdateExtraPoints(c *gin.Context) {
	var req service.UpdateExtraPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.grades.UpdateExtraPoints(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}
