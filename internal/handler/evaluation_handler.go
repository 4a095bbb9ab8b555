package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-hub-api/internal/models"
	"github.com/noah-isme/course-hub-api/internal/service"
	appErrors "github.com/noah-isme/course-hub-api/pkg/errors"
	"github.com/noah-isme/course-hub-api/pkg/response"
)

// EvaluationHandler exposes the weekly rubric endpoints.
type EvaluationHandler struct {
	evaluations *service.EvaluationService
}

// NewEvaluationHandler constructs handler.
func NewEvaluationHandler(evaluations *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// Upsert godoc
// @Summary Create or replace a student's evaluation
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body service.UpsertEvaluationRequest true "Evaluation payload"
// @Success 200 {object} response.Envelope
// @Router /evaluations [put]
func (h *EvaluationHandler) Upsert(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpsertEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	eval, err := h.evaluations.Upsert(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, eval, nil)
}

// Get godoc
// @Summary Get one student's evaluation in a group
// @Tags Evaluations
// @Produce json
// @Param id path string true "Group ID"
// @Param userId path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/evaluations/{userId} [get]
func (h *EvaluationHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	userID := c.Param("userId")
	if claims != nil && claims.Role != models.RoleAdmin && claims.UserID != userID {
		response.Error(c, appErrors.ErrForbidden)
		return
	}
	eval, err := h.evaluations.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, eval, nil)
}

// ListByGroup godoc
// @Summary List a group's evaluations
// @Tags Evaluations
// @Produce json
// @Param id path string true "Group ID"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/evaluations [get]
func (h *EvaluationHandler) ListByGroup(c *gin.Context) {
	evals, err := h.evaluations.ListByGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evals, nil)
}

// Summary godoc
// @Summary Course-wide evaluation averages
// @Tags Evaluations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /evaluations/summary [get]
func (h *EvaluationHandler) Summary(c *gin.Context) {
	summary, err := h.evaluations.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
