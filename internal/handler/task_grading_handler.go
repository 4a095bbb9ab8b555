package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-hub-api/internal/service"
	appErrors "github.com/noah-isme/course-hub-api/pkg/errors"
	"github.com/noah-isme/course-hub-api/pkg/response"
)

// TaskGradingHandler exposes per-task grading and appeal endpoints.
type TaskGradingHandler struct {
	grading *service.TaskGradingService
}

// NewTaskGradingHandler constructs handler.
func NewTaskGradingHandler(grading *service.TaskGradingService) *TaskGradingHandler {
	return &TaskGradingHandler{grading: grading}
}

// Grade godoc
// @Summary Award points to a task assignee
// @Tags Grading
// @Accept json
// @Produce json
// @Param payload body service.GradeTaskRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Router /task-grades [post]
func (h *TaskGradingHandler) Grade(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.GradeTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.grading.GradeTask(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// ListByTask godoc
// @Summary List all grades on a task
// @Tags Grading
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id}/grades [get]
func (h *TaskGradingHandler) ListByTask(c *gin.Context) {
	grades, err := h.grading.ListTaskGrades(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// GetForStudent godoc
// @Summary Get one assignee's grade on a task
// @Tags Grading
// @Produce json
// @Param id path string true "Task ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id}/grades/{studentId} [get]
func (h *TaskGradingHandler) GetForStudent(c *gin.Context) {
	grade, err := h.grading.GetTaskGrade(c.Request.Context(), c.Param("id"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Update godoc
// @Summary Rewrite an existing task grade
// @Tags Grading
// @Accept json
// @Produce json
// @Param id path string true "Grade ID"
// @Param payload body service.UpdateTaskGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /task-grades/{id} [put]
func (h *TaskGradingHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateTaskGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.grading.UpdateTaskGrade(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// SubmitAppeal godoc
// @Summary Dispute a graded task's points
// @Tags Appeals
// @Accept json
// @Produce json
// @Param payload body service.SubmitAppealRequest true "Appeal payload"
// @Success 201 {object} response.Envelope
// @Router /appeals [post]
func (h *TaskGradingHandler) SubmitAppeal(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SubmitAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	appeal, err := h.grading.SubmitAppeal(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, appeal)
}

// ListOpenAppeals godoc
// @Summary List unresolved appeals
// @Tags Appeals
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /appeals [get]
func (h *TaskGradingHandler) ListOpenAppeals(c *gin.Context) {
	appeals, err := h.grading.ListOpenAppeals(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, appeals, nil)
}

// ResolveAppeal godoc
// @Summary Resolve an appeal with a final re-grade
// @Tags Appeals
// @Accept json
// @Produce json
// @Param id path string true "Appeal ID"
// @Param payload body service.ResolveAppealRequest true "Resolution payload"
// @Success 200 {object} response.Envelope
// @Router /appeals/{id}/resolve [post]
func (h *TaskGradingHandler) ResolveAppeal(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.ResolveAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.grading.ResolveAppeal(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}
