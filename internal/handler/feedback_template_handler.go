package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-hub-api/internal/service"
	appErrors "github.com/noah-isme/course-hub-api/pkg/errors"
	"github.com/noah-isme/course-hub-api/pkg/response"
)

// FeedbackTemplateHandler exposes feedback template endpoints.
type FeedbackTemplateHandler struct {
	templates *service.FeedbackTemplateService
}

// NewFeedbackTemplateHandler constructs handler.
func NewFeedbackTemplateHandler(templates *service.FeedbackTemplateService) *FeedbackTemplateHandler {
	return &FeedbackTemplateHandler{templates: templates}
}

// List godoc
// @Summary List feedback templates
// @Tags Feedback
// @Produce json
// @Param category query string false "Filter by category"
// @Success 200 {object} response.Envelope
// @Router /feedback-templates [get]
func (h *FeedbackTemplateHandler) List(c *gin.Context) {
	templates, err := h.templates.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, templates, nil)
}

// Create godoc
// @Summary Create a feedback template
// @Tags Feedback
// @Accept json
// @Produce json
// @Param payload body service.CreateFeedbackTemplateRequest true "Template payload"
// @Success 201 {object} response.Envelope
// @Router /feedback-templates [post]
func (h *FeedbackTemplateHandler) Create(c *gin.Context) {
	var req service.CreateFeedbackTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	template, err := h.templates.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, template)
}

// Update godoc
// @Summary Update a feedback template
// @Tags Feedback
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param payload body service.UpdateFeedbackTemplateRequest true "Template payload"
// @Success 200 {object} response.Envelope
// @Router /feedback-templates/{id} [put]
func (h *FeedbackTemplateHandler) Update(c *gin.Context) {
	var req service.UpdateFeedbackTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	template, err := h.templates.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, template, nil)
}

// Delete godoc
// @Summary Delete a feedback template
// @Tags Feedback
// @Param id path string true "Template ID"
// @Success 204
// @Router /feedback-templates/{id} [delete]
func (h *FeedbackTemplateHandler) Delete(c *gin.Context) {
	if err := h.templates.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
