package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grc-api/internal/service"
	"github.com/noah-isme/grc-api/pkg/response"
)

// ReferenceHandler serves the academic reference data for the intake form.
type ReferenceHandler struct {
	refs *service.ReferenceService
}

// NewReferenceHandler constructs the handler.
func NewReferenceHandler(refs *service.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{refs: refs}
}

// ClassLevels godoc
// @Summary List class levels
// @Tags reference
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.ClassLevel}
// @Security BearerAuth
// @Router /reference/class-levels [get]
func (h *ReferenceHandler) ClassLevels(c *gin.Context) {
	levels, err := h.refs.ClassLevels(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, levels, nil)
}

// Fields godoc
// @Summary List fields of study
// @Tags reference
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.Field}
// @Security BearerAuth
// @Router /reference/fields [get]
func (h *ReferenceHandler) Fields(c *gin.Context) {
	fields, err := h.refs.Fields(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fields, nil)
}

// Axes godoc
// @Summary List axes, optionally by field
// @Tags reference
// @Produce json
// @Param field_id query string false "field filter"
// @Success 200 {object} response.Envelope{data=[]models.Axis}
// @Security BearerAuth
// @Router /reference/axes [get]
func (h *ReferenceHandler) Axes(c *gin.Context) {
	axes, err := h.refs.Axes(c.Request.Context(), c.Query("field_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, axes, nil)
}

// Subjects godoc
// @Summary List subjects, optionally by field
// @Tags reference
// @Produce json
// @Param field_id query string false "field filter"
// @Success 200 {object} response.Envelope{data=[]models.Subject}
// @Security BearerAuth
// @Router /reference/subjects [get]
func (h *ReferenceHandler) Subjects(c *gin.Context) {
	subjects, err := h.refs.Subjects(c.Request.Context(), c.Query("field_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}
