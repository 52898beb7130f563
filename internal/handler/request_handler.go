package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grc-api/internal/dto"
	"github.com/noah-isme/grc-api/internal/models"
	"github.com/noah-isme/grc-api/internal/service"
	apperrors "github.com/noah-isme/grc-api/pkg/errors"
	"github.com/noah-isme/grc-api/pkg/response"
)

// RequestHandler exposes the contestation workflow over HTTP.
type RequestHandler struct {
	requests *service.RequestService
}

// NewRequestHandler constructs the handler.
func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// Create godoc
// @Summary Submit a contestation request
// @Tags requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateRequestRequest true "request"
// @Success 201 {object} response.Envelope{data=models.Request}
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}
	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.Clone(apperrors.ErrValidation, err.Error()))
		return
	}
	request, err := h.requests.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// List godoc
// @Summary List requests visible to the caller
// @Tags requests
// @Produce json
// @Param status query string false "comma separated statuses"
// @Param type query string false "cc or exam"
// @Param subject_id query string false "subject filter"
// @Param page query int false "page (1-based)"
// @Param page_size query int false "page size"
// @Success 200 {object} response.Envelope{data=[]models.Request}
// @Security BearerAuth
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}
	filter, pagination := parseRequestFilter(c)
	requests, err := h.requests.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination.TotalCount = len(requests)
	response.JSON(c, http.StatusOK, requests, &pagination)
}

// Get godoc
// @Summary Fetch one request
// @Tags requests
// @Produce json
// @Param id path string true "request id"
// @Success 200 {object} response.Envelope{data=models.Request}
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	h.respond(c, func(actor *models.Actor) (interface{}, error) {
		return h.requests.Get(c.Request.Context(), actor, c.Param("id"))
	})
}

// Update godoc
// @Summary Edit an unacknowledged request
// @Tags requests
// @Accept json
// @Produce json
// @Param id path string true "request id"
// @Param payload body dto.UpdateRequestRequest true "changes"
// @Success 200 {object} response.Envelope{data=models.Request}
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /requests/{id} [put]
func (h *RequestHandler) Update(c *gin.Context) {
	var req dto.UpdateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.Clone(apperrors.ErrValidation, err.Error()))
		return
	}
	h.respond(c, func(actor *models.Actor) (interface{}, error) {
		return h.requests.UpdateContent(c.Request.Context(), actor, c.Param("id"), req)
	})
}

// Delete godoc
// @Summary Delete an unacknowledged request
// @Tags requests
// @Param id path string true "request id"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /requests/{id} [delete]
func (h *RequestHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}
	if err := h.requests.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateScore godoc
// @Summary Correct the recorded score on a live request
// @Tags requests
// @Accept json
// @Produce json
// @Param id path string true "request id"
// @Param payload body dto.UpdateScoreRequest true "score"
// @Success 200 {object} response.Envelope{data=models.Request}
// @Security BearerAuth
// @Router /requests/{id}/score [patch]
func (h *RequestHandler) UpdateScore(c *gin.Context) {
	var req dto.UpdateScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.Clone(apperrors.ErrValidation, err.Error()))
		return
	}
	h.respond(c, func(actor *models.Actor) (interface{}, error) {
		return h.requests.UpdateScore(c.Request.Context(), actor, c.Param("id"), req)
	})
}

// Acknowledge godoc
// @Summary Acknowledge receipt of a request
// @Tags workflow
// @Produce json
// @Param id path string true "request id"
// @Success 200 {object} response.Envelope{data=models.Request}
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /requests/{id}/acknowledge [post]
func (h *RequestHandler) Acknowledge(c *gin.Context) {
	h.respond(c, func(actor *models.Actor) (interface{}, error) {
		return h.requests.Acknowledge(c.Request.Context(), actor, c.Param("id"))
	})
}

// Decide godoc
// @Summary Approve or reject a request
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path string true "request id"
// @Param payload body dto.DecisionRequest true "decision"
// @Success 200 {object} response.Envelope{data=models.Request}
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /requests/{id}/decision [post]
func (h *RequestHandler) Decide(c *gin.Context) {
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.Clone(apperrors.ErrValidation, err.Error()))
		return
	}
	h.respond(c, func(actor *models.Actor) (interface{}, error) {
		return h.requests.Decide(c.Request.Context(), actor, c.Param("id"), req)
	})
}

// SendToCellule godoc
// @Summary Forward an approved request to the IT cell
// @Tags workflow
// @Produce json
// @Param id path string true "request id"
// @Success 200 {object} response.Envelope{data=models.Request}
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /requests/{id}/send-to-cellule [post]
func (h *RequestHandler) SendToCellule(c *gin.Context) {
	h.respond(c, func(actor *models.Actor) (interface{}, error) {
		return h.requests.SendToCellule(c.Request.Context(), actor, c.Param("id"))
	})
}

// Return godoc
// @Summary Hand a request back from the IT cell
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path string true "request id"
// @Param payload body dto.ReturnRequest false "note"
// @Success 200 {object} response.Envelope{data=models.Request}
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /requests/{id}/return [post]
func (h *RequestHandler) Return(c *gin.Context) {
	var req dto.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.Error(c, apperrors.Clone(apperrors.ErrValidation, err.Error()))
		return
	}
	h.respond(c, func(actor *models.Actor) (interface{}, error) {
		return h.requests.ReturnFromCellule(c.Request.Context(), actor, c.Param("id"), req)
	})
}

// Complete godoc
// @Summary Close a request with its final disposition
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path string true "request id"
// @Param payload body dto.CompleteRequest true "disposition"
// @Success 200 {object} response.Envelope{data=models.Request}
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /requests/{id}/complete [post]
func (h *RequestHandler) Complete(c *gin.Context) {
	var req dto.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.Clone(apperrors.ErrValidation, err.Error()))
		return
	}
	h.respond(c, func(actor *models.Actor) (interface{}, error) {
		return h.requests.Complete(c.Request.Context(), actor, c.Param("id"), req)
	})
}

// Logs godoc
// @Summary Read the audit ledger of a request
// @Tags requests
// @Produce json
// @Param id path string true "request id"
// @Success 200 {object} response.Envelope{data=[]models.RequestLog}
// @Security BearerAuth
// @Router /requests/{id}/logs [get]
func (h *RequestHandler) Logs(c *gin.Context) {
	h.respond(c, func(actor *models.Actor) (interface{}, error) {
		return h.requests.Logs(c.Request.Context(), actor, c.Param("id"))
	})
}

// Result godoc
// @Summary Read the terminal result of a closed request
// @Tags requests
// @Produce json
// @Param id path string true "request id"
// @Success 200 {object} response.Envelope{data=models.RequestResult}
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /requests/{id}/result [get]
func (h *RequestHandler) Result(c *gin.Context) {
	h.respond(c, func(actor *models.Actor) (interface{}, error) {
		return h.requests.Result(c.Request.Context(), actor, c.Param("id"))
	})
}

// Print godoc
// @Summary Download the printable summary sheet
// @Tags requests
// @Produce application/pdf
// @Param id path string true "request id"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /requests/{id}/print [get]
func (h *RequestHandler) Print(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}
	payload, err := h.requests.PrintSummary(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="request-`+c.Param("id")+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", payload)
}

// Export godoc
// @Summary Export requests as CSV (admin)
// @Tags requests
// @Produce text/csv
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /requests/export [get]
func (h *RequestHandler) Export(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}
	filter, _ := parseRequestFilter(c)
	payload, err := h.requests.ExportCSV(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="requests.csv"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

// respond runs a workflow call and writes the standard envelope.
func (h *RequestHandler) respond(c *gin.Context, call func(actor *models.Actor) (interface{}, error)) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}
	data, err := call(actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}

func parseRequestFilter(c *gin.Context) (models.RequestFilter, models.Pagination) {
	filter := models.RequestFilter{
		Type:         models.RequestType(c.Query("type")),
		SubjectID:    c.Query("subject_id"),
		ClassLevelID: c.Query("class_level_id"),
		FieldID:      c.Query("field_id"),
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				filter.Status = append(filter.Status, models.RequestStatus(part))
			}
		}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize
	return filter, models.Pagination{Page: page, PageSize: pageSize}
}
