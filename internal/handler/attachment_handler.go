package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/grc-api/internal/service"
	apperrors "github.com/noah-isme/grc-api/pkg/errors"
	"github.com/noah-isme/grc-api/pkg/response"
)

// AttachmentHandler exposes attachment upload, listing and signed download.
type AttachmentHandler struct {
	attachments *service.AttachmentService
}

// NewAttachmentHandler constructs the handler.
func NewAttachmentHandler(attachments *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// Upload godoc
// @Summary Attach a file to a request
// @Tags attachments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "request id"
// @Param file formData file true "file"
// @Success 201 {object} response.Envelope{data=models.Attachment}
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /requests/{id}/attachments [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, apperrors.Clone(apperrors.ErrValidation, "file field is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "unreadable upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	attachment, err := h.attachments.Upload(c.Request.Context(), actor, c.Param("id"),
		header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attachment)
}

// List godoc
// @Summary List attachments of a request with signed links
// @Tags attachments
// @Produce json
// @Param id path string true "request id"
// @Success 200 {object} response.Envelope{data=[]models.Attachment}
// @Security BearerAuth
// @Router /requests/{id}/attachments [get]
func (h *AttachmentHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}
	attachments, err := h.attachments.List(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attachments, nil)
}

// Download godoc
// @Summary Download an attachment through its signed link
// @Tags attachments
// @Produce octet-stream
// @Param token query string true "signed token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /attachments/download [get]
func (h *AttachmentHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, apperrors.Clone(apperrors.ErrValidation, "token is required"))
		return
	}
	attachment, file, err := h.attachments.Download(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", `attachment; filename="`+attachment.Filename+`"`)
	c.Header("Content-Length", strconv.FormatInt(attachment.Size, 10))
	c.Header("Content-Type", attachment.MimeType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, file); err != nil {
		_ = c.Error(err)
	}
}
