package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grc-api/internal/middleware"
	"github.com/noah-isme/grc-api/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func injectActor(actor *models.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextActorKey, actor)
		c.Next()
	}
}

func TestCreateRejectsInvalidPayload(t *testing.T) {
	handler := NewRequestHandler(nil)
	router := gin.New()
	actor := &models.Actor{UserID: "usr-1", Role: models.RoleStudent, StudentID: "stu-1"}
	router.POST("/requests", injectActor(actor), handler.Create)

	// type must be cc or exam
	body := `{"class_level_id":"lvl-1","field_id":"fld-1","subject_id":"sub-1","type":"oral","current_score":9}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestCreateRejectsScoreAboveTwenty(t *testing.T) {
	handler := NewRequestHandler(nil)
	router := gin.New()
	actor := &models.Actor{UserID: "usr-1", Role: models.RoleStudent, StudentID: "stu-1"}
	router.POST("/requests", injectActor(actor), handler.Create)

	body := `{"class_level_id":"lvl-1","field_id":"fld-1","subject_id":"sub-1","type":"cc","current_score":25}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requests", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlersRequireAResolvedActor(t *testing.T) {
	handler := NewRequestHandler(nil)
	router := gin.New()
	router.GET("/requests/:id", handler.Get)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/requests/req-1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestDecisionRejectsUnknownOutcome(t *testing.T) {
	handler := NewRequestHandler(nil)
	router := gin.New()
	actor := &models.Actor{UserID: "usr-1", Role: models.RoleLecturer}
	router.POST("/requests/:id/decision", injectActor(actor), handler.Decide)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requests/req-1/decision", strings.NewReader(`{"outcome":"maybe"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseRequestFilterSplitsStatusesAndPaginates(t *testing.T) {
	router := gin.New()
	var filter models.RequestFilter
	var pagination models.Pagination
	router.GET("/requests", func(c *gin.Context) {
		filter, pagination = parseRequestFilter(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/requests?status=sent,%20received&type=cc&page=3&page_size=20", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.RequestStatus{models.StatusSent, models.StatusReceived}, filter.Status)
	assert.Equal(t, models.RequestTypeCC, filter.Type)
	assert.Equal(t, 20, filter.Limit)
	assert.Equal(t, 40, filter.Offset)
	assert.Equal(t, 3, pagination.Page)
}

func TestParseRequestFilterClampsPageSize(t *testing.T) {
	router := gin.New()
	var filter models.RequestFilter
	router.GET("/requests", func(c *gin.Context) {
		filter, _ = parseRequestFilter(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/requests?page_size=9999&page=-2", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, 50, filter.Limit)
	assert.Equal(t, 0, filter.Offset)
}

func TestDownloadRequiresToken(t *testing.T) {
	handler := NewAttachmentHandler(nil)
	router := gin.New()
	router.GET("/attachments/download", handler.Download)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/attachments/download", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
