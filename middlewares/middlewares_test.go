package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"creme-store/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(PrometheusMiddleware())
	api := r.Group("/api", AuthMiddleware(testSecret))
	api.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId": c.GetString(ContextUserID),
			"email":  c.GetString(ContextEmail),
		})
	})
	api.GET("/admin", AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func token(t *testing.T, admin bool) string {
	tok, err := utils.GenerateToken("u1", "ayesha@example.com", admin, testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func serve(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter()

	w := serve(r, "/api/me", token(t, false))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":"u1","email":"ayesha@example.com"}`, w.Body.String())

	for _, auth := range []string{"", "Bearer ", "Token abc", "Bearer not-a-jwt"} {
		w := serve(r, "/api/me", auth)
		assert.Equal(t, http.StatusUnauthorized, w.Code, auth)
		assert.Contains(t, w.Body.String(), `"error":"unauthenticated"`)
	}
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	tok, err := utils.GenerateToken("u1", "", false, "other-secret", time.Hour)
	require.NoError(t, err)

	w := serve(newRouter(), "/api/me", "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminMiddleware(t *testing.T) {
	r := newRouter()

	w := serve(r, "/api/admin", token(t, false))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"permission-denied"`)

	w = serve(r, "/api/admin", token(t, true))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecordOrderOperation(t *testing.T) {
	before := testutil.ToFloat64(orderOperations.WithLabelValues("create", "success"))
	RecordOrderOperation("create", true)
	assert.Equal(t, before+1, testutil.ToFloat64(orderOperations.WithLabelValues("create", "success")))
}

func TestRecordFlowRun(t *testing.T) {
	before := testutil.ToFloat64(flowRuns.WithLabelValues("gift-card", "error"))
	RecordFlowRun("gift-card", time.Now(), false)
	assert.Equal(t, before+1, testutil.ToFloat64(flowRuns.WithLabelValues("gift-card", "error")))
}
