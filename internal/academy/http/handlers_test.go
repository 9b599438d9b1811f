package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/academy/catalog"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/academy/domain"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/academy/repository"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/academy/service"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/auth"
)

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cat, err := catalog.Default()
	require.NoError(t, err)
	svc := service.NewService(cat, repository.NewAttemptRepository(client), nil, nil)

	r := gin.New()
	r.Use(auth.OptionalUser())
	New(svc).Register(r.Group("/api/v1/academy"))
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "u1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type attemptResp struct {
	Attempt domain.AttemptView `json:"attempt"`
}

func decodeAttempt(t *testing.T, w *httptest.ResponseRecorder) domain.AttemptView {
	t.Helper()
	var resp attemptResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Attempt
}

func TestCatalogRoutes(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodGet, "/api/v1/academy/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"threshold":"Pass mark: 75%"`)
	assert.NotContains(t, w.Body.String(), `"answer"`)

	w = do(r, http.MethodGet, "/api/v1/academy/pages/pro_academy", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodGet, "/api/v1/academy/pages/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/api/v1/academy/learning-panels/Art", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Tokenizing Art")
}

func TestAttemptRoutes(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodPost, "/api/v1/academy/attempts", gin.H{"kind": "astrology"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/v1/academy/attempts", gin.H{"kind": "module_quiz", "quiz_id": "compliance-101"})
	require.Equal(t, http.StatusCreated, w.Code)
	v := decodeAttempt(t, w)
	assert.Equal(t, domain.StatusQuestion, v.Status)
	assert.Equal(t, 3, v.Total)
	assert.Nil(t, v.Correct)

	base := "/api/v1/academy/attempts/" + v.ID

	w = do(r, http.MethodPost, base+"/answer", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, base+"/answer", gin.H{"option": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, base+"/answer", gin.H{"option": 1})
	require.Equal(t, http.StatusOK, w.Code)
	v = decodeAttempt(t, w)
	assert.Equal(t, 1, v.Score)
	require.NotNil(t, v.Correct)
	assert.Equal(t, 1, *v.Correct)

	w = do(r, http.MethodPost, base+"/answer", gin.H{"option": 0})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, base+"/advance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	v = decodeAttempt(t, w)
	assert.Equal(t, 1, v.Index)
	assert.Nil(t, v.Selected)

	w = do(r, http.MethodGet, "/api/v1/academy/attempts/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCertificationsUnavailable(t *testing.T) {
	r := setupRouter(t)
	w := do(r, http.MethodGet, "/api/v1/academy/certifications", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
