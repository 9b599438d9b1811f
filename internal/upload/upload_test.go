package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patpet21/test-pro-enterprise-sub002/config"
	"github.com/patpet21/test-pro-enterprise-sub002/internal/observability"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestCloudinaryClient_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/demo/image/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "unsigned", r.FormValue("upload_preset"))
		_, fh, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "tower.png", fh.Filename)
		assert.Equal(t, "image/png", fh.Header.Get("Content-Type"))
		_ = json.NewEncoder(w).Encode(map[string]string{"secure_url": "https://cdn.example/tower.png"})
	}))
	defer srv.Close()

	c := NewCloudinaryClient(config.UploadConfig{Endpoint: srv.URL + "/", CloudName: "demo", UploadPreset: "unsigned"})
	url, err := c.Upload(context.Background(), "tower.png", pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/tower.png", url)
}

func TestCloudinaryClient_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
	}))
	defer srv.Close()

	c := NewCloudinaryClient(config.UploadConfig{Endpoint: srv.URL, CloudName: "demo"})
	_, err := c.Upload(context.Background(), "x.png", pngBytes(t))
	assert.ErrorIs(t, err, ErrUploadFailed)
	assert.Contains(t, err.Error(), "Upload preset not found")
}

func TestDetectImage(t *testing.T) {
	mt, err := DetectImage(pngBytes(t))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt)

	_, err = DetectImage([]byte("%PDF-1.7\n"))
	assert.ErrorIs(t, err, ErrNotImage)
	assert.Contains(t, err.Error(), "application/pdf")
}

type stubUploader struct {
	err   error
	calls int
}

func (s *stubUploader) Upload(_ context.Context, filename string, _ []byte) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "https://cdn.example/" + filename, nil
}

func TestHandler_UploadImage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		field    string
		data     []byte
		upErr    error
		status   int
		uploaded bool
	}{
		{"image", "file", pngBytes(t), nil, http.StatusOK, true},
		{"missing file", "other", pngBytes(t), nil, http.StatusBadRequest, false},
		{"not an image", "file", []byte("hello, plain text"), nil, http.StatusUnsupportedMediaType, false},
		{"too large", "file", bytes.Repeat([]byte{0x89}, 2048), nil, http.StatusRequestEntityTooLarge, false},
		{"upstream failure", "file", pngBytes(t), errors.New("boom"), http.StatusBadGateway, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observability.ResetMetrics()
			up := &stubUploader{err: tt.upErr}
			r := gin.New()
			NewHandler(up, 1024).Register(r.Group("/api/v1/uploads"))

			body, ct := multipartBody(t, tt.field, "a.png", tt.data)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/image", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.uploaded, up.calls == 1)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"secure_url":"https://cdn.example/a.png"}`, w.Body.String())
			}
			if tt.uploaded {
				assert.Equal(t, int64(1), observability.GetMetrics().Snapshot().Uploads)
			}
		})
	}
}
