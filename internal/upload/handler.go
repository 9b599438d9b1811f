package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patpet21/test-pro-enterprise-sub002/internal/observability"
)

type Handler struct {
	uploader Uploader
	maxBytes int64
}

func NewHandler(uploader Uploader, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Handler{uploader: uploader, maxBytes: maxBytes}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/image", h.uploadImage)
}

func (h *Handler) uploadImage(c *gin.Context) {
	logger := observability.NewLogger(c.Request.Context())

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > h.maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": ErrTooLarge.Error()})
		return
	}

	data, err := readAll(file, h.maxBytes)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	if _, err := DetectImage(data); err != nil {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
		return
	}

	url, err := h.uploader.Upload(c.Request.Context(), file.Filename, data)
	observability.RecordUpload(err)
	if err != nil {
		logger.LogError("upload_image", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed. Please try again."})
		return
	}

	logger.LogInfof("upload_image", "filename=%s bytes=%d", file.Filename, len(data))
	c.JSON(http.StatusOK, gin.H{"secure_url": url})
}

func readAll(file *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}
