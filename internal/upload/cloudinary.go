package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/patpet21/test-pro-enterprise-sub002/config"
)

var (
	ErrUploadFailed = errors.New("image upload failed")
	ErrNotImage     = errors.New("file is not an image")
	ErrTooLarge     = errors.New("file too large")
)

// DetectImage returns the sniffed media type of data, or ErrNotImage.
func DetectImage(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}
	return mt.String(), nil
}

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

// CloudinaryClient posts unsigned uploads to {endpoint}/{cloud}/image/upload.
type CloudinaryClient struct {
	url    string
	preset string
	client *http.Client
}

func NewCloudinaryClient(cfg config.UploadConfig) *CloudinaryClient {
	return &CloudinaryClient{
		url:    fmt.Sprintf("%s/%s/image/upload", strings.TrimRight(cfg.Endpoint, "/"), cfg.CloudName),
		preset: cfg.UploadPreset,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

type cloudinaryResp struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *CloudinaryClient) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{"name": "file", "filename": filename}))
	h.Set("Content-Type", mimetype.Detect(data).String())
	part, err := w.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if err := w.WriteField("upload_preset", c.preset); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	var out cloudinaryResp
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: status %d: decode: %v", ErrUploadFailed, resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 || out.SecureURL == "" {
		msg := "no secure_url"
		if out.Error != nil {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrUploadFailed, resp.StatusCode, msg)
	}
	return out.SecureURL, nil
}
