package imagehost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"storekeep/internal/logger"

	"go.uber.org/zap"
)

const imgbbUploadURL = "https://api.imgbb.com/1/upload"

var ErrNotConfigured = errors.New("image host API key not configured")

// UploadResult reports where the image ended up. Fallback is true when
// the hosted upload failed and the local reference was kept instead.
type UploadResult struct {
	URL      string
	Fallback bool
}

type Uploader interface {
	Upload(ctx context.Context, name string, image []byte) (string, error)
}

type imgbbUploader struct {
	apiKey     string
	httpClient *http.Client
}

func NewImgBBUploader(apiKey string) Uploader {
	if apiKey == "" {
		logger.L().Warn("ImgBB API key is empty, uploads will fall back to local references")
	}

	return &imgbbUploader{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type imgbbResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload posts the image as a base64 multipart form and returns the
// permanent hosted URL.
func (u *imgbbUploader) Upload(ctx context.Context, name string, image []byte) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("image_name", name),
		zap.Int("size_bytes", len(image)),
	)

	if u.apiKey == "" {
		return "", ErrNotConfigured
	}

	var form strings.Builder
	writer := multipart.NewWriter(&form)

	if err := writer.WriteField("key", u.apiKey); err != nil {
		return "", err
	}
	if err := writer.WriteField("image", base64.StdEncoding.EncodeToString(image)); err != nil {
		return "", err
	}
	if err := writer.WriteField("name", name); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, imgbbUploadURL, strings.NewReader(form.String()))
	if err != nil {
		log.Error("Failed creating upload request", zap.Error(err))
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	log.Info("Uploading image to ImgBB")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		log.Error("ImgBB request failed", zap.Error(err))
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read upload response", zap.Error(err))
		return "", fmt.Errorf("failed to read imgbb response: %w", err)
	}

	var res imgbbResponse
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		log.Error("Failed decoding upload response", zap.Error(err))
		return "", err
	}

	if !res.Success || res.Data.URL == "" {
		msg := res.Error.Message
		if msg == "" {
			msg = string(bodyBytes)
		}
		log.Error("ImgBB upload rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return "", fmt.Errorf("imgbb upload failed: %s", msg)
	}

	log.Info("Image uploaded", zap.String("url", res.Data.URL))
	return res.Data.URL, nil
}

// UploadOrFallback tries the hosted upload and degrades to the local
// image reference when the host is unavailable or rejects the image.
func UploadOrFallback(ctx context.Context, u Uploader, name, localRef string, image []byte) UploadResult {
	url, err := u.Upload(ctx, name, image)
	if err != nil {
		logger.FromCtx(ctx).Warn("image upload failed, using local reference",
			zap.String("image_name", name),
			zap.Error(err),
		)
		return UploadResult{URL: localRef, Fallback: true}
	}
	return UploadResult{URL: url}
}
