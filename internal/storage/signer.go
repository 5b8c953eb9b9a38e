package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/brightpath/guidance-service/internal/config"
)

// ErrNotConfigured is returned when no storage backend is set up.
var ErrNotConfigured = errors.New("storage backend not configured")

// URLSigner issues short-lived signed URLs for object upload and download.
type URLSigner interface {
	SignUpload(ctx context.Context, path string) (string, error)
	SignDownload(ctx context.Context, path string, validity time.Duration) (string, error)
}

// httpSigner calls the managed storage service's sign endpoints.
type httpSigner struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *http.Client
}

// NewHTTPSigner builds the signer from configuration. A missing base URL
// yields a signer that always reports ErrNotConfigured so routes can map
// it to 501.
func NewHTTPSigner(cfg config.StorageConfig) URLSigner {
	return &httpSigner{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		bucket:     cfg.Bucket,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type signResponse struct {
	SignedURL string `json:"signedURL"`
}

func (s *httpSigner) SignUpload(ctx context.Context, path string) (string, error) {
	return s.sign(ctx, fmt.Sprintf("/object/upload/sign/%s/%s", s.bucket, path), 0)
}

func (s *httpSigner) SignDownload(ctx context.Context, path string, validity time.Duration) (string, error) {
	return s.sign(ctx, fmt.Sprintf("/object/sign/%s/%s", s.bucket, path), validity)
}

func (s *httpSigner) sign(ctx context.Context, endpoint string, validity time.Duration) (string, error) {
	if s.baseURL == "" {
		return "", ErrNotConfigured
	}

	var body bytes.Buffer
	if validity > 0 {
		payload := map[string]any{"expiresIn": int(validity.Seconds())}
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return "", err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage sign request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("storage sign returned status %d", resp.StatusCode)
	}

	var parsed signResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode sign response: %w", err)
	}
	if parsed.SignedURL == "" {
		return "", errors.New("storage sign response missing signed URL")
	}
	return s.baseURL + parsed.SignedURL, nil
}
