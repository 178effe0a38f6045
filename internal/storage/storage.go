// Package storage uploads files to the hosted object storage buckets
// (vehicle images, review photos, blog covers, payment proofs).
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/google/uuid"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Upload stores body under bucket/objectPath and returns its public URL.
// An existing object at the same path is overwritten.
func (c *Client) Upload(ctx context.Context, bucket, objectPath string, body io.Reader, contentType string) (string, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return "", fmt.Errorf("%w: storage url or api key missing", domain.ErrConfig)
	}

	url := fmt.Sprintf("%s/object/%s/%s", c.baseURL, bucket, objectPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("%w: Upload - create request: %v", domain.ErrUpload, err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: Upload - execute request: %v", domain.ErrUpload, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: storage rejected credentials (status %d)", domain.ErrConfig, resp.StatusCode)
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: Upload - unexpected status %d: %s", domain.ErrUpload, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return c.PublicURL(bucket, objectPath), nil
}

func (c *Client) PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.baseURL, bucket, objectPath)
}

// ObjectPath builds a collision-free object name under prefix that keeps a
// readable, sanitised form of the original filename.
func ObjectPath(prefix, filename string) string {
	name := sanitize(path.Base(filename))
	if name == "" {
		name = "file"
	}
	object := uuid.NewString() + "-" + name
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		return prefix + "/" + object
	}
	return object
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-.")
}
