// client.go

// Package storage talks to the external image store and serves the upload
// and image-proxy endpoints.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/grigoryblack/friendly-reminder/internal/config"
)

// Client is the interface to the external object store. Upload returns the
// public URL of the stored object.
type Client interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type httpClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

func NewClient(cfg config.StorageConfig) Client {
	return &httpClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *httpClient) Upload(
	ctx context.Context,
	filename string,
	data []byte,
) (string, error) {
	url := c.endpoint + "/" + filename

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPut,
		url,
		bytes.NewReader(data),
	)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", filename, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("upload %s: store status %d", filename, res.StatusCode)
	}

	return url, nil
}

func (c *httpClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("fetch %s: store status %d", url, res.StatusCode)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read fetch body: %w", err)
	}

	return data, nil
}
