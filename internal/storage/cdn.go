package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CDNStore uploads to a bunny-style storage zone over HTTP PUT and serves
// reads through a pull zone.
type CDNStore struct {
	endpoint  string // storage API base, e.g. https://storage.example.com
	zone      string
	accessKey string
	pullZone  string // public CDN base the returned URLs point at
	client    *http.Client
}

// NewCDNStore creates a CDN-backed store.
func NewCDNStore(endpoint, zone, accessKey, pullZone string) *CDNStore {
	return &CDNStore{
		endpoint:  strings.TrimRight(endpoint, "/"),
		zone:      zone,
		accessKey: accessKey,
		pullZone:  strings.TrimRight(pullZone, "/"),
		client:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// Put uploads the body and returns the pull-zone URL for the object.
func (s *CDNStore) Put(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	uploadURL := fmt.Sprintf("%s/%s/%s", s.endpoint, s.zone, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("AccessKey", s.accessKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("uploading to storage zone: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("storage zone rejected upload: status %d", resp.StatusCode)
	}

	return s.pullZone + "/" + path, nil
}
