// Package matric talks to the matric-allocation service: program code prefix
// in, globally unique matric number out. The service owns uniqueness; this
// side takes no lock around allocation.
package matric

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

type allocateRequest struct {
	Prefix string `json:"prefix"`
}

type allocateResponse struct {
	MatricNo string `json:"matric_no"`
}

// Client is an HTTP client for the matric-allocation service.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient constructs a matric allocator client.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient, logger: logger}
}

// Allocate requests a unique matric number for the given program code
// prefix. An empty result is treated as an allocator fault, never returned
// to the workflow.
func (c *Client) Allocate(ctx context.Context, prefix string) (string, error) {
	var allocated allocateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(allocateRequest{Prefix: prefix}).
		SetResult(&allocated).
		Post("/matric/allocate")
	if err != nil {
		return "", fmt.Errorf("allocate matric: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("allocate matric failed with status %d", resp.StatusCode())
	}
	if allocated.MatricNo == "" {
		return "", fmt.Errorf("allocator returned empty matric number for prefix %q", prefix)
	}

	c.logger.DebugContext(ctx, "matric allocated",
		"prefix", prefix,
		"matric_no", allocated.MatricNo,
	)
	return allocated.MatricNo, nil
}
