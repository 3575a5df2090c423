// Package upstream performs the HTTP calls behind every tool operation
// and maps responses into the error taxonomy the dispatch layer relies
// on: 429 becomes a RateLimitError tagged with the service name, any
// other non-2xx status becomes an APIError.
package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mechkit/mechkit/pkg/errorsx"
	"github.com/mechkit/mechkit/pkg/redact"
	"github.com/mechkit/mechkit/pkg/resilience"
)

// Request describes one upstream call. Service names the credential
// pool the call is billed against and travels on any resulting error.
type Request struct {
	Service string
	Method  string
	URL     string
	Header  http.Header
	Body    []byte
}

// APIError is a non-429 upstream failure carrying the status code.
type APIError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}

// Client executes upstream requests. The zero-value retry policy makes
// a single attempt; connection failures are the only thing retried,
// status errors always surface immediately.
type Client struct {
	HTTP  *http.Client
	Retry resilience.RetryPolicy
	log   *slog.Logger
}

func New(httpClient *http.Client, retry resilience.RetryPolicy, log *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{HTTP: httpClient, Retry: retry, log: log}
}

// Do performs the request and returns the raw response body.
func (c *Client) Do(ctx context.Context, req Request) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		status int
		body   []byte
	)
	policy := c.Retry
	policy.Retryable = retryableTransportError
	err := policy.Do(func() error {
		var rd io.Reader
		if len(req.Body) > 0 {
			rd = bytes.NewReader(req.Body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, rd)
		if err != nil {
			return errorsx.Wrap(err, errorsx.ReasonUpstreamRequest)
		}
		for k, vals := range req.Header {
			for _, v := range vals {
				httpReq.Header.Add(k, v)
			}
		}
		resp, err := c.HTTP.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		status = resp.StatusCode
		body = b
		return nil
	})
	if err != nil {
		return "", err
	}
	c.log.Debug("upstream_call",
		"service", req.Service,
		"method", req.Method,
		"url", redact.Text(req.URL),
		"status", status,
	)
	switch {
	case status == http.StatusTooManyRequests:
		return "", resilience.RateLimitError{Service: req.Service, Message: strings.TrimSpace(string(body))}
	case status >= 400:
		return "", APIError{Service: req.Service, StatusCode: status, Body: strings.TrimSpace(string(body))}
	}
	return string(body), nil
}

func retryableTransportError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errorsx.HasReason(err, errorsx.ReasonUpstreamRequest) {
		return false
	}
	return true
}
