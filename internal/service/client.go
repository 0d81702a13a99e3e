package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"aa-consent-gateway/internal/metrics"
	"aa-consent-gateway/internal/model"
	"aa-consent-gateway/pkg/logger"
)

// AA network endpoints, relative to the configured base URL
const (
	pathLogin             = "/User/Login"
	pathConsentRequest    = "/ConsentRequestPlus"
	pathEncryptLspConsent = "/EncryptLspConsentRequest"
)

// Operation names used in logs and metrics
const (
	opLogin          = "login"
	opConsentRequest = "consent_request"
	opEncryptLsp     = "encrypt_lsp"
)

const maxErrorBodyBytes = 512

// AAClient posts enveloped JSON requests to the AA network
type AAClient struct {
	baseURL    string
	httpClient *http.Client
	envelopes  *EnvelopeBuilder
	metrics    *metrics.Registry
	logger     *logger.Logger
}

// NewAAClient creates a client with a fixed per-call timeout
func NewAAClient(baseURL string, timeout time.Duration, envelopes *EnvelopeBuilder, reg *metrics.Registry, log *logger.Logger) *AAClient {
	return &AAClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		envelopes: envelopes,
		metrics:   reg,
		logger:    log,
	}
}

// clientFor returns an HTTP client that attaches token as a bearer
// credential. The token source is static and lives only for this call.
func (c *AAClient) clientFor(token string) *http.Client {
	if token == "" {
		return c.httpClient
	}
	return &http.Client{
		Timeout: c.httpClient.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.httpClient.Transport,
		},
	}
}

// call envelopes body, posts it to path and decodes the reply body into Res
func call[Req, Res any](ctx context.Context, c *AAClient, operation, path, token string, body Req) (Res, error) {
	var out model.Envelope[Res]
	err := c.send(ctx, operation, path, token, BuildEnvelope(c.envelopes, body), &out)
	c.metrics.NetworkCall(operation, err)
	return out.Body, err
}

// send performs the actual HTTP request to the AA network
func (c *AAClient) send(ctx context.Context, operation, path, token string, payload, out any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "aa-consent-gateway/1.0")

	c.logger.Debug("AA network request", "operation", operation, "url", url)
	start := time.Now()

	resp, err := c.clientFor(token).Do(req)
	if err != nil {
		c.logger.Error("AA network request failed", "operation", operation, "url", url, "error", err)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("AA network response",
		"operation", operation,
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		c.logger.Error("AA network returned error status",
			"operation", operation,
			"status", resp.StatusCode,
			"url", url,
		)
		return fmt.Errorf("unexpected status code: %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
