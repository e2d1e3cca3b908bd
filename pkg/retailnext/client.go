package retailnext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rntap/pkg/config"
	"rntap/pkg/errors"
	"rntap/pkg/logger"
	"rntap/pkg/ratelimit"
	"rntap/pkg/retry"
	"rntap/pkg/state"
)

const bodyPreviewLimit = 500

// Client talks to the RetailNext API. Every request carries the basic-auth
// key pair and the configured User-Agent, paginated continuations included.
type Client struct {
	httpClient *http.Client
	baseURL    string
	accessKey  string
	secretKey  string
	userAgent  string
	limiter    ratelimit.Limiter
	retryCfg   *retry.Config
	logger     logger.Logger
}

// NewClient creates an API client from the loaded configuration
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.API.Timeout,
		},
		baseURL:   cfg.API.BaseURL,
		accessKey: cfg.API.AccessKey,
		secretKey: cfg.API.SecretKey,
		userAgent: cfg.API.UserAgent,
		limiter:   ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute),
		retryCfg: &retry.Config{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Backoff: &retry.ExponentialBackoff{
				BaseDelay:    cfg.Retry.BaseDelay,
				MaxDelay:     cfg.Retry.MaxDelay,
				Multiplier:   2.0,
				JitterFactor: 0.1,
			},
			RetryIf: retry.DefaultRetryIf,
			Logger:  log,
		},
		logger: log,
	}
}

// GetLocations fetches one page of the location hierarchy. pageStart is empty
// for the first page and the previous response's next-page token afterwards.
// The returned token is empty once the final (200) page has been served.
func (c *Client) GetLocations(pageStart string) (*LocationsPage, string, error) {
	url := LocationURL(c.baseURL)

	var page LocationsPage
	var next string

	op := func() error {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return &errors.Error{Type: errors.ErrorTypeUnknown, Message: fmt.Sprintf("failed to create request: %v", err), URL: url}
		}
		if pageStart != "" {
			req.Header.Set(HeaderPageStart, pageStart)
			req.Header.Set(HeaderPageLength, fmt.Sprintf("%d", PageLength))
		}

		status, header, body, err := c.do(req)
		if err != nil {
			return err
		}
		if err := classify(status, url, body); err != nil {
			return err
		}

		page = LocationsPage{}
		if err := json.Unmarshal(body, &page); err != nil {
			return parsingError(url, status, body, err)
		}

		next = ""
		if status == http.StatusPartialContent {
			next = header.Get(HeaderPageNext)
			if next == "" {
				return &errors.Error{
					Type:    errors.ErrorTypeParsing,
					Message: "partial response without a next-page token",
					Code:    status,
					URL:     url,
				}
			}
		}
		return nil
	}

	if err := retry.Do(op, c.retryCfg); err != nil {
		return nil, "", err
	}
	return &page, next, nil
}

// QueryMetrics posts a filter to the datamine endpoint. A 200/206 response
// that carries an error envelope is returned as a non-retryable error.
func (c *Client) QueryMetrics(filter *state.Filter) (*MetricsResponse, error) {
	url := DatamineURL(c.baseURL)

	payload, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize filter: %w", err)
	}

	var result MetricsResponse

	op := func() error {
		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return &errors.Error{Type: errors.ErrorTypeUnknown, Message: fmt.Sprintf("failed to create request: %v", err), URL: url}
		}
		req.Header.Set("Content-Type", "application/json")

		status, _, body, err := c.do(req)
		if err != nil {
			return err
		}
		if err := classify(status, url, body); err != nil {
			return err
		}

		result = MetricsResponse{}
		if err := json.Unmarshal(body, &result); err != nil {
			return parsingError(url, status, body, err)
		}

		if result.EnvelopeError() {
			return &errors.Error{
				Type:    errors.ErrorTypeAPIEnvelope,
				Message: fmt.Sprintf("API error in success response: %s %s", result.ErrType, result.Err),
				Code:    status,
				URL:     url,
				Body:    preview(body),
			}
		}
		return nil
	}

	if err := retry.Do(op, c.retryCfg); err != nil {
		return nil, err
	}
	return &result, nil
}

// do sends the request with auth and User-Agent attached and reads the body
func (c *Client) do(req *http.Request) (int, http.Header, []byte, error) {
	if c.limiter != nil {
		c.limiter.Wait()
	}

	req.SetBasicAuth(c.accessKey, c.secretKey)
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return 0, nil, nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			URL:     req.URL.String(),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
			URL:     req.URL.String(),
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	return resp.StatusCode, resp.Header, body, nil
}

// classify maps a response status onto the error taxonomy. 200 means a
// complete response, 206 a partial one that pagination continues; everything
// else is a failure carrying status, URL and body for the final log line.
func classify(status int, url string, body []byte) error {
	switch {
	case status == http.StatusOK || status == http.StatusPartialContent:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &errors.Error{Type: errors.ErrorTypeAuth, Message: "authentication failed", Code: status, URL: url, Body: preview(body)}
	case status == http.StatusNotFound:
		return &errors.Error{Type: errors.ErrorTypeNotFound, Message: "resource not found", Code: status, URL: url, Body: preview(body)}
	case status == http.StatusTooManyRequests:
		return &errors.Error{Type: errors.ErrorTypeRateLimit, Message: "rate limit exceeded", Code: status, URL: url, Body: preview(body)}
	case status >= 500:
		return &errors.Error{Type: errors.ErrorTypeServerError, Message: "server error", Code: status, URL: url, Body: preview(body)}
	default:
		return &errors.Error{Type: errors.ErrorTypeUnknown, Message: fmt.Sprintf("unexpected status code: %d", status), Code: status, URL: url, Body: preview(body)}
	}
}

func parsingError(url string, status int, body []byte, err error) *errors.Error {
	return &errors.Error{
		Type:    errors.ErrorTypeParsing,
		Message: fmt.Sprintf("failed to parse JSON: %v", err),
		Code:    status,
		URL:     url,
		Body:    preview(body),
	}
}

// preview truncates a response body for logging
func preview(body []byte) string {
	if len(body) > bodyPreviewLimit {
		return string(body[:bodyPreviewLimit]) + "..."
	}
	return string(body)
}
