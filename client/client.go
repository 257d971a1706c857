// Package client implements the HTTP network client used by the domain test
// services. It performs a single request per call with a fixed timeout,
// logs every request and response, and maps transport failures onto a small
// closed error set. Retry policy, if any, belongs to the caller.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
)

const (
	defaultRequestTimeout  = 30 * time.Second
	defaultResourceTimeout = 60 * time.Second

	// Payloads are truncated to this many bytes in logs.
	maxLoggedBody = 2048
)

// Config configures a Client.
type Config struct {
	BaseURL         string
	APIVersion      string
	RequestTimeout  time.Duration
	ResourceTimeout time.Duration
	Log             log.Logger
}

// RequestOptions carries the optional parts of a request.
type RequestOptions struct {
	Headers map[string]string
	Query   url.Values
	Body    interface{} // JSON-serialized when non-nil
	RawBody []byte      // sent verbatim; takes precedence over Body
}

// Response is the raw outcome of one HTTP request.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v interface{}) error {
	if len(r.Body) == 0 {
		return ErrNoData
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(err, "decoding response body")
	}
	return nil
}

// Client issues requests against {baseURL}/api/{version}{endpoint}.
type Client struct {
	baseURL    string
	apiVersion string
	timeout    time.Duration
	httpClient *http.Client
	log        log.Logger
}

// New creates a Client. The base URL must parse; endpoints passed to Do
// must not repeat the host or the API prefix.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Wrapf(ErrInvalidURL, "base URL %q", cfg.BaseURL)
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v2"
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.ResourceTimeout == 0 {
		cfg.ResourceTimeout = defaultResourceTimeout
	}
	if cfg.Log == nil {
		cfg.Log = log.Root()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiVersion: cfg.APIVersion,
		timeout:    cfg.RequestTimeout,
		httpClient: &http.Client{Timeout: cfg.ResourceTimeout},
		log:        cfg.Log,
	}, nil
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs one HTTP request. endpoint is a path like "/auth/refresh";
// the API prefix is added here. The returned error is always a *Error.
func (c *Client) Do(ctx context.Context, method, endpoint string, opts *RequestOptions) (*Response, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	fullURL, err := c.buildURL(endpoint, opts.Query)
	if err != nil {
		return nil, err
	}

	var bodyReader io.Reader
	var bodyBytes []byte
	switch {
	case opts.RawBody != nil:
		bodyBytes = opts.RawBody
		bodyReader = bytes.NewReader(bodyBytes)
	case opts.Body != nil:
		bodyBytes, err = json.Marshal(opts.Body)
		if err != nil {
			return nil, errRequestFailed(errors.Wrap(err, "marshaling request body"))
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, errRequestFailed(errors.Wrap(err, "creating request"))
	}
	req.Header.Set("Accept", "application/json")
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	c.logRequest(method, fullURL, req.Header, bodyBytes)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		clientErr := classify(err)
		c.log.Error("request failed",
			"method", method,
			"url", fullURL,
			"duration", duration,
			"code", clientErr.Code,
			"err", err)
		return nil, clientErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		clientErr := classify(err)
		c.log.Error("reading response failed",
			"method", method,
			"url", fullURL,
			"status", resp.StatusCode,
			"duration", duration,
			"err", err)
		return nil, clientErr
	}

	c.logResponse(method, fullURL, resp.StatusCode, raw, duration)

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
		Duration:   duration,
	}, nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, endpoint string, opts *RequestOptions) (*Response, error) {
	return c.Do(ctx, http.MethodGet, endpoint, opts)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, endpoint string, opts *RequestOptions) (*Response, error) {
	return c.Do(ctx, http.MethodPost, endpoint, opts)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, endpoint string, opts *RequestOptions) (*Response, error) {
	return c.Do(ctx, http.MethodPut, endpoint, opts)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, opts *RequestOptions) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, endpoint, opts)
}

func (c *Client) buildURL(endpoint string, query url.Values) (string, error) {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	full := fmt.Sprintf("%s/api/%s%s", c.baseURL, c.apiVersion, endpoint)
	u, err := url.Parse(full)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidURL, "endpoint %q", endpoint)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func (c *Client) logRequest(method, fullURL string, headers http.Header, body []byte) {
	c.log.Debug("request",
		"method", method,
		"url", fullURL,
		"headers", redactHeaders(headers),
		"body", truncate(body))
}

func (c *Client) logResponse(method, fullURL string, status int, body []byte, duration time.Duration) {
	c.log.Debug("response",
		"method", method,
		"url", fullURL,
		"status", status,
		"duration", duration,
		"body", truncate(body))
}

// redactHeaders hides credential-bearing header values in logs.
func redactHeaders(h http.Header) string {
	var b strings.Builder
	for k, vals := range h {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		if strings.EqualFold(k, "Authorization") {
			b.WriteString(k + "=<redacted>")
			continue
		}
		b.WriteString(k + "=" + strings.Join(vals, ","))
	}
	return b.String()
}

func truncate(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "...(truncated)"
	}
	return string(body)
}

// BearerHeader builds the Authorization header map for a token.
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
