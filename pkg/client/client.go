// Package client is a Go client for the canonrest HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/getmockd/canonrest/pkg/precondition"
	"github.com/getmockd/canonrest/pkg/resource"
)

// Defaults.
const (
	DefaultBaseURL  = "http://localhost:8080"
	DefaultBasePath = "/api/sample"
	DefaultTimeout  = 30 * time.Second
)

// APIError is a non-success response from the server.
type APIError struct {
	StatusCode int
	ErrorCode  string
	Message    string
	Hint       string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsPreconditionFailed reports whether the server rejected a conditional
// request because the resource changed.
func (e *APIError) IsPreconditionFailed() bool {
	return e.StatusCode == http.StatusPreconditionFailed
}

// IsPreconditionFailed reports whether err is an APIError with status 412.
func IsPreconditionFailed(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsPreconditionFailed()
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client talks to one canonrest server.
type Client struct {
	baseURL    string
	basePath   string
	httpClient *http.Client
	xml        bool

	maxRetries   uint64
	initialDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBasePath sets the collection path on the server.
func WithBasePath(path string) Option {
	return func(c *Client) {
		if path = strings.TrimRight(path, "/"); path != "" {
			c.basePath = path
		}
	}
}

// WithXML makes the client send and accept application/xml bodies. Error
// responses are still read as JSON.
func WithXML() Option {
	return func(c *Client) {
		c.xml = true
	}
}

// WithRetry configures UpdateWithRetry.
func WithRetry(maxRetries uint64, initialDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		if initialDelay > 0 {
			c.initialDelay = initialDelay
		}
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		basePath:     DefaultBasePath,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		maxRetries:   5,
		initialDelay: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List returns a page of resources. A take of zero uses the server default.
func (c *Client) List(ctx context.Context, skip, take int) ([]resource.Resource, error) {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if take > 0 {
		q.Set("take", strconv.Itoa(take))
	}
	path := c.basePath
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	resp, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var list []resource.Resource
	if c.xml {
		list, err = resource.DecodeXMLList(body)
	} else {
		err = json.Unmarshal(body, &list)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return list, nil
}

// Get fetches one resource.
func (c *Client) Get(ctx context.Context, key int) (resource.Resource, error) {
	res, _, err := c.GetIfNoneMatch(ctx, key, "")
	return res, err
}

// GetIfNoneMatch fetches a resource unless its tag still equals tag. When
// the server answers 304 the returned bool is false and the resource is
// empty.
func (c *Client) GetIfNoneMatch(ctx context.Context, key int, tag string) (resource.Resource, bool, error) {
	headers := map[string]string{}
	if tag != "" {
		headers[precondition.HeaderIfNoneMatch] = precondition.Quote(tag)
	}

	resp, err := c.do(ctx, http.MethodGet, c.itemPath(key), nil, headers)
	if err != nil {
		return resource.Resource{}, false, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		res, err := c.decodeResource(resp)
		return res, true, err
	case http.StatusNotModified:
		return resource.Resource{}, false, nil
	default:
		return resource.Resource{}, false, parseError(resp)
	}
}

// Create posts a new resource. Only Data is honoured by the server.
func (c *Client) Create(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	resp, err := c.do(ctx, http.MethodPost, c.basePath, &res, nil)
	if err != nil {
		return resource.Resource{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return resource.Resource{}, parseError(resp)
	}
	return c.decodeResource(resp)
}

// Replace PUTs res to its key. When res carries a tag it is sent as
// If-Match, so a concurrent change yields a 412 APIError.
func (c *Client) Replace(ctx context.Context, res resource.Resource) (resource.Resource, error) {
	resp, err := c.do(ctx, http.MethodPut, c.itemPath(res.Key), &res, ifMatch(res.Tag))
	if err != nil {
		return resource.Resource{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return resource.Resource{}, parseError(resp)
	}
	return c.decodeResource(resp)
}

// Upsert PUTs res to the add-or-update route for key and reports whether
// the resource was created. A tag on res is sent as If-Match.
func (c *Client) Upsert(ctx context.Context, key int, res resource.Resource) (resource.Resource, bool, error) {
	path := c.basePath + "/addorupdate/" + strconv.Itoa(key)
	resp, err := c.do(ctx, http.MethodPut, path, &res, ifMatch(res.Tag))
	if err != nil {
		return resource.Resource{}, false, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		out, err := c.decodeResource(resp)
		return out, resp.StatusCode == http.StatusCreated, err
	default:
		return resource.Resource{}, false, parseError(resp)
	}
}

// Delete removes key. A non-empty tag is sent as If-Match. The returned
// bool is false when there was nothing to delete.
func (c *Client) Delete(ctx context.Context, key int, tag string) (resource.Resource, bool, error) {
	resp, err := c.do(ctx, http.MethodDelete, c.itemPath(key), nil, ifMatch(tag))
	if err != nil {
		return resource.Resource{}, false, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		res, err := c.decodeResource(resp)
		return res, true, err
	case http.StatusNoContent:
		return resource.Resource{}, false, nil
	default:
		return resource.Resource{}, false, parseError(resp)
	}
}

// Reset reseeds the server's store.
func (c *Client) Reset(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodDelete, c.basePath+"/all", nil, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		return parseError(resp)
	}
	return nil
}

func (c *Client) itemPath(key int) string {
	return c.basePath + "/" + strconv.Itoa(key)
}

func ifMatch(tag string) map[string]string {
	if strings.TrimSpace(tag) == "" {
		return nil
	}
	return map[string]string{precondition.HeaderIfMatch: precondition.Quote(tag)}
}

func (c *Client) mediaType() string {
	if c.xml {
		return "application/xml"
	}
	return "application/json"
}

func (c *Client) encode(res resource.Resource) ([]byte, error) {
	if c.xml {
		return resource.EncodeXML(res)
	}
	return json.Marshal(res)
}

func (c *Client) do(ctx context.Context, method, path string, body *resource.Resource, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := c.encode(*body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", c.mediaType())
	}
	req.Header.Set("Accept", c.mediaType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{
			ErrorCode: "connection_error",
			Message:   fmt.Sprintf("cannot connect to %s: %v", c.baseURL, err),
		}
	}
	return resp, nil
}

func (c *Client) decodeResource(resp *http.Response) (resource.Resource, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resource.Resource{}, fmt.Errorf("failed to read response: %w", err)
	}

	var res resource.Resource
	if c.xml {
		res, err = resource.DecodeXML(body)
	} else {
		err = json.Unmarshal(body, &res)
	}
	if err != nil {
		return resource.Resource{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return res, nil
}

func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Hint    string `json:"hint"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorCode:  errResp.Error,
			Message:    errResp.Message,
			Hint:       errResp.Hint,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		ErrorCode:  "unknown_error",
		Message:    fmt.Sprintf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
	}
}
