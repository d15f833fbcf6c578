package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

const requestTimeout = 10 * time.Second

// Client talks to a running appointments server. Every call fails the test on
// transport errors, so callers only deal with status codes and bodies.
type Client struct {
	base string
	http *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: requestTimeout},
	}
}

// Response is a fully read HTTP response.
type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) UnmarshalJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

func (c *Client) GET(t *testing.T, path string) *Response {
	t.Helper()
	return c.Do(t, http.MethodGet, path, nil, nil)
}

func (c *Client) POST(t *testing.T, path string, body any) *Response {
	t.Helper()
	return c.Do(t, http.MethodPost, path, body, nil)
}

func (c *Client) PATCH(t *testing.T, path string, body any) *Response {
	t.Helper()
	return c.Do(t, http.MethodPatch, path, body, nil)
}

func (c *Client) DELETE(t *testing.T, path string) *Response {
	t.Helper()
	return c.Do(t, http.MethodDelete, path, nil, nil)
}

func (c *Client) POSTWithHeaders(t *testing.T, path string, body any, headers map[string]string) *Response {
	t.Helper()
	return c.Do(t, http.MethodPost, path, body, headers)
}

// Do sends body as JSON when it is non-nil and reads the whole response.
func (c *Client) Do(t *testing.T, method, path string, body any, headers map[string]string) *Response {
	t.Helper()

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode %s %s body: %v", method, path, err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.base+path, payload)
	if err != nil {
		t.Fatalf("build %s %s: %v", method, path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s %s response: %v", method, path, err)
	}
	return &Response{Response: resp, Body: data}
}

// WaitForHealthy polls /ready until the service and its store answer.
func (c *Client) WaitForHealthy(t *testing.T, maxWait time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWait)
	defer cancel()

	for {
		if c.ready(ctx) {
			return
		}
		select {
		case <-ctx.Done():
			t.Fatalf("service not ready after %v", maxWait)
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (c *Client) ready(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/ready", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func AssertStatusCode(t *testing.T, resp *Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("status = %d, want %d; body: %s", resp.StatusCode, expected, resp.Body)
	}
}

func AssertContains(t *testing.T, resp *Response, substr string) {
	t.Helper()
	if !strings.Contains(string(resp.Body), substr) {
		t.Fatalf("body missing %q: %s", substr, resp.Body)
	}
}

// GetErrorCode returns the code field of an error body.
func GetErrorCode(t *testing.T, resp *Response) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := resp.UnmarshalJSON(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Code
}
