// Package httpx performs the JSON request/response exchanges used by the web
// auth client and maps their failures onto the core error kinds.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/layer-3/webauth/core"
)

const maxBodySize = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

// Do sends the request and returns the body of a 2xx response
func Do(client *http.Client, req *http.Request) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &core.RequestFailedError{Op: req.Method, URL: req.URL.Redacted(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &core.RequestFailedError{Op: req.Method, URL: req.URL.Redacted(), StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		return nil, &core.RequestFailedError{
			Op:         req.Method,
			URL:        req.URL.Redacted(),
			StatusCode: resp.StatusCode,
			Message:    eb.Error,
		}
	}

	return body, nil
}

// Get fetches a URL and returns the raw body
func Get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return Do(client, req)
}

// GetJSON fetches a URL and decodes the JSON body into out
func GetJSON(ctx context.Context, client *http.Client, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := Do(client, req)
	if err != nil {
		return err
	}
	return decode(body, out)
}

// PostJSON posts in as JSON with the extra headers and decodes the JSON reply into out
func PostJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	body, err := Do(client, req)
	if err != nil {
		return err
	}
	return decode(body, out)
}

func decode(body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return core.Malformed(core.ErrMalformedResponse, err)
	}
	return nil
}
