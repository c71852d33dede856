package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// APIError is a non-2xx answer of the API.
type APIError struct {
	StatusCode int
	Message    string   `json:"message"`
	Kind       string   `json:"kind"`
	Overage    *float64 `json:"overage"`
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Kind, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// Transport handles low-level HTTP and authentication
type Transport struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
}

// NewTransport creates a transport with base URL and auth
func NewTransport(baseURL, token string) *Transport {
	return &Transport{
		BaseURL:    baseURL,
		AuthToken:  token,
		HTTPClient: &http.Client{},
	}
}

// helper: build full URL with query params
func (t *Transport) buildURL(path string, query map[string]string) (string, error) {
	u, err := url.Parse(t.BaseURL + path)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (t *Transport) newRequest(ctx context.Context, method, path string, body io.Reader, query map[string]string) (*http.Request, error) {
	fullURL, err := t.buildURL(path, query)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, err
	}
	if t.AuthToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", t.AuthToken))
	}
	return req, nil
}

// Do sends data as JSON (when not nil) and returns the raw response body.
func (t *Transport) Do(ctx context.Context, method, path string, data any, query map[string]string) ([]byte, error) {
	var body io.Reader
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := t.newRequest(ctx, method, path, body, query)
	if err != nil {
		return nil, err
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return t.send(req)
}

func (t *Transport) send(req *http.Request) ([]byte, error) {
	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	resdata, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(resdata, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = string(resdata)
		}
		return nil, apiErr
	}
	return resdata, nil
}

// call decodes the data envelope of a response into T.
func call[T any](ctx context.Context, t *Transport, method, path string, data any, query map[string]string) (T, error) {
	var out envelope[T]
	raw, err := t.Do(ctx, method, path, data, query)
	if err != nil {
		return out.Data, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out.Data, fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return out.Data, nil
}
