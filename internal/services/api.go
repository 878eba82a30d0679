// API service for making raw HTTP requests to the player
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// APIService makes raw requests against the player API, for debugging endpoints the typed clients don't cover.
type APIService struct {
	opts Opts
}

// NewAPIService creates a raw API service. Empty fields in opts fall back to the defaults.
func NewAPIService(opts Opts) *APIService {
	return &APIService{opts: opts.withDefaults()}
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.do(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	var body any
	if len(data) > 0 {
		body = json.RawMessage(data)
	}
	return a.do(ctx, http.MethodPost, path, body)
}

func (a *APIService) do(ctx context.Context, method, path string, body any) (*APIResponse, error) {
	req, err := newRequest(ctx, a.opts, method, path, body)
	if err != nil {
		return nil, err
	}

	resp, err := a.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}
