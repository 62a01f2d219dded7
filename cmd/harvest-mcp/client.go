package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// apiError mirrors the API error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return fmt.Sprintf("[%s] %s", e.Code, e.Message) }

// harvestRequest mirrors the API harvest request.
type harvestRequest struct {
	Limit   *int            `json:"limit,omitempty"`
	Filters json.RawMessage `json:"filters,omitempty"`
	Format  string          `json:"format,omitempty"`
}

// jobStatus mirrors the API job response, without records.
type jobStatus struct {
	ID       string    `json:"id"`
	Status   string    `json:"status"`
	URL      string    `json:"url"`
	Total    int       `json:"total"`
	Enriched int       `json:"enriched"`
	Failed   int       `json:"failed"`
	Error    *apiError `json:"error"`
}

// apiClient talks to a running harvest server.
type apiClient struct {
	baseURL   string
	apiKey    string
	http      *http.Client
	pollEvery time.Duration
}

func newAPIClient(baseURL, apiKey string) *apiClient {
	return &apiClient{
		baseURL:   baseURL,
		apiKey:    apiKey,
		http:      &http.Client{Timeout: 60 * time.Second},
		pollEvery: 2 * time.Second,
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var e struct {
			Error *apiError `json:"error"`
		}
		if json.Unmarshal(data, &e) == nil && e.Error != nil {
			return nil, resp.StatusCode, e.Error
		}
		return nil, resp.StatusCode, fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return data, resp.StatusCode, nil
}

// start submits an async harvest and returns its job id.
func (c *apiClient) start(ctx context.Context, req harvestRequest) (string, error) {
	data, _, err := c.do(ctx, http.MethodPost, "/api/v1/harvest", req)
	if err != nil {
		return "", err
	}
	var accepted struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &accepted); err != nil || accepted.ID == "" {
		return "", fmt.Errorf("harvest job creation failed")
	}
	return accepted.ID, nil
}

// wait polls the job until it leaves the running state or ctx is done.
func (c *apiClient) wait(ctx context.Context, id string) (*jobStatus, error) {
	ticker := time.NewTicker(c.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			data, _, err := c.do(ctx, http.MethodGet, "/api/v1/harvest/"+url.PathEscape(id), nil)
			if err != nil {
				return nil, err
			}
			var st jobStatus
			if err := json.Unmarshal(data, &st); err != nil {
				return nil, fmt.Errorf("parse poll status: %w", err)
			}
			if st.Status != "running" {
				return &st, nil
			}
		}
	}
}

// export downloads the finished job's artifact as text.
func (c *apiClient) export(ctx context.Context, id, format string) (string, error) {
	path := "/api/v1/harvest/" + url.PathEscape(id) + "/export?format=" + url.QueryEscape(format)
	data, _, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
