package testdivisions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/clubhouse/internal/domain/types"
	"github.com/okian/clubhouse/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// postJSON posts body and decodes a response with the wanted status into out.
func (c *HTTPClient) postJSON(ctx context.Context, url string, body, out interface{}, want ...int) (int, error) {
	resp, err := c.Post(ctx, url, body)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode, decodeResponse(resp, out, want...)
}

// getJSON fetches url and decodes a response with the wanted status into out.
func (c *HTTPClient) getJSON(ctx context.Context, url string, out interface{}, want ...int) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out, want...)
}

// decodeResponse reads and closes the response body.
func decodeResponse(resp *http.Response, out interface{}, want ...int) error {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	for _, code := range want {
		if resp.StatusCode == code {
			if out == nil {
				return nil
			}
			return json.Unmarshal(body, out)
		}
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
}

// seedMembers registers the roster concurrently and returns the created ids.
func seedMembers(ctx context.Context, config *Config, roster []MemberRequest, stats *Stats) ([]string, error) {
	log.Printf("👥 Registering %d members with %d workers...", len(roster), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/members"

	ids := make([]string, len(roster))
	var created, failed int64

	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range indexChan {
				var m types.Member
				_, err := client.postJSON(ctx, url, roster[index], &m, http.StatusCreated)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Printf("⚠️  Failed to register %s: %v", roster[index].FullName, err)
					}
					continue
				}
				ids[index] = m.ID
				atomic.AddInt64(&created, 1)
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range roster {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	stats.MembersCreated = int(created)
	stats.MembersFailed = int(failed)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled during registration: %w", err)
	}

	out := make([]string, 0, created)
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	logger.Get().Info(ctx, "members registered",
		logger.Int("created", stats.MembersCreated),
		logger.Int("failed", stats.MembersFailed))
	return out, nil
}

// divide runs one division synchronously.
func divide(ctx context.Context, client *HTTPClient, baseURL string, req DivideRequest) (*types.Result, error) {
	var res types.Result
	if _, err := client.postJSON(ctx, baseURL+"/team-division/divide", req, &res, http.StatusOK); err != nil {
		return nil, err
	}
	return &res, nil
}

// divideAsync submits a division job and polls it until it settles.
func divideAsync(ctx context.Context, client *HTTPClient, baseURL string, req DivideRequest) (*types.Result, error) {
	var ack struct {
		JobID string `json:"jobId"`
	}
	if _, err := client.postJSON(ctx, baseURL+"/team-division/jobs", req, &ack, http.StatusAccepted, http.StatusOK); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, JobPollTimeout)
	defer cancel()
	ticker := time.NewTicker(JobPollInterval)
	defer ticker.Stop()

	for {
		var st types.JobStatus
		if err := client.getJSON(ctx, baseURL+"/team-division/jobs/"+ack.JobID, &st, http.StatusOK); err != nil {
			return nil, err
		}
		switch st.Status {
		case types.JobDone:
			return st.Result, nil
		case types.JobFailed:
			return nil, fmt.Errorf("job %s failed: %s", st.JobID, st.Error)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("job %s did not finish: %w", ack.JobID, ctx.Err())
		case <-ticker.C:
		}
	}
}
