package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

var sharedTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// HTTPSearcher queries a knowledge-base search service over HTTP.
type HTTPSearcher struct {
	endpoint string
	client   *http.Client
}

func NewHTTPSearcher(endpoint string, timeout time.Duration) *HTTPSearcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSearcher{
		endpoint: endpoint,
		client: &http.Client{
			Timeout:   timeout,
			Transport: sharedTransport,
		},
	}
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Answers []Answer `json:"answers"`
}

func (s *HTTPSearcher) Search(ctx context.Context, query string) (Answer, bool, error) {
	payload, err := json.Marshal(searchRequest{Query: query})
	if err != nil {
		return Answer{}, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Answer{}, false, fmt.Errorf("answer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Answer{}, false, fmt.Errorf("answer: search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Answer{}, false, fmt.Errorf("answer: search HTTP %d: %s", resp.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return Answer{}, false, fmt.Errorf("answer: decode response: %w", err)
	}
	if len(sr.Answers) == 0 {
		return Answer{}, false, nil
	}

	best := sr.Answers[0]
	for _, a := range sr.Answers[1:] {
		if a.Confidence > best.Confidence {
			best = a
		}
	}
	return best, true, nil
}
