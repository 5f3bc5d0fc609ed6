package intent

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

// sharedTransport pools connections across all classifier clients; one
// client exists per locale and they usually talk to the same service.
var sharedTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// HTTPClassifier calls an external intent scoring service. The service
// owns retry and backoff; this client makes a single attempt per turn.
type HTTPClassifier struct {
	endpoint string
	client   *http.Client
}

func NewHTTPClassifier(endpoint string, timeout time.Duration) *HTTPClassifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClassifier{
		endpoint: endpoint,
		client: &http.Client{
			Timeout:   timeout,
			Transport: sharedTransport,
		},
	}
}

type classifyRequest struct {
	Text string `json:"text"`
}

func (c *HTTPClassifier) Recognize(ctx context.Context, text string) (Recognition, error) {
	payload, err := json.Marshal(classifyRequest{Text: text})
	if err != nil {
		return Recognition{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return Recognition{}, fmt.Errorf("intent: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Recognition{}, fmt.Errorf("intent: classify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Recognition{}, fmt.Errorf("intent: classifier HTTP %d: %s", resp.StatusCode, string(body))
	}

	var rec Recognition
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return Recognition{}, fmt.Errorf("intent: decode response: %w", err)
	}
	return rec, nil
}
