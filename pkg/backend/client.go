package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Outcome classifies a backend response. Exactly one of Payload and
// ClientError is set: 2xx bodies land in Payload, 4xx detail lands in
// ClientError. 5xx and transport failures never produce an Outcome.
type Outcome struct {
	StatusCode  int
	Payload     json.RawMessage
	ClientError *CallError
}

// CallError describes a backend rejection of an otherwise well-formed call.
// It is data, not a fault: the invoker reports it inside the tool result.
type CallError struct {
	Operation  string `json:"operation"`
	StatusCode int    `json:"statusCode"`
	Reason     string `json:"reason"`
	Details    string `json:"details,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// Client issues single-attempt HTTP calls against the commerce backend.
// Configuration is immutable after construction; the client is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// New creates a Client for the given base URL. A non-positive timeout falls
// back to 30 seconds.
func New(baseURL string, timeout time.Duration, version string) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "retailbridge/" + version,
	}
}

// Do sends one request to the backend and classifies the result. There are
// no retries. The operation name is carried into error detail only.
func (c *Client) Do(ctx context.Context, operation, method, path string, body any) (*Outcome, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request body: %w", operation, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("OData-Version", "4.0")
	req.Header.Set("OData-MaxVersion", "4.0")
	req.Header.Set("X-Commerce-Role", "anonymous")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: backend request: %w", operation, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read backend response: %w", operation, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return &Outcome{StatusCode: resp.StatusCode, Payload: data}, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &Outcome{
			StatusCode:  resp.StatusCode,
			ClientError: newCallError(operation, resp.StatusCode, data),
		}, nil
	default:
		return nil, fmt.Errorf("%s: backend returned %d: %s", operation, resp.StatusCode, truncate(data, 512))
	}
}

// newCallError extracts a human-readable message from a 4xx body. Backends
// commonly wrap it as {"error":{"message":…}} or {"message":…}; anything
// else is carried verbatim in the details field.
func newCallError(operation string, status int, body []byte) *CallError {
	details := truncate(body, 2048)

	var wrapped struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil {
		if wrapped.Error.Message != "" {
			details = wrapped.Error.Message
		} else if wrapped.Message != "" {
			details = wrapped.Message
		}
	}

	return &CallError{
		Operation:  operation,
		StatusCode: status,
		Reason:     http.StatusText(status),
		Details:    details,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

func truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
