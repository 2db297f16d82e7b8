package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Endpoint is the path the site serves the contact handler on.
const Endpoint = "/api/contact"

// Response is the JSON body of every answer from the contact endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RelayError is a non-success answer from the contact endpoint.
type RelayError struct {
	StatusCode int
	Message    string
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("contact endpoint answered %d: %s", e.StatusCode, e.Message)
}

// HTTPRelay posts submissions to the contact endpoint as JSON.
type HTTPRelay struct {
	URL    string
	Client *http.Client
}

func NewHTTPRelay(url string) *HTTPRelay {
	return &HTTPRelay{URL: url, Client: http.DefaultClient}
}

func (r *HTTPRelay) Send(ctx context.Context, fields Fields) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encoding submission: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("posting submission: %w", err)
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		out.Message = http.StatusText(resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !out.Success {
		return &RelayError{StatusCode: resp.StatusCode, Message: out.Message}
	}
	return nil
}
