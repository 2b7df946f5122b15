package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrTransport wraps failures to reach the service at all.
var ErrTransport = errors.New("service unreachable")

// APIError is returned when the service answers with a non-success status.
type APIError struct {
	StatusCode int
	Status     string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("API error: %s", e.Status)
}

// NotFound reports whether the service no longer knows the resource,
// which for sessions means it expired server-side.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// newAPIError extracts the {detail} message from an error body. FastAPI
// validation errors carry a list of {msg} objects instead of a string.
func newAPIError(status int, statusText string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Status: statusText}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		apiErr.Detail = strings.TrimSpace(string(body))
		if len(apiErr.Detail) > 200 {
			apiErr.Detail = apiErr.Detail[:200]
		}
		return apiErr
	}

	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err == nil {
		apiErr.Detail = detail
		return apiErr
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		apiErr.Detail = strings.Join(msgs, "; ")
	}
	return apiErr
}
