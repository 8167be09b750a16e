package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("API %d: %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("API %d: %s", e.Status, e.Detail)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// parseError reads a FastAPI error body: {"detail": "..."} or a validation
// list {"detail": [{"msg": "..."}]}. Anything else is used verbatim.
func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}

	var wrapper struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &wrapper) == nil && len(wrapper.Detail) > 0 {
		var s string
		if json.Unmarshal(wrapper.Detail, &s) == nil {
			apiErr.Detail = s
			return apiErr
		}
		var list []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(wrapper.Detail, &list) == nil {
			msgs := make([]string, 0, len(list))
			for _, d := range list {
				msgs = append(msgs, d.Msg)
			}
			apiErr.Detail = strings.Join(msgs, "; ")
			return apiErr
		}
	}
	apiErr.Detail = strings.TrimSpace(string(body))
	return apiErr
}
