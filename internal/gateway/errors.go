package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kunal1274/fms-dev-sub000/internal/platform/httpx"
)

// FallbackMessage is shown when the backend rejects a request without explaining why.
const FallbackMessage = "Unable to save record, please try again"

// StatusError is a non-2xx response from the backend API.
type StatusError struct {
	Op      string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: backend returned status %d", e.Op, e.Status)
}

// Is lets callers match StatusError against the httpx sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case httpx.ErrNotFound:
		return e.Status == http.StatusNotFound
	case httpx.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case httpx.ErrForbidden:
		return e.Status == http.StatusForbidden
	case httpx.ErrDuplicate:
		return e.Status == http.StatusConflict
	case httpx.ErrValidation:
		return e.Status >= 400 && e.Status < 500 && e.Status != http.StatusNotFound &&
			e.Status != http.StatusUnauthorized && e.Status != http.StatusForbidden
	case httpx.ErrUpstream:
		return e.Status >= 500
	}
	return false
}

// UserMessage returns the text to show in a notification for err.
func UserMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" && se.Status < 500 {
		return se.Message
	}
	return FallbackMessage
}

func newStatusError(op string, status int, body []byte) *StatusError {
	return &StatusError{Op: op, Status: status, Message: serverMessage(body)}
}

// serverMessage extracts message, error or errors[0].message from an error body.
func serverMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"message", "error", "detail"} {
		if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	if list, ok := payload["errors"].([]any); ok && len(list) > 0 {
		switch first := list[0].(type) {
		case string:
			return first
		case map[string]any:
			if s, ok := first["message"].(string); ok {
				return s
			}
		}
	}
	return ""
}
