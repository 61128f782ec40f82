package datasource

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bossy-radar/radar/internal/common/cleaner"
)

const (
	// GenericErrorMessage is shown when the backend gives no usable message
	GenericErrorMessage = "發生未知錯誤"
	validationPrefix    = "資料驗證錯誤"
)

// payloadCleaner strips markup from error bodies. Length is left to the
// notifier, which truncates what it shows.
var payloadCleaner = cleaner.NewCleaner().WithMaxRunes(0)

// NetworkError is a transport or HTTP failure talking to the backend
type NetworkError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationIssue is one entry of a backend validation error list
type ValidationIssue struct {
	Msg  string `json:"msg"`
	Loc  []any  `json:"loc"`
	Type string `json:"type,omitempty"`
}

// Path joins the location segments with dots, e.g. "query.size"
func (v ValidationIssue) Path() string {
	parts := make([]string, 0, len(v.Loc))
	for _, l := range v.Loc {
		switch n := l.(type) {
		case float64:
			parts = append(parts, fmt.Sprintf("%g", n))
		default:
			parts = append(parts, fmt.Sprint(n))
		}
	}
	return strings.Join(parts, ".")
}

// ValidationError is a backend-reported request validation failure
type ValidationError struct {
	Op     string
	Status int
	Issues []ValidationIssue
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message())
}

// Message formats the first issue the way it is shown to users
func (e *ValidationError) Message() string {
	if len(e.Issues) == 0 {
		return GenericErrorMessage
	}
	first := e.Issues[0]
	return fmt.Sprintf("%s: %s (%s)", validationPrefix, first.Msg, first.Path())
}

// responseError turns an error response body into the user-facing message and
// the error returned to the caller. The message comes from "detail", then
// "message". A list is treated as validation issues and only the first is shown.
func responseError(op string, status int, body []byte) (string, error) {
	body = cleanPayload(body)

	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message json.RawMessage `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	raw := payload.Detail
	if isEmpty(raw) {
		raw = payload.Message
	}

	var issues []ValidationIssue
	if err := json.Unmarshal(raw, &issues); err == nil && len(issues) > 0 {
		verr := &ValidationError{Op: op, Status: status, Issues: issues}
		return verr.Message(), verr
	}

	msg := GenericErrorMessage
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
		msg = s
	}
	return msg, &NetworkError{Op: op, Status: status, Message: msg}
}

func isEmpty(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null" || s == `""`
}

// cleanPayload strips markup from every string in a JSON object body. Bodies
// that are not JSON objects are returned unchanged.
func cleanPayload(body []byte) []byte {
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return body
	}
	cleaned, err := json.Marshal(payloadCleaner.Map(decoded))
	if err != nil {
		return body
	}
	return cleaned
}
