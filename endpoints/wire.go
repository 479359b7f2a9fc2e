package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brettbedarf/pathops"
)

// Files API routes and actions.
const (
	filesRoute = "/v1/files"

	actionRead     = "read"
	actionWrite    = "write"
	actionList     = "list"
	actionMakeDirs = "make-dirs"

	contentTypeJSON   = "application/json"
	contentTypeBinary = "application/octet-stream"

	requestIDHeader = "X-Request-Id"
)

// response is the JSON envelope of every files API reply except a
// successful read, which streams the raw content.
type response struct {
	Type       string          `json:"type"` // "sync" or "error"
	StatusCode int             `json:"status-code"`
	Status     string          `json:"status"`
	Result     json.RawMessage `json:"result,omitempty"`
}

// errorResult is the result of an "error" envelope. Kind is set only for
// failures scoped to the requested path.
type errorResult struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// statusForKind maps a path error kind to the HTTP status reporting it.
func statusForKind(kind string) int {
	switch kind {
	case pathops.PathKindNotFound:
		return http.StatusNotFound
	case pathops.PathKindPermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// errorResponse encodes err the way the client decodes it back: path errors
// keep their kind, API errors their code, anything else becomes a 500. The
// returned HTTP status is always valid; an API error code outside 100-999
// travels in the envelope only.
func errorResponse(err error) (int, *response) {
	res := errorResult{Message: err.Error()}
	code := http.StatusInternalServerError
	status := ""

	var pe *pathops.PathError
	var ae *pathops.APIError
	switch {
	case errors.As(err, &pe):
		res = errorResult{Kind: pe.Kind, Message: pe.Message}
		code = statusForKind(pe.Kind)
	case errors.As(err, &ae):
		res.Message = ae.Message
		code, status = ae.Code, ae.Status
	}
	if status == "" {
		status = http.StatusText(code)
	}

	httpCode := code
	if httpCode < 100 || httpCode > 999 {
		httpCode = http.StatusInternalServerError
	}

	raw, _ := json.Marshal(res)
	return httpCode, &response{
		Type:       "error",
		StatusCode: code,
		Status:     status,
		Result:     raw,
	}
}

// decodeError turns an "error" envelope back into a protocol error.
func (r *response) decodeError() error {
	var res errorResult
	if err := json.Unmarshal(r.Result, &res); err != nil {
		return &pathops.APIError{Code: r.StatusCode, Status: r.Status, Message: string(r.Result)}
	}
	if res.Kind != "" {
		return &pathops.PathError{Kind: res.Kind, Message: res.Message}
	}
	return &pathops.APIError{Code: r.StatusCode, Status: r.Status, Message: res.Message}
}
