package endpoints

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brettbedarf/pathops"
	"github.com/brettbedarf/pathops/config"
	"github.com/brettbedarf/pathops/internal/util"
)

// HTTPClient is the subset of *http.Client used by the HTTP endpoint.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTP is a pathops.Endpoint speaking the files API over HTTP, either to a
// base URL or to a unix socket.
type HTTP struct {
	name    string
	baseURL string
	client  HTTPClient
}

// NewHTTP returns an endpoint for the files API served at baseURL. A nil
// client uses http.DefaultClient.
func NewHTTP(name, baseURL string, client HTTPClient) (*HTTP, error) {
	u, err := validateBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{name: name, baseURL: u, client: client}, nil
}

// NewHTTPSocket returns an endpoint for the files API served on the unix
// socket at socketPath. A zero timeout means no timeout.
func NewHTTPSocket(name, socketPath string, timeout time.Duration) *HTTP {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
	}
	return &HTTP{
		name:    name,
		baseURL: "http://localhost",
		client:  &http.Client{Transport: transport, Timeout: timeout},
	}
}

func newHTTPFromConfig(cfg config.EndpointConfig) (pathops.Endpoint, error) {
	if cfg.SocketPath != "" {
		return NewHTTPSocket(cfg.Name, cfg.SocketPath, cfg.TimeoutDuration()), nil
	}
	if cfg.BaseURL == "" {
		return nil, errors.New("http endpoint needs socket_path or base_url")
	}
	return NewHTTP(cfg.Name, cfg.BaseURL, &http.Client{Timeout: cfg.TimeoutDuration()})
}

// validateBaseURL checks that raw is an absolute http(s) URL without user
// info and returns it without a trailing slash.
func validateBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid base URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: missing host", raw)
	}
	if u.User != nil {
		return "", fmt.Errorf("invalid base URL %q: user info is not allowed", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

func (h *HTTP) Name() string { return h.name }

func (h *HTTP) Pull(ctx context.Context, path string, text bool) (io.ReadCloser, error) {
	q := url.Values{"path": {path}}
	if text {
		q.Set("text", "true")
	}
	resp, err := h.do(ctx, http.MethodGet, actionRead, q, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusOK && !isJSON(resp) {
		return resp.Body, nil
	}
	defer resp.Body.Close()
	return nil, decodeFailure(resp)
}

func (h *HTTP) Push(ctx context.Context, path string, source io.Reader, opts pathops.PushOptions) error {
	q := url.Values{
		"path":        {path},
		"make-dirs":   {strconv.FormatBool(opts.MakeDirs)},
		"permissions": {formatMode(opts.Permissions)},
	}
	setOwner(q, opts.User, opts.Group)
	return h.sync(ctx, http.MethodPost, actionWrite, q, source, nil)
}

func (h *HTTP) ListFiles(ctx context.Context, path string, opts pathops.ListOptions) ([]*pathops.FileInfo, error) {
	q := url.Values{"path": {path}}
	if opts.Pattern != "" {
		q.Set("pattern", opts.Pattern)
	}
	if opts.Itself {
		q.Set("itself", "true")
	}
	var infos []*pathops.FileInfo
	if err := h.sync(ctx, http.MethodGet, actionList, q, nil, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

func (h *HTTP) MakeDir(ctx context.Context, path string, opts pathops.MakeDirOptions) error {
	q := url.Values{
		"path":         {path},
		"make-parents": {strconv.FormatBool(opts.MakeParents)},
		"permissions":  {formatMode(opts.Permissions)},
	}
	setOwner(q, opts.User, opts.Group)
	return h.sync(ctx, http.MethodPost, actionMakeDirs, q, nil, nil)
}

// sync performs a request answered with a JSON envelope and decodes its
// result into out, if out is not nil.
func (h *HTTP) sync(ctx context.Context, method, action string, q url.Values, body io.Reader, out any) error {
	resp, err := h.do(ctx, method, action, q, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return decodeFailure(resp)
	}
	var env response
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding %s response: %w", action, err)
	}
	if env.Type == "error" {
		return env.decodeError()
	}
	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", action, err)
	}
	return nil
}

func (h *HTTP) do(ctx context.Context, method, action string, q url.Values, body io.Reader) (*http.Response, error) {
	q.Set("action", action)
	reqURL := h.baseURL + filesRoute + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeBinary)
	}

	logger := util.GetLogger("endpoint.http")
	logger.Debug().
		Str("endpoint", h.name).
		Str("request_id", requestID).
		Str("method", method).
		Str("action", action).
		Str("path", q.Get("path")).
		Msg("Request")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	logger.Trace().
		Str("endpoint", h.name).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Msg("Response")
	return resp, nil
}

// decodeFailure builds the protocol error for a failed response. Bodies that
// are not an envelope are reported verbatim.
func decodeFailure(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading error response: %w", err)
	}
	var env response
	if err := json.Unmarshal(data, &env); err == nil && env.Type == "error" {
		return env.decodeError()
	}
	return &pathops.APIError{
		Code:    resp.StatusCode,
		Status:  http.StatusText(resp.StatusCode),
		Message: strings.TrimSpace(string(data)),
	}
}

func isJSON(resp *http.Response) bool {
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return err == nil && mediaType == contentTypeJSON
}

func setOwner(q url.Values, user, group string) {
	if user != "" {
		q.Set("user", user)
	}
	if group != "" {
		q.Set("group", group)
	}
}

func formatMode(mode fs.FileMode) string {
	return strconv.FormatUint(uint64(mode.Perm()), 8)
}
