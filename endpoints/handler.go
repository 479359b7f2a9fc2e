package endpoints

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/brettbedarf/pathops"
	"github.com/brettbedarf/pathops/internal/util"
)

// Handler serves the files API on top of ep, so that an [HTTP] endpoint can
// reach any other Endpoint over the network.
func Handler(ep pathops.Endpoint) http.Handler {
	s := &server{ep: ep}
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+filesRoute, s.handleGet)
	mux.HandleFunc("POST "+filesRoute, s.handlePost)
	return mux
}

// NewServer returns an http.Server serving Handler(ep) on addr, with its
// internal errors routed to the logger.
func NewServer(ep pathops.Endpoint, addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           Handler(ep),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          util.NewLogLogger("endpoint.server", util.WarnLevel),
	}
}

type server struct {
	ep pathops.Endpoint
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	switch action := r.URL.Query().Get("action"); action {
	case actionRead:
		s.read(w, r)
	case actionList:
		s.list(w, r)
	default:
		s.badRequest(w, r, fmt.Sprintf("invalid action %q", action))
	}
}

func (s *server) handlePost(w http.ResponseWriter, r *http.Request) {
	switch action := r.URL.Query().Get("action"); action {
	case actionWrite:
		s.write(w, r)
	case actionMakeDirs:
		s.makeDirs(w, r)
	default:
		s.badRequest(w, r, fmt.Sprintf("invalid action %q", action))
	}
}

func (s *server) read(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text, err := parseBool(q.Get("text"))
	if err != nil {
		s.badRequest(w, r, "invalid text parameter")
		return
	}
	rc, err := s.ep.Pull(r.Context(), q.Get("path"), text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentTypeBinary)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logger := util.GetLogger("endpoint.server")
		logger.Warn().Err(err).Str("path", q.Get("path")).Msg("Failed to stream file")
	}
}

func (s *server) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	itself, err := parseBool(q.Get("itself"))
	if err != nil {
		s.badRequest(w, r, "invalid itself parameter")
		return
	}
	infos, err := s.ep.ListFiles(r.Context(), q.Get("path"), pathops.ListOptions{
		Pattern: q.Get("pattern"),
		Itself:  itself,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if infos == nil {
		infos = []*pathops.FileInfo{}
	}
	s.ok(w, r, infos)
}

func (s *server) write(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	makeDirs, err := parseBool(q.Get("make-dirs"))
	if err != nil {
		s.badRequest(w, r, "invalid make-dirs parameter")
		return
	}
	perm, err := parseMode(q.Get("permissions"))
	if err != nil {
		s.badRequest(w, r, "invalid permissions parameter")
		return
	}
	err = s.ep.Push(r.Context(), q.Get("path"), r.Body, pathops.PushOptions{
		MakeDirs:    makeDirs,
		Permissions: perm,
		User:        q.Get("user"),
		Group:       q.Get("group"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, r, nil)
}

func (s *server) makeDirs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	makeParents, err := parseBool(q.Get("make-parents"))
	if err != nil {
		s.badRequest(w, r, "invalid make-parents parameter")
		return
	}
	perm, err := parseMode(q.Get("permissions"))
	if err != nil {
		s.badRequest(w, r, "invalid permissions parameter")
		return
	}
	err = s.ep.MakeDir(r.Context(), q.Get("path"), pathops.MakeDirOptions{
		MakeParents: makeParents,
		Permissions: perm,
		User:        q.Get("user"),
		Group:       q.Get("group"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, r, nil)
}

func (s *server) ok(w http.ResponseWriter, r *http.Request, result any) {
	env := &response{Type: "sync", StatusCode: http.StatusOK, Status: http.StatusText(http.StatusOK)}
	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		env.Result = raw
	}
	s.send(w, r, http.StatusOK, env)
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code, env := errorResponse(err)
	logger := util.GetLogger("endpoint.server")
	logger.Debug().
		Err(err).
		Str("request_id", r.Header.Get(requestIDHeader)).
		Int("status", code).
		Msg("Request failed")
	s.send(w, r, code, env)
}

func (s *server) badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	s.fail(w, r, &pathops.APIError{
		Code:    http.StatusBadRequest,
		Status:  http.StatusText(http.StatusBadRequest),
		Message: msg,
	})
}

func (s *server) send(w http.ResponseWriter, r *http.Request, code int, env *response) {
	w.Header().Set("Content-Type", contentTypeJSON)
	if id := r.Header.Get(requestIDHeader); id != "" {
		w.Header().Set(requestIDHeader, id)
	}
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger := util.GetLogger("endpoint.server")
		logger.Warn().Err(err).Msg("Failed to write response")
	}
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func parseMode(s string) (fs.FileMode, error) {
	if s == "" {
		return 0, nil
	}
	mode, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, err
	}
	return fs.FileMode(mode).Perm(), nil
}
