package endpoints

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/brettbedarf/pathops"
	"github.com/brettbedarf/pathops/config"
	"github.com/brettbedarf/pathops/internal/util"
)

// maxSymlinkHops bounds symlink resolution, as Linux does.
const maxSymlinkHops = 40

// Call is one protocol request received by a Memory endpoint.
type Call struct {
	Op   string // "push", "pull", "list" or "make-dir"
	Path string
}

// memEntry is an immutable snapshot of one node; updates replace it.
type memEntry struct {
	typ     pathops.FileType
	data    []byte
	mode    fs.FileMode
	user    string
	group   string
	target  string // symlink target
	modTime time.Time
}

func (e *memEntry) clone() *memEntry {
	c := *e
	return &c
}

// Memory is an in-memory pathops.Endpoint. It reports failures with the same
// protocol vocabulary as a real files API, which makes it suitable for tests
// and for serving through [Handler].
//
// Lookups are lock-free; mutations are serialized.
type Memory struct {
	name    string
	entries *xsync.Map[string, *memEntry] // keyed by clean absolute path
	users   *xsync.Map[string, int]
	groups  *xsync.Map[string, int]
	now     func() time.Time

	mu sync.Mutex // serializes mutations of entries

	callsMu sync.Mutex
	calls   []Call
}

// NewMemory returns an empty Memory endpoint holding only the root directory.
// The "root" user and group are known; an empty name is replaced with a
// generated one.
func NewMemory(name string) *Memory {
	if name == "" {
		name = MemoryEndpointType + "-" + uuid.NewString()
	}
	m := &Memory{
		name:    name,
		entries: xsync.NewMap[string, *memEntry](),
		users:   xsync.NewMap[string, int](),
		groups:  xsync.NewMap[string, int](),
		now:     time.Now,
	}
	m.users.Store("root", 0)
	m.groups.Store("root", 0)
	m.entries.Store("/", &memEntry{
		typ:     pathops.TypeDirectory,
		mode:    0o755,
		user:    "root",
		group:   "root",
		modTime: m.now(),
	})
	return m
}

func newMemoryFromConfig(cfg config.EndpointConfig) (pathops.Endpoint, error) {
	return NewMemory(cfg.Name), nil
}

func (m *Memory) Name() string { return m.name }

// Calls returns the requests received so far, oldest first.
func (m *Memory) Calls() []Call {
	m.callsMu.Lock()
	defer m.callsMu.Unlock()
	return slices.Clone(m.calls)
}

// ResetCalls forgets the recorded requests.
func (m *Memory) ResetCalls() {
	m.callsMu.Lock()
	m.calls = nil
	m.callsMu.Unlock()
}

func (m *Memory) record(op, p string) {
	m.callsMu.Lock()
	m.calls = append(m.calls, Call{Op: op, Path: p})
	m.callsMu.Unlock()

	logger := util.GetLogger("endpoint.memory")
	logger.Trace().Str("endpoint", m.name).Str("op", op).Str("path", p).Msg("Request")
}

// AddUser makes a user name known to the endpoint.
func (m *Memory) AddUser(name string, uid int) { m.users.Store(name, uid) }

// AddGroup makes a group name known to the endpoint.
func (m *Memory) AddGroup(name string, gid int) { m.groups.Store(name, gid) }

// AddFile creates or replaces a regular file, creating missing parents.
func (m *Memory) AddFile(p string, data []byte, mode fs.FileMode) error {
	return m.add(p, &memEntry{typ: pathops.TypeFile, data: slices.Clone(data), mode: mode})
}

// AddDir creates a directory and any missing parents.
func (m *Memory) AddDir(p string, mode fs.FileMode) error {
	return m.add(p, &memEntry{typ: pathops.TypeDirectory, mode: mode})
}

// AddSymlink creates a symbolic link at p pointing to target. The target need
// not exist.
func (m *Memory) AddSymlink(p, target string) error {
	return m.add(p, &memEntry{typ: pathops.TypeSymlink, target: target, mode: 0o777})
}

// AddFifo creates a named pipe at p.
func (m *Memory) AddFifo(p string) error {
	return m.add(p, &memEntry{typ: pathops.TypeNamedPipe, mode: 0o644})
}

// AddSocket creates a unix socket at p.
func (m *Memory) AddSocket(p string) error {
	return m.add(p, &memEntry{typ: pathops.TypeSocket, mode: 0o755})
}

// Chmod replaces the permission bits of the entry at p.
func (m *Memory) Chmod(p string, mode fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	resolved, entry, err := m.resolve("chmod", p, true)
	if err != nil {
		return err
	}
	updated := entry.clone()
	updated.mode = mode.Perm()
	m.entries.Store(resolved, updated)
	return nil
}

// SetReadOnly clears the write bits of the entry at p. Writes to a read-only
// file and creation inside a read-only directory are denied.
func (m *Memory) SetReadOnly(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	resolved, entry, err := m.resolve("chmod", p, true)
	if err != nil {
		return err
	}
	updated := entry.clone()
	updated.mode &^= 0o222
	m.entries.Store(resolved, updated)
	return nil
}

func (m *Memory) add(p string, entry *memEntry) error {
	if !path.IsAbs(p) {
		return fmt.Errorf("memory endpoint: path %q is not absolute", p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	p = path.Clean(p)
	if err := m.mkdirAll("add", path.Dir(p), 0o755, "root", "root"); err != nil {
		return err
	}
	entry.user, entry.group = "root", "root"
	entry.modTime = m.now()
	m.entries.Store(p, entry)
	return nil
}

func (m *Memory) Pull(ctx context.Context, p string, text bool) (io.ReadCloser, error) {
	m.record("pull", p)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, entry, err := m.resolve("open", p, true)
	if err != nil {
		return nil, err
	}
	if entry.typ != pathops.TypeFile {
		return nil, genericError(fmt.Sprintf("can only read a regular file: %q", p))
	}
	if entry.mode&0o400 == 0 {
		return nil, permissionDenied("open", p)
	}
	return io.NopCloser(strings.NewReader(string(entry.data))), nil
}

func (m *Memory) Push(ctx context.Context, p string, source io.Reader, opts pathops.PushOptions) error {
	m.record("push", p)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.lookupOwner(opts.User, opts.Group); err != nil {
		return err
	}
	data, err := io.ReadAll(source)
	if err != nil {
		return fmt.Errorf("memory endpoint: reading source: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p = path.Clean(p)
	dir := path.Dir(p)
	if opts.MakeDirs {
		if err := m.mkdirAll("mkdir", dir, 0o755, orDefault(opts.User), orDefault(opts.Group)); err != nil {
			return err
		}
	}
	dirPath, dirEntry, err := m.resolve("open", dir, true)
	if err != nil {
		return err
	}
	if dirEntry.typ != pathops.TypeDirectory {
		return notADirectory("open", p)
	}

	target := path.Join(dirPath, path.Base(p))
	existing, ok := m.entries.Load(target)
	if ok && existing.typ == pathops.TypeSymlink {
		target, existing, err = m.resolve("open", target, true)
		if err != nil {
			return err
		}
	}
	switch {
	case ok && existing.typ == pathops.TypeDirectory:
		return genericError(fmt.Sprintf("open %s: is a directory", p))
	case ok && existing.mode&0o200 == 0:
		return permissionDenied("open", p)
	case !ok && dirEntry.mode&0o200 == 0:
		return permissionDenied("open", p)
	}

	mode := opts.Permissions.Perm()
	if mode == 0 {
		mode = pathops.DefaultWriteMode
	}
	m.entries.Store(target, &memEntry{
		typ:     pathops.TypeFile,
		data:    data,
		mode:    mode,
		user:    orDefault(opts.User),
		group:   orDefault(opts.Group),
		modTime: m.now(),
	})
	return nil
}

func (m *Memory) ListFiles(ctx context.Context, p string, opts pathops.ListOptions) ([]*pathops.FileInfo, error) {
	m.record("list", p)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Pattern != "" {
		if _, err := path.Match(opts.Pattern, ""); err != nil {
			return nil, &pathops.APIError{Code: 400, Status: "Bad Request", Message: "syntax error in pattern"}
		}
	}

	resolved, entry, err := m.resolve("stat", p, true)
	if err != nil {
		return nil, err
	}
	p = path.Clean(p)
	if opts.Itself || entry.typ != pathops.TypeDirectory {
		if !opts.Itself && opts.Pattern != "" {
			if ok, _ := path.Match(opts.Pattern, path.Base(p)); !ok {
				return nil, nil
			}
		}
		return []*pathops.FileInfo{m.fileInfo(p, entry)}, nil
	}
	if entry.mode&0o400 == 0 {
		return nil, permissionDenied("open", p)
	}

	var infos []*pathops.FileInfo
	m.entries.Range(func(key string, child *memEntry) bool {
		if key == "/" || path.Dir(key) != resolved {
			return true
		}
		name := path.Base(key)
		if opts.Pattern != "" {
			if ok, _ := path.Match(opts.Pattern, name); !ok {
				return true
			}
		}
		infos = append(infos, m.fileInfo(path.Join(p, name), child))
		return true
	})
	slices.SortFunc(infos, func(a, b *pathops.FileInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return infos, nil
}

func (m *Memory) MakeDir(ctx context.Context, p string, opts pathops.MakeDirOptions) error {
	m.record("make-dir", p)
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.lookupOwner(opts.User, opts.Group); err != nil {
		return err
	}

	mode := opts.Permissions.Perm()
	if mode == 0 {
		mode = pathops.DefaultMkdirMode
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p = path.Clean(p)
	if opts.MakeParents {
		return m.mkdirAll("mkdir", p, mode, orDefault(opts.User), orDefault(opts.Group))
	}

	dirPath, dirEntry, err := m.resolve("mkdir", path.Dir(p), true)
	if err != nil {
		return err
	}
	if dirEntry.typ != pathops.TypeDirectory {
		return notADirectory("mkdir", p)
	}
	target := path.Join(dirPath, path.Base(p))
	if _, ok := m.entries.Load(target); ok {
		return genericError(fmt.Sprintf("mkdir %s: file exists", p))
	}
	if dirEntry.mode&0o200 == 0 {
		return permissionDenied("mkdir", p)
	}
	m.entries.Store(target, &memEntry{
		typ:     pathops.TypeDirectory,
		mode:    mode,
		user:    orDefault(opts.User),
		group:   orDefault(opts.Group),
		modTime: m.now(),
	})
	return nil
}

// mkdirAll creates p and its missing parents. An existing directory is not
// an error; any other existing entry along the way is. Callers hold m.mu.
func (m *Memory) mkdirAll(op, p string, mode fs.FileMode, user, group string) error {
	cur := "/"
	for _, name := range components(p) {
		next := path.Join(cur, name)
		entry, ok := m.entries.Load(next)
		if ok && entry.typ == pathops.TypeSymlink {
			resolved, target, err := m.resolve(op, next, true)
			if err != nil {
				return err
			}
			next, entry = resolved, target
		}
		switch {
		case !ok:
			parent, _ := m.entries.Load(cur)
			if parent.mode&0o200 == 0 {
				return permissionDenied(op, p)
			}
			entry = &memEntry{
				typ:     pathops.TypeDirectory,
				mode:    mode,
				user:    user,
				group:   group,
				modTime: m.now(),
			}
			m.entries.Store(next, entry)
		case entry.typ != pathops.TypeDirectory:
			return notADirectory(op, p)
		}
		cur = next
	}
	return nil
}

// resolve walks p from the root, following symlinks in intermediate
// components and, with follow, in the final one. It returns the resolved
// path and its entry.
func (m *Memory) resolve(op, p string, follow bool) (string, *memEntry, error) {
	if !path.IsAbs(p) {
		return "", nil, genericError(fmt.Sprintf("%s %s: path must be absolute", op, p))
	}
	root, _ := m.entries.Load("/")
	cur, entry := "/", root
	pending := components(p)
	hops := 0
	for len(pending) > 0 {
		name := pending[0]
		pending = pending[1:]

		if name == ".." {
			cur = path.Dir(cur)
			entry, _ = m.entries.Load(cur)
			continue
		}
		if entry.typ != pathops.TypeDirectory {
			return "", nil, notADirectory(op, p)
		}
		next := path.Join(cur, name)
		child, ok := m.entries.Load(next)
		if !ok {
			return "", nil, notFound(op, p)
		}
		if child.typ == pathops.TypeSymlink && (len(pending) > 0 || follow) {
			hops++
			if hops > maxSymlinkHops {
				return "", nil, genericError(fmt.Sprintf("%s %s: too many levels of symbolic links", op, p))
			}
			if path.IsAbs(child.target) {
				cur, entry = "/", root
			}
			pending = append(components(child.target), pending...)
			continue
		}
		cur, entry = next, child
	}
	return cur, entry, nil
}

func (m *Memory) lookupOwner(user, group string) error {
	if user != "" {
		if _, ok := m.users.Load(user); !ok {
			return genericError(fmt.Sprintf("cannot look up user and group: user: unknown user %s", user))
		}
	}
	if group != "" {
		if _, ok := m.groups.Load(group); !ok {
			return genericError(fmt.Sprintf("cannot look up user and group: group: unknown group %s", group))
		}
	}
	return nil
}

func (m *Memory) fileInfo(p string, e *memEntry) *pathops.FileInfo {
	info := &pathops.FileInfo{
		Path:         p,
		Name:         path.Base(p),
		Type:         e.typ,
		Size:         int64(len(e.data)),
		Permissions:  e.mode,
		LastModified: e.modTime,
		User:         e.user,
		Group:        e.group,
	}
	if uid, ok := m.users.Load(e.user); ok {
		info.UserID = util.Pointer(uid)
	}
	if gid, ok := m.groups.Load(e.group); ok {
		info.GroupID = util.Pointer(gid)
	}
	return info
}

// components splits an absolute path into its names, dropping empty and "."
// components but keeping "..".
func components(p string) []string {
	var names []string
	for name := range strings.SplitSeq(p, "/") {
		if name != "" && name != "." {
			names = append(names, name)
		}
	}
	return names
}

func orDefault(owner string) string {
	if owner == "" {
		return "root"
	}
	return owner
}

func genericError(msg string) error {
	return &pathops.PathError{Kind: pathops.PathKindGenericFileError, Message: msg}
}

func notFound(op, p string) error {
	return &pathops.PathError{
		Kind:    pathops.PathKindNotFound,
		Message: fmt.Sprintf("%s %s: no such file or directory", op, p),
	}
}

func notADirectory(op, p string) error {
	return genericError(fmt.Sprintf("%s %s: not a directory", op, p))
}

func permissionDenied(op, p string) error {
	return &pathops.PathError{
		Kind:    pathops.PathKindPermissionDenied,
		Message: fmt.Sprintf("%s %s: permission denied", op, p),
	}
}

