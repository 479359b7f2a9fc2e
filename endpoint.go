// Package pathops provides POSIX path semantics over files reachable only
// through a narrow remote file protocol.
//
// A [RemotePath] pairs an absolute path with an [Endpoint]: a client that can
// push bytes, pull bytes, list directory entries and create directories.
// Pure path computation (joining, parents, suffixes, matching) happens in
// memory. Every operation that touches the remote side validates its
// preconditions, calls the endpoint, and translates the protocol's error
// vocabulary into the small set of OS-style errors defined in this package.
//
//	root, err := pathops.New(ep, "/etc")
//	if err != nil {
//	    return err
//	}
//	conf := root.Join("app", "config.yaml")
//	text, err := conf.ReadText(ctx)
//	if errors.Is(err, pathops.ErrNotFound) {
//	    // no config yet
//	}
//
// Nothing is cached: every query re-issues its protocol request.
package pathops

import (
	"context"
	"io"
	"io/fs"
	"time"
)

// Endpoint is the remote file protocol client a RemotePath delegates to.
//
// Implementations report failures with [*APIError] or [*PathError] so that
// they can be classified; other errors are passed through to callers as-is.
type Endpoint interface {
	// Name identifies the endpoint. It must be stable for the endpoint's
	// lifetime since it takes part in path equality.
	Name() string

	// Push writes everything read from source to path.
	Push(ctx context.Context, path string, source io.Reader, opts PushOptions) error

	// Pull opens path for reading. In text mode the content must be
	// UTF-8. The caller closes the returned stream.
	Pull(ctx context.Context, path string, text bool) (io.ReadCloser, error)

	// ListFiles lists the entries of the directory at path, or the path
	// itself when opts.Itself is set.
	ListFiles(ctx context.Context, path string, opts ListOptions) ([]*FileInfo, error)

	// MakeDir creates the directory at path.
	MakeDir(ctx context.Context, path string, opts MakeDirOptions) error
}

// PushOptions controls how an Endpoint creates a pushed file.
type PushOptions struct {
	MakeDirs    bool        // create missing parent directories
	Permissions fs.FileMode // permission bits of the new file
	User        string      // owner by name; "" leaves the endpoint default
	Group       string      // group by name; "" leaves the endpoint default
}

// ListOptions controls an Endpoint listing.
type ListOptions struct {
	Pattern string // glob filter on entry names; "" lists everything
	Itself  bool   // describe path itself instead of its entries
}

// MakeDirOptions controls how an Endpoint creates a directory.
type MakeDirOptions struct {
	MakeParents bool // create missing parents and accept an existing directory
	Permissions fs.FileMode
	User        string
	Group       string
}

// FileType is the kind of filesystem object a FileInfo describes.
type FileType string

const (
	TypeFile      FileType = "file"
	TypeDirectory FileType = "directory"
	TypeSymlink   FileType = "symlink"
	TypeSocket    FileType = "socket"
	TypeNamedPipe FileType = "named-pipe"
	TypeDevice    FileType = "device"
	TypeUnknown   FileType = "unrecognized"
)

// FileInfo is a metadata snapshot of one remote entry as reported by an
// Endpoint. UserID and GroupID are nil when the endpoint does not know them;
// User and Group are empty in that case.
type FileInfo struct {
	Path         string      `json:"path"`
	Name         string      `json:"name"`
	Type         FileType    `json:"type"`
	Size         int64       `json:"size"`
	Permissions  fs.FileMode `json:"permissions"`
	LastModified time.Time   `json:"last-modified"`
	UserID       *int        `json:"user-id,omitempty"`
	User         string      `json:"user,omitempty"`
	GroupID      *int        `json:"group-id,omitempty"`
	Group        string      `json:"group,omitempty"`
}
