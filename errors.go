package pathops

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Errors returned by RemotePath operations, matched with [errors.Is].
// Where io/fs defines an equivalent, the io/fs error is used.
var (
	ErrInvalidPath    = errors.New("path is not absolute")
	ErrNotFound       = fs.ErrNotExist
	ErrFileExists     = fs.ErrExist
	ErrPermission     = fs.ErrPermission
	ErrIsDir          = errors.New("is a directory")
	ErrNotDir         = errors.New("not a directory")
	ErrDirNotEmpty    = errors.New("directory not empty")
	ErrLookup         = errors.New("unknown user or group")
	ErrInvalidPattern = errors.New("invalid glob pattern")
	ErrUnsupported    = errors.ErrUnsupported
	ErrIncomparable   = errors.New("paths belong to different endpoints")
	ErrInvalidText    = errors.New("invalid UTF-8 text")
)

// Category is the OS-style class a protocol error translates to.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryNotFound
	CategoryFileExists
	CategoryIsADirectory
	CategoryPermissionDenied
	CategoryDirectoryNotEmpty
)

func (c Category) String() string {
	switch c {
	case CategoryNotFound:
		return "not found"
	case CategoryFileExists:
		return "file exists"
	case CategoryIsADirectory:
		return "is a directory"
	case CategoryPermissionDenied:
		return "permission denied"
	case CategoryDirectoryNotEmpty:
		return "directory not empty"
	default:
		return "unknown"
	}
}

// Err returns the sentinel error for c, or nil for CategoryUnknown.
func (c Category) Err() error {
	switch c {
	case CategoryNotFound:
		return ErrNotFound
	case CategoryFileExists:
		return ErrFileExists
	case CategoryIsADirectory:
		return ErrIsDir
	case CategoryPermissionDenied:
		return ErrPermission
	case CategoryDirectoryNotEmpty:
		return ErrDirNotEmpty
	default:
		return nil
	}
}

// classification rules, evaluated in order; the first match wins.
var rules = []struct {
	category Category
	matches  func(err error) bool
}{
	{CategoryNotFound, matchesNotFound},
	{CategoryFileExists, func(err error) bool {
		return matchesFileError(err, "file exists")
	}},
	{CategoryIsADirectory, func(err error) bool {
		return matchesFileError(err, "can only read a regular file")
	}},
	{CategoryPermissionDenied, func(err error) bool {
		var pe *PathError
		return errors.As(err, &pe) && pe.Kind == PathKindPermissionDenied
	}},
	// The protocol has no distinct signal for a non-empty directory yet.
	{CategoryDirectoryNotEmpty, func(error) bool { return false }},
}

// Classify maps a protocol error to its Category. Errors that match no rule,
// including errors that are not protocol errors at all, are CategoryUnknown.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	for _, r := range rules {
		if r.matches(err) {
			return r.category
		}
	}
	return CategoryUnknown
}

func matchesNotFound(err error) bool {
	var ae *APIError
	if errors.As(err, &ae) && ae.Code == 404 {
		return true
	}
	var pe *PathError
	return errors.As(err, &pe) && pe.Kind == PathKindNotFound
}

func matchesFileError(err error, fragment string) bool {
	var pe *PathError
	return errors.As(err, &pe) &&
		pe.Kind == PathKindGenericFileError &&
		strings.Contains(pe.Message, fragment)
}

// The predicates below are not part of the generic table. Only the call
// sites that can disambiguate them consult these.

// isLookupFailure reports an unresolvable owner user or group.
func isLookupFailure(err error) bool {
	for _, fragment := range []string{
		"look up user", "look up group", "unknown user", "unknown group",
	} {
		if matchesFileError(err, fragment) {
			return true
		}
	}
	return false
}

// isNotADirectory reports a failure the endpoint attributes to a
// non-directory somewhere along the path.
func isNotADirectory(err error) bool {
	return matchesFileError(err, "not a directory")
}

// isSymlinkLoop reports a metadata lookup that failed on a symlink cycle.
func isSymlinkLoop(err error) bool {
	return matchesFileError(err, "too many levels of symbolic links")
}

// Error records a classified failure of a RemotePath operation.
type Error struct {
	Op       string // operation that failed, e.g. "read" or "mkdir"
	Path     string
	Endpoint string
	Err      error // one of the package's sentinel errors
	Cause    error // protocol error that triggered Err, if any
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, describe(e.Path, e.Endpoint), e.Err)
	if e.Cause != nil {
		msg += " (" + e.Cause.Error() + ")"
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// describe names a path and the endpoint it lives on.
func describe(path, endpoint string) string {
	if endpoint == "" {
		return fmt.Sprintf("'%s' with no endpoint", path)
	}
	return fmt.Sprintf("'%s' in endpoint %q", path, endpoint)
}
