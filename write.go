package pathops

import (
	"bytes"
	"context"
	"io/fs"
	"unicode/utf8"
)

// Default permission bits for new files and directories.
const (
	DefaultWriteMode fs.FileMode = 0o644
	DefaultMkdirMode fs.FileMode = 0o755
)

// WriteOptions controls file creation by WriteBytes and WriteText.
// A nil *WriteOptions uses the defaults.
type WriteOptions struct {
	Mode  fs.FileMode // permission bits; 0 means DefaultWriteMode, so mode 0 cannot be requested
	User  string      // owner by name; "" keeps the endpoint default
	Group string      // group by name; "" keeps the endpoint default
}

func (o *WriteOptions) pushOptions() PushOptions {
	opts := PushOptions{Permissions: DefaultWriteMode}
	if o == nil {
		return opts
	}
	if o.Mode != 0 {
		opts.Permissions = o.Mode
	}
	opts.User, opts.Group = o.User, o.Group
	return opts
}

// WriteBytes replaces the content of the file at p with data and returns the
// number of bytes written. The parent directory must already exist.
func (p RemotePath) WriteBytes(ctx context.Context, data []byte, opts *WriteOptions) (int, error) {
	push := opts.pushOptions()
	push.MakeDirs = false

	err := p.ep.Push(ctx, p.path.String(), bytes.NewReader(data), push)
	if err != nil {
		if isLookupFailure(err) {
			return 0, p.fail("write", ErrLookup, err)
		}
		return 0, p.translate("write", err, CategoryNotFound, CategoryPermissionDenied)
	}
	return len(data), nil
}

// WriteText writes text encoded as UTF-8. Text that is not valid UTF-8 fails
// with [ErrInvalidText] without contacting the endpoint.
func (p RemotePath) WriteText(ctx context.Context, text string, opts *WriteOptions) (int, error) {
	if !utf8.ValidString(text) {
		return 0, p.fail("write", ErrInvalidText, nil)
	}
	return p.WriteBytes(ctx, []byte(text), opts)
}
