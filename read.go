package pathops

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"
)

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// ReadBytes returns the content of the file at p.
func (p RemotePath) ReadBytes(ctx context.Context) ([]byte, error) {
	return p.pull(ctx, false)
}

// ReadText returns the content of the file at p as text, with "\r\n" and
// "\r" line endings converted to "\n".
func (p RemotePath) ReadText(ctx context.Context) (string, error) {
	text, err := p.ReadTextRaw(ctx)
	if err != nil {
		return "", err
	}
	return newlines.Replace(text), nil
}

// ReadTextRaw is like ReadText but leaves line endings untouched.
func (p RemotePath) ReadTextRaw(ctx context.Context) (string, error) {
	data, err := p.pull(ctx, true)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", p.fail("read", ErrInvalidText, nil)
	}
	return string(data), nil
}

func (p RemotePath) pull(ctx context.Context, text bool) ([]byte, error) {
	rc, err := p.ep.Pull(ctx, p.path.String(), text)
	if err != nil {
		return nil, p.translateRead(err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, p.translateRead(err)
	}
	return data, nil
}

func (p RemotePath) translateRead(err error) error {
	return p.translate("read", err,
		CategoryNotFound, CategoryIsADirectory, CategoryPermissionDenied)
}
