package pathops

import (
	"context"
	"errors"
)

// info looks up the metadata of p itself.
func (p RemotePath) info(ctx context.Context) (*FileInfo, error) {
	infos, err := p.ep.ListFiles(ctx, p.path.String(), ListOptions{Itself: true})
	if err != nil {
		return nil, p.translate("stat", err, CategoryNotFound, CategoryPermissionDenied)
	}
	if len(infos) == 0 {
		return nil, p.fail("stat", ErrNotFound, nil)
	}
	return infos[0], nil
}

// Stat returns the metadata the endpoint reports for p.
func (p RemotePath) Stat(ctx context.Context) (*FileInfo, error) {
	return p.info(ctx)
}

// Owner returns the name of the user owning p, or "" if the endpoint does
// not report one.
func (p RemotePath) Owner(ctx context.Context) (string, error) {
	info, err := p.info(ctx)
	if err != nil {
		return "", err
	}
	return info.User, nil
}

// Group returns the name of the group owning p, or "" if the endpoint does
// not report one.
func (p RemotePath) Group(ctx context.Context) (string, error) {
	info, err := p.info(ctx)
	if err != nil {
		return "", err
	}
	return info.Group, nil
}

func (p RemotePath) Exists(ctx context.Context) (bool, error) {
	return p.existsAs(ctx, "")
}

func (p RemotePath) IsDir(ctx context.Context) (bool, error) {
	return p.existsAs(ctx, TypeDirectory)
}

func (p RemotePath) IsFile(ctx context.Context) (bool, error) {
	return p.existsAs(ctx, TypeFile)
}

func (p RemotePath) IsFifo(ctx context.Context) (bool, error) {
	return p.existsAs(ctx, TypeNamedPipe)
}

func (p RemotePath) IsSocket(ctx context.Context) (bool, error) {
	return p.existsAs(ctx, TypeSocket)
}

// existsAs reports whether p exists and, unless want is empty, has type want.
// A missing path, a lookup through a non-directory or a symlink loop is
// reported as false rather than an error.
func (p RemotePath) existsAs(ctx context.Context, want FileType) (bool, error) {
	info, err := p.info(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound), isNotADirectory(err), isSymlinkLoop(err):
		return false, nil
	default:
		return false, err
	}
	if want == "" {
		return true, nil
	}
	return info.Type == want, nil
}
