package pathops

import (
	"context"
	"io/fs"
)

// MkdirOptions controls directory creation. A nil *MkdirOptions creates a
// single directory with DefaultMkdirMode and fails if it already exists.
type MkdirOptions struct {
	Mode    fs.FileMode // permission bits; 0 means DefaultMkdirMode, so mode 0 cannot be requested
	Parents bool        // create missing ancestors
	ExistOK bool        // succeed if the directory already exists
	User    string
	Group   string
}

// Mkdir creates the directory p.
//
// Parents and ExistOK behave as in os.Mkdir and os.MkdirAll combined:
//
//	Parents  ExistOK  result if p exists  result if parent missing
//	false    false    ErrFileExists       ErrNotFound
//	true     false    ErrFileExists       parents created
//	false    true     no error            ErrNotFound naming the parent
//	true     true     no error            parents created
func (p RemotePath) Mkdir(ctx context.Context, opts *MkdirOptions) error {
	var o MkdirOptions
	if opts != nil {
		o = *opts
	}
	if o.Mode == 0 {
		o.Mode = DefaultMkdirMode
	}

	// The endpoint only distinguishes make-parents on or off, so the mixed
	// cases need a check of their own first.
	switch {
	case o.Parents && !o.ExistOK:
		exists, err := p.Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return p.fail("mkdir", ErrFileExists, nil)
		}
	case o.ExistOK && !o.Parents:
		parent := p.Parent()
		exists, err := parent.Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return parent.fail("mkdir", ErrNotFound, nil)
		}
	}

	err := p.ep.MakeDir(ctx, p.path.String(), MakeDirOptions{
		MakeParents: o.Parents || o.ExistOK,
		Permissions: o.Mode,
		User:        o.User,
		Group:       o.Group,
	})
	if err == nil {
		return nil
	}
	if isLookupFailure(err) {
		return p.fail("mkdir", ErrLookup, err)
	}
	if isNotADirectory(err) {
		// Either the parent is not a directory or p itself is a file.
		parent := p.Parent()
		isDir, derr := parent.IsDir(ctx)
		if derr != nil {
			return derr
		}
		if !isDir {
			return parent.fail("mkdir", ErrNotDir, err)
		}
		return p.fail("mkdir", ErrFileExists, err)
	}
	return p.translate("mkdir", err,
		CategoryFileExists, CategoryNotFound, CategoryPermissionDenied)
}
