package pathops

import (
	"context"
	"iter"
	"path"
	"strings"
)

// ListEntries returns the entries of the directory p.
//
// p must exist and be a directory; both are checked before ListEntries
// returns. The listing itself is fetched each time the sequence is ranged
// over, and a listing failure is yielded as the sequence's only error.
func (p RemotePath) ListEntries(ctx context.Context) (iter.Seq2[RemotePath, error], error) {
	info, err := p.info(ctx)
	if err != nil {
		return nil, err
	}
	if info.Type != TypeDirectory {
		return nil, p.fail("list", ErrNotDir, nil)
	}
	return p.entries(ctx, ""), nil
}

// entries lists the children of p whose names match pattern, or all children
// if pattern is empty.
func (p RemotePath) entries(ctx context.Context, pattern string) iter.Seq2[RemotePath, error] {
	return func(yield func(RemotePath, error) bool) {
		infos, err := p.ep.ListFiles(ctx, p.path.String(), ListOptions{Pattern: pattern})
		if err != nil {
			yield(RemotePath{}, p.translate("list", err,
				CategoryNotFound, CategoryPermissionDenied))
			return
		}
		for _, info := range infos {
			if !yield(p.with(p.path.Join(info.Path)), nil) {
				return
			}
		}
	}
}

// Glob returns the paths below p matching pattern.
//
// Every component of pattern but the last must be either "*" or a literal
// name. Recursive "**" components are not supported and fail with
// [ErrUnsupported]; "**" inside a component fails with [ErrInvalidPattern].
// The pattern is validated before Glob returns. Each range over the result
// walks the endpoint again, stopping at the first error.
func (p RemotePath) Glob(ctx context.Context, pattern string) (iter.Seq2[RemotePath, error], error) {
	leading, final, err := splitGlob(pattern)
	if err != nil {
		return nil, p.fail("glob", err, nil)
	}
	return func(yield func(RemotePath, error) bool) {
		p.glob(ctx, leading, final, yield)
	}, nil
}

// splitGlob splits pattern into its leading components and its final
// component, rejecting patterns the glob walk cannot serve.
func splitGlob(pattern string) (leading []string, final string, err error) {
	if pattern == "" {
		return nil, "", ErrInvalidPattern
	}
	if strings.HasPrefix(pattern, "/") {
		return nil, "", ErrUnsupported
	}
	var parts []string
	for part := range strings.SplitSeq(pattern, "/") {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return nil, "", ErrInvalidPattern
	}
	leading, final = parts[:len(parts)-1], parts[len(parts)-1]

	for _, part := range leading {
		if part == "**" {
			return nil, "", ErrUnsupported
		}
	}
	if strings.Contains(pattern, "**") {
		return nil, "", ErrInvalidPattern
	}
	for _, part := range leading {
		if part != "*" && strings.ContainsAny(part, "*?[") {
			return nil, "", ErrUnsupported
		}
	}
	for _, part := range parts {
		if _, err := path.Match(part, ""); err != nil {
			return nil, "", ErrInvalidPattern
		}
	}
	return leading, final, nil
}

// glob yields the matches of leading/final below p and reports whether the
// caller should keep going.
func (p RemotePath) glob(ctx context.Context, leading []string, final string,
	yield func(RemotePath, error) bool,
) bool {
	if len(leading) == 0 {
		for q, err := range p.entries(ctx, final) {
			if !yield(q, err) || err != nil {
				return false
			}
		}
		return true
	}

	first, rest := leading[0], leading[1:]
	if first != "*" {
		return p.Join(first).glob(ctx, rest, final, yield)
	}

	children, err := p.ListEntries(ctx)
	if err != nil {
		yield(RemotePath{}, err)
		return false
	}
	for child, err := range children {
		if err != nil {
			yield(RemotePath{}, err)
			return false
		}
		isDir, err := child.IsDir(ctx)
		if err != nil {
			yield(RemotePath{}, err)
			return false
		}
		if isDir && !child.glob(ctx, rest, final, yield) {
			return false
		}
	}
	return true
}
