// Package purepath implements lexical POSIX path values.
//
// A Path never touches a filesystem. Parsing follows POSIX rules: runs of
// separators collapse, "." segments disappear, and ".." is kept as written
// because resolving it would require knowing about symbolic links.
//
//	purepath.New("/srv", "app/", "./config.yaml") // "/srv/app/config.yaml"
//	purepath.New("/srv", "/etc", "hosts")         // "/etc/hosts"
//	purepath.New("a", "..", "b")                  // "a/../b"
//
// Path values are immutable. Every transformation returns a new Path.
package purepath

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"
)

// Separator is the only path separator understood by this package.
const Separator = "/"

var (
	ErrInvalidName   = errors.New("invalid name")
	ErrInvalidSuffix = errors.New("invalid suffix")
	ErrEmptyPattern  = errors.New("empty pattern")
	ErrBadPattern    = path.ErrBadPattern
)

// Path is an immutable POSIX path: an optional root followed by
// non-empty segments. The zero value is the relative path ".".
type Path struct {
	abs      bool
	segments []string
}

// New parses and joins parts into a Path.
// An absolute part discards everything joined before it.
func New(parts ...string) Path {
	return Path{}.Join(parts...)
}

// Join returns p with parts appended. As with New, an absolute part
// restarts the path from the root.
func (p Path) Join(parts ...string) Path {
	abs := p.abs
	segments := slices.Clone(p.segments)
	for _, part := range parts {
		if strings.HasPrefix(part, Separator) {
			abs = true
			segments = segments[:0]
		}
		for _, s := range strings.Split(part, Separator) {
			if s == "" || s == "." {
				continue
			}
			segments = append(segments, s)
		}
	}
	return Path{abs: abs, segments: segments}
}

// IsAbs reports whether the path has a root.
func (p Path) IsAbs() bool { return p.abs }

// String returns the POSIX form of the path.
func (p Path) String() string {
	s := strings.Join(p.segments, Separator)
	if p.abs {
		return Separator + s
	}
	if s == "" {
		return "."
	}
	return s
}

// Parts returns the root (if any) followed by each segment.
func (p Path) Parts() []string {
	if !p.abs {
		return slices.Clone(p.segments)
	}
	return append([]string{Separator}, p.segments...)
}

// Name returns the final segment, or "" for a root or empty path.
func (p Path) Name() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// suffixIndex returns the index of the dot starting the final suffix of name,
// or -1. A leading or trailing dot never starts a suffix.
func suffixIndex(name string) int {
	i := strings.LastIndex(name, ".")
	if i > 0 && i < len(name)-1 {
		return i
	}
	return -1
}

// Suffix returns the final dot-suffix of the name, dot included.
func (p Path) Suffix() string {
	name := p.Name()
	if i := suffixIndex(name); i >= 0 {
		return name[i:]
	}
	return ""
}

// Suffixes returns every dot-suffix of the name in order.
//
//	purepath.New("/a/lib.tar.gz").Suffixes() // [".tar" ".gz"]
func (p Path) Suffixes() []string {
	name := p.Name()
	if strings.HasSuffix(name, ".") {
		return []string{}
	}
	name = strings.TrimLeft(name, ".")
	pieces := strings.Split(name, ".")[1:]
	suffixes := make([]string, 0, len(pieces))
	for _, s := range pieces {
		suffixes = append(suffixes, "."+s)
	}
	return suffixes
}

// Stem returns the name without its final suffix.
func (p Path) Stem() string {
	name := p.Name()
	if i := suffixIndex(name); i >= 0 {
		return name[:i]
	}
	return name
}

// Parent returns the logical parent. The parent of a root (or of ".") is
// itself.
func (p Path) Parent() Path {
	if len(p.segments) == 0 {
		return p
	}
	return Path{abs: p.abs, segments: p.segments[:len(p.segments)-1]}
}

// Parents returns the logical ancestors, immediate parent first and the
// furthest ancestor last.
func (p Path) Parents() []Path {
	parents := make([]Path, 0, len(p.segments))
	for i := len(p.segments) - 1; i >= 0; i-- {
		parents = append(parents, Path{abs: p.abs, segments: p.segments[:i]})
	}
	return parents
}

// WithName returns p with the final segment replaced.
func (p Path) WithName(name string) (Path, error) {
	if p.Name() == "" {
		return Path{}, fmt.Errorf("%w: %q has an empty name", ErrInvalidName, p)
	}
	if name == "" || name == "." || strings.Contains(name, Separator) {
		return Path{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	segments := slices.Clone(p.segments)
	segments[len(segments)-1] = name
	return Path{abs: p.abs, segments: segments}, nil
}

// WithSuffix returns p with the final suffix replaced, or added if the name
// had none. An empty suffix removes the existing one.
func (p Path) WithSuffix(suffix string) (Path, error) {
	if strings.Contains(suffix, Separator) ||
		(suffix != "" && !strings.HasPrefix(suffix, ".")) ||
		suffix == "." {
		return Path{}, fmt.Errorf("%w: %q", ErrInvalidSuffix, suffix)
	}
	name := p.Name()
	if name == "" {
		return Path{}, fmt.Errorf("%w: %q has an empty name", ErrInvalidName, p)
	}
	if old := p.Suffix(); old != "" {
		name = name[:len(name)-len(old)]
	}
	return p.WithName(name + suffix)
}

// Match reports whether p matches the glob pattern. Each pattern segment is
// matched against one path segment with [path.Match] syntax. A relative
// pattern is matched from the right; an absolute pattern must match the
// whole path. "**" has no recursive meaning.
func (p Path) Match(pattern string) (bool, error) {
	pat := New(pattern)
	patternParts := pat.Parts()
	if len(patternParts) == 0 {
		return false, ErrEmptyPattern
	}
	pathParts := p.Parts()
	if len(pathParts) < len(patternParts) {
		return false, nil
	}
	if len(pathParts) > len(patternParts) && pat.abs {
		return false, nil
	}
	for i := 1; i <= len(patternParts); i++ {
		ok, err := path.Match(patternParts[len(patternParts)-i], pathParts[len(pathParts)-i])
		if err != nil {
			return false, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Compare orders paths lexicographically by their parts.
func (p Path) Compare(other Path) int {
	return slices.Compare(p.Parts(), other.Parts())
}

// Equal reports whether p and other have the same root and segments.
func (p Path) Equal(other Path) bool {
	return p.abs == other.abs && slices.Equal(p.segments, other.segments)
}
