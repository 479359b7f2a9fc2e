package pathops

import (
	"fmt"
	"slices"

	"github.com/brettbedarf/pathops/internal/util"
	"github.com/brettbedarf/pathops/purepath"
)

// RemotePath is an absolute path on an Endpoint.
//
// RemotePath values are immutable. Transformations such as Join or Parent
// return new values on the same endpoint. The endpoint is borrowed: a
// RemotePath never closes or otherwise manages it.
type RemotePath struct {
	ep   Endpoint
	path purepath.Path
}

// New joins parts into a path on ep. It fails with [ErrInvalidPath] unless
// ep is non-nil and the joined path is absolute.
func New(ep Endpoint, parts ...string) (RemotePath, error) {
	if ep == nil {
		return RemotePath{}, &Error{Op: "new", Path: purepath.New(parts...).String(), Err: ErrInvalidPath}
	}
	p := purepath.New(parts...)
	if !p.IsAbs() {
		return RemotePath{}, &Error{
			Op:       "new",
			Path:     p.String(),
			Endpoint: ep.Name(),
			Err:      ErrInvalidPath,
		}
	}
	return RemotePath{ep: ep, path: p}, nil
}

// with returns a path on the same endpoint. pp must be absolute.
func (p RemotePath) with(pp purepath.Path) RemotePath {
	return RemotePath{ep: p.ep, path: pp}
}

// Endpoint returns the endpoint p lives on.
func (p RemotePath) Endpoint() Endpoint { return p.ep }

// Pure returns the path without its endpoint.
func (p RemotePath) Pure() purepath.Path { return p.path }

func (p RemotePath) String() string { return p.path.String() }

// AsPosix returns the path with forward slashes, which is always its String.
func (p RemotePath) AsPosix() string { return p.path.String() }

func (p RemotePath) GoString() string {
	return fmt.Sprintf("pathops.RemotePath(%q, endpoint=%q)", p.path, p.endpointName())
}

// IsAbs always reports true; relative paths cannot be constructed.
func (p RemotePath) IsAbs() bool { return p.path.IsAbs() }

func (p RemotePath) Parts() []string    { return p.path.Parts() }
func (p RemotePath) Name() string       { return p.path.Name() }
func (p RemotePath) Stem() string       { return p.path.Stem() }
func (p RemotePath) Suffix() string     { return p.path.Suffix() }
func (p RemotePath) Suffixes() []string { return p.path.Suffixes() }
func (p RemotePath) Parent() RemotePath { return p.with(p.path.Parent()) }

// Join returns p with parts appended. An absolute part replaces everything
// before it.
func (p RemotePath) Join(parts ...string) RemotePath {
	return p.with(p.path.Join(parts...))
}

// Parents returns the ancestors of p, immediate parent first and the root
// last.
func (p RemotePath) Parents() []RemotePath {
	parents := p.path.Parents()
	paths := make([]RemotePath, len(parents))
	for i, pp := range parents {
		paths[i] = p.with(pp)
	}
	return paths
}

// WithName returns p with its final segment replaced.
func (p RemotePath) WithName(name string) (RemotePath, error) {
	pp, err := p.path.WithName(name)
	if err != nil {
		return RemotePath{}, err
	}
	return p.with(pp), nil
}

// WithSuffix returns p with its suffix replaced. The suffix must start with
// a dot unless it is empty, in which case the existing suffix is removed.
func (p RemotePath) WithSuffix(suffix string) (RemotePath, error) {
	pp, err := p.path.WithSuffix(suffix)
	if err != nil {
		return RemotePath{}, err
	}
	return p.with(pp), nil
}

// Match reports whether p matches pattern; see [purepath.Path.Match].
func (p RemotePath) Match(pattern string) (bool, error) {
	return p.path.Match(pattern)
}

// Equal reports whether p and other name the same path on the same endpoint.
func (p RemotePath) Equal(other RemotePath) bool {
	return p.endpointName() == other.endpointName() && p.path.Equal(other.path)
}

// Compare orders paths on the same endpoint. Paths on different endpoints
// have no order and fail with [ErrIncomparable].
func (p RemotePath) Compare(other RemotePath) (int, error) {
	if p.endpointName() != other.endpointName() {
		return 0, fmt.Errorf("%w: %s and %s", ErrIncomparable,
			p.description(), other.description())
	}
	return p.path.Compare(other.path), nil
}

func (p RemotePath) endpointName() string {
	if p.ep == nil {
		return ""
	}
	return p.ep.Name()
}

func (p RemotePath) description() string {
	return describe(p.path.String(), p.endpointName())
}

// fail builds the classified error for op on p.
func (p RemotePath) fail(op string, sentinel, cause error) error {
	logger := util.GetLogger("RemotePath." + op)
	logger.Debug().
		Str("path", p.path.String()).
		Str("endpoint", p.endpointName()).
		AnErr("cause", cause).
		Msg(sentinel.Error())
	return &Error{
		Op:       op,
		Path:     p.path.String(),
		Endpoint: p.endpointName(),
		Err:      sentinel,
		Cause:    cause,
	}
}

// translate classifies an endpoint error for op. Only categories listed in
// allowed are translated; anything else is returned unmodified.
func (p RemotePath) translate(op string, err error, allowed ...Category) error {
	c := Classify(err)
	if c == CategoryUnknown || !slices.Contains(allowed, c) {
		logger := util.GetLogger("RemotePath." + op)
		logger.Debug().
			Str("path", p.path.String()).
			Str("endpoint", p.endpointName()).
			Err(err).
			Msg("Unclassified endpoint error")
		return err
	}
	return p.fail(op, c.Err(), err)
}
