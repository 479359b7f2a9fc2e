package pathops_test

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/pathops"
	"github.com/brettbedarf/pathops/endpoints"
)

// collect drains seq, returning the yielded paths and the first error.
func collect(t *testing.T, seq iter.Seq2[pathops.RemotePath, error]) ([]string, error) {
	t.Helper()
	var paths []string
	for p, err := range seq {
		if err != nil {
			return paths, err
		}
		paths = append(paths, p.String())
	}
	return paths, nil
}

// newGlobTree returns an endpoint holding:
//
//	/srv/a/x.txt /srv/a/y.log /srv/b/x.txt /srv/b/deep/x.txt /srv/c.txt
func newGlobTree(t *testing.T) *endpoints.Memory {
	t.Helper()
	m := endpoints.NewMemory("workload")
	for _, f := range []string{"/srv/a/x.txt", "/srv/a/y.log", "/srv/b/x.txt", "/srv/b/deep/x.txt", "/srv/c.txt"} {
		require.NoError(t, m.AddFile(f, nil, 0o644))
	}
	return m
}

func TestListEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newMemory(t)

	seq, err := mustPath(t, m, "/etc/app").ListEntries(ctx)
	require.NoError(t, err)

	paths, err := collect(t, seq)
	require.NoError(t, err)
	assert.Equal(t, []string{"/etc/app/config.yaml", "/etc/app/notes.txt"}, paths)

	// Each range lists again.
	m.ResetCalls()
	paths, err = collect(t, seq)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
	assert.Equal(t, []endpoints.Call{{Op: "list", Path: "/etc/app"}}, m.Calls())
}

func TestListEntries_Empty(t *testing.T) {
	t.Parallel()

	seq, err := mustPath(t, newMemory(t), "/var/log").ListEntries(context.Background())
	require.NoError(t, err)
	paths, err := collect(t, seq)
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestListEntries_EagerChecks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		_, err := mustPath(t, newMemory(t), "/missing").ListEntries(ctx)
		assert.ErrorIs(t, err, pathops.ErrNotFound)
	})
	t.Run("regular file", func(t *testing.T) {
		t.Parallel()
		ep := newMock()
		ep.On("ListFiles", mock.Anything, "/f", pathops.ListOptions{Itself: true}).
			Return([]*pathops.FileInfo{fileInfo("/f", pathops.TypeFile)}, nil)

		seq, err := mustPath(t, ep, "/f").ListEntries(ctx)

		require.ErrorIs(t, err, pathops.ErrNotDir)
		assert.Nil(t, seq)
		ep.AssertNumberOfCalls(t, "ListFiles", 1)
		ep.AssertNotCalled(t, "ListFiles", mock.Anything, "/f", pathops.ListOptions{})
	})
}

func TestListEntries_StopsEarly(t *testing.T) {
	t.Parallel()

	seq, err := mustPath(t, newMemory(t), "/etc/app").ListEntries(context.Background())
	require.NoError(t, err)

	var seen int
	for _, err := range seq {
		require.NoError(t, err)
		seen++
		break
	}
	assert.Equal(t, 1, seen)
}

func TestListEntries_ListingErrorIsYielded(t *testing.T) {
	t.Parallel()
	ep := newMock()
	ep.On("ListFiles", mock.Anything, "/d", pathops.ListOptions{Itself: true}).
		Return([]*pathops.FileInfo{fileInfo("/d", pathops.TypeDirectory)}, nil)
	ep.On("ListFiles", mock.Anything, "/d", pathops.ListOptions{}).
		Return(nil, notFoundError("open /d: no such file or directory"))

	seq, err := mustPath(t, ep, "/d").ListEntries(context.Background())
	require.NoError(t, err)

	_, err = collect(t, seq)
	assert.ErrorIs(t, err, pathops.ErrNotFound)
}

func TestGlob(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newGlobTree(t)
	root := mustPath(t, m, "/srv")

	tests := []struct {
		pattern string
		want    []string
	}{
		{"*.txt", []string{"/srv/c.txt"}},
		{"*", []string{"/srv/a", "/srv/b", "/srv/c.txt"}},
		{"*/x.txt", []string{"/srv/a/x.txt", "/srv/b/x.txt"}},
		{"*/*.log", []string{"/srv/a/y.log"}},
		{"b/*/x.txt", []string{"/srv/b/deep/x.txt"}},
		{"*/*/x.txt", []string{"/srv/b/deep/x.txt"}},
		{"a/?.txt", []string{"/srv/a/x.txt"}},
		{"*.md", nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			t.Parallel()
			seq, err := root.Glob(ctx, tt.pattern)
			require.NoError(t, err)
			paths, err := collect(t, seq)
			require.NoError(t, err)
			assert.Equal(t, tt.want, paths)
		})
	}
}

func TestGlob_InvalidPatterns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		pattern string
		want    error
	}{
		{"a/**/b", pathops.ErrUnsupported},
		{"**/b", pathops.ErrUnsupported},
		{"a**b", pathops.ErrInvalidPattern},
		{"**", pathops.ErrInvalidPattern},
		{"a/**", pathops.ErrInvalidPattern},
		{"a/b**/c", pathops.ErrInvalidPattern},
		{"", pathops.ErrInvalidPattern},
		{"x*/b", pathops.ErrUnsupported},
		{"/abs/*", pathops.ErrUnsupported},
		{"[", pathops.ErrInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			t.Parallel()
			ep := newMock()

			seq, err := mustPath(t, ep, "/srv").Glob(ctx, tt.pattern)

			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, seq)
			ep.AssertNotCalled(t, "ListFiles", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGlob_LiteralComponentNamesFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newGlobTree(t)

	tests := []struct {
		root    string
		pattern string
		want    []string
	}{
		{"/srv", "c.txt/*.log", nil},
		{"/srv", "c.txt/*", nil},
		{"/srv/c.txt", "nomatch", nil},
		{"/srv/c.txt", "c.txt", []string{"/srv/c.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.root+" "+tt.pattern, func(t *testing.T) {
			t.Parallel()
			seq, err := mustPath(t, m, tt.root).Glob(ctx, tt.pattern)
			require.NoError(t, err)
			paths, err := collect(t, seq)
			require.NoError(t, err)
			assert.Equal(t, tt.want, paths)
		})
	}
}

func TestGlob_LiteralComponentMissing(t *testing.T) {
	t.Parallel()

	seq, err := mustPath(t, newGlobTree(t), "/srv").Glob(context.Background(), "nope/*.txt")
	require.NoError(t, err)

	_, err = collect(t, seq)
	assert.ErrorIs(t, err, pathops.ErrNotFound)
}

func TestGlob_IsLazyAndRestartable(t *testing.T) {
	t.Parallel()
	m := newGlobTree(t)

	seq, err := mustPath(t, m, "/srv").Glob(context.Background(), "*/x.txt")
	require.NoError(t, err)
	assert.Empty(t, m.Calls(), "no request before ranging")

	first, err := collect(t, seq)
	require.NoError(t, err)
	second, err := collect(t, seq)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGlob_StopsAtFirstError(t *testing.T) {
	t.Parallel()
	ep := newMock()
	boom := errors.New("connection reset")
	ep.On("ListFiles", mock.Anything, "/srv", pathops.ListOptions{Itself: true}).
		Return([]*pathops.FileInfo{fileInfo("/srv", pathops.TypeDirectory)}, nil)
	ep.On("ListFiles", mock.Anything, "/srv", pathops.ListOptions{}).Return(nil, boom)

	seq, err := mustPath(t, ep, "/srv").Glob(context.Background(), "*/x")
	require.NoError(t, err)

	var errs []error
	for _, err := range seq {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.Same(t, boom, errs[0])
}
