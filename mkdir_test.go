package pathops_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/pathops"
	"github.com/brettbedarf/pathops/endpoints"
)

func TestMkdir_TruthTable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name    string
		path    string
		parents bool
		existOK bool
		wantErr error
		errPath string // path the error must name
	}{
		{"leaf", "/var/log/app", false, false, nil, ""},
		{"leaf exists", "/var/log", false, false, pathops.ErrFileExists, "/var/log"},
		{"leaf missing parent", "/srv/a", false, false, pathops.ErrNotFound, "/srv/a"},

		{"parents", "/srv/a/b", true, false, nil, ""},
		{"parents exists", "/var/log", true, false, pathops.ErrFileExists, "/var/log"},

		{"exist ok", "/var/log/app", false, true, nil, ""},
		{"exist ok exists", "/var/log", false, true, nil, ""},
		{"exist ok missing parent", "/srv/a/b", false, true, pathops.ErrNotFound, "'/srv/a'"},

		{"both", "/srv/a/b", true, true, nil, ""},
		{"both exists", "/var/log", true, true, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := newMemory(t)
			p := mustPath(t, m, tt.path)

			err := p.Mkdir(ctx, &pathops.MkdirOptions{Parents: tt.parents, ExistOK: tt.existOK})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), tt.errPath)
				return
			}
			require.NoError(t, err)
			isDir, err := p.IsDir(ctx)
			require.NoError(t, err)
			assert.True(t, isDir)
		})
	}
}

func TestMkdir_NotADirectory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("parent is a file", func(t *testing.T) {
		t.Parallel()
		m := newMemory(t)
		err := mustPath(t, m, "/etc/app/config.yaml/sub").Mkdir(ctx, nil)
		require.ErrorIs(t, err, pathops.ErrNotDir)
		assert.Contains(t, err.Error(), "'/etc/app/config.yaml'")
	})
	t.Run("exist ok below a file", func(t *testing.T) {
		t.Parallel()
		m := newMemory(t)
		err := mustPath(t, m, "/etc/app/config.yaml/x/y").Mkdir(ctx, &pathops.MkdirOptions{ExistOK: true})
		require.ErrorIs(t, err, pathops.ErrNotFound)
		assert.Contains(t, err.Error(), "'/etc/app/config.yaml/x'")
	})
	t.Run("parents below a file", func(t *testing.T) {
		t.Parallel()
		m := newMemory(t)
		err := mustPath(t, m, "/etc/app/config.yaml/x/y").Mkdir(ctx, &pathops.MkdirOptions{Parents: true})
		require.ErrorIs(t, err, pathops.ErrNotDir)
		assert.Contains(t, err.Error(), "'/etc/app/config.yaml/x'")
	})
	t.Run("target is a file", func(t *testing.T) {
		t.Parallel()
		m := newMemory(t)
		err := mustPath(t, m, "/etc/app/config.yaml").Mkdir(ctx, &pathops.MkdirOptions{Parents: true, ExistOK: true})
		require.ErrorIs(t, err, pathops.ErrFileExists)
		assert.Contains(t, err.Error(), "'/etc/app/config.yaml'")
	})
}

func TestMkdir_Delegation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		ep := newMock()
		ep.On("MakeDir", mock.Anything, "/d", pathops.MakeDirOptions{
			Permissions: pathops.DefaultMkdirMode,
		}).Return(nil)

		require.NoError(t, mustPath(t, ep, "/d").Mkdir(ctx, nil))
		ep.AssertExpectations(t)
		ep.AssertNotCalled(t, "ListFiles", mock.Anything, mock.Anything, mock.Anything)
	})
	t.Run("both flags skip the pre-check", func(t *testing.T) {
		t.Parallel()
		ep := newMock()
		ep.On("MakeDir", mock.Anything, "/d", pathops.MakeDirOptions{
			MakeParents: true,
			Permissions: 0o700,
			User:        "app",
			Group:       "app",
		}).Return(nil)

		err := mustPath(t, ep, "/d").Mkdir(ctx, &pathops.MkdirOptions{
			Mode: 0o700, Parents: true, ExistOK: true, User: "app", Group: "app",
		})
		require.NoError(t, err)
		ep.AssertExpectations(t)
		ep.AssertNotCalled(t, "ListFiles", mock.Anything, mock.Anything, mock.Anything)
	})
	t.Run("exist ok checks the parent", func(t *testing.T) {
		t.Parallel()
		ep := newMock()
		ep.On("ListFiles", mock.Anything, "/p", pathops.ListOptions{Itself: true}).
			Return([]*pathops.FileInfo{fileInfo("/p", pathops.TypeDirectory)}, nil)
		ep.On("MakeDir", mock.Anything, "/p/d", mock.MatchedBy(func(o pathops.MakeDirOptions) bool {
			return o.MakeParents
		})).Return(nil)

		err := mustPath(t, ep, "/p/d").Mkdir(ctx, &pathops.MkdirOptions{ExistOK: true})
		require.NoError(t, err)
		ep.AssertExpectations(t)
	})
}

func TestMkdir_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("lookup", func(t *testing.T) {
		t.Parallel()
		err := mustPath(t, newMemory(t), "/srv").Mkdir(ctx, &pathops.MkdirOptions{Group: "ghost"})
		assert.ErrorIs(t, err, pathops.ErrLookup)
	})
	t.Run("permission", func(t *testing.T) {
		t.Parallel()
		m := newMemory(t)
		require.NoError(t, m.SetReadOnly("/var/log"))
		err := mustPath(t, m, "/var/log/app").Mkdir(ctx, nil)
		assert.ErrorIs(t, err, pathops.ErrPermission)
	})
	t.Run("unknown passes through", func(t *testing.T) {
		t.Parallel()
		ep := newMock()
		protoErr := &pathops.APIError{Code: 502, Message: "bad gateway"}
		ep.On("MakeDir", mock.Anything, "/d", mock.Anything).Return(protoErr)

		err := mustPath(t, ep, "/d").Mkdir(ctx, nil)
		assert.Same(t, protoErr, err)
	})
}

func TestMkdir_NestedParents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := endpoints.NewMemory("served")
	p := mustPath(t, m, "/a/b/c")

	require.NoError(t, p.Mkdir(ctx, &pathops.MkdirOptions{Parents: true}))
	exists, err := p.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}
