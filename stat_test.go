package pathops_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/pathops"
)

func TestPredicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newMemory(t)
	require.NoError(t, m.AddFifo("/run/pipe"))
	require.NoError(t, m.AddSocket("/run/agent.socket"))
	require.NoError(t, m.AddSymlink("/etc/current", "app"))
	require.NoError(t, m.AddSymlink("/loop/a", "b"))
	require.NoError(t, m.AddSymlink("/loop/b", "a"))

	type preds struct{ exists, dir, file, fifo, socket bool }
	tests := []struct {
		path string
		want preds
	}{
		{"/etc", preds{exists: true, dir: true}},
		{"/etc/current", preds{exists: true, dir: true}},
		{"/etc/app/config.yaml", preds{exists: true, file: true}},
		{"/run/pipe", preds{exists: true, fifo: true}},
		{"/run/agent.socket", preds{exists: true, socket: true}},
		{"/missing", preds{}},
		{"/etc/app/config.yaml/child", preds{}},
		{"/loop/a", preds{}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			p := mustPath(t, m, tt.path)
			var got preds
			var err error

			got.exists, err = p.Exists(ctx)
			require.NoError(t, err)
			got.dir, err = p.IsDir(ctx)
			require.NoError(t, err)
			got.file, err = p.IsFile(ctx)
			require.NoError(t, err)
			got.fifo, err = p.IsFifo(ctx)
			require.NoError(t, err)
			got.socket, err = p.IsSocket(ctx)
			require.NoError(t, err)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsDir_SymlinkLoopIsFalse(t *testing.T) {
	t.Parallel()
	ep := newMock()
	ep.On("ListFiles", mock.Anything, "/a", pathops.ListOptions{Itself: true}).
		Return(nil, genericError("stat /a: too many levels of symbolic links"))

	isDir, err := mustPath(t, ep, "/a").IsDir(context.Background())

	require.NoError(t, err)
	assert.False(t, isDir)
}

func TestExists_OtherErrorsPropagate(t *testing.T) {
	t.Parallel()
	ep := newMock()
	ep.On("ListFiles", mock.Anything, "/a", pathops.ListOptions{Itself: true}).
		Return(nil, &pathops.PathError{Kind: pathops.PathKindPermissionDenied, Message: "stat /a: permission denied"})

	_, err := mustPath(t, ep, "/a").Exists(context.Background())

	assert.ErrorIs(t, err, pathops.ErrPermission)
}

func TestOwnerGroup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("set", func(t *testing.T) {
		t.Parallel()
		m := newMemory(t)
		p := mustPath(t, m, "/etc/app/config.yaml")

		owner, err := p.Owner(ctx)
		require.NoError(t, err)
		assert.Equal(t, "root", owner)

		group, err := p.Group(ctx)
		require.NoError(t, err)
		assert.Equal(t, "root", group)
	})
	t.Run("unset", func(t *testing.T) {
		t.Parallel()
		ep := newMock()
		ep.On("ListFiles", mock.Anything, "/f", pathops.ListOptions{Itself: true}).
			Return([]*pathops.FileInfo{fileInfo("/f", pathops.TypeFile)}, nil)
		p := mustPath(t, ep, "/f")

		owner, err := p.Owner(ctx)
		require.NoError(t, err)
		assert.Empty(t, owner)

		group, err := p.Group(ctx)
		require.NoError(t, err)
		assert.Empty(t, group)
	})
	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		_, err := mustPath(t, newMemory(t), "/missing").Owner(ctx)
		assert.ErrorIs(t, err, pathops.ErrNotFound)
	})
}

func TestStat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	info, err := mustPath(t, newMemory(t), "/etc/app/config.yaml").Stat(ctx)
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", info.Name)
	assert.Equal(t, int64(len("key: value\n")), info.Size)

	ep := newMock()
	ep.On("ListFiles", mock.Anything, "/gone", pathops.ListOptions{Itself: true}).
		Return([]*pathops.FileInfo{}, nil)
	_, err = mustPath(t, ep, "/gone").Stat(ctx)
	assert.ErrorIs(t, err, pathops.ErrNotFound)
}
