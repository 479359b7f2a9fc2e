package pathops_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/pathops"
	"github.com/brettbedarf/pathops/endpoints"
	"github.com/brettbedarf/pathops/internal/mocks"
)

// newMemory returns a Memory endpoint holding a small tree:
//
//	/etc/app/config.yaml  "key: value\n"
//	/etc/app/notes.txt    "one\r\ntwo\rthree\n"
//	/var/log/             empty directory
func newMemory(t *testing.T) *endpoints.Memory {
	t.Helper()
	m := endpoints.NewMemory("workload")
	require.NoError(t, m.AddFile("/etc/app/config.yaml", []byte("key: value\n"), 0o644))
	require.NoError(t, m.AddFile("/etc/app/notes.txt", []byte("one\r\ntwo\rthree\n"), 0o644))
	require.NoError(t, m.AddDir("/var/log", 0o755))
	return m
}

func mustPath(t *testing.T, ep pathops.Endpoint, parts ...string) pathops.RemotePath {
	t.Helper()
	p, err := pathops.New(ep, parts...)
	require.NoError(t, err)
	return p
}

func newMock() *mocks.MockEndpoint {
	return &mocks.MockEndpoint{EndpointName: "mocked"}
}

func fileInfo(path string, typ pathops.FileType) *pathops.FileInfo {
	return &pathops.FileInfo{Path: path, Type: typ}
}

func genericError(msg string) error {
	return &pathops.PathError{Kind: pathops.PathKindGenericFileError, Message: msg}
}

func notFoundError(msg string) error {
	return &pathops.PathError{Kind: pathops.PathKindNotFound, Message: msg}
}
