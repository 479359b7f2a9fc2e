package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/brettbedarf/pathops"
)

// MockEndpoint implements pathops.Endpoint for testing across packages.
// Name is answered from EndpointName without going through the mock so that
// error descriptions do not need an expectation of their own.
type MockEndpoint struct {
	mock.Mock
	EndpointName string
}

func (m *MockEndpoint) Name() string {
	return m.EndpointName
}

func (m *MockEndpoint) Push(ctx context.Context, path string, source io.Reader, opts pathops.PushOptions) error {
	args := m.Called(ctx, path, source, opts)
	return args.Error(0)
}

func (m *MockEndpoint) Pull(ctx context.Context, path string, text bool) (io.ReadCloser, error) {
	args := m.Called(ctx, path, text)

	// Handle function return types so each call can get a fresh stream
	if fn, ok := args.Get(0).(func() io.ReadCloser); ok {
		return fn(), args.Error(1)
	}

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockEndpoint) ListFiles(ctx context.Context, path string, opts pathops.ListOptions) ([]*pathops.FileInfo, error) {
	args := m.Called(ctx, path, opts)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pathops.FileInfo), args.Error(1)
}

func (m *MockEndpoint) MakeDir(ctx context.Context, path string, opts pathops.MakeDirOptions) error {
	args := m.Called(ctx, path, opts)
	return args.Error(0)
}

// TrackingReadCloser records whether Close was called.
type TrackingReadCloser struct {
	io.Reader
	Closed bool
}

func (r *TrackingReadCloser) Close() error {
	r.Closed = true
	return nil
}
