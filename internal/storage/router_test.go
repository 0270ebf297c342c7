package storage

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubStore struct {
	tag string
}

func (s *stubStore) Backend() string { return s.tag }
func (s *stubStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	return key, nil
}
func (s *stubStore) URL(locator string) string { return "" }
func (s *stubStore) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	return nil, ErrObjectNotFound
}

func TestRouterSingleBackend(t *testing.T) {
	primary := &stubStore{tag: BackendLocal}
	r := NewRouter(primary, nil, 0)

	assert.Same(t, primary, r.Select(1))
	assert.Same(t, primary, r.Select(1<<30))
}

func TestRouterTieredPolicy(t *testing.T) {
	primary := &stubStore{tag: BackendS3}
	overflow := &stubStore{tag: BackendDrive}
	r := NewRouter(primary, overflow, 10<<20)

	assert.Same(t, primary, r.Select(10<<20), "threshold itself stays on the primary")
	assert.Same(t, overflow, r.Select(10<<20+1))
	assert.Same(t, primary, r.Select(1))
}

func TestRouterByBackend(t *testing.T) {
	primary := &stubStore{tag: BackendS3}
	overflow := &stubStore{tag: BackendDrive}
	extra := &stubStore{tag: BackendLocal}

	r := NewRouter(primary, overflow, 1)
	r.Register(extra)

	got, ok := r.ByBackend(BackendDrive)
	assert.True(t, ok)
	assert.Same(t, overflow, got)

	got, ok = r.ByBackend(BackendLocal)
	assert.True(t, ok)
	assert.Same(t, extra, got)

	_, ok = r.ByBackend("ftp")
	assert.False(t, ok)
}
