package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local stores objects as plain files under a root directory, mirroring the
// hierarchical key as a directory tree. It has no public URLs; local files are
// always served through the /files proxy route.
type Local struct {
	root string
}

func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (l *Local) Backend() string { return BackendLocal }

func (l *Local) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		// Leave no half-written file behind.
		os.Remove(dst)
		return "", fmt.Errorf("write file: %w", err)
	}
	return key, nil
}

func (l *Local) URL(locator string) string { return "" }

func (l *Local) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(l.root, filepath.FromSlash(locator)))
	if os.IsNotExist(err) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
