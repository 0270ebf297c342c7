package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutOpenRoundTrip(t *testing.T) {
	store := NewLocal(t.TempDir())
	ctx := context.Background()

	content := "lecture one"
	locator, err := store.Put(ctx, "Basics/1/Math/123-notes.pdf", strings.NewReader(content), int64(len(content)), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "Basics/1/Math/123-notes.pdf", locator)

	rc, err := store.Open(ctx, locator)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestLocalOpenMissing(t *testing.T) {
	store := NewLocal(t.TempDir())

	_, err := store.Open(context.Background(), "Basics/1/Math/nope.pdf")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalHasNoPublicURL(t *testing.T) {
	store := NewLocal(t.TempDir())
	assert.Empty(t, store.URL("Basics/1/Math/123-notes.pdf"))
}

func TestLocalPutCreatesHierarchy(t *testing.T) {
	root := t.TempDir()
	store := NewLocal(root)

	_, err := store.Put(context.Background(), "Diploma in ICT/2/Networks/456-slides.pptx", strings.NewReader("x"), 1, "")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "Diploma in ICT", "2", "Networks", "456-slides.pptx"))
	require.NoError(t, err)
}
