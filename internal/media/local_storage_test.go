package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T, maxBytes int64) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir(), maxBytes)
	require.NoError(t, err)
	return s
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSave_WritesUUIDName(t *testing.T) {
	s := newTestStorage(t, 0)

	path, err := s.Save(context.Background(), "Swing Video.MOV", strings.NewReader("frames"))

	require.NoError(t, err)
	require.True(t, strings.HasPrefix(path, PathPrefix))
	name := strings.TrimPrefix(path, PathPrefix)
	require.True(t, strings.HasSuffix(name, ".mov"))
	_, err = uuid.Parse(strings.TrimSuffix(name, ".mov"))
	assert.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(s.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, "frames", string(data))
	assert.Equal(t, []string{name}, dirEntries(t, s.Dir()))
}

func TestSave_RejectsUnknownExtension(t *testing.T) {
	s := newTestStorage(t, 0)

	_, err := s.Save(context.Background(), "notes.pdf", strings.NewReader("x"))

	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Empty(t, dirEntries(t, s.Dir()))
}

func TestSave_TooLargeLeavesNothing(t *testing.T) {
	s := newTestStorage(t, 4)

	_, err := s.Save(context.Background(), "a.png", bytes.NewReader([]byte("12345")))

	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Empty(t, dirEntries(t, s.Dir()))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestSave_ReadFailureLeavesNothing(t *testing.T) {
	s := newTestStorage(t, 0)

	_, err := s.Save(context.Background(), "a.jpg", failingReader{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
	assert.Empty(t, dirEntries(t, s.Dir()))
}

func TestSave_CancelledContext(t *testing.T) {
	s := newTestStorage(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Save(ctx, "a.jpg", strings.NewReader("x"))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpen_RoundTrip(t *testing.T) {
	s := newTestStorage(t, 0)
	path, err := s.Save(context.Background(), "photo.jpeg", strings.NewReader("pixels"))
	require.NoError(t, err)

	f, err := s.Open(path)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))
	assert.Equal(t, "image/jpeg", ContentType(path))
}

func TestOpen_RejectsTraversal(t *testing.T) {
	s := newTestStorage(t, 0)

	for _, p := range []string{"", "media/", "media/../secret.png", "../x.png", "media/a/b.png", "media/.upload-1.png", "media/run.sh"} {
		_, err := s.Open(p)
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}

func TestOpen_Missing(t *testing.T) {
	s := newTestStorage(t, 0)

	_, err := s.Open("media/" + uuid.NewString() + ".png")

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRemove(t *testing.T) {
	s := newTestStorage(t, 0)
	path, err := s.Save(context.Background(), "a.png", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(path))
	assert.Empty(t, dirEntries(t, s.Dir()))
	require.NoError(t, s.Remove(path))
	assert.ErrorIs(t, s.Remove("media/../a.png"), ErrInvalidPath)
}
