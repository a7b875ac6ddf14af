package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestLocalStore_PutAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://cdn.local/files/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "payslips/inv-1/1.pdf", strings.NewReader("%PDF"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.local/files/payslips/inv-1/1.pdf", url)

	data, err := os.ReadFile(filepath.Join(store.BasePath(), "payslips", "inv-1", "1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	assert.NoError(t, store.Delete(context.Background(), "payslips/inv-1/1.pdf"))
	_, err = os.Stat(filepath.Join(store.BasePath(), "payslips", "inv-1", "1.pdf"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(context.Background(), "payslips/inv-1/1.pdf"), "deleting twice is a no-op")
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://cdn.local")
	require.NoError(t, err)

	for _, key := range []string{"", "/etc/passwd", "../outside.pdf", "a/../../outside.pdf", "."} {
		_, err := store.Put(context.Background(), key, strings.NewReader("x"), "text/plain")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestLocalStore_RemovesPartialFileOnWriteError(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://cdn.local")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "payslips/broken.pdf", failingReader{}, "application/pdf")
	assert.Error(t, err)

	_, statErr := os.Stat(filepath.Join(store.BasePath(), "payslips", "broken.pdf"))
	assert.True(t, os.IsNotExist(statErr))
}
