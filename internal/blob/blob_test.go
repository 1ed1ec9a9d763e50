package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_PutDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Put(ctx, "2024/01/stage.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"), 10)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/2024/01/stage.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "2024", "01", "stage.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))

	require.NoError(t, store.Delete(ctx, "2024/01/stage.jpg"))
	require.NoError(t, store.Delete(ctx, "2024/01/stage.jpg"))
	_, err = os.Stat(filepath.Join(dir, "2024", "01", "stage.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocal_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)
	for _, key := range []string{"", "../etc/passwd", "/abs", `a\b`} {
		_, err := store.Put(context.Background(), key, "text/plain", strings.NewReader("x"), 1)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}
