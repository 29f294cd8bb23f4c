package local_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gapcheck/internal/port"
	"gapcheck/internal/storage/local"
)

func TestLocalStorage_UploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := local.NewLocalStorage(dir)
	require.NoError(t, err)

	out, err := store.Upload(context.Background(), port.UploadInput{
		Key:         "reports/curriculum_data_abc.json",
		Body:        strings.NewReader(`{"ok":true}`),
		ContentType: "application/json",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports", "curriculum_data_abc.json"), out.Location)

	data, err := os.ReadFile(out.Location)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))

	url, err := store.GetPresignedURL(context.Background(), "reports/curriculum_data_abc.json", 3600)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"))
	assert.True(t, strings.HasSuffix(url, "/reports/curriculum_data_abc.json"))

	require.NoError(t, store.Delete(context.Background(), "reports/curriculum_data_abc.json"))
	_, err = os.Stat(out.Location)
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is fine.
	assert.NoError(t, store.Delete(context.Background(), "reports/curriculum_data_abc.json"))
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	store, err := local.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), port.UploadInput{
		Key:  "../outside.pdf",
		Body: strings.NewReader("x"),
	})
	assert.Error(t, err)
}
