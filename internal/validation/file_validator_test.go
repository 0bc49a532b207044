package validation

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *FileValidator {
	return NewFileValidator(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestValidateFile(t *testing.T) {
	v := newTestValidator()
	dir := t.TempDir()

	path := filepath.Join(dir, "logs.csv")
	require.NoError(t, os.WriteFile(path, []byte("partner_id\n"), 0o644))

	assert.NoError(t, v.ValidateFile(path))
	assert.Error(t, v.ValidateFile(filepath.Join(dir, "absent.csv")))
	assert.Error(t, v.ValidateFile(dir))
}

func TestValidateSourceLog(t *testing.T) {
	v := newTestValidator()
	dir := t.TempDir()

	valid := filepath.Join(dir, "logs.csv")
	require.NoError(t, os.WriteFile(valid, []byte("partner_id,clicks\n"), 0o644))
	assert.NoError(t, v.ValidateSourceLog(valid))

	wrongExt := filepath.Join(dir, "logs.xlsx")
	require.NoError(t, os.WriteFile(wrongExt, []byte("data"), 0o644))
	assert.Error(t, v.ValidateSourceLog(wrongExt))

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.Error(t, v.ValidateSourceLog(empty))
}

func TestValidateOutputDirectory(t *testing.T) {
	v := newTestValidator()

	dir := filepath.Join(t.TempDir(), "reports", "daily")
	assert.NoError(t, v.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)

	// No leftover write probe.
	_, err := os.Stat(filepath.Join(dir, ".write_test"))
	assert.True(t, os.IsNotExist(err))
}

func TestCountFiles(t *testing.T) {
	v := newTestValidator()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.csv"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("x"), 0o644))

	count, err := v.CountFiles(dir, "*.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
