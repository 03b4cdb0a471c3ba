package security

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPathValidator(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "test.txt")
	require.NoError(t, os.WriteFile(testFile, []byte("test"), 0o644))

	tests := []struct {
		name      string
		dir       string
		wantError bool
	}{
		{name: "valid directory", dir: tempDir},
		{name: "empty directory", dir: "", wantError: true},
		{name: "non-existent directory", dir: "/non/existent/path", wantError: true},
		{name: "file instead of directory", dir: testFile, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator, err := NewPathValidator(tt.dir)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Clean(tt.dir), validator.Directory())
		})
	}
}

func TestPathValidator_Resolve(t *testing.T) {
	tempDir := t.TempDir()
	subDir := filepath.Join(tempDir, "subdir")
	require.NoError(t, os.Mkdir(subDir, 0o755))

	inside := filepath.Join(subDir, "fields.csv")
	require.NoError(t, os.WriteFile(inside, []byte("Name,Email\n"), 0o644))

	outsideDir := t.TempDir()
	secret := filepath.Join(outsideDir, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0o644))

	validator, err := NewPathValidator(tempDir)
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		outside bool
		wantErr bool
	}{
		{name: "absolute path inside", path: inside},
		{name: "relative path inside", path: "subdir/fields.csv"},
		{name: "dot segments that stay inside", path: "subdir/../subdir/fields.csv"},
		{name: "parent traversal", path: "../" + filepath.Base(outsideDir) + "/secret.txt", outside: true},
		{name: "deep traversal", path: "subdir/../../../../etc/passwd", outside: true},
		{name: "absolute path outside", path: "/etc/passwd", outside: true},
		{name: "sibling with shared prefix", path: tempDir + "-other/file.txt", outside: true},
		{name: "missing file inside", path: "subdir/missing.csv", wantErr: true},
		{name: "empty path", path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := validator.Resolve(tt.path)
			if tt.outside {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrOutsideDirectory), err.Error())
				return
			}
			if tt.wantErr {
				require.Error(t, err)
				assert.False(t, errors.Is(err, ErrOutsideDirectory))
				return
			}
			require.NoError(t, err)
			data, err := os.ReadFile(resolved)
			require.NoError(t, err)
			assert.Equal(t, "Name,Email\n", string(data))
		})
	}
}

func TestPathValidator_SymlinkEscape(t *testing.T) {
	tempDir := t.TempDir()
	outsideDir := t.TempDir()
	secret := filepath.Join(outsideDir, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("secret"), 0o644))

	link := filepath.Join(tempDir, "link.txt")
	if err := os.Symlink(secret, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	dirLink := filepath.Join(tempDir, "outside")
	require.NoError(t, os.Symlink(outsideDir, dirLink))

	validator, err := NewPathValidator(tempDir)
	require.NoError(t, err)

	_, err = validator.Resolve(link)
	assert.ErrorIs(t, err, ErrOutsideDirectory)

	_, err = validator.Resolve("outside/secret.txt")
	assert.ErrorIs(t, err, ErrOutsideDirectory)
}

func TestPathValidator_SymlinkInside(t *testing.T) {
	tempDir := t.TempDir()
	target := filepath.Join(tempDir, "real.txt")
	require.NoError(t, os.WriteFile(target, []byte("ok"), 0o644))

	link := filepath.Join(tempDir, "alias.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	validator, err := NewPathValidator(tempDir)
	require.NoError(t, err)

	resolved, err := validator.Resolve("alias.txt")
	require.NoError(t, err)
	data, err := os.ReadFile(resolved)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}
