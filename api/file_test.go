package api_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/csvr/api"
)

//nolint:paralleltest // We need to set environment variables, so run tests sequentially.
func TestGetConfigPath(t *testing.T) {
	tcs := map[string]struct {
		env  map[string]string
		want string
	}{
		"XDG_CONFIG_HOME is set and not empty": {
			env:  map[string]string{"XDG_CONFIG_HOME": "/custom/config"},
			want: "/custom/config/csvr/config.yaml",
		},
		"XDG_CONFIG_HOME is empty and HOME is set": {
			env:  map[string]string{"XDG_CONFIG_HOME": "", "HOME": "/test/home"},
			want: "/test/home/.config/csvr/config.yaml",
		},
		"XDG_CONFIG_HOME is empty and HOME is empty": {
			env:  map[string]string{"XDG_CONFIG_HOME": "", "HOME": ""},
			want: filepath.Join(os.TempDir(), "csvr", "config.yaml"), //nolint:usetesting // Needs to equal host.
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			assert.Equal(t, tc.want, api.GetConfigPath("config.yaml"))
		})
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))

	tcs := map[string]struct {
		err  error
		path string
		want string
	}{
		"valid file": {
			path: path,
			want: "[]",
		},
		"non-existent file": {
			path: filepath.Join(dir, "missing.json"),
			err:  os.ErrNotExist,
		},
		"directory instead of file": {
			path: dir,
			err:  api.ErrIsDir,
		},
		"not a regular file": {
			path: os.DevNull,
			err:  api.ErrUnknownState,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := api.ReadFile(tc.path)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}
}

func TestMarshalYAML(t *testing.T) {
	t.Parallel()

	type testObj struct {
		Name    string `json:"name"`
		Threads int    `json:"threads"`
	}

	data, err := api.MarshalYAML(testObj{Name: "test", Threads: 4})
	require.NoError(t, err)
	assert.Equal(t, "name: test\nthreads: 4\n", string(data))
}

func TestWriteIfNotExists(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		setupPath   func(t *testing.T) string
		err         error
		wantWritten bool
	}{
		"new file": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				return filepath.Join(t.TempDir(), "new.yaml")
			},
			wantWritten: true,
		},
		"existing file is kept": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				path := filepath.Join(t.TempDir(), "existing.yaml")
				require.NoError(t, os.WriteFile(path, []byte("existing"), 0o600))

				return path
			},
		},
		"creates parent directories": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				return filepath.Join(t.TempDir(), "nested", "deep", "file.yaml")
			},
			wantWritten: true,
		},
		"path is directory": {
			setupPath: func(t *testing.T) string {
				t.Helper()

				return t.TempDir()
			},
			err: api.ErrIsDir,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := tc.setupPath(t)

			written, err := api.WriteIfNotExists(path, []byte("new content"))
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantWritten, written)

			data, err := os.ReadFile(path)
			require.NoError(t, err)

			if tc.wantWritten {
				assert.Equal(t, "new content", string(data))
			} else {
				assert.Equal(t, "existing", string(data))
			}
		})
	}
}
