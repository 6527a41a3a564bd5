// Package api holds the on-disk conventions shared by csvr's versioned
// configuration kinds.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/macropower/csvr/pkg/yaml"
)

// AppName names the per-user configuration directory.
const AppName = "csvr"

var (
	ErrIsDir        = errors.New("path is a directory")
	ErrUnknownState = errors.New("unknown file state")
)

// GetConfigPath returns the path to a configuration file in the user's config directory.
// It checks $XDG_CONFIG_HOME first, then falls back to ~/.config, and finally to a temp directory.
func GetConfigPath(filename string) string {
	if xdgHome, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdgHome != "" {
		return filepath.Join(xdgHome, AppName, filename)
	}

	usrHome, err := os.UserHomeDir()
	if err == nil && usrHome != "" {
		return filepath.Join(usrHome, ".config", AppName, filename)
	}

	tmpPath := filepath.Join(os.TempDir(), AppName, filename)

	slog.Warn("could not determine user config directory, using temp path",
		slog.String("path", tmpPath),
		slog.Any("error", fmt.Errorf("$XDG_CONFIG_HOME is unset, fall back to home directory: %w", err)),
	)

	return tmpPath
}

// ReadFile reads the regular file at path.
func ReadFile(path string) ([]byte, error) {
	exists, err := regularFile(path)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, fmt.Errorf("stat file: %w", &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist})
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: Potential file inclusion via variable.
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// MarshalYAML serializes an object to YAML bytes.
func MarshalYAML(obj any) ([]byte, error) {
	b := &bytes.Buffer{}

	enc := yaml.NewEncoder(b)

	err := enc.Encode(obj)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return nil, fmt.Errorf("close yaml encoder: %w", err)
	}

	return b.Bytes(), nil
}

// WriteIfNotExists writes data to path, creating parent directories. An
// existing regular file is left untouched and reported with written=false.
func WriteIfNotExists(path string, data []byte) (bool, error) {
	exists, err := regularFile(path)
	if err != nil {
		return false, err
	}

	if exists {
		slog.Debug("file already exists, skipping write", slog.String("path", path))

		return false, nil
	}

	err = os.MkdirAll(filepath.Dir(path), 0o700)
	if err != nil {
		return false, fmt.Errorf("create directories: %w", err)
	}

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return false, fmt.Errorf("write file: %w", err)
	}

	return true, nil
}

// regularFile reports whether path is an existing regular file. A missing
// path is not an error; anything else that is not a regular file is.
func regularFile(path string) (bool, error) {
	pathInfo, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat file: %w", err)
	case pathInfo.IsDir():
		return false, fmt.Errorf("%s: %w", path, ErrIsDir)
	case !pathInfo.Mode().IsRegular():
		return false, fmt.Errorf("%s: %w", path, ErrUnknownState)
	}

	return true, nil
}
