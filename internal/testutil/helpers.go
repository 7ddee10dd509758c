package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// CreateDummyFile writes content to path, creating parent directories.
// It uses require assertions for test setup.
func CreateDummyFile(t *testing.T, path string, content string) string {
	t.Helper()
	fullPath := filepath.Clean(path)
	dir := filepath.Dir(fullPath)
	err := os.MkdirAll(dir, 0755)
	require.NoError(t, err, "Failed to create directory %s for dummy file", dir)
	err = os.WriteFile(fullPath, []byte(content), 0644)
	require.NoError(t, err, "Failed to write dummy file %s", fullPath)
	return fullPath
}

// CreateDummyDir ensures a directory exists at the given path, creating parents if needed.
func CreateDummyDir(t *testing.T, path string) string {
	t.Helper()
	fullPath := filepath.Clean(path)
	err := os.MkdirAll(fullPath, 0755)
	require.NoError(t, err, "Failed to create dummy directory %s", fullPath)
	return fullPath
}

// ReadFile returns the content of path as a string, failing the test on error.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err, "Failed to read %s", path)
	return string(content)
}

// CarsJSON is the sample document used across CLI tests.
const CarsJSON = `[
  {"carModel": "Audi", "price": 0, "color": "blue"},
  {"carModel": "BMW", "price": 15000, "color": "red"}
]`

// CarsCSV is the default rendering of CarsJSON.
const CarsCSV = "\"carModel\",\"price\",\"color\"\n\"Audi\",\"0\",\"blue\"\n\"BMW\",\"15000\",\"red\""
