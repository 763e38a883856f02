package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// writeTempJSON writes v to a fresh temp directory and returns the file path
// and a cleanup func that removes the directory.
func writeTempJSON(name string, v any) (string, func(), error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode %s: %w", name, err)
	}

	tempDir, err := os.MkdirTemp("", "spark-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	path := filepath.Join(tempDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		os.RemoveAll(tempDir)
		return "", nil, fmt.Errorf("failed to write %s: %w", name, err)
	}

	cleanup := func() {
		os.RemoveAll(tempDir)
	}
	return path, cleanup, nil
}
