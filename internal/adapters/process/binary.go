package process

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ResolveBinary picks the executable for a node tool. An explicit override
// wins, then the project's node_modules/.bin, then whatever is on PATH.
func ResolveBinary(projectDir, override, name string) string {
	if override != "" {
		if !filepath.IsAbs(override) && strings.ContainsAny(override, `/\`) {
			return filepath.Join(projectDir, override)
		}
		return override
	}

	local := filepath.Join(projectDir, "node_modules", ".bin", name)
	if runtime.GOOS == "windows" {
		local += ".cmd"
	}
	if info, err := os.Stat(local); err == nil && !info.IsDir() {
		return local
	}
	return name
}
