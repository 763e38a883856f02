package process

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"strings"
)

// TSC runs the TypeScript compiler in check-only mode.
type TSC struct {
	binary string
}

func NewTSC(binary string) *TSC {
	return &TSC{binary: binary}
}

func (t *TSC) Check(ctx context.Context, projectDir string) ([]string, error) {
	args := []string{"--noEmit", "--pretty", "false", "-p", filepath.Join(projectDir, "tsconfig.json")}

	cmd := exec.CommandContext(ctx, t.binary, args...)
	cmd.Dir = projectDir
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, err
	}

	diagnostics := parseDiagnostics(string(output))
	if len(diagnostics) == 0 {
		return []string{strings.TrimSpace(err.Error())}, nil
	}
	return diagnostics, nil
}

func parseDiagnostics(output string) []string {
	var out []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		// Continuation lines belong to the previous diagnostic.
		if len(out) > 0 && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) {
			out[len(out)-1] += "\n" + line
			continue
		}
		out = append(out, line)
	}
	return out
}
