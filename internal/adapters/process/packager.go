package process

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/3-lines-studio/spark/internal/adapters/fs"
)

const BuilderConfigFile = "builder-config.json"

// ElectronBuilder runs electron-builder with a generated config file.
type ElectronBuilder struct {
	projectDir string
	binary     string
	outputDir  string
	fs         fs.FileSystem
	stdout     io.Writer
	stderr     io.Writer
	log        zerolog.Logger
}

func NewElectronBuilder(projectDir, binary, outputDir string, fileSystem fs.FileSystem, log zerolog.Logger) *ElectronBuilder {
	return &ElectronBuilder{
		projectDir: projectDir,
		binary:     binary,
		outputDir:  outputDir,
		fs:         fileSystem,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		log:        log,
	}
}

func (b *ElectronBuilder) ConfigPath() string {
	path := filepath.Join(b.outputDir, BuilderConfigFile)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(b.projectDir, path)
}

func (b *ElectronBuilder) Package(ctx context.Context, args []string, config map[string]any) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode electron-builder config: %w", err)
	}

	configPath := b.ConfigPath()
	if err := b.fs.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write electron-builder config: %w", err)
	}

	fullArgs := append(append([]string{}, args...), "--config", configPath)

	cmd := exec.CommandContext(ctx, b.binary, fullArgs...)
	cmd.Dir = b.projectDir
	cmd.Stdout = b.stdout
	cmd.Stderr = b.stderr

	b.log.Debug().Str("binary", b.binary).Strs("args", fullArgs).Msg("running electron-builder")

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("electron-builder failed: %w", err)
	}
	return nil
}
