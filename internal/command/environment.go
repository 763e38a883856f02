package command

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/3-lines-studio/spark/internal/config"
	"github.com/3-lines-studio/spark/internal/core"
)

type environment struct {
	settings   core.Settings
	configPath string
}

// loadEnvironment resolves the project settings: config file first, then the
// options the embedding program passed in.
func (a *app) loadEnvironment() (*environment, error) {
	projectDir := a.cfg.WorkDir
	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		projectDir = wd
	}
	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	fileOpts, path, err := config.Load(projectDir)
	if err != nil {
		return nil, err
	}
	opts, err := core.MergeOptions(fileOpts, a.cfg.Options)
	if err != nil {
		return nil, err
	}

	caps, err := config.DetectCapabilities(projectDir)
	if err != nil {
		return nil, err
	}

	settings := core.Resolve(opts, caps, projectDir)
	a.log.Debug().
		Str("project", projectDir).
		Str("config", path).
		Str("main", settings.MainProcessFile).
		Bool("typescript", settings.UsesTypeScript).
		Str("output", settings.OutputDir).
		Msg("resolved settings")

	return &environment{settings: settings, configPath: path}, nil
}
