package core

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/samber/lo"
)

const (
	DefaultOutputDir        = "dist_electron"
	DefaultMainFileJS       = "src/background.js"
	DefaultMainFileTS       = "src/background.ts"
	DefaultRendererBuild    = "npx vue-cli-service build"
	DefaultRendererServe    = "npx vue-cli-service serve"
	DefaultDevServerTimeout = 60 * time.Second

	BundledDir     = "bundled"
	MainEntryName  = "background"
	MainBundleFile = "background.js"
	PublicDir      = "public"
)

type MainProcessHook func(*BundleConfig) *BundleConfig

type RendererProcessHook func(*RendererConfig) *RendererConfig

// PluginOptions mirrors the pluginOptions.electronBuilder section of the
// project config file. Hooks can only be set from Go code.
type PluginOptions struct {
	OutputDir                    string         `yaml:"outputDir" toml:"outputDir"`
	MainProcessFile              string         `yaml:"mainProcessFile" toml:"mainProcessFile"`
	DisableMainProcessTypescript bool           `yaml:"disableMainProcessTypescript" toml:"disableMainProcessTypescript"`
	MainProcessTypeChecking      bool           `yaml:"mainProcessTypeChecking" toml:"mainProcessTypeChecking"`
	MainProcessWatch             []string       `yaml:"mainProcessWatch" toml:"mainProcessWatch"`
	BuilderOptions               map[string]any `yaml:"builderOptions" toml:"builderOptions"`
	RendererBuildCommand         string         `yaml:"rendererBuildCommand" toml:"rendererBuildCommand"`
	RendererServeCommand         string         `yaml:"rendererServeCommand" toml:"rendererServeCommand"`
	ElectronPath                 string         `yaml:"electronPath" toml:"electronPath"`
	BuilderPath                  string         `yaml:"builderPath" toml:"builderPath"`
	DevServerTimeout             string         `yaml:"devServerTimeout" toml:"devServerTimeout"`

	ChainMainProcess     MainProcessHook     `yaml:"-" toml:"-"`
	ChainRendererProcess RendererProcessHook `yaml:"-" toml:"-"`
}

type Capabilities struct {
	TypeScript bool
}

type Settings struct {
	ProjectDir           string
	OutputDir            string
	MainProcessFile      string
	UsesTypeScript       bool
	TypeChecking         bool
	WatchPaths           []string
	BuilderOptions       map[string]any
	RendererBuildCommand []string
	RendererServeCommand []string
	ElectronPath         string
	BuilderPath          string
	DevServerTimeout     time.Duration
	ChainMainProcess     MainProcessHook
	ChainRendererProcess RendererProcessHook
}

func Resolve(opts PluginOptions, caps Capabilities, projectDir string) Settings {
	usesTypeScript := caps.TypeScript && !opts.DisableMainProcessTypescript

	mainFile := opts.MainProcessFile
	if mainFile == "" {
		mainFile = DefaultMainFileJS
		if usesTypeScript {
			mainFile = DefaultMainFileTS
		}
	}

	outputDir := lo.Ternary(opts.OutputDir != "", opts.OutputDir, DefaultOutputDir)

	timeout := DefaultDevServerTimeout
	if opts.DevServerTimeout != "" {
		if d, err := time.ParseDuration(opts.DevServerTimeout); err == nil && d > 0 {
			timeout = d
		}
	}

	chainMain := opts.ChainMainProcess
	if chainMain == nil {
		chainMain = func(c *BundleConfig) *BundleConfig { return c }
	}
	chainRenderer := opts.ChainRendererProcess
	if chainRenderer == nil {
		chainRenderer = func(c *RendererConfig) *RendererConfig { return c }
	}

	builderOptions := opts.BuilderOptions
	if builderOptions == nil {
		builderOptions = map[string]any{}
	}

	return Settings{
		ProjectDir:           projectDir,
		OutputDir:            outputDir,
		MainProcessFile:      mainFile,
		UsesTypeScript:       usesTypeScript,
		TypeChecking:         opts.MainProcessTypeChecking,
		WatchPaths:           lo.Uniq(append([]string{mainFile}, opts.MainProcessWatch...)),
		BuilderOptions:       builderOptions,
		RendererBuildCommand: splitCommand(opts.RendererBuildCommand, DefaultRendererBuild),
		RendererServeCommand: splitCommand(opts.RendererServeCommand, DefaultRendererServe),
		ElectronPath:         opts.ElectronPath,
		BuilderPath:          opts.BuilderPath,
		DevServerTimeout:     timeout,
		ChainMainProcess:     chainMain,
		ChainRendererProcess: chainRenderer,
	}
}

// Abs resolves a project-relative path against the project directory.
func (s Settings) Abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.ProjectDir, path)
}

func (s Settings) BundledDir() string {
	return filepath.ToSlash(filepath.Join(s.OutputDir, BundledDir))
}

// MergeOptions layers override on top of base. Zero values in override never
// clear a value set in base.
func MergeOptions(base, override PluginOptions) (PluginOptions, error) {
	merged := base
	if err := mergo.Merge(&merged, override, mergo.WithOverride); err != nil {
		return PluginOptions{}, fmt.Errorf("failed to merge plugin options: %w", err)
	}
	return merged, nil
}

func splitCommand(command, fallback string) []string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return strings.Fields(fallback)
	}
	return fields
}
