package config

import (
	"bytes"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/3-lines-studio/spark/internal/core"
)

const EnvConfigPath = "SPARK_CONFIG"

var DefaultFileNames = []string{"spark.yaml", "spark.yml", "spark.toml"}

const (
	typeScriptPlugin          = "@vue/cli-plugin-typescript"
	communityTypeScriptPlugin = "vue-cli-plugin-typescript"
)

type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid config file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

type fileReader interface {
	ReadFile(path string) ([]byte, error)
}

type osReader struct{}

func (osReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

type projectFile struct {
	PluginOptions struct {
		ElectronBuilder core.PluginOptions `yaml:"electronBuilder" toml:"electronBuilder"`
	} `yaml:"pluginOptions" toml:"pluginOptions"`
}

type Loader struct {
	fs fileReader
}

func NewLoader(fs fileReader) *Loader {
	if fs == nil {
		fs = osReader{}
	}
	return &Loader{fs: fs}
}

// Load reads plugin options for projectDir. A project without a config file
// gets zero options and an empty path.
func Load(projectDir string) (core.PluginOptions, string, error) {
	return NewLoader(nil).Load(projectDir)
}

func (l *Loader) Load(projectDir string) (core.PluginOptions, string, error) {
	if explicit := os.Getenv(EnvConfigPath); explicit != "" {
		path := explicit
		if !filepath.IsAbs(path) {
			path = filepath.Join(projectDir, path)
		}
		data, err := l.fs.ReadFile(path)
		if err != nil {
			return core.PluginOptions{}, "", fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		opts, err := decode(path, data)
		return opts, path, err
	}

	for _, name := range DefaultFileNames {
		path := filepath.Join(projectDir, name)
		data, err := l.fs.ReadFile(path)
		if err != nil {
			if errors.Is(err, iofs.ErrNotExist) {
				continue
			}
			return core.PluginOptions{}, "", fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		opts, err := decode(path, data)
		return opts, path, err
	}

	return core.PluginOptions{}, "", nil
}

func decode(path string, data []byte) (core.PluginOptions, error) {
	var file projectFile

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &file)
	default:
		if len(bytes.TrimSpace(data)) == 0 {
			return core.PluginOptions{}, nil
		}
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return core.PluginOptions{}, &ParseError{Path: path, Err: err}
	}

	opts := file.PluginOptions.ElectronBuilder
	if opts.DevServerTimeout != "" {
		if _, err := time.ParseDuration(opts.DevServerTimeout); err != nil {
			return core.PluginOptions{}, &ParseError{Path: path, Err: fmt.Errorf("devServerTimeout: %w", err)}
		}
	}
	return opts, nil
}

// DetectCapabilities inspects package.json for the plugins that change how
// the main process is built.
func DetectCapabilities(projectDir string) (core.Capabilities, error) {
	return NewLoader(nil).DetectCapabilities(projectDir)
}

func (l *Loader) DetectCapabilities(projectDir string) (core.Capabilities, error) {
	path := filepath.Join(projectDir, "package.json")
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return core.Capabilities{}, nil
		}
		return core.Capabilities{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return core.Capabilities{}, fmt.Errorf("invalid JSON in %s", path)
	}

	typeScript := false
	for _, deps := range gjson.GetManyBytes(data, "dependencies", "devDependencies") {
		deps.ForEach(func(name, _ gjson.Result) bool {
			typeScript = isTypeScriptPlugin(name.String())
			return !typeScript
		})
		if typeScript {
			break
		}
	}
	return core.Capabilities{TypeScript: typeScript}, nil
}

// isTypeScriptPlugin accepts the official plugin, the community package name
// and scoped community packages.
func isTypeScriptPlugin(name string) bool {
	return name == typeScriptPlugin ||
		name == communityTypeScriptPlugin ||
		(strings.HasPrefix(name, "@") && strings.HasSuffix(name, "/"+communityTypeScriptPlugin))
}
