package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "spark.yaml", `
pluginOptions:
  electronBuilder:
    outputDir: out
    mainProcessFile: src/main.ts
    mainProcessTypeChecking: true
    mainProcessWatch:
      - src/ipc/**/*.ts
    devServerTimeout: 30s
    builderOptions:
      appId: com.example.app
      directories:
        buildResources: build
  somethingElse:
    ignored: true
`)

	opts, path, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "spark.yaml"), path)
	assert.Equal(t, "out", opts.OutputDir)
	assert.Equal(t, "src/main.ts", opts.MainProcessFile)
	assert.True(t, opts.MainProcessTypeChecking)
	assert.Equal(t, []string{"src/ipc/**/*.ts"}, opts.MainProcessWatch)
	assert.Equal(t, "30s", opts.DevServerTimeout)
	assert.Equal(t, "com.example.app", opts.BuilderOptions["appId"])
	dirs, ok := opts.BuilderOptions["directories"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "build", dirs["buildResources"])
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "spark.toml", `
[pluginOptions.electronBuilder]
outputDir = "release"
disableMainProcessTypescript = true
rendererBuildCommand = "pnpm vite build"

[pluginOptions.electronBuilder.builderOptions]
productName = "Spark"
`)

	opts, path, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "spark.toml"), path)
	assert.Equal(t, "release", opts.OutputDir)
	assert.True(t, opts.DisableMainProcessTypescript)
	assert.Equal(t, "pnpm vite build", opts.RendererBuildCommand)
	assert.Equal(t, "Spark", opts.BuilderOptions["productName"])
}

func TestLoadPrefersYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "spark.yml", "pluginOptions:\n  electronBuilder:\n    outputDir: from-yml\n")
	writeFile(t, dir, "spark.toml", "[pluginOptions.electronBuilder]\noutputDir = \"from-toml\"\n")

	opts, _, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-yml", opts.OutputDir)
}

func TestLoadMissingFile(t *testing.T) {
	opts, path, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Empty(t, opts.OutputDir)
}

func TestLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "spark.yaml", "\n")

	opts, _, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, opts.OutputDir)
}

func TestLoadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config/desktop.yaml", "pluginOptions:\n  electronBuilder:\n    outputDir: desktop\n")
	t.Setenv(EnvConfigPath, "config/desktop.yaml")

	opts, path, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config", "desktop.yaml"), path)
	assert.Equal(t, "desktop", opts.OutputDir)
}

func TestLoadExplicitPathMissing(t *testing.T) {
	t.Setenv(EnvConfigPath, "nope.yaml")

	_, _, err := Load(t.TempDir())
	require.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "malformed yaml", file: "spark.yaml", content: "pluginOptions: [unclosed"},
		{name: "malformed toml", file: "spark.toml", content: "[pluginOptions"},
		{name: "wrong type", file: "spark.yaml", content: "pluginOptions:\n  electronBuilder:\n    mainProcessWatch: 3\n"},
		{name: "bad timeout", file: "spark.yaml", content: "pluginOptions:\n  electronBuilder:\n    devServerTimeout: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, tt.file, tt.content)

			_, _, err := Load(dir)
			require.Error(t, err)

			var parseErr *ParseError
			assert.True(t, errors.As(err, &parseErr))
		})
	}
}

func TestDetectCapabilities(t *testing.T) {
	tests := []struct {
		name        string
		packageJSON string
		want        bool
	}{
		{name: "no typescript plugin", packageJSON: `{"dependencies":{"vue":"^3.0.0"}}`, want: false},
		{name: "plugin in devDependencies", packageJSON: `{"devDependencies":{"@vue/cli-plugin-typescript":"~5.0.0"}}`, want: true},
		{name: "plugin in dependencies", packageJSON: `{"dependencies":{"@vue/cli-plugin-typescript":"~5.0.0"}}`, want: true},
		{name: "plain typescript is not enough", packageJSON: `{"devDependencies":{"typescript":"^5.0.0"}}`, want: false},
		{name: "community plugin name", packageJSON: `{"devDependencies":{"vue-cli-plugin-typescript":"^1.0.0"}}`, want: true},
		{name: "scoped community plugin", packageJSON: `{"dependencies":{"@acme/vue-cli-plugin-typescript":"^1.0.0"}}`, want: true},
		{name: "similar name is not the plugin", packageJSON: `{"devDependencies":{"vue-cli-plugin-typescript-lint":"^1.0.0"}}`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "package.json", tt.packageJSON)

			caps, err := DetectCapabilities(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, caps.TypeScript)
		})
	}
}

func TestDetectCapabilitiesWithoutPackageJSON(t *testing.T) {
	caps, err := DetectCapabilities(t.TempDir())
	require.NoError(t, err)
	assert.False(t, caps.TypeScript)
}

func TestDetectCapabilitiesInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", "{nope")

	_, err := DetectCapabilities(dir)
	require.Error(t, err)
}
