package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3-lines-studio/spark/internal/adapters/esbuild"
	"github.com/3-lines-studio/spark/internal/adapters/fs"
	"github.com/3-lines-studio/spark/internal/core"
)

func writeProjectFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func buildSettings(t *testing.T, opts core.PluginOptions) core.Settings {
	t.Helper()
	dir := t.TempDir()
	writeProjectFile(t, dir, "src/main.js", "const { app } = require('electron')\napp.whenReady().then(() => console.log(process.env.NODE_ENV))\n")
	return core.Resolve(opts, core.Capabilities{}, dir)
}

func newTestBuildService(renderer *fakeRenderer, compiler Compiler, packager *fakePackager, out *fakeOutput) *BuildService {
	return NewBuildService(renderer, compiler, packager, fs.NewOSFileSystem(), out, zerolog.Nop())
}

func TestBuildElectron(t *testing.T) {
	settings := buildSettings(t, core.PluginOptions{
		OutputDir:       "out",
		MainProcessFile: "src/main.js",
		BuilderOptions: map[string]any{
			"appId":       "com.example.app",
			"directories": map[string]any{"buildResources": "build"},
		},
	})

	renderer := &fakeRenderer{onBuild: func(req core.RendererRequest) error {
		writeProjectFile(t, settings.ProjectDir, filepath.Join(req.Dest, "index.html"), "<html></html>")
		writeProjectFile(t, settings.ProjectDir, filepath.Join(req.Dest, "fonts", "icons.woff"), "font")
		return nil
	}}
	packager := &fakePackager{}
	out := &fakeOutput{}
	compiler := esbuild.NewCompiler(settings.ProjectDir, nil, zerolog.Nop())
	service := newTestBuildService(renderer, compiler, packager, out)

	result := service.Build(context.Background(), BuildInput{
		Settings: settings,
		Args:     []string{"--mode", "production", "--linux", "--dashboard", "--config", "custom.yml"},
	})

	require.NoError(t, result.Error)
	require.True(t, result.Success)

	require.Len(t, renderer.requests, 1)
	req := renderer.requests[0]
	assert.Equal(t, core.TargetElectron, req.Target)
	assert.Equal(t, core.ModeProduction, req.Mode)
	assert.Equal(t, "out/bundled", req.Dest)
	assert.True(t, req.Dashboard)

	assert.FileExists(t, filepath.Join(settings.ProjectDir, "out", "bundled", "background.js"))
	assert.FileExists(t, filepath.Join(settings.ProjectDir, "out", "bundled", "css", "fonts", "icons.woff"))

	require.Equal(t, 1, packager.calls)
	assert.Equal(t, []string{"--linux"}, packager.args)
	assert.Equal(t, "com.example.app", packager.config["appId"])
	assert.Equal(t, map[string]any{"output": "out", "buildResources": "build"}, packager.config["directories"])
	assert.Contains(t, packager.config["files"], "out/bundled/**/*")

	assert.True(t, out.Contains("Build complete!"))
	assert.Contains(t, out.out.String(), "Build complete in")
	assert.Contains(t, out.out.String(), "Output: out")
	assert.Empty(t, out.errOut.String())
}

func TestBuildElectronWithoutFonts(t *testing.T) {
	settings := buildSettings(t, core.PluginOptions{MainProcessFile: "src/main.js"})
	packager := &fakePackager{}
	service := newTestBuildService(&fakeRenderer{}, &fakeCompiler{}, packager, &fakeOutput{})

	result := service.Build(context.Background(), BuildInput{Settings: settings})

	require.NoError(t, result.Error)
	assert.NoDirExists(t, filepath.Join(settings.ProjectDir, "dist_electron", "bundled", "css"))
	assert.Equal(t, 1, packager.calls)
	assert.Empty(t, packager.args)
}

func TestBuildElectronUsesConfiguredDashboard(t *testing.T) {
	settings := buildSettings(t, core.PluginOptions{MainProcessFile: "src/main.js"})
	renderer := &fakeRenderer{}
	service := newTestBuildService(renderer, &fakeCompiler{}, &fakePackager{}, &fakeOutput{})

	result := service.Build(context.Background(), BuildInput{Settings: settings, Dashboard: true})

	require.NoError(t, result.Error)
	require.Len(t, renderer.requests, 1)
	assert.True(t, renderer.requests[0].Dashboard)
}

func TestBuildElectronFailures(t *testing.T) {
	rendererErr := errors.New("renderer build failed: exit status 1")
	packagerErr := errors.New("electron-builder failed: exit status 1")

	tests := []struct {
		name         string
		renderer     *fakeRenderer
		compiler     *fakeCompiler
		packager     *fakePackager
		wantCompiles int
		wantPackages int
		wantReport   []string
		check        func(t *testing.T, err error)
	}{
		{
			name:         "renderer failure stops the build",
			renderer:     &fakeRenderer{onBuild: func(core.RendererRequest) error { return rendererErr }},
			compiler:     &fakeCompiler{},
			packager:     &fakePackager{},
			wantCompiles: 0,
			wantPackages: 0,
			wantReport:   []string{"Errors (1):", "Renderer bundle", "renderer build failed: exit status 1"},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, rendererErr)
			},
		},
		{
			name:     "main process errors skip packaging",
			renderer: &fakeRenderer{},
			compiler: &fakeCompiler{results: []compileResult{
				{stats: &core.Stats{Errors: []string{"src/main.js:1:5: ERROR: Expected \";\"\n    1 | let a b\n      |      ^\n"}}},
			}},
			packager:     &fakePackager{},
			wantCompiles: 1,
			wantPackages: 0,
			wantReport:   []string{"Errors (1):", "Main process bundle", "src/main.js:1:5: ERROR: Expected \";\"", "• 1 | let a b"},
			check: func(t *testing.T, err error) {
				var failed *core.CompileFailedError
				assert.ErrorAs(t, err, &failed)
			},
		},
		{
			name:         "packager failure is reported",
			renderer:     &fakeRenderer{},
			compiler:     &fakeCompiler{},
			packager:     &fakePackager{err: packagerErr},
			wantCompiles: 1,
			wantPackages: 1,
			wantReport:   []string{"Errors (1):", "electron-builder failed: exit status 1"},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, packagerErr)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := buildSettings(t, core.PluginOptions{MainProcessFile: "src/main.js"})
			out := &fakeOutput{}
			service := newTestBuildService(tt.renderer, tt.compiler, tt.packager, out)

			result := service.Build(context.Background(), BuildInput{Settings: settings})

			assert.False(t, result.Success)
			require.Error(t, result.Error)
			tt.check(t, result.Error)
			assert.Equal(t, tt.wantCompiles, tt.compiler.Calls())
			assert.Equal(t, tt.wantPackages, tt.packager.calls)
			for _, want := range tt.wantReport {
				assert.Contains(t, out.errOut.String(), want)
			}
			assert.Contains(t, out.errOut.String(), "Build failed after")
			assert.False(t, out.Contains("Build complete!"))
		})
	}
}

func TestBuildElectronWarningsDoNotFail(t *testing.T) {
	settings := buildSettings(t, core.PluginOptions{MainProcessFile: "src/main.js"})
	compiler := &fakeCompiler{results: []compileResult{
		{stats: &core.Stats{Warnings: []string{"duplicate key \"a\""}}},
	}}
	packager := &fakePackager{}
	out := &fakeOutput{}
	service := newTestBuildService(&fakeRenderer{}, compiler, packager, out)

	result := service.Build(context.Background(), BuildInput{Settings: settings})

	require.NoError(t, result.Error)
	assert.Equal(t, 1, packager.calls)
	assert.Len(t, out.Warnings(), 1)
	assert.Contains(t, out.out.String(), "Warnings (1):")
	assert.Contains(t, out.out.String(), "duplicate key \"a\"")
	assert.Contains(t, out.out.String(), "Build complete in")
	assert.Empty(t, out.errOut.String())
}

func TestBuildElectronReportsCompilerErrorDetails(t *testing.T) {
	settings := buildSettings(t, core.PluginOptions{MainProcessFile: "src/main.js"})
	compiler := &fakeCompiler{results: []compileResult{
		{err: &core.CompilerError{Err: errors.New("bundle config has no entry"), Details: "the main process hook must keep at least one entry"}},
	}}
	out := &fakeOutput{}
	service := newTestBuildService(&fakeRenderer{}, compiler, &fakePackager{}, out)

	result := service.Build(context.Background(), BuildInput{Settings: settings})

	var compilerErr *core.CompilerError
	require.ErrorAs(t, result.Error, &compilerErr)
	assert.Contains(t, out.errOut.String(), "bundle config has no entry")
	assert.Contains(t, out.errOut.String(), "• the main process hook must keep at least one entry")
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name        string
		msg         string
		wantSummary string
		wantDetails []string
	}{
		{name: "single line", msg: "boom", wantSummary: "boom", wantDetails: []string{}},
		{
			name:        "formatted esbuild message",
			msg:         "src/main.js:1:5: ERROR: Expected \";\"\n    1 | let a b\n\n      |      ^\n",
			wantSummary: "src/main.js:1:5: ERROR: Expected \";\"",
			wantDetails: []string{"1 | let a b", "|      ^"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, details := splitMessage(tt.msg)
			assert.Equal(t, tt.wantSummary, summary)
			assert.Equal(t, tt.wantDetails, details)
		})
	}
}

func TestBuildElectronProductionConfig(t *testing.T) {
	settings := buildSettings(t, core.PluginOptions{MainProcessFile: "src/main.js"})
	compiler := &fakeCompiler{}
	service := newTestBuildService(&fakeRenderer{}, compiler, &fakePackager{}, &fakeOutput{})

	result := service.Build(context.Background(), BuildInput{Settings: settings})

	require.NoError(t, result.Error)
	cfg := compiler.Config(0)
	assert.Equal(t, core.ModeProduction, cfg.Mode)
	assert.True(t, cfg.Minify)
	assert.Equal(t, filepath.Join(settings.ProjectDir, "dist_electron", "bundled"), cfg.OutputPath)
	assert.Equal(t, "production", cfg.Env["NODE_ENV"])
}

func TestBuildElectronInvalidArgs(t *testing.T) {
	settings := buildSettings(t, core.PluginOptions{MainProcessFile: "src/main.js"})
	renderer := &fakeRenderer{}
	service := newTestBuildService(renderer, &fakeCompiler{}, &fakePackager{}, &fakeOutput{})

	result := service.Build(context.Background(), BuildInput{Settings: settings, Args: []string{"--publish"}})

	require.Error(t, result.Error)
	assert.Empty(t, renderer.requests)
}
