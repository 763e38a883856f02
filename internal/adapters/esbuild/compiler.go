package esbuild

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/3-lines-studio/spark/internal/core"
)

var (
	ErrNoEntry      = errors.New("bundle config has no entry")
	ErrNoOutputPath = errors.New("bundle config has no output path")
)

// TypeChecker reports type errors without emitting code.
type TypeChecker interface {
	Check(ctx context.Context, projectDir string) ([]string, error)
}

type Compiler struct {
	projectDir string
	checker    TypeChecker
	log        zerolog.Logger
}

func NewCompiler(projectDir string, checker TypeChecker, log zerolog.Logger) *Compiler {
	return &Compiler{
		projectDir: projectDir,
		checker:    checker,
		log:        log,
	}
}

func (c *Compiler) Compile(ctx context.Context, cfg *core.BundleConfig) (*core.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts, err := c.buildOptions(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	stats := &core.Stats{Mode: cfg.Mode}

	if rule, ok := cfg.Rule("ts"); ok && !rule.TranspileOnly && c.checker != nil {
		c.log.Debug().Str("project", c.projectDir).Msg("type checking main process")
		diagnostics, err := c.checker.Check(ctx, c.projectDir)
		if err != nil {
			return nil, &core.CompilerError{
				Err:     fmt.Errorf("type checker failed to run: %w", err),
				Details: "main process type checking needs the typescript package installed in the project",
			}
		}
		stats.Errors = append(stats.Errors, diagnostics...)
	}

	c.log.Debug().
		Strs("entries", opts.EntryPoints).
		Str("outfile", opts.Outfile).
		Str("outdir", opts.Outdir).
		Msg("bundling main process")

	result := api.Build(opts)

	stats.Errors = append(stats.Errors, formatMessages(result.Errors, api.ErrorMessage)...)
	stats.Warnings = append(stats.Warnings, formatMessages(result.Warnings, api.WarningMessage)...)
	stats.Outputs = metafileOutputs(result.Metafile)
	stats.Duration = time.Since(start)

	return stats, nil
}

func (c *Compiler) buildOptions(cfg *core.BundleConfig) (api.BuildOptions, error) {
	if cfg == nil || len(cfg.Entries) == 0 {
		return api.BuildOptions{}, &core.CompilerError{Err: ErrNoEntry, Details: "the main process hook must keep at least one entry"}
	}
	if cfg.OutputPath == "" {
		return api.BuildOptions{}, &core.CompilerError{Err: ErrNoOutputPath, Details: "the main process hook must keep an output path"}
	}

	opts := api.BuildOptions{
		Bundle:            true,
		Write:             true,
		Metafile:          true,
		LogLevel:          api.LogLevelSilent,
		AbsWorkingDir:     c.projectDir,
		ResolveExtensions: cfg.Extensions,
		External:          cfg.Externals,
		Define:            defines(cfg),
		Loader:            loaders(cfg.Rules),
	}

	if cfg.Target == core.TargetElectronMain {
		opts.Platform = api.PlatformNode
		opts.Format = api.FormatCommonJS
	} else {
		opts.Platform = api.PlatformBrowser
		opts.Format = api.FormatIIFE
	}

	if cfg.Minify {
		opts.MinifyWhitespace = true
		opts.MinifyIdentifiers = true
		opts.MinifySyntax = true
	}

	switch cfg.Devtool {
	case core.DevtoolSourceMap:
		opts.Sourcemap = api.SourceMapLinked
	case core.DevtoolInlineSourceMap:
		opts.Sourcemap = api.SourceMapInline
	}

	names := cfg.EntryNames()
	var paths []string
	for _, name := range names {
		paths = append(paths, cfg.Entries[name]...)
	}

	if len(paths) == 1 && cfg.OutputFilename != "" {
		opts.EntryPoints = paths
		opts.Outfile = filepath.Join(cfg.OutputPath, cfg.OutputFilename)
		return opts, nil
	}

	opts.Outdir = cfg.OutputPath
	for _, name := range names {
		for _, path := range cfg.Entries[name] {
			opts.EntryPointsAdvanced = append(opts.EntryPointsAdvanced, api.EntryPoint{
				InputPath:  path,
				OutputPath: name,
			})
		}
	}
	return opts, nil
}

func defines(cfg *core.BundleConfig) map[string]string {
	out := make(map[string]string, len(cfg.Define)+len(cfg.Env)+2)
	if cfg.Node.Dirname {
		out["__dirname"] = `"/"`
	}
	if cfg.Node.Filename {
		out["__filename"] = `"/index.js"`
	}
	for key, value := range cfg.Env {
		encoded, _ := json.Marshal(value)
		out["process.env."+key] = string(encoded)
	}
	for key, value := range cfg.Define {
		out[key] = value
	}
	return out
}

func loaders(rules []core.Rule) map[string]api.Loader {
	out := map[string]api.Loader{}
	for _, rule := range rules {
		loader, ok := loaderByName[rule.Loader]
		if !ok {
			continue
		}
		for _, ext := range rule.Extensions {
			out[ext] = loader
		}
	}
	return out
}

var loaderByName = map[string]api.Loader{
	"js":     api.LoaderJS,
	"jsx":    api.LoaderJSX,
	"ts":     api.LoaderTS,
	"tsx":    api.LoaderTSX,
	"json":   api.LoaderJSON,
	"text":   api.LoaderText,
	"file":   api.LoaderFile,
	"copy":   api.LoaderCopy,
	"base64": api.LoaderBase64,
	"binary": api.LoaderBinary,
}

func formatMessages(msgs []api.Message, kind api.MessageKind) []string {
	if len(msgs) == 0 {
		return nil
	}
	formatted := api.FormatMessages(msgs, api.FormatMessagesOptions{
		Kind:  kind,
		Color: false,
	})
	out := make([]string, 0, len(formatted))
	for _, msg := range formatted {
		out = append(out, strings.TrimRight(msg, "\n"))
	}
	return out
}

func metafileOutputs(metafile string) []core.OutputFile {
	if metafile == "" {
		return nil
	}
	var files []core.OutputFile
	gjson.Get(metafile, "outputs").ForEach(func(key, value gjson.Result) bool {
		files = append(files, core.OutputFile{
			Path:  key.String(),
			Bytes: int(value.Get("bytes").Int()),
		})
		return true
	})
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}
