package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/3-lines-studio/spark/internal/adapters/cli"
	"github.com/3-lines-studio/spark/internal/core"
)

type BuildInput struct {
	Settings core.Settings
	// Args are the raw command-line arguments after the command name.
	Args      []string
	Dashboard bool
}

type BuildOutput struct {
	Success bool
	Error   error
	Stats   *core.Stats
}

type BuildService struct {
	renderer RendererBuilder
	compiler Compiler
	packager Packager
	fs       FileSystem
	cli      CLIOutput
	log      zerolog.Logger
}

func NewBuildService(renderer RendererBuilder, compiler Compiler, packager Packager, fs FileSystem, cli CLIOutput, log zerolog.Logger) *BuildService {
	return &BuildService{
		renderer: renderer,
		compiler: compiler,
		packager: packager,
		fs:       fs,
		cli:      cli,
		log:      log,
	}
}

func (s *BuildService) Build(ctx context.Context, input BuildInput) BuildOutput {
	settings := input.Settings

	args := core.StripModeFlag(input.Args)
	dashboard, args := core.ExtractBoolFlag(args, "--dashboard")
	dashboard = dashboard || input.Dashboard

	builderArgs, err := core.ParseBuilderArgs(args)
	if err != nil {
		return BuildOutput{Success: false, Error: err}
	}
	s.log.Debug().
		Strs("platforms", builderArgs.Platforms()).
		Strs("archs", builderArgs.Archs).
		Strs("args", builderArgs.Raw).
		Msg("electron-builder arguments")

	report := cli.NewBuildReportTo(s.cli, s.cli.Out(), s.cli.ErrOut(), settings.OutputDir)

	s.cli.PrintHeader("Bundling render process:")
	stepRenderer := report.StartStep(sourceRenderer)
	req := core.NewRendererBuildRequest(settings, dashboard)
	if err := s.renderer.Build(ctx, req); err != nil {
		return s.fail(report, stepRenderer, err)
	}
	if err := s.copyFonts(settings.Abs(req.Dest)); err != nil {
		return s.fail(report, stepRenderer, err)
	}
	report.EndStep(stepRenderer, true, "")

	s.cli.PrintHeader("Bundling main process:")
	stepMain := report.StartStep(sourceMain)
	cfg := core.NewMainConfig(settings, core.MainConfigInput{Mode: core.ModeProduction})
	stats, err := s.compiler.Compile(ctx, cfg)
	addCompileResults(report, stats, err)
	if err := reportStats(s.cli, stats, err); err != nil {
		report.EndStep(stepMain, false, err.Error())
		report.Render()
		return BuildOutput{Success: false, Error: err, Stats: stats}
	}
	report.EndStep(stepMain, true, "")

	s.cli.PrintHeader("Building app with electron-builder:")
	stepPackager := report.StartStep(sourcePackager)
	merged, err := core.MergeBuilderConfig(core.DefaultBuilderConfig(settings.OutputDir), settings.BuilderOptions)
	if err != nil {
		return s.fail(report, stepPackager, err)
	}
	if err := s.packager.Package(ctx, builderArgs.Raw, merged); err != nil {
		return s.fail(report, stepPackager, err)
	}
	report.EndStep(stepPackager, true, "")

	report.Render()
	s.cli.PrintDone("Build complete!")

	return BuildOutput{Success: true, Stats: stats}
}

const (
	sourceRenderer = "Renderer bundle"
	sourceMain     = "Main process bundle"
	sourcePackager = "electron-builder"
)

// addCompileResults records compiler output in the report. The first line of
// a formatted message is its summary; the rest becomes details.
func addCompileResults(report *cli.BuildReport, stats *core.Stats, err error) {
	var compilerErr *core.CompilerError
	switch {
	case errors.As(err, &compilerErr):
		var details []string
		if compilerErr.Details != "" {
			details = []string{compilerErr.Details}
		}
		report.AddError(sourceMain, compilerErr.Error(), details)
		return
	case err != nil:
		report.AddError(sourceMain, err.Error(), nil)
		return
	case stats == nil:
		return
	}

	for _, msg := range stats.Errors {
		summary, details := splitMessage(msg)
		report.AddError(sourceMain, summary, details)
	}
	for _, msg := range stats.Warnings {
		summary, details := splitMessage(msg)
		report.AddWarning(sourceMain, summary, details)
	}
}

func splitMessage(msg string) (string, []string) {
	lines := lo.Filter(strings.Split(msg, "\n"), func(line string, _ int) bool {
		return strings.TrimSpace(line) != ""
	})
	if len(lines) == 0 {
		return msg, nil
	}
	details := lo.Map(lines[1:], func(line string, _ int) string {
		return strings.TrimSpace(line)
	})
	return strings.TrimSpace(lines[0]), details
}

// copyFonts mirrors <dest>/fonts into <dest>/css/fonts, where relative font
// URLs in the extracted CSS point when loaded from the file system.
func (s *BuildService) copyFonts(dest string) error {
	fonts := filepath.Join(dest, "fonts")
	if !s.fs.DirExists(fonts) {
		return nil
	}
	target := filepath.Join(dest, "css", "fonts")
	if err := s.fs.CopyDir(fonts, target); err != nil {
		return fmt.Errorf("failed to copy fonts: %w", err)
	}
	s.log.Debug().Str("from", fonts).Str("to", target).Msg("copied fonts")
	return nil
}

func (s *BuildService) fail(report *cli.BuildReport, step *cli.BuildStep, err error) BuildOutput {
	report.AddError(step.Name, err.Error(), nil)
	report.EndStep(step, false, err.Error())
	report.Render()
	return BuildOutput{Success: false, Error: err}
}
