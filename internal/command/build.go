package command

import (
	"context"
	"slices"

	"github.com/spf13/cobra"

	"github.com/3-lines-studio/spark/internal/adapters/esbuild"
	"github.com/3-lines-studio/spark/internal/adapters/fs"
	"github.com/3-lines-studio/spark/internal/adapters/process"
	"github.com/3-lines-studio/spark/internal/usecase"
)

func newBuildCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "build:electron [electron-builder options]",
		Short: "Build the renderer and main process, then package with electron-builder",
		Long: `Build the renderer with the project's frontend build, bundle the main
process and run electron-builder on the result.

Every argument except --mode and --dashboard is passed to electron-builder.

Examples:
  spark build:electron
  spark build:electron --linux deb --x64
  spark build:electron --mac --publish never`,
		// electron-builder owns the argument schema.
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if wantsHelp(args) {
				return cmd.Help()
			}

			env, err := a.loadEnvironment()
			if err != nil {
				return err
			}
			return a.build(cmd.Context(), env, usecase.BuildInput{
				Settings: env.settings,
				Args:     args,
			})
		},
	}
}

func wantsHelp(args []string) bool {
	return slices.Contains(args, "-h") || slices.Contains(args, "--help")
}

func (a *app) runBuild(ctx context.Context, env *environment, input usecase.BuildInput) error {
	settings := env.settings
	fileSystem := fs.NewOSFileSystem()

	var checker esbuild.TypeChecker
	if settings.UsesTypeScript && settings.TypeChecking {
		checker = process.NewTSC(process.ResolveBinary(settings.ProjectDir, "", "tsc"))
	}

	service := usecase.NewBuildService(
		process.NewRendererCommand(settings.ProjectDir, settings.RendererBuildCommand, a.log),
		esbuild.NewCompiler(settings.ProjectDir, checker, a.log),
		process.NewElectronBuilder(
			settings.ProjectDir,
			process.ResolveBinary(settings.ProjectDir, settings.BuilderPath, "electron-builder"),
			settings.OutputDir,
			fileSystem,
			a.log,
		),
		fileSystem,
		a.out,
		a.log,
	)

	result := service.Build(ctx, input)
	return result.Error
}
