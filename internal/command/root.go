package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/3-lines-studio/spark/internal/adapters/cli"
	"github.com/3-lines-studio/spark/internal/core"
	"github.com/3-lines-studio/spark/internal/logging"
	"github.com/3-lines-studio/spark/internal/usecase"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// Config carries what the embedding program controls. Options are layered
// over the project config file.
type Config struct {
	Options core.PluginOptions
	WorkDir string
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *zerolog.Logger
}

type app struct {
	cfg Config
	out *cli.Output
	log zerolog.Logger

	build func(ctx context.Context, env *environment, input usecase.BuildInput) error
	serve func(ctx context.Context, env *environment, input usecase.ServeInput) error
}

func newApp(cfg Config) *app {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}

	log := logging.New()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	a := &app{
		cfg: cfg,
		out: cli.NewOutputTo(cfg.Stdout, cfg.Stderr, !color.NoColor && cfg.Stdout == os.Stdout),
		log: log,
	}
	a.build = a.runBuild
	a.serve = a.runServe
	return a
}

func NewRootCommand(cfg Config) *cobra.Command {
	return newRootCommand(newApp(cfg))
}

func newRootCommand(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "spark",
		Short: "Build and serve Electron apps from a frontend project",
		Long: `spark bundles the Electron main process with esbuild, drives the
project's own frontend build for the renderer and packages the result
with electron-builder.

Project settings are read from spark.yaml, spark.yml or spark.toml under
pluginOptions.electronBuilder.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(versionLine() + "\n")
	rootCmd.SetOut(a.cfg.Stdout)
	rootCmd.SetErr(a.cfg.Stderr)

	rootCmd.AddCommand(newBuildCommand(a))
	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, cfg Config, args []string) int {
	a := newApp(cfg)
	return a.execute(ctx, args)
}

func (a *app) execute(ctx context.Context, args []string) int {
	rootCmd := newRootCommand(a)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		a.out.PrintError("%v", err)
	}
	return ExitCode(err)
}

// Build runs build:electron without the command line.
func Build(ctx context.Context, cfg Config, args []string) error {
	a := newApp(cfg)
	env, err := a.loadEnvironment()
	if err != nil {
		return err
	}
	return a.build(ctx, env, usecase.BuildInput{Settings: env.settings, Args: args})
}

// Serve runs serve:electron without the command line.
func Serve(ctx context.Context, cfg Config, input usecase.ServeInput) error {
	a := newApp(cfg)
	env, err := a.loadEnvironment()
	if err != nil {
		return err
	}
	return stopped(a.serve(ctx, env, input))
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

func versionLine() string {
	return fmt.Sprintf("spark version %s (built %s, %s, %s/%s)", Version, BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH)
}

func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the spark version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionLine())
		},
	}
}
