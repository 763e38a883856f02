// Package spark builds and serves Electron apps on top of an existing
// frontend build. The spark binary covers most projects; import the package
// when the main or renderer configuration needs a hook written in Go.
package spark

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/3-lines-studio/spark/internal/command"
	"github.com/3-lines-studio/spark/internal/core"
	"github.com/3-lines-studio/spark/internal/usecase"
)

// Options are layered over the project's spark.yaml. Only ChainMainProcess
// and ChainRendererProcess cannot be set from the file.
type Options = core.PluginOptions

type BundleConfig = core.BundleConfig

type RendererConfig = core.RendererConfig

type Rule = core.Rule

type ServeOptions = usecase.ServeInput

// Main runs the spark command line with os.Args and returns the exit code.
// SIGINT and SIGTERM stop a running serve:electron cleanly.
func Main(opts Options) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return Execute(ctx, opts, os.Args[1:])
}

func Execute(ctx context.Context, opts Options, args []string) int {
	return command.Execute(ctx, command.Config{Options: opts}, args)
}

// Build bundles and packages the project in dir. args are electron-builder
// arguments.
func Build(ctx context.Context, dir string, opts Options, args ...string) error {
	return command.Build(ctx, command.Config{Options: opts, WorkDir: dir}, args)
}

// Serve runs the development loop for the project in dir until the app exits
// or ctx is canceled.
func Serve(ctx context.Context, dir string, opts Options, serve ServeOptions) error {
	return command.Serve(ctx, command.Config{Options: opts, WorkDir: dir}, serve)
}
