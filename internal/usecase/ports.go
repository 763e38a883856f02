package usecase

import (
	"context"
	"io"

	"github.com/3-lines-studio/spark/internal/adapters/fs"
	"github.com/3-lines-studio/spark/internal/core"
)

// RendererBuilder runs the host frontend build for the renderer bundle.
type RendererBuilder interface {
	Build(ctx context.Context, req core.RendererRequest) error
}

// DevServer starts the host dev server and reports the URL it listens on.
type DevServer interface {
	Start(ctx context.Context, req core.RendererRequest) (url string, stop func() error, err error)
}

type Compiler interface {
	Compile(ctx context.Context, cfg *core.BundleConfig) (*core.Stats, error)
}

type Packager interface {
	Package(ctx context.Context, args []string, config map[string]any) error
}

type Launcher interface {
	Launch(ctx context.Context, spec core.LaunchSpec) (core.Process, error)
}

type Watcher interface {
	Events() <-chan string
	Errors() <-chan error
	Close() error
}

type WatcherFactory func(projectDir string, patterns []string) (Watcher, error)

type CLIOutput interface {
	PrintHeader(msg string)
	PrintStep(emoji, msg string, args ...any)
	PrintSuccess(msg string, args ...any)
	PrintWarning(msg string, args ...any)
	PrintError(msg string, args ...any)
	PrintFile(path string)
	PrintDone(msg string)
	Println(line string)
	Green(text string) string
	Yellow(text string) string
	Red(text string) string
	Gray(text string) string
	Out() io.Writer
	ErrOut() io.Writer
}

type FileSystem = fs.FileSystem
