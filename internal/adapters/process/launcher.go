package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/3-lines-studio/spark/internal/adapters/env"
	"github.com/3-lines-studio/spark/internal/core"
)

type ElectronLauncher struct {
	binary string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	log    zerolog.Logger
}

func NewElectronLauncher(binary string, log zerolog.Logger) *ElectronLauncher {
	return &ElectronLauncher{
		binary: binary,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		log:    log,
	}
}

// Launch starts the desktop process. Its lifetime is owned by the caller, so
// ctx is only checked before starting.
func (l *ElectronLauncher) Launch(ctx context.Context, spec core.LaunchSpec) (core.Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := exec.Command(l.binary, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = env.Child(spec.Env)
	cmd.Stdin = l.stdin
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr

	proc, err := startChild(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", l.binary, err)
	}

	l.log.Debug().Int("pid", proc.Pid()).Strs("args", spec.Args).Msg("electron started")
	go func() {
		<-proc.Done()
		l.log.Debug().Int("pid", proc.Pid()).AnErr("exit", proc.ExitErr()).Msg("electron exited")
	}()

	return proc, nil
}
