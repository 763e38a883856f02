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

// RendererCommand runs the host frontend build command.
type RendererCommand struct {
	projectDir string
	command    []string
	stdout     io.Writer
	stderr     io.Writer
	log        zerolog.Logger
}

func NewRendererCommand(projectDir string, command []string, log zerolog.Logger) *RendererCommand {
	return &RendererCommand{
		projectDir: projectDir,
		command:    command,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		log:        log,
	}
}

func (r *RendererCommand) Build(ctx context.Context, req core.RendererRequest) error {
	if len(r.command) == 0 {
		return fmt.Errorf("renderer build command is empty")
	}

	configPath, cleanup, err := writeTempJSON("renderer-config.json", req.Config)
	if err != nil {
		return err
	}
	defer cleanup()

	args := append(append([]string{}, r.command[1:]...), rendererArgs(req)...)

	cmd := exec.CommandContext(ctx, r.command[0], args...)
	cmd.Dir = r.projectDir
	cmd.Env = rendererEnv(req, configPath)
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	r.log.Debug().Str("command", r.command[0]).Strs("args", args).Msg("running renderer build")

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("renderer build failed: %w", err)
	}
	return nil
}

func rendererArgs(req core.RendererRequest) []string {
	var args []string
	if req.Dest != "" {
		args = append(args, "--dest", req.Dest)
	}
	if req.Modern {
		args = append(args, "--modern")
	}
	if req.Dashboard {
		args = append(args, "--dashboard")
	}
	return args
}

func rendererEnv(req core.RendererRequest, configPath string) []string {
	var extra map[string]string
	if req.Config != nil {
		extra = req.Config.Env
	}
	return env.Child(
		extra,
		env.ForTarget(req.Target),
		map[string]string{env.RendererConfig: configPath},
	)
}
