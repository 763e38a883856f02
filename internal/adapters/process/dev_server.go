package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"regexp"
	"sync"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/rs/zerolog"

	"github.com/3-lines-studio/spark/internal/core"
)

var (
	ErrDevServerTimeout = errors.New("dev server did not report its URL in time")
	ErrDevServerExited  = errors.New("dev server exited before reporting its URL")

	devServerURLPattern = regexp.MustCompile(`https?://(?:localhost|127\.0\.0\.1|0\.0\.0\.0|\[::1\])(?::\d+)?(?:/[^\s]*)?`)
)

// DevServerCommand runs the host serve command and waits for the local URL it
// prints on stdout.
type DevServerCommand struct {
	projectDir string
	command    []string
	timeout    time.Duration
	stdout     io.Writer
	stderr     io.Writer
	log        zerolog.Logger
}

func NewDevServerCommand(projectDir string, command []string, timeout time.Duration, log zerolog.Logger) *DevServerCommand {
	return &DevServerCommand{
		projectDir: projectDir,
		command:    command,
		timeout:    timeout,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		log:        log,
	}
}

func (d *DevServerCommand) Start(ctx context.Context, req core.RendererRequest) (string, func() error, error) {
	if len(d.command) == 0 {
		return "", nil, fmt.Errorf("renderer serve command is empty")
	}

	configPath, cleanup, err := writeTempJSON("renderer-config.json", req.Config)
	if err != nil {
		return "", nil, err
	}

	scanner := newURLScanner(d.stdout)
	args := append(append([]string{}, d.command[1:]...), rendererArgs(req)...)

	cmd := exec.Command(d.command[0], args...)
	cmd.Dir = d.projectDir
	cmd.Env = rendererEnv(req, configPath)
	cmd.Stdout = scanner
	cmd.Stderr = d.stderr
	// Grandchildren of npx may keep stdout open after a kill.
	cmd.WaitDelay = time.Second

	d.log.Debug().Str("command", d.command[0]).Strs("args", args).Msg("starting dev server")

	proc, err := startChild(cmd)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to start dev server: %w", err)
	}

	var once sync.Once
	stop := func() error {
		var stopErr error
		once.Do(func() {
			stopErr = proc.Kill()
			cleanup()
		})
		return stopErr
	}

	timer := time.NewTimer(d.timeout)
	defer timer.Stop()

	select {
	case found := <-scanner.urls:
		d.log.Debug().Str("url", found).Int("pid", proc.Pid()).Msg("dev server ready")
		return found, stop, nil
	case <-proc.Done():
		_ = stop()
		if exitErr := proc.ExitErr(); exitErr != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrDevServerExited, exitErr)
		}
		return "", nil, ErrDevServerExited
	case <-timer.C:
		_ = stop()
		return "", nil, fmt.Errorf("%w (%s)", ErrDevServerTimeout, d.timeout)
	case <-ctx.Done():
		_ = stop()
		return "", nil, ctx.Err()
	}
}

// urlScanner mirrors writes to out and reports the first local URL seen on a
// complete line.
type urlScanner struct {
	out   io.Writer
	urls  chan string
	mu    sync.Mutex
	buf   []byte
	found bool
}

func newURLScanner(out io.Writer) *urlScanner {
	return &urlScanner{
		out:  out,
		urls: make(chan string, 1),
	}
}

func (s *urlScanner) Write(p []byte) (int, error) {
	s.mu.Lock()
	if !s.found {
		s.buf = append(s.buf, p...)
		for {
			idx := bytes.IndexByte(s.buf, '\n')
			if idx < 0 {
				break
			}
			line := string(s.buf[:idx])
			s.buf = s.buf[idx+1:]
			if found, ok := matchDevServerURL(line); ok {
				s.found = true
				s.buf = nil
				s.urls <- found
				break
			}
		}
	}
	s.mu.Unlock()

	if s.out == nil {
		return len(p), nil
	}
	return s.out.Write(p)
}

func matchDevServerURL(line string) (string, bool) {
	match := devServerURLPattern.FindString(stripansi.Strip(line))
	if match == "" {
		return "", false
	}
	parsed, err := url.Parse(match)
	if err != nil {
		return "", false
	}
	if parsed.Path == "" {
		parsed.Path = "/"
	}
	return parsed.String(), true
}
