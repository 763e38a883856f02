package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/3-lines-studio/spark/internal/core"
)

type ServeInput struct {
	Debug     bool
	Headless  bool
	Dashboard bool
	// DevServerURL skips starting the host dev server when set.
	DevServerURL string
}

type ServeService struct {
	settings   core.Settings
	devServer  DevServer
	supervisor *Supervisor
	cli        CLIOutput
	log        zerolog.Logger
}

func NewServeService(settings core.Settings, devServer DevServer, supervisor *Supervisor, cli CLIOutput, log zerolog.Logger) *ServeService {
	return &ServeService{
		settings:   settings,
		devServer:  devServer,
		supervisor: supervisor,
		cli:        cli,
		log:        log,
	}
}

// Serve starts the dev server and supervises Electron until the app exits,
// a build fails or ctx is canceled.
func (s *ServeService) Serve(ctx context.Context, input ServeInput) error {
	url := input.DevServerURL
	if url == "" {
		s.cli.PrintHeader("Starting development server:")
		found, stop, err := s.devServer.Start(ctx, core.NewRendererServeRequest(s.settings, input.Dashboard))
		if err != nil {
			return fmt.Errorf("failed to start dev server: %w", err)
		}
		defer func() {
			if err := stop(); err != nil {
				s.log.Warn().Err(err).Msg("failed to stop dev server")
			}
		}()
		url = found
	}
	s.log.Debug().Str("url", url).Msg("dev server ready")

	return s.supervisor.Run(ctx, SupervisorInput{
		Debug:        input.Debug,
		Headless:     input.Headless,
		DevServerURL: url,
	})
}

type SupervisorInput struct {
	Debug        bool
	Headless     bool
	DevServerURL string
}

// Supervisor rebuilds the main process and restarts Electron whenever a
// watched file changes. Builds run on the loop goroutine so they never
// overlap.
type Supervisor struct {
	settings   core.Settings
	compiler   Compiler
	launcher   Launcher
	newWatcher WatcherFactory
	cli        CLIOutput
	log        zerolog.Logger

	child  *ChildHandle
	exited chan uint64

	mu    sync.Mutex
	state core.SupervisorState
}

func NewSupervisor(settings core.Settings, compiler Compiler, launcher Launcher, newWatcher WatcherFactory, cli CLIOutput, log zerolog.Logger) *Supervisor {
	return &Supervisor{
		settings:   settings,
		compiler:   compiler,
		launcher:   launcher,
		newWatcher: newWatcher,
		cli:        cli,
		log:        log,
		child:      NewChildHandle(),
		exited:     make(chan uint64, 1),
		state:      core.StateIdle,
	}
}

func (s *Supervisor) State() core.SupervisorState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Supervisor) setState(state core.SupervisorState) {
	s.mu.Lock()
	prev := s.state
	s.state = state
	s.mu.Unlock()
	if prev != state {
		s.log.Debug().Str("from", string(prev)).Str("to", string(state)).Msg("supervisor state")
	}
}

func (s *Supervisor) Run(ctx context.Context, input SupervisorInput) error {
	watcher, err := s.newWatcher(s.settings.ProjectDir, s.settings.WatchPaths)
	if err != nil {
		s.setState(core.StateTerminated)
		return fmt.Errorf("failed to watch main process files: %w", err)
	}
	defer watcher.Close()
	defer s.stopChild()

	if err := s.cycle(ctx, input); err != nil {
		return s.terminate(ctx, err)
	}

	for {
		select {
		case <-ctx.Done():
			s.setState(core.StateTerminated)
			return nil

		case gen := <-s.exited:
			if gen != s.child.Generation() {
				continue
			}
			s.setState(core.StateTerminated)
			s.cli.PrintStep("", "Electron exited")
			return nil

		case path, ok := <-watcher.Events():
			if !ok {
				s.setState(core.StateTerminated)
				return nil
			}
			s.log.Info().Str("file", s.relative(path)).Msg("main process file changed, rebuilding")
			s.setState(core.StateRestarting)
			if err := s.cycle(ctx, input); err != nil {
				return s.terminate(ctx, err)
			}

		case err, ok := <-watcher.Errors():
			if ok {
				s.log.Warn().Err(err).Msg("file watcher error")
			}
		}
	}
}

func (s *Supervisor) cycle(ctx context.Context, input SupervisorInput) error {
	if err := s.child.Replace(nil); err != nil {
		s.log.Warn().Err(err).Msg("failed to stop electron")
	}
	s.drainExited()

	s.setState(core.StateBuilding)
	s.cli.PrintHeader("Bundling main process:")

	cfg := core.NewMainConfig(s.settings, core.MainConfigInput{
		Mode:         core.ModeDevelopment,
		Debug:        input.Debug,
		DevServerURL: input.DevServerURL,
	})
	stats, err := s.compiler.Compile(ctx, cfg)
	if err := reportStats(s.cli, stats, err); err != nil {
		return err
	}

	outputDir := s.settings.Abs(s.settings.OutputDir)

	if input.Debug {
		s.cli.PrintWarning("Not launching Electron because --debug was passed.")
		s.cli.PrintStep("", "Start Electron from your debugger with %s as the entry.", filepath.Join(outputDir, core.MainBundleFile))
		s.setState(core.StateIdle)
		return nil
	}

	if input.Headless {
		s.cli.Println("$outputDir=" + outputDir)
		s.cli.Println("$WEBPACK_DEV_SERVER_URL=" + input.DevServerURL)
		s.setState(core.StateIdle)
		return nil
	}

	s.cli.PrintHeader("Launching Electron...")
	proc, err := s.launcher.Launch(ctx, core.ElectronLaunchSpec(s.settings))
	if err != nil {
		return fmt.Errorf("failed to launch electron: %w", err)
	}
	if err := s.child.Replace(proc); err != nil {
		s.log.Warn().Err(err).Msg("failed to stop electron")
	}
	s.child.OnExit(func(gen uint64) {
		select {
		case s.exited <- gen:
		default:
		}
	})
	s.setState(core.StateRunning)
	return nil
}

// terminate ends the session. Errors caused by cancellation are not failures.
func (s *Supervisor) terminate(ctx context.Context, err error) error {
	s.setState(core.StateTerminated)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (s *Supervisor) stopChild() {
	if err := s.child.Replace(nil); err != nil {
		s.log.Warn().Err(err).Msg("failed to stop electron")
	}
}

func (s *Supervisor) drainExited() {
	for {
		select {
		case <-s.exited:
		default:
			return
		}
	}
}

func (s *Supervisor) relative(path string) string {
	if rel, err := filepath.Rel(s.settings.ProjectDir, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}
