package command

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/3-lines-studio/spark/internal/adapters/esbuild"
	"github.com/3-lines-studio/spark/internal/adapters/process"
	"github.com/3-lines-studio/spark/internal/adapters/watch"
	"github.com/3-lines-studio/spark/internal/usecase"
)

func newServeCommand(a *app) *cobra.Command {
	var input usecase.ServeInput
	var mode string

	cmd := &cobra.Command{
		Use:   "serve:electron",
		Short: "Serve the renderer and run Electron, restarting on main process changes",
		Long: `Start the project's dev server, bundle the main process and launch
Electron. Changes to the main process entry or any mainProcessWatch
pattern rebuild the bundle and restart Electron.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode != "" {
				a.log.Debug().Str("mode", mode).Msg("ignoring --mode, serve always runs in development")
			}

			env, err := a.loadEnvironment()
			if err != nil {
				return err
			}
			return stopped(a.serve(cmd.Context(), env, input))
		},
	}

	cmd.Flags().BoolVar(&input.Debug, "debug", false, "Build the main process with source maps and do not launch Electron")
	cmd.Flags().BoolVar(&input.Headless, "headless", false, "Print the bundle location and dev server URL instead of launching Electron")
	cmd.Flags().BoolVar(&input.Dashboard, "dashboard", false, "Pass --dashboard to the dev server")
	cmd.Flags().StringVar(&mode, "mode", "", "Accepted for compatibility, ignored")
	cmd.Flags().StringVar(&input.DevServerURL, "dev-server-url", "", "Use an already running dev server")

	return cmd
}

func (a *app) runServe(ctx context.Context, env *environment, input usecase.ServeInput) error {
	settings := env.settings

	var checker esbuild.TypeChecker
	if settings.UsesTypeScript && settings.TypeChecking {
		checker = process.NewTSC(process.ResolveBinary(settings.ProjectDir, "", "tsc"))
	}

	supervisor := usecase.NewSupervisor(
		settings,
		esbuild.NewCompiler(settings.ProjectDir, checker, a.log),
		process.NewElectronLauncher(process.ResolveBinary(settings.ProjectDir, settings.ElectronPath, "electron"), a.log),
		newWatcher,
		a.out,
		a.log,
	)

	service := usecase.NewServeService(
		settings,
		process.NewDevServerCommand(settings.ProjectDir, settings.RendererServeCommand, settings.DevServerTimeout, a.log),
		supervisor,
		a.out,
		a.log,
	)
	return service.Serve(ctx, input)
}

// stopped treats an interrupted serve session as a clean stop.
func stopped(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newWatcher(projectDir string, patterns []string) (usecase.Watcher, error) {
	w, err := watch.New(projectDir, patterns)
	if err != nil {
		return nil, err
	}
	return w, nil
}
