package usecase

import (
	"errors"
	"fmt"
	"time"

	"github.com/3-lines-studio/spark/internal/adapters/cli"
	"github.com/3-lines-studio/spark/internal/core"
)

// reportStats prints the outcome of a main process compile and returns an
// error when the build must stop. Warnings never stop it.
func reportStats(out CLIOutput, stats *core.Stats, err error) error {
	var compilerErr *core.CompilerError
	if errors.As(err, &compilerErr) {
		out.PrintError("%s", compilerErr.Error())
		if compilerErr.Details != "" {
			out.PrintError("%s", compilerErr.Details)
		}
		return err
	}
	if err != nil {
		out.PrintError("%s", err.Error())
		return err
	}
	if stats == nil {
		return fmt.Errorf("compiler returned no result")
	}

	if stats.HasErrors() {
		for _, msg := range stats.Errors {
			out.PrintError("%s", msg)
		}
		return &core.CompileFailedError{Errors: stats.Errors}
	}

	if stats.HasWarnings() {
		for _, msg := range stats.Warnings {
			out.PrintWarning("%s", msg)
		}
	}

	out.PrintSuccess("Compiled main process in %s", stats.Duration.Round(time.Millisecond))
	for _, file := range stats.Outputs {
		out.PrintFile(file.Path + "  " + out.Gray(cli.FormatSize(file.Bytes)))
	}
	return nil
}
