// Package cli wires configuration, planning, conversion and reporting for
// the json2csv command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/stackvity/json2csv/internal/cli/config"
	"github.com/stackvity/json2csv/internal/cli/hooks"
	"github.com/stackvity/json2csv/internal/cli/runner"
	"github.com/stackvity/json2csv/internal/cli/ui"
	"golang.org/x/term"
)

// ErrInputsFailed is returned when the run finished but some inputs could
// not be converted.
var ErrInputsFailed = errors.New("some inputs failed to convert")

// Streams are the process streams a run reads and writes.
type Streams struct {
	In  io.Reader
	Out io.Writer // CSV written to stdout
	Err io.Writer // progress and the final report
}

// DefaultStreams returns the process's standard streams.
func DefaultStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Run plans the jobs for cfg, converts them and prints the report. It
// returns an error when planning fails, the run was stopped or cancelled,
// or any input failed.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, streams Streams) error {
	jobs, err := runner.Plan(ctx, cfg.Inputs, cfg.Output, cfg.Exclude, cfg.Logger)
	if err != nil {
		logger.Error("Could not plan conversion", slog.Any("error", err))
		return err
	}
	logger.Debug("Conversion planned", slog.Int("jobs", len(jobs)))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		tuiProg  hooks.TUIProgram
		uiProg   *ui.Program
		progress hooks.ProgressBar
	)
	if len(jobs) > 1 && !cfg.Verbose && isTerminal(streams.Err) {
		if cfg.TUIEnabled {
			paths := make([]string, len(jobs))
			for i, j := range jobs {
				paths[i] = j.Path
			}
			uiProg = ui.Start(ui.NewModel(cfg.AppVersion, paths, cancel), streams.Err)
			tuiProg = uiProg
		} else {
			progress = hooks.NewProgressBar(streams.Err, len(jobs))
		}
	}
	h := hooks.NewCLIHooks(logger, cfg.Verbose, tuiProg, progress)

	r := runner.New(cfg.RunnerSettings(), h, nil, streams.In, streams.Out, cfg.Logger)
	report, runErr := r.Run(ctx, jobs)

	if uiProg != nil {
		if err := uiProg.Wait(); err != nil {
			logger.Warn("Progress view failed", slog.Any("error", err))
		}
	}

	if toStdout(jobs) && report.Summary.ProcessedCount > 0 && isTerminal(streams.Out) {
		// CSV output has no trailing row terminator.
		fmt.Fprintln(streams.Out)
	}

	if err := writeReport(streams.Err, report, cfg.ReportFormat, len(jobs)); err != nil {
		logger.Warn("Could not write report", slog.Any("error", err))
	}

	if runErr != nil {
		return runErr
	}
	if report.Summary.ErrorCount > 0 {
		return fmt.Errorf("%w: %d of %d", ErrInputsFailed, report.Summary.ErrorCount, report.Summary.InputCount)
	}
	return nil
}

func toStdout(jobs []runner.Job) bool {
	return len(jobs) == 1 && jobs[0].OutputPath == ""
}

// isTerminal reports whether w is a terminal file.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
