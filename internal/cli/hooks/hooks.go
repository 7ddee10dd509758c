// Package hooks bridges batch runner events to the CLI's log output and
// optional progress display.
package hooks

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stackvity/json2csv/internal/cli/ui"
	"github.com/stackvity/json2csv/pkg/converter"
)

// TUIProgram defines the interface needed to drive the terminal UI.
type TUIProgram interface {
	Send(msg any)
}

// ProgressBar defines the interface needed to drive a progress display.
type ProgressBar interface {
	Add(num int) error
	Close() error
}

// NoOpProgressBar provides a default null implementation.
type NoOpProgressBar struct{}

// Add implements ProgressBar.
func (n *NoOpProgressBar) Add(num int) error { return nil }

// Close implements ProgressBar.
func (n *NoOpProgressBar) Close() error { return nil }

// CLIHooks implements the converter.Hooks interface for the command line.
// With a TUI every event is forwarded to it. Otherwise verbose mode logs
// every status change, and in normal mode only failures are logged and
// finished inputs advance the progress bar.
type CLIHooks struct {
	logger         *slog.Logger
	verboseEnabled bool
	tuiProgram     TUIProgram
	progressBar    ProgressBar
	mu             sync.Mutex // protects progressBar and completed
	completed      int
}

// NewCLIHooks creates a new CLIHooks instance. A nil tuiProg disables the
// TUI and a nil progBar disables progress output.
func NewCLIHooks(logger *slog.Logger, verboseEnabled bool, tuiProg TUIProgram, progBar ProgressBar) *CLIHooks {
	if progBar == nil {
		progBar = &NoOpProgressBar{}
	}
	return &CLIHooks{
		logger:         logger,
		verboseEnabled: verboseEnabled,
		tuiProgram:     tuiProg,
		progressBar:    progBar,
	}
}

// OnFileStatusUpdate handles events when an input's processing status changes.
// This method is safe for concurrent use.
func (h *CLIHooks) OnFileStatusUpdate(path string, status converter.Status, message string, duration time.Duration) error {
	if h.tuiProgram != nil {
		h.tuiProgram.Send(ui.StatusMsg{Path: path, Status: status, Message: message, Duration: duration})
		return nil
	}

	isFinalState := status.Final()

	completed := 0
	if isFinalState {
		h.mu.Lock()
		h.completed++
		completed = h.completed
		if !h.verboseEnabled {
			_ = h.progressBar.Add(1)
		}
		h.mu.Unlock()
	}

	if h.verboseEnabled {
		logLevel := slog.LevelDebug
		logMsg := "Input status updated"
		attrs := []any{
			slog.String("path", path),
			slog.String("status", string(status)),
		}
		if duration > 0 {
			attrs = append(attrs, slog.Duration("duration", duration))
		}
		if message != "" {
			logKey := "message"
			if status == converter.StatusFailed {
				logKey = "error"
			}
			attrs = append(attrs, slog.String(logKey, message))
		}
		if isFinalState {
			attrs = append(attrs, slog.Int("completed", completed))
		}

		switch status {
		case converter.StatusSuccess, converter.StatusSkipped:
			logLevel = slog.LevelInfo
		case converter.StatusFailed:
			logLevel = slog.LevelError
			logMsg = "Input conversion failed"
		}
		h.logger.Log(context.Background(), logLevel, logMsg, attrs...)
		return nil
	}

	if status == converter.StatusFailed {
		h.logger.Error("Input conversion failed", slog.String("path", path), slog.String("error", message))
	}
	return nil
}

// OnRunComplete finalizes the progress bar. The summary itself is printed
// by the CLI in the requested report format.
func (h *CLIHooks) OnRunComplete(report converter.Report) error {
	if h.tuiProgram != nil {
		h.tuiProgram.Send(ui.DoneMsg{Report: report})
		return nil
	}

	h.mu.Lock()
	_ = h.progressBar.Close()
	h.mu.Unlock()

	if h.verboseEnabled {
		h.logger.Debug("Run complete",
			slog.Int("processed", report.Summary.ProcessedCount),
			slog.Int("errors", report.Summary.ErrorCount),
			slog.Int("rows", report.Summary.RowCount),
		)
	}
	return nil
}
