// Package runner converts a batch of input files to CSV concurrently,
// reporting per-file status through converter.Hooks.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/stackvity/json2csv/pkg/converter"
	"github.com/stackvity/json2csv/pkg/converter/encoding"
	"github.com/stackvity/json2csv/pkg/converter/source"
	"golang.org/x/sync/errgroup"
)

// ErrStopped is returned by Run when a failure ended the run early under
// converter.OnErrorStop.
var ErrStopped = errors.New("run stopped after first error")

// Settings configures a batch run. Options is the template for every
// job; its Data field is replaced per input.
type Settings struct {
	Options        converter.Options
	InputFormat    source.Format
	InputEncoding  string // empty means detect
	OutputEncoding string
	BOM            bool
	Concurrency    int
	OnError        converter.OnErrorMode

	// Reported in the run summary only.
	ProfileName    string
	ConfigFilePath string
}

// Runner executes jobs with bounded concurrency.
type Runner struct {
	settings Settings
	hooks    converter.Hooks
	encoding encoding.EncodingHandler
	stdin    io.Reader
	stdout   io.Writer
	stdoutMu sync.Mutex
	logger   *slog.Logger
}

// New creates a Runner. A nil hooks, handler, stdin or stdout falls back
// to a no-op, the x/net charset handler, os.Stdin and os.Stdout.
func New(settings Settings, hooks converter.Hooks, handler encoding.EncodingHandler, stdin io.Reader, stdout io.Writer, loggerHandler slog.Handler) *Runner {
	if hooks == nil {
		hooks = &converter.NoOpHooks{}
	}
	if handler == nil {
		handler = encoding.NewGoCharsetEncodingHandler("")
	}
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if loggerHandler == nil {
		loggerHandler = slog.DiscardHandler
	}
	if settings.Concurrency < 1 {
		settings.Concurrency = 1
	}
	if settings.OnError == "" {
		settings.OnError = converter.DefaultOnErrorMode
	}
	if settings.InputFormat == "" {
		settings.InputFormat = source.FormatAuto
	}
	if settings.Options.Logger == nil {
		settings.Options.Logger = loggerHandler
	}
	return &Runner{
		settings: settings,
		hooks:    hooks,
		encoding: handler,
		stdin:    stdin,
		stdout:   stdout,
		logger:   slog.New(loggerHandler).With(slog.String("component", "runner")),
	}
}

// Run converts every job and returns the aggregated report. The returned
// error is non-nil only when the run was cut short: by ctx, or by a failure
// under converter.OnErrorStop. Failures under converter.OnErrorContinue are
// recorded in Report.Errors only.
func (r *Runner) Run(ctx context.Context, jobs []Job) (converter.Report, error) {
	startTime := time.Now()
	agg := newReportAggregator(len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.settings.Concurrency)

	r.logger.Debug("Starting batch run",
		slog.Int("jobs", len(jobs)),
		slog.Int("concurrency", r.settings.Concurrency),
		slog.String("onError", string(r.settings.OnError)),
	)

	for i, job := range jobs {
		if gctx.Err() != nil {
			r.skipRemaining(jobs[i:], gctx.Err())
			break
		}
		r.updateStatus(job.Path, converter.StatusPending, "", 0)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				r.updateStatus(job.Path, converter.StatusSkipped, err.Error(), 0)
				return nil
			}
			jobStart := time.Now()
			info, err := r.convertOne(gctx, job)
			duration := time.Since(jobStart)
			if err != nil && gctx.Err() != nil && errors.Is(err, gctx.Err()) {
				r.updateStatus(job.Path, converter.StatusSkipped, err.Error(), duration)
				return nil
			}
			if err != nil {
				fatal := r.settings.OnError == converter.OnErrorStop
				agg.addError(converter.ErrorInfo{Path: job.Path, Error: err.Error(), IsFatal: fatal})
				r.updateStatus(job.Path, converter.StatusFailed, err.Error(), duration)
				if fatal {
					return fmt.Errorf("%w: '%s': %w", ErrStopped, job.Path, err)
				}
				return nil
			}
			info.DurationMs = duration.Milliseconds()
			agg.addProcessed(info)
			r.updateStatus(job.Path, converter.StatusSuccess, fmt.Sprintf("%d rows", info.Rows), duration)
			return nil
		})
	}

	runErr := g.Wait()
	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
	}

	report := agg.getReport(r.settings, len(jobs), startTime)
	if hookErr := r.hooks.OnRunComplete(report); hookErr != nil {
		r.logger.Warn("Event hook OnRunComplete failed", slog.String("error", hookErr.Error()))
	}
	r.logger.Debug("Batch run finished",
		slog.Int("processed", report.Summary.ProcessedCount),
		slog.Int("errors", report.Summary.ErrorCount),
		slog.Int("rows", report.Summary.RowCount),
	)
	return report, runErr
}

// convertOne reads, decodes, converts and writes one job. Output is
// written only after conversion succeeded.
func (r *Runner) convertOne(ctx context.Context, job Job) (converter.FileInfo, error) {
	r.updateStatus(job.Path, converter.StatusProcessing, "", 0)
	logger := r.logger.With(slog.String("path", job.Path))

	raw, err := r.read(job.Path)
	if err != nil {
		return converter.FileInfo{}, err
	}
	if r.encoding.IsBinary(raw) {
		return converter.FileInfo{}, fmt.Errorf("%w: '%s'", encoding.ErrBinaryInput, job.Path)
	}

	text, inputEncoding, err := r.decodeCharset(raw)
	if err != nil {
		return converter.FileInfo{}, err
	}

	format := r.settings.InputFormat
	if format == source.FormatAuto && job.Path != StdinPath {
		format = source.DetectFormat(job.Path)
	}
	if format == source.FormatAuto {
		format = source.Sniff(text)
	}
	doc, err := source.Decode(bytes.NewReader(text), format)
	if err != nil {
		return converter.FileInfo{}, err
	}
	if err := ctx.Err(); err != nil {
		return converter.FileInfo{}, err
	}

	opts := r.settings.Options
	opts.Data = doc
	res := converter.Run(opts)
	if res.Err != nil {
		return converter.FileInfo{}, res.Err
	}

	payload, outputEncoding, err := encoding.EncodeString(res.CSV, r.settings.OutputEncoding, r.settings.BOM)
	if err != nil {
		return converter.FileInfo{}, err
	}
	if err := r.write(job.OutputPath, payload); err != nil {
		return converter.FileInfo{}, err
	}

	logger.Debug("Converted input",
		slog.String("inputFormat", string(format)),
		slog.String("inputEncoding", inputEncoding),
		slog.Int("rows", res.Rows),
		slog.Int("bytes", len(payload)),
	)
	return converter.FileInfo{
		Path:           job.Path,
		OutputPath:     job.OutputPath,
		InputFormat:    string(format),
		InputEncoding:  inputEncoding,
		OutputEncoding: outputEncoding,
		Rows:           res.Rows,
		SizeBytes:      int64(len(payload)),
	}, nil
}

func (r *Runner) read(path string) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	if path == StdinPath {
		raw, err = io.ReadAll(r.stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", converter.ErrReadFailed, path, err)
	}
	return raw, nil
}

func (r *Runner) decodeCharset(raw []byte) ([]byte, string, error) {
	if r.settings.InputEncoding != "" {
		text, err := r.encoding.DecodeAs(raw, r.settings.InputEncoding)
		if err != nil {
			return nil, "", err
		}
		return text, r.settings.InputEncoding, nil
	}
	text, name, certain, err := r.encoding.DetectAndDecode(raw)
	if err != nil {
		return nil, "", err
	}
	if !certain {
		r.logger.Debug("Input charset guessed", slog.String("encoding", name))
	}
	return text, name, nil
}

func (r *Runner) write(outputPath string, payload []byte) error {
	if outputPath == "" {
		r.stdoutMu.Lock()
		defer r.stdoutMu.Unlock()
		if _, err := r.stdout.Write(payload); err != nil {
			return fmt.Errorf("%w: stdout: %w", converter.ErrWriteFailed, err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("%w: '%s': %w", converter.ErrWriteFailed, outputPath, err)
	}
	if err := os.WriteFile(outputPath, payload, 0644); err != nil {
		return fmt.Errorf("%w: '%s': %w", converter.ErrWriteFailed, outputPath, err)
	}
	return nil
}

func (r *Runner) skipRemaining(jobs []Job, cause error) {
	for _, job := range jobs {
		r.updateStatus(job.Path, converter.StatusSkipped, cause.Error(), 0)
	}
}

// updateStatus forwards to the hooks. Hook errors are logged and ignored.
func (r *Runner) updateStatus(path string, status converter.Status, message string, duration time.Duration) {
	if err := r.hooks.OnFileStatusUpdate(path, status, message, duration); err != nil {
		r.logger.Warn("Event hook OnFileStatusUpdate failed",
			slog.String("path", path),
			slog.String("status", string(status)),
			slog.String("error", err.Error()),
		)
	}
}
