// Package converter renders structured documents (one record or an ordered
// collection of records) as CSV text.
//
// The core is synchronous and holds no shared state: every call resolves
// its own settings from Options. Two calling conventions are offered on top
// of the pure Run function: Convert returns the text or an error, and
// ConvertFunc hands the same outcome to a callback before it returns.
package converter

import (
	"fmt"
	"log/slog"
)

// Result is the outcome of one conversion: CSV text on success, or Err.
// CSV is always empty and Rows zero when Err is set.
type Result struct {
	CSV  string
	Rows int // data rows, excluding the header
	Err  error
}

// Callback receives the outcome of ConvertFunc.
type Callback func(csv string, err error)

// Run performs one conversion and never panics. Validation happens before
// any cell is encoded.
func Run(opts Options) (res Result) {
	logger := newLogger(opts.Logger)

	defer func() {
		if r := recover(); r != nil {
			logger.Debug("Conversion panicked", slog.Any("panic", r))
			res = Result{Err: fmt.Errorf("%w: %v", ErrConversion, r)}
		}
	}()

	doc := normalizeDocument(opts.Data)
	fields := effectiveFields(doc, opts.Fields)
	if err := validate(fields, opts.FieldNames); err != nil {
		logger.Debug("Conversion options rejected",
			slog.Int("fields", len(fields)),
			slog.Int("fieldNames", len(opts.FieldNames)),
		)
		return Result{Err: err}
	}

	csv, rows, err := assemble(doc, fields, opts.FieldNames, resolveSettings(opts), logger)
	if err != nil {
		return Result{Err: err}
	}
	return Result{CSV: csv, Rows: rows}
}

// Convert returns the CSV rendering of opts.Data, or an error.
func Convert(opts Options) (string, error) {
	res := Run(opts)
	return res.CSV, res.Err
}

// ConvertFunc performs the same conversion as Convert and delivers the
// outcome to cb exactly once, before returning. It never panics because of
// the document. A nil cb discards the outcome.
func ConvertFunc(opts Options, cb Callback) {
	res := Run(opts)
	if cb == nil {
		return
	}
	if res.Err != nil {
		cb("", res.Err)
		return
	}
	cb(res.CSV, nil)
}

func newLogger(h slog.Handler) *slog.Logger {
	if h == nil {
		h = slog.DiscardHandler
	}
	return slog.New(h).With(slog.String("component", "converter"))
}
