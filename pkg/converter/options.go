package converter

import (
	"log/slog"
	"time"
)

// Options holds the input document and configuration for one conversion.
// The zero value of every field except Data selects its documented default.
type Options struct {
	// Data is the source document: nil, a *Record, a map[string]any, or a
	// slice of those (nil entries allowed).
	Data any `mapstructure:"-"`

	// Fields lists the output columns in order. Empty means the keys of
	// the first non-nil record.
	Fields []string `mapstructure:"fields"`
	// FieldNames are header labels; when non-nil they must match Fields in length.
	FieldNames []string `mapstructure:"fieldNames"`

	HasCSVColumnTitle *bool   `mapstructure:"hasCSVColumnTitle"` // nil means true
	Quotes            *string `mapstructure:"quotes"`            // nil means `"`; "" disables quoting
	Del               string  `mapstructure:"del"`               // empty means ","
	EOL               string  `mapstructure:"eol"`               // empty means "\n"
	NewLine           string  `mapstructure:"newLine"`           // overrides EOL when set
	Nested            bool    `mapstructure:"nested"`
	DefaultValue      any     `mapstructure:"defaultValue"` // nil means ""

	// Logger receives debug records about assembly. nil discards them.
	Logger slog.Handler `mapstructure:"-"`
}

// Bool returns a pointer to b, for Options.HasCSVColumnTitle.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s, for Options.Quotes.
func String(s string) *string { return &s }

// settings is the fully resolved configuration of one call. It is built
// fresh for every conversion and never shared.
type settings struct {
	header       bool
	quote        string
	delimiter    string
	terminator   string
	nested       bool
	defaultValue any
}

// resolveSettings applies defaults to opts.
func resolveSettings(opts Options) settings {
	s := settings{
		header:       DefaultHasCSVColumnTitle,
		quote:        DefaultQuote,
		delimiter:    DefaultDelimiter,
		terminator:   DefaultEOL,
		nested:       opts.Nested,
		defaultValue: opts.DefaultValue,
	}
	if opts.HasCSVColumnTitle != nil {
		s.header = *opts.HasCSVColumnTitle
	}
	if opts.Quotes != nil {
		s.quote = *opts.Quotes
	}
	if opts.Del != "" {
		s.delimiter = opts.Del
	}
	if opts.EOL != "" {
		s.terminator = opts.EOL
	}
	if opts.NewLine != "" {
		s.terminator = opts.NewLine
	}
	if s.defaultValue == nil {
		s.defaultValue = DefaultDefaultValue
	}
	return s
}

// Hooks defines callbacks for status updates during a batch run.
// Implementations MUST be thread-safe as methods may be called concurrently.
type Hooks interface {
	OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error
	OnRunComplete(report Report) error
}

// NoOpHooks provides a default, do-nothing implementation of the Hooks interface.
type NoOpHooks struct{}

// OnFileStatusUpdate implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnFileStatusUpdate(path string, status Status, message string, duration time.Duration) error {
	return nil
}

// OnRunComplete implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnRunComplete(report Report) error { return nil }
