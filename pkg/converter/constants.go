package converter

// Constants defining default values for conversion options.
// They are also used when setting up Viper defaults in the CLI.
const (
	// DefaultQuote wraps every cell unless Options.Quotes overrides it.
	DefaultQuote = `"`
	// DefaultDelimiter separates cells within a row.
	DefaultDelimiter = ","
	// DefaultEOL terminates rows when neither EOL nor NewLine is set.
	DefaultEOL = "\n"
	// DefaultHasCSVColumnTitle controls whether the header row is emitted.
	DefaultHasCSVColumnTitle = true
	// DefaultNested controls dot-path field resolution.
	DefaultNested = false
	// DefaultDefaultValue is substituted for missing values.
	DefaultDefaultValue = ""
)

// Constants defining defaults for the batch runner and CLI.
const (
	// DefaultConcurrency determines the default number of workers. 0 means runtime.NumCPU().
	DefaultConcurrency = 0
	// DefaultOnErrorMode is the default behavior when one input fails.
	DefaultOnErrorMode = OnErrorContinue
	// DefaultReportFormat is the default format of the final run report.
	DefaultReportFormat = ReportFormatText
	// DefaultInputFormat lets the runner pick a decoder from the file extension.
	DefaultInputFormat = "auto"
	// DefaultOutputEncoding is the charset written when none is requested.
	DefaultOutputEncoding = "utf-8"
	// DefaultVerbose is the default state for verbose logging.
	DefaultVerbose = false
	// DefaultTUIEnabled shows the progress view for multi-input runs on a terminal.
	DefaultTUIEnabled = true
	// OutputExtension is appended to input base names in directory output mode.
	OutputExtension = ".csv"
)

// ReportSchemaVersion indicates the version of the JSON report structure.
const ReportSchemaVersion = "1.0"
