package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/stackvity/json2csv/internal/cli/runner"
	"github.com/stackvity/json2csv/pkg/converter"
	"github.com/stackvity/json2csv/pkg/converter/encoding"
	"github.com/stackvity/json2csv/pkg/converter/source"
	"github.com/stackvity/json2csv/pkg/util"
)

const (
	EnvPrefix         = "JSON2CSV"
	DefaultConfigName = "json2csv"
)

// Config is the merged and validated CLI configuration.
type Config struct {
	Inputs  []string `mapstructure:"-"`
	Output  string   `mapstructure:"output"`
	Exclude []string `mapstructure:"exclude"`

	Fields            []string `mapstructure:"fields"`
	FieldNames        []string `mapstructure:"fieldNames"`
	HasCSVColumnTitle bool     `mapstructure:"hasCSVColumnTitle"`
	Quotes            string   `mapstructure:"quotes"`
	Del               string   `mapstructure:"del"`
	EOL               string   `mapstructure:"eol"`
	NewLine           string   `mapstructure:"newLine"`
	Nested            bool     `mapstructure:"nested"`
	DefaultValue      string   `mapstructure:"defaultValue"`

	InputFormat    string `mapstructure:"inputFormat"`
	InputEncoding  string `mapstructure:"inputEncoding"`
	OutputEncoding string `mapstructure:"outputEncoding"`
	BOM            bool   `mapstructure:"bom"`

	Concurrency  int                    `mapstructure:"concurrency"`
	OnErrorMode  converter.OnErrorMode  `mapstructure:"onError"`
	ReportFormat converter.ReportFormat `mapstructure:"reportFormat"`
	Verbose      bool                   `mapstructure:"verbose"`
	TUIEnabled   bool                   `mapstructure:"tui"`

	ProfileName    string       `mapstructure:"-"`
	ConfigFilePath string       `mapstructure:"-"`
	AppVersion     string       `mapstructure:"-"`
	Logger         slog.Handler `mapstructure:"-"`
}

// flagKeys maps flag names to the config keys they override.
var flagKeys = map[string]string{
	"output":          "output",
	"exclude":         "exclude",
	"fields":          "fields",
	"field-names":     "fieldNames",
	"quotes":          "quotes",
	"del":             "del",
	"eol":             "eol",
	"new-line":        "newLine",
	"nested":          "nested",
	"default-value":   "defaultValue",
	"input-format":    "inputFormat",
	"input-encoding":  "inputEncoding",
	"output-encoding": "outputEncoding",
	"bom":             "bom",
	"concurrency":     "concurrency",
	"onError":         "onError",
	"report-format":   "reportFormat",
	"verbose":         "verbose",
}

// LoadAndValidate loads configuration from all sources (defaults, file,
// profile, env, flags), validates the merged result and sets up the logger.
// args are the positional inputs.
func LoadAndValidate(cfgFile, profileName, appVersion string, verbose bool, flags *pflag.FlagSet, args []string) (Config, *slog.Logger, error) {
	cfg := Config{AppVersion: appVersion}
	v := viper.New()

	tempLevel := slog.LevelInfo
	if verbose {
		tempLevel = slog.LevelDebug
	}
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: tempLevel}))

	setDefaults(v)

	// --- Load Config File ---
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
			v.AddConfigPath(filepath.Join(home, "."+DefaultConfigName))
		} else {
			tempLogger.Debug("No home directory, searching the working directory only", slog.Any("error", err))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) && cfgFile == "" {
			tempLogger.Debug("No configuration file found, using defaults/env/flags.")
		} else {
			configFileUsed := cfgFile
			if configFileUsed == "" {
				configFileUsed = fmt.Sprintf("searched locations for %s.yaml", DefaultConfigName)
			}
			tempLogger.Error("Error reading configuration file", slog.String("path", configFileUsed), slog.Any("error", err))
			return cfg, tempLogger, fmt.Errorf("%w: error reading config file '%s': %w", converter.ErrConfigValidation, configFileUsed, err)
		}
	} else {
		cfg.ConfigFilePath = v.ConfigFileUsed()
		tempLogger.Debug("Using configuration file", slog.String("path", cfg.ConfigFilePath))
	}

	// --- Apply Profile ---
	cfg.ProfileName = profileName
	if profileName != "" {
		profileKey := "profiles." + profileName
		profileSettings := v.Sub(profileKey)
		if profileSettings == nil {
			configPath := v.ConfigFileUsed()
			if configPath == "" {
				configPath = "(no config file found)"
			}
			err := fmt.Errorf("%w: profile '%s' not found in config file '%s'", converter.ErrConfigValidation, profileName, configPath)
			tempLogger.Error(err.Error())
			return cfg, tempLogger, err
		}
		if err := v.MergeConfigMap(profileSettings.AllSettings()); err != nil {
			tempLogger.Error("Error merging profile", slog.String("profile", profileName), slog.Any("error", err))
			return cfg, tempLogger, fmt.Errorf("error merging profile '%s': %w", profileName, err)
		}
		tempLogger.Debug("Applied configuration profile", slog.String("profile", profileName))
	}

	// --- Bind Environment Variables ---
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// --- Bind Flags (Highest Priority) ---
	if flags != nil {
		for flagName, key := range flagKeys {
			flag := flags.Lookup(flagName)
			if flag == nil {
				tempLogger.Debug("Flag lookup failed during binding", slog.String("flag", flagName))
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				tempLogger.Error("Error binding flag", slog.String("flag", flagName), slog.Any("error", err))
				return cfg, tempLogger, fmt.Errorf("error binding flag '--%s': %w", flagName, err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		tempLogger.Error("Error unmarshalling configuration", slog.Any("error", err))
		return cfg, tempLogger, fmt.Errorf("%w: error unmarshalling configuration: %w", converter.ErrConfigValidation, err)
	}
	cfg.Inputs = args

	// --no-header and --no-tui invert config keys, so they are applied by hand.
	if flags != nil && flags.Changed("no-header") {
		noHeader, _ := flags.GetBool("no-header")
		cfg.HasCSVColumnTitle = !noHeader
	}
	if flags != nil && flags.Changed("no-tui") {
		noTUI, _ := flags.GetBool("no-tui")
		cfg.TUIEnabled = !noTUI
	}
	if verbose {
		cfg.Verbose = true
	}

	// --- Setup Final Logger ---
	logLevel := slog.LevelInfo
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	logHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logHandler)
	cfg.Logger = logHandler

	if err := validateAndDerive(&cfg, logger); err != nil {
		return cfg, logger, err
	}

	logger.Debug("Configuration loading and validation complete",
		slog.String("configFile", cfg.ConfigFilePath),
		slog.String("profile", cfg.ProfileName),
		slog.Bool("verbose", cfg.Verbose),
		slog.String("logLevel", logLevel.String()),
	)
	return cfg, logger, nil
}

// setDefaults establishes the default values for configuration options in Viper.
func setDefaults(v *viper.Viper) {
	// --- Conversion ---
	v.SetDefault("hasCSVColumnTitle", converter.DefaultHasCSVColumnTitle)
	v.SetDefault("quotes", converter.DefaultQuote)
	v.SetDefault("del", converter.DefaultDelimiter)
	v.SetDefault("eol", converter.DefaultEOL)
	v.SetDefault("newLine", "")
	v.SetDefault("nested", converter.DefaultNested)
	v.SetDefault("defaultValue", converter.DefaultDefaultValue)

	// --- Input & Output ---
	v.SetDefault("inputFormat", converter.DefaultInputFormat)
	v.SetDefault("inputEncoding", "")
	v.SetDefault("outputEncoding", converter.DefaultOutputEncoding)
	v.SetDefault("bom", false)
	v.SetDefault("output", "")
	v.SetDefault("exclude", []string{})

	// --- Behavior & Control ---
	v.SetDefault("concurrency", converter.DefaultConcurrency)
	v.SetDefault("onError", string(converter.DefaultOnErrorMode))
	v.SetDefault("reportFormat", string(converter.DefaultReportFormat))
	v.SetDefault("verbose", converter.DefaultVerbose)
	v.SetDefault("tui", converter.DefaultTUIEnabled)
}

// isValidEnumValue checks if a given string value is present in a slice of allowed enum values.
func isValidEnumValue[T ~string](value T, allowedValues []T) bool {
	return slices.Contains(allowedValues, value)
}

// validateAndDerive performs semantic validation and fills derived values.
// Errors wrap converter.ErrConfigValidation.
func validateAndDerive(cfg *Config, logger *slog.Logger) error {
	fail := func(key string, value any, format string, args ...any) error {
		err := fmt.Errorf("%w: "+format, append([]any{converter.ErrConfigValidation}, args...)...)
		logger.Error(err.Error(), slog.String("key", key), slog.Any("value", value))
		return err
	}

	// === Enum String Validations ===
	allowedOnError := []converter.OnErrorMode{converter.OnErrorContinue, converter.OnErrorStop}
	if !isValidEnumValue(cfg.OnErrorMode, allowedOnError) {
		return fail("onError", cfg.OnErrorMode, "invalid value '%s' for key 'onError' (flag --onError). Allowed: %v", cfg.OnErrorMode, allowedOnError)
	}
	allowedReportFormat := []converter.ReportFormat{converter.ReportFormatText, converter.ReportFormatJSON}
	if !isValidEnumValue(cfg.ReportFormat, allowedReportFormat) {
		return fail("reportFormat", cfg.ReportFormat, "invalid value '%s' for key 'reportFormat' (flag --report-format). Allowed: %v", cfg.ReportFormat, allowedReportFormat)
	}
	format, err := source.ParseFormat(cfg.InputFormat)
	if err != nil {
		return fail("inputFormat", cfg.InputFormat, "key 'inputFormat' (flag --input-format): %w", err)
	}
	cfg.InputFormat = string(format)

	// === Charsets ===
	if cfg.InputEncoding != "" {
		name, err := encoding.CanonicalName(cfg.InputEncoding)
		if err != nil {
			return fail("inputEncoding", cfg.InputEncoding, "key 'inputEncoding' (flag --input-encoding): %w", err)
		}
		cfg.InputEncoding = name
	}
	_, canonical, err := encoding.NewOutputEncoder(cfg.OutputEncoding, cfg.BOM)
	if err != nil {
		return fail("outputEncoding", cfg.OutputEncoding, "key 'outputEncoding' (flag --output-encoding): %w", err)
	}
	cfg.OutputEncoding = canonical

	// === Numeric Range Validations ===
	if cfg.Concurrency < 0 {
		return fail("concurrency", cfg.Concurrency, "invalid value '%d' for key 'concurrency' (flag --concurrency). Must be >= 0", cfg.Concurrency)
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = runtime.NumCPU()
		logger.Debug("Concurrency not set, defaulting to number of CPUs", slog.Int("concurrency", cfg.Concurrency))
	}

	// === Separators ===
	cfg.Quotes = util.Unescape(cfg.Quotes)
	cfg.Del = util.Unescape(cfg.Del)
	cfg.EOL = util.Unescape(cfg.EOL)
	cfg.NewLine = util.Unescape(cfg.NewLine)
	if strings.ContainsAny(cfg.Del, "\r\n") {
		return fail("del", cfg.Del, "delimiter %q must not contain a line break", cfg.Del)
	}

	// An empty list from a flag default means the same as no list.
	if len(cfg.Fields) == 0 {
		cfg.Fields = nil
	}
	if len(cfg.FieldNames) == 0 {
		cfg.FieldNames = nil
	}

	logger.Debug("Final derived settings validated",
		slog.Int("concurrency", cfg.Concurrency),
		slog.String("inputFormat", cfg.InputFormat),
		slog.String("outputEncoding", cfg.OutputEncoding),
		slog.Int("inputs", len(cfg.Inputs)),
	)
	return nil
}

// ConverterOptions returns the per-document conversion options.
func (c Config) ConverterOptions() converter.Options {
	return converter.Options{
		Fields:            c.Fields,
		FieldNames:        c.FieldNames,
		HasCSVColumnTitle: converter.Bool(c.HasCSVColumnTitle),
		Quotes:            converter.String(c.Quotes),
		Del:               c.Del,
		EOL:               c.EOL,
		NewLine:           c.NewLine,
		Nested:            c.Nested,
		DefaultValue:      c.DefaultValue,
		Logger:            c.Logger,
	}
}

// RunnerSettings returns the batch runner settings.
func (c Config) RunnerSettings() runner.Settings {
	return runner.Settings{
		Options:        c.ConverterOptions(),
		InputFormat:    source.Format(c.InputFormat),
		InputEncoding:  c.InputEncoding,
		OutputEncoding: c.OutputEncoding,
		BOM:            c.BOM,
		Concurrency:    c.Concurrency,
		OnError:        c.OnErrorMode,
		ProfileName:    c.ProfileName,
		ConfigFilePath: c.ConfigFilePath,
	}
}

// RegisterFlags defines the conversion and run flags on flags. Flag names
// are mapped to config keys by LoadAndValidate.
func RegisterFlags(flags *pflag.FlagSet) {
	// Conversion flags
	flags.StringSlice("fields", nil, "Fields to output, in order; nested paths with --nested (default: keys of the first record)")
	flags.StringSlice("field-names", nil, "Header labels for --fields, one per field")
	flags.Bool("no-header", false, "Do not emit the header row")
	flags.String("quotes", converter.DefaultQuote, `Quote marker wrapped around every cell; "" disables quoting`)
	flags.String("del", converter.DefaultDelimiter, `Cell delimiter (escapes such as "\t" are expanded)`)
	flags.String("eol", `\n`, "Row terminator")
	flags.String("new-line", "", "Row terminator overriding --eol")
	flags.Bool("nested", converter.DefaultNested, "Resolve dot-separated field paths into nested objects")
	flags.String("default-value", converter.DefaultDefaultValue, "Value written for missing fields")

	// Input & Output flags
	flags.StringP("output", "o", "", "Output file, or directory when converting several inputs (default: stdout)")
	flags.StringSlice("exclude", nil, "Glob patterns of paths to skip when walking input directories")
	flags.String("input-format", converter.DefaultInputFormat, `Input syntax ("auto", "json", "yaml", "toml")`)
	flags.String("input-encoding", "", "Input charset (default: detect)")
	flags.String("output-encoding", converter.DefaultOutputEncoding, "Output charset")
	flags.Bool("bom", false, "Write a byte order mark (UTF-8 and UTF-16 output only)")

	// Behavior flags
	flags.Int("concurrency", converter.DefaultConcurrency, "Number of parallel workers (0 for auto-detect CPU cores)")
	flags.String("onError", string(converter.DefaultOnErrorMode), `Behavior when an input fails ("continue" or "stop")`)
	flags.String("report-format", string(converter.DefaultReportFormat), `Final report format ("text", "json")`)
	flags.Bool("no-tui", false, "Disable the interactive progress view even if stderr is a terminal")
}
