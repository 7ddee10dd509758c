package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stackvity/json2csv/internal/cli/config"
	"github.com/stackvity/json2csv/internal/cli/runner"
	"github.com/stackvity/json2csv/internal/testutil"
	"github.com/stackvity/json2csv/pkg/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig returns a validated-looking config with the CLI defaults.
func testConfig(inputs ...string) config.Config {
	return config.Config{
		Inputs:            inputs,
		HasCSVColumnTitle: true,
		Quotes:            converter.DefaultQuote,
		Del:               converter.DefaultDelimiter,
		EOL:               converter.DefaultEOL,
		InputFormat:       converter.DefaultInputFormat,
		OutputEncoding:    converter.DefaultOutputEncoding,
		Concurrency:       2,
		OnErrorMode:       converter.OnErrorContinue,
		ReportFormat:      converter.ReportFormatText,
		TUIEnabled:        true,
		AppVersion:        "test",
		Logger:            slog.DiscardHandler,
	}
}

type testStreams struct {
	in       *strings.Reader
	out, err bytes.Buffer
}

func newStreams(stdin string) *testStreams {
	return &testStreams{in: strings.NewReader(stdin)}
}

func (s *testStreams) Streams() Streams {
	return Streams{In: s.in, Out: &s.out, Err: &s.err}
}

var discardLogger = slog.New(slog.DiscardHandler)

func TestRun_StdinToStdout(t *testing.T) {
	s := newStreams(testutil.CarsJSON)

	err := Run(context.Background(), testConfig(), discardLogger, s.Streams())

	require.NoError(t, err)
	assert.Equal(t, testutil.CarsCSV, s.out.String())
	assert.Empty(t, s.err.String(), "a clean single-input run prints no report")
}

func TestRun_DirectoryToOutputDir(t *testing.T) {
	in := filepath.Join(t.TempDir(), "in")
	testutil.CreateDummyFile(t, filepath.Join(in, "cars.json"), testutil.CarsJSON)
	testutil.CreateDummyFile(t, filepath.Join(in, "fleet", "more.yaml"), "- carModel: VW\n  price: 1\n  color: black\n")
	out := filepath.Join(t.TempDir(), "out")
	cfg := testConfig(in)
	cfg.Output = out
	s := newStreams("")

	err := Run(context.Background(), cfg, discardLogger, s.Streams())

	require.NoError(t, err)
	assert.Empty(t, s.out.String())
	assert.Equal(t, testutil.CarsCSV, testutil.ReadFile(t, filepath.Join(out, "cars.csv")))
	assert.Equal(t, "\"carModel\",\"price\",\"color\"\n\"VW\",\"1\",\"black\"", testutil.ReadFile(t, filepath.Join(out, "fleet", "more.csv")))
	assert.Contains(t, s.err.String(), "Converted 2 of 2 inputs, 3 rows")
}

func TestRun_FailedInputIsReported(t *testing.T) {
	dir := t.TempDir()
	good := testutil.CreateDummyFile(t, filepath.Join(dir, "good.json"), testutil.CarsJSON)
	bad := testutil.CreateDummyFile(t, filepath.Join(dir, "bad.json"), `{"a":`)
	cfg := testConfig(good, bad)
	cfg.Output = filepath.Join(dir, "out")
	s := newStreams("")

	err := Run(context.Background(), cfg, discardLogger, s.Streams())

	require.ErrorIs(t, err, ErrInputsFailed)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, s.err.String(), "Converted 1 of 2 inputs, 2 rows")
	assert.Contains(t, s.err.String(), "Failed 1:")
	assert.Contains(t, s.err.String(), bad+": ")
	assert.Equal(t, testutil.CarsCSV, testutil.ReadFile(t, filepath.Join(dir, "out", "good.csv")))
	assert.NoFileExists(t, filepath.Join(dir, "out", "bad.csv"))
}

func TestRun_StopOnError(t *testing.T) {
	bad := testutil.CreateDummyFile(t, filepath.Join(t.TempDir(), "bad.json"), `[1,`)
	cfg := testConfig(bad)
	cfg.OnErrorMode = converter.OnErrorStop
	s := newStreams("")

	err := Run(context.Background(), cfg, discardLogger, s.Streams())

	require.ErrorIs(t, err, runner.ErrStopped)
	assert.Contains(t, s.err.String(), "Run stopped after the first failure")
	assert.Empty(t, s.out.String())
}

func TestRun_JSONReport(t *testing.T) {
	cfg := testConfig()
	cfg.ReportFormat = converter.ReportFormatJSON
	s := newStreams(testutil.CarsJSON)

	err := Run(context.Background(), cfg, discardLogger, s.Streams())

	require.NoError(t, err)
	assert.Equal(t, testutil.CarsCSV, s.out.String())
	var report converter.Report
	require.NoError(t, json.Unmarshal(s.err.Bytes(), &report))
	assert.Equal(t, 1, report.Summary.InputCount)
	assert.Equal(t, 1, report.Summary.ProcessedCount)
	assert.Equal(t, 2, report.Summary.RowCount)
	require.Len(t, report.ProcessedFiles, 1)
	assert.Equal(t, runner.StdinPath, report.ProcessedFiles[0].Path)
}

func TestRun_PlanErrors(t *testing.T) {
	s := newStreams("")
	cfg := testConfig(filepath.Join(t.TempDir(), "missing.json"))

	err := Run(context.Background(), cfg, discardLogger, s.Streams())

	require.ErrorIs(t, err, converter.ErrConfigValidation)
	assert.Empty(t, s.err.String(), "no report is printed when nothing ran")
}

func TestRun_AppliesConversionOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Fields = []string{"carModel", "price"}
	cfg.FieldNames = []string{"Model", "Price"}
	cfg.Quotes = ""
	cfg.Del = ";"
	s := newStreams(testutil.CarsJSON)

	require.NoError(t, Run(context.Background(), cfg, discardLogger, s.Streams()))

	assert.Equal(t, "Model;Price\nAudi;0\nBMW;15000", s.out.String())
}

func TestFormatTextReport(t *testing.T) {
	report := converter.Report{
		Summary: converter.ReportSummary{InputCount: 4, ProcessedCount: 2, ErrorCount: 1, RowCount: 9, DurationSeconds: 1.5, FatalErrorOccurred: true},
		Errors:  []converter.ErrorInfo{{Path: "c.json", Error: "boom", IsFatal: true}},
	}
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, report, converter.ReportFormatText, 4))

	assert.Equal(t,
		"Converted 2 of 4 inputs, 9 rows in 1.50s\n"+
			"Skipped 1 inputs\n"+
			"Failed 1:\n"+
			"  c.json: boom\n"+
			"Run stopped after the first failure (onError=stop)\n",
		buf.String(), "styles render as plain text off a terminal")
}
