package converter_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stackvity/json2csv/pkg/converter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReportJSONSerialization verifies the field names of the JSON report.
func TestReportJSONSerialization(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	report := converter.Report{
		Summary: converter.ReportSummary{
			InputCount:      2,
			ProcessedCount:  1,
			ErrorCount:      1,
			RowCount:        5,
			DurationSeconds: 0.5,
			Concurrency:     4,
			ProfileUsed:     "excel",
			ConfigFilePath:  "/etc/json2csv.yaml",
			Timestamp:       ts,
			SchemaVersion:   converter.ReportSchemaVersion,
		},
		ProcessedFiles: []converter.FileInfo{{
			Path: "cars.json", OutputPath: "out/cars.csv", InputFormat: "json",
			InputEncoding: "utf-8", OutputEncoding: "utf-8", Rows: 5, SizeBytes: 120, DurationMs: 3,
		}},
		Errors: []converter.ErrorInfo{{Path: "bad.json", Error: "boom", IsFatal: false}},
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	summary := generic["summary"].(map[string]any)
	assert.EqualValues(t, 2, summary["inputCount"])
	assert.EqualValues(t, 5, summary["rowCount"])
	assert.Equal(t, false, summary["fatalError"])
	assert.Equal(t, "excel", summary["profileUsed"])
	assert.Equal(t, "2024-01-01T10:00:00Z", summary["timestamp"])
	file := generic["processedFiles"].([]any)[0].(map[string]any)
	assert.Equal(t, "out/cars.csv", file["outputPath"])
	assert.EqualValues(t, 120, file["sizeBytes"])
	errInfo := generic["errors"].([]any)[0].(map[string]any)
	assert.Equal(t, "boom", errInfo["error"])
	assert.Equal(t, false, errInfo["isFatal"])

	var roundTrip converter.Report
	require.NoError(t, json.Unmarshal(data, &roundTrip))
	assert.Equal(t, report, roundTrip)
}

// TestReportJSONSerialization_OmitsEmptyOptionalFields checks omitempty handling.
func TestReportJSONSerialization_OmitsEmptyOptionalFields(t *testing.T) {
	data, err := json.Marshal(converter.ReportSummary{})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "profileUsed")
	assert.NotContains(t, string(data), "configFilePath")
	assert.NotContains(t, string(data), "schemaVersion")
}
