package converter_test

import (
	"testing"

	"github.com/stackvity/json2csv/pkg/converter"
	"github.com/stretchr/testify/assert"
)

// TestDefaultConfigurationConstants verifies default configuration constants.
func TestDefaultConfigurationConstants(t *testing.T) {
	assert.Equal(t, `"`, converter.DefaultQuote)
	assert.Equal(t, ",", converter.DefaultDelimiter)
	assert.Equal(t, "\n", converter.DefaultEOL)
	assert.True(t, converter.DefaultHasCSVColumnTitle)
	assert.False(t, converter.DefaultNested)
	assert.Equal(t, "", converter.DefaultDefaultValue)

	assert.Equal(t, 0, converter.DefaultConcurrency)
	assert.Equal(t, converter.OnErrorContinue, converter.DefaultOnErrorMode)
	assert.Equal(t, converter.ReportFormatText, converter.DefaultReportFormat)
	assert.Equal(t, "auto", converter.DefaultInputFormat)
	assert.Equal(t, "utf-8", converter.DefaultOutputEncoding)
	assert.False(t, converter.DefaultVerbose)
	assert.True(t, converter.DefaultTUIEnabled)
	assert.Equal(t, ".csv", converter.OutputExtension)
	assert.Equal(t, "1.0", converter.ReportSchemaVersion)
}

func TestStatus_Final(t *testing.T) {
	for _, s := range []converter.Status{converter.StatusSuccess, converter.StatusFailed, converter.StatusSkipped} {
		assert.True(t, s.Final(), s)
	}
	for _, s := range []converter.Status{converter.StatusPending, converter.StatusProcessing, "bogus"} {
		assert.False(t, s.Final(), s)
	}
}
