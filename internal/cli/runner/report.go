package runner

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/stackvity/json2csv/pkg/converter"
)

// reportAggregator collects per-job results from concurrent workers.
type reportAggregator struct {
	mu             sync.Mutex
	processedFiles []converter.FileInfo
	errors         []converter.ErrorInfo
	rows           int
}

func newReportAggregator(jobs int) *reportAggregator {
	return &reportAggregator{
		processedFiles: make([]converter.FileInfo, 0, jobs),
		errors:         make([]converter.ErrorInfo, 0, 4),
	}
}

// addProcessed appends a FileInfo to the list (thread-safe).
func (a *reportAggregator) addProcessed(info converter.FileInfo) {
	a.mu.Lock()
	a.processedFiles = append(a.processedFiles, info)
	a.rows += info.Rows
	a.mu.Unlock()
}

// addError appends an ErrorInfo to the list (thread-safe).
func (a *reportAggregator) addError(info converter.ErrorInfo) {
	a.mu.Lock()
	a.errors = append(a.errors, info)
	a.mu.Unlock()
}

// getReport compiles the final Report. Entries are sorted by path so the
// report does not depend on worker scheduling.
func (a *reportAggregator) getReport(s Settings, inputCount int, startTime time.Time) converter.Report {
	a.mu.Lock()
	processed := slices.Clone(a.processedFiles)
	errorsList := slices.Clone(a.errors)
	rows := a.rows
	a.mu.Unlock()

	slices.SortFunc(processed, func(x, y converter.FileInfo) int { return cmp.Compare(x.Path, y.Path) })
	slices.SortFunc(errorsList, func(x, y converter.ErrorInfo) int { return cmp.Compare(x.Path, y.Path) })

	fatal := slices.ContainsFunc(errorsList, func(e converter.ErrorInfo) bool { return e.IsFatal })

	return converter.Report{
		Summary: converter.ReportSummary{
			InputCount:         inputCount,
			ProcessedCount:     len(processed),
			ErrorCount:         len(errorsList),
			RowCount:           rows,
			FatalErrorOccurred: fatal,
			DurationSeconds:    time.Since(startTime).Seconds(),
			Concurrency:        s.Concurrency,
			ProfileUsed:        s.ProfileName,
			ConfigFilePath:     s.ConfigFilePath,
			Timestamp:          time.Now().UTC(),
			SchemaVersion:      converter.ReportSchemaVersion,
		},
		ProcessedFiles: processed,
		Errors:         errorsList,
	}
}
