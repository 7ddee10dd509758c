package converter

import "time"

// Report summarizes the result of a single batch run.
type Report struct {
	Summary        ReportSummary `json:"summary"`
	ProcessedFiles []FileInfo    `json:"processedFiles"`
	Errors         []ErrorInfo   `json:"errors"`
}

// ReportSummary contains aggregated statistics for a batch run.
type ReportSummary struct {
	InputCount         int       `json:"inputCount"`
	ProcessedCount     int       `json:"processedCount"`
	ErrorCount         int       `json:"errorCount"`
	RowCount           int       `json:"rowCount"`
	FatalErrorOccurred bool      `json:"fatalError"`
	DurationSeconds    float64   `json:"durationSeconds"`
	Concurrency        int       `json:"concurrency"`
	ProfileUsed        string    `json:"profileUsed,omitempty"`
	ConfigFilePath     string    `json:"configFilePath,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
	SchemaVersion      string    `json:"schemaVersion,omitempty"`
}

// FileInfo details a single input that was converted and written.
type FileInfo struct {
	Path           string `json:"path"`
	OutputPath     string `json:"outputPath"`
	InputFormat    string `json:"inputFormat"`
	InputEncoding  string `json:"inputEncoding"`
	OutputEncoding string `json:"outputEncoding"`
	Rows           int    `json:"rows"`
	SizeBytes      int64  `json:"sizeBytes"`
	DurationMs     int64  `json:"durationMs"`
}

// ErrorInfo details an input that could not be converted.
type ErrorInfo struct {
	Path    string `json:"path"`
	Error   string `json:"error"`
	IsFatal bool   `json:"isFatal"`
}
