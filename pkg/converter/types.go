package converter

// Status is the state of one input in a batch run. An input moves from
// pending through processing to exactly one final state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

// Final reports whether s ends an input's lifecycle.
func (s Status) Final() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// OnErrorMode selects what a batch run does after an input fails.
type OnErrorMode string

const (
	OnErrorContinue OnErrorMode = "continue" // convert the remaining inputs
	OnErrorStop     OnErrorMode = "stop"     // skip inputs not yet started
)

// ReportFormat is the format of the run report printed to stderr.
type ReportFormat string

const (
	ReportFormatText ReportFormat = "text"
	ReportFormatJSON ReportFormat = "json"
)
