package hooks

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// NewProgressBar returns the plain progress line used when the interactive
// view is disabled. It counts finished inputs out of total.
func NewProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Converting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}
