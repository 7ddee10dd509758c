package converter

import "errors"

// --- Exported Error Variables ---
// Library users can check against these using errors.Is.

var (
	// ErrValidation is the category of every *ValidationError. Conversion
	// options failed a precondition and no output was produced.
	ErrValidation = errors.New("conversion options failed validation")

	// ErrConversion indicates the document could not be rendered, such as a
	// value whose JSON rendering panicked. No partial output is returned.
	ErrConversion = errors.New("conversion failed")

	// ErrConfigValidation indicates that CLI or configuration-file values
	// failed validation before any input was read.
	ErrConfigValidation = errors.New("invalid configuration options provided")

	// ErrReadFailed indicates a failure to read an input file or stdin.
	ErrReadFailed = errors.New("failed to read input")

	// ErrWriteFailed indicates a failure to write converted CSV output.
	ErrWriteFailed = errors.New("failed to write output")
)

// fieldNamesLengthMessage is the exact text reported for a Fields/FieldNames mismatch.
const fieldNamesLengthMessage = "fieldNames and fields should be of the same length, if fieldNames is provided."

// ValidationError reports an option precondition that was violated.
// errors.Is(err, ErrValidation) holds for every ValidationError.
type ValidationError struct {
	Message string
}

// Error returns the validation message verbatim.
func (e *ValidationError) Error() string { return e.Message }

// Is lets errors.Is match ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
