package converter

// validate checks option preconditions that must hold before any output
// is produced.
func validate(fields, fieldNames []string) error {
	if fieldNames != nil && len(fieldNames) != len(fields) {
		return &ValidationError{Message: fieldNamesLengthMessage}
	}
	return nil
}
