package converter

import (
	"log/slog"
	"strings"
)

// assemble renders doc as CSV text and reports the number of data rows.
// fields is the effective column list (see effectiveFields) and fieldNames
// has already passed validate.
func assemble(doc []*Record, fields, fieldNames []string, s settings, logger *slog.Logger) (string, int, error) {
	labels := fieldNames
	if labels == nil {
		labels = fields
	}

	rows := make([]string, 0, len(doc)+1)
	cells := make([]string, len(fields))

	if s.header {
		header := make([]string, len(labels))
		for i, label := range labels {
			cell, err := encodeValue(label, s.quote)
			if err != nil {
				return "", 0, err
			}
			header[i] = cell
		}
		rows = append(rows, buildRow(header, s.delimiter))
	}

	skipped := 0
	for _, rec := range doc {
		if rec == nil || (rec.Len() == 0 && !rec.opaque) {
			skipped++
			continue
		}
		for i, field := range fields {
			cell, err := encodeValue(resolveField(rec, field, s.nested, s.defaultValue), s.quote)
			if err != nil {
				return "", 0, err
			}
			cells[i] = cell
		}
		rows = append(rows, buildRow(cells, s.delimiter))
	}

	logger.Debug("Assembled CSV document",
		slog.Int("records", len(doc)),
		slog.Int("skippedRecords", skipped),
		slog.Int("columns", len(fields)),
		slog.Bool("header", s.header),
	)
	dataRows := len(doc) - skipped
	return strings.Join(rows, s.terminator), dataRows, nil
}

// effectiveFields fixes the column order once for the whole document:
// the requested fields, or else the key order of the first non-nil record.
func effectiveFields(doc []*Record, requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	for _, rec := range doc {
		if rec != nil && !rec.opaque {
			return rec.Keys()
		}
	}
	return []string{}
}
