package converter

import "strings"

// buildRow joins already encoded cells with delimiter. The result carries
// no terminator.
func buildRow(cells []string, delimiter string) string {
	return strings.Join(cells, delimiter)
}
