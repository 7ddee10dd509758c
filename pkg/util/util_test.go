package util_test

import (
	"path/filepath"
	"testing"

	"github.com/stackvity/json2csv/pkg/util"
	"github.com/stretchr/testify/assert"
)

func TestOutputPathFor(t *testing.T) {
	out := filepath.Join("build", "csv")
	testCases := []struct {
		name    string
		relPath string
		want    string
	}{
		{name: "Replace extension", relPath: "cars.json", want: filepath.Join(out, "cars.csv")},
		{name: "Keep subdirectory", relPath: filepath.Join("fleet", "2024", "cars.yaml"), want: filepath.Join(out, "fleet", "2024", "cars.csv")},
		{name: "Only last extension", relPath: "cars.backup.json", want: filepath.Join(out, "cars.backup.csv")},
		{name: "No extension", relPath: "cars", want: filepath.Join(out, "cars.csv")},
		{name: "Hidden file", relPath: ".cars", want: filepath.Join(out, ".cars.csv")},
		{name: "Empty", relPath: "", want: ""},
		{name: "Dot", relPath: ".", want: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, util.OutputPathFor(tc.relPath, out, ".csv"))
		})
	}
}

func TestUnescape(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{in: `\t`, want: "\t"},
		{in: `;\r\n`, want: ";\r\n"},
		{in: `\\t`, want: `\t`},
		{in: `C:\data`, want: `C:\data`},
		{in: `trailing\`, want: `trailing\`},
		{in: "plain", want: "plain"},
		{in: "", want: ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, util.Unescape(tc.in), "input %q", tc.in)
	}
}

func TestMatchesPattern(t *testing.T) {
	testCases := []struct {
		name    string
		pattern string
		relPath string
		want    bool
	}{
		{name: "Exact file", pattern: "cars.json", relPath: "cars.json", want: true},
		{name: "Glob in subdirectory", pattern: "*.tmp.json", relPath: "fleet/old.tmp.json", want: true},
		{name: "Directory prefix", pattern: "fleet/*", relPath: "fleet/cars.json", want: true},
		{name: "Nested directory suffix", pattern: "fleet/*", relPath: "archive/fleet/cars.json", want: true},
		{name: "Rooted matches only at root", pattern: "/cars.json", relPath: "fleet/cars.json", want: false},
		{name: "Rooted at root", pattern: "/cars.json", relPath: "cars.json", want: true},
		{name: "No match", pattern: "*.yaml", relPath: "cars.json", want: false},
		{name: "Empty pattern", pattern: "", relPath: "cars.json", want: false},
		{name: "Root path", pattern: "*", relPath: ".", want: false},
		{name: "Malformed pattern", pattern: "[", relPath: "cars.json", want: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, util.MatchesPattern(tc.pattern, tc.relPath))
		})
	}
}
