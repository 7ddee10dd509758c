package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/stackvity/json2csv/pkg/converter"
	"github.com/stackvity/json2csv/pkg/converter/source"
	"github.com/stackvity/json2csv/pkg/util"
)

// StdinPath names standard input in a Job.
const StdinPath = "-"

// stdinBaseName is used for the output file when stdin is written into a directory.
const stdinBaseName = "stdin"

// Job is one input to convert and where its CSV goes.
type Job struct {
	Path       string // input file, or StdinPath
	OutputPath string // output file; empty writes standard output
}

// Plan expands the command-line inputs into jobs.
//
// No inputs, or the single input "-", reads stdin. A single file writes to
// output, or to stdout when output is empty; when output is an existing
// directory the file is placed inside it. Several inputs, or any directory
// input, need output to name a directory: directories are walked for
// .json, .yaml, .yml and .toml files, skipping paths matched by exclude,
// and their layout is mirrored under output.
func Plan(ctx context.Context, inputs []string, output string, exclude []string, loggerHandler slog.Handler) ([]Job, error) {
	if loggerHandler == nil {
		loggerHandler = slog.DiscardHandler
	}
	logger := slog.New(loggerHandler).With(slog.String("component", "planner"))

	if len(inputs) == 0 {
		inputs = []string{StdinPath}
	}

	if len(inputs) == 1 {
		info, err := statInput(inputs[0])
		if err != nil {
			return nil, err
		}
		if info == nil || !info.IsDir() {
			return []Job{{Path: inputs[0], OutputPath: singleOutput(inputs[0], output)}}, nil
		}
	}

	if output == "" {
		return nil, fmt.Errorf("%w: converting several inputs or a directory requires --output to name a directory", converter.ErrConfigValidation)
	}
	if info, err := os.Stat(output); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("%w: output '%s' is a file, expected a directory", converter.ErrConfigValidation, output)
	}

	var jobs []Job
	seen := make(map[string]string)
	add := func(input, outPath string) error {
		if prev, dup := seen[outPath]; dup {
			return fmt.Errorf("%w: inputs '%s' and '%s' both map to '%s'", converter.ErrConfigValidation, prev, input, outPath)
		}
		seen[outPath] = input
		jobs = append(jobs, Job{Path: input, OutputPath: outPath})
		return nil
	}

	for _, input := range inputs {
		if input == StdinPath {
			return nil, fmt.Errorf("%w: stdin ('-') cannot be combined with other inputs", converter.ErrConfigValidation)
		}
		info, err := statInput(input)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if err := add(input, util.OutputPathFor(filepath.Base(input), output, converter.OutputExtension)); err != nil {
				return nil, err
			}
			continue
		}
		found, err := walkDir(ctx, input, exclude, logger)
		if err != nil {
			return nil, err
		}
		for _, rel := range found {
			if err := add(filepath.Join(input, rel), util.OutputPathFor(rel, output, converter.OutputExtension)); err != nil {
				return nil, err
			}
		}
	}

	logger.Debug("Planned conversion jobs", slog.Int("inputs", len(inputs)), slog.Int("jobs", len(jobs)))
	return jobs, nil
}

// statInput returns nil info for stdin.
func statInput(path string) (fs.FileInfo, error) {
	if path == StdinPath {
		return nil, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: input '%s' does not exist", converter.ErrConfigValidation, path)
		}
		return nil, fmt.Errorf("%w: cannot access '%s': %w", converter.ErrReadFailed, path, err)
	}
	return info, nil
}

func singleOutput(input, output string) string {
	if output == "" {
		return ""
	}
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		base := stdinBaseName
		if input != StdinPath {
			base = filepath.Base(input)
		}
		return util.OutputPathFor(base, output, converter.OutputExtension)
	}
	return output
}

// walkDir returns the convertible files below root as paths relative to it.
func walkDir(ctx context.Context, root string, exclude []string, logger *slog.Logger) ([]string, error) {
	var found []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("%w: cannot read directory '%s': %w", converter.ErrReadFailed, path, err)
			}
			logger.Warn("Error accessing path during walk", slog.String("path", path), slog.String("error", err.Error()))
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.Type()&fs.ModeSymlink != 0 {
			logger.Debug("Skipping symbolic link", slog.String("path", path))
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." {
			return nil
		}
		slashRel := filepath.ToSlash(rel)
		for _, pattern := range exclude {
			if util.MatchesPattern(pattern, slashRel) {
				logger.Debug("Path excluded", slog.String("path", slashRel), slog.String("pattern", pattern))
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		if d.IsDir() || !source.IsSupportedPath(path) {
			return nil
		}
		found = append(found, rel)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	if len(found) == 0 {
		logger.Warn("No convertible files found in directory", slog.String("path", root))
	}
	return found, nil
}
