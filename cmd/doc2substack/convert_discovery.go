package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	doc2substack "github.com/alnah/go-doc2substack"
	"github.com/alnah/go-doc2substack/internal/fileutil"
)

// ErrInvalidWorkerCount is returned for a --workers value out of range.
var ErrInvalidWorkerCount = errors.New("invalid worker count")

// outputExtension is the extension of generated files.
const outputExtension = ".html"

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// discoverFiles lists the documents under inputPath with their output
// paths. A single file must have a supported extension. In a directory,
// unsupported files are skipped and the walk order (lexical) is kept.
func discoverFiles(inputPath, outputDir string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if _, err := doc2substack.DetectFormat(inputPath); err != nil {
			return nil, err
		}
		return []FileToConvert{{InputPath: inputPath, OutputPath: resolveOutputPath(inputPath, outputDir, "")}}, nil
	}

	var files []FileToConvert
	walkErr := filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return fmt.Errorf("scanning %s: %w", path, err)
		case d.IsDir() || !doc2substack.IsSupportedFile(path):
			return nil
		}
		files = append(files, FileToConvert{InputPath: path, OutputPath: resolveOutputPath(path, outputDir, inputPath)})
		return nil
	})
	return files, walkErr
}

// resolveOutputPath maps an input document to its HTML file. Without an
// output directory the HTML sits next to the input. An output ending in .html
// names the file itself. Inputs found under baseInputDir keep their relative
// directory below outputDir.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	name := fileutil.SwapExt(filepath.Base(inputPath), outputExtension)
	switch {
	case outputDir == "":
		return filepath.Join(filepath.Dir(inputPath), name)
	case strings.HasSuffix(outputDir, outputExtension):
		return outputDir
	}
	if baseInputDir != "" {
		if rel, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(rel), name)
		}
	}
	return filepath.Join(outputDir, name)
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > doc2substack.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, doc2substack.MaxPoolSize)
	}
	return nil
}
