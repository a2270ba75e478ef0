package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	doc2substack "github.com/alnah/go-doc2substack"
	"github.com/alnah/go-doc2substack/internal/fileutil"
	"github.com/alnah/go-doc2substack/internal/hints"
	"golang.org/x/sync/errgroup"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrNoInput         = errors.New("no input specified")
	ErrWriteHTML       = errors.New("failed to write HTML file")
	ErrCreateOutputDir = errors.New("failed to create output directory")
	ErrConverterInit   = errors.New("failed to initialize converter")
)

// CLIConverter is the interface for the conversion service.
type CLIConverter interface {
	Convert(ctx context.Context, input doc2substack.Input) (*doc2substack.ConvertResult, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*doc2substack.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (CLIConverter, error)
	Release(CLIConverter)
	Size() int
}

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
	Stats      doc2substack.Stats
	Warnings   []doc2substack.Warning
}

// convertBatch converts files with at most pool.Size() in flight. Results
// keep the order of files; a failed file never stops the others.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	results := make([]ConversionResult, len(files))
	var g errgroup.Group
	g.SetLimit(pool.Size())
	for i, f := range files {
		g.Go(func() error {
			results[i] = convertPooled(ctx, pool, f, params)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// convertPooled borrows a converter for the duration of one file.
func convertPooled(ctx context.Context, pool Pool, f FileToConvert, params *conversionParams) ConversionResult {
	if err := ctx.Err(); err != nil {
		return ConversionResult{InputPath: f.InputPath, Err: err}
	}
	conv, err := pool.Acquire(ctx)
	if err != nil {
		if ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", ErrConverterInit, err)
		}
		return ConversionResult{InputPath: f.InputPath, Err: err}
	}
	defer pool.Release(conv)
	return convertFile(ctx, conv, f, params)
}

// convertFile converts one file and writes it atomically. Nothing is
// written when the conversion fails.
func convertFile(ctx context.Context, conv CLIConverter, f FileToConvert, params *conversionParams) (result ConversionResult) {
	result = ConversionResult{InputPath: f.InputPath, OutputPath: f.OutputPath}
	defer func(start time.Time) { result.Duration = time.Since(start) }(time.Now())

	doc, err := doc2substack.LoadDocument(f.InputPath)
	if err != nil {
		result.Err = err
		return result
	}
	out, err := conv.Convert(ctx, doc2substack.Input{Document: doc, Title: params.title})
	if err != nil {
		result.Err = err
		return result
	}
	result.Stats, result.Warnings = out.Stats, out.Warnings

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		result.Err = fmt.Errorf("%w: %w", ErrCreateOutputDir, err)
		return result
	}
	if err := fileutil.WriteFileAtomic(f.OutputPath, out.HTML, filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %w", ErrWriteHTML, err)
	}
	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
	Warnings  int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
		summary.Warnings += len(r.Warnings)
	}
	return summary
}

// printResultsWithWriter outputs conversion results using the provided writers.
// Returns the number of failed conversions.
func printResultsWithWriter(results []ConversionResult, quiet, verbose bool, renderer string, env *Environment) int {
	summary := countResults(results)
	mathFallback := false

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.InputPath, r.Err, hintFor(r.Err, ""))
			continue
		}

		if quiet {
			continue
		}

		for _, w := range r.Warnings {
			fmt.Fprintf(env.Stderr, "WARNING %s: %s\n", r.InputPath, w)
			if w.Image == "" {
				mathFallback = true
			}
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
			printStats(env.Stdout, r.Stats)
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if mathFallback {
		fmt.Fprintln(env.Stderr, strings.TrimPrefix(hints.ForImageFallback(renderer), "\n"))
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// printStats writes the per-document math breakdown.
func printStats(w io.Writer, s doc2substack.Stats) {
	fmt.Fprintf(w, "  math: %d inline (%d as text), %d display, %d images, %d raw\n",
		s.Inline, s.Unicode, s.Display, s.Images, s.Fallbacks)
}
