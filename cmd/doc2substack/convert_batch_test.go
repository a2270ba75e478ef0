package main

// Notes:
// - convertBatch: tested with mockPool/mockConverter; the real pool is covered
//   in the root package.
// - convertFile: real files in t.TempDir(), so LoadDocument and the atomic
//   write run for real.
// - printResultsWithWriter: we assert on the lines users rely on, not on
//   exact spacing.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	doc2substack "github.com/alnah/go-doc2substack"
)

// ---------------------------------------------------------------------------
// TestConvertBatch - Concurrent batch processing
// ---------------------------------------------------------------------------

func TestConvertBatch(t *testing.T) {
	t.Parallel()

	t.Run("all files converted in order", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		var files []FileToConvert
		for _, name := range []string{"a.md", "b.md", "c.md"} {
			in := writeFile(t, dir, name, "# "+name+"\n")
			files = append(files, FileToConvert{InputPath: in, OutputPath: strings.TrimSuffix(in, ".md") + ".html"})
		}

		conv := &mockConverter{}
		pool := &mockPool{conv: conv, size: 2}

		results := convertBatch(context.Background(), pool, files, &conversionParams{title: "T"})

		if len(results) != len(files) {
			t.Fatalf("results = %d, want %d", len(results), len(files))
		}
		for i, r := range results {
			if r.Err != nil {
				t.Errorf("result %d error = %v", i, r.Err)
			}
			if r.InputPath != files[i].InputPath {
				t.Errorf("result %d InputPath = %q, want %q", i, r.InputPath, files[i].InputPath)
			}
			if _, err := os.Stat(r.OutputPath); err != nil {
				t.Errorf("output %s not written: %v", r.OutputPath, err)
			}
		}
		for _, in := range conv.Inputs() {
			if in.Title != "T" {
				t.Errorf("Title = %q, want T", in.Title)
			}
		}
		if pool.acquired != pool.released {
			t.Errorf("acquired %d, released %d", pool.acquired, pool.released)
		}
	})

	t.Run("empty file list", func(t *testing.T) {
		t.Parallel()

		pool := &mockPool{conv: &mockConverter{}}
		if results := convertBatch(context.Background(), pool, nil, &conversionParams{}); results != nil {
			t.Errorf("results = %v, want nil", results)
		}
		if pool.acquired != 0 {
			t.Errorf("acquired = %d, want 0", pool.acquired)
		}
	})

	t.Run("acquire failure marks every file", func(t *testing.T) {
		t.Parallel()

		files := []FileToConvert{{InputPath: "a.md"}, {InputPath: "b.md"}}
		pool := &mockPool{acquireErr: doc2substack.ErrStyleNotFound, size: 2}

		results := convertBatch(context.Background(), pool, files, &conversionParams{})
		for _, r := range results {
			if !errors.Is(r.Err, ErrConverterInit) {
				t.Errorf("%s error = %v, want ErrConverterInit", r.InputPath, r.Err)
			}
			if !errors.Is(r.Err, doc2substack.ErrStyleNotFound) {
				t.Errorf("%s error = %v, want cause preserved", r.InputPath, r.Err)
			}
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		conv := &mockConverter{}
		files := []FileToConvert{{InputPath: "a.md"}, {InputPath: "b.md"}}
		results := convertBatch(ctx, &mockPool{conv: conv}, files, &conversionParams{})

		for _, r := range results {
			if !errors.Is(r.Err, context.Canceled) {
				t.Errorf("%s error = %v, want context.Canceled", r.InputPath, r.Err)
			}
		}
		if len(conv.Inputs()) != 0 {
			t.Errorf("converter called %d times, want 0", len(conv.Inputs()))
		}
	})
}

// ---------------------------------------------------------------------------
// TestConvertFile - Single file conversion
// ---------------------------------------------------------------------------

func TestConvertFile(t *testing.T) {
	t.Parallel()

	t.Run("writes html and carries stats", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := writeFile(t, dir, "post.md", "$x$\n")
		out := filepath.Join(dir, "nested", "out", "post.html")

		conv := &mockConverter{result: &doc2substack.ConvertResult{
			HTML:     []byte("<p>x</p>"),
			Stats:    doc2substack.Stats{Inline: 1, Unicode: 1},
			Warnings: []doc2substack.Warning{{Image: "a.png", Reason: "missing"}},
		}}

		r := convertFile(context.Background(), conv, FileToConvert{InputPath: in, OutputPath: out}, &conversionParams{})
		if r.Err != nil {
			t.Fatalf("convertFile() error = %v", r.Err)
		}
		got, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		if string(got) != "<p>x</p>" {
			t.Errorf("output = %q", got)
		}
		if r.Stats.Inline != 1 || len(r.Warnings) != 1 {
			t.Errorf("Stats = %+v, Warnings = %v", r.Stats, r.Warnings)
		}

		inputs := conv.Inputs()
		if len(inputs) != 1 || inputs[0].Document.Format != doc2substack.FormatMarkdown || inputs[0].Document.Name != "post" {
			t.Errorf("inputs = %+v", inputs)
		}
	})

	t.Run("conversion error writes nothing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := writeFile(t, dir, "post.md", "$x\n")
		out := filepath.Join(dir, "post.html")

		conv := &mockConverter{err: doc2substack.ErrUnterminatedMath}
		r := convertFile(context.Background(), conv, FileToConvert{InputPath: in, OutputPath: out}, &conversionParams{})

		if !errors.Is(r.Err, doc2substack.ErrUnterminatedMath) {
			t.Errorf("error = %v, want ErrUnterminatedMath", r.Err)
		}
		if _, err := os.Stat(out); !os.IsNotExist(err) {
			t.Errorf("output should not exist, stat error = %v", err)
		}
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		conv := &mockConverter{}
		r := convertFile(context.Background(), conv, FileToConvert{
			InputPath:  filepath.Join(dir, "missing.md"),
			OutputPath: filepath.Join(dir, "missing.html"),
		}, &conversionParams{})

		if !errors.Is(r.Err, doc2substack.ErrReadInput) && !errors.Is(r.Err, os.ErrNotExist) {
			t.Errorf("error = %v, want read error", r.Err)
		}
		if len(conv.Inputs()) != 0 {
			t.Error("converter should not be called")
		}
	})

	t.Run("output directory blocked by file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := writeFile(t, dir, "post.md", "text\n")
		blocker := writeFile(t, dir, "blocker", "")

		r := convertFile(context.Background(), &mockConverter{}, FileToConvert{
			InputPath:  in,
			OutputPath: filepath.Join(blocker, "post.html"),
		}, &conversionParams{})

		if !errors.Is(r.Err, ErrCreateOutputDir) {
			t.Errorf("error = %v, want ErrCreateOutputDir", r.Err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestCountResults
// ---------------------------------------------------------------------------

func TestCountResults(t *testing.T) {
	t.Parallel()

	results := []ConversionResult{
		{InputPath: "a.md"},
		{InputPath: "b.md", Warnings: []doc2substack.Warning{{Latex: "$x$"}, {Image: "i.png"}}},
		{InputPath: "c.md", Err: errors.New("boom")},
	}

	got := countResults(results)
	want := ResultSummary{Succeeded: 2, Failed: 1, Warnings: 2}
	if got != want {
		t.Errorf("countResults() = %+v, want %+v", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestPrintResultsWithWriter - Output formatting
// ---------------------------------------------------------------------------

func TestPrintResultsWithWriter(t *testing.T) {
	t.Parallel()

	results := []ConversionResult{
		{
			InputPath:  "a.md",
			OutputPath: "a.html",
			Duration:   1500 * time.Microsecond,
			Stats:      doc2substack.Stats{Inline: 3, Unicode: 2, Display: 1, Images: 2},
		},
		{
			InputPath:  "b.tex",
			OutputPath: "b.html",
			Warnings:   []doc2substack.Warning{{Latex: `$\frac12$`, Reason: "service down"}},
		},
		{
			InputPath: "c.tex",
			Err:       doc2substack.ErrConverterMissing,
		},
	}

	tests := []struct {
		name          string
		quiet         bool
		verbose       bool
		stdoutWant    []string
		stdoutNotWant []string
		stderrWant    []string
		stderrNotWant []string
	}{
		{
			name:       "default",
			stdoutWant: []string{"Created a.html", "Created b.html", "2 succeeded, 1 failed"},
			stderrWant: []string{
				"FAILED c.tex",
				"pandoc",
				`WARNING b.tex: math $\frac12$ rendered as raw LaTeX: service down`,
				"--renderer browser",
			},
		},
		{
			name:          "quiet",
			quiet:         true,
			stdoutNotWant: []string{"Created", "succeeded"},
			stderrWant:    []string{"FAILED c.tex"},
			stderrNotWant: []string{"WARNING"},
		},
		{
			name:          "verbose",
			verbose:       true,
			stdoutWant:    []string{"a.md -> a.html", "math: 3 inline (2 as text), 1 display, 2 images, 0 raw"},
			stdoutNotWant: []string{"Created"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(nil)
			failed := printResultsWithWriter(results, tt.quiet, tt.verbose, "webtex", env)
			if failed != 1 {
				t.Errorf("failed = %d, want 1", failed)
			}

			for _, want := range tt.stdoutWant {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout %q should contain %q", stdout.String(), want)
				}
			}
			for _, notWant := range tt.stdoutNotWant {
				if strings.Contains(stdout.String(), notWant) {
					t.Errorf("stdout %q should not contain %q", stdout.String(), notWant)
				}
			}
			for _, want := range tt.stderrWant {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr %q should contain %q", stderr.String(), want)
				}
			}
			for _, notWant := range tt.stderrNotWant {
				if strings.Contains(stderr.String(), notWant) {
					t.Errorf("stderr %q should not contain %q", stderr.String(), notWant)
				}
			}
		})
	}
}

func TestPrintResultsWithWriter_ImageWarningNoMathHint(t *testing.T) {
	t.Parallel()

	env, stdout, stderr := testEnv(nil)
	results := []ConversionResult{{
		InputPath:  "a.md",
		OutputPath: "a.html",
		Warnings:   []doc2substack.Warning{{Image: "plot.png", Reason: "file not found"}},
	}}

	printResultsWithWriter(results, false, false, "webtex", env)

	if !strings.Contains(stderr.String(), "WARNING a.md: image plot.png: file not found") {
		t.Errorf("stderr = %q", stderr.String())
	}
	if strings.Contains(stderr.String(), "hint") {
		t.Errorf("stderr %q should not carry the math fallback hint", stderr.String())
	}
	if strings.Contains(stdout.String(), "succeeded") {
		t.Errorf("single result should not print a summary, got %q", stdout.String())
	}
}

// ---------------------------------------------------------------------------
// TestReportResults - Batch error construction
// ---------------------------------------------------------------------------

func TestReportResults(t *testing.T) {
	t.Parallel()

	plan := &convertPlan{quiet: true, params: &conversionParams{renderer: "webtex"}}

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv(nil)
		if err := reportResults([]ConversionResult{{InputPath: "a.md"}}, plan, env); err != nil {
			t.Errorf("reportResults() error = %v", err)
		}
	})

	t.Run("single failure keeps cause", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv(nil)
		err := reportResults([]ConversionResult{
			{InputPath: "a.md"},
			{InputPath: "b.md", Err: doc2substack.ErrConverterFailed},
		}, plan, env)

		if exitCodeFor(err) != ExitConverter {
			t.Errorf("exitCodeFor(%v) = %d, want %d", err, exitCodeFor(err), ExitConverter)
		}
	})

	t.Run("several failures are general", func(t *testing.T) {
		t.Parallel()

		env, _, _ := testEnv(nil)
		err := reportResults([]ConversionResult{
			{InputPath: "a.md", Err: doc2substack.ErrConverterFailed},
			{InputPath: "b.md", Err: os.ErrNotExist},
		}, plan, env)

		var be *batchError
		if !errors.As(err, &be) || be.failed != 2 || be.total != 2 {
			t.Fatalf("error = %v, want batchError 2 of 2", err)
		}
		if exitCodeFor(err) != ExitGeneral {
			t.Errorf("exitCodeFor() = %d, want %d", exitCodeFor(err), ExitGeneral)
		}
	})
}

// ---------------------------------------------------------------------------
// TestExecuteConvert - Planned conversion end to end with a fake pool
// ---------------------------------------------------------------------------

func TestExecuteConvert(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := writeFile(t, dir, "post.md", "hello\n")
	plan := &convertPlan{
		inputPath: in,
		files:     []FileToConvert{{InputPath: in, OutputPath: filepath.Join(dir, "post.html")}},
		params:    &conversionParams{renderer: "webtex"},
	}

	env, stdout, _ := testEnv(nil)
	if err := executeConvert(context.Background(), &mockPool{conv: &mockConverter{}}, plan, env); err != nil {
		t.Fatalf("executeConvert() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "Created "+filepath.Join(dir, "post.html")) {
		t.Errorf("stdout = %q", stdout.String())
	}
}
