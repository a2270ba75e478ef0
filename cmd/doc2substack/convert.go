package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	doc2substack "github.com/alnah/go-doc2substack"
	"github.com/alnah/go-doc2substack/internal/config"
	"github.com/alnah/go-doc2substack/internal/hints"
)

// conversionParams groups parameters shared across batch/file conversion.
type conversionParams struct {
	title    string
	renderer string
}

// convertPlan is everything runConvert resolved before any conversion runs.
type convertPlan struct {
	inputPath string
	outputDir string
	files     []FileToConvert
	options   []doc2substack.Option
	workers   int
	params    *conversionParams
	quiet     bool
	verbose   bool
}

// batchError reports failed conversions. Per-file errors are printed as they
// are collected; a single failure is unwrapped so the exit code reflects it.
type batchError struct {
	failed int
	total  int
	cause  error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d conversion(s) failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error {
	return e.cause
}

// runConvertCmd parses flags, runs the conversion and maps errors to exit codes.
func runConvertCmd(args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	if !flags.common.quiet {
		warnUnknownEnvVars(env.Stderr, env.Environ())
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runConvert(ctx, positional, flags, env); err != nil {
		var be *batchError
		if errors.As(err, &be) {
			fmt.Fprintln(env.Stderr, err)
		} else {
			fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, flags.common.config))
		}
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	plan, err := prepareConvert(positionalArgs, flags, env)
	if err != nil {
		return err
	}

	if plan.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", plan.workers)
	}
	pool := doc2substack.NewConverterPool(plan.workers, plan.options...)
	defer pool.Close()

	// Surface option errors (unknown style, bad asset path) once, before
	// every worker reports the same failure.
	conv, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	pool.Release(conv)

	adapter := &poolAdapter{pool: pool}
	if flags.watch {
		return watchAndConvert(ctx, adapter, plan, env)
	}
	return executeConvert(ctx, adapter, plan, env)
}

// prepareConvert loads configuration, applies overrides and discovers files.
func prepareConvert(positionalArgs []string, flags *convertFlags, env *Environment) (*convertPlan, error) {
	// Validate worker count early
	if err := validateWorkers(flags.workers); err != nil {
		return nil, err
	}

	envCfg := loadEnvConfig(env.Getenv)

	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath, env.Config)
	if err != nil {
		return nil, err
	}

	// Env overrides config, CLI flags override both
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	inputPath, err := resolveInputPath(positionalArgs)
	if err != nil {
		return nil, err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no .tex, .md or .markdown files in %s", ErrNoInput, inputPath)
	}

	opts, err := converterOptions(cfg, flags.assets.noStyle)
	if err != nil {
		return nil, err
	}

	workers := doc2substack.ResolvePoolSize(flags.workers)
	if workers > len(files) {
		workers = len(files)
	}

	return &convertPlan{
		inputPath: inputPath,
		outputDir: outputDir,
		files:     files,
		options:   opts,
		workers:   workers,
		params: &conversionParams{
			title:    cfg.HTML.Title,
			renderer: cfg.Math.Renderer,
		},
		quiet:   flags.common.quiet,
		verbose: flags.common.verbose,
	}, nil
}

// executeConvert converts every planned file and prints the results.
func executeConvert(ctx context.Context, pool Pool, plan *convertPlan, env *Environment) error {
	results := convertBatch(ctx, pool, plan.files, plan.params)
	return reportResults(results, plan, env)
}

// reportResults prints results and turns failures into a batchError.
func reportResults(results []ConversionResult, plan *convertPlan, env *Environment) error {
	failed := printResultsWithWriter(results, plan.quiet, plan.verbose, plan.params.renderer, env)
	if failed == 0 {
		return nil
	}

	be := &batchError{failed: failed, total: len(results)}
	if failed == 1 {
		for _, r := range results {
			if r.Err != nil {
				be.cause = r.Err
			}
		}
	}
	return be
}

// loadConfig loads the named config file, or copies base when none is named.
// The flag wins over DOC2SUBSTACK_CONFIG.
func loadConfig(flagName, envName string, base *config.Config) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = envName
	}

	if name == "" {
		if base == nil {
			return config.DefaultConfig(), nil
		}
		cfg := *base
		return &cfg, nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	// Math flags
	if flags.math.dpi != 0 {
		cfg.Math.DPI = flags.math.dpi
	}
	if flags.math.inlineDPI != 0 {
		cfg.Math.InlineDPI = flags.math.inlineDPI
	}
	if flags.math.renderer != "" {
		cfg.Math.Renderer = flags.math.renderer
	}
	if flags.math.imageTimeout != "" {
		cfg.Math.ImageTimeout = flags.math.imageTimeout
	}

	// HTML flags
	if flags.html.title != "" {
		cfg.HTML.Title = flags.html.title
	}
	if flags.html.quotes != "" {
		cfg.HTML.Quotes = flags.html.quotes
	}

	// Asset flags
	if flags.assets.style != "" {
		cfg.HTML.Style = flags.assets.style
	}
	if flags.assets.assetPath != "" {
		cfg.Assets.BasePath = flags.assets.assetPath
	}

	if flags.pandoc != "" {
		cfg.Pandoc.Path = flags.pandoc
	}
}

// converterOptions translates a validated config into converter options.
func converterOptions(cfg *config.Config, noStyle bool) ([]doc2substack.Option, error) {
	renderer, err := doc2substack.ParseRendererKind(cfg.Math.Renderer)
	if err != nil {
		return nil, err
	}
	quotes, err := doc2substack.ParseQuoteStyle(cfg.HTML.Quotes)
	if err != nil {
		return nil, err
	}
	imageTimeout, err := cfg.Math.Timeout()
	if err != nil {
		return nil, err
	}

	opts := []doc2substack.Option{
		doc2substack.WithDPI(cfg.Math.EffectiveDPI()),
		doc2substack.WithInlineDPI(cfg.Math.InlineDPI),
		doc2substack.WithRenderer(renderer),
		doc2substack.WithImageTimeout(imageTimeout),
		doc2substack.WithQuoteStyle(quotes),
	}

	if cfg.Math.WebTeXURL != "" {
		opts = append(opts, doc2substack.WithWebTeXURL(cfg.Math.WebTeXURL))
	}
	if len(cfg.Math.Symbols) > 0 {
		opts = append(opts, doc2substack.WithSymbols(cfg.Math.Symbols))
	}
	if cfg.Pandoc.Path != "" {
		opts = append(opts, doc2substack.WithPandocPath(cfg.Pandoc.Path))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, doc2substack.WithAssetPath(cfg.Assets.BasePath))
	}

	switch {
	case noStyle:
		opts = append(opts, doc2substack.WithNoStyle())
	case cfg.HTML.Style != "":
		opts = append(opts, doc2substack.WithStyle(cfg.HTML.Style))
	}

	// Whole-document limit: every image may time out, plus pandoc.
	opts = append(opts, doc2substack.WithTimeout(conversionTimeout(imageTimeout)))

	return opts, nil
}

// conversionTimeout bounds a whole document conversion.
func conversionTimeout(imageTimeout time.Duration) time.Duration {
	const minTimeout = 2 * time.Minute
	if d := 20 * imageTimeout; d > minTimeout {
		return d
	}
	return minTimeout
}

// resolveInputPath determines the input path from args.
func resolveInputPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	return "", ErrNoInput
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, configName string) string {
	var unterminated *doc2substack.UnterminatedError
	switch {
	case errors.Is(err, doc2substack.ErrConverterMissing):
		return hints.ForPandocMissing()
	case errors.As(err, &unterminated):
		return hints.ForUnterminatedMath(unterminated.Line, unterminated.Column)
	case errors.Is(err, config.ErrConfigNotFound):
		var searched []string
		if configName != "" && !strings.ContainsAny(configName, `/\`) {
			searched = config.SearchPaths(configName)
		}
		return hints.ForConfigNotFound(searched)
	case errors.Is(err, doc2substack.ErrStyleNotFound):
		return hints.ForStyleNotFound(doc2substack.BuiltinStyles())
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, ErrCreateOutputDir):
		return hints.ForOutputDirectory()
	}
	return ""
}
