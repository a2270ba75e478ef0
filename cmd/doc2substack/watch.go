package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	doc2substack "github.com/alnah/go-doc2substack"
)

// watchDebounce collapses the burst of events an editor save produces.
var watchDebounce = 200 * time.Millisecond

// watchAndConvert converts every planned file once, then reconverts inputs
// as they are written until ctx is canceled. Conversion failures are
// reported and watching continues.
func watchAndConvert(ctx context.Context, pool Pool, plan *convertPlan, env *Environment) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	tracked := make(map[string]FileToConvert, len(plan.files))
	for _, f := range plan.files {
		tracked[cleanPath(f.InputPath)] = f
	}

	dirInput := isInputDir(plan.inputPath)
	if err := addWatchDirs(watcher, plan.inputPath, dirInput); err != nil {
		return err
	}

	_ = executeConvert(ctx, pool, plan, env)
	if !plan.quiet {
		fmt.Fprintf(env.Stdout, "Watching %s (Ctrl+C to stop)\n", plan.inputPath)
	}

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	pending := make(map[string]FileToConvert)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			path := cleanPath(event.Name)

			if event.Has(fsnotify.Create) && dirInput {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = watcher.Add(event.Name)
					continue
				}
			}

			f, ok := tracked[path]
			if !ok {
				if !dirInput || !doc2substack.IsSupportedFile(path) {
					continue
				}
				f = FileToConvert{
					InputPath:  event.Name,
					OutputPath: resolveOutputPath(event.Name, plan.outputDir, plan.inputPath),
				}
				tracked[path] = f
			}
			pending[path] = f
			timer.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(env.Stderr, "warning: watch: %v\n", err)

		case <-timer.C:
			files := make([]FileToConvert, 0, len(pending))
			for _, f := range pending {
				files = append(files, f)
			}
			clear(pending)
			results := convertBatch(ctx, pool, files, plan.params)
			_ = reportResults(results, plan, env)
		}
	}
}

// addWatchDirs watches the input file's directory, or every directory
// under a directory input.
func addWatchDirs(watcher *fsnotify.Watcher, inputPath string, dirInput bool) error {
	if !dirInput {
		dir := filepath.Dir(inputPath)
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		return nil
	}

	return filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// isInputDir reports whether path is a directory.
func isInputDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// cleanPath normalizes path for comparison with watcher event names.
func cleanPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
