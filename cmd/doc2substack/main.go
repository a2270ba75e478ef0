package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/automaxprocs/maxprocs"

	doc2substack "github.com/alnah/go-doc2substack"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Configure GOMAXPROCS before the pool is sized from it.
	setMaxProcs(hasVerboseFlag(os.Args), os.Stderr)

	os.Exit(runMain(os.Args, DefaultEnv()))
}

// setMaxProcs configures GOMAXPROCS, logging the decision when verbose.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setMaxProcs(verbose bool, w io.Writer) {
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(w, format+"\n", args...)
		}))
		return
	}
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
}

// hasVerboseFlag reports whether -v or --verbose appears before "--".
func hasVerboseFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "--":
			return false
		case "-v", "--verbose":
			return true
		}
	}
	return false
}

// commands lists the subcommand names.
var commands = []string{"convert", "version", "help", "doctor", "completion", "config"}

// isCommand reports whether name is a subcommand (case sensitive).
func isCommand(name string) bool {
	for _, c := range commands {
		if c == name {
			return true
		}
	}
	return false
}

// looksLikeInput reports whether arg should be treated as an input path
// for the implicit convert command.
func looksLikeInput(arg string) bool {
	if arg == "" {
		return false
	}
	if doc2substack.IsSupportedFile(arg) || strings.ContainsRune(arg, filepath.Separator) || strings.Contains(arg, "/") {
		return true
	}
	_, err := os.Stat(arg)
	return err == nil
}

// runMain dispatches to a command and returns the process exit code.
// args[0] is the program name, as in os.Args.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	switch {
	case cmd == "-h" || cmd == "--help":
		printUsage(env.Stdout)
		return ExitSuccess
	case cmd == "--version":
		cmd = "version"
	case isCommand(cmd):
	case strings.HasPrefix(cmd, "-") || looksLikeInput(cmd):
		cmd, rest = "convert", args[1:]
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	switch cmd {
	case "convert":
		return runConvertCmd(rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "doc2substack %s\n", Version)
		return ExitSuccess
	case "help":
		return runHelp(rest, env)
	case "doctor":
		return runDoctorCmd(rest, env)
	case "config":
		return runConfigCmd(rest, env)
	case "completion":
		if err := runCompletion(rest, env); err != nil {
			fmt.Fprintln(env.Stderr, err)
			return exitCodeFor(err)
		}
		return ExitSuccess
	}
	return ExitGeneral
}
