package main

import (
	"fmt"
	"io"
)

const mainUsage = `Usage: doc2substack <command> [flags] [args]
       doc2substack <input> [flags]

Commands:
  convert     Convert LaTeX or Markdown files to Substack HTML
  config      Print the effective configuration as YAML
  doctor      Check system requirements
  completion  Generate shell completion script
  version     Show version information
  help        Show help for a command

Run 'doc2substack help <command>' for details on a specific command.
`

const convertUsage = `Usage: doc2substack convert <input> [flags]

Convert LaTeX (.tex) or Markdown (.md, .markdown) files to HTML that
survives pasting into the Substack editor.

Arguments:
  input    Document file or directory

Input/Output:
  -o, --output <path>       Output file or directory (default: input with .html)
  -c, --config <name>       Config file name or path
  -w, --workers <n>         Parallel workers (0 = auto)
      --watch               Reconvert when inputs change
      --pandoc <path>       pandoc binary for LaTeX input

Math:
      --dpi <n>             Display image resolution (50-1200, default 200)
      --inline-dpi <n>      Inline image resolution (default 3/4 of dpi)
      --renderer <s>        Image renderer: webtex, fetch, browser
      --image-timeout <d>   Per-image timeout (e.g., 10s)

Page:
      --title <s>           Page title (default: input file name)
      --quotes <s>          Quotation marks: straight, curly, preserve

Styling:
      --style <name|path>   CSS style name or file path
      --asset-path <dir>    Custom asset directory
      --no-style            Disable CSS styling

Output Control:
  -q, --quiet               Only show errors
  -v, --verbose             Show detailed timing and math stats

Environment:
  DOC2SUBSTACK_CONFIG, DOC2SUBSTACK_DPI, DOC2SUBSTACK_RENDERER,
  DOC2SUBSTACK_OUTPUT_DIR override the config file; flags override both.

Exit codes:
  0 success (math shown as raw LaTeX is reported, not fatal)
  1 general error   2 usage, config or unterminated math
  3 I/O error       4 pandoc missing or failed
`

// shortUsages covers commands whose help fits in two lines.
var shortUsages = map[string][2]string{
	"doctor":  {"doctor [--json]", "Check pandoc, Chrome and the temp directory."},
	"version": {"version", "Show version information."},
	"help":    {"help [command]", "Show help for a command."},
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, mainUsage)
}

func printConvertUsage(w io.Writer) {
	fmt.Fprint(w, convertUsage)
}

// runHelp prints help for args[0], or the command list without arguments.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch cmd := args[0]; cmd {
	case "convert":
		printConvertUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	default:
		short, ok := shortUsages[cmd]
		if !ok {
			fmt.Fprintf(env.Stderr, "Unknown command: %s\n", cmd)
			printUsage(env.Stderr)
			return ExitUsage
		}
		fmt.Fprintf(env.Stdout, "Usage: doc2substack %s\n\n%s\n", short[0], short[1])
	}
	return ExitSuccess
}
