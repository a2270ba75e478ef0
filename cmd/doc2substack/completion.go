package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash       Shell = "bash"
	ShellZsh        Shell = "zsh"
	ShellFish       Shell = "fish"
	ShellPowerShell Shell = "powershell"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// programName is the command completions are registered for.
const programName = "doc2substack"

// shellNames lists the completion targets in help order.
var shellNames = []string{string(ShellBash), string(ShellZsh), string(ShellFish), string(ShellPowerShell)}

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagFloat
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name        string
	Desc        string
	Flags       []flagDef
	TakesFiles  bool     // accepts file arguments
	FilePattern string   // glob for file arguments (e.g., "*.tex,*.md")
	Args        []string // fixed argument values (e.g., shells)
}

// completionMeta holds completion-specific metadata for flags.
// This is the ONLY place where completion hints are defined.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	// Enum flags
	"renderer": {Values: []string{"webtex", "fetch", "browser"}},
	"quotes":   {Values: []string{"straight", "curly", "preserve"}},

	// File flags with glob patterns
	"config": {FileGlob: "*.yaml,*.yml"},
	"style":  {FileGlob: "*.css"},

	// Directory flags
	"output":     {IsDir: true},
	"asset-path": {IsDir: true},
}

// inputPattern matches the documents convert accepts.
const inputPattern = "*.tex,*.md,*.markdown"

// buildConvertFlagSet creates a FlagSet with all convert command flags.
// This reuses the same flag registration as parseConvertFlags.
func buildConvertFlagSet() *flag.FlagSet {
	return newConvertFlagSet(&convertFlags{})
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		// Determine base type from pflag type
		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		case "float32", "float64":
			fd.Type = flagFloat
		default:
			fd.Type = flagString
		}

		// Override type based on completion metadata
		if meta, ok := flagCompletionMeta[f.Name]; ok {
			if len(meta.Values) > 0 {
				fd.Type = flagEnum
				fd.Values = meta.Values
			} else if meta.FileGlob != "" {
				fd.Type = flagFile
				fd.FileGlob = meta.FileGlob
			} else if meta.IsDir {
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSet - single source of truth.
func getCommands() []commandDef {
	convertFlags := extractFlagsFromFlagSet(buildConvertFlagSet())

	return []commandDef{
		{
			Name:        "convert",
			Desc:        "Convert LaTeX or Markdown files to Substack HTML",
			Flags:       convertFlags,
			TakesFiles:  true,
			FilePattern: inputPattern,
		},
		{
			Name: "config",
			Desc: "Print the effective configuration as YAML",
			Flags: []flagDef{{
				Long: "config", Short: "c", Type: flagFile,
				Desc: "config file name or path", FileGlob: "*.yaml,*.yml",
			}},
		},
		{
			Name:  "doctor",
			Desc:  "Check system requirements",
			Flags: []flagDef{{Long: "json", Type: flagBool, Desc: "output JSON"}},
		},
		{
			Name: "completion",
			Desc: "Generate shell completion script",
			Args: shellNames,
		},
		{
			Name: "version",
			Desc: "Show version information",
		},
		{
			Name: "help",
			Desc: "Show help for a command",
		},
	}
}

// commandNames returns the names of cmds.
func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

// globExtensions turns "*.yaml,*.yml" into ["yaml", "yml"].
func globExtensions(glob string) []string {
	var exts []string
	for _, g := range strings.Split(glob, ",") {
		g = strings.TrimPrefix(strings.TrimSpace(g), "*.")
		if g != "" {
			exts = append(exts, g)
		}
	}
	return exts
}

// takesValue reports whether the flag consumes an argument.
func (f flagDef) takesValue() bool {
	return f.Type != flagBool
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	switch shell {
	case ShellBash:
		return generateBash(w)
	case ShellZsh:
		return generateZsh(w)
	case ShellFish:
		return generateFish(w)
	case ShellPowerShell:
		return generatePowerShell(w)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish, powershell)", ErrUnsupportedShell, shell)
	}
}

// ---------------------------------------------------------------------------
// Bash
// ---------------------------------------------------------------------------

func generateBash(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	fmt.Fprintf(&b, "# bash completion for %s\n\n", programName)

	// File helper: one glob per extension, so extglob is not required
	fmt.Fprintf(&b, "_%s_files() {\n", programName)
	b.WriteString("    local ext\n")
	b.WriteString("    for ext in \"$@\"; do\n")
	b.WriteString("        compgen -f -X \"!*.$ext\" -- \"$cur\"\n")
	b.WriteString("    done\n")
	b.WriteString("    compgen -d -- \"$cur\"\n")
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "_%s_completions() {\n", programName)
	b.WriteString("    local cur prev cmd i\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	fmt.Fprintf(&b, "    local commands=%q\n\n", strings.Join(commandNames(cmds), " "))

	b.WriteString("    cmd=\"\"\n")
	b.WriteString("    for ((i=1; i<COMP_CWORD; i++)); do\n")
	b.WriteString("        case \"${COMP_WORDS[i]}\" in\n")
	fmt.Fprintf(&b, "            %s) cmd=\"${COMP_WORDS[i]}\"; break ;;\n", strings.Join(commandNames(cmds), "|"))
	b.WriteString("            -*) ;;\n")
	b.WriteString("            *) cmd=\"convert\"; break ;;\n")
	b.WriteString("        esac\n")
	b.WriteString("    done\n\n")

	// Flag values, keyed on the previous word
	b.WriteString("    case \"$prev\" in\n")
	seen := map[string]bool{}
	for _, c := range cmds {
		for _, f := range c.Flags {
			if !f.takesValue() || seen[f.Long] {
				continue
			}
			seen[f.Long] = true
			pattern := "--" + f.Long
			if f.Short != "" {
				pattern += "|-" + f.Short
			}
			switch f.Type {
			case flagEnum:
				fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -W %q -- \"$cur\")); return ;;\n", pattern, strings.Join(f.Values, " "))
			case flagFile:
				fmt.Fprintf(&b, "        %s) COMPREPLY=($(_%s_files %s)); return ;;\n", pattern, programName, strings.Join(globExtensions(f.FileGlob), " "))
			case flagDir:
				fmt.Fprintf(&b, "        %s) COMPREPLY=($(compgen -d -- \"$cur\")); return ;;\n", pattern)
			default:
				fmt.Fprintf(&b, "        %s) return ;;\n", pattern)
			}
		}
	}
	b.WriteString("    esac\n\n")

	b.WriteString("    if [[ -z \"$cmd\" ]]; then\n")
	b.WriteString("        if [[ \"$cur\" == -* ]]; then\n")
	fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", bashFlagWords(cmds[0].Flags))
	b.WriteString("        else\n")
	fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W \"$commands\" -- \"$cur\") $(_%s_files %s))\n", programName, strings.Join(globExtensions(inputPattern), " "))
	b.WriteString("        fi\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case \"$cmd\" in\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		switch {
		case c.Name == "help":
			b.WriteString("            COMPREPLY=($(compgen -W \"$commands\" -- \"$cur\"))\n")
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "            COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", strings.Join(c.Args, " "))
		default:
			b.WriteString("            if [[ \"$cur\" == -* ]]; then\n")
			fmt.Fprintf(&b, "                COMPREPLY=($(compgen -W %q -- \"$cur\"))\n", bashFlagWords(c.Flags))
			if c.TakesFiles {
				b.WriteString("            else\n")
				fmt.Fprintf(&b, "                COMPREPLY=($(_%s_files %s))\n", programName, strings.Join(globExtensions(c.FilePattern), " "))
			}
			b.WriteString("            fi\n")
		}
		b.WriteString("            ;;\n")
	}
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "complete -F _%s_completions %s\n", programName, programName)

	_, err := io.WriteString(w, b.String())
	return err
}

// bashFlagWords lists every spelling of flags, space separated.
func bashFlagWords(flags []flagDef) string {
	words := make([]string, 0, len(flags)*2)
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return strings.Join(words, " ")
}

// ---------------------------------------------------------------------------
// Zsh
// ---------------------------------------------------------------------------

func generateZsh(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	fmt.Fprintf(&b, "#compdef %s\n\n", programName)
	fmt.Fprintf(&b, "_%s() {\n", programName)
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshQuote(c.Desc))
	}
	b.WriteString("    )\n\n")

	inputGlob := zshGlob(inputPattern)

	b.WriteString("    if (( CURRENT == 2 )); then\n")
	fmt.Fprintf(&b, "        _describe -t commands '%s command' commands\n", programName)
	fmt.Fprintf(&b, "        _files -g '%s'\n", inputGlob)
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")

	b.WriteString("    case \"${words[2]}\" in\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		switch {
		case c.Name == "help":
			b.WriteString("            _describe -t commands 'command' commands\n")
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "            _values 'shell' %s\n", strings.Join(c.Args, " "))
		default:
			b.WriteString("            shift words\n")
			b.WriteString("            (( CURRENT-- ))\n")
			b.WriteString("            _arguments -s \\\n")
			for _, f := range c.Flags {
				fmt.Fprintf(&b, "                %s \\\n", zshFlagSpec(f))
			}
			if c.TakesFiles {
				fmt.Fprintf(&b, "                '*:input:_files -g \"%s\"'\n", zshGlob(c.FilePattern))
			} else {
				b.WriteString("                && return\n")
			}
		}
		b.WriteString("            ;;\n")
	}

	// Implicit convert: first word is an input file
	b.WriteString("        *)\n")
	b.WriteString("            _arguments -s \\\n")
	for _, f := range cmds[0].Flags {
		fmt.Fprintf(&b, "                %s \\\n", zshFlagSpec(f))
	}
	fmt.Fprintf(&b, "                '*:input:_files -g \"%s\"'\n", inputGlob)
	b.WriteString("            ;;\n")
	b.WriteString("    esac\n")
	b.WriteString("}\n\n")

	fmt.Fprintf(&b, "compdef _%s %s\n", programName, programName)

	_, err := io.WriteString(w, b.String())
	return err
}

// zshFlagSpec renders one _arguments specification.
func zshFlagSpec(f flagDef) string {
	desc := "[" + zshQuote(zshEscapeBrackets(f.Desc)) + "]"

	var action string
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case flagFile:
		action = fmt.Sprintf(":%s:_files -g \"%s\"", f.Long, zshGlob(f.FileGlob))
	case flagDir:
		action = fmt.Sprintf(":%s:_files -/", f.Long)
	default:
		action = fmt.Sprintf(":%s: ", f.Long)
	}

	if f.Short == "" {
		return "'--" + f.Long + desc + action + "'"
	}
	return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'%s%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
}

// zshGlob turns "*.tex,*.md" into "*.(tex|md)".
func zshGlob(glob string) string {
	exts := globExtensions(glob)
	if len(exts) == 1 {
		return "*." + exts[0]
	}
	return "*.(" + strings.Join(exts, "|") + ")"
}

// zshQuote escapes text for a single-quoted zsh word.
func zshQuote(s string) string {
	return strings.ReplaceAll(s, "'", `'\''`)
}

func zshEscapeBrackets(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}

// ---------------------------------------------------------------------------
// Fish
// ---------------------------------------------------------------------------

func generateFish(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder
	name := programName

	fmt.Fprintf(&b, "# fish completion for %s\n\n", name)

	fmt.Fprintf(&b, "function __fish_%s_needs_command\n", name)
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")

	fmt.Fprintf(&b, "function __fish_%s_using_command\n", name)
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test \"$cmd[2]\" = \"$argv[1]\"\n")
	b.WriteString("end\n\n")

	fmt.Fprintf(&b, "complete -c %s -f\n\n", name)

	b.WriteString("# Commands\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c %s -n __fish_%s_needs_command -a %s -d %s\n", name, name, c.Name, fishQuote(c.Desc))
	}
	fmt.Fprintf(&b, "complete -c %s -n __fish_%s_needs_command -a %s\n\n", name, name, fishQuote(fishSuffixes(inputPattern)))

	for _, c := range cmds {
		cond := fishQuote(fmt.Sprintf("__fish_%s_using_command %s", name, c.Name))
		fmt.Fprintf(&b, "# %s\n", c.Name)
		switch {
		case c.Name == "help":
			fmt.Fprintf(&b, "complete -c %s -n %s -a %s\n", name, cond, fishQuote(strings.Join(commandNames(cmds), " ")))
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "complete -c %s -n %s -a %s\n", name, cond, fishQuote(strings.Join(c.Args, " ")))
		}
		if c.TakesFiles {
			fmt.Fprintf(&b, "complete -c %s -n %s -a %s\n", name, cond, fishQuote(fishSuffixes(c.FilePattern)))
		}
		for _, f := range c.Flags {
			b.WriteString(fishFlagLine(name, cond, f))
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// fishFlagLine renders one complete command for a flag.
func fishFlagLine(name, cond string, f flagDef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "complete -c %s -n %s", name, cond)
	if f.Short != "" {
		fmt.Fprintf(&b, " -s %s", f.Short)
	}
	fmt.Fprintf(&b, " -l %s", f.Long)

	switch f.Type {
	case flagBool:
	case flagEnum:
		fmt.Fprintf(&b, " -x -a %s", fishQuote(strings.Join(f.Values, " ")))
	case flagFile:
		fmt.Fprintf(&b, " -x -a %s", fishQuote(fishSuffixes(f.FileGlob)))
	case flagDir:
		b.WriteString(" -x -a '(__fish_complete_directories)'")
	default:
		b.WriteString(" -x")
	}

	fmt.Fprintf(&b, " -d %s\n", fishQuote(f.Desc))
	return b.String()
}

// fishSuffixes builds a completion for files matching any extension.
func fishSuffixes(glob string) string {
	parts := make([]string, 0, 2)
	for _, ext := range globExtensions(glob) {
		parts = append(parts, "(__fish_complete_suffix ."+ext+")")
	}
	return strings.Join(parts, " ")
}

// fishQuote single-quotes s for fish.
func fishQuote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s) + "'"
}

// ---------------------------------------------------------------------------
// PowerShell
// ---------------------------------------------------------------------------

func generatePowerShell(w io.Writer) error {
	cmds := getCommands()
	var b strings.Builder

	fmt.Fprintf(&b, "# powershell completion for %s\n\n", programName)
	fmt.Fprintf(&b, "Register-ArgumentCompleter -Native -CommandName %s -ScriptBlock {\n", programName)
	b.WriteString("    param($wordToComplete, $commandAst, $cursorPosition)\n\n")

	b.WriteString("    $commands = [ordered]@{\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s' = %s\n", c.Name, psQuote(c.Desc))
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $flags = @{\n")
	for _, c := range cmds {
		if len(c.Flags) == 0 {
			continue
		}
		fmt.Fprintf(&b, "        '%s' = @(\n", c.Name)
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "            @{ Name = '--%s'; Desc = %s }\n", f.Long, psQuote(f.Desc))
		}
		b.WriteString("        )\n")
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $values = @{\n")
	seen := map[string]bool{}
	var valueLines []string
	for _, c := range cmds {
		for _, f := range c.Flags {
			if f.Type != flagEnum || seen[f.Long] {
				continue
			}
			seen[f.Long] = true
			quoted := make([]string, len(f.Values))
			for i, v := range f.Values {
				quoted[i] = psQuote(v)
			}
			valueLines = append(valueLines, fmt.Sprintf("        '--%s' = @(%s)\n", f.Long, strings.Join(quoted, ", ")))
		}
	}
	for _, c := range cmds {
		if len(c.Args) == 0 {
			continue
		}
		quoted := make([]string, len(c.Args))
		for i, v := range c.Args {
			quoted[i] = psQuote(v)
		}
		valueLines = append(valueLines, fmt.Sprintf("        '%s' = @(%s)\n", c.Name, strings.Join(quoted, ", ")))
	}
	sort.Strings(valueLines)
	for _, l := range valueLines {
		b.WriteString(l)
	}
	b.WriteString("    }\n\n")

	b.WriteString("    $elements = @($commandAst.CommandElements | Select-Object -Skip 1 | ForEach-Object { $_.ToString() })\n")
	b.WriteString("    if ($wordToComplete -ne '' -and $elements.Count -gt 0) {\n")
	b.WriteString("        $elements = @($elements | Select-Object -First ($elements.Count - 1))\n")
	b.WriteString("    }\n")
	b.WriteString("    $prev = if ($elements.Count -gt 0) { $elements[-1] } else { '' }\n\n")

	b.WriteString("    if ($elements.Count -eq 0 -and $wordToComplete -notlike '-*') {\n")
	b.WriteString("        $commands.GetEnumerator() | Where-Object { $_.Key -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_.Key, $_.Key, 'ParameterValue', $_.Value)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")

	b.WriteString("    $cmd = if ($elements.Count -gt 0 -and $commands.Contains($elements[0])) { $elements[0] } else { 'convert' }\n\n")

	b.WriteString("    $key = if ($values.ContainsKey($prev)) { $prev } elseif ($prev -eq $cmd -and $values.ContainsKey($cmd)) { $cmd } else { $null }\n")
	b.WriteString("    if ($key) {\n")
	b.WriteString("        $values[$key] | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $_)\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")

	b.WriteString("    if ($cmd -eq 'help') {\n")
	b.WriteString("        $commands.Keys | Where-Object { $_ -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_, $_, 'ParameterValue', $commands[$_])\n")
	b.WriteString("        }\n")
	b.WriteString("        return\n")
	b.WriteString("    }\n\n")

	b.WriteString("    if ($wordToComplete -like '-*' -and $flags.ContainsKey($cmd)) {\n")
	b.WriteString("        $flags[$cmd] | Where-Object { $_.Name -like \"$wordToComplete*\" } | ForEach-Object {\n")
	b.WriteString("            [System.Management.Automation.CompletionResult]::new($_.Name, $_.Name, 'ParameterName', $_.Desc)\n")
	b.WriteString("        }\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// psQuote single-quotes s for PowerShell.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}

	shell := Shell(args[0])
	return GenerateCompletion(env.Stdout, shell)
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doc2substack completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w, "  powershell  PowerShell completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(doc2substack completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(doc2substack completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    doc2substack completion fish > ~/.config/fish/completions/doc2substack.fish")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  PowerShell:")
	fmt.Fprintln(w, "    # Add to $PROFILE:")
	fmt.Fprintln(w, "    doc2substack completion powershell | Out-String | Invoke-Expression")
}
