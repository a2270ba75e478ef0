package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"

	doc2substack "github.com/alnah/go-doc2substack"
	"github.com/alnah/go-doc2substack/internal/fileutil"
	"github.com/alnah/go-doc2substack/internal/hints"
)

// versionProbeTimeout bounds each `--version` call.
const versionProbeTimeout = 10 * time.Second

const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// ciMarkers are variables set by common CI runners.
var ciMarkers = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

type doctorResult struct {
	Status   string     `json:"status"`
	Pandoc   toolInfo   `json:"pandoc"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// toolInfo describes an external binary found on the machine.
type toolInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

type chromeInfo struct {
	toolInfo
	Sandbox bool `json:"sandbox"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

func (r *doctorResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *doctorResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// doctorChecks is the machine as runDoctor sees it. Tests swap in fakes.
type doctorChecks struct {
	runner       doc2substack.CommandRunner
	lookPath     func(string) (string, error)
	lookChrome   func() (string, bool)
	getenv       func(string) string
	tempDir      func() string
	containerEnv func() (bool, string)
}

func defaultDoctorChecks(getenv func(string) string) *doctorChecks {
	return &doctorChecks{
		runner:       &doc2substack.ExecRunner{},
		lookPath:     exec.LookPath,
		lookChrome:   launcher.LookPath,
		getenv:       getenv,
		tempDir:      os.TempDir,
		containerEnv: func() (bool, string) { return isContainer(getenv) },
	}
}

// version runs `bin --version` and keeps its first line.
func (c *doctorChecks) version(ctx context.Context, bin string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()
	out, _, err := c.runner.Run(ctx, "", bin, "--version")
	if err != nil {
		return "", err
	}
	return firstLine(out), nil
}

// runDoctorCmd exits 1 only when a check failed; warnings still exit 0.
func runDoctorCmd(args []string, env *Environment) int {
	result := runDoctor(context.Background(), defaultDoctorChecks(env.Getenv))

	if slices.Contains(args, "--json") {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

func runDoctor(ctx context.Context, checks *doctorChecks) *doctorResult {
	r := &doctorResult{Env: envInfo{
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		NoSandbox:  checks.getenv("ROD_NO_SANDBOX"),
		BrowserBin: checks.getenv("ROD_BROWSER_BIN"),
	}}
	r.Env.Container, r.Env.ContainerHint = checks.containerEnv()
	r.Env.CI = slices.ContainsFunc(ciMarkers, func(k string) bool { return checks.getenv(k) != "" })

	checkPandoc(ctx, checks, r)
	checkChrome(ctx, checks, r)
	checkTempDir(checks, r)

	switch {
	case len(r.Errors) > 0:
		r.Status = statusErrors
	case len(r.Warnings) > 0:
		r.Status = statusWarnings
	default:
		r.Status = statusReady
	}
	return r
}

// checkPandoc warns on a missing pandoc: Markdown input works without it.
func checkPandoc(ctx context.Context, checks *doctorChecks, r *doctorResult) {
	path, err := checks.lookPath(doc2substack.DefaultPandocPath)
	if err != nil {
		r.warn("pandoc not found: LaTeX input unavailable%s", hints.ForPandocMissing())
		return
	}
	r.Pandoc = toolInfo{Found: true, Path: path}
	if r.Pandoc.Version, err = checks.version(ctx, path); err != nil {
		r.warn("Could not get pandoc version: %v", err)
	}
}

// checkChrome warns on a missing browser since only --renderer browser needs
// one. An explicit ROD_BROWSER_BIN that does not exist is an error.
func checkChrome(ctx context.Context, checks *doctorChecks, r *doctorResult) {
	bin := r.Env.BrowserBin
	if bin == "" {
		var found bool
		if bin, found = checks.lookChrome(); !found {
			r.warn("Chrome/Chromium not found: --renderer browser unavailable%s", hints.ForBrowserConnect(hints.Browser{
				Sandboxed: r.Env.NoSandbox != "1",
				Isolated:  r.Env.Container || checks.getenv("CI") != "",
			}))
			return
		}
	}
	if !fileutil.FileExists(bin) {
		r.fail("Chrome not found at %s", bin)
		return
	}

	// Same rule the browser renderer applies when launching.
	sandbox := r.Env.NoSandbox != "1" && r.Env.BrowserBin == "" && checks.getenv("CI") != "true"
	r.Chrome = chromeInfo{toolInfo: toolInfo{Found: true, Path: bin}, Sandbox: sandbox}

	var err error
	if r.Chrome.Version, err = checks.version(ctx, bin); err != nil {
		r.warn("Could not get Chrome version: %v", err)
	}
	if sandbox && (r.Env.Container || r.Env.CI) {
		r.warn("Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// checkTempDir fails when the temp directory rejects writes; pandoc input
// and atomic output both go through it.
func checkTempDir(checks *doctorChecks, r *doctorResult) {
	dir := checks.tempDir()
	testFile := filepath.Join(dir, "doc2substack-doctor-write-test")
	if err := os.WriteFile(testFile, nil, 0o600); err != nil {
		r.fail("Temp directory not writable: %s", dir)
		return
	}
	_ = os.Remove(testFile)
	r.System.TempWritable = true
}

// isContainer reports whether the process runs in a container and which
// signal said so.
func isContainer(getenv func(string) string) (bool, string) {
	switch {
	case getenv("DOC2SUBSTACK_CONTAINER") == "1":
		return true, "DOC2SUBSTACK_CONTAINER=1"
	case fileutil.FileExists("/.dockerenv"):
		return true, "/.dockerenv"
	case getenv("container") != "":
		return true, "container=" + getenv("container")
	case getenv("KUBERNETES_SERVICE_HOST") != "":
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}

// ---------------------------------------------------------------------------
// Human-readable report
// ---------------------------------------------------------------------------

type reportLine struct {
	tag  string // OK, WARN or ERROR
	text string
}

func ok(format string, args ...any) reportLine {
	return reportLine{"OK", fmt.Sprintf(format, args...)}
}

func toolLines(t toolInfo) []reportLine {
	if !t.Found {
		return []reportLine{{"WARN", "Not found"}}
	}
	lines := []reportLine{ok("Found at %s", t.Path)}
	if t.Version != "" {
		lines = append(lines, ok("Version: %s", t.Version))
	}
	return lines
}

func printSection(w io.Writer, title string, lines []reportLine) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(w, title)
	for _, l := range lines {
		fmt.Fprintf(w, "  [%s] %s\n", l.tag, l.text)
	}
	fmt.Fprintln(w)
}

func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "doc2substack doctor")
	fmt.Fprintln(w)

	printSection(w, "Pandoc (LaTeX input)", toolLines(r.Pandoc))

	chrome := toolLines(r.Chrome.toolInfo)
	switch {
	case r.Chrome.Found && r.Chrome.Sandbox:
		chrome = append(chrome, ok("Sandbox: enabled"))
	case r.Chrome.Found:
		chrome = append(chrome, ok("Sandbox: disabled"))
	}
	printSection(w, "Chrome/Chromium (browser renderer)", chrome)

	env := []reportLine{ok("Platform: %s/%s", r.Env.OS, r.Env.Arch)}
	if r.Env.Container {
		env = append(env, ok("Container: detected (%s)", r.Env.ContainerHint))
	}
	if r.Env.CI {
		env = append(env, ok("CI: detected"))
	}
	printSection(w, "Environment", env)

	temp := reportLine{"ERROR", "Temp directory: not writable"}
	if r.System.TempWritable {
		temp = ok("Temp directory: writable")
	}
	printSection(w, "System", []reportLine{temp})

	var warnings, errs []reportLine
	for _, s := range r.Warnings {
		warnings = append(warnings, reportLine{"WARN", s})
	}
	for _, s := range r.Errors {
		errs = append(errs, reportLine{"ERROR", s})
	}
	printSection(w, "Warnings:", warnings)
	printSection(w, "Errors:", errs)

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to convert")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
