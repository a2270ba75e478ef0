package main

import (
	"strings"
	"testing"
)

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{args: nil, wantCode: ExitSuccess, wantStdout: "Usage: doc2substack <command>"},
		{args: []string{"convert"}, wantCode: ExitSuccess, wantStdout: "--renderer <s>"},
		{args: []string{"config"}, wantCode: ExitSuccess, wantStdout: "Usage: doc2substack config"},
		{args: []string{"doctor"}, wantCode: ExitSuccess, wantStdout: "--json"},
		{args: []string{"completion"}, wantCode: ExitSuccess, wantStdout: "powershell"},
		{args: []string{"version"}, wantCode: ExitSuccess, wantStdout: "Usage: doc2substack version"},
		{args: []string{"help"}, wantCode: ExitSuccess, wantStdout: "Usage: doc2substack help"},
		{args: []string{"publish"}, wantCode: ExitUsage, wantStderr: "Unknown command: publish"},
	}

	for _, tt := range tests {
		name := "none"
		if len(tt.args) > 0 {
			name = tt.args[0]
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(nil)
			if code := runHelp(tt.args, env); code != tt.wantCode {
				t.Errorf("runHelp(%v) = %d, want %d", tt.args, code, tt.wantCode)
			}
			if !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want to contain %q", stdout.String(), tt.wantStdout)
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

// Every convert flag must be documented in the help text.
func TestConvertUsage_ListsAllFlags(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	printConvertUsage(&buf)
	usage := buf.String()

	for _, f := range extractFlagsFromFlagSet(buildConvertFlagSet()) {
		if !strings.Contains(usage, "--"+f.Long) {
			t.Errorf("convert usage does not mention --%s", f.Long)
		}
	}
	for name := range knownEnvVars {
		if !strings.Contains(usage, name) {
			t.Errorf("convert usage does not mention %s", name)
		}
	}
}

func TestPrintUsage_ListsCommands(t *testing.T) {
	t.Parallel()

	var buf strings.Builder
	printUsage(&buf)

	for _, name := range commands {
		if !strings.Contains(buf.String(), "  "+name+" ") {
			t.Errorf("usage does not list %q", name)
		}
	}
}
