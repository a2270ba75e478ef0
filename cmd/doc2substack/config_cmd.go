package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-doc2substack/internal/yamlutil"
)

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: doc2substack config [-c <name>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration (config file, then environment")
	fmt.Fprintln(w, "overrides) as YAML. The output is a valid config file.")
}

// runConfigCmd prints the effective configuration as YAML.
func runConfigCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	var configName string
	fs.StringVarP(&configName, "config", "c", "", "config file name or path")
	fs.Usage = func() { printConfigUsage(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	if err := printEffectiveConfig(env.Stdout, configName, env); err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, configName))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// printEffectiveConfig resolves the config the way convert does and writes it.
func printEffectiveConfig(w io.Writer, configName string, env *Environment) error {
	envCfg := loadEnvConfig(env.Getenv)

	cfg, err := loadConfig(configName, envCfg.ConfigPath, env.Config)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yamlutil.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = w.Write(data)
	return err
}
