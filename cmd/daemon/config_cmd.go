// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ManuGH/vidmux/internal/config"
	"github.com/ManuGH/vidmux/internal/version"
	"gopkg.in/yaml.v3"
)

func runConfigCLI(args []string) int {
	return configCLI(args, os.Stdout, os.Stderr)
}

func configCLI(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage(stderr)
		return 0
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:], stdout, stderr)
	case "dump":
		return runConfigDump(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage(stderr)
		return 2
	}
}

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  vidmux config validate [--file|-f config.yaml]")
	fmt.Fprintln(w, "  vidmux config dump [--file|-f config.yaml] [--format=yaml|json]")
}

func runConfigValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("vidmux config validate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	configPath := strings.TrimSpace(file)
	if configPath == "" {
		fmt.Fprintln(stderr, "Error: --file is required")
		return 2
	}

	loader := config.NewLoader(configPath, version.Version)
	if _, err := loader.Load(); err != nil {
		fmt.Fprintf(stderr, "Configuration error in %s:\n  %v\n", configPath, err)
		return 1
	}

	fmt.Fprintf(stdout, "%s is valid\n", configPath)
	return 0
}

// runConfigDump prints the effective configuration: defaults, then the
// optional file, then environment overrides.
func runConfigDump(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("vidmux config dump", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var file string
	var format string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	fs.StringVar(&format, "format", "yaml", "output format: yaml or json")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	loader := config.NewLoader(strings.TrimSpace(file), version.Version)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error:\n  %v\n", err)
		return 1
	}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			fmt.Fprintf(stderr, "encode: %v\n", err)
			return 1
		}
		_ = enc.Close()
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(cfg); err != nil {
			fmt.Fprintf(stderr, "encode: %v\n", err)
			return 1
		}
	default:
		fmt.Fprintf(stderr, "Error: unknown format %q\n", format)
		return 2
	}
	return 0
}
