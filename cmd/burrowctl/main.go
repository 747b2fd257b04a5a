// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

// burrowctl is a command-line client exercising a single burrow drive:
// creating one, writing and reading files, listing and removing
// entries, and reading a historical checkout.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/burrowfs/burrow/lib/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	name, rest := args[0], args[1:]
	if name == "--help" || name == "-h" {
		printUsage()
		return 0
	}

	command, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "burrowctl: unknown command %q\n", name)
		printUsage()
		return 2
	}

	if err := command(rest); err != nil {
		fmt.Fprintf(os.Stderr, "burrowctl: %v\n", err)
		return 1
	}
	return 0
}

var commands = map[string]func(args []string) error{
	"create":   runCreate,
	"write":    runWrite,
	"read":     runRead,
	"ls":       runLs,
	"stat":     runStat,
	"rm":       runRm,
	"mkdir":    runMkdir,
	"rmdir":    runRmdir,
	"checkout": runCheckout,
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: burrowctl <command> [flags] [args]

commands:
  create               create a new drive
  write PATH           write stdin to PATH
  read PATH            write PATH's content to stdout
  ls PATH              list PATH's children
  stat PATH            print PATH's Stat record
  rm PATH              remove PATH
  mkdir PATH           create a directory entry
  rmdir PATH           remove an empty directory
  checkout N PATH      read PATH as of version N

every command accepts --dir DIR (default: config data root or ./burrow-data)
and --config PATH (default: $BURROW_CONFIG, if set)`)
}

// resolveDataRoot applies the same precedence order as the rest of the
// ambient stack: an explicit --dir flag wins, otherwise the loaded
// config's DataRoot, otherwise a working-directory default so
// burrowctl is usable with no configuration file at all.
func resolveDataRoot(flagSet *pflag.FlagSet, dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}

	configPath, _ := flagSet.GetString("config")
	if configPath == "" {
		configPath = os.Getenv("BURROW_CONFIG")
	}
	if configPath == "" {
		return "burrow-data", nil
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("loading config: %w", err)
	}
	return cfg.DataRoot, nil
}

func newFlagSet(name string) (*pflag.FlagSet, *string, *string) {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	dir := flagSet.String("dir", "", "drive storage folder")
	configPath := flagSet.String("config", "", "path to a burrow.yaml config file")
	return flagSet, dir, configPath
}
