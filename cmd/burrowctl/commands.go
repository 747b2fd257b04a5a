// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/burrowfs/burrow/drive"
	"github.com/burrowfs/burrow/lib/statcodec"
)

// keyFileName is where burrowctl stashes a drive's secret key so later
// invocations against the same --dir reopen it writable. The
// coordinator itself has no opinion on key storage; this is purely a
// convenience of the CLI.
const keyFileName = ".burrowkey"

func runCreate(args []string) error {
	flagSet, dirFlag, _ := newFlagSet("create")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	dir, err := resolveDataRoot(flagSet, *dirFlag)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	d, err := drive.Open(drive.Options{Storage: dir})
	if err != nil {
		return fmt.Errorf("creating drive: %w", err)
	}
	defer d.Close()

	if err := writeKeyFile(dir, d.SecretKey()); err != nil {
		return err
	}

	fmt.Printf("created drive at %s\n", dir)
	fmt.Printf("public key: %s\n", hex.EncodeToString(d.Key()))
	return nil
}

func runWrite(args []string) error {
	flagSet, dirFlag, _ := newFlagSet("write")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	positional := flagSet.Args()
	if len(positional) != 1 {
		return fmt.Errorf("write requires exactly one path argument")
	}
	path := positional[0]

	dir, err := resolveDataRoot(flagSet, *dirFlag)
	if err != nil {
		return err
	}
	d, err := openExisting(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	if err := d.WriteFile(path, data, statcodec.Options{}); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func runRead(args []string) error {
	flagSet, dirFlag, _ := newFlagSet("read")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	positional := flagSet.Args()
	if len(positional) != 1 {
		return fmt.Errorf("read requires exactly one path argument")
	}
	path := positional[0]

	dir, err := resolveDataRoot(flagSet, *dirFlag)
	if err != nil {
		return err
	}
	d, err := openExisting(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	data, err := d.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runLs(args []string) error {
	flagSet, dirFlag, _ := newFlagSet("ls")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	positional := flagSet.Args()
	path := "/"
	if len(positional) == 1 {
		path = positional[0]
	}

	dir, err := resolveDataRoot(flagSet, *dirFlag)
	if err != nil {
		return err
	}
	d, err := openExisting(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	names, err := d.Readdir(path)
	if err != nil {
		return fmt.Errorf("listing %s: %w", path, err)
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runStat(args []string) error {
	flagSet, dirFlag, _ := newFlagSet("stat")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	positional := flagSet.Args()
	if len(positional) != 1 {
		return fmt.Errorf("stat requires exactly one path argument")
	}
	path := positional[0]

	dir, err := resolveDataRoot(flagSet, *dirFlag)
	if err != nil {
		return err
	}
	d, err := openExisting(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	stat, err := d.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	fmt.Printf("kind:        %s\n", stat.Kind)
	fmt.Printf("mode:        %o\n", stat.Mode)
	fmt.Printf("size:        %d\n", stat.Size)
	fmt.Printf("blocks:      %d\n", stat.Blocks)
	fmt.Printf("offset:      %d\n", stat.Offset)
	fmt.Printf("byte offset: %d\n", stat.ByteOffset)
	fmt.Printf("mtime:       %d\n", stat.MTime)
	fmt.Printf("ctime:       %d\n", stat.CTime)
	return nil
}

func runRm(args []string) error {
	flagSet, dirFlag, _ := newFlagSet("rm")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	positional := flagSet.Args()
	if len(positional) != 1 {
		return fmt.Errorf("rm requires exactly one path argument")
	}
	dir, err := resolveDataRoot(flagSet, *dirFlag)
	if err != nil {
		return err
	}
	d, err := openExisting(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Unlink(positional[0])
}

func runMkdir(args []string) error {
	flagSet, dirFlag, _ := newFlagSet("mkdir")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	positional := flagSet.Args()
	if len(positional) != 1 {
		return fmt.Errorf("mkdir requires exactly one path argument")
	}
	dir, err := resolveDataRoot(flagSet, *dirFlag)
	if err != nil {
		return err
	}
	d, err := openExisting(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Mkdir(positional[0], statcodec.Options{})
}

func runRmdir(args []string) error {
	flagSet, dirFlag, _ := newFlagSet("rmdir")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	positional := flagSet.Args()
	if len(positional) != 1 {
		return fmt.Errorf("rmdir requires exactly one path argument")
	}
	dir, err := resolveDataRoot(flagSet, *dirFlag)
	if err != nil {
		return err
	}
	d, err := openExisting(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Rmdir(positional[0])
}

func runCheckout(args []string) error {
	flagSet, dirFlag, _ := newFlagSet("checkout")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	positional := flagSet.Args()
	if len(positional) != 2 {
		return fmt.Errorf("checkout requires a version and a path argument")
	}
	version, err := strconv.Atoi(positional[0])
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", positional[0], err)
	}
	path := positional[1]

	dir, err := resolveDataRoot(flagSet, *dirFlag)
	if err != nil {
		return err
	}
	d, err := openExisting(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	view, err := d.Checkout(version)
	if err != nil {
		return fmt.Errorf("checkout %d: %w", version, err)
	}
	defer view.Close()

	data, err := view.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s at version %d: %w", path, version, err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

// openExisting opens dir's drive using its saved key file if present.
// burrowctl always has the secret key for a drive it created, so read
// commands reopen writable too; there is no separate public-key-only
// path through this CLI.
func openExisting(dir string) (*drive.Drive, error) {
	if secretKey, err := readKeyFile(dir); err == nil {
		d, err := drive.Open(drive.Options{Storage: dir, SecretKey: secretKey})
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", dir, err)
		}
		return d, nil
	}
	return nil, fmt.Errorf("no key file found under %s; run 'burrowctl create' first", dir)
}

func writeKeyFile(dir string, secretKey ed25519.PrivateKey) error {
	path := filepath.Join(dir, keyFileName)
	encoded := hex.EncodeToString(secretKey)
	if err := os.WriteFile(path, []byte(encoded), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func readKeyFile(dir string) (ed25519.PrivateKey, error) {
	path := filepath.Join(dir, keyFileName)
	encoded, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	decoded, err := hex.DecodeString(string(encoded))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if len(decoded) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%s: expected %d bytes, got %d", path, ed25519.PrivateKeySize, len(decoded))
	}
	return ed25519.PrivateKey(decoded), nil
}
