//go:build mage

// Package main contains Mage build targets for the review frontend.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binDir = "bin"

// binaries maps output names to their command packages.
var binaries = map[string]string{
	"review-frontend": "./cmd/server",
	"reviewctl":       "./cmd/reviewctl",
}

// dataDirs are the working directories the server writes to.
var dataDirs = []string{
	"data/uploads",
	"data/exports",
}

// Init creates the local data directories.
func Init() error {
	for _, dir := range dataDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}
	return nil
}

// Build compiles the server and the CLI into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	for name, pkg := range binaries {
		out := filepath.Join(binDir, name)
		if err := sh.RunV("go", "build", "-o", out, pkg); err != nil {
			return fmt.Errorf("go build %s: %w", pkg, err)
		}
		fmt.Printf("Built %s\n", out)
	}
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Run builds everything and starts the server.
func Run() error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, "review-frontend"))
}
