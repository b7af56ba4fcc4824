//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary  = "verifier"
	pkg     = "github.com/OluwafemiOlasupo/resume-verifier"
	mainPkg = "./cmd/verifier"
)

// Default target when mage runs without arguments
var Default = Build

func version() string {
	if v := os.Getenv("VERSION"); v != "" {
		return v
	}
	v, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		return "dev"
	}
	return v
}

// Build compiles the verifier binary into bin/
func Build() error {
	ldflags := fmt.Sprintf("-s -w -X %s/internal/cli.Version=%s", pkg, version())
	// go-sqlite3 needs cgo
	env := map[string]string{"CGO_ENABLED": "1"}
	return sh.RunWithV(env, "go", "build", "-ldflags", ldflags, "-o", filepath.Join("bin", binary), mainPkg)
}

// Test runs the unit tests with the race detector
func Test() error {
	return sh.RunV("go", "test", "-race", "-count=1", "./...")
}

// Lint runs go vet
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs lint and tests
func Check() {
	mg.SerialDeps(Lint, Test)
}

// Serve builds and starts the HTTP API
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join("bin", binary), "serve")
}

// Clean removes build output
func Clean() error {
	return sh.Rm("bin")
}
