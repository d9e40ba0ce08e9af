//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binary = "bin/softrast"

// Default target when mage runs without arguments.
var Default = Build

// The OBJ loader pulls in g3n's GL bindings, which need cgo.
const cgo = "CGO_ENABLED=1"

// Build compiles the softrast binary into bin/.
func Build() error {
	if err := os.MkdirAll("bin", 0o755); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "-o", binary, "./cmd/softrast"), withStream(), withEnv(cgo))
	return err
}

// Test runs the unit tests with the race detector.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream(), withEnv(cgo))
	return err
}

// Bench runs the rasterizer and math benchmarks.
func Bench() error {
	_, err := executeCmd("go", withArgs("test", "-run", "^$", "-bench", ".", "./pkg/..."), withStream(), withEnv(cgo))
	return err
}

// Lint runs go vet.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build and render output.
func Clean() error {
	if err := sh.Rm("bin"); err != nil {
		return err
	}
	return sh.Rm("out")
}

type Render mg.Namespace

// Turntable renders a headless turntable of MODEL (default testdata/cube.obj) into out/.
func (Render) Turntable() error {
	mg.Deps(Build)
	model := os.Getenv("MODEL")
	if model == "" {
		model = "testdata/cube.obj"
	}
	_, err := executeCmd(binary, withArgs("-out", "out", "-frames", "36", model), withStream())
	return err
}
