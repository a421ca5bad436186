// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package bridge

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"slices"

	rerrors "rosetta/cli/internal/errors"
)

// RuntimeConfig describes where the interpreter and the worker bundle live.
type RuntimeConfig struct {
	// Interpreter is a binary name resolved on PATH, or a path.
	Interpreter string
	// InterpreterArgs are passed as-is; the script itself arrives on stdin.
	InterpreterArgs []string
	// WorkerDir holds the worker modules and their node_modules.
	WorkerDir  string
	CoreModule string
	AIModule   string
}

// DefaultRuntimeConfig returns the layout produced by the worker's npm build.
func DefaultRuntimeConfig(workerDir string) RuntimeConfig {
	return RuntimeConfig{
		Interpreter:     "node",
		InterpreterArgs: []string{"--input-type=module"},
		WorkerDir:       workerDir,
		CoreModule:      "dist/asc.js",
		AIModule:        "dist/openai-service.js",
	}
}

// Runtime is a verified worker environment. Obtain one from Setup.
type Runtime struct {
	interpreter string
	args        []string
	dir         string
	modules     map[Module]string
}

// Setup verifies the interpreter is resolvable and the worker dependencies
// are installed. Nothing is spawned.
func Setup(cfg RuntimeConfig) (*Runtime, error) {
	def := DefaultRuntimeConfig(cfg.WorkerDir)
	if cfg.Interpreter == "" {
		cfg.Interpreter = def.Interpreter
	}
	if cfg.InterpreterArgs == nil {
		cfg.InterpreterArgs = def.InterpreterArgs
	}
	if cfg.CoreModule == "" {
		cfg.CoreModule = def.CoreModule
	}
	if cfg.AIModule == "" {
		cfg.AIModule = def.AIModule
	}
	bin, err := exec.LookPath(cfg.Interpreter)
	if err != nil {
		return nil, rerrors.Wrap(rerrors.EnvironmentNotReady,
			fmt.Sprintf("%s not found on PATH; install Node.js 18 or newer and retry", cfg.Interpreter), err)
	}

	dir, err := filepath.Abs(cfg.WorkerDir)
	if err != nil {
		return nil, rerrors.Wrap(rerrors.EnvironmentNotReady, "resolve worker directory", err)
	}
	if st, err := os.Stat(filepath.Join(dir, "node_modules")); err != nil || !st.IsDir() {
		return nil, rerrors.Wrap(rerrors.EnvironmentNotReady,
			fmt.Sprintf("worker dependencies are not installed; run: cd %s && npm install", dir), err)
	}

	rt := &Runtime{
		interpreter: bin,
		args:        slices.Clone(cfg.InterpreterArgs),
		dir:         dir,
		modules:     make(map[Module]string, 2),
	}
	for _, m := range []struct {
		mod Module
		rel string
	}{{CoreModule, cfg.CoreModule}, {AIModule, cfg.AIModule}} {
		path := m.rel
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, m.rel)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, rerrors.Wrap(rerrors.EnvironmentNotReady,
				fmt.Sprintf("worker module %s is missing; run: cd %s && npm run build", path, dir), err)
		}
		rt.modules[m.mod] = fileURL(path)
	}
	return rt, nil
}

// Interpreter returns the resolved interpreter path.
func (r *Runtime) Interpreter() string { return r.interpreter }

// WorkerDir returns the absolute worker directory.
func (r *Runtime) WorkerDir() string { return r.dir }

// ModuleURL returns the import URL for mod.
func (r *Runtime) ModuleURL(mod Module) string { return r.modules[mod] }

func fileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	if filepath.VolumeName(path) != "" {
		u.Path = "/" + u.Path
	}
	return u.String()
}
