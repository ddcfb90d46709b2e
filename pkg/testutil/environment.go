package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/prown/pkg/paths"
)

// Environment is an isolated prown installation for one test.
type Environment struct {
	// Root holds every directory the environment creates.
	Root string
	// ConfigDir is exported as PROWN_CONFIG_DIR.
	ConfigDir string
	// StateDir is exported as PROWN_STATE_DIR.
	StateDir string
	// Work is where Project creates project directories.
	Work string

	t *testing.T
}

// NewEnvironment creates the directories and points the prown environment
// variables at them. Variables are restored when the test ends.
func NewEnvironment(t *testing.T) *Environment {
	t.Helper()

	root := t.TempDir()
	env := &Environment{
		Root:      root,
		ConfigDir: filepath.Join(root, "config"),
		StateDir:  filepath.Join(root, "state"),
		Work:      filepath.Join(root, "work"),
		t:         t,
	}
	CreateDir(t, root, "work")

	t.Setenv(paths.EnvConfigDir, env.ConfigDir)
	t.Setenv(paths.EnvStateDir, env.StateDir)
	return env
}

// Project creates a project directory named name. A non-empty descriptor is
// written as its .prown.toml.
func (e *Environment) Project(name, descriptor string) string {
	e.t.Helper()

	dir := CreateDir(e.t, e.Work, name)
	if descriptor != "" {
		CreateFile(e.t, dir, paths.DescriptorFile, descriptor)
	}
	return dir
}

// Chdir changes the working directory for the rest of the test.
func (e *Environment) Chdir(dir string) {
	e.t.Helper()

	old, err := os.Getwd()
	if err != nil {
		e.t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		e.t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
	e.t.Cleanup(func() { _ = os.Chdir(old) })
}
