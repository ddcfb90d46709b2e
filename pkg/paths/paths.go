package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/prown/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for prown
	EnvConfigDir = "PROWN_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for prown
	EnvStateDir = "PROWN_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// File and directory names. These are fixed; tunable behavior belongs in
// pkg/config.
const (
	// AppDirName is the directory name under the XDG roots
	AppDirName = "prown"

	// DescriptorFile is the project descriptor file name
	DescriptorFile = ".prown.toml"

	// ConfigFileName is the user settings file
	ConfigFileName = "config.toml"

	// ProjectsFileName is the registered project list
	ProjectsFileName = "projects.toml"

	// LogFileName is the name of the log file
	LogFileName = "prown.log"
)

// Paths resolves every location prown uses.
type Paths interface {
	ProjectRoot() string
	UsedFallback() bool
	DescriptorPath() string
	ConfigDir() string
	ConfigFilePath() string
	ProjectsFilePath() string
	StateDir() string
	LogFilePath() string
}

type paths struct {
	projectRoot  string
	usedFallback bool
	configDir    string
	stateDir     string
}

// New creates a Paths instance. An empty projectRoot is discovered from the
// working directory.
func New(projectRoot string) (Paths, error) {
	p := &paths{}

	if projectRoot == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrIO, "failed to get current directory")
		}
		root, found := FindProjectRoot(cwd)
		p.projectRoot = root
		p.usedFallback = !found
	} else {
		p.projectRoot = ExpandHome(projectRoot)
	}

	absRoot, err := filepath.Abs(p.projectRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to get absolute path for %s", p.projectRoot)
	}
	p.projectRoot = absRoot

	p.configDir = ConfigDir()
	p.stateDir = StateDir()
	return p, nil
}

// FindProjectRoot walks up from start to the first directory holding a
// descriptor. It returns start and false when there is none.
func FindProjectRoot(start string) (string, bool) {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, DescriptorFile)); err == nil && !info.IsDir() {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start, false
		}
		dir = parent
	}
}

// ConfigDir returns the prown config directory, honoring PROWN_CONFIG_DIR.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// StateDir returns the prown state directory, honoring PROWN_STATE_DIR.
func StateDir() string {
	if dir := os.Getenv(EnvStateDir); dir != "" {
		return ExpandHome(dir)
	}
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, AppDirName)
	}
	return filepath.Join(xdg.StateHome, AppDirName)
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	// ~user is left alone
	return path
}

func (p *paths) ProjectRoot() string {
	return p.projectRoot
}

// UsedFallback reports whether no descriptor was found and the working
// directory was used as the project root.
func (p *paths) UsedFallback() bool {
	return p.usedFallback
}

func (p *paths) DescriptorPath() string {
	return filepath.Join(p.projectRoot, DescriptorFile)
}

func (p *paths) ConfigDir() string {
	return p.configDir
}

func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

func (p *paths) ProjectsFilePath() string {
	return filepath.Join(p.configDir, ProjectsFileName)
}

func (p *paths) StateDir() string {
	return p.stateDir
}

func (p *paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}
