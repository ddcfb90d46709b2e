// Package paths centralizes the locations prown reads and writes.
//
// User-level files follow the XDG Base Directory specification:
//
//	$XDG_CONFIG_HOME/prown/config.toml     runtime settings
//	$XDG_CONFIG_HOME/prown/projects.toml   registered projects
//	$XDG_STATE_HOME/prown/prown.log        log file
//
// PROWN_CONFIG_DIR and PROWN_STATE_DIR override the two directories.
//
// The project root is the nearest directory at or above the working
// directory that holds a .prown.toml descriptor. When none exists the
// working directory itself is used.
package paths
