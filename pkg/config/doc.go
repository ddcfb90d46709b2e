// Package config loads prown's runtime settings.
//
// Settings are layered, later layers overriding earlier ones:
//
//  1. built-in defaults (embedded/defaults.toml)
//  2. the user config file, $PROWN_CONFIG_DIR/config.toml or
//     $XDG_CONFIG_HOME/prown/config.toml
//  3. PROWN_* environment variables; the first underscore after the prefix
//     separates section and key, so PROWN_WATCH_QUEUE_CAPACITY sets
//     watch.queue_capacity
//
// The project descriptor (.prown.toml) is not a settings layer; it is read
// by pkg/descriptor.
package config
