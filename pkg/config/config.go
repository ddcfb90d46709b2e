package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/prown/pkg/errors"
	"github.com/arthur-debert/prown/pkg/logging"
	"github.com/arthur-debert/prown/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// EnvPrefix is the prefix of environment variables read as settings.
const EnvPrefix = "PROWN_"

// Settings holds the runtime settings.
type Settings struct {
	Watch WatchSettings `koanf:"watch"`
	Exec  ExecSettings  `koanf:"exec"`
}

// WatchSettings tunes the watcher.
type WatchSettings struct {
	Debounce      time.Duration `koanf:"debounce"`
	QueueCapacity int           `koanf:"queue_capacity"`
	Ignore        []string      `koanf:"ignore"`
}

// ExecSettings tunes command execution.
type ExecSettings struct {
	Timeout time.Duration `koanf:"timeout"`
}

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// DefaultContent returns the built-in settings document.
func DefaultContent() string {
	return string(defaultConfig)
}

// Load reads the settings. An empty configFile means the file in the prown
// config directory; a missing file is not an error.
func Load(configFile string) (*Settings, error) {
	return load(configFile, nil)
}

// LoadWithOverrides is Load with a final layer of dotted keys
// ("watch.debounce") taking precedence over everything else.
func LoadWithOverrides(configFile string, overrides map[string]interface{}) (*Settings, error) {
	return load(configFile, overrides)
}

func load(configFile string, overrides map[string]interface{}) (*Settings, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load built-in settings")
	}

	// 2. User config file
	if configFile == "" {
		configFile = filepath.Join(paths.ConfigDir(), paths.ConfigFileName)
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load settings from %s", configFile).
				WithDetail("path", configFile)
		}
		logger.Debug().Str("path", configFile).Msg("Loaded user settings")
	}

	// 3. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load settings from the environment")
	}

	// 4. Explicit overrides (command-line flags)
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply setting overrides")
		}
	}

	var s Settings
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &s, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to decode settings")
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// envKey maps PROWN_WATCH_QUEUE_CAPACITY to watch.queue_capacity. Variables
// without a section part are dropped.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, name, ok := strings.Cut(key, "_")
	if !ok || section == "" || name == "" {
		return ""
	}
	return section + "." + name
}

// Validate checks value ranges.
func (s *Settings) Validate() error {
	if s.Watch.Debounce <= 0 {
		return errors.Newf(errors.ErrConfigLoad, "watch.debounce must be positive, got %s", s.Watch.Debounce).
			WithDetail("key", "watch.debounce").
			WithHint("use a duration such as \"500ms\" or \"3s\"")
	}
	if s.Watch.QueueCapacity < 1 {
		return errors.Newf(errors.ErrConfigLoad, "watch.queue_capacity must be at least 1, got %d", s.Watch.QueueCapacity).
			WithDetail("key", "watch.queue_capacity")
	}
	if s.Exec.Timeout < 0 {
		return errors.Newf(errors.ErrConfigLoad, "exec.timeout cannot be negative, got %s", s.Exec.Timeout).
			WithDetail("key", "exec.timeout").
			WithHint("use 0s to disable the limit")
	}
	return nil
}
