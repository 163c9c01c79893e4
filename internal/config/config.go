// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/bethropolis/scatter/internal/logger"
	"github.com/spf13/pflag"
)

// Config holds the application's combined configuration (spec §6 Config
// file): a small set of named TOML sections, each independently
// overridable, plus the ambient logger section the teacher's config
// already carried.
type Config struct {
	Logger     logger.Config    `toml:"logger"`
	EditorOpen EditorOpenConfig `toml:"editor_open"`
	Search     SearchConfig     `toml:"search"`
	Preview    PreviewConfig    `toml:"preview"`
	Style      StyleConfig      `toml:"style"`
	Keys       KeysConfig       `toml:"keys"`
}

// EditorOpenConfig controls how a selected match is opened in an external
// editor. Command is a shell-word template; "%file" and "%line" are
// substituted with the match's path and 1-based line number before exec.
type EditorOpenConfig struct {
	Command       string `toml:"command"`
	ExitAfterOpen bool   `toml:"exit_after_open"`
}

// SearchConfig holds defaults for the search-fields screen.
type SearchConfig struct {
	DisablePrepopulatedFields bool `toml:"disable_prepopulated_fields"`
	InterpretEscapeSequences  bool `toml:"interpret_escape_sequences"`
}

// PreviewConfig holds defaults for how match content is rendered.
type PreviewConfig struct {
	WrapText bool   `toml:"wrap_text"`
	Theme    string `toml:"theme"`
}

// StyleConfig holds terminal rendering overrides.
type StyleConfig struct {
	ForceTrueColor bool `toml:"force_true_color"`
}

// KeysConfig maps a screen name (e.g. "SelectingResults", "Results")
// to a key-binding override table (key chord -> action name). An absent
// screen or key falls back to the built-in default keymap.
type KeysConfig map[string]map[string]string

var (
	loadedConfig *Config
	loadOnce     sync.Once
	loadErr      error
)

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.Config{
			LogLevel:    "info",
			LogFilePath: "", // Empty means default path logic in logger.Init applies
		},
		EditorOpen: EditorOpenConfig{
			Command:       DefaultEditorCommand,
			ExitAfterOpen: DefaultExitAfterOpen,
		},
		Search: SearchConfig{
			DisablePrepopulatedFields: DefaultDisablePrepopulatedFields,
			InterpretEscapeSequences:  DefaultInterpretEscapeSequences,
		},
		Preview: PreviewConfig{
			WrapText: DefaultWrapText,
			Theme:    DefaultPreviewTheme,
		},
		Style: StyleConfig{
			ForceTrueColor: DefaultForceTrueColor,
		},
		Keys: KeysConfig{},
	}
}

// loadFromFile attempts to load configuration from a TOML file. A missing
// file is not an error. Unrecognized keys ARE an error (spec §6: "Unknown
// keys are rejected"), since a typo'd section name should fail loudly
// rather than silently not apply.
func loadFromFile(filePath string, verbose bool) (*Config, error) {
	cfg := &Config{} // Start empty, we'll merge later
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		if verbose {
			logger.Debugf("Config file not found: %s", filePath)
		}
		return cfg, nil // File not found is not an error here
	}
	if err != nil {
		return cfg, fmt.Errorf("error checking config file '%s': %w", filePath, err)
	}

	if verbose {
		logger.Debugf("Attempting to load configuration from: %s", filePath)
	}
	metadata, err := toml.DecodeFile(filePath, cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("config file '%s': unrecognized keys: %v", filePath, undecoded)
	}
	if verbose {
		logger.Infof("Successfully loaded configuration from: %s", filePath)
	}
	return cfg, nil
}

// validate checks config values and resets invalid ones to defaults.
func (c *Config) validate() {
	defaults := NewDefaultConfig()

	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}
	if c.EditorOpen.Command == "" {
		c.EditorOpen.Command = defaults.EditorOpen.Command
	}
	if c.Preview.Theme == "" {
		c.Preview.Theme = defaults.Preview.Theme
	}
	if c.Keys == nil {
		c.Keys = KeysConfig{}
	}
}

// LoadConfig orchestrates loading defaults, file, applying flags, and
// validation. It should be called only once, typically from main.
// configDirOverride implements the §6 "--config-dir <path>" flag: when
// set, both the config file and the themes directory are resolved
// under it instead of the platform default.
func LoadConfig(configFilePath, configDirOverride string, fs *pflag.FlagSet, flags *Flags) (*Config, error) {
	loadOnce.Do(func() {
		verbose := false // logger isn't initialized yet during initial load

		cfg := NewDefaultConfig()

		effectivePath := configFilePath
		if effectivePath == "" {
			configDir := configDirOverride
			if configDir == "" {
				if d, err := os.UserConfigDir(); err == nil {
					configDir = filepath.Join(d, AppName)
				}
			}
			if configDir != "" {
				effectivePath = filepath.Join(configDir, DefaultConfigFileName)
			}
		}

		if effectivePath != "" {
			fileCfg, err := loadFromFile(effectivePath, verbose)
			if err != nil {
				loadErr = err
			} else if fileCfg != nil {
				if fileCfg.Logger.LogLevel != "" {
					cfg.Logger = fileCfg.Logger
				}
				if fileCfg.EditorOpen.Command != "" {
					cfg.EditorOpen.Command = fileCfg.EditorOpen.Command
				}
				cfg.EditorOpen.ExitAfterOpen = fileCfg.EditorOpen.ExitAfterOpen
				cfg.Search = fileCfg.Search
				if fileCfg.Preview.Theme != "" {
					cfg.Preview.Theme = fileCfg.Preview.Theme
				}
				cfg.Preview.WrapText = fileCfg.Preview.WrapText
				cfg.Style = fileCfg.Style
				if len(fileCfg.Keys) > 0 {
					cfg.Keys = fileCfg.Keys
				}
			}
		}

		if flags != nil && fs != nil {
			flags.ApplyOverrides(fs, cfg, verbose)
		}

		cfg.validate()

		loadedConfig = cfg
	})

	return loadedConfig, loadErr
}

// Get returns the loaded application configuration. Panics if LoadConfig
// wasn't called.
func Get() *Config {
	if loadedConfig == nil {
		panic("config.Get() called before config.LoadConfig()")
	}
	return loadedConfig
}
