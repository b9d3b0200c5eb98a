package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	appName        = "pacfront"
	configFileName = "config.toml"
)

// Config represents the application configuration
type Config struct {
	Paths    PathsConfig    `mapstructure:"paths"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Tools    ToolsConfig    `mapstructure:"tools"`
	Terminal TerminalConfig `mapstructure:"terminal"`
	UI       UIConfig       `mapstructure:"ui"`
	History  HistoryConfig  `mapstructure:"history"`

	file string
}

// PathsConfig contains path-related configuration
type PathsConfig struct {
	DataDir  string `mapstructure:"data_dir"`
	DBFile   string `mapstructure:"db_file"`
	LogFile  string `mapstructure:"log_file"`
	CrashLog string `mapstructure:"crash_log"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Color string `mapstructure:"color"`
}

// ToolsConfig names the wrapped executables
type ToolsConfig struct {
	Pacman string `mapstructure:"pacman"`
	Yay    string `mapstructure:"yay"`
	Sudo   string `mapstructure:"sudo"`
}

// TerminalConfig controls where mutating commands run
type TerminalConfig struct {
	Mode      string `mapstructure:"mode"`
	Preferred string `mapstructure:"preferred"`
	KeepOpen  bool   `mapstructure:"keep_open"`
}

// UIConfig contains window and list settings
type UIConfig struct {
	Theme           string `mapstructure:"theme"`
	CustomThemeFile string `mapstructure:"custom_theme_file"`
	SearchLimit     int    `mapstructure:"search_limit"`
	InstalledLimit  int    `mapstructure:"installed_limit"`
	FuzzyFilter     bool   `mapstructure:"fuzzy_filter"`
	HideInstalled   bool   `mapstructure:"hide_installed"`
	WatchLocalDB    bool   `mapstructure:"watch_local_db"`
}

// HistoryConfig controls the operation history
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Keep    int  `mapstructure:"keep"`
}

// DefaultDir returns ~/.config/pacfront, honouring XDG_CONFIG_HOME
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	return filepath.Join(homeDir(), ".config", appName)
}

// Load loads configuration from the default directory and environment
func Load() (*Config, error) {
	return LoadFrom(DefaultDir())
}

// LoadFrom loads configuration from dir/config.toml and the environment.
// A missing file is not an error: defaults apply.
func LoadFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	setDefaults(v)

	// Environment variable overrides
	v.SetEnvPrefix("PACFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.file = v.ConfigFileUsed()
	if cfg.file == "" {
		cfg.file = filepath.Join(dir, configFileName)
	}

	cfg.Paths.DataDir = expandPath(cfg.Paths.DataDir)
	cfg.Paths.DBFile = expandPath(cfg.Paths.DBFile)
	cfg.Paths.LogFile = expandPath(cfg.Paths.LogFile)
	cfg.Paths.CrashLog = expandPath(cfg.Paths.CrashLog)
	cfg.UI.CustomThemeFile = expandPath(cfg.UI.CustomThemeFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the built-in configuration, as if no file existed
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	cfg.file = filepath.Join(DefaultDir(), configFileName)
	return &cfg
}

// File returns the path settings are saved to
func (c *Config) File() string {
	return c.file
}

// SetFile changes the path settings are saved to
func (c *Config) SetFile(path string) {
	c.file = path
}

// Validate checks values the rest of the program relies on
func (c *Config) Validate() error {
	switch strings.ToLower(c.Terminal.Mode) {
	case "inline", "external":
	default:
		return fmt.Errorf("invalid terminal.mode %q: want inline or external", c.Terminal.Mode)
	}
	if c.UI.SearchLimit < 0 || c.UI.InstalledLimit < 0 {
		return fmt.Errorf("ui limits must not be negative")
	}
	if c.History.Keep < 0 {
		return fmt.Errorf("history.keep must not be negative")
	}
	return nil
}

// Save writes the configuration to File() as TOML
func (c *Config) Save() error {
	if c.file == "" {
		c.file = filepath.Join(DefaultDir(), configFileName)
	}
	if err := os.MkdirAll(filepath.Dir(c.file), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	for key, val := range c.settings() {
		v.Set(key, val)
	}

	if err := v.WriteConfigAs(c.file); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) settings() map[string]any {
	return map[string]any{
		"paths.data_dir":       c.Paths.DataDir,
		"paths.db_file":        c.Paths.DBFile,
		"paths.log_file":       c.Paths.LogFile,
		"paths.crash_log":      c.Paths.CrashLog,
		"logging.level":        c.Logging.Level,
		"logging.color":        c.Logging.Color,
		"tools.pacman":         c.Tools.Pacman,
		"tools.yay":            c.Tools.Yay,
		"tools.sudo":           c.Tools.Sudo,
		"terminal.mode":        c.Terminal.Mode,
		"terminal.preferred":   c.Terminal.Preferred,
		"terminal.keep_open":   c.Terminal.KeepOpen,
		"ui.theme":             c.UI.Theme,
		"ui.custom_theme_file": c.UI.CustomThemeFile,
		"ui.search_limit":      c.UI.SearchLimit,
		"ui.installed_limit":   c.UI.InstalledLimit,
		"ui.fuzzy_filter":      c.UI.FuzzyFilter,
		"ui.hide_installed":    c.UI.HideInstalled,
		"ui.watch_local_db":    c.UI.WatchLocalDB,
		"history.enabled":      c.History.Enabled,
		"history.keep":         c.History.Keep,
	}
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	dataDir := filepath.Join(homeDir(), ".local", "share", appName)

	v.SetDefault("paths.data_dir", dataDir)
	v.SetDefault("paths.db_file", filepath.Join(dataDir, "history.db"))
	v.SetDefault("paths.log_file", filepath.Join(dataDir, appName+".log"))
	v.SetDefault("paths.crash_log", filepath.Join(os.TempDir(), "pacfront_error.log"))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.color", "auto")

	v.SetDefault("tools.pacman", "pacman")
	v.SetDefault("tools.yay", "yay")
	v.SetDefault("tools.sudo", "sudo")

	v.SetDefault("terminal.mode", "inline")
	v.SetDefault("terminal.preferred", "")
	v.SetDefault("terminal.keep_open", true)

	v.SetDefault("ui.theme", "System")
	v.SetDefault("ui.custom_theme_file", filepath.Join(dataDir, "custom-theme.toml"))
	v.SetDefault("ui.search_limit", 500)
	v.SetDefault("ui.installed_limit", 5000)
	v.SetDefault("ui.fuzzy_filter", false)
	v.SetDefault("ui.hide_installed", true)
	v.SetDefault("ui.watch_local_db", true)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.keep", 500)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.Getenv("HOME")
	}
	if home == "" {
		home = "."
	}
	return home
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}

	return os.ExpandEnv(path)
}
