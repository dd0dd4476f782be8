package config

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/jamesainslie/clipr/pkg/clipr/history"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// GeneralConfig holds history and UI behaviour.
type GeneralConfig struct {
	MaxHistory          int    `mapstructure:"max_history"`
	ExitOnSelect        bool   `mapstructure:"exit_on_select"`
	ViewMode            string `mapstructure:"view_mode"`
	ShowPreviewMetadata bool   `mapstructure:"show_preview_metadata"`
}

// ImagesConfig holds image capture and preview limits.
type ImagesConfig struct {
	MaxSize        string `mapstructure:"max_size"`
	MaxMemorySize  string `mapstructure:"max_memory_size"`
	MaxPreviewSize string `mapstructure:"max_preview_size"`
	CacheSize      int    `mapstructure:"cache_size"`
	PreviewWidth   int    `mapstructure:"preview_width"`
	PreviewHeight  int    `mapstructure:"preview_height"`
}

// StorageConfig selects where the history lives.
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // file or badger
	Path    string `mapstructure:"path"`    // data directory, empty means DataDir()
}

// ClipboardConfig selects the clipboard writer.
type ClipboardConfig struct {
	Backend string `mapstructure:"backend"` // auto, wayland or system
}

// PermanentRegister defines a register that always holds the same content.
// Exactly one of Content or File is set.
type PermanentRegister struct {
	Key         string `mapstructure:"key"`
	Content     string `mapstructure:"content"`
	File        string `mapstructure:"file"`
	MIMEType    string `mapstructure:"mime_type"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
}

// Config represents the application configuration.
type Config struct {
	General            GeneralConfig       `mapstructure:"general"`
	Images             ImagesConfig        `mapstructure:"images"`
	Storage            StorageConfig       `mapstructure:"storage"`
	Clipboard          ClipboardConfig     `mapstructure:"clipboard"`
	Logging            LoggingConfig       `mapstructure:"logging"`
	PermanentRegisters []PermanentRegister `mapstructure:"permanent_registers"`

	// File is the config file that was read, empty when defaults were used.
	File string `mapstructure:"-"`
}

// Load loads configuration from file and environment variables. An empty
// path searches, in order of precedence:
//   - $XDG_CONFIG_HOME/clipr/config.yaml
//   - $HOME/.config/clipr/config.yaml
//
// Environment variables are prefixed with CLIPR_ (e.g., CLIPR_GENERAL_MAX_HISTORY).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			v.AddConfigPath(filepath.Join(xdgConfigHome, "clipr"))
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		v.AddConfigPath(filepath.Join(homeDir, ".config", "clipr"))
	}

	v.SetEnvPrefix("CLIPR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.max_history", DefaultMaxHistory)
	v.SetDefault("general.exit_on_select", true)
	v.SetDefault("general.view_mode", DefaultViewMode)
	v.SetDefault("general.show_preview_metadata", true)

	v.SetDefault("images.max_size", DefaultMaxImageSize)
	v.SetDefault("images.max_memory_size", DefaultMaxMemorySize)
	v.SetDefault("images.max_preview_size", DefaultMaxPreviewSize)
	v.SetDefault("images.cache_size", DefaultCacheSize)
	v.SetDefault("images.preview_width", DefaultPreviewWidth)
	v.SetDefault("images.preview_height", DefaultPreviewHeight)

	v.SetDefault("storage.backend", DefaultStorageBackend)
	v.SetDefault("storage.path", "") // Empty means use DataDir
	v.SetDefault("clipboard.backend", DefaultClipboardBackend)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"watcher": "warn",
	})

	v.SetDefault("permanent_registers", []map[string]any{})
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			MaxHistory:          DefaultMaxHistory,
			ExitOnSelect:        true,
			ViewMode:            DefaultViewMode,
			ShowPreviewMetadata: true,
		},
		Images: ImagesConfig{
			MaxSize:        DefaultMaxImageSize,
			MaxMemorySize:  DefaultMaxMemorySize,
			MaxPreviewSize: DefaultMaxPreviewSize,
			CacheSize:      DefaultCacheSize,
			PreviewWidth:   DefaultPreviewWidth,
			PreviewHeight:  DefaultPreviewHeight,
		},
		Storage:   StorageConfig{Backend: DefaultStorageBackend},
		Clipboard: ClipboardConfig{Backend: DefaultClipboardBackend},
		Logging: LoggingConfig{
			Level: "info",
			Rotation: RotationConfig{
				MaxSize:    "10MB",
				MaxAge:     30,
				MaxBackups: 5,
				Daily:      true,
			},
			Components: map[string]string{"watcher": "warn"},
		},
	}
}

// Validate checks values that would otherwise fail later at use.
func (c *Config) Validate() error {
	var errs []error
	switch c.General.ViewMode {
	case ViewCompact, ViewComfortable:
	default:
		errs = append(errs, fmt.Errorf("general.view_mode: unknown mode %q", c.General.ViewMode))
	}
	if c.General.MaxHistory == 0 {
		errs = append(errs, errors.New("general.max_history: must be positive, or negative for unlimited"))
	}
	if c.Images.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("images.cache_size: must not be negative, got %d", c.Images.CacheSize))
	}
	for key, s := range map[string]string{
		"images.max_size":         c.Images.MaxSize,
		"images.max_memory_size":  c.Images.MaxMemorySize,
		"images.max_preview_size": c.Images.MaxPreviewSize,
	} {
		if _, err := humanize.ParseBytes(s); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	switch c.Storage.Backend {
	case "file", "badger":
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend))
	}
	switch c.Clipboard.Backend {
	case "auto", "wayland", "system":
	default:
		errs = append(errs, fmt.Errorf("clipboard.backend: unknown backend %q", c.Clipboard.Backend))
	}
	if _, err := c.PermanentDefs(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// MaxImageSize returns images.max_size in bytes.
func (c *Config) MaxImageSize() int64 { return parseSize(c.Images.MaxSize, DefaultMaxImageSize) }

// MaxMemorySize returns images.max_memory_size in bytes.
func (c *Config) MaxMemorySize() int64 {
	return parseSize(c.Images.MaxMemorySize, DefaultMaxMemorySize)
}

// MaxPreviewSize returns images.max_preview_size in bytes.
func (c *Config) MaxPreviewSize() int64 {
	return parseSize(c.Images.MaxPreviewSize, DefaultMaxPreviewSize)
}

// parseSize parses s, falling back to def when s is empty or invalid.
func parseSize(s, def string) int64 {
	if n, err := humanize.ParseBytes(s); err == nil && s != "" {
		return int64(n)
	}
	n, _ := humanize.ParseBytes(def)
	return int64(n)
}

// DataPath returns the directory holding the snapshot and spilled images.
func (c *Config) DataPath() string {
	if c.Storage.Path == "" {
		return DataDir()
	}
	p, err := ExpandPath(c.Storage.Path)
	if err != nil {
		return c.Storage.Path
	}
	return p
}

// PermanentDefs converts the permanent register list into definitions.
// File paths are expanded; the file is not read. A missing MIME type is
// guessed from the file extension.
func (c *Config) PermanentDefs() ([]history.PermanentDef, error) {
	defs := make([]history.PermanentDef, 0, len(c.PermanentRegisters))
	var errs []error
	for i, pr := range c.PermanentRegisters {
		key, size := utf8.DecodeRuneInString(pr.Key)
		if size == 0 || size != len(pr.Key) || !history.ValidKey(key) {
			errs = append(errs, fmt.Errorf("permanent_registers[%d]: %w: %q", i, history.ErrInvalidKey, pr.Key))
			continue
		}

		var content history.Content
		switch {
		case pr.Content != "" && pr.File != "":
			errs = append(errs, fmt.Errorf("permanent_registers[%d]: set content or file, not both", i))
			continue
		case pr.File != "":
			path, err := ExpandPath(pr.File)
			if err != nil {
				errs = append(errs, fmt.Errorf("permanent_registers[%d]: %w", i, err))
				continue
			}
			content = history.FileRef(path, guessMIME(path, pr.MIMEType))
		case pr.Content != "":
			content = history.Text(pr.Content)
		default:
			errs = append(errs, fmt.Errorf("permanent_registers[%d]: content or file is required", i))
			continue
		}

		defs = append(defs, history.PermanentDef{
			Key:         key,
			Content:     content,
			Name:        pr.Name,
			Description: pr.Description,
		})
	}
	return defs, errors.Join(errs...)
}

func guessMIME(path, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return strings.TrimSpace(strings.SplitN(t, ";", 2)[0])
	}
	return "text/plain"
}

// ConfigDir returns the configuration directory path, expanding ~ to the user's home directory.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "clipr"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "clipr"), nil
}

// ConfigPath returns the default config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// WriteDefault writes a default config file if none exists and returns its
// path. An existing file is left untouched.
func WriteDefault() (string, error) {
	if err := EnsureConfigDir(); err != nil {
		return "", err
	}

	configPath, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to check config file: %w", err)
	}

	content := fmt.Sprintf(defaultConfigTemplate,
		DefaultMaxHistory, DefaultViewMode,
		DefaultMaxImageSize, DefaultMaxMemorySize, DefaultMaxPreviewSize,
		DefaultCacheSize, DefaultPreviewWidth, DefaultPreviewHeight,
		DefaultStorageBackend, DefaultClipboardBackend)

	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}

	return configPath, nil
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// DataDir returns $XDG_DATA_HOME/clipr/ for the history snapshot and images.
func DataDir() string {
	return filepath.Join(xdg.DataHome, "clipr")
}

// StateDir returns $XDG_STATE_HOME/clipr/ for log files.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "clipr")
}

// ImagesDir returns the directory for images too large to keep inline.
func ImagesDir(dataDir string) string {
	return filepath.Join(dataDir, "images")
}

// EnsureDataDir creates dir with private permissions if it doesn't exist.
func EnsureDataDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

// EnsureStateDir creates the state directory if it doesn't exist.
func EnsureStateDir() error {
	if err := os.MkdirAll(StateDir(), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	return nil
}
