// Package config handles the XDG configuration directory, its files, and the
// optional config.yaml settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskrush"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// SessionFile is the stored database identity filename.
	SessionFile = "session.json"

	// PrefsFile is the local preferences database filename.
	PrefsFile = "prefs.db"

	// SettingsFile is the optional settings filename.
	SettingsFile = "config.yaml"

	// EnvFile is the optional environment filename.
	EnvFile = ".env"
)

// Backend names.
const (
	BackendPostgres    = "postgres"
	BackendGoogleTasks = "googletasks"
)

// DefaultFocusMinutes is the focus length used for tasks without an estimate.
const DefaultFocusMinutes = 25

// Database holds the hosted Postgres connection settings.
type Database struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the connection string. URL wins when set.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	port := d.Port
	if port == 0 {
		port = 5432
	}
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "require"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, port),
		Path:     "/" + d.DBName,
		RawQuery: "sslmode=" + sslmode,
	}
	return u.String()
}

// Configured reports whether enough is set to connect.
func (d Database) Configured() bool {
	return d.URL != "" || d.Host != ""
}

// Settings is the content of config.yaml.
type Settings struct {
	Backend  string   `yaml:"backend"`
	Database Database `yaml:"database"`
	Focus    struct {
		DefaultMinutes float64 `yaml:"default_minutes"`
	} `yaml:"focus"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings are loaded from config.yaml by Load.
	Settings Settings
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskrush or $HOME/.config/taskrush.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir, Settings: defaultSettings()}, nil
}

func defaultSettings() Settings {
	var s Settings
	s.Backend = BackendPostgres
	s.Focus.DefaultMinutes = DefaultFocusMinutes
	return s
}

// Load reads .env files and config.yaml from the config directory.
// Missing files are not an error. ${VAR} references in config.yaml are
// replaced from the environment, and TASKRUSH_BACKEND and DATABASE_URL
// override the file.
func (c *Config) Load() error {
	// Already-set variables win over both files.
	for _, path := range []string{EnvFile, filepath.Join(c.Dir, EnvFile)} {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error loading %s: %w", path, err)
		}
	}

	data, err := os.ReadFile(c.SettingsPath())
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("error reading config file: %w", err)
	default:
		if err := yaml.Unmarshal([]byte(expandEnv(string(data))), &c.Settings); err != nil {
			return fmt.Errorf("error parsing config: %w", err)
		}
	}

	if v := os.Getenv("TASKRUSH_BACKEND"); v != "" {
		c.Settings.Backend = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Settings.Database.URL = v
	}
	if c.Settings.Backend == "" {
		c.Settings.Backend = BackendPostgres
	}
	if c.Settings.Focus.DefaultMinutes <= 0 {
		c.Settings.Focus.DefaultMinutes = DefaultFocusMinutes
	}

	switch c.Settings.Backend {
	case BackendPostgres, BackendGoogleTasks:
	default:
		return fmt.Errorf("unknown backend %q", c.Settings.Backend)
	}
	return nil
}

// expandEnv replaces ${VAR} placeholders with environment values.
// Unset variables are left as written.
func expandEnv(content string) string {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		content = strings.ReplaceAll(content, "${"+pair[0]+"}", pair[1])
	}
	return content
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// SessionPath returns the path to the stored database identity.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// PrefsPath returns the path to the local preferences database.
func (c *Config) PrefsPath() string {
	return filepath.Join(c.Dir, PrefsFile)
}

// SettingsPath returns the path to config.yaml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}
