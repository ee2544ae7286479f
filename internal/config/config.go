// Package config manages the TOML config file under ~/.daybrief and
// secret storage in the system keyring.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

const (
	appName        = "daybrief"
	keyringService = "daybrief"
	keyringOpenAI  = "openai_api_key"
)

// Database holds the PostgreSQL connection settings.
type Database struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// Config wraps the on-disk configuration file.
type Config struct {
	dir   string
	viper *viper.Viper
}

// Load reads the config file if it exists, creating the config
// directory on first use.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, "config.toml"))
	v.SetConfigType("toml")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)

	if err := v.ReadInConfig(); err != nil {
		// A missing file just means setup has not run yet.
		if !os.IsNotExist(err) {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	return &Config{dir: dir, viper: v}, nil
}

// Dir returns the configuration directory (~/.daybrief).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, "."+appName), nil
}

// Path returns the config file location.
func (c *Config) Path() string {
	return filepath.Join(c.dir, "config.toml")
}

// CredentialsFile returns where the Google OAuth client secret lives.
func (c *Config) CredentialsFile() string {
	return filepath.Join(c.dir, "credentials.json")
}

// TokenFile returns where the Google OAuth token is saved.
func (c *Config) TokenFile() string {
	return filepath.Join(c.dir, "token.json")
}

// Database returns the database settings, or an error when they are
// incomplete.
func (c *Config) Database() (Database, error) {
	var db Database
	if err := c.viper.UnmarshalKey("database", &db); err != nil {
		return Database{}, fmt.Errorf("failed to decode database config: %w", err)
	}
	if db.Host == "" || db.Name == "" || db.User == "" || db.Password == "" {
		return Database{}, fmt.Errorf("incomplete database configuration, run the 'setup' command")
	}
	return db, nil
}

// SetDatabase stores the database settings for the next Save.
func (c *Config) SetDatabase(db Database) {
	c.viper.Set("database.host", db.Host)
	c.viper.Set("database.port", db.Port)
	c.viper.Set("database.name", db.Name)
	c.viper.Set("database.user", db.User)
	c.viper.Set("database.password", db.Password)
}

// Save writes the configuration file.
func (c *Config) Save() error {
	if err := c.viper.WriteConfigAs(c.Path()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// IsConfigured reports whether all required settings are present.
func (c *Config) IsConfigured() bool {
	if _, err := c.Database(); err != nil {
		return false
	}
	key, err := OpenAIKey()
	if err != nil || key == "" {
		return false
	}
	if _, err := os.Stat(c.CredentialsFile()); err != nil {
		// Explicit client ID/secret env vars are an accepted substitute
		// for credentials.json.
		if os.Getenv("GOOGLE_CLIENT_ID") == "" || os.Getenv("GOOGLE_CLIENT_SECRET") == "" {
			return false
		}
	}
	return true
}

// OpenAIKey returns the OpenAI API key. The environment variable wins
// over the keyring so development setups can bypass it.
func OpenAIKey() (string, error) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key, nil
	}
	key, err := keyring.Get(keyringService, keyringOpenAI)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", nil
		}
		return "", fmt.Errorf("failed to read key from keyring: %w", err)
	}
	return key, nil
}

// SetOpenAIKey stores the OpenAI API key in the system keyring.
func SetOpenAIKey(key string) error {
	if err := keyring.Set(keyringService, keyringOpenAI, key); err != nil {
		return fmt.Errorf("failed to store key in keyring: %w", err)
	}
	return nil
}
