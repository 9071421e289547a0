package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Platform   PlatformConfig   `toml:"platform"`
	Authorizer AuthorizerConfig `toml:"authorizer"`
	Migration  MigrationConfig  `toml:"migration"`
}

// PlatformConfig contains connection settings for the automation platform database.
type PlatformConfig struct {
	DSN          string `toml:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// AuthorizerConfig contains the read-only connection to the external identity store.
type AuthorizerConfig struct {
	DSN string `toml:"dsn"`
}

// MigrationConfig contains settings for the user reconciliation run.
type MigrationConfig struct {
	ReportPath  string  `toml:"report_path"`
	Environment string  `toml:"environment"`
	RateLimit   float64 `toml:"rate_limit"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv applies environment overrides to the config, loading a .env file
// first when one exists. DATABASE_URL overrides the platform DSN and
// AUTHORIZER_DATABASE_URL overrides the authorizer DSN.
func (c *Config) LoadEnv(envPath string) {
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
		}
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Platform.DSN = dsn
	}
	if dsn := os.Getenv("AUTHORIZER_DATABASE_URL"); dsn != "" {
		c.Authorizer.DSN = dsn
	}
	if env := os.Getenv("PLATFORMDB_ENV"); env != "" {
		c.Migration.Environment = env
	}
}

// Validate checks that both connection strings are present. A missing DSN is a
// fatal startup condition for the reconciliation run.
func (c *Config) Validate() error {
	if c.Platform.DSN == "" {
		return fmt.Errorf("%w: platform (set DATABASE_URL or [platform] dsn)", ErrMissingDSN)
	}
	if c.Authorizer.DSN == "" {
		return fmt.Errorf("%w: authorizer (set AUTHORIZER_DATABASE_URL or [authorizer] dsn)", ErrMissingDSN)
	}
	return nil
}
