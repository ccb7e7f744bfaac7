// Package config loads butane's project configuration: butane.yaml in
// the working directory or the user config dir, overridden by BUTANE_*
// environment variables, with the database URL taken from the
// environment so credentials stay out of the config file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is swapped for an in-memory filesystem in tests.
var AppFs = afero.NewOsFs()

// Config holds the resolved project configuration.
type Config struct {
	ModelsPath    string
	MigrationsDir string
	DatabaseURL   string
	Provider      string
	Debug         bool
}

// Load resolves configuration from butane.yaml, BUTANE_* environment
// variables, and .env files. Missing config files are not an error.
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("butane")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(filepath.Join(home, ".config", "butane"))

	v.SetEnvPrefix("BUTANE")
	v.AutomaticEnv()

	v.SetDefault("models_path", "models.butane")
	v.SetDefault("migrations_dir", "migrations")
	v.SetDefault("debug", false)

	_ = v.ReadInConfig()

	// .env first, then .env.local on top.
	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	cfg := &Config{
		ModelsPath:    v.GetString("models_path"),
		MigrationsDir: v.GetString("migrations_dir"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		Provider:      v.GetString("provider"),
		Debug:         v.GetBool("debug"),
	}
	if cfg.Provider == "" && cfg.DatabaseURL != "" {
		cfg.Provider = inferProvider(cfg.DatabaseURL)
	}
	return cfg, nil
}

// Save writes the non-secret settings to butane.yaml in the working
// directory. DATABASE_URL is deliberately never written.
func Save(cfg *Config) error {
	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigType("yaml")
	v.Set("models_path", cfg.ModelsPath)
	v.Set("migrations_dir", cfg.MigrationsDir)
	v.Set("provider", cfg.Provider)
	return v.WriteConfigAs("butane.yaml")
}

// inferProvider guesses the dialect from the URL scheme.
func inferProvider(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return "postgres"
	case "mysql":
		return "mysql"
	case "sqlite", "sqlite3", "file":
		return "sqlite"
	default:
		return ""
	}
}

// DSN converts the configured URL into the form the driver expects.
// mysql's driver does not accept URL syntax, and sqlite wants a bare
// file path.
func (c *Config) DSN() (string, error) {
	if c.DatabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL is not set")
	}
	switch c.Provider {
	case "mysql":
		return mysqlDSN(c.DatabaseURL)
	case "sqlite":
		return strings.TrimPrefix(strings.TrimPrefix(c.DatabaseURL, "sqlite://"), "file:"), nil
	default:
		return c.DatabaseURL, nil
	}
}

func mysqlDSN(dbURL string) (string, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("invalid mysql url: %w", err)
	}
	var b strings.Builder
	if u.User != nil {
		b.WriteString(u.User.Username())
		if pw, ok := u.User.Password(); ok {
			b.WriteString(":" + pw)
		}
		b.WriteString("@")
	}
	b.WriteString("tcp(" + u.Host + ")")
	b.WriteString(u.Path)
	if u.RawQuery != "" {
		b.WriteString("?" + u.RawQuery)
	}
	return b.String(), nil
}
