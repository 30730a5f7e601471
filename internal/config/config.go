// Package config parses the fatcat server's HCL configuration file, in
// the same style as jrepp-hermes's HCL-configured binaries
// (cmd/hermes-indexer, cmd/hermes-notify).
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/mm--/fatcat/pkg/database"
)

// Config is the top-level fatcat server configuration.
type Config struct {
	Addr     string         `hcl:"addr,optional"`
	LogLevel string         `hcl:"log_level,optional"`
	Database DatabaseConfig `hcl:"database,block"`
}

// DatabaseConfig mirrors database.Config as HCL attributes.
type DatabaseConfig struct {
	Driver          string `hcl:"driver,optional"`
	Host            string `hcl:"host,optional"`
	Port            int    `hcl:"port,optional"`
	User            string `hcl:"user,optional"`
	Password        string `hcl:"password,optional"`
	DBName          string `hcl:"dbname,optional"`
	SSLMode         string `hcl:"sslmode,optional"`
	SQLitePath      string `hcl:"sqlite_path,optional"`
	MaxIdleConns    int    `hcl:"max_idle_conns,optional"`
	MaxOpenConns    int    `hcl:"max_open_conns,optional"`
}

// NewConfig decodes the HCL config file at path. The FATCAT_DB_PASSWORD
// environment variable, when set, overrides the database password.
func NewConfig(path string) (*Config, error) {
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if pw := os.Getenv("FATCAT_DB_PASSWORD"); pw != "" {
		cfg.Database.Password = pw
	}
	return &cfg, nil
}

// ToDatabase converts the HCL database block into a database.Config.
func (c *Config) ToDatabase() database.Config {
	return database.Config{
		Driver:       c.Database.Driver,
		Host:         c.Database.Host,
		Port:         c.Database.Port,
		User:         c.Database.User,
		Password:     c.Database.Password,
		DBName:       c.Database.DBName,
		SSLMode:      c.Database.SSLMode,
		SQLitePath:   c.Database.SQLitePath,
		MaxIdleConns: c.Database.MaxIdleConns,
		MaxOpenConns: c.Database.MaxOpenConns,
	}
}
