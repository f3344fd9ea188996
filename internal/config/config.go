package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	ServerPort string         `yaml:"server_port"`
	Storage    string         `yaml:"storage"`
	DataFile   string         `yaml:"data_file"`
	Database   DatabaseConfig `yaml:"database"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

func defaults() *Config {
	return &Config{
		ServerPort: "8080",
		Storage:    StorageFile,
		DataFile:   "bank.dat",
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			Name:    "bank_ledger",
			SSLMode: "disable",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file
// (CONFIG_FILE, falling back to config.yaml when present), and environment
// variable overrides, in that order of precedence.
func Load() (*Config, error) {
	cfg := defaults()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	} else if os.Getenv("CONFIG_FILE") != "" {
		// An explicitly named file must exist.
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	override(&cfg.ServerPort, "SERVER_PORT")
	override(&cfg.Storage, "STORAGE")
	override(&cfg.DataFile, "DATA_FILE")
	override(&cfg.Database.Host, "DB_HOST")
	override(&cfg.Database.Port, "DB_PORT")
	override(&cfg.Database.User, "DB_USER")
	override(&cfg.Database.Password, "DB_PASSWORD")
	override(&cfg.Database.Name, "DB_NAME")
	override(&cfg.Database.SSLMode, "DB_SSLMODE")

	return cfg, nil
}

func override(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
