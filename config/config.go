package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"insurecalc/database"
)

// DefaultCityAliases maps district names to the city whose standard applies to them
var DefaultCityAliases = map[string]string{
	"南山":     "佛山",
	"深圳市南山区": "佛山",
	"深圳南山":   "佛山",
}

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// HTTP server
	HTTPAddr string

	// NATS servers; empty disables event forwarding
	NATSServers string

	// Calculation settings
	CityAliases   map[string]string
	CityAliasFile string
	CityTieBreak  string // "strict" or "first"
	AggregateBy   string // "employee_name" or "employee_id"

	// Logging
	LogLevel  string
	LogFormat string // "text" or "json"

	// Environment
	Environment string // "development", "production" or "test"
}

// aliasFile is the layout of CITY_ALIAS_FILE
type aliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables, after reading .env if present
func load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to read .env file")
	}

	config := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DatabaseName:  os.Getenv("DATABASE_NAME"),
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		NATSServers:   os.Getenv("NATS_SERVERS"),
		CityAliasFile: os.Getenv("CITY_ALIAS_FILE"),
		CityTieBreak:  getEnv("CITY_TIE_BREAK", "strict"),
		AggregateBy:   getEnv("AGGREGATE_BY", "employee_name"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		Environment:   getEnv("ENVIRONMENT", "development"),
	}

	aliases, err := LoadCityAliases(config.CityAliasFile)
	if err != nil {
		return nil, err
	}
	config.CityAliases = aliases

	if config.Environment != "test" && config.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return config, nil
}

// LoadCityAliases returns the default aliases merged with the ones in path.
// Entries in the file override the defaults; an empty path returns the defaults.
func LoadCityAliases(path string) (map[string]string, error) {
	aliases := make(map[string]string, len(DefaultCityAliases))
	for alias, canonical := range DefaultCityAliases {
		aliases[alias] = canonical
	}
	if path == "" {
		return aliases, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read city alias file: %w", err)
	}

	var file aliasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse city alias file %s: %w", path, err)
	}
	for alias, canonical := range file.Aliases {
		if alias == "" || canonical == "" {
			return nil, fmt.Errorf("city alias file %s: empty alias or city name", path)
		}
		aliases[alias] = canonical
	}

	log.WithFields(log.Fields{
		"file":    path,
		"aliases": len(file.Aliases),
	}).Info("Loaded city aliases")
	return aliases, nil
}

// GetDatabaseURL returns DatabaseURL with DatabaseName applied
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// NewTestConfig returns a configuration suitable for tests
func NewTestConfig() *Config {
	aliases, _ := LoadCityAliases("")
	return &Config{
		HTTPAddr:     ":0",
		CityAliases:  aliases,
		CityTieBreak: "strict",
		AggregateBy:  "employee_name",
		LogLevel:     "debug",
		LogFormat:    "text",
		Environment:  "test",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
