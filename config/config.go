// Package config loads the service configuration from the environment
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/giygas/medref-api/entities"
)

// Environment is the deployment environment selected by ENV.
type Environment int

const (
	EnvDevelopment Environment = iota
	EnvStaging
	EnvProduction
	EnvTest
)

func (e Environment) String() string {
	switch e {
	case EnvStaging:
		return "staging"
	case EnvProduction:
		return "prod"
	case EnvTest:
		return "test"
	default:
		return "dev"
	}
}

// ParseEnvironment accepts the short and long names of each environment.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dev", "development":
		return EnvDevelopment, nil
	case "staging":
		return EnvStaging, nil
	case "prod", "production":
		return EnvProduction, nil
	case "test":
		return EnvTest, nil
	}
	return EnvDevelopment, fmt.Errorf("ENV must be one of: [dev staging prod test], got: %s", s)
}

// QdrantConfig locates the document store.
type QdrantConfig struct {
	URL      string
	Host     string
	GRPCPort int
	APIKey   string
	UseTLS   bool
	Timeout  time.Duration
}

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               Environment
	LogLevel          string
	LogDir            string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxLogFileSize    int64 // Maximum log file size in bytes
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes

	Qdrant      QdrantConfig
	Collections entities.Catalog

	DrugAPIBaseURL string
	DrugAPITimeout time.Duration

	CORSOrigins        []string
	StoreProbeInterval time.Duration
}

const defaultDrugAPIBaseURL = "https://oma7a27ol6.execute-api.ap-northeast-1.amazonaws.com/Prod/"

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	env, err := ParseEnvironment(getEnvWithDefault("ENV", "dev"))
	if err != nil {
		return nil, fmt.Errorf("configuration validation failed: invalid ENV: %w", err)
	}

	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "7860"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               env,
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogDir:            getEnvWithDefault("LOG_DIR", "logs"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),
		MaxLogFileSize:    getInt64EnvWithDefault("MAX_LOG_FILE_SIZE", 104857600), // 100MB default
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 1048576),    // 1MB default
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),     // 1MB default

		Qdrant: QdrantConfig{
			URL:      strings.TrimSpace(os.Getenv("QDRANT_URL")),
			GRPCPort: getIntEnvWithDefault("QDRANT_GRPC_PORT", 6334),
			APIKey:   os.Getenv("QDRANT_API_KEY"),
			Timeout:  time.Duration(getIntEnvWithDefault("QDRANT_TIMEOUT", 60)) * time.Second,
		},
		Collections: entities.Catalog{
			entities.ClinicalNote:  getEnvWithDefault("COLLECTION_CUBEC_NOTE", "default_cubec_note"),
			entities.PackageInsert: getEnvWithDefault("COLLECTION_PACKAGE_INSERT", "default_package_insert"),
			entities.Guideline:     getEnvWithDefault("COLLECTION_GUIDELINE", "default_guideline"),
		},

		DrugAPIBaseURL: getEnvWithDefault("DRUG_API_BASE_URL", defaultDrugAPIBaseURL),
		DrugAPITimeout: time.Duration(getIntEnvWithDefault("DRUG_API_TIMEOUT", 10)) * time.Second,

		CORSOrigins:        splitList(getEnvWithDefault("CORS_ORIGINS", "*")),
		StoreProbeInterval: time.Duration(getIntEnvWithDefault("STORE_PROBE_INTERVAL", 5)) * time.Minute,
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if err := validateMaxLogFileSize(cfg.MaxLogFileSize); err != nil {
		return fmt.Errorf("invalid MAX_LOG_FILE_SIZE: %w", err)
	}

	if err := validateQdrant(&cfg.Qdrant); err != nil {
		return fmt.Errorf("invalid QDRANT_URL: %w", err)
	}

	if err := cfg.Collections.Validate(); err != nil {
		return fmt.Errorf("invalid COLLECTION_*: %w", err)
	}

	if err := validateBaseURL(cfg.DrugAPIBaseURL); err != nil {
		return fmt.Errorf("invalid DRUG_API_BASE_URL: %w", err)
	}

	if cfg.DrugAPITimeout <= 0 {
		return fmt.Errorf("invalid DRUG_API_TIMEOUT: must be positive")
	}

	if len(cfg.CORSOrigins) == 0 {
		return fmt.Errorf("invalid CORS_ORIGINS: at least one origin is required")
	}

	if cfg.StoreProbeInterval <= 0 {
		return fmt.Errorf("invalid STORE_PROBE_INTERVAL: must be positive")
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress accepts loopback, private and unspecified addresses
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	if address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	// Unspecified is allowed for containers that publish the port themselves.
	if !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	logLevel = strings.ToLower(logLevel)

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 { // 1 year maximum
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateMaxLogFileSize enforces 1MB to 1GB
func validateMaxLogFileSize(size int64) error {
	if size < 1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too small (min 1MB), got: %d bytes", size)
	}

	if size > 1024*1024*1024 {
		return fmt.Errorf("MAX_LOG_FILE_SIZE is too large (max 1GB), got: %d bytes", size)
	}

	return nil
}

// validateQdrant parses QDRANT_URL into the gRPC host and TLS flag. The URL's
// own port is the REST port and is ignored; QDRANT_GRPC_PORT is used instead.
func validateQdrant(q *QdrantConfig) error {
	if q.URL == "" {
		return fmt.Errorf("QDRANT_URL is required")
	}

	raw := q.URL
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("cannot parse %q: %w", q.URL, err)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("no host in %q", q.URL)
	}

	switch u.Scheme {
	case "https":
		q.UseTLS = true
	case "http":
		q.UseTLS = false
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	q.Host = u.Hostname()

	if q.GRPCPort < 1 || q.GRPCPort > 65535 {
		return fmt.Errorf("QDRANT_GRPC_PORT must be between 1 and 65535, got: %d", q.GRPCPort)
	}
	if q.Timeout <= 0 {
		return fmt.Errorf("QDRANT_TIMEOUT must be positive")
	}
	return nil
}

func validateBaseURL(base string) error {
	u, err := url.Parse(base)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) URL, got: %s", base)
	}
	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_DIR",
		"LOG_RETENTION_WEEKS",
		"MAX_LOG_FILE_SIZE",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"QDRANT_URL",
		"QDRANT_GRPC_PORT",
		"QDRANT_API_KEY",
		"QDRANT_TIMEOUT",
		"COLLECTION_CUBEC_NOTE",
		"COLLECTION_PACKAGE_INSERT",
		"COLLECTION_GUIDELINE",
		"DRUG_API_BASE_URL",
		"DRUG_API_TIMEOUT",
		"CORS_ORIGINS",
		"STORE_PROBE_INTERVAL",
	}
}
