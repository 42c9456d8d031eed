package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for authcore.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
}

// ServiceConfig identifies this instance.
type ServiceConfig struct {
	Name string `yaml:"name"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
// When disabled, auth events are not published.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host         string           `yaml:"host"`
	Port         int              `yaml:"port"`
	TLS          TLSConfig        `yaml:"tls"`
	Timeouts     APITimeoutConfig `yaml:"timeouts"`
	CORS         CORSConfig       `yaml:"cors"`
	MaxBodyBytes int64            `yaml:"max_body_bytes"`
}

// TLSConfig contains TLS certificate settings.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// InfluxDBConfig contains InfluxDB connection settings.
// When disabled, auth event metrics are not written.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains credential and token settings.
type SecurityConfig struct {
	JWT      JWTConfig      `yaml:"jwt"`
	Password PasswordConfig `yaml:"password"`
}

// JWTConfig contains token signing settings.
type JWTConfig struct {
	SigningKey             string `yaml:"signing_key"`
	Algorithm              string `yaml:"algorithm"`
	AccessTokenTTLSeconds  int    `yaml:"access_token_ttl_seconds"`
	RefreshTokenTTLSeconds int    `yaml:"refresh_token_ttl_seconds"`
}

// PasswordConfig contains password hashing settings.
type PasswordConfig struct {
	Algorithm     string `yaml:"algorithm"`
	BcryptCost    int    `yaml:"bcrypt_cost"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

// BootstrapConfig describes the administrator created on first boot.
// An empty password is replaced by a generated one, logged once.
type BootstrapConfig struct {
	Enabled       bool   `yaml:"enabled"`
	AdminUsername string `yaml:"admin_username"`
	AdminName     string `yaml:"admin_name"`
	AdminPassword string `yaml:"admin_password"`
}

// MinSigningKeyLength is the shortest accepted security.jwt.signing_key.
const MinSigningKeyLength = 32

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: AUTHCORE_SECTION_KEY
// For example: AUTHCORE_DATABASE_PATH, AUTHCORE_API_PORT
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name: "authcore",
		},
		Database: DatabaseConfig{
			Path:        "./data/authcore.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "authcore",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
			MaxBodyBytes: 1 << 20,
		},
		InfluxDB: InfluxDBConfig{
			Bucket:        "authcore",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				Algorithm:              "HS256",
				AccessTokenTTLSeconds:  900,
				RefreshTokenTTLSeconds: 604800,
			},
			Password: PasswordConfig{
				Algorithm:  "bcrypt",
				BcryptCost: 10,
			},
		},
		Bootstrap: BootstrapConfig{
			Enabled:       true,
			AdminUsername: "admin",
			AdminName:     "Administrator",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: AUTHCORE_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	// Database
	if v := os.Getenv("AUTHCORE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("AUTHCORE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("AUTHCORE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("AUTHCORE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("AUTHCORE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("AUTHCORE_API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing AUTHCORE_API_PORT: %w", err)
		}
		cfg.API.Port = port
	}

	// InfluxDB
	if v := os.Getenv("AUTHCORE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("AUTHCORE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Security - signing key (always set via environment in production)
	if v := os.Getenv("AUTHCORE_JWT_SIGNING_KEY"); v != "" {
		cfg.Security.JWT.SigningKey = v
	}

	return nil
}

// Validate checks the configuration for errors and security issues.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.API.TLS.Enabled && (c.API.TLS.CertFile == "" || c.API.TLS.KeyFile == "") {
		errs = append(errs, "api.tls.cert_file and api.tls.key_file are required when TLS is enabled")
	}

	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url, influxdb.org and influxdb.bucket are required when influxdb is enabled")
	}

	// Anyone holding the signing key can mint tokens for any account.
	jwt := c.Security.JWT
	if jwt.SigningKey == "" {
		errs = append(errs, "security.jwt.signing_key is required (set AUTHCORE_JWT_SIGNING_KEY environment variable)")
	} else if len(jwt.SigningKey) < MinSigningKeyLength {
		errs = append(errs, fmt.Sprintf("security.jwt.signing_key must be at least %d characters", MinSigningKeyLength))
	}
	switch jwt.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, "security.jwt.algorithm must be HS256, HS384 or HS512")
	}
	if jwt.AccessTokenTTLSeconds <= 0 {
		errs = append(errs, "security.jwt.access_token_ttl_seconds must be positive")
	}
	if jwt.RefreshTokenTTLSeconds <= jwt.AccessTokenTTLSeconds {
		errs = append(errs, "security.jwt.refresh_token_ttl_seconds must exceed access_token_ttl_seconds")
	}

	pw := c.Security.Password
	switch strings.ToLower(pw.Algorithm) {
	case "bcrypt", "argon2id":
	default:
		errs = append(errs, "security.password.algorithm must be bcrypt or argon2id")
	}
	if pw.BcryptCost != 0 && (pw.BcryptCost < 4 || pw.BcryptCost > 31) {
		errs = append(errs, "security.password.bcrypt_cost must be between 4 and 31")
	}
	if pw.MaxConcurrent < 0 {
		errs = append(errs, "security.password.max_concurrent must not be negative")
	}

	if c.Bootstrap.Enabled && c.Bootstrap.AdminUsername == "" {
		errs = append(errs, "bootstrap.admin_username is required when bootstrap is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// AccessTokenTTL returns the access token lifetime as a Duration.
func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.Security.JWT.AccessTokenTTLSeconds) * time.Second
}

// RefreshTokenTTL returns the refresh token lifetime as a Duration.
func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.Security.JWT.RefreshTokenTTLSeconds) * time.Second
}
