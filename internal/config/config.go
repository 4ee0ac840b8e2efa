package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envEnableProfiling       = "ENABLE_PROFILING"
	envCORSAllowedOrigins    = "CORS_ALLOWED_ORIGINS"
	envTrustProxy            = "TRUST_PROXY"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envRedisURL              = "REDIS_URL"
	envJWTSecret             = "JWT_SECRET"
	envJWTExpiry             = "JWT_EXPIRY"
	envJWTIssuer             = "JWT_ISSUER"
	envPasswordAlgorithm     = "PASSWORD_ALGORITHM"
	envBcryptCost            = "BCRYPT_COST"
	envLoginMaxAttempts      = "LOGIN_MAX_ATTEMPTS"
	envLoginLockoutWindow    = "LOGIN_LOCKOUT_WINDOW"
	envAuthPolicyFile        = "AUTH_POLICY_FILE"
	envLogLevel              = "LOG_LEVEL"
	envLogFormat             = "LOG_FORMAT"
)

const (
	defaultServerPort          = "8080"
	defaultServerReadTimeout   = 10 * time.Second
	defaultServerWriteTimeout  = 10 * time.Second
	defaultServerShutdown      = 10 * time.Second
	defaultCORSAllowedOrigins  = "http://localhost:4200"
	defaultDBHost              = "localhost"
	defaultDBPort              = 5432
	defaultDBName              = "blog"
	defaultDBUser              = "blog_app"
	defaultDBSSLMode           = "disable"
	defaultDBMaxConns          = 25
	defaultDBMinConns          = 5
	defaultJWTExpiry           = 3 * time.Hour
	defaultJWTIssuer           = "blog-service"
	defaultPasswordAlgorithm   = "bcrypt"
	defaultBcryptCost          = 12
	defaultLoginMaxAttempts    = 5
	defaultLoginLockoutWindow  = 15 * time.Minute
	defaultLogLevel            = "info"
	defaultLogFormat           = "json"
	minJWTSecretLength         = 32
	minUniqueCharsInSecret     = 16
	minRepeatedCharThreshold   = 4
	maxRepeatedChars           = 2
	errPortRequiredFmt         = "PORT must be set"
	errDBPasswordRequiredFmt   = "DB_PASSWORD must be set"
	errJWTSecretRequiredFmt    = "JWT_SECRET must be set"
	errJWTSecretMinLengthFmt   = "JWT_SECRET must be at least %d characters"
	errJWTSecretLowEntropyFmt  = "JWT_SECRET has insufficient entropy (appears non-random). Use a cryptographically secure random string."
	errJWTExpiryPositiveFmt    = "JWT_EXPIRY must be positive"
	errPasswordAlgorithmFmt    = "PASSWORD_ALGORITHM must be bcrypt or argon2id, got %q"
	errLoginMaxAttemptsFmt     = "LOGIN_MAX_ATTEMPTS must not be negative"
	errLoginLockoutWindowFmt   = "LOGIN_LOCKOUT_WINDOW must be positive when LOGIN_MAX_ATTEMPTS is set"
	errInvalidDurationFmt      = "%s: invalid duration %q"
	errLogFormatFmt            = "LOG_FORMAT must be json or console, got %q"
	errInvalidConfigurationFmt = "invalid configuration: %w"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Login    LoginConfig
	Policy   PolicyConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	EnableProfiling bool

	// CORSAllowedOrigins lists the browser origins allowed to call the API.
	CORSAllowedOrigins []string
	// TrustProxy takes the client address from X-Forwarded-For instead of the socket peer.
	TrustProxy         bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig is optional; an empty URL disables the login throttle.
type RedisConfig struct {
	URL string
}

type JWTConfig struct {
	Secret         string
	ExpiryDuration time.Duration
	Issuer         string
}

type PasswordConfig struct {
	Algorithm  string
	BcryptCost int
}

type LoginConfig struct {
	MaxAttempts   int
	LockoutWindow time.Duration
}

// PolicyConfig points at an optional YAML access-rule table.
type PolicyConfig struct {
	File string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	var parseErrs []error
	duration := func(key string, defaultValue time.Duration) time.Duration {
		d, err := getDurationEnv(key, defaultValue)
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		return d
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv(envPort, defaultServerPort),
			ReadTimeout:        duration(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:       duration(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout:    duration(envServerShutdownTimeout, defaultServerShutdown),
			EnableProfiling:    getBoolEnv(envEnableProfiling),
			CORSAllowedOrigins: getListEnv(envCORSAllowedOrigins, defaultCORSAllowedOrigins),
			TrustProxy:         getBoolEnv(envTrustProxy),
		},
		Database: LoadDatabase(),
		Redis: RedisConfig{
			URL: os.Getenv(envRedisURL),
		},
		JWT: JWTConfig{
			Secret:         os.Getenv(envJWTSecret),
			ExpiryDuration: duration(envJWTExpiry, defaultJWTExpiry),
			Issuer:         getEnv(envJWTIssuer, defaultJWTIssuer),
		},
		Password: LoadPassword(),
		Login: LoginConfig{
			MaxAttempts:   getIntEnv(envLoginMaxAttempts, defaultLoginMaxAttempts),
			LockoutWindow: duration(envLoginLockoutWindow, defaultLoginLockoutWindow),
		},
		Policy: PolicyConfig{
			File: os.Getenv(envAuthPolicyFile),
		},
		Log: LoadLog(),
	}

	if err := errors.Join(parseErrs...); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

// LoadDatabase reads only the DB_* variables, for commands that need no other settings.
func LoadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv(envDBHost, defaultDBHost),
		Port:     getIntEnv(envDBPort, defaultDBPort),
		Database: getEnv(envDBName, defaultDBName),
		User:     getEnv(envDBUser, defaultDBUser),
		Password: os.Getenv(envDBPassword),
		SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
		MaxConns: getIntEnv(envDBMaxConns, defaultDBMaxConns),
		MinConns: getIntEnv(envDBMinConns, defaultDBMinConns),
	}
}

func LoadPassword() PasswordConfig {
	return PasswordConfig{
		Algorithm:  getEnv(envPasswordAlgorithm, defaultPasswordAlgorithm),
		BcryptCost: getIntEnv(envBcryptCost, defaultBcryptCost),
	}
}

func LoadLog() LogConfig {
	return LogConfig{
		Level:  getEnv(envLogLevel, defaultLogLevel),
		Format: getEnv(envLogFormat, defaultLogFormat),
	}
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf(errPortRequiredFmt)
	}

	if err := c.Database.Validate(); err != nil {
		return err
	}

	if err := c.JWT.Validate(); err != nil {
		return err
	}

	switch c.Password.Algorithm {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf(errPasswordAlgorithmFmt, c.Password.Algorithm)
	}

	if c.Login.MaxAttempts < 0 {
		return fmt.Errorf(errLoginMaxAttemptsFmt)
	}
	if c.Login.MaxAttempts > 0 && c.Login.LockoutWindow <= 0 {
		return fmt.Errorf(errLoginLockoutWindowFmt)
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf(errLogFormatFmt, c.Log.Format)
	}

	return nil
}

// Validate checks the signing secret and token lifetime.
func (c *JWTConfig) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf(errJWTSecretRequiredFmt)
	}

	if len(c.Secret) < minJWTSecretLength {
		return fmt.Errorf(errJWTSecretMinLengthFmt, minJWTSecretLength)
	}

	if !hasMinimumEntropy(c.Secret) {
		return fmt.Errorf(errJWTSecretLowEntropyFmt)
	}

	if c.ExpiryDuration <= 0 {
		return fmt.Errorf(errJWTExpiryPositiveFmt)
	}

	return nil
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minJWTSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	uniqueChars := len(charCounts)
	if uniqueChars < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

func (c *DatabaseConfig) Validate() error {
	if c.Password == "" {
		return fmt.Errorf(errDBPasswordRequiredFmt)
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// getListEnv splits a comma-separated value, dropping empty entries.
func getListEnv(key, defaultValue string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// getDurationEnv accepts Go duration strings or a bare integer number of minutes.
func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration, nil
	}
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute, nil
	}
	return 0, fmt.Errorf(errInvalidDurationFmt, key, value)
}
