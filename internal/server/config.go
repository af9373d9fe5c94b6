package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jacksonlee411/onboarding-withholding/modules/withholding/presentation/controllers"
	"gopkg.in/yaml.v3"
)

// Config is read from an optional YAML file; environment variables override
// file values.
type Config struct {
	HTTPAddr    string         `yaml:"http_addr"`
	Environment string         `yaml:"environment"`
	LogLevel    string         `yaml:"log_level"`
	Database    DatabaseConfig `yaml:"database"`

	AllowlistPath        string `yaml:"allowlist_path"`
	AuthzModelPath       string `yaml:"authz_model_path"`
	AuthzPolicyPath      string `yaml:"authz_policy_path"`
	AuthzMode            string `yaml:"authz_mode"`
	AuthzAllowDisabled   bool   `yaml:"authz_unsafe_allow_disabled"`
	SubmissionPolicyPath string `yaml:"submission_policy_path"`

	SubmitTimeout    time.Duration `yaml:"-"`
	RawSubmitTimeout string        `yaml:"submit_timeout"`
	TrustProxy       bool          `yaml:"trust_proxy"`
	// MaxBodyBytes caps JSON request bodies, signature images included.
	MaxBodyBytes     int64         `yaml:"max_body_bytes"`

	// TenantSource is "static" (the tenants map) or "database"
	// (withholding.tenant_hosts). Empty picks static when tenants are listed.
	TenantSource string `yaml:"tenant_source"`

	// Tenants maps request hostnames to tenants for the static tenant source.
	Tenants map[string]TenantConfig `yaml:"tenants"`
	// SeedPath names a YAML file of onboarding identities for the in-memory store.
	SeedPath string `yaml:"seed_path"`
}

type TenantConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

const (
	EnvironmentProduction = "production"
	EnvironmentStaging    = "staging"
	EnvironmentDemo       = "demo"
)

const (
	TenantSourceStatic   = "static"
	TenantSourceDatabase = "database"
)

const defaultConfigPath = "config/withholding.yaml"

// LoadConfig reads path (or CONFIG_PATH, or config/withholding.yaml searched
// upward) and applies environment overrides. A missing default file is not an
// error; a missing explicit file is.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		HTTPAddr:         ":8080",
		LogLevel:         "info",
		RawSubmitTimeout: "30s",
		MaxBodyBytes:     controllers.DefaultMaxBodyBytes,
	}

	explicit := path != ""
	if !explicit {
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path, explicit = v, true
		} else if p, err := findUpward(defaultConfigPath); err == nil {
			path = p
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("config: %w", err)
			}
		} else if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.Environment = getenvDefault("APP_ENV", cfg.Environment)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", cfg.LogLevel)
	if err := cfg.Database.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.AllowlistPath = getenvDefault("ALLOWLIST_PATH", cfg.AllowlistPath)
	cfg.AuthzModelPath = getenvDefault("AUTHZ_MODEL_PATH", cfg.AuthzModelPath)
	cfg.AuthzPolicyPath = getenvDefault("AUTHZ_POLICY_PATH", cfg.AuthzPolicyPath)
	cfg.AuthzMode = getenvDefault("AUTHZ_MODE", cfg.AuthzMode)
	if os.Getenv("AUTHZ_UNSAFE_ALLOW_DISABLED") == "1" {
		cfg.AuthzAllowDisabled = true
	}
	cfg.SubmissionPolicyPath = getenvDefault("SUBMISSION_POLICY_PATH", cfg.SubmissionPolicyPath)
	cfg.RawSubmitTimeout = getenvDefault("SUBMIT_TIMEOUT", cfg.RawSubmitTimeout)
	if v := os.Getenv("TRUST_PROXY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: TRUST_PROXY: %w", err)
		}
		cfg.TrustProxy = b
	}
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: MAX_BODY_BYTES: %w", err)
		}
		cfg.MaxBodyBytes = n
	}
	cfg.TenantSource = getenvDefault("TENANT_SOURCE", cfg.TenantSource)
	cfg.SeedPath = getenvDefault("SEED_PATH", cfg.SeedPath)

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	switch c.Environment {
	case EnvironmentProduction, EnvironmentStaging, EnvironmentDemo:
	case "":
		return errors.New("config: environment is required (production|staging|demo)")
	default:
		return fmt.Errorf("config: unknown environment %q", c.Environment)
	}

	d, err := time.ParseDuration(strings.TrimSpace(c.RawSubmitTimeout))
	if err != nil {
		return fmt.Errorf("config: submit_timeout: %w", err)
	}
	if d <= 0 {
		return errors.New("config: submit_timeout must be positive")
	}
	c.SubmitTimeout = d

	if c.MaxBodyBytes <= 0 {
		return errors.New("config: max_body_bytes must be positive")
	}
	if err := c.Database.validate(); err != nil {
		return err
	}

	c.TenantSource = strings.ToLower(strings.TrimSpace(c.TenantSource))
	switch c.tenantSource() {
	case TenantSourceStatic:
		if len(c.Tenants) == 0 {
			return errors.New("config: tenant_source static needs at least one entry under tenants")
		}
	case TenantSourceDatabase:
		if !c.Database.Configured() {
			return errors.New("config: tenant_source database needs a database block or DATABASE_URL")
		}
	default:
		return fmt.Errorf("config: unknown tenant_source %q", c.TenantSource)
	}
	return nil
}

// tenantSource resolves an empty TenantSource from what is configured.
func (c Config) tenantSource() string {
	if c.TenantSource != "" {
		return c.TenantSource
	}
	if len(c.Tenants) > 0 {
		return TenantSourceStatic
	}
	return TenantSourceDatabase
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func findUpward(path string) (string, error) {
	for range 8 {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		path = filepath.Join("..", path)
	}
	return "", fmt.Errorf("server: %s not found", filepath.Base(path))
}

// resolvePath returns configured, or the default searched upward from the
// working directory.
func resolvePath(configured string, def string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	return findUpward(def)
}
