package server

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
)

const (
	defaultDBPort    = 5432
	defaultDBName    = "onboarding"
	defaultDBUser    = "withholding"
	defaultDBSSLMode = "prefer"
)

// DatabaseConfig is the `database:` block of the service config. URL is used
// as is; otherwise a DSN is built from the parts once Host is set.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

func (d *DatabaseConfig) applyEnv() error {
	d.URL = getenvDefault("DATABASE_URL", d.URL)
	d.Host = getenvDefault("DB_HOST", d.Host)
	if v := os.Getenv("DB_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: DB_PORT: %w", err)
		}
		d.Port = p
	}
	d.Name = getenvDefault("DB_NAME", d.Name)
	d.User = getenvDefault("DB_USER", d.User)
	d.Password = getenvDefault("DB_PASSWORD", d.Password)
	d.SSLMode = getenvDefault("DB_SSLMODE", d.SSLMode)
	return nil
}

func (d DatabaseConfig) validate() error {
	if d.Port < 0 || d.Port > 65535 {
		return fmt.Errorf("config: database.port %d out of range", d.Port)
	}
	switch d.SSLMode {
	case "", "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
		return nil
	}
	return fmt.Errorf("config: database.sslmode %q is not a libpq mode", d.SSLMode)
}

// Configured reports whether the service should open a pool at all.
func (d DatabaseConfig) Configured() bool {
	return d.URL != "" || d.Host != ""
}

// DSN returns "" when no database is configured.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Host == "" {
		return ""
	}
	port := d.Port
	if port == 0 {
		port = defaultDBPort
	}
	name := orDefault(d.Name, defaultDBName)
	user := orDefault(d.User, defaultDBUser)

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(port)),
		Path:   "/" + name,
	}
	if d.Password != "" {
		u.User = url.UserPassword(user, d.Password)
	} else {
		u.User = url.User(user)
	}
	q := url.Values{}
	q.Set("sslmode", orDefault(d.SSLMode, defaultDBSSLMode))
	u.RawQuery = q.Encode()
	return u.String()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
