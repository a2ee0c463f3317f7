package database

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Config holds database connection settings shared across bots.
// URL, when set, wins over the individual parts.
type Config struct {
	URL            string `yaml:"url" envconfig:"DATABASE_URL"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

const (
	defaultHost           = "localhost"
	defaultPort           = "5432"
	defaultSSLMode        = "disable"
	defaultMaxConnections = 10
)

// Normalize fills defaults and checks that a connection can be described at all.
func (c *Config) Normalize() error {
	c.URL = strings.TrimSpace(c.URL)
	if c.MaxConnections <= 0 {
		c.MaxConnections = defaultMaxConnections
	}
	if c.URL != "" {
		return nil
	}
	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.Port == "" {
		c.Port = defaultPort
	}
	if c.SSLMode == "" {
		c.SSLMode = defaultSSLMode
	}
	if c.Name == "" || c.User == "" {
		return fmt.Errorf("database.url or database.name and database.user are required")
	}
	return nil
}

// DSN returns the connection string understood by lib/pq.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		quoteDSN(c.User), quoteDSN(c.Password), c.Host, c.Port, quoteDSN(c.Name), c.SSLMode,
	)
}

// MigrationURL returns the URL form required by golang-migrate.
func (c Config) MigrationURL() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// Target describes the server for logs without leaking credentials.
func (c Config) Target() (host, port, name string) {
	if c.URL == "" {
		return c.Host, c.Port, c.Name
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", "", ""
	}
	return u.Hostname(), u.Port(), strings.TrimPrefix(u.Path, "/")
}

func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
