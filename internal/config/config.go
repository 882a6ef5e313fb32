package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"food-delivery/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Config holds all configuration for the food delivery service
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	HTTP     HTTPConfig     `yaml:"http"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Log      LogConfig      `yaml:"log"`
	Orders   OrdersConfig   `yaml:"orders"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Driver       string        `yaml:"driver"`
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	Database     string        `yaml:"database"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
	MaxConns     int           `yaml:"max_conns"`
}

// HTTPConfig holds the API listener and CORS policy
type HTTPConfig struct {
	Port int        `yaml:"port"`
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig lists what cross-origin callers may do. "*" allows anything.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// RabbitMQConfig holds RabbitMQ connection configuration
type RabbitMQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Exchange string `yaml:"exchange"`
}

// LogConfig controls log verbosity. LogBodies dumps raw request bodies at debug
// level and may expose personal data.
type LogConfig struct {
	Level     string `yaml:"level"`
	LogBodies bool   `yaml:"log_bodies"`
}

// OrdersConfig holds order placement options
type OrdersConfig struct {
	LinePriceMode string `yaml:"line_price_mode"`
}

// Default returns the configuration used when neither file nor environment set a value
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:       DriverPostgres,
			Host:         "localhost",
			Port:         5432,
			User:         "postgres",
			Database:     "food_delivery_db",
			QueryTimeout: 10 * time.Second,
			MaxConns:     25,
		},
		HTTP: HTTPConfig{
			Port: 8000,
			CORS: CORSConfig{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{"*"},
				AllowedHeaders: []string{"*"},
			},
		},
		RabbitMQ: RabbitMQConfig{
			Host:     "localhost",
			Port:     5672,
			User:     "guest",
			Password: "guest",
			Exchange: "orders_topic",
		},
		Log: LogConfig{
			Level: "info",
		},
		Orders: OrdersConfig{
			LinePriceMode: string(models.LinePriceUnit),
		},
	}
}

// Load reads configuration from a YAML file, then a .env file, then the
// process environment. Later sources win. A missing YAML file is not an error.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		content, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(content, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides values from environment variables
func (c *Config) applyEnv() error {
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Database, "DB_NAME")
	setString(&c.RabbitMQ.Host, "RABBITMQ_HOST")
	setString(&c.RabbitMQ.User, "RABBITMQ_USER")
	setString(&c.RabbitMQ.Password, "RABBITMQ_PASSWORD")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Orders.LinePriceMode, "ORDER_LINE_PRICE_MODE")

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.HTTP.CORS.AllowedOrigins = splitList(v)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"DB_PORT", &c.Database.Port},
		{"HTTP_PORT", &c.HTTP.Port},
		{"RABBITMQ_PORT", &c.RabbitMQ.Port},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", e.key, v, err)
		}
		*e.dst = n
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"RABBITMQ_ENABLED", &c.RabbitMQ.Enabled},
		{"LOG_BODIES", &c.Log.LogBodies},
	}
	for _, e := range bools {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", e.key, v, err)
		}
		*e.dst = b
	}

	if v := os.Getenv("DB_QUERY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid DB_QUERY_TIMEOUT value %q: %w", v, err)
		}
		c.Database.QueryTimeout = d
	}

	return nil
}

// OverrideHTTPPort replaces http.port, as the --port flag does, and revalidates
func (c *Config) OverrideHTTPPort(port int) error {
	c.HTTP.Port = port
	return c.Validate()
}

// Validate checks that the configuration can be used to start the service
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("unknown database driver: %q", c.Database.Driver)
	}
	if _, err := models.ParseLinePriceMode(c.Orders.LinePriceMode); err != nil {
		return fmt.Errorf("orders.line_price_mode: %w", err)
	}
	if err := validatePort("database.port", c.Database.Port); err != nil {
		return err
	}
	if err := validatePort("http.port", c.HTTP.Port); err != nil {
		return err
	}
	if c.RabbitMQ.Enabled {
		if err := validatePort("rabbitmq.port", c.RabbitMQ.Port); err != nil {
			return err
		}
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("database.query_timeout must be positive: %s", c.Database.QueryTimeout)
	}
	return nil
}

// DatabaseURL returns a PostgreSQL connection URL
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// MySQLDSN returns a go-sql-driver DSN
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Database)
}

// RabbitMQURL returns an AMQP connection URL
func (c *Config) RabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/",
		c.RabbitMQ.User, c.RabbitMQ.Password, c.RabbitMQ.Host, c.RabbitMQ.Port)
}

func validatePort(name string, port int) error {
	if port <= 0 || port >= 65536 {
		return fmt.Errorf("%s must be in [1: 65,535]: %d", name, port)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
