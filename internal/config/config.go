package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Order    OrderConfig
	RabbitMQ RabbitMQConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type OrderConfig struct {
	TxTimeout time.Duration
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
}

func (c RabbitMQConfig) Enabled() bool {
	return c.URL != ""
}

type MetricsConfig struct {
	Enabled bool
}

// Load reads configuration from the optional YAML file at path, then lets
// environment variables override it. Nested keys map to upper-case
// underscore names, so db.host is read from DB_HOST.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 3306)
	v.SetDefault("db.user", "orders")
	v.SetDefault("db.password", "secret")
	v.SetDefault("db.name", "orders")
	v.SetDefault("db.path", "orders.db")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "5m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", LogFormatJSON)
	v.SetDefault("order.tx_timeout", "5s")
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "order_exchange")
	v.SetDefault("metrics.enabled", true)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	shutdownTimeout, err := time.ParseDuration(v.GetString("server.shutdown_timeout"))
	if err != nil {
		return nil, fmt.Errorf("parsing server.shutdown_timeout: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(v.GetString("db.conn_max_lifetime"))
	if err != nil {
		return nil, fmt.Errorf("parsing db.conn_max_lifetime: %w", err)
	}

	txTimeout, err := time.ParseDuration(v.GetString("order.tx_timeout"))
	if err != nil {
		return nil, fmt.Errorf("parsing order.tx_timeout: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			ShutdownTimeout: shutdownTimeout,
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("db.driver")),
			Host:            v.GetString("db.host"),
			Port:            v.GetInt("db.port"),
			User:            v.GetString("db.user"),
			Password:        v.GetString("db.password"),
			Name:            v.GetString("db.name"),
			Path:            v.GetString("db.path"),
			MaxOpenConns:    v.GetInt("db.max_open_conns"),
			MaxIdleConns:    v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: strings.ToLower(v.GetString("log.format")),
		},
		Order: OrderConfig{
			TxTimeout: txTimeout,
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("rabbitmq.url"),
			Exchange: v.GetString("rabbitmq.exchange"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
		},
	}

	if cfg.Database.Driver != DriverMySQL && cfg.Database.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported db.driver %q", cfg.Database.Driver)
	}

	return cfg, nil
}
