package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the gorm/pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// URL returns the database URL used by golang-migrate.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// KafkaConfig holds event bus settings.
type KafkaConfig struct {
	Brokers       []string
	ConsumerGroup string
}

// JWTConfig holds token verification settings.
type JWTConfig struct {
	Secret    string
	AccessTTL time.Duration
}

// PublisherConfig tunes the background event publisher.
type PublisherConfig struct {
	MaxAttempts    int
	BaseBackoff    time.Duration
	QueueSize      int
	ReplayInterval time.Duration
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port      string
	AppEnv    string
	DB        DatabaseConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	Publisher PublisherConfig
}

// Load reads configuration from BOOKING_-prefixed environment variables with
// development defaults.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service_port", ":8084")
	v.SetDefault("app_env", "development")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "bookings")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("kafka_brokers", "localhost:9092")
	v.SetDefault("kafka_consumer_group", "booking-service")
	v.SetDefault("jwt_secret", "dev-secret-change-me")
	v.SetDefault("jwt_access_ttl", "15m")
	v.SetDefault("publish_max_attempts", 4)
	v.SetDefault("publish_base_backoff", "200ms")
	v.SetDefault("publish_queue_size", 256)
	v.SetDefault("outbox_replay_interval", "5s")

	accessTTL, err := time.ParseDuration(v.GetString("jwt_access_ttl"))
	if err != nil {
		return nil, fmt.Errorf("invalid jwt_access_ttl: %w", err)
	}
	baseBackoff, err := time.ParseDuration(v.GetString("publish_base_backoff"))
	if err != nil {
		return nil, fmt.Errorf("invalid publish_base_backoff: %w", err)
	}
	replayInterval, err := time.ParseDuration(v.GetString("outbox_replay_interval"))
	if err != nil {
		return nil, fmt.Errorf("invalid outbox_replay_interval: %w", err)
	}

	return &ServiceConfig{
		Port:   v.GetString("service_port"),
		AppEnv: v.GetString("app_env"),
		DB: DatabaseConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetInt("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		Kafka: KafkaConfig{
			Brokers:       strings.Split(v.GetString("kafka_brokers"), ","),
			ConsumerGroup: v.GetString("kafka_consumer_group"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("jwt_secret"),
			AccessTTL: accessTTL,
		},
		Publisher: PublisherConfig{
			MaxAttempts:    v.GetInt("publish_max_attempts"),
			BaseBackoff:    baseBackoff,
			QueueSize:      v.GetInt("publish_queue_size"),
			ReplayInterval: replayInterval,
		},
	}, nil
}
