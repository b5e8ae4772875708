package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	Auth         AuthConfig         `yaml:"auth"`
	Booking      BookingConfig      `yaml:"booking"`
	Payments     PaymentsConfig     `yaml:"payments"`
	RealStations RealStationsConfig `yaml:"real_stations"`
	Worker       WorkerConfig       `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type AuthConfig struct {
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

// BookingConfig drives the conflict engine and the availability grid.
// Slots are one hour long; the grid covers [OperatingStartHour, OperatingEndHour).
type BookingConfig struct {
	RatePerHourCents   int64 `yaml:"rate_per_hour_cents"`
	MaxDurationHours   int   `yaml:"max_duration_hours"`
	SlotLockTTLSeconds int   `yaml:"slot_lock_ttl_seconds"`
	OperatingStartHour int   `yaml:"operating_start_hour"`
	OperatingEndHour   int   `yaml:"operating_end_hour"`
	StationsCacheTTL   int   `yaml:"stations_cache_ttl_seconds"`
	RecommendCacheTTL  int   `yaml:"recommendations_cache_ttl_seconds"`
}

func (b BookingConfig) MaxDuration() time.Duration {
	return time.Duration(b.MaxDurationHours) * time.Hour
}

func (b BookingConfig) SlotLockTTL() time.Duration {
	return time.Duration(b.SlotLockTTLSeconds) * time.Second
}

type PaymentsConfig struct {
	StripeSecretKey string `yaml:"stripe_secret_key"`
	Currency        string `yaml:"currency"`
}

type RealStationsConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type WorkerConfig struct {
	CompletionSweepMinutes int `yaml:"completion_sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Booking.RatePerHourCents == 0 {
		c.Booking.RatePerHourCents = 500
	}
	if c.Booking.MaxDurationHours == 0 {
		c.Booking.MaxDurationHours = 8
	}
	if c.Booking.SlotLockTTLSeconds == 0 {
		c.Booking.SlotLockTTLSeconds = 5
	}
	if c.Booking.OperatingStartHour == 0 && c.Booking.OperatingEndHour == 0 {
		c.Booking.OperatingStartHour = 8
		c.Booking.OperatingEndHour = 20
	}
	if c.Payments.Currency == "" {
		c.Payments.Currency = "usd"
	}
	if c.RealStations.BaseURL == "" {
		c.RealStations.BaseURL = "https://api.openchargemap.io/v3/poi/"
	}
	if c.RealStations.TimeoutSeconds == 0 {
		c.RealStations.TimeoutSeconds = 10
	}
	if c.Worker.CompletionSweepMinutes == 0 {
		c.Worker.CompletionSweepMinutes = 5
	}
}
