package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string // YAML key: "database"
	}
	RabbitMQ struct {
		Host     string
		Port     int
		User     string
		Password string
	}
	WebSocket struct {
		Port int
	}
	Services struct {
		AttendanceServicePort int
		PayrollServicePort    int
	}
	JWT struct {
		SecretKey string `yaml:"secret_key"`
	}
	Geofence struct {
		DefaultRadiusMeters float64
	}
	Reports struct {
		DeadlineHour   int
		DeadlineMinute int
	}
}

// LoadFromFile loads config from a YAML file to a Config struct, applies defaults, and validates required fields.
func LoadFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := parseYAML(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets safe defaults for some fields.
func applyDefaults(cfg *Config) {
	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}

	// RabbitMQ
	if cfg.RabbitMQ.Host == "" {
		cfg.RabbitMQ.Host = "localhost"
	}
	if cfg.RabbitMQ.Port == 0 {
		cfg.RabbitMQ.Port = 5672
	}

	// WebSocket
	if cfg.WebSocket.Port == 0 {
		cfg.WebSocket.Port = 8080
	}

	// Services
	if cfg.Services.AttendanceServicePort == 0 {
		cfg.Services.AttendanceServicePort = 3101
	}
	if cfg.Services.PayrollServicePort == 0 {
		cfg.Services.PayrollServicePort = 3102
	}

	if cfg.JWT.SecretKey == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			// fallback: time-based bytes
			key = []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
		}
		cfg.JWT.SecretKey = base64.StdEncoding.EncodeToString(key)
	}

	// Geofence
	if cfg.Geofence.DefaultRadiusMeters == 0 {
		cfg.Geofence.DefaultRadiusMeters = 200
	}

	// Reports: zero hour is a valid deadline (midnight), so only default when
	// both fields are unset in the file.
	if cfg.Reports.DeadlineHour == 0 && cfg.Reports.DeadlineMinute == 0 {
		cfg.Reports.DeadlineHour = 18
	}
}

// validate checks required fields and basic ranges.
func (c *Config) validate() error {
	var problems []string

	// DB
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		problems = append(problems, "database.port must be in 1..65535")
	}
	if c.Database.User == "" {
		problems = append(problems, "database.user is required")
	}
	if c.Database.Password == "" {
		problems = append(problems, "database.password is required")
	}
	if c.Database.Name == "" {
		problems = append(problems, "database.name is required")
	}

	// RabbitMQ
	if c.RabbitMQ.Port <= 0 || c.RabbitMQ.Port > 65535 {
		problems = append(problems, "rabbitmq.port must be in 1..65535")
	}
	if c.RabbitMQ.User == "" {
		problems = append(problems, "rabbitmq.user is required")
	}
	if c.RabbitMQ.Password == "" {
		problems = append(problems, "rabbitmq.password is required")
	}

	// WebSocket
	if c.WebSocket.Port <= 0 || c.WebSocket.Port > 65535 {
		problems = append(problems, "websocket.port must be in 1..65535")
	}

	// Services
	if c.Services.AttendanceServicePort <= 0 || c.Services.AttendanceServicePort > 65535 {
		problems = append(problems, "services.attendance_service must be in 1..65535")
	}
	if c.Services.PayrollServicePort <= 0 || c.Services.PayrollServicePort > 65535 {
		problems = append(problems, "services.payroll_service must be in 1..65535")
	}

	// Geofence
	if c.Geofence.DefaultRadiusMeters <= 0 {
		problems = append(problems, "geofence.default_radius_meters must be > 0")
	}

	// Reports
	if c.Reports.DeadlineHour < 0 || c.Reports.DeadlineHour > 23 {
		problems = append(problems, "reports.deadline_hour must be in 0..23")
	}
	if c.Reports.DeadlineMinute < 0 || c.Reports.DeadlineMinute > 59 {
		problems = append(problems, "reports.deadline_minute must be in 0..59")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
