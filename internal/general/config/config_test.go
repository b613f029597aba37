package config

import (
	"strings"
	"testing"
)

const sampleYAML = `
database:
  host: "db.internal"
  port: 5433
  user: crewsite
  password: 'secret'
  database: crewsite

rabbitmq:
  host: mq.internal
  port: 5672
  user: crewsite
  password: secret

websocket:
  port: 8081

services:
  attendance_service: 3101
  payroll_service: 3102

jwt:
  secret_key: "super-secret"

geofence:
  default_radius_meters: 250

reports:
  deadline_hour: 17
  deadline_minute: 30
`

func TestParseYAMLFull(t *testing.T) {
	var cfg Config
	if err := parseYAML(strings.NewReader(sampleYAML), &cfg); err != nil {
		t.Fatalf("parseYAML err = %v", err)
	}
	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate err = %v", err)
	}

	if cfg.Database.Host != "db.internal" || cfg.Database.Port != 5433 {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Database.Password != "secret" {
		t.Errorf("quoted password not unquoted: %q", cfg.Database.Password)
	}
	if cfg.JWT.SecretKey != "super-secret" {
		t.Errorf("jwt secret = %q", cfg.JWT.SecretKey)
	}
	if cfg.Geofence.DefaultRadiusMeters != 250 {
		t.Errorf("default radius = %v, want 250", cfg.Geofence.DefaultRadiusMeters)
	}
	if cfg.Reports.DeadlineHour != 17 || cfg.Reports.DeadlineMinute != 30 {
		t.Errorf("reports deadline = %d:%d, want 17:30", cfg.Reports.DeadlineHour, cfg.Reports.DeadlineMinute)
	}
	if cfg.Services.AttendanceServicePort != 3101 || cfg.Services.PayrollServicePort != 3102 {
		t.Errorf("service ports = %+v", cfg.Services)
	}
}

func TestParseYAMLRejectsUnknownKeys(t *testing.T) {
	bad := "database:\n  hostname: nope\n"
	var cfg Config
	if err := parseYAML(strings.NewReader(bad), &cfg); err == nil {
		t.Fatalf("unknown key should fail")
	}

	bad = "flux:\n  x: 1\n"
	if err := parseYAML(strings.NewReader(bad), &cfg); err == nil {
		t.Fatalf("unknown section should fail")
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config
	minimal := `
database:
  user: u
  password: p
  database: d

rabbitmq:
  user: u
  password: p
`
	if err := parseYAML(strings.NewReader(minimal), &cfg); err != nil {
		t.Fatalf("parseYAML err = %v", err)
	}
	applyDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate err = %v", err)
	}

	if cfg.Database.Host != "localhost" || cfg.Database.Port != 5432 {
		t.Errorf("database defaults = %+v", cfg.Database)
	}
	if cfg.Geofence.DefaultRadiusMeters != 200 {
		t.Errorf("default radius = %v, want 200", cfg.Geofence.DefaultRadiusMeters)
	}
	if cfg.Reports.DeadlineHour != 18 {
		t.Errorf("default deadline hour = %d, want 18", cfg.Reports.DeadlineHour)
	}
	if cfg.JWT.SecretKey == "" {
		t.Errorf("jwt secret should get a generated default")
	}
}
