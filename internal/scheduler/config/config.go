package config

import (
	"fmt"
	"time"

	"github.com/sinclairt/schedulable/pkg/config"
	"github.com/sinclairt/schedulable/pkg/utils"
)

// Scheduler holds scheduler-specific configuration.
type Scheduler struct {
	PollingInterval     string  `mapstructure:"polling_interval"`
	TimeZone            string  `mapstructure:"time_zone"`
	MaxPublishPerSecond float64 `mapstructure:"max_publish_per_second"`
	PublishBurst        int     `mapstructure:"publish_burst"`
	BreakerMaxFailures  uint32  `mapstructure:"breaker_max_failures"`
	BreakerTimeout      string  `mapstructure:"breaker_timeout"`
}

// Config holds the full configuration for the scheduler service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Scheduler Scheduler       `mapstructure:"scheduler"`
}

var defaults = map[string]interface{}{
	"app.name":                         "schedulable",
	"app.env":                          "development",
	"logger.level":                     "info",
	"logger.encoding":                  "json",
	"database.port":                    5432,
	"database.ssl_mode":                "disable",
	"database.time_zone":               "UTC",
	"database.max_idle_conns":          5,
	"database.max_open_conns":          20,
	"database.conn_max_lifetime":       "1h",
	"database.log_level":               "warn",
	"redis.port":                       6379,
	"redis.pool_size":                  10,
	"redis.stream_max_len":             10000,
	"api.port":                         8080,
	"scheduler.polling_interval":       "30s",
	"scheduler.time_zone":              "UTC",
	"scheduler.max_publish_per_second": 50.0,
	"scheduler.publish_burst":          10,
	"scheduler.breaker_max_failures":   5,
	"scheduler.breaker_timeout":        "30s",
}

// Load loads the scheduler configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg, defaults); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// PollingDuration parses the polling interval.
func (s Scheduler) PollingDuration() (time.Duration, error) {
	d, err := time.ParseDuration(s.PollingInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid polling interval %q: %w", s.PollingInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("polling interval must be positive, got %s", d)
	}
	return d, nil
}

// BreakerTimeoutDuration parses the time the breaker stays open.
func (s Scheduler) BreakerTimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(s.BreakerTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid breaker timeout %q: %w", s.BreakerTimeout, err)
	}
	return d, nil
}

// Location resolves the zone calendar fields are evaluated in.
func (s Scheduler) Location() (*time.Location, error) {
	return utils.LoadLocation(s.TimeZone)
}
