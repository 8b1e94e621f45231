package notifyloanapplicant

import (
	"time"

	"loan-wizard/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	CountryCode  string
	Timeout      time.Duration
}

func LoadConfig(cfg *config.Config, wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Config{
		EmailEnabled: cfg.Notifications.Email.Enabled,
		SMSEnabled:   cfg.Notifications.SMS.Enabled,
		CountryCode:  cfg.Notifications.SMS.CountryCode,
		Timeout:      timeout,
	}
}
