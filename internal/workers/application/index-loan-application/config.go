package indexloanapplication

import (
	"time"

	"loan-wizard/internal/common/config"
)

type Config struct {
	Index   string
	Timeout time.Duration
}

func LoadConfig(cfg *config.Config, wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Config{
		Index:   cfg.Database.Elasticsearch.Index,
		Timeout: timeout,
	}
}
