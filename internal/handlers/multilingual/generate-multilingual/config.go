// internal/handlers/multilingual/generate-multilingual/config.go
package generatemultilingual

import (
	"time"

	"survey-intelligence/pkg/registry"
)

const defaultTimeout = 60 * time.Second

type Config struct {
	Timeout time.Duration
}

func LoadConfig(reg *registry.EndpointRegistry) *Config {
	cfg := &Config{Timeout: defaultTimeout}
	if ep, ok := reg.Find(Route); ok {
		cfg.Timeout = ep.TimeoutDuration(defaultTimeout)
	}
	return cfg
}
