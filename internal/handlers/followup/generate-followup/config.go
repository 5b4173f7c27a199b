// internal/handlers/followup/generate-followup/config.go
package generatefollowup

import (
	"time"

	"survey-intelligence/pkg/registry"
)

const defaultTimeout = 60 * time.Second

type Config struct {
	Timeout time.Duration
}

// LoadConfig takes the request deadline from the endpoint registry.
func LoadConfig(reg *registry.EndpointRegistry) *Config {
	cfg := &Config{Timeout: defaultTimeout}
	if ep, ok := reg.Find(Route); ok {
		cfg.Timeout = ep.TimeoutDuration(defaultTimeout)
	}
	return cfg
}
