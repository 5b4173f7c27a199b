// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

//go:embed endpoints.json
var embeddedRegistry []byte

// Default returns the registry compiled into the binary.
func Default() (*EndpointRegistry, error) {
	return Parse(embeddedRegistry)
}

func LoadRegistry(path string) (*EndpointRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*EndpointRegistry, error) {
	var reg EndpointRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	return &reg, nil
}

// Save writes the registry as indented JSON.
func (r *EndpointRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Find looks an endpoint up by path.
func (r *EndpointRegistry) Find(path string) (*Endpoint, bool) {
	for i := range r.Endpoints {
		if r.Endpoints[i].Path == path {
			return &r.Endpoints[i], true
		}
	}
	return nil, false
}

// FindByID looks an endpoint up by its dotted identifier.
func (r *EndpointRegistry) FindByID(id string) (*Endpoint, bool) {
	for i := range r.Endpoints {
		if r.Endpoints[i].ID == id {
			return &r.Endpoints[i], true
		}
	}
	return nil, false
}

// TimeoutDuration parses Timeout; an empty or invalid value yields fallback.
func (e *Endpoint) TimeoutDuration(fallback time.Duration) time.Duration {
	if strings.TrimSpace(e.Timeout) == "" {
		return fallback
	}
	d, err := time.ParseDuration(e.Timeout)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
