// internal/handlers/system/models.go
package system

// Info identifies the service on the root endpoint.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

type RootOutput struct {
	Info
	Endpoints map[string]string `json:"endpoints"`
	Usage     map[string]string `json:"usage"`
}

type QuestionTypesOutput struct {
	QuestionTypes []string          `json:"question_types"`
	Descriptions  map[string]string `json:"descriptions"`
}

type ReadyOutput struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

type CacheStatsOutput struct {
	Backend   string  `json:"backend"`
	Entries   int     `json:"entries"`
	MaxSize   int     `json:"max_size"`
	TTLMillis int64   `json:"ttl_ms"`
	Hits      uint64  `json:"hits"`
	Misses    uint64  `json:"misses"`
	HitRatio  float64 `json:"hit_ratio"`
	Evictions uint64  `json:"evictions"`
	Expired   uint64  `json:"expired"`
}

type CachePurgeOutput struct {
	Purged  int `json:"purged"`
	Entries int `json:"entries"`
}
