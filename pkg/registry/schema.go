// pkg/registry/schema.go
package registry

// EndpointRegistry describes every POST operation the API exposes together
// with the JSON Schema its request body must satisfy.
type EndpointRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Endpoints   []Endpoint `json:"endpoints"`
}

type Endpoint struct {
	ID          string                 `json:"id"`
	DisplayName string                 `json:"displayName"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Method      string                 `json:"method"`
	Path        string                 `json:"path"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	ErrorCodes  []string               `json:"errorCodes"`
	Timeout     string                 `json:"timeout"`
	Tags        []string               `json:"tags"`
}
