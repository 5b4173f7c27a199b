// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"survey-intelligence/internal/common/validation"
	"survey-intelligence/pkg/registry"
)

var registryPath string

func main() {
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{listCmd, exportCmd, addCmd, updateCmd, validateCmd} {
		fs.StringVar(&registryPath, "path", "configs/endpoints.json", "Path to registry file")
	}

	// Add command flags
	idAdd := addCmd.String("id", "", "Endpoint ID (e.g., followup.reason.generate)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Generate Reason)")
	description := addCmd.String("description", "", "Description")
	category := addCmd.String("category", "", "Category (e.g., followup)")
	path := addCmd.String("route", "", "HTTP path (e.g., /generate-reason)")
	timeout := addCmd.String("timeout", "60s", "Request timeout")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Endpoint ID to update")
	field := updateCmd.String("field", "", "Field to update (timeout, displayName, etc.)")
	value := updateCmd.String("value", "", "New value for the field")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list":
		listCmd.Parse(os.Args[2:])
		if err := listEndpoints(); err != nil {
			fmt.Printf("Error listing endpoints: %v\n", err)
			os.Exit(1)
		}

	case "export":
		exportCmd.Parse(os.Args[2:])
		if err := exportDefault(); err != nil {
			fmt.Printf("Error exporting registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote embedded registry to %s\n", registryPath)

	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *category == "" || *path == "" {
			fmt.Println("Error: id, displayName, category, and route are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		endpoint := registry.Endpoint{
			ID:          *idAdd,
			DisplayName: *displayName,
			Description: *description,
			Category:    *category,
			Method:      "POST",
			Path:        *path,
			InputSchema: map[string]interface{}{"type": "object"},
			ErrorCodes:  []string{"VALIDATION_ERROR", "BAD_REQUEST", "INTERNAL_ERROR"},
			Timeout:     *timeout,
			Tags:        []string{},
		}
		if err := addEndpoint(&endpoint); err != nil {
			fmt.Printf("Error adding endpoint: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added endpoint: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateEndpoint(*idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating endpoint: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated endpoint %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func load() (*registry.EndpointRegistry, error) {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	return reg, nil
}

func listEndpoints() error {
	reg, err := load()
	if err != nil {
		return err
	}
	fmt.Printf("Registry %s (updated %s)\n", reg.Version, reg.LastUpdated)
	for _, ep := range reg.Endpoints {
		fmt.Printf("  %-6s %-34s %-32s %s\n", ep.Method, ep.Path, ep.ID, ep.Timeout)
	}
	return nil
}

func exportDefault() error {
	reg, err := registry.Default()
	if err != nil {
		return err
	}
	return saveRegistry(reg, registryPath)
}

func addEndpoint(endpoint *registry.Endpoint) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		// Start from the embedded registry when no file exists yet
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if reg, err = registry.Default(); err != nil {
			return err
		}
	}

	if _, exists := reg.FindByID(endpoint.ID); exists {
		return fmt.Errorf("endpoint with ID %s already exists", endpoint.ID)
	}
	if _, exists := reg.Find(endpoint.Path); exists {
		return fmt.Errorf("endpoint with path %s already exists", endpoint.Path)
	}

	reg.Endpoints = append(reg.Endpoints, *endpoint)
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveRegistry(reg, registryPath)
}

func updateEndpoint(id, field, value string) error {
	reg, err := load()
	if err != nil {
		return err
	}

	ep, found := reg.FindByID(id)
	if !found {
		return fmt.Errorf("endpoint with ID %s not found", id)
	}

	switch field {
	case "displayName":
		ep.DisplayName = value
	case "description":
		ep.Description = value
	case "category":
		ep.Category = value
	case "path":
		ep.Path = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		ep.Timeout = value
	case "tags":
		ep.Tags = strings.Split(value, ",")
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return saveRegistry(reg, registryPath)
}

func validateRegistry() error {
	reg, err := load()
	if err != nil {
		return err
	}

	if len(reg.Endpoints) == 0 {
		return fmt.Errorf("registry contains no endpoints")
	}

	ids := make(map[string]bool)
	paths := make(map[string]bool)
	for _, ep := range reg.Endpoints {
		if ep.ID == "" {
			return fmt.Errorf("endpoint missing required field: ID")
		}
		if ids[ep.ID] {
			return fmt.Errorf("duplicate endpoint ID: %s", ep.ID)
		}
		ids[ep.ID] = true

		if !strings.HasPrefix(ep.Path, "/") {
			return fmt.Errorf("endpoint %s has invalid path %q", ep.ID, ep.Path)
		}
		if paths[ep.Path] {
			return fmt.Errorf("duplicate endpoint path: %s", ep.Path)
		}
		paths[ep.Path] = true

		if ep.DisplayName == "" {
			return fmt.Errorf("endpoint %s missing required field: DisplayName", ep.ID)
		}
		if ep.Timeout != "" {
			if _, err := time.ParseDuration(ep.Timeout); err != nil {
				return fmt.Errorf("endpoint %s has invalid timeout: %w", ep.ID, err)
			}
		}
		if _, err := validation.NewRequestValidator(ep.InputSchema); err != nil {
			return fmt.Errorf("endpoint %s: %w", ep.ID, err)
		}
	}

	fmt.Printf("Registry validation passed. Found %d endpoints.\n", len(reg.Endpoints))
	return nil
}

// saveRegistry handles saving the registry to file
func saveRegistry(reg *registry.EndpointRegistry, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := reg.Save(path); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  list     List the endpoints in a registry file
  export   Write the embedded registry to -path
  add      Add a new endpoint to the registry
  update   Update an existing endpoint's field
  validate Validate the registry file and compile every input schema
  help     Show this help message

Examples:
  registry-updater export -path configs/endpoints.json
  registry-updater update -id theme.enhanced.generate -field timeout -value 120s
  registry-updater validate -path configs/endpoints.json

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
