package openapi

import "strings"

type generatorConfig struct {
	openAPIVersion string
	info           infoConfig
	operation      operationConfig
	contentType    string
	responses      map[string]string
	rootComponent  string
	withDefaults   bool
}

type infoConfig struct {
	Title       string
	Version     string
	Description string
}

type operationConfig struct {
	Path        string
	Method      string
	OperationID string
	Summary     string
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		openAPIVersion: "3.0.3",
		info: infoConfig{
			Title:   "Configuration",
			Version: "1.0.0",
		},
		operation: operationConfig{
			Path:        "/config",
			Method:      "put",
			OperationID: "putConfig",
		},
		contentType:   "application/json",
		responses:     map[string]string{"204": "Applied"},
		rootComponent: "Options",
		withDefaults:  true,
	}
}

// GeneratorOption configures the OpenAPI generator.
type GeneratorOption func(*generatorConfig)

// WithOpenAPIVersion overrides the OpenAPI version string (default: 3.0.3).
func WithOpenAPIVersion(version string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if version != "" {
			cfg.openAPIVersion = version
		}
	}
}

// WithInfo configures the info block. Empty strings keep the defaults.
func WithInfo(title, version, description string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if title != "" {
			cfg.info.Title = title
		}
		if version != "" {
			cfg.info.Version = version
		}
		cfg.info.Description = description
	}
}

// WithOperation sets the path, method and operationId the option tree is
// published under.
func WithOperation(path, method, operationID, summary string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if path != "" {
			cfg.operation.Path = path
		}
		if method != "" {
			cfg.operation.Method = strings.ToLower(method)
		}
		if operationID != "" {
			cfg.operation.OperationID = operationID
		}
		cfg.operation.Summary = summary
	}
}

// WithContentType sets the request body content type.
func WithContentType(contentType string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if contentType != "" {
			cfg.contentType = contentType
		}
	}
}

// WithResponse registers or overrides the response for status.
func WithResponse(status, description string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if status == "" {
			return
		}
		cfg.responses[status] = description
	}
}

// WithRootComponent names the component the option tree is published as.
func WithRootComponent(name string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if name != "" {
			cfg.rootComponent = name
		}
	}
}

// WithoutDefaults omits option defaults from the generated schemas.
func WithoutDefaults() GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.withDefaults = false
	}
}
