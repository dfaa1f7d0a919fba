// Package openapi renders the declared options of a host as an OpenAPI
// document, one property per option and one nested object per group.
package openapi

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	optproxy "github.com/goliatone/go-optproxy"
)

type generator struct {
	config generatorConfig
}

// NewGenerator constructs an OpenAPI schema generator.
func NewGenerator(opts ...GeneratorOption) optproxy.SchemaGenerator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return generator{config: cfg}
}

// Option wires the OpenAPI generator into a host.
func Option(opts ...GeneratorOption) optproxy.HostOption {
	return optproxy.WithSchemaGenerator(NewGenerator(opts...))
}

func (g generator) Generate(host *optproxy.Host) (optproxy.SchemaDocument, error) {
	root := g.objectSchema(optproxy.Describe(host))
	document, err := g.document(root)
	if err != nil {
		return optproxy.SchemaDocument{}, err
	}
	return optproxy.SchemaDocument{
		Format:   optproxy.SchemaFormatOpenAPI,
		Document: document,
	}, nil
}

func (g generator) document(root map[string]any) (map[string]any, error) {
	cfg := g.config
	if cfg.operation.Path == "" || cfg.operation.Path[0] != '/' {
		return nil, fmt.Errorf("openapi: operation path %q must start with /", cfg.operation.Path)
	}

	info := map[string]any{
		"title":   cfg.info.Title,
		"version": cfg.info.Version,
	}
	if cfg.info.Description != "" {
		info["description"] = cfg.info.Description
	}

	statuses := make([]string, 0, len(cfg.responses))
	for status := range cfg.responses {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	responses := make(map[string]any, len(statuses))
	for _, status := range statuses {
		responses[status] = map[string]any{"description": cfg.responses[status]}
	}

	ref := "#/components/schemas/" + cfg.rootComponent
	operation := map[string]any{
		"operationId": cfg.operation.OperationID,
		"requestBody": map[string]any{
			"required": true,
			"content": map[string]any{
				cfg.contentType: map[string]any{
					"schema": map[string]any{"$ref": ref},
				},
			},
		},
		"responses": responses,
	}
	if cfg.operation.Summary != "" {
		operation["summary"] = cfg.operation.Summary
	}

	return map[string]any{
		"openapi": cfg.openAPIVersion,
		"info":    info,
		"paths": map[string]any{
			cfg.operation.Path: map[string]any{
				cfg.operation.Method: operation,
			},
		},
		"components": map[string]any{
			"schemas": map[string]any{
				cfg.rootComponent: root,
			},
		},
	}, nil
}

func (g generator) objectSchema(fields []optproxy.FieldDescriptor) map[string]any {
	properties := make(map[string]any, len(fields))
	for _, field := range fields {
		properties[field.Name] = g.fieldSchema(field)
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
	}
}

func (g generator) fieldSchema(field optproxy.FieldDescriptor) map[string]any {
	var schema map[string]any
	switch field.Kind {
	case optproxy.KindInt:
		schema = map[string]any{"type": "integer"}
	case optproxy.KindFloat:
		schema = map[string]any{"type": "number"}
	case optproxy.KindString:
		schema = map[string]any{"type": "string"}
	case optproxy.KindBool:
		schema = map[string]any{"type": "boolean"}
	case optproxy.KindDuration:
		return map[string]any{"type": "string", "format": "duration"}
	case optproxy.KindGroup:
		return g.objectSchema(field.Children)
	case optproxy.KindEnumGroup, optproxy.KindWrapperGroup:
		return map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{},
		}
	case optproxy.KindList:
		return map[string]any{"type": "array", "items": map[string]any{}}
	default:
		schema = schemaForValue(field.Default)
	}
	if g.config.withDefaults && field.Default != nil && isScalar(field.Default) {
		schema["default"] = field.Default
	}
	return schema
}

func schemaForValue(value any) map[string]any {
	if value == nil {
		return map[string]any{}
	}
	if _, ok := value.(time.Time); ok {
		return map[string]any{"type": "string", "format": "date-time"}
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Slice, reflect.Array:
		return map[string]any{"type": "array", "items": map[string]any{}}
	case reflect.Map, reflect.Struct:
		return map[string]any{"type": "object"}
	default:
		return map[string]any{"type": "string", "format": "go:" + rv.Type().String()}
	}
}

func isScalar(value any) bool {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
