package optproxy

import "fmt"

// SchemaFormat identifies the document produced by a SchemaGenerator.
type SchemaFormat string

const (
	SchemaFormatDescriptors SchemaFormat = "descriptors"
	SchemaFormatOpenAPI     SchemaFormat = "openapi"
)

// SchemaDocument is the output of a SchemaGenerator.
type SchemaDocument struct {
	Format   SchemaFormat
	Document any
}

// SchemaGenerator renders the declared options of a host.
type SchemaGenerator interface {
	Generate(host *Host) (SchemaDocument, error)
}

// SchemaGeneratorFunc adapts a function to SchemaGenerator.
type SchemaGeneratorFunc func(host *Host) (SchemaDocument, error)

func (f SchemaGeneratorFunc) Generate(host *Host) (SchemaDocument, error) {
	return f(host)
}

// WithSchemaGenerator overrides the descriptor generator used by Host.Schema.
func WithSchemaGenerator(generator SchemaGenerator) HostOption {
	return func(cfg *hostConfig) {
		cfg.schemaGenerator = generator
	}
}

// DefaultSchemaGenerator returns the descriptor tree generator.
func DefaultSchemaGenerator() SchemaGenerator {
	return SchemaGeneratorFunc(func(host *Host) (SchemaDocument, error) {
		return SchemaDocument{
			Format:   SchemaFormatDescriptors,
			Document: Describe(host),
		}, nil
	})
}

// Schema renders the host with its configured generator.
func (h *Host) Schema() (SchemaDocument, error) {
	generator := DefaultSchemaGenerator()
	if h != nil && h.cfg.schemaGenerator != nil {
		generator = h.cfg.schemaGenerator
	}
	return generator.Generate(h)
}

// FieldDescriptor describes one declared option. Group options carry their
// children.
type FieldDescriptor struct {
	Name     string
	Path     string
	Kind     Kind
	Type     string
	Loaded   bool
	Default  any
	Children []FieldDescriptor
}

// Describe returns the declared option tree of the host, top-level options
// first, in declaration order. Options redeclared under the same name are
// reported once, by their latest declaration.
func Describe(hp HostProvider) []FieldDescriptor {
	host := hostOf(hp)
	if host == nil {
		return []FieldDescriptor{}
	}
	return describeGroup(host, RootGroup, map[string]bool{})
}

func describeGroup(host *Host, group string, visiting map[string]bool) []FieldDescriptor {
	fields := []FieldDescriptor{}
	if visiting[group] {
		return fields
	}
	visiting[group] = true
	defer delete(visiting, group)

	for _, proxy := range host.Options() {
		if proxy.Group() != group {
			continue
		}
		if latest, ok := host.Lookup(group, proxy.Name()); ok && latest != proxy {
			continue
		}
		field := describeProxy(proxy)
		if scope, ok := proxy.(interface{ GroupName() string }); ok {
			field.Children = describeGroup(host, scope.GroupName(), visiting)
		}
		fields = append(fields, field)
	}
	return fields
}

func describeProxy(proxy Proxy) FieldDescriptor {
	field := FieldDescriptor{
		Name:   proxy.Name(),
		Path:   joinPath(proxy.Group(), proxy.Name()),
		Kind:   KindCustom,
		Loaded: proxy.Loaded(),
	}
	if d, ok := proxy.(describable); ok {
		field.Path = d.Path()
		field.Kind = d.Kind()
		field.Type = d.TypeName()
		field.Default = d.DefaultValue()
		return field
	}
	field.Type = fmt.Sprintf("%T", proxy.Serialize(nil))
	return field
}

// Flatten lists every descriptor of the tree depth first.
func Flatten(fields []FieldDescriptor) []FieldDescriptor {
	var out []FieldDescriptor
	for _, field := range fields {
		children := field.Children
		field.Children = nil
		out = append(out, field)
		out = append(out, Flatten(children)...)
	}
	return out
}
