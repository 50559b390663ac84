package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	pkgopenapi "github.com/integrixs/fieldtree/pkg/openapi"
	"github.com/integrixs/fieldtree/pkg/schema"
)

// Parser implements pkgopenapi.Parser using kin-openapi.
type Parser struct {
	options pkgopenapi.ParserOptions
}

// Ensure the implementation satisfies the public interface.
var _ pkgopenapi.Parser = (*Parser)(nil)

// New constructs a Parser with the given options.
func New(options pkgopenapi.ParserOptions) pkgopenapi.Parser {
	return &Parser{options: options}
}

// Structures converts component schemas (and optionally inline request
// bodies) into structures keyed by name.
func (p *Parser) Structures(ctx context.Context, doc schema.Document, opts schema.NormalizeOptions) (schema.SchemaIR, error) {
	if err := ctx.Err(); err != nil {
		return schema.SchemaIR{}, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return schema.SchemaIR{}, errors.New("openapi parser: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: false,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return schema.SchemaIR{}, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if strings.TrimSpace(spec.OpenAPI) == "" {
		return schema.SchemaIR{}, errors.New("openapi parser: only OpenAPI 3 documents are supported")
	}
	if p.options.ValidateDocument {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return schema.SchemaIR{}, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}

	order, err := indexPropertyOrder(raw)
	if err != nil {
		return schema.SchemaIR{}, err
	}
	conv := &converter{order: order, active: make(map[*openapi3.Schema]struct{})}

	ir := schema.NewSchemaIR()
	wanted := func(id string) bool {
		return opts.StructureID == "" || opts.StructureID == id
	}

	if spec.Components != nil {
		for _, name := range sortedNames(spec.Components.Schemas) {
			if !wanted(name) {
				continue
			}
			converted := conv.convert(spec.Components.Schemas[name], pointer("#", "components", "schemas", name))
			ir.Add(structureFrom(name, converted))
		}
	}

	if p.options.IncludeRequestBodies && spec.Paths != nil {
		items := spec.Paths.Map()
		for _, path := range sortedNames(items) {
			item := items[path]
			if item == nil {
				continue
			}
			operations := item.Operations()
			for _, method := range sortedNames(operations) {
				id, converted, ok := conv.requestBody(path, method, operations[method])
				if !ok || !wanted(id) {
					continue
				}
				if _, exists := ir.Structure(id); exists {
					continue
				}
				ir.Add(structureFrom(id, converted))
			}
		}
	}

	if opts.StructureID != "" {
		if _, ok := ir.Structure(opts.StructureID); !ok {
			return schema.SchemaIR{}, fmt.Errorf("openapi parser: structure %q not found", opts.StructureID)
		}
	}
	if len(ir.Structures) == 0 {
		return schema.SchemaIR{}, errors.New("openapi parser: document has no component schemas")
	}
	return ir, nil
}

func structureFrom(id string, s schema.Schema) schema.Structure {
	return schema.Structure{
		ID:          id,
		Title:       s.Title,
		Description: s.Description,
		Schema:      s,
		Extensions:  s.Extensions,
	}
}

var requestMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// requestBody converts an inline request body schema. Bodies that reference a
// component are skipped because the component is already a structure.
func (c *converter) requestBody(path, method string, operation *openapi3.Operation) (string, schema.Schema, bool) {
	if operation == nil || operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return "", schema.Schema{}, false
	}
	content := operation.RequestBody.Value.Content
	mediaType := ""
	for _, candidate := range requestMediaTypes {
		if _, ok := content[candidate]; ok {
			mediaType = candidate
			break
		}
	}
	if mediaType == "" {
		names := sortedNames(content)
		if len(names) == 0 {
			return "", schema.Schema{}, false
		}
		mediaType = names[0]
	}
	mt := content[mediaType]
	if mt == nil || mt.Schema == nil || mt.Schema.Ref != "" {
		return "", schema.Schema{}, false
	}

	opID := operation.OperationID
	if opID == "" {
		opID = strings.ToLower(method) + ":" + path
	}
	at := pointer("#", "paths", path, strings.ToLower(method), "requestBody", "content", mediaType, "schema")
	converted := c.convert(mt.Schema, at)
	if converted.Description == "" {
		converted.Description = operation.RequestBody.Value.Description
	}
	return opID + "Request", converted, true
}

type converter struct {
	order  map[string][]string
	active map[*openapi3.Schema]struct{}
}

// convert maps a kin-openapi schema onto the IR. at is the JSON pointer of the
// schema in the source document and keys the property order index. Schemas
// already being converted (recursive refs) are cut off as unresolved refs.
func (c *converter) convert(ref *openapi3.SchemaRef, at string) schema.Schema {
	if ref == nil {
		return schema.Schema{}
	}
	if ref.Value == nil {
		return schema.Schema{Ref: ref.Ref}
	}
	if strings.HasPrefix(ref.Ref, "#") {
		at = ref.Ref
	}
	src := ref.Value
	if _, busy := c.active[src]; busy {
		return schema.Schema{Ref: at, Title: src.Title, Description: src.Description}
	}
	c.active[src] = struct{}{}
	defer delete(c.active, src)

	out := schema.Schema{
		Type:        firstSchemaType(src.Type),
		Format:      src.Format,
		Title:       src.Title,
		Description: src.Description,
		Extensions:  extractExtensions(src.Extensions),
	}
	if len(src.Required) > 0 {
		out.Required = append([]string(nil), src.Required...)
	}

	for idx, part := range src.AllOf {
		c.mergeAllOf(&out, c.convert(part, pointer(at, "allOf", fmt.Sprint(idx))))
	}

	for _, name := range c.propertyOrder(src, at) {
		out.SetProperty(name, c.convert(src.Properties[name], pointer(at, "properties", name)))
	}

	if src.Items != nil {
		items := c.convert(src.Items, pointer(at, "items"))
		out.Items = &items
	}
	if src.MinItems > 0 {
		value := int(src.MinItems)
		out.MinItems = &value
	}
	if src.MaxItems != nil {
		value := int(*src.MaxItems)
		out.MaxItems = &value
	}
	return out
}

// mergeAllOf folds a composed part into target: properties append in order
// and required names accumulate.
func (c *converter) mergeAllOf(target *schema.Schema, part schema.Schema) {
	if target.Type == "" {
		target.Type = part.Type
	}
	if target.Description == "" {
		target.Description = part.Description
	}
	for _, name := range part.PropertyNames() {
		target.SetProperty(name, part.Properties[name])
	}
	for _, name := range part.Required {
		if !target.IsRequired(name) {
			target.Required = append(target.Required, name)
		}
	}
	for key, value := range part.Extensions {
		if target.Extensions == nil {
			target.Extensions = make(map[string]any)
		}
		if _, exists := target.Extensions[key]; !exists {
			target.Extensions[key] = value
		}
	}
}

// propertyOrder prefers the x-fieldtree-order extension, then the order the
// document declared the properties in, then lexical order.
func (c *converter) propertyOrder(src *openapi3.Schema, at string) []string {
	if len(src.Properties) == 0 {
		return nil
	}
	declared := orderFromExtension(src.Extensions)
	if len(declared) == 0 {
		declared = c.order[pointer(at, "properties")]
	}
	seen := make(map[string]struct{}, len(src.Properties))
	names := make([]string, 0, len(src.Properties))
	for _, name := range declared {
		if _, ok := src.Properties[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, name := range sortedNames(src.Properties) {
		if _, ok := seen[name]; !ok {
			names = append(names, name)
		}
	}
	return names
}

func orderFromExtension(ext map[string]any) []string {
	raw, ok := ext[schema.ExtensionOrder]
	if !ok {
		return nil
	}
	switch list := raw.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if name, ok := item.(string); ok {
				out = append(out, name)
			}
		}
		return out
	default:
		return nil
	}
}

// firstSchemaType picks the first non-null member of a type list.
func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	for _, value := range types.Slice() {
		if value != "null" {
			return value
		}
	}
	return ""
}

// extractExtensions keeps vendor extensions except the order hint, which is
// consumed into PropertyOrder.
func extractExtensions(raw map[string]any) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	result := make(map[string]any)
	for key, value := range raw {
		if key == schema.ExtensionOrder || !strings.HasPrefix(key, "x-") {
			continue
		}
		result[key] = value
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
