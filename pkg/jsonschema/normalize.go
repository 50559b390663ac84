package jsonschema

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/integrixs/fieldtree/pkg/schema"
)

const defaultMaxDepth = 64

// structuralKeys are the keywords that shape the IR.
var structuralKeys = map[string]struct{}{
	"$schema":     {},
	"$id":         {},
	"$defs":       {},
	"definitions": {},
	"$ref":        {},
	"$anchor":     {},
	"$comment":    {},
	"type":        {},
	"properties":  {},
	"required":    {},
	"items":       {},
	"title":       {},
	"description": {},
	"format":      {},
	"minItems":    {},
	"maxItems":    {},
}

// ignoredKeys are value constraints with no slot in a field tree. They are
// accepted and dropped.
var ignoredKeys = map[string]struct{}{
	"enum":                 {},
	"const":                {},
	"default":              {},
	"examples":             {},
	"minimum":              {},
	"maximum":              {},
	"exclusiveMinimum":     {},
	"exclusiveMaximum":     {},
	"multipleOf":           {},
	"minLength":            {},
	"maxLength":            {},
	"pattern":              {},
	"uniqueItems":          {},
	"minProperties":        {},
	"maxProperties":        {},
	"additionalProperties": {},
	"readOnly":             {},
	"writeOnly":            {},
	"deprecated":           {},
}

type normalizer struct {
	root     *object
	refStack []string
	maxDepth int
}

func newNormalizer(root *object) *normalizer {
	return &normalizer{root: root, maxDepth: defaultMaxDepth}
}

func (n *normalizer) schemaFrom(value any, path string, depth int) (schema.Schema, error) {
	if depth > n.maxDepth {
		return schema.Schema{}, fmt.Errorf("jsonschema: nesting deeper than %d at %s", n.maxDepth, path)
	}
	payload, ok := value.(*object)
	if !ok {
		if b, isBool := value.(bool); isBool && b {
			return schema.Schema{}, nil
		}
		return schema.Schema{}, fmt.Errorf("jsonschema: schema must be an object at %s", path)
	}
	if err := validateKeywords(payload, path); err != nil {
		return schema.Schema{}, err
	}

	if ref := strings.TrimSpace(payload.str("$ref")); ref != "" {
		return n.resolveRef(ref, payload, path, depth)
	}

	typ, err := readType(payload, path)
	if err != nil {
		return schema.Schema{}, err
	}
	out := schema.Schema{
		Type:        typ,
		Title:       strings.TrimSpace(payload.str("title")),
		Description: strings.TrimSpace(payload.str("description")),
		Format:      strings.TrimSpace(payload.str("format")),
		Extensions:  extractExtensions(payload),
	}

	if raw, ok := payload.get("required"); ok {
		list, ok := raw.([]any)
		if !ok {
			return schema.Schema{}, fmt.Errorf("jsonschema: required must be an array at %s", path)
		}
		for idx, item := range list {
			name, ok := item.(string)
			if !ok || strings.TrimSpace(name) == "" {
				return schema.Schema{}, fmt.Errorf("jsonschema: required[%d] must be a string at %s", idx, path)
			}
			out.Required = append(out.Required, name)
		}
	}

	for _, key := range []string{"minItems", "maxItems"} {
		raw, ok := payload.get(key)
		if !ok {
			continue
		}
		value, ok := toInt(raw)
		if !ok || value < 0 {
			return schema.Schema{}, fmt.Errorf("jsonschema: %s must be a non-negative integer at %s", key, path)
		}
		if key == "minItems" {
			out.MinItems = &value
		} else {
			out.MaxItems = &value
		}
	}

	if raw, ok := payload.get("properties"); ok {
		props, ok := raw.(*object)
		if !ok {
			return schema.Schema{}, fmt.Errorf("jsonschema: properties must be an object at %s", path)
		}
		for _, key := range props.keys {
			converted, err := n.schemaFrom(props.values[key], joinPath(path, "properties", key), depth+1)
			if err != nil {
				return schema.Schema{}, err
			}
			out.SetProperty(key, converted)
		}
	}

	if raw, ok := payload.get("items"); ok {
		switch typed := raw.(type) {
		case *object:
			converted, err := n.schemaFrom(typed, joinPath(path, "items"), depth+1)
			if err != nil {
				return schema.Schema{}, err
			}
			out.Items = &converted
		case bool:
		case []any:
			return schema.Schema{}, fmt.Errorf("jsonschema: tuple items are not supported at %s", path)
		default:
			return schema.Schema{}, fmt.Errorf("jsonschema: items must be an object at %s", path)
		}
	}

	return out, nil
}

var errRefNotFound = errors.New("jsonschema: $ref target not found")

// resolveRef expands local JSON pointer refs. Remote refs, dangling refs and
// refs already being expanded (cycles) stay unresolved and surface as
// Schema.Ref.
func (n *normalizer) resolveRef(ref string, payload *object, path string, depth int) (schema.Schema, error) {
	unresolved := schema.Schema{
		Ref:         ref,
		Title:       strings.TrimSpace(payload.str("title")),
		Description: strings.TrimSpace(payload.str("description")),
	}
	if !strings.HasPrefix(ref, "#") {
		return unresolved, nil
	}
	for _, active := range n.refStack {
		if active == ref {
			return unresolved, nil
		}
	}

	target, err := n.lookup(ref)
	if errors.Is(err, errRefNotFound) {
		return unresolved, nil
	}
	if err != nil {
		return schema.Schema{}, fmt.Errorf("%w at %s", err, path)
	}

	n.refStack = append(n.refStack, ref)
	resolved, err := n.schemaFrom(target, ref, depth+1)
	n.refStack = n.refStack[:len(n.refStack)-1]
	if err != nil {
		return schema.Schema{}, err
	}
	if unresolved.Title != "" {
		resolved.Title = unresolved.Title
	}
	if unresolved.Description != "" {
		resolved.Description = unresolved.Description
	}
	return resolved, nil
}

func (n *normalizer) lookup(ref string) (any, error) {
	pointer := strings.TrimPrefix(ref, "#")
	var current any = n.root
	if pointer == "" {
		return current, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return nil, fmt.Errorf("jsonschema: unsupported $ref %q", ref)
	}
	for _, segment := range strings.Split(pointer[1:], "/") {
		segment = unescapeJSONPointer(segment)
		switch node := current.(type) {
		case *object:
			next, ok := node.get(segment)
			if !ok {
				return nil, fmt.Errorf("%w: %q", errRefNotFound, ref)
			}
			current = next
		case []any:
			idx, ok := toInt(segment)
			if !ok || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("%w: %q", errRefNotFound, ref)
			}
			current = node[idx]
		default:
			return nil, fmt.Errorf("%w: %q", errRefNotFound, ref)
		}
	}
	return current, nil
}

func validateKeywords(payload *object, path string) error {
	for _, key := range payload.keys {
		if isVendorExtension(key) {
			continue
		}
		if _, ok := structuralKeys[key]; ok {
			continue
		}
		if _, ok := ignoredKeys[key]; ok {
			continue
		}
		return fmt.Errorf("jsonschema: unsupported keyword %q at %s", key, path)
	}
	return nil
}

// readType accepts a type name or a list; "null" is skipped in lists so
// nullable fields keep their value type.
func readType(payload *object, path string) (string, error) {
	raw, ok := payload.get("type")
	if !ok {
		return "", nil
	}
	var candidates []string
	switch typed := raw.(type) {
	case string:
		candidates = []string{typed}
	case []any:
		for _, item := range typed {
			name, ok := item.(string)
			if !ok {
				return "", fmt.Errorf("jsonschema: type entries must be strings at %s", path)
			}
			candidates = append(candidates, name)
		}
	default:
		return "", fmt.Errorf("jsonschema: type must be a string or array at %s", path)
	}
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "null" {
			continue
		}
		if !isAllowedType(candidate) {
			return "", fmt.Errorf("jsonschema: unsupported type %q at %s", candidate, path)
		}
		return candidate, nil
	}
	return "", fmt.Errorf("jsonschema: type %v has no non-null member at %s", raw, path)
}

func isVendorExtension(key string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(key)), "x-")
}

func extractExtensions(payload *object) map[string]any {
	var extensions map[string]any
	for _, key := range payload.keys {
		if !isVendorExtension(key) {
			continue
		}
		if extensions == nil {
			extensions = make(map[string]any)
		}
		extensions[key] = payload.values[key]
	}
	return extensions
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case uint64:
		return int(v), true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
		return 0, false
	case string:
		out, err := strconv.Atoi(v)
		return out, err == nil
	default:
		return 0, false
	}
}

func isAllowedType(value string) bool {
	switch value {
	case "object", "array", "string", "integer", "number", "boolean":
		return true
	default:
		return false
	}
}

func joinPath(path string, segments ...string) string {
	if path == "" {
		path = "#"
	}
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		path = path + "/" + escapeJSONPointer(segment)
	}
	return path
}

func escapeJSONPointer(value string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(value)
}

func unescapeJSONPointer(value string) string {
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(value)
}
