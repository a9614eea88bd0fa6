// Package export converts generalized schemas into OpenAPI schema
// objects so collection shapes can feed API tooling.
package export

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/jsonatlas/jsonatlas/internal/schema"
	"github.com/jsonatlas/jsonatlas/internal/value"
)

// OpenAPISchema maps a generalized schema node to an openapi3.Schema.
//
// A single observed type maps directly; null alongside one other type
// becomes that type with nullable set; several non-null types become a
// oneOf of the per-type projections. An array slot whose child was
// never observed maps to an unconstrained item schema. Value samples
// surface as examples.
func OpenAPISchema(n *schema.Node) *openapi3.Schema {
	if n == nil {
		return &openapi3.Schema{}
	}

	nullable := n.Types.Has(value.KindNull)
	kinds := withoutNull(n.Types.Kinds())

	switch len(kinds) {
	case 0:
		// Only null observed, or nothing at all (empty-array slot).
		s := &openapi3.Schema{Nullable: nullable}
		attachExample(s, n)
		return s
	case 1:
		s := singleKind(n, kinds[0])
		s.Nullable = nullable
		attachExample(s, n)
		return s
	default:
		refs := make(openapi3.SchemaRefs, 0, len(kinds))
		for _, k := range kinds {
			alt := singleKind(n, k)
			refs = append(refs, &openapi3.SchemaRef{Value: alt})
		}
		s := &openapi3.Schema{OneOf: refs, Nullable: nullable}
		attachExample(s, n)
		return s
	}
}

// singleKind projects the node as exactly one observed kind.
func singleKind(n *schema.Node, k value.Kind) *openapi3.Schema {
	switch k {
	case value.KindNull:
		return &openapi3.Schema{Nullable: true}
	case value.KindBool:
		return &openapi3.Schema{Type: openapi3.TypeBoolean}
	case value.KindNumber:
		return &openapi3.Schema{Type: openapi3.TypeNumber}
	case value.KindString:
		return &openapi3.Schema{Type: openapi3.TypeString}
	case value.KindArray:
		return &openapi3.Schema{
			Type:  openapi3.TypeArray,
			Items: &openapi3.SchemaRef{Value: OpenAPISchema(n.Elem)},
		}
	case value.KindObject:
		props := make(openapi3.Schemas, len(n.Fields))
		var required []string
		for _, f := range n.Fields {
			props[f.Key] = &openapi3.SchemaRef{Value: OpenAPISchema(f.Schema)}
			if f.Required {
				required = append(required, f.Key)
			}
		}
		return &openapi3.Schema{
			Type:       openapi3.TypeObject,
			Properties: props,
			Required:   required,
		}
	}
	panic("export: should be unreachable")
}

func withoutNull(kinds []value.Kind) []value.Kind {
	out := kinds[:0:0]
	for _, k := range kinds {
		if k != value.KindNull {
			out = append(out, k)
		}
	}
	return out
}

func attachExample(s *openapi3.Schema, n *schema.Node) {
	if n.Sample != nil {
		s.Example = n.Sample.Native()
	}
}
