// Package report renders engine output for people and for downstream
// tools: schema trees as indented text or nested JSON, and per-document
// complexity listings. Rendering stops at serialization; layout and
// graphics belong to external consumers.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/jsonatlas/jsonatlas/internal/collection"
	"github.com/jsonatlas/jsonatlas/internal/errors"
	"github.com/jsonatlas/jsonatlas/internal/schema"
	"github.com/jsonatlas/jsonatlas/internal/value"
)

// TextOptions controls the text rendering of a schema tree.
type TextOptions struct {
	// TypeNames adds a PascalCase type-name hint next to object
	// positions, e.g. "billing_address: object (BillingAddress)".
	TypeNames bool
	// Samples prints representative values next to leaves when the
	// schema was built in value-sample mode.
	Samples bool
	// RootLabel names the root position; defaults to "root".
	RootLabel string
}

// SchemaText renders a schema tree as an indented listing, one
// position per line.
func SchemaText(n *schema.Node, opts TextOptions) string {
	if n == nil {
		return "(empty schema)\n"
	}
	label := opts.RootLabel
	if label == "" {
		label = "root"
	}
	var sb strings.Builder
	writeNode(&sb, n, label, 0, false, true, opts)
	return sb.String()
}

func writeNode(sb *strings.Builder, n *schema.Node, label string, depth int, optional, isRoot bool, opts TextOptions) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(label)
	sb.WriteString(": ")
	sb.WriteString(n.Types.String())
	if optional {
		sb.WriteString(" (optional)")
	}
	if opts.TypeNames && n.Types.Has(value.KindObject) && !isRoot {
		sb.WriteString(" (")
		sb.WriteString(strcase.ToCamel(label))
		sb.WriteString(")")
	}
	if opts.Samples && n.Sample != nil {
		sb.WriteString(" = ")
		sb.WriteString(sampleText(*n.Sample))
	}
	sb.WriteString("\n")

	for _, f := range n.Fields {
		writeNode(sb, f.Schema, f.Key, depth+1, !f.Required, false, opts)
	}
	if n.Elem != nil {
		writeNode(sb, n.Elem, "[]", depth+1, false, false, opts)
	}
}

func sampleText(v value.Value) string {
	switch v.Kind() {
	case value.KindNull:
		return "null"
	case value.KindBool:
		return fmt.Sprintf("%t", v.AsBool())
	case value.KindNumber:
		return fmt.Sprintf("%g", v.AsNumber())
	case value.KindString:
		return fmt.Sprintf("%q", v.AsString())
	case value.KindArray, value.KindObject:
		// Samples are only retained for scalar leaves.
		return v.Kind().String()
	}
	panic("report: should be unreachable")
}

// SchemaDoc is the JSON shape of a generalized schema node: type or
// type set, the reaching key when there is one, ordered children for
// object positions and a single items slot for array positions.
type SchemaDoc struct {
	Type     any         `json:"type"`
	Name     string      `json:"name,omitempty"`
	Optional bool        `json:"optional,omitempty"`
	Sample   any         `json:"sample,omitempty"`
	Children []SchemaDoc `json:"children,omitempty"`
	Items    *SchemaDoc  `json:"items,omitempty"`
}

// SchemaDocument converts a schema tree to its JSON document form.
func SchemaDocument(n *schema.Node) SchemaDoc {
	return schemaDoc(n, "", false)
}

func schemaDoc(n *schema.Node, name string, optional bool) SchemaDoc {
	d := SchemaDoc{Name: name, Optional: optional}

	kinds := n.Types.Kinds()
	switch len(kinds) {
	case 0:
		d.Type = "unknown"
	case 1:
		d.Type = kinds[0].String()
	default:
		names := make([]string, len(kinds))
		for i, k := range kinds {
			names[i] = k.String()
		}
		d.Type = names
	}

	if n.Sample != nil {
		d.Sample = n.Sample.Native()
	}
	for _, f := range n.Fields {
		d.Children = append(d.Children, schemaDoc(f.Schema, f.Key, !f.Required))
	}
	if n.Elem != nil {
		items := schemaDoc(n.Elem, "", false)
		d.Items = &items
	}
	return d
}

// SchemaJSON renders a schema tree as indented JSON.
func SchemaJSON(n *schema.Node) ([]byte, error) {
	if n == nil {
		return nil, errors.NewOutputError("cannot render an empty schema", nil)
	}
	b, err := json.MarshalIndent(SchemaDocument(n), "", "  ")
	if err != nil {
		return nil, errors.NewOutputError("failed to encode schema", err)
	}
	return append(b, '\n'), nil
}

// ComplexityEntry is one document's structural size.
type ComplexityEntry struct {
	DocumentID int `json:"document_id"`
	Complexity int `json:"complexity"`
}

// ComplexityJSON renders per-document complexity for a processed
// collection, in document id order.
func ComplexityJSON(res collection.Result) ([]byte, error) {
	entries := make([]ComplexityEntry, 0, len(res.Documents))
	for _, d := range res.Documents {
		entries = append(entries, ComplexityEntry{DocumentID: d.ID, Complexity: d.Complexity})
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, errors.NewOutputError("failed to encode complexity report", err)
	}
	return append(b, '\n'), nil
}

// TablesJSON renders the structure tables of a processed collection as
// one flat node list, documents in id order.
func TablesJSON(res collection.Result) ([]byte, error) {
	all := make([]any, 0)
	for _, d := range res.Documents {
		for _, n := range d.Table {
			all = append(all, n)
		}
	}
	b, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return nil, errors.NewOutputError("failed to encode structure tables", err)
	}
	return append(b, '\n'), nil
}
