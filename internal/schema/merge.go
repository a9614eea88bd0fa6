package schema

import (
	"github.com/jsonatlas/jsonatlas/internal/flatten"
	"github.com/jsonatlas/jsonatlas/internal/value"
)

// Merge combines two generalized schemas into one. Either side may be
// nil, in which case the other is returned. The merged content (type
// sets, key sets, required flags, child structure) is independent of
// argument order and of how a fold over many schemas is associated;
// only the presentation order of object keys follows first-seen order.
// Merge never mutates its inputs.
func Merge(a, b *Node) *Node {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}

	m := &Node{Types: a.Types.Union(b.Types)}

	if a.Sample != nil {
		m.Sample = a.Sample
	} else {
		m.Sample = b.Sample
	}

	// Object fields only interact when both sides were ever objects;
	// a key missing from a side that was never an object says nothing
	// about that key's optionality.
	aObj := a.Types.Has(value.KindObject)
	bObj := b.Types.Has(value.KindObject)
	switch {
	case aObj && bObj:
		m.Fields = mergeFields(a.Fields, b.Fields)
	case aObj:
		m.Fields = a.Fields
	case bObj:
		m.Fields = b.Fields
	}

	if a.Elem != nil && b.Elem != nil {
		m.Elem = Merge(a.Elem, b.Elem)
	} else if a.Elem != nil {
		m.Elem = a.Elem
	} else if b.Elem != nil {
		m.Elem = b.Elem
	}

	return m
}

// mergeFields unions two field lists. Shared keys merge recursively
// and stay required only if required on both sides; keys present on
// one side only become optional. The result keeps first-seen order:
// all of a's keys in a's order, then b-only keys in b's order.
func mergeFields(as, bs []Field) []Field {
	out := make([]Field, 0, len(as)+len(bs))
	at := make(map[string]int, len(as))

	for _, f := range as {
		at[f.Key] = len(out)
		out = append(out, f)
	}

	seen := make(map[string]struct{}, len(bs))
	for _, f := range bs {
		seen[f.Key] = struct{}{}
		if i, ok := at[f.Key]; ok {
			out[i] = Field{
				Key:      f.Key,
				Schema:   Merge(out[i].Schema, f.Schema),
				Required: out[i].Required && f.Required,
			}
		} else {
			out = append(out, Field{Key: f.Key, Schema: f.Schema, Required: false})
		}
	}

	for i := range out {
		if _, ok := seen[out[i].Key]; !ok {
			out[i].Required = false
		}
	}

	return out
}

// Generalize folds many documents' structure tables into one schema.
// Returns nil when no table contributes any node.
func Generalize(tables [][]flatten.StructureNode) *Node {
	var acc *Node
	for _, t := range tables {
		acc = Merge(acc, FromTable(t))
	}
	return acc
}

// GeneralizeValues folds many live documents into one schema, building
// each per-document schema in the given mode.
func GeneralizeValues(docs []value.Value, mode Mode) *Node {
	var acc *Node
	for _, d := range docs {
		acc = Merge(acc, FromValue(d, mode))
	}
	return acc
}

// Fold reduces a stream of per-document schemas into one. It lets
// large collections generalize without holding every table in memory
// at once: flatten or build each document, send its schema, drop the
// table. Key presentation order follows arrival order.
func Fold(in <-chan *Node) *Node {
	var acc *Node
	for n := range in {
		acc = Merge(acc, n)
	}
	return acc
}
