// Package graph projects one document's structure table into a
// vertex/edge view for external renderers. It assigns no colors and
// performs no layout; consumers draw from the vertex type field.
package graph

import (
	"github.com/jsonatlas/jsonatlas/internal/errors"
	"github.com/jsonatlas/jsonatlas/internal/flatten"
	"github.com/jsonatlas/jsonatlas/internal/value"
)

// Vertex is one node of the projection. Label is set only for nodes
// reached through an object key.
type Vertex struct {
	ID    int        `json:"id"`
	Type  value.Kind `json:"type"`
	Label string     `json:"label,omitempty"`
}

// Edge connects a parent node to one of its children.
type Edge struct {
	ParentID int `json:"parent_id"`
	ChildID  int `json:"child_id"`
}

// Projection is the graph view of exactly one document: one vertex per
// structure node and one edge per non-root node. For a valid table it
// is always a tree, so len(Edges) == len(Vertices)-1.
type Projection struct {
	DocumentID int      `json:"document_id"`
	Vertices   []Vertex `json:"vertices"`
	Edges      []Edge   `json:"edges"`
}

// Project converts a single document's structure table into its graph
// projection. A table that is empty or spans more than one document_id
// is rejected with a shape error: the projection answers "one
// document's structure as a graph", not a collection.
func Project(table []flatten.StructureNode) (Projection, error) {
	if len(table) == 0 {
		return Projection{}, errors.NewShapeError("cannot project an empty structure table", errors.ErrEmptyTable)
	}

	docID := table[0].DocumentID
	for _, n := range table[1:] {
		if n.DocumentID != docID {
			return Projection{}, errors.NewShapeError("structure table spans more than one document", errors.ErrMixedDocuments)
		}
	}

	p := Projection{
		DocumentID: docID,
		Vertices:   make([]Vertex, 0, len(table)),
		Edges:      make([]Edge, 0, len(table)-1),
	}
	for _, n := range table {
		v := Vertex{ID: n.NodeID, Type: n.Type}
		if n.Name != nil {
			v.Label = *n.Name
		}
		p.Vertices = append(p.Vertices, v)
		if n.ParentID != nil {
			p.Edges = append(p.Edges, Edge{ParentID: *n.ParentID, ChildID: n.NodeID})
		}
	}

	return p, nil
}
