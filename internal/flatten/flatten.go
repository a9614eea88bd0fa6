// Package flatten turns one JSON document into a flat table of
// structure nodes: one row per tree node, with parent linkage, depth,
// type, and the object key or array index it was reached through.
package flatten

import (
	"github.com/jsonatlas/jsonatlas/internal/value"
)

// StructureNode is one row of a document's structure table.
//
// Node ids are dense and assigned in pre-order, so the root is always
// id 0 at level 0 and every non-root node has parent_id < node_id.
// Name and ArrayIndex are mutually exclusive: a node was reached
// through exactly one of an object key or an array position, or
// neither if it is the root.
type StructureNode struct {
	DocumentID int        `json:"document_id"`
	NodeID     int        `json:"node_id"`
	ParentID   *int       `json:"parent_id,omitempty"`
	Level      int        `json:"level"`
	Type       value.Kind `json:"type"`
	Name       *string    `json:"name,omitempty"`
	ArrayIndex *int       `json:"array_index,omitempty"`
}

// frame is one pending unit of the traversal work stack.
type frame struct {
	val      value.Value
	parent   int // -1 for the root
	level    int
	name     string
	hasName  bool
	index    int
	hasIndex bool
}

// Flatten enumerates the document's tree in pre-order and returns its
// structure table. The traversal uses an explicit work stack rather
// than call recursion, so arbitrarily deep nesting cannot exhaust the
// goroutine stack. The function is pure and total over valid values:
// the same document always produces an identical table.
//
// Empty objects and arrays yield a single node of that type with no
// descendants; the type tag distinguishes them from scalars.
func Flatten(docID int, root value.Value) []StructureNode {
	nodes := make([]StructureNode, 0, 16)
	stack := []frame{{val: root, parent: -1, level: 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id := len(nodes)
		node := StructureNode{
			DocumentID: docID,
			NodeID:     id,
			Level:      f.level,
			Type:       f.val.Kind(),
		}
		if f.parent >= 0 {
			p := f.parent
			node.ParentID = &p
		}
		if f.hasName {
			n := f.name
			node.Name = &n
		}
		if f.hasIndex {
			i := f.index
			node.ArrayIndex = &i
		}
		nodes = append(nodes, node)

		switch f.val.Kind() {
		case value.KindNull, value.KindBool, value.KindNumber, value.KindString:
			// leaves
		case value.KindArray:
			items := f.val.Items()
			// Children are pushed in reverse so they pop in index order.
			for i := len(items) - 1; i >= 0; i-- {
				stack = append(stack, frame{
					val:      items[i],
					parent:   id,
					level:    f.level + 1,
					index:    i,
					hasIndex: true,
				})
			}
		case value.KindObject:
			members := f.val.Members()
			for i := len(members) - 1; i >= 0; i-- {
				stack = append(stack, frame{
					val:     members[i].Value,
					parent:  id,
					level:   f.level + 1,
					name:    members[i].Key,
					hasName: true,
				})
			}
		default:
			panic("flatten: should be unreachable")
		}
	}

	return nodes
}

// Complexity is the document's total flattened node count, a proxy for
// structural size.
func Complexity(root value.Value) int {
	return len(Flatten(0, root))
}
