// Package schema generalizes many flattened document tables into one
// representative schema tree: which keys occur at each object position,
// which types were observed at each path, and one merged child slot per
// array position regardless of element counts.
package schema

import (
	"sort"
	"strings"

	"github.com/jsonatlas/jsonatlas/internal/flatten"
	"github.com/jsonatlas/jsonatlas/internal/value"
)

// Mode selects how leaves are built. Both modes share the same merge
// algorithm.
type Mode int

const (
	// ModeTypeOnly keeps only the observed type set per position.
	ModeTypeOnly Mode = iota
	// ModeValueSample additionally retains one representative scalar
	// value per position, first seen wins.
	ModeValueSample
)

// TypeSet is the set of JSON types observed at one structural position.
// A position seen as number in one document and string in another
// carries both; conflicting observations are recorded, never discarded.
type TypeSet uint8

// Set returns a TypeSet containing the given kinds.
func Set(kinds ...value.Kind) TypeSet {
	var s TypeSet
	for _, k := range kinds {
		s = s.Add(k)
	}
	return s
}

// Add returns the set with k included.
func (s TypeSet) Add(k value.Kind) TypeSet {
	return s | 1<<uint(k)
}

// Has reports whether k is in the set.
func (s TypeSet) Has(k value.Kind) bool {
	return s&(1<<uint(k)) != 0
}

// Union returns the union of both sets.
func (s TypeSet) Union(o TypeSet) TypeSet {
	return s | o
}

// Empty reports whether no type was ever observed. This is the state
// of the child slot of arrays that were empty in every instance.
func (s TypeSet) Empty() bool {
	return s == 0
}

// Kinds returns the members in a fixed order (null, bool, number,
// string, array, object).
func (s TypeSet) Kinds() []value.Kind {
	out := make([]value.Kind, 0, 6)
	for k := value.KindNull; k <= value.KindObject; k++ {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// String renders the set as "number|string", or "unknown" when empty.
func (s TypeSet) String() string {
	if s.Empty() {
		return "unknown"
	}
	kinds := s.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, "|")
}

// Node is one generalized structural position. Fields are present when
// the position was ever an object, in first-seen key order. Elem is
// present when the position was ever an array; all elements of all
// observed instances merge into that one slot, and if every instance
// was empty, Elem is a placeholder node with an empty type set. Nodes
// are immutable once built.
type Node struct {
	Types  TypeSet
	Fields []Field
	Elem   *Node
	Sample *value.Value
}

// Field is one object key at a generalized position. Required means
// the key appeared in every contributing object instance.
type Field struct {
	Key      string
	Schema   *Node
	Required bool
}

// FieldByKey returns the field with the given key, if present.
func (n *Node) FieldByKey(key string) (Field, bool) {
	for _, f := range n.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// slot is one tree position during schema construction: the row data
// of a flattened node plus, when building from a live document, its
// scalar value for sampling.
type slot struct {
	kind     value.Kind
	parent   int // -1 for root
	name     string
	hasName  bool
	hasIndex bool
	sample   *value.Value
}

// FromTable builds the schema of a single document from its structure
// table. Tables carry no scalar values, so the result is type-only.
// Returns nil for an empty table.
func FromTable(table []flatten.StructureNode) *Node {
	if len(table) == 0 {
		return nil
	}
	slots := make([]slot, len(table))
	for i, n := range table {
		s := slot{kind: n.Type, parent: -1}
		if n.ParentID != nil {
			s.parent = *n.ParentID
		}
		if n.Name != nil {
			s.name = *n.Name
			s.hasName = true
		}
		if n.ArrayIndex != nil {
			s.hasIndex = true
		}
		slots[i] = s
	}
	return build(slots)
}

// FromValue builds the schema of a single live document. In
// ModeValueSample, scalar leaves keep their value as the
// representative sample.
func FromValue(doc value.Value, mode Mode) *Node {
	type walkFrame struct {
		val      value.Value
		parent   int
		name     string
		hasName  bool
		hasIndex bool
	}

	slots := make([]slot, 0, 16)
	stack := []walkFrame{{val: doc, parent: -1}}

	// Same explicit-stack pre-order walk as flatten.Flatten, kept
	// separate because this one needs the values themselves.
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id := len(slots)
		s := slot{
			kind:     f.val.Kind(),
			parent:   f.parent,
			name:     f.name,
			hasName:  f.hasName,
			hasIndex: f.hasIndex,
		}
		if mode == ModeValueSample && f.val.IsScalar() {
			v := f.val
			s.sample = &v
		}
		slots = append(slots, s)

		switch f.val.Kind() {
		case value.KindNull, value.KindBool, value.KindNumber, value.KindString:
		case value.KindArray:
			items := f.val.Items()
			for i := len(items) - 1; i >= 0; i-- {
				stack = append(stack, walkFrame{val: items[i], parent: id, hasIndex: true})
			}
		case value.KindObject:
			members := f.val.Members()
			for i := len(members) - 1; i >= 0; i-- {
				stack = append(stack, walkFrame{val: members[i].Value, parent: id, name: members[i].Key, hasName: true})
			}
		default:
			panic("schema: should be unreachable")
		}
	}

	return build(slots)
}

// build assembles a schema tree from pre-order slots. Object fields
// attach in row order, so key order is document order. Array elements
// merge into their parent's Elem; arrays are resolved in decreasing
// id order so that any array nested inside an element is complete
// before the enclosing array folds its elements together.
func build(slots []slot) *Node {
	nodes := make([]*Node, len(slots))
	for i, s := range slots {
		nodes[i] = &Node{Types: Set(s.kind), Sample: s.sample}
	}

	arrayElems := make(map[int][]int)
	var arrayIDs []int
	for i, s := range slots {
		if s.kind == value.KindArray {
			arrayIDs = append(arrayIDs, i)
		}
		if i == 0 {
			continue
		}
		if s.hasName {
			nodes[s.parent].Fields = append(nodes[s.parent].Fields, Field{
				Key:      s.name,
				Schema:   nodes[i],
				Required: true,
			})
		} else if s.hasIndex {
			arrayElems[s.parent] = append(arrayElems[s.parent], i)
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(arrayIDs)))
	for _, id := range arrayIDs {
		elems := arrayElems[id]
		if len(elems) == 0 {
			// Never populated: explicit unknown placeholder.
			nodes[id].Elem = &Node{}
			continue
		}
		var acc *Node
		for _, e := range elems {
			acc = Merge(acc, nodes[e])
		}
		nodes[id].Elem = acc
	}

	return nodes[0]
}
