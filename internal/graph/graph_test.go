package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jsonatlas/jsonatlas/internal/errors"
	"github.com/jsonatlas/jsonatlas/internal/flatten"
	"github.com/jsonatlas/jsonatlas/internal/value"
)

func mustParse(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.ParseString(s)
	require.NoError(t, err)
	return v
}

func TestProjectSingleDocument(t *testing.T) {
	table := flatten.Flatten(3, mustParse(t, `{"a": 1, "b": [true, null]}`))
	p, err := Project(table)
	require.NoError(t, err)

	assert.Equal(t, 3, p.DocumentID)
	require.Len(t, p.Vertices, len(table))
	assert.Len(t, p.Edges, len(table)-1)

	root := p.Vertices[0]
	assert.Equal(t, 0, root.ID)
	assert.Equal(t, value.KindObject, root.Type)
	assert.Equal(t, "", root.Label)

	assert.Equal(t, "a", p.Vertices[1].Label)
	assert.Equal(t, "b", p.Vertices[2].Label)
	// Array elements have no label.
	assert.Equal(t, "", p.Vertices[3].Label)
	assert.Equal(t, "", p.Vertices[4].Label)
}

func TestProjectIsAlwaysATree(t *testing.T) {
	docs := []string{
		`null`,
		`[]`,
		`{"a": {"b": {"c": [1, 2, [3, {"d": null}]]}}}`,
		`[[], {}, "x"]`,
	}
	for _, s := range docs {
		table := flatten.Flatten(0, mustParse(t, s))
		p, err := Project(table)
		require.NoError(t, err, "doc %s", s)

		assert.Equal(t, len(p.Vertices)-1, len(p.Edges), "doc %s", s)
		for _, e := range p.Edges {
			assert.NotEqual(t, e.ParentID, e.ChildID, "doc %s", s)
			assert.Less(t, e.ParentID, e.ChildID, "doc %s", s)
		}
	}
}

func TestProjectRejectsEmptyTable(t *testing.T) {
	_, err := Project(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrEmptyTable)
}

func TestProjectRejectsMixedDocuments(t *testing.T) {
	a := flatten.Flatten(0, mustParse(t, `{"a": 1}`))
	b := flatten.Flatten(1, mustParse(t, `[1]`))
	_, err := Project(append(a, b...))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMixedDocuments)
}
