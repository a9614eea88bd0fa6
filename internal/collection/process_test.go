package collection

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsonatlas/jsonatlas/internal/schema"
	"github.com/jsonatlas/jsonatlas/internal/value"
)

func ingest(t *testing.T, lines ...string) Collection {
	t.Helper()
	c, err := ReadBytes([]byte(strings.Join(lines, "\n")), nil)
	require.NoError(t, err)
	return c
}

func TestProcessSingleDocument(t *testing.T) {
	c := ingest(t, `{"a": 1, "b": [1, 2, 3]}`)
	res := Process(c, Options{Workers: 1}, nil)

	require.Len(t, res.Documents, 1)
	d := res.Documents[0]
	assert.Equal(t, 0, d.ID)
	assert.Equal(t, 6, d.Complexity)
	assert.Len(t, d.Table, 6)

	require.NotNil(t, res.Schema)
	b, ok := res.Schema.FieldByKey("b")
	require.True(t, ok)
	assert.Equal(t, schema.Set(value.KindNumber), b.Schema.Elem.Types)
}

func TestProcessGeneralizesAcrossDocuments(t *testing.T) {
	c := ingest(t,
		`{"x": 1}`,
		`{"x": "s", "y": true}`,
	)
	res := Process(c, Options{}, nil)

	require.NotNil(t, res.Schema)
	x, ok := res.Schema.FieldByKey("x")
	require.True(t, ok)
	assert.Equal(t, schema.Set(value.KindNumber, value.KindString), x.Schema.Types)
	assert.True(t, x.Required)

	y, ok := res.Schema.FieldByKey("y")
	require.True(t, ok)
	assert.False(t, y.Required)
}

func TestProcessResultsSortedByDocumentID(t *testing.T) {
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = fmt.Sprintf(`{"n": %d}`, i)
	}
	c := ingest(t, lines...)
	res := Process(c, Options{Workers: 8}, nil)

	require.Len(t, res.Documents, 50)
	for i, d := range res.Documents {
		assert.Equal(t, i, d.ID)
	}
}

func TestProcessIndependentOfWorkerCount(t *testing.T) {
	lines := []string{
		`{"a": 1, "nested": {"k": [1, "x"]}}`,
		`{"a": "s"}`,
		`[{"id": 1}, {"id": 2, "opt": null}]`,
		`"scalar"`,
		`{"nested": {"k": []}}`,
	}
	c := ingest(t, lines...)

	sequential := Process(c, Options{Workers: 1}, nil)
	parallel := Process(c, Options{Workers: 4}, nil)

	require.Equal(t, len(sequential.Documents), len(parallel.Documents))
	for i := range sequential.Documents {
		assert.Equal(t, sequential.Documents[i].ID, parallel.Documents[i].ID)
		assert.Equal(t, sequential.Documents[i].Complexity, parallel.Documents[i].Complexity)
		assert.Equal(t, sequential.Documents[i].Table, parallel.Documents[i].Table)
	}
	assert.Equal(t, renderSchema(sequential.Schema), renderSchema(parallel.Schema))
}

func TestProcessCarriesFailuresThrough(t *testing.T) {
	c := ingest(t, `{"ok": 1}`, `{broken`, `{"ok": 2}`)
	res := Process(c, Options{}, nil)
	assert.Len(t, res.Documents, 2)
	assert.Len(t, res.Failures, 1)
}

func TestProcessEmptyCollection(t *testing.T) {
	res := Process(Collection{}, Options{Workers: 2}, nil)
	assert.Empty(t, res.Documents)
	assert.Nil(t, res.Schema)
}

func TestProcessSampleMode(t *testing.T) {
	c := ingest(t, `{"x": "first"}`, `{"x": "second"}`)
	res := Process(c, Options{Mode: schema.ModeValueSample}, nil)

	x, ok := res.Schema.FieldByKey("x")
	require.True(t, ok)
	require.NotNil(t, x.Schema.Sample)
	assert.Equal(t, "first", x.Schema.Sample.AsString())
}

// renderSchema canonicalizes a schema for comparison across runs.
func renderSchema(n *schema.Node) string {
	if n == nil {
		return "-"
	}
	var sb strings.Builder
	sb.WriteString(n.Types.String())
	if len(n.Fields) > 0 {
		sb.WriteString("{")
		for i, f := range n.Fields {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(f.Key)
			if !f.Required {
				sb.WriteString("?")
			}
			sb.WriteString(":")
			sb.WriteString(renderSchema(f.Schema))
		}
		sb.WriteString("}")
	}
	if n.Elem != nil {
		sb.WriteString("[" + renderSchema(n.Elem) + "]")
	}
	return sb.String()
}
