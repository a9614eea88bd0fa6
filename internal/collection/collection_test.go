package collection

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jsonatlas/jsonatlas/internal/errors"
	"github.com/jsonatlas/jsonatlas/internal/value"
)

func TestReadBytesSingleDocument(t *testing.T) {
	c, err := ReadBytes([]byte(`{"a": 1,
		"b": [1, 2]}`), nil)
	require.NoError(t, err)
	require.Len(t, c.Documents, 1)
	assert.Empty(t, c.Failures)
	assert.Equal(t, 0, c.Documents[0].ID)
	assert.Equal(t, value.KindObject, c.Documents[0].Value.Kind())
}

func TestReadBytesNDJSON(t *testing.T) {
	payload := strings.Join([]string{
		`{"a": 1}`,
		``,
		`[1, 2, 3]`,
		`"scalar"`,
	}, "\n")
	c, err := ReadBytes([]byte(payload), nil)
	require.NoError(t, err)
	require.Len(t, c.Documents, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{c.Documents[0].ID, c.Documents[1].ID, c.Documents[2].ID})
	assert.Equal(t, value.KindObject, c.Documents[0].Value.Kind())
	assert.Equal(t, value.KindArray, c.Documents[1].Value.Kind())
	assert.Equal(t, value.KindString, c.Documents[2].Value.Kind())
}

func TestReadBytesParseFailureDoesNotAbortBatch(t *testing.T) {
	payload := strings.Join([]string{
		`{"ok": 1}`,
		`{"broken": `,
		`{"ok": 2}`,
	}, "\n")
	c, err := ReadBytes([]byte(payload), nil)
	require.NoError(t, err)

	require.Len(t, c.Documents, 2)
	require.Len(t, c.Failures, 1)
	assert.Equal(t, 3, c.Len())

	// Ids stay positional: the failed line keeps id 1.
	assert.Equal(t, 0, c.Documents[0].ID)
	assert.Equal(t, 2, c.Documents[1].ID)
	assert.Equal(t, 1, c.Failures[0].ID)
	assert.ErrorIs(t, c.Failures[0].Err, apperrors.ErrInvalidJSON)
}

func TestReadBytesAllFailures(t *testing.T) {
	c, err := ReadBytes([]byte("{bad\n[worse"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoDocuments)
	assert.Len(t, c.Failures, 2)
}

func TestReadBytesEmptyInput(t *testing.T) {
	_, err := ReadBytes([]byte("  \n\t"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrEmptyInput)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFileNotFound)
}

func TestReadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	_, err := ReadFile(path, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFileEmpty)
}

func TestReadDirLexicalOrderAndFailures(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(`{"b": 1}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"a": 1}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.json"), []byte(`{broken`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte(`not json`), 0644))

	c, err := ReadDir(dir, nil)
	require.NoError(t, err)

	require.Len(t, c.Documents, 2)
	assert.Equal(t, 0, c.Documents[0].ID) // a.json
	assert.Equal(t, 1, c.Documents[1].ID) // b.json
	assert.Equal(t, "a", c.Documents[0].Value.Members()[0].Key)
	assert.Equal(t, "b", c.Documents[1].Value.Members()[0].Key)

	require.Len(t, c.Failures, 1)
	assert.Equal(t, 2, c.Failures[0].ID)
	assert.Equal(t, "c.json", c.Failures[0].Source)
}

func TestReadDirNoJSONFiles(t *testing.T) {
	_, err := ReadDir(t.TempDir(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNoInput)
}
