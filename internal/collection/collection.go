// Package collection ingests ordered collections of raw JSON texts and
// runs the flatten/generalize pipeline over them. Each document parses
// independently; a parse failure is recorded against its position and
// never aborts the batch.
package collection

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/jsonatlas/jsonatlas/internal/errors"
	"github.com/jsonatlas/jsonatlas/internal/value"
)

// maxLineBytes bounds a single NDJSON line.
const maxLineBytes = 16 * 1024 * 1024

// Document is one successfully parsed member of a collection. ID is
// the document's position in the input, counting failures too, so ids
// stay stable whether or not neighbors parsed.
type Document struct {
	ID    int
	Value value.Value
}

// ParseFailure records one document that could not be parsed, by
// position. Source names the file or line it came from when known.
type ParseFailure struct {
	ID     int
	Source string
	Err    error
}

// Collection is an ingested batch: the documents that parsed and the
// positions that did not.
type Collection struct {
	Documents []Document
	Failures  []ParseFailure
}

// Len returns the total number of input positions, parsed or not.
func (c Collection) Len() int {
	return len(c.Documents) + len(c.Failures)
}

// ReadAll ingests a collection from a reader. A payload that parses as
// a single JSON document becomes a one-document collection; otherwise
// it is treated as NDJSON, one document per non-blank line.
func ReadAll(r io.Reader, logger *zap.Logger) (Collection, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return Collection{}, apperrors.NewInputError("failed to read input", err)
	}
	return ReadBytes(b, logger)
}

// ReadBytes ingests a collection from an in-memory payload. See ReadAll.
func ReadBytes(b []byte, logger *zap.Logger) (Collection, error) {
	logger = orNop(logger)
	if len(bytes.TrimSpace(b)) == 0 {
		return Collection{}, apperrors.NewInputError("input is empty", apperrors.ErrEmptyInput)
	}

	if v, err := value.ParseBytes(b); err == nil {
		return Collection{Documents: []Document{{ID: 0, Value: v}}}, nil
	}

	var c Collection
	sc := bufio.NewScanner(bytes.NewReader(b))
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	id := 0
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		v, err := value.ParseString(text)
		if err != nil {
			logger.Warn("skipping unparseable document",
				zap.Int("document_id", id),
				zap.Int("line", line),
				zap.Error(err))
			c.Failures = append(c.Failures, ParseFailure{ID: id, Source: "line " + strconv.Itoa(line), Err: err})
		} else {
			c.Documents = append(c.Documents, Document{ID: id, Value: v})
		}
		id++
	}
	if err := sc.Err(); err != nil {
		return Collection{}, apperrors.NewInputError("failed to scan input lines", err)
	}
	if len(c.Documents) == 0 {
		return c, apperrors.NewParsingError("no document could be parsed", apperrors.ErrNoDocuments)
	}
	return c, nil
}

// ReadFile ingests a collection from one file. The file may hold a
// single JSON document or NDJSON.
func ReadFile(path string, logger *zap.Logger) (Collection, error) {
	if strings.TrimSpace(path) == "" {
		return Collection{}, apperrors.NewInputError("file path is empty", apperrors.ErrInvalidFilePath)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Collection{}, apperrors.NewInputError("file '"+path+"' not found", apperrors.ErrFileNotFound)
		}
		return Collection{}, apperrors.NewInputError("failed to read file '"+path+"'", err)
	}
	if len(b) == 0 {
		return Collection{}, apperrors.NewInputError("input file '"+path+"' is empty", apperrors.ErrFileEmpty)
	}
	return ReadBytes(b, logger)
}

// ReadDir ingests every *.json file of a directory as one document
// each, in lexical filename order. Unparseable files are recorded as
// failures, not errors.
func ReadDir(dir string, logger *zap.Logger) (Collection, error) {
	logger = orNop(logger)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Collection{}, apperrors.NewInputError("failed to read directory '"+dir+"'", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".json") || strings.HasSuffix(e.Name(), ".ndjson") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return Collection{}, apperrors.NewInputError("no .json files in directory '"+dir+"'", apperrors.ErrNoInput)
	}

	var c Collection
	for id, name := range names {
		path := filepath.Join(dir, name)
		b, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable file", zap.String("file", path), zap.Error(err))
			c.Failures = append(c.Failures, ParseFailure{ID: id, Source: name, Err: apperrors.NewInputError("failed to read file", err)})
			continue
		}
		v, err := value.ParseBytes(b)
		if err != nil {
			logger.Warn("skipping unparseable document", zap.String("file", path), zap.Error(err))
			c.Failures = append(c.Failures, ParseFailure{ID: id, Source: name, Err: err})
			continue
		}
		c.Documents = append(c.Documents, Document{ID: id, Value: v})
	}
	if len(c.Documents) == 0 {
		return c, apperrors.NewParsingError("no document could be parsed", apperrors.ErrNoDocuments)
	}
	return c, nil
}

func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
