package collection

import (
	"runtime"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/jsonatlas/jsonatlas/internal/flatten"
	"github.com/jsonatlas/jsonatlas/internal/schema"
)

// Options controls batch processing.
type Options struct {
	// Workers is the number of concurrent flatten workers. Zero means
	// one per CPU.
	Workers int
	// Mode selects type-only or value-sample schema building.
	Mode schema.Mode
}

// DocumentResult holds everything derived from one document.
type DocumentResult struct {
	ID         int
	Table      []flatten.StructureNode
	Complexity int
	schema     *schema.Node
}

// Result is the outcome of processing a whole collection.
type Result struct {
	// Documents in id order, one entry per parsed document.
	Documents []DocumentResult
	// Schema is the generalized schema over all parsed documents, nil
	// when none parsed.
	Schema *schema.Node
	// Failures carries the collection's parse failures through.
	Failures []ParseFailure
}

// Process flattens every document of the collection and generalizes
// the per-document schemas into one. Documents are independent, so
// flattening fans out over a worker pool; results are identical for
// any worker count because each worker owns its document and the
// schema fold runs in document id order afterwards.
func Process(c Collection, opts Options, logger *zap.Logger) Result {
	logger = orNop(logger)
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(c.Documents) && len(c.Documents) > 0 {
		workers = len(c.Documents)
	}

	jobs := make(chan Document)
	out := make(chan DocumentResult)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for doc := range jobs {
				table := flatten.Flatten(doc.ID, doc.Value)
				out <- DocumentResult{
					ID:         doc.ID,
					Table:      table,
					Complexity: len(table),
					schema:     schema.FromValue(doc.Value, opts.Mode),
				}
			}
		}()
	}

	go func() {
		for _, doc := range c.Documents {
			jobs <- doc
		}
		close(jobs)
		wg.Wait()
		close(out)
	}()

	results := make([]DocumentResult, 0, len(c.Documents))
	for r := range out {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })

	// Fold in id order so key presentation order is reproducible; the
	// merged content itself does not depend on fold order.
	var merged *schema.Node
	for _, r := range results {
		merged = schema.Merge(merged, r.schema)
	}

	logger.Info("processed collection",
		zap.Int("documents", len(results)),
		zap.Int("failures", len(c.Failures)),
		zap.Int("workers", workers))

	return Result{Documents: results, Schema: merged, Failures: c.Failures}
}
