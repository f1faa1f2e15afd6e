package loader

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/maadb/socialbench/pkg/models"
	"github.com/maadb/socialbench/pkg/store"
	"github.com/maadb/socialbench/pkg/store/mongodb"
)

// DocumentSpec describes one document collection load: its source files,
// the column holding the primary key, and a per-row transform producing
// the stored document.
type DocumentSpec struct {
	Collection string
	KeyField   string
	Files      []string
	BatchSize  int
	Transform  RowTransform
}

// RowTransform converts one CSV row into a document. Returning nil, nil
// skips the row without failing the file.
type RowTransform func(header []string, row []string) (store.Document, error)

// LoadDocuments imports one collection. The existing key set is fetched
// once up front; file tasks run concurrently and claim keys through a
// shared set, so a key present in the store or in a sibling file is
// inserted at most once.
func (l *Loader) LoadDocuments(ctx context.Context, spec DocumentSpec) (Summary, error) {
	batchSize := spec.BatchSize
	if batchSize <= 0 {
		batchSize = DocumentBatchSize
	}

	existing, err := l.docs.DistinctKeys(ctx, spec.Collection, spec.KeyField)
	if err != nil {
		return Summary{}, fmt.Errorf("fetching existing keys for %s: %w", spec.Collection, err)
	}
	keys := newKeySet(existing)
	l.log.Info().
		Str("collection", spec.Collection).
		Int("existing_keys", keys.len()).
		Int("files", len(spec.Files)).
		Msg("starting document load")

	results := make([]FileResult, len(spec.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, path := range spec.Files {
		i, path := i, path
		g.Go(func() error {
			inserted, err := l.loadDocumentFile(gctx, spec, path, batchSize, keys)
			results[i] = FileResult{Path: path, Inserted: inserted, Err: err}
			if err != nil {
				l.log.Error().Err(err).
					Str("collection", spec.Collection).
					Str("file", path).
					Msg("document file failed")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary := Summary{Entity: spec.Collection, Files: results}
	for _, r := range results {
		summary.Inserted += r.Inserted
	}
	l.logSummary(summary)
	return summary, nil
}

func (l *Loader) loadDocumentFile(ctx context.Context, spec DocumentSpec, path string, batchSize int, keys *keySet) (int, error) {
	total := 0
	err := readBatches(path, batchSize, func(header []string, rows [][]string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		docs := make([]store.Document, 0, len(rows))
		for _, row := range rows {
			doc, err := spec.Transform(header, row)
			if err != nil {
				l.log.Warn().Err(err).
					Str("collection", spec.Collection).
					Str("file", path).
					Msg("skipping malformed row")
				continue
			}
			if doc == nil {
				continue
			}
			key, ok := models.AsInt64(doc[spec.KeyField])
			if !ok {
				l.log.Warn().
					Str("collection", spec.Collection).
					Str("file", path).
					Msg("skipping row without usable key")
				continue
			}
			if !keys.claim(key) {
				continue
			}
			docs = append(docs, doc)
		}
		n, err := l.docs.BulkInsert(ctx, spec.Collection, docs)
		total += n
		return err
	})
	return total, err
}

// parseValue turns one CSV cell into its document representation. Empty
// cells and the NaN sentinel become nil so callers can drop the field
// entirely; numeric-looking key columns become int64.
func parseValue(name, raw string) any {
	if isAbsentCell(raw) {
		return nil
	}
	if isIntegerColumn(name) {
		if n, ok := parseIntCell(raw); ok {
			return n
		}
		return nil
	}
	return raw
}

// isAbsentCell reports whether a cell carries no value. The source files
// encode missing values as empty cells or the float NaN sentinel; both
// normalize to absent rather than to a literal string.
func isAbsentCell(raw string) bool {
	return raw == "" || raw == "NaN" || raw == "nan"
}

// isIntegerColumn recognizes id and measure columns by dataset naming
// convention.
func isIntegerColumn(name string) bool {
	return name == "id" || name == "length" || strings.HasSuffix(name, "Id")
}

// parseIntCell parses integers that may arrive with a trailing decimal
// from a float-typed intermediate, e.g. "64.0".
func parseIntCell(raw string) (int64, bool) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

// rowToDocument applies parseValue to every column, dropping absent
// fields so the stored document distinguishes missing from empty.
func rowToDocument(header []string, row []string) store.Document {
	doc := make(store.Document, len(header))
	for i, name := range header {
		if i >= len(row) {
			continue
		}
		if v := parseValue(name, row[i]); v != nil {
			doc[name] = v
		}
	}
	return doc
}

// PersonTransform builds a person document. The email column holds a
// semicolon-delimited list and is stored as an array so one address can
// be matched without substring tricks.
func PersonTransform(header []string, row []string) (store.Document, error) {
	doc := rowToDocument(header, row)
	if _, ok := models.AsInt64(doc["id"]); !ok {
		return nil, &models.DataShapeError{Collection: mongodb.CollectionPerson, Field: "id"}
	}
	idx := columnIndex(header)
	if raw, ok := cell(row, idx, "email"); ok && !isAbsentCell(raw) {
		doc["email"] = models.SplitEmails(raw)
	} else {
		doc["email"] = []string{}
	}
	return doc, nil
}

// PostTransform builds a post document. content and imageFile are
// mutually sparse in the dataset; absent values are dropped rather than
// stored as sentinels.
func PostTransform(header []string, row []string) (store.Document, error) {
	doc := rowToDocument(header, row)
	if _, ok := models.AsInt64(doc["id"]); !ok {
		return nil, &models.DataShapeError{Collection: mongodb.CollectionPost, Field: "id"}
	}
	if _, ok := models.AsInt64(doc["CreatorPersonId"]); !ok {
		return nil, &models.DataShapeError{Collection: mongodb.CollectionPost, Field: "CreatorPersonId"}
	}
	return doc, nil
}

// CommentTransform builds a comment document.
func CommentTransform(header []string, row []string) (store.Document, error) {
	doc := rowToDocument(header, row)
	if _, ok := models.AsInt64(doc["id"]); !ok {
		return nil, &models.DataShapeError{Collection: mongodb.CollectionComment, Field: "id"}
	}
	if _, ok := models.AsInt64(doc["CreatorPersonId"]); !ok {
		return nil, &models.DataShapeError{Collection: mongodb.CollectionComment, Field: "CreatorPersonId"}
	}
	return doc, nil
}

// ForumTransform builds a forum document.
func ForumTransform(header []string, row []string) (store.Document, error) {
	doc := rowToDocument(header, row)
	if _, ok := models.AsInt64(doc["id"]); !ok {
		return nil, &models.DataShapeError{Collection: mongodb.CollectionForum, Field: "id"}
	}
	return doc, nil
}
