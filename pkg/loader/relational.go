package loader

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/maadb/socialbench/pkg/store"
)

// TableSpec describes one relational table load. IntColumns names the
// columns coerced to integers; the source files carry some of them with
// trailing decimals from a float-typed intermediate.
type TableSpec struct {
	Table      string
	KeyColumn  string
	IntColumns []string
	Files      []string
	BatchSize  int
}

// LoadTables imports one reference table. Rows are de-duplicated both
// within each chunk and against the shared key set captured at run start;
// the insert itself runs with ON CONFLICT DO NOTHING so a race that slips
// past the key set cannot fail the batch.
func (l *Loader) LoadTables(ctx context.Context, spec TableSpec) (Summary, error) {
	batchSize := spec.BatchSize
	if batchSize <= 0 {
		batchSize = RelationalBatchSize
	}

	existing, err := l.rel.ExistingKeys(ctx, spec.Table)
	if err != nil {
		return Summary{}, fmt.Errorf("fetching existing keys for %s: %w", spec.Table, err)
	}
	keys := newKeySet(existing)
	l.log.Info().
		Str("table", spec.Table).
		Int("existing_keys", keys.len()).
		Int("files", len(spec.Files)).
		Msg("starting relational load")

	intCols := make(map[string]bool, len(spec.IntColumns))
	for _, c := range spec.IntColumns {
		intCols[c] = true
	}

	results := make([]FileResult, len(spec.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, path := range spec.Files {
		i, path := i, path
		g.Go(func() error {
			inserted, err := l.loadTableFile(gctx, spec, path, batchSize, intCols, keys)
			results[i] = FileResult{Path: path, Inserted: inserted, Err: err}
			if err != nil {
				l.log.Error().Err(err).
					Str("table", spec.Table).
					Str("file", path).
					Msg("relational file failed")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary := Summary{Entity: spec.Table, Files: results}
	for _, r := range results {
		summary.Inserted += r.Inserted
	}
	l.logSummary(summary)
	return summary, nil
}

func (l *Loader) loadTableFile(ctx context.Context, spec TableSpec, path string, batchSize int, intCols map[string]bool, keys *keySet) (int, error) {
	total := 0
	err := readBatches(path, batchSize, func(header []string, rows [][]string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch := make([]store.Row, 0, len(rows))
		for _, csvRow := range rows {
			row := make(store.Row, len(header))
			for i, name := range header {
				if i >= len(csvRow) {
					continue
				}
				raw := csvRow[i]
				if isAbsentCell(raw) {
					row[name] = nil
					continue
				}
				if intCols[name] {
					n, ok := parseIntCell(raw)
					if !ok {
						row[name] = nil
						continue
					}
					row[name] = n
				} else {
					row[name] = raw
				}
			}
			key, ok := row[spec.KeyColumn].(int64)
			if !ok {
				l.log.Warn().
					Str("table", spec.Table).
					Str("file", path).
					Msg("skipping row without usable key")
				continue
			}
			if !keys.claim(key) {
				continue
			}
			batch = append(batch, row)
		}
		n, err := l.rel.InsertRows(ctx, spec.Table, batch, batchSize)
		total += n
		return err
	})
	return total, err
}
