package loader

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// EdgeSpec describes one relationship load: endpoint labels, the relation
// type, the columns naming each endpoint id, and any columns carried onto
// the edge as properties. IntPropColumns names the properties stored as
// integers; year-valued columns like workFrom must land typed so range
// comparisons against integer parameters match.
type EdgeSpec struct {
	RelType        string
	FromLabel      string
	ToLabel        string
	FromColumn     string
	ToColumn       string
	PropColumns    []string
	IntPropColumns []string
	Files          []string
	BatchSize      int
}

// LoadEdges imports one relationship type. Each transaction batch runs in
// two phases: the first merges both endpoint nodes by id so a dangling
// reference never aborts the batch, the second matches the endpoints and
// merges the edge, attaching its properties. MERGE makes both phases
// idempotent, so edge files need no key-set bookkeeping.
//
// Batches within one file are sequential; distinct files run concurrently
// on the worker pool.
func (l *Loader) LoadEdges(ctx context.Context, spec EdgeSpec) (Summary, error) {
	batchSize := spec.BatchSize
	if batchSize <= 0 {
		batchSize = GraphTxBatchSize
	}
	l.log.Info().
		Str("relationship", spec.RelType).
		Int("files", len(spec.Files)).
		Msg("starting graph load")

	results := make([]FileResult, len(spec.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, path := range spec.Files {
		i, path := i, path
		g.Go(func() error {
			inserted, err := l.loadEdgeFile(gctx, spec, path, batchSize)
			results[i] = FileResult{Path: path, Inserted: inserted, Err: err}
			if err != nil {
				l.log.Error().Err(err).
					Str("relationship", spec.RelType).
					Str("file", path).
					Msg("graph file failed")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary := Summary{Entity: spec.RelType, Files: results}
	for _, r := range results {
		summary.Inserted += r.Inserted
	}
	l.logSummary(summary)
	return summary, nil
}

func (l *Loader) loadEdgeFile(ctx context.Context, spec EdgeSpec, path string, batchSize int) (int, error) {
	nodeQuery := fmt.Sprintf(
		"UNWIND $rows AS row MERGE (:%s {id: row.from}) MERGE (:%s {id: row.to})",
		spec.FromLabel, spec.ToLabel,
	)
	edgeQuery := fmt.Sprintf(
		"UNWIND $rows AS row MATCH (a:%s {id: row.from}) MATCH (b:%s {id: row.to}) MERGE (a)-[r:%s]->(b) SET r += row.props",
		spec.FromLabel, spec.ToLabel, spec.RelType,
	)
	intProps := make(map[string]bool, len(spec.IntPropColumns))
	for _, name := range spec.IntPropColumns {
		intProps[name] = true
	}

	total := 0
	err := readBatches(path, batchSize, func(header []string, rows [][]string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx := columnIndex(header)
		batch := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			from, okFrom := edgeEndpoint(row, idx, spec.FromColumn)
			to, okTo := edgeEndpoint(row, idx, spec.ToColumn)
			if !okFrom || !okTo {
				l.log.Warn().
					Str("relationship", spec.RelType).
					Str("file", path).
					Msg("skipping edge row without both endpoints")
				continue
			}
			props := make(map[string]any, len(spec.PropColumns))
			for _, name := range spec.PropColumns {
				raw, ok := cell(row, idx, name)
				if !ok || isAbsentCell(raw) {
					continue
				}
				if intProps[name] {
					if n, ok := parseIntCell(raw); ok {
						props[name] = n
					}
					continue
				}
				props[name] = parseValue(name, raw)
			}
			batch = append(batch, map[string]any{"from": from, "to": to, "props": props})
		}
		if len(batch) == 0 {
			return nil
		}
		params := map[string]any{"rows": batch}
		if err := l.graph.Write(ctx, nodeQuery, params); err != nil {
			return fmt.Errorf("merging %s endpoints: %w", spec.RelType, err)
		}
		if err := l.graph.Write(ctx, edgeQuery, params); err != nil {
			return fmt.Errorf("merging %s edges: %w", spec.RelType, err)
		}
		total += len(batch)
		return nil
	})
	return total, err
}

func edgeEndpoint(row []string, idx map[string]int, column string) (int64, bool) {
	raw, ok := cell(row, idx, column)
	if !ok || isAbsentCell(raw) {
		return 0, false
	}
	return parseIntCell(raw)
}
