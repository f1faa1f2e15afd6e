package socialbench

import (
	"context"
	"fmt"

	"github.com/maadb/socialbench/pkg/loader"
)

// Load runs the bulk import from the dataset directory named by cmd.
// Per-file failures are logged and reported without aborting the run; the
// command fails only when a store-level operation fails or any file could
// not be loaded cleanly.
func (a *App) Load(ctx context.Context, cmd *LoadCommand) error {
	var opts []loader.Option
	if cmd.Workers > 0 {
		opts = append(opts, loader.WithWorkers(cmd.Workers))
	}
	l := loader.New(a.docs, a.graph, a.rel, a.log, opts...)
	a.log.Info().
		Str("data_dir", cmd.DataDir).
		Int("workers", l.Workers()).
		Msg("starting bulk import")

	summaries, err := l.Run(ctx, cmd.DataDir, cmd.Only)
	if err != nil {
		return err
	}

	totalInserted := 0
	failedFiles := 0
	for _, s := range summaries {
		totalInserted += s.Inserted
		failedFiles += len(s.Failed())
	}
	a.log.Info().
		Int("entities", len(summaries)).
		Int("inserted", totalInserted).
		Int("failed_files", failedFiles).
		Msg("bulk import finished")
	if failedFiles > 0 {
		return fmt.Errorf("%d files failed to load", failedFiles)
	}
	return nil
}
