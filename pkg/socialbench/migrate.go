package socialbench

import (
	"context"
	"fmt"
)

// Migrate creates the document indexes, graph constraints and relational
// schema. Foreign keys are deliberately excluded; the loader attaches them
// after every reference table is populated. Safe to run repeatedly.
func (a *App) Migrate(ctx context.Context, cmd *MigrateCommand) error {
	a.log.Info().Msg("running migrations")
	if err := a.docs.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("creating document indexes: %w", err)
	}
	if err := a.graph.EnsureConstraints(ctx); err != nil {
		return fmt.Errorf("creating graph constraints: %w", err)
	}
	if err := a.rel.CreateSchema(ctx); err != nil {
		return fmt.Errorf("creating relational schema: %w", err)
	}
	a.log.Info().Msg("migrations completed")
	return nil
}
