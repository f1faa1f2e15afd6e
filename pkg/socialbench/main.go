package socialbench

import (
	"context"
	"fmt"
)

// Main is the entry point shared by the binary and the tests. It parses
// args, builds the application and dispatches the command. The context
// cancels long-running commands, including the server's graceful shutdown.
func Main(ctx context.Context, args []string) error {
	cmd, config, err := Parse(args)
	if err != nil {
		return fmt.Errorf("parsing configuration: %w", err)
	}

	app, err := New(ctx, config)
	if err != nil {
		return fmt.Errorf("creating application: %w", err)
	}
	defer app.Close(context.Background())

	switch c := cmd.(type) {
	case *RunCommand:
		if err := app.Run(ctx, c); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case *MigrateCommand:
		if err := app.Migrate(ctx, c); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	case *LoadCommand:
		if err := app.Load(ctx, c); err != nil {
			return fmt.Errorf("load failed: %w", err)
		}
	default:
		return fmt.Errorf("unknown command type: %T", cmd)
	}
	return nil
}
