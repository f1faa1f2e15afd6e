package socialbench

// Command is one discrete application operation with its specific options.
// Parsing produces a Command plus the shared Config; Main dispatches on the
// concrete type. Keeping per-command options on the command struct rather
// than Config means adding an operation never widens the shared surface.
type Command interface {
	// Name returns the command identifier used for routing. It matches the
	// CLI sub-command name.
	Name() string
}

// RunCommand starts the HTTP query API.
type RunCommand struct {
	// Currently empty. Server settings live on Config.
}

func (c *RunCommand) Name() string { return "run" }

// MigrateCommand creates the document indexes, graph constraints and
// relational schema. Foreign keys are not attached here; the loader adds
// them after all reference tables are populated. Safe to run repeatedly.
type MigrateCommand struct {
	// Currently empty. All configuration comes from Config.
}

func (c *MigrateCommand) Name() string { return "migrate" }

// LoadCommand runs the bulk import from a dataset directory.
type LoadCommand struct {
	// DataDir is the dataset root holding the dynamic/ and static/
	// entity directories.
	DataDir string

	// Workers overrides the loader's worker-pool size when positive.
	Workers int

	// Only restricts the run to the named entities (collection, table or
	// relationship names). Empty means everything.
	Only []string
}

func (c *LoadCommand) Name() string { return "load" }
