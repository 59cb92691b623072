package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// MigrateOutput is the JSON/YAML document of the migrate command.
type MigrateOutput struct {
	StatePath string `json:"state_path"`
	Version   int64  `json:"version"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Long: `Apply pending schema migrations to the state database.

Other commands do this automatically unless auto_migrate is false.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	if err := cmdCtx.Store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate state database: %w", err)
	}
	version, err := cmdCtx.Store.MigrationVersion(ctx)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	doc := MigrateOutput{StatePath: cmdCtx.Cfg.StatePath, Version: version}
	if handled, err := r.Document(doc); handled {
		return err
	}
	r.Success(fmt.Sprintf("Schema at version %d", version))
	r.Muted("State: " + doc.StatePath)
	return nil
}
