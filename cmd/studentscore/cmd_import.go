package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"studentscore/artifact"
	"studentscore/db"
)

var (
	importModel   string
	importColumns string
	importDB      string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy model and feature column files into the SQLite artifact store",
	Long: `Checks that the model and feature column files load together, then stores
both in the SQLite database read by artifacts.source: sqlite. Nothing is
written when the check fails.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importModel, "model", artifact.DefaultModelPath, "Path to the model JSON file")
	importCmd.Flags().StringVar(&importColumns, "columns", artifact.DefaultColumnsPath, "Path to the feature columns JSON file")
	importCmd.Flags().StringVar(&importDB, "db", "", "Artifact database (defaults to artifacts.db_path)")
}

func runImport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	path := importDB
	if path == "" {
		path = cfg.Artifacts.DBPath
	}

	src := artifact.FileSource{ModelPath: importModel, ColumnsPath: importColumns}
	if err := artifact.Publish(ctx, src, path); err != nil {
		return err
	}

	store, err := db.Open(path, true)
	if err != nil {
		return err
	}
	defer store.Close()
	stored, err := store.List(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported into %s:\n", store.Path())
	for _, a := range stored {
		fmt.Fprintf(out, "  %-16s %8d bytes  %s\n", a.Name, a.Size, a.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
