// studentscore predicts a student's final score from form input using a
// previously trained regression model.
//
// Usage:
//
//	studentscore predict [--input record.json] [--loop] [--json]
//	studentscore serve
//	studentscore import --model <path> --columns <path> [--db artifacts.db]
//	studentscore schema
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "studentscore",
	Short:         "Predict a student's final score from form input",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "Path to the YAML config file")
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.Version = version
}

// errPresented marks a failure the command already showed to the operator.
var errPresented = errors.New("already presented")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errPresented) {
			fmt.Fprintln(os.Stderr, "studentscore:", err)
		}
		os.Exit(1)
	}
}
