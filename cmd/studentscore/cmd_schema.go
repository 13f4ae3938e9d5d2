package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"studentscore/ml"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the form fields and the encoded feature names",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Fields:")
		for _, f := range ml.Fields() {
			switch f.Kind {
			case ml.Numeric:
				hi := "inf"
				if !math.IsInf(f.Max, 1) {
					hi = fmt.Sprint(f.Max)
				}
				fmt.Fprintf(out, "  %-24s %-11s [%v, %s] default %v\n", f.Name, f.Kind, f.Min, hi, f.Default)
			case ml.Categorical:
				fmt.Fprintf(out, "  %-24s %-11s %s (reference %s)\n", f.Name, f.Kind, strings.Join(f.Options, "/"), f.Reference())
			}
		}
		fmt.Fprintln(out, "Features:")
		for _, name := range ml.FeatureNames() {
			fmt.Fprintf(out, "  %s\n", name)
		}
		return nil
	},
}
