package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Overland-East-Bay/club-roster/internal/adapters/seedfile"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Work with roster seed files",
}

var seedValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a seed file without starting the server",
	Long: `Validate a roster seed file.

Exit codes:
  0 - seed file is valid
  1 - seed file is invalid (details printed to stderr)

Example:
  api seed validate -f roster.yaml`,
	RunE: runSeedValidate,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.AddCommand(seedValidateCmd)

	seedValidateCmd.Flags().StringP("file", "f", "", "path to seed file (required)")
	_ = seedValidateCmd.MarkFlagRequired("file")
}

func runSeedValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	ms, err := seedfile.Load(path)
	if err != nil {
		return fmt.Errorf("invalid seed: %w", err)
	}

	var maxID int64
	for _, m := range ms {
		if int64(m.ID) > maxID {
			maxID = int64(m.ID)
		}
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Seed is valid!\n")
	fmt.Fprintf(out, "  Members: %d\n", len(ms))
	fmt.Fprintf(out, "  Next id: %d\n", maxID+1)
	return nil
}
