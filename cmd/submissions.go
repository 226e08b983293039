package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/portfolio/internal/adapters/repository"
	"github.com/okian/portfolio/internal/config"
)

var submissionsCount bool

var submissionsCmd = &cobra.Command{
	Use:   "submissions",
	Short: "Print stored portfolio requests",
	Long:  "Prints every stored portfolio request as JSON, or only how many there are with --count.",
	RunE:  runSubmissions,
}

func init() {
	submissionsCmd.Flags().BoolVar(&submissionsCount, "count", false, "Print only the number of stored requests")
	rootCmd.AddCommand(submissionsCmd)
}

func runSubmissions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	store := repository.NewJSONFileStore(cfg.SubmissionsPath, repository.WithMetrics(false))

	if submissionsCount {
		n, err := store.Count(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), n)
		return err
	}

	records, err := store.List(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
