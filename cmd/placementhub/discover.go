package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/karthik/placementhub/internal/types"
)

var discoverCommand = &cobra.Command{
	Use:   "discover",
	Short: "Run a live opportunity crawl now",
	Long: `Forces one live discovery crawl for the signed-in student and prints the
results with per-source diagnostics. Unlike the automatic dashboard trigger,
a user-initiated crawl is not subject to the 60-second throttle.`,
	RunE: runDiscoverCmd,
}

var discoverConfigPath string

func init() {
	discoverCommand.Flags().StringVar(&discoverConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(discoverCommand)
}

func runDiscoverCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := buildApp(discoverConfigPath)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.sessions.Load()
	if err != nil {
		return err
	}
	if id == nil {
		return fmt.Errorf("not signed in; run placementhub login first")
	}
	if id.Role != types.RoleStudent {
		return fmt.Errorf("live discovery is for students; signed in as %s", id.Role)
	}
	id.ApplyDefaults()

	opps, meta, err := a.aggregator.Discover(ctx, *id)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Discovered %d listings at %s\n", meta.Total, meta.GeneratedAt.Format("15:04:05"))
	for _, src := range meta.Sources {
		status := fmt.Sprintf("%d listings in %s", src.Count, src.Duration.Round(time.Millisecond))
		if src.Err != "" {
			status = "failed: " + src.Err
		}
		fmt.Fprintf(out, "  %s: %s\n", src.URL, status)
	}
	for _, opp := range opps {
		fmt.Fprintf(out, "  %s  %s", opp.ID, opp.Title)
		if opp.Company != "" {
			fmt.Fprintf(out, " @ %s", opp.Company)
		}
		fmt.Fprintf(out, "  [%s]\n", opp.MatchMethod)
	}
	return nil
}
