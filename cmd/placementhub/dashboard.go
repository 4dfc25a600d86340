package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/karthik/placementhub/internal/catalog"
	"github.com/karthik/placementhub/internal/types"
)

var dashboardCommand = &cobra.Command{
	Use:   "dashboard",
	Short: "Load and print the dashboard for the signed-in role",
	Long: `Restores the saved session and loads the dashboard for its role.

Students get the merged opportunity view: the static catalog plus any
live-discovered listings, subject to the discovery throttle. Other roles get
their role records, fetched concurrently from the portal.`,
	RunE: runDashboardCmd,
}

var dashboardConfigPath string

func init() {
	dashboardCommand.Flags().StringVar(&dashboardConfigPath, "config", "", "Path to config.json file")
	rootCmd.AddCommand(dashboardCommand)
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := buildApp(dashboardConfigPath)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.orch.Restore(ctx)
	if err != nil {
		return err
	}
	if id == nil {
		return fmt.Errorf("not signed in; run placementhub login first")
	}

	// Restore dispatched the role load (or the throttled discovery); wait for
	// it to settle before printing.
	a.orch.Flush()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Dashboard for %s (%s)\n\n", id.Email, id.Role)

	switch id.Role {
	case types.RoleStudent:
		return printStudentDashboard(out, a)
	case types.RoleAlumni:
		return printAlumniDashboard(out, a)
	case types.RoleManagement:
		return printManagementDashboard(out, a)
	case types.RoleEventManager:
		return printEventManagerDashboard(out, a)
	default:
		return fmt.Errorf("unknown role %q", id.Role)
	}
}

func printStudentDashboard(out io.Writer, a *app) error {
	var staticSet []types.Opportunity
	if a.cfg.CatalogPath != "" {
		var err error
		staticSet, err = catalog.Load(a.cfg.CatalogPath)
		if err != nil {
			return fmt.Errorf("failed to load opportunity catalog: %w", err)
		}
	}

	merged, live, boosted, err := a.orch.Merged(staticSet)
	if err != nil {
		return err
	}

	_, meta := a.aggregator.Results()
	if meta != nil {
		fmt.Fprintf(out, "Live discovery: %d listings from %d sources (boosted: %d)\n", meta.Total, len(meta.Sources), boosted)
		for _, src := range meta.Sources {
			if src.Err != "" {
				fmt.Fprintf(out, "  source %s failed: %s\n", src.URL, src.Err)
			}
		}
	} else {
		fmt.Fprintln(out, "Live discovery: no results this session")
	}
	fmt.Fprintf(out, "Opportunities (%d):\n", len(merged))
	for _, opp := range merged {
		tag := "catalog"
		if live[opp.ID] {
			tag = "LIVE"
		}
		fmt.Fprintf(out, "  [%s] %s  %s", tag, opp.ID, opp.Title)
		if opp.Company != "" {
			fmt.Fprintf(out, " @ %s", opp.Company)
		}
		fmt.Fprintln(out)
	}
	return nil
}

func printAlumniDashboard(out io.Writer, a *app) error {
	state := a.alumni.State()
	fmt.Fprintf(out, "Posts (%d):\n", len(state.Posts))
	for _, p := range state.Posts {
		fmt.Fprintf(out, "  %s @ %s\n", p.RoleTitle, p.Company)
	}
	fmt.Fprintf(out, "Referral inbox (%d):\n", len(state.Inbox))
	for _, r := range state.Inbox {
		fmt.Fprintf(out, "  %s (%s)\n", r.StudentEmail, r.Status)
	}
	fmt.Fprintf(out, "Updated %s\n", state.LastUpdatedAt.Format("15:04:05"))
	return nil
}

func printManagementDashboard(out io.Writer, a *app) error {
	state := a.management.State()
	fmt.Fprintf(out, "Placements (%d):\n", len(state.Placements))
	for _, p := range state.Placements {
		fmt.Fprintf(out, "  %s @ %s\n", p.Title, p.CompanyName)
	}
	fmt.Fprintf(out, "Instructions (%d):\n", len(state.Instructions))
	for _, i := range state.Instructions {
		fmt.Fprintf(out, "  %s\n", i.Title)
	}
	fmt.Fprintf(out, "Notes (%d):\n", len(state.Notes))
	for _, n := range state.Notes {
		fmt.Fprintf(out, "  %s\n", n.Title)
	}
	fmt.Fprintf(out, "Updated %s\n", state.LastUpdatedAt.Format("15:04:05"))
	return nil
}

func printEventManagerDashboard(out io.Writer, a *app) error {
	state := a.events.State()
	fmt.Fprintf(out, "Events (%d):\n", len(state.Events))
	for _, e := range state.Events {
		fmt.Fprintf(out, "  %s  (%d registrations)\n", e.Title, state.RegistrationCounts[e.ID])
	}
	fmt.Fprintf(out, "Updated %s\n", state.LastUpdatedAt.Format("15:04:05"))
	return nil
}
