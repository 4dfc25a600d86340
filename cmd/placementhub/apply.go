package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karthik/placementhub/internal/catalog"
	"github.com/karthik/placementhub/internal/types"
)

var applyCommand = &cobra.Command{
	Use:   "apply <opportunity-id>",
	Short: "Apply to an opportunity",
	Long: `Records an application for the signed-in student. Applying twice to the
same opportunity is a no-op: the existing application is returned unchanged
and no duplicate feedback event is sent.`,
	Args: cobra.ExactArgs(1),
	RunE: runApplyCmd,
}

var applicationsCommand = &cobra.Command{
	Use:   "applications",
	Short: "List your applications in the order they were submitted",
	RunE:  runApplicationsCmd,
}

var (
	applyConfigPath string
	applyNoBrowser  bool
)

func init() {
	applyCommand.Flags().StringVar(&applyConfigPath, "config", "", "Path to config.json file")
	applyCommand.Flags().BoolVar(&applyNoBrowser, "no-browser", false, "Do not open the opportunity's source URL")

	applicationsCommand.Flags().StringVar(&applyConfigPath, "config", "", "Path to config.json file")

	rootCmd.AddCommand(applyCommand)
	rootCmd.AddCommand(applicationsCommand)
}

func runApplyCmd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	oppID := args[0]

	a, err := buildApp(applyConfigPath)
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
		return fmt.Errorf("applications are for students; signed in as %s", id.Role)
	}

	opp, err := a.findOpportunity(oppID)
	if err != nil {
		return err
	}

	pipeline := a.pipeline
	if applyNoBrowser {
		pipeline = a.pipelineWithoutBrowser()
	}

	before, err := pipeline.List(ctx, *id)
	if err != nil {
		return err
	}

	app, err := pipeline.Apply(ctx, *id, *opp)
	if err != nil {
		return err
	}
	pipeline.Flush()

	out := cmd.OutOrStdout()
	if len(before) > 0 && containsApplication(before, app.OpportunityID) {
		fmt.Fprintf(out, "Already applied to %s on %s (status: %s)\n", opp.Title, app.AppliedDate.Format("2006-01-02"), app.Status)
		return nil
	}
	fmt.Fprintf(out, "Applied to %s (status: %s)\n", opp.Title, app.Status)
	return nil
}

func runApplicationsCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	a, err := buildApp(applyConfigPath)
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

	apps, err := a.pipeline.List(ctx, *id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(apps) == 0 {
		fmt.Fprintln(out, "No applications yet")
		return nil
	}
	for _, app := range apps {
		fmt.Fprintf(out, "%s  %s  %s\n", app.AppliedDate.Format("2006-01-02"), app.OpportunityID, app.Status)
	}
	return nil
}

// findOpportunity resolves an opportunity ID against the static catalog and
// the current discovered set.
func (a *app) findOpportunity(oppID string) (*types.Opportunity, error) {
	var candidates []types.Opportunity
	if a.cfg.CatalogPath != "" {
		fromCatalog, err := catalog.Load(a.cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load opportunity catalog: %w", err)
		}
		candidates = append(candidates, fromCatalog...)
	}
	discovered, _ := a.aggregator.Results()
	candidates = append(candidates, discovered...)

	for i := range candidates {
		if candidates[i].ID == oppID {
			return &candidates[i], nil
		}
	}
	return nil, fmt.Errorf("unknown opportunity %q; check placementhub dashboard for valid IDs", oppID)
}

func containsApplication(apps []types.Application, oppID string) bool {
	for _, app := range apps {
		if app.OpportunityID == oppID {
			return true
		}
	}
	return false
}
