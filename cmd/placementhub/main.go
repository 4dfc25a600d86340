// Package main provides the entry point for the PlacementHub CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "placementhub",
	Short: "Role-aware student placement dashboard",
	Long:  "PlacementHub signs in against the college placement portal, merges the static opportunity catalog with live-discovered listings, loads role dashboards, and tracks applications.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
