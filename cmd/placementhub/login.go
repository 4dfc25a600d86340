package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/karthik/placementhub/internal/identity"
	"github.com/karthik/placementhub/internal/types"
)

var loginCommand = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the placement portal",
	RunE:  runLoginCmd,
}

var logoutCommand = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the saved session",
	RunE:  runLogoutCmd,
}

var whoamiCommand = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in identity",
	RunE:  runWhoamiCmd,
}

var (
	loginConfigPath string
	loginEmail      string
	loginPassword   string
)

func init() {
	loginCommand.Flags().StringVar(&loginConfigPath, "config", "", "Path to config.json file")
	loginCommand.Flags().StringVar(&loginEmail, "email", "", "Portal account email")
	loginCommand.Flags().StringVar(&loginPassword, "password", "", "Portal account password (or PORTAL_PASSWORD env var)")

	logoutCommand.Flags().StringVar(&loginConfigPath, "config", "", "Path to config.json file")
	whoamiCommand.Flags().StringVar(&loginConfigPath, "config", "", "Path to config.json file")

	rootCmd.AddCommand(loginCommand)
	rootCmd.AddCommand(logoutCommand)
	rootCmd.AddCommand(whoamiCommand)
}

func runLoginCmd(cmd *cobra.Command, _ []string) error {
	password := loginPassword
	if password == "" {
		password = os.Getenv("PORTAL_PASSWORD")
	}

	a, err := buildApp(loginConfigPath)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.orch.SignIn(context.Background(), types.LoginRequest{
		Email:    loginEmail,
		Password: password,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s, %s)\n", id.Email, id.Role, id.Department)
	return nil
}

func runLogoutCmd(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(loginConfigPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.orch.SignOut(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}

func runWhoamiCmd(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(loginConfigPath)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.sessions.Load()
	if err != nil {
		return err
	}
	if id == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %s)\n", id.Email, id.Role, id.Department)

	token, err := a.sessions.LoadToken()
	if err == nil && token != "" {
		info := identity.InspectToken(token, time.Now())
		if info.Expired {
			fmt.Fprintln(cmd.OutOrStdout(), "Session token expired; run login again")
		} else if !info.ExpiresAt.IsZero() {
			fmt.Fprintf(cmd.OutOrStdout(), "Session valid until %s\n", info.ExpiresAt.Format("2006-01-02 15:04"))
		}
	}
	return nil
}
