package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sbilibin2017/fdg-inventory-auth/internal/loginform"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/tui"
)

var (
	loginEmail    string
	loginPassword string
)

var errLoginAborted = errors.New("login aborted")

// loginCmd signs in and stores the session
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the inventory system",
	Long: `Opens the login form. Enter your email and password and press Enter.

With --email and --password the form is submitted without the interactive UI.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email for non-interactive login")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Password for non-interactive login")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	formCfg, err := cfg.formConfig()
	if err != nil {
		return err
	}

	store, db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if loginEmail != "" || loginPassword != "" {
		var target string
		nav := loginform.NavigatorFunc(func(_ context.Context, t string) error {
			target = t
			return nil
		})

		form := loginform.New(formCfg, &http.Client{}, store, nav)
		form.SetEmail(loginEmail)
		form.SetPassword(loginPassword)

		if err := form.Submit(ctx); err != nil {
			if msg := form.Error(); msg != "" {
				return errors.New(msg)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Login successful, session stored for %s\n", target)
		return nil
	}

	router := tui.NewRouter()
	form := loginform.New(formCfg, &http.Client{}, store, router)
	model := tui.New(ctx, form, router, store, formCfg.DashboardPath)

	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("run login form: %w", err)
	}
	if m, ok := final.(tui.Model); ok && !m.LoggedIn() {
		return errLoginAborted
	}
	return nil
}
