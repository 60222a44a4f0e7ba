package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/sbilibin2017/fdg-inventory-auth/internal/facades"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/logger"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/loginform"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/repositories"
)

// logoutCmd removes the stored session
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	Long: `Removes the stored token or user from the local store.
When a token is stored the server is told about the logout first; a failure there is only logged.`,
	RunE: runLogout,
}

func runLogout(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	token, err := store.Get(ctx, loginform.KeyToken)
	switch {
	case err == nil:
		if err := facades.NewAuthHTTPFacade(&http.Client{}, cfg.Endpoint, cfg.LogoutPath).Logout(ctx, token); err != nil {
			logger.Log.Warnw("server logout failed", "error", err)
		}
	case !errors.Is(err, repositories.ErrKeyNotFound):
		return err
	}

	if err := store.Delete(ctx, loginform.KeyToken, loginform.KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Logged out successfully")
	return nil
}
