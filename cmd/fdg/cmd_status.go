package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sbilibin2017/fdg-inventory-auth/internal/loginform"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/models"
	"github.com/sbilibin2017/fdg-inventory-auth/internal/repositories"
)

var errNotLoggedIn = errors.New("not logged in")

// statusCmd prints the stored session
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, db, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()

	raw, err := store.Get(ctx, loginform.KeyUser)
	switch {
	case err == nil:
		var user models.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return fmt.Errorf("stored user is malformed: %w", err)
		}
		fmt.Fprintf(out, "Logged in as %s <%s>, role %s\n", user.Username, user.Email, user.Role)
		return nil
	case !errors.Is(err, repositories.ErrKeyNotFound):
		return err
	}

	token, err := store.Get(ctx, loginform.KeyToken)
	if errors.Is(err, repositories.ErrKeyNotFound) {
		fmt.Fprintln(out, "Not logged in")
		return errNotLoggedIn
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Logged in, token %s\n", tokenHint(token))
	return nil
}

func tokenHint(token string) string {
	if len(token) <= 12 {
		return token
	}
	return token[:12] + "..."
}
