package cli

import (
	"fmt"

	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/spf13/cobra"
)

func newAccountsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "promote <email>",
		Short: "Grant the admin role to an account",
		Long: "Grants the admin role to the account registered under the email. " +
			"When several accounts share the address, the oldest one is promoted, " +
			"matching the account login resolves to.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}

			verifier, err := service.NewCredentialVerifier(a.cfg.Auth.PasswordScheme)
			if err != nil {
				return err
			}

			// Promotion issues no tokens, so the signing key is irrelevant here
			tokens := service.NewTokenIssuer(a.cfg.JWT.Secret, a.cfg.JWT.AccessTokenTTL())
			accounts := service.NewAccountService(repository.NewAccountRepository(db.DB()), verifier, tokens, a.logger)

			account, err := accounts.Promote(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("promote %s: %w", args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Account %s (%s) is now %s\n", account.ID, account.Email, account.Role)
			return nil
		},
	})

	return cmd
}
