package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"wordladder/internal/security"
)

// newTokenCommand issues bearer tokens for local development and support.
// Production tokens come from the identity provider.
func newTokenCommand(ctx *commandContext) *cobra.Command {
	var learnerID, centreID int64
	var role string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an API bearer token with the configured secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.TokenSecret == "" {
				return errors.New("token_secret is not configured")
			}
			if learnerID <= 0 {
				return errors.New("--learner must be positive")
			}
			parsedRole, err := security.ParseRole(role)
			if err != nil {
				return err
			}

			identity := security.Identity{LearnerID: learnerID, Role: parsedRole}
			if centreID > 0 {
				identity.CentreID = &centreID
			}
			signed, err := security.SignToken(cfg.TokenSecret, identity, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().Int64Var(&learnerID, "learner", 0, "Learner id (token subject)")
	cmd.Flags().Int64Var(&centreID, "centre", 0, "Centre id")
	cmd.Flags().StringVar(&role, "role", "PARENT", "Role: PARENT, STAFF or ADMIN")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("learner")
	return cmd
}
