package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reup-dayplan-backend/internal/auth"
)

func newTokenCmd() *cobra.Command {
	var (
		secret string
		userID int
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token for a user (development)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret is required")
			}
			if userID <= 0 {
				return fmt.Errorf("--user must be positive")
			}
			tok, err := auth.GenerateToken([]byte(secret), userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "JWT secret of the API server")
	cmd.Flags().IntVar(&userID, "user", 0, "user id")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTTL, "token lifetime")
	return cmd
}
