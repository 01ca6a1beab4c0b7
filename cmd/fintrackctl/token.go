package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/auth"
	"fintrack/internal/core"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, _ := cmd.Flags().GetString("user")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if strings.TrimSpace(user) == "" {
				return core.Invalid("user", core.ErrInvalidID)
			}
			if len(cfg.JWTSecret) < 32 {
				return fmt.Errorf("JWT_SECRET must be set to at least 32 bytes")
			}
			token, err := auth.IssueToken(cfg.JWTSecret, core.ID(strings.TrimSpace(user)), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("user", "", "user ID the token is issued for (required)")
	cmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
