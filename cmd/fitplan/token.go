package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/fitplan/internal/server"
)

func newTokenCmd(opts *globalOptions) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API token for a user",
		Long:  "Mint an HS256 bearer token whose subject is --user, signed with jwt.secret. Intended for development and operators.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := cfg.JWT.Validate(); err != nil {
				return err
			}
			token, err := server.NewJWTService(&cfg.JWT).GenerateToken(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id placed in the sub claim (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
