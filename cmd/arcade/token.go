package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/math-arcade/internal/auth"
)

var (
	flagSecret   string
	flagTokenTTL time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <user>",
	Short: "Mint an API token",
	Long: `Print a signed token for the HTTP API. The secret must match the
server's auth.secret (ARCADE_AUTH_SECRET).

Examples:
  arcade token ada --secret dev-secret
  curl -H "Authorization: Bearer $(arcade token ada)" localhost:8080/api/leaderboard`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&flagSecret, "secret", os.Getenv("ARCADE_AUTH_SECRET"), "Signing secret")
	tokenCmd.Flags().DurationVar(&flagTokenTTL, "ttl", auth.DefaultTokenDuration, "Token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	tokens, err := auth.NewTokens(flagSecret, flagTokenTTL)
	if err != nil {
		return err
	}

	token, err := tokens.Issue(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
