package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/contestapp/gateway/internal/logging"
	"github.com/contestapp/gateway/internal/revocation"
	"github.com/contestapp/gateway/internal/token"
)

var (
	tokenSecret   string
	tokenTTL      time.Duration
	tokenUserID   string
	tokenUsername string
	tokenRole     string
	tokenRedisURL string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint, inspect and check access tokens",
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a signed access token",
	Long:  `Mints an access token with the platform claim layout. Meant for local development and incident debugging, never for production issuance.`,
	RunE:  runTokenMint,
}

var tokenInspectCmd = &cobra.Command{
	Use:   "inspect TOKEN",
	Short: "Validate a token and print its claims",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenInspect,
}

var tokenCheckCmd = &cobra.Command{
	Use:   "check TOKEN",
	Short: "Check whether a token is still present in the revocation store",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenCheck,
}

func init() {
	tokenCmd.PersistentFlags().StringVar(&tokenSecret, "secret", "", "JWT signing secret (or GATEWAY_AUTH_JWT_SECRET)")

	tokenMintCmd.Flags().StringVar(&tokenUserID, "user-id", "", "user_id claim (required)")
	tokenMintCmd.Flags().StringVar(&tokenUsername, "username", "", "username claim")
	tokenMintCmd.Flags().StringVar(&tokenRole, "role", "", "role claim")
	tokenMintCmd.Flags().DurationVar(&tokenTTL, "ttl", 15*time.Minute, "token lifetime")

	tokenCheckCmd.Flags().StringVar(&tokenRedisURL, "redis-url", "redis://localhost:6379/0", "revocation store URL")

	tokenCmd.AddCommand(tokenMintCmd)
	tokenCmd.AddCommand(tokenInspectCmd)
	tokenCmd.AddCommand(tokenCheckCmd)
}

func signingSecret() (string, error) {
	if tokenSecret != "" {
		return tokenSecret, nil
	}
	if env := os.Getenv("GATEWAY_AUTH_JWT_SECRET"); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("no signing secret: pass --secret or set GATEWAY_AUTH_JWT_SECRET")
}

func runTokenMint(cmd *cobra.Command, _ []string) error {
	if tokenUserID == "" {
		return fmt.Errorf("--user-id is required")
	}
	secret, err := signingSecret()
	if err != nil {
		return err
	}

	raw, err := token.NewGenerator(secret, tokenTTL).Generate(tokenUserID, tokenUsername, tokenRole)
	if err != nil {
		return fmt.Errorf("mint token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), raw)
	return nil
}

func runTokenInspect(cmd *cobra.Command, args []string) error {
	secret, err := signingSecret()
	if err != nil {
		return err
	}

	claims, err := token.NewValidator(secret).Validate(args[0])
	if err != nil {
		return fmt.Errorf("token rejected: %w", err)
	}

	out, err := json.MarshalIndent(claims, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runTokenCheck(cmd *cobra.Command, args []string) error {
	store, err := revocation.NewRedisStore(tokenRedisURL, logging.Default())
	if err != nil {
		return err
	}
	defer store.Close()

	if store.Exists(cmd.Context(), args[0]) {
		fmt.Fprintln(cmd.OutOrStdout(), "session live")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "session absent (revoked or never issued)")
	return nil
}
