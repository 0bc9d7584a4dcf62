package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/salmonumbrella/jumpviz/internal/secrets"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the review token",
	Long: `Manage the token reviewers must send to save or clear labels.

The token is stored in your system keychain (macOS Keychain, Windows
Credential Manager, Secret Service) or in an encrypted file where no
keychain is available. 'jumpviz serve' requires it on label writes in the
X-Review-Token header.

Examples:
  jumpviz auth set-token
  jumpviz auth set-token --token s3cret-review-token
  jumpviz auth status
  jumpviz auth clear`,
}

var setTokenCmd = &cobra.Command{
	Use:   "set-token",
	Short: "Store the review token",
	Args:  cobra.NoArgs,
	RunE:  runSetToken,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a review token is stored",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored review token",
	Args:  cobra.NoArgs,
	RunE:  runAuthClear,
}

var setTokenValue string

func init() {
	authCmd.AddCommand(setTokenCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authClearCmd)

	rootCmd.AddCommand(authCmd)

	setTokenCmd.Flags().StringVar(&setTokenValue, "token", "", "Review token (prompted when omitted)")
}

func runSetToken(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	token := strings.TrimSpace(setTokenValue)
	if token == "" {
		var err error
		token, err = promptSecret(ctx, "Enter review token: ")
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
	}
	if token == "" {
		return fmt.Errorf("review token is required")
	}

	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	tok := secrets.Token{Name: reviewTokenKey, Value: token, CreatedAt: time.Now().UTC()}
	if err := store.SetToken(reviewTokenKey, tok); err != nil {
		return fmt.Errorf("failed to store review token: %w", err)
	}

	if structuredOutputRequested() {
		return printStructured(ctx, map[string]interface{}{
			"status":        "stored",
			"token_preview": maskToken(token),
		})
	}
	fmt.Fprintln(stdoutFromContext(ctx), "Review token stored.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	backend := "unknown"
	if cfg, err := loadConfigFromFlag(); err == nil {
		if info, err := secrets.ResolveKeyringBackendInfo(cfg); err == nil {
			backend = fmt.Sprintf("%s (%s)", info.Value, info.Source)
		}
	}

	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}

	tok, err := store.GetToken(reviewTokenKey)
	if err != nil {
		if structuredOutputRequested() {
			return printStructured(ctx, map[string]interface{}{
				"token_set": false,
				"backend":   backend,
			})
		}
		out := stdoutFromContext(ctx)
		fmt.Fprintln(out, "Review token: not set")
		fmt.Fprintf(out, "Keyring backend: %s\n", backend)
		fmt.Fprintln(out, "\nRun 'jumpviz auth set-token' to require a token for label writes.")
		return nil
	}

	if structuredOutputRequested() {
		result := map[string]interface{}{
			"token_set":     true,
			"token_preview": maskToken(tok.Value),
			"backend":       backend,
		}
		if !tok.CreatedAt.IsZero() {
			result["stored_at"] = tok.CreatedAt.Format(time.RFC3339)
		}
		return printStructured(ctx, result)
	}

	out := stdoutFromContext(ctx)
	fmt.Fprintf(out, "Review token: %s\n", maskToken(tok.Value))
	if !tok.CreatedAt.IsZero() {
		fmt.Fprintf(out, "Stored at: %s\n", tok.CreatedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(out, "Keyring backend: %s\n", backend)
	return nil
}

func runAuthClear(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	store, err := openSecretsStore()
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	if err := store.DeleteToken(reviewTokenKey); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove review token: %w", err)
	}

	if structuredOutputRequested() {
		return printStructured(ctx, map[string]interface{}{"status": "cleared"})
	}
	fmt.Fprintln(stdoutFromContext(ctx), "Review token removed.")
	return nil
}

// promptSecret prompts for a secret input (no echo)
func promptSecret(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(stderrFromContext(ctx), prompt)

	in := stdinFromContext(ctx)
	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		password, err := term.ReadPassword(int(file.Fd()))
		fmt.Fprintln(stderrFromContext(ctx))
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(password)), nil
	}

	// Piped input
	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// maskToken masks a token for display, showing only first and last 4 characters
func maskToken(token string) string {
	if len(token) <= 12 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
