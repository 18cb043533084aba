package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"profilegram/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Apify API token",
	Long: `Manage the stored Apify API token.

The token is stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - APIFY_TOKEN environment variable (read-only)

Never share your token or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the Apify API token securely",
	Long: `Store the Apify API token in the system keychain or encrypted file.

You will be prompted for the token. It is read without echo.

To get a token, open the Apify console and copy the API token from
Settings > Integrations.`,
	Example: `  # Interactive login
  profilegram auth login`,
	Args: cobra.NoArgs,
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored token",
	Args:  cobra.NoArgs,
	Run:   runLogout,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where a token is currently stored",
	Args:  cobra.NoArgs,
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize token manager: %v\n", err)
		os.Exit(1)
	}

	fmt.Print("Apify API token: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read token: %v\n", err)
		os.Exit(1)
	}

	token := strings.TrimSpace(string(raw))
	if token == "" {
		fmt.Fprintln(os.Stderr, "token must not be empty")
		os.Exit(1)
	}

	if err := manager.Save(token); err != nil {
		fmt.Fprintf(os.Stderr, "failed to store token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Token stored.")
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize token manager: %v\n", err)
		os.Exit(1)
	}

	if err := manager.Delete(); err != nil {
		fmt.Fprintf(os.Stderr, "no stored token to remove: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Token removed.")
}

func runStatus(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize token manager: %v\n", err)
		os.Exit(1)
	}

	sources := manager.Sources()
	if len(sources) == 0 {
		fmt.Println("No token stored. Run 'profilegram auth login' or set APIFY_TOKEN.")
		return
	}

	fmt.Println("Token found in:")
	for _, source := range sources {
		fmt.Printf("  - %s\n", source)
	}
}
