package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"rntap/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored API credentials",
	Long: `Manage stored RetailNext API key pairs.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (RNTAP_ACCESS_KEY / RNTAP_SECRET_KEY)

Key pairs are issued in the RetailNext dashboard under API access.`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [account]",
	Short: "Store an API key pair securely",
	Long: `Store a RetailNext API key pair under an account name.

You will be prompted for:
  - Account name (if not provided)
  - Access key
  - Secret key (hidden as you type)
  - User agent (optional, press Enter for default)`,
	Example: `  # Interactive login
  rntap auth login

  # Login with an account name
  rntap auth login mystore`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth remove command
var logoutCmd = &cobra.Command{
	Use:   "remove [account]",
	Short: "Remove a stored key pair",
	Args:  cobra.ExactArgs(1),
	Run:   runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored accounts with masked key material.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize credential manager:", err)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	var name string
	if len(args) > 0 {
		name = args[0]
	} else {
		fmt.Print("Account name: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to read account name:", err)
			os.Exit(1)
		}
		name = strings.TrimSpace(input)
	}

	if name == "" {
		fmt.Fprintln(os.Stderr, "account name is required")
		os.Exit(1)
	}

	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Printf("Account %q already exists. Update credentials? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Print("Access key: ")
	accessInput, err := reader.ReadString('\n')
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read access key:", err)
		os.Exit(1)
	}

	fmt.Print("Secret key: ")
	secret, err := readPassword()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read secret key:", err)
		os.Exit(1)
	}

	fmt.Print("User agent (press Enter for default): ")
	uaInput, _ := reader.ReadString('\n')

	account := &auth.Account{
		Name:         name,
		AccessKey:    strings.TrimSpace(accessInput),
		SecretKey:    secret,
		UserAgent:    strings.TrimSpace(uaInput),
		LastModified: time.Now(),
	}

	if err := manager.Store(account); err != nil {
		fmt.Fprintln(os.Stderr, "failed to store credentials:", err)
		os.Exit(1)
	}

	fmt.Printf("Account saved: %s\n", name)
	fmt.Printf("Run an extraction with it:\n  rntap run --account %s --start-date 2024-01-01T09:00:00Z\n", name)
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize credential manager:", err)
		os.Exit(1)
	}

	name := args[0]
	if err := manager.Delete(name); err != nil {
		fmt.Fprintln(os.Stderr, "failed to remove account:", err)
		os.Exit(1)
	}
	fmt.Println("Account removed:", name)
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize credential manager:", err)
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to list accounts:", err)
		os.Exit(1)
	}

	if len(accounts) == 0 {
		fmt.Println("No stored accounts. Use 'rntap auth login' to add one.")
		return
	}

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("%d. Account: %s\n", i+1, sanitized.Name)
		fmt.Printf("   Access Key: %s\n", sanitized.AccessKey)
		fmt.Printf("   Secret Key: %s\n", sanitized.SecretKey)
		if sanitized.UserAgent != "" {
			fmt.Printf("   User Agent: %s\n", sanitized.UserAgent)
		}
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

// readPassword reads a secret from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(password)), nil
		}
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
