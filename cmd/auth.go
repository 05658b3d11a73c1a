package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/s0up4200/filmforum/filmapi"
)

var (
	email           string
	username        string
	password        string
	confirmPassword string
	secretKey       string
	showToken       bool
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email and password",
	Long: `Log in to the film API and print the account and token details.
The password is prompted for when --password is omitted and stdin is a terminal.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Register a new account. Pass --secret-key to request an admin account.
The password and its confirmation are prompted for when omitted and stdin is a terminal.`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)

	loginCmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	loginCmd.Flags().StringVar(&password, "password", "", "account password")
	loginCmd.Flags().BoolVar(&showToken, "show-token", false, "print the raw token")
	_ = loginCmd.MarkFlagRequired("email")

	registerCmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	registerCmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	registerCmd.Flags().StringVar(&password, "password", "", "account password")
	registerCmd.Flags().StringVar(&confirmPassword, "confirm-password", "", "password confirmation (defaults to --password)")
	registerCmd.Flags().StringVar(&secretKey, "secret-key", "", "admin secret key")
	registerCmd.Flags().BoolVar(&showToken, "show-token", false, "print the raw token")
	_ = registerCmd.MarkFlagRequired("username")
	_ = registerCmd.MarkFlagRequired("email")
}

func runLogin(cmd *cobra.Command, args []string) error {
	pass, err := passwordOrPrompt(password, "Password: ")
	if err != nil {
		return err
	}

	result, err := client.Login(cmd.Context(), email, pass)
	if err != nil {
		return describeAuthError("login", err)
	}

	printAuthResult(cmd.OutOrStdout(), "Logged in", result, showToken)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	pass, err := passwordOrPrompt(password, "Password: ")
	if err != nil {
		return err
	}

	confirm := confirmPassword
	switch {
	case confirm != "":
	case password != "":
		confirm = pass
	default:
		if confirm, err = passwordOrPrompt("", "Confirm password: "); err != nil {
			return err
		}
	}

	user := filmapi.NewUser(username, email, pass, confirm)
	if cmd.Flags().Changed("secret-key") {
		user = filmapi.NewAdminUser(username, email, pass, confirm, secretKey)
	}

	result, err := client.Register(cmd.Context(), user)
	if err != nil {
		return describeAuthError("registration", err)
	}

	printAuthResult(cmd.OutOrStdout(), "Registered", result, showToken)
	return nil
}

// describeAuthError turns auth failures into messages for the terminal
func describeAuthError(action string, err error) error {
	var creds *filmapi.CredentialsError

	switch {
	case filmapi.IsConflict(err):
		return fmt.Errorf("%s %s failed: %w", failure("✗"), action, err)
	case errors.As(err, &creds):
		return fmt.Errorf("%s %s rejected: %w", failure("✗"), action, err)
	case filmapi.IsConnectionError(err):
		return fmt.Errorf("%s could not reach the film API at %s: %w", failure("✗"), client.BaseURL(), err)
	default:
		return err
	}
}

// passwordOrPrompt returns value, or reads a password from the terminal
// without echo when value is empty
func passwordOrPrompt(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}

	fd := os.Stdin.Fd()
	if !isatty.IsTerminal(fd) {
		return "", fmt.Errorf("--password is required when stdin is not a terminal")
	}

	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(fd))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
