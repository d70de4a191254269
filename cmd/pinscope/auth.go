package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pinscope/pkg/auth"
	"pinscope/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Pinterest sessions",
	Long: `Manage stored Pinterest browser sessions securely.

Sessions are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your session cookie or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [profile]",
	Short: "Store a Pinterest session cookie securely",
	Long: `Store a Pinterest session cookie in the system keychain or an
encrypted file.

You will be prompted for:
  - Profile name (if not provided)
  - Session cookie (from the _pinterest_sess cookie)
  - User Agent (optional, press Enter for default)

To get the cookie value:
1. Log into Pinterest in your browser
2. Open Developer Tools (F12)
3. Go to Application/Storage > Cookies > pinterest.com
4. Copy the _pinterest_sess value`,
	Example: `  # Interactive login
  pinscope auth login

  # Login with a profile name
  pinscope auth login personal`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Remove a stored session",
	Long: `Remove a stored Pinterest session.

If no profile is provided, you will be shown a list of stored sessions
to choose from.`,
	Example: `  # Interactive logout
  pinscope auth logout

  # Remove a specific profile
  pinscope auth logout personal`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// authListCmd represents the auth list command
var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored sessions",
	Long:  `List all stored Pinterest sessions with masked cookie values.`,
	Run:   runAuthList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(authListCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize session manager", err.Error())
		os.Exit(1)
	}

	var profile string
	if len(args) > 0 {
		profile = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	if profile == "" {
		fmt.Print("Profile name (press Enter for 'default'): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			ui.PrintError("Failed to read profile name", err.Error())
			os.Exit(1)
		}
		profile = strings.TrimSpace(input)
		if profile == "" {
			profile = "default"
		}
	}

	// Confirm before overwriting an existing profile
	if existing, _ := manager.Retrieve(profile); existing != nil {
		fmt.Printf("\nProfile '%s' already exists. Update session? (y/N): ", profile)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Println("\nEnter your cookie value (it will be hidden as you type):")
	fmt.Println()

	var cookie string
	for {
		fmt.Print("_pinterest_sess cookie value: ")
		cookie, err = readPassword()
		if err != nil {
			ui.PrintError("Failed to read session cookie", err.Error())
			os.Exit(1)
		}

		if len(cookie) < 20 {
			fmt.Println("\nThat doesn't look like a valid session cookie.")
			fmt.Println("It should be a long encoded string.")
			fmt.Print("\nTry again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				os.Exit(1)
			}
			continue
		}
		break
	}

	fmt.Print("\nUser Agent (press Enter to use default): ")
	userAgent, _ := reader.ReadString('\n')
	userAgent = strings.TrimSpace(userAgent)

	session := &auth.Session{
		Profile:   profile,
		Cookie:    cookie,
		UserAgent: userAgent,
	}

	if err := manager.Store(session); err != nil {
		ui.PrintError("Failed to store session", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess(fmt.Sprintf("Session saved: %s", profile))

	fmt.Println("\nUse the stored session:")
	fmt.Println("  $ pinscope scrape <keywords>")
	fmt.Println("\nUse a specific profile:")
	fmt.Printf("  $ pinscope scrape <keywords> --profile %s\n", profile)
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize session manager", err.Error())
		os.Exit(1)
	}

	if len(args) > 0 {
		if err := manager.Delete(args[0]); err != nil {
			ui.PrintError("Failed to remove session", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Session removed: " + args[0])
		return
	}

	sessions, err := manager.List()
	if err != nil || len(sessions) == 0 {
		ui.PrintError("No stored sessions found", "")
		return
	}

	reader := bufio.NewReader(os.Stdin)

	if len(sessions) == 1 {
		session := sessions[0]
		fmt.Printf("Remove session '%s'? (y/N): ", session.Profile)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}

		if err := manager.Delete(session.Profile); err != nil {
			ui.PrintError("Failed to remove session", err.Error())
			os.Exit(1)
		}
		ui.PrintSuccess("Session removed: " + session.Profile)
		return
	}

	fmt.Println("Select session to remove:")
	for i, session := range sessions {
		fmt.Printf("  %d. %s\n", i+1, session.Profile)
	}
	fmt.Printf("  0. Cancel\n\n")

	fmt.Print("Choice: ")
	input, _ := reader.ReadString('\n')

	var choice int
	fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

	if choice < 1 || choice > len(sessions) {
		if choice != 0 {
			ui.PrintError("Invalid choice", "")
			os.Exit(1)
		}
		return
	}

	session := sessions[choice-1]
	if err := manager.Delete(session.Profile); err != nil {
		ui.PrintError("Failed to remove session", err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess("Session removed: " + session.Profile)
}

func runAuthList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize session manager", err.Error())
		os.Exit(1)
	}

	sessions, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list sessions", err.Error())
		os.Exit(1)
	}

	if len(sessions) == 0 {
		ui.PrintInfo("No stored sessions", "Use 'pinscope auth login' to add one")
		return
	}

	ui.PrintHighlight("Stored Sessions")
	fmt.Println()

	for i, session := range sessions {
		fmt.Printf("%d. Profile: %s\n", i+1, session.Profile)
		fmt.Printf("   Cookie: %s\n", maskSecret(session.Cookie))
		if session.UserAgent != "" {
			fmt.Printf("   User Agent: %s\n", session.UserAgent)
		}
		fmt.Printf("   Last Modified: %s\n", session.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

// readPassword reads a secret from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return string(password), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// maskSecret shows only the edges of a secret value
func maskSecret(value string) string {
	if len(value) <= 12 {
		return "****"
	}
	return value[:6] + "..." + value[len(value)-4:]
}
