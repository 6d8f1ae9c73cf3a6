package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/focusdeck/focusdeck/internal/logger"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage authentication with the sync server.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the sync server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from the sync server",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account on the sync server",
	RunE:  runRegister,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE:  runWhoami,
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade to a pro account",
	RunE:  runUpgrade,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(whoamiCmd)
	authCmd.AddCommand(upgradeCmd)
}

func promptCredentials(withEmail, confirm bool) (username, email, password string, err error) {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, _ = reader.ReadString('\n')
	username = strings.TrimSpace(username)

	if withEmail {
		fmt.Print("Email: ")
		email, _ = reader.ReadString('\n')
		email = strings.TrimSpace(email)
	}

	fmt.Print("Password: ")
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	password = string(passwordBytes)
	fmt.Println()

	if confirm {
		fmt.Print("Confirm Password: ")
		confirmBytes, _ := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if password != string(confirmBytes) {
			return "", "", "", fmt.Errorf("passwords do not match")
		}
	}

	return username, email, password, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	username, _, password, err := promptCredentials(false, false)
	if err != nil {
		return err
	}

	fmt.Println("Logging in...")
	session, user, err := cs.client.Login(ctx, username, password)
	if err != nil {
		return err
	}

	cs.store.SetSession(session, user)

	// Pull the profile so the pro entitlement is known right away
	if profile, err := cs.client.FetchProfile(ctx); err == nil {
		cs.store.SetProfile(profile)
	} else {
		logger.Warn("Failed to fetch profile after login", logger.F("error", err.Error()))
	}

	if err := cs.Save(ctx); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", user.Username)
	cs.MaybeSync(ctx, false)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	username, email, password, err := promptCredentials(true, true)
	if err != nil {
		return err
	}

	fmt.Println("Creating account...")
	session, user, err := cs.client.Register(ctx, username, email, password)
	if err != nil {
		return err
	}

	cs.store.SetSession(session, user)
	if err := cs.Save(ctx); err != nil {
		return err
	}

	fmt.Printf("Account created, logged in as %s\n", user.Username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	if cs.store.Session() == nil {
		fmt.Println("Not logged in")
		return nil
	}

	if err := cs.client.Logout(ctx); err != nil {
		logger.Warn("Server logout failed", logger.F("error", err.Error()))
	}

	cs.store.ClearAuth()
	if err := cs.Save(ctx); err != nil {
		return err
	}

	fmt.Println("Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	sess := cs.store.Session()
	if sess == nil {
		fmt.Println("Not logged in")
		return nil
	}
	if sess.IsExpired() {
		fmt.Println("Session expired, login again")
		return nil
	}

	plan := "free"
	if cs.store.IsPro() {
		plan = "pro"
	}
	fmt.Printf("Logged in (user %s, %s plan)\n", sess.UserID, plan)
	return nil
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cs, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer cs.Close()

	sess := cs.store.Session()
	if sess == nil || sess.IsExpired() {
		return fmt.Errorf("login first with 'focusdeck auth login'")
	}
	if cs.store.IsPro() {
		fmt.Println("Already on the pro plan")
		return nil
	}

	url, err := cs.client.CreateCheckoutSession(ctx)
	if err != nil {
		return fmt.Errorf("checkout unavailable: %w", err)
	}

	fmt.Printf("Complete your upgrade at:\n  %s\n", url)
	fmt.Println("Your devices pick up the pro entitlement automatically afterwards.")
	return nil
}
