package cmd

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"trade-journal-go/internal/auth"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new journal owner",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	e, err := newEnv()
	if err != nil {
		return err
	}

	if username == "" {
		return fmt.Errorf("--user is required")
	}

	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	svc := auth.NewService(e.db, e.log, e.cfg.Auth)
	user, err := svc.Register(cmd.Context(), username, string(password))
	if err != nil {
		return err
	}

	fmt.Printf("Registered %q (owner id %d)\n", user.Username, user.ID)
	return nil
}
