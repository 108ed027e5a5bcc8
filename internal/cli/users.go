package cli

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/safebase/safebase/internal/core/domain"
	"github.com/safebase/safebase/internal/core/service"
	"github.com/safebase/safebase/internal/infrastructure/sqlite"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
	Long:  "Manage user accounts for authentication",
}

func promptPassword() (string, error) {
	fmt.Print("Enter password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(password) < service.MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", service.MinPasswordLength)
	}

	return string(password), nil
}

var usersAddCmd = &cobra.Command{
	Use:   "add <email> <name>",
	Short: "Add a new user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, name := args[0], args[1]

		log := newLogger()
		defer log.Sync()

		services, err := initServices(log)
		if err != nil {
			return err
		}
		defer services.Close()

		if _, err := services.UserRepo.FindByEmail(cmd.Context(), email); err == nil {
			return fmt.Errorf("user already exists: %s", email)
		}

		password, err := promptPassword()
		if err != nil {
			return err
		}

		hashed, err := services.AuthService.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user := domain.NewUser(name, email, hashed)
		if err := services.UserRepo.Create(cmd.Context(), user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Printf("User '%s' created successfully\n", email)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <email>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]

		log := newLogger()
		defer log.Sync()

		services, err := initServices(log)
		if err != nil {
			return err
		}
		defer services.Close()

		user, err := services.UserRepo.FindByEmail(cmd.Context(), email)
		if errors.Is(err, sqlite.ErrNotFound) {
			return fmt.Errorf("user not found: %s", email)
		}
		if err != nil {
			return err
		}

		fmt.Printf("Are you sure you want to delete user '%s'? (yes/no): ", email)
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" {
			fmt.Println("Cancelled")
			return nil
		}

		if err := services.UserRepo.Delete(cmd.Context(), user.ID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}

		fmt.Printf("User '%s' deleted successfully\n", email)
		return nil
	},
}

var usersUpdatePasswordCmd = &cobra.Command{
	Use:   "update-password <email>",
	Short: "Update user password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := args[0]

		log := newLogger()
		defer log.Sync()

		services, err := initServices(log)
		if err != nil {
			return err
		}
		defer services.Close()

		user, err := services.UserRepo.FindByEmail(cmd.Context(), email)
		if err != nil {
			return fmt.Errorf("user not found: %s", email)
		}

		password, err := promptPassword()
		if err != nil {
			return err
		}

		hashed, err := services.AuthService.HashPassword(password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		user.Password = hashed
		user.UpdatedAt = time.Now().UTC()
		if err := services.UserRepo.Update(cmd.Context(), user); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}

		fmt.Printf("Password updated for user '%s'\n", email)
		return nil
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		defer log.Sync()

		services, err := initServices(log)
		if err != nil {
			return err
		}
		defer services.Close()

		users, err := services.UserRepo.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		if len(users) == 0 {
			fmt.Println("No users found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "EMAIL\tNAME\tCREATED AT")
		for _, user := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				user.Email,
				user.Name,
				user.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
		w.Flush()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersAddCmd)
	usersCmd.AddCommand(usersDeleteCmd)
	usersCmd.AddCommand(usersUpdatePasswordCmd)
	usersCmd.AddCommand(usersListCmd)
}
