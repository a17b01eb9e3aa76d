package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dochub/pkg/client"
)

var (
	email    string
	password string
)

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session tokens",
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			addr, err := promptIfEmpty(email, "Email: ")
			if err != nil {
				return err
			}
			pass, err := passwordIfEmpty(password, "Password: ")
			if err != nil {
				return err
			}

			user, err := c.Session.Login(ctx, addr, pass)
			if err != nil {
				return err
			}
			cmd.Printf("Logged in as %s (%s)\n", user.FullName(), user.Email)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when empty)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the refresh token and forget the session",
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			c.Session.Logout(ctx)
			cmd.Println("Logged out")
			return nil
		}),
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			user, err := requireLogin(ctx, c)
			if err != nil {
				return err
			}
			return printValue(cmd, user, func() {
				cmd.Printf("%s <%s> (id %d, joined %s)\n",
					user.FullName(), user.Email, user.ID, client.FormatDate(user.DateJoined))
			})
		}),
	}
}

func newRegisterCmd() *cobra.Command {
	var firstName, lastName string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			addr, err := promptIfEmpty(email, "Email: ")
			if err != nil {
				return err
			}
			pass, err := passwordIfEmpty(password, "Password: ")
			if err != nil {
				return err
			}
			confirm := pass
			if password == "" {
				if confirm, err = readPassword("Confirm password: "); err != nil {
					return err
				}
			}

			user, err := c.Session.Register(ctx, client.RegisterRequest{
				Email:           addr,
				Password:        pass,
				PasswordConfirm: confirm,
				FirstName:       firstName,
				LastName:        lastName,
			})
			if err != nil {
				return err
			}
			cmd.Printf("Registered and logged in as %s\n", user.Email)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (prompted when empty)")
	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	return cmd
}

func newPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of the logged in user",
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			if _, err := requireLogin(ctx, c); err != nil {
				return err
			}

			current, err := readPassword("Enter Password: ")
			if err != nil {
				return err
			}
			next, err := readPassword("Enter New Password: ")
			if err != nil {
				return err
			}
			confirm, err := readPassword("Confirm New Password: ")
			if err != nil {
				return err
			}

			if err := c.Session.ChangePassword(ctx, current, next, confirm); err != nil {
				return err
			}
			cmd.Println("Password updated successfully")
			return nil
		}),
	}
}

func newResetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password [email]",
		Short: "Request a password reset",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(ctx context.Context, cmd *cobra.Command, c *client.Client, args []string) error {
			if err := c.Session.ResetPassword(ctx, args[0]); err != nil {
				return err
			}
			cmd.Println("If the account exists, reset instructions have been sent")
			return nil
		}),
	}
}

func promptIfEmpty(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func passwordIfEmpty(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	return readPassword(prompt)
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(data), nil
}

func init() {
	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newRegisterCmd(),
		newPasswdCmd(),
		newResetPasswordCmd(),
	)
}
