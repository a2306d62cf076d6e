package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"identity-service/internal/auth"
	"identity-service/internal/auth/credentials"
	"identity-service/internal/db"

	"github.com/spf13/cobra"
)

var (
	nameFlag     string
	surnameFlag  string
	emailFlag    string
	passwordFlag string
	roleFlag     string
	stdinFlag    bool

	setRoleEmailFlag string
	setRoleRoleFlag  string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage identities directly in the database",
	Long:  `Commands for bootstrapping accounts, e.g. the first Admin, without going through the HTTP API.`,
}

var createUserCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a password account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return errors.New("--email flag is required")
		}
		if nameFlag == "" {
			return errors.New("--name flag is required")
		}

		role, err := auth.ParseRole(roleFlag)
		if err != nil {
			return err
		}

		password := passwordFlag
		if stdinFlag {
			password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
		}
		if password == "" {
			return errors.New("password is required (use --password or --stdin)")
		}

		return withStore(cmd.Context(), func(ctx context.Context, store *db.UserStore) error {
			u, err := credentials.NewService(store).Register(ctx, credentials.Registration{
				Name:     nameFlag,
				Surname:  surnameFlag,
				Email:    emailFlag,
				Password: password,
				Role:     role,
			})
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", u.Role, u.Email, u.ID)
			return nil
		})
	},
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role",
	Short: "Change the role of an existing account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if setRoleEmailFlag == "" {
			return errors.New("--email flag is required")
		}

		role, err := auth.ParseRole(setRoleRoleFlag)
		if err != nil {
			return err
		}

		return withStore(cmd.Context(), func(ctx context.Context, store *db.UserStore) error {
			u, err := store.FindByEmail(ctx, auth.NormalizeEmail(setRoleEmailFlag))
			if err != nil {
				return fmt.Errorf("failed to look up user: %w", err)
			}
			if u == nil {
				return fmt.Errorf("no user with email %q", setRoleEmailFlag)
			}

			if err := store.UpdateRole(ctx, u.ID, role); err != nil {
				return fmt.Errorf("failed to update role: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, role)
			return nil
		})
	},
}

func init() {
	createUserCmd.Flags().StringVar(&nameFlag, "name", "", "Given name of the user")
	createUserCmd.Flags().StringVar(&surnameFlag, "surname", "", "Family name of the user")
	createUserCmd.Flags().StringVar(&emailFlag, "email", "", "Email address of the user")
	createUserCmd.Flags().StringVar(&passwordFlag, "password", "", "Password for the user (use --stdin to avoid shell history)")
	createUserCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin instead of --password flag")
	createUserCmd.Flags().StringVar(&roleFlag, "role", string(auth.RoleUser), "Role to assign (Admin or User)")

	setRoleCmd.Flags().StringVar(&setRoleEmailFlag, "email", "", "Email address of the user")
	setRoleCmd.Flags().StringVar(&setRoleRoleFlag, "role", "", "Role to assign (Admin or User)")
	_ = setRoleCmd.MarkFlagRequired("role")

	usersCmd.AddCommand(createUserCmd)
	usersCmd.AddCommand(setRoleCmd)
}

// withStore opens and migrates the configured database for one command.
func withStore(ctx context.Context, fn func(context.Context, *db.UserStore) error) error {
	database, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		return err
	}

	return fn(ctx, db.NewUserStore(database))
}

func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Enter password: ")
	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return strings.TrimRight(scanner.Text(), "\r"), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return "", nil
}
