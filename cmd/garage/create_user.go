package main

import (
	"fmt"
	"os"

	"garage_backend/internal/models"
	"garage_backend/internal/repositories"
	"garage_backend/internal/services"

	"github.com/spf13/cobra"
)

func newCreateUserCmd(configPath *string) *cobra.Command {
	var req services.CreateUserRequest
	var fullName string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account",
		Long:  "Creates a user with a bcrypt-hashed password. The password may also be passed in GARAGE_USER_PASSWORD.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("GARAGE_USER_PASSWORD")
			}
			if fullName != "" {
				req.FullName = &fullName
			}

			_, db, err := bootstrap(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer db.Close()

			authService := services.NewAuthService(repositories.NewAuthRepository(), db)
			user, err := authService.CreateUser(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("create user %q: %w", req.Username, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d, role %s)\n", user.Username, user.ID, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "login name")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password (at least 8 characters)")
	cmd.Flags().StringVar(&req.Role, "role", models.RoleAdmin, "Admin, Technician or Staff")
	cmd.Flags().StringVar(&fullName, "full-name", "", "display name")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
