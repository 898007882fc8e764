package cli

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/noah-isme/essay-auditor-api/internal/dto"
	"github.com/noah-isme/essay-auditor-api/internal/models"
	"github.com/noah-isme/essay-auditor-api/internal/service"
)

func newUserCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage auditor accounts",
	}

	cmd.AddCommand(newUserCreateCmd(app))

	return cmd
}

func newUserCreateCmd(app *App) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.Auth.Register(cmd.Context(), dto.SignUpRequest{
				Name:            name,
				Email:           email,
				Password:        password,
				PasswordConfirm: password,
			})
			if err != nil {
				if errors.Is(err, service.ErrEmailTaken) {
					return fmt.Errorf("email %s is already registered", email)
				}
				return fmt.Errorf("create user: %w", err)
			}

			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Created user %d <%s>\n", user.ID, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Password (8 to 72 characters)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// resolveUser looks an account up by its login email.
func resolveUser(cmd *cobra.Command, app *App, email string) (models.User, error) {
	user, err := app.Users.GetByEmail(cmd.Context(), email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, fmt.Errorf("no user registered with email %s", email)
		}
		return models.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}
