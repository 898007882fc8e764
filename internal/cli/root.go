package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/noah-isme/essay-auditor-api/internal/repository"
	"github.com/noah-isme/essay-auditor-api/internal/service"
)

// App holds the collaborators used by the auditctl commands.
type App struct {
	Users     repository.UserRepository
	Auth      service.AuthService
	Audits    service.AuditService
	Dashboard service.DashboardService
	// Migrate brings the database schema up to date.
	Migrate func(ctx context.Context) error
}

// NewRootCmd creates the top-level "auditctl" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "auditctl",
		Short:         "Operate the essay auditor from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCmd(app),
		newUserCmd(app),
		newAuditCmd(app),
		newHistoryCmd(app),
	)

	return root
}
