package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/noah-isme/essay-auditor-api/internal/dto"
	"github.com/noah-isme/essay-auditor-api/internal/service"
)

func newHistoryCmd(app *App) *cobra.Command {
	var email string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the stored corrections of a user, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 || limit > service.MaxHistoryLimit {
				return fmt.Errorf("--limit must be between 1 and %d", service.MaxHistoryLimit)
			}

			user, err := resolveUser(cmd, app, email)
			if err != nil {
				return err
			}

			history, err := app.Dashboard.ListHistory(cmd.Context(), user.ID, limit)
			if err != nil {
				return fmt.Errorf("list corrections: %w", err)
			}

			renderHistory(cmd.OutOrStdout(), history)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email of the user")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of corrections to show")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func renderHistory(w io.Writer, history []dto.CorrectionSummary) {
	if len(history) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No corrections yet")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Created", "Total", "Band", "C1", "C2", "C3", "C4", "C5"})
	for _, item := range history {
		row := []string{
			item.ID,
			item.CreatedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(item.TotalScore),
			item.TotalBand,
		}
		for _, score := range item.Scores {
			row = append(row, strconv.Itoa(score))
		}
		table.Append(row)
	}
	table.Render()

	fmt.Fprintf(w, "%d correction(s)\n", len(history))
}
