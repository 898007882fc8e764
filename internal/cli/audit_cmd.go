package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/noah-isme/essay-auditor-api/internal/auditor"
	"github.com/noah-isme/essay-auditor-api/internal/dto"
)

func newAuditCmd(app *App) *cobra.Command {
	var email, file string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Grade an essay file on behalf of a registered user",
		RunE: func(cmd *cobra.Command, args []string) error {
			essay, err := readEssayFile(cmd, file)
			if err != nil {
				return err
			}

			user, err := resolveUser(cmd, app, email)
			if err != nil {
				return err
			}

			result, err := app.Audits.Audit(cmd.Context(), user.ID, essay)
			if err != nil {
				return err
			}

			renderAudit(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email of the user the correction belongs to")
	cmd.Flags().StringVar(&file, "file", "", "Plain text essay file, or - for stdin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func readEssayFile(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read essay from stdin: %w", err)
		}
		return string(content), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read essay: %w", err)
	}
	return string(content), nil
}

func renderAudit(w io.Writer, result dto.AuditResponse) {
	bandColor(auditor.TotalBand(result.TotalScore)).Fprintf(w, "Total score: %d/%d\n", result.TotalScore, auditor.MaxTotalScore)
	fmt.Fprintf(w, "Correction: %s\n\n", result.CorrectionID)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Competency", "Name", "Score", "Band"})
	for _, c := range auditor.Competencies {
		score := result.Competencies.Score(c)
		table.Append([]string{c.String(), c.Name(), strconv.Itoa(int(score)), score.Band()})
	}
	table.Render()

	color.New(color.FgYellow).Fprintln(w, "\nFeedback")
	fmt.Fprintln(w, result.StrictFeedback)
	color.New(color.FgYellow).Fprintln(w, "\nAction plan")
	fmt.Fprintln(w, result.ActionPlan)
}

func bandColor(band string) *color.Color {
	switch band {
	case auditor.BandStrong:
		return color.New(color.FgGreen, color.Bold)
	case auditor.BandFair:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}
