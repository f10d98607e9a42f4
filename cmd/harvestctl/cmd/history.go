package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harveston/harvestengine/internal/audit"
)

var (
	historyLimit int
	historyID    string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect previously recorded calculations",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of records to list")
	historyCmd.Flags().StringVar(&historyID, "id", "", "look up a single calculation by ID")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg == nil {
		return fmt.Errorf("no configuration loaded")
	}

	db, err := audit.Open(cfg.Audit.Driver, cfg.Audit.DSN)
	if err != nil {
		return fmt.Errorf("failed to open audit store: %w", err)
	}
	repo := audit.NewRepository(db)

	if historyID != "" {
		id, err := uuid.Parse(historyID)
		if err != nil {
			return fmt.Errorf("invalid calculation id: %w", err)
		}
		result, err := repo.FindByID(id)
		if err != nil {
			return err
		}
		printResult(*result)
		return nil
	}

	rows, err := repo.ListRecent(historyLimit)
	if err != nil {
		return err
	}

	headingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	fmt.Println(headingStyle.Render(fmt.Sprintf("Recent calculations (%d)", len(rows))))
	for _, row := range rows {
		status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("ok")
		if !row.Success {
			status = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("failed")
		}
		fmt.Printf("  %s  %-12s %-8s recs=%-4d %s\n",
			row.CreatedAt.Format("2006-01-02 15:04:05"), row.AlgorithmUsed, status, row.RecommendCount, row.ID)
	}
	return nil
}
