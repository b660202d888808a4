package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-hockey-metrics/internal/report"
)

var (
	summaryTop   int
	summaryGames []int64
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about all games stored in the database:
game count, date range, team totals ranked by xG share, and the top players
by xG for (optionally restricted to some games).`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().IntVar(&summaryTop, "top", 15, "number of players to list")
	summaryCmd.Flags().Int64SliceVar(&summaryGames, "game", nil, "restrict player totals to these game ids")
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ov, err := db.GetOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.Games == 0 {
		fmt.Fprintln(os.Stdout, "No games stored yet. Run 'hockeymetrics process <game-id>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Games stored  : %d\n", ov.Games)
	fmt.Fprintf(os.Stdout, "  Date range    : %s → %s\n", ov.Earliest, ov.Latest)
	fmt.Fprintf(os.Stdout, "  Teams seen    : %d\n", ov.Teams)
	fmt.Fprintf(os.Stdout, "  Players seen  : %d\n", ov.Players)
	fmt.Fprintf(os.Stdout, "  Events        : %d\n", ov.Events)
	fmt.Fprintf(os.Stdout, "  Shot attempts : %d\n", ov.Shots)
	if ov.SkippedPlays > 0 || ov.Issues > 0 {
		cWarn.Fprintf(os.Stdout, "  Skipped plays : %d\n", ov.SkippedPlays)
		cWarn.Fprintf(os.Stdout, "  Issues        : %d\n", ov.Issues)
	}

	teamTotals, err := db.GetTeamTotals()
	if err != nil {
		return fmt.Errorf("get team totals: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Teams ---\n\n")
	report.PrintTeamTotals(os.Stdout, teamTotals)

	players, err := db.GetPlayerTotals(summaryGames, summaryTop)
	if err != nil {
		return fmt.Errorf("get player totals: %w", err)
	}
	teams, err := db.GetTeams()
	if err != nil {
		return fmt.Errorf("get teams: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Top Players by xGF ---\n\n")
	report.PrintPlayerTotals(os.Stdout, players, teams)
	return nil
}
