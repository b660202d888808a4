package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-hockey-metrics/internal/report"
	"github.com/pable/go-hockey-metrics/internal/storage"
)

var (
	showPlayerID int64
	showShots    bool
)

var showCmd = &cobra.Command{
	Use:   "show <game-id>",
	Short: "Show a stored game's per-player, per-period metrics",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().Int64Var(&showPlayerID, "player", 0, "highlight player id")
	showCmd.Flags().BoolVar(&showShots, "shots", false, "also list every shot attempt")
}

func runShow(cmd *cobra.Command, args []string) error {
	gameID, err := parseGameID(args[0])
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	return printGame(os.Stdout, db, gameID, showPlayerID, showShots)
}

// printGame renders a stored game. Shared with the shell.
func printGame(w io.Writer, db *storage.DB, gameID, focusID int64, shots bool) error {
	game, err := db.GetGame(gameID)
	if err != nil {
		return fmt.Errorf("query game: %w", err)
	}
	if game == nil {
		fmt.Fprintf(os.Stderr, "No game %d stored\n", gameID)
		return nil
	}
	teams, err := db.GetTeams()
	if err != nil {
		return fmt.Errorf("get teams: %w", err)
	}
	rows, err := db.GetPlayerPeriods(gameID)
	if err != nil {
		return fmt.Errorf("get player periods: %w", err)
	}
	issues, err := db.GetIssues(gameID)
	if err != nil {
		return fmt.Errorf("get issues: %w", err)
	}

	report.PrintGameSummary(w, *game, teams)
	fmt.Fprintln(w)
	report.PrintPlayerPeriodTable(w, rows, teams, focusID)

	if shots {
		list, err := db.GetShots(gameID)
		if err != nil {
			return fmt.Errorf("get shots: %w", err)
		}
		names := make(map[int64]string, len(rows))
		for _, r := range rows {
			names[r.PlayerID] = r.Name
		}
		fmt.Fprintln(w)
		report.PrintShotTable(w, list, teams, names)
	}
	report.PrintIssues(w, issues)
	return nil
}
