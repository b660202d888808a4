package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/go-hockey-metrics/internal/report"
	"github.com/pable/go-hockey-metrics/internal/storage"
)

var playerCmd = &cobra.Command{
	Use:   "player <player-id> [<player-id>...]",
	Short: "Chronological per-game trend for one or more players",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlayer,
}

func runPlayer(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid player id %q: %w", a, err)
		}
		if err := printPlayerTrend(os.Stdout, db, id); err != nil {
			return err
		}
	}
	return nil
}

// printPlayerTrend renders one player's per-game lines. Shared with the shell.
func printPlayerTrend(w io.Writer, db *storage.DB, playerID int64) error {
	games, err := db.GetPlayerGames(playerID)
	if err != nil {
		return fmt.Errorf("query player games: %w", err)
	}
	if len(games) == 0 {
		fmt.Fprintf(os.Stderr, "no games found for player %d\n", playerID)
		return nil
	}
	teams, err := db.GetTeams()
	if err != nil {
		return fmt.Errorf("get teams: %w", err)
	}

	name, err := db.GetPlayerName(playerID)
	if err != nil {
		return fmt.Errorf("get player name: %w", err)
	}
	if name == "" {
		name = strconv.FormatInt(playerID, 10)
	}

	fmt.Fprintln(w)
	cHeader.Fprintf(w, "--- %s (%d games) ---\n", name, len(games))
	report.PrintPlayerTrend(w, games, teams)
	return nil
}
