package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dropForce bool
	dropGames []int64
)

// dropCmd deletes stored games or the whole metrics database file.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete stored games or the whole metrics database",
	Long: `With --game, delete the rows of the given games. Without it, permanently
delete the SQLite metrics database. Re-process your games afterwards to rebuild.`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().Int64SliceVar(&dropGames, "game", nil, "only delete these game ids")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if len(dropGames) > 0 {
		return dropStoredGames(dropGames)
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(dbPath + suffix)
	}
	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}

func dropStoredGames(ids []int64) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	for _, id := range ids {
		exists, err := db.GameExists(id)
		if err != nil {
			return err
		}
		if !exists {
			cWarn.Printf("  [skip] %d not stored\n", id)
			continue
		}
		if err := db.DeleteGame(id); err != nil {
			return fmt.Errorf("delete game %d: %w", id, err)
		}
		fmt.Printf("Deleted game %d\n", id)
	}
	return nil
}
