package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pable/go-hockey-metrics/internal/export"
	"github.com/pable/go-hockey-metrics/internal/storage"
)

var (
	exportOut    string
	exportGzip   bool
	exportTables []string
)

var exportCmd = &cobra.Command{
	Use:   "export <game-id> [<game-id>...]",
	Short: "Write a stored game's tables as CSV files",
	Long: `Export every stored table of one or more games as <game>_<table>.csv files,
ready for a spreadsheet or BI tool.

Examples:
  hockeymetrics export 2024020500 --out ./csv
  hockeymetrics export 2024020500 --table shots --table player_periods --gzip`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", ".", "output directory")
	exportCmd.Flags().BoolVar(&exportGzip, "gzip", false, "write .csv.gz files")
	exportCmd.Flags().StringSliceVar(&exportTables, "table", nil, "only export these tables (default all)")
}

func runExport(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	names := exportTables
	if len(names) == 0 {
		names = storage.ExportTables
	}
	w := export.Writer{Dir: exportOut, Gzip: exportGzip}

	for _, a := range args {
		gameID, err := parseGameID(a)
		if err != nil {
			return err
		}
		exists, err := db.GameExists(gameID)
		if err != nil {
			return err
		}
		if !exists {
			cWarn.Printf("  [skip] %d not stored\n", gameID)
			continue
		}

		tables := make([]export.Table, 0, len(names))
		for _, name := range names {
			cols, rows, err := db.TableRows(name, gameID)
			if err != nil {
				return fmt.Errorf("read %s: %w", name, err)
			}
			tables = append(tables, export.Table{Name: name, Header: cols, Rows: rows})
		}
		paths, err := w.WriteTables(gameID, tables)
		if err != nil {
			return err
		}
		fmt.Printf("%d: wrote %d files to %s\n", gameID, len(paths), exportOut)
	}
	return nil
}
