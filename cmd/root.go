package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/go-hockey-metrics/internal/config"
	"github.com/pable/go-hockey-metrics/internal/logging"
	"github.com/pable/go-hockey-metrics/internal/metrics"
	"github.com/pable/go-hockey-metrics/internal/storage"
)

var (
	dbPath     string
	configPath string
	logLevel   string

	// cfg is loaded before every command runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "hockeymetrics",
	Short: "NHL game event-stream metrics tool",
	Long: `Fetch NHL play-by-play, shift charts and boxscores, compute shot quality,
Corsi and on-ice credit per player and period, and store the results in SQLite.`,
	SilenceUsage:       true,
	PersistentPreRunE:  loadConfig,
	PersistentPostRunE: writeMetrics,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (default ~/.hockeymetrics/metrics.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $HOCKEYMETRICS_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "trace, debug, info, warn, error or disabled")

	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(shellCmd)
}

// loadConfig layers flags over the file and environment config.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		c.DBPath = dbPath
	}
	if logLevel != "" {
		if !logging.ValidLevel(logLevel) {
			return fmt.Errorf("invalid --log-level %q", logLevel)
		}
		c.Log.Level = logLevel
	}
	logging.Init(logging.Config{Level: c.Log.Level, Format: c.Log.Format})
	cfg = c
	dbPath = c.DBPath
	return nil
}

func writeMetrics(cmd *cobra.Command, args []string) error {
	if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

func parseGameID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid game id %q", s)
	}
	return id, nil
}
