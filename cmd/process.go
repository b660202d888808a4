package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-hockey-metrics/internal/export"
	"github.com/pable/go-hockey-metrics/internal/pipeline"
	"github.com/pable/go-hockey-metrics/internal/provider"
	"github.com/pable/go-hockey-metrics/internal/storage"
	"github.com/pable/go-hockey-metrics/internal/xg"
)

var (
	cOK    = color.New(color.FgGreen)
	cFail  = color.New(color.FgRed, color.Bold)
	cSkip  = color.New(color.Faint)
	cIssue = color.New(color.FgYellow)
)

// process command flags.
var (
	processWorkers      int
	processStrict       bool
	processMaxSkipped   int
	processKeepShootout bool
	processNoCache      bool
	processNoHands      bool
	processForce        bool
	processCSVDir       string
	processGzip         bool
)

var processCmd = &cobra.Command{
	Use:   "process <game-id> [<game-id>...]",
	Short: "Fetch, analyze and store one or more games",
	Long: `Fetches the play-by-play, shift chart and boxscore for each game, computes
shot quality and per-player, per-period metrics, and stores every table.
Games already stored are skipped unless --force is given.

Examples:
  hockeymetrics process 2024020500
  hockeymetrics process 2024020500 2024020501 --workers 4 --csv ./out`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().IntVar(&processWorkers, "workers", 0, "games processed concurrently (default from config)")
	processCmd.Flags().BoolVar(&processStrict, "strict", false, "fail a game on the first malformed play")
	processCmd.Flags().IntVar(&processMaxSkipped, "max-skipped", -1, "malformed plays tolerated per game (default from config)")
	processCmd.Flags().BoolVar(&processKeepShootout, "keep-shootout", false, "keep shootout attempts in the event stream")
	processCmd.Flags().BoolVar(&processNoCache, "no-cache", false, "do not read or write the document cache")
	processCmd.Flags().BoolVar(&processNoHands, "no-hands", false, "skip shooter/goalie handedness lookups")
	processCmd.Flags().BoolVarP(&processForce, "force", "f", false, "re-process games that are already stored")
	processCmd.Flags().StringVar(&processCSVDir, "csv", "", "also write CSV tables to this directory")
	processCmd.Flags().BoolVar(&processGzip, "gzip", false, "gzip the CSV tables")
}

func runProcess(cmd *cobra.Command, args []string) error {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseGameID(a)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if !processForce {
		ids, err = pendingGames(db, ids)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("All games already stored. Use --force to re-process.")
			return nil
		}
	}

	p, closeFn, err := buildPipeline(db)
	if err != nil {
		return err
	}
	defer closeFn()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	workers := processWorkers
	if workers <= 0 {
		workers = cfg.Workers
	}
	results := p.RunBatch(ctx, ids, workers)

	failed := 0
	for _, br := range results {
		printBatchResult(br)
		if br.Err != nil {
			failed++
		}
	}
	fmt.Printf("\nDone: %d/%d games stored", len(results)-failed, len(results))
	if processCSVDir != "" {
		fmt.Printf(", CSV in %s", processCSVDir)
	}
	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("%d game(s) failed", failed)
	}
	return nil
}

// pendingGames drops ids that are already stored.
func pendingGames(db *storage.DB, ids []int64) ([]int64, error) {
	var out []int64
	for _, id := range ids {
		exists, err := db.GameExists(id)
		if err != nil {
			return nil, err
		}
		if exists {
			cSkip.Printf("  [skip] %d already stored\n", id)
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

// buildPipeline wires the provider, model and sinks from the loaded config.
func buildPipeline(db *storage.DB) (*pipeline.Pipeline, func(), error) {
	var cache *provider.Cache
	if !processNoCache && cfg.CacheDir != "" {
		c, err := provider.NewCache(cfg.CacheDir)
		if err != nil {
			return nil, nil, err
		}
		cache = c
	}
	closeFn := func() {
		if cache != nil {
			cache.Close()
		}
	}

	client := provider.NewClient(provider.Config{
		WebBaseURL:   cfg.Provider.WebBaseURL,
		StatsBaseURL: cfg.Provider.StatsBaseURL,
		Timeout:      cfg.Provider.Timeout,
		RPS:          cfg.Provider.RPS,
		Burst:        cfg.Provider.Burst,
		Cache:        cache,
	})

	model, err := loadModel()
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	opts := pipeline.Options{
		Strict:       processStrict || cfg.Pipeline.Strict,
		MaxSkipped:   cfg.Pipeline.MaxSkipped,
		KeepShootout: processKeepShootout,
	}
	if processMaxSkipped >= 0 {
		opts.MaxSkipped = processMaxSkipped
	}

	p := &pipeline.Pipeline{
		Source:  client,
		Model:   model,
		Sink:    resultSink(db, processCSVDir, processGzip),
		Options: opts,
	}
	if cfg.Provider.FetchHands && !processNoHands {
		p.Hands = client
	}
	return p, closeFn, nil
}

// resultSink writes CSV files before the database so that a failed export
// leaves the game unrecorded and a rerun retries both.
func resultSink(db *storage.DB, csvDir string, gzip bool) pipeline.Sink {
	if csvDir == "" {
		return db
	}
	return pipeline.MultiSink{export.Writer{Dir: csvDir, Gzip: gzip}, db}
}

func loadModel() (*xg.Logistic, error) {
	if cfg.Model.Path == "" {
		return xg.DefaultLogistic()
	}
	m, err := xg.LoadLogistic(cfg.Model.Path)
	if err != nil {
		return nil, fmt.Errorf("load xG model: %w", err)
	}
	return m, nil
}

func printBatchResult(br pipeline.BatchResult) {
	if br.Err != nil {
		reason := br.Err.Error()
		var se *provider.StatusError
		switch {
		case errors.Is(br.Err, pipeline.ErrGameNotFinal):
			reason = "game is not final yet"
		case errors.As(br.Err, &se) && se.NotFound():
			reason = "no such game"
		case errors.Is(br.Err, context.Canceled):
			reason = "interrupted"
		}
		cFail.Printf("  [error] %d: ", br.GameID)
		fmt.Println(reason)
		return
	}
	s := br.Result.Summary
	cOK.Printf("  [ok] %d", br.GameID)
	fmt.Printf("  %s  %d-%d  xG %.2f-%.2f  events=%d", s.Date, s.AwayScore, s.HomeScore, s.AwayXG, s.HomeXG, s.EventCount)
	if s.SkippedCount > 0 {
		cIssue.Printf("  skipped=%d", s.SkippedCount)
	}
	if n := len(br.Result.Issues); n > 0 {
		cIssue.Printf("  issues=%d", n)
	}
	fmt.Println()
}
