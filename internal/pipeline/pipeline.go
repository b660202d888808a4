// Package pipeline runs one game from raw provider documents to the full
// set of output tables.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-hockey-metrics/internal/aggregator"
	"github.com/pable/go-hockey-metrics/internal/annotator"
	"github.com/pable/go-hockey-metrics/internal/logging"
	"github.com/pable/go-hockey-metrics/internal/metrics"
	"github.com/pable/go-hockey-metrics/internal/model"
	"github.com/pable/go-hockey-metrics/internal/parser"
	"github.com/pable/go-hockey-metrics/internal/shifts"
	"github.com/pable/go-hockey-metrics/internal/xg"
)

var (
	// ErrToleranceExceeded means a game dropped more malformed records than
	// Options.MaxSkipped allows.
	ErrToleranceExceeded = errors.New("skipped record tolerance exceeded")
	// ErrGameNotFinal means the boxscore has no final score yet.
	ErrGameNotFinal = errors.New("game is not final")
)

// Source fetches the raw documents for a game.
type Source interface {
	FetchPlayByPlay(ctx context.Context, gameID int64) ([]byte, error)
	FetchShiftChart(ctx context.Context, gameID int64) ([]byte, error)
	FetchBoxscore(ctx context.Context, gameID int64) ([]byte, error)
}

// Sink persists a finished game. SaveGame must be atomic per game.
type Sink interface {
	SaveGame(ctx context.Context, r *Result) error
}

// MultiSink fans a result out to several sinks in order, stopping at the
// first error. Each sink is atomic on its own but the fan-out is not: a
// failure leaves earlier sinks written. Put sinks that a rerun overwrites
// first and the one that records completion last.
type MultiSink []Sink

func (m MultiSink) SaveGame(ctx context.Context, r *Result) error {
	for _, s := range m {
		if err := s.SaveGame(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Options controls record-level tolerance.
type Options struct {
	Strict       bool
	MaxSkipped   int
	KeepShootout bool
}

// Pipeline wires the collaborators for a run. Hands and Sink may be nil.
type Pipeline struct {
	Source  Source
	Model   xg.Model
	Hands   xg.HandLookup
	Sink    Sink
	Options Options
}

// Result is every table produced for one game.
type Result struct {
	RunID         string
	Summary       model.GameSummary
	Teams         []model.Team
	Players       []model.Player
	Events        []model.AnnotatedEvent
	Shots         []model.ShotRow
	Shifts        []model.ShiftInterval
	TOI           []model.TOIRow
	PlayerPeriods []model.PlayerPeriodStats
	Shooters      []model.ShooterAttempts
	Skaters       []model.SkaterBox
	Goalies       []model.GoalieBox
	Issues        []model.Issue
	Stats         parser.Stats
}

type documents struct {
	pbp, shifts, box []byte
}

// fetch pulls the three documents concurrently.
func (p *Pipeline) fetch(ctx context.Context, gameID int64) (*documents, error) {
	var docs documents
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		docs.pbp, err = p.Source.FetchPlayByPlay(ctx, gameID)
		return err
	})
	g.Go(func() (err error) {
		docs.shifts, err = p.Source.FetchShiftChart(ctx, gameID)
		return err
	})
	g.Go(func() (err error) {
		docs.box, err = p.Source.FetchBoxscore(ctx, gameID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch game %d: %w", gameID, err)
	}
	return &docs, nil
}

// Run processes one game and hands the result to the sink.
func (p *Pipeline) Run(ctx context.Context, gameID int64) (*Result, error) {
	res, err := p.run(ctx, gameID)
	if err != nil {
		metrics.GamesProcessed.WithLabelValues("failed").Inc()
		return nil, err
	}
	metrics.GamesProcessed.WithLabelValues("ok").Inc()
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, gameID int64) (*Result, error) {
	if p.Source == nil || p.Model == nil {
		return nil, errors.New("pipeline: source and model are required")
	}
	runID := uuid.NewString()
	log := logging.With().Str("run_id", runID).Int64("game", gameID).Logger()

	docs, err := p.fetch(ctx, gameID)
	if err != nil {
		return nil, err
	}

	box, err := parser.ParseBoxscore(docs.box)
	if err != nil {
		return nil, fmt.Errorf("game %d: %w", gameID, err)
	}
	if !box.Final() {
		return nil, fmt.Errorf("game %d (%s): %w", gameID, box.GameState, ErrGameNotFinal)
	}

	game, err := parser.ParsePlayByPlay(docs.pbp, parser.Options{Strict: p.Options.Strict, KeepShootout: p.Options.KeepShootout})
	if err != nil {
		return nil, fmt.Errorf("game %d: %w", gameID, err)
	}
	if game.GameID != gameID {
		return nil, fmt.Errorf("game %d: provider returned play-by-play for game %d", gameID, game.GameID)
	}

	rawShifts, err := parser.ParseShiftChart(docs.shifts)
	if err != nil {
		return nil, fmt.Errorf("game %d: %w", gameID, err)
	}
	intervals, badShifts, err := shifts.Build(rawShifts, p.Options.Strict)
	if err != nil {
		return nil, fmt.Errorf("game %d: %w", gameID, err)
	}
	if len(badShifts) > 0 {
		game.Stats.Skipped[shifts.ReasonMalformedShift] += len(badShifts)
		for _, bad := range badShifts {
			log.Debug().Err(bad).Msg("shift row skipped")
		}
	}

	publishStats(game.Stats)
	if n := game.Stats.SkippedTotal(); n > p.Options.MaxSkipped {
		return nil, fmt.Errorf("game %d: %d records skipped, limit %d: %w", gameID, n, p.Options.MaxSkipped, ErrToleranceExceeded)
	}
	if n := game.Stats.SkippedTotal(); n > 0 {
		log.Warn().Int("skipped", n).Interface("reasons", game.Stats.Skipped).Msg("malformed records skipped")
	}

	resolver := shifts.Resolver{Index: shifts.NewIndex(intervals), HomeID: game.Home.ID, AwayID: game.Away.ID}

	annotated := annotator.Annotate(game.Events)
	hands := p.lookupHands(ctx, log, annotated)

	var (
		attempts []aggregator.Attempt
		shots    []model.ShotRow
	)
	for _, ev := range annotated {
		if !ev.Kind().IsShotFamily() {
			continue
		}
		onIce := resolver.Resolve(ev.Clock)
		f := xg.BuildFeatures(ev, hands, game.HomeDefendingSide[ev.Period], game.Home.ID)
		prob, err := p.Model.Predict(f)
		if err != nil {
			return nil, fmt.Errorf("game %d event %d: %w", gameID, ev.EventID, err)
		}
		metrics.ExpectedGoals.Observe(prob)
		attempts = append(attempts, aggregator.Attempt{Event: ev, OnIce: onIce, XG: prob, HasXG: true})
		shots = append(shots, shotRow(ev, f, onIce, prob))
	}

	agg, err := aggregator.Aggregate(aggregator.Input{
		GameID:   gameID,
		HomeID:   game.Home.ID,
		AwayID:   game.Away.ID,
		Players:  game.Players,
		Attempts: attempts,
		Shifts:   intervals,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:         runID,
		Summary:       summarize(runID, game, box, agg),
		Teams:         []model.Team{game.Away, game.Home},
		Players:       game.Players,
		Events:        annotated,
		Shots:         shots,
		Shifts:        intervals,
		TOI:           agg.TOI,
		PlayerPeriods: agg.PlayerPeriods,
		Shooters:      agg.Shooters,
		Skaters:       box.Skaters(),
		Goalies:       box.Goalies(),
		Issues:        append(append([]model.Issue{}, game.Issues...), agg.Issues...),
		Stats:         game.Stats,
	}
	for _, is := range res.Issues {
		metrics.ConsistencyIssues.WithLabelValues(string(is.Kind)).Inc()
		log.Warn().Str("kind", string(is.Kind)).Int64("player", is.PlayerID).Int64("event", is.EventID).
			Msg(is.Detail)
	}

	if p.Sink != nil {
		if err := p.Sink.SaveGame(ctx, res); err != nil {
			return nil, fmt.Errorf("save game %d: %w", gameID, err)
		}
	}
	log.Info().Int("events", len(res.Events)).Int("shots", len(res.Shots)).
		Int("rows", len(res.PlayerPeriods)).Msg("game processed")
	return res, nil
}

// lookupHands resolves shooter and goalie hands. A failed lookup leaves the
// hand unknown and is logged; it never fails the game.
func (p *Pipeline) lookupHands(ctx context.Context, log zerolog.Logger, events []model.AnnotatedEvent) xg.Hands {
	hands := make(xg.Hands)
	if p.Hands == nil {
		return hands
	}
	ids := make(map[int64]bool)
	for _, ev := range events {
		if shooter, ok := ev.Shooter(); ok {
			ids[shooter] = true
		}
		if g := ev.Goalie(); g.Valid {
			ids[g.ID] = true
		}
	}
	sorted := make([]int64, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	failed := 0
	for _, id := range sorted {
		h, err := p.Hands.Hand(ctx, id)
		if err != nil {
			failed++
			log.Debug().Err(err).Int64("player", id).Msg("hand lookup failed")
			continue
		}
		hands[id] = h
	}
	if failed > 0 {
		log.Warn().Int("failed", failed).Int("players", len(sorted)).Msg("hand lookups failed; treated as unknown")
	}
	return hands
}

func shotRow(ev model.AnnotatedEvent, f xg.Features, onIce model.OnIce, prob float64) model.ShotRow {
	shooter, _ := ev.Shooter()
	return model.ShotRow{
		GameID:       ev.GameID,
		EventID:      ev.EventID,
		Period:       ev.Period,
		PeriodClock:  ev.PeriodClock,
		Clock:        ev.Clock,
		Kind:         ev.Kind(),
		TeamID:       ev.OwnerTeamID,
		ShooterID:    shooter,
		GoalieID:     ev.Goalie(),
		ShotType:     ev.ShotType(),
		Zone:         ev.Zone,
		Situation:    ev.Situation.Code(),
		X:            f.X,
		Y:            f.Y,
		HasLocation:  f.HasLocation,
		Distance:     f.Distance,
		Angle:        f.Angle,
		Rebound:      ev.Context.Rebound,
		Rush:         ev.Context.Rush,
		LastPlayKind: ev.Context.LastPlayKind,
		XG:           prob,
		HomeOnIce:    onIce.Home,
		AwayOnIce:    onIce.Away,
	}
}

func summarize(runID string, g *parser.Game, box *parser.Boxscore, agg *aggregator.Output) model.GameSummary {
	away, home := box.Scores()
	s := model.GameSummary{
		GameID:       g.GameID,
		RunID:        runID,
		Season:       g.Season,
		GameType:     g.GameType,
		Date:         g.Date,
		AwayTeamID:   g.Away.ID,
		HomeTeamID:   g.Home.ID,
		AwayScore:    away,
		HomeScore:    home,
		LastPeriod:   model.PeriodType(box.PeriodDescriptor.PeriodType),
		PeriodGoals:  agg.PeriodGoals,
		AwayXG:       agg.AwayXG,
		HomeXG:       agg.HomeXG,
		AwayCorsi:    agg.AwayCorsi,
		HomeCorsi:    agg.HomeCorsi,
		EventCount:   len(g.Events),
		SkippedCount: g.Stats.SkippedTotal(),
	}
	// Final scores include the shootout goal, so a final game is never tied.
	if home > away {
		s.WinnerID, s.LoserID = g.Home.ID, g.Away.ID
	} else {
		s.WinnerID, s.LoserID = g.Away.ID, g.Home.ID
	}
	return s
}

func publishStats(st parser.Stats) {
	for reason, n := range st.Skipped {
		metrics.RecordsSkipped.WithLabelValues(reason).Add(float64(n))
	}
	metrics.RecordsSkipped.WithLabelValues("administrative").Add(float64(st.Administrative))
	metrics.RecordsSkipped.WithLabelValues("shootout").Add(float64(st.Shootout))
}

// BatchResult is the outcome of one game in a batch.
type BatchResult struct {
	GameID int64
	Result *Result
	Err    error
}

// RunBatch processes games with at most workers in flight. A failed game
// does not stop the others; results are returned in input order.
func (p *Pipeline) RunBatch(ctx context.Context, gameIDs []int64, workers int) []BatchResult {
	if workers < 1 {
		workers = 1
	}
	results := make([]BatchResult, len(gameIDs))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, id := range gameIDs {
		g.Go(func() error {
			res, err := p.Run(ctx, id)
			if err != nil {
				logging.Error().Err(err).Int64("game", id).Msg("game failed")
			}
			results[i] = BatchResult{GameID: id, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
