// Package export writes per-game tables as CSV files.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/gzip"

	"github.com/pable/go-hockey-metrics/internal/model"
	"github.com/pable/go-hockey-metrics/internal/pipeline"
)

// Table is one named CSV document.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Writer writes tables under Dir as <game>_<table>.csv, or .csv.gz when Gzip is set.
type Writer struct {
	Dir  string
	Gzip bool
}

// WriteTables writes every table for a game and returns the written paths.
func (w Writer) WriteTables(gameID int64, tables []Table) ([]string, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	var paths []string
	for _, t := range tables {
		name := fmt.Sprintf("%d_%s.csv", gameID, t.Name)
		if w.Gzip {
			name += ".gz"
		}
		path := filepath.Join(w.Dir, name)
		if err := w.writeFile(path, t); err != nil {
			return paths, fmt.Errorf("write %s: %w", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (w Writer) writeFile(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var out io.Writer = f
	var gz *gzip.Writer
	if w.Gzip {
		gz = gzip.NewWriter(f)
		out = gz
	}
	if err := WriteCSV(out, t); err != nil {
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return err
		}
	}
	return f.Close()
}

// WriteCSV writes a header row followed by the table rows.
func WriteCSV(out io.Writer, t Table) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return err
	}
	return cw.Error()
}

// SaveGame writes the analytic tables of a processed game.
func (w Writer) SaveGame(_ context.Context, r *pipeline.Result) error {
	_, err := w.WriteTables(r.Summary.GameID, ResultTables(r))
	return err
}

// ResultTables converts a processed game into its output tables. Undefined
// percentages are written as empty cells.
func ResultTables(r *pipeline.Result) []Table {
	return []Table{
		summaryTable(r.Summary),
		playerPeriodTable(r.PlayerPeriods),
		shotTable(r.Shots),
		toiTable(r.TOI),
		shooterTable(r.Shooters),
		issueTable(r.Issues),
	}
}

func summaryTable(s model.GameSummary) Table {
	t := Table{
		Name:   "summary",
		Header: []string{"game_id", "run_id", "date", "away_team_id", "home_team_id", "away_score", "home_score", "winner_id", "loser_id", "last_period", "period", "away_goals", "home_goals"},
	}
	for _, pg := range s.PeriodGoals {
		t.Rows = append(t.Rows, []string{
			i64(s.GameID), s.RunID, s.Date, i64(s.AwayTeamID), i64(s.HomeTeamID),
			strconv.Itoa(s.AwayScore), strconv.Itoa(s.HomeScore), i64(s.WinnerID), i64(s.LoserID),
			string(s.LastPeriod), strconv.Itoa(pg.Period), strconv.Itoa(pg.Away), strconv.Itoa(pg.Home),
		})
	}
	return t
}

func playerPeriodTable(rows []model.PlayerPeriodStats) Table {
	t := Table{
		Name:   "player_periods",
		Header: []string{"game_id", "player_id", "name", "team_id", "position", "period", "xgf", "xga", "xgf_pct", "cf", "ca", "cf_pct", "shot_attempts", "toi_seconds"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			i64(r.GameID), i64(r.PlayerID), r.Name, i64(r.TeamID), r.Position, strconv.Itoa(r.Period),
			f64(r.XGFor), f64(r.XGAgainst), pct(r.XGForPct()),
			strconv.Itoa(r.CorsiFor), strconv.Itoa(r.CorsiAgainst), pct(r.CorsiForPct()),
			strconv.Itoa(r.ShotAttempts), strconv.Itoa(r.TOISeconds),
		})
	}
	return t
}

func shotTable(shots []model.ShotRow) Table {
	t := Table{
		Name:   "shots",
		Header: []string{"game_id", "event_id", "period", "period_clock", "kind", "team_id", "shooter_id", "goalie_id", "shot_type", "zone", "situation", "x", "y", "distance", "angle", "rebound", "rush", "last_play", "xg"},
	}
	for _, s := range shots {
		x, y, dist, angle := "", "", "", ""
		if s.HasLocation {
			x, y = f64(s.X), f64(s.Y)
			dist, angle = f64(s.Distance), f64(s.Angle)
		}
		goalie := ""
		if s.GoalieID.Valid {
			goalie = i64(s.GoalieID.ID)
		}
		t.Rows = append(t.Rows, []string{
			i64(s.GameID), i64(s.EventID), strconv.Itoa(s.Period), s.PeriodClock, s.Kind.String(),
			i64(s.TeamID), i64(s.ShooterID), goalie, s.ShotType, s.Zone.String(), s.Situation,
			x, y, dist, angle, strconv.FormatBool(s.Rebound), strconv.FormatBool(s.Rush),
			s.LastPlayKind.String(), f64(s.XG),
		})
	}
	return t
}

func toiTable(rows []model.TOIRow) Table {
	t := Table{
		Name:   "toi",
		Header: []string{"game_id", "player_id", "name", "team_id", "period", "shifts", "toi_seconds"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			i64(r.GameID), i64(r.PlayerID), r.Name, i64(r.TeamID),
			strconv.Itoa(r.Period), strconv.Itoa(r.Shifts), strconv.Itoa(r.TOISeconds),
		})
	}
	return t
}

func shooterTable(rows []model.ShooterAttempts) Table {
	t := Table{Name: "shooters", Header: []string{"player_id", "period", "attempts"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{i64(r.PlayerID), strconv.Itoa(r.Period), strconv.Itoa(r.Attempts)})
	}
	return t
}

func issueTable(issues []model.Issue) Table {
	t := Table{Name: "issues", Header: []string{"game_id", "kind", "player_id", "period", "event_id", "detail"}}
	for _, is := range issues {
		t.Rows = append(t.Rows, []string{
			i64(is.GameID), string(is.Kind), i64(is.PlayerID), strconv.Itoa(is.Period), i64(is.EventID), is.Detail,
		})
	}
	return t
}

func i64(v int64) string { return strconv.FormatInt(v, 10) }

func f64(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func pct(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return f64(v)
}
