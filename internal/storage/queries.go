package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/pable/go-hockey-metrics/internal/model"
	"github.com/pable/go-hockey-metrics/internal/pipeline"
)

// gameTables are cleared before a game is re-saved.
var gameTables = []string{
	"period_goals", "players", "events", "shots", "shifts", "toi",
	"player_periods", "shooters", "skater_box", "goalie_box", "issues",
}

// GameExists returns true if the game has been processed and stored.
func (db *DB) GameExists(gameID int64) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM games WHERE game_id = ?", gameID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SaveGame writes every table of a processed game in one transaction.
// Re-saving a game replaces all of its rows.
func (db *DB) SaveGame(ctx context.Context, r *pipeline.Result) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	gameID := r.Summary.GameID
	for _, table := range gameTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE game_id = ?", gameID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	steps := []struct {
		name string
		fn   func(context.Context, *sql.Tx, *pipeline.Result) error
	}{
		{"teams", insertTeams},
		{"games", insertGame},
		{"players", insertPlayers},
		{"events", insertEvents},
		{"shots", insertShots},
		{"shifts", insertShifts},
		{"toi", insertTOI},
		{"player_periods", insertPlayerPeriods},
		{"shooters", insertShooters},
		{"skater_box", insertSkaterBox},
		{"goalie_box", insertGoalieBox},
		{"issues", insertIssues},
	}
	for _, s := range steps {
		if err := s.fn(ctx, tx, r); err != nil {
			return fmt.Errorf("insert %s for game %d: %w", s.name, gameID, err)
		}
	}
	return tx.Commit()
}

func insertTeams(ctx context.Context, tx *sql.Tx, r *pipeline.Result) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO teams(team_id, abbrev, city, name, conference, division)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range r.Teams {
		if _, err := stmt.ExecContext(ctx, t.ID, t.Abbrev, t.City, t.Name, t.Conference, t.Division); err != nil {
			return err
		}
	}
	return nil
}

func insertGame(ctx context.Context, tx *sql.Tx, r *pipeline.Result) error {
	s := r.Summary
	_, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO games(
			game_id, run_id, season, game_type, game_date,
			away_team_id, home_team_id, away_score, home_score, winner_id, loser_id,
			last_period, away_xg, home_xg, away_corsi, home_corsi,
			event_count, skipped_count
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.GameID, s.RunID, s.Season, s.GameType, s.Date,
		s.AwayTeamID, s.HomeTeamID, s.AwayScore, s.HomeScore, s.WinnerID, s.LoserID,
		string(s.LastPeriod), s.AwayXG, s.HomeXG, s.AwayCorsi, s.HomeCorsi,
		s.EventCount, s.SkippedCount,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO period_goals(game_id, period, away, home) VALUES (?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, pg := range s.PeriodGoals {
		if _, err := stmt.ExecContext(ctx, s.GameID, pg.Period, pg.Away, pg.Home); err != nil {
			return err
		}
	}
	return nil
}

func insertPlayers(ctx context.Context, tx *sql.Tx, r *pipeline.Result) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO players(game_id, player_id, team_id, first_name, last_name, position, jersey)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range r.Players {
		if _, err := stmt.ExecContext(ctx, r.Summary.GameID, p.ID, p.TeamID, p.FirstName, p.LastName, p.Position, p.Jersey); err != nil {
			return fmt.Errorf("player %d: %w", p.ID, err)
		}
	}
	return nil
}

// eventColumns holds the kind-specific columns of the events table.
type eventColumns struct {
	shooter, goalie, assist1, assist2, blocker  any
	hitter, hittee, winner, loser, player       any
	shotType, missReason, penaltyType, severity any
	penaltyMinutes, committedBy, drawnBy        any
}

func detailColumns(d model.Detail) eventColumns {
	var c eventColumns
	switch d := d.(type) {
	case model.FaceoffDetail:
		c.winner, c.loser = d.Winner, d.Loser
	case model.HitDetail:
		c.hitter, c.hittee = d.Hitter, nullID(d.Hittee)
	case model.TurnoverDetail:
		c.player = d.Player
	case model.PenaltyDetail:
		c.penaltyType, c.severity, c.penaltyMinutes = d.Type, d.Severity, d.Minutes
		c.committedBy, c.drawnBy = nullID(d.Committed), nullID(d.Drawn)
	case model.GoalDetail:
		c.shooter, c.goalie, c.shotType = d.Scorer, nullID(d.Goalie), nullString(d.ShotType)
		c.assist1, c.assist2 = nullID(d.Assist1), nullID(d.Assist2)
	case model.MissedShotDetail:
		c.shooter, c.goalie, c.shotType = d.Shooter, nullID(d.Goalie), nullString(d.ShotType)
		c.missReason = nullString(d.Reason)
	case model.BlockedShotDetail:
		c.shooter, c.blocker = d.Shooter, nullID(d.Blocker)
	case model.ShotDetail:
		c.shooter, c.goalie, c.shotType = d.Shooter, nullID(d.Goalie), nullString(d.ShotType)
	}
	return c
}

func insertEvents(ctx context.Context, tx *sql.Tx, r *pipeline.Result) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO events(
			game_id, event_id, period, period_type, period_clock, clock, kind,
			owner_team_id, zone, x, y, situation, last_play_kind, rebound, rush,
			shooter_id, goalie_id, shot_type, miss_reason, assist1_id, assist2_id, blocker_id,
			hitter_id, hittee_id, winner_id, loser_id, player_id,
			penalty_type, penalty_severity, penalty_minutes, committed_by_id, drawn_by_id
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, ev := range r.Events {
		var x, y any
		if ev.Coords != nil {
			x, y = ev.Coords.X, ev.Coords.Y
		}
		c := detailColumns(ev.Detail)
		_, err = stmt.ExecContext(ctx,
			ev.GameID, ev.EventID, ev.Period, string(ev.PeriodType), ev.PeriodClock, ev.Clock, ev.Kind().String(),
			ev.OwnerTeamID, ev.Zone.String(), x, y, ev.Situation.Code(),
			ev.Context.LastPlayKind.String(), boolInt(ev.Context.Rebound), boolInt(ev.Context.Rush),
			c.shooter, c.goalie, c.shotType, c.missReason, c.assist1, c.assist2, c.blocker,
			c.hitter, c.hittee, c.winner, c.loser, c.player,
			c.penaltyType, c.severity, c.penaltyMinutes, c.committedBy, c.drawnBy,
		)
		if err != nil {
			return fmt.Errorf("event %d: %w", ev.EventID, err)
		}
	}
	return nil
}

func insertShots(ctx context.Context, tx *sql.Tx, r *pipeline.Result) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO shots(
			game_id, event_id, period, period_clock, clock, kind, team_id, shooter_id, goalie_id,
			shot_type, zone, situation, x, y, distance, angle, rebound, rush, last_play_kind, xg,
			home_on_ice, away_on_ice
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range r.Shots {
		var x, y any
		if s.HasLocation {
			x, y = s.X, s.Y
		}
		_, err = stmt.ExecContext(ctx,
			s.GameID, s.EventID, s.Period, s.PeriodClock, s.Clock, s.Kind.String(), s.TeamID, s.ShooterID, nullID(s.GoalieID),
			s.ShotType, s.Zone.String(), s.Situation, x, y, s.Distance, s.Angle,
			boolInt(s.Rebound), boolInt(s.Rush), s.LastPlayKind.String(), s.XG,
			JoinIDs(s.HomeOnIce), JoinIDs(s.AwayOnIce),
		)
		if err != nil {
			return fmt.Errorf("shot %d: %w", s.EventID, err)
		}
	}
	return nil
}

func insertShifts(ctx context.Context, tx *sql.Tx, r *pipeline.Result) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO shifts(game_id, player_id, team_id, period, start_s, end_s, duration)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range r.Shifts {
		if _, err := stmt.ExecContext(ctx, r.Summary.GameID, s.PlayerID, s.TeamID, s.Period, s.Start, s.End, s.DurationSeconds); err != nil {
			return err
		}
	}
	return nil
}

func insertTOI(ctx context.Context, tx *sql.Tx, r *pipeline.Result) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO toi(game_id, player_id, period, name, team_id, shifts, toi_seconds)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range r.TOI {
		if _, err := stmt.ExecContext(ctx, t.GameID, t.PlayerID, t.Period, t.Name, t.TeamID, t.Shifts, t.TOISeconds); err != nil {
			return err
		}
	}
	return nil
}

func insertPlayerPeriods(ctx context.Context, tx *sql.Tx, r *pipeline.Result) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO player_periods(
			game_id, player_id, period, name, team_id, position,
			xgf, xga, xgf_pct, cf, ca, cf_pct, shot_attempts, toi_seconds
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range r.PlayerPeriods {
		_, err = stmt.ExecContext(ctx,
			s.GameID, s.PlayerID, s.Period, s.Name, s.TeamID, s.Position,
			s.XGFor, s.XGAgainst, nullPct(s.XGForPct()),
			s.CorsiFor, s.CorsiAgainst, nullPct(s.CorsiForPct()),
			s.ShotAttempts, s.TOISeconds,
		)
		if err != nil {
			return fmt.Errorf("player %d period %d: %w", s.PlayerID, s.Period, err)
		}
	}
	return nil
}

func insertShooters(ctx context.Context, tx *sql.Tx, r *pipeline.Result) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO shooters(game_id, player_id, period, attempts) VALUES (?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range r.Shooters {
		if _, err := stmt.ExecContext(ctx, r.Summary.GameID, s.PlayerID, s.Period, s.Attempts); err != nil {
			return err
		}
	}
	return nil
}

func insertSkaterBox(ctx context.Context, tx *sql.Tx, r *pipeline.Result) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO skater_box(
			game_id, player_id, team_id, name, position, jersey,
			goals, assists, points, plus_minus, pim, hits, power_play_goals, sog,
			blocked_shots, giveaways, takeaways, shifts, toi, faceoff_pct
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range r.Skaters {
		_, err = stmt.ExecContext(ctx,
			s.GameID, s.PlayerID, s.TeamID, s.Name, s.Position, s.Jersey,
			s.Goals, s.Assists, s.Points, s.PlusMinus, s.PIM, s.Hits, s.PowerPlayGoals, s.SOG,
			s.BlockedShots, s.Giveaways, s.Takeaways, s.Shifts, s.TOI, nullFloat(s.FaceoffPct),
		)
		if err != nil {
			return fmt.Errorf("skater %d: %w", s.PlayerID, err)
		}
	}
	return nil
}

func insertGoalieBox(ctx context.Context, tx *sql.Tx, r *pipeline.Result) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO goalie_box(
			game_id, player_id, team_id, name, jersey,
			shots_against, saves, goals_against, save_pct, toi, starter, decision
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, g := range r.Goalies {
		_, err = stmt.ExecContext(ctx,
			g.GameID, g.PlayerID, g.TeamID, g.Name, g.Jersey,
			g.ShotsAgainst, g.Saves, g.GoalsAgainst, nullFloat(g.SavePct), g.TOI, boolInt(g.Starter), g.Decision,
		)
		if err != nil {
			return fmt.Errorf("goalie %d: %w", g.PlayerID, err)
		}
	}
	return nil
}

func insertIssues(ctx context.Context, tx *sql.Tx, r *pipeline.Result) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO issues(game_id, seq, kind, player_id, period, event_id, detail)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, is := range r.Issues {
		_, err = stmt.ExecContext(ctx,
			r.Summary.GameID, i, string(is.Kind), nullInt(is.PlayerID), nullInt(int64(is.Period)), nullInt(is.EventID), is.Detail,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// ListGames returns stored games, newest first.
func (db *DB) ListGames() ([]model.GameListing, error) {
	rows, err := db.conn.Query(`
		SELECT g.game_id, g.game_date, COALESCE(a.abbrev, ''), COALESCE(h.abbrev, ''),
		       g.away_score, g.home_score, g.last_period, g.run_id,
		       (SELECT COUNT(1) FROM issues i WHERE i.game_id = g.game_id)
		FROM games g
		LEFT JOIN teams a ON a.team_id = g.away_team_id
		LEFT JOIN teams h ON h.team_id = g.home_team_id
		ORDER BY g.game_date DESC, g.game_id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.GameListing
	for rows.Next() {
		var g model.GameListing
		if err := rows.Scan(&g.GameID, &g.Date, &g.AwayAbbrev, &g.HomeAbbrev,
			&g.AwayScore, &g.HomeScore, &g.LastPeriod, &g.RunID, &g.Issues); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetGame returns the stored summary for a game, or nil when absent.
func (db *DB) GetGame(gameID int64) (*model.GameSummary, error) {
	var s model.GameSummary
	var lastPeriod string
	err := db.conn.QueryRow(`
		SELECT game_id, run_id, season, game_type, game_date,
		       away_team_id, home_team_id, away_score, home_score, winner_id, loser_id,
		       last_period, away_xg, home_xg, away_corsi, home_corsi, event_count, skipped_count
		FROM games WHERE game_id = ?`, gameID).
		Scan(&s.GameID, &s.RunID, &s.Season, &s.GameType, &s.Date,
			&s.AwayTeamID, &s.HomeTeamID, &s.AwayScore, &s.HomeScore, &s.WinnerID, &s.LoserID,
			&lastPeriod, &s.AwayXG, &s.HomeXG, &s.AwayCorsi, &s.HomeCorsi, &s.EventCount, &s.SkippedCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.LastPeriod = model.PeriodType(lastPeriod)

	rows, err := db.conn.Query(`SELECT period, away, home FROM period_goals WHERE game_id = ? ORDER BY period`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var pg model.PeriodGoals
		if err := rows.Scan(&pg.Period, &pg.Away, &pg.Home); err != nil {
			return nil, err
		}
		s.PeriodGoals = append(s.PeriodGoals, pg)
	}
	return &s, rows.Err()
}

// GetTeams returns the stored teams keyed by id.
func (db *DB) GetTeams() (map[int64]model.Team, error) {
	rows, err := db.conn.Query(`SELECT team_id, abbrev, city, name, conference, division FROM teams`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]model.Team)
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Abbrev, &t.City, &t.Name, &t.Conference, &t.Division); err != nil {
			return nil, err
		}
		out[t.ID] = t
	}
	return out, rows.Err()
}

// GetPlayerPeriods returns the merged per-player, per-period rows of a game.
func (db *DB) GetPlayerPeriods(gameID int64) ([]model.PlayerPeriodStats, error) {
	rows, err := db.conn.Query(`
		SELECT player_id, period, name, team_id, position,
		       xgf, xga, cf, ca, shot_attempts, toi_seconds
		FROM player_periods WHERE game_id = ?
		ORDER BY team_id, name, player_id, period`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerPeriodStats
	for rows.Next() {
		s := model.PlayerPeriodStats{GameID: gameID}
		if err := rows.Scan(&s.PlayerID, &s.Period, &s.Name, &s.TeamID, &s.Position,
			&s.XGFor, &s.XGAgainst, &s.CorsiFor, &s.CorsiAgainst, &s.ShotAttempts, &s.TOISeconds); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetShots returns the shot table of a game in clock order.
func (db *DB) GetShots(gameID int64) ([]model.ShotRow, error) {
	rows, err := db.conn.Query(`
		SELECT event_id, period, period_clock, clock, kind, team_id, shooter_id, goalie_id,
		       shot_type, zone, situation, x, y, distance, angle, rebound, rush, last_play_kind, xg,
		       home_on_ice, away_on_ice
		FROM shots WHERE game_id = ?
		ORDER BY clock, event_id`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ShotRow
	for rows.Next() {
		s := model.ShotRow{GameID: gameID}
		var kind, zone, lastKind, homeIce, awayIce string
		var goalie sql.NullInt64
		var x, y sql.NullFloat64
		var rebound, rush int
		if err := rows.Scan(&s.EventID, &s.Period, &s.PeriodClock, &s.Clock, &kind, &s.TeamID, &s.ShooterID, &goalie,
			&s.ShotType, &zone, &s.Situation, &x, &y, &s.Distance, &s.Angle, &rebound, &rush, &lastKind, &s.XG,
			&homeIce, &awayIce); err != nil {
			return nil, err
		}
		s.Kind, _ = model.ParseKind(kind)
		s.LastPlayKind, _ = model.ParseKind(lastKind)
		s.Zone = model.ParseZone(zone)
		if goalie.Valid {
			s.GoalieID = model.SomePlayer(goalie.Int64)
		}
		if x.Valid && y.Valid {
			s.X, s.Y, s.HasLocation = x.Float64, y.Float64, true
		}
		s.Rebound, s.Rush = rebound != 0, rush != 0
		s.HomeOnIce, s.AwayOnIce = SplitIDs(homeIce), SplitIDs(awayIce)
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetIssues returns the consistency findings recorded for a game.
func (db *DB) GetIssues(gameID int64) ([]model.Issue, error) {
	rows, err := db.conn.Query(`
		SELECT kind, COALESCE(player_id, 0), COALESCE(period, 0), COALESCE(event_id, 0), detail
		FROM issues WHERE game_id = ? ORDER BY seq`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Issue
	for rows.Next() {
		is := model.Issue{GameID: gameID}
		var kind string
		if err := rows.Scan(&kind, &is.PlayerID, &is.Period, &is.EventID, &is.Detail); err != nil {
			return nil, err
		}
		is.Kind = model.IssueKind(kind)
		out = append(out, is)
	}
	return out, rows.Err()
}

// DeleteGame removes a game and all of its rows.
func (db *DB) DeleteGame(gameID int64) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range ExportTables {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE game_id = ?", gameID); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	return db.queryRows("NULL", query)
}

// queryRows stringifies every row, rendering SQL NULL as null.
func (db *DB) queryRows(null, query string, args ...any) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = formatValue(v, null)
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func formatValue(v any, null string) string {
	switch v := v.(type) {
	case nil:
		return null
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// JoinIDs encodes an on-ice roster as a space-separated id list.
func JoinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, " ")
}

// SplitIDs decodes a JoinIDs list. The result is never nil.
func SplitIDs(s string) []int64 {
	out := []int64{}
	for _, f := range strings.Fields(s) {
		if id, err := strconv.ParseInt(f, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullID(p model.OptionalPlayer) any {
	if !p.Valid {
		return nil
	}
	return p.ID
}

func nullInt(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func nullPct(v float64, ok bool) any {
	if !ok {
		return nil
	}
	return v
}

// ExportTables lists the per-game tables in export order.
var ExportTables = append([]string{"games"}, gameTables...)

// TableRows returns the rows of one per-game table for a game. NULL cells
// are empty strings.
func (db *DB) TableRows(table string, gameID int64) ([]string, [][]string, error) {
	known := false
	for _, t := range ExportTables {
		if t == table {
			known = true
			break
		}
	}
	if !known {
		return nil, nil, fmt.Errorf("unknown table %q", table)
	}
	return db.queryRows("", "SELECT * FROM "+table+" WHERE game_id = ?", gameID)
}
