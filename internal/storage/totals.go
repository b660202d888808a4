package storage

import (
	"database/sql"
	"fmt"
	"strings"
)

// Overview is a high-level summary of everything stored.
type Overview struct {
	Games        int
	Earliest     string
	Latest       string
	Teams        int
	Players      int
	Events       int
	Shots        int
	Issues       int
	SkippedPlays int
}

// TeamTotals holds summed game-level stats for one team.
type TeamTotals struct {
	TeamID       int64
	Abbrev       string
	Games        int
	Wins         int
	GoalsFor     int
	GoalsAgainst int
	XGFor        float64
	XGAgainst    float64
	CorsiFor     int
	CorsiAgainst int
}

// PlayerTotals holds summed per-period stats for one player across games.
type PlayerTotals struct {
	PlayerID     int64
	Name         string
	TeamID       int64
	Games        int
	XGFor        float64
	XGAgainst    float64
	CorsiFor     int
	CorsiAgainst int
	ShotAttempts int
	TOISeconds   int
}

// PlayerGame is one game's line for a player, used for trends.
type PlayerGame struct {
	GameID       int64
	Date         string
	TeamID       int64
	XGFor        float64
	XGAgainst    float64
	CorsiFor     int
	CorsiAgainst int
	ShotAttempts int
	TOISeconds   int
}

// GetOverview returns counts and the date range of stored games.
func (db *DB) GetOverview() (Overview, error) {
	var ov Overview
	err := db.conn.QueryRow(`
		SELECT COUNT(1), COALESCE(MIN(game_date), ''), COALESCE(MAX(game_date), ''),
		       COALESCE(SUM(event_count), 0), COALESCE(SUM(skipped_count), 0)
		FROM games`).Scan(&ov.Games, &ov.Earliest, &ov.Latest, &ov.Events, &ov.SkippedPlays)
	if err != nil {
		return ov, err
	}
	counts := []struct {
		dst   *int
		query string
	}{
		{&ov.Teams, `SELECT COUNT(1) FROM teams`},
		{&ov.Players, `SELECT COUNT(DISTINCT player_id) FROM players`},
		{&ov.Shots, `SELECT COUNT(1) FROM shots`},
		{&ov.Issues, `SELECT COUNT(1) FROM issues`},
	}
	for _, c := range counts {
		if err := db.conn.QueryRow(c.query).Scan(c.dst); err != nil {
			return ov, err
		}
	}
	return ov, nil
}

// GetTeamTotals sums game results per team, best xG share first.
func (db *DB) GetTeamTotals() ([]TeamTotals, error) {
	rows, err := db.conn.Query(`
		WITH sides AS (
			SELECT home_team_id AS team_id, winner_id, home_score AS gf, away_score AS ga,
			       home_xg AS xgf, away_xg AS xga, home_corsi AS cf, away_corsi AS ca
			FROM games
			UNION ALL
			SELECT away_team_id, winner_id, away_score, home_score,
			       away_xg, home_xg, away_corsi, home_corsi
			FROM games
		)
		SELECT s.team_id, COALESCE(t.abbrev, ''), COUNT(1),
		       SUM(CASE WHEN s.winner_id = s.team_id THEN 1 ELSE 0 END),
		       SUM(s.gf), SUM(s.ga), SUM(s.xgf), SUM(s.xga), SUM(s.cf), SUM(s.ca)
		FROM sides s
		LEFT JOIN teams t ON t.team_id = s.team_id
		GROUP BY s.team_id
		ORDER BY SUM(s.xgf) / NULLIF(SUM(s.xgf) + SUM(s.xga), 0) DESC, s.team_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TeamTotals
	for rows.Next() {
		var t TeamTotals
		if err := rows.Scan(&t.TeamID, &t.Abbrev, &t.Games, &t.Wins, &t.GoalsFor, &t.GoalsAgainst,
			&t.XGFor, &t.XGAgainst, &t.CorsiFor, &t.CorsiAgainst); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetPlayerTotals sums player rows over the given games (all games when
// gameIDs is empty) and returns the top limit players by xG for.
func (db *DB) GetPlayerTotals(gameIDs []int64, limit int) ([]PlayerTotals, error) {
	where := ""
	args := make([]interface{}, 0, len(gameIDs)+1)
	if len(gameIDs) > 0 {
		where = fmt.Sprintf("WHERE game_id IN (%s)", placeholders(len(gameIDs)))
		for _, id := range gameIDs {
			args = append(args, id)
		}
	}
	args = append(args, limit)

	query := fmt.Sprintf(`
		SELECT player_id, MAX(name), MAX(team_id), COUNT(DISTINCT game_id),
		       SUM(xgf), SUM(xga), SUM(cf), SUM(ca), SUM(shot_attempts), SUM(toi_seconds)
		FROM player_periods
		%s
		GROUP BY player_id
		ORDER BY SUM(xgf) DESC, player_id
		LIMIT ?`, where)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerTotals
	for rows.Next() {
		var p PlayerTotals
		if err := rows.Scan(&p.PlayerID, &p.Name, &p.TeamID, &p.Games,
			&p.XGFor, &p.XGAgainst, &p.CorsiFor, &p.CorsiAgainst, &p.ShotAttempts, &p.TOISeconds); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPlayerGames returns one summed line per game for a player, oldest first.
func (db *DB) GetPlayerGames(playerID int64) ([]PlayerGame, error) {
	rows, err := db.conn.Query(`
		SELECT p.game_id, g.game_date, MAX(p.team_id),
		       SUM(p.xgf), SUM(p.xga), SUM(p.cf), SUM(p.ca), SUM(p.shot_attempts), SUM(p.toi_seconds)
		FROM player_periods p
		JOIN games g ON g.game_id = p.game_id
		WHERE p.player_id = ?
		GROUP BY p.game_id
		ORDER BY g.game_date, p.game_id`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerGame
	for rows.Next() {
		var g PlayerGame
		if err := rows.Scan(&g.GameID, &g.Date, &g.TeamID, &g.XGFor, &g.XGAgainst,
			&g.CorsiFor, &g.CorsiAgainst, &g.ShotAttempts, &g.TOISeconds); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetPlayerName returns the player's most recent roster name, or "" when
// the player was never stored.
func (db *DB) GetPlayerName(playerID int64) (string, error) {
	var name string
	err := db.conn.QueryRow(`
		SELECT p.first_name || ' ' || p.last_name
		FROM players p
		JOIN games g ON g.game_id = p.game_id
		WHERE p.player_id = ?
		ORDER BY g.game_date DESC
		LIMIT 1`, playerID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return name, err
}

// placeholders returns a comma-separated string of n "?" for SQL IN clauses,
// e.g. placeholders(3) → "?,?,?".
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
