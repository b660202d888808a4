package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the metrics database",
	Long: `Run an arbitrary SQL query against the metrics database and print results as a table.

Schema overview:
  teams(team_id, abbrev, city, name, conference, division)
  games(game_id, run_id, season, game_type, game_date, away_team_id, home_team_id,
    away_score, home_score, winner_id, loser_id, last_period, away_xg, home_xg,
    away_corsi, home_corsi, event_count, skipped_count, processed_at)
  period_goals(game_id, period, away, home)
  players(game_id, player_id, team_id, first_name, last_name, position, jersey)
  events(game_id, event_id, period, period_type, period_clock, clock, kind,
    owner_team_id, zone, x, y, situation, last_play_kind, rebound, rush,
    shooter_id, goalie_id, shot_type, miss_reason, assist1_id, assist2_id, ...)
  shots(game_id, event_id, period, period_clock, clock, kind, team_id, shooter_id,
    goalie_id, shot_type, zone, situation, x, y, distance, angle, rebound, rush,
    last_play_kind, xg, home_on_ice, away_on_ice)
  shifts(game_id, player_id, team_id, period, start_s, end_s, duration)
  toi(game_id, player_id, period, name, team_id, shifts, toi_seconds)
  player_periods(game_id, player_id, period, name, team_id, position, xgf, xga,
    xgf_pct, cf, ca, cf_pct, shot_attempts, toi_seconds)
  shooters(game_id, player_id, period, attempts)
  skater_box(game_id, player_id, team_id, name, goals, assists, sog, toi, ...)
  goalie_box(game_id, player_id, team_id, name, shots_against, saves, save_pct, ...)
  issues(game_id, seq, kind, player_id, period, event_id, detail)

Note: xgf_pct and cf_pct are NULL when the player had nothing for or against.
Clock columns are seconds elapsed since the start of the game.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
