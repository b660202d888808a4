// Package report renders stored game tables for the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-hockey-metrics/internal/clock"
	"github.com/pable/go-hockey-metrics/internal/model"
	"github.com/pable/go-hockey-metrics/internal/storage"
)

var (
	cHeader = color.New(color.FgCyan, color.Bold)
	cWarn   = color.New(color.FgYellow)
	cMuted  = color.New(color.Faint)
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func abbrev(teams map[int64]model.Team, id int64) string {
	if t, ok := teams[id]; ok && t.Abbrev != "" {
		return t.Abbrev
	}
	return strconv.FormatInt(id, 10)
}

func pct(v float64, ok bool) string {
	if !ok {
		return "—"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}

// PrintGameSummary prints the score line and per-period goals.
func PrintGameSummary(w io.Writer, s model.GameSummary, teams map[int64]model.Team) {
	away, home := abbrev(teams, s.AwayTeamID), abbrev(teams, s.HomeTeamID)
	suffix := ""
	if s.LastPeriod != model.PeriodRegulation && s.LastPeriod != "" {
		suffix = " (" + string(s.LastPeriod) + ")"
	}
	fmt.Fprintf(w, "\nGame %d  |  %s  |  %s %d @ %s %d%s  |  Winner: %s  |  Run: %s\n\n",
		s.GameID, s.Date, away, s.AwayScore, home, s.HomeScore, suffix, abbrev(teams, s.WinnerID), s.RunID)

	table := newTable(w)
	header := []any{"TEAM"}
	awayRow := []any{away}
	homeRow := []any{home}
	for _, pg := range s.PeriodGoals {
		header = append(header, periodLabel(pg.Period))
		awayRow = append(awayRow, strconv.Itoa(pg.Away))
		homeRow = append(homeRow, strconv.Itoa(pg.Home))
	}
	header = append(header, "G", "xG", "CF")
	awayRow = append(awayRow, strconv.Itoa(s.AwayScore), fmt.Sprintf("%.2f", s.AwayXG), strconv.Itoa(s.AwayCorsi))
	homeRow = append(homeRow, strconv.Itoa(s.HomeScore), fmt.Sprintf("%.2f", s.HomeXG), strconv.Itoa(s.HomeCorsi))
	table.Header(header...)
	table.Append(awayRow...)
	table.Append(homeRow...)
	table.Render()

	if s.SkippedCount > 0 {
		cWarn.Fprintf(w, "%d malformed plays were skipped\n", s.SkippedCount)
	}
}

func periodLabel(p int) string {
	if p > 3 {
		return "OT" + strconv.Itoa(p-3)
	}
	return "P" + strconv.Itoa(p)
}

// PrintPlayerPeriodTable prints the merged per-player, per-period rows.
// If focusID is non-zero, that player's rows are marked with ">".
func PrintPlayerPeriodTable(w io.Writer, rows []model.PlayerPeriodStats, teams map[int64]model.Team, focusID int64) {
	table := newTable(w)
	table.Header(" ", "NAME", "TEAM", "POS", "PER", "xGF", "xGA", "xGF%", "CF", "CA", "CF%", "ATT", "TOI")

	for _, r := range rows {
		marker := " "
		if focusID != 0 && r.PlayerID == focusID {
			marker = ">"
		}
		name := r.Name
		if name == "" {
			name = strconv.FormatInt(r.PlayerID, 10)
		}
		table.Append(
			marker,
			name,
			abbrev(teams, r.TeamID),
			r.Position,
			periodLabel(r.Period),
			fmt.Sprintf("%.2f", r.XGFor),
			fmt.Sprintf("%.2f", r.XGAgainst),
			pct(r.XGForPct()),
			strconv.Itoa(r.CorsiFor),
			strconv.Itoa(r.CorsiAgainst),
			pct(r.CorsiForPct()),
			strconv.Itoa(r.ShotAttempts),
			clock.FormatSeconds(r.TOISeconds),
		)
	}
	table.Render()
}

// PrintShotTable prints every shot attempt with its context and xG.
func PrintShotTable(w io.Writer, shots []model.ShotRow, teams map[int64]model.Team, names map[int64]string) {
	table := newTable(w)
	table.Header("PER", "CLOCK", "TEAM", "SHOOTER", "KIND", "TYPE", "DIST", "ANGLE", "REB", "RUSH", "SIT", "xG")

	for _, s := range shots {
		shooter := names[s.ShooterID]
		if shooter == "" {
			shooter = strconv.FormatInt(s.ShooterID, 10)
		}
		dist, angle := "—", "—"
		if s.HasLocation {
			dist, angle = fmt.Sprintf("%.0f", s.Distance), fmt.Sprintf("%.0f°", s.Angle)
		}
		table.Append(
			periodLabel(s.Period),
			s.PeriodClock,
			abbrev(teams, s.TeamID),
			shooter,
			s.Kind.String(),
			s.ShotType,
			dist,
			angle,
			flag(s.Rebound),
			flag(s.Rush),
			s.Situation,
			fmt.Sprintf("%.3f", s.XG),
		)
	}
	table.Render()
}

func flag(b bool) string {
	if b {
		return "Y"
	}
	return ""
}

// PrintIssues lists consistency findings. Nothing is printed when there are none.
func PrintIssues(w io.Writer, issues []model.Issue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintln(w)
	cWarn.Fprintf(w, "%d consistency issue(s):\n", len(issues))
	for _, is := range issues {
		where := ""
		if is.PlayerID != 0 {
			where += fmt.Sprintf(" player=%d", is.PlayerID)
		}
		if is.Period != 0 {
			where += fmt.Sprintf(" period=%d", is.Period)
		}
		if is.EventID != 0 {
			where += fmt.Sprintf(" event=%d", is.EventID)
		}
		cWarn.Fprintf(w, "  [%s]", is.Kind)
		fmt.Fprintf(w, "%s  %s\n", where, is.Detail)
	}
}

// PrintGameList prints the stored games, newest first.
func PrintGameList(w io.Writer, games []model.GameListing) {
	cHeader.Fprintf(w, "%-10s  %-10s  %-9s  %5s  %-4s  %s\n", "GAME", "DATE", "MATCHUP", "SCORE", "END", "ISSUES")
	cMuted.Fprintf(w, "%-10s  %-10s  %-9s  %5s  %-4s  %s\n", "──────────", "──────────", "─────────", "─────", "────", "──────")
	for _, g := range games {
		issues := ""
		if g.Issues > 0 {
			issues = cWarn.Sprint(g.Issues)
		}
		fmt.Fprintf(w, "%-10d  %-10s  %-9s  %5s  %-4s  %s\n",
			g.GameID, g.Date, g.AwayAbbrev+"@"+g.HomeAbbrev,
			fmt.Sprintf("%d-%d", g.AwayScore, g.HomeScore), g.LastPeriod, issues)
	}
}

// PrintTeamTotals prints season totals per team.
func PrintTeamTotals(w io.Writer, totals []storage.TeamTotals) {
	table := newTable(w)
	table.Header("TEAM", "GP", "W", "GF", "GA", "xGF", "xGA", "xGF%", "CF", "CA", "CF%")
	for _, t := range totals {
		tally := model.PlayerPeriodTally{XGFor: t.XGFor, XGAgainst: t.XGAgainst, CorsiFor: t.CorsiFor, CorsiAgainst: t.CorsiAgainst}
		table.Append(
			t.Abbrev,
			strconv.Itoa(t.Games),
			strconv.Itoa(t.Wins),
			strconv.Itoa(t.GoalsFor),
			strconv.Itoa(t.GoalsAgainst),
			fmt.Sprintf("%.2f", t.XGFor),
			fmt.Sprintf("%.2f", t.XGAgainst),
			pct(tally.XGForPct()),
			strconv.Itoa(t.CorsiFor),
			strconv.Itoa(t.CorsiAgainst),
			pct(tally.CorsiForPct()),
		)
	}
	table.Render()
}

// PrintPlayerTotals prints cross-game player totals.
func PrintPlayerTotals(w io.Writer, totals []storage.PlayerTotals, teams map[int64]model.Team) {
	table := newTable(w)
	table.Header("NAME", "TEAM", "GP", "xGF", "xGA", "xGF%", "CF", "CA", "CF%", "ATT", "TOI/GP")
	for _, p := range totals {
		tally := model.PlayerPeriodTally{XGFor: p.XGFor, XGAgainst: p.XGAgainst, CorsiFor: p.CorsiFor, CorsiAgainst: p.CorsiAgainst}
		toiPerGame := 0
		if p.Games > 0 {
			toiPerGame = p.TOISeconds / p.Games
		}
		table.Append(
			p.Name,
			abbrev(teams, p.TeamID),
			strconv.Itoa(p.Games),
			fmt.Sprintf("%.2f", p.XGFor),
			fmt.Sprintf("%.2f", p.XGAgainst),
			pct(tally.XGForPct()),
			strconv.Itoa(p.CorsiFor),
			strconv.Itoa(p.CorsiAgainst),
			pct(tally.CorsiForPct()),
			strconv.Itoa(p.ShotAttempts),
			clock.FormatSeconds(toiPerGame),
		)
	}
	table.Render()
}

// PrintPlayerTrend prints one line per game for a player, oldest first.
func PrintPlayerTrend(w io.Writer, games []storage.PlayerGame, teams map[int64]model.Team) {
	table := newTable(w)
	table.Header("DATE", "GAME", "TEAM", "xGF", "xGA", "xGF%", "CF", "CA", "CF%", "ATT", "TOI")
	for _, g := range games {
		tally := model.PlayerPeriodTally{XGFor: g.XGFor, XGAgainst: g.XGAgainst, CorsiFor: g.CorsiFor, CorsiAgainst: g.CorsiAgainst}
		table.Append(
			g.Date,
			strconv.FormatInt(g.GameID, 10),
			abbrev(teams, g.TeamID),
			fmt.Sprintf("%.2f", g.XGFor),
			fmt.Sprintf("%.2f", g.XGAgainst),
			pct(tally.XGForPct()),
			strconv.Itoa(g.CorsiFor),
			strconv.Itoa(g.CorsiAgainst),
			pct(tally.CorsiForPct()),
			strconv.Itoa(g.ShotAttempts),
			clock.FormatSeconds(g.TOISeconds),
		)
	}
	table.Render()
}
