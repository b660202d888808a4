package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pable/go-hockey-metrics/internal/model"
	"github.com/pable/go-hockey-metrics/internal/storage"
)

var testTeams = map[int64]model.Team{
	6:  {ID: 6, Abbrev: "BOS"},
	10: {ID: 10, Abbrev: "TOR"},
}

func TestPrintGameSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintGameSummary(&buf, model.GameSummary{
		GameID: 2024020500, Date: "2024-11-30",
		AwayTeamID: 6, HomeTeamID: 10, AwayScore: 2, HomeScore: 3, WinnerID: 10,
		LastPeriod:  model.PeriodOvertime,
		PeriodGoals: []model.PeriodGoals{{Period: 1, Home: 1}, {Period: 2, Away: 2}, {Period: 3, Home: 1}, {Period: 4, Home: 1}},
		HomeXG:      2.4, AwayXG: 1.9, HomeCorsi: 55, AwayCorsi: 48,
	}, testTeams)

	out := buf.String()
	for _, want := range []string{"BOS 2 @ TOR 3 (OT)", "Winner: TOR", "OT1", "2.40", "55"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPrintPlayerPeriodTable_NullPct(t *testing.T) {
	var buf bytes.Buffer
	rows := []model.PlayerPeriodStats{
		{Name: "Auston Matthews", TeamID: 10, Position: "C",
			PlayerPeriodTally: model.PlayerPeriodTally{PlayerID: 101, Period: 1, XGFor: 0.3, XGAgainst: 0.1, CorsiFor: 3, CorsiAgainst: 1, TOISeconds: 610}},
		{Name: "Elias Lindholm", TeamID: 6, Position: "C",
			PlayerPeriodTally: model.PlayerPeriodTally{PlayerID: 201, Period: 2}},
	}
	PrintPlayerPeriodTable(&buf, rows, testTeams, 101)

	out := buf.String()
	if !strings.Contains(out, "75.0%") {
		t.Errorf("expected xGF%% 75.0%%:\n%s", out)
	}
	if !strings.Contains(out, "—") {
		t.Errorf("expected a null percentage marker:\n%s", out)
	}
	if !strings.Contains(out, "10:10") {
		t.Errorf("expected TOI 10:10:\n%s", out)
	}
	if !strings.Contains(out, ">") {
		t.Errorf("expected focus marker:\n%s", out)
	}
}

func TestPrintShotTable(t *testing.T) {
	var buf bytes.Buffer
	PrintShotTable(&buf, []model.ShotRow{
		{Period: 1, PeriodClock: "05:02", TeamID: 10, ShooterID: 101, Kind: model.KindShotOnGoal,
			ShotType: "wrist", HasLocation: true, Distance: 14.9, Angle: 19.6, Rush: true, Situation: "1551", XG: 0.1234},
		{Period: 2, PeriodClock: "03:00", TeamID: 6, ShooterID: 999, Kind: model.KindMissedShot, Situation: "1551"},
	}, testTeams, map[int64]string{101: "Auston Matthews"})

	out := buf.String()
	for _, want := range []string{"Auston Matthews", "shot-on-goal", "0.123", "999", "missed-shot"} {
		if !strings.Contains(out, want) {
			t.Errorf("shot table missing %q:\n%s", want, out)
		}
	}
}

func TestPrintIssues(t *testing.T) {
	var buf bytes.Buffer
	PrintIssues(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output for no issues, got %q", buf.String())
	}

	PrintIssues(&buf, []model.Issue{{Kind: model.IssueTeamMismatch, PlayerID: 101, Period: 2, Detail: "shift team 6, roster team 10"}})
	out := buf.String()
	if !strings.Contains(out, "team_mismatch") || !strings.Contains(out, "player=101") {
		t.Errorf("unexpected issue output:\n%s", out)
	}
}

func TestPrintTotals(t *testing.T) {
	var buf bytes.Buffer
	PrintTeamTotals(&buf, []storage.TeamTotals{{TeamID: 10, Abbrev: "TOR", Games: 2, Wins: 2, XGFor: 3, XGAgainst: 1}})
	PrintPlayerTotals(&buf, []storage.PlayerTotals{{PlayerID: 101, Name: "Auston Matthews", TeamID: 10, Games: 2, TOISeconds: 2400}}, testTeams)
	PrintPlayerTrend(&buf, []storage.PlayerGame{{GameID: 2024020500, Date: "2024-11-30", TeamID: 10}}, testTeams)

	out := buf.String()
	for _, want := range []string{"75.0%", "Auston Matthews", "20:00", "2024-11-30"} {
		if !strings.Contains(out, want) {
			t.Errorf("totals output missing %q:\n%s", want, out)
		}
	}
}
