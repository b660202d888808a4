package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/pable/go-hockey-metrics/internal/model"
	"github.com/pable/go-hockey-metrics/internal/pipeline"
)

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		RunID: "run-1",
		Summary: model.GameSummary{
			GameID: 2024020500, RunID: "run-1", Date: "2024-11-30",
			AwayTeamID: 6, HomeTeamID: 10, HomeScore: 1, WinnerID: 10, LoserID: 6,
			LastPeriod:  model.PeriodRegulation,
			PeriodGoals: []model.PeriodGoals{{Period: 1}, {Period: 2, Home: 1}},
		},
		Shots: []model.ShotRow{
			{GameID: 2024020500, EventID: 20, Period: 2, PeriodClock: "03:00", Kind: model.KindGoal,
				TeamID: 10, ShooterID: 101, GoalieID: model.SomePlayer(299), Zone: model.ZoneOffensive,
				Situation: "1551", X: 80, Y: -4, HasLocation: true, Distance: 9.8, Angle: 24, XG: 0.25},
			{GameID: 2024020500, EventID: 12, Period: 1, Kind: model.KindMissedShot, TeamID: 6, ShooterID: 201},
		},
		PlayerPeriods: []model.PlayerPeriodStats{
			{GameID: 2024020500, Name: "Auston Matthews", TeamID: 10,
				PlayerPeriodTally: model.PlayerPeriodTally{PlayerID: 101, Period: 2, XGFor: 0.25, CorsiFor: 1, TOISeconds: 600}},
			{GameID: 2024020500, Name: "Elias Lindholm", TeamID: 6,
				PlayerPeriodTally: model.PlayerPeriodTally{PlayerID: 201, Period: 2}},
		},
		Issues: []model.Issue{{GameID: 2024020500, Kind: model.IssueUnknownPlayer, PlayerID: 999, Detail: "player not on game roster, shift chart"}},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestResultTables(t *testing.T) {
	tables := ResultTables(sampleResult())
	names := make([]string, len(tables))
	for i, tb := range tables {
		names[i] = tb.Name
		for _, row := range tb.Rows {
			if len(row) != len(tb.Header) {
				t.Errorf("%s: row has %d cells, header has %d", tb.Name, len(row), len(tb.Header))
			}
		}
	}
	if got := strings.Join(names, ","); got != "summary,player_periods,shots,toi,shooters,issues" {
		t.Errorf("table order = %s", got)
	}

	pp := tables[1]
	if pp.Rows[0][8] != "1" || pp.Rows[0][11] != "1" {
		t.Errorf("expected full xGF%%/CF%% for player 101, got %v", pp.Rows[0])
	}
	if pp.Rows[1][8] != "" || pp.Rows[1][11] != "" {
		t.Errorf("expected empty percentages for player 201, got %v", pp.Rows[1])
	}

	shots := tables[2]
	if shots.Rows[0][7] != "299" || shots.Rows[0][11] != "80" || shots.Rows[0][18] != "0.25" {
		t.Errorf("unexpected goal row: %v", shots.Rows[0])
	}
	if shots.Rows[1][7] != "" || shots.Rows[1][11] != "" || shots.Rows[1][13] != "" {
		t.Errorf("expected empty goalie and location cells: %v", shots.Rows[1])
	}
}

func TestWriter_SaveGame(t *testing.T) {
	dir := t.TempDir()
	w := Writer{Dir: filepath.Join(dir, "out")}
	if err := w.SaveGame(context.Background(), sampleResult()); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}

	records := readCSV(t, filepath.Join(dir, "out", "2024020500_summary.csv"))
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 period rows, got %d", len(records))
	}
	if records[0][0] != "game_id" || records[2][10] != "2" || records[2][12] != "1" {
		t.Errorf("unexpected summary rows: %v", records)
	}

	issues := readCSV(t, filepath.Join(dir, "out", "2024020500_issues.csv"))
	if len(issues) != 2 || issues[1][5] != "player not on game roster, shift chart" {
		t.Errorf("unexpected issues: %v", issues)
	}

	toi := readCSV(t, filepath.Join(dir, "out", "2024020500_toi.csv"))
	if len(toi) != 1 {
		t.Errorf("expected header only for empty toi table, got %d rows", len(toi))
	}
}

func TestWriter_Gzip(t *testing.T) {
	dir := t.TempDir()
	w := Writer{Dir: dir, Gzip: true}
	paths, err := w.WriteTables(7, []Table{{Name: "events", Header: []string{"a", "b"}, Rows: [][]string{{"1", "x"}}}})
	if err != nil {
		t.Fatalf("WriteTables: %v", err)
	}
	if len(paths) != 1 || filepath.Base(paths[0]) != "7_events.csv.gz" {
		t.Fatalf("unexpected paths: %v", paths)
	}

	f, err := os.Open(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(zr); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "a,b\n1,x\n" {
		t.Errorf("unexpected content %q", buf.String())
	}
}
