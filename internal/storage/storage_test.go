package storage

import (
	"context"
	"testing"

	"github.com/pable/go-hockey-metrics/internal/model"
	"github.com/pable/go-hockey-metrics/internal/pipeline"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// makeResult builds a small processed game: TOR (10) beat BOS (6) 1-0.
func makeResult(gameID int64, date string) *pipeline.Result {
	goal := model.AnnotatedEvent{
		GameEvent: model.GameEvent{
			GameID: gameID, EventID: 20, Period: 2, PeriodType: model.PeriodRegulation,
			PeriodClock: "03:00", Clock: 1380, OwnerTeamID: 10, Zone: model.ZoneOffensive,
			Coords:    &model.Point{X: -80, Y: 4},
			Situation: model.Situation{AwayGoalie: true, AwaySkaters: 5, HomeSkaters: 5, HomeGoalie: true},
			Detail:    model.GoalDetail{Scorer: 101, ShotType: "snap", Assist1: model.SomePlayer(102)},
		},
		Context: model.TacticalContext{LastPlayKind: model.KindMissedShot, HasFlags: true},
	}
	hit := model.AnnotatedEvent{
		GameEvent: model.GameEvent{
			GameID: gameID, EventID: 21, Period: 2, PeriodType: model.PeriodRegulation,
			PeriodClock: "08:00", Clock: 1680, OwnerTeamID: 10, Zone: model.ZoneDefensive,
			Detail: model.HitDetail{Hitter: 102, Hittee: model.NoPlayer},
		},
		Context: model.TacticalContext{LastPlayKind: model.KindGoal},
	}

	return &pipeline.Result{
		RunID: "run-" + date,
		Summary: model.GameSummary{
			GameID: gameID, RunID: "run-" + date, Season: 20242025, GameType: 2, Date: date,
			AwayTeamID: 6, HomeTeamID: 10, AwayScore: 0, HomeScore: 1, WinnerID: 10, LoserID: 6,
			LastPeriod:  model.PeriodRegulation,
			PeriodGoals: []model.PeriodGoals{{Period: 1}, {Period: 2, Home: 1}},
			HomeXG:      0.3, AwayXG: 0.1, HomeCorsi: 2, AwayCorsi: 1, EventCount: 2,
		},
		Teams: []model.Team{
			{ID: 6, Abbrev: "BOS", Conference: "Eastern", Division: "Atlantic"},
			{ID: 10, Abbrev: "TOR", Conference: "Eastern", Division: "Atlantic"},
		},
		Players: []model.Player{
			{ID: 101, FirstName: "Auston", LastName: "Matthews", Position: "C", TeamID: 10},
			{ID: 201, FirstName: "Elias", LastName: "Lindholm", Position: "C", TeamID: 6},
		},
		Events: []model.AnnotatedEvent{goal, hit},
		Shots: []model.ShotRow{{
			GameID: gameID, EventID: 20, Period: 2, PeriodClock: "03:00", Clock: 1380,
			Kind: model.KindGoal, TeamID: 10, ShooterID: 101, ShotType: "snap",
			Zone: model.ZoneOffensive, Situation: "1551", X: 80, Y: -4, HasLocation: true,
			Distance: 9.8, Angle: 24, XG: 0.3,
			LastPlayKind: model.KindMissedShot,
			HomeOnIce:    []int64{101}, AwayOnIce: []int64{},
		}},
		Shifts: []model.ShiftInterval{{PlayerID: 101, TeamID: 10, Period: 2, Start: 1200, End: 1800, DurationSeconds: 600}},
		TOI:    []model.TOIRow{{GameID: gameID, PlayerID: 101, Name: "Auston Matthews", TeamID: 10, Period: 2, Shifts: 1, TOISeconds: 600}},
		PlayerPeriods: []model.PlayerPeriodStats{
			{GameID: gameID, Name: "Auston Matthews", TeamID: 10, Position: "C",
				PlayerPeriodTally: model.PlayerPeriodTally{PlayerID: 101, Period: 2, XGFor: 0.3, CorsiFor: 1, ShotAttempts: 1, TOISeconds: 600}},
			{GameID: gameID, Name: "Elias Lindholm", TeamID: 6, Position: "C",
				PlayerPeriodTally: model.PlayerPeriodTally{PlayerID: 201, Period: 2}},
		},
		Shooters: []model.ShooterAttempts{{PlayerID: 101, Period: 2, Attempts: 1}},
		Skaters:  []model.SkaterBox{{GameID: gameID, PlayerID: 101, TeamID: 10, Name: "A. Matthews", Goals: 1, TOI: "20:00"}},
		Goalies:  []model.GoalieBox{{GameID: gameID, PlayerID: 299, TeamID: 6, Name: "J. Swayman", TOI: "60:00"}},
		Issues:   []model.Issue{{GameID: gameID, Kind: model.IssueUnknownPlayer, PlayerID: 999, Period: 2, Detail: "player not on game roster (shift chart)"}},
	}
}

func TestSaveGame_RoundTrip(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()

	if err := db.SaveGame(ctx, makeResult(2024020500, "2024-11-30")); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}

	exists, err := db.GameExists(2024020500)
	if err != nil || !exists {
		t.Fatalf("GameExists = %v, %v", exists, err)
	}

	g, err := db.GetGame(2024020500)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if g == nil || g.WinnerID != 10 || g.HomeScore != 1 || g.LastPeriod != model.PeriodRegulation {
		t.Fatalf("unexpected summary: %+v", g)
	}
	if len(g.PeriodGoals) != 2 || g.PeriodGoals[1].Home != 1 {
		t.Errorf("period goals = %+v", g.PeriodGoals)
	}

	missing, err := db.GetGame(1)
	if err != nil || missing != nil {
		t.Errorf("GetGame(missing) = %v, %v", missing, err)
	}
}

func TestSaveGame_NullPercentages(t *testing.T) {
	db := openMemDB(t)
	if err := db.SaveGame(context.Background(), makeResult(2024020500, "2024-11-30")); err != nil {
		t.Fatal(err)
	}

	_, rows, err := db.QueryRaw(`SELECT player_id, xgf_pct, cf_pct FROM player_periods ORDER BY player_id`)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "1" || rows[0][2] != "1" {
		t.Errorf("player 101 pct = %v, want 1 and 1", rows[0])
	}
	// Player 201 had no attempts for or against.
	if rows[1][1] != "NULL" || rows[1][2] != "NULL" {
		t.Errorf("player 201 pct = %v, want NULL", rows[1])
	}
}

func TestSaveGame_EventColumns(t *testing.T) {
	db := openMemDB(t)
	if err := db.SaveGame(context.Background(), makeResult(2024020500, "2024-11-30")); err != nil {
		t.Fatal(err)
	}

	_, rows, err := db.QueryRaw(`
		SELECT kind, shooter_id, assist1_id, assist2_id, goalie_id, hitter_id, hittee_id, x
		FROM events ORDER BY event_id`)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"goal", "101", "102", "NULL", "NULL", "NULL", "NULL", "-80"},
		{"hit", "NULL", "NULL", "NULL", "NULL", "102", "NULL", "NULL"},
	}
	for i := range want {
		for j := range want[i] {
			if rows[i][j] != want[i][j] {
				t.Errorf("row %d col %d = %q, want %q", i, j, rows[i][j], want[i][j])
			}
		}
	}
}

func TestSaveGame_ReplacesRows(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()

	r := makeResult(2024020500, "2024-11-30")
	if err := db.SaveGame(ctx, r); err != nil {
		t.Fatal(err)
	}
	r.RunID, r.Summary.RunID = "second", "second"
	r.Events = r.Events[:1]
	r.Issues = nil
	if err := db.SaveGame(ctx, r); err != nil {
		t.Fatal(err)
	}

	_, rows, _ := db.QueryRaw(`SELECT COUNT(1) FROM events`)
	if rows[0][0] != "1" {
		t.Errorf("events after re-save = %s, want 1", rows[0][0])
	}
	issues, _ := db.GetIssues(2024020500)
	if len(issues) != 0 {
		t.Errorf("issues after re-save = %d, want 0", len(issues))
	}
	g, _ := db.GetGame(2024020500)
	if g.RunID != "second" {
		t.Errorf("run id = %s", g.RunID)
	}
}

func TestGetShots(t *testing.T) {
	db := openMemDB(t)
	if err := db.SaveGame(context.Background(), makeResult(2024020500, "2024-11-30")); err != nil {
		t.Fatal(err)
	}

	shots, err := db.GetShots(2024020500)
	if err != nil {
		t.Fatal(err)
	}
	if len(shots) != 1 {
		t.Fatalf("expected 1 shot, got %d", len(shots))
	}
	s := shots[0]
	if s.Kind != model.KindGoal || s.LastPlayKind != model.KindMissedShot || s.Zone != model.ZoneOffensive {
		t.Errorf("enums not restored: %+v", s)
	}
	if s.GoalieID.Valid {
		t.Error("empty-net goal should have no goalie")
	}
	if !s.HasLocation || s.X != 80 {
		t.Errorf("location = %v,%v,%v", s.HasLocation, s.X, s.Y)
	}
	if len(s.HomeOnIce) != 1 || s.HomeOnIce[0] != 101 || s.AwayOnIce == nil || len(s.AwayOnIce) != 0 {
		t.Errorf("on ice = %v / %v", s.HomeOnIce, s.AwayOnIce)
	}
}

func TestListGames(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()

	for _, r := range []*pipeline.Result{
		makeResult(2024020500, "2024-11-30"),
		makeResult(2024020600, "2024-12-10"),
	} {
		if err := db.SaveGame(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	list, err := db.ListGames()
	if err != nil {
		t.Fatalf("ListGames: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 games, got %d", len(list))
	}
	// Newest first.
	if list[0].GameID != 2024020600 {
		t.Errorf("expected 2024020600 first, got %d", list[0].GameID)
	}
	if list[0].HomeAbbrev != "TOR" || list[0].AwayAbbrev != "BOS" || list[0].Issues != 1 {
		t.Errorf("unexpected listing: %+v", list[0])
	}
}

func TestDeleteGame(t *testing.T) {
	db := openMemDB(t)
	if err := db.SaveGame(context.Background(), makeResult(2024020500, "2024-11-30")); err != nil {
		t.Fatal(err)
	}
	if err := db.DeleteGame(2024020500); err != nil {
		t.Fatalf("DeleteGame: %v", err)
	}
	exists, _ := db.GameExists(2024020500)
	if exists {
		t.Error("game still exists after delete")
	}
	_, rows, _ := db.QueryRaw(`SELECT COUNT(1) FROM player_periods`)
	if rows[0][0] != "0" {
		t.Errorf("player_periods rows left: %s", rows[0][0])
	}
}

func TestTotals(t *testing.T) {
	db := openMemDB(t)
	ctx := context.Background()
	for _, r := range []*pipeline.Result{
		makeResult(2024020500, "2024-11-30"),
		makeResult(2024020600, "2024-12-10"),
	} {
		if err := db.SaveGame(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	ov, err := db.GetOverview()
	if err != nil {
		t.Fatal(err)
	}
	if ov.Games != 2 || ov.Earliest != "2024-11-30" || ov.Latest != "2024-12-10" || ov.Teams != 2 {
		t.Errorf("overview = %+v", ov)
	}

	teams, err := db.GetTeamTotals()
	if err != nil {
		t.Fatal(err)
	}
	if len(teams) != 2 || teams[0].Abbrev != "TOR" || teams[0].Wins != 2 || teams[0].GoalsFor != 2 {
		t.Errorf("team totals = %+v", teams)
	}

	players, err := db.GetPlayerTotals([]int64{2024020500}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(players) != 2 || players[0].PlayerID != 101 || players[0].Games != 1 {
		t.Errorf("player totals = %+v", players)
	}

	all, _ := db.GetPlayerTotals(nil, 1)
	if len(all) != 1 || all[0].Games != 2 || all[0].TOISeconds != 1200 {
		t.Errorf("all-games totals = %+v", all)
	}

	games, err := db.GetPlayerGames(101)
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 2 || games[0].Date != "2024-11-30" {
		t.Errorf("player games = %+v", games)
	}
}

func TestJoinSplitIDs(t *testing.T) {
	ids := []int64{8478402, 8479318}
	if got := SplitIDs(JoinIDs(ids)); len(got) != 2 || got[0] != ids[0] || got[1] != ids[1] {
		t.Errorf("round trip = %v", got)
	}
	if got := SplitIDs(""); got == nil || len(got) != 0 {
		t.Errorf("SplitIDs(\"\") = %#v, want empty non-nil", got)
	}
}

func TestTableRows(t *testing.T) {
	db := openMemDB(t)
	if err := db.SaveGame(context.Background(), makeResult(2024020500, "2024-11-30")); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}

	cols, rows, err := db.TableRows("shots", 2024020500)
	if err != nil {
		t.Fatalf("TableRows: %v", err)
	}
	if len(rows) != 1 || len(cols) != len(rows[0]) {
		t.Fatalf("unexpected shots dump: %v %v", cols, rows)
	}

	if _, _, err := db.TableRows("sqlite_master", 2024020500); err == nil {
		t.Error("expected error for a table outside the export list")
	}
}

func TestGetPlayerName(t *testing.T) {
	db := openMemDB(t)
	if err := db.SaveGame(context.Background(), makeResult(2024020500, "2024-11-30")); err != nil {
		t.Fatal(err)
	}

	name, err := db.GetPlayerName(101)
	if err != nil || name != "Auston Matthews" {
		t.Errorf("GetPlayerName(101) = %q, %v", name, err)
	}
	name, err = db.GetPlayerName(555)
	if err != nil || name != "" {
		t.Errorf("GetPlayerName(555) = %q, %v", name, err)
	}
}
