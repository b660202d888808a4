package aggregator

import (
	"math"
	"testing"

	"github.com/pable/go-hockey-metrics/internal/model"
)

const (
	homeID int64 = 10
	awayID int64 = 6
)

// IDs for test players.
const (
	homeA int64 = 101
	homeB int64 = 102
	awayA int64 = 201
	awayB int64 = 202
)

func roster() []model.Player {
	return []model.Player{
		{ID: homeA, FirstName: "Home", LastName: "A", Position: "C", TeamID: homeID},
		{ID: homeB, FirstName: "Home", LastName: "B", Position: "D", TeamID: homeID},
		{ID: awayA, FirstName: "Away", LastName: "A", Position: "C", TeamID: awayID},
		{ID: awayB, FirstName: "Away", LastName: "B", Position: "D", TeamID: awayID},
	}
}

// makeAttempt creates a shot-family attempt at the given period and absolute clock.
func makeAttempt(id int64, period, abs int, owner int64, d model.Detail, onIce model.OnIce, xg float64) Attempt {
	return Attempt{
		Event: model.AnnotatedEvent{GameEvent: model.GameEvent{
			GameID: 1, EventID: id, Period: period, Clock: abs, OwnerTeamID: owner, Detail: d,
		}},
		OnIce: onIce,
		XG:    xg,
		HasXG: true,
	}
}

func findRow(out *Output, player int64, period int) *model.PlayerPeriodStats {
	for i := range out.PlayerPeriods {
		r := &out.PlayerPeriods[i]
		if r.PlayerID == player && r.Period == period {
			return r
		}
	}
	return nil
}

// ---- xG and Corsi ----

func TestAggregate_OnIceCredit(t *testing.T) {
	onIce := model.OnIce{Home: []int64{homeA, homeB}, Away: []int64{awayA}}
	in := Input{
		GameID: 1, HomeID: homeID, AwayID: awayID, Players: roster(),
		Attempts: []Attempt{
			makeAttempt(1, 1, 100, homeID, model.ShotDetail{Shooter: homeA}, onIce, 0.1),
			makeAttempt(2, 1, 200, awayID, model.MissedShotDetail{Shooter: awayA}, onIce, 0.05),
			makeAttempt(3, 1, 300, homeID, model.GoalDetail{Scorer: homeB}, onIce, 0.3),
		},
	}
	out, err := Aggregate(in)
	if err != nil {
		t.Fatal(err)
	}

	h := findRow(out, homeA, 1)
	if h == nil {
		t.Fatal("no row for homeA period 1")
	}
	if h.CorsiFor != 2 || h.CorsiAgainst != 1 {
		t.Errorf("homeA corsi = %d/%d, want 2/1", h.CorsiFor, h.CorsiAgainst)
	}
	if math.Abs(h.XGFor-0.4) > 1e-9 || math.Abs(h.XGAgainst-0.05) > 1e-9 {
		t.Errorf("homeA xg = %v/%v", h.XGFor, h.XGAgainst)
	}
	if h.ShotAttempts != 1 {
		t.Errorf("homeA attempts = %d", h.ShotAttempts)
	}
	if h.Name != "Home A" || h.TeamID != homeID {
		t.Errorf("identity = %q team %d", h.Name, h.TeamID)
	}

	a := findRow(out, awayA, 1)
	if a == nil || a.CorsiFor != 1 || a.CorsiAgainst != 2 {
		t.Errorf("awayA row = %+v", a)
	}
	if findRow(out, awayB, 1) != nil {
		t.Error("awayB was never on ice and never shot; no row expected")
	}

	if out.HomeCorsi != 2 || out.AwayCorsi != 1 {
		t.Errorf("team corsi = %d/%d", out.HomeCorsi, out.AwayCorsi)
	}
	if len(out.PeriodGoals) != 1 || out.PeriodGoals[0].Home != 1 || out.PeriodGoals[0].Away != 0 {
		t.Errorf("period goals = %+v", out.PeriodGoals)
	}
	if len(out.Issues) != 0 {
		t.Errorf("unexpected issues: %+v", out.Issues)
	}
}

func TestAggregate_NullPercentages(t *testing.T) {
	in := Input{
		GameID: 1, HomeID: homeID, AwayID: awayID, Players: roster(),
		Shifts: []model.ShiftInterval{{PlayerID: homeA, TeamID: homeID, Period: 1, Start: 0, End: 40, DurationSeconds: 40}},
	}
	out, err := Aggregate(in)
	if err != nil {
		t.Fatal(err)
	}
	r := findRow(out, homeA, 1)
	if r == nil {
		t.Fatal("TOI-only player should still have a merged row")
	}
	if _, ok := r.XGForPct(); ok {
		t.Error("xGF% should be null with no xG either way")
	}
	if _, ok := r.CorsiForPct(); ok {
		t.Error("CF% should be null with no attempts either way")
	}
	if r.TOISeconds != 40 || r.CorsiFor != 0 || r.ShotAttempts != 0 {
		t.Errorf("row = %+v", r)
	}
}

func TestAggregate_UnscoredAttemptCountsForCorsiOnly(t *testing.T) {
	at := makeAttempt(1, 1, 100, homeID, model.BlockedShotDetail{Shooter: homeA},
		model.OnIce{Home: []int64{homeA}, Away: []int64{awayA}}, 0)
	at.HasXG = false
	out, err := Aggregate(Input{GameID: 1, HomeID: homeID, AwayID: awayID, Players: roster(), Attempts: []Attempt{at}})
	if err != nil {
		t.Fatal(err)
	}
	r := findRow(out, homeA, 1)
	if r.CorsiFor != 1 || r.XGFor != 0 {
		t.Errorf("row = %+v", r)
	}
}

// ---- Dense fill ----

func TestFillShotAttempts_Dense(t *testing.T) {
	ev := func(period int, d model.Detail) model.AnnotatedEvent {
		return model.AnnotatedEvent{GameEvent: model.GameEvent{Period: period, Detail: d}}
	}
	events := []model.AnnotatedEvent{
		ev(1, model.ShotDetail{Shooter: homeA}),
		ev(1, model.MissedShotDetail{Shooter: homeA}),
		ev(2, model.GoalDetail{Scorer: awayA}),
		ev(3, model.BlockedShotDetail{Shooter: homeB}),
		ev(3, model.HitDetail{Hitter: awayB}), // not an attempt
	}
	got := FillShotAttempts(events)

	// 3 shooters x 3 periods.
	if len(got) != 9 {
		t.Fatalf("rows = %d, want 9", len(got))
	}
	want := map[model.PlayerPeriodKey]int{
		{PlayerID: homeA, Period: 1}: 2,
		{PlayerID: awayA, Period: 2}: 1,
		{PlayerID: homeB, Period: 3}: 1,
	}
	total := 0
	for _, r := range got {
		total += r.Attempts
		if r.Attempts != want[model.PlayerPeriodKey{PlayerID: r.PlayerID, Period: r.Period}] {
			t.Errorf("shooter %d period %d = %d", r.PlayerID, r.Period, r.Attempts)
		}
	}
	if total != 4 {
		t.Errorf("total attempts = %d, want 4", total)
	}
	if got[0].PlayerID != homeA || got[0].Period != 1 {
		t.Errorf("rows not sorted: first = %+v", got[0])
	}
}

func TestFillShotAttempts_Empty(t *testing.T) {
	if got := FillShotAttempts(nil); len(got) != 0 {
		t.Errorf("got %v", got)
	}
}

// ---- Time on ice ----

func TestAggregate_TOI(t *testing.T) {
	in := Input{
		GameID: 1, HomeID: homeID, AwayID: awayID, Players: roster(),
		Shifts: []model.ShiftInterval{
			{PlayerID: homeA, TeamID: homeID, Period: 1, Start: 0, End: 45, DurationSeconds: 45},
			{PlayerID: homeA, TeamID: homeID, Period: 1, Start: 100, End: 150, DurationSeconds: 50},
			{PlayerID: homeA, TeamID: homeID, Period: 2, Start: 1200, End: 1230, DurationSeconds: 30},
		},
	}
	out, err := Aggregate(in)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.TOI) != 2 {
		t.Fatalf("toi rows = %d", len(out.TOI))
	}
	if r := out.TOI[0]; r.Period != 1 || r.Shifts != 2 || r.TOISeconds != 95 || r.Name != "Home A" {
		t.Errorf("period 1 toi = %+v", r)
	}
	if len(out.PeriodGoals) != 2 {
		t.Errorf("periods from shifts = %+v", out.PeriodGoals)
	}
}

// ---- Consistency ----

func TestAggregate_Issues(t *testing.T) {
	players := append(roster(), model.Player{ID: 303, FirstName: "Home", LastName: "A", TeamID: awayID})
	in := Input{
		GameID: 1, HomeID: homeID, AwayID: awayID, Players: players,
		Attempts: []Attempt{
			makeAttempt(5, 1, 50, homeID, model.ShotDetail{Shooter: 999},
				model.OnIce{Home: []int64{999}, Away: []int64{}}, 0.1),
			makeAttempt(6, 1, 60, homeID, model.ShotDetail{Shooter: homeA}, model.OnIce{Home: []int64{}, Away: []int64{}}, 0.1),
		},
		Shifts: []model.ShiftInterval{
			{PlayerID: homeB, TeamID: awayID, Period: 1, Start: 0, End: 30, DurationSeconds: 30},
		},
	}
	out, err := Aggregate(in)
	if err != nil {
		t.Fatal(err)
	}
	kinds := make(map[model.IssueKind]int)
	for _, is := range out.Issues {
		kinds[is.Kind]++
	}
	if kinds[model.IssueNameCollision] != 1 {
		t.Errorf("name collision not reported: %+v", out.Issues)
	}
	if kinds[model.IssueUnknownPlayer] != 1 {
		t.Errorf("unknown player should be reported once: %+v", out.Issues)
	}
	if kinds[model.IssueTeamMismatch] != 1 {
		t.Errorf("team mismatch not reported: %+v", out.Issues)
	}
	if kinds[model.IssueEmptyRoster] != 1 {
		t.Errorf("empty roster not reported: %+v", out.Issues)
	}

	// Unknown ids keep their own unnamed row.
	if r := findRow(out, 999, 1); r == nil || r.CorsiFor != 1 || r.Name != "" {
		t.Errorf("unknown player row = %+v", r)
	}
}

func TestAggregate_DuplicateRosterID(t *testing.T) {
	players := append(roster(),
		model.Player{ID: homeA, FirstName: "Other", LastName: "Guy", TeamID: awayID},
		model.Player{ID: homeB, FirstName: "Home", LastName: "B", Position: "D", TeamID: homeID},
	)
	in := Input{
		GameID: 1, HomeID: homeID, AwayID: awayID, Players: players,
		Shifts: []model.ShiftInterval{
			{PlayerID: homeA, TeamID: homeID, Period: 1, Start: 0, End: 40, DurationSeconds: 40},
		},
	}
	out, err := Aggregate(in)
	if err != nil {
		t.Fatal(err)
	}
	var dups []model.Issue
	for _, is := range out.Issues {
		switch is.Kind {
		case model.IssueDuplicateID:
			dups = append(dups, is)
		case model.IssueTeamMismatch:
			t.Errorf("first roster entry should be kept: %+v", is)
		}
	}
	// An identical repeat is not a conflict.
	if len(dups) != 1 || dups[0].PlayerID != homeA {
		t.Fatalf("duplicate id issues = %+v", dups)
	}
	if r := out.TOI[0]; r.PlayerID != homeA || r.Name != "Home A" || r.TeamID != homeID {
		t.Errorf("toi row = %+v", r)
	}
	if r := findRow(out, homeA, 1); r == nil || r.Name != "Home A" || r.TeamID != homeID {
		t.Errorf("player row = %+v", r)
	}
}

func TestAggregate_BadTeams(t *testing.T) {
	if _, err := Aggregate(Input{GameID: 1, HomeID: 10, AwayID: 10}); err == nil {
		t.Error("expected error for identical team ids")
	}
}
