package annotator

import (
	"testing"

	"github.com/pable/go-hockey-metrics/internal/clock"
	"github.com/pable/go-hockey-metrics/internal/model"
)

func makeEvent(t *testing.T, id int64, period int, periodClock string, zone model.Zone, d model.Detail) model.GameEvent {
	t.Helper()
	abs, err := clock.ToAbsolute(period, periodClock, false)
	if err != nil {
		t.Fatal(err)
	}
	return model.GameEvent{
		GameID:      1,
		EventID:     id,
		Period:      period,
		PeriodClock: periodClock,
		Clock:       abs,
		OwnerTeamID: 10,
		Zone:        zone,
		Detail:      d,
	}
}

var (
	shot    = model.ShotDetail{Shooter: 101}
	miss    = model.MissedShotDetail{Shooter: 101}
	block   = model.BlockedShotDetail{Shooter: 101}
	give    = model.TurnoverDetail{Player: 201}
	take    = model.TurnoverDetail{Player: 102, Takeaway: true}
	hit     = model.HitDetail{Hitter: 102}
	faceoff = model.FaceoffDetail{Winner: 101, Loser: 201}
)

// ---- Rebound ----

func TestRebound_MissedShotWindow(t *testing.T) {
	cases := []struct {
		prevClock string
		want      bool
	}{
		{"10:03", true},
		{"10:04", false},
	}
	for _, c := range cases {
		evs := []model.GameEvent{
			makeEvent(t, 1, 1, "10:00", model.ZoneOffensive, miss),
			makeEvent(t, 2, 1, c.prevClock, model.ZoneOffensive, shot),
		}
		got := Annotate(evs)[1].Context
		if got.Rebound != c.want {
			t.Errorf("missed shot %s apart: rebound = %v, want %v", c.prevClock, got.Rebound, c.want)
		}
		if got.LastPlayKind != model.KindMissedShot || !got.HasFlags {
			t.Errorf("context = %+v", got)
		}
	}
}

func TestRebound_BlockedShotWindow(t *testing.T) {
	for _, c := range []struct {
		clock string
		want  bool
	}{{"05:02", true}, {"05:03", false}} {
		evs := []model.GameEvent{
			makeEvent(t, 1, 1, "05:00", model.ZoneOffensive, block),
			makeEvent(t, 2, 1, c.clock, model.ZoneOffensive, shot),
		}
		if got := Annotate(evs)[1].Context.Rebound; got != c.want {
			t.Errorf("blocked %s: rebound = %v, want %v", c.clock, got, c.want)
		}
	}
}

// ---- Rush ----

func TestRush_ZoneOfTurnover(t *testing.T) {
	cases := []struct {
		zone model.Zone
		want bool
	}{
		{model.ZoneNeutral, true},
		{model.ZoneDefensive, true},
		{model.ZoneOffensive, false},
		{model.ZoneUnknown, false},
	}
	for _, c := range cases {
		evs := []model.GameEvent{
			makeEvent(t, 1, 1, "08:00", c.zone, give),
			makeEvent(t, 2, 1, "08:03", model.ZoneOffensive, shot),
		}
		if got := Annotate(evs)[1].Context.Rush; got != c.want {
			t.Errorf("giveaway in zone %q: rush = %v, want %v", c.zone, got, c.want)
		}
	}
}

func TestRush_Window(t *testing.T) {
	for _, c := range []struct {
		clock string
		want  bool
	}{{"08:04", true}, {"08:05", false}} {
		evs := []model.GameEvent{
			makeEvent(t, 1, 1, "08:00", model.ZoneNeutral, take),
			makeEvent(t, 2, 1, c.clock, model.ZoneOffensive, miss),
		}
		if got := Annotate(evs)[1].Context.Rush; got != c.want {
			t.Errorf("takeaway %s: rush = %v, want %v", c.clock, got, c.want)
		}
	}
}

// ---- Look-back semantics ----

func TestOpeningAndNonShotEvents(t *testing.T) {
	evs := []model.GameEvent{
		makeEvent(t, 1, 1, "00:00", model.ZoneNeutral, faceoff),
		makeEvent(t, 2, 1, "00:01", model.ZoneNeutral, give),
		makeEvent(t, 3, 1, "00:02", model.ZoneDefensive, hit),
	}
	got := Annotate(evs)
	if got[0].Context.LastPlayKind != model.KindOpening || got[0].Context.HasFlags {
		t.Errorf("first event context = %+v", got[0].Context)
	}
	// A hit right after a neutral-zone giveaway is not a rush: only shots carry flags.
	if c := got[2].Context; c.Rush || c.Rebound || c.HasFlags || c.LastPlayKind != model.KindGiveaway {
		t.Errorf("hit context = %+v", c)
	}
}

func TestPredecessorIsPreviousRetainedEvent(t *testing.T) {
	// Administrative records are removed before annotation, so the giveaway
	// directly precedes the shot even if a stoppage sat between them upstream.
	evs := []model.GameEvent{
		makeEvent(t, 10, 1, "12:00", model.ZoneNeutral, give),
		makeEvent(t, 12, 1, "12:02", model.ZoneOffensive, shot),
	}
	if c := Annotate(evs)[1].Context; !c.Rush || c.LastPlayKind != model.KindGiveaway {
		t.Errorf("context = %+v", c)
	}
}

func TestNoFlagsAcrossPeriods(t *testing.T) {
	evs := []model.GameEvent{
		makeEvent(t, 1, 1, "20:00", model.ZoneOffensive, shot),
		makeEvent(t, 2, 2, "00:01", model.ZoneOffensive, shot),
	}
	if c := Annotate(evs)[1].Context; c.Rebound {
		t.Errorf("rebound across periods: %+v", c)
	}
}

func TestAnnotateEmpty(t *testing.T) {
	if got := Annotate(nil); len(got) != 0 {
		t.Errorf("Annotate(nil) = %v", got)
	}
}
