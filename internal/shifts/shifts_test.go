package shifts

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pable/go-hockey-metrics/internal/model"
	"github.com/pable/go-hockey-metrics/internal/parser"
)

func strp(s string) *string { return &s }

func TestPlayersOnIce_ClosedInterval(t *testing.T) {
	idx := NewIndex([]model.ShiftInterval{
		{PlayerID: 7, TeamID: 10, Period: 1, Start: 100, End: 160, DurationSeconds: 60},
	})
	cases := []struct {
		t    int
		want bool
	}{
		{99, false},
		{100, true},
		{130, true},
		{160, true},
		{161, false},
	}
	for _, c := range cases {
		got := idx.PlayersOnIce(c.t, 10)
		if has := len(got) == 1 && got[0] == 7; has != c.want {
			t.Errorf("t=%d: on ice = %v, want present=%v", c.t, got, c.want)
		}
	}
}

func TestPlayersOnIce_EmptyIsNotNil(t *testing.T) {
	idx := NewIndex(nil)
	got := idx.PlayersOnIce(50, 10)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestPlayersOnIce_SortedAndPerTeam(t *testing.T) {
	idx := NewIndex([]model.ShiftInterval{
		{PlayerID: 30, TeamID: 10, Start: 0, End: 45},
		{PlayerID: 12, TeamID: 10, Start: 20, End: 80},
		{PlayerID: 99, TeamID: 6, Start: 0, End: 80},
		{PlayerID: 12, TeamID: 10, Start: 40, End: 41}, // overlapping duplicate row
		{PlayerID: 44, TeamID: 10, Start: 46, End: 90},
	})
	if got := idx.PlayersOnIce(40, 10); !reflect.DeepEqual(got, []int64{12, 30}) {
		t.Errorf("home at 40 = %v", got)
	}
	if got := idx.PlayersOnIce(40, 6); !reflect.DeepEqual(got, []int64{99}) {
		t.Errorf("away at 40 = %v", got)
	}
	if got := idx.Teams(); !reflect.DeepEqual(got, []int64{6, 10}) {
		t.Errorf("teams = %v", got)
	}

	r := Resolver{Index: idx, HomeID: 10, AwayID: 6}
	on := r.Resolve(85)
	if !reflect.DeepEqual(on.Home, []int64{44}) || !reflect.DeepEqual(on.Away, []int64{}) {
		t.Errorf("resolve(85) = %+v", on)
	}
}

func TestBuild(t *testing.T) {
	raw := []parser.RawShift{
		{ID: 1, PlayerID: 7, TeamID: 10, Period: 2, StartTime: "01:40", EndTime: "02:40", Duration: strp("01:00")},
		{ID: 2, PlayerID: 8, TeamID: 10, Period: 1, StartTime: "19:30", EndTime: "20:00"},
	}
	got, skipped, err := Build(raw, false)
	if err != nil || len(skipped) != 0 {
		t.Fatalf("Build: skipped=%v err=%v", skipped, err)
	}
	want := []model.ShiftInterval{
		{PlayerID: 7, TeamID: 10, Period: 2, Start: 1300, End: 1360, DurationSeconds: 60},
		{PlayerID: 8, TeamID: 10, Period: 1, Start: 1170, End: 1200, DurationSeconds: 30},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build = %+v\nwant %+v", got, want)
	}
}

func TestBuild_SkipsMalformedRows(t *testing.T) {
	raw := []parser.RawShift{
		{ID: 1, PlayerID: 7, TeamID: 10, Period: 1, StartTime: "00:00", EndTime: "00:45"},
		{ID: 2, PlayerID: 7, TeamID: 10, Period: 1, StartTime: "01:00", EndTime: "", Duration: strp("00:40")},
		{ID: 3, PlayerID: 8, TeamID: 10, Period: 1, StartTime: "1:2", EndTime: "02:00"},
		{ID: 4, PlayerID: 8, TeamID: 10, Period: 1, StartTime: "05:00", EndTime: "04:00"},
		{ID: 5, PlayerID: 9, TeamID: 10, Period: 1, StartTime: "06:00"},
	}

	got, skipped, err := Build(raw, false)
	if err != nil {
		t.Fatalf("lenient Build: %v", err)
	}
	want := []model.ShiftInterval{
		{PlayerID: 7, TeamID: 10, Period: 1, Start: 0, End: 45, DurationSeconds: 45},
		{PlayerID: 7, TeamID: 10, Period: 1, Start: 60, End: 100, DurationSeconds: 40},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build = %+v\nwant %+v", got, want)
	}
	if len(skipped) != 3 {
		t.Fatalf("expected 3 skipped rows, got %v", skipped)
	}
	var bad *MalformedShiftError
	if !errors.As(skipped[0], &bad) || bad.ShiftID != 3 || bad.PlayerID != 8 {
		t.Errorf("first skipped = %v", skipped[0])
	}
}

func TestBuild_StrictFailsOnFirstMalformedRow(t *testing.T) {
	raw := []parser.RawShift{
		{ID: 1, PlayerID: 7, TeamID: 10, Period: 1, StartTime: "00:00", EndTime: "00:45"},
		{ID: 4, PlayerID: 8, TeamID: 10, Period: 1, StartTime: "05:00", EndTime: "04:00"},
	}
	got, _, err := Build(raw, true)
	var bad *MalformedShiftError
	if !errors.As(err, &bad) || bad.ShiftID != 4 {
		t.Fatalf("expected MalformedShiftError for shift 4, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no intervals on strict failure, got %+v", got)
	}
}
