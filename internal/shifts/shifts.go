// Package shifts indexes player shifts on the absolute game clock and
// answers "who was on the ice" for a given second.
package shifts

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pable/go-hockey-metrics/internal/clock"
	"github.com/pable/go-hockey-metrics/internal/model"
	"github.com/pable/go-hockey-metrics/internal/parser"
)

// ReasonMalformedShift is the skip reason counted for shift rows Build drops.
const ReasonMalformedShift = "malformed_shift"

// MalformedShiftError reports a shift chart row that cannot be placed on the
// absolute clock.
type MalformedShiftError struct {
	ShiftID  int64
	PlayerID int64
	Err      error
}

func (e *MalformedShiftError) Error() string {
	return fmt.Sprintf("shift %d (player %d): %v", e.ShiftID, e.PlayerID, e.Err)
}

func (e *MalformedShiftError) Unwrap() error { return e.Err }

// Build converts shift chart rows into absolute intervals. Duration comes
// from the row's duration text when present, otherwise End-Start; a row with
// no end time ends Duration after its start.
//
// Rows that cannot be placed are skipped and returned in skipped. With
// strict set the first such row is returned as err instead.
func Build(raw []parser.RawShift, strict bool) (intervals []model.ShiftInterval, skipped []error, err error) {
	intervals = make([]model.ShiftInterval, 0, len(raw))
	for _, r := range raw {
		iv, err := interval(r)
		if err != nil {
			bad := &MalformedShiftError{ShiftID: r.ID, PlayerID: r.PlayerID, Err: err}
			if strict {
				return nil, nil, bad
			}
			skipped = append(skipped, bad)
			continue
		}
		intervals = append(intervals, iv)
	}
	return intervals, skipped, nil
}

func interval(r parser.RawShift) (model.ShiftInterval, error) {
	start, err := clock.ToAbsolute(r.Period, r.StartTime, false)
	if err != nil {
		return model.ShiftInterval{}, fmt.Errorf("start: %w", err)
	}

	dur, hasDur := -1, false
	if r.Duration != nil && *r.Duration != "" {
		if d, err := clock.Seconds(*r.Duration); err == nil {
			dur, hasDur = d, true
		}
	}

	var end int
	switch {
	case r.EndTime != "":
		if end, err = clock.ToAbsolute(r.Period, r.EndTime, false); err != nil {
			return model.ShiftInterval{}, fmt.Errorf("end: %w", err)
		}
	case hasDur:
		end = start + dur
	default:
		return model.ShiftInterval{}, errors.New("no end time or duration")
	}
	if end < start {
		return model.ShiftInterval{}, fmt.Errorf("end %s before start %s", r.EndTime, r.StartTime)
	}
	if !hasDur {
		dur = end - start
	}
	return model.ShiftInterval{
		PlayerID:        r.PlayerID,
		TeamID:          r.TeamID,
		Period:          r.Period,
		Start:           start,
		End:             end,
		DurationSeconds: dur,
	}, nil
}

// Index answers point-in-time membership queries over shift intervals.
type Index struct {
	byTeam map[int64][]model.ShiftInterval // sorted by Start
}

// NewIndex groups intervals by team and sorts each group by start.
func NewIndex(intervals []model.ShiftInterval) *Index {
	idx := &Index{byTeam: make(map[int64][]model.ShiftInterval)}
	for _, iv := range intervals {
		idx.byTeam[iv.TeamID] = append(idx.byTeam[iv.TeamID], iv)
	}
	for _, ivs := range idx.byTeam {
		sort.SliceStable(ivs, func(i, j int) bool { return ivs[i].Start < ivs[j].Start })
	}
	return idx
}

// PlayersOnIce returns the sorted, de-duplicated ids of the team's players
// whose shift covers t, closed on both ends. It never returns nil.
func (x *Index) PlayersOnIce(t int, teamID int64) []int64 {
	ivs := x.byTeam[teamID]
	// Intervals starting after t cannot cover it.
	n := sort.Search(len(ivs), func(i int) bool { return ivs[i].Start > t })
	seen := make(map[int64]bool)
	players := []int64{}
	for _, iv := range ivs[:n] {
		if iv.End >= t && !seen[iv.PlayerID] {
			seen[iv.PlayerID] = true
			players = append(players, iv.PlayerID)
		}
	}
	sort.Slice(players, func(i, j int) bool { return players[i] < players[j] })
	return players
}

// Teams returns the team ids present in the index.
func (x *Index) Teams() []int64 {
	teams := make([]int64, 0, len(x.byTeam))
	for id := range x.byTeam {
		teams = append(teams, id)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i] < teams[j] })
	return teams
}

// Resolver pairs the index with the game's home and away team ids.
type Resolver struct {
	Index  *Index
	HomeID int64
	AwayID int64
}

// Resolve returns both on-ice rosters at absolute second t.
func (r Resolver) Resolve(t int) model.OnIce {
	return model.OnIce{
		Home: r.Index.PlayersOnIce(t, r.HomeID),
		Away: r.Index.PlayersOnIce(t, r.AwayID),
	}
}
