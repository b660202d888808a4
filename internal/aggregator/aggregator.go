package aggregator

import (
	"fmt"
	"sort"

	"github.com/pable/go-hockey-metrics/internal/model"
)

// Attempt is a shot-family event with the rosters on ice when it happened
// and, when the model scored it, its expected-goal value.
type Attempt struct {
	Event model.AnnotatedEvent
	OnIce model.OnIce
	XG    float64
	HasXG bool
}

// Input is everything one game contributes to the tallies.
type Input struct {
	GameID   int64
	HomeID   int64
	AwayID   int64
	Players  []model.Player // canonical identity table
	Attempts []Attempt
	Shifts   []model.ShiftInterval
}

// Output holds the per-player views and the team totals.
type Output struct {
	PlayerPeriods []model.PlayerPeriodStats
	Shooters      []model.ShooterAttempts
	TOI           []model.TOIRow
	PeriodGoals   []model.PeriodGoals
	Issues        []model.Issue

	HomeXG    float64
	AwayXG    float64
	HomeCorsi int
	AwayCorsi int
}

// Aggregate folds attempts and shifts into per-player, per-period tallies and
// merges them on the canonical player id.
func Aggregate(in Input) (*Output, error) {
	if in.HomeID == 0 || in.AwayID == 0 || in.HomeID == in.AwayID {
		return nil, fmt.Errorf("aggregate game %d: bad team ids home=%d away=%d", in.GameID, in.HomeID, in.AwayID)
	}
	out := &Output{}
	issues := newIssueSet(in.GameID)

	// ---- Pass 1: identity table. ----

	players := make(map[int64]model.Player, len(in.Players))
	byName := make(map[string]int64)
	for _, p := range in.Players {
		if first, dup := players[p.ID]; dup {
			// The first roster entry wins; later conflicting entries are reported.
			if first.Name() != p.Name() || first.TeamID != p.TeamID {
				issues.add(model.IssueDuplicateID, p.ID, 0, 0,
					fmt.Sprintf("id listed as %q (team %d) and %q (team %d)", first.Name(), first.TeamID, p.Name(), p.TeamID))
			}
			continue
		}
		players[p.ID] = p
		name := p.Name()
		if name == "" {
			continue
		}
		if other, dup := byName[name]; dup && other != p.ID {
			// Two ids, one display name: keep both rows, never merge them.
			issues.add(model.IssueNameCollision, p.ID, 0, 0,
				fmt.Sprintf("%q is shared by players %d and %d", name, other, p.ID))
			continue
		}
		byName[name] = p.ID
	}
	known := func(id int64, period int, eventID int64, where string) {
		if _, ok := players[id]; !ok {
			issues.add(model.IssueUnknownPlayer, id, period, eventID, "player not on game roster ("+where+")")
		}
	}

	// ---- Pass 2: chronological attempt order. ----
	// (period asc, time remaining desc) is forward chronology within a game.

	attempts := make([]Attempt, 0, len(in.Attempts))
	for _, a := range in.Attempts {
		if a.Event.Kind().IsShotFamily() {
			attempts = append(attempts, a)
		}
	}
	sort.SliceStable(attempts, func(i, j int) bool {
		a, b := attempts[i].Event, attempts[j].Event
		if a.Period != b.Period {
			return a.Period < b.Period
		}
		return a.Clock < b.Clock
	})

	// ---- Pass 3: xG and Corsi credit to everyone on ice. ----

	tallies := make(map[model.PlayerPeriodKey]*model.PlayerPeriodTally)
	tally := func(id int64, period int) *model.PlayerPeriodTally {
		k := model.PlayerPeriodKey{PlayerID: id, Period: period}
		t, ok := tallies[k]
		if !ok {
			t = &model.PlayerPeriodTally{PlayerID: id, Period: period}
			tallies[k] = t
		}
		return t
	}

	periods := make(map[int]bool)
	goals := make(map[int]*model.PeriodGoals)
	for _, a := range attempts {
		ev := a.Event
		periods[ev.Period] = true
		own, opp := a.OnIce.Sides(ev.OwnerTeamID, in.HomeID)
		if len(own) == 0 && len(opp) == 0 {
			issues.add(model.IssueEmptyRoster, 0, ev.Period, ev.EventID, "no shifts cover "+ev.PeriodClock)
		}

		for _, id := range own {
			known(id, ev.Period, ev.EventID, "on ice")
			t := tally(id, ev.Period)
			t.CorsiFor++
			if a.HasXG {
				t.XGFor += a.XG
			}
		}
		for _, id := range opp {
			known(id, ev.Period, ev.EventID, "on ice")
			t := tally(id, ev.Period)
			t.CorsiAgainst++
			if a.HasXG {
				t.XGAgainst += a.XG
			}
		}

		home := ev.OwnerTeamID == in.HomeID
		if home {
			out.HomeCorsi++
			if a.HasXG {
				out.HomeXG += a.XG
			}
		} else {
			out.AwayCorsi++
			if a.HasXG {
				out.AwayXG += a.XG
			}
		}

		if ev.Kind() == model.KindGoal {
			pg, ok := goals[ev.Period]
			if !ok {
				pg = &model.PeriodGoals{Period: ev.Period}
				goals[ev.Period] = pg
			}
			if home {
				pg.Home++
			} else {
				pg.Away++
			}
		}
	}

	// ---- Pass 4: dense shooter x period attempt grid. ----

	events := make([]model.AnnotatedEvent, len(attempts))
	for i, a := range attempts {
		events[i] = a.Event
		if shooter, ok := a.Event.Shooter(); ok {
			known(shooter, a.Event.Period, a.Event.EventID, "shooter")
		}
	}
	out.Shooters = FillShotAttempts(events)
	for _, s := range out.Shooters {
		tally(s.PlayerID, s.Period).ShotAttempts = s.Attempts
	}

	// ---- Pass 5: time on ice from shifts. ----

	type toiAcc struct {
		team    int64
		shifts  int
		seconds int
	}
	toi := make(map[model.PlayerPeriodKey]*toiAcc)
	for _, s := range in.Shifts {
		periods[s.Period] = true
		if p, ok := players[s.PlayerID]; !ok {
			known(s.PlayerID, s.Period, 0, "shift chart")
		} else if p.TeamID != s.TeamID {
			issues.add(model.IssueTeamMismatch, s.PlayerID, s.Period, 0,
				fmt.Sprintf("shift team %d, roster team %d", s.TeamID, p.TeamID))
		}
		k := model.PlayerPeriodKey{PlayerID: s.PlayerID, Period: s.Period}
		acc, ok := toi[k]
		if !ok {
			acc = &toiAcc{team: s.TeamID}
			toi[k] = acc
		}
		acc.shifts++
		acc.seconds += s.DurationSeconds
		tally(s.PlayerID, s.Period).TOISeconds += s.DurationSeconds
	}

	// ---- Pass 6: merge on (player id, period). ----

	teamOf := func(id int64) int64 {
		if p, ok := players[id]; ok {
			return p.TeamID
		}
		for k, acc := range toi {
			if k.PlayerID == id {
				return acc.team
			}
		}
		return 0
	}

	for _, t := range tallies {
		p := players[t.PlayerID]
		out.PlayerPeriods = append(out.PlayerPeriods, model.PlayerPeriodStats{
			GameID:            in.GameID,
			Name:              p.Name(),
			TeamID:            teamOf(t.PlayerID),
			Position:          p.Position,
			PlayerPeriodTally: *t,
		})
	}
	sort.Slice(out.PlayerPeriods, func(i, j int) bool {
		a, b := out.PlayerPeriods[i], out.PlayerPeriods[j]
		if a.TeamID != b.TeamID {
			return a.TeamID < b.TeamID
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if a.PlayerID != b.PlayerID {
			return a.PlayerID < b.PlayerID
		}
		return a.Period < b.Period
	})

	for k, acc := range toi {
		out.TOI = append(out.TOI, model.TOIRow{
			GameID:     in.GameID,
			PlayerID:   k.PlayerID,
			Name:       players[k.PlayerID].Name(),
			TeamID:     acc.team,
			Period:     k.Period,
			Shifts:     acc.shifts,
			TOISeconds: acc.seconds,
		})
	}
	sort.Slice(out.TOI, func(i, j int) bool {
		a, b := out.TOI[i], out.TOI[j]
		if a.PlayerID != b.PlayerID {
			return a.PlayerID < b.PlayerID
		}
		return a.Period < b.Period
	})

	for _, p := range sortedPeriods(periods) {
		pg := model.PeriodGoals{Period: p}
		if g, ok := goals[p]; ok {
			pg = *g
		}
		out.PeriodGoals = append(out.PeriodGoals, pg)
	}

	out.Issues = issues.list
	return out, nil
}

// FillShotAttempts counts attempts per shooter and period over the dense
// cross product of every shooter and every period seen in events, so
// combinations without an attempt are reported as zero.
func FillShotAttempts(events []model.AnnotatedEvent) []model.ShooterAttempts {
	counts := make(map[model.PlayerPeriodKey]int)
	shooters := make(map[int64]bool)
	periods := make(map[int]bool)
	for _, ev := range events {
		if !ev.Kind().IsShotFamily() {
			continue
		}
		shooter, ok := ev.Shooter()
		if !ok {
			continue
		}
		shooters[shooter] = true
		periods[ev.Period] = true
		counts[model.PlayerPeriodKey{PlayerID: shooter, Period: ev.Period}]++
	}

	ids := make([]int64, 0, len(shooters))
	for id := range shooters {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	ps := sortedPeriods(periods)

	out := make([]model.ShooterAttempts, 0, len(ids)*len(ps))
	for _, id := range ids {
		for _, p := range ps {
			out = append(out, model.ShooterAttempts{
				PlayerID: id,
				Period:   p,
				Attempts: counts[model.PlayerPeriodKey{PlayerID: id, Period: p}],
			})
		}
	}
	return out
}

func sortedPeriods(set map[int]bool) []int {
	ps := make([]int, 0, len(set))
	for p := range set {
		ps = append(ps, p)
	}
	sort.Ints(ps)
	return ps
}

// issueSet reports each (kind, player) finding once, except per-event kinds.
type issueSet struct {
	gameID int64
	seen   map[string]bool
	list   []model.Issue
}

func newIssueSet(gameID int64) *issueSet {
	return &issueSet{gameID: gameID, seen: make(map[string]bool)}
}

func (s *issueSet) add(kind model.IssueKind, playerID int64, period int, eventID int64, detail string) {
	key := fmt.Sprintf("%s/%d", kind, playerID)
	if kind == model.IssueEmptyRoster {
		key = fmt.Sprintf("%s/e%d", kind, eventID)
	}
	if s.seen[key] {
		return
	}
	s.seen[key] = true
	s.list = append(s.list, model.Issue{
		GameID:   s.gameID,
		Kind:     kind,
		PlayerID: playerID,
		Period:   period,
		EventID:  eventID,
		Detail:   detail,
	})
}
