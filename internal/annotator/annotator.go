// Package annotator derives the look-back tactical context of each play.
package annotator

import (
	"github.com/pable/go-hockey-metrics/internal/clock"
	"github.com/pable/go-hockey-metrics/internal/model"
)

// Windows in seconds of period clock between a play and the one before it.
const (
	ReboundBlocked = 2 // after a blocked shot
	ReboundShot    = 3 // after a shot on goal or missed shot
	RushWindow     = 4 // after a giveaway or takeaway
)

// Annotate folds over the retained events with one event of look-back and
// returns them with their tactical context. The input is not modified.
//
// Plays in a different period from their predecessor never carry rebound or
// rush: period clocks are not comparable across periods.
func Annotate(events []model.GameEvent) []model.AnnotatedEvent {
	out := make([]model.AnnotatedEvent, 0, len(events))
	var prev *model.GameEvent
	for i := range events {
		ev := events[i]
		out = append(out, model.AnnotatedEvent{GameEvent: ev, Context: contextOf(ev, prev)})
		prev = &events[i]
	}
	return out
}

func contextOf(ev model.GameEvent, prev *model.GameEvent) model.TacticalContext {
	ctx := model.TacticalContext{LastPlayKind: model.KindOpening, HasFlags: ev.Kind().IsShotFamily()}
	if prev == nil {
		return ctx
	}
	ctx.LastPlayKind = prev.Kind()
	if !ctx.HasFlags || prev.Period != ev.Period {
		return ctx
	}

	gap, err := clock.ElapsedBetween(ev.PeriodClock, prev.PeriodClock)
	if err != nil {
		// Normalized events always carry a valid clock; fall back to the
		// absolute axis if one does not.
		gap = ev.Clock - prev.Clock
		if gap < 0 {
			gap = -gap
		}
	}

	switch prev.Kind() {
	case model.KindBlockedShot:
		ctx.Rebound = gap <= ReboundBlocked
	case model.KindMissedShot, model.KindShotOnGoal:
		ctx.Rebound = gap <= ReboundShot
	case model.KindGiveaway, model.KindTakeaway:
		ctx.Rush = gap <= RushWindow && (prev.Zone == model.ZoneNeutral || prev.Zone == model.ZoneDefensive)
	}
	return ctx
}
