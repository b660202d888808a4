// Package parser normalizes the provider's game documents into model types.
//
// The play-by-play document is walked with gjson because its plays are
// heterogeneous: each record is classified by which discriminating detail
// field it carries before any kind-specific field is read. The shift chart
// and boxscore have fixed shapes and are decoded into structs.
package parser

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/pable/go-hockey-metrics/internal/clock"
	"github.com/pable/go-hockey-metrics/internal/logging"
	"github.com/pable/go-hockey-metrics/internal/model"
)

// Skip reasons reported in Stats.Skipped.
const (
	ReasonMissingDetails   = "missing_details"
	ReasonUnrecognizedKind = "unrecognized_kind"
	ReasonMissingField     = "missing_field"
	ReasonMalformedClock   = "malformed_clock"
	ReasonMalformedRecord  = "malformed_record"
)

// administrative plays carry no player or spatial data.
var administrative = map[string]bool{
	"period-start":        true,
	"period-end":          true,
	"stoppage":            true,
	"delayed-penalty":     true,
	"game-end":            true,
	"shootout-complete":   true,
	"game-official":       true,
	"challenge":           true,
	"failed-shot-attempt": true,
}

// ErrInvalidDocument is returned when the input is not a JSON game document.
var ErrInvalidDocument = errors.New("invalid game document")

var errUnrecognizedKind = errors.New("unrecognized play kind")

// MissingRequiredFieldError reports a play whose kind-defining field is absent.
type MissingRequiredFieldError struct {
	EventID int64
	Kind    model.Kind
	Field   string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("event %d (%s): missing required field %s", e.EventID, e.Kind, e.Field)
}

// Options controls how record-level errors are handled.
type Options struct {
	// Strict returns the first record error instead of skipping the record.
	Strict bool
	// KeepShootout retains shootout attempts. They are dropped by default
	// since they are not part of 5-on-5 or special-teams play.
	KeepShootout bool
}

// Stats counts what the normalizer did with the play list.
type Stats struct {
	Records        int
	Retained       int
	Administrative int
	Shootout       int
	Skipped        map[string]int
}

// SkippedTotal returns the number of records dropped as malformed.
func (s Stats) SkippedTotal() int {
	n := 0
	for _, c := range s.Skipped {
		n += c
	}
	return n
}

// Game is the normalized play-by-play document.
type Game struct {
	GameID   int64
	Season   int
	GameType int
	Date     string
	State    string
	Home     model.Team
	Away     model.Team
	Players  []model.Player
	Events   []model.GameEvent

	// HomeDefendingSide maps period to "left" or "right".
	HomeDefendingSide map[int]string
	Issues            []model.Issue
	Stats             Stats
}

// ParsePlayByPlay normalizes a play-by-play document.
func ParsePlayByPlay(data []byte, opts Options) (*Game, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidDocument
	}
	doc := gjson.ParseBytes(data)
	if !doc.Get("id").Exists() || !doc.Get("homeTeam.id").Exists() || !doc.Get("awayTeam.id").Exists() {
		return nil, fmt.Errorf("%w: missing game or team id", ErrInvalidDocument)
	}

	g := &Game{
		GameID:            doc.Get("id").Int(),
		Season:            int(doc.Get("season").Int()),
		GameType:          int(doc.Get("gameType").Int()),
		Date:              doc.Get("gameDate").String(),
		State:             doc.Get("gameState").String(),
		Home:              parseTeam(doc.Get("homeTeam")),
		Away:              parseTeam(doc.Get("awayTeam")),
		HomeDefendingSide: make(map[int]string),
		Stats:             Stats{Skipped: make(map[string]int)},
	}

	doc.Get("rosterSpots").ForEach(func(_, spot gjson.Result) bool {
		g.Players = append(g.Players, model.Player{
			ID:        spot.Get("playerId").Int(),
			FirstName: spot.Get("firstName.default").String(),
			LastName:  spot.Get("lastName.default").String(),
			Position:  spot.Get("positionCode").String(),
			Jersey:    int(spot.Get("sweaterNumber").Int()),
			TeamID:    spot.Get("teamId").Int(),
		})
		return true
	})

	var recordErr error
	doc.Get("plays").ForEach(func(_, play gjson.Result) bool {
		g.Stats.Records++
		typeKey := play.Get("typeDescKey").String()
		if administrative[typeKey] {
			g.Stats.Administrative++
			return true
		}
		if play.Get("periodDescriptor.periodType").String() == string(model.PeriodShootout) && !opts.KeepShootout {
			g.Stats.Shootout++
			return true
		}
		details := play.Get("details")
		if !details.Exists() {
			g.Stats.Skipped[ReasonMissingDetails]++
			return true
		}

		ev, err := normalize(g.GameID, play, details)
		if err != nil {
			reason := skipReason(err)
			if opts.Strict {
				recordErr = err
				return false
			}
			g.Stats.Skipped[reason]++
			logging.Debug().Int64("game", g.GameID).Int64("event", play.Get("eventId").Int()).
				Str("type", typeKey).Str("reason", reason).Err(err).Msg("play skipped")
			return true
		}

		if side := play.Get("homeTeamDefendingSide").String(); side != "" {
			if _, seen := g.HomeDefendingSide[ev.Period]; !seen {
				g.HomeDefendingSide[ev.Period] = side
			}
		}
		g.Events = append(g.Events, ev)
		return true
	})
	if recordErr != nil {
		return nil, recordErr
	}

	attributeBlockedShots(g.Events, g.Players)
	g.Issues = orderByClock(g.GameID, g.Events)
	g.Stats.Retained = len(g.Events)
	return g, nil
}

func parseTeam(t gjson.Result) model.Team {
	abbrev := t.Get("abbrev").String()
	name := t.Get("commonName.default").String()
	if name == "" {
		name = t.Get("name.default").String()
	}
	club := LookupClub(abbrev)
	return model.Team{
		ID:         t.Get("id").Int(),
		Abbrev:     abbrev,
		City:       t.Get("placeName.default").String(),
		Name:       name,
		Conference: club.Conference,
		Division:   club.Division,
	}
}

func normalize(gameID int64, play, d gjson.Result) (model.GameEvent, error) {
	eventID := play.Get("eventId").Int()
	ev := model.GameEvent{
		GameID:     gameID,
		EventID:    eventID,
		Period:     int(play.Get("periodDescriptor.number").Int()),
		PeriodType: model.PeriodType(play.Get("periodDescriptor.periodType").String()),
		Zone:       model.ParseZone(d.Get("zoneCode").String()),
	}

	detail, err := classify(eventID, play.Get("typeDescKey").String(), d)
	if err != nil {
		return ev, err
	}
	ev.Detail = detail

	owner := d.Get("eventOwnerTeamId")
	if !owner.Exists() {
		return ev, &MissingRequiredFieldError{EventID: eventID, Kind: detail.Kind(), Field: "eventOwnerTeamId"}
	}
	ev.OwnerTeamID = owner.Int()

	if ev.PeriodClock, ev.Clock, err = eventClock(ev.Period, play); err != nil {
		return ev, fmt.Errorf("event %d: %w", eventID, err)
	}

	sit, err := model.ParseSituation(play.Get("situationCode").String())
	if err != nil {
		return ev, fmt.Errorf("event %d: %w", eventID, err)
	}
	ev.Situation = sit

	x, y := d.Get("xCoord"), d.Get("yCoord")
	if x.Exists() && y.Exists() {
		ev.Coords = &model.Point{X: x.Float(), Y: y.Float()}
	}
	return ev, nil
}

// eventClock prefers the elapsed timeInPeriod; timeRemaining assumes a
// full-length period and is only used when elapsed time is absent.
func eventClock(period int, play gjson.Result) (string, int, error) {
	if elapsed := play.Get("timeInPeriod").String(); elapsed != "" {
		abs, err := clock.ToAbsolute(period, elapsed, false)
		if err != nil {
			return "", 0, err
		}
		secs, _ := clock.Seconds(elapsed)
		return clock.FormatSeconds(secs), abs, nil
	}
	remaining := play.Get("timeRemaining").String()
	abs, err := clock.ToAbsolute(period, remaining, true)
	if err != nil {
		return "", 0, err
	}
	return clock.FormatSeconds(abs - (period-1)*clock.PeriodLength), abs, nil
}

// classify picks the play kind by discriminating field. Order matters: the
// first matching rule wins.
func classify(eventID int64, typeKey string, d gjson.Result) (model.Detail, error) {
	required := func(kind model.Kind, field string) (int64, error) {
		v := d.Get(field)
		if !v.Exists() {
			return 0, &MissingRequiredFieldError{EventID: eventID, Kind: kind, Field: field}
		}
		return v.Int(), nil
	}

	switch {
	case d.Get("losingPlayerId").Exists():
		winner, err := required(model.KindFaceoff, "winningPlayerId")
		if err != nil {
			return nil, err
		}
		return model.FaceoffDetail{Winner: winner, Loser: d.Get("losingPlayerId").Int()}, nil

	case d.Get("hittingPlayerId").Exists():
		return model.HitDetail{
			Hitter: d.Get("hittingPlayerId").Int(),
			Hittee: optional(d, "hitteePlayerId"),
		}, nil

	case typeKey == "giveaway" || typeKey == "takeaway":
		kind := model.KindGiveaway
		if typeKey == "takeaway" {
			kind = model.KindTakeaway
		}
		player, err := required(kind, "playerId")
		if err != nil {
			return nil, err
		}
		return model.TurnoverDetail{Player: player, Takeaway: kind == model.KindTakeaway}, nil

	case typeKey == "penalty":
		desc := d.Get("descKey")
		if !desc.Exists() || desc.String() == "" {
			return nil, &MissingRequiredFieldError{EventID: eventID, Kind: model.KindPenalty, Field: "descKey"}
		}
		return model.PenaltyDetail{
			Type:      desc.String(),
			Severity:  d.Get("typeCode").String(),
			Committed: optional(d, "committedByPlayerId"),
			Drawn:     optional(d, "drawnByPlayerId"),
			Minutes:   int(d.Get("duration").Int()),
		}, nil

	case typeKey == "goal":
		scorer, err := required(model.KindGoal, "scoringPlayerId")
		if err != nil {
			return nil, err
		}
		return model.GoalDetail{
			Scorer:   scorer,
			Goalie:   optional(d, "goalieInNetId"),
			ShotType: d.Get("shotType").String(),
			Assist1:  optional(d, "assist1PlayerId"),
			Assist2:  optional(d, "assist2PlayerId"),
		}, nil

	case typeKey == "missed-shot":
		shooter, err := required(model.KindMissedShot, "shootingPlayerId")
		if err != nil {
			return nil, err
		}
		return model.MissedShotDetail{
			Shooter:  shooter,
			Goalie:   optional(d, "goalieInNetId"),
			ShotType: d.Get("shotType").String(),
			Reason:   d.Get("reason").String(),
		}, nil

	case typeKey == "blocked-shot":
		shooter, err := required(model.KindBlockedShot, "shootingPlayerId")
		if err != nil {
			return nil, err
		}
		return model.BlockedShotDetail{Shooter: shooter, Blocker: optional(d, "blockingPlayerId")}, nil

	case typeKey == "shot-on-goal":
		shooter, err := required(model.KindShotOnGoal, "shootingPlayerId")
		if err != nil {
			return nil, err
		}
		return model.ShotDetail{
			Shooter:  shooter,
			Goalie:   optional(d, "goalieInNetId"),
			ShotType: d.Get("shotType").String(),
		}, nil
	}
	return nil, fmt.Errorf("event %d: %w %q", eventID, errUnrecognizedKind, typeKey)
}

func optional(d gjson.Result, field string) model.OptionalPlayer {
	v := d.Get(field)
	if !v.Exists() || v.Type == gjson.Null {
		return model.NoPlayer
	}
	return model.SomePlayer(v.Int())
}

func skipReason(err error) string {
	var missing *MissingRequiredFieldError
	var malformed *clock.MalformedTimeError
	switch {
	case errors.As(err, &missing):
		return ReasonMissingField
	case errors.As(err, &malformed):
		return ReasonMalformedClock
	case errors.Is(err, errUnrecognizedKind):
		return ReasonUnrecognizedKind
	default:
		return ReasonMalformedRecord
	}
}

// attributeBlockedShots credits blocked shots to the shooting team. The
// provider owns a block by the blocking team and codes its zone from that
// side, which would invert Corsi for the play.
func attributeBlockedShots(events []model.GameEvent, roster []model.Player) {
	teamOf := make(map[int64]int64, len(roster))
	for _, p := range roster {
		teamOf[p.ID] = p.TeamID
	}
	for i := range events {
		d, ok := events[i].Detail.(model.BlockedShotDetail)
		if !ok {
			continue
		}
		team, known := teamOf[d.Shooter]
		if !known || team == events[i].OwnerTeamID {
			continue
		}
		events[i].OwnerTeamID = team
		switch events[i].Zone {
		case model.ZoneOffensive:
			events[i].Zone = model.ZoneDefensive
		case model.ZoneDefensive:
			events[i].Zone = model.ZoneOffensive
		}
	}
}

// orderByClock restores a non-decreasing clock when the provider order
// regresses, reporting each regression.
func orderByClock(gameID int64, events []model.GameEvent) []model.Issue {
	var issues []model.Issue
	for i := 1; i < len(events); i++ {
		if events[i].Clock < events[i-1].Clock {
			issues = append(issues, model.Issue{
				GameID:  gameID,
				Kind:    model.IssueClockRegressed,
				Period:  events[i].Period,
				EventID: events[i].EventID,
				Detail: fmt.Sprintf("clock %d after %d (event %d)",
					events[i].Clock, events[i-1].Clock, events[i-1].EventID),
			})
		}
	}
	if len(issues) > 0 {
		sort.SliceStable(events, func(i, j int) bool { return events[i].Clock < events[j].Clock })
	}
	return issues
}
