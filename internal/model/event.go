package model

import (
	"fmt"
	"strconv"
)

// Kind is the classified type of a retained play.
type Kind int

const (
	// KindOpening marks "no previous play" for the first event of a game.
	KindOpening Kind = iota
	KindFaceoff
	KindHit
	KindGiveaway
	KindTakeaway
	KindPenalty
	KindGoal
	KindMissedShot
	KindBlockedShot
	KindShotOnGoal
)

var kindNames = map[Kind]string{
	KindOpening:     "opening",
	KindFaceoff:     "faceoff",
	KindHit:         "hit",
	KindGiveaway:    "giveaway",
	KindTakeaway:    "takeaway",
	KindPenalty:     "penalty",
	KindGoal:        "goal",
	KindMissedShot:  "missed-shot",
	KindBlockedShot: "blocked-shot",
	KindShotOnGoal:  "shot-on-goal",
}

// String returns the provider's typeDescKey for the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind maps a provider typeDescKey back to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s && k != KindOpening {
			return k, true
		}
	}
	return KindOpening, false
}

// IsShotFamily reports whether the kind is a shot attempt (Corsi event).
func (k Kind) IsShotFamily() bool {
	switch k {
	case KindShotOnGoal, KindMissedShot, KindBlockedShot, KindGoal:
		return true
	}
	return false
}

// IsTurnover reports whether the kind is a giveaway or takeaway.
func (k Kind) IsTurnover() bool {
	return k == KindGiveaway || k == KindTakeaway
}

// Zone is the rink zone of a play from the acting team's perspective.
type Zone int

const (
	ZoneUnknown Zone = iota
	ZoneOffensive
	ZoneNeutral
	ZoneDefensive
)

func (z Zone) String() string {
	switch z {
	case ZoneOffensive:
		return "O"
	case ZoneNeutral:
		return "N"
	case ZoneDefensive:
		return "D"
	default:
		return ""
	}
}

// ParseZone maps the provider zoneCode. Anything unrecognized is ZoneUnknown.
func ParseZone(code string) Zone {
	switch code {
	case "O":
		return ZoneOffensive
	case "N":
		return ZoneNeutral
	case "D":
		return ZoneDefensive
	default:
		return ZoneUnknown
	}
}

// PeriodType is the provider's periodType descriptor.
type PeriodType string

const (
	PeriodRegulation PeriodType = "REG"
	PeriodOvertime   PeriodType = "OT"
	PeriodShootout   PeriodType = "SO"
)

// OptionalPlayer is a player reference that may be absent. Absent is never
// represented by a zero id.
type OptionalPlayer struct {
	ID    int64
	Valid bool
}

// NoPlayer is the absent reference.
var NoPlayer = OptionalPlayer{}

// SomePlayer wraps a present player id.
func SomePlayer(id int64) OptionalPlayer {
	return OptionalPlayer{ID: id, Valid: true}
}

func (p OptionalPlayer) String() string {
	if !p.Valid {
		return "-"
	}
	return strconv.FormatInt(p.ID, 10)
}

// Situation is the decoded 4-character situationCode: away goalie in net,
// away skaters, home skaters, home goalie in net.
type Situation struct {
	AwayGoalie  bool
	AwaySkaters int
	HomeSkaters int
	HomeGoalie  bool
}

// ParseSituation decodes codes like "1551".
func ParseSituation(code string) (Situation, error) {
	if len(code) != 4 {
		return Situation{}, fmt.Errorf("situation code %q: want 4 digits", code)
	}
	var d [4]int
	for i := 0; i < 4; i++ {
		c := code[i]
		if c < '0' || c > '9' {
			return Situation{}, fmt.Errorf("situation code %q: non-digit at %d", code, i)
		}
		d[i] = int(c - '0')
	}
	if d[0] > 1 || d[3] > 1 {
		return Situation{}, fmt.Errorf("situation code %q: goalie flag out of range", code)
	}
	return Situation{
		AwayGoalie:  d[0] == 1,
		AwaySkaters: d[1],
		HomeSkaters: d[2],
		HomeGoalie:  d[3] == 1,
	}, nil
}

// Code re-encodes the situation.
func (s Situation) Code() string {
	return fmt.Sprintf("%d%d%d%d", boolDigit(s.AwayGoalie), s.AwaySkaters, s.HomeSkaters, boolDigit(s.HomeGoalie))
}

// Skaters returns (own, opposing) skater counts and whether the opposing net
// is empty, from the point of view of the home or away side.
func (s Situation) Skaters(home bool) (own, opp int, oppEmptyNet bool) {
	if home {
		return s.HomeSkaters, s.AwaySkaters, !s.AwayGoalie
	}
	return s.AwaySkaters, s.HomeSkaters, !s.HomeGoalie
}

func boolDigit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Point is a location on the provider's rink frame (x in [-100,100], y in [-42.5,42.5]).
type Point struct{ X, Y float64 }

// Detail holds the kind-specific fields of a play. It is a closed sum over
// the eight play shapes below.
type Detail interface {
	Kind() Kind
	isDetail()
}

type FaceoffDetail struct {
	Winner int64
	Loser  int64
}

type HitDetail struct {
	Hitter int64
	Hittee OptionalPlayer
}

// TurnoverDetail covers both giveaways and takeaways.
type TurnoverDetail struct {
	Player   int64
	Takeaway bool
}

type PenaltyDetail struct {
	Type      string // descKey, e.g. "tripping"
	Severity  string // typeCode, e.g. "MIN", "MAJ"
	Committed OptionalPlayer
	Drawn     OptionalPlayer
	Minutes   int
}

type GoalDetail struct {
	Scorer   int64
	Goalie   OptionalPlayer // absent on empty-net goals
	ShotType string         // may be empty
	Assist1  OptionalPlayer
	Assist2  OptionalPlayer
}

type MissedShotDetail struct {
	Shooter  int64
	Goalie   OptionalPlayer
	ShotType string
	Reason   string
}

type BlockedShotDetail struct {
	Shooter int64
	Blocker OptionalPlayer
}

type ShotDetail struct {
	Shooter  int64
	Goalie   OptionalPlayer
	ShotType string
}

func (FaceoffDetail) Kind() Kind     { return KindFaceoff }
func (HitDetail) Kind() Kind         { return KindHit }
func (PenaltyDetail) Kind() Kind     { return KindPenalty }
func (GoalDetail) Kind() Kind        { return KindGoal }
func (MissedShotDetail) Kind() Kind  { return KindMissedShot }
func (BlockedShotDetail) Kind() Kind { return KindBlockedShot }
func (ShotDetail) Kind() Kind        { return KindShotOnGoal }

func (d TurnoverDetail) Kind() Kind {
	if d.Takeaway {
		return KindTakeaway
	}
	return KindGiveaway
}

func (FaceoffDetail) isDetail()     {}
func (HitDetail) isDetail()         {}
func (TurnoverDetail) isDetail()    {}
func (PenaltyDetail) isDetail()     {}
func (GoalDetail) isDetail()        {}
func (MissedShotDetail) isDetail()  {}
func (BlockedShotDetail) isDetail() {}
func (ShotDetail) isDetail()        {}

// GameEvent is one play that survived normalization.
type GameEvent struct {
	GameID      int64
	EventID     int64
	Period      int
	PeriodType  PeriodType
	PeriodClock string // elapsed in period, MM:SS
	Clock       int    // absolute game seconds
	OwnerTeamID int64
	Zone        Zone
	Coords      *Point // nil when the provider sent no location
	Situation   Situation
	Detail      Detail
}

// Kind returns the classified kind of the event.
func (e GameEvent) Kind() Kind {
	if e.Detail == nil {
		return KindOpening
	}
	return e.Detail.Kind()
}

// Shooter returns the shooting (or scoring) player of a shot-family event.
func (e GameEvent) Shooter() (int64, bool) {
	switch d := e.Detail.(type) {
	case ShotDetail:
		return d.Shooter, true
	case MissedShotDetail:
		return d.Shooter, true
	case BlockedShotDetail:
		return d.Shooter, true
	case GoalDetail:
		return d.Scorer, true
	}
	return 0, false
}

// Goalie returns the goalie in net for a shot-family event.
func (e GameEvent) Goalie() OptionalPlayer {
	switch d := e.Detail.(type) {
	case ShotDetail:
		return d.Goalie
	case MissedShotDetail:
		return d.Goalie
	case GoalDetail:
		return d.Goalie
	}
	return NoPlayer
}

// ShotType returns the shot type of a shot-family event, or "".
func (e GameEvent) ShotType() string {
	switch d := e.Detail.(type) {
	case ShotDetail:
		return d.ShotType
	case MissedShotDetail:
		return d.ShotType
	case GoalDetail:
		return d.ShotType
	}
	return ""
}

// TacticalContext carries the look-back features of an event. Rebound and
// Rush are only meaningful when HasFlags is set (shot-family events).
type TacticalContext struct {
	LastPlayKind Kind
	Rebound      bool
	Rush         bool
	HasFlags     bool
}

// AnnotatedEvent pairs an event with its tactical context.
type AnnotatedEvent struct {
	GameEvent
	Context TacticalContext
}
