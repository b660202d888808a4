// Package xg builds shot feature rows and scores them with an expected-goals
// model.
package xg

import (
	"context"
	"math"

	"github.com/pable/go-hockey-metrics/internal/model"
)

// Net location on the standardized rink frame. Every shot is rotated so the
// shooting team attacks toward +x.
const (
	NetX = 89.0
	NetY = 0.0
)

// Fallbacks used when the provider sent no shot location.
const (
	defaultDistance = 35.0
	defaultAngle    = 25.0
)

// FeatureNames is the model's input schema, in vector order.
var FeatureNames = []string{
	"distance",
	"angle",
	"rebound",
	"rush",
	"shooter_goalie_same_hand",
	"hand_unknown",
	"shooting_skaters",
	"defending_skaters",
	"empty_net",
	"offensive_zone",
	"shot_wrist",
	"shot_snap",
	"shot_slap",
	"shot_backhand",
	"shot_tip_in",
	"shot_deflected",
	"shot_wrap_around",
}

// shotTypes maps provider shotType values to their one-hot column.
var shotTypes = map[string]int{
	"wrist":       10,
	"snap":        11,
	"slap":        12,
	"backhand":    13,
	"tip-in":      14,
	"deflected":   15,
	"wrap-around": 16,
}

// Hand is a shooting or catching hand.
type Hand int

const (
	HandUnknown Hand = iota
	HandLeft
	HandRight
)

// ParseHand maps the provider's shootsCatches code.
func ParseHand(code string) Hand {
	switch code {
	case "L":
		return HandLeft
	case "R":
		return HandRight
	}
	return HandUnknown
}

func (h Hand) String() string {
	switch h {
	case HandLeft:
		return "L"
	case HandRight:
		return "R"
	}
	return ""
}

// Hands is a resolved player id to hand table. Missing ids are unknown.
type Hands map[int64]Hand

// Of returns the hand for id, HandUnknown when absent.
func (h Hands) Of(id int64) Hand {
	return h[id]
}

// Features is one shot's model input.
type Features struct {
	Distance         float64
	Angle            float64
	HasLocation      bool
	X, Y             float64 // standardized
	Rebound          bool
	Rush             bool
	SameHand         bool
	HandUnknown      bool
	ShootingSkaters  int
	DefendingSkaters int
	EmptyNet         bool
	OffensiveZone    bool
	ShotType         string
}

// Vector lays the features out in FeatureNames order.
func (f Features) Vector() []float64 {
	v := make([]float64, len(FeatureNames))
	v[0] = f.Distance
	v[1] = f.Angle
	v[2] = b2f(f.Rebound)
	v[3] = b2f(f.Rush)
	v[4] = b2f(f.SameHand)
	v[5] = b2f(f.HandUnknown)
	v[6] = float64(f.ShootingSkaters)
	v[7] = float64(f.DefendingSkaters)
	v[8] = b2f(f.EmptyNet)
	v[9] = b2f(f.OffensiveZone)
	if col, ok := shotTypes[f.ShotType]; ok {
		v[col] = 1
	}
	return v
}

// BuildFeatures assembles the model row for a shot-family event.
// homeDefendingSide is "left", "right" or "" when unknown.
func BuildFeatures(ev model.AnnotatedEvent, hands Hands, homeDefendingSide string, homeID int64) Features {
	home := ev.OwnerTeamID == homeID
	own, opp, emptyNet := ev.Situation.Skaters(home)
	f := Features{
		Distance:         defaultDistance,
		Angle:            defaultAngle,
		Rebound:          ev.Context.Rebound,
		Rush:             ev.Context.Rush,
		ShootingSkaters:  own,
		DefendingSkaters: opp,
		EmptyNet:         emptyNet,
		OffensiveZone:    ev.Zone == model.ZoneOffensive,
		ShotType:         ev.ShotType(),
	}

	if ev.Coords != nil {
		f.X, f.Y = Standardize(*ev.Coords, home, homeDefendingSide)
		f.Distance, f.Angle = DistanceAngle(f.X, f.Y)
		f.HasLocation = true
	}

	shooter, _ := ev.Shooter()
	sh := hands.Of(shooter)
	var gl Hand
	if g := ev.Goalie(); g.Valid {
		gl = hands.Of(g.ID)
	}
	if sh == HandUnknown || gl == HandUnknown {
		f.HandUnknown = true
	} else {
		f.SameHand = sh == gl
	}
	return f
}

// Standardize rotates a provider location so the shooting team attacks +x.
// With no defending side the shot is assumed to target the nearer net.
func Standardize(p model.Point, shooterIsHome bool, homeDefendingSide string) (float64, float64) {
	sign := 1.0
	switch homeDefendingSide {
	case "left":
		if !shooterIsHome {
			sign = -1
		}
	case "right":
		if shooterIsHome {
			sign = -1
		}
	default:
		if p.X < 0 {
			sign = -1
		}
	}
	return sign * p.X, sign * p.Y
}

// DistanceAngle returns the distance in feet from (x, y) to the net and the
// angle in degrees off the net's center line.
func DistanceAngle(x, y float64) (float64, float64) {
	dx := NetX - x
	dy := y - NetY
	dist := math.Hypot(dx, dy)
	angle := math.Atan2(math.Abs(dy), dx) * 180 / math.Pi
	return dist, angle
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// HandLookup resolves a player's shooting or catching hand. Implementations
// return HandUnknown with an error when the lookup itself failed.
type HandLookup interface {
	Hand(ctx context.Context, playerID int64) (Hand, error)
}
