package model

// ---- Game structure ----

// Team is one club as it appears in a game document.
type Team struct {
	ID         int64
	Abbrev     string
	City       string
	Name       string
	Conference string
	Division   string
}

// Player is one roster spot. The roster is the canonical identity table for
// a game: every tally is keyed by ID and names are attached from here.
type Player struct {
	ID        int64
	FirstName string
	LastName  string
	Position  string // C, L, R, D, G
	Jersey    int
	TeamID    int64
}

// Name returns "First Last".
func (p Player) Name() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// IsGoalie reports whether the roster position is goalie.
func (p Player) IsGoalie() bool { return p.Position == "G" }

// ShiftInterval is one continuous on-ice stint in absolute game seconds.
// Start <= End always holds.
type ShiftInterval struct {
	PlayerID        int64
	TeamID          int64
	Period          int
	Start           int
	End             int
	DurationSeconds int
}

// Covers reports whether t lies in the closed interval [Start, End].
func (s ShiftInterval) Covers(t int) bool {
	return s.Start <= t && t <= s.End
}

// OnIce is the pair of rosters present at an instant. Both slices are sorted
// and never nil.
type OnIce struct {
	Home []int64
	Away []int64
}

// Sides returns (shooting side, defending side) for the given owner team.
func (o OnIce) Sides(ownerTeamID, homeTeamID int64) (own, opp []int64) {
	if ownerTeamID == homeTeamID {
		return o.Home, o.Away
	}
	return o.Away, o.Home
}

// ---- Aggregates ----

// PlayerPeriodKey keys every per-player tally.
type PlayerPeriodKey struct {
	PlayerID int64
	Period   int
}

// PlayerPeriodTally holds the accumulated totals for one player in one period.
type PlayerPeriodTally struct {
	PlayerID     int64
	Period       int
	XGFor        float64
	XGAgainst    float64
	CorsiFor     int
	CorsiAgainst int
	ShotAttempts int
	TOISeconds   int
}

// XGForPct returns xGF / (xGF + xGA) as a fraction; ok is false when both are zero.
func (t *PlayerPeriodTally) XGForPct() (float64, bool) {
	den := t.XGFor + t.XGAgainst
	if den == 0 {
		return 0, false
	}
	return t.XGFor / den, true
}

// CorsiForPct returns CF / (CF + CA) as a fraction; ok is false when both are zero.
func (t *PlayerPeriodTally) CorsiForPct() (float64, bool) {
	den := t.CorsiFor + t.CorsiAgainst
	if den == 0 {
		return 0, false
	}
	return float64(t.CorsiFor) / float64(den), true
}

// PlayerPeriodStats is one row of the merged per-player/per-period table.
type PlayerPeriodStats struct {
	GameID   int64
	Name     string
	TeamID   int64
	Position string
	PlayerPeriodTally
}

// ShooterAttempts is one cell of the dense shooter x period attempt grid.
type ShooterAttempts struct {
	PlayerID int64
	Period   int
	Attempts int
}

// TOIRow is the time-on-ice table row.
type TOIRow struct {
	GameID     int64
	PlayerID   int64
	Name       string
	TeamID     int64
	Period     int
	Shifts     int
	TOISeconds int
}

// ShotRow is the shot-quality-and-context table row, including the
// standardized location detail.
type ShotRow struct {
	GameID       int64
	EventID      int64
	Period       int
	PeriodClock  string
	Clock        int
	Kind         Kind
	TeamID       int64
	ShooterID    int64
	GoalieID     OptionalPlayer
	ShotType     string
	Zone         Zone
	Situation    string
	X, Y         float64 // standardized: attacking the net at (89, 0)
	HasLocation  bool
	Distance     float64
	Angle        float64
	Rebound      bool
	Rush         bool
	LastPlayKind Kind
	XG           float64
	HomeOnIce    []int64
	AwayOnIce    []int64
}

// ---- Box score and summary ----

// PeriodGoals is the per-period score line.
type PeriodGoals struct {
	Period int
	Away   int
	Home   int
}

// GameSummary is the score-summary table row.
type GameSummary struct {
	GameID       int64
	RunID        string
	Season       int
	GameType     int
	Date         string
	AwayTeamID   int64
	HomeTeamID   int64
	AwayScore    int
	HomeScore    int
	WinnerID     int64
	LoserID      int64
	LastPeriod   PeriodType
	PeriodGoals  []PeriodGoals
	AwayXG       float64
	HomeXG       float64
	AwayCorsi    int
	HomeCorsi    int
	EventCount   int
	SkippedCount int
}

// SkaterBox is one skater line from the boxscore.
type SkaterBox struct {
	GameID         int64
	PlayerID       int64
	TeamID         int64
	Name           string
	Position       string
	Jersey         int
	Goals          int
	Assists        int
	Points         int
	PlusMinus      int
	PIM            int
	Hits           int
	PowerPlayGoals int
	SOG            int
	BlockedShots   int
	Giveaways      int
	Takeaways      int
	Shifts         int
	TOI            string
	FaceoffPct     *float64 // nil when the skater took no faceoffs
}

// GoalieBox is one goalie line from the boxscore.
type GoalieBox struct {
	GameID       int64
	PlayerID     int64
	TeamID       int64
	Name         string
	Jersey       int
	ShotsAgainst int
	Saves        int
	GoalsAgainst int
	SavePct      *float64 // nil when the goalie faced no shots
	TOI          string
	Starter      bool
	Decision     string
}

// ---- Consistency reporting ----

// IssueKind classifies an aggregation consistency finding.
type IssueKind string

const (
	IssueUnknownPlayer  IssueKind = "unknown_player"
	IssueTeamMismatch   IssueKind = "team_mismatch"
	IssueNameCollision  IssueKind = "name_collision"
	IssueClockRegressed IssueKind = "clock_regressed"
	IssueEmptyRoster    IssueKind = "empty_roster"
	IssueDuplicateID    IssueKind = "duplicate_id"
)

// Issue is a data consistency finding that is reported instead of being
// silently merged away.
type Issue struct {
	GameID   int64
	Kind     IssueKind
	PlayerID int64
	Period   int
	EventID  int64
	Detail   string
}

// GameListing is a lightweight record for list/show commands.
type GameListing struct {
	GameID     int64
	Date       string
	AwayAbbrev string
	HomeAbbrev string
	AwayScore  int
	HomeScore  int
	LastPeriod string
	RunID      string
	Issues     int
}
