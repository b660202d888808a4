package parser

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/pable/go-hockey-metrics/internal/model"
)

type localized struct {
	Default string `json:"default"`
}

type boxTeam struct {
	ID     int64  `json:"id"`
	Abbrev string `json:"abbrev"`
	Score  *int   `json:"score"`
	SOG    int    `json:"sog"`
}

type boxSkater struct {
	PlayerID       int64     `json:"playerId"`
	SweaterNumber  int       `json:"sweaterNumber"`
	Name           localized `json:"name"`
	Position       string    `json:"position"`
	Goals          int       `json:"goals"`
	Assists        int       `json:"assists"`
	Points         int       `json:"points"`
	PlusMinus      int       `json:"plusMinus"`
	PIM            int       `json:"pim"`
	Hits           int       `json:"hits"`
	PowerPlayGoals int       `json:"powerPlayGoals"`
	SOG            int       `json:"sog"`
	FaceoffPct     *float64  `json:"faceoffWinningPctg"`
	TOI            string    `json:"toi"`
	BlockedShots   int       `json:"blockedShots"`
	Shifts         int       `json:"shifts"`
	Giveaways      int       `json:"giveaways"`
	Takeaways      int       `json:"takeaways"`
}

type boxGoalie struct {
	PlayerID      int64     `json:"playerId"`
	SweaterNumber int       `json:"sweaterNumber"`
	Name          localized `json:"name"`
	ShotsAgainst  int       `json:"shotsAgainst"`
	Saves         int       `json:"saves"`
	GoalsAgainst  int       `json:"goalsAgainst"`
	SavePct       *float64  `json:"savePctg"`
	TOI           string    `json:"toi"`
	Starter       bool      `json:"starter"`
	Decision      string    `json:"decision"`
}

type boxSide struct {
	Forwards []boxSkater `json:"forwards"`
	Defense  []boxSkater `json:"defense"`
	Goalies  []boxGoalie `json:"goalies"`
}

// Boxscore is the decoded boxscore document.
type Boxscore struct {
	ID               int64   `json:"id"`
	Season           int     `json:"season"`
	GameType         int     `json:"gameType"`
	GameDate         string  `json:"gameDate"`
	GameState        string  `json:"gameState"`
	AwayTeam         boxTeam `json:"awayTeam"`
	HomeTeam         boxTeam `json:"homeTeam"`
	PeriodDescriptor struct {
		Number     int    `json:"number"`
		PeriodType string `json:"periodType"`
	} `json:"periodDescriptor"`
	PlayerByGameStats struct {
		AwayTeam boxSide `json:"awayTeam"`
		HomeTeam boxSide `json:"homeTeam"`
	} `json:"playerByGameStats"`
}

// ParseBoxscore decodes a boxscore document.
func ParseBoxscore(data []byte) (*Boxscore, error) {
	var b Boxscore
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode boxscore: %w", err)
	}
	return &b, nil
}

// Final reports whether the game is over and both scores are known.
func (b *Boxscore) Final() bool {
	if b.AwayTeam.Score == nil || b.HomeTeam.Score == nil {
		return false
	}
	return b.GameState == "OFF" || b.GameState == "FINAL"
}

// Scores returns (away, home). Missing scores read as zero; check Final first.
func (b *Boxscore) Scores() (int, int) {
	var away, home int
	if b.AwayTeam.Score != nil {
		away = *b.AwayTeam.Score
	}
	if b.HomeTeam.Score != nil {
		home = *b.HomeTeam.Score
	}
	return away, home
}

// Skaters flattens both teams' forwards and defense into box lines.
func (b *Boxscore) Skaters() []model.SkaterBox {
	var out []model.SkaterBox
	add := func(teamID int64, lines []boxSkater) {
		for _, s := range lines {
			out = append(out, model.SkaterBox{
				GameID:         b.ID,
				PlayerID:       s.PlayerID,
				TeamID:         teamID,
				Name:           s.Name.Default,
				Position:       s.Position,
				Jersey:         s.SweaterNumber,
				Goals:          s.Goals,
				Assists:        s.Assists,
				Points:         s.Points,
				PlusMinus:      s.PlusMinus,
				PIM:            s.PIM,
				Hits:           s.Hits,
				PowerPlayGoals: s.PowerPlayGoals,
				SOG:            s.SOG,
				BlockedShots:   s.BlockedShots,
				Giveaways:      s.Giveaways,
				Takeaways:      s.Takeaways,
				Shifts:         s.Shifts,
				TOI:            s.TOI,
				FaceoffPct:     s.FaceoffPct,
			})
		}
	}
	away, home := b.PlayerByGameStats.AwayTeam, b.PlayerByGameStats.HomeTeam
	add(b.AwayTeam.ID, away.Forwards)
	add(b.AwayTeam.ID, away.Defense)
	add(b.HomeTeam.ID, home.Forwards)
	add(b.HomeTeam.ID, home.Defense)
	return out
}

// Goalies returns both teams' goalie box lines.
func (b *Boxscore) Goalies() []model.GoalieBox {
	var out []model.GoalieBox
	add := func(teamID int64, lines []boxGoalie) {
		for _, g := range lines {
			out = append(out, model.GoalieBox{
				GameID:       b.ID,
				PlayerID:     g.PlayerID,
				TeamID:       teamID,
				Name:         g.Name.Default,
				Jersey:       g.SweaterNumber,
				ShotsAgainst: g.ShotsAgainst,
				Saves:        g.Saves,
				GoalsAgainst: g.GoalsAgainst,
				SavePct:      g.SavePct,
				TOI:          g.TOI,
				Starter:      g.Starter,
				Decision:     g.Decision,
			})
		}
	}
	add(b.AwayTeam.ID, b.PlayerByGameStats.AwayTeam.Goalies)
	add(b.HomeTeam.ID, b.PlayerByGameStats.HomeTeam.Goalies)
	return out
}
