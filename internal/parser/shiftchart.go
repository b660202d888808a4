package parser

import (
	"fmt"

	"github.com/goccy/go-json"
)

// goalMarkerTypeCode tags the shift chart rows that mark goals rather than
// shifts.
const goalMarkerTypeCode = 505

// RawShift is one row of the provider shift chart. Start and end are
// elapsed period clocks.
type RawShift struct {
	ID          int64   `json:"id"`
	GameID      int64   `json:"gameId"`
	PlayerID    int64   `json:"playerId"`
	TeamID      int64   `json:"teamId"`
	TeamAbbrev  string  `json:"teamAbbrev"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Period      int     `json:"period"`
	ShiftNumber int     `json:"shiftNumber"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	Duration    *string `json:"duration"`
	TypeCode    int     `json:"typeCode"`
}

type shiftChartDoc struct {
	Data  []RawShift `json:"data"`
	Total int        `json:"total"`
}

// ParseShiftChart decodes a shift chart document, dropping goal markers.
func ParseShiftChart(data []byte) ([]RawShift, error) {
	var doc shiftChartDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode shift chart: %w", err)
	}
	shifts := make([]RawShift, 0, len(doc.Data))
	for _, s := range doc.Data {
		if s.TypeCode == goalMarkerTypeCode || (s.Duration == nil && s.EndTime == "") {
			continue
		}
		shifts = append(shifts, s)
	}
	return shifts, nil
}
