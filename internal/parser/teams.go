package parser

// Club is the league alignment of a team.
type Club struct {
	Conference string
	Division   string
}

const (
	eastern      = "Eastern"
	western      = "Western"
	atlantic     = "Atlantic"
	metropolitan = "Metropolitan"
	central      = "Central"
	pacific      = "Pacific"
)

var clubs = map[string]Club{
	"BOS": {eastern, atlantic},
	"BUF": {eastern, atlantic},
	"DET": {eastern, atlantic},
	"FLA": {eastern, atlantic},
	"MTL": {eastern, atlantic},
	"OTT": {eastern, atlantic},
	"TBL": {eastern, atlantic},
	"TOR": {eastern, atlantic},

	"CAR": {eastern, metropolitan},
	"CBJ": {eastern, metropolitan},
	"NJD": {eastern, metropolitan},
	"NYI": {eastern, metropolitan},
	"NYR": {eastern, metropolitan},
	"PHI": {eastern, metropolitan},
	"PIT": {eastern, metropolitan},
	"WSH": {eastern, metropolitan},

	"CHI": {western, central},
	"COL": {western, central},
	"DAL": {western, central},
	"MIN": {western, central},
	"NSH": {western, central},
	"STL": {western, central},
	"UTA": {western, central},
	"WPG": {western, central},

	"ANA": {western, pacific},
	"CGY": {western, pacific},
	"EDM": {western, pacific},
	"LAK": {western, pacific},
	"SEA": {western, pacific},
	"SJS": {western, pacific},
	"VAN": {western, pacific},
	"VGK": {western, pacific},
}

// LookupClub returns the alignment for a team abbreviation. Unknown clubs
// (all-star or international teams) get an empty Club.
func LookupClub(abbrev string) Club {
	return clubs[abbrev]
}
