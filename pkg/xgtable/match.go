package xgtable

import (
	"fmt"
	"time"
)

// Compile-time check to ensure Match implements Persistable interface
var _ Persistable = (*Match)(nil)

// Match represents one played fixture with database persistence annotations.
// The raw fields come straight from the season CSV; the derived fields are
// filled in by EnrichMatches before aggregation.
type Match struct {
	// Primary key
	ID string `json:"id" column:"id" dbtype:"TEXT" primary:"true" index:"true"`

	// Info
	Date     time.Time `json:"date" column:"date" dbtype:"DATETIME" index:"true"`
	Season   string    `json:"season" column:"season" dbtype:"TEXT" index:"true"`
	Division string    `json:"division" column:"division" dbtype:"TEXT" index:"true"`

	// Teams
	HomeTeam string `json:"homeTeam" column:"homeTeam" dbtype:"TEXT NOT NULL" index:"true"`
	AwayTeam string `json:"awayTeam" column:"awayTeam" dbtype:"TEXT NOT NULL" index:"true"`

	// Result and match action counts. Absent values in the source data are
	// zero here, never negative sentinels; the xG derivation treats a missing
	// count and a count of zero identically.
	HomeGoals   int `json:"homeGoals" column:"homeGoals" dbtype:"INTEGER DEFAULT 0"`
	AwayGoals   int `json:"awayGoals" column:"awayGoals" dbtype:"INTEGER DEFAULT 0"`
	HomeShots   int `json:"homeShots" column:"homeShots" dbtype:"INTEGER DEFAULT 0"`
	AwayShots   int `json:"awayShots" column:"awayShots" dbtype:"INTEGER DEFAULT 0"`
	HomeCorners int `json:"homeCorners" column:"homeCorners" dbtype:"INTEGER DEFAULT 0"`
	AwayCorners int `json:"awayCorners" column:"awayCorners" dbtype:"INTEGER DEFAULT 0"`

	// Derived expected goals (from shot and corner counts)
	HomeXgScored   float64 `json:"homeXgScored,omitempty" column:"homeXgScored" dbtype:"REAL DEFAULT 0.0"`
	AwayXgScored   float64 `json:"awayXgScored,omitempty" column:"awayXgScored" dbtype:"REAL DEFAULT 0.0"`
	HomeXgConceded float64 `json:"homeXgConceded,omitempty" column:"homeXgConceded" dbtype:"REAL DEFAULT 0.0"`
	AwayXgConceded float64 `json:"awayXgConceded,omitempty" column:"awayXgConceded" dbtype:"REAL DEFAULT 0.0"`

	// Derived realized points (3 win, 1 draw, 0 loss)
	HomePoints int `json:"homePoints,omitempty" column:"homePoints" dbtype:"INTEGER DEFAULT 0"`
	AwayPoints int `json:"awayPoints,omitempty" column:"awayPoints" dbtype:"INTEGER DEFAULT 0"`

	// Derived expected points, two independent estimators. The Prob variant
	// comes from the Poisson outcome matrix, the Xg variant from cumulative
	// distributions over the raw scored/conceded rates. They are aggregated
	// separately and never blended.
	HomeXpProb float64 `json:"homeXpProb,omitempty" column:"homeXpProb" dbtype:"REAL DEFAULT 0.0"`
	AwayXpProb float64 `json:"awayXpProb,omitempty" column:"awayXpProb" dbtype:"REAL DEFAULT 0.0"`
	HomeXpXg   float64 `json:"homeXpXg,omitempty" column:"homeXpXg" dbtype:"REAL DEFAULT 0.0"`
	AwayXpXg   float64 `json:"awayXpXg,omitempty" column:"awayXpXg" dbtype:"REAL DEFAULT 0.0"`

	// Metadata
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetPrimaryKey returns the primary key as a map
func (m *Match) GetPrimaryKey() map[string]any {
	return map[string]any{
		"id": m.ID,
	}
}

// GetTableName returns the table name for matches
func (m *Match) GetTableName() string {
	return "match"
}

// BeforeSave is called before saving the match
func (m *Match) BeforeSave() error {
	if m.ID == "" {
		m.ID = fmt.Sprintf("%s-%s-%s", m.Date.Format("2006-01-02"), m.HomeTeam, m.AwayTeam)
	}
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	return nil
}

/////////////////////////////////////////////////////////////////////////
////// Enrichment (xG, points, expected points)
/////////////////////////////////////////////////////////////////////////

// EnrichMatches amends every match in place with expected goals, realized
// points and both expected-points estimators. Each row is independent of
// every other row so the iteration order carries no meaning.
func EnrichMatches(matches []*Match) {
	for _, m := range matches {
		m.calculateXg()
		m.HomePoints, m.AwayPoints = CalculatePoints(m.HomeGoals, m.AwayGoals)
		m.calculateExpectedPoints()
	}
}

// calculateXg derives expected goals from shot and corner volume.
// What one side generates offensively is exactly what the other side
// concedes, so the scored/conceded pairs mirror each other by construction.
func (m *Match) calculateXg() {
	home := float64(m.HomeShots)*Config.XgPerShot + float64(m.HomeCorners)*Config.XgPerCorner
	away := float64(m.AwayShots)*Config.XgPerShot + float64(m.AwayCorners)*Config.XgPerCorner

	m.HomeXgScored = home
	m.AwayXgScored = away
	m.HomeXgConceded = away
	m.AwayXgConceded = home
}

// calculateExpectedPoints fills in both expected-points estimators
func (m *Match) calculateExpectedPoints() {
	homeWin, draw, awayWin, _ := OutcomeProbabilities(m.HomeXgScored, m.AwayXgScored, Config.MaxGoals)
	m.HomeXpProb, m.AwayXpProb = ExpectedPointsFromProbabilities(homeWin, draw, awayWin)

	m.HomeXpXg, m.AwayXpXg = ExpectedPointsFromXg(m.HomeXgScored, m.AwayXgScored, m.HomeXgConceded, m.AwayXgConceded)
}

// CalculatePoints derives realized points from a final score.
// Total over every integer goal pair: strict majority wins 3/0, equality
// (including 0-0) gives 1/1.
func CalculatePoints(homeGoals, awayGoals int) (homePoints, awayPoints int) {
	if homeGoals > awayGoals {
		return 3, 0
	}
	if homeGoals < awayGoals {
		return 0, 3
	}
	return 1, 1
}

/////////////////////////////////////////////////////////////////////////
////// Match Collection Operations
/////////////////////////////////////////////////////////////////////////

// TeamsFromMatches extracts unique team identifiers from matches in order of
// first appearance. The order matters: it keeps downstream aggregation
// deterministic across runs on identical input.
func TeamsFromMatches(matches []*Match) []string {
	seen := make(map[string]bool)
	var teams []string

	for _, match := range matches {
		if match.HomeTeam != "" && !seen[match.HomeTeam] {
			seen[match.HomeTeam] = true
			teams = append(teams, match.HomeTeam)
		}
		if match.AwayTeam != "" && !seen[match.AwayTeam] {
			seen[match.AwayTeam] = true
			teams = append(teams, match.AwayTeam)
		}
	}

	return teams
}

// MatchesForTeam returns the matches in which the given team played,
// home or away, preserving the input order.
func MatchesForTeam(matches []*Match, team string) []*Match {
	var ret []*Match
	for _, match := range matches {
		if match.HomeTeam == team || match.AwayTeam == team {
			ret = append(ret, match)
		}
	}
	return ret
}
