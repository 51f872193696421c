package xgtable

import (
	"fmt"
	"sort"
	"time"

	"github.com/richard-senior/xgtable/internal/logger"
)

// Compile-time check to ensure TeamRow implements Persistable interface
var _ Persistable = (*TeamRow)(nil)

// TeamRow is one team's season summary in the ranked league table.
// Built once per run by AggregateTeamStats and immutable afterwards.
type TeamRow struct {
	// Compound primary key
	Team   string `json:"team" column:"team" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	Season string `json:"season" column:"season" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`

	Rank    int `json:"rank" column:"rank" dbtype:"INTEGER DEFAULT 0"`
	Matches int `json:"matches" column:"matches" dbtype:"INTEGER DEFAULT 0"`
	Points  int `json:"points" column:"points" dbtype:"INTEGER DEFAULT 0"`

	// Expected points, the two per-match estimators summed separately
	XpProb float64 `json:"xpProb" column:"xp_prob" dbtype:"REAL DEFAULT 0.0"`
	XpXg   float64 `json:"xpXg" column:"xp_xg" dbtype:"REAL DEFAULT 0.0"`

	GoalsFor       int `json:"goalsFor" column:"goals_for" dbtype:"INTEGER DEFAULT 0"`
	GoalsAgainst   int `json:"goalsAgainst" column:"goals_against" dbtype:"INTEGER DEFAULT 0"`
	GoalDifference int `json:"goalDifference" column:"goal_difference" dbtype:"INTEGER DEFAULT 0"`

	XgScored   float64 `json:"xgScored" column:"xg_scored" dbtype:"REAL DEFAULT 0.0"`
	XgConceded float64 `json:"xgConceded" column:"xg_conceded" dbtype:"REAL DEFAULT 0.0"`

	// Form is the points earned in the most recent FormWindow matches
	Form int `json:"form" column:"form" dbtype:"INTEGER DEFAULT 0"`

	// Metadata
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetPrimaryKey returns the compound primary key as a map
func (tr *TeamRow) GetPrimaryKey() map[string]any {
	return map[string]any{
		"team":   tr.Team,
		"season": tr.Season,
	}
}

// GetTableName returns the table name for league table rows
func (tr *TeamRow) GetTableName() string {
	return "league_table"
}

// BeforeSave is called before saving the row
func (tr *TeamRow) BeforeSave() error {
	now := time.Now()
	if tr.CreatedAt.IsZero() {
		tr.CreatedAt = now
	}
	tr.UpdatedAt = now
	return nil
}

/////////////////////////////////////////////////////////////////////////
////// Aggregation
/////////////////////////////////////////////////////////////////////////

// partition holds the per-team sums for one side of the fixture list,
// home appearances or away appearances
type partition struct {
	matches  int
	points   int
	xpProb   float64
	xpXg     float64
	goalsFor int
	goalsAgn int
	xgFor    float64
	xgAgn    float64
}

// AggregateTeamStats folds enriched matches into one ranked row per team.
//
// Home and away appearances are summed separately and then outer-joined on
// the team identifier, so a team that has only ever played at home still
// appears with its away sums at zero. Goal difference is computed after the
// merge, not per partition. The result is ranked in place before returning.
//
// Zero match rows yield an empty table, not an error. The function is pure:
// identical input produces an identical table, because teams are visited in
// first-appearance order rather than map order.
func AggregateTeamStats(matches []*Match, season string) []*TeamRow {
	teams := TeamsFromMatches(matches)
	if len(teams) == 0 {
		logger.Warn("No teams found in match data, returning empty table")
		return []*TeamRow{}
	}

	home := make(map[string]*partition)
	away := make(map[string]*partition)
	for _, m := range matches {
		h := getPartition(home, m.HomeTeam)
		h.matches++
		h.points += m.HomePoints
		h.xpProb += m.HomeXpProb
		h.xpXg += m.HomeXpXg
		h.goalsFor += m.HomeGoals
		h.goalsAgn += m.AwayGoals
		h.xgFor += m.HomeXgScored
		h.xgAgn += m.HomeXgConceded

		a := getPartition(away, m.AwayTeam)
		a.matches++
		a.points += m.AwayPoints
		a.xpProb += m.AwayXpProb
		a.xpXg += m.AwayXpXg
		a.goalsFor += m.AwayGoals
		a.goalsAgn += m.HomeGoals
		a.xgFor += m.AwayXgScored
		a.xgAgn += m.AwayXgConceded
	}

	rows := make([]*TeamRow, 0, len(teams))
	for _, team := range teams {
		// Outer join: either partition may be missing for this team
		h := getPartition(home, team)
		a := getPartition(away, team)

		row := &TeamRow{
			Team:         team,
			Season:       season,
			Matches:      h.matches + a.matches,
			Points:       h.points + a.points,
			XpProb:       h.xpProb + a.xpProb,
			XpXg:         h.xpXg + a.xpXg,
			GoalsFor:     h.goalsFor + a.goalsFor,
			GoalsAgainst: h.goalsAgn + a.goalsAgn,
			XgScored:     h.xgFor + a.xgFor,
			XgConceded:   h.xgAgn + a.xgAgn,
			Form:         CalculateForm(matches, team, Config.FormWindow),
		}
		row.GoalDifference = row.GoalsFor - row.GoalsAgainst
		rows = append(rows, row)
	}

	RankTable(rows)
	return rows
}

// getPartition fetches or creates the running sums for a team
func getPartition(parts map[string]*partition, team string) *partition {
	p, ok := parts[team]
	if !ok {
		p = &partition{}
		parts[team] = p
	}
	return p
}

// RankTable sorts rows descending by points, then goal difference, then
// goals scored, and assigns 1-based ranks in that order. Teams level on all
// three keys still receive distinct consecutive ranks; that dense numbering
// is deliberate and must not be replaced with shared competition ranks.
func RankTable(rows []*TeamRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Points != rows[j].Points {
			return rows[i].Points > rows[j].Points
		}
		if rows[i].GoalDifference != rows[j].GoalDifference {
			return rows[i].GoalDifference > rows[j].GoalDifference
		}
		return rows[i].GoalsFor > rows[j].GoalsFor
	})

	for i, row := range rows {
		row.Rank = i + 1
	}
}

// CalculateForm sums the points the team earned in its most recent window
// matches, most recent by date first. A team with fewer matches than the
// window uses all of them. Matches on the same date keep their ingestion
// order, which is all the consistency the source data supports.
func CalculateForm(matches []*Match, team string, window int) int {
	involved := MatchesForTeam(matches, team)

	sort.SliceStable(involved, func(i, j int) bool {
		return involved[i].Date.After(involved[j].Date)
	})

	if len(involved) > window {
		involved = involved[:window]
	}

	points := 0
	for _, m := range involved {
		if m.HomeTeam == team {
			points += m.HomePoints
		} else {
			points += m.AwayPoints
		}
	}
	return points
}

/////////////////////////////////////////////////////////////////////////
////// Table Collection Operations
/////////////////////////////////////////////////////////////////////////

// FindTeamRow returns the row for the given team identifier, or nil
func FindTeamRow(rows []*TeamRow, team string) *TeamRow {
	for _, row := range rows {
		if row.Team == team {
			return row
		}
	}
	return nil
}

// SaveTable persists the ranked table using BulkSave
func SaveTable(rows []*TeamRow) error {
	logger.Info("Saving league table to database", len(rows))

	persistables := make([]Persistable, 0, len(rows))
	for _, row := range rows {
		persistables = append(persistables, row)
	}

	if len(persistables) == 0 {
		logger.Info("No table rows to save")
		return nil
	}

	if err := BulkSave(persistables); err != nil {
		return fmt.Errorf("failed to bulk save league table: %w", err)
	}
	return nil
}
