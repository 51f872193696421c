package xgtable

import "fmt"

// XgConfig contains all configurable parameters that influence the statistics
// and prediction outcomes. This centralizes all magic numbers and constants
// so that nothing statistical is hard-coded at the point of use.
type XgConfig struct {
	// Filesystem locations
	AssetsPath string // The base directory for assets belonging to xgtable
	CachePath  string // Where downloaded season archives and CSVs are cached
	DbPath     string // The location of the xgtable sqlite database

	// === XG DERIVATION ===

	// Average expected goals contributed by a single shot / corner.
	// These are the per-event weights applied to the raw match action counts.
	XgPerShot   float64 // default: 0.11
	XgPerCorner float64 // default: 0.02

	// === POISSON OUTCOME MODEL ===

	MaxGoals int // Goal counts considered per side, 0..MaxGoals-1 (default: 6)

	// MinGoalRate is the floor applied to any Poisson rate before it reaches
	// the outcome engine. A rate of zero degenerates to a point mass at zero
	// goals and a negative rate is undefined, so everything below this floor
	// is clamped up to it.
	MinGoalRate float64 // default: 0.01

	// === MATCHUP RATE ADJUSTMENTS ===

	// Additive corrections applied to the combined per-match xG rates when
	// predicting a hypothetical fixture. Empirical constants from tuning
	// against historical seasons. Do not "correct" them.
	HomeRateAdjustment float64 // default: -0.8
	AwayRateAdjustment float64 // default: -1.4

	// === FORM CALCULATION ===

	FormWindow int // Number of most recent matches summed into form (default: 5)

	// === SUGGESTION RANKING ===

	SuggestionCount int // Number of likely scorelines reported (default: 3)

	// === DATASOURCE ===

	ArchiveURLTemplate string // football-data.co.uk season archive, %s = season code
	IndexURL           string // football-data.co.uk page scraped for archive links
}

// DefaultXgConfig returns the default configuration with all standard values
func DefaultXgConfig() *XgConfig {
	assetsPath := ".xgtable/"
	return &XgConfig{
		AssetsPath: assetsPath,
		CachePath:  assetsPath + "cache/",
		DbPath:     assetsPath + "xgtable.db",

		XgPerShot:   0.11,
		XgPerCorner: 0.02,

		MaxGoals:    6,
		MinGoalRate: 0.01,

		HomeRateAdjustment: -0.8,
		AwayRateAdjustment: -1.4,

		FormWindow: 5,

		SuggestionCount: 3,

		ArchiveURLTemplate: "https://www.football-data.co.uk/mmz4281/%s/data.zip",
		IndexURL:           "https://www.football-data.co.uk/englandm.php",
	}
}

// Global configuration instance
var Config *XgConfig

func init() {
	Config = DefaultXgConfig()
}

// UpdateConfig allows updating the global configuration
func UpdateConfig(newConfig *XgConfig) {
	Config = newConfig
}

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *XgConfig) error {
	if config.XgPerShot <= 0.0 || config.XgPerShot > 1.0 {
		return fmt.Errorf("XgPerShot must be in (0.0, 1.0], got: %f", config.XgPerShot)
	}

	if config.XgPerCorner < 0.0 || config.XgPerCorner > 1.0 {
		return fmt.Errorf("XgPerCorner must be in [0.0, 1.0], got: %f", config.XgPerCorner)
	}

	if config.MaxGoals < 3 {
		return fmt.Errorf("MaxGoals should be at least 3 to capture realistic scores, got: %d", config.MaxGoals)
	}

	if config.MinGoalRate <= 0.0 {
		return fmt.Errorf("MinGoalRate must be positive, got: %f", config.MinGoalRate)
	}

	if config.FormWindow < 1 {
		return fmt.Errorf("FormWindow must be at least 1, got: %d", config.FormWindow)
	}

	if config.SuggestionCount < 1 {
		return fmt.Errorf("SuggestionCount must be at least 1, got: %d", config.SuggestionCount)
	}

	return nil
}

// GetMaxGoals returns the configured goal range for the outcome matrix
func GetMaxGoals() int {
	return Config.MaxGoals
}

// GetMinGoalRate returns the floor applied to Poisson rates
func GetMinGoalRate() float64 {
	return Config.MinGoalRate
}

// GetFormWindow returns the number of recent matches used for form
func GetFormWindow() int {
	return Config.FormWindow
}
