package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/richard-senior/xgtable/internal/logger"
	"github.com/richard-senior/xgtable/pkg/xgtable"
)

func main() {
	season := flag.String("season", "2425", "season code in short form, e.g. 2425")
	division := flag.String("division", "E0", "division CSV name inside the season archive, e.g. E0")
	file := flag.String("file", "", "optional local CSV file to load instead of downloading")
	home := flag.String("home", "", "home team for a fixture prediction")
	away := flag.String("away", "", "away team for a fixture prediction")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	// Configure logging
	logger.SetShowDateTime(false)
	if *verbose {
		logger.SetLevel(logger.DEBUG)
	}

	logger.Info("Starting xgtable for season", *season, *division)

	if err := xgtable.ValidateConfig(xgtable.Config); err != nil {
		logger.Fatal("Invalid configuration:", err)
	}

	matches, err := loadMatches(*file, *season, *division)
	if err != nil {
		logger.Fatal("Failed to load season data:", err)
	}

	xgtable.EnrichMatches(matches)

	table := xgtable.AggregateTeamStats(matches, *season)

	if err := persist(matches, table); err != nil {
		// The table is still printable, so persistence failures do not abort
		logger.Warn("Failed to persist season snapshot:", err)
	}

	fmt.Print(xgtable.RenderLeagueTable(table))

	if *home != "" || *away != "" {
		if *home == "" || *away == "" {
			logger.Fatal("Both -home and -away are required for a prediction")
		}
		prediction, err := xgtable.PredictFixture(table, *home, *away)
		if err != nil {
			logger.Fatal("Prediction failed:", err)
		}
		fmt.Print(xgtable.RenderPrediction(prediction))
	}
}

// loadMatches reads match rows from a local CSV when one is given, otherwise
// from the football-data.co.uk season archive
func loadMatches(file, season, division string) ([]*xgtable.Match, error) {
	ds := xgtable.GetDatasourceInstance()

	if file != "" {
		logger.Info("Loading matches from local file", file)
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		return ds.ParseMatchesCSV(string(data), season, division)
	}

	return ds.LoadSeason(season, division)
}

// persist snapshots the enriched matches and the ranked table to sqlite
func persist(matches []*xgtable.Match, table []*xgtable.TeamRow) error {
	if err := xgtable.CreateTables(); err != nil {
		return err
	}
	defer xgtable.CloseDatabase()

	if err := xgtable.SaveMatches(matches); err != nil {
		return err
	}
	return xgtable.SaveTable(table)
}
