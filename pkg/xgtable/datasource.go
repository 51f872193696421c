package xgtable

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/richard-senior/xgtable/internal/logger"
	"github.com/richard-senior/xgtable/pkg/transport"
)

// Datasource fetches season result archives from football-data.co.uk and
// turns the division CSVs inside them into Match rows
type Datasource struct {
	ArchiveURLTemplate string
	IndexURL           string
}

var (
	datasourceInstance *Datasource
	datasourceOnce     sync.Once
)

// GetDatasourceInstance returns the singleton instance of Datasource
func GetDatasourceInstance() *Datasource {
	datasourceOnce.Do(func() {
		datasourceInstance = &Datasource{
			ArchiveURLTemplate: Config.ArchiveURLTemplate,
			IndexURL:           Config.IndexURL,
		}
	})
	return datasourceInstance
}

/////////////////////////////////////////////////////////////////////////
////// Archive Download and Extraction
/////////////////////////////////////////////////////////////////////////

// GetSeasonCSV returns the raw CSV text for one division of one season,
// from the local cache when available and from the season archive otherwise.
// The season code is the football-data.co.uk short form, e.g. "2425";
// the division is the CSV name inside the archive, e.g. "E0".
func (ds *Datasource) GetSeasonCSV(seasonCode, division string) (string, error) {
	if err := validateSeasonCode(seasonCode); err != nil {
		return "", err
	}
	if division == "" {
		return "", fmt.Errorf("must supply a division code")
	}

	if err := os.MkdirAll(Config.CachePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	cacheFilename := fmt.Sprintf("%sraw-%s-%s.csv", Config.CachePath, seasonCode, division)
	if cacheData, err := os.ReadFile(cacheFilename); err == nil {
		logger.Debug("Returning cached CSV for", seasonCode, division)
		return string(cacheData), nil
	}

	logger.Info("Fetching season archive from football-data.co.uk for", seasonCode)
	archive, err := ds.fetchArchive(seasonCode)
	if err != nil {
		return "", err
	}

	csvData, err := extractDivisionCSV(archive, division)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(cacheFilename, []byte(csvData), 0644); err != nil {
		logger.Warn("Failed to write cache file", cacheFilename, err)
		// Continue processing even if caching fails
	}

	return csvData, nil
}

// fetchArchive downloads the season zip, preferring a link discovered on the
// data index page and falling back to the URL template
func (ds *Datasource) fetchArchive(seasonCode string) ([]byte, error) {
	url, err := ds.discoverArchiveURL(seasonCode)
	if err != nil {
		logger.Warn("Archive link discovery failed, using URL template", err)
		url = fmt.Sprintf(ds.ArchiveURLTemplate, seasonCode)
	}

	data, err := transport.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download season archive: %w", err)
	}
	return data, nil
}

// discoverArchiveURL scrapes the data index page for the zip link matching
// the given season code
func (ds *Datasource) discoverArchiveURL(seasonCode string) (string, error) {
	html, err := transport.Get(ds.IndexURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch data index page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("error parsing index page HTML: %w", err)
	}

	wanted := fmt.Sprintf("mmz4281/%s/", seasonCode)
	var found string
	doc.Find("a[href]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if strings.Contains(href, wanted) && strings.HasSuffix(href, ".zip") {
			found = href
			return false
		}
		return true
	})

	if found == "" {
		return "", fmt.Errorf("no archive link for season %s on index page", seasonCode)
	}
	if !strings.HasPrefix(found, "http") {
		found = "https://www.football-data.co.uk/" + strings.TrimPrefix(found, "/")
	}
	return found, nil
}

// extractDivisionCSV pulls the named division CSV out of a season zip
func extractDivisionCSV(archive []byte, division string) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return "", fmt.Errorf("failed to open season archive: %w", err)
	}

	wanted := division + ".csv"
	for _, file := range reader.File {
		if !strings.EqualFold(file.Name, wanted) {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open %s inside archive: %w", file.Name, err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return "", fmt.Errorf("failed to read %s inside archive: %w", file.Name, err)
		}
		return string(data), nil
	}

	return "", fmt.Errorf("division file %s not found in season archive", wanted)
}

// validateSeasonCode checks the short season form, e.g. "2425"
func validateSeasonCode(seasonCode string) error {
	if !regexp.MustCompile(`^\d{4}$`).MatchString(seasonCode) {
		return fmt.Errorf("season must be in the short form 'yyzz', e.g. 2425, got: %s", seasonCode)
	}
	return nil
}

/////////////////////////////////////////////////////////////////////////
////// CSV Parsing
/////////////////////////////////////////////////////////////////////////

// ParseMatchesCSV parses a football-data.co.uk division CSV into Match rows.
// Absent numeric fields are zero in the result, never missing; rows without
// both team names are skipped.
func (ds *Datasource) ParseMatchesCSV(csvData, seasonCode, division string) ([]*Match, error) {
	reader := csv.NewReader(strings.NewReader(csvData))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	if len(records) == 0 {
		return []*Match{}, nil
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff") // Remove BOM
	}

	var matches []*Match
	for i, record := range records[1:] {
		row := make(map[string]string)
		for j, value := range record {
			if j < len(headers) {
				row[headers[j]] = strings.TrimSpace(value)
			}
		}

		if row["HomeTeam"] == "" || row["AwayTeam"] == "" {
			continue
		}

		match, err := ds.parseMatchRow(row, seasonCode, division)
		if err != nil {
			logger.Warn("Skipping unparseable match at row", i+2, err)
			continue
		}
		matches = append(matches, match)
	}

	return matches, nil
}

// parseMatchRow converts a header-keyed CSV row into a Match
func (ds *Datasource) parseMatchRow(row map[string]string, seasonCode, division string) (*Match, error) {
	match := &Match{
		Season:   seasonCode,
		Division: division,
		HomeTeam: row["HomeTeam"],
		AwayTeam: row["AwayTeam"],
	}

	if date, err := parseMatchDate(row["Date"]); err == nil {
		match.Date = date
	} else {
		logger.Debug("Could not parse match date", row["Date"], err)
	}

	// Goals, shots and corners all default to zero when absent or malformed
	match.HomeGoals = intField(row, "FTHG")
	match.AwayGoals = intField(row, "FTAG")
	match.HomeShots = intField(row, "HS")
	match.AwayShots = intField(row, "AS")
	match.HomeCorners = intField(row, "HC")
	match.AwayCorners = intField(row, "AC")

	match.ID = fmt.Sprintf("%s-%s-%s", match.Date.Format("2006-01-02"), match.HomeTeam, match.AwayTeam)

	return match, nil
}

// intField reads a numeric CSV column, defaulting to zero when the column is
// absent or unparseable
func intField(row map[string]string, key string) int {
	value := row[key]
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return n
}

// parseMatchDate handles the two date layouts football-data.co.uk has used
// over the years, dd/mm/yy and dd/mm/yyyy
func parseMatchDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range []string{"02/01/2006", "02/01/06"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", value)
}

/////////////////////////////////////////////////////////////////////////
////// Persistence
/////////////////////////////////////////////////////////////////////////

// SaveMatches saves enriched matches to the database using BulkSave
func SaveMatches(matches []*Match) error {
	logger.Info("Saving matches to database", len(matches))

	persistables := make([]Persistable, 0, len(matches))
	for _, match := range matches {
		persistables = append(persistables, match)
	}

	if len(persistables) == 0 {
		logger.Info("No matches to save")
		return nil
	}

	if err := BulkSave(persistables); err != nil {
		return fmt.Errorf("failed to bulk save matches: %w", err)
	}
	return nil
}

// LoadSeason is the full ingestion path: fetch (or reuse cached) CSV for the
// given season and division and parse it into Match rows
func (ds *Datasource) LoadSeason(seasonCode, division string) ([]*Match, error) {
	csvData, err := ds.GetSeasonCSV(seasonCode, division)
	if err != nil {
		return nil, err
	}

	matches, err := ds.ParseMatchesCSV(csvData, seasonCode, division)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded", len(matches), "matches for", seasonCode, division)
	return matches, nil
}
