package xgtable

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatchesCSV(t *testing.T) {
	csvData := "\ufeffDiv,Date,HomeTeam,AwayTeam,FTHG,FTAG,HS,AS,HC,AC\n" +
		"E0,17/08/2024,Arsenal,Wolves,2,0,10,3,5,2\n" +
		"E0,24/08/24,Wolves,Arsenal,1,1,8,9,4,6\n"

	ds := GetDatasourceInstance()
	matches, err := ds.ParseMatchesCSV(csvData, "2425", "E0")
	require.NoError(t, err)
	require.Len(t, matches, 2)

	m := matches[0]
	assert.Equal(t, "Arsenal", m.HomeTeam)
	assert.Equal(t, "Wolves", m.AwayTeam)
	assert.Equal(t, 2, m.HomeGoals)
	assert.Equal(t, 10, m.HomeShots)
	assert.Equal(t, 5, m.HomeCorners)
	assert.Equal(t, "2425", m.Season)
	assert.Equal(t, "E0", m.Division)
	assert.Equal(t, "2024-08-17-Arsenal-Wolves", m.ID)

	// The two-digit year layout parses to the same point in time
	assert.Equal(t, "2024-08-24", matches[1].Date.Format("2006-01-02"))
}

func TestParseMatchesCSVMissingNumerics(t *testing.T) {
	// Absent and malformed counts become zero, never an error
	csvData := "Div,Date,HomeTeam,AwayTeam,FTHG,FTAG,HS,AS\n" +
		"E0,17/08/2024,Arsenal,Wolves,,x,7,\n"

	ds := GetDatasourceInstance()
	matches, err := ds.ParseMatchesCSV(csvData, "2425", "E0")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, 0, m.HomeGoals)
	assert.Equal(t, 0, m.AwayGoals)
	assert.Equal(t, 7, m.HomeShots)
	assert.Equal(t, 0, m.AwayShots)
	assert.Equal(t, 0, m.HomeCorners)
	assert.Equal(t, 0, m.AwayCorners)
}

func TestParseMatchesCSVSkipsIncompleteRows(t *testing.T) {
	// Trailing blank rows are common in the source files
	csvData := "Div,Date,HomeTeam,AwayTeam,FTHG,FTAG\n" +
		"E0,17/08/2024,Arsenal,Wolves,2,0\n" +
		",,,,,\n" +
		"E0,18/08/2024,,Chelsea,1,0\n"

	ds := GetDatasourceInstance()
	matches, err := ds.ParseMatchesCSV(csvData, "2425", "E0")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestParseMatchesCSVEmpty(t *testing.T) {
	ds := GetDatasourceInstance()
	matches, err := ds.ParseMatchesCSV("", "2425", "E0")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestValidateSeasonCode(t *testing.T) {
	assert.NoError(t, validateSeasonCode("2425"))
	assert.NoError(t, validateSeasonCode("9900"))
	assert.Error(t, validateSeasonCode(""))
	assert.Error(t, validateSeasonCode("24"))
	assert.Error(t, validateSeasonCode("2024/25"))
	assert.Error(t, validateSeasonCode("24256"))
}

func TestParseMatchDate(t *testing.T) {
	d, err := parseMatchDate("17/08/2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-08-17", d.Format("2006-01-02"))

	d, err = parseMatchDate("17/08/24")
	require.NoError(t, err)
	assert.Equal(t, "2024-08-17", d.Format("2006-01-02"))

	_, err = parseMatchDate("")
	assert.Error(t, err)
	_, err = parseMatchDate("2024-08-17")
	assert.Error(t, err)
}

func TestExtractDivisionCSV(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"E0.csv": "Div,Date,HomeTeam,AwayTeam\n",
		"E1.csv": "other division\n",
	} {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	data, err := extractDivisionCSV(buf.Bytes(), "E0")
	require.NoError(t, err)
	assert.Equal(t, "Div,Date,HomeTeam,AwayTeam\n", data)

	_, err = extractDivisionCSV(buf.Bytes(), "SP1")
	assert.Error(t, err)

	_, err = extractDivisionCSV([]byte("not a zip"), "E0")
	assert.Error(t, err)
}

func TestIntField(t *testing.T) {
	row := map[string]string{"HS": "12", "HC": "", "AS": "abc"}
	assert.Equal(t, 12, intField(row, "HS"))
	assert.Equal(t, 0, intField(row, "HC"))
	assert.Equal(t, 0, intField(row, "AS"))
	assert.Equal(t, 0, intField(row, "Missing"))
}
