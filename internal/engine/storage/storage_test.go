package storage

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/gofind/internal/model"
)

var countries = []model.Country{
	{
		Name:       model.CountryName{Common: "Canada", Official: "Canada"},
		CCA3:       "CAN",
		Capital:    []string{"Ottawa"},
		Region:     "Americas",
		Subregion:  "North America",
		Population: 38005238,
		Languages:  map[string]string{"fra": "French", "eng": "English"},
		LatLng:     []float64{60, -95},
	},
	{
		Name:       model.CountryName{Common: "Antarctica"},
		Population: 1000,
	},
}

func TestStore_InsertBatch(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "export.db"))
	require.NoError(t, err)
	defer s.Close()

	n, err := s.InsertBatch(countries)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Re-exporting the same names replaces rows instead of duplicating.
	_, err = s.InsertBatch(countries[:1])
	require.NoError(t, err)
	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var langs, capital string
	var lat float64
	err = s.db.QueryRow(`SELECT languages, capital, lat FROM countries WHERE cca3 = 'CAN'`).Scan(&langs, &capital, &lat)
	require.NoError(t, err)
	assert.Equal(t, "English, French", langs)
	assert.Equal(t, "Ottawa", capital)
	assert.Equal(t, 60.0, lat)

	var nullLat *float64
	err = s.db.QueryRow(`SELECT lat FROM countries WHERE name = 'Antarctica'`).Scan(&nullLat)
	require.NoError(t, err)
	assert.Nil(t, nullLat)
}

func TestStore_Replace(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "export.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.InsertBatch(countries)
	require.NoError(t, err)

	n, err := s.Replace(countries[1:])
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var name string
	require.NoError(t, s.db.QueryRow(`SELECT name FROM countries`).Scan(&name))
	assert.Equal(t, "Antarctica", name)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, countries))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"Canada", "Canada", "CAN", "Americas", "North America", "Ottawa",
		"38005238", "English, French", "60.0000", "-95.0000",
	}, rows[1])
	assert.Equal(t, "Antarctica", rows[2][0])
	assert.Equal(t, "", rows[2][8])
}

func TestJoinLanguages(t *testing.T) {
	assert.Equal(t, "", JoinLanguages(model.Country{}))
	assert.Equal(t, "German", JoinLanguages(model.Country{Languages: map[string]string{"deu": "German"}}))
	assert.Equal(t, "English, French", JoinLanguages(countries[0]))
}
