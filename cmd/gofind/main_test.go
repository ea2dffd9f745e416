package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/gofind/internal/engine/storage"
)

const countriesJSON = `[
  {"name":{"common":"France","official":"French Republic"},"cca3":"FRA","capital":["Paris"],
   "region":"Europe","population":67391582,"languages":{"fra":"French"},"latlng":[46,2]},
  {"name":{"common":"Germany","official":"Federal Republic of Germany"},"cca3":"DEU","capital":["Berlin"],
   "region":"Europe","population":83240525,"languages":{"deu":"German"},"latlng":[51,9]},
  {"name":{"common":"Canada","official":"Canada"},"cca3":"CAN","capital":["Ottawa"],
   "region":"Americas","population":38005238,"languages":{"eng":"English","fra":"French"},"latlng":[60,-95]}
]`

// setupEnv points the gateway at a local server and keeps config and logs
// inside the test's temp dir.
func setupEnv(t *testing.T, boundaries http.HandlerFunc) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/all", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(countriesJSON))
	})
	mux.HandleFunc("/boundaries.geojson", boundaries)
	mux.HandleFunc("/name/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.EqualFold(r.URL.Path, "/name/france") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`[{"name":{"common":"France","official":"French Republic"},"cca3":"FRA","region":"Europe"}]`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Setenv("GOFIND_LOG_OUTPUT", filepath.Join(dir, "gofind.log"))
	t.Setenv("GOFIND_GATEWAY_COUNTRIES_URL", srv.URL+"/all")
	t.Setenv("GOFIND_GATEWAY_BOUNDARIES_URL", srv.URL+"/boundaries.geojson")
	t.Setenv("GOFIND_GATEWAY_LOOKUP_URL", srv.URL+"/name/")
}

func okBoundaries(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestList_FilterByRegion(t *testing.T) {
	setupEnv(t, okBoundaries)

	out, _, err := run(t, "", "list", "--region", "Europe")
	require.NoError(t, err)
	assert.Contains(t, out, "France")
	assert.Contains(t, out, "Germany")
	assert.NotContains(t, out, "Canada")
	assert.Contains(t, out, "2 of 3 countries")
	assert.Contains(t, out, "regions: Americas, Europe")
}

func TestList_BoundaryFailureStillLists(t *testing.T) {
	setupEnv(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	out, errOut, err := run(t, "", "list", "--language", "French", "--stats")
	require.NoError(t, err)
	assert.Contains(t, errOut, "boundaries unavailable")
	assert.Contains(t, out, "France")
	assert.Contains(t, out, "Canada")
	assert.Contains(t, out, `gofind_gateway_fetch_total{dataset="boundaries",result="network_error"} 1`)
	assert.Contains(t, out, `gofind_gateway_fetch_total{dataset="countries",result="ok"} 1`)
}

func TestExport_CSV(t *testing.T) {
	setupEnv(t, okBoundaries)
	path := filepath.Join(t.TempDir(), "out", "europe.csv")

	_, errOut, err := run(t, "", "export", "--region", "Europe", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Exported 2 countries")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "France", rows[1][0])
}

func TestExport_SQLite(t *testing.T) {
	setupEnv(t, okBoundaries)
	path := filepath.Join(t.TempDir(), "all.db")

	_, errOut, err := run(t, "", "export", "--format", "sqlite", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Exported 3 countries")
	assert.FileExists(t, path)
}

func TestExport_SQLiteOverwrites(t *testing.T) {
	setupEnv(t, okBoundaries)
	path := filepath.Join(t.TempDir(), "all.db")

	_, _, err := run(t, "", "export", "--format", "sqlite", "--output", path)
	require.NoError(t, err)

	_, errOut, err := run(t, "", "export", "--format", "sqlite", "--region", "Americas", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Exported 1 countries")

	store, err := storage.NewStore(path)
	require.NoError(t, err)
	defer store.Close()
	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestExport_Validation(t *testing.T) {
	setupEnv(t, okBoundaries)

	_, _, err := run(t, "", "export")
	assert.ErrorContains(t, err, "--output is required")

	_, _, err = run(t, "", "export", "--format", "xml", "--output", "x")
	assert.ErrorContains(t, err, "unsupported format")

	_, _, err = run(t, "", "export", "--search", "atlantis", "--output", filepath.Join(t.TempDir(), "x.csv"))
	assert.ErrorContains(t, err, "no countries match")
}

func TestLookup(t *testing.T) {
	setupEnv(t, okBoundaries)

	out, _, err := run(t, "", "lookup", "france")
	require.NoError(t, err)
	assert.Contains(t, out, "France")
	assert.Contains(t, out, "French Republic")

	_, _, err = run(t, "", "lookup", "atlantis")
	assert.ErrorContains(t, err, "status 404")
}

func TestToken(t *testing.T) {
	setupEnv(t, okBoundaries)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "1234",
		"email": "ada@example.com",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	out, _, err := run(t, "", "token", signed)
	require.NoError(t, err)
	assert.Contains(t, out, `"email": "ada@example.com"`)

	out, _, err = run(t, signed+"\n", "token", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"sub": "1234"`)

	_, _, err = run(t, "", "token")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	setupEnv(t, okBoundaries)
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "gofind dev\n", out)
}
