// Package gateway fetches the two remote datasets gofind renders: the country
// list and the country boundary polygons. Fetches are independent; a failure
// in one never affects the other.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/rendis/gofind/internal/logging"
	"github.com/rendis/gofind/internal/model"
)

const (
	DatasetCountries  = "countries"
	DatasetBoundaries = "boundaries"
	DatasetLookup     = "lookup"
)

// lookupFields mirrors the fields requested from the /all endpoint.
const lookupFields = "name,cca3,capital,region,subregion,population,languages,latlng,flag"

type Options struct {
	CountriesURL   string
	BoundariesURL  string
	LookupURL      string
	Timeout        time.Duration
	TLSFingerprint string
	ProxyURL       string

	// HTTPClient overrides the client built from the fields above.
	HTTPClient *http.Client
	Logger     logging.Logger
	// Registerer receives the fetch metrics. Nil keeps them private.
	Registerer prometheus.Registerer
}

type Gateway struct {
	http          *http.Client
	countriesURL  string
	boundariesURL string
	lookupURL     string
	log           logging.Logger
	metrics       *metrics
}

func New(opts Options) *Gateway {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = newHTTPClient(timeout, opts.TLSFingerprint, opts.ProxyURL)
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Gateway{
		http:          client,
		countriesURL:  opts.CountriesURL,
		boundariesURL: opts.BoundariesURL,
		lookupURL:     opts.LookupURL,
		log:           log.Named("gateway"),
		metrics:       newMetrics(reg),
	}
}

// FetchCountries downloads the full country dataset.
func (g *Gateway) FetchCountries(ctx context.Context) ([]model.Country, error) {
	var countries []model.Country
	if err := g.getJSON(ctx, DatasetCountries, g.countriesURL, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

// FetchBoundaries downloads the boundary dataset and returns its features.
// Only the "features" member is required; a missing "type" is tolerated.
func (g *Gateway) FetchBoundaries(ctx context.Context) ([]*geojson.Feature, error) {
	var doc featureDoc
	if err := g.getJSON(ctx, DatasetBoundaries, g.boundariesURL, &doc); err != nil {
		return nil, err
	}

	features := make([]*geojson.Feature, 0, len(doc.Features))
	for _, f := range doc.Features {
		if f != nil && f.Geometry != nil {
			features = append(features, f)
		}
	}
	return features, nil
}

type featureDoc struct {
	Features []*geojson.Feature
}

func (d *featureDoc) UnmarshalJSON(data []byte) error {
	var raw struct {
		Features *[]*geojson.Feature `json:"features"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Features == nil {
		return errors.New(`missing "features" member`)
	}
	d.Features = *raw.Features
	return nil
}

// FetchCountryByName looks countries up by (partial) name.
func (g *Gateway) FetchCountryByName(ctx context.Context, name string) ([]model.Country, error) {
	u, err := url.Parse(g.lookupURL)
	if err != nil {
		return nil, &NetworkError{Dataset: DatasetLookup, URL: g.lookupURL, Err: err}
	}
	u = u.JoinPath(name)
	q := u.Query()
	q.Set("fields", lookupFields)
	u.RawQuery = q.Encode()

	var countries []model.Country
	if err := g.getJSON(ctx, DatasetLookup, u.String(), &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

func (g *Gateway) getJSON(ctx context.Context, dataset, rawURL string, out any) (err error) {
	start := time.Now()
	var size int64 = -1
	defer func() {
		elapsed := time.Since(start)
		g.metrics.fetches.WithLabelValues(dataset, resultLabel(err)).Inc()
		g.metrics.duration.WithLabelValues(dataset).Observe(elapsed.Seconds())
		if err != nil {
			g.log.Warn("fetch.failed",
				logging.String("dataset", dataset),
				logging.String("url", rawURL),
				logging.Duration("elapsed", elapsed),
				logging.Err(err),
			)
			return
		}
		g.log.Info("fetch.done",
			logging.String("dataset", dataset),
			logging.Duration("elapsed", elapsed),
			logging.Int64("content_length", size),
		)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &NetworkError{Dataset: dataset, URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, application/geo+json;q=0.9, */*;q=0.5")

	resp, err := g.http.Do(req)
	if err != nil {
		return &NetworkError{Dataset: dataset, URL: rawURL, Err: err}
	}
	defer resp.Body.Close()
	size = resp.ContentLength

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &NetworkError{
			Dataset:    dataset,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// A cancelled context surfaces mid-body as a read error.
		if ctx.Err() != nil {
			return &NetworkError{Dataset: dataset, URL: rawURL, Err: ctx.Err()}
		}
		return &DecodeError{Dataset: dataset, Err: err}
	}
	return nil
}

// Snapshot is the outcome of Load. Each slot is filled independently; a
// failed slot keeps its zero value and records the error.
type Snapshot struct {
	Countries     []model.Country
	Boundaries    []*geojson.Feature
	CountriesErr  error
	BoundariesErr error
}

// Load runs both fetches concurrently and waits for both to settle.
// Neither failure cancels the other.
func (g *Gateway) Load(ctx context.Context) Snapshot {
	var snap Snapshot
	var eg errgroup.Group
	eg.Go(func() error {
		snap.Countries, snap.CountriesErr = g.FetchCountries(ctx)
		return nil
	})
	eg.Go(func() error {
		snap.Boundaries, snap.BoundariesErr = g.FetchBoundaries(ctx)
		return nil
	})
	_ = eg.Wait()
	return snap
}
