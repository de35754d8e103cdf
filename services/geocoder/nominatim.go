package geosvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"

	"github.com/trezcool/kazi/core"
)

// nominatimGeocoder resolves coordinates to human-readable addresses against
// a Nominatim-compatible endpoint. Responses are cached since visits cluster
// around the same venues, and the upstream call sits behind a circuit breaker
// so a degraded provider cannot stall report generation.
type nominatimGeocoder struct {
	client  *http.Client
	baseURL string
	breaker *gobreaker.CircuitBreaker
	cache   core.Cache
	ttl     time.Duration
	logger  core.Logger
}

var _ core.Geocoder = (*nominatimGeocoder)(nil)

func NewNominatimGeocoder(cache core.Cache, logger core.Logger) *nominatimGeocoder {
	return &nominatimGeocoder{
		client:  &http.Client{Timeout: core.Conf.Geocoder.Timeout},
		baseURL: core.Conf.Geocoder.BaseURL,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "geocoder",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn(fmt.Sprintf("%s circuit breaker: %s -> %s", name, from, to))
			},
		}),
		cache:  cache,
		ttl:    core.Conf.Geocoder.CacheTTL,
		logger: logger,
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

func (g *nominatimGeocoder) Reverse(ctx context.Context, pt core.Point) (string, error) {
	if pt.IsZero() {
		return "", nil
	}

	// ~11m precision; nearby fixes share a cache entry
	key := fmt.Sprintf("geocode:%.4f:%.4f", pt.Lat, pt.Lng)
	if cached, err := g.cache.Get(ctx, key); err == nil {
		return string(cached), nil
	} else if err != core.ErrCacheMiss {
		g.logger.Warn(fmt.Sprintf("geocode cache lookup: %v", err), err)
	}

	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.reverse(ctx, pt)
	})
	if err != nil {
		return "", err
	}
	address := res.(string)

	if err = g.cache.Set(ctx, key, []byte(address), g.ttl); err != nil {
		g.logger.Warn(fmt.Sprintf("geocode cache store: %v", err), err)
	}
	return address, nil
}

func (g *nominatimGeocoder) reverse(ctx context.Context, pt core.Point) (string, error) {
	params := url.Values{
		"format": {"jsonv2"},
		"lat":    {fmt.Sprintf("%f", pt.Lat)},
		"lon":    {fmt.Sprintf("%f", pt.Lng)},
		"zoom":   {"18"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+params.Encode(), nil)
	if err != nil {
		return "", errors.Wrap(err, "creating reverse geocode request")
	}
	req.Header.Set("User-Agent", core.Conf.AppName)

	res, err := g.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "calling geocoder")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", errors.Errorf("geocoder status: %d", res.StatusCode)
	}

	var body reverseResponse
	if err = json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", errors.Wrap(err, "decoding geocoder response")
	}
	return body.DisplayName, nil
}
