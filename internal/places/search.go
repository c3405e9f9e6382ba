package places

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/harapeko-bot/harapeko/internal/models"
	"googlemaps.github.io/maps"
)

// PlacesAPI is the narrow slice of the Google Maps client used by the search
// client. It exists so tests can substitute a mock.
type PlacesAPI interface {
	NearbySearch(ctx context.Context, r *maps.NearbySearchRequest) (maps.PlacesSearchResponse, error)
}

// Common errors for the search client.
var (
	ErrInvalidCoordinates = errors.New("coordinates are outside the valid latitude/longitude bounds")
	ErrInvalidRadius      = errors.New("search radius must be a positive number of meters")
)

// SearchClient queries the places provider for venues near a coordinate and
// returns them ranked and capped.
type SearchClient struct {
	api        PlacesAPI    // api is the places provider client.
	maxResults int          // maxResults caps the ranked result length.
	log        *slog.Logger // log is the logger for search operations.
}

// NewSearchClient creates a new SearchClient over the given provider client.
func NewSearchClient(api PlacesAPI, maxResults int, log *slog.Logger) *SearchClient {
	return &SearchClient{api: api, maxResults: maxResults, log: log}
}

// NewGoogleClient creates the Google Maps client used in production, with API
// key authentication, an optional request rate limit, and a bounded per-request
// timeout on the underlying HTTP client.
func NewGoogleClient(apiKey string, rateLimit int, httpClient maps.ClientOption) (*maps.Client, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required for the places client")
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(apiKey),
	}
	if rateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(rateLimit))
	}
	if httpClient != nil {
		clientOpts = append(clientOpts, httpClient)
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return client, nil
}

// Search issues a single nearby search around the given coordinates and returns
// the venues ranked descending by rating and truncated to the configured
// maximum. Zero provider results yield an empty result and a nil error; only
// transport or API failures are errors.
func (sc *SearchClient) Search(
	ctx context.Context,
	coords models.Coordinates,
	radiusMeters int,
	venueType string,
	language string,
) (models.RankedResult, error) {
	if !coords.Valid() {
		return nil, fmt.Errorf("%w: lat=%f lng=%f", ErrInvalidCoordinates, coords.Latitude, coords.Longitude)
	}
	if radiusMeters <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRadius, radiusMeters)
	}

	sc.log.DebugContext(ctx, "Searching nearby venues",
		"lat", coords.Latitude, "lng", coords.Longitude, "radius", radiusMeters, "type", venueType)

	req := &maps.NearbySearchRequest{
		Location: &maps.LatLng{Lat: coords.Latitude, Lng: coords.Longitude},
		Radius:   uint(radiusMeters),
		Type:     maps.PlaceType(venueType),
		Language: language,
	}

	resp, err := sc.api.NearbySearch(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search nearby venues: %w", err)
	}

	candidates := make([]models.VenueCandidate, 0, len(resp.Results))
	for _, result := range resp.Results {
		if result.Name == "" {
			sc.log.DebugContext(ctx, "Skipping unnamed venue from provider response")
			continue
		}
		candidates = append(candidates, toCandidate(result))
	}

	ranked := Rank(candidates, sc.maxResults)

	sc.log.InfoContext(ctx, "Nearby search finished",
		"provider_results", len(resp.Results), "ranked", len(ranked))

	return ranked, nil
}

// toCandidate maps one provider result to a VenueCandidate. A venue with no
// photos keeps an empty photo reference. The provider omits the rating field for
// unrated venues, which the generated struct decodes as zero; a venue counts as
// rated only when it has at least one user rating, so a genuine absence stays
// distinct from a numeric rating.
func toCandidate(result maps.PlacesSearchResult) models.VenueCandidate {
	candidate := models.VenueCandidate{
		Name: result.Name,
		Location: models.Coordinates{
			Latitude:  result.Geometry.Location.Lat,
			Longitude: result.Geometry.Location.Lng,
		},
	}

	if len(result.Photos) > 0 {
		candidate.PhotoReference = result.Photos[0].PhotoReference
	}

	if result.UserRatingsTotal > 0 {
		rating := float64(result.Rating)
		candidate.Rating = &rating
	}

	return candidate
}
