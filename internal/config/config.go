package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the webhook bot.
// It includes the environment, server port, messaging credentials,
// the places API key, and the tunables of the recommendation pipeline.
//
// Fields:
// - Env: The current environment (e.g., local, dev, prod).
// - Port: The port for the webhook HTTP server.
// - ChannelSecret: The LINE channel secret used for signature validation.
// - ChannelToken: The LINE channel access token used for replies.
// - PlacesKey: The API key for the Google Places endpoints.
// - SearchRadius: The nearby-search radius in meters.
// - VenueType: The place type filter for the search (e.g., restaurant).
// - Language: The language for search results.
// - MaxResults: The maximum number of venues in a reply.
// - PhotoMaxWidth: The maximum width requested from the photo endpoint.
// - PhotoRateLimit: The photo endpoint rate limit in requests per second.
// - HTTPTimeout: The timeout applied to each outbound HTTP call.
type Config struct {
	Env            string        // Env is the current environment: local, dev, prod.
	Port           int           // Port is the webhook server port.
	ChannelSecret  string        // ChannelSecret validates inbound webhook signatures.
	ChannelToken   string        // ChannelToken authorizes outbound replies.
	PlacesKey      string        // PlacesKey is the API key for the places endpoints.
	SearchRadius   int           // SearchRadius is the nearby-search radius in meters.
	VenueType      string        // VenueType is the place type filter.
	Language       string        // Language is the search result language.
	MaxResults     int           // MaxResults caps the number of venues per reply.
	PhotoMaxWidth  int           // PhotoMaxWidth is the requested photo width in pixels.
	PhotoRateLimit int           // PhotoRateLimit is the photo endpoint request rate per second.
	HTTPTimeout    time.Duration // HTTPTimeout bounds each outbound HTTP call.
}

// MustLoad loads the configuration from the process environment and returns a Config.
// It panics when a numeric or duration value cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	port, err := strconv.Atoi(setDefaultEnv("HARAPEKO_PORT", "8080"))
	if err != nil {
		panic("failed to parse port for webhook server from configuration")
	}

	radius, err := strconv.Atoi(setDefaultEnv("HARAPEKO_SEARCH_RADIUS", "500"))
	if err != nil || radius <= 0 {
		panic("failed to parse search radius from configuration, must be a positive integer")
	}

	maxResults, err := strconv.Atoi(setDefaultEnv("HARAPEKO_MAX_RESULTS", "9"))
	if err != nil || maxResults <= 0 {
		panic("failed to parse max results from configuration, must be a positive integer")
	}

	photoWidth, err := strconv.Atoi(setDefaultEnv("HARAPEKO_PHOTO_MAX_WIDTH", "400"))
	if err != nil {
		panic("failed to parse photo max width from configuration")
	}

	photoRate, err := strconv.Atoi(setDefaultEnv("HARAPEKO_PHOTO_RATE_LIMIT", "5"))
	if err != nil {
		panic("failed to parse photo rate limit from configuration")
	}

	timeout, err := time.ParseDuration(setDefaultEnv("HARAPEKO_HTTP_TIMEOUT", "10s"))
	if err != nil {
		panic("failed to parse HTTP timeout from configuration")
	}

	return &Config{
		Env:            setDefaultEnv("HARAPEKO_ENV", "production"),
		Port:           port,
		ChannelSecret:  os.Getenv("LINE_CHANNEL_SECRET"),
		ChannelToken:   os.Getenv("LINE_CHANNEL_TOKEN"),
		PlacesKey:      os.Getenv("GOOGLE_PLACES_KEY"),
		SearchRadius:   radius,
		VenueType:      setDefaultEnv("HARAPEKO_VENUE_TYPE", "restaurant"),
		Language:       setDefaultEnv("HARAPEKO_LANGUAGE", "ja"),
		MaxResults:     maxResults,
		PhotoMaxWidth:  photoWidth,
		PhotoRateLimit: photoRate,
		HTTPTimeout:    timeout,
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}
