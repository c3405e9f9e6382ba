package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/harapeko-bot/harapeko/internal/metrics"
	"github.com/harapeko-bot/harapeko/internal/models"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// PlaceholderImageURL is substituted when a venue has no photo or its photo
// could not be resolved.
const PlaceholderImageURL = "https://placehold.co/400x400.png"

// NoRatingText marks a venue the provider reported no rating for.
const NoRatingText = "評価なし"

// maxTitleRunes is the carousel column title limit of the messaging platform.
const maxTitleRunes = 40

// mapSearchBaseURL is the external map service the reply cards link to.
const mapSearchBaseURL = "https://www.google.com/maps/search/"

// Resolver exchanges a photo reference for an image URL.
type Resolver interface {
	Resolve(ctx context.Context, photoReference string) (string, error)
}

// Composer assembles the outbound reply payload from ranked venues. Photo
// resolution failures degrade to a placeholder image and never drop a venue.
type Composer struct {
	resolver   Resolver         // resolver exchanges photo references for URLs.
	maxResults int              // maxResults caps the payload length.
	metrics    *metrics.Metrics // metrics tracks fallbacks and request durations.
	log        *slog.Logger     // log is the logger for composition.
}

// NewComposer creates a new Composer.
func NewComposer(resolver Resolver, maxResults int, metrics *metrics.Metrics, log *slog.Logger) *Composer {
	return &Composer{resolver: resolver, maxResults: maxResults, metrics: metrics, log: log}
}

// Compose renders ranked venues into reply cards, in the same order. The cap is
// enforced here again even though the search client already truncates. Photo
// URLs for the venues are resolved concurrently; the fan-out is bounded by the
// result cap, one goroutine per venue.
func (c *Composer) Compose(ctx context.Context, ranked models.RankedResult) models.ReplyPayload {
	if len(ranked) > c.maxResults {
		ranked = ranked[:c.maxResults]
	}

	thumbnails := make([]string, len(ranked))
	var wgr sync.WaitGroup
	for i, venue := range ranked {
		wgr.Add(1)
		go func(idx int, venue models.VenueCandidate) {
			defer wgr.Done()
			thumbnails[idx] = c.thumbnail(ctx, venue)
		}(i, venue)
	}
	wgr.Wait()

	payload := make(models.ReplyPayload, 0, len(ranked))
	for i, venue := range ranked {
		payload = append(payload, models.ReplyCard{
			Title:        truncateRunes(venue.Name, maxTitleRunes),
			RatingText:   ratingText(venue.Rating),
			ThumbnailURL: thumbnails[i],
			MapURI:       mapURI(venue.Location),
		})
	}

	return payload
}

// thumbnail resolves the venue photo, falling back to the placeholder when the
// venue has no photo reference or resolution fails.
func (c *Composer) thumbnail(ctx context.Context, venue models.VenueCandidate) string {
	if venue.PhotoReference == "" {
		c.metrics.PhotoFallbacks.Inc()
		c.log.DebugContext(ctx, "Venue has no photo, using placeholder", "venue", venue.Name)
		return PlaceholderImageURL
	}

	startTime := time.Now()
	photoURL, err := c.resolver.Resolve(ctx, venue.PhotoReference)
	c.metrics.RequestSeconds.WithLabelValues("photo").Observe(time.Since(startTime).Seconds())

	if err != nil {
		c.metrics.PhotoFallbacks.Inc()
		c.log.WarnContext(ctx, "Failed to resolve venue photo, using placeholder",
			"venue", venue.Name, "error", err)
		return PlaceholderImageURL
	}

	return photoURL
}

// CarouselMessage renders the payload as a carousel template message for the
// messaging platform.
func CarouselMessage(payload models.ReplyPayload) messaging_api.TemplateMessage {
	columns := make([]messaging_api.CarouselColumn, 0, len(payload))
	for _, card := range payload {
		action := messaging_api.UriAction{Uri: card.MapURI}
		action.Label = "地図を見る"
		columns = append(columns, messaging_api.CarouselColumn{
			ThumbnailImageUrl:    card.ThumbnailURL,
			ImageBackgroundColor: "#FFFFFF",
			Title:                card.Title,
			Text:                 card.RatingText,
			DefaultAction:        action,
			Actions:              []messaging_api.ActionInterface{action},
		})
	}

	return messaging_api.TemplateMessage{
		AltText: CarouselAltText,
		Template: messaging_api.CarouselTemplate{
			Columns:          columns,
			ImageAspectRatio: "rectangle",
			ImageSize:        "cover",
		},
	}
}

// ratingText formats the display form of a rating. An absent rating gets an
// explicit marker, never a zero.
func ratingText(rating *float64) string {
	if rating == nil {
		return NoRatingText
	}

	return fmt.Sprintf("⭐ %.1f", *rating)
}

// mapURI builds the external map link for a venue location.
func mapURI(coords models.Coordinates) string {
	query := url.Values{}
	query.Set("api", "1")
	query.Set("query", fmt.Sprintf("%.6f,%.6f", coords.Latitude, coords.Longitude))

	return mapSearchBaseURL + "?" + query.Encode()
}

// truncateRunes shortens s to at most limit runes.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
