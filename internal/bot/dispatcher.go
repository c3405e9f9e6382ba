package bot

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/harapeko-bot/harapeko/internal/metrics"
	"github.com/harapeko-bot/harapeko/internal/models"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// Searcher finds ranked venues near a coordinate.
type Searcher interface {
	Search(
		ctx context.Context,
		coords models.Coordinates,
		radiusMeters int,
		venueType string,
		language string,
	) (models.RankedResult, error)
}

// ContentFetcher retrieves raw media content by message ID. The blob client of
// the messaging SDK satisfies this.
type ContentFetcher interface {
	GetMessageContent(messageID string) (*http.Response, error)
}

// Dispatcher classifies inbound webhook events and produces the reply messages
// for each, holding no state across events. Text events answer from the canned
// table, media content is fetched and discarded, location events run the
// search-rank-compose pipeline, and every other event yields no reply.
type Dispatcher struct {
	searcher  Searcher         // searcher queries the places provider.
	composer  *Composer        // composer renders ranked venues into a payload.
	blob      ContentFetcher   // blob fetches media content.
	radius    int              // radius is the search radius in meters.
	venueType string           // venueType is the place type filter.
	language  string           // language is the search result language.
	metrics   *metrics.Metrics // metrics tracks processed events.
	log       *slog.Logger     // log is the logger for dispatching.
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(
	searcher Searcher,
	composer *Composer,
	blob ContentFetcher,
	radius int,
	venueType string,
	language string,
	metrics *metrics.Metrics,
	log *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		searcher:  searcher,
		composer:  composer,
		blob:      blob,
		radius:    radius,
		venueType: venueType,
		language:  language,
		metrics:   metrics,
		log:       log,
	}
}

// Dispatch routes one webhook event to its handler and returns the messages to
// reply with. A nil or empty result means no reply is sent.
func (d *Dispatcher) Dispatch(ctx context.Context, event webhook.EventInterface) []messaging_api.MessageInterface {
	msgEvent, ok := event.(webhook.MessageEvent)
	if !ok {
		d.metrics.EventsProcessed.WithLabelValues("other").Inc()
		d.log.DebugContext(ctx, "Ignoring non-message event")
		return nil
	}

	switch content := msgEvent.Message.(type) {
	case webhook.TextMessageContent:
		d.metrics.EventsProcessed.WithLabelValues("text").Inc()
		return []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: CannedReply(content.Text)},
		}
	case webhook.ImageMessageContent:
		d.metrics.EventsProcessed.WithLabelValues("media").Inc()
		d.discardContent(ctx, content.Id)
		return nil
	case webhook.VideoMessageContent:
		d.metrics.EventsProcessed.WithLabelValues("media").Inc()
		d.discardContent(ctx, content.Id)
		return nil
	case webhook.LocationMessageContent:
		d.metrics.EventsProcessed.WithLabelValues("location").Inc()
		return d.handleLocation(ctx, models.Coordinates{
			Latitude:  content.Latitude,
			Longitude: content.Longitude,
		})
	default:
		d.metrics.EventsProcessed.WithLabelValues("other").Inc()
		d.log.DebugContext(ctx, "Ignoring unsupported message content")
		return nil
	}
}

// handleLocation runs the recommendation pipeline for a shared location. Every
// failure mode, including zero search results, degrades to the apology text so
// the user always gets an answer.
func (d *Dispatcher) handleLocation(ctx context.Context, coords models.Coordinates) []messaging_api.MessageInterface {
	startTime := time.Now()
	ranked, err := d.searcher.Search(ctx, coords, d.radius, d.venueType, d.language)
	d.metrics.RequestSeconds.WithLabelValues("nearbysearch").Observe(time.Since(startTime).Seconds())

	if err != nil {
		d.metrics.APIErrors.Inc()
		d.log.ErrorContext(ctx, "Venue search failed",
			"lat", coords.Latitude, "lng", coords.Longitude, "error", err)
		return []messaging_api.MessageInterface{messaging_api.TextMessage{Text: ApologyText}}
	}

	if len(ranked) == 0 {
		d.log.InfoContext(ctx, "No venues found near location",
			"lat", coords.Latitude, "lng", coords.Longitude)
		return []messaging_api.MessageInterface{messaging_api.TextMessage{Text: ApologyText}}
	}

	payload := d.composer.Compose(ctx, ranked)

	return []messaging_api.MessageInterface{CarouselMessage(payload)}
}

// discardContent fetches the media content and drains it. Nothing further is
// done with media messages.
func (d *Dispatcher) discardContent(ctx context.Context, messageID string) {
	resp, err := d.blob.GetMessageContent(messageID)
	if err != nil {
		d.log.WarnContext(ctx, "Failed to fetch media content", "message_id", messageID, "error", err)
		return
	}
	defer resp.Body.Close()

	size, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		d.log.WarnContext(ctx, "Failed to read media content", "message_id", messageID, "error", err)
		return
	}

	d.log.DebugContext(ctx, "Discarded media content", "message_id", messageID, "bytes", size)
}
