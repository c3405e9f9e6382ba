package places

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// PhotoBaseURL -- Google Places photo endpoint base URL.
const PhotoBaseURL = "https://maps.googleapis.com/maps/api/place/photo"

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Common errors for the photo resolver.
var (
	ErrEmptyPhotoReference = errors.New("photo resolver got empty photo reference")
	ErrPhotoNotRedirect    = errors.New("photo endpoint did not respond with a redirect")
	ErrPhotoNoLocation     = errors.New("photo endpoint redirect has no Location header")
)

// PhotoResolver exchanges a provider photo reference for a displayable image
// URL. The photo endpoint answers with an HTTP redirect whose Location header
// is the final image URL; the resolver reads that header directly and never
// follows the redirect or inspects the response body.
type PhotoResolver struct {
	client   HTTPClient    // HTTP client for making requests; must not follow redirects
	baseURL  string        // Base URL for the photo endpoint
	apiKey   string        // API key for the photo endpoint
	maxWidth int           // Maximum photo width in pixels
	log      *slog.Logger  // Logger for logging operations
	limiter  *rate.Limiter // Rate limiter
}

// NewPhotoResolver creates a new PhotoResolver with a production HTTP client.
// The client is configured to stop at the first response instead of following
// redirects, so the redirect target stays observable.
func NewPhotoResolver(apiKey string, maxWidth, rateLimit int, timeout time.Duration, log *slog.Logger) *PhotoResolver {
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &PhotoResolver{
		client:   client,
		baseURL:  PhotoBaseURL,
		apiKey:   apiKey,
		maxWidth: maxWidth,
		log:      log,
		limiter:  rate.NewLimiter(rate.Limit(rateLimit), rateLimit),
	}
}

// NewPhotoResolverWithClient allows injecting a custom HTTP client.
func NewPhotoResolverWithClient(
	client HTTPClient,
	apiKey string,
	maxWidth int,
	limiter *rate.Limiter,
	log *slog.Logger,
) *PhotoResolver {
	return &PhotoResolver{
		client:   client,
		baseURL:  PhotoBaseURL,
		apiKey:   apiKey,
		maxWidth: maxWidth,
		log:      log,
		limiter:  limiter,
	}
}

// Resolve exchanges the given photo reference for the image URL behind the
// photo endpoint's redirect. An empty reference is a caller error; callers are
// expected to branch on absence instead of calling Resolve.
func (pr *PhotoResolver) Resolve(ctx context.Context, photoReference string) (string, error) {
	if photoReference == "" {
		return "", ErrEmptyPhotoReference
	}

	if err := pr.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit exceeded: %w", err)
	}

	reqURL, err := url.Parse(pr.baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("maxwidth", strconv.Itoa(pr.maxWidth))
	query.Set("photoreference", photoReference)
	query.Set("key", pr.apiKey)
	reqURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := pr.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute photo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusMultipleChoices || resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		pr.log.ErrorContext(ctx, "Photo endpoint returned unexpected status",
			"status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("%w: status %d", ErrPhotoNotRedirect, resp.StatusCode)
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", ErrPhotoNoLocation
	}

	pr.log.DebugContext(ctx, "Resolved photo URL", "url", location)

	return location, nil
}
