package places_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/harapeko-bot/harapeko/internal/places"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func TestPhotoResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	apiKey := "test-api-key"
	defaultRL := rate.NewLimiter(rate.Inf, 0)

	t.Run("successful resolution reads the redirect target", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				// Verify request parameters
				assert.Equal(t, "GET", req.Method)
				assert.Contains(t, req.URL.String(), places.PhotoBaseURL)
				assert.Equal(t, "400", req.URL.Query().Get("maxwidth"))
				assert.Equal(t, "some-photo-reference", req.URL.Query().Get("photoreference"))
				assert.Equal(t, apiKey, req.URL.Query().Get("key"))

				header := http.Header{}
				header.Set("Location", "https://lh3.googleusercontent.com/places/photo-abc")
				return &http.Response{
					StatusCode: http.StatusFound,
					Header:     header,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		resolver := places.NewPhotoResolverWithClient(mockClient, apiKey, 400, defaultRL, logger)
		photoURL, err := resolver.Resolve(ctx, "some-photo-reference")

		require.NoError(t, err)
		assert.Equal(t, "https://lh3.googleusercontent.com/places/photo-abc", photoURL)
	})

	t.Run("empty photo reference is a caller error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				t.Fatal("HTTP client must not be called for an empty photo reference")
				return &http.Response{}, nil
			},
		}

		resolver := places.NewPhotoResolverWithClient(mockClient, apiKey, 400, defaultRL, logger)
		photoURL, err := resolver.Resolve(ctx, "")

		require.Error(t, err)
		assert.Empty(t, photoURL)
		assert.ErrorIs(t, err, places.ErrEmptyPhotoReference)
	})

	t.Run("non-redirect response is an error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusOK,
					Header:     http.Header{},
					Body:       io.NopCloser(bytes.NewBufferString("<html>photo page</html>")),
				}, nil
			},
		}

		resolver := places.NewPhotoResolverWithClient(mockClient, apiKey, 400, defaultRL, logger)
		photoURL, err := resolver.Resolve(ctx, "some-photo-reference")

		require.Error(t, err)
		assert.Empty(t, photoURL)
		assert.ErrorIs(t, err, places.ErrPhotoNotRedirect)
	})

	t.Run("error status is an error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusForbidden,
					Header:     http.Header{},
					Body:       io.NopCloser(bytes.NewBufferString("invalid key")),
				}, nil
			},
		}

		resolver := places.NewPhotoResolverWithClient(mockClient, apiKey, 400, defaultRL, logger)
		photoURL, err := resolver.Resolve(ctx, "some-photo-reference")

		require.Error(t, err)
		assert.Empty(t, photoURL)
		assert.ErrorIs(t, err, places.ErrPhotoNotRedirect)
	})

	t.Run("redirect without Location header is an error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusFound,
					Header:     http.Header{},
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		resolver := places.NewPhotoResolverWithClient(mockClient, apiKey, 400, defaultRL, logger)
		photoURL, err := resolver.Resolve(ctx, "some-photo-reference")

		require.Error(t, err)
		assert.Empty(t, photoURL)
		assert.ErrorIs(t, err, places.ErrPhotoNoLocation)
	})

	t.Run("network error is wrapped", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		resolver := places.NewPhotoResolverWithClient(mockClient, apiKey, 400, defaultRL, logger)
		photoURL, err := resolver.Resolve(ctx, "some-photo-reference")

		require.Error(t, err)
		assert.Empty(t, photoURL)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("rate limit exceeded", func(t *testing.T) {
		rateCtx, cancel := context.WithCancel(context.Background())
		cancel() // cancel immediately
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				t.Fatal("HTTP client should not be called when rate limit blocks")
				return &http.Response{}, nil
			},
		}

		limiter := rate.NewLimiter(rate.Every(time.Second), 1)

		resolver := places.NewPhotoResolverWithClient(mockClient, apiKey, 400, limiter, logger)
		photoURL, err := resolver.Resolve(rateCtx, "some-photo-reference")

		require.Error(t, err)
		assert.Empty(t, photoURL)
		assert.ErrorContains(t, err, "rate limit exceeded")
	})
}
