package server_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/harapeko-bot/harapeko/internal/metrics"
	"github.com/harapeko-bot/harapeko/internal/server"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const channelSecret = "test-channel-secret"

// textEventBody is a minimal valid webhook callback with one text message event.
const textEventBody = `{
	"destination": "U0000000000000000000000000000000000",
	"events": [
		{
			"type": "message",
			"mode": "active",
			"timestamp": 1625665242211,
			"webhookEventId": "01FZ74A0TDDPYRVKNK77XKC3ZR",
			"deliveryContext": {"isRedelivery": false},
			"replyToken": "reply-token-123",
			"source": {"type": "user", "userId": "U1234"},
			"message": {"type": "text", "id": "325708", "text": "hello"}
		}
	]
}`

// sign computes the webhook signature the platform would send for body.
func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// mockSender records reply requests.
type mockSender struct {
	requests []*messaging_api.ReplyMessageRequest
	err      error
}

func (m *mockSender) ReplyMessage(
	request *messaging_api.ReplyMessageRequest,
) (*messaging_api.ReplyMessageResponse, error) {
	m.requests = append(m.requests, request)
	if m.err != nil {
		return nil, m.err
	}
	return &messaging_api.ReplyMessageResponse{}, nil
}

// mockDispatcher returns fixed messages and records dispatched events.
type mockDispatcher struct {
	messages   []messaging_api.MessageInterface
	dispatched int
}

func (m *mockDispatcher) Dispatch(
	_ context.Context,
	_ webhook.EventInterface,
) []messaging_api.MessageInterface {
	m.dispatched++
	return m.messages
}

func newTestServer(sender server.ReplySender, dispatcher server.Dispatcher) *server.Server {
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	return server.New(channelSecret, sender, dispatcher, appMetrics, slog.Default())
}

func postCallback(t *testing.T, srv *server.Server, body, signature string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	if signature != "" {
		request.Header.Set("X-Line-Signature", signature)
	}
	recorder := httptest.NewRecorder()
	srv.Callback(recorder, request)

	return recorder
}

func TestServer_Callback(t *testing.T) {
	t.Run("valid request dispatches and replies", func(t *testing.T) {
		sender := &mockSender{}
		dispatcher := &mockDispatcher{
			messages: []messaging_api.MessageInterface{
				messaging_api.TextMessage{Text: "a reply"},
			},
		}
		srv := newTestServer(sender, dispatcher)

		recorder := postCallback(t, srv, textEventBody, sign(textEventBody))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, 1, dispatcher.dispatched)
		require.Len(t, sender.requests, 1)
		assert.Equal(t, "reply-token-123", sender.requests[0].ReplyToken)
		require.Len(t, sender.requests[0].Messages, 1)
	})

	t.Run("invalid signature is rejected before dispatch", func(t *testing.T) {
		sender := &mockSender{}
		dispatcher := &mockDispatcher{}
		srv := newTestServer(sender, dispatcher)

		recorder := postCallback(t, srv, textEventBody, "invalid-signature")

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Zero(t, dispatcher.dispatched)
		assert.Empty(t, sender.requests)
	})

	t.Run("missing signature is rejected before dispatch", func(t *testing.T) {
		sender := &mockSender{}
		dispatcher := &mockDispatcher{}
		srv := newTestServer(sender, dispatcher)

		recorder := postCallback(t, srv, textEventBody, "")

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Zero(t, dispatcher.dispatched)
		assert.Empty(t, sender.requests)
	})

	t.Run("no dispatcher messages means no reply sent", func(t *testing.T) {
		sender := &mockSender{}
		dispatcher := &mockDispatcher{messages: nil}
		srv := newTestServer(sender, dispatcher)

		recorder := postCallback(t, srv, textEventBody, sign(textEventBody))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, 1, dispatcher.dispatched)
		assert.Empty(t, sender.requests)
	})

	t.Run("reply send failure still acknowledges the request", func(t *testing.T) {
		sender := &mockSender{err: assert.AnError}
		dispatcher := &mockDispatcher{
			messages: []messaging_api.MessageInterface{
				messaging_api.TextMessage{Text: "a reply"},
			},
		}
		srv := newTestServer(sender, dispatcher)

		recorder := postCallback(t, srv, textEventBody, sign(textEventBody))

		assert.Equal(t, http.StatusOK, recorder.Code)
		require.Len(t, sender.requests, 1)
	})
}

func TestServer_Routes(t *testing.T) {
	sender := &mockSender{}
	dispatcher := &mockDispatcher{}
	srv := newTestServer(sender, dispatcher)

	mux := http.NewServeMux()
	srv.Routes(mux, prometheus.NewRegistry())

	t.Run("healthz responds OK", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "OK", recorder.Body.String())
	})

	t.Run("metrics endpoint is mounted", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		mux.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}
