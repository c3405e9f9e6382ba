// Package server exposes the webhook over HTTP. The inbound signature check and
// event parsing are delegated to the messaging SDK; everything after a valid
// parse belongs to the dispatcher.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/harapeko-bot/harapeko/internal/metrics"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReplySender delivers reply messages to the messaging platform. The SDK's
// messaging client satisfies this.
type ReplySender interface {
	ReplyMessage(request *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
}

// Dispatcher produces the reply messages for one webhook event.
type Dispatcher interface {
	Dispatch(ctx context.Context, event webhook.EventInterface) []messaging_api.MessageInterface
}

// Server handles the webhook callback endpoint. It validates and parses the
// request through the SDK, dispatches each event, and sends replies. The
// inbound request is acknowledged with 200 even when a reply send fails; the
// platform expects a prompt acknowledgement regardless of downstream outcome.
type Server struct {
	channelSecret string           // channelSecret validates the inbound signature.
	sender        ReplySender      // sender delivers outbound replies.
	dispatcher    Dispatcher       // dispatcher routes parsed events.
	metrics       *metrics.Metrics // metrics tracks reply outcomes.
	log           *slog.Logger     // log is the logger for the server.
}

// New creates a new webhook Server.
func New(
	channelSecret string,
	sender ReplySender,
	dispatcher Dispatcher,
	metrics *metrics.Metrics,
	log *slog.Logger,
) *Server {
	return &Server{
		channelSecret: channelSecret,
		sender:        sender,
		dispatcher:    dispatcher,
		metrics:       metrics,
		log:           log,
	}
}

// Callback is the webhook endpoint handler. An invalid signature is rejected
// with 400 before any event is dispatched.
func (s *Server) Callback(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	callback, err := webhook.ParseRequest(s.channelSecret, request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			s.log.WarnContext(ctx, "Rejected webhook request with invalid signature")
			writer.WriteHeader(http.StatusBadRequest)
			return
		}
		s.log.ErrorContext(ctx, "Failed to parse webhook request", "error", err)
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}

	for _, event := range callback.Events {
		messages := s.dispatcher.Dispatch(ctx, event)
		if len(messages) == 0 {
			continue
		}

		msgEvent, ok := event.(webhook.MessageEvent)
		if !ok {
			continue
		}

		_, err = s.sender.ReplyMessage(&messaging_api.ReplyMessageRequest{
			ReplyToken: msgEvent.ReplyToken,
			Messages:   messages,
		})
		if err != nil {
			s.metrics.RepliesSent.WithLabelValues("failure").Inc()
			s.log.ErrorContext(ctx, "Failed to send reply", "error", err)
			continue
		}

		s.metrics.RepliesSent.WithLabelValues("success").Inc()
	}

	writer.WriteHeader(http.StatusOK)
}

// Routes mounts the webhook, health, and metrics endpoints on the given mux.
func (s *Server) Routes(mux *http.ServeMux, reg *prometheus.Registry) {
	mux.HandleFunc("/callback", s.Callback)
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
		if _, err := writer.Write([]byte("OK")); err != nil {
			s.log.ErrorContext(request.Context(), "failed to write reply", "error", err)
		}
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}
