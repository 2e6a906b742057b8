package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/ghuser/stockledger/pkg/config"
)

const sentryFlushTimeout = 2 * time.Second

// SetupSentry initializes crash reporting. An empty SENTRY_DSN leaves it off.
// Every event is tagged with the storage backend so a Redis outage can be told
// apart from a ledger bug.
func SetupSentry(cfg *config.Config) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          cfg.ServiceName + "@" + cfg.ServiceVersion,
		TracesSampleRate: cfg.TraceSampling,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			if event.Tags == nil {
				event.Tags = map[string]string{}
			}
			event.Tags["storage"] = cfg.Storage
			return event
		},
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

// SentryFlush drains buffered events before exit.
func SentryFlush() {
	sentry.Flush(sentryFlushTimeout)
}

// SentryMiddleware reports panics and re-raises them for logger.Recovery.
func SentryMiddleware() func(http.Handler) http.Handler {
	return sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle
}

// CaptureError reports err on the request's hub, or the global hub outside a
// request. attrs become event tags. Without a client it does nothing.
func CaptureError(ctx context.Context, err error, attrs ...string) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for i := 0; i+1 < len(attrs); i += 2 {
			scope.SetTag(attrs[i], attrs[i+1])
		}
		hub.CaptureException(err)
	})
}
