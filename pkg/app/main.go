package app

import (
	"fmt"

	"github.com/gorilla/sessions"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/cache"
	"github.com/ghuser/stockledger/pkg/config"
	"github.com/ghuser/stockledger/pkg/events"
	"github.com/ghuser/stockledger/pkg/logger"
	"github.com/ghuser/stockledger/pkg/telemetry"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to all service route registrations during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler. Use slog's context methods
// and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "stock movement", "item_id", id)
//	app.Logger.ErrorContext(ctx, "failed to flush", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config   *config.Config
	Logger   logger.Logger
	EventBus *events.EventBus
	// Redis is nil when STORAGE=memory.
	Redis         *cache.RedisClient
	SessionStore  sessions.Store
	Authenticator *auth.Authenticator
	// Metrics is nil in the CLI.
	Metrics *telemetry.InventoryMetrics
}

// NewAuthenticator builds the role checkers from config. A bcrypt hash wins
// over the cleartext secret of the same role.
func NewAuthenticator(cfg *config.Config) (*auth.Authenticator, error) {
	admin, err := auth.CheckerFor(cfg.AdminSecretHash, cfg.AdminSecret)
	if err != nil {
		return nil, fmt.Errorf("admin secret: %w", err)
	}
	restricted, err := auth.CheckerFor(cfg.RestrictedSecretHash, cfg.RestrictedSecret)
	if err != nil {
		return nil, fmt.Errorf("restricted secret: %w", err)
	}
	return auth.NewAuthenticator(admin, restricted), nil
}

// NewSessionStore keeps sessions in Redis when a client is available and in
// the encrypted cookie otherwise.
func NewSessionStore(cfg *config.Config, redisClient *cache.RedisClient) sessions.Store {
	opts := auth.SessionOptions{
		AuthKey:       []byte(cfg.SessionAuthKey),
		EncryptionKey: []byte(cfg.SessionEncryptionKey),
		Secure:        cfg.Environment == config.EnvProduction,
	}
	if redisClient == nil {
		return auth.NewCookieStore(opts)
	}
	return auth.NewSessionStore(redisClient.Client(), opts)
}
