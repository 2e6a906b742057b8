package httpx

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
)

const (
	// DefaultMaxBodyBytes caps request bodies. A full restore payload must fit.
	DefaultMaxBodyBytes = 32 << 20
	// DefaultRequestsPerMinute is the per-IP budget.
	DefaultRequestsPerMinute = 300
	// DefaultHandlerTimeout bounds a handler. Workbook exports of a large corpus are the slowest.
	DefaultHandlerTimeout = 30 * time.Second
)

// ServerConfig holds the options for NewRouter. Zero values take the defaults.
type ServerConfig struct {
	ServiceName   string
	IsDevelopment bool
	// CORSAllowedOrigins is a comma-separated list; "*" allows any origin
	// but disables credentialed (session cookie) requests.
	CORSAllowedOrigins string
	MaxBodyBytes       int64
	RequestsPerMinute  int
	HandlerTimeout     time.Duration
}

// Instrumentation is the process-specific middleware NewRouter places around
// the chi built-ins. Nil members are skipped.
type Instrumentation struct {
	Recovery func(http.Handler) http.Handler
	Sentry   func(http.Handler) http.Handler
	Tracing  func(http.Handler) http.Handler
	Logger   func(http.Handler) http.Handler
}

// NewRouter returns a chi.Mux with the ledger's middleware stack, outermost first:
//
//	Recovery, Sentry (re-panics into Recovery), RequestID, Tracing, Logger,
//	RealIP, per-IP rate limit, CORS, body cap, handler timeout, security headers.
func NewRouter(cfg ServerConfig, inst Instrumentation) *chi.Mux {
	r := chi.NewRouter()
	use := func(mw func(http.Handler) http.Handler) {
		if mw != nil {
			r.Use(mw)
		}
	}

	use(inst.Recovery)
	use(inst.Sentry)
	r.Use(middleware.RequestID)
	use(inst.Tracing)
	use(inst.Logger)
	r.Use(
		middleware.RealIP,
		httprate.LimitByIP(orDefault(cfg.RequestsPerMinute, DefaultRequestsPerMinute), time.Minute),
		CORSMiddleware(cfg.CORSAllowedOrigins),
		RequestBodyLimit(orDefault(cfg.MaxBodyBytes, DefaultMaxBodyBytes)),
		middleware.Timeout(orDefault(cfg.HandlerTimeout, DefaultHandlerTimeout)),
		securityHeaders(cfg.IsDevelopment).Handler,
	)
	return r
}

func orDefault[T int | int64 | time.Duration](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}

func securityHeaders(isDevelopment bool) *secure.Secure {
	return secure.New(secure.Options{
		STSSeconds:            63072000,
		STSIncludeSubdomains:  true,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		PermissionsPolicy:     "geolocation=(), microphone=(), camera=(), usb=()",
		IsDevelopment:         isDevelopment,
	})
}

// CORSMiddleware allows the listed origins. Downloads expose
// Content-Disposition so browsers can read the export file name.
func CORSMiddleware(allowedOrigins string) func(http.Handler) http.Handler {
	origins := parseOrigins(allowedOrigins)
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-Id"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	})
}

func parseOrigins(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// RequestBodyLimit caps the request body at maxBytes. Reads past the cap fail
// with *http.MaxBytesError, which handlers turn into 413.
func RequestBodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// NewServer returns an *http.Server for the ledger API. The write timeout
// leaves room past the handler timeout for streaming a workbook.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       90 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
