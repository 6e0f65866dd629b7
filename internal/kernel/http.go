// Package kernel assembles the HTTP handler: global middleware, the
// operational endpoints and the API routes.
package kernel

import (
	"net/http"
	"strings"
	"time"

	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/app/routes"
	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/metrics"
	"github.com/shashiranjanraj/shopfront/pkg/middleware"
	"github.com/shashiranjanraj/shopfront/pkg/reqid"
	"github.com/shashiranjanraj/shopfront/pkg/response"
	"github.com/shashiranjanraj/shopfront/pkg/router"
	"github.com/shashiranjanraj/shopfront/pkg/storage"
)

// UploadsPath is where the local disk is served.
const UploadsPath = "/public/uploads"

// HTTP is the application's HTTP kernel.
type HTTP struct {
	router  *router.Router
	limiter *middleware.RateLimiter
}

// New builds the kernel around a store and an upload disk.
func New(store *repositories.Store, disk storage.Disk) *HTTP {
	r := router.New()
	if err := middleware.TrustProxies(config.TrustedProxies()); err != nil {
		logger.Warn("kernel: ignoring TRUSTED_PROXIES", "error", err)
		_ = middleware.TrustProxies(nil)
	}
	limiter := middleware.NewRateLimiter(config.RateLimit(), time.Minute)

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics, outermost so latency covers everything
	//  2. Recovery
	//  3. Request ID, before anything logs
	//  4. Logger
	//  5. CORS
	//  6. Rate limiter
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(corsOptions()))
	r.Use(limiter.Handler)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", "home", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Server is ready!"))
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	if local, ok := disk.(*storage.LocalDisk); ok {
		r.Static(UploadsPath, "uploads", http.Dir(local.Root()))
	}

	routes.RegisterAPI(r, config.APIURL(), store, disk)

	return &HTTP{router: r, limiter: limiter}
}

func (k *HTTP) Handler() http.Handler { return k.router.Handler() }

func (k *HTTP) Routes() []router.Route { return k.router.Routes() }

// Close stops background work owned by the kernel.
func (k *HTTP) Close() { k.limiter.Stop() }

func corsOptions() middleware.CORSOptions {
	opts := middleware.DefaultCORSOptions()
	if raw := config.Get("CORS_ORIGINS", ""); raw != "" {
		opts.AllowedOrigins = nil
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				opts.AllowedOrigins = append(opts.AllowedOrigins, o)
			}
		}
	}
	return opts
}
