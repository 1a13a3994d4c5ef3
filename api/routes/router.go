package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/shareit-backend/api/controllers"
	bookingcontrollers "github.com/angelmondragon/shareit-backend/api/controllers/bookings"
	itemcontrollers "github.com/angelmondragon/shareit-backend/api/controllers/items"
	requestcontrollers "github.com/angelmondragon/shareit-backend/api/controllers/requests"
	usercontrollers "github.com/angelmondragon/shareit-backend/api/controllers/users"
	"github.com/angelmondragon/shareit-backend/api/middleware"
	"github.com/angelmondragon/shareit-backend/internal/bookings"
	"github.com/angelmondragon/shareit-backend/internal/comments"
	"github.com/angelmondragon/shareit-backend/internal/items"
	"github.com/angelmondragon/shareit-backend/internal/requests"
	"github.com/angelmondragon/shareit-backend/internal/users"
	"github.com/angelmondragon/shareit-backend/pkg/config"
	"github.com/angelmondragon/shareit-backend/pkg/db"
	"github.com/angelmondragon/shareit-backend/pkg/logger"
	"github.com/angelmondragon/shareit-backend/pkg/metrics"
	"github.com/angelmondragon/shareit-backend/pkg/redis"
)

// Services groups the domain services exposed over HTTP.
type Services struct {
	Users    users.Service
	Items    items.Service
	Comments comments.Service
	Bookings bookings.Service
	Requests requests.Service
}

// NewRouter builds the API handler. redisClient may be nil, which disables
// signup rate limiting and idempotent replay. gatherer may be nil to skip /metrics.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTPMetrics,
	svc Services,
) http.Handler {
	var (
		rateStore   middleware.RateLimitStore
		idemStore   redis.IdempotencyStore
		redisPinger controllers.Pinger
	)
	if redisClient != nil {
		rateStore = redisClient
		idemStore = redisClient
		redisPinger = redisClient
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	signupPolicy := middleware.SignupPolicy{
		Window:     cfg.RateLimit.SignupWindow,
		IPLimit:    cfg.RateLimit.SignupIPLimit,
		EmailLimit: cfg.RateLimit.SignupEmailLimit,
	}
	idempotent := middleware.Idempotency(idemStore, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisPinger, logg))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/users", func(r chi.Router) {
		r.With(middleware.SignupRateLimit(signupPolicy, rateStore, logg), idempotent).Post("/", usercontrollers.Create(svc.Users, logg))
		r.Get("/", usercontrollers.List(svc.Users, logg))
		r.Get("/{userID}", usercontrollers.Get(svc.Users, logg))
		r.Patch("/{userID}", usercontrollers.Update(svc.Users, logg))
		r.Delete("/{userID}", usercontrollers.Delete(svc.Users, logg))
	})

	r.Route("/items", func(r chi.Router) {
		r.With(middleware.OptionalSharer(logg)).Get("/search", itemcontrollers.Search(svc.Items, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSharer(logg))
			r.With(idempotent).Post("/", itemcontrollers.Create(svc.Items, logg))
			r.Get("/", itemcontrollers.List(svc.Items, logg))
			r.Get("/{itemID}", itemcontrollers.Get(svc.Items, logg))
			r.Patch("/{itemID}", itemcontrollers.Update(svc.Items, logg))
			r.With(idempotent).Post("/{itemID}/comment", itemcontrollers.CreateComment(svc.Comments, logg))
		})
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Use(middleware.RequireSharer(logg))
		r.With(idempotent).Post("/", bookingcontrollers.Create(svc.Bookings, logg))
		r.Get("/", bookingcontrollers.List(svc.Bookings, logg))
		r.Get("/owner", bookingcontrollers.ListOwner(svc.Bookings, logg))
		r.Get("/{bookingID}", bookingcontrollers.Get(svc.Bookings, logg))
		r.With(idempotent).Patch("/{bookingID}", bookingcontrollers.Decide(svc.Bookings, logg))
	})

	r.Route("/requests", func(r chi.Router) {
		r.Use(middleware.RequireSharer(logg))
		r.With(idempotent).Post("/", requestcontrollers.Create(svc.Requests, logg))
		r.Get("/", requestcontrollers.ListOwn(svc.Requests, logg))
		r.Get("/all", requestcontrollers.ListAll(svc.Requests, logg))
		r.Get("/{requestID}", requestcontrollers.Get(svc.Requests, logg))
	})

	return r
}
