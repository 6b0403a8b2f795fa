package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Domenick1991/oceanview/api"
	"github.com/Domenick1991/oceanview/config"
	"github.com/Domenick1991/oceanview/internal/auth"
	"github.com/Domenick1991/oceanview/internal/cache"
	"github.com/Domenick1991/oceanview/internal/gateway"
	"github.com/Domenick1991/oceanview/internal/kafka"
	"github.com/Domenick1991/oceanview/internal/logger"
	"github.com/Domenick1991/oceanview/internal/metrics"
	"github.com/Domenick1991/oceanview/internal/repository"
	"github.com/Domenick1991/oceanview/internal/service/booking"
	"github.com/Domenick1991/oceanview/internal/service/catalog"
	"github.com/Domenick1991/oceanview/internal/service/feedback"
	"github.com/Domenick1991/oceanview/internal/service/payment"
	"github.com/Domenick1991/oceanview/internal/service/users"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App holds the store, the optional infrastructure clients and the services
// built on top of them.
type App struct {
	cfg *config.Config
	log *logger.Logger

	Store    repository.Store
	Cache    *cache.RedisCache
	Producer *kafka.Producer
	Issuer   *auth.TokenIssuer

	Catalog  *catalog.CatalogService
	Bookings *booking.BookingService
	Payments *payment.PaymentService
	Feedback *feedback.FeedbackService
	Users    *users.UsersService
}

// OpenStore returns the store selected by storage.driver. The postgres store
// applies the embedded migrations when database.migrate is set.
func OpenStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (repository.Store, error) {
	if cfg.Storage.Driver != "postgres" {
		log.LogDatabase("OPEN", "memory", "using in-memory store")
		return repository.NewMemoryStore(), nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := repository.NewPGStore(pool)
	if cfg.Database.Migrate {
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.LogDatabase("MIGRATE", cfg.Database.Name, "schema up to date")
	}
	log.LogDatabase("OPEN", cfg.Database.Name, "connected to postgres")
	return store, nil
}

// NewApp wires the services. Redis, Kafka and Stripe are optional: an empty
// redis.addr disables caching and checkout locks, no brokers disables event
// publishing, and an empty stripe.secret_key disables gateway checkout.
func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	store, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	app := &App{
		cfg:    cfg,
		log:    log,
		Store:  store,
		Issuer: auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.TokenTTL()),
	}

	if cfg.Metrics.Enabled {
		metrics.Register()
	}

	var catalogCache catalog.Cache
	var checkoutLock payment.CheckoutLock
	if cfg.Redis.Addr != "" {
		app.Cache = cache.NewRedisCache(cfg.Redis, cfg.CatalogCacheTTL())
		if err := app.Cache.Ping(ctx); err != nil {
			log.Warn("REDIS", "redis unreachable at startup: "+err.Error())
		}
		catalogCache = app.Cache
		checkoutLock = app.Cache
	}

	var bookingProducer booking.Producer
	var paymentProducer payment.Producer
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.BookingEventsTopic != "" {
		app.Producer = kafka.NewProducer(cfg.Kafka.Brokers, kafka.WithLogger(log))
		bookingProducer = app.Producer
		paymentProducer = app.Producer
	}

	paymentOpts := []payment.PaymentServiceOption{
		payment.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		payment.WithStrictTransitions(cfg.Booking.Strict()),
		payment.WithLogger(log),
	}
	if checkoutLock != nil {
		paymentOpts = append(paymentOpts, payment.WithCheckoutLock(checkoutLock, cfg.CheckoutLockTTL()))
	}
	if cfg.Stripe.SecretKey != "" {
		stripeGateway, err := gateway.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, log)
		if err != nil {
			app.Close()
			return nil, err
		}
		paymentOpts = append(paymentOpts, payment.WithGateway(stripeGateway))
	}

	app.Catalog = catalog.NewCatalogService(store, catalogCache, log)
	app.Bookings = booking.NewBookingService(store, store, bookingProducer, cfg.Kafka.BookingEventsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithReferencePrefix(cfg.Booking.ReferencePrefix),
		booking.WithStrictTransitions(cfg.Booking.Strict()),
		booking.WithLogger(log),
	)
	app.Payments = payment.NewPaymentService(store, paymentProducer, cfg.Kafka.BookingEventsTopic, paymentOpts...)
	app.Feedback = feedback.NewFeedbackService(store,
		feedback.WithStrictTransitions(cfg.Booking.Strict()),
		feedback.WithLogger(log),
	)
	app.Users = users.NewUsersService(store, app.Issuer,
		users.WithBcryptCost(cfg.Auth.BcryptCost),
		users.WithResetTokenTTL(cfg.ResetTokenTTL()),
		users.WithLogger(log),
	)

	if cfg.Booking.SeedCatalog {
		seeded, err := catalog.Seed(ctx, store, store)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		if seeded {
			log.LogProcess("SEED", "sample catalog loaded")
		}
	}
	return app, nil
}

func (a *App) Handlers() Handlers {
	return Handlers{
		Catalog:  api.NewCatalogHandler(a.Catalog),
		Bookings: api.NewBookingHandler(a.Bookings, a.Catalog, a.Users),
		Payments: api.NewPaymentHandler(a.Payments, a.Bookings),
		Feedback: api.NewFeedbackHandler(a.Feedback),
		Users:    api.NewUserHandler(a.Users, a.cfg.HTTP.ExposeResetTokens),
	}
}

func (a *App) HealthChecks() map[string]HealthCheck {
	checks := map[string]HealthCheck{}
	if a.Cache != nil {
		checks["redis"] = a.Cache.Ping
	}
	if a.Producer != nil {
		checks["kafka"] = a.Producer.CheckConnection
	}
	return checks
}

func (a *App) Router() http.Handler {
	return NewRouter(a.cfg, a.Handlers(), a.Issuer, a.HealthChecks(), a.log)
}

func (a *App) Close() {
	if a.Producer != nil {
		if err := a.Producer.Close(); err != nil {
			a.log.Warn("KAFKA", "close producer: "+err.Error())
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.log.Warn("REDIS", "close cache: "+err.Error())
		}
	}
	a.Store.Close()
}
