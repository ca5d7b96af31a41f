package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/analytics"
	analyticsstore "github.com/serroba/shortlink/internal/analytics/store"
	"github.com/serroba/shortlink/internal/auth"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/health"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"go.uber.org/zap"
)

// VisitsConsumerGroup is the Redis Streams consumer group of the visit log.
const VisitsConsumerGroup = "shortlink-visits"

// Postgres owns the connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

func (p *Postgres) Shutdown() error {
	p.Pool.Close()

	return nil
}

// Redis owns the client connection.
type Redis struct {
	Client *redis.Client
}

func (r *Redis) Shutdown() error {
	return r.Client.Close()
}

// LoggerPackage provides the zap logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the Redis client.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)

		return &Redis{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// PostgresPackage provides the migrated PostgreSQL pool.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if err := store.RunMigrations(opts.DatabaseURL); err != nil {
			return nil, err
		}

		pool, err := pgxpool.New(context.Background(), opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}

		logger.Info("connected to postgres")

		return &Postgres{Pool: pool}, nil
	})
}

// RepositoryPackage provides the URL, user and visit stores for the configured backend.
func RepositoryPackage(i *do.Injector) {
	opts := do.MustInvoke[*Options](i)

	if opts.IsMemory() {
		urls := store.NewMemoryStore()

		do.ProvideValue[shortener.Repository](i, urls)
		do.ProvideValue[shortener.VisitRecorder](i, urls)
		do.ProvideValue[shortener.VisitLister](i, urls)
		do.ProvideValue[auth.Repository](i, store.NewMemoryUserStore())

		return
	}

	do.Provide(i, func(i *do.Injector) (*store.PostgresStore, error) {
		pg := do.MustInvoke[*Postgres](i)

		return store.NewPostgresStore(pg.Pool), nil
	})
	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		return do.MustInvoke[*store.PostgresStore](i), nil
	})
	do.Provide(i, func(i *do.Injector) (shortener.VisitRecorder, error) {
		return do.MustInvoke[*store.PostgresStore](i), nil
	})
	do.Provide(i, func(i *do.Injector) (shortener.VisitLister, error) {
		return do.MustInvoke[*store.PostgresStore](i), nil
	})
	do.Provide(i, func(i *do.Injector) (auth.Repository, error) {
		pg := do.MustInvoke[*Postgres](i)

		return store.NewPostgresUserStore(pg.Pool), nil
	})
}

// ShortenerPackage provides the key generator and the shortener service.
func ShortenerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Shortener, error) {
		opts := do.MustInvoke[*Options](i)

		keys, err := shortener.NewKeyGenerator(opts.KeyLength, opts.KeyAttempts)
		if err != nil {
			return nil, err
		}

		return shortener.NewShortener(do.MustInvoke[shortener.Repository](i), keys), nil
	})
}

// AuthPackage provides the auth service. It fails without a signing secret.
func AuthPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*auth.Service, error) {
		opts := do.MustInvoke[*Options](i)

		ttl, err := opts.tokenTTL()
		if err != nil {
			return nil, err
		}

		tokens, err := auth.NewTokenIssuer(opts.JWTSecret, ttl)
		if err != nil {
			return nil, err
		}

		return auth.NewService(
			do.MustInvoke[auth.Repository](i),
			auth.NewPasswordHasher(opts.BcryptCost),
			tokens,
		), nil
	})
}

// BrokerPackage provides the message publisher and subscriber.
// The postgres backend uses Redis Streams; the memory backend an in-process channel.
func BrokerPackage(i *do.Injector) {
	opts := do.MustInvoke[*Options](i)

	if opts.IsMemory() {
		do.Provide(i, func(i *do.Injector) (*gochannel.GoChannel, error) {
			logger := do.MustInvoke[*zap.Logger](i)

			return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, messaging.NewZapLogger(logger)), nil
		})
		do.Provide(i, func(i *do.Injector) (message.Publisher, error) {
			return do.MustInvoke[*gochannel.GoChannel](i), nil
		})
		do.Provide(i, func(i *do.Injector) (message.Subscriber, error) {
			return do.MustInvoke[*gochannel.GoChannel](i), nil
		})

		return
	}

	do.Provide(i, func(i *do.Injector) (message.Publisher, error) {
		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     do.MustInvoke[*Redis](i).Client,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, watermillLogger(i))
		if err != nil {
			return nil, fmt.Errorf("create redis stream publisher: %w", err)
		}

		return publisher, nil
	})
	do.Provide(i, func(i *do.Injector) (message.Subscriber, error) {
		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        do.MustInvoke[*Redis](i).Client,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: VisitsConsumerGroup,
		}, watermillLogger(i))
		if err != nil {
			return nil, fmt.Errorf("create redis stream subscriber: %w", err)
		}

		return subscriber, nil
	})
}

func watermillLogger(i *do.Injector) watermill.LoggerAdapter {
	return messaging.NewZapLogger(do.MustInvoke[*zap.Logger](i))
}

// PublisherGroupPackage provides the publisher group and the typed analytics publishers.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		return messaging.NewPublisherGroup(do.MustInvoke[message.Publisher](i)), nil
	})
	do.Provide(i, func(i *do.Injector) (*analytics.Publishers, error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return analytics.NewPublishers(group.Publisher()), nil
	})
}

// ConsumerGroupPackage provides the consumers writing the visit log.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)
		subscriber := do.MustInvoke[message.Subscriber](i)
		visits := analyticsstore.NewVisits(do.MustInvoke[shortener.VisitRecorder](i), logger)

		group := messaging.NewConsumerGroup(subscriber, logger)
		analytics.RegisterConsumers(group, subscriber, visits, logger)

		return group, nil
	})
}

// HealthPackage provides the health handler. Dependencies the backend does not use are reported as disabled.
func HealthPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*health.Handler, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.IsMemory() {
			return health.NewHandler(nil, nil), nil
		}

		return health.NewHandler(
			health.NewPostgresChecker(do.MustInvoke[*Postgres](i).Pool),
			health.NewRedisChecker(do.MustInvoke[*Redis](i).Client),
		), nil
	})
}

// HTTPPackage provides the router and the huma API with all routes registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*chi.Mux, error) {
		opts := do.MustInvoke[*Options](i)

		router := chi.NewMux()
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.corsOrigins(),
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}))

		return router, nil
	})

	do.Provide(i, func(i *do.Injector) (*prometheus.Registry, error) {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		return reg, nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		reg := do.MustInvoke[*prometheus.Registry](i)
		service := do.MustInvoke[*auth.Service](i)

		router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

		config := huma.DefaultConfig("URL Shortener", "1.0.0")
		config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
			handlers.BearerScheme: {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
		}

		api := humachi.New(router, config)
		api.UseMiddleware(middleware.NewMetrics(reg).Middleware(api))
		api.UseMiddleware(middleware.RequestMeta(api))
		api.UseMiddleware(middleware.Authenticate(api, service, logger))

		urlHandler := handlers.NewURLHandler(
			do.MustInvoke[*shortener.Shortener](i),
			do.MustInvoke[shortener.Repository](i),
			do.MustInvoke[shortener.VisitLister](i),
			do.MustInvoke[*analytics.Publishers](i),
			logger,
		)

		health.RegisterRoutes(api, do.MustInvoke[*health.Handler](i))
		handlers.RegisterRoutes(api, handlers.NewAuthHandler(service, logger), urlHandler)

		return api, nil
	})
}

// Register wires every package the HTTP server needs.
func Register(i *do.Injector, opts *Options) {
	do.ProvideValue(i, opts)
	LoggerPackage(i)
	RedisPackage(i)
	PostgresPackage(i)
	RepositoryPackage(i)
	ShortenerPackage(i)
	AuthPackage(i)
	BrokerPackage(i)
	PublisherGroupPackage(i)
	ConsumerGroupPackage(i)
	HealthPackage(i)
	HTTPPackage(i)
}
