package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/dialog"
	"github.com/utafrali/storefront/internal/gateway"
	"github.com/utafrali/storefront/internal/metrics"
	"github.com/utafrali/storefront/internal/notify"
	"github.com/utafrali/storefront/internal/session"
	"github.com/utafrali/storefront/internal/store"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/tracing"
)

const source = "reviewctl"

// Option configures an App.
type Option func(*options)

type options struct {
	sinks   []notify.Sink
	alerter dialog.Alerter
}

// WithSink adds a notification sink next to the configured ones.
func WithSink(s notify.Sink) Option {
	return func(o *options) { o.sinks = append(o.sinks, s) }
}

// WithAlerter sets how the review dialog shows validation failures.
func WithAlerter(a dialog.Alerter) Option {
	return func(o *options) { o.alerter = a }
}

// App wires together the storefront client: gateway, stores, dialog and
// notification channel.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Session *session.Session

	Gateway     *gateway.Client
	Toasts      *notify.Bus
	Reviews     *store.ReviewStore
	Eligibility *store.EligibilityStore
	Products    *store.ProductStore
	Cart        *store.CartStore
	Dialog      *dialog.Controller
	Health      *health.Handler

	rdb            *redis.Client
	producer       *pkgkafka.Producer
	shutdownTracer func(context.Context) error
	unsubscribe    []func()
}

// New creates the application, connecting to Redis and Kafka when they are
// configured.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Logger: logger, Health: health.NewHandler()}

	sess := session.Anonymous()
	if cfg.Token != "" {
		s, err := session.FromToken(cfg.Token)
		if err != nil {
			return nil, fmt.Errorf("read STOREFRONT_TOKEN: %w", err)
		}
		if s.Expired(time.Now()) {
			logger.Warn("storefront token has expired", slog.String("user_id", s.UserID()))
		}
		sess = s
	}
	a.Session = sess

	traceCfg := tracing.DefaultConfig(source)
	traceCfg.Environment = cfg.Environment
	traceCfg.Enabled = cfg.OTELEnabled
	traceCfg.OTLPEndpoint = cfg.OTELEndpoint
	traceCfg.SampleRate = cfg.OTELSampleRate
	shutdown, err := tracing.InitTracer(ctx, traceCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}
	a.shutdownTracer = shutdown

	// Storefront API client.
	httpCfg := httpclient.DefaultConfig()
	httpCfg.Timeout = cfg.HTTPTimeout
	httpCfg.MaxRetries = cfg.HTTPMaxRetries
	httpCfg.RequestsPerSecond = cfg.GatewayRPS
	httpCfg.Burst = cfg.GatewayBurst

	cbCfg := httpclient.DefaultCircuitBreakerConfig("storefront-api")
	cbCfg.Timeout = cfg.BreakerTimeout
	cbCfg.FailureRatio = cfg.BreakerFailureRatio
	cbCfg.MinRequests = cfg.BreakerMinRequests

	cb := httpclient.NewCircuitBreakerClient(httpclient.New(httpCfg), cbCfg, logger)
	a.Gateway = gateway.New(cb, cfg.APIURL, sess.Token, logger)
	a.Health.Register("storefront_api", a.Gateway.Ping)

	// Optional Redis cache.
	var (
		sizeCache    store.SizeCache
		productCache store.ProductCache
	)
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewClient(ctx, cache.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.rdb = rdb
		rc := cache.New(rdb, cfg.SizesTTL, cfg.ProductsTTL)
		sizeCache, productCache = rc, rc
		a.Health.Register("redis", rc.Ping)
		logger.Info("connected to Redis", slog.String("addr", cfg.RedisAddr), slog.Int("db", cfg.RedisDB))
	}

	// Notification channel.
	busOpts := []notify.Option{notify.WithTTL(cfg.ToastTTL), notify.WithSink(notify.NewLogSink(logger))}
	if len(cfg.KafkaBrokers) > 0 {
		a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		busOpts = append(busOpts, notify.WithSink(notify.NewKafkaSink(a.producer, cfg.NotifyTopic, source)))
		a.Health.Register("kafka", a.producer.Ping)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}
	for _, s := range o.sinks {
		busOpts = append(busOpts, notify.WithSink(s))
	}
	a.Toasts = notify.NewBus(logger, busOpts...)

	// Stores.
	storeOpts := []store.Option{store.WithLocale(cfg.Locale)}
	a.Reviews = store.NewReviewStore(a.Gateway, a.Toasts, logger, storeOpts...)
	a.Eligibility = store.NewEligibilityStore(a.Gateway, sizeCache, sess, logger, storeOpts...)
	a.Products = store.NewProductStore(a.Gateway, productCache, a.Toasts, logger, storeOpts...)
	a.Cart = store.NewCartStore(a.Gateway, a.Toasts, sess, logger, storeOpts...)

	listen := metrics.StoreListener()
	a.unsubscribe = append(a.unsubscribe,
		a.Reviews.Subscribe(listen),
		a.Eligibility.Subscribe(listen),
		a.Products.Subscribe(listen),
		a.Cart.Subscribe(listen),
	)

	// Review dialog.
	dialogOpts := []dialog.Option{dialog.WithLocale(cfg.Locale), dialog.WithSession(sess)}
	if o.alerter != nil {
		dialogOpts = append(dialogOpts, dialog.WithAlerter(o.alerter))
	}
	a.Dialog = dialog.New(a.Reviews, a.Eligibility, logger, dialogOpts...)
	a.unsubscribe = append(a.unsubscribe, a.Dialog.Follow())

	return a, nil
}

// Close releases connections and flushes pending spans and events.
func (a *App) Close(ctx context.Context) error {
	for _, fn := range a.unsubscribe {
		fn()
	}
	a.unsubscribe = nil

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.Logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.Logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			return fmt.Errorf("shutdown tracer: %w", err)
		}
	}
	return nil
}
