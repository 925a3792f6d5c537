package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"jewelry/api"
	apiadmin "jewelry/api/admin"
	"jewelry/api/health"
	"jewelry/api/middleware"
	apiorder "jewelry/api/order"
	apipayment "jewelry/api/payment"
	apiproduct "jewelry/api/product"
	"jewelry/api/validation"
	adminapp "jewelry/application/admin"
	"jewelry/application/catalog"
	orderapp "jewelry/application/order"
	paymentapp "jewelry/application/payment"
	"jewelry/config"
	"jewelry/domain/order"
	"jewelry/domain/product"
	"jewelry/domain/shared"
	"jewelry/domain/user"
	"jewelry/infrastructure/payment/qpay"
	"jewelry/infrastructure/payment/stripe"
	"jewelry/infrastructure/persistence/mocks"
	"jewelry/infrastructure/persistence/mysql"
	"jewelry/infrastructure/persistence/retry"
	"jewelry/pkg/auth"
	"jewelry/pkg/hashid"
	"jewelry/pkg/logger"
	"jewelry/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrateTimeout = time.Minute

// AppBuilder assembles the HTTP service from configuration.
type AppBuilder struct {
	cfg          *config.Config
	controllers  []api.ControllerRegister
	middlewares  []gin.HandlerFunc
	customRoutes []api.Route
	skipLogger   bool
}

func NewBuilder(cfg *config.Config) *AppBuilder {
	return &AppBuilder{cfg: cfg}
}

// WithController mounts an extra controller under /api/v1.
func (b *AppBuilder) WithController(c api.ControllerRegister) *AppBuilder {
	b.controllers = append(b.controllers, c)
	return b
}

func (b *AppBuilder) WithMiddleware(m gin.HandlerFunc) *AppBuilder {
	b.middlewares = append(b.middlewares, m)
	return b
}

// WithRoute mounts a handler on the engine root.
func (b *AppBuilder) WithRoute(method, path string, handler gin.HandlerFunc) *AppBuilder {
	b.customRoutes = append(b.customRoutes, api.Route{Method: method, Path: path, Handler: handler})
	return b
}

// WithoutLoggerInit keeps the logger the caller installed, for tests.
func (b *AppBuilder) WithoutLoggerInit() *AppBuilder {
	b.skipLogger = true
	return b
}

// storage is one persistence backend: MySQL or the in-memory store.
type storage struct {
	db         *gorm.DB
	orders     order.Repository
	products   product.Repository
	users      user.Repository
	uowFactory shared.UnitOfWorkFactory
	pinger     health.Pinger
}

func (b *AppBuilder) Build() (*App, error) {
	if !b.skipLogger {
		if err := logger.Init(&b.cfg.Log, b.cfg.App.Env); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}

	logger.Info("Starting application",
		zap.String("app", b.cfg.App.Name),
		zap.String("version", b.cfg.App.Version),
		zap.String("env", b.cfg.App.Env))

	// Storefront clients read amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	if err := validation.Register(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	codec := hashid.NewCodec(b.cfg.Orders.HashSecret)
	if codec.UsesDefaultSecret() && !b.cfg.IsDevelopment() {
		logger.Warn("orders.hash_secret is the public default; order tokens are forgeable",
			zap.String("env", b.cfg.App.Env))
	}

	store, err := b.initStorage()
	if err != nil {
		return nil, err
	}

	m := metrics.New(prometheus.NewRegistry())

	table := order.PermissiveTransitions()
	if b.cfg.Orders.StrictTransitions {
		table = order.StrictTransitions()
	}

	creation := orderapp.NewCreationService(store.orders, store.products, store.uowFactory, codec, orderapp.CreationConfig{
		Policy:    orderapp.PricePolicy(b.cfg.Orders.PricePolicy),
		Tolerance: decimal.NewFromFloat(b.cfg.Orders.PriceTolerance),
		Currency:  b.cfg.Orders.Currency,
	}).WithMetrics(m)
	transition := orderapp.NewTransitionService(store.orders, store.products, store.uowFactory, table, codec).WithMetrics(m)
	lookup := orderapp.NewLookupService(store.orders, codec)
	admin := adminapp.NewService(store.orders, store.products, store.users, codec)

	gateway, webhooks, checker := b.initPayment()
	payments := paymentapp.NewService(store.orders, lookup, transition, store.uowFactory, gateway).WithMetrics(m)
	if checker != nil {
		payments.WithChecker(checker)
	}

	verifier := auth.NewVerifier(b.cfg.Auth.JWTSecret)
	if !verifier.Enabled() {
		logger.Warn("auth.jwt_secret is empty; every caller is treated as a guest")
	}
	authn := middleware.NewAuthenticator(verifier, b.cfg.Auth.CookieName, admin)

	controllers := []api.ControllerRegister{
		health.NewController(b.cfg, store.pinger),
		apiorder.NewController(creation, lookup, authn.Optional(), authn.Required(),
			middleware.RateLimitMiddleware("track", &b.cfg.Server.TrackRateLimit)),
		apiadmin.NewController(admin, transition, authn.Admin()),
		apiproduct.NewController(catalog.NewService(store.products)),
		apipayment.NewController(payments, webhooks, authn.Optional()),
	}
	controllers = append(controllers, b.controllers...)

	middlewares := b.middlewares
	routes := b.customRoutes
	if b.cfg.Metrics.Enabled {
		middlewares = append([]gin.HandlerFunc{middleware.MetricsMiddleware(m)}, middlewares...)
		routes = append(routes, api.Route{Method: http.MethodGet, Path: b.cfg.Metrics.Path, Handler: gin.WrapH(m.Handler())})
	}

	router := api.NewRouter(b.cfg, controllers, middlewares, routes)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         ":" + b.cfg.Server.Port,
		Handler:      router.GetEngine(),
		ReadTimeout:  b.cfg.Server.ReadTimeout,
		WriteTimeout: b.cfg.Server.WriteTimeout,
	}

	return &App{
		config: b.cfg,
		router: router,
		server: server,
		db:     store.db,
	}, nil
}

func (b *AppBuilder) initStorage() (*storage, error) {
	switch b.cfg.Database.Type {
	case "mysql":
		return b.initMySQL()
	case "mock", "":
		return b.initMemory(), nil
	default:
		return nil, fmt.Errorf("unknown database.type %q", b.cfg.Database.Type)
	}
}

func (b *AppBuilder) initMemory() *storage {
	logger.Info("Using in-memory persistence with demo data")

	store := mocks.NewStore()
	mocks.SeedDemo(store)

	bus := shared.NewEventBus()
	if err := bus.Subscribe("*", mocks.NewEventLogger()); err != nil {
		logger.Warn("event logger not subscribed", zap.Error(err))
	}

	return &storage{
		orders:     mocks.NewOrderRepository(store),
		products:   mocks.NewProductRepository(store),
		users:      mocks.NewUserRepository(store),
		uowFactory: mocks.NewUnitOfWorkFactory(store, bus),
	}
}

func (b *AppBuilder) initMySQL() (*storage, error) {
	logger.Info("Using MySQL/GORM persistence layer")

	db, err := mysql.ConfigFrom(b.cfg.Database).Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	if err := mysql.Ping(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}
	if err := mysql.Migrate(ctx, db, b.cfg.Database.Migration); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	return &storage{
		db:         db,
		orders:     mysql.NewOrderRepository(db),
		products:   mysql.NewProductRepository(db),
		users:      mysql.NewUserRepository(db),
		uowFactory: mysql.NewUnitOfWorkFactory(db, retry.FromAppConfig(b.cfg)),
		pinger:     sqlDB,
	}, nil
}

// initPayment picks the configured provider. Every return value may be nil.
func (b *AppBuilder) initPayment() (paymentapp.Gateway, apipayment.WebhookVerifier, paymentapp.Checker) {
	p := b.cfg.Payment
	switch p.Provider {
	case "qpay":
		client := qpay.NewClient(qpay.Config{
			BaseURL:     p.QPay.BaseURL,
			Username:    p.QPay.Username,
			Password:    p.QPay.Password,
			InvoiceCode: p.QPay.InvoiceCode,
			CallbackURL: p.QPay.CallbackURL,
			Timeout:     p.QPay.Timeout,
		})
		if p.QPay.VerifyCallback {
			return client, nil, client
		}
		return client, nil, nil
	case "stripe":
		gw := stripe.NewGateway(p.Stripe.SecretKey, p.Stripe.WebhookSecret)
		return gw, gw, nil
	default:
		logger.Warn("No payment provider configured", zap.String("provider", p.Provider))
		return nil, nil, nil
	}
}
