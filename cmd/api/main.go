package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rmagbanua/kaon-backend/api/routes"
	"github.com/rmagbanua/kaon-backend/internal/auth"
	"github.com/rmagbanua/kaon-backend/internal/deliveryfee"
	"github.com/rmagbanua/kaon-backend/internal/discounts"
	"github.com/rmagbanua/kaon-backend/internal/dispatch"
	"github.com/rmagbanua/kaon-backend/internal/ledger"
	"github.com/rmagbanua/kaon-backend/internal/messaging"
	"github.com/rmagbanua/kaon-backend/internal/orders"
	"github.com/rmagbanua/kaon-backend/internal/restaurants"
	"github.com/rmagbanua/kaon-backend/pkg/config"
	"github.com/rmagbanua/kaon-backend/pkg/db"
	"github.com/rmagbanua/kaon-backend/pkg/logger"
	"github.com/rmagbanua/kaon-backend/pkg/maps"
	"github.com/rmagbanua/kaon-backend/pkg/metrics"
	"github.com/rmagbanua/kaon-backend/pkg/migrate"
	"github.com/rmagbanua/kaon-backend/pkg/payments"
	"github.com/rmagbanua/kaon-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	orderMetrics := metrics.NewOrderMetrics(prometheus.DefaultRegisterer)

	var estimator deliveryfee.DistanceEstimator
	if cfg.Maps.APIKey != "" {
		mapsOpts := []maps.Option{}
		if cfg.Maps.BaseURL != "" {
			mapsOpts = append(mapsOpts, maps.WithBaseURL(cfg.Maps.BaseURL))
		}
		mapsClient, err := maps.NewClient(cfg.Maps.APIKey, mapsOpts...)
		if err != nil {
			logg.Error(context.Background(), "failed to create maps client", err)
			os.Exit(1)
		}
		estimator = mapsClient
	} else {
		logg.Warn(context.Background(), "maps api key missing, delivery fees fall back to hub distance")
	}

	feeCalculator, err := deliveryfee.NewCalculator(cfg.Delivery, estimator)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery fee calculator", err)
		os.Exit(1)
	}

	discountsService, err := discounts.NewService(discounts.NewRepository(dbClient.DB()), cfg.Checkout)
	if err != nil {
		logg.Error(context.Background(), "failed to create discounts service", err)
		os.Exit(1)
	}

	restaurantsService, err := restaurants.NewService(restaurants.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create restaurants service", err)
		os.Exit(1)
	}

	dispatchRepo := dispatch.NewRepository(dbClient.DB())
	dispatchService, err := dispatch.NewService(dispatchRepo, redisClient, cfg.Dispatch, orderMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()), cfg.Delivery.DriverCommission, orderMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		discountsService,
		feeCalculator,
		restaurantsService,
		dispatchRepo,
		ledgerService,
		cfg.Checkout,
		orderMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	messagingService, err := messaging.NewService(messaging.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create messaging service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.NewRepository(dbClient.DB()), cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	var stripeClient *payments.StripeClient
	if cfg.Stripe.APIKey != "" {
		stripeClient, err = payments.NewStripeClient(cfg.Stripe)
		if err != nil {
			logg.Error(context.Background(), "failed to create stripe client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "stripe key missing, card sessions disabled")
	}

	var paymongoClient *payments.PayMongoClient
	if cfg.PayMongo.SecretKey != "" {
		paymongoClient, err = payments.NewPayMongoClient(cfg.PayMongo)
		if err != nil {
			logg.Error(context.Background(), "failed to create paymongo client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "paymongo key missing, gcash sessions disabled")
	}

	var paypalClient *payments.PayPalClient
	if cfg.PayPal.ClientID != "" {
		paypalClient, err = payments.NewPayPalClient(cfg.PayPal)
		if err != nil {
			logg.Error(context.Background(), "failed to create paypal client", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "paypal credentials missing, paypal sessions disabled")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			authService,
			ordersService,
			dispatchService,
			ledgerService,
			messagingService,
			restaurantsService,
			stripeClient,
			paymongoClient,
			paypalClient,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
