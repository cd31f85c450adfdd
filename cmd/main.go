package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/localbazaar/market-service/internal/app"
	"github.com/localbazaar/market-service/internal/config"
	"github.com/localbazaar/market-service/internal/events"
	"github.com/localbazaar/market-service/internal/handler"
	"github.com/localbazaar/market-service/internal/postgres"
	"github.com/localbazaar/market-service/internal/repo"
	"github.com/localbazaar/market-service/internal/service"
	"github.com/localbazaar/market-service/pkg/cache"
	"github.com/localbazaar/market-service/pkg/trm"

	_ "github.com/localbazaar/market-service/docs"

	"github.com/joho/godotenv"
)

// @title           Local Bazaar Market Service API
// @version         1.0
// @description     Marketplace backend for neighbourhood shops: catalog, orders, quotes, reviews
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	conf := config.New()
	logger := newLogger(conf.Env)
	panicIfErr("invalid config", conf.Validate())

	db, err := postgres.New(conf.Postgres)
	panicIfErr("failed to connect to db", err)
	defer db.Close()
	logger.Info("postgres connected")

	usersRepo := repo.NewUsersRepo(db)
	shopsRepo := repo.NewShopsRepo(db)
	productsRepo := repo.NewProductsRepo(db)
	ordersRepo := repo.NewOrdersRepo(db)
	reviewsRepo := repo.NewReviewsRepo(db)
	notificationsRepo := repo.NewNotificationsRepo(db)
	favoritesRepo := repo.NewFavoritesRepo(db)

	txManager := trm.NewManager(db)
	shopCache := cache.NewLRUCache(conf.Cache.Capacity, conf.Cache.TTL)
	publisher := events.NewPublisher(logger, conf.Kafka)
	defer publisher.Close()

	identityService := service.NewIdentityService(logger, usersRepo)
	notificationService := service.NewNotificationService(logger, notificationsRepo, publisher)
	catalogService := service.NewCatalogService(logger, shopsRepo, productsRepo, shopCache, notificationService)
	orderService := service.NewOrderService(logger, txManager, ordersRepo, shopsRepo, productsRepo, notificationService, publisher)
	reviewService := service.NewReviewService(logger, txManager, reviewsRepo, ordersRepo)
	favoriteService := service.NewFavoriteService(logger, favoritesRepo, shopsRepo)

	handler.RegisterMetrics()

	catalogHandler := handler.NewCatalogHandler(logger, catalogService)
	orderHandler := handler.NewOrderHandler(logger, orderService)
	communityHandler := handler.NewCommunityHandler(logger, reviewService, notificationService, favoriteService)
	adminHandler := handler.NewAdminHandler(logger, catalogService, orderService)
	kafkaHandler := handler.NewKafkaHandler(logger, conf.Kafka, identityService, orderService)

	app := app.New(logger, conf, identityService)

	app.SetHTTPHandlers(catalogHandler, orderHandler, communityHandler, adminHandler)
	app.SetConsumers(kafkaHandler)
	app.SetStarters(shopCache)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	panicIfErr("failed to start app", app.Start(ctx))
	<-ctx.Done()
	panicIfErr("failed to stop app", app.Stop())
}

func init() {
	godotenv.Load()
}

func newLogger(env string) *slog.Logger {
	switch env {
	case "production":
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func panicIfErr(prefix string, err error) {
	if err != nil {
		panic(prefix + ": " + err.Error())
	}
}
