package main

import (
	"context"
	"log"
	"net/http"

	"github.com/onecal/outlook-sync-backend/internal/api"
	lifecycle_service "github.com/onecal/outlook-sync-backend/internal/business/lifecycle"
	"github.com/onecal/outlook-sync-backend/internal/business/reconcile"
	sync_service "github.com/onecal/outlook-sync-backend/internal/business/sync"
	"github.com/onecal/outlook-sync-backend/internal/config"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/database/calendars"
	"github.com/onecal/outlook-sync-backend/internal/database/events"
	"github.com/onecal/outlook-sync-backend/internal/database/groups"
	"github.com/onecal/outlook-sync-backend/internal/database/msusers"
	"github.com/onecal/outlook-sync-backend/internal/database/slots"
	"github.com/onecal/outlook-sync-backend/internal/pkg/graph"
	"github.com/onecal/outlook-sync-backend/internal/pkg/jobs"
	"github.com/onecal/outlook-sync-backend/internal/pkg/jwt"
	"github.com/onecal/outlook-sync-backend/internal/redis"
	"github.com/xlab/closer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const changeChannel = "event_change_notifications"

func main() {
	ctx := context.Background()

	logger, err := initLogger()
	if err != nil {
		log.Fatalf("unable to initialize logger: %v", err)
	}

	if err := config.Validate(); err != nil {
		logger.Fatalw("invalid config", "err", err)
	}

	jwts := jwt.NewManager()

	redisPool := redis.NewRedisPool(logger)
	publisher := redis.NewPublisher(redisPool, logger)

	db, err := database.NewPGX(ctx)
	if err != nil {
		log.Fatalf("unable to initialize db: %v", err)
	}
	eventsRepository := events.NewRepository()
	slotsRepository := slots.NewRepository()
	calendarsRepository := calendars.NewRepository()
	usersRepository := msusers.NewRepository()
	groupsRepository := groups.NewRepository()

	gateway := graph.NewClient(graph.Config{
		BaseURL:      config.GraphBaseURL(),
		LoginBaseURL: config.LoginBaseURL(),
		TenantID:     config.TenantID(),
		ClientID:     config.ClientID(),
		ClientSecret: config.ClientSecret(),
	})

	lifecycleService := lifecycle_service.NewService(
		db,
		logger,
		eventsRepository,
		slotsRepository,
		calendarsRepository,
		gateway,
		publisher,
		changeChannel,
	)

	reconciler := reconcile.NewEngine(eventsRepository)
	runner := jobs.NewRunner(logger, config.SyncTimeout())
	syncService := sync_service.NewService(
		sync_service.DefaultConfig(),
		db,
		logger,
		gateway,
		reconciler,
		eventsRepository,
		usersRepository,
		calendarsRepository,
		groupsRepository,
		publisher,
		runner,
	)

	api, err := api.NewApi(
		logger,
		jwts,
		lifecycleService,
		syncService,
	)
	if err != nil {
		logger.Fatalw("error initiating api", "err", err)
	}

	errLogger, err := zap.NewStdLogAt(logger.Desugar(), zap.ErrorLevel)
	if err != nil {
		logger.Fatalw("error initiating server logger", "err", err)
	}

	server := &http.Server{
		Addr:     ":" + config.Port(),
		Handler:  api,
		ErrorLog: errLogger,
	}

	logger.Infow("Started server", "port", config.Port())
	logger.Fatalw("server error", "err", server.ListenAndServe())
}

func initLogger() (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error

	if config.Production() {
		logger, err = zap.NewProduction()
	} else {
		conf := zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err = conf.Build()
	}

	if err != nil {
		return nil, err
	}

	closer.Bind(func() {
		_ = logger.Sync()
	})

	return logger.Sugar(), nil
}
