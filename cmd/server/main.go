package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/betcleverde/betclever-landing-hub/internal/api"
	"github.com/betcleverde/betclever-landing-hub/internal/application"
	"github.com/betcleverde/betclever-landing-hub/internal/auth"
	"github.com/betcleverde/betclever-landing-hub/internal/config"
	"github.com/betcleverde/betclever-landing-hub/internal/database"
	"github.com/betcleverde/betclever-landing-hub/internal/events"
	"github.com/betcleverde/betclever-landing-hub/internal/logger"
	"github.com/betcleverde/betclever-landing-hub/internal/profile"
	"github.com/betcleverde/betclever-landing-hub/internal/realtime"
	"github.com/betcleverde/betclever-landing-hub/internal/storage"
	"github.com/betcleverde/betclever-landing-hub/internal/support"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zl, err := logger.New(logger.Config{Development: cfg.App.Env != "production"})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer zl.Sync()

	db, mc, err := database.ConnectMongo(cfg.Mongo, zl)
	if err != nil {
		zl.Fatalf("mongo init: %v", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()

	rdb, err := database.ConnectRedis(cfg.Redis, zl)
	if err != nil {
		zl.Fatalf("redis init: %v", err)
	}
	defer rdb.Close()

	s3store, err := storage.NewS3Store(context.Background(), cfg.S3.Region, cfg.S3.Bucket)
	if err != nil {
		zl.Fatalf("s3 init: %v", err)
	}

	producer := events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicMessageCreated)
	defer producer.Close()
	consumer := events.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicMessageCreated, cfg.Kafka.GroupID, zl)
	defer consumer.Close()

	jwtm := auth.NewJWTManager(cfg.JWT.Secret, cfg.AccessTTL, cfg.RefreshTTL)
	profiles := profile.NewMongoRepository(db)
	users := auth.NewMongoUserRepo(db)
	authSvc := auth.NewService(users, profiles, rdb, jwtm, cfg.RefreshTTL, zl)

	appRepo := application.NewMongoRepository(db)
	appSvc := application.NewService(appRepo, zl)

	msgRepo := support.NewMongoRepository(db)
	limiter := support.NewSendLimiter(rdb, cfg.Support.SendRateLimitPerHour)
	adminSessions := support.NewAdminSessions(msgRepo, producer, zl)
	inboxes := support.NewRegistry(msgRepo, producer, limiter, zl)

	uploadSvc := storage.NewService(s3store, zl)
	hub := realtime.NewHub()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go consumer.Start(ctx, adminSessions.Dispatch, inboxes.Dispatch)

	srv := api.NewServer(api.Deps{
		JWT:          jwtm,
		AuthSvc:      authSvc,
		Auth:         api.NewAuthHandlers(authSvc),
		Applications: api.NewApplicationHandlers(appSvc, authSvc),
		Support:      api.NewSupportHandlers(adminSessions, inboxes),
		Uploads:      api.NewUploadHandlers(uploadSvc),
		WS:           api.NewWSHandlers(jwtm, authSvc, hub, adminSessions, inboxes),
	})

	go func() {
		if err := srv.Listen(cfg.App.PortString()); err != nil {
			zl.Fatalf("server listen: %v", err)
		}
	}()
	zl.Infof("portal server started on %s", cfg.App.PortString())

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hub.CloseAll()
	_ = srv.ShutdownWithContext(shutdownCtx)
	zl.Info("portal server stopped")
}
