package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/betcleverde/betclever-landing-hub/internal/config"
)

// ConnectMongo dials the portal database and verifies it with a ping before
// any repository builds indexes on it.
func ConnectMongo(cfg config.MongoConfig, log *zap.SugaredLogger) (*mongo.Database, *mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		log.Errorw("mongo connect", "err", err)
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Errorw("mongo ping", "err", err)
		return nil, nil, err
	}

	log.Infow("mongo connected", "db", cfg.DB)
	return client.Database(cfg.DB), client, nil
}
