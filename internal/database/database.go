package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"boltform_back_end/internal/config"
	"boltform_back_end/internal/store"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MemoryURI selects the in-process store instead of MongoDB.
const MemoryURI = "memory://"

// Connections groups every backend the server talks to.
type Connections struct {
	Store store.Store
	Mongo *mongo.Client // nil with MemoryURI
	Redis *redis.Client
}

// ConnectDatabases opens MongoDB and Redis and verifies both answer.
func ConnectDatabases(ctx context.Context, cfg *config.Config) (*Connections, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	conns := &Connections{}

	// 1. MongoDB
	if strings.HasPrefix(cfg.MongoURI, MemoryURI) {
		log.Println("⚠️ MONGO_URI=memory:// — data lives in process memory only")
		conns.Store = store.NewMemory()
	} else {
		client, err := connectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		conns.Mongo = client

		mongoStore := store.NewMongo(client.Database(cfg.MongoDB))
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		conns.Store = mongoStore
	}

	// 2. Redis
	rdb, err := connectRedis(ctx, cfg)
	if err != nil {
		conns.Close(context.Background())
		return nil, err
	}
	conns.Redis = rdb

	log.Println("✅ All databases connected")
	return conns, nil
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(20)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	log.Println("✅ Connected to MongoDB")
	return client, nil
}

func connectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost,
		Password:     cfg.RedisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Println("✅ Connected to Redis")
	return rdb, nil
}

// Close releases every open connection.
func (c *Connections) Close(ctx context.Context) {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️ Redis close: %v", err)
		}
	}
	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(ctx); err != nil {
			log.Printf("⚠️ Mongo disconnect: %v", err)
		}
	}
	log.Println("🔌 Database connections closed")
}
