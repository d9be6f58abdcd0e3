package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/giovaniif/motorent/domain/bike"
	"github.com/giovaniif/motorent/domain/rental"
	"github.com/giovaniif/motorent/domain/session"
	"github.com/giovaniif/motorent/domain/support"
	"github.com/giovaniif/motorent/domain/user"
	"github.com/giovaniif/motorent/infra/config"
	"github.com/giovaniif/motorent/infra/gateways"
	"github.com/giovaniif/motorent/infra/repositories"
	"github.com/giovaniif/motorent/protocols"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Backends are the storage and integration adapters picked from config.
// Each one falls back to an in-memory version when its address is unset.
type Backends struct {
	Bikes     bike.Repository
	Rentals   rental.Repository
	Users     user.Repository
	Messages  support.Repository
	Sessions  session.Store
	Checkout  protocols.CheckoutGateway
	Events    protocols.EventPublisher
	Assistant protocols.Assistant

	closers []func(context.Context) error
}

func MemoryBackends(logger *slog.Logger) *Backends {
	bikes := repositories.NewBikeRepositoryMemory()
	return &Backends{
		Bikes:     bikes,
		Rentals:   repositories.NewRentalRepositoryMemory(bikes),
		Users:     repositories.NewUserRepositoryMemory(),
		Messages:  repositories.NewSupportRepositoryMemory(),
		Sessions:  gateways.NewSessionStoreMemory(),
		Checkout:  gateways.NewCheckoutGatewayMemory(),
		Events:    gateways.NewEventPublisherLog(logger),
		Assistant: gateways.NewAssistantStatic(bikes),
	}
}

func OpenBackends(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backends, error) {
	b := MemoryBackends(logger)

	if cfg.DatabaseURL != "" {
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		b.closers = append(b.closers, func(context.Context) error { return db.Close() })
		if err := repositories.InitializeSchema(ctx, db); err != nil {
			b.Close(ctx)
			return nil, err
		}
		b.Bikes = repositories.NewBikeRepositoryPostgres(db)
		b.Rentals = repositories.NewRentalRepositoryPostgres(db)
		b.Users = repositories.NewUserRepositoryPostgres(db)
		logger.Info("using postgres for catalog, rentals and users")
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			b.Close(ctx)
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		b.closers = append(b.closers, func(context.Context) error { return client.Close() })
		b.Sessions = gateways.NewSessionStoreRedis(client)
		b.Checkout = gateways.NewCheckoutGatewayRedis(client)
		logger.Info("using redis for sessions and idempotency keys", "addr", cfg.RedisAddr)
	}

	if cfg.MongoURI != "" {
		client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			b.Close(ctx)
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		b.closers = append(b.closers, client.Disconnect)
		if err := client.Ping(ctx, nil); err != nil {
			b.Close(ctx)
			return nil, fmt.Errorf("ping mongo: %w", err)
		}
		b.Messages = repositories.NewSupportRepositoryMongo(client.Database(cfg.MongoDatabase))
		logger.Info("using mongo for support messages", "database", cfg.MongoDatabase)
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher := gateways.NewEventPublisherKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		b.closers = append(b.closers, func(context.Context) error { return publisher.Close() })
		b.Events = publisher
		logger.Info("publishing rental events to kafka", "topic", cfg.KafkaTopic)
	}

	if cfg.AssistantURL != "" {
		b.Assistant = gateways.NewAssistantHttp(&http.Client{Timeout: cfg.AssistantTimeout}, cfg.AssistantURL)
		logger.Info("using assistant flows", "url", cfg.AssistantURL)
	} else {
		b.Assistant = gateways.NewAssistantStatic(b.Bikes)
	}

	return b, nil
}

// Close releases backends in reverse order of opening.
func (b *Backends) Close(ctx context.Context) error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}
