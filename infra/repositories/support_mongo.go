package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/giovaniif/motorent/domain/support"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const supportCollection = "support_messages"

type SupportRepositoryMongo struct {
	collection *mongo.Collection
}

func NewSupportRepositoryMongo(db *mongo.Database) *SupportRepositoryMongo {
	return &SupportRepositoryMongo{collection: db.Collection(supportCollection)}
}

func (r *SupportRepositoryMongo) Create(ctx context.Context, m *support.Message) error {
	if _, err := r.collection.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("insert support message %s: %w", m.Id, err)
	}
	return nil
}

func (r *SupportRepositoryMongo) Get(ctx context.Context, messageId string) (*support.Message, error) {
	var m support.Message
	err := r.collection.FindOne(ctx, bson.M{"_id": messageId}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", support.ErrNotFound, messageId)
	}
	if err != nil {
		return nil, fmt.Errorf("get support message %s: %w", messageId, err)
	}
	return &m, nil
}

func (r *SupportRepositoryMongo) List(ctx context.Context) ([]support.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list support messages: %w", err)
	}
	out := make([]support.Message, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode support messages: %w", err)
	}
	return out, nil
}

func (r *SupportRepositoryMongo) Update(ctx context.Context, m *support.Message) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": m.Id}, m)
	if err != nil {
		return fmt.Errorf("update support message %s: %w", m.Id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", support.ErrNotFound, m.Id)
	}
	return nil
}
