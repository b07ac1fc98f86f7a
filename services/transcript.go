package services

import (
	"context"
	"fmt"

	"pdf-rag-chatbot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TranscriptStore records chat turns per session.
type TranscriptStore interface {
	Append(ctx context.Context, msgs ...models.Message) error
	List(ctx context.Context, sessionID string, limit int64) ([]models.Message, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// NopTranscriptStore discards transcripts. Used when MongoDB is not configured.
type NopTranscriptStore struct{}

func (NopTranscriptStore) Append(ctx context.Context, msgs ...models.Message) error { return nil }

func (NopTranscriptStore) List(ctx context.Context, sessionID string, limit int64) ([]models.Message, error) {
	return []models.Message{}, nil
}

func (NopTranscriptStore) DeleteSession(ctx context.Context, sessionID string) error { return nil }

// MongoTranscriptStore persists transcripts in the messages collection.
type MongoTranscriptStore struct {
	col *mongo.Collection
}

func NewMongoTranscriptStore(col *mongo.Collection) *MongoTranscriptStore {
	return &MongoTranscriptStore{col: col}
}

func (s *MongoTranscriptStore) Append(ctx context.Context, msgs ...models.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	docs := make([]interface{}, len(msgs))
	for i := range msgs {
		docs[i] = msgs[i]
	}
	if _, err := s.col.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert transcript: %w", err)
	}
	return nil
}

// List returns up to limit messages for a session, oldest first.
func (s *MongoTranscriptStore) List(ctx context.Context, sessionID string, limit int64) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.col.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find transcript: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	return messages, nil
}

func (s *MongoTranscriptStore) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := s.col.DeleteMany(ctx, bson.M{"session_id": sessionID}); err != nil {
		return fmt.Errorf("delete transcript: %w", err)
	}
	return nil
}
