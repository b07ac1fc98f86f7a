package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pdf-rag-chatbot/internal/logger"
	"pdf-rag-chatbot/utils"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "pdfchat:session:"

// RedisSessionStore keeps snapshots in Redis so several replicas can share
// sessions. Entries expire through key TTL, refreshed on every read. Payloads
// are compressed with the configured algorithm.
type RedisSessionStore struct {
	rdb         *redis.Client
	ttl         time.Duration
	compression utils.CompressionAlgorithm
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration, compression utils.CompressionAlgorithm) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl, compression: compression}
}

// sessionRecord is the stored form of a Session. The index is rebuilt from
// Vectors on load.
type sessionRecord struct {
	ID        string      `json:"id"`
	Filename  string      `json:"filename"`
	Chunks    []string    `json:"chunks"`
	Vectors   [][]float32 `json:"vectors"`
	FileHash  string      `json:"file_hash"`
	CreatedAt time.Time   `json:"created_at"`
}

func encodeSession(s *Session, compression utils.CompressionAlgorithm) ([]byte, error) {
	rec := sessionRecord{
		ID:        s.ID,
		Filename:  s.Filename,
		Chunks:    s.Chunks,
		FileHash:  s.FileHash,
		CreatedAt: s.CreatedAt,
	}
	if s.Index != nil {
		rec.Vectors = s.Index.Vectors()
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return utils.Pack(data, compression)
}

func decodeSession(packed []byte) (*Session, error) {
	data, err := utils.Unpack(packed)
	if err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	s := &Session{
		ID:        rec.ID,
		Filename:  rec.Filename,
		Chunks:    rec.Chunks,
		FileHash:  rec.FileHash,
		CreatedAt: rec.CreatedAt,
	}
	if len(rec.Vectors) > 0 {
		index, err := NewVectorIndex(rec.Vectors)
		if err != nil {
			return nil, fmt.Errorf("rebuild index: %w", err)
		}
		if index.Len() != len(rec.Chunks) {
			return nil, fmt.Errorf("rebuild index: %d vectors for %d chunks", index.Len(), len(rec.Chunks))
		}
		s.Index = index
	}
	return s, nil
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	key := sessionKeyPrefix + id
	data, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	if r.ttl > 0 {
		if err := r.rdb.Expire(ctx, key, r.ttl).Err(); err != nil {
			logger.Debug("failed to refresh session TTL", "session_id", id, "error", err)
		}
	}
	return decodeSession(data)
}

func (r *RedisSessionStore) Save(ctx context.Context, s *Session) error {
	data, err := encodeSession(s, r.compression)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, sessionKeyPrefix+s.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, id string) error {
	n, err := r.rdb.Del(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
