package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/student-enrollment/enrollment-api/internal/ports/out/idempotency"
)

const (
	keyPrefix = "idem:"

	// DefaultTTL bounds how long a replayable response is kept.
	DefaultTTL = 24 * time.Hour

	fieldStatus      = "status"
	fieldContentType = "content_type"
	fieldBody        = "body"
	fieldCreatedAt   = "created_at"
)

// Store is a Redis implementation of idempotency.Store. Each record is a hash that expires after ttl.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	if s.client == nil {
		return idempotency.Record{}, false, errors.New("nil redis client")
	}
	fields, err := s.client.HGetAll(ctx, redisKey(fp)).Result()
	if err != nil {
		return idempotency.Record{}, false, err
	}
	if len(fields) == 0 {
		return idempotency.Record{}, false, nil
	}

	status, err := strconv.Atoi(fields[fieldStatus])
	if err != nil {
		return idempotency.Record{}, false, fmt.Errorf("decode idempotency status: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	if err != nil {
		return idempotency.Record{}, false, fmt.Errorf("decode idempotency created_at: %w", err)
	}
	return idempotency.Record{
		StatusCode:  status,
		ContentType: fields[fieldContentType],
		Body:        []byte(fields[fieldBody]),
		CreatedAt:   createdAt.UTC(),
	}, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	if s.client == nil {
		return errors.New("nil redis client")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	key := redisKey(fp)

	// HSET and EXPIRE run in one MULTI so a record never lives without a TTL.
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldStatus, strconv.Itoa(rec.StatusCode),
			fieldContentType, rec.ContentType,
			fieldBody, rec.Body,
			fieldCreatedAt, createdAt.UTC().Format(time.RFC3339Nano),
		)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}

// redisKey places the caller-provided key last; the other components never contain ':'.
func redisKey(fp idempotency.Fingerprint) string {
	return keyPrefix + fp.Method + ":" + fp.Route + ":" + fp.BodyHash + ":" + string(fp.Key)
}
