// Package blob provides the object store used for backups and cached QR
// images. Objects live in Redis hashes under a configurable key prefix.
package blob

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrUnavailable signals an absent blob binding. Background jobs treat
	// it as a skip, never a batch failure.
	ErrUnavailable = errors.New("blob store unavailable")
	// ErrNotFound signals a missing object.
	ErrNotFound = errors.New("blob not found")
)

// Object is a stored blob with its content type metadata.
type Object struct {
	Key         string
	ContentType string
	Body        []byte
	UploadedAt  time.Time
}

// Store abstracts the blob collaborator.
type Store interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	Get(ctx context.Context, key string) (*Object, error)
}

// RedisStore stores each object as a hash: body, content_type, uploaded_at.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore builds a store over the given client. A nil client yields
// a store whose operations report ErrUnavailable.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Put writes the object, overwriting any previous value at the key.
func (s *RedisStore) Put(ctx context.Context, key, contentType string, body []byte) error {
	if s == nil || s.client == nil {
		return ErrUnavailable
	}
	return s.client.HSet(ctx, s.prefix+key, map[string]any{
		"body":         body,
		"content_type": contentType,
		"uploaded_at":  time.Now().UTC().Format(time.RFC3339),
	}).Err()
}

// Get reads an object back.
func (s *RedisStore) Get(ctx context.Context, key string) (*Object, error) {
	if s == nil || s.client == nil {
		return nil, ErrUnavailable
	}
	fields, err := s.client.HGetAll(ctx, s.prefix+key).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	obj := &Object{
		Key:         key,
		ContentType: fields["content_type"],
		Body:        []byte(fields["body"]),
	}
	if ts, err := time.Parse(time.RFC3339, fields["uploaded_at"]); err == nil {
		obj.UploadedAt = ts
	}
	return obj, nil
}
