package blob

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Each blob lives in one hash so the compare-and-swap can be done atomically
// server-side. The script rejects the write with etagMismatchReply when the
// caller's precondition no longer holds.
const etagMismatchReply = "ETAG_MISMATCH"

var casScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'etag')
if ARGV[1] ~= '' then
  if not current or current ~= ARGV[1] then
    return redis.error_reply('` + etagMismatchReply + `')
  end
end
redis.call('HSET', KEYS[1], 'data', ARGV[2], 'etag', ARGV[3], 'content_type', ARGV[4])
return ARGV[3]
`)

// RedisStore implements Store on a Redis hash per blob.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisStore creates a RedisStore scoped to the given namespace.
func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{
		client:    client,
		namespace: namespace,
	}
}

func (s *RedisStore) blobKey(key string) string {
	return fmt.Sprintf("blob:%s:%s", s.namespace, key)
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	values, err := s.client.HMGet(ctx, s.blobKey(key), "data", "etag").Result()
	if err != nil {
		return nil, "", fmt.Errorf("redis get %q: %w", key, err)
	}

	data, ok := values[0].(string)
	if !ok {
		return nil, "", ErrNotFound
	}

	etag, _ := values[1].(string)
	return []byte(data), etag, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, data []byte, opts SetOptions) (string, error) {
	etag := uuid.NewString()

	err := casScript.Run(ctx, s.client,
		[]string{s.blobKey(key)},
		opts.IfMatch, string(data), etag, opts.ContentType,
	).Err()
	if err != nil {
		if strings.Contains(err.Error(), etagMismatchReply) {
			return "", ErrPreconditionFailed
		}
		return "", fmt.Errorf("redis set %q: %w", key, err)
	}

	return etag, nil
}

func (s *RedisStore) Metadata(ctx context.Context, key string) (Metadata, error) {
	values, err := s.client.HMGet(ctx, s.blobKey(key), "etag", "content_type").Result()
	if err != nil {
		return Metadata{}, fmt.Errorf("redis metadata %q: %w", key, err)
	}

	etag, ok := values[0].(string)
	if !ok {
		return Metadata{}, ErrNotFound
	}

	contentType, _ := values[1].(string)
	return Metadata{ETag: etag, ContentType: contentType}, nil
}

var _ Store = (*RedisStore)(nil)
