package session

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
	"github.com/slimloans/hanami/errors"
)

// RedisStore keeps an id in the cookie and the values in redis
type RedisStore struct {
	client  backend.UniversalClient
	prefix  string
	ttl     time.Duration
	options Options
}

type RedisOption func(*RedisStore)

// WithTTL sets the expiration for sessions.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a store from an existing client, the ttl defaults to the cookie expiry
func NewRedisStore(client backend.UniversalClient, options Options, opts ...RedisOption) *RedisStore {
	store := &RedisStore{
		client:  client,
		prefix:  "hanami:session:",
		ttl:     options.Expiry,
		options: options,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (rs *RedisStore) key(id string) string {
	return rs.prefix + id
}

func (rs *RedisStore) Load(ctx context.Context, r *http.Request) (*Session, error) {
	c, err := r.Cookie(rs.options.Key)
	if err != nil || c.Value == "" {
		return New(uuid.New().String()), nil
	}

	data, err := rs.client.Get(ctx, rs.key(c.Value)).Bytes()
	if err == backend.Nil {
		return New(uuid.New().String()), nil
	}
	if err != nil {
		return nil, errors.Wrap(ErrorStore, err)
	}

	values := map[string]interface{}{}
	if err := json.Unmarshal(data, &values); err != nil {
		return New(uuid.New().String()), nil
	}

	return newLoaded(c.Value, values), nil
}

func (rs *RedisStore) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	s.sweep()

	if !s.IsDirty() {
		return nil
	}

	if s.destroyed {
		if s.id != "" {
			if err := rs.client.Del(ctx, rs.key(s.id)).Err(); err != nil {
				return errors.Wrap(ErrorStore, err)
			}
		}
		http.SetCookie(w, rs.options.expired())
		return nil
	}

	if s.renewed || s.id == "" {
		// the old id must not stay valid
		if s.id != "" {
			if err := rs.client.Del(ctx, rs.key(s.id)).Err(); err != nil {
				return errors.Wrap(ErrorStore, err)
			}
		}
		s.id = uuid.New().String()
	}

	data, err := json.Marshal(s.snapshot())
	if err != nil {
		return errors.Wrap(ErrorStore, err)
	}

	if err := rs.client.Set(ctx, rs.key(s.id), data, rs.ttl).Err(); err != nil {
		return errors.Wrap(ErrorStore, err)
	}

	http.SetCookie(w, rs.options.cookie(s.id))
	return nil
}

var _ Store = (*RedisStore)(nil)
