package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "pos:cart:"
	lockPrefix = "pos:checkout:"
	defaultTTL = 24 * time.Hour
)

// ErrLockLost is returned by Unlock when the lock expired and is now held
// by someone else, or by nobody.
var ErrLockLost = errors.New("checkout lock expired before release")

// Deletes the lock only while it still carries the caller's token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Store persists carts between requests.
type Store interface {
	Load(ctx context.Context, terminalID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, terminalID string) error
	// Lock takes the per-terminal checkout lock; false means someone holds it.
	// The returned token must be handed back to Unlock.
	Lock(ctx context.Context, terminalID string, ttl time.Duration) (string, bool, error)
	Unlock(ctx context.Context, terminalID, token string) error
}

type redisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore keeps carts as JSON blobs that expire after a day of inactivity.
func NewRedisStore(rdb *redis.Client) Store {
	return &redisStore{rdb: rdb, ttl: defaultTTL}
}

func (s *redisStore) Load(ctx context.Context, terminalID string) (*Cart, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+terminalID).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(terminalID), nil
	}
	if err != nil {
		return nil, err
	}
	c := &Cart{}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, err
	}
	if c.Lines == nil {
		c.Lines = []Line{}
	}
	return c, nil
}

func (s *redisStore) Save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = time.Now()
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, keyPrefix+c.TerminalID, b, s.ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, terminalID string) error {
	return s.rdb.Del(ctx, keyPrefix+terminalID).Err()
}

func (s *redisStore) Lock(ctx context.Context, terminalID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := s.rdb.SetNX(ctx, lockPrefix+terminalID, token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (s *redisStore) Unlock(ctx context.Context, terminalID, token string) error {
	n, err := unlockScript.Run(ctx, s.rdb, []string{lockPrefix + terminalID}, token).Int64()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLockLost
	}
	return nil
}
