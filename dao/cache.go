package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dilshat/contacts-admin/log"
	"github.com/dilshat/contacts-admin/model"
	"github.com/redis/go-redis/v9"
)

// contactsGenerationKey holds a counter bumped on every change. Cached lists are
// stored under the generation they were read in, so a list read before a change
// is never served after it.
const contactsGenerationKey = "contacts:gen"

func contactsListKey(generation int64) string {
	return fmt.Sprintf("contacts:all:%d", generation)
}

type Cache interface {
	//Get returns the cached value and whether it was present
	Get(ctx context.Context, key string) ([]byte, bool, error)
	//Set stores value with the cache ttl
	Set(ctx context.Context, key string, value []byte) error
	//Incr atomically increments the counter at key, without expiry
	Incr(ctx context.Context, key string) (int64, error)
}

// OpenRedis parses redisURL and checks the server answers.
func OpenRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, key, value, c.ttl).Err()
}

func (c *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, key).Result()
}

// NewCachedContactDao serves GetAll from cache and moves to a new cache generation on every change.
// Cache failures are logged and never fail the call.
func NewCachedContactDao(next ContactDao, cache Cache) ContactDao {
	return &cachedContactDao{next: next, cache: cache}
}

type cachedContactDao struct {
	next  ContactDao
	cache Cache
}

func (d cachedContactDao) CreateMany(ctx context.Context, contacts []model.Contact) ([]model.Contact, error) {
	created, err := d.next.CreateMany(ctx, contacts)
	if err == nil && len(created) > 0 {
		d.invalidate(ctx)
	}
	return created, err
}

func (d cachedContactDao) GetAll(ctx context.Context) ([]model.Contact, error) {
	//the generation must be read before the store
	generation, err := d.generation(ctx)
	if err != nil {
		log.WarnIfErr("Error reading contacts cache generation", err)
		return d.next.GetAll(ctx)
	}
	key := contactsListKey(generation)

	cached, ok, err := d.cache.Get(ctx, key)
	log.WarnIfErr("Error reading contacts cache", err)
	if ok {
		var contacts []model.Contact
		err = json.Unmarshal(cached, &contacts)
		if err == nil {
			return contacts, nil
		}
		log.WarnIfErr("Error decoding contacts cache", err)
	}

	contacts, err := d.next.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(contacts)
	if err == nil {
		err = d.cache.Set(ctx, key, encoded)
	}
	log.WarnIfErr("Error writing contacts cache", err)

	return contacts, nil
}

func (d cachedContactDao) generation(ctx context.Context) (int64, error) {
	value, ok, err := d.cache.Get(ctx, contactsGenerationKey)
	if err != nil || !ok {
		return 0, err
	}
	return strconv.ParseInt(string(value), 10, 64)
}

func (d cachedContactDao) Delete(ctx context.Context, id int) (model.Contact, error) {
	contact, err := d.next.Delete(ctx, id)
	if err == nil {
		d.invalidate(ctx)
	}
	return contact, err
}

func (d cachedContactDao) invalidate(ctx context.Context) {
	_, err := d.cache.Incr(ctx, contactsGenerationKey)
	log.WarnIfErr("Error invalidating contacts cache", err)
}
