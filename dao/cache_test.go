package dao

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/dilshat/contacts-admin/model"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	items  map[string][]byte
	getErr error
	sets   int
	incrs  int
}

func newMapCache() *mapCache {
	return &mapCache{items: map[string][]byte{}}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	value, ok := c.items[key]
	return value, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte) error {
	c.sets++
	c.items[key] = value
	return nil
}

func (c *mapCache) Incr(_ context.Context, key string) (int64, error) {
	c.incrs++
	value, _ := strconv.ParseInt(string(c.items[key]), 10, 64)
	value++
	c.items[key] = []byte(strconv.FormatInt(value, 10))
	return value, nil
}

type countingDao struct {
	ContactDao
	getAllCalls int
}

func (d *countingDao) GetAll(ctx context.Context) ([]model.Contact, error) {
	d.getAllCalls++
	return d.ContactDao.GetAll(ctx)
}

func TestCachedContactDao_GetAllReadsThrough(t *testing.T) {
	store, cleanup := stormFactory(t)
	defer cleanup()
	counting := &countingDao{ContactDao: store}
	cache := newMapCache()
	contactDao := NewCachedContactDao(counting, cache)
	ctx := context.Background()
	_, err := store.CreateMany(ctx, []model.Contact{{Phone: PHONE1, Sector: model.DefaultSector}})
	require.NoError(t, err)

	first, err := contactDao.GetAll(ctx)
	require.NoError(t, err)
	second, err := contactDao.GetAll(ctx)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, counting.getAllCalls)
	require.Equal(t, 1, cache.sets)
}

func TestCachedContactDao_ChangesInvalidate(t *testing.T) {
	store, cleanup := stormFactory(t)
	defer cleanup()
	cache := newMapCache()
	contactDao := NewCachedContactDao(store, cache)
	ctx := context.Background()

	_, err := contactDao.GetAll(ctx)
	require.NoError(t, err)

	created, err := contactDao.CreateMany(ctx, []model.Contact{{Phone: PHONE1, Sector: model.DefaultSector}})
	require.NoError(t, err)
	require.Equal(t, 1, cache.incrs)

	all, err := contactDao.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = contactDao.Delete(ctx, created[0].Id)
	require.NoError(t, err)
	require.Equal(t, 2, cache.incrs)

	all, err = contactDao.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestCachedContactDao_DuplicateOnlyBatchKeepsCache(t *testing.T) {
	store, cleanup := stormFactory(t)
	defer cleanup()
	cache := newMapCache()
	contactDao := NewCachedContactDao(store, cache)
	ctx := context.Background()
	_, err := contactDao.CreateMany(ctx, []model.Contact{{Phone: PHONE1, Sector: model.DefaultSector}})
	require.NoError(t, err)
	incrs := cache.incrs

	created, err := contactDao.CreateMany(ctx, []model.Contact{{Phone: PHONE1, Sector: model.DefaultSector}})

	require.NoError(t, err)
	require.Empty(t, created)
	require.Equal(t, incrs, cache.incrs)
}

func TestCachedContactDao_CacheFailureFallsThrough(t *testing.T) {
	store, cleanup := stormFactory(t)
	defer cleanup()
	cache := newMapCache()
	cache.getErr = errors.New("connection refused")
	contactDao := NewCachedContactDao(store, cache)
	ctx := context.Background()
	_, err := store.CreateMany(ctx, []model.Contact{{Phone: PHONE2, Sector: model.DefaultSector}})
	require.NoError(t, err)

	all, err := contactDao.GetAll(ctx)

	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestCachedContactDao_CorruptEntryFallsThrough(t *testing.T) {
	store, cleanup := stormFactory(t)
	defer cleanup()
	cache := newMapCache()
	cache.items[contactsListKey(0)] = []byte("{not json")
	contactDao := NewCachedContactDao(store, cache)

	all, err := contactDao.GetAll(context.Background())

	require.NoError(t, err)
	require.Empty(t, all)
	require.Equal(t, "[]", string(cache.items[contactsListKey(0)]))
}

// interleavingDao runs afterGetAll once, between reading the store and returning.
type interleavingDao struct {
	ContactDao
	afterGetAll func()
}

func (d *interleavingDao) GetAll(ctx context.Context) ([]model.Contact, error) {
	contacts, err := d.ContactDao.GetAll(ctx)
	if hook := d.afterGetAll; hook != nil {
		d.afterGetAll = nil
		hook()
	}
	return contacts, err
}

func TestCachedContactDao_ChangeDuringReadIsNotCached(t *testing.T) {
	store, cleanup := stormFactory(t)
	defer cleanup()
	ctx := context.Background()
	created, err := store.CreateMany(ctx, []model.Contact{{Phone: PHONE1, Sector: "X"}})
	require.NoError(t, err)

	interleaving := &interleavingDao{ContactDao: store}
	cache := newMapCache()
	contactDao := NewCachedContactDao(interleaving, cache)
	interleaving.afterGetAll = func() {
		_, err := contactDao.Delete(ctx, created[0].Id)
		require.NoError(t, err)
	}

	stale, err := contactDao.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, stale, 1)

	all, err := contactDao.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestCachedContactDao_CreateDuringReadIsNotCached(t *testing.T) {
	store, cleanup := stormFactory(t)
	defer cleanup()
	ctx := context.Background()

	interleaving := &interleavingDao{ContactDao: store}
	contactDao := NewCachedContactDao(interleaving, newMapCache())
	interleaving.afterGetAll = func() {
		_, err := contactDao.CreateMany(ctx, []model.Contact{{Phone: PHONE2, Sector: "X"}})
		require.NoError(t, err)
	}

	stale, err := contactDao.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, stale)

	all, err := contactDao.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestCachedContactDao_BadGenerationFallsThrough(t *testing.T) {
	store, cleanup := stormFactory(t)
	defer cleanup()
	cache := newMapCache()
	cache.items[contactsGenerationKey] = []byte("garbage")
	counting := &countingDao{ContactDao: store}
	contactDao := NewCachedContactDao(counting, cache)
	ctx := context.Background()

	_, err := contactDao.GetAll(ctx)
	require.NoError(t, err)
	_, err = contactDao.GetAll(ctx)
	require.NoError(t, err)

	require.Equal(t, 2, counting.getAllCalls)
	require.Equal(t, 0, cache.sets)
}

func TestOpenRedisBadUrl(t *testing.T) {
	_, err := OpenRedis("not-a-redis-url")

	require.Error(t, err)
}
