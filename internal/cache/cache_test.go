package cache

import (
	"context"
	"testing"
	"time"

	"boltform_back_end/internal/models"
	"boltform_back_end/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCounterIncrement(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	c := NewCounter(rdb)

	for want := int64(1); want <= 3; want++ {
		n, err := c.Increment(ctx, "rl:checkout:1.2.3.4", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	assert.Equal(t, time.Minute, mr.TTL("rl:checkout:1.2.3.4"))

	mr.FastForward(2 * time.Minute)
	n, err := c.Increment(ctx, "rl:checkout:1.2.3.4", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCounterRedisDown(t *testing.T) {
	mr, rdb := newTestRedis(t)
	mr.Close()

	_, err := NewCounter(rdb).Increment(context.Background(), "k", time.Minute)
	assert.Error(t, err)
}

func TestReplayGuardConsume(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()
	g := NewReplayGuard(rdb)

	ok, err := g.Consume(ctx, "jti-1", 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Consume(ctx, "jti-1", 30*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.Consume(ctx, "jti-2", 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(31 * time.Minute)
	assert.False(t, mr.Exists("consumed:jti-1"))
}

type countingUsers struct {
	store.Users
	lookups int
}

func (u *countingUsers) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u.lookups++
	return u.Users.FindUserByEmail(ctx, email)
}

func TestUserCacheReadThrough(t *testing.T) {
	mr, rdb := newTestRedis(t)
	ctx := context.Background()

	mem := store.NewMemory()
	_, err := mem.UpsertUser(ctx, models.User{Email: "ada@example.com", Name: "Ada"})
	require.NoError(t, err)

	backing := &countingUsers{Users: mem}
	c := NewUserCache(backing, rdb)

	first, err := c.FindUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	second, err := c.FindUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)

	assert.Equal(t, 1, backing.lookups)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, mr.Exists("user:ada@example.com"))

	_, err = c.UpsertUser(ctx, models.User{Email: "ada@example.com", Name: "Ada L."})
	require.NoError(t, err)
	assert.False(t, mr.Exists("user:ada@example.com"))

	again, err := c.FindUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", again.Name)
	assert.Equal(t, 2, backing.lookups)

	_, err = c.FindUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestCartEventsPublishSubscribe(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()
	events := NewCartEvents(rdb)

	sub := events.Subscribe(ctx, "u1")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, events.Publish(ctx, "u1"))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "cart:u1", msg.Channel)
		assert.Equal(t, CartUpdated, msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("no cart event received")
	}
}
