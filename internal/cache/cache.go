package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"boltform_back_end/internal/models"
	"boltform_back_end/internal/store"

	"github.com/redis/go-redis/v9"
)

const UserCacheTTL = 5 * time.Minute

// UserCache is a read-through cache in front of store.Users, keyed by email.
type UserCache struct {
	store.Users
	rdb *redis.Client
}

func NewUserCache(users store.Users, rdb *redis.Client) *UserCache {
	return &UserCache{Users: users, rdb: rdb}
}

func (c *UserCache) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	key := "user:" + email

	// 1. Redis
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var user models.User
		if json.Unmarshal(data, &user) == nil {
			return &user, nil
		}
	}

	// 2. Store
	user, err := c.Users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	// 3. Fill
	if payload, err := json.Marshal(user); err == nil {
		if err := c.rdb.Set(ctx, key, payload, UserCacheTTL).Err(); err != nil {
			log.Printf("⚠️ user cache set %s: %v", email, err)
		}
	}
	return user, nil
}

// UpsertUser writes through and drops the cached copy.
func (c *UserCache) UpsertUser(ctx context.Context, user models.User) (*models.User, error) {
	saved, err := c.Users.UpsertUser(ctx, user)
	if err != nil {
		return nil, err
	}
	c.Invalidate(ctx, user.Email)
	return saved, nil
}

func (c *UserCache) Invalidate(ctx context.Context, email string) {
	c.rdb.Del(ctx, "user:"+email)
}
