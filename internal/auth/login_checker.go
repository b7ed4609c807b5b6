package auth

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	redisClient *redis.Client
}

func NewLoginChecker(redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		redisClient: redisClient,
	}
}

// LoggedUser returns the user owning the session token, or "" if there is no such session.
func (c *LoginChecker) LoggedUser(ctx context.Context, token string) (string, error) {
	username, err := c.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return username, nil
}
