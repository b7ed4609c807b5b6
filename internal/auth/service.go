package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vjpowerhouse/Basketball-Tracking-system/pkg"

	"github.com/go-redis/redis/v8"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "hoopstats-session||"
	tokenLength      = 35
)

var (
	ErrWrongCredentials = errors.New("wrong username or password")
	ErrInvalidUsers     = errors.New("invalid users definition")
)

type User struct {
	Username     string
	PasswordHash string
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ParseUsers reads a "name:bcrypthash,name2:bcrypthash2" list.
func ParseUsers(raw string) ([]User, error) {
	var users []User
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		username, hash, found := strings.Cut(part, ":")
		username = strings.TrimSpace(username)
		hash = strings.TrimSpace(hash)
		if !found || username == "" || hash == "" {
			return nil, fmt.Errorf("%w: [%s]", ErrInvalidUsers, part)
		}
		if seen[username] {
			return nil, fmt.Errorf("%w: duplicate user [%s]", ErrInvalidUsers, username)
		}
		seen[username] = true
		users = append(users, User{Username: username, PasswordHash: hash})
	}
	return users, nil
}

// Service logs users in and out. Sessions are redis keys holding the username,
// expired by redis after the TTL.
type Service struct {
	users       map[string]User
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewAuthService(
	users []User,
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	byName := make(map[string]User, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}
	return &Service{
		users:          byName,
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (as *Service) Login(ctx context.Context, credentials Credentials) (string, error) {
	user, ok := as.users[credentials.Username]
	if !ok || !pkg.CheckPasswordHash(credentials.Password, user.PasswordHash) {
		return "", ErrWrongCredentials
	}

	token, err := as.RandStringFunc(tokenLength)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	if err := as.redisClient.Set(ctx, sessionKeyPrefix+token, user.Username, as.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return token, nil
}

// Logout removes the session and reports whether it existed.
func (as *Service) Logout(ctx context.Context, token string) (bool, error) {
	deleted, err := as.redisClient.Del(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}
