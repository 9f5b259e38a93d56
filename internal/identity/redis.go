package identity

import (
	"context"
	"fmt"
	"time"

	"rail-booking-go/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tokenKeyPrefix = "auth:token:"

// Compile-time check: *RedisProvider must satisfy Provider.
var _ Provider = (*RedisProvider)(nil)

// RedisProvider stores issued tokens in Redis with a TTL, so sessions
// expire server-side without any bookkeeping in the relational store.
type RedisProvider struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisProvider(ctx context.Context, cfg models.RedisConfig) (*RedisProvider, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("token TTL must be positive, got %v", cfg.TokenTTL)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}

	zap.L().Info("Identity provider initialized", zap.String("redis_addr", cfg.Addr))
	return &RedisProvider{client: client, ttl: cfg.TokenTTL}, nil
}

func (p *RedisProvider) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	userId, err := p.client.Get(ctx, tokenKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve token: %w", err)
	}
	return userId, nil
}

func (p *RedisProvider) IssueToken(ctx context.Context, userId string) (string, error) {
	token := uuid.New().String()
	if err := p.client.Set(ctx, tokenKeyPrefix+token, userId, p.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}

func (p *RedisProvider) RevokeToken(ctx context.Context, token string) error {
	if err := p.client.Del(ctx, tokenKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (p *RedisProvider) Close() error {
	return p.client.Close()
}
