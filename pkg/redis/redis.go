package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"animal-care-clinic/config"
)

// Client Redis 客户端封装
// 用于 Token 黑名单与接口限流；所有命令经过熔断器，Redis 故障时快速失败由调用方降级
type Client struct {
	rdb     goredis.UniversalClient
	breaker *gobreaker.CircuitBreaker[any]
	logger  *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return newClient(rdb, logger), nil
}

// NewWithUniversalClient 使用已有连接构造 Client（测试中注入）
func NewWithUniversalClient(rdb goredis.UniversalClient, logger *zap.Logger) *Client {
	return newClient(rdb, logger)
}

func newClient(rdb goredis.UniversalClient, logger *zap.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "redis",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Redis 熔断器状态变化",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &Client{rdb: rdb, breaker: breaker, logger: logger}
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
	})
	return err
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	res, err := c.breaker.Execute(func() (any, error) {
		return c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	})
	if err != nil {
		return false, err
	}
	return res.(int64) > 0, nil
}

// ── 限流 ──

// CheckRateLimit 滑动窗口限流：窗口内请求数未超过 limit 时返回 true
// 使用有序集合记录请求时间戳，MULTI 保证清理、写入、计数的原子性
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	res, err := c.breaker.Execute(func() (any, error) {
		now := time.Now()
		member := strconv.FormatInt(now.UnixNano(), 10)
		minScore := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

		pipe := c.rdb.TxPipeline()
		pipe.ZRemRangeByScore(ctx, key, "0", minScore)
		pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: member})
		count := pipe.ZCard(ctx, key)
		pipe.Expire(ctx, key, window)
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, err
		}
		return count.Val(), nil
	})
	if err != nil {
		return false, err
	}
	return res.(int64) <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
