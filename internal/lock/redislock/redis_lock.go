// internal/lock/redislock/redis_lock.go
package redislock

import (
	"context"
	"fmt"
	"time"

	"itemservice/internal/lock"
	"itemservice/internal/pkg/redis"

	"github.com/google/uuid"
)

const (
	// 获取失败后的轮询间隔
	pollInterval = 50 * time.Millisecond

	unlockScriptName = "unlock_lease"
)

// 只有持有者本人能删除自己的租约 key，防止过期后误删下一任持有者的锁
var unlockScript = `
-- KEYS[1]: 租约 key
-- ARGV[1]: 持有者 token
if redis.call('get', KEYS[1]) == ARGV[1] then
    return redis.call('del', KEYS[1])
else
    return 0
end
`

// Provider 基于 Redis SET NX PX 实现 lock.Provider。
// 持有上限由 key 的 PX 过期时间强制，与持有者存活无关。
// 公平性：无序竞争（轮询抢占），正确性只依赖互斥。
type Provider struct {
	client *redis.Client
}

func NewProvider(client *redis.Client) (*Provider, error) {
	if err := client.LoadScriptFromContent(unlockScriptName, unlockScript); err != nil {
		return nil, fmt.Errorf("failed to load unlock script: %w", err)
	}
	return &Provider{client: client}, nil
}

// Acquire 在 waitTimeout 内反复尝试 SET NX，抢到即返回租约
func (p *Provider) Acquire(ctx context.Context, key string, waitTimeout, holdTimeout time.Duration) (lock.Lease, error) {
	token := uuid.New().String()
	deadline := time.Now().Add(waitTimeout)

	for {
		ok, err := p.client.GetClient().SetNX(ctx, key, token, holdTimeout).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock acquire failed for %s: %w", key, err)
		}
		if ok {
			return &redisLease{provider: p, key: key, token: token}, nil
		}

		if time.Now().After(deadline) {
			return nil, lock.ErrAcquireTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

type redisLease struct {
	provider *Provider
	key      string
	token    string
}

func (l *redisLease) Key() string { return l.key }

func (l *redisLease) Release(ctx context.Context) error {
	// 脚本内比对 token，租约已过期或已被他人持有时不做任何事
	_, err := l.provider.client.RunScript(ctx, unlockScriptName, []string{l.key}, l.token)
	if err != nil {
		return fmt.Errorf("redis lock release failed for %s: %w", l.key, err)
	}
	return nil
}
