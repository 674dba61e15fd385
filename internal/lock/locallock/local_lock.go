// internal/lock/locallock/local_lock.go
package locallock

import (
	"context"
	"sync"
	"time"

	"itemservice/internal/lock"

	"github.com/google/uuid"
)

// Provider 是 lock.Provider 的进程内实现，供单机部署和测试使用。
// 每个 key 一把独立的信号量，不同 key 之间完全并行。
type Provider struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	sem   chan struct{} // 容量 1，既是互斥量也是等待队列
	mu    sync.Mutex
	owner string // 当前持有者 token，空串表示无人持有
}

func NewProvider() *Provider {
	return &Provider{entries: make(map[string]*entry)}
}

func (p *Provider) entryFor(key string) *entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		e.sem <- struct{}{}
		p.entries[key] = e
	}
	return e
}

// Acquire 等待信号量至多 waitTimeout；拿到后启动持有上限的守护计时器。
func (p *Provider) Acquire(ctx context.Context, key string, waitTimeout, holdTimeout time.Duration) (lock.Lease, error) {
	e := p.entryFor(key)
	token := uuid.New().String()

	select {
	case <-e.sem:
	case <-time.After(waitTimeout):
		return nil, lock.ErrAcquireTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	e.mu.Lock()
	e.owner = token
	e.mu.Unlock()

	// 持有上限：到点后若仍是本租约持有，则强制释放
	timer := time.AfterFunc(holdTimeout, func() {
		e.releaseIfOwner(token)
	})

	return &localLease{entry: e, key: key, token: token, timer: timer}, nil
}

// releaseIfOwner 只有 token 仍是持有者时才归还信号量，
// 防止过期租约的 Release 抢走下一任持有者的锁。
func (e *entry) releaseIfOwner(token string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.owner != token {
		return false
	}
	e.owner = ""
	e.sem <- struct{}{}
	return true
}

type localLease struct {
	entry *entry
	key   string
	token string
	timer *time.Timer
}

func (l *localLease) Key() string { return l.key }

func (l *localLease) Release(ctx context.Context) error {
	l.timer.Stop()
	l.entry.releaseIfOwner(l.token)
	return nil
}
