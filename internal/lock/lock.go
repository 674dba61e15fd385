// internal/lock/lock.go
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrAcquireTimeout 表示在等待时限内没有获取到租约。
// 调用方可以带退避重试整个操作。
var ErrAcquireTimeout = errors.New("timeout waiting for lock lease")

// Lease 是一个已持有的互斥租约。同一个 key 在任意时刻全局至多一个活跃租约，
// 由锁服务强制在持有时限后过期，持有者崩溃不会永久饿死该 key 的其他更新者。
type Lease interface {
	// Key 返回租约对应的协调 key
	Key() string
	// Release 释放租约。任何退出路径（正常、业务失败、异常）都必须调用，
	// 对已过期的租约调用是无害的。
	Release(ctx context.Context) error
}

// Provider 是锁服务的抽象。任何实现（Redis、ZooKeeper、进程内）
// 都满足同一个契约：阻塞等待至多 waitTimeout，租约持有上限 holdTimeout。
type Provider interface {
	Acquire(ctx context.Context, key string, waitTimeout, holdTimeout time.Duration) (Lease, error)
}

// ItemKey 生成商品粒度的锁 key。不同商品的更新完全并行，互不竞争。
func ItemKey(itemID int64) string {
	return fmt.Sprintf("lock:item:%d", itemID)
}
