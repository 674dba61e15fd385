// internal/lock/zklock/zk_lock.go
package zklock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"itemservice/internal/lock"

	"github.com/go-zookeeper/zk"
)

const lockRoot = "/stock_locks" // 所有库存锁的根节点

// Provider 基于 ZooKeeper 临时顺序节点实现 lock.Provider。
// 临时节点随会话消失，持有者崩溃时锁自动释放；竞争者按节点序号排队，天然 FIFO。
type Provider struct {
	conn *zk.Conn
}

func NewProvider(servers []string, sessionTimeout time.Duration) (*Provider, error) {
	conn, _, err := zk.Connect(servers, sessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to zookeeper: %w", err)
	}

	p := &Provider{conn: conn}
	if err := p.ensurePath(lockRoot); err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

// ensurePath 确保节点存在，已存在不算错误
func (p *Provider) ensurePath(path string) error {
	exists, _, err := p.conn.Exists(path)
	if err != nil {
		return fmt.Errorf("failed to check node %s: %w", path, err)
	}
	if exists {
		return nil
	}
	if _, err := p.conn.Create(path, []byte(""), 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
		return fmt.Errorf("failed to create node %s: %w", path, err)
	}
	return nil
}

// Acquire 在 key 对应的路径下创建临时顺序节点并排队等待成为最小者。
// holdTimeout 由一个守护计时器强制：到点删除自己的节点，防止持有者卡死。
func (p *Provider) Acquire(ctx context.Context, key string, waitTimeout, holdTimeout time.Duration) (lock.Lease, error) {
	lockPath := lockRoot + "/" + key
	if err := p.ensurePath(lockPath); err != nil {
		return nil, err
	}

	nodePath, err := p.conn.CreateProtectedEphemeralSequential(lockPath+"/lease-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return nil, fmt.Errorf("failed to create sequential node: %w", err)
	}

	deadline := time.Now().Add(waitTimeout)

	for {
		children, _, err := p.conn.Children(lockPath)
		if err != nil {
			p.deleteNode(nodePath)
			return nil, fmt.Errorf("failed to get children nodes: %w", err)
		}
		// protected 节点带随机 GUID 前缀，必须按序号后缀排序才是入队顺序
		sort.Slice(children, func(i, j int) bool {
			return sequenceOf(children[i]) < sequenceOf(children[j])
		})

		myNodeName := strings.TrimPrefix(nodePath, lockPath+"/")
		if myNodeName == children[0] {
			// 自己是最小节点，拿到锁
			lease := &zkLease{provider: p, key: key, nodePath: nodePath, done: make(chan struct{})}
			lease.startHoldWatchdog(holdTimeout)
			return lease, nil
		}

		// 不是最小节点，监听前一个节点的删除事件
		prevIndex := -1
		for i, child := range children {
			if child == myNodeName {
				prevIndex = i - 1
				break
			}
		}
		if prevIndex < 0 {
			p.deleteNode(nodePath)
			return nil, errors.New("own lease node missing from children list")
		}
		prevNodePath := lockPath + "/" + children[prevIndex]

		exists, _, eventChan, err := p.conn.ExistsW(prevNodePath)
		if err != nil {
			p.deleteNode(nodePath)
			return nil, fmt.Errorf("failed to watch previous node: %w", err)
		}
		if !exists {
			// 前一个节点在设置 watch 前刚好被删掉，重新竞争
			continue
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			p.deleteNode(nodePath)
			return nil, lock.ErrAcquireTimeout
		}

		select {
		case event := <-eventChan:
			if event.Type == zk.EventNodeDeleted {
				continue
			}
		case <-time.After(remaining):
			p.deleteNode(nodePath)
			return nil, lock.ErrAcquireTimeout
		case <-ctx.Done():
			p.deleteNode(nodePath)
			return nil, ctx.Err()
		}
	}
}

// sequenceOf 取顺序节点名末尾的序号，解析失败时排在最后
func sequenceOf(name string) int64 {
	idx := strings.LastIndex(name, "-")
	if idx < 0 || idx+1 >= len(name) {
		return int64(^uint64(0) >> 1)
	}
	seq, err := strconv.ParseInt(name[idx+1:], 10, 64)
	if err != nil {
		return int64(^uint64(0) >> 1)
	}
	return seq
}

func (p *Provider) deleteNode(path string) {
	if err := p.conn.Delete(path, -1); err != nil && err != zk.ErrNoNode {
		// 删除失败时节点仍是临时的，会话结束后会被清理
		_ = err
	}
}

// Close 断开 ZooKeeper 会话，所有残留的临时节点随之消失
func (p *Provider) Close() {
	p.conn.Close()
}

type zkLease struct {
	provider *Provider
	key      string
	nodePath string
	done     chan struct{}
}

func (l *zkLease) Key() string { return l.key }

// startHoldWatchdog 到达持有上限后强制删除自己的节点
func (l *zkLease) startHoldWatchdog(holdTimeout time.Duration) {
	go func() {
		select {
		case <-time.After(holdTimeout):
			l.provider.deleteNode(l.nodePath)
		case <-l.done:
		}
	}()
}

func (l *zkLease) Release(ctx context.Context) error {
	close(l.done)
	err := l.provider.conn.Delete(l.nodePath, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lease node %s: %w", l.nodePath, err)
	}
	return nil
}
