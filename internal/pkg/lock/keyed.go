// internal/pkg/lock/keyed.go

// Package lock 提供按资源 ID 的互斥原语。
// 引擎的 apply 不是原子的（先读后写两次访问仓储），
// 并发摄入同一订单的事件会丢更新，必须按订单 ID 串行化。
package lock

import (
	"hash/fnv"
	"sync"
)

// Locker 按 key 提供互斥，Lock 返回对应的解锁函数。
type Locker interface {
	Lock(key string) (unlock func(), err error)
}

const shardCount = 64

// Keyed 是进程内的分片互斥锁：key 哈希到固定数量的分片上。
// 不同 key 可能落在同一分片而互相等待，这是可接受的伪冲突。
type Keyed struct {
	shards [shardCount]sync.Mutex
}

// NewKeyed 创建进程内分片锁。
func NewKeyed() *Keyed {
	return &Keyed{}
}

// Lock 锁住 key 所在分片，返回解锁函数。本地锁不会失败。
func (k *Keyed) Lock(key string) (func(), error) {
	mu := &k.shards[shardIndex(key)]
	mu.Lock()
	return mu.Unlock, nil
}

func shardIndex(key string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(key))
	return h.Sum32() % shardCount
}
