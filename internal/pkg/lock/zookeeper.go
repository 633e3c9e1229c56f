// internal/pkg/lock/zookeeper.go
package lock

import (
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/pkg/errors"
)

const (
	lockRoot    = "/orderflow_locks"
	lockTimeout = 30 * time.Second
)

// ZkLocker 是 Locker 的 ZooKeeper 实现，供多实例部署时
// 跨进程串行化同一订单的事件应用。单实例用 Keyed 即可。
type ZkLocker struct {
	conn *zk.Conn
}

// NewZkLocker 连接 ZooKeeper 并确保锁根节点存在。
func NewZkLocker(servers []string) (*ZkLocker, error) {
	conn, _, err := zk.Connect(servers, 10*time.Second)
	if err != nil {
		return nil, errors.Wrap(err, "connect zookeeper")
	}
	if err := ensureNode(conn, lockRoot); err != nil {
		conn.Close()
		return nil, err
	}
	return &ZkLocker{conn: conn}, nil
}

// Lock 用临时顺序节点实现排队：自己是最小节点即持锁，
// 否则监听前一个节点的删除事件。
func (z *ZkLocker) Lock(key string) (func(), error) {
	path := lockRoot + "/" + key
	if err := ensureNode(z.conn, path); err != nil {
		return nil, err
	}

	node, err := z.conn.CreateProtectedEphemeralSequential(path+"/lock-", []byte{}, zk.WorldACL(zk.PermAll))
	if err != nil {
		return nil, errors.Wrap(err, "create sequential lock node")
	}

	for {
		children, _, err := z.conn.Children(path)
		if err != nil {
			return nil, errors.Wrap(err, "list lock children")
		}
		sort.Strings(children)

		mine := strings.TrimPrefix(node, path+"/")
		if mine == children[0] {
			return func() { z.conn.Delete(node, -1) }, nil
		}

		prev := -1
		for i, child := range children {
			if child == mine {
				prev = i - 1
				break
			}
		}
		if prev < 0 {
			return nil, errors.New("own lock node missing from children")
		}

		_, _, eventCh, err := z.conn.ExistsW(path + "/" + children[prev])
		if err != nil {
			if err == zk.ErrNoNode {
				continue // 前一个节点刚好释放，重新竞争
			}
			return nil, errors.Wrap(err, "watch previous lock node")
		}

		select {
		case event := <-eventCh:
			if event.Type == zk.EventNodeDeleted {
				continue
			}
		case <-time.After(lockTimeout):
			z.conn.Delete(node, -1)
			return nil, errors.New("timeout waiting for lock")
		}
	}
}

// Close 断开 ZooKeeper 连接，持有的临时节点随之释放。
func (z *ZkLocker) Close() error {
	z.conn.Close()
	return nil
}

func ensureNode(conn *zk.Conn, path string) error {
	exists, _, err := conn.Exists(path)
	if err != nil {
		return errors.Wrap(err, "check lock node")
	}
	if exists {
		return nil
	}
	if _, err := conn.Create(path, []byte{}, 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
		return errors.Wrapf(err, "create lock node %s", path)
	}
	return nil
}
