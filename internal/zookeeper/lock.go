// internal/zookeeper/lock.go
package zookeeper

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

const (
	lockRoot = "/distributed_locks" // 所有分布式锁的根节点
)

// ErrLockHeld 表示锁已被其他实例持有 (仅 TryLock 返回)。
var ErrLockHeld = errors.New("zookeeper: lock held by another instance")

// Conn 封装 zk 连接。
type Conn struct {
	*zk.Conn
}

// Connect 建立到 ZooKeeper 集群的连接。
func Connect(servers []string, sessionTimeout time.Duration) (*Conn, error) {
	conn, _, err := zk.Connect(servers, sessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to zookeeper %v: %w", servers, err)
	}
	return &Conn{Conn: conn}, nil
}

// DistributedLock 定义了一个分布式锁对象
type DistributedLock struct {
	conn     *Conn  // ZooKeeper连接
	path     string // 锁的路径，例如 /distributed_locks/watering-daily-run
	lockNode string // 成功获取锁后，自己创建的节点路径
}

// NewDistributedLock 创建一个新的分布式锁实例
func NewDistributedLock(conn *Conn, resourceID string) (*DistributedLock, error) {
	// 确保根节点和锁的父节点存在
	for _, p := range []string{lockRoot, lockRoot + "/" + resourceID} {
		exists, _, err := conn.Exists(p)
		if err != nil {
			return nil, fmt.Errorf("failed to check lock node %s: %w", p, err)
		}
		if !exists {
			_, createErr := conn.Create(p, []byte(""), 0, zk.WorldACL(zk.PermAll))
			if createErr != nil && createErr != zk.ErrNodeExists {
				return nil, fmt.Errorf("failed to create lock node %s: %w", p, createErr)
			}
		}
	}

	return &DistributedLock{
		conn: conn,
		path: lockRoot + "/" + resourceID,
	}, nil
}

// TryLock 尝试获取锁，锁被占用时立刻返回 ErrLockHeld 而不是阻塞。
// 定时任务使用它来保证同一时刻只有一个实例在跑批。
func (l *DistributedLock) TryLock() error {
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("failed to create sequential node: %w", err)
	}
	l.lockNode = nodePath

	children, _, err := l.conn.Children(l.path)
	if err != nil {
		l.Unlock()
		return fmt.Errorf("failed to get children nodes: %w", err)
	}
	sort.Strings(children)

	myNodeName := sequenceName(l.lockNode, l.path)
	if myNodeName == children[0] {
		return nil
	}

	// 不是最小节点，说明有别的实例持有锁；放弃自己的节点
	l.Unlock()
	return ErrLockHeld
}

// Lock 尝试获取锁，如果获取不到则阻塞等待。
func (l *DistributedLock) Lock() error {
	// 1. 在锁路径下创建一个临时顺序节点
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("failed to create sequential node: %w", err)
	}
	l.lockNode = nodePath

	for {
		// 2. 获取锁路径下的所有子节点
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			return fmt.Errorf("failed to get children nodes: %w", err)
		}
		sort.Strings(children)

		// 3. 判断自己是否是最小的节点
		myNodeName := sequenceName(l.lockNode, l.path)
		if myNodeName == children[0] {
			// 是最小节点，成功获取锁
			return nil
		}

		// 4. 不是最小节点，监听前一个节点的删除事件
		prevNodeIndex := -1
		for i, child := range children {
			if child == myNodeName {
				prevNodeIndex = i - 1
				break
			}
		}
		if prevNodeIndex < 0 {
			return fmt.Errorf("own lock node %s disappeared from %s", myNodeName, l.path)
		}

		prevNodePath := l.path + "/" + children[prevNodeIndex]
		exists, _, watch, err := l.conn.ExistsW(prevNodePath)
		if err != nil {
			return fmt.Errorf("failed to watch previous node %s: %w", prevNodePath, err)
		}
		if !exists {
			// 前一个节点在监听前已经释放，重新竞争
			continue
		}

		// 阻塞直到前一个节点被删除
		<-watch
	}
}

// Unlock 释放锁 (删除自己创建的临时节点)。
func (l *DistributedLock) Unlock() error {
	if l.lockNode == "" {
		return nil
	}
	err := l.conn.Delete(l.lockNode, -1)
	l.lockNode = ""
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to release lock node: %w", err)
	}
	return nil
}

// sequenceName 截取节点的名字部分。Protected 节点带有 GUID 前缀，
// zk 保证顺序号在名字末尾，排序仍然成立。
func sequenceName(nodePath, lockPath string) string {
	return strings.TrimPrefix(nodePath, lockPath+"/")
}
