// internal/service/booking/infrastructure/adapter/zk_lock_adapter.go
package adapter

import (
	"fmt"

	"github.com/pkg/errors"

	"manabi/internal/pkg/logger"
	"manabi/internal/zookeeper"
)

// ZkSessionLocker 用 ZooKeeper 临时顺序节点实现按会话粒度的互斥。
// 只服务于容量调整等低频管理操作。
type ZkSessionLocker struct {
	conn *zookeeper.Conn
}

func NewZkSessionLocker(conn *zookeeper.Conn) *ZkSessionLocker {
	return &ZkSessionLocker{conn: conn}
}

func (l *ZkSessionLocker) Acquire(sessionID int64) (func(), error) {
	lock, err := zookeeper.NewDistributedLock(l.conn, fmt.Sprintf("session-%d", sessionID))
	if err != nil {
		return nil, errors.Wrap(err, "create session lock")
	}
	if err := lock.Lock(); err != nil {
		return nil, errors.Wrap(err, "acquire session lock")
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			logger.Logger().Error().Err(err).
				Int64("session_id", sessionID).
				Msg("failed to release session lock")
		}
	}, nil
}
