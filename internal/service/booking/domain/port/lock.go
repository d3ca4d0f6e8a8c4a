// internal/service/booking/domain/port/lock.go
package port

// SessionLocker 提供按会话粒度的互斥锁，用于容量调整这类低频管理操作。
// 预占座位的热路径不走这把锁。
type SessionLocker interface {
	// Acquire 阻塞直到拿到锁，返回释放函数。
	Acquire(sessionID int64) (release func(), err error)
}
