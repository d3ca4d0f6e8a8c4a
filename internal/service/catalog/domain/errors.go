// internal/service/catalog/domain/errors.go
package domain

import "errors"

// 校验类错误：在任何持久化发生之前同步返回给调用方（管理后台）。
var (
	ErrNilPattern           = errors.New("pricing pattern is required")
	ErrInvalidBasePrice     = errors.New("base price per session must not be negative")
	ErrInvalidSessionCount  = errors.New("total sessions must be at least 1")
	ErrSeriesTooFewSessions = errors.New("a course series must bundle at least 2 sessions")
	ErrRateOutOfRange       = errors.New("discount or tax rate is out of its allowed range")
	ErrEarlyBirdDaysInvalid = errors.New("early bird lead days must be at least 1")
	// 早鸟折扣低于整期折扣意味着"越早报名越贵"，业务上不成立，建模为写入期校验
	ErrEarlyBirdBelowCourse = errors.New("early bird discount rate must not be below course discount rate")

	ErrInvalidTermDates       = errors.New("term start date must not be after end date")
	ErrDeadlineNotBeforeStart = errors.New("early bird deadline must be strictly before term start date")

	ErrPatternNotFound = errors.New("pricing pattern not found")
	ErrSeriesNotFound  = errors.New("course series not found")
	ErrTermNotFound    = errors.New("course term not found")

	// 引用完整性：被任一课程系列引用的价格模板不允许删除
	ErrPatternInUse = errors.New("pricing pattern is still referenced by a course series")

	// 系列下没有任何招生期时，整期报名路径不可达，调用方需回退到单次价
	ErrNoActiveTerm = errors.New("course series has no active enrollment term")

	// 显式指定的招生期已关闭或已过招生窗口，不允许按整期口径报价
	ErrTermClosed = errors.New("course term is not open for enrollment")
)
