// internal/service/booking/domain/errors.go
package domain

import "errors"

var (
	ErrSessionNotFound    = errors.New("class session not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")

	// ErrSessionFull 表示预占时座位已满。这是结账流程的常规分支：
	// 调用方据此向用户展示"满席"，绝不能继续发起支付。
	ErrSessionFull = errors.New("class session is full")

	ErrInvalidCapacity = errors.New("capacity must be at least 1")
	// 缩容不允许低于当前已报名人数
	ErrCapacityBelowEnrolled = errors.New("capacity cannot be reduced below current enrolled count")

	ErrInvalidEnrollment = errors.New("cannot create enrollment with empty required fields")

	// ErrInvalidStateTransition 表示报名状态机不允许的流转，
	// 例如取消一个已支付的报名。
	ErrInvalidStateTransition = errors.New("invalid enrollment state transition")
)
