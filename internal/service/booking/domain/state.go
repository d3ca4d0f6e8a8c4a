// internal/service/booking/domain/state.go
package domain

// State 定义了报名的生命周期状态
type State string

const (
	StateCreated        State = "CREATED"         // 报名已记录，资源尚未预占
	StatePendingPayment State = "PENDING_PAYMENT" // 座位已占住，等待支付
	StatePaid           State = "PAID"            // 已支付，座位正式归属
	StateCancelled      State = "CANCELLED"       // 已取消（用户主动、支付失败或超时），座位已释放
	StateFailed         State = "FAILED"          // 处理失败（满员、报价不可达等）
)
