// internal/service/booking/infrastructure/metrics.go
package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SeatReservationTotal 按结果统计座位预占次数。
	// result 取值：reserved / full / error
	SeatReservationTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "manabi",
		Subsystem: "booking",
		Name:      "seat_reservation_total",
		Help:      "Total number of seat reservation attempts by result.",
	}, []string{"result"})

	// SeatReleaseTotal 统计座位释放；underflow 表示多余的释放被钳制
	SeatReleaseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "manabi",
		Subsystem: "booking",
		Name:      "seat_release_total",
		Help:      "Total number of seat releases by result.",
	}, []string{"result"})

	// EnrollmentProcessedTotal 按最终状态统计消费侧处理完的报名
	EnrollmentProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "manabi",
		Subsystem: "booking",
		Name:      "enrollment_processed_total",
		Help:      "Total number of enrollment requests processed by outcome.",
	}, []string{"outcome"})
)
