// internal/service/booking/domain/port/quote.go
package port

import "context"

// Quote 是目录服务返回的报价结果。
type Quote struct {
	TermID      int64
	Tier        string
	PriceIncl   int64
	SingleIncl  int64
	MonthlyIncl int64
	SavingsIncl int64
}

// PriceQuoter 是价格档位解析的出站端口，由 catalog 服务的 HTTP 适配器实现。
// 发起支付前必须经过 Quote 选定档位——booking 自己绝不计算价格。
type PriceQuoter interface {
	// Quote 解析整期报名的适用档位；系列没有可报名的期时返回错误。
	Quote(ctx context.Context, seriesID, termID int64, member bool) (*Quote, error)
	// SinglePrice 取某系列的单次含税价，用于单次报名
	SinglePrice(ctx context.Context, seriesID int64) (int64, error)
}
