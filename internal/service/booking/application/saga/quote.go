// internal/service/booking/application/saga/quote.go
package saga

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"manabi/internal/service/booking/domain"
)

// PriceQuoteHandler 负责价格档位解析步骤。
// 价格权威在 catalog 服务，这里只是把报价结果写回报名单。
type PriceQuoteHandler struct {
	NextHandler
}

func (h *PriceQuoteHandler) Handle(enrollCtx *EnrollmentContext) error {
	ctx, span := enrollCtx.Tracer.Start(enrollCtx.Ctx, "saga.PriceQuote")
	defer span.End()

	enrollment := enrollCtx.Enrollment

	switch enrollment.Kind {
	case domain.KindCourse:
		quote, err := enrollCtx.Quoter.Quote(ctx, enrollment.SeriesID, enrollment.TermID, enrollment.Member)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "price quote failed")
			return err
		}
		enrollment.TermID = quote.TermID
		enrollment.PriceTier = quote.Tier
		enrollment.PriceIncl = quote.PriceIncl
	case domain.KindSingle:
		price, err := enrollCtx.Quoter.SinglePrice(ctx, enrollment.SeriesID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "single price lookup failed")
			return err
		}
		enrollment.PriceTier = "SINGLE"
		enrollment.PriceIncl = price
	default:
		return domain.ErrInvalidEnrollment
	}

	span.SetAttributes(
		attribute.String("price.tier", enrollment.PriceTier),
		attribute.Int64("price.incl", enrollment.PriceIncl),
	)
	return h.executeNext(enrollCtx)
}
