// internal/service/booking/infrastructure/adapter/quote_http_adapter.go
package adapter

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"manabi/internal/pkg/httpclient"
	"manabi/internal/service/booking/domain/port"
)

// CatalogQuoteAdapter 通过 HTTP 调用 catalog-service 实现 PriceQuoter。
// 价格的权威永远在 catalog 一侧，这里只做传输与解码。
type CatalogQuoteAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewCatalogQuoteAdapter(client *httpclient.Client, baseURL string) *CatalogQuoteAdapter {
	return &CatalogQuoteAdapter{client: client, baseURL: baseURL}
}

type quoteReply struct {
	TermID      int64  `json:"term_id"`
	Tier        string `json:"tier"`
	PriceIncl   int64  `json:"price_incl"`
	SingleIncl  int64  `json:"single_incl"`
	MonthlyIncl int64  `json:"monthly_incl"`
	SavingsIncl int64  `json:"savings_incl"`
}

type seriesReply struct {
	CalcSinglePriceIncl int64 `json:"calc_single_price_incl"`
}

func (a *CatalogQuoteAdapter) Quote(ctx context.Context, seriesID, termID int64, member bool) (*port.Quote, error) {
	params := url.Values{}
	params.Set("series_id", strconv.FormatInt(seriesID, 10))
	if termID != 0 {
		params.Set("term_id", strconv.FormatInt(termID, 10))
	}
	params.Set("member", strconv.FormatBool(member))

	var reply quoteReply
	if err := a.client.GetJSON(ctx, a.baseURL+"/quote", params, &reply); err != nil {
		return nil, errors.Wrap(err, "call catalog quote")
	}
	return &port.Quote{
		TermID:      reply.TermID,
		Tier:        reply.Tier,
		PriceIncl:   reply.PriceIncl,
		SingleIncl:  reply.SingleIncl,
		MonthlyIncl: reply.MonthlyIncl,
		SavingsIncl: reply.SavingsIncl,
	}, nil
}

func (a *CatalogQuoteAdapter) SinglePrice(ctx context.Context, seriesID int64) (int64, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(seriesID, 10))

	var reply seriesReply
	if err := a.client.GetJSON(ctx, a.baseURL+"/series", params, &reply); err != nil {
		return 0, errors.Wrap(err, "call catalog series")
	}
	return reply.CalcSinglePriceIncl, nil
}
