// internal/service/catalog/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"manabi/internal/service/catalog/application"
	"manabi/internal/service/catalog/domain"
)

// CatalogHandler 封装了 catalog 服务的 HTTP 处理器。
type CatalogHandler struct {
	service *application.CatalogService
}

// NewCatalogHandler 创建一个新的 HTTP 处理器实例。
func NewCatalogHandler(service *application.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/patterns", h.handlePatterns)
	mux.HandleFunc("/patterns/delete", h.handleDeletePattern)
	mux.HandleFunc("/series", h.handleSeries)
	mux.HandleFunc("/series/delete", h.handleDeleteSeries)
	mux.HandleFunc("/terms", h.handleTerms)
	mux.HandleFunc("/terms/delete", h.handleDeleteTerm)
	mux.HandleFunc("/quote", h.handleQuote)
}

func (h *CatalogHandler) handlePatterns(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	switch r.Method {
	case http.MethodGet:
		patterns, err := h.service.ListPatterns(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, patterns)
	case http.MethodPost, http.MethodPut:
		var req application.SavePatternRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		pattern, err := h.service.SavePattern(ctx, &req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, pattern)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CatalogHandler) handleDeletePattern(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid pattern id", http.StatusBadRequest)
		return
	}
	if err := h.service.DeletePattern(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"success": true})
}

func (h *CatalogHandler) handleSeries(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	switch r.Method {
	case http.MethodGet:
		id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid series id", http.StatusBadRequest)
			return
		}
		resp, err := h.service.GetSeries(ctx, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, resp)
	case http.MethodPost, http.MethodPut:
		var req application.SaveSeriesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		resp, err := h.service.SaveSeries(ctx, &req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, resp)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CatalogHandler) handleDeleteSeries(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid series id", http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteSeries(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"success": true})
}

func (h *CatalogHandler) handleTerms(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	switch r.Method {
	case http.MethodPost, http.MethodPut:
		var req application.SaveTermRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		term, err := h.service.SaveTerm(ctx, &req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, term)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CatalogHandler) handleDeleteTerm(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid term id", http.StatusBadRequest)
		return
	}
	if err := h.service.DeleteTerm(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]interface{}{"success": true})
}

// handleQuote 是结账与店面共用的报价入口。
func (h *CatalogHandler) handleQuote(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	seriesID, err := strconv.ParseInt(r.URL.Query().Get("series_id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid series id", http.StatusBadRequest)
		return
	}
	termID, _ := strconv.ParseInt(r.URL.Query().Get("term_id"), 10, 64)

	req := &application.QuoteRequest{
		SeriesID: seriesID,
		TermID:   termID,
		Member:   r.URL.Query().Get("member") == "true",
	}
	// at 参数仅供测试和预览使用，生产流量走服务器时间
	if at := r.URL.Query().Get("at"); at != "" {
		if t, err := time.Parse("2006-01-02", at); err == nil {
			req.Now = t
		}
	}

	resp, err := h.service.Quote(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, resp)
}

// writeError 根据错误类型返回不同的 HTTP 状态码。
func writeError(w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrPatternNotFound),
		errors.Is(err, domain.ErrSeriesNotFound),
		errors.Is(err, domain.ErrTermNotFound),
		errors.Is(err, domain.ErrNoActiveTerm):
		statusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrPatternInUse),
		errors.Is(err, domain.ErrTermClosed):
		statusCode = http.StatusConflict
	case errors.Is(err, domain.ErrNilPattern),
		errors.Is(err, domain.ErrInvalidBasePrice),
		errors.Is(err, domain.ErrInvalidSessionCount),
		errors.Is(err, domain.ErrSeriesTooFewSessions),
		errors.Is(err, domain.ErrRateOutOfRange),
		errors.Is(err, domain.ErrEarlyBirdDaysInvalid),
		errors.Is(err, domain.ErrEarlyBirdBelowCourse),
		errors.Is(err, domain.ErrInvalidTermDates),
		errors.Is(err, domain.ErrDeadlineNotBeforeStart):
		statusCode = http.StatusBadRequest
	default:
		statusCode = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), statusCode)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func extract(r *http.Request) context.Context {
	propagator := otel.GetTextMapPropagator()
	return propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}
