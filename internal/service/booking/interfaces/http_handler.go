// internal/service/booking/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"manabi/internal/service/booking/application"
	"manabi/internal/service/booking/domain"
)

// BookingHandler 封装了 booking 服务的 HTTP 处理器。
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler 创建一个新的 HTTP 处理器实例。
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *BookingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/enroll", h.handleEnroll)
	mux.HandleFunc("/enrollments", h.handleGetEnrollment)
	mux.HandleFunc("/enrollments/cancel", h.handleCancel)
	mux.HandleFunc("/enrollments/confirm_payment", h.handleConfirmPayment)
	mux.HandleFunc("/sessions", h.handleSessions)
	mux.HandleFunc("/sessions/availability", h.handleAvailability)
	mux.HandleFunc("/sessions/capacity", h.handleResizeCapacity)
}

// handleEnroll 受理报名请求：校验后入队，立即返回受理标识。
func (h *BookingHandler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req application.EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	resp, err := h.service.RequestEnrollment(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(resp)
}

func (h *BookingHandler) handleGetEnrollment(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing enrollment id", http.StatusBadRequest)
		return
	}
	resp, err := h.service.GetEnrollment(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, resp)
}

func (h *BookingHandler) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing enrollment id", http.StatusBadRequest)
		return
	}
	resp, err := h.service.CancelEnrollment(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, resp)
}

func (h *BookingHandler) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing enrollment id", http.StatusBadRequest)
		return
	}
	resp, err := h.service.ConfirmPayment(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, resp)
}

func (h *BookingHandler) handleSessions(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req application.SaveSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	resp, err := h.service.CreateSession(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, resp)
}

func (h *BookingHandler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}
	resp, err := h.service.GetAvailability(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, resp)
}

func (h *BookingHandler) handleResizeCapacity(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req application.ResizeCapacityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	resp, err := h.service.ResizeCapacity(ctx, &req)
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
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrEnrollmentNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrSessionFull),
		errors.Is(err, domain.ErrInvalidStateTransition):
		statusCode = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCapacity),
		errors.Is(err, domain.ErrCapacityBelowEnrolled),
		errors.Is(err, domain.ErrInvalidEnrollment):
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
