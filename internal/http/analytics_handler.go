package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/rs/zerolog"
)

const defaultAnalyticsWindow = 7 * 24 * time.Hour

type AnalyticsService interface {
	GetAnalyticsData(ctx context.Context) (*domain.AnalyticsSummary, error)
	GetDailySalesData(ctx context.Context, start, end time.Time) ([]domain.DailySales, error)
}

type AnalyticsHandler struct {
	analytics AnalyticsService
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

func NewAnalyticsHandler(analytics AnalyticsService, timeout time.Duration, log zerolog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, timeout: timeout, now: time.Now, log: log}
}

type AnalyticsResponseDTO struct {
	AnalyticsData  *domain.AnalyticsSummary `json:"analyticsData"`
	DailySalesData []domain.DailySales      `json:"dailySalesData"`
}

// GET /api/analytics?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD, defaulting to
// the last seven days.
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	end := h.now().UTC()
	if v := r.URL.Query().Get("endDate"); v != "" {
		t, err := time.Parse(domain.DayLayout, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "endDate must be YYYY-MM-DD", nil)
			return
		}
		end = t
	}
	start := end.Add(-defaultAnalyticsWindow)
	if v := r.URL.Query().Get("startDate"); v != "" {
		t, err := time.Parse(domain.DayLayout, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "startDate must be YYYY-MM-DD", nil)
			return
		}
		start = t
	}

	summary, err := h.analytics.GetAnalyticsData(ctx)
	if err != nil {
		handleServiceError(w, h.log, err, "Server error")
		return
	}
	daily, err := h.analytics.GetDailySalesData(ctx, start, end)
	if err != nil {
		handleServiceError(w, h.log, err, "Server error")
		return
	}

	respondJSON(w, http.StatusOK, AnalyticsResponseDTO{
		AnalyticsData:  summary,
		DailySalesData: daily,
	})
}
