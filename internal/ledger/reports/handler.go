package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gharbeti/gharbeti/internal/platform/httpx"
	"github.com/gharbeti/gharbeti/internal/shared"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/statement", h.Statement)
	r.Get("/account-summary", h.AccountSummary)
}

func (h *Handler) Statement(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	statement, err := h.service.GetStatement(r.Context(), filter)
	if err != nil {
		h.logger.Error("statement query", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, statement)
}

func (h *Handler) AccountSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.GetAccountSummary(r.Context(), filter)
	if err != nil {
		h.logger.Error("account summary query", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func parseFilter(r *http.Request) (StatementFilter, error) {
	q := r.URL.Query()
	var filter StatementFilter
	filter.AccountCode = q.Get("account_code")

	var err error
	if filter.TenantID, err = int64Param(q.Get("tenant_id")); err != nil {
		return filter, err
	}
	if filter.PropertyID, err = int64Param(q.Get("property_id")); err != nil {
		return filter, err
	}
	if filter.FiscalYear, err = intParam(q.Get("fiscal_year")); err != nil {
		return filter, err
	}
	if filter.FiscalMonth, err = intParam(q.Get("fiscal_month")); err != nil {
		return filter, err
	}
	if filter.FiscalQuarter, err = intParam(q.Get("quarter")); err != nil {
		return filter, err
	}
	if filter.From, err = dateParam(q.Get("from")); err != nil {
		return filter, err
	}
	if filter.To, err = dateParam(q.Get("to")); err != nil {
		return filter, err
	}
	return filter, nil
}

func int64Param(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, shared.ErrInvalidFilter
	}
	return &v, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, shared.ErrInvalidFilter
	}
	return v, nil
}

func dateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, shared.ErrInvalidFilter
	}
	return &t, nil
}
