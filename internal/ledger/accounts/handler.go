package accounts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gharbeti/gharbeti/internal/platform/httpx"
)

type Handler struct {
	service *Service
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{code}", h.Get)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": toViews(accounts)})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.GetByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(account))
}

type accountView struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	CurrentBalance int64  `json:"current_balance"`
	IsActive       bool   `json:"is_active"`
}

func toView(a Account) accountView {
	return accountView{
		Code:           a.Code,
		Name:           a.Name,
		Type:           string(a.Type),
		CurrentBalance: a.CurrentBalance,
		IsActive:       a.IsActive,
	}
}

func toViews(accounts []Account) []accountView {
	out := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toView(a))
	}
	return out
}
