package journal

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gharbeti/gharbeti/internal/fiscal"
	"github.com/gharbeti/gharbeti/internal/platform/httpx"
)

type Handler struct {
	service  *Service
	logger   *slog.Logger
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		service:  service,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
}

type lineRequest struct {
	AccountCode string `json:"account_code" validate:"required"`
	Debit       int64  `json:"debit" validate:"gte=0"`
	Credit      int64  `json:"credit" validate:"gte=0"`
	Description string `json:"description"`
	TenantID    *int64 `json:"tenant_id"`
	PropertyID  *int64 `json:"property_id"`
}

type postRequest struct {
	Type          string        `json:"type"`
	Date          string        `json:"date" validate:"required,datetime=2006-01-02"`
	NepaliYear    int           `json:"nepali_year" validate:"gte=0"`
	NepaliMonth   int           `json:"nepali_month" validate:"gte=0,lte=12"`
	Description   string        `json:"description"`
	ReferenceType string        `json:"reference_type"`
	ReferenceID   string        `json:"reference_id"`
	Lines         []lineRequest `json:"lines" validate:"required,min=2,dive"`
}

// Create posts an ad hoc balanced transaction (the generic correction path).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}

	in := PostingInput{
		Type:          TypeGeneric,
		Date:          date,
		Fiscal:        fiscal.Period{Year: req.NepaliYear, Month: req.NepaliMonth},
		Description:   req.Description,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		CreatedBy:     actorID(r),
	}
	if req.Type != "" {
		parsed, err := ParseTransactionType(req.Type)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		in.Type = parsed
	}
	for _, line := range req.Lines {
		in.Lines = append(in.Lines, Line{
			AccountCode: line.AccountCode,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Description: line.Description,
			TenantID:    line.TenantID,
			PropertyID:  line.PropertyID,
			Fiscal:      in.Fiscal,
		})
	}

	posted, err := h.service.Post(r.Context(), in)
	if err != nil {
		h.logger.Error("post journal", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, posted)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	transactions, err := h.service.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("list journals", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if transactions == nil {
		transactions = []Transaction{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"transactions": transactions})
}

// actorID reads the acting user from the gateway-injected header.
func actorID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.Header.Get("X-Actor-ID"), 10, 64)
	return id
}
