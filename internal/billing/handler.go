package billing

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gharbeti/gharbeti/internal/fiscal"
	"github.com/gharbeti/gharbeti/internal/ledger/builders"
	"github.com/gharbeti/gharbeti/internal/ledger/journal"
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
	r.Post("/rent-charges", h.ChargeRent)
	r.Post("/cam-charges", h.ChargeCam)
	r.Post("/payments", h.ReceivePayment)
	r.Post("/cam-payments", h.ReceiveCamPayment)
	r.Post("/deposits", h.CollectDeposit)
	r.Post("/manual-liabilities", h.RecordManualLiability)
	r.Post("/onboardings", h.OnboardTenant)
}

type chargeRequest struct {
	TenantID    int64  `json:"tenant_id" validate:"required,gt=0"`
	PropertyID  int64  `json:"property_id" validate:"required,gt=0"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	NepaliYear  int    `json:"nepali_year" validate:"required,gt=0"`
	NepaliMonth int    `json:"nepali_month" validate:"required,gte=1,lte=12"`
	ReferenceID string `json:"reference_id"`
	Description string `json:"description"`
}

func (h *Handler) ChargeRent(w http.ResponseWriter, r *http.Request) {
	h.charge(w, r, h.service.ChargeRent)
}

func (h *Handler) ChargeCam(w http.ResponseWriter, r *http.Request) {
	h.charge(w, r, h.service.ChargeCam)
}

func (h *Handler) charge(w http.ResponseWriter, r *http.Request, post func(context.Context, ChargeRequest) (journal.Transaction, error)) {
	var req chargeRequest
	date, ok := h.decode(w, r, &req, &req.Date)
	if !ok {
		return
	}
	posted, err := post(r.Context(), ChargeRequest{
		TenantID:    req.TenantID,
		PropertyID:  req.PropertyID,
		Amount:      req.Amount,
		Date:        date,
		Fiscal:      fiscal.Period{Year: req.NepaliYear, Month: req.NepaliMonth},
		ReferenceID: req.ReferenceID,
		CreatedBy:   actorID(r),
		Description: req.Description,
	})
	if err != nil {
		h.logger.Error("post charge", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, posted)
}

type paymentRequest struct {
	TenantID    int64  `json:"tenant_id" validate:"required,gt=0"`
	PropertyID  int64  `json:"property_id" validate:"required,gt=0"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	NepaliYear  int    `json:"nepali_year" validate:"required,gt=0"`
	NepaliMonth int    `json:"nepali_month" validate:"required,gte=1,lte=12"`
	Method      string `json:"method" validate:"omitempty,oneof=CASH BANK"`
	ReferenceID string `json:"reference_id"`
	Description string `json:"description"`
}

func (h *Handler) ReceivePayment(w http.ResponseWriter, r *http.Request) {
	h.payment(w, r, h.service.ReceivePayment)
}

func (h *Handler) ReceiveCamPayment(w http.ResponseWriter, r *http.Request) {
	h.payment(w, r, h.service.ReceiveCamPayment)
}

func (h *Handler) payment(w http.ResponseWriter, r *http.Request, post func(context.Context, PaymentRequest) (journal.Transaction, error)) {
	var req paymentRequest
	date, ok := h.decode(w, r, &req, &req.Date)
	if !ok {
		return
	}
	posted, err := post(r.Context(), PaymentRequest{
		TenantID:    req.TenantID,
		PropertyID:  req.PropertyID,
		Amount:      req.Amount,
		Date:        date,
		Fiscal:      fiscal.Period{Year: req.NepaliYear, Month: req.NepaliMonth},
		Method:      builders.ReceiptMethod(req.Method),
		ReferenceID: req.ReferenceID,
		CreatedBy:   actorID(r),
		Description: req.Description,
	})
	if err != nil {
		h.logger.Error("post payment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, posted)
}

type depositRequest struct {
	TenantID    int64  `json:"tenant_id" validate:"required,gt=0"`
	PropertyID  int64  `json:"property_id" validate:"required,gt=0"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	NepaliYear  int    `json:"nepali_year" validate:"required,gt=0"`
	NepaliMonth int    `json:"nepali_month" validate:"required,gte=1,lte=12"`
	Method      string `json:"method" validate:"omitempty,oneof=CASH BANK"`
	ReferenceID string `json:"reference_id"`
	Description string `json:"description"`
}

func (h *Handler) CollectDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	date, ok := h.decode(w, r, &req, &req.Date)
	if !ok {
		return
	}
	result, err := h.service.CollectSecurityDeposit(r.Context(), DepositRequest{
		TenantID:    req.TenantID,
		PropertyID:  req.PropertyID,
		Amount:      req.Amount,
		Date:        date,
		Fiscal:      fiscal.Period{Year: req.NepaliYear, Month: req.NepaliMonth},
		Method:      builders.ReceiptMethod(req.Method),
		ReferenceID: req.ReferenceID,
		CreatedBy:   actorID(r),
		Description: req.Description,
	})
	if err != nil {
		h.logger.Error("collect deposit", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

type manualLiabilityRequest struct {
	TenantID    int64  `json:"tenant_id" validate:"omitempty,gt=0"`
	PropertyID  int64  `json:"property_id" validate:"omitempty,gt=0"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	NepaliYear  int    `json:"nepali_year" validate:"required,gt=0"`
	NepaliMonth int    `json:"nepali_month" validate:"required,gte=1,lte=12"`
	Description string `json:"description" validate:"required"`
}

func (h *Handler) RecordManualLiability(w http.ResponseWriter, r *http.Request) {
	var req manualLiabilityRequest
	date, ok := h.decode(w, r, &req, &req.Date)
	if !ok {
		return
	}
	result, err := h.service.RecordManualLiability(r.Context(), ManualLiabilityRequest{
		TenantID:    req.TenantID,
		PropertyID:  req.PropertyID,
		Amount:      req.Amount,
		Date:        date,
		Fiscal:      fiscal.Period{Year: req.NepaliYear, Month: req.NepaliMonth},
		CreatedBy:   actorID(r),
		Description: req.Description,
	})
	if err != nil {
		h.logger.Error("record manual liability", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

type onboardingRequest struct {
	TenantID      int64  `json:"tenant_id" validate:"required,gt=0"`
	PropertyID    int64  `json:"property_id" validate:"required,gt=0"`
	RentAmount    int64  `json:"rent_amount" validate:"required,gt=0"`
	CamAmount     int64  `json:"cam_amount" validate:"gte=0"`
	DepositAmount int64  `json:"deposit_amount" validate:"required,gt=0"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	NepaliYear    int    `json:"nepali_year" validate:"required,gt=0"`
	NepaliMonth   int    `json:"nepali_month" validate:"required,gte=1,lte=12"`
	Method        string `json:"method" validate:"omitempty,oneof=CASH BANK"`
}

func (h *Handler) OnboardTenant(w http.ResponseWriter, r *http.Request) {
	var req onboardingRequest
	date, ok := h.decode(w, r, &req, &req.Date)
	if !ok {
		return
	}
	result, err := h.service.OnboardTenant(r.Context(), OnboardingRequest{
		TenantID:      req.TenantID,
		PropertyID:    req.PropertyID,
		RentAmount:    req.RentAmount,
		CamAmount:     req.CamAmount,
		DepositAmount: req.DepositAmount,
		Date:          date,
		Fiscal:        fiscal.Period{Year: req.NepaliYear, Month: req.NepaliMonth},
		Method:        builders.ReceiptMethod(req.Method),
		CreatedBy:     actorID(r),
	})
	if err != nil {
		h.logger.Error("onboard tenant", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

// decode parses the body, runs struct validation and parses the date field.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any, rawDate *string) (time.Time, bool) {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return time.Time{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return time.Time{}, false
	}
	date, err := time.Parse("2006-01-02", *rawDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// actorID reads the acting user from the gateway-injected header.
func actorID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.Header.Get("X-Actor-ID"), 10, 64)
	return id
}
