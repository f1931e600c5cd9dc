// Package billing hosts the domain flows that feed the ledger: periodic rent
// and CAM charges, received payments, security deposits and manual
// liabilities. It is the integration seam between tenant management and the
// journal poster.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gharbeti/gharbeti/internal/fiscal"
	"github.com/gharbeti/gharbeti/internal/ledger/accounts"
	"github.com/gharbeti/gharbeti/internal/ledger/builders"
	"github.com/gharbeti/gharbeti/internal/ledger/journal"
	"github.com/gharbeti/gharbeti/internal/liability"
	"github.com/gharbeti/gharbeti/internal/shared"
)

// Registry resolves chart accounts by code.
type Registry interface {
	GetByCode(ctx context.Context, code string) (accounts.Account, error)
}

// Poster is the slice of the journal service billing depends on. Committed
// reports postings made through PostIn once the surrounding scope commits;
// it drives the same metrics, audit records and cache invalidation a direct
// Post gets.
type Poster interface {
	Post(ctx context.Context, in journal.PostingInput) (journal.Transaction, error)
	PostIn(ctx context.Context, tx journal.TxRepository, in journal.PostingInput) (journal.Transaction, error)
	Committed(ctx context.Context, posted ...journal.Transaction)
}

type Service struct {
	repo     journal.Repository
	poster   Poster
	registry Registry
	logger   *slog.Logger
	policy   builders.ReceivablePolicy
}

func NewService(logger *slog.Logger, repo journal.Repository, poster Poster, registry Registry, policy builders.ReceivablePolicy) *Service {
	return &Service{
		repo:     repo,
		poster:   poster,
		registry: registry,
		logger:   logger,
		policy:   policy,
	}
}

// ChargeRequest describes a periodic charge against a tenant.
type ChargeRequest struct {
	TenantID    int64
	PropertyID  int64
	Amount      int64
	Date        time.Time
	Fiscal      fiscal.Period
	ReferenceID string
	CreatedBy   int64
	Description string
}

func (r ChargeRequest) toBuilder() builders.ChargeInput {
	return builders.ChargeInput{
		TenantID:    ref(r.TenantID),
		PropertyID:  ref(r.PropertyID),
		Amount:      r.Amount,
		Date:        r.Date,
		Fiscal:      r.Fiscal,
		ReferenceID: r.ReferenceID,
		CreatedBy:   r.CreatedBy,
		Description: r.Description,
	}
}

// ChargeRent posts a monthly rent charge.
func (s *Service) ChargeRent(ctx context.Context, req ChargeRequest) (journal.Transaction, error) {
	in, err := builders.RentCharge(req.toBuilder())
	if err != nil {
		return journal.Transaction{}, err
	}
	return s.poster.Post(ctx, in)
}

// ChargeCam posts a common-area-maintenance charge.
func (s *Service) ChargeCam(ctx context.Context, req ChargeRequest) (journal.Transaction, error) {
	in, err := builders.CamCharge(req.toBuilder())
	if err != nil {
		return journal.Transaction{}, err
	}
	return s.poster.Post(ctx, in)
}

// PaymentRequest describes a received tenant payment.
type PaymentRequest struct {
	TenantID    int64
	PropertyID  int64
	Amount      int64
	Date        time.Time
	Fiscal      fiscal.Period
	Method      builders.ReceiptMethod
	ReferenceID string
	CreatedBy   int64
	Description string
}

func (r PaymentRequest) toBuilder(referenceID string) builders.PaymentInput {
	return builders.PaymentInput{
		TenantID:    ref(r.TenantID),
		PropertyID:  ref(r.PropertyID),
		Amount:      r.Amount,
		Date:        r.Date,
		Fiscal:      r.Fiscal,
		Method:      r.Method,
		ReferenceID: referenceID,
		CreatedBy:   r.CreatedBy,
		Description: r.Description,
	}
}

// ReceivePayment posts a rent payment. The credit side follows the service's
// receivable policy when the chart lacks the AR account.
func (s *Service) ReceivePayment(ctx context.Context, req PaymentRequest) (journal.Transaction, error) {
	receivableExists, err := s.receivableExists(ctx)
	if err != nil {
		return journal.Transaction{}, err
	}
	creditCode, err := s.policy.CreditCode(receivableExists)
	if err != nil {
		return journal.Transaction{}, err
	}
	in, err := builders.PaymentReceived(req.toBuilder(s.receiptRef(req.ReferenceID)), creditCode)
	if err != nil {
		return journal.Transaction{}, err
	}
	return s.poster.Post(ctx, in)
}

// ReceiveCamPayment posts a CAM payment against Accounts Receivable.
func (s *Service) ReceiveCamPayment(ctx context.Context, req PaymentRequest) (journal.Transaction, error) {
	in, err := builders.CamPaymentReceived(req.toBuilder(s.receiptRef(req.ReferenceID)))
	if err != nil {
		return journal.Transaction{}, err
	}
	return s.poster.Post(ctx, in)
}

// DepositRequest describes a collected security deposit.
type DepositRequest struct {
	TenantID    int64
	PropertyID  int64
	Amount      int64
	Date        time.Time
	Fiscal      fiscal.Period
	Method      builders.ReceiptMethod
	ReferenceID string
	CreatedBy   int64
	Description string
}

// DepositResult pairs the posting with its mirrored liability record.
type DepositResult struct {
	Transaction journal.Transaction
	Liability   liability.Record
}

// CollectSecurityDeposit posts the deposit and registers the mirrored
// liability record in the same transaction scope.
func (s *Service) CollectSecurityDeposit(ctx context.Context, req DepositRequest) (DepositResult, error) {
	in, err := builders.SecurityDeposit(builders.SecurityDepositInput{
		ChargeInput: builders.ChargeInput{
			TenantID:    ref(req.TenantID),
			PropertyID:  ref(req.PropertyID),
			Amount:      req.Amount,
			Date:        req.Date,
			Fiscal:      req.Fiscal,
			ReferenceID: req.ReferenceID,
			CreatedBy:   req.CreatedBy,
			Description: req.Description,
		},
		Method: req.Method,
	})
	if err != nil {
		return DepositResult{}, err
	}

	var result DepositResult
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx journal.TxRepository) error {
		posted, err := s.poster.PostIn(ctx, tx, in)
		if err != nil {
			return err
		}
		rec, err := tx.InsertLiability(ctx, depositLiability(req, posted))
		if err != nil {
			return err
		}
		result = DepositResult{Transaction: posted, Liability: rec}
		return nil
	})
	if err != nil {
		return DepositResult{}, err
	}
	s.poster.Committed(ctx, result.Transaction)
	return result, nil
}

// ManualLiabilityRequest records a payable outside the deposit flow.
type ManualLiabilityRequest struct {
	TenantID    int64
	PropertyID  int64
	Amount      int64
	Date        time.Time
	Fiscal      fiscal.Period
	CreatedBy   int64
	Description string
}

// RecordManualLiability posts an expense accrual and registers the payable,
// atomically.
func (s *Service) RecordManualLiability(ctx context.Context, req ManualLiabilityRequest) (DepositResult, error) {
	in := builders.Generic(builders.GenericInput{
		Date:          req.Date,
		Fiscal:        req.Fiscal,
		Description:   req.Description,
		ReferenceType: "manual_liability",
		CreatedBy:     req.CreatedBy,
		Lines: []journal.Line{
			journal.NewDebitLine(accounts.CodeOperatingExpense, req.Amount).Tagged(ref(req.TenantID), ref(req.PropertyID), req.Fiscal, req.Description),
			journal.NewCreditLine(accounts.CodeOtherPayables, req.Amount).Tagged(ref(req.TenantID), ref(req.PropertyID), req.Fiscal, req.Description),
		},
	})

	var result DepositResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx journal.TxRepository) error {
		posted, err := s.poster.PostIn(ctx, tx, in)
		if err != nil {
			return err
		}
		rec, err := tx.InsertLiability(ctx, liability.CreateInput{
			TenantID:      ref(req.TenantID),
			PropertyID:    ref(req.PropertyID),
			Kind:          liability.KindManual,
			Amount:        req.Amount,
			Description:   req.Description,
			ReferenceType: "transaction",
			ReferenceID:   fmt.Sprintf("%d", posted.ID),
		})
		if err != nil {
			return err
		}
		result = DepositResult{Transaction: posted, Liability: rec}
		return nil
	})
	if err != nil {
		return DepositResult{}, err
	}
	s.poster.Committed(ctx, result.Transaction)
	return result, nil
}

// OnboardingRequest bundles the postings a new tenancy produces.
type OnboardingRequest struct {
	TenantID      int64
	PropertyID    int64
	RentAmount    int64
	CamAmount     int64
	DepositAmount int64
	Date          time.Time
	Fiscal        fiscal.Period
	Method        builders.ReceiptMethod
	CreatedBy     int64
}

// OnboardingResult reports every posting made for the new tenancy.
type OnboardingResult struct {
	Rent      journal.Transaction
	Cam       *journal.Transaction
	Deposit   journal.Transaction
	Liability liability.Record
}

// OnboardTenant posts the opening rent charge, optional CAM charge and
// security deposit inside one shared transaction scope: a failure anywhere
// rolls back every posting already made. There is no partially onboarded
// state.
func (s *Service) OnboardTenant(ctx context.Context, req OnboardingRequest) (OnboardingResult, error) {
	if req.RentAmount <= 0 || req.DepositAmount <= 0 {
		return OnboardingResult{}, builders.ErrInvalidAmount
	}

	charge := ChargeRequest{
		TenantID:   req.TenantID,
		PropertyID: req.PropertyID,
		Date:       req.Date,
		Fiscal:     req.Fiscal,
		CreatedBy:  req.CreatedBy,
	}

	var result OnboardingResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx journal.TxRepository) error {
		rentReq := charge
		rentReq.Amount = req.RentAmount
		rentIn, err := builders.RentCharge(rentReq.toBuilder())
		if err != nil {
			return err
		}
		if result.Rent, err = s.poster.PostIn(ctx, tx, rentIn); err != nil {
			return fmt.Errorf("onboarding: rent charge: %w", err)
		}

		if req.CamAmount > 0 {
			camReq := charge
			camReq.Amount = req.CamAmount
			camIn, err := builders.CamCharge(camReq.toBuilder())
			if err != nil {
				return err
			}
			posted, err := s.poster.PostIn(ctx, tx, camIn)
			if err != nil {
				return fmt.Errorf("onboarding: cam charge: %w", err)
			}
			result.Cam = &posted
		}

		depositReq := DepositRequest{
			TenantID:   req.TenantID,
			PropertyID: req.PropertyID,
			Amount:     req.DepositAmount,
			Date:       req.Date,
			Fiscal:     req.Fiscal,
			Method:     req.Method,
			CreatedBy:  req.CreatedBy,
		}
		depositIn, err := builders.SecurityDeposit(builders.SecurityDepositInput{
			ChargeInput: builders.ChargeInput{
				TenantID:   ref(req.TenantID),
				PropertyID: ref(req.PropertyID),
				Amount:     req.DepositAmount,
				Date:       req.Date,
				Fiscal:     req.Fiscal,
				CreatedBy:  req.CreatedBy,
			},
			Method: req.Method,
		})
		if err != nil {
			return err
		}
		if result.Deposit, err = s.poster.PostIn(ctx, tx, depositIn); err != nil {
			return fmt.Errorf("onboarding: security deposit: %w", err)
		}
		if result.Liability, err = tx.InsertLiability(ctx, depositLiability(depositReq, result.Deposit)); err != nil {
			return fmt.Errorf("onboarding: liability record: %w", err)
		}
		return nil
	})
	if err != nil {
		return OnboardingResult{}, err
	}
	committed := []journal.Transaction{result.Rent}
	if result.Cam != nil {
		committed = append(committed, *result.Cam)
	}
	committed = append(committed, result.Deposit)
	s.poster.Committed(ctx, committed...)
	return result, nil
}

func (s *Service) receivableExists(ctx context.Context) (bool, error) {
	_, err := s.registry.GetByCode(ctx, accounts.CodeReceivable)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, shared.ErrAccountNotFound) {
		return false, nil
	}
	return false, err
}

// receiptRef keeps externally supplied references and mints one otherwise.
func (s *Service) receiptRef(supplied string) string {
	if supplied != "" {
		return supplied
	}
	return uuid.New().String()
}

func depositLiability(req DepositRequest, posted journal.Transaction) liability.CreateInput {
	return liability.CreateInput{
		TenantID:      ref(req.TenantID),
		PropertyID:    ref(req.PropertyID),
		Kind:          liability.KindSecurityDeposit,
		Amount:        req.Amount,
		Description:   "Security deposit held",
		ReferenceType: "transaction",
		ReferenceID:   fmt.Sprintf("%d", posted.ID),
	}
}

func ref(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
