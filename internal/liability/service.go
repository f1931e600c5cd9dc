package liability

import (
	"context"
	"fmt"
	"time"

	"github.com/gharbeti/gharbeti/internal/shared"
)

// AuditPort records dashboard-visible mutations.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	return s.repo.List(ctx, filter)
}

// Settle marks an open liability as paid out.
func (s *Service) Settle(ctx context.Context, id int64, actorID int64) (Record, error) {
	rec, err := s.repo.Settle(ctx, id, s.now())
	if err != nil {
		return Record{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "liability.settle",
			Entity:   "liability",
			EntityID: fmt.Sprintf("%d", rec.ID),
			Meta:     map[string]any{"kind": string(rec.Kind), "amount": rec.Amount},
			At:       s.now(),
		})
	}
	return rec, nil
}
