package accounts

import "context"

// Service exposes the chart of accounts registry. Accounts are created at
// seed time and never deleted; balances are written only by the journal
// poster inside its transaction scope.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByCode(ctx context.Context, code string) (Account, error) {
	return s.repo.GetByCode(ctx, code)
}

// Seed installs the default chart when missing.
func (s *Service) Seed(ctx context.Context) error {
	return s.repo.Seed(ctx, DefaultChart())
}
