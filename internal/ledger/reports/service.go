package reports

import (
	"context"
	"log/slog"
)

// Service is the read path over the ledger. It has no side effects and
// tolerates empty result sets.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
}

func NewService(logger *slog.Logger, repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// GetStatement returns the filtered, ordered statement with running balances
// and totals. Malformed filters yield an empty statement plus the error.
func (s *Service) GetStatement(ctx context.Context, filter StatementFilter) (Statement, error) {
	if err := filter.Validate(); err != nil {
		return Statement{Lines: []StatementLine{}}, err
	}
	entries, err := s.repo.FilterEntries(ctx, filter)
	if err != nil {
		return Statement{Lines: []StatementLine{}}, err
	}
	return BuildStatement(entries), nil
}

// GetAccountSummary returns per-account aggregates plus a grand total.
// Account-code filtering does not apply here; any provided code is ignored.
func (s *Service) GetAccountSummary(ctx context.Context, filter StatementFilter) (AccountSummary, error) {
	filter.AccountCode = ""
	if err := filter.Validate(); err != nil {
		return emptySummary(), err
	}

	key, err := s.cache.BuildKey(ctx, "reports", "summary", filter.Fingerprint())
	if err != nil {
		s.logger.Warn("summary cache key", slog.Any("error", err))
	} else if cached, ok := s.cache.GetSummary(ctx, key); ok {
		return cached, nil
	}

	entries, err := s.repo.FilterEntries(ctx, filter)
	if err != nil {
		return emptySummary(), err
	}
	summary := BuildAccountSummary(entries)
	if key != "" {
		if err := s.cache.SetSummary(ctx, key, summary); err != nil {
			s.logger.Warn("summary cache set", slog.Any("error", err))
		}
	}
	return summary, nil
}

func emptySummary() AccountSummary {
	return AccountSummary{Accounts: []AccountActivity{}}
}
