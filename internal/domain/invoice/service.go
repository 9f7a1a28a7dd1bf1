package invoice

import (
	"context"

	"github.com/PraveenHasintha/inventra-backend/internal/core/apperror"
	"github.com/PraveenHasintha/inventra-backend/internal/core/id"
	"github.com/PraveenHasintha/inventra-backend/pkg/logger"
)

// Service reads invoices through an optional cache.
type Service struct {
	repo  Repository
	cache Cache
}

// NewService creates an invoice service. cache may be nil.
func NewService(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// GetByPublicID returns a finalized invoice. Drafts are never visible.
func (s *Service) GetByPublicID(ctx context.Context, publicID id.ID) (*Invoice, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, publicID)
		if err != nil {
			logger.Warn(ctx, "invoice cache read failed", "public_id", publicID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	inv, err := s.repo.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if !inv.IsFinal() {
		return nil, apperror.NewNotFound("Invoice", publicID)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, inv); err != nil {
			logger.Warn(ctx, "invoice cache write failed", "public_id", publicID, "error", err)
		}
	}
	return inv, nil
}

// Remember stores a freshly committed invoice in the cache.
func (s *Service) Remember(ctx context.Context, inv *Invoice) {
	if s.cache == nil || inv == nil || !inv.IsFinal() {
		return
	}
	if err := s.cache.Set(ctx, inv); err != nil {
		logger.Warn(ctx, "invoice cache write failed", "public_id", inv.PublicID, "error", err)
	}
}
