package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/haniwon/clinic-platform/internal/observability/metrics"
	"github.com/haniwon/clinic-platform/internal/parser"
	"github.com/haniwon/clinic-platform/pkg/logging"
)

// Service applies stock movements triggered by prescription sends.
type Service struct {
	repo    Repository
	logger  *logging.Logger
	metrics *metrics.InventoryMetrics
}

// NewService constructs an inventory service.
func NewService(repo Repository, logger *logging.Logger, m *metrics.InventoryMetrics) *Service {
	if repo == nil {
		panic("inventory: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger, metrics: m}
}

// Deduct decreases stock for a single item by name. Stock never goes below
// zero. An unknown name returns ErrItemNotFound.
func (s *Service) Deduct(ctx context.Context, name string, amount int) error {
	item, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return err
	}

	newStock := item.CurrentStock - amount
	if newStock < 0 {
		newStock = 0
	}
	if err := s.repo.SetStock(ctx, item.ID, newStock); err != nil {
		return fmt.Errorf("inventory: deduct %s: %w", name, err)
	}

	s.logger.Info("inventory deducted",
		"item", name,
		"amount", amount,
		"remaining", newStock,
	)
	return nil
}

// DeductHerbs runs a best-effort sequential decrement for each parsed herb.
// Failures are logged and counted but do not stop later herbs and are not
// compensated, so a batch may apply partially.
func (s *Service) DeductHerbs(ctx context.Context, herbs []parser.Herb) {
	for _, herb := range herbs {
		err := s.Deduct(ctx, herb.Name, herb.AmountGrams)
		switch {
		case err == nil:
			s.metrics.ObserveDeduction("ok")
		case errors.Is(err, ErrItemNotFound):
			s.logger.Warn("inventory item not stocked, skipping deduction", "item", herb.Name)
			s.metrics.ObserveDeduction("unknown_item")
		default:
			s.logger.Error("inventory deduction failed", "item", herb.Name, "error", err)
			s.metrics.ObserveDeduction("error")
		}
	}
}
