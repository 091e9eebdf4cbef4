package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"bizledger/internal/access"
	"bizledger/internal/apperr"
	"bizledger/internal/domain/transactions"
)

type CreateTransactionInput struct {
	BusinessID   int64
	Kind         string
	Amount       decimal.Decimal
	Category     string
	InventoryID  *int64
	UsedQuantity int64
	Source       string
}

func (s *Service) CreateTransaction(ctx context.Context, actorID int64, in CreateTransactionInput) (*transactions.Transaction, error) {
	if _, err := s.resolver.Require(ctx, actorID, in.BusinessID, access.PermCreateTransaction); err != nil {
		return nil, err
	}
	kind, err := transactions.ParseKind(in.Kind)
	if err != nil {
		return nil, err
	}
	t, err := s.txs.Create(ctx, transactions.CreateParams{
		BusinessID:   in.BusinessID,
		Kind:         kind,
		Amount:       in.Amount,
		Category:     strings.TrimSpace(in.Category),
		InventoryID:  in.InventoryID,
		UsedQuantity: in.UsedQuantity,
		Source:       in.Source,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("transaction created",
		"transaction_id", t.ID, "business_id", t.BusinessID, "kind", t.Kind, "linked", t.Linked())
	return t, nil
}

// UpdateTransaction — только владелец бизнеса, к которому относится движение.
func (s *Service) UpdateTransaction(ctx context.Context, actorID, txID int64, p transactions.UpdateParams) (*transactions.Transaction, error) {
	if err := s.requireTxOwner(ctx, actorID, txID, access.PermEditTransaction); err != nil {
		return nil, err
	}
	return s.txs.Update(ctx, txID, p)
}

func (s *Service) DeleteTransaction(ctx context.Context, actorID, txID int64) error {
	if err := s.requireTxOwner(ctx, actorID, txID, access.PermEditTransaction); err != nil {
		return err
	}
	if err := s.txs.Delete(ctx, txID); err != nil {
		return err
	}
	s.log.Info("transaction deleted", "transaction_id", txID)
	return nil
}

// AttachDocument сохраняет ссылку на загруженный документ (хранилище файлов внешнее).
func (s *Service) AttachDocument(ctx context.Context, actorID, txID int64, url string) (*transactions.Transaction, error) {
	if err := s.requireTxOwner(ctx, actorID, txID, access.PermAttachDocument); err != nil {
		return nil, err
	}
	if strings.TrimSpace(url) == "" {
		return nil, apperr.ErrInvalidInput
	}
	return s.txs.AttachDocument(ctx, txID, url)
}

func (s *Service) ListTransactions(ctx context.Context, actorID, businessID int64) ([]transactions.Transaction, error) {
	if _, err := s.resolver.Require(ctx, actorID, businessID, access.PermListTransactions); err != nil {
		return nil, err
	}
	return s.txs.ListByBusiness(ctx, businessID)
}

// StatsToday — дневная статистика продаж для staff.
func (s *Service) StatsToday(ctx context.Context, actorID, businessID int64) (*transactions.TodayStats, error) {
	if _, err := s.resolver.Require(ctx, actorID, businessID, access.PermViewTodayStats); err != nil {
		return nil, err
	}
	return s.txs.StatsToday(ctx, businessID, s.now())
}

func (s *Service) requireTxOwner(ctx context.Context, actorID, txID int64, perm access.Permission) error {
	t, err := s.txs.GetByID(ctx, txID)
	if err != nil {
		return err
	}
	if t == nil {
		return apperr.ErrNotFound
	}
	_, err = s.resolver.Require(ctx, actorID, t.BusinessID, perm)
	return err
}
