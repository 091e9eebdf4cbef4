// Package service — фасад ядра: разрешение доступа, оркестрация
// репозиториев и ролевая подача производных данных.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bizledger/internal/access"
	"bizledger/internal/apperr"
	"bizledger/internal/domain/businesses"
	"bizledger/internal/domain/inventory"
	"bizledger/internal/domain/users"
)

type Service struct {
	log       *slog.Logger
	resolver  *access.Resolver
	registry  Registry
	users     UserDirectory
	inventory InventoryStore
	txs       TransactionStore
	reports   ReportSource
	estimator ProfitEstimator

	lowStockThreshold int64
	now               func() time.Time
}

func New(log *slog.Logger, registry Registry, users UserDirectory,
	inv InventoryStore, txs TransactionStore, rep ReportSource,
	est ProfitEstimator, lowStockThreshold int64) *Service {

	return &Service{
		log:               log,
		resolver:          access.NewResolver(registry),
		registry:          registry,
		users:             users,
		inventory:         inv,
		txs:               txs,
		reports:           rep,
		estimator:         est,
		lowStockThreshold: lowStockThreshold,
		now:               time.Now,
	}
}

/* Пользователи */

// RegisterUser заводит запись в справочнике: участником бизнеса можно
// сделать только существующего пользователя. Аутентификация внешняя.
func (s *Service) RegisterUser(ctx context.Context, username string) (*users.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", apperr.ErrInvalidInput)
	}
	u, err := s.users.Create(ctx, username)
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*users.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %d", apperr.ErrNotFound, id)
	}
	return u, nil
}

/* Бизнесы и участники */

func (s *Service) CreateBusiness(ctx context.Context, actorID int64, name, industry string) (*businesses.Business, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: business name is required", apperr.ErrInvalidInput)
	}
	b, err := s.registry.Create(ctx, actorID, name, industry)
	if err != nil {
		return nil, err
	}
	s.log.Info("business created", "business_id", b.ID, "owner_id", actorID)
	return b, nil
}

func (s *Service) ListBusinesses(ctx context.Context, actorID int64) ([]businesses.BusinessWithRole, error) {
	return s.registry.ListForUser(ctx, actorID)
}

func (s *Service) AddMember(ctx context.Context, actorID, businessID int64, username, role string) (*businesses.Member, error) {
	if _, err := s.resolver.Require(ctx, actorID, businessID, access.PermManageMembers); err != nil {
		return nil, err
	}
	memberRole := businesses.Role(strings.ToLower(strings.TrimSpace(role)))
	if !businesses.MemberRole(memberRole) {
		return nil, fmt.Errorf("%w: member role must be accountant or staff", apperr.ErrInvalidInput)
	}
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %q", apperr.ErrNotFound, username)
	}
	m, err := s.registry.AddMember(ctx, businessID, u.ID, memberRole)
	if err != nil {
		return nil, err
	}
	m.Username = u.Username
	s.log.Info("member added", "business_id", businessID, "user_id", u.ID, "role", memberRole)
	return m, nil
}

func (s *Service) ListMembers(ctx context.Context, actorID, businessID int64) ([]businesses.Member, error) {
	if _, err := s.resolver.Require(ctx, actorID, businessID, access.PermManageMembers); err != nil {
		return nil, err
	}
	return s.registry.ListMembers(ctx, businessID)
}

func (s *Service) RemoveMember(ctx context.Context, actorID, businessID, userID int64) error {
	if _, err := s.resolver.Require(ctx, actorID, businessID, access.PermManageMembers); err != nil {
		return err
	}
	ok, err := s.registry.DeleteMember(ctx, businessID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: member", apperr.ErrNotFound)
	}
	return nil
}

/* Склад */

func (s *Service) CreateInventoryItem(ctx context.Context, actorID, businessID int64, name, category string, quantity int64, unitCost decimal.Decimal) (*inventory.Item, error) {
	if _, err := s.resolver.Require(ctx, actorID, businessID, access.PermCreateInventory); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: item name is required", apperr.ErrInvalidInput)
	}
	return s.inventory.Create(ctx, businessID, name, category, quantity, unitCost)
}

func (s *Service) ListInventory(ctx context.Context, actorID, businessID int64) ([]inventory.Item, error) {
	if _, err := s.resolver.Require(ctx, actorID, businessID, access.PermViewInventory); err != nil {
		return nil, err
	}
	return s.inventory.ListByBusiness(ctx, businessID)
}

// LowStock — позиции ниже порога; нулевой порог заменяется настройкой.
func (s *Service) LowStock(ctx context.Context, actorID, businessID, threshold int64) ([]inventory.Item, error) {
	if _, err := s.resolver.Require(ctx, actorID, businessID, access.PermViewLowStock); err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = s.lowStockThreshold
	}
	return s.inventory.LowStock(ctx, businessID, threshold)
}
