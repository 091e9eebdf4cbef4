// Package access — единая точка авторизации: разрешение роли (owner /
// accountant / staff / none) и табличная проверка прав. Ролевые сравнения
// по хендлерам не размазываются — каждый вход в ядро идёт через Require.
package access

import (
	"context"

	"bizledger/internal/apperr"
	"bizledger/internal/domain/businesses"
)

type Permission string

const (
	PermListTransactions  Permission = "transactions.list"
	PermCreateTransaction Permission = "transactions.create"
	PermEditTransaction   Permission = "transactions.edit" // включая удаление
	PermAttachDocument    Permission = "transactions.attach_document"
	PermViewReports       Permission = "reports.view" // summary и периодные отчёты
	PermViewBreakdown     Permission = "reports.breakdown"
	PermViewTopItems      Permission = "reports.top_items"
	PermViewDashboard     Permission = "reports.dashboard"
	PermExportReports     Permission = "reports.export"
	PermViewInventory     Permission = "inventory.view"
	PermCreateInventory   Permission = "inventory.create"
	PermViewLowStock      Permission = "inventory.low_stock"
	PermViewTodayStats    Permission = "inventory.today_stats"
	PermManageMembers     Permission = "members.manage"
	PermPredictProfit     Permission = "predict.profit"
)

// matrix — deny-by-default: операция без явной записи запрещена всем.
var matrix = map[Permission]map[businesses.Role]bool{
	PermListTransactions:  {businesses.RoleOwner: true, businesses.RoleAccountant: true},
	PermCreateTransaction: {businesses.RoleOwner: true, businesses.RoleStaff: true},
	PermEditTransaction:   {businesses.RoleOwner: true},
	PermAttachDocument:    {businesses.RoleOwner: true},
	PermViewReports:       {businesses.RoleOwner: true, businesses.RoleAccountant: true},
	PermViewBreakdown:     {businesses.RoleOwner: true, businesses.RoleAccountant: true},
	PermViewTopItems:      {businesses.RoleOwner: true},
	PermViewDashboard:     {businesses.RoleOwner: true, businesses.RoleAccountant: true, businesses.RoleStaff: true},
	PermExportReports:     {businesses.RoleOwner: true},
	PermViewInventory:     {businesses.RoleOwner: true},
	PermCreateInventory:   {businesses.RoleOwner: true},
	PermViewLowStock:      {businesses.RoleOwner: true, businesses.RoleStaff: true},
	PermViewTodayStats:    {businesses.RoleStaff: true},
	PermManageMembers:     {businesses.RoleOwner: true},
	PermPredictProfit:     {businesses.RoleOwner: true},
}

// Allowed — чистая проверка по таблице.
func Allowed(role businesses.Role, perm Permission) bool {
	return matrix[perm][role]
}

// RoleSource разрешает отношение (actor, business) → роль.
// Для несуществующего бизнеса возвращает apperr.ErrNotFound.
type RoleSource interface {
	ResolveRole(ctx context.Context, userID, businessID int64) (businesses.Role, error)
}

type Resolver struct {
	roles RoleSource
}

func NewResolver(roles RoleSource) *Resolver { return &Resolver{roles: roles} }

// Require возвращает роль актора, если операция ему разрешена.
// Несуществующий бизнес → ErrNotFound; существующий, но чужой или роль
// без права → ErrForbidden. Эти исходы не смешиваются.
func (r *Resolver) Require(ctx context.Context, actorID, businessID int64, perm Permission) (businesses.Role, error) {
	role, err := r.roles.ResolveRole(ctx, actorID, businessID)
	if err != nil {
		return businesses.RoleNone, err
	}
	if role == businesses.RoleNone || !Allowed(role, perm) {
		return businesses.RoleNone, apperr.ErrForbidden
	}
	return role, nil
}
