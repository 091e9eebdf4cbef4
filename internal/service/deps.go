package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"bizledger/internal/domain/businesses"
	"bizledger/internal/domain/inventory"
	"bizledger/internal/domain/reports"
	"bizledger/internal/domain/transactions"
	"bizledger/internal/domain/users"
	"bizledger/internal/predict"
)

// Зависимости сервиса объявлены интерфейсами на стороне потребителя:
// в проде это pgx-репозитории, в тестах — in-memory реализации.

type Registry interface {
	Create(ctx context.Context, ownerID int64, name, industry string) (*businesses.Business, error)
	GetByID(ctx context.Context, id int64) (*businesses.Business, error)
	ListForUser(ctx context.Context, userID int64) ([]businesses.BusinessWithRole, error)
	ResolveRole(ctx context.Context, userID, businessID int64) (businesses.Role, error)
	AddMember(ctx context.Context, businessID, userID int64, role businesses.Role) (*businesses.Member, error)
	ListMembers(ctx context.Context, businessID int64) ([]businesses.Member, error)
	DeleteMember(ctx context.Context, businessID, userID int64) (bool, error)
}

type UserDirectory interface {
	Create(ctx context.Context, username string) (*users.User, error)
	GetByID(ctx context.Context, id int64) (*users.User, error)
	GetByUsername(ctx context.Context, username string) (*users.User, error)
}

type InventoryStore interface {
	Create(ctx context.Context, businessID int64, name, category string, quantity int64, unitCost decimal.Decimal) (*inventory.Item, error)
	ListByBusiness(ctx context.Context, businessID int64) ([]inventory.Item, error)
	LowStock(ctx context.Context, businessID int64, threshold int64) ([]inventory.Item, error)
}

type TransactionStore interface {
	Create(ctx context.Context, p transactions.CreateParams) (*transactions.Transaction, error)
	Update(ctx context.Context, id int64, p transactions.UpdateParams) (*transactions.Transaction, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*transactions.Transaction, error)
	ListByBusiness(ctx context.Context, businessID int64) ([]transactions.Transaction, error)
	CountByBusiness(ctx context.Context, businessID int64) (int64, error)
	AttachDocument(ctx context.Context, id int64, url string) (*transactions.Transaction, error)
	StatsToday(ctx context.Context, businessID int64, now time.Time) (*transactions.TodayStats, error)
}

type ReportSource interface {
	Summary(ctx context.Context, businessID int64) (*reports.Summary, error)
	PeriodReport(ctx context.Context, businessID int64, period reports.Period, now time.Time) (*reports.Summary, error)
	DailySeries(ctx context.Context, businessID int64, now time.Time) ([]reports.Bucket, error)
	MonthlySeries(ctx context.Context, businessID int64) ([]reports.Bucket, error)
	CategoryBreakdown(ctx context.Context, businessID int64) (*reports.Breakdown, error)
	TopItems(ctx context.Context, businessID int64, limit int) ([]reports.ItemRank, error)
	MonthlyProfits(ctx context.Context, businessID int64) ([]reports.ProfitPoint, error)
}

type ProfitEstimator interface {
	Estimate(points []reports.ProfitPoint) (*predict.Estimate, error)
}
