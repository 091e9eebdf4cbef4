package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"bizledger/internal/access"
	"bizledger/internal/apperr"
	"bizledger/internal/domain/businesses"
	"bizledger/internal/domain/reports"
	"bizledger/internal/export"
	"bizledger/internal/predict"
)

// FinancialView — срез, поданный с учётом роли: бухгалтер видит выручку
// и операционные расходы, себестоимость и прибыль раскрываются
// только владельцу.
type FinancialView struct {
	Role             businesses.Role  `json:"role"`
	Revenue          decimal.Decimal  `json:"revenue"`
	OperatingExpense decimal.Decimal  `json:"operating_expense"`
	COGS             *decimal.Decimal `json:"cogs,omitempty"`
	Profit           *decimal.Decimal `json:"profit,omitempty"`
}

func shapeSummary(role businesses.Role, sum *reports.Summary) *FinancialView {
	v := &FinancialView{
		Role:             role,
		Revenue:          sum.Revenue,
		OperatingExpense: sum.OperatingExpense,
	}
	if role == businesses.RoleOwner {
		cogs, profit := sum.COGS, sum.Profit
		v.COGS, v.Profit = &cogs, &profit
	}
	return v
}

func (s *Service) Summary(ctx context.Context, actorID, businessID int64) (*FinancialView, error) {
	role, err := s.resolver.Require(ctx, actorID, businessID, access.PermViewReports)
	if err != nil {
		return nil, err
	}
	sum, err := s.reports.Summary(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return shapeSummary(role, sum), nil
}

func (s *Service) PeriodReport(ctx context.Context, actorID, businessID int64, period reports.Period) (*FinancialView, error) {
	role, err := s.resolver.Require(ctx, actorID, businessID, access.PermViewReports)
	if err != nil {
		return nil, err
	}
	sum, err := s.reports.PeriodReport(ctx, businessID, period, s.now())
	if err != nil {
		return nil, err
	}
	return shapeSummary(role, sum), nil
}

type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityMonthly Granularity = "monthly"
)

func (s *Service) TimeSeries(ctx context.Context, actorID, businessID int64, g Granularity) ([]reports.Bucket, error) {
	if _, err := s.resolver.Require(ctx, actorID, businessID, access.PermViewReports); err != nil {
		return nil, err
	}
	switch g {
	case GranularityDaily:
		return s.reports.DailySeries(ctx, businessID, s.now())
	case GranularityMonthly:
		return s.reports.MonthlySeries(ctx, businessID)
	default:
		return nil, fmt.Errorf("%w: granularity must be daily or monthly", apperr.ErrInvalidInput)
	}
}

func (s *Service) CategoryBreakdown(ctx context.Context, actorID, businessID int64) (*reports.Breakdown, error) {
	if _, err := s.resolver.Require(ctx, actorID, businessID, access.PermViewBreakdown); err != nil {
		return nil, err
	}
	return s.reports.CategoryBreakdown(ctx, businessID)
}

func (s *Service) TopItems(ctx context.Context, actorID, businessID int64, limit int) ([]reports.ItemRank, error) {
	if _, err := s.resolver.Require(ctx, actorID, businessID, access.PermViewTopItems); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}
	return s.reports.TopItems(ctx, businessID, limit)
}

// Dashboard — ролевой срез для главного экрана (владелец — всё,
// бухгалтер — итоги, staff — только счётчик движений).
type Dashboard struct {
	BusinessName      string          `json:"business_name"`
	Role              businesses.Role `json:"role"`
	Financial         *FinancialView  `json:"financial,omitempty"`
	TransactionsCount *int64          `json:"transactions_count,omitempty"`
}

func (s *Service) Dashboard(ctx context.Context, actorID, businessID int64) (*Dashboard, error) {
	role, err := s.resolver.Require(ctx, actorID, businessID, access.PermViewDashboard)
	if err != nil {
		return nil, err
	}
	b, err := s.registry.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperr.ErrNotFound
	}

	d := &Dashboard{BusinessName: b.Name, Role: role}
	if role == businesses.RoleOwner || role == businesses.RoleStaff {
		n, err := s.txs.CountByBusiness(ctx, businessID)
		if err != nil {
			return nil, err
		}
		d.TransactionsCount = &n
	}
	if role == businesses.RoleOwner || role == businesses.RoleAccountant {
		sum, err := s.reports.Summary(ctx, businessID)
		if err != nil {
			return nil, err
		}
		d.Financial = shapeSummary(role, sum)
	}
	return d, nil
}

// PredictProfit — owner-only прогноз прибыли следующего месяца.
// Нехватка истории у оценщика — различимая ошибка, не 500.
func (s *Service) PredictProfit(ctx context.Context, actorID, businessID int64) (*predict.Estimate, error) {
	if _, err := s.resolver.Require(ctx, actorID, businessID, access.PermPredictProfit); err != nil {
		return nil, err
	}
	points, err := s.reports.MonthlyProfits(ctx, businessID)
	if err != nil {
		return nil, err
	}
	est, err := s.estimator.Estimate(points)
	if err != nil {
		return nil, err
	}
	s.log.Info("profit predicted",
		"business_id", businessID, "month", est.Month.Format("2006-01"), "months_of_history", est.Months)
	return est, nil
}

// ExportTransactions — XLSX с журналом движений и итогами, только владельцу.
func (s *Service) ExportTransactions(ctx context.Context, actorID, businessID int64) ([]byte, error) {
	if _, err := s.resolver.Require(ctx, actorID, businessID, access.PermExportReports); err != nil {
		return nil, err
	}
	txs, err := s.txs.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}
	sum, err := s.reports.Summary(ctx, businessID)
	if err != nil {
		return nil, err
	}
	return export.Transactions(txs, sum)
}
