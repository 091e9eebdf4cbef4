package reports

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"bizledger/internal/apperr"
	"bizledger/internal/domain/transactions"
)

// Repo — движок агрегаций. Только чтение; группировку и окна делает SQL,
// интерпретацию вида движения — ParseKind здесь, одним способом для всех
// отчётов. Незнакомые исторические виды пропускаются детерминированно
// и логируются, в суммы не попадают.
type Repo struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewRepo(pool *pgxpool.Pool, log *slog.Logger) *Repo {
	return &Repo{pool: pool, log: log}
}

// totals — выручка и операционные расходы по окну [from, ∞) либо по всей истории.
func (r *Repo) totals(ctx context.Context, businessID int64, from *time.Time) (revenue, expense decimal.Decimal, err error) {
	q := `
		SELECT kind, COUNT(*), COALESCE(SUM(amount),0)
		FROM transactions
		WHERE business_id = $1
	`
	args := []any{businessID}
	if from != nil {
		q += ` AND created_at >= $2`
		args = append(args, *from)
	}
	q += ` GROUP BY kind`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	defer rows.Close()

	revenue, expense = decimal.Zero, decimal.Zero
	var skipped int64
	for rows.Next() {
		var kind string
		var n int64
		var sum decimal.Decimal
		if err := rows.Scan(&kind, &n, &sum); err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		k, kerr := transactions.ParseKind(kind)
		if kerr != nil {
			skipped += n
			continue
		}
		switch k {
		case transactions.KindIncome:
			revenue = revenue.Add(sum)
		case transactions.KindExpense:
			expense = expense.Add(sum)
		}
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if skipped > 0 {
		r.log.Warn("skipped transactions with unknown kind", "business_id", businessID, "count", skipped)
	}
	return revenue, expense, nil
}

// cogs — Σ used_quantity × unit_cost по проданным (income) складским движениям.
// Сумма движения в расчёте не участвует.
func (r *Repo) cogs(ctx context.Context, businessID int64, from *time.Time) (decimal.Decimal, error) {
	q := `
		SELECT t.kind, COALESCE(SUM(t.used_quantity * i.unit_cost),0)
		FROM transactions t
		JOIN inventory i ON i.id = t.inventory_id
		WHERE t.business_id = $1 AND t.used_quantity > 0
	`
	args := []any{businessID}
	if from != nil {
		q += ` AND t.created_at >= $2`
		args = append(args, *from)
	}
	q += ` GROUP BY t.kind`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var kind string
		var sum decimal.Decimal
		if err := rows.Scan(&kind, &sum); err != nil {
			return decimal.Zero, err
		}
		if k, kerr := transactions.ParseKind(kind); kerr == nil && k == transactions.KindIncome {
			total = total.Add(sum)
		}
	}
	return total, rows.Err()
}

func (r *Repo) summarize(ctx context.Context, businessID int64, from *time.Time) (*Summary, error) {
	revenue, expense, err := r.totals(ctx, businessID, from)
	if err != nil {
		return nil, err
	}
	cogs, err := r.cogs(ctx, businessID, from)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Revenue:          revenue,
		OperatingExpense: expense,
		COGS:             cogs,
		Profit:           revenue.Sub(cogs).Sub(expense),
	}, nil
}

// Summary — срез по всей истории бизнеса.
func (r *Repo) Summary(ctx context.Context, businessID int64) (*Summary, error) {
	return r.summarize(ctx, businessID, nil)
}

// PeriodReport — срез по текущей неделе (с понедельника 00:00 UTC)
// или текущему месяцу (с 1-го числа).
func (r *Repo) PeriodReport(ctx context.Context, businessID int64, period Period, now time.Time) (*Summary, error) {
	var from time.Time
	switch period {
	case PeriodWeek:
		from = WeekStart(now)
	case PeriodMonth:
		from = MonthStart(now)
	default:
		return nil, fmt.Errorf("%w: unknown period %q", apperr.ErrInvalidInput, period)
	}
	return r.summarize(ctx, businessID, &from)
}

// DailySeries — 7 дневных бакетов, включая пустые дни.
func (r *Repo) DailySeries(ctx context.Context, businessID int64, now time.Time) ([]Bucket, error) {
	start := dayStart(now).AddDate(0, 0, -6)
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('day', created_at AT TIME ZONE 'UTC'), kind, COALESCE(SUM(amount),0)
		FROM transactions
		WHERE business_id = $1 AND created_at >= $2
		GROUP BY 1, 2
	`, businessID, start)
	if err != nil {
		return nil, err
	}
	byDay, err := collectSums(rows)
	if err != nil {
		return nil, err
	}
	return fillDays(now, byDay), nil
}

// MonthlySeries — помесячный ряд по всей истории, непрерывный по календарю:
// каждый месяц между первым и последним движением присутствует ровно один раз.
func (r *Repo) MonthlySeries(ctx context.Context, businessID int64) ([]Bucket, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('month', created_at AT TIME ZONE 'UTC'), kind, COALESCE(SUM(amount),0)
		FROM transactions
		WHERE business_id = $1
		GROUP BY 1, 2
	`, businessID)
	if err != nil {
		return nil, err
	}
	byMonth, err := collectSums(rows)
	if err != nil {
		return nil, err
	}
	if len(byMonth) == 0 {
		return nil, nil
	}

	first, last := time.Time{}, time.Time{}
	for m := range byMonth {
		if first.IsZero() || m.Before(first) {
			first = m
		}
		if last.IsZero() || m.After(last) {
			last = m
		}
	}
	return fillMonths(first, last, byMonth), nil
}

// collectSums раскладывает строки (bucket, kind, sum) по бакетам,
// классифицируя вид через ParseKind; неизвестные виды пропускает.
func collectSums(rows pgx.Rows) (map[time.Time]sums, error) {
	defer rows.Close()
	out := make(map[time.Time]sums)
	for rows.Next() {
		var bucket time.Time
		var kind string
		var sum decimal.Decimal
		if err := rows.Scan(&bucket, &kind, &sum); err != nil {
			return nil, err
		}
		k, err := transactions.ParseKind(kind)
		if err != nil {
			continue
		}
		bucket = bucket.UTC()
		s := out[bucket]
		if k == transactions.KindIncome {
			s.income = s.income.Add(sum)
		} else {
			s.expense = s.expense.Add(sum)
		}
		out[bucket] = s
	}
	return out, rows.Err()
}

// CategoryBreakdown — операционные расходы по категориям; если их нет,
// fallback на себестоимость по категориям склада. Источники не смешиваются.
func (r *Repo) CategoryBreakdown(ctx context.Context, businessID int64) (*Breakdown, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(category, 'Uncategorized'), kind, COALESCE(SUM(amount),0)
		FROM transactions
		WHERE business_id = $1
		GROUP BY 1, 2
	`, businessID)
	if err != nil {
		return nil, err
	}
	items, err := collectCategories(rows, transactions.KindExpense)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return &Breakdown{Source: SourceOperatingExpense, Items: items}, nil
	}

	// Fallback: COGS по категориям позиций (только продажи).
	rows, err = r.pool.Query(ctx, `
		SELECT COALESCE(i.category, 'Uncategorized'), t.kind, COALESCE(SUM(t.used_quantity * i.unit_cost),0)
		FROM transactions t
		JOIN inventory i ON i.id = t.inventory_id
		WHERE t.business_id = $1 AND t.used_quantity > 0
		GROUP BY 1, 2
	`, businessID)
	if err != nil {
		return nil, err
	}
	items, err = collectCategories(rows, transactions.KindIncome)
	if err != nil {
		return nil, err
	}
	return &Breakdown{Source: SourceCOGS, Items: items}, nil
}

func collectCategories(rows pgx.Rows, want transactions.Kind) ([]CategoryAmount, error) {
	defer rows.Close()
	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var category, kind string
		var sum decimal.Decimal
		if err := rows.Scan(&category, &kind, &sum); err != nil {
			return nil, err
		}
		k, err := transactions.ParseKind(kind)
		if err != nil || k != want {
			continue
		}
		totals[category] = totals[category].Add(sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]CategoryAmount, 0, len(totals))
	for c, a := range totals {
		out = append(out, CategoryAmount{Category: c, Amount: a})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Amount.Equal(out[j].Amount) {
			return out[i].Amount.GreaterThan(out[j].Amount)
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// TopItems — позиции по суммарно проданному количеству (только income),
// по убыванию; при равенстве — меньший id раньше, для детерминизма.
func (r *Repo) TopItems(ctx context.Context, businessID int64, limit int) ([]ItemRank, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT i.id, i.item_name, t.kind, COALESCE(SUM(t.used_quantity),0)
		FROM transactions t
		JOIN inventory i ON i.id = t.inventory_id
		WHERE t.business_id = $1 AND t.used_quantity > 0
		GROUP BY i.id, i.item_name, t.kind
	`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byItem := make(map[int64]*ItemRank)
	for rows.Next() {
		var id, qty int64
		var name, kind string
		if err := rows.Scan(&id, &name, &kind, &qty); err != nil {
			return nil, err
		}
		k, err := transactions.ParseKind(kind)
		if err != nil || k != transactions.KindIncome {
			continue
		}
		ir := byItem[id]
		if ir == nil {
			ir = &ItemRank{ItemID: id, Name: name}
			byItem[id] = ir
		}
		ir.SoldQuantity += qty
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]ItemRank, 0, len(byItem))
	for _, ir := range byItem {
		out = append(out, *ir)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SoldQuantity != out[j].SoldQuantity {
			return out[i].SoldQuantity > out[j].SoldQuantity
		}
		return out[i].ItemID < out[j].ItemID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MonthlyProfits — помесячная прибыль (revenue − cogs − opex) для предиктора.
func (r *Repo) MonthlyProfits(ctx context.Context, businessID int64) ([]ProfitPoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('month', created_at AT TIME ZONE 'UTC'), kind, COALESCE(SUM(amount),0)
		FROM transactions
		WHERE business_id = $1
		GROUP BY 1, 2
	`, businessID)
	if err != nil {
		return nil, err
	}
	byMonth, err := collectSums(rows)
	if err != nil {
		return nil, err
	}
	if len(byMonth) == 0 {
		return nil, nil
	}

	cogsRows, err := r.pool.Query(ctx, `
		SELECT date_trunc('month', t.created_at AT TIME ZONE 'UTC'), t.kind, COALESCE(SUM(t.used_quantity * i.unit_cost),0)
		FROM transactions t
		JOIN inventory i ON i.id = t.inventory_id
		WHERE t.business_id = $1 AND t.used_quantity > 0
		GROUP BY 1, 2
	`, businessID)
	if err != nil {
		return nil, err
	}
	cogsByMonth, err := collectSums(cogsRows)
	if err != nil {
		return nil, err
	}

	first, last := time.Time{}, time.Time{}
	for m := range byMonth {
		if first.IsZero() || m.Before(first) {
			first = m
		}
		if last.IsZero() || m.After(last) {
			last = m
		}
	}

	var out []ProfitPoint
	for m := MonthStart(first); !m.After(MonthStart(last)); m = m.AddDate(0, 1, 0) {
		s := byMonth[m]
		cogs := cogsByMonth[m].income // себестоимость продаж месяца
		out = append(out, ProfitPoint{
			Month:  m,
			Profit: s.income.Sub(cogs).Sub(s.expense),
		})
	}
	return out, nil
}
