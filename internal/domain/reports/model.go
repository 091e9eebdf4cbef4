package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary — финансовый срез на момент запроса. Revenue/OperatingExpense
// считаются только по строкам движений, COGS — только по связке
// used_quantity × unit_cost. Profit = Revenue − COGS − OperatingExpense.
type Summary struct {
	Revenue          decimal.Decimal
	OperatingExpense decimal.Decimal
	COGS             decimal.Decimal
	Profit           decimal.Decimal
}

type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Bucket — точка временного ряда.
type Bucket struct {
	Label   string          `json:"label"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Breakdown — разбивка по категориям из одного источника: либо операционные
// расходы, либо (fallback) себестоимость по категориям склада. Источники
// в одном ответе не смешиваются.
type Breakdown struct {
	Source string           `json:"source"` // "operating_expense" | "cogs"
	Items  []CategoryAmount `json:"items"`
}

const (
	SourceOperatingExpense = "operating_expense"
	SourceCOGS             = "cogs"
)

type ItemRank struct {
	ItemID       int64  `json:"item_id"`
	Name         string `json:"item_name"`
	SoldQuantity int64  `json:"sold_quantity"`
}

// ProfitPoint — месячная прибыль для предиктора.
type ProfitPoint struct {
	Month  time.Time
	Profit decimal.Decimal
}
