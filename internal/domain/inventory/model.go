package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item — складская позиция. Quantity — только состояние остатка:
// финансовые суммы из него никогда не считаются, себестоимость продаж
// берётся из UnitCost на момент движения.
type Item struct {
	ID         int64           `json:"id"`
	BusinessID int64           `json:"business_id"`
	Name       string          `json:"item_name"`
	Category   string          `json:"category,omitempty"`
	Quantity   int64           `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	CreatedAt  time.Time       `json:"created_at"`
}
