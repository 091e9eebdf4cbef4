package transactions

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction — денежное движение. Amount — единственная авторитетная
// финансовая величина; из складской себестоимости она не пересчитывается.
type Transaction struct {
	ID           int64           `json:"id"`
	BusinessID   int64           `json:"business_id"`
	Kind         Kind            `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category,omitempty"`
	InventoryID  *int64          `json:"inventory_id,omitempty"`
	UsedQuantity int64           `json:"used_quantity,omitempty"`
	Source       string          `json:"source,omitempty"`
	DocumentURL  string          `json:"document_url,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Linked — движение привязано к складской позиции и двигает остаток.
func (t *Transaction) Linked() bool {
	return t.InventoryID != nil && t.UsedQuantity > 0
}

type CreateParams struct {
	BusinessID   int64
	Kind         Kind
	Amount       decimal.Decimal
	Category     string
	InventoryID  *int64
	UsedQuantity int64
	Source       string
}

// UpdateParams — частичное обновление: nil-поля не трогаем.
type UpdateParams struct {
	Kind         *Kind
	Amount       *decimal.Decimal
	Category     *string
	InventoryID  **int64
	UsedQuantity *int64
	DocumentURL  *string
}
