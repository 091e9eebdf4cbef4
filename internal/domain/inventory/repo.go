package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"bizledger/internal/apperr"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func (r *Repo) Create(ctx context.Context, businessID int64, name, category string, quantity int64, unitCost decimal.Decimal) (*Item, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", apperr.ErrInvalidInput)
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("%w: unit cost must be >= 0", apperr.ErrInvalidInput)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO inventory (business_id, item_name, category, quantity, unit_cost)
		VALUES ($1,$2,NULLIF($3,''),$4,$5)
		RETURNING id, business_id, item_name, COALESCE(category,''), quantity, unit_cost, created_at
	`, businessID, name, category, quantity, unitCost)

	var it Item
	if err := row.Scan(&it.ID, &it.BusinessID, &it.Name, &it.Category, &it.Quantity, &it.UnitCost, &it.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperr.ErrDuplicateItemName
		}
		return nil, err
	}
	return &it, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, business_id, item_name, COALESCE(category,''), quantity, unit_cost, created_at
		FROM inventory WHERE id = $1
	`, id)

	var it Item
	if err := row.Scan(&it.ID, &it.BusinessID, &it.Name, &it.Category, &it.Quantity, &it.UnitCost, &it.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &it, nil
}

func (r *Repo) ListByBusiness(ctx context.Context, businessID int64) ([]Item, error) {
	return r.list(ctx, `
		SELECT id, business_id, item_name, COALESCE(category,''), quantity, unit_cost, created_at
		FROM inventory WHERE business_id = $1
		ORDER BY item_name
	`, businessID)
}

// LowStock возвращает позиции с остатком ниже порога.
func (r *Repo) LowStock(ctx context.Context, businessID int64, threshold int64) ([]Item, error) {
	return r.list(ctx, `
		SELECT id, business_id, item_name, COALESCE(category,''), quantity, unit_cost, created_at
		FROM inventory WHERE business_id = $1 AND quantity < $2
		ORDER BY quantity, item_name
	`, businessID, threshold)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]Item, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.BusinessID, &it.Name, &it.Category, &it.Quantity, &it.UnitCost, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

/* Ledger: изменение остатка как часть чужой транзакции.
   Методы принимают pgx.Tx — строка транзакции и дельта остатка
   фиксируются одним атомарным юнитом на стороне вызывающего. */

// GetForUpdate блокирует строку позиции (FOR UPDATE) до конца транзакции,
// чтобы конкурентные продажи одного товара сериализовались.
func (r *Repo) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*Item, error) {
	row := tx.QueryRow(ctx, `
		SELECT id, business_id, item_name, COALESCE(category,''), quantity, unit_cost, created_at
		FROM inventory WHERE id = $1
		FOR UPDATE
	`, id)

	var it Item
	if err := row.Scan(&it.ID, &it.BusinessID, &it.Name, &it.Category, &it.Quantity, &it.UnitCost, &it.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

// AdjustQuantity применяет дельту к заблокированной строке. Уход в минус
// запрещён: возвращаем ErrInsufficientStock, вызывающий откатит транзакцию
// (при реверсе закупки он переквалифицирует её в ErrStockReversalConflict).
func (r *Repo) AdjustQuantity(ctx context.Context, tx pgx.Tx, id int64, delta int64) error {
	row := tx.QueryRow(ctx, `
		SELECT quantity FROM inventory WHERE id = $1 FOR UPDATE
	`, id)
	var qty int64
	if err := row.Scan(&qty); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.ErrNotFound
		}
		return err
	}
	if qty+delta < 0 {
		return apperr.ErrInsufficientStock
	}
	_, err := tx.Exec(ctx, `
		UPDATE inventory SET quantity = quantity + $2 WHERE id = $1
	`, id, delta)
	return err
}
