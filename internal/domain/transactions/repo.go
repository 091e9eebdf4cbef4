package transactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bizledger/internal/apperr"
	"bizledger/internal/domain/inventory"
)

// Repo — CRUD по движениям. Складские побочные эффекты выполняются через
// inventory-леджер в той же pgx-транзакции: либо фиксируются и строка,
// и остаток, либо ничего.
type Repo struct {
	pool *pgxpool.Pool
	inv  *inventory.Repo
}

func NewRepo(pool *pgxpool.Pool, inv *inventory.Repo) *Repo {
	return &Repo{pool: pool, inv: inv}
}

const txCols = `id, business_id, kind, amount, COALESCE(category,''), inventory_id,
	COALESCE(used_quantity,0), COALESCE(source,''), COALESCE(document_url,''), created_at`

func scanTx(row pgx.Row) (*Transaction, error) {
	var t Transaction
	if err := row.Scan(&t.ID, &t.BusinessID, &t.Kind, &t.Amount, &t.Category,
		&t.InventoryID, &t.UsedQuantity, &t.Source, &t.DocumentURL, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repo) Create(ctx context.Context, p CreateParams) (*Transaction, error) {
	kind, err := ParseKind(string(p.Kind))
	if err != nil {
		return nil, err
	}
	p.Kind = kind
	if p.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must be >= 0", apperr.ErrInvalidInput)
	}
	if p.UsedQuantity < 0 {
		return nil, fmt.Errorf("%w: used quantity must be >= 0", apperr.ErrInvalidInput)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	category := p.Category
	linked := p.InventoryID != nil && p.UsedQuantity > 0
	if linked {
		item, err := r.inv.GetForUpdate(ctx, tx, *p.InventoryID)
		if err != nil {
			return nil, err
		}
		if item.BusinessID != p.BusinessID {
			return nil, apperr.ErrNotFound
		}
		category = ResolveCategory(p.Category, item.Category, true)
		if err := r.inv.AdjustQuantity(ctx, tx, item.ID, StockDelta(p.Kind, p.UsedQuantity)); err != nil {
			return nil, err
		}
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO transactions (business_id, kind, amount, category, inventory_id, used_quantity, source)
		VALUES ($1,$2,$3,NULLIF($4,''),$5,$6,NULLIF($7,''))
		RETURNING `+txCols,
		p.BusinessID, string(p.Kind), p.Amount, category, p.InventoryID, p.UsedQuantity, p.Source)
	t, err := scanTx(row)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Update откатывает складской эффект старой версии движения, применяет
// эффект новой и переписывает строку — всё одним атомарным юнитом.
func (r *Repo) Update(ctx context.Context, id int64, p UpdateParams) (*Transaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	old, err := r.getForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	next := *old
	if p.Kind != nil {
		// сохраняем канонический вид: от него зависит направление дельты остатка
		kind, err := ParseKind(string(*p.Kind))
		if err != nil {
			return nil, err
		}
		next.Kind = kind
	}
	if p.Amount != nil {
		if p.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: amount must be >= 0", apperr.ErrInvalidInput)
		}
		next.Amount = *p.Amount
	}
	if p.Category != nil {
		next.Category = *p.Category
	}
	if p.InventoryID != nil {
		next.InventoryID = *p.InventoryID
	}
	if p.UsedQuantity != nil {
		if *p.UsedQuantity < 0 {
			return nil, fmt.Errorf("%w: used quantity must be >= 0", apperr.ErrInvalidInput)
		}
		next.UsedQuantity = *p.UsedQuantity
	}
	if p.DocumentURL != nil {
		next.DocumentURL = *p.DocumentURL
	}

	if err := r.reverseStock(ctx, tx, old); err != nil {
		return nil, err
	}
	if next.Linked() {
		item, err := r.inv.GetForUpdate(ctx, tx, *next.InventoryID)
		if err != nil {
			return nil, err
		}
		if item.BusinessID != next.BusinessID {
			return nil, apperr.ErrNotFound
		}
		if err := r.inv.AdjustQuantity(ctx, tx, item.ID, StockDelta(next.Kind, next.UsedQuantity)); err != nil {
			return nil, err
		}
	}

	row := tx.QueryRow(ctx, `
		UPDATE transactions
		SET kind=$2, amount=$3, category=NULLIF($4,''), inventory_id=$5, used_quantity=$6, document_url=NULLIF($7,'')
		WHERE id=$1
		RETURNING `+txCols,
		id, string(next.Kind), next.Amount, next.Category, next.InventoryID, next.UsedQuantity, next.DocumentURL)
	t, err := scanTx(row)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	old, err := r.getForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := r.reverseStock(ctx, tx, old); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id=$1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// reverseStock восстанавливает остаток в состояние "движения не было".
// Нехватка при откате закупки — конфликт, а не молчаливый clamp.
func (r *Repo) reverseStock(ctx context.Context, tx pgx.Tx, old *Transaction) error {
	if !old.Linked() {
		return nil
	}
	err := r.inv.AdjustQuantity(ctx, tx, *old.InventoryID, ReversalDelta(old.Kind, old.UsedQuantity))
	if errors.Is(err, apperr.ErrInsufficientStock) {
		return apperr.ErrStockReversalConflict
	}
	return err
}

func (r *Repo) getForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*Transaction, error) {
	t, err := scanTx(tx.QueryRow(ctx, `
		SELECT `+txCols+` FROM transactions WHERE id = $1 FOR UPDATE
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Transaction, error) {
	t, err := scanTx(r.pool.QueryRow(ctx, `
		SELECT `+txCols+` FROM transactions WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *Repo) ListByBusiness(ctx context.Context, businessID int64) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+txCols+` FROM transactions
		WHERE business_id = $1
		ORDER BY created_at DESC, id DESC
	`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTx(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *Repo) CountByBusiness(ctx context.Context, businessID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM transactions WHERE business_id = $1
	`, businessID).Scan(&n)
	return n, err
}

// AttachDocument сохраняет ссылку на подтверждающий документ
// (сам файл хранит внешний сервис).
func (r *Repo) AttachDocument(ctx context.Context, id int64, url string) (*Transaction, error) {
	t, err := scanTx(r.pool.QueryRow(ctx, `
		UPDATE transactions SET document_url = $2 WHERE id = $1
		RETURNING `+txCols,
		id, url))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

type TodayStats struct {
	ItemsSold    int64 `json:"total_items_sold_today"`
	Transactions int64 `json:"transactions_today"`
}

// StatsToday — продажи с полуночи UTC: штук продано и число income-движений.
// SQL группирует по сырому kind, классификация — через ParseKind, как во
// всех остальных агрегатах.
func (r *Repo) StatsToday(ctx context.Context, businessID int64, now time.Time) (*TodayStats, error) {
	start := now.UTC().Truncate(24 * time.Hour)
	rows, err := r.pool.Query(ctx, `
		SELECT kind, COUNT(*), COALESCE(SUM(used_quantity),0)
		FROM transactions
		WHERE business_id = $1 AND created_at >= $2
		GROUP BY kind
	`, businessID, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var s TodayStats
	for rows.Next() {
		var kind string
		var n, qty int64
		if err := rows.Scan(&kind, &n, &qty); err != nil {
			return nil, err
		}
		if k, kerr := ParseKind(kind); kerr == nil && k == KindIncome {
			s.Transactions += n
			s.ItemsSold += qty
		}
	}
	return &s, rows.Err()
}
