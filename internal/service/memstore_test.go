package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bizledger/internal/apperr"
	"bizledger/internal/domain/businesses"
	"bizledger/internal/domain/inventory"
	"bizledger/internal/domain/reports"
	"bizledger/internal/domain/transactions"
	"bizledger/internal/domain/users"
)

// In-memory реализации зависимостей сервиса. Складские правила не
// дублируются заново: фейки гоняют те же StockDelta / ReversalDelta /
// ResolveCategory, что и pgx-репозиторий.

type memState struct {
	nextID     int64
	now        time.Time
	businesses map[int64]*businesses.Business
	members    []businesses.Member
	users      map[int64]*users.User
	items      map[int64]*inventory.Item
	txs        map[int64]*transactions.Transaction
	profits    []reports.ProfitPoint
}

func newMemState() *memState {
	return &memState{
		now:        time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC),
		businesses: map[int64]*businesses.Business{},
		users:      map[int64]*users.User{},
		items:      map[int64]*inventory.Item{},
		txs:        map[int64]*transactions.Transaction{},
	}
}

func (st *memState) id() int64 { st.nextID++; return st.nextID }

func (st *memState) addUser(username string) *users.User {
	u := &users.User{ID: st.id(), Username: username, CreatedAt: st.now}
	st.users[u.ID] = u
	return u
}

func (st *memState) adjust(itemID, delta int64) error {
	item := st.items[itemID]
	if item == nil {
		return apperr.ErrNotFound
	}
	if item.Quantity+delta < 0 {
		return fmt.Errorf("%w: item %d", apperr.ErrInsufficientStock, itemID)
	}
	item.Quantity += delta
	return nil
}

func (st *memState) reverse(t *transactions.Transaction) error {
	if !t.Linked() {
		return nil
	}
	err := st.adjust(*t.InventoryID, transactions.ReversalDelta(t.Kind, t.UsedQuantity))
	if errors.Is(err, apperr.ErrInsufficientStock) {
		return apperr.ErrStockReversalConflict
	}
	return err
}

/* Registry */

type memRegistry struct{ st *memState }

func (m *memRegistry) Create(ctx context.Context, ownerID int64, name, industry string) (*businesses.Business, error) {
	b := &businesses.Business{ID: m.st.id(), OwnerID: ownerID, Name: name, Industry: industry, CreatedAt: m.st.now}
	m.st.businesses[b.ID] = b
	return b, nil
}

func (m *memRegistry) GetByID(ctx context.Context, id int64) (*businesses.Business, error) {
	return m.st.businesses[id], nil
}

func (m *memRegistry) ListForUser(ctx context.Context, userID int64) ([]businesses.BusinessWithRole, error) {
	var out []businesses.BusinessWithRole
	for _, b := range m.st.businesses {
		role, _ := m.ResolveRole(ctx, userID, b.ID)
		if role != businesses.RoleNone {
			out = append(out, businesses.BusinessWithRole{Business: *b, Role: role})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRegistry) ResolveRole(ctx context.Context, userID, businessID int64) (businesses.Role, error) {
	b := m.st.businesses[businessID]
	if b == nil {
		return businesses.RoleNone, apperr.ErrNotFound
	}
	if b.OwnerID == userID {
		return businesses.RoleOwner, nil
	}
	for _, mem := range m.st.members {
		if mem.BusinessID == businessID && mem.UserID == userID {
			return mem.Role, nil
		}
	}
	return businesses.RoleNone, nil
}

func (m *memRegistry) AddMember(ctx context.Context, businessID, userID int64, role businesses.Role) (*businesses.Member, error) {
	for _, mem := range m.st.members {
		if mem.BusinessID == businessID && mem.UserID == userID {
			return nil, apperr.ErrDuplicateMembership
		}
	}
	mem := businesses.Member{ID: m.st.id(), BusinessID: businessID, UserID: userID, Role: role}
	m.st.members = append(m.st.members, mem)
	return &mem, nil
}

func (m *memRegistry) ListMembers(ctx context.Context, businessID int64) ([]businesses.Member, error) {
	var out []businesses.Member
	for _, mem := range m.st.members {
		if mem.BusinessID == businessID {
			out = append(out, mem)
		}
	}
	return out, nil
}

func (m *memRegistry) DeleteMember(ctx context.Context, businessID, userID int64) (bool, error) {
	for i, mem := range m.st.members {
		if mem.BusinessID == businessID && mem.UserID == userID {
			m.st.members = append(m.st.members[:i], m.st.members[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

/* UserDirectory */

type memUsers struct{ st *memState }

func (m *memUsers) Create(ctx context.Context, username string) (*users.User, error) {
	for _, u := range m.st.users {
		if u.Username == username {
			return nil, fmt.Errorf("%w: username %q is taken", apperr.ErrInvalidInput, username)
		}
	}
	return m.st.addUser(username), nil
}

func (m *memUsers) GetByID(ctx context.Context, id int64) (*users.User, error) {
	return m.st.users[id], nil
}

func (m *memUsers) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	for _, u := range m.st.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

/* InventoryStore */

type memInventory struct{ st *memState }

func (m *memInventory) Create(ctx context.Context, businessID int64, name, category string, quantity int64, unitCost decimal.Decimal) (*inventory.Item, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", apperr.ErrInvalidInput)
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("%w: unit cost must be >= 0", apperr.ErrInvalidInput)
	}
	for _, it := range m.st.items {
		if it.BusinessID == businessID && it.Name == name {
			return nil, apperr.ErrDuplicateItemName
		}
	}
	item := &inventory.Item{
		ID: m.st.id(), BusinessID: businessID, Name: name,
		Category: category, Quantity: quantity, UnitCost: unitCost, CreatedAt: m.st.now,
	}
	m.st.items[item.ID] = item
	return item, nil
}

func (m *memInventory) ListByBusiness(ctx context.Context, businessID int64) ([]inventory.Item, error) {
	return m.list(businessID, func(it *inventory.Item) bool { return true }), nil
}

func (m *memInventory) LowStock(ctx context.Context, businessID int64, threshold int64) ([]inventory.Item, error) {
	return m.list(businessID, func(it *inventory.Item) bool { return it.Quantity < threshold }), nil
}

func (m *memInventory) list(businessID int64, keep func(*inventory.Item) bool) []inventory.Item {
	var out []inventory.Item
	for _, it := range m.st.items {
		if it.BusinessID == businessID && keep(it) {
			out = append(out, *it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

/* TransactionStore */

type memTxs struct{ st *memState }

func (m *memTxs) Create(ctx context.Context, p transactions.CreateParams) (*transactions.Transaction, error) {
	kind, err := transactions.ParseKind(string(p.Kind))
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

	category := p.Category
	linked := p.InventoryID != nil && p.UsedQuantity > 0
	if linked {
		item := m.st.items[*p.InventoryID]
		if item == nil || item.BusinessID != p.BusinessID {
			return nil, apperr.ErrNotFound
		}
		category = transactions.ResolveCategory(p.Category, item.Category, true)
		if err := m.st.adjust(item.ID, transactions.StockDelta(p.Kind, p.UsedQuantity)); err != nil {
			return nil, err
		}
	}

	t := &transactions.Transaction{
		ID: m.st.id(), BusinessID: p.BusinessID, Kind: p.Kind, Amount: p.Amount,
		Category: category, InventoryID: p.InventoryID, UsedQuantity: p.UsedQuantity,
		Source: p.Source, CreatedAt: m.st.now,
	}
	m.st.txs[t.ID] = t
	return t, nil
}

func (m *memTxs) Update(ctx context.Context, id int64, p transactions.UpdateParams) (*transactions.Transaction, error) {
	old := m.st.txs[id]
	if old == nil {
		return nil, apperr.ErrNotFound
	}

	next := *old
	if p.Kind != nil {
		kind, err := transactions.ParseKind(string(*p.Kind))
		if err != nil {
			return nil, err
		}
		next.Kind = kind
	}
	if p.Amount != nil {
		next.Amount = *p.Amount
	}
	if p.Category != nil {
		next.Category = *p.Category
	}
	if p.InventoryID != nil {
		next.InventoryID = *p.InventoryID
	}
	if p.UsedQuantity != nil {
		next.UsedQuantity = *p.UsedQuantity
	}
	if p.DocumentURL != nil {
		next.DocumentURL = *p.DocumentURL
	}

	if err := m.st.reverse(old); err != nil {
		return nil, err
	}
	if next.Linked() {
		item := m.st.items[*next.InventoryID]
		if item == nil || item.BusinessID != next.BusinessID {
			return nil, apperr.ErrNotFound
		}
		if err := m.st.adjust(item.ID, transactions.StockDelta(next.Kind, next.UsedQuantity)); err != nil {
			return nil, err
		}
	}
	m.st.txs[id] = &next
	return &next, nil
}

func (m *memTxs) Delete(ctx context.Context, id int64) error {
	old := m.st.txs[id]
	if old == nil {
		return apperr.ErrNotFound
	}
	if err := m.st.reverse(old); err != nil {
		return err
	}
	delete(m.st.txs, id)
	return nil
}

func (m *memTxs) GetByID(ctx context.Context, id int64) (*transactions.Transaction, error) {
	return m.st.txs[id], nil
}

func (m *memTxs) ListByBusiness(ctx context.Context, businessID int64) ([]transactions.Transaction, error) {
	var out []transactions.Transaction
	for _, t := range m.st.txs {
		if t.BusinessID == businessID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memTxs) CountByBusiness(ctx context.Context, businessID int64) (int64, error) {
	var n int64
	for _, t := range m.st.txs {
		if t.BusinessID == businessID {
			n++
		}
	}
	return n, nil
}

func (m *memTxs) AttachDocument(ctx context.Context, id int64, url string) (*transactions.Transaction, error) {
	t := m.st.txs[id]
	if t == nil {
		return nil, apperr.ErrNotFound
	}
	t.DocumentURL = url
	return t, nil
}

func (m *memTxs) StatsToday(ctx context.Context, businessID int64, now time.Time) (*transactions.TodayStats, error) {
	start := now.UTC().Truncate(24 * time.Hour)
	var s transactions.TodayStats
	for _, t := range m.st.txs {
		if t.BusinessID != businessID || t.CreatedAt.Before(start) {
			continue
		}
		// хранимый kind может быть историческим, классифицируем как репозиторий
		if k, err := transactions.ParseKind(string(t.Kind)); err == nil && k == transactions.KindIncome {
			s.ItemsSold += t.UsedQuantity
			s.Transactions++
		}
	}
	return &s, nil
}

/* ReportSource */

type memReports struct{ st *memState }

func (m *memReports) Summary(ctx context.Context, businessID int64) (*reports.Summary, error) {
	rev, opex, cogs := decimal.Zero, decimal.Zero, decimal.Zero
	for _, t := range m.st.txs {
		if t.BusinessID != businessID {
			continue
		}
		switch t.Kind {
		case transactions.KindIncome:
			rev = rev.Add(t.Amount)
			if t.Linked() {
				if item := m.st.items[*t.InventoryID]; item != nil {
					cogs = cogs.Add(item.UnitCost.Mul(decimal.NewFromInt(t.UsedQuantity)))
				}
			}
		case transactions.KindExpense:
			opex = opex.Add(t.Amount)
		}
	}
	return &reports.Summary{
		Revenue:          rev,
		OperatingExpense: opex,
		COGS:             cogs,
		Profit:           rev.Sub(cogs).Sub(opex),
	}, nil
}

func (m *memReports) PeriodReport(ctx context.Context, businessID int64, period reports.Period, now time.Time) (*reports.Summary, error) {
	return m.Summary(ctx, businessID)
}

func (m *memReports) DailySeries(ctx context.Context, businessID int64, now time.Time) ([]reports.Bucket, error) {
	return nil, nil
}

func (m *memReports) MonthlySeries(ctx context.Context, businessID int64) ([]reports.Bucket, error) {
	return nil, nil
}

func (m *memReports) CategoryBreakdown(ctx context.Context, businessID int64) (*reports.Breakdown, error) {
	return &reports.Breakdown{Source: reports.SourceOperatingExpense}, nil
}

func (m *memReports) TopItems(ctx context.Context, businessID int64, limit int) ([]reports.ItemRank, error) {
	sold := map[int64]int64{}
	for _, t := range m.st.txs {
		if t.BusinessID == businessID && t.Kind == transactions.KindIncome && t.Linked() {
			sold[*t.InventoryID] += t.UsedQuantity
		}
	}
	var out []reports.ItemRank
	for id, qty := range sold {
		out = append(out, reports.ItemRank{ItemID: id, Name: m.st.items[id].Name, SoldQuantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SoldQuantity != out[j].SoldQuantity {
			return out[i].SoldQuantity > out[j].SoldQuantity
		}
		return out[i].ItemID < out[j].ItemID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memReports) MonthlyProfits(ctx context.Context, businessID int64) ([]reports.ProfitPoint, error) {
	return m.st.profits, nil
}
