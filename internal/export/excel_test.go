package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"bizledger/internal/domain/reports"
	"bizledger/internal/domain/transactions"
)

func TestTransactionsWorkbook(t *testing.T) {
	invID := int64(7)
	txs := []transactions.Transaction{
		{
			ID:           1,
			BusinessID:   10,
			Kind:         transactions.KindIncome,
			Amount:       decimal.NewFromInt(30),
			Category:     "Widgets",
			InventoryID:  &invID,
			UsedQuantity: 3,
			Source:       "manual",
			CreatedAt:    time.Date(2025, 6, 9, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:        2,
			Kind:      transactions.KindExpense,
			Amount:    decimal.NewFromInt(10),
			Category:  "Rent",
			Source:    "manual",
			CreatedAt: time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC),
		},
	}
	summary := &reports.Summary{
		Revenue:          decimal.NewFromInt(30),
		OperatingExpense: decimal.NewFromInt(10),
		COGS:             decimal.NewFromInt(6),
		Profit:           decimal.NewFromInt(14),
	}

	raw, err := Transactions(txs, summary)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	checks := map[string]string{
		"A1": "id",
		"C1": "kind",
		"C2": "income",
		"D2": "30.00",
		"E2": "Widgets",
		"G2": "3",
		"C3": "expense",
		"E3": "Rent",
	}
	for cell, want := range checks {
		got, err := f.GetCellValue(sheet, cell)
		if err != nil {
			t.Fatalf("cell %s: %v", cell, err)
		}
		if got != want {
			t.Fatalf("cell %s = %q want %q", cell, got, want)
		}
	}

	totals := map[string]string{
		"A1": "revenue",
		"B1": "30.00",
		"A3": "cogs",
		"B3": "6.00",
		"A4": "profit",
		"B4": "14.00",
	}
	for cell, want := range totals {
		got, err := f.GetCellValue("Totals", cell)
		if err != nil {
			t.Fatalf("totals %s: %v", cell, err)
		}
		if got != want {
			t.Fatalf("totals %s = %q want %q", cell, got, want)
		}
	}
}
