// Package export — выгрузка журнала движений и финансового среза в XLSX.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"bizledger/internal/domain/reports"
	"bizledger/internal/domain/transactions"
)

// Transactions собирает книгу: лист с журналом движений и лист с итогами.
func Transactions(txs []transactions.Transaction, summary *reports.Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"id",
		"created_at",
		"kind",
		"amount",
		"category",
		"inventory_id",
		"used_quantity",
		"source",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("export header: %w", err)
	}

	row := 2
	for _, t := range txs {
		var invID interface{}
		if t.InventoryID != nil {
			invID = *t.InventoryID
		}
		excelRow := []interface{}{
			t.ID,
			t.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			string(t.Kind),
			t.Amount.StringFixed(2),
			t.Category,
			invID,
			t.UsedQuantity,
			t.Source,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, fmt.Errorf("export cell: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, fmt.Errorf("export row: %w", err)
		}
		row++
	}

	const totals = "Totals"
	if _, err := f.NewSheet(totals); err != nil {
		return nil, fmt.Errorf("export totals sheet: %w", err)
	}
	lines := [][]interface{}{
		{"revenue", summary.Revenue.StringFixed(2)},
		{"operating_expense", summary.OperatingExpense.StringFixed(2)},
		{"cogs", summary.COGS.StringFixed(2)},
		{"profit", summary.Profit.StringFixed(2)},
	}
	for i := range lines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("export cell: %w", err)
		}
		if err := f.SetSheetRow(totals, cell, &lines[i]); err != nil {
			return nil, fmt.Errorf("export totals: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export write: %w", err)
	}
	return buf.Bytes(), nil
}
