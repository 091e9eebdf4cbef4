package transactions

// Правила склада: направление дельты — функция только вида движения.
// income (продажа)  → остаток уменьшается на израсходованное количество;
// expense (закупка) → остаток увеличивается.
// Знак суммы и категория на направление не влияют.

// StockDelta — дельта остатка при применении движения.
func StockDelta(kind Kind, usedQuantity int64) int64 {
	if kind == KindIncome {
		return -usedQuantity
	}
	return usedQuantity
}

// ReversalDelta — дельта при откате движения ("как будто его не было").
// Откат закупки сам уменьшает остаток и может упереться в нехватку,
// если товар уже распродан.
func ReversalDelta(kind Kind, usedQuantity int64) int64 {
	return -StockDelta(kind, usedQuantity)
}

// Uncategorized — категория по умолчанию для складских движений без явной
// категории, чтобы downstream-агрегации не видели NULL.
const Uncategorized = "Uncategorized"

// ResolveCategory выбирает категорию при создании движения: явная от
// вызывающего, иначе категория складской позиции, иначе Uncategorized.
func ResolveCategory(supplied, itemCategory string, linked bool) string {
	if supplied != "" {
		return supplied
	}
	if !linked {
		return supplied
	}
	if itemCategory != "" {
		return itemCategory
	}
	return Uncategorized
}
