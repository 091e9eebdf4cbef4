package transactions

import (
	"fmt"
	"strings"

	"bizledger/internal/apperr"
)

// Kind — канонический вид денежного движения. Сравнение видов везде идёт
// через ParseKind: прямых сравнений строк в других пакетах быть не должно,
// иначе записи с неожиданным регистром молча теряются в агрегатах.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// ParseKind канонизирует вид движения без учёта регистра.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return KindIncome, nil
	case "expense":
		return KindExpense, nil
	default:
		return "", fmt.Errorf("%w: %q", apperr.ErrInvalidTransactionKind, s)
	}
}
