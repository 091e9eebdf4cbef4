// Package apperr содержит сентинельные ошибки ядра. Репозитории и сервисы
// возвращают их через errors.Is/%w, маппинг в статус-коды живёт на границе HTTP.
package apperr

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("forbidden")
	ErrInvalidTransactionKind = errors.New("invalid transaction kind")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrStockReversalConflict  = errors.New("stock reversal would drive quantity negative")
	ErrDuplicateMembership    = errors.New("user is already a member")
	ErrDuplicateItemName      = errors.New("item name already exists for this business")
	ErrDependencyUnavailable  = errors.New("dependency unavailable")
)
