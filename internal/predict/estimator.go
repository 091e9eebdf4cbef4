// Package predict — статистическая оценка прибыли следующего месяца
// по помесячным итогам. Read-only коллаборатор owner-операции: нехватка
// истории — различимая ошибка, не падение запроса.
package predict

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bizledger/internal/apperr"
	"bizledger/internal/domain/reports"
)

const DefaultMinMonths = 3

type Estimate struct {
	Month  time.Time // месяц, на который сделан прогноз
	Profit decimal.Decimal
	Months int // объём истории, на которой обучались
}

type Estimator struct {
	minMonths int
}

func NewEstimator(minMonths int) *Estimator {
	if minMonths < 2 {
		minMonths = DefaultMinMonths
	}
	return &Estimator{minMonths: minMonths}
}

// Estimate строит линейный тренд (метод наименьших квадратов) по индексу
// месяца и экстраполирует на следующий месяц.
func (e *Estimator) Estimate(points []reports.ProfitPoint) (*Estimate, error) {
	n := len(points)
	if n < e.minMonths {
		return nil, fmt.Errorf("%w: need at least %d months of history, have %d",
			apperr.ErrDependencyUnavailable, e.minMonths, n)
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, p := range points {
		x := float64(i)
		y, _ := p.Profit.Float64()
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	den := fn*sumXX - sumX*sumX
	if den == 0 {
		return nil, fmt.Errorf("%w: degenerate profit history", apperr.ErrDependencyUnavailable)
	}
	slope := (fn*sumXY - sumX*sumY) / den
	intercept := (sumY - slope*sumX) / fn

	predicted := intercept + slope*fn // следующий индекс месяца
	return &Estimate{
		Month:  points[n-1].Month.AddDate(0, 1, 0),
		Profit: decimal.NewFromFloat(predicted).Round(2),
		Months: n,
	}, nil
}
