package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// WeekStart — понедельник 00:00 UTC недели, в которую попадает t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	days := (int(t.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)
}

// MonthStart — первое число месяца 00:00 UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func dayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type sums struct {
	income  decimal.Decimal
	expense decimal.Decimal
}

// fillDays строит ровно 7 дневных бакетов, заканчивая днём now,
// с нулями там, где движений не было. Метки — сокращения дней недели.
func fillDays(now time.Time, byDay map[time.Time]sums) []Bucket {
	start := dayStart(now).AddDate(0, 0, -6)
	out := make([]Bucket, 0, 7)
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		s := byDay[d]
		out = append(out, Bucket{
			Label:   d.Format("Mon"),
			Income:  orZero(s.income),
			Expense: orZero(s.expense),
		})
	}
	return out
}

// fillMonths перечисляет каждый календарный месяц от first до last ровно
// один раз: потребители не должны угадывать пропущенные месяцы.
func fillMonths(first, last time.Time, byMonth map[time.Time]sums) []Bucket {
	first, last = MonthStart(first), MonthStart(last)
	var out []Bucket
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		s := byMonth[m]
		out = append(out, Bucket{
			Label:   m.Format("Jan 2006"),
			Income:  orZero(s.income),
			Expense: orZero(s.expense),
		})
	}
	return out
}

// orZero нормализует нулевое значение decimal, чтобы гэп-филл был
// детерминирован между вызовами.
func orZero(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	return d
}
