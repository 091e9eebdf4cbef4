package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestWeekStart(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		// среда → понедельник той же недели
		{time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC), time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)},
		// понедельник остаётся понедельником
		{time.Date(2025, 6, 9, 0, 0, 1, 0, time.UTC), time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)},
		// воскресенье принадлежит неделе, начавшейся 6 днями раньше
		{time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC), time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)},
	}
	for i, tc := range cases {
		if got := WeekStart(tc.in); !got.Equal(tc.want) {
			t.Fatalf("case %d: WeekStart(%v)=%v want %v", i, tc.in, got, tc.want)
		}
	}
}

func TestMonthStart(t *testing.T) {
	in := time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)
	want := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	if got := MonthStart(in); !got.Equal(want) {
		t.Fatalf("MonthStart=%v want %v", got, want)
	}
}

func TestFillMonthsGapFill(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	apr := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	byMonth := map[time.Time]sums{
		jan: {income: decimal.NewFromInt(100), expense: decimal.NewFromInt(40)},
		apr: {income: decimal.NewFromInt(10)},
	}

	got := fillMonths(jan, apr, byMonth)
	if len(got) != 4 {
		t.Fatalf("expected 4 buckets (Jan..Apr), got %d", len(got))
	}
	wantLabels := []string{"Jan 2025", "Feb 2025", "Mar 2025", "Apr 2025"}
	for i, b := range got {
		if b.Label != wantLabels[i] {
			t.Fatalf("bucket %d label %q want %q", i, b.Label, wantLabels[i])
		}
	}
	// пропущенные месяцы присутствуют с нулями
	if !got[1].Income.IsZero() || !got[1].Expense.IsZero() {
		t.Fatalf("Feb must be zero-valued, got %+v", got[1])
	}
	if got[0].Income.String() != "100" || got[0].Expense.String() != "40" {
		t.Fatalf("Jan sums wrong: %+v", got[0])
	}
}

func TestFillMonthsIdempotent(t *testing.T) {
	jan := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	byMonth := map[time.Time]sums{
		jan: {income: decimal.NewFromInt(7)},
		mar: {expense: decimal.NewFromInt(3)},
	}

	a := fillMonths(jan, mar, byMonth)
	b := fillMonths(jan, mar, byMonth)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Label != b[i].Label || !a[i].Income.Equal(b[i].Income) || !a[i].Expense.Equal(b[i].Expense) {
			t.Fatalf("bucket %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestFillDaysSevenBuckets(t *testing.T) {
	now := time.Date(2025, 6, 11, 12, 0, 0, 0, time.UTC) // среда
	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)   // понедельник в окне
	byDay := map[time.Time]sums{
		day: {income: decimal.NewFromInt(50)},
	}

	got := fillDays(now, byDay)
	if len(got) != 7 {
		t.Fatalf("expected 7 buckets, got %d", len(got))
	}
	// окно заканчивается текущим днём
	if got[6].Label != "Wed" {
		t.Fatalf("last bucket label %q want Wed", got[6].Label)
	}
	var hits int
	for _, b := range got {
		if b.Label == "Mon" && b.Income.String() == "50" {
			hits++
		}
	}
	if hits != 1 {
		t.Fatalf("expected exactly one Monday bucket with income 50, got %d", hits)
	}
}
