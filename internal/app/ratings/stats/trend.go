package stats

import (
	"time"
)

// TrendBucket - один интервал тренда (день или календарный месяц)
type TrendBucket struct {
	Label   string  `json:"label"` // ISO дата "2006-01-02" или месяц "2006-01"
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

const (
	dayLabel   = "2006-01-02"
	monthLabel = "2006-01"
)

// BinByDay раскладывает оценки по календарным дням за окно [now - days, now]
// включительно, от старых к новым. Пустые дни присутствуют с нулями,
// итого days+1 бакетов. Оценки вне окна игнорируются.
func BinByDay(ratings []Rating, days int, now time.Time) []TrendBucket {
	if days < 0 {
		return []TrendBucket{}
	}

	start := truncateToDay(now.AddDate(0, 0, -days))

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, r := range ratings {
		day := truncateToDay(r.CreatedAt)
		if day.Before(start) || r.CreatedAt.After(now) {
			continue
		}
		label := day.Format(dayLabel)
		sums[label] += r.Value
		counts[label]++
	}

	// Хронологический порядок не зависит от порядка входных данных:
	// бакеты генерируются по окну, а не по встреченным датам
	buckets := make([]TrendBucket, 0, days+1)
	for d := start; !d.After(now); d = d.AddDate(0, 0, 1) {
		label := d.Format(dayLabel)
		buckets = append(buckets, newBucket(label, counts[label], sums[label]))
	}

	return buckets
}

// BinByMonth раскладывает оценки по календарным месяцам: ровно months
// последовательных месяцев, последний - текущий. Пустые месяцы присутствуют.
func BinByMonth(ratings []Rating, months int, now time.Time) []TrendBucket {
	if months <= 0 {
		return []TrendBucket{}
	}

	start := truncateToMonth(now).AddDate(0, -(months - 1), 0)

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, r := range ratings {
		month := truncateToMonth(r.CreatedAt)
		if month.Before(start) || r.CreatedAt.After(now) {
			continue
		}
		label := month.Format(monthLabel)
		sums[label] += r.Value
		counts[label]++
	}

	buckets := make([]TrendBucket, 0, months)
	for i := 0; i < months; i++ {
		label := start.AddDate(0, i, 0).Format(monthLabel)
		buckets = append(buckets, newBucket(label, counts[label], sums[label]))
	}

	return buckets
}

func newBucket(label string, count, sum int) TrendBucket {
	average := 0.0
	if count > 0 {
		average = RoundAverage(float64(sum) / float64(count))
	}
	return TrendBucket{Label: label, Count: count, Average: average}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
