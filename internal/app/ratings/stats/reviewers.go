package stats

import (
	"sort"

	"github.com/google/uuid"
)

// DefaultTopReviewers - количество рецензентов в топе по умолчанию
const DefaultTopReviewers = 5

// ReviewerStat - накопленная статистика одного рецензента
type ReviewerStat struct {
	UserID  uuid.UUID `json:"user_id"`
	Count   int       `json:"count"`
	Average float64   `json:"average"`
}

// TopReviewers группирует оценки по рецензенту и возвращает топ k по количеству.
// Среднее ведется инкрементально: newAvg = (oldAvg*oldCount + v) / (oldCount+1).
// Итоговое среднее не зависит от порядка свертки (среднее арифметическое
// ассоциативно), промежуточные значения - зависят. При слиянии параллельных
// частичных сверток формулу применять нельзя: частичные count/sum нужно
// объединять взвешенно. Здесь свертка строго последовательная.
// Равенство по count разрешается порядком первого появления (стабильная сортировка).
func TopReviewers(ratings []Rating, k int) []ReviewerStat {
	if k <= 0 {
		k = DefaultTopReviewers
	}

	index := make(map[uuid.UUID]int)
	reviewers := make([]ReviewerStat, 0)

	for _, r := range ratings {
		i, seen := index[r.UserID]
		if !seen {
			index[r.UserID] = len(reviewers)
			reviewers = append(reviewers, ReviewerStat{UserID: r.UserID})
			i = len(reviewers) - 1
		}

		stat := reviewers[i]
		stat.Average = (stat.Average*float64(stat.Count) + float64(r.Value)) / float64(stat.Count+1)
		stat.Count++
		reviewers[i] = stat
	}

	// SliceStable сохраняет порядок первого появления при равных count
	sort.SliceStable(reviewers, func(i, j int) bool {
		return reviewers[i].Count > reviewers[j].Count
	})

	if len(reviewers) > k {
		reviewers = reviewers[:k]
	}

	for i := range reviewers {
		reviewers[i].Average = RoundAverage(reviewers[i].Average)
	}

	return reviewers
}
