// Package stats содержит чистые вычисления над выборками оценок:
// сводные показатели, распределение по звездам, тренды по времени и
// топ рецензентов. Пакет не ходит в БД и не хранит состояние между вызовами.
package stats

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Rating - минимальное представление оценки для вычислений
// Слой сервисов конвертирует entity.Rating в эту форму
type Rating struct {
	UserID    uuid.UUID
	Value     int // От 1 до 5
	CreatedAt time.Time
}

// Summary - сводные показатели по выборке оценок
type Summary struct {
	Count        int         `json:"count"`
	Average      float64     `json:"average"`      // Округлено до 1 знака (round half up)
	Distribution map[int]int `json:"distribution"` // Всегда содержит ключи 1..5
}

// Summarize вычисляет количество, среднее и распределение по звездам.
// Пустая выборка дает count=0, average=0 и нулевое распределение -
// деления на ноль не происходит. Порядок оценок не важен.
func Summarize(ratings []Rating) Summary {
	distribution := emptyDistribution()

	sum := 0
	for _, r := range ratings {
		if r.Value < 1 || r.Value > 5 {
			continue
		}
		distribution[r.Value]++
		sum += r.Value
	}

	count := 0
	for _, c := range distribution {
		count += c
	}

	average := 0.0
	if count > 0 {
		average = RoundAverage(float64(sum) / float64(count))
	}

	return Summary{
		Count:        count,
		Average:      average,
		Distribution: distribution,
	}
}

// RoundAverage округляет среднее до одного знака после запятой (round half up)
func RoundAverage(avg float64) float64 {
	return math.Floor(avg*10+0.5) / 10
}

func emptyDistribution() map[int]int {
	return map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
}
