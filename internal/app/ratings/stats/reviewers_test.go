package stats

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func reviewerRatings(userID uuid.UUID, values ...int) []Rating {
	ratings := make([]Rating, 0, len(values))
	for _, v := range values {
		ratings = append(ratings, Rating{UserID: userID, Value: v, CreatedAt: time.Now()})
	}
	return ratings
}

func TestTopReviewers_GroupsAndSortsByCount(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()
	carol := uuid.New()

	var ratings []Rating
	ratings = append(ratings, reviewerRatings(alice, 5, 4, 3)...)
	ratings = append(ratings, reviewerRatings(bob, 5)...)
	ratings = append(ratings, reviewerRatings(carol, 4, 4)...)

	top := TopReviewers(ratings, 5)

	assert.Len(t, top, 3)
	assert.Equal(t, alice, top[0].UserID)
	assert.Equal(t, 3, top[0].Count)
	assert.Equal(t, 4.0, top[0].Average)
	assert.Equal(t, carol, top[1].UserID)
	assert.Equal(t, 2, top[1].Count)
	assert.Equal(t, bob, top[2].UserID)
	assert.Equal(t, 1, top[2].Count)
}

func TestTopReviewers_TruncatesToK(t *testing.T) {
	var ratings []Rating
	for i := 0; i < 10; i++ {
		ratings = append(ratings, reviewerRatings(uuid.New(), 5)...)
	}

	top := TopReviewers(ratings, 3)

	assert.Len(t, top, 3)
}

func TestTopReviewers_TieBrokenByFirstSeen(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	var ratings []Rating
	ratings = append(ratings, reviewerRatings(first, 5, 4)...)
	ratings = append(ratings, reviewerRatings(second, 3, 2)...)

	top := TopReviewers(ratings, 5)

	// Одинаковый count: побеждает встретившийся раньше
	assert.Equal(t, first, top[0].UserID)
	assert.Equal(t, second, top[1].UserID)
}

func TestTopReviewers_AverageIndependentOfFoldOrder(t *testing.T) {
	userID := uuid.New()
	ratings := reviewerRatings(userID, 1, 2, 3, 4, 5, 5, 5)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]Rating, len(ratings))
		copy(shuffled, ratings)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		top := TopReviewers(shuffled, 1)

		assert.Len(t, top, 1)
		assert.Equal(t, 7, top[0].Count)
		// (1+2+3+4+5+5+5)/7 = 3.571... -> 3.6
		assert.Equal(t, 3.6, top[0].Average)
	}
}

func TestTopReviewers_Empty(t *testing.T) {
	top := TopReviewers(nil, 5)
	assert.Empty(t, top)
}

func TestTopReviewers_NonPositiveKUsesDefault(t *testing.T) {
	var ratings []Rating
	for i := 0; i < 8; i++ {
		ratings = append(ratings, reviewerRatings(uuid.New(), 4)...)
	}

	top := TopReviewers(ratings, 0)

	assert.Len(t, top, DefaultTopReviewers)
}
